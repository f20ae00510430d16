// Package connectors provides implementations of the Connector interface
// for various document sources. Each connector knows how to fetch documents
// from a specific source type (filesystem, Google Drive).
//
// Connectors are registered with the Factory at startup.
package connectors
