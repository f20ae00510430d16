package domain

import "time"

// RawDocument represents opaque bytes fetched by a connector.
// It is the connector's output before text extraction.
type RawDocument struct {
	// SourceID links to the Source that produced this document.
	SourceID string

	// ID is the source-stable identifier of the item (file ID, path).
	ID string

	// Name is the item name as reported by the source.
	Name string

	// MIMEType is the content type (e.g. "text/plain").
	MIMEType string

	// Content is the raw bytes.
	Content []byte

	// ModifiedAt is the modification time reported by the source.
	ModifiedAt time.Time
}

// ChangeType represents the type of document change.
type ChangeType int

const (
	// ChangeCreated indicates a new document.
	ChangeCreated ChangeType = iota

	// ChangeUpdated indicates a modified document.
	ChangeUpdated

	// ChangeDeleted indicates a removed document.
	ChangeDeleted
)

// RawDocumentChange represents a change event from a connector.
// Used for watch-based re-ingestion.
type RawDocumentChange struct {
	// Type is the kind of change.
	Type ChangeType

	// Document is the affected document.
	Document RawDocument
}
