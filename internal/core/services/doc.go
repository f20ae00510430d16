// Package services implements the core business logic of Assist.
// Services implement the driving ports and depend only on driven ports.
package services
