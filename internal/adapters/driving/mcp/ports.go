package mcp

import (
	"github.com/jkkn-ai/assist/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Search provides search capabilities.
	Search driving.SearchService

	// Assist answers questions grounded on retrieved context.
	Assist driving.AssistService

	// Source manages source configurations.
	Source driving.SourceService

	// Document manages documents within sources.
	Document driving.DocumentService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	// Assist, Source and Document are optional
	return nil
}
