package csv

import (
	"context"
	"encoding/csv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jkkn-ai/assist/internal/core/domain"
	"github.com/jkkn-ai/assist/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles CSV and TSV documents.
type Normaliser struct{}

// New creates a new CSV normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{
		"text/csv",
		"text/tab-separated-values",
	}
}

// Priority returns the selection priority.
// Preferred over the plaintext fallback for tabular files.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise flattens a CSV file into searchable text, one row per
// line with fields joined by single spaces. Ragged rows are allowed;
// a file that cannot be parsed at all is reported as corrupt.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	if !utf8.Valid(raw.Content) {
		return nil, domain.ErrCorruptFile
	}

	reader := csv.NewReader(strings.NewReader(string(raw.Content)))
	reader.FieldsPerRecord = -1
	if strings.Contains(raw.MIMEType, "tab-separated") {
		reader.Comma = '\t'
	}

	records, err := reader.ReadAll()
	if err != nil {
		return nil, domain.ErrCorruptFile
	}

	var result strings.Builder
	for i, record := range records {
		if i > 0 {
			result.WriteString("\n")
		}
		result.WriteString(strings.Join(record, " "))
	}

	now := time.Now()
	return &driven.NormaliseResult{
		Document: domain.Document{
			SourceID:   raw.SourceID,
			Name:       raw.Name,
			Content:    strings.TrimSpace(result.String()),
			ModifiedAt: raw.ModifiedAt,
			CreatedAt:  now,
			UpdatedAt:  now,
		},
	}, nil
}
