package normalisers

import (
	"github.com/jkkn-ai/assist/internal/logger"
	"github.com/jkkn-ai/assist/internal/normalisers/csv"
	"github.com/jkkn-ai/assist/internal/normalisers/docx"
	"github.com/jkkn-ai/assist/internal/normalisers/html"
	"github.com/jkkn-ai/assist/internal/normalisers/markdown"
	"github.com/jkkn-ai/assist/internal/normalisers/pdf"
	"github.com/jkkn-ai/assist/internal/normalisers/plaintext"
)

// NewDefaultRegistry creates a registry with all built-in normalisers.
// Call this during application initialisation. PDF support needs the
// pdftotext binary; without it, PDFs surface as unsupported.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(plaintext.New())
	r.Register(markdown.New())
	r.Register(html.New())
	r.Register(docx.New())
	r.Register(csv.New())
	if err := pdf.CheckAvailable(); err == nil {
		r.Register(pdf.New())
	} else {
		logger.Debug("PDF normaliser disabled: %v", err)
	}
	return r
}
