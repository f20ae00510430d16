package markdown

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jkkn-ai/assist/internal/core/domain"
)

func TestNew(t *testing.T) {
	normaliser := New()
	require.NotNil(t, normaliser)
	assert.IsType(t, &Normaliser{}, normaliser)
}

func TestSupportedMIMETypes(t *testing.T) {
	normaliser := New()
	mimeTypes := normaliser.SupportedMIMETypes()

	assert.Contains(t, mimeTypes, "text/markdown")
	assert.Contains(t, mimeTypes, "text/x-markdown")
}

func TestPriority(t *testing.T) {
	normaliser := New()
	assert.Equal(t, 50, normaliser.Priority())
}

func TestNormalise_Success(t *testing.T) {
	normaliser := New()

	modified := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	raw := &domain.RawDocument{
		SourceID:   "test-source",
		Name:       "readme.md",
		MIMEType:   "text/markdown",
		Content:    []byte("# Heading\n\nSome **bold** prose."),
		ModifiedAt: modified,
	}

	result, err := normaliser.Normalise(context.Background(), raw)
	require.NoError(t, err)
	require.NotNil(t, result)

	doc := result.Document
	assert.Equal(t, "test-source", doc.SourceID)
	assert.Equal(t, "readme.md", doc.Name)
	assert.Equal(t, "Heading\n\nSome bold prose.", doc.Content)
	assert.Equal(t, modified, doc.ModifiedAt)
	assert.False(t, doc.CreatedAt.IsZero())
}

func TestNormalise_NilDocument(t *testing.T) {
	normaliser := New()

	result, err := normaliser.Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Nil(t, result)
}

func TestNormalise_InvalidUTF8(t *testing.T) {
	normaliser := New()

	raw := &domain.RawDocument{
		SourceID: "test-source",
		Name:     "broken.md",
		MIMEType: "text/markdown",
		Content:  []byte{0xff, 0xfe},
	}

	result, err := normaliser.Normalise(context.Background(), raw)
	assert.ErrorIs(t, err, domain.ErrCorruptFile)
	assert.Nil(t, result)
}

func TestStripMarkdown(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "headings",
			input:    "# Title\n\n## Subtitle\n\nBody text.",
			expected: "Title\n\nSubtitle\n\nBody text.",
		},
		{
			name:     "bold and italic",
			input:    "This is **bold** and *italic* text.",
			expected: "This is bold and italic text.",
		},
		{
			name:     "links keep their text",
			input:    "See [the docs](https://example.com) for details.",
			expected: "See the docs for details.",
		},
		{
			name:     "images are removed",
			input:    "Before ![alt text](image.png) after.",
			expected: "Before  after.",
		},
		{
			name:     "code blocks are removed",
			input:    "Intro.\n\n```\nfunc main() {}\n```\n\nOutro.",
			expected: "Intro.\n\nOutro.",
		},
		{
			name:     "inline code is removed",
			input:    "Run `go build` first.",
			expected: "Run  first.",
		},
		{
			name:     "list markers",
			input:    "- first\n- second\n1. third",
			expected: "first\nsecond\nthird",
		},
		{
			name:     "blockquotes",
			input:    "> quoted line",
			expected: "quoted line",
		},
		{
			name:     "collapses excess blank lines",
			input:    "one\n\n\n\ntwo",
			expected: "one\n\ntwo",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, stripMarkdown(tt.input))
		})
	}
}
