package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jkkn-ai/assist/internal/core/domain"
)

// buildDocx assembles a minimal DOCX archive containing the given
// document part.
func buildDocx(t *testing.T, documentXML string) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

	f, err := w.Create("word/document.xml")
	require.NoError(t, err)
	_, err = f.Write([]byte(documentXML))
	require.NoError(t, err)

	require.NoError(t, w.Close())
	return buf.Bytes()
}

const simpleDocumentXML = `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>First paragraph.</w:t></w:r></w:p>
    <w:p><w:r><w:t>Second </w:t></w:r><w:r><w:t>paragraph.</w:t></w:r></w:p>
  </w:body>
</w:document>`

func TestNew(t *testing.T) {
	normaliser := New()
	require.NotNil(t, normaliser)
	assert.IsType(t, &Normaliser{}, normaliser)
}

func TestSupportedMIMETypes(t *testing.T) {
	normaliser := New()
	assert.Contains(t, normaliser.SupportedMIMETypes(),
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document")
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
		Name:       "report.docx",
		MIMEType:   "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		Content:    buildDocx(t, simpleDocumentXML),
		ModifiedAt: modified,
	}

	result, err := normaliser.Normalise(context.Background(), raw)
	require.NoError(t, err)
	require.NotNil(t, result)

	doc := result.Document
	assert.Equal(t, "test-source", doc.SourceID)
	assert.Equal(t, "report.docx", doc.Name)
	assert.Equal(t, "First paragraph.\nSecond paragraph.", doc.Content)
	assert.Equal(t, modified, doc.ModifiedAt)
}

func TestNormalise_NilDocument(t *testing.T) {
	normaliser := New()

	result, err := normaliser.Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Nil(t, result)
}

func TestNormalise_NotAZip(t *testing.T) {
	normaliser := New()

	raw := &domain.RawDocument{
		SourceID: "test-source",
		Name:     "fake.docx",
		Content:  []byte("this is not a zip archive"),
	}

	result, err := normaliser.Normalise(context.Background(), raw)
	assert.ErrorIs(t, err, domain.ErrCorruptFile)
	assert.Nil(t, result)
}

func TestNormalise_MissingDocumentPart(t *testing.T) {
	normaliser := New()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	f, err := w.Create("word/styles.xml")
	require.NoError(t, err)
	_, err = f.Write([]byte("<styles/>"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	raw := &domain.RawDocument{
		SourceID: "test-source",
		Name:     "empty.docx",
		Content:  buf.Bytes(),
	}

	result, err := normaliser.Normalise(context.Background(), raw)
	assert.ErrorIs(t, err, domain.ErrCorruptFile)
	assert.Nil(t, result)
}

func TestNormalise_MalformedXML(t *testing.T) {
	normaliser := New()

	raw := &domain.RawDocument{
		SourceID: "test-source",
		Name:     "broken.docx",
		Content:  buildDocx(t, "<w:document><unclosed"),
	}

	result, err := normaliser.Normalise(context.Background(), raw)
	require.NoError(t, err)
	assert.Empty(t, result.Document.Content)
}
