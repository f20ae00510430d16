package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jkkn-ai/assist/internal/core/domain"
	"github.com/jkkn-ai/assist/internal/core/ports/driving"
)

func TestDocumentCmd_Use(t *testing.T) {
	assert.Equal(t, "document", documentCmd.Use)
}

func TestDocumentCmd_HasSubcommands(t *testing.T) {
	commands := documentCmd.Commands()
	names := make([]string, 0, len(commands))
	for _, cmd := range commands {
		names = append(names, cmd.Name())
	}

	assert.Contains(t, names, "list")
	assert.Contains(t, names, "get")
	assert.Contains(t, names, "content")
	assert.Contains(t, names, "details")
}

// Document List Tests

func TestDocumentListCmd_AllDocuments(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	documentService = &mockDocumentService{
		documents: []domain.Document{
			{ID: "src-1/a.md", Name: "a.md"},
			{ID: "src-1/b.md", Name: "b.md"},
		},
	}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"document", "list"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "src-1/a.md")
	assert.Contains(t, buf.String(), "Total: 2 documents")
}

func TestDocumentListCmd_BySource(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	documentService = &mockDocumentService{
		documents: []domain.Document{{ID: "src-1/a.md", Name: "a.md"}},
	}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"document", "list", "src-1"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Documents for source src-1")
}

func TestDocumentListCmd_Empty(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	documentService = &mockDocumentService{}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"document", "list"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "No documents indexed.")
}

// Document Get Tests

func TestDocumentGetCmd_RequiresExactlyOneArg(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"document", "get"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
}

func TestDocumentGetCmd_ShowsDocument(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	documentService = &mockDocumentService{
		document: &domain.Document{
			ID:         "src-1/a.md",
			SourceID:   "src-1",
			Name:       "a.md",
			ModifiedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
			CreatedAt:  time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC),
			UpdatedAt:  time.Date(2025, 6, 3, 12, 0, 0, 0, time.UTC),
		},
	}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"document", "get", "src-1/a.md"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Name:     a.md")
	assert.Contains(t, buf.String(), "Source:   src-1")
	assert.Contains(t, buf.String(), "2025-06-01")
}

// Document Content Tests

func TestDocumentContentCmd_PrintsContent(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	documentService = &mockDocumentService{
		document: &domain.Document{ID: "doc-1", Content: "full document text"},
	}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"document", "content", "doc-1"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "full document text")
}

// Document Details Tests

func TestDocumentDetailsCmd_ShowsDetails(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	documentService = &mockDocumentService{
		details: &driving.DocumentDetails{
			ID:         "src-1/a.md",
			SourceID:   "src-1",
			Name:       "a.md",
			ChunkCount: 4,
			CreatedAt:  time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC),
			UpdatedAt:  time.Date(2025, 6, 3, 12, 0, 0, 0, time.UTC),
		},
	}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"document", "details", "src-1/a.md"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Chunks:      4")
	assert.Contains(t, buf.String(), "Source ID:   src-1")
}

// Service Not Configured Tests

func TestDocumentCmds_ServiceNotConfigured(t *testing.T) {
	oldService := documentService
	documentService = nil
	defer func() {
		documentService = oldService
	}()

	for _, args := range [][]string{
		{"document", "list"},
		{"document", "get", "doc-1"},
		{"document", "content", "doc-1"},
		{"document", "details", "doc-1"},
	} {
		buf := new(bytes.Buffer)
		rootCmd.SetOut(buf)
		rootCmd.SetErr(buf)
		rootCmd.SetArgs(args)

		err := rootCmd.Execute()
		rootCmd.SetArgs(nil)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "not configured")
	}
}
