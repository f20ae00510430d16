package gdrive

import (
	"context"
	"fmt"
	"io"
	"strings"

	"google.golang.org/api/drive/v3"
)

// Google Workspace MIME types that can be exported.
const (
	MimeTypeGoogleDoc    = "application/vnd.google-apps.document"
	MimeTypeGoogleSheet  = "application/vnd.google-apps.spreadsheet"
	MimeTypeGoogleSlides = "application/vnd.google-apps.presentation"
	MimeTypeFolder       = "application/vnd.google-apps.folder"
)

// Export formats for Google Workspace files.
const (
	ExportMimeText = "text/plain"
	ExportMimeCSV  = "text/csv"
)

// MaxFetchSize is the maximum size for fetched content (5MB).
const MaxFetchSize = 5 * 1024 * 1024

// fetchFileContent retrieves the text content of a file.
// Google Workspace files are exported to a text format; regular files
// are downloaded as-is. Returns (content, mimeType, error) where
// mimeType is the effective type after any export conversion.
func fetchFileContent(ctx context.Context, svc *drive.Service, file *drive.File) ([]byte, string, error) {
	switch file.MimeType {
	case MimeTypeGoogleDoc, MimeTypeGoogleSlides:
		content, err := exportFile(ctx, svc, file.Id, ExportMimeText)
		return content, ExportMimeText, err
	case MimeTypeGoogleSheet:
		content, err := exportFile(ctx, svc, file.Id, ExportMimeCSV)
		return content, ExportMimeCSV, err
	}

	resp, err := svc.Files.Get(file.Id).Context(ctx).Download()
	if err != nil {
		return nil, "", fmt.Errorf("download file: %w", WrapError(err))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxFetchSize))
	if err != nil {
		return nil, "", fmt.Errorf("read file content: %w", err)
	}

	return data, file.MimeType, nil
}

// exportFile exports a Google Workspace file to the specified format.
func exportFile(ctx context.Context, svc *drive.Service, fileID, exportMime string) ([]byte, error) {
	resp, err := svc.Files.Export(fileID, exportMime).Context(ctx).Download()
	if err != nil {
		return nil, fmt.Errorf("export file: %w", WrapError(err))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxFetchSize))
	if err != nil {
		return nil, fmt.Errorf("read export: %w", err)
	}

	return data, nil
}

// isFetchable checks if a file's content can be turned into text.
func isFetchable(mimeType string, size int64) bool {
	switch mimeType {
	case MimeTypeGoogleDoc, MimeTypeGoogleSheet, MimeTypeGoogleSlides:
		return true
	}
	return isTextMIME(mimeType) && size <= MaxFetchSize
}

// isTextMIME checks if a MIME type is likely text content.
func isTextMIME(mimeType string) bool {
	if strings.HasPrefix(mimeType, "text/") {
		return true
	}

	textTypes := []string{
		"application/json",
		"application/xml",
		"application/javascript",
		"application/x-yaml",
		"application/sql",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	}
	for _, t := range textTypes {
		if mimeType == t {
			return true
		}
	}
	return false
}

// shouldSync checks if a file should be synced based on config.
func shouldSync(file *drive.File, cfg *Config) bool {
	if file.MimeType == MimeTypeFolder {
		return false
	}
	if file.Trashed {
		return false
	}

	if len(cfg.MimeTypeFilter) > 0 {
		found := false
		for _, filter := range cfg.MimeTypeFilter {
			if file.MimeType == filter {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	return isFetchable(file.MimeType, file.Size)
}
