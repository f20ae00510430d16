// Package filesystem provides a connector that ingests documents from
// a local directory tree. It supports full sweeps and real-time change
// notification via fsnotify.
package filesystem

import (
	"context"
	"fmt"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/jkkn-ai/assist/internal/core/domain"
	"github.com/jkkn-ai/assist/internal/core/ports/driven"
)

// Ensure Connector implements the interface.
var _ driven.Connector = (*Connector)(nil)

// extensionMIMETypes covers common plain-text extensions that
// mime.TypeByExtension does not know on all platforms.
var extensionMIMETypes = map[string]string{
	".txt":  "text/plain",
	".md":   "text/markdown",
	".csv":  "text/csv",
	".go":   "text/x-go",
	".py":   "text/x-python",
	".json": "application/json",
	".yaml": "application/yaml",
	".yml":  "application/yaml",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// Connector reads documents from a directory tree.
type Connector struct {
	sourceID string
	rootPath string
	watcher  *fsnotify.Watcher
}

// New creates a filesystem connector rooted at rootPath.
func New(sourceID, rootPath string) *Connector {
	return &Connector{
		sourceID: sourceID,
		rootPath: rootPath,
	}
}

// Type returns the connector type identifier.
func (c *Connector) Type() string {
	return domain.ConnectorTypeFilesystem
}

// SourceID returns the configured source ID.
func (c *Connector) SourceID() string {
	return c.sourceID
}

// Capabilities returns what this connector supports.
func (c *Connector) Capabilities() driven.ConnectorCapabilities {
	return driven.ConnectorCapabilities{
		SupportsWatch:        true,
		SupportsValidation:   true,
		SupportsRateLimiting: false,
	}
}

// Validate checks the root path exists and is a readable directory.
func (c *Connector) Validate(_ context.Context) error {
	info, err := os.Stat(c.rootPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("path %s does not exist", c.rootPath)
		}
		return fmt.Errorf("cannot access path %s: %w", c.rootPath, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path %s is not a directory", c.rootPath)
	}
	if _, err := os.ReadDir(c.rootPath); err != nil {
		return fmt.Errorf("cannot read directory %s: %w", c.rootPath, err)
	}
	return nil
}

// FullSync walks the directory tree and emits every visible file.
// Hidden files and directories (dot-prefixed) are skipped. Per-file
// read failures go on the error channel and do not stop the walk.
func (c *Connector) FullSync(ctx context.Context) (<-chan domain.RawDocument, <-chan error) {
	docs := make(chan domain.RawDocument)
	errs := make(chan error, 1)

	go func() {
		defer close(docs)
		defer close(errs)

		if err := c.Validate(ctx); err != nil {
			errs <- err
			return
		}

		walkErr := filepath.WalkDir(c.rootPath, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				errs <- fmt.Errorf("walking %s: %w", path, err)
				return nil
			}
			if err := ctx.Err(); err != nil {
				return err
			}

			if isHidden(d.Name()) && path != c.rootPath {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				return nil
			}

			doc, err := c.readFile(path)
			if err != nil {
				errs <- err
				return nil
			}

			select {
			case docs <- doc:
			case <-ctx.Done():
				return ctx.Err()
			}
			return nil
		})
		if walkErr != nil && ctx.Err() == nil {
			errs <- walkErr
		}
	}()

	return docs, errs
}

// Watch emits change events for the directory tree.
// Subdirectories created after the watch starts are added to the
// watcher as they appear.
func (c *Connector) Watch(ctx context.Context) (<-chan domain.RawDocumentChange, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	c.watcher = watcher

	// Watch the root and all existing subdirectories
	err = filepath.WalkDir(c.rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if isHidden(d.Name()) && path != c.rootPath {
				return filepath.SkipDir
			}
			return watcher.Add(path)
		}
		return nil
	})
	if err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watching %s: %w", c.rootPath, err)
	}

	changes := make(chan domain.RawDocumentChange)
	go func() {
		defer close(changes)
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				change, ok := c.toChange(event, watcher)
				if !ok {
					continue
				}
				select {
				case changes <- change:
				case <-ctx.Done():
					return
				}
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	return changes, nil
}

// Close releases the watcher if one is active.
func (c *Connector) Close() error {
	if c.watcher != nil {
		return c.watcher.Close()
	}
	return nil
}

// toChange maps an fsnotify event to a document change.
// Returns false for events that should be ignored.
func (c *Connector) toChange(event fsnotify.Event, watcher *fsnotify.Watcher) (domain.RawDocumentChange, bool) {
	if isHidden(filepath.Base(event.Name)) {
		return domain.RawDocumentChange{}, false
	}

	switch {
	case event.Has(fsnotify.Create):
		info, err := os.Stat(event.Name)
		if err != nil {
			return domain.RawDocumentChange{}, false
		}
		if info.IsDir() {
			_ = watcher.Add(event.Name)
			return domain.RawDocumentChange{}, false
		}
		doc, err := c.readFile(event.Name)
		if err != nil {
			return domain.RawDocumentChange{}, false
		}
		return domain.RawDocumentChange{Type: domain.ChangeCreated, Document: doc}, true

	case event.Has(fsnotify.Write):
		doc, err := c.readFile(event.Name)
		if err != nil {
			return domain.RawDocumentChange{}, false
		}
		return domain.RawDocumentChange{Type: domain.ChangeUpdated, Document: doc}, true

	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		return domain.RawDocumentChange{
			Type: domain.ChangeDeleted,
			Document: domain.RawDocument{
				SourceID: c.sourceID,
				ID:       event.Name,
				Name:     filepath.Base(event.Name),
			},
		}, true
	}

	return domain.RawDocumentChange{}, false
}

// readFile builds a RawDocument from a file on disk.
func (c *Connector) readFile(path string) (domain.RawDocument, error) {
	info, err := os.Stat(path)
	if err != nil {
		return domain.RawDocument{}, fmt.Errorf("stat %s: %w", path, err)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return domain.RawDocument{}, fmt.Errorf("reading %s: %w", path, err)
	}

	return domain.RawDocument{
		SourceID:   c.sourceID,
		ID:         path,
		Name:       filepath.Base(path),
		MIMEType:   mimeTypeFor(path),
		Content:    content,
		ModifiedAt: info.ModTime(),
	}, nil
}

// mimeTypeFor detects a file's MIME type from its extension.
// Unknown extensions default to application/octet-stream.
func mimeTypeFor(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if mimeType, ok := extensionMIMETypes[ext]; ok {
		return mimeType
	}
	if mimeType := mime.TypeByExtension(ext); mimeType != "" {
		// Strip charset parameters for stable registry lookups
		if i := strings.Index(mimeType, ";"); i >= 0 {
			mimeType = strings.TrimSpace(mimeType[:i])
		}
		return mimeType
	}
	return "application/octet-stream"
}

// isHidden reports whether a file or directory name is dot-prefixed.
func isHidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}
