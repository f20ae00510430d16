// Package gdrive provides a connector that ingests documents from a
// Google Drive folder. It authenticates with a service account key,
// exports Google Workspace files to plain text and throttles API
// requests to stay inside Drive quotas.
package gdrive

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/jkkn-ai/assist/internal/core/domain"
	"github.com/jkkn-ai/assist/internal/core/ports/driven"
)

// Ensure Connector implements the interface.
var _ driven.Connector = (*Connector)(nil)

// listFields are the file attributes requested on every listing call.
const listFields = "nextPageToken, files(id, name, mimeType, size, trashed, modifiedTime)"

// Connector reads documents from a Google Drive folder.
type Connector struct {
	sourceID string
	cfg      *Config
	limiter  *RateLimiter

	mu  sync.Mutex
	svc *drive.Service
}

// New creates a Drive connector for the given source.
func New(source domain.Source) (*Connector, error) {
	cfg, err := ParseConfig(source)
	if err != nil {
		return nil, err
	}

	return &Connector{
		sourceID: source.ID,
		cfg:      cfg,
		limiter:  NewRateLimiter(),
	}, nil
}

// Type returns the connector type identifier.
func (c *Connector) Type() string {
	return domain.ConnectorTypeDrive
}

// SourceID returns the configured source ID.
func (c *Connector) SourceID() string {
	return c.sourceID
}

// Capabilities returns what this connector supports.
func (c *Connector) Capabilities() driven.ConnectorCapabilities {
	return driven.ConnectorCapabilities{
		SupportsWatch:        false,
		SupportsValidation:   true,
		SupportsRateLimiting: true,
	}
}

// Validate checks the credentials are usable and the folder is visible.
func (c *Connector) Validate(ctx context.Context) error {
	svc, err := c.service(ctx)
	if err != nil {
		return err
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	_, err = svc.Files.Get(c.cfg.FolderID).
		Fields("id").
		SupportsAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("checking folder %s: %w", c.cfg.FolderID, WrapError(err))
	}
	return nil
}

// FullSync lists the configured folder and emits every syncable file.
// Per-file fetch failures go on the error channel and do not stop the
// sweep.
func (c *Connector) FullSync(ctx context.Context) (<-chan domain.RawDocument, <-chan error) {
	docs := make(chan domain.RawDocument)
	errs := make(chan error, 1)

	go func() {
		defer close(docs)
		defer close(errs)

		svc, err := c.service(ctx)
		if err != nil {
			errs <- err
			return
		}

		query := fmt.Sprintf("'%s' in parents and trashed = false", c.cfg.FolderID)
		pageToken := ""
		for {
			if err := c.limiter.Wait(ctx); err != nil {
				return
			}

			call := svc.Files.List().
				Q(query).
				Fields(listFields).
				PageSize(c.cfg.MaxResults).
				SupportsAllDrives(true).
				IncludeItemsFromAllDrives(true).
				Context(ctx)
			if pageToken != "" {
				call = call.PageToken(pageToken)
			}

			page, err := call.Do()
			if err != nil {
				wrapped := WrapError(err)
				if IsRateLimited(wrapped) {
					c.limiter.RecordRateLimitError(0)
				}
				errs <- fmt.Errorf("listing folder %s: %w", c.cfg.FolderID, wrapped)
				return
			}

			for _, file := range page.Files {
				if !shouldSync(file, c.cfg) {
					continue
				}

				doc, err := c.fetch(ctx, svc, file)
				if err != nil {
					errs <- err
					continue
				}

				select {
				case docs <- doc:
				case <-ctx.Done():
					return
				}
			}

			pageToken = page.NextPageToken
			if pageToken == "" {
				return
			}
		}
	}()

	return docs, errs
}

// Watch is not available: Drive change feeds need a push notification
// endpoint, which a local tool does not have. Sweeps cover updates.
func (c *Connector) Watch(_ context.Context) (<-chan domain.RawDocumentChange, error) {
	return nil, ErrWatchUnsupported
}

// Close releases resources.
func (c *Connector) Close() error {
	return nil
}

// fetch downloads a file's content and builds a RawDocument.
func (c *Connector) fetch(ctx context.Context, svc *drive.Service, file *drive.File) (domain.RawDocument, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return domain.RawDocument{}, err
	}

	content, mimeType, err := fetchFileContent(ctx, svc, file)
	if err != nil {
		if IsRateLimited(err) {
			c.limiter.RecordRateLimitError(0)
		}
		return domain.RawDocument{}, fmt.Errorf("fetching %s: %w", file.Name, err)
	}

	modifiedAt, _ := time.Parse(time.RFC3339, file.ModifiedTime)

	return domain.RawDocument{
		SourceID:   c.sourceID,
		ID:         file.Id,
		Name:       file.Name,
		MIMEType:   mimeType,
		Content:    content,
		ModifiedAt: modifiedAt,
	}, nil
}

// service lazily builds the Drive API client from the service account
// key. The client is cached for the connector's lifetime.
func (c *Connector) service(ctx context.Context) (*drive.Service, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.svc != nil {
		return c.svc, nil
	}

	key, err := os.ReadFile(c.cfg.CredentialsPath)
	if err != nil {
		return nil, fmt.Errorf("reading credentials file: %w", err)
	}

	creds, err := google.CredentialsFromJSON(ctx, key, drive.DriveReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("parsing credentials: %w", err)
	}

	svc, err := drive.NewService(ctx, option.WithTokenSource(creds.TokenSource))
	if err != nil {
		return nil, fmt.Errorf("creating drive service: %w", err)
	}

	c.svc = svc
	return svc, nil
}
