// Package file provides a file-backed implementation of the
// driven.SnapshotStore port. A snapshot is written as three artifacts
// in a single directory: a JSON manifest, a JSONL record file for
// documents and chunks, and a flat little-endian float32 buffer for
// the chunk embeddings.
package file

import (
	"bufio"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/jkkn-ai/assist/internal/core/domain"
	"github.com/jkkn-ai/assist/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.SnapshotStore = (*Store)(nil)

const (
	manifestFile  = "manifest.json"
	documentsFile = "documents.jsonl"
	chunksFile    = "chunks.jsonl"
	vectorsFile   = "vectors.f32"
)

// manifest describes a persisted snapshot. The manifest is written
// last, so a directory without a valid manifest is never loadable.
type manifest struct {
	EmbeddingModel string    `json:"embedding_model"`
	Dimensions     int       `json:"dimensions"`
	Documents      int       `json:"documents"`
	Chunks         int       `json:"chunks"`
	CreatedAt      time.Time `json:"created_at"`
}

// documentRecord is the JSONL form of a domain.Document.
type documentRecord struct {
	ID         string    `json:"id"`
	SourceID   string    `json:"source_id"`
	Name       string    `json:"name"`
	Content    string    `json:"content"`
	ModifiedAt time.Time `json:"modified_at"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// chunkRecord is the JSONL form of a domain.Chunk. The embedding lives
// in the vector buffer, addressed by record order.
type chunkRecord struct {
	ID         string `json:"id"`
	DocumentID string `json:"document_id"`
	Content    string `json:"content"`
	Position   int    `json:"position"`
}

// Store persists index snapshots under a directory on disk.
type Store struct {
	mu  sync.Mutex
	dir string
}

// NewStore creates a snapshot store rooted at dir.
// If dir is empty, defaults to ~/.assist/snapshot.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(home, ".assist", "snapshot")
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, err
	}
	return &Store{dir: dir}, nil
}

// Dir returns the directory the store writes to.
func (s *Store) Dir() string {
	return s.dir
}

// Save persists a snapshot, replacing any previous one. The manifest
// is removed first and written last so a crash mid-save leaves no
// loadable snapshot behind.
func (s *Store) Save(ctx context.Context, snap *driven.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	// Zero dimensions is a lexical-only snapshot: chunks carry no
	// embeddings and the vector buffer stays empty.
	if snap.Dimensions < 0 {
		return fmt.Errorf("invalid snapshot dimensions: %d", snap.Dimensions)
	}

	if err := os.Remove(filepath.Join(s.dir, manifestFile)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove previous manifest: %w", err)
	}

	if err := s.writeDocuments(snap.Documents); err != nil {
		return err
	}
	if err := s.writeChunks(snap.Chunks, snap.Dimensions); err != nil {
		return err
	}

	m := manifest{
		EmbeddingModel: snap.EmbeddingModel,
		Dimensions:     snap.Dimensions,
		Documents:      len(snap.Documents),
		Chunks:         len(snap.Chunks),
		CreatedAt:      snap.CreatedAt,
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(s.dir, manifestFile), data, 0600); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

// Load restores the most recent snapshot.
func (s *Store) Load(ctx context.Context, model string, maxAge time.Duration) (*driven.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(s.dir, manifestFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	var m manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("invalid snapshot manifest: %w", err)
	}

	if m.EmbeddingModel != model {
		return nil, domain.ErrSnapshotMismatch
	}
	if maxAge > 0 && time.Since(m.CreatedAt) > maxAge {
		return nil, domain.ErrSnapshotExpired
	}
	if m.Dimensions < 0 {
		return nil, fmt.Errorf("invalid dimensions in manifest: %d", m.Dimensions)
	}

	docs, err := s.readDocuments()
	if err != nil {
		return nil, err
	}
	chunks, err := s.readChunks(m.Chunks, m.Dimensions)
	if err != nil {
		return nil, err
	}

	return &driven.Snapshot{
		Documents:      docs,
		Chunks:         chunks,
		EmbeddingModel: m.EmbeddingModel,
		Dimensions:     m.Dimensions,
		CreatedAt:      m.CreatedAt,
	}, nil
}

func (s *Store) writeDocuments(docs []domain.Document) error {
	f, err := os.Create(filepath.Join(s.dir, documentsFile))
	if err != nil {
		return fmt.Errorf("failed to create documents file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, d := range docs {
		rec := documentRecord{
			ID:         d.ID,
			SourceID:   d.SourceID,
			Name:       d.Name,
			Content:    d.Content,
			ModifiedAt: d.ModifiedAt,
			CreatedAt:  d.CreatedAt,
			UpdatedAt:  d.UpdatedAt,
		}
		line, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		if _, err := w.Write(line); err != nil {
			return err
		}
		if err := w.WriteByte('\n'); err != nil {
			return err
		}
	}
	return w.Flush()
}

func (s *Store) writeChunks(chunks []domain.Chunk, dims int) error {
	cf, err := os.Create(filepath.Join(s.dir, chunksFile))
	if err != nil {
		return fmt.Errorf("failed to create chunks file: %w", err)
	}
	defer cf.Close()

	vf, err := os.Create(filepath.Join(s.dir, vectorsFile))
	if err != nil {
		return fmt.Errorf("failed to create vectors file: %w", err)
	}
	defer vf.Close()

	cw := bufio.NewWriter(cf)
	vw := bufio.NewWriter(vf)
	for _, c := range chunks {
		if len(c.Embedding) != dims {
			return fmt.Errorf("chunk %s: embedding length %d does not match dimensions %d", c.ID, len(c.Embedding), dims)
		}
		rec := chunkRecord{
			ID:         c.ID,
			DocumentID: c.DocumentID,
			Content:    c.Content,
			Position:   c.Position,
		}
		line, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		if _, err := cw.Write(line); err != nil {
			return err
		}
		if err := cw.WriteByte('\n'); err != nil {
			return err
		}
		if err := binary.Write(vw, binary.LittleEndian, c.Embedding); err != nil {
			return fmt.Errorf("failed to write embedding for chunk %s: %w", c.ID, err)
		}
	}
	if err := cw.Flush(); err != nil {
		return err
	}
	return vw.Flush()
}

func (s *Store) readDocuments() ([]domain.Document, error) {
	f, err := os.Open(filepath.Join(s.dir, documentsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to open documents file: %w", err)
	}
	defer f.Close()

	var docs []domain.Document
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec documentRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, fmt.Errorf("invalid document record: %w", err)
		}
		docs = append(docs, domain.Document{
			ID:         rec.ID,
			SourceID:   rec.SourceID,
			Name:       rec.Name,
			Content:    rec.Content,
			ModifiedAt: rec.ModifiedAt,
			CreatedAt:  rec.CreatedAt,
			UpdatedAt:  rec.UpdatedAt,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read documents file: %w", err)
	}
	return docs, nil
}

func (s *Store) readChunks(count, dims int) ([]domain.Chunk, error) {
	vectors, err := s.readVectors(count, dims)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(filepath.Join(s.dir, chunksFile))
	if err != nil {
		return nil, fmt.Errorf("failed to open chunks file: %w", err)
	}
	defer f.Close()

	var chunks []domain.Chunk
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec chunkRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, fmt.Errorf("invalid chunk record: %w", err)
		}
		i := len(chunks)
		if i >= count {
			return nil, fmt.Errorf("chunk count exceeds manifest: got more than %d", count)
		}
		var embedding []float32
		if dims > 0 {
			embedding = vectors[i*dims : (i+1)*dims]
		}
		chunks = append(chunks, domain.Chunk{
			ID:         rec.ID,
			DocumentID: rec.DocumentID,
			Content:    rec.Content,
			Position:   rec.Position,
			Embedding:  embedding,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read chunks file: %w", err)
	}
	if len(chunks) != count {
		return nil, fmt.Errorf("chunk count mismatch: manifest says %d, file has %d", count, len(chunks))
	}
	return chunks, nil
}

func (s *Store) readVectors(count, dims int) ([]float32, error) {
	path := filepath.Join(s.dir, vectorsFile)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open vectors file: %w", err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, err
	}
	want := int64(count) * int64(dims) * 4
	if st.Size() != want {
		return nil, fmt.Errorf("vectors file size mismatch: got %d bytes, want %d", st.Size(), want)
	}

	vectors := make([]float32, count*dims)
	if err := binary.Read(bufio.NewReader(f), binary.LittleEndian, vectors); err != nil {
		return nil, fmt.Errorf("failed to read vectors: %w", err)
	}
	return vectors, nil
}
