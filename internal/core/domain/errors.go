package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedFormat indicates a file format no extractor handles.
	// Per-document and non-fatal: the ingestion sweep continues.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrCorruptFile indicates a file whose bytes could not be extracted.
	// Per-document and non-fatal: the ingestion sweep continues.
	ErrCorruptFile = errors.New("corrupt file")

	// ErrSweepInProgress indicates an ingestion sweep is already running.
	// Overlapping triggers are coalesced, not queued.
	ErrSweepInProgress = errors.New("ingestion sweep in progress")

	// ErrIndexInconsistent indicates the dense and lexical index
	// generations diverged. Fatal to the affected generation; a full
	// rebuild is required before results may be served again.
	ErrIndexInconsistent = errors.New("index generations inconsistent")

	// ErrGeneration indicates the external answer composer failed
	// (rate limit, timeout, malformed output).
	ErrGeneration = errors.New("answer generation failed")

	// ErrSnapshotExpired indicates a persisted index snapshot is older
	// than its configured lifetime and must not be loaded.
	ErrSnapshotExpired = errors.New("snapshot expired")

	// ErrSnapshotMismatch indicates a snapshot was produced by a
	// different embedding model and cannot serve the current index.
	ErrSnapshotMismatch = errors.New("snapshot model mismatch")

	// ErrEmbeddingUnavailable indicates the embedding service is not
	// configured. Dense retrieval is disabled without embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrComposerUnavailable indicates the answer composer is not
	// configured. Ask degrades to returning raw retrieved context.
	ErrComposerUnavailable = errors.New("answer composer unavailable")

	// ErrUnsupportedType indicates an unknown connector or extractor type.
	ErrUnsupportedType = errors.New("unsupported type")
)
