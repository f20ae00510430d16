// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - Connector: Fetches documents from a document source
//   - ConnectorFactory: Creates connectors from configuration
//   - Normaliser: Extracts text from raw documents
//   - NormaliserRegistry: Selects the appropriate normaliser
//   - DocumentStore: Document and chunk persistence
//   - SourceStore: Source configuration persistence
//   - SyncStateStore: Sweep progress persistence
//   - ConfigStore: Application configuration
//   - SearchEngine: Lexical (TF-IDF) retrieval
//   - AnswerCache: Query answer memoisation
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - VectorIndex: Dense retrieval. Only enabled when EmbeddingService is configured.
//   - EmbeddingService: Generates vector embeddings. Without it, VectorIndex is also disabled.
//   - AnswerComposer: Turns (query, context) into answer text. Without it, Ask returns raw context.
//   - SnapshotStore: Persists index state across restarts.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or normaliser package
package driven
