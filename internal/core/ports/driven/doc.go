// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - DocumentStore: Document persistence and snapshot scans (memory or SQLite)
//   - EmbeddingService: Text to vector conversion (hashing or Ollama)
//   - Chunker: Splits long content into overlapping windows
//   - ConfigStore: Application configuration (TOML)
//   - Normaliser: File bytes to indexable text (markdown, HTML, plain text)
//
// The embedding model and the on-disk store format are outside the core;
// both are injected so tests can use deterministic fakes.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or driving package
package driven
