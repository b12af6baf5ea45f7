// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
//   - IndexService: chunk, embed and store content
//   - SearchService: similarity retrieval with priority and recency ranking
//   - ContextService: token-budgeted prompt context
//   - SettingsService: presets and persisted configuration
//
// Services are pure Go with no CGO. Stores and embedders are injected,
// so every service can be exercised with in-memory fakes.
package services
