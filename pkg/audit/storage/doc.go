// Package storage provides persistence backends for audits, responses,
// review teams, and findings.
//
// The Store interface is the engine's only view of persistence. Two
// implementations are provided:
//
//   - Memory: in-memory maps, intended for tests and ephemeral tooling
//   - SQLite: embedded database for single-node deployments (WAL mode,
//     prepared statements, busy timeout)
//
// All backends are safe for concurrent use. Serialization of check-then-act
// sequences on a single audit is the engine's responsibility (see
// pkg/audit/engine); the store only guarantees that individual operations
// are atomic.
//
// Responses and sub-responses are upserts keyed by (audit, question): the
// engine recomputes the score after every write, so applying the same write
// twice is idempotent by construction.
package storage
