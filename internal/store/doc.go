// Package store provides SQLite-backed records of compiled queries.
//
// A run is one `docq record` invocation. Each compilation in a run stores
// the canonical query definition, the canonical compiled document and its
// content hash, or the error kind when the compiler rejected the query.
// Replay recompiles the stored definitions and compares hashes, which
// catches any change in compiler output between builds.
//
// # Ordering
//
//   - Compilations are ordered by seq within a run, never by timestamps
//   - Run IDs are UUIDv7, so ordering by ID is ordering by creation
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Source IDs and output hashes are computed by internal/ir using canonical
// JSON and SHA-256 with domain separation.
package store
