// Package store provides SQLite-backed durable storage for machine
// documents.
//
// The store is an append-only revision log:
//   - Save appends a revision when the document changed, and is a no-op
//     when its content hash equals the latest revision's
//   - Latest, Revision and History read revisions back
//   - Names lists every stored machine
//
// # Critical Patterns
//
// Content identity:
//   - Bodies are stored as canonical JSON (sorted keys, NFC strings)
//   - content_hash is ir.DocumentHash over the canonical body, so
//     formatting differences never create a revision
//
// Deterministic ordering:
//   - seq INTEGER PRIMARY KEY orders revisions
//   - All queries use ORDER BY seq ASC; created_at is informational only
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
