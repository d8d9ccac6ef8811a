// Package queue persists work items and their script submissions in SQLite
// and exposes helpers for driving the item lifecycle.
//
// The Store manages database connections, schema initialization, stats
// queries, and the status transitions pending -> in-progress -> completed.
// Claim and complete are conditional updates guarded by the previous status
// at the database layer, so concurrent clients racing for the same item
// resolve to exactly one winner. Script versions append inside the mutation
// transaction and form a dense 1..N sequence per item, enforced by a unique
// index.
//
// Treat this package as the single source of truth for queue semantics; when
// you add statuses or fields, update schema.sql and bump schemaVersion.
package queue
