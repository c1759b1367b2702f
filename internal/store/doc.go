// Package store persists the per-member streak snapshot.
//
// A snapshot is a map of member ID to signed streak. Every backend offers
// the same two operations:
//   - ReadStreaks: all persisted (member, streak) pairs, empty on first run
//   - WriteStreaks: upsert a batch of pairs; members not in the batch keep
//     their stored value
//
// # Batch Semantics
//
// A write either lands completely or fails. Backends get there with a
// transaction (sqlite, postgres), a single multi-field command (redis) or
// an atomic rename of a fully written file (file).
//
// # Backends
//
//   - file: JSON document on local disk
//   - sqlite: embedded SQLite database (WAL mode)
//   - postgres: hosted PostgreSQL, e.g. Supabase
//   - redis: a single Redis hash
package store
