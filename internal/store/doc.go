// Package store is the persistent key-value layer beneath the replica,
// queue, and session. It wraps a single SQLite database in WAL mode and
// exposes typed accessors for the four persisted keys plus the dead-letter
// table.
//
// Atomicity contract: every Put runs in its own transaction, so a crash
// mid-write never leaves a partially visible snapshot. Keys are independent;
// callers that need multi-key consistency persist in program order and rely
// on the replica snapshot being self-contained.
package store
