// Package session holds the authoritative in-memory state for generation
// sessions. All reads and writes of per-decade item state go through the
// StateStore, which serializes mutations per session, enforces the item
// state invariants on every commit, and mirrors committed state to a
// persistent store when one is configured.
package session
