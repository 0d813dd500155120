// Package store defines the persistence interfaces for generation sessions
// and the common error values returned by their implementations. Concrete
// backends live under internal/platform (see internal/platform/postgres).
//
// Persistence is a durability mirror: the in-memory state in
// internal/session remains authoritative while a session is live, and the
// store records the same state so completed work survives a process
// restart.
package store
