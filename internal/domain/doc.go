// Package domain contains the core entities of the decade-generation
// engine: decades and their style registry, source image payloads,
// per-decade generation items with their facet state machines, and the
// session that groups one source photo with all of its results.
//
// Entities are created through New* constructors that validate their
// invariants, and expose Validate methods for re-checking data loaded
// from external storage.
package domain
