// Package engine orchestrates generation work against a session: the
// initial per-decade batch fan-out over a bounded worker pool, single-decade
// regeneration, user-directed image edits, and the secondary video and
// audio facets. All state transitions go through the session state store,
// which enforces the item invariants; the engine owns the prompt escalation
// policy and the translation of backend failures into user-facing messages.
package engine
