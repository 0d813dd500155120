// Package album exports a completed session as a single composite album
// image. Composition itself is delegated to an external compositor service
// behind the Assembler interface; this package owns the gating rules that
// decide when a session is ready to export.
package album
