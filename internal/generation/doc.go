// Package generation defines the boundary between the engine core and the
// external generative-image service: the capability interfaces the engine
// consumes, the shared error taxonomy for generation failures, and the pure
// prompt-building functions for primary and fallback instructions.
//
// Following the hexagonal architecture pattern, concrete backends live under
// internal/platform (see internal/platform/gemini) and the engine depends
// only on the interfaces declared here.
package generation
