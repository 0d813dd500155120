// Package gemini implements the generation capability interfaces against
// Google's Gemini API using the google.golang.org/genai SDK: image
// generation with retry and backoff, single-shot image editing, two-stage
// audio narration (script, then text-to-speech), and long-running video
// generation with status polling.
//
// The raw SDK sits behind narrow internal interfaces (see seams.go) so that
// tests can substitute fakes without network access.
package gemini
