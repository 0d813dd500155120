package generation

import "errors"

// Common errors returned across generation backends. The engine classifies
// failures with errors.Is against these sentinels, so backends must wrap
// them rather than invent parallel types.
var (
	// ErrInvalidInput is returned for a malformed source image or
	// instruction. Fails fast, never retried.
	ErrInvalidInput = errors.New("invalid generation input")

	// ErrNoImageReturned is returned when the service answers with text
	// instead of inline image data, the signature of a policy/safety
	// rejection. Triggers the fallback-prompt escalation exactly once.
	ErrNoImageReturned = errors.New("model responded with text instead of an image")

	// ErrGenerationExhausted is returned when a transient service failure
	// survives all retry attempts.
	ErrGenerationExhausted = errors.New("generation failed after all retries")

	// ErrGenerationFailed is returned when both the primary and the
	// fallback prompt attempts have failed for a decade.
	ErrGenerationFailed = errors.New("generation failed with both primary and fallback prompts")

	// ErrEditFailed is returned when a single-shot image edit fails.
	ErrEditFailed = errors.New("image edit failed")

	// ErrAudioGeneration is returned when either the script or the speech
	// synthesis stage of narration produces no usable payload.
	ErrAudioGeneration = errors.New("audio narration failed")

	// ErrVideoGeneration is returned when video generation reports no
	// output or the content fetch fails.
	ErrVideoGeneration = errors.New("video generation failed")

	// ErrVideoCredential is the credential-class variant of video failure,
	// distinguished so callers can prompt for re-authentication rather
	// than retrying.
	ErrVideoCredential = errors.New("video generation rejected the API credentials")

	// ErrInvalidConfig is returned when a backend's configuration is
	// invalid at construction time.
	ErrInvalidConfig = errors.New("invalid generation backend configuration")
)
