package engine

import (
	"errors"

	"github.com/phrazzld/pastforward-api/internal/generation"
)

// User-facing failure messages recorded on items. Raw backend error text is
// logged but never stored here, so nothing internal leaks to clients.
const (
	msgSafetyRejected   = "The model couldn't create an image, possibly due to safety filters. Try a different photo or decade."
	msgBothPromptsFail  = "Generation failed after multiple attempts. Please try again later or with a different photo."
	msgServiceExhausted = "The image service is temporarily unavailable. Please try again in a moment."
	msgEditFailed       = "The edit could not be applied. Try rephrasing the instruction."
	msgVideoFailed      = "The video could not be generated for this decade. Please try again."
	msgVideoCredential  = "The video service rejected the application's credentials. Please try again after re-authenticating."
	msgAudioFailed      = "The narration could not be generated for this decade. Please try again."
	msgUnknown          = "An unexpected error occurred during generation. Please try again."
)

// userMessage maps a generation failure to the message stored on the item.
// More specific sentinels are checked first: ErrGenerationFailed wraps the
// fallback attempt's error, so it must win over the classes it contains.
func userMessage(err error) string {
	switch {
	case errors.Is(err, generation.ErrGenerationFailed):
		return msgBothPromptsFail
	case errors.Is(err, generation.ErrNoImageReturned):
		return msgSafetyRejected
	case errors.Is(err, generation.ErrGenerationExhausted):
		return msgServiceExhausted
	case errors.Is(err, generation.ErrEditFailed):
		return msgEditFailed
	case errors.Is(err, generation.ErrVideoCredential):
		return msgVideoCredential
	case errors.Is(err, generation.ErrVideoGeneration):
		return msgVideoFailed
	case errors.Is(err, generation.ErrAudioGeneration):
		return msgAudioFailed
	default:
		return msgUnknown
	}
}
