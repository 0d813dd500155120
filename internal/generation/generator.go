package generation

import (
	"context"

	"github.com/phrazzld/pastforward-api/internal/domain"
)

// AspectRatio constrains video generation to the supported orientations.
type AspectRatio string

// Supported video aspect ratios.
const (
	AspectPortrait  AspectRatio = "9:16"
	AspectLandscape AspectRatio = "16:9"
)

// Valid reports whether the ratio is one of the supported orientations.
func (a AspectRatio) Valid() bool {
	return a == AspectPortrait || a == AspectLandscape
}

// ImageGenerator produces a restyled image from a source photo and an
// instruction prompt. Implementations own transient-failure retries; the
// fallback-prompt escalation is a caller concern (see internal/engine).
type ImageGenerator interface {
	// GenerateImage sends the source image and prompt to the backend and
	// returns the generated image.
	//
	// Returns ErrInvalidInput for a malformed source image,
	// ErrNoImageReturned when the backend answers with text instead of an
	// image (typically a safety-filter rejection), and
	// ErrGenerationExhausted when transient failures survive all retries.
	GenerateImage(ctx context.Context, source domain.SourceImage, prompt string) (domain.SourceImage, error)
}

// ImageEditor applies a user-directed free-text instruction to an existing
// image. Single-shot: no retry and no fallback-prompt path, since there is
// no sensible generic fallback for user-authored instructions.
type ImageEditor interface {
	// EditImage returns the edited image, or ErrEditFailed.
	EditImage(ctx context.Context, source domain.SourceImage, instruction string) (domain.SourceImage, error)
}

// VideoAnimator produces a short animated clip from a completed decade
// image. Implementations poll the backend's long-running operation to
// completion before returning.
type VideoAnimator interface {
	// GenerateVideo returns the video bytes, or ErrVideoGeneration.
	// Credential-class failures are reported as ErrVideoCredential so the
	// caller can prompt for re-authentication instead of retrying.
	GenerateVideo(ctx context.Context, source domain.SourceImage, decade domain.Decade, ratio AspectRatio) ([]byte, error)
}

// AudioNarrator produces a short era-flavored narration for a decade:
// a generated script synthesized to speech with a fixed voice preset.
type AudioNarrator interface {
	// GenerateNarration returns the audio bytes, or ErrAudioGeneration.
	GenerateNarration(ctx context.Context, decade domain.Decade) ([]byte, error)
}
