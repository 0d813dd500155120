package domain

import "errors"

// ImageStatus represents the lifecycle of a decade's primary image.
type ImageStatus string

// Possible primary image status values.
const (
	ImageStatusPending ImageStatus = "pending"
	ImageStatusDone    ImageStatus = "done"
	ImageStatusError   ImageStatus = "error"
)

// FacetStatus represents the lifecycle of a secondary artifact (animated
// video or narrated audio) layered onto a completed image.
type FacetStatus string

// Possible secondary facet status values.
const (
	FacetStatusIdle    FacetStatus = "idle"
	FacetStatusPending FacetStatus = "pending"
	FacetStatusDone    FacetStatus = "done"
	FacetStatusError   FacetStatus = "error"
)

// Common validation errors for GenerationItem.
var (
	ErrInvalidImageStatus  = errors.New("invalid image status")
	ErrInvalidFacetStatus  = errors.New("invalid facet status")
	ErrResultWithoutDone   = errors.New("result image is set but status is not done")
	ErrDoneWithoutResult   = errors.New("status is done but no result image is set")
	ErrMessageWithoutError = errors.New("error message is set but status is not error")
	ErrErrorWithoutMessage = errors.New("status is error but no error message is set")
	ErrFacetBeforePrimary  = errors.New("secondary facet cannot be pending before the primary image is done")
)

// GenerationItem is one decade's generation outcome: the primary image facet
// plus the optional video and audio facets, each with its own status.
//
// Invariants (checked by Validate):
//   - Result is set iff Status is done.
//   - ErrorMessage is set iff Status is error.
//   - A facet may only be pending while the primary image is done.
//
// EditError is a user-facing annotation left behind by a failed edit attempt
// on an otherwise intact done item; it is deliberately separate from
// ErrorMessage so the status invariants hold.
type GenerationItem struct {
	Status       ImageStatus `json:"status"`
	Result       SourceImage `json:"result,omitempty"`
	ErrorMessage string      `json:"error_message,omitempty"`
	EditError    string      `json:"edit_error,omitempty"`

	VideoStatus FacetStatus `json:"video_status"`
	VideoResult []byte      `json:"video_result,omitempty"`
	VideoError  string      `json:"video_error,omitempty"`

	AudioStatus FacetStatus `json:"audio_status"`
	AudioResult []byte      `json:"audio_result,omitempty"`
	AudioError  string      `json:"audio_error,omitempty"`
}

// NewGenerationItem returns the initial state of a batch-seeded item:
// primary image pending, both facets idle.
func NewGenerationItem() GenerationItem {
	return GenerationItem{
		Status:      ImageStatusPending,
		VideoStatus: FacetStatusIdle,
		AudioStatus: FacetStatusIdle,
	}
}

// Terminal reports whether the primary image has reached a terminal state
// for batch-completion purposes.
func (i GenerationItem) Terminal() bool {
	return i.Status == ImageStatusDone || i.Status == ImageStatusError
}

// Validate checks the item's cross-field invariants.
func (i GenerationItem) Validate() error {
	switch i.Status {
	case ImageStatusPending, ImageStatusDone, ImageStatusError:
	default:
		return ErrInvalidImageStatus
	}

	for _, fs := range []FacetStatus{i.VideoStatus, i.AudioStatus} {
		switch fs {
		case FacetStatusIdle, FacetStatusPending, FacetStatusDone, FacetStatusError:
		default:
			return ErrInvalidFacetStatus
		}
	}

	if !i.Result.IsZero() && i.Status != ImageStatusDone {
		return ErrResultWithoutDone
	}
	if i.Status == ImageStatusDone && i.Result.IsZero() {
		return ErrDoneWithoutResult
	}
	if i.ErrorMessage != "" && i.Status != ImageStatusError {
		return ErrMessageWithoutError
	}
	if i.Status == ImageStatusError && i.ErrorMessage == "" {
		return ErrErrorWithoutMessage
	}

	if i.Status != ImageStatusDone &&
		(i.VideoStatus == FacetStatusPending || i.AudioStatus == FacetStatusPending) {
		return ErrFacetBeforePrimary
	}

	return nil
}
