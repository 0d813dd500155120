package engine

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/phrazzld/pastforward-api/internal/domain"
	"github.com/phrazzld/pastforward-api/internal/generation"
)

// Regenerate discards one decade's current outcome and generates it again
// with the same prompt policy as the batch. It returns immediately after
// flipping the item back to pending; progress is observed by polling.
// Returns ErrGenerationInProgress if the decade is already pending. Any
// previously generated video, audio, or edit annotation is discarded, since
// it belonged to the replaced image.
func (e *Engine) Regenerate(ctx context.Context, sessionID uuid.UUID, decade domain.Decade) error {
	sess, err := e.state.Get(ctx, sessionID)
	if err != nil {
		return err
	}

	_, err = e.state.Update(ctx, sessionID, decade, func(item *domain.GenerationItem) error {
		if item.Status == domain.ImageStatusPending {
			return ErrGenerationInProgress
		}
		*item = domain.NewGenerationItem()
		return nil
	})
	if err != nil {
		return err
	}

	e.logger.InfoContext(ctx, "regeneration started",
		"session_id", sessionID,
		"decade", string(decade))

	source := sess.SourceImage
	e.spawn(ctx, func(ctx context.Context) {
		e.processDecade(ctx, sessionID, source, decade)
	})
	return nil
}

// ApplyEdit applies a free-text instruction to a completed decade image and
// returns the updated item. The edit runs synchronously: on success the
// result image is replaced and any previous facets are reset, since they
// animated or narrated the replaced image. On failure the item is restored
// with its image intact and the failure is recorded as an annotation.
//
// While the edit is in flight the item is held pending, so a concurrent
// regenerate, edit, animate, or narrate on the same decade is rejected
// instead of racing the commit.
func (e *Engine) ApplyEdit(ctx context.Context, sessionID uuid.UUID, decade domain.Decade, instruction string) (domain.GenerationItem, error) {
	var source domain.SourceImage
	var prev domain.GenerationItem
	_, err := e.state.Update(ctx, sessionID, decade, func(item *domain.GenerationItem) error {
		if item.Status == domain.ImageStatusPending {
			return ErrGenerationInProgress
		}
		if item.Status != domain.ImageStatusDone {
			return ErrPrimaryNotReady
		}
		if item.VideoStatus == domain.FacetStatusPending || item.AudioStatus == domain.FacetStatusPending {
			return ErrFacetInProgress
		}
		prev = *item
		source = item.Result
		*item = domain.NewGenerationItem()
		return nil
	})
	if err != nil {
		return domain.GenerationItem{}, err
	}

	edited, editErr := e.backends.Editor.EditImage(ctx, source, instruction)
	if editErr != nil {
		e.logger.ErrorContext(ctx, "edit failed",
			"session_id", sessionID,
			"decade", string(decade),
			"error", editErr)

		item, uerr := e.state.Update(ctx, sessionID, decade, func(item *domain.GenerationItem) error {
			*item = prev
			item.EditError = userMessage(editErr)
			return nil
		})
		if uerr != nil {
			return domain.GenerationItem{}, uerr
		}
		return item, fmt.Errorf("edit failed: %w", editErr)
	}

	item, err := e.state.Update(ctx, sessionID, decade, func(item *domain.GenerationItem) error {
		item.Status = domain.ImageStatusDone
		item.Result = edited
		item.ErrorMessage = ""
		item.EditError = ""
		item.VideoStatus = domain.FacetStatusIdle
		item.VideoResult = nil
		item.VideoError = ""
		item.AudioStatus = domain.FacetStatusIdle
		item.AudioResult = nil
		item.AudioError = ""
		return nil
	})
	if err != nil {
		return domain.GenerationItem{}, err
	}
	return item, nil
}

// Animate starts generating a short video clip from a completed decade
// image. It returns once the video facet is pending; the clip lands on the
// item when polling finishes. Returns ErrPrimaryNotReady if the decade's
// image is not done and ErrFacetInProgress if a clip is already being
// generated.
func (e *Engine) Animate(ctx context.Context, sessionID uuid.UUID, decade domain.Decade, ratio generation.AspectRatio) error {
	if !ratio.Valid() {
		return fmt.Errorf("%w: unsupported aspect ratio %q", generation.ErrInvalidInput, ratio)
	}

	var source domain.SourceImage
	_, err := e.state.Update(ctx, sessionID, decade, func(item *domain.GenerationItem) error {
		if item.Status != domain.ImageStatusDone {
			return ErrPrimaryNotReady
		}
		if item.VideoStatus == domain.FacetStatusPending {
			return ErrFacetInProgress
		}
		source = item.Result
		item.VideoStatus = domain.FacetStatusPending
		item.VideoResult = nil
		item.VideoError = ""
		return nil
	})
	if err != nil {
		return err
	}

	e.logger.InfoContext(ctx, "video generation started",
		"session_id", sessionID,
		"decade", string(decade),
		"aspect_ratio", string(ratio))

	e.spawn(ctx, func(ctx context.Context) {
		data, genErr := e.backends.Animator.GenerateVideo(ctx, source, decade, ratio)
		e.commitFacet(ctx, sessionID, decade, facetVideo, data, genErr)
	})
	return nil
}

// Narrate starts generating the audio narration for a completed decade
// image. Behaves like Animate: pending immediately, result by polling.
func (e *Engine) Narrate(ctx context.Context, sessionID uuid.UUID, decade domain.Decade) error {
	_, err := e.state.Update(ctx, sessionID, decade, func(item *domain.GenerationItem) error {
		if item.Status != domain.ImageStatusDone {
			return ErrPrimaryNotReady
		}
		if item.AudioStatus == domain.FacetStatusPending {
			return ErrFacetInProgress
		}
		item.AudioStatus = domain.FacetStatusPending
		item.AudioResult = nil
		item.AudioError = ""
		return nil
	})
	if err != nil {
		return err
	}

	e.logger.InfoContext(ctx, "narration started",
		"session_id", sessionID,
		"decade", string(decade))

	e.spawn(ctx, func(ctx context.Context) {
		data, genErr := e.backends.Narrator.GenerateNarration(ctx, decade)
		e.commitFacet(ctx, sessionID, decade, facetAudio, data, genErr)
	})
	return nil
}

type facetKind int

const (
	facetVideo facetKind = iota
	facetAudio
)

// commitFacet records the outcome of a background facet generation.
func (e *Engine) commitFacet(ctx context.Context, sessionID uuid.UUID, decade domain.Decade, kind facetKind, data []byte, cause error) {
	_, err := e.state.Update(ctx, sessionID, decade, func(item *domain.GenerationItem) error {
		switch kind {
		case facetVideo:
			if cause != nil {
				item.VideoStatus = domain.FacetStatusError
				item.VideoError = userMessage(cause)
				return nil
			}
			item.VideoStatus = domain.FacetStatusDone
			item.VideoResult = data
		case facetAudio:
			if cause != nil {
				item.AudioStatus = domain.FacetStatusError
				item.AudioError = userMessage(cause)
				return nil
			}
			item.AudioStatus = domain.FacetStatusDone
			item.AudioResult = data
		}
		return nil
	})
	if err != nil {
		e.logger.ErrorContext(ctx, "failed to commit facet outcome",
			"session_id", sessionID,
			"decade", string(decade),
			"error", err)
	}
	if cause != nil {
		e.logger.ErrorContext(ctx, "facet generation failed",
			"session_id", sessionID,
			"decade", string(decade),
			"error", cause)
	}
}
