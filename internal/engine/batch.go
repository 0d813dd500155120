package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/phrazzld/pastforward-api/internal/domain"
	"github.com/phrazzld/pastforward-api/internal/generation"
)

// StartBatch creates a session for the source photo and requested decades
// and begins generating every decade's primary image in the background.
// The returned snapshot shows every item pending; callers poll the session
// to observe progress. Session creation itself (including the synchronous
// durability write) is the only hard failure; individual decade failures
// are recorded on their items.
func (e *Engine) StartBatch(ctx context.Context, source domain.SourceImage, decades []domain.Decade) (*domain.Session, error) {
	sess, err := e.state.StartSession(ctx, source, decades)
	if err != nil {
		return nil, fmt.Errorf("failed to start batch: %w", err)
	}

	e.logger.InfoContext(ctx, "batch started",
		"session_id", sess.ID,
		"decade_count", len(sess.Decades),
		"workers", e.workers)

	e.spawn(ctx, func(ctx context.Context) {
		e.runBatch(ctx, sess.ID, sess.SourceImage, sess.Decades)
	})
	return sess, nil
}

// runBatch fans the decades out over a bounded worker pool. Decades are
// queued in request order; with fewer workers than decades the earlier
// decades start first.
func (e *Engine) runBatch(ctx context.Context, sessionID uuid.UUID, source domain.SourceImage, decades []domain.Decade) {
	queue := make(chan domain.Decade, len(decades))
	for _, d := range decades {
		queue <- d
	}
	close(queue)

	workers := min(e.workers, len(decades))
	done := make(chan struct{})
	for range workers {
		go func() {
			defer func() { done <- struct{}{} }()
			for decade := range queue {
				e.processDecade(ctx, sessionID, source, decade)
			}
		}()
	}
	for range workers {
		<-done
	}

	e.logger.InfoContext(ctx, "batch finished", "session_id", sessionID)
}

// processDecade generates one decade's primary image and commits the
// outcome. The primary prompt is tried first; if the service answers with
// text instead of an image, the simpler fallback prompt is tried exactly
// once before the decade is marked failed.
func (e *Engine) processDecade(ctx context.Context, sessionID uuid.UUID, source domain.SourceImage, decade domain.Decade) {
	img, err := e.generateWithFallback(ctx, source, decade)
	if err != nil {
		e.logger.ErrorContext(ctx, "decade generation failed",
			"session_id", sessionID,
			"decade", string(decade),
			"error", err)
		e.commitFailure(ctx, sessionID, decade, err)
		return
	}

	_, uerr := e.state.Update(ctx, sessionID, decade, func(item *domain.GenerationItem) error {
		item.Status = domain.ImageStatusDone
		item.Result = img
		item.ErrorMessage = ""
		return nil
	})
	if uerr != nil {
		e.logger.ErrorContext(ctx, "failed to commit decade result",
			"session_id", sessionID,
			"decade", string(decade),
			"error", uerr)
	}
}

// generateWithFallback runs the primary-then-fallback prompt policy.
func (e *Engine) generateWithFallback(ctx context.Context, source domain.SourceImage, decade domain.Decade) (domain.SourceImage, error) {
	prompt, err := generation.PrimaryPrompt(decade, decade.StyleHint())
	if err != nil {
		return domain.SourceImage{}, err
	}

	img, err := e.backends.Generator.GenerateImage(ctx, source, prompt)
	if err == nil {
		return img, nil
	}
	if !errors.Is(err, generation.ErrNoImageReturned) {
		return domain.SourceImage{}, err
	}

	e.logger.WarnContext(ctx, "primary prompt rejected, trying fallback",
		"decade", string(decade))

	fallback, ferr := generation.FallbackPrompt(decade, decade.StyleHint())
	if ferr != nil {
		return domain.SourceImage{}, ferr
	}
	img, ferr = e.backends.Generator.GenerateImage(ctx, source, fallback)
	if ferr != nil {
		return domain.SourceImage{}, fmt.Errorf("%w: %v (primary: %v)", generation.ErrGenerationFailed, ferr, err)
	}
	return img, nil
}

// commitFailure records a decade failure with its user-facing message.
func (e *Engine) commitFailure(ctx context.Context, sessionID uuid.UUID, decade domain.Decade, cause error) {
	_, err := e.state.Update(ctx, sessionID, decade, func(item *domain.GenerationItem) error {
		item.Status = domain.ImageStatusError
		item.Result = domain.SourceImage{}
		item.ErrorMessage = userMessage(cause)
		return nil
	})
	if err != nil {
		e.logger.ErrorContext(ctx, "failed to commit decade failure",
			"session_id", sessionID,
			"decade", string(decade),
			"error", err)
	}
}
