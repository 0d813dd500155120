package engine

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/phrazzld/pastforward-api/internal/config"
	"github.com/phrazzld/pastforward-api/internal/generation"
	"github.com/phrazzld/pastforward-api/internal/session"
)

// Guard errors returned when an operation is requested in a state that
// does not allow it.
var (
	// ErrGenerationInProgress is returned when a regenerate is requested
	// for a decade whose primary image is still pending.
	ErrGenerationInProgress = errors.New("generation is already in progress for this decade")

	// ErrFacetInProgress is returned when a video or audio request targets
	// a facet that is already pending.
	ErrFacetInProgress = errors.New("this decade's request is already in progress")

	// ErrPrimaryNotReady is returned when an edit or facet request targets
	// a decade whose primary image is not done.
	ErrPrimaryNotReady = errors.New("the decade image must be generated first")
)

// Backends groups the generation capabilities the engine drives. A single
// implementation (internal/platform/gemini) normally provides all four.
type Backends struct {
	Generator generation.ImageGenerator
	Editor    generation.ImageEditor
	Animator  generation.VideoAnimator
	Narrator  generation.AudioNarrator
}

// Engine coordinates generation work for sessions.
type Engine struct {
	logger   *slog.Logger
	state    *session.StateStore
	backends Backends
	workers  int

	// wg tracks all background work: batch workers, regenerations, and
	// facet goroutines. Wait drains it on shutdown.
	wg sync.WaitGroup
}

// NewEngine creates an engine over the given state store and generation
// backends.
func NewEngine(logger *slog.Logger, state *session.StateStore, backends Backends, cfg config.EngineConfig) (*Engine, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if state == nil {
		return nil, errors.New("state store cannot be nil")
	}
	if backends.Generator == nil || backends.Editor == nil || backends.Animator == nil || backends.Narrator == nil {
		return nil, errors.New("all generation backends must be provided")
	}
	if cfg.Workers < 1 {
		return nil, errors.New("worker count must be at least 1")
	}

	return &Engine{
		logger:   logger.With(slog.String("component", "engine")),
		state:    state,
		backends: backends,
		workers:  cfg.Workers,
	}, nil
}

// Wait blocks until all background generation work has finished, then
// drains the state store's pending durability writes. Used on shutdown.
func (e *Engine) Wait() {
	e.wg.Wait()
	e.state.Wait()
}

// spawn runs fn in a tracked goroutine with a context detached from the
// request, so client disconnects do not abort in-flight generation.
func (e *Engine) spawn(ctx context.Context, fn func(ctx context.Context)) {
	detached := context.WithoutCancel(ctx)
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		fn(detached)
	}()
}
