package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/pastforward-api/internal/domain"
	"github.com/phrazzld/pastforward-api/internal/store"
)

// ErrSessionNotFound is returned when no session exists for the given ID.
var ErrSessionNotFound = errors.New("session not found")

// mirrorTimeout bounds each background durability write.
const mirrorTimeout = 30 * time.Second

// StateStore holds live session state in memory and serializes all
// mutations per session. When a mirror store is configured, session
// creation is written through synchronously and item updates are mirrored
// in the background, so durability never blocks or fails a generation
// operation after the batch has started.
type StateStore struct {
	logger *slog.Logger
	mirror store.SessionStore // nil disables persistence

	mu       sync.RWMutex
	sessions map[uuid.UUID]*sessionState

	// mirrorWG tracks in-flight background mirror writes.
	mirrorWG sync.WaitGroup
}

// sessionState pairs a session with the mutex that serializes its updates.
type sessionState struct {
	mu      sync.Mutex
	session *domain.Session

	// mirrorMu serializes this session's background mirror writes.
	// mirrorSeq numbers commits per decade (guarded by mu, with the
	// commit itself); mirrorApplied records the newest sequence handed to
	// the mirror (guarded by mirrorMu), so a slow older write is dropped
	// instead of clobbering a newer one.
	mirrorMu      sync.Mutex
	mirrorSeq     map[domain.Decade]uint64
	mirrorApplied map[domain.Decade]uint64
}

func newSessionState(sess *domain.Session) *sessionState {
	return &sessionState{
		session:       sess,
		mirrorSeq:     make(map[domain.Decade]uint64),
		mirrorApplied: make(map[domain.Decade]uint64),
	}
}

// NewStateStore creates a state store. The mirror may be nil, in which case
// sessions live only in memory.
func NewStateStore(logger *slog.Logger, mirror store.SessionStore) (*StateStore, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	return &StateStore{
		logger:   logger.With(slog.String("component", "session_state")),
		mirror:   mirror,
		sessions: make(map[uuid.UUID]*sessionState),
	}, nil
}

// StartSession creates a new session for the source photo and requested
// decades, with every item seeded to pending. When a mirror is configured
// the create is written through synchronously: a persistence failure here
// fails the whole call and leaves no in-memory session behind.
func (s *StateStore) StartSession(ctx context.Context, source domain.SourceImage, decades []domain.Decade) (*domain.Session, error) {
	sess, err := domain.NewSession(source, decades)
	if err != nil {
		return nil, err
	}

	if s.mirror != nil {
		if err := s.mirror.CreateSession(ctx, sess); err != nil {
			return nil, fmt.Errorf("failed to persist session: %w", err)
		}
	}

	s.mu.Lock()
	s.sessions[sess.ID] = newSessionState(sess)
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "session started",
		"session_id", sess.ID,
		"decade_count", len(decades))
	return sess.Clone(), nil
}

// Get returns a deep-copy snapshot of the session. Sessions absent from
// memory are recovered from the mirror when one is configured, so completed
// work remains readable after a restart.
func (s *StateStore) Get(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	if state := s.lookup(id); state != nil {
		state.mu.Lock()
		defer state.mu.Unlock()
		return state.session.Clone(), nil
	}

	if s.mirror == nil {
		return nil, ErrSessionNotFound
	}

	sess, err := s.mirror.GetSession(ctx, id)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	s.mu.Lock()
	// Another goroutine may have recovered it concurrently; keep the first.
	if existing, ok := s.sessions[id]; ok {
		s.mu.Unlock()
		existing.mu.Lock()
		defer existing.mu.Unlock()
		return existing.session.Clone(), nil
	}
	s.sessions[id] = newSessionState(sess)
	s.mu.Unlock()

	return sess.Clone(), nil
}

// Update applies fn to one decade's item under the session lock. The
// mutator receives a copy of the current item; an error from fn aborts the
// update entirely and nothing is committed or mirrored. On success the new
// item is validated, committed, mirrored in the background, and returned.
func (s *StateStore) Update(
	ctx context.Context,
	id uuid.UUID,
	decade domain.Decade,
	fn func(item *domain.GenerationItem) error,
) (domain.GenerationItem, error) {
	state := s.lookup(id)
	if state == nil {
		// Recover through Get so restarts do not orphan mirror-only sessions.
		if _, err := s.Get(ctx, id); err != nil {
			return domain.GenerationItem{}, err
		}
		state = s.lookup(id)
		if state == nil {
			return domain.GenerationItem{}, ErrSessionNotFound
		}
	}

	state.mu.Lock()
	defer state.mu.Unlock()

	current, ok := state.session.Items[decade]
	if !ok {
		return domain.GenerationItem{}, fmt.Errorf("%w: %s", domain.ErrMissingItem, decade)
	}

	next := current
	if err := fn(&next); err != nil {
		return domain.GenerationItem{}, err
	}
	if err := next.Validate(); err != nil {
		return domain.GenerationItem{}, fmt.Errorf("update rejected: %w", err)
	}

	state.session.Items[decade] = next
	state.mirrorSeq[decade]++
	s.mirrorItem(ctx, state, id, decade, next, state.mirrorSeq[decade])
	return next, nil
}

// Wait blocks until all in-flight background mirror writes have finished.
// Used on shutdown so committed state reaches the mirror before exit.
func (s *StateStore) Wait() {
	s.mirrorWG.Wait()
}

func (s *StateStore) lookup(id uuid.UUID) *sessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessions[id]
}

// mirrorItem writes one committed item to the mirror in the background.
// Writes for a session are serialized and sequenced per decade in commit
// order: a write whose sequence is older than the newest one already handed
// to the mirror is dropped, so two rapid transitions for the same decade
// cannot land in the mirror reversed. Failures are logged and do not affect
// the in-memory state: the memory copy stays authoritative for the life of
// the process.
func (s *StateStore) mirrorItem(
	ctx context.Context,
	state *sessionState,
	id uuid.UUID,
	decade domain.Decade,
	item domain.GenerationItem,
	seq uint64,
) {
	if s.mirror == nil {
		return
	}

	// Detach from the request context so an aborted request cannot cancel
	// the durability write, but keep its values for logging.
	base := context.WithoutCancel(ctx)
	s.mirrorWG.Add(1)
	go func() {
		defer s.mirrorWG.Done()

		state.mirrorMu.Lock()
		defer state.mirrorMu.Unlock()
		if seq <= state.mirrorApplied[decade] {
			// A newer commit for this decade already reached the mirror.
			return
		}
		state.mirrorApplied[decade] = seq

		mctx, cancel := context.WithTimeout(base, mirrorTimeout)
		defer cancel()
		if err := s.mirror.UpdateItem(mctx, id, decade, item); err != nil {
			s.logger.ErrorContext(mctx, "failed to mirror item update",
				"session_id", id,
				"decade", string(decade),
				"error", err)
		}
	}()
}
