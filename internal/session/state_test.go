package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/pastforward-api/internal/domain"
	"github.com/phrazzld/pastforward-api/internal/store"
)

// fakeMirror implements store.SessionStore with in-memory recording.
type fakeMirror struct {
	mu        sync.Mutex
	created   []*domain.Session
	updates   []mirrorUpdate
	createErr error
	updateErr error
	getErr    error
	sessions  map[uuid.UUID]*domain.Session

	// updateHook, when set, runs at the start of every UpdateItem call,
	// outside the fake's lock. Used to slow down selected writes.
	updateHook func(item domain.GenerationItem)
}

type mirrorUpdate struct {
	sessionID uuid.UUID
	decade    domain.Decade
	item      domain.GenerationItem
}

func newFakeMirror() *fakeMirror {
	return &fakeMirror{sessions: make(map[uuid.UUID]*domain.Session)}
}

func (f *fakeMirror) CreateSession(_ context.Context, sess *domain.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, sess.Clone())
	f.sessions[sess.ID] = sess.Clone()
	return nil
}

func (f *fakeMirror) GetSession(_ context.Context, id uuid.UUID) (*domain.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	sess, ok := f.sessions[id]
	if !ok {
		return nil, store.ErrSessionNotFound
	}
	return sess.Clone(), nil
}

func (f *fakeMirror) UpdateItem(_ context.Context, id uuid.UUID, decade domain.Decade, item domain.GenerationItem) error {
	if f.updateHook != nil {
		f.updateHook(item)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updates = append(f.updates, mirrorUpdate{sessionID: id, decade: decade, item: item})
	return nil
}

// lastUpdateFor returns the most recent mirrored item for the decade.
func (f *fakeMirror) lastUpdateFor(decade domain.Decade) (domain.GenerationItem, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.updates) - 1; i >= 0; i-- {
		if f.updates[i].decade == decade {
			return f.updates[i].item, true
		}
	}
	return domain.GenerationItem{}, false
}

func (f *fakeMirror) updateCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.updates)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testSource() domain.SourceImage {
	return domain.SourceImage{MIMEType: "image/jpeg", Data: []byte("selfie-bytes")}
}

func doneItem(t *testing.T) domain.GenerationItem {
	t.Helper()
	item := domain.NewGenerationItem()
	item.Status = domain.ImageStatusDone
	item.Result = domain.SourceImage{MIMEType: "image/png", Data: []byte("generated")}
	require.NoError(t, item.Validate())
	return item
}

func TestStartSession(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("memory only", func(t *testing.T) {
		t.Parallel()
		s, err := NewStateStore(testLogger(), nil)
		require.NoError(t, err)

		sess, err := s.StartSession(ctx, testSource(), domain.Decades())
		require.NoError(t, err)
		assert.Len(t, sess.Items, 12)
		for _, item := range sess.Items {
			assert.Equal(t, domain.ImageStatusPending, item.Status)
			assert.Equal(t, domain.FacetStatusIdle, item.VideoStatus)
			assert.Equal(t, domain.FacetStatusIdle, item.AudioStatus)
		}
	})

	t.Run("writes through to mirror", func(t *testing.T) {
		t.Parallel()
		mirror := newFakeMirror()
		s, err := NewStateStore(testLogger(), mirror)
		require.NoError(t, err)

		sess, err := s.StartSession(ctx, testSource(), []domain.Decade{domain.Decade1900s})
		require.NoError(t, err)

		require.Len(t, mirror.created, 1)
		assert.Equal(t, sess.ID, mirror.created[0].ID)
	})

	t.Run("mirror failure fails the call", func(t *testing.T) {
		t.Parallel()
		mirror := newFakeMirror()
		mirror.createErr = errors.New("connection refused")
		s, err := NewStateStore(testLogger(), mirror)
		require.NoError(t, err)

		sess, err := s.StartSession(ctx, testSource(), []domain.Decade{domain.Decade1900s})
		assert.Error(t, err)
		assert.Nil(t, sess)
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		t.Parallel()
		s, err := NewStateStore(testLogger(), nil)
		require.NoError(t, err)

		_, err = s.StartSession(ctx, domain.SourceImage{}, []domain.Decade{domain.Decade1900s})
		assert.Error(t, err)

		_, err = s.StartSession(ctx, testSource(), nil)
		assert.ErrorIs(t, err, domain.ErrNoDecades)
	})
}

func TestGet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("returns independent snapshots", func(t *testing.T) {
		t.Parallel()
		s, err := NewStateStore(testLogger(), nil)
		require.NoError(t, err)

		sess, err := s.StartSession(ctx, testSource(), []domain.Decade{domain.Decade1950s})
		require.NoError(t, err)

		snap, err := s.Get(ctx, sess.ID)
		require.NoError(t, err)

		// Mutating the snapshot must not touch stored state.
		item := snap.Items[domain.Decade1950s]
		item.Status = domain.ImageStatusError
		item.ErrorMessage = "mutated"
		snap.Items[domain.Decade1950s] = item

		again, err := s.Get(ctx, sess.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.ImageStatusPending, again.Items[domain.Decade1950s].Status)
	})

	t.Run("unknown session", func(t *testing.T) {
		t.Parallel()
		s, err := NewStateStore(testLogger(), nil)
		require.NoError(t, err)

		_, err = s.Get(ctx, uuid.New())
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})

	t.Run("recovers from mirror after restart", func(t *testing.T) {
		t.Parallel()
		mirror := newFakeMirror()

		first, err := NewStateStore(testLogger(), mirror)
		require.NoError(t, err)
		sess, err := first.StartSession(ctx, testSource(), []domain.Decade{domain.Decade1980s})
		require.NoError(t, err)

		// A fresh state store simulates a process restart.
		second, err := NewStateStore(testLogger(), mirror)
		require.NoError(t, err)

		recovered, err := second.Get(ctx, sess.ID)
		require.NoError(t, err)
		assert.Equal(t, sess.ID, recovered.ID)
		assert.Contains(t, recovered.Items, domain.Decade1980s)
	})

	t.Run("unknown session with mirror", func(t *testing.T) {
		t.Parallel()
		s, err := NewStateStore(testLogger(), newFakeMirror())
		require.NoError(t, err)

		_, err = s.Get(ctx, uuid.New())
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})
}

func TestUpdate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("commits and returns the new item", func(t *testing.T) {
		t.Parallel()
		s, err := NewStateStore(testLogger(), nil)
		require.NoError(t, err)

		sess, err := s.StartSession(ctx, testSource(), []domain.Decade{domain.Decade1950s})
		require.NoError(t, err)

		updated, err := s.Update(ctx, sess.ID, domain.Decade1950s, func(item *domain.GenerationItem) error {
			item.Status = domain.ImageStatusDone
			item.Result = domain.SourceImage{MIMEType: "image/png", Data: []byte("generated")}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, domain.ImageStatusDone, updated.Status)

		snap, err := s.Get(ctx, sess.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.ImageStatusDone, snap.Items[domain.Decade1950s].Status)
	})

	t.Run("mutator error aborts without committing", func(t *testing.T) {
		t.Parallel()
		mirror := newFakeMirror()
		s, err := NewStateStore(testLogger(), mirror)
		require.NoError(t, err)

		sess, err := s.StartSession(ctx, testSource(), []domain.Decade{domain.Decade1950s})
		require.NoError(t, err)

		guard := errors.New("already pending")
		_, err = s.Update(ctx, sess.ID, domain.Decade1950s, func(item *domain.GenerationItem) error {
			item.Status = domain.ImageStatusError
			return guard
		})
		assert.ErrorIs(t, err, guard)

		snap, err := s.Get(ctx, sess.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.ImageStatusPending, snap.Items[domain.Decade1950s].Status)
		s.Wait()
		assert.Zero(t, mirror.updateCount())
	})

	t.Run("invariant violation aborts", func(t *testing.T) {
		t.Parallel()
		s, err := NewStateStore(testLogger(), nil)
		require.NoError(t, err)

		sess, err := s.StartSession(ctx, testSource(), []domain.Decade{domain.Decade1950s})
		require.NoError(t, err)

		// done without a result violates the item invariants
		_, err = s.Update(ctx, sess.ID, domain.Decade1950s, func(item *domain.GenerationItem) error {
			item.Status = domain.ImageStatusDone
			return nil
		})
		assert.ErrorIs(t, err, domain.ErrDoneWithoutResult)

		snap, err := s.Get(ctx, sess.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.ImageStatusPending, snap.Items[domain.Decade1950s].Status)
	})

	t.Run("mirrors committed updates in the background", func(t *testing.T) {
		t.Parallel()
		mirror := newFakeMirror()
		s, err := NewStateStore(testLogger(), mirror)
		require.NoError(t, err)

		sess, err := s.StartSession(ctx, testSource(), []domain.Decade{domain.Decade1950s})
		require.NoError(t, err)

		done := doneItem(t)
		_, err = s.Update(ctx, sess.ID, domain.Decade1950s, func(item *domain.GenerationItem) error {
			*item = done
			return nil
		})
		require.NoError(t, err)

		s.Wait()
		require.Equal(t, 1, mirror.updateCount())
		assert.Equal(t, sess.ID, mirror.updates[0].sessionID)
		assert.Equal(t, domain.Decade1950s, mirror.updates[0].decade)
		assert.Equal(t, domain.ImageStatusDone, mirror.updates[0].item.Status)
	})

	t.Run("mirror failure does not affect memory state", func(t *testing.T) {
		t.Parallel()
		mirror := newFakeMirror()
		s, err := NewStateStore(testLogger(), mirror)
		require.NoError(t, err)

		sess, err := s.StartSession(ctx, testSource(), []domain.Decade{domain.Decade1950s})
		require.NoError(t, err)

		mirror.mu.Lock()
		mirror.updateErr = errors.New("connection reset")
		mirror.mu.Unlock()

		done := doneItem(t)
		_, err = s.Update(ctx, sess.ID, domain.Decade1950s, func(item *domain.GenerationItem) error {
			*item = done
			return nil
		})
		require.NoError(t, err)
		s.Wait()

		snap, err := s.Get(ctx, sess.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.ImageStatusDone, snap.Items[domain.Decade1950s].Status)
	})

	t.Run("unknown decade", func(t *testing.T) {
		t.Parallel()
		s, err := NewStateStore(testLogger(), nil)
		require.NoError(t, err)

		sess, err := s.StartSession(ctx, testSource(), []domain.Decade{domain.Decade1950s})
		require.NoError(t, err)

		_, err = s.Update(ctx, sess.ID, domain.Decade1990s, func(*domain.GenerationItem) error { return nil })
		assert.ErrorIs(t, err, domain.ErrMissingItem)
	})

	t.Run("unknown session", func(t *testing.T) {
		t.Parallel()
		s, err := NewStateStore(testLogger(), nil)
		require.NoError(t, err)

		_, err = s.Update(ctx, uuid.New(), domain.Decade1950s, func(*domain.GenerationItem) error { return nil })
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})

	t.Run("concurrent updates serialize per session", func(t *testing.T) {
		t.Parallel()
		s, err := NewStateStore(testLogger(), nil)
		require.NoError(t, err)

		sess, err := s.StartSession(ctx, testSource(), []domain.Decade{domain.Decade1950s})
		require.NoError(t, err)

		const writers = 16
		var wg sync.WaitGroup
		for range writers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := s.Update(ctx, sess.ID, domain.Decade1950s, func(item *domain.GenerationItem) error {
					if item.EditError == "" {
						item.EditError = "x"
					} else {
						item.EditError += "x"
					}
					return nil
				})
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		snap, err := s.Get(ctx, sess.ID)
		require.NoError(t, err)
		assert.Len(t, snap.Items[domain.Decade1950s].EditError, writers)
	})
}

func TestMirrorWriteOrdering(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("a slow older write cannot clobber a newer one", func(t *testing.T) {
		t.Parallel()
		mirror := newFakeMirror()
		// Stall every pending-state write so it would land after the done
		// write if writes were unordered.
		mirror.updateHook = func(item domain.GenerationItem) {
			if item.Status == domain.ImageStatusPending {
				time.Sleep(50 * time.Millisecond)
			}
		}

		state, err := NewStateStore(testLogger(), mirror)
		require.NoError(t, err)

		sess, err := state.StartSession(ctx, testSource(), []domain.Decade{domain.Decade1950s})
		require.NoError(t, err)

		done := doneItem(t)
		_, err = state.Update(ctx, sess.ID, domain.Decade1950s, func(item *domain.GenerationItem) error {
			*item = done
			return nil
		})
		require.NoError(t, err)
		state.Wait()

		// Two rapid transitions for the same decade: back to pending, then
		// done again. The mirror must converge on the second commit.
		_, err = state.Update(ctx, sess.ID, domain.Decade1950s, func(item *domain.GenerationItem) error {
			*item = domain.NewGenerationItem()
			return nil
		})
		require.NoError(t, err)
		_, err = state.Update(ctx, sess.ID, domain.Decade1950s, func(item *domain.GenerationItem) error {
			*item = done
			return nil
		})
		require.NoError(t, err)
		state.Wait()

		last, ok := mirror.lastUpdateFor(domain.Decade1950s)
		require.True(t, ok)
		assert.Equal(t, domain.ImageStatusDone, last.Status,
			"mirror must end on the newest committed state")
	})

	t.Run("writes for independent decades still all arrive", func(t *testing.T) {
		t.Parallel()
		mirror := newFakeMirror()
		state, err := NewStateStore(testLogger(), mirror)
		require.NoError(t, err)

		decades := []domain.Decade{domain.Decade1950s, domain.Decade1960s, domain.Decade1970s}
		sess, err := state.StartSession(ctx, testSource(), decades)
		require.NoError(t, err)

		done := doneItem(t)
		for _, d := range decades {
			_, err = state.Update(ctx, sess.ID, d, func(item *domain.GenerationItem) error {
				*item = done
				return nil
			})
			require.NoError(t, err)
		}
		state.Wait()

		for _, d := range decades {
			last, ok := mirror.lastUpdateFor(d)
			require.True(t, ok, string(d))
			assert.Equal(t, domain.ImageStatusDone, last.Status, string(d))
		}
	})
}

func TestWaitReturnsPromptlyWhenIdle(t *testing.T) {
	t.Parallel()

	s, err := NewStateStore(testLogger(), newFakeMirror())
	require.NoError(t, err)

	start := time.Now()
	s.Wait()
	assert.Less(t, time.Since(start), time.Second)
}
