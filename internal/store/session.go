package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/pastforward-api/internal/domain"
)

// SessionStore defines the interface for generation session persistence.
type SessionStore interface {
	// CreateSession saves a new session with its source image and seeded
	// per-decade items.
	// Returns ErrDuplicate if a session with the same ID already exists.
	// Returns ErrInvalidEntity wrapping the validation error if the
	// session is invalid.
	CreateSession(ctx context.Context, session *domain.Session) error

	// GetSession retrieves a session by its unique ID, including all
	// per-decade items.
	// Returns ErrSessionNotFound if the session does not exist.
	GetSession(ctx context.Context, id uuid.UUID) (*domain.Session, error)

	// UpdateItem overwrites the stored state of one decade's item within
	// a session.
	// Returns ErrSessionNotFound if the session does not exist.
	// Returns ErrInvalidEntity wrapping the validation error if the item
	// violates its state invariants.
	UpdateItem(ctx context.Context, sessionID uuid.UUID, decade domain.Decade, item domain.GenerationItem) error
}
