package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/pastforward-api/internal/domain"
	"github.com/phrazzld/pastforward-api/internal/platform/logger"
	"github.com/phrazzld/pastforward-api/internal/store"
)

// PostgresSessionStore implements the store.SessionStore interface
// using a PostgreSQL database as the storage backend.
type PostgresSessionStore struct {
	db store.DBTX
}

// NewPostgresSessionStore creates a new PostgreSQL implementation of the
// SessionStore interface. It accepts a database connection (or transaction)
// that should be initialized and managed by the caller.
func NewPostgresSessionStore(db store.DBTX) *PostgresSessionStore {
	return &PostgresSessionStore{
		db: db,
	}
}

// Ensure PostgresSessionStore implements store.SessionStore
var _ store.SessionStore = (*PostgresSessionStore)(nil)

// CreateSession implements store.SessionStore.CreateSession
func (s *PostgresSessionStore) CreateSession(ctx context.Context, session *domain.Session) error {
	log := logger.FromContext(ctx)

	if session == nil {
		return fmt.Errorf("%w: session cannot be nil", store.ErrInvalidEntity)
	}
	if err := session.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	sourceJSON, err := json.Marshal(session.SourceImage)
	if err != nil {
		return fmt.Errorf("failed to marshal source image: %w", err)
	}
	decadesJSON, err := json.Marshal(session.Decades)
	if err != nil {
		return fmt.Errorf("failed to marshal decades: %w", err)
	}
	itemsJSON, err := json.Marshal(session.Items)
	if err != nil {
		return fmt.Errorf("failed to marshal items: %w", err)
	}

	query := `
		INSERT INTO sessions (id, created_at, source_image, decades, items)
		VALUES ($1, $2, $3, $4, $5)
	`

	createdAt := session.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err = s.db.ExecContext(ctx, query,
		session.ID,
		createdAt,
		sourceJSON,
		decadesJSON,
		itemsJSON,
	)
	if err != nil {
		log.Error("failed to save session",
			"session_id", session.ID,
			"error", err)
		return MapError(err)
	}

	return nil
}

// GetSession implements store.SessionStore.GetSession
func (s *PostgresSessionStore) GetSession(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	log := logger.FromContext(ctx)

	query := `
		SELECT id, created_at, source_image, decades, items
		FROM sessions
		WHERE id = $1
	`

	var (
		session     domain.Session
		sourceJSON  []byte
		decadesJSON []byte
		itemsJSON   []byte
	)

	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&session.ID,
		&session.CreatedAt,
		&sourceJSON,
		&decadesJSON,
		&itemsJSON,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrSessionNotFound
		}
		log.Error("failed to load session",
			"session_id", id,
			"error", err)
		return nil, MapError(err)
	}

	if err := json.Unmarshal(sourceJSON, &session.SourceImage); err != nil {
		return nil, fmt.Errorf("failed to unmarshal source image: %w", err)
	}
	if err := json.Unmarshal(decadesJSON, &session.Decades); err != nil {
		return nil, fmt.Errorf("failed to unmarshal decades: %w", err)
	}
	if err := json.Unmarshal(itemsJSON, &session.Items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal items: %w", err)
	}

	return &session, nil
}

// UpdateItem implements store.SessionStore.UpdateItem. Only the one
// decade's entry in the items column is replaced.
func (s *PostgresSessionStore) UpdateItem(
	ctx context.Context,
	sessionID uuid.UUID,
	decade domain.Decade,
	item domain.GenerationItem,
) error {
	log := logger.FromContext(ctx)

	if err := item.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	itemJSON, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("failed to marshal item: %w", err)
	}

	query := `
		UPDATE sessions
		SET items = jsonb_set(items, $2, $3::jsonb)
		WHERE id = $1
	`

	// jsonb_set takes the path as a text array.
	path := fmt.Sprintf("{%s}", decade)

	result, err := s.db.ExecContext(ctx, query, sessionID, path, itemJSON)
	if err != nil {
		log.Error("failed to update session item",
			"session_id", sessionID,
			"decade", string(decade),
			"error", err)
		return MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return store.ErrSessionNotFound
	}

	return nil
}
