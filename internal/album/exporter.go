package album

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/pastforward-api/internal/domain"
	"github.com/phrazzld/pastforward-api/internal/session"
)

// Export gating errors.
var (
	// ErrBatchIncomplete is returned while any requested decade has not
	// reached a terminal state. Partial albums are never exported.
	ErrBatchIncomplete = errors.New("album export requires every decade to finish first")

	// ErrNothingToExport is returned when the batch finished but no decade
	// produced an image.
	ErrNothingToExport = errors.New("no images were successfully generated to create an album")
)

// Exporter assembles a finished session's successful decade images into an
// album.
type Exporter struct {
	logger    *slog.Logger
	state     *session.StateStore
	assembler Assembler
}

// NewExporter creates an exporter over the session state and an assembler.
func NewExporter(logger *slog.Logger, state *session.StateStore, assembler Assembler) (*Exporter, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if state == nil {
		return nil, errors.New("state store cannot be nil")
	}
	if assembler == nil {
		return nil, errors.New("assembler cannot be nil")
	}
	return &Exporter{
		logger:    logger.With(slog.String("component", "album_exporter")),
		state:     state,
		assembler: assembler,
	}, nil
}

// Export composes the album for a session. The session must be complete:
// every requested decade terminal, otherwise ErrBatchIncomplete. Decades
// that failed are skipped; if nothing succeeded, ErrNothingToExport. The
// assembler receives every done decade's image, so the export is always
// all-or-nothing with respect to successful results.
func (e *Exporter) Export(ctx context.Context, sessionID uuid.UUID) (Artifact, error) {
	sess, err := e.state.Get(ctx, sessionID)
	if err != nil {
		return Artifact{}, err
	}

	if !sess.Complete() {
		return Artifact{}, fmt.Errorf("%w: %d of %d decades finished",
			ErrBatchIncomplete, sess.CompletedCount(), len(sess.Decades))
	}

	images := make(map[domain.Decade]string)
	for _, d := range sess.Decades {
		item := sess.Items[d]
		if item.Status == domain.ImageStatusDone {
			images[d] = item.Result.DataURL()
		}
	}
	if len(images) == 0 {
		return Artifact{}, ErrNothingToExport
	}

	e.logger.InfoContext(ctx, "exporting album",
		"session_id", sessionID,
		"image_count", len(images))

	artifact, err := e.assembler.CreateAlbum(ctx, images)
	if err != nil {
		return Artifact{}, fmt.Errorf("failed to export album: %w", err)
	}
	return artifact, nil
}
