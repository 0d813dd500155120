package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/pastforward-api/internal/album"
	"github.com/phrazzld/pastforward-api/internal/api/shared"
	"github.com/phrazzld/pastforward-api/internal/domain"
	"github.com/phrazzld/pastforward-api/internal/engine"
	"github.com/phrazzld/pastforward-api/internal/generation"
	"github.com/phrazzld/pastforward-api/internal/platform/logger"
	"github.com/phrazzld/pastforward-api/internal/session"
)

// SessionHandler handles session-related HTTP requests.
type SessionHandler struct {
	engine   *engine.Engine
	state    *session.StateStore
	exporter *album.Exporter
	logger   *slog.Logger
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(
	eng *engine.Engine,
	state *session.StateStore,
	exporter *album.Exporter,
	logger *slog.Logger,
) *SessionHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for SessionHandler")
	}
	return &SessionHandler{
		engine:   eng,
		state:    state,
		exporter: exporter,
		logger:   logger.With(slog.String("component", "session_handler")),
	}
}

// Routes mounts the session endpoints on a router.
func (h *SessionHandler) Routes(r chi.Router) {
	r.Post("/sessions", h.CreateSession)
	r.Get("/sessions/{id}", h.GetSession)
	r.Get("/sessions/{id}/album", h.ExportAlbum)
	r.Post("/sessions/{id}/decades/{decade}/regenerate", h.RegenerateDecade)
	r.Post("/sessions/{id}/decades/{decade}/edit", h.EditDecade)
	r.Post("/sessions/{id}/decades/{decade}/animate", h.AnimateDecade)
	r.Post("/sessions/{id}/decades/{decade}/narrate", h.NarrateDecade)
}

// CreateSession handles POST /sessions. The body carries the source photo
// as a data URL plus an optional decade list. Responds 202 Accepted with
// the all-pending snapshot; generation continues in the background.
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req CreateSessionRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation failed: image is required")
		return
	}

	source, err := domain.ParseDataURL(req.Image)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest,
			"The image must be a base64 data URL with an image mime type", err)
		return
	}

	decades := domain.Decades()
	if len(req.Decades) > 0 {
		decades = decades[:0]
		for _, raw := range req.Decades {
			d, perr := domain.ParseDecade(raw)
			if perr != nil {
				shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest,
					"Unknown decade: "+strconv.Quote(raw), perr)
				return
			}
			decades = append(decades, d)
		}
	}

	sess, err := h.engine.StartBatch(r.Context(), source, decades)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Info("session created",
		slog.String("session_id", sess.ID.String()),
		slog.Int("decade_count", len(decades)))
	shared.RespondWithJSON(w, r, http.StatusAccepted, sessionToResponse(sess))
}

// GetSession handles GET /sessions/{id}. Clients poll this endpoint to
// observe batch progress and facet completion.
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	sess, err := h.state.Get(r.Context(), id)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, sessionToResponse(sess))
}

// RegenerateDecade handles POST /sessions/{id}/decades/{decade}/regenerate.
// Responds 202 Accepted once the decade is pending again, or 409 Conflict
// if a generation for it is already in flight.
func (h *SessionHandler) RegenerateDecade(w http.ResponseWriter, r *http.Request) {
	id, decade, ok := h.sessionDecade(w, r)
	if !ok {
		return
	}

	if err := h.engine.Regenerate(r.Context(), id, decade); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusAccepted, map[string]string{
		"status": string(domain.ImageStatusPending),
	})
}

// EditDecade handles POST /sessions/{id}/decades/{decade}/edit. The edit
// runs synchronously. A rejected edit still responds 200: the image is
// intact and the response item carries the failure as edit_error.
func (h *SessionHandler) EditDecade(w http.ResponseWriter, r *http.Request) {
	id, decade, ok := h.sessionDecade(w, r)
	if !ok {
		return
	}

	var req EditRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation failed: instruction is required")
		return
	}

	item, err := h.engine.ApplyEdit(r.Context(), id, decade, req.Instruction)
	if err != nil && !errors.Is(err, generation.ErrEditFailed) {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, itemToResponse(item))
}

// AnimateDecade handles POST /sessions/{id}/decades/{decade}/animate. The
// body is optional; the aspect ratio defaults to portrait. Responds 202
// Accepted once the video facet is pending.
func (h *SessionHandler) AnimateDecade(w http.ResponseWriter, r *http.Request) {
	id, decade, ok := h.sessionDecade(w, r)
	if !ok {
		return
	}

	ratio := generation.AspectPortrait
	var req AnimateRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		// An empty body means "use the default ratio"; anything else that
		// fails to decode is a client error.
		if !errors.Is(err, io.EOF) {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
			return
		}
	} else if req.AspectRatio != "" {
		if err := shared.ValidateRequest(req); err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Unsupported aspect ratio")
			return
		}
		ratio = generation.AspectRatio(req.AspectRatio)
	}

	if err := h.engine.Animate(r.Context(), id, decade, ratio); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusAccepted, map[string]string{
		"video_status": string(domain.FacetStatusPending),
	})
}

// NarrateDecade handles POST /sessions/{id}/decades/{decade}/narrate.
// Responds 202 Accepted once the audio facet is pending.
func (h *SessionHandler) NarrateDecade(w http.ResponseWriter, r *http.Request) {
	id, decade, ok := h.sessionDecade(w, r)
	if !ok {
		return
	}

	if err := h.engine.Narrate(r.Context(), id, decade); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusAccepted, map[string]string{
		"audio_status": string(domain.FacetStatusPending),
	})
}

// ExportAlbum handles GET /sessions/{id}/album. Responds with the composed
// album bytes, 409 Conflict while the batch is incomplete or produced
// nothing exportable.
func (h *SessionHandler) ExportAlbum(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	if h.exporter == nil {
		shared.RespondWithError(w, r, http.StatusServiceUnavailable, "Album export is not configured")
		return
	}

	artifact, err := h.exporter.Export(r.Context(), id)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	w.Header().Set("Content-Type", artifact.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="past-forward-album.jpg"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(artifact.Data); err != nil {
		h.logger.Error("failed to write album response", "error", err)
	}
}

// sessionID parses the {id} route parameter, responding 400 on failure.
func (h *SessionHandler) sessionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid session ID")
		return uuid.Nil, false
	}
	return id, true
}

// sessionDecade parses the {id} and {decade} route parameters.
func (h *SessionHandler) sessionDecade(w http.ResponseWriter, r *http.Request) (uuid.UUID, domain.Decade, bool) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return uuid.Nil, "", false
	}
	decade, err := domain.ParseDecade(chi.URLParam(r, "decade"))
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest,
			"Unknown decade: "+strconv.Quote(chi.URLParam(r, "decade")), err)
		return uuid.Nil, "", false
	}
	return id, decade, true
}
