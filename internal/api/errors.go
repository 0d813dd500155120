package api

import (
	"errors"
	"net/http"

	"github.com/phrazzld/pastforward-api/internal/album"
	"github.com/phrazzld/pastforward-api/internal/domain"
	"github.com/phrazzld/pastforward-api/internal/engine"
	"github.com/phrazzld/pastforward-api/internal/generation"
	"github.com/phrazzld/pastforward-api/internal/session"
)

// MapErrorToStatusCode maps service-layer errors to HTTP status codes.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, session.ErrSessionNotFound),
		errors.Is(err, domain.ErrMissingItem):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrGenerationInProgress),
		errors.Is(err, engine.ErrFacetInProgress),
		errors.Is(err, engine.ErrPrimaryNotReady),
		errors.Is(err, album.ErrBatchIncomplete),
		errors.Is(err, album.ErrNothingToExport):
		return http.StatusConflict
	case errors.Is(err, generation.ErrInvalidInput),
		errors.Is(err, domain.ErrUnknownDecade),
		errors.Is(err, domain.ErrInvalidDataURL),
		errors.Is(err, domain.ErrInvalidMimeType),
		errors.Is(err, domain.ErrEmptyImageData),
		errors.Is(err, domain.ErrNoDecades),
		errors.Is(err, domain.ErrDuplicateDecade):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a client-safe message for an error. Guard and
// validation errors carry messages written for users; everything else
// collapses to a generic message so internals never leak.
func GetSafeErrorMessage(err error) string {
	switch code := MapErrorToStatusCode(err); code {
	case http.StatusNotFound, http.StatusConflict, http.StatusBadRequest:
		return err.Error()
	default:
		return "An unexpected error occurred"
	}
}
