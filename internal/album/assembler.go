package album

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/pastforward-api/internal/domain"
)

// ErrAlbumFailed is returned when the compositor cannot produce the album.
var ErrAlbumFailed = errors.New("album assembly failed")

// Artifact is the composed album returned by the compositor. Opaque to this
// package beyond its content type.
type Artifact struct {
	ContentType string `json:"content_type"`
	Data        []byte `json:"data"`
}

// Assembler composes a set of decade images into one album artifact.
type Assembler interface {
	// CreateAlbum posts the decade-to-image mapping (data URLs) and
	// returns the composed artifact, or ErrAlbumFailed.
	CreateAlbum(ctx context.Context, images map[domain.Decade]string) (Artifact, error)
}

// HTTPAssembler implements Assembler against an external compositor
// endpoint. The endpoint receives the image mapping as JSON and responds
// with the composed image bytes.
type HTTPAssembler struct {
	logger     *slog.Logger
	url        string
	httpClient *http.Client
}

var _ Assembler = (*HTTPAssembler)(nil)

// NewHTTPAssembler creates an assembler for the given compositor endpoint.
func NewHTTPAssembler(logger *slog.Logger, url string) (*HTTPAssembler, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if url == "" {
		return nil, errors.New("compositor URL cannot be empty")
	}
	return &HTTPAssembler{
		logger:     logger.With(slog.String("component", "album_assembler")),
		url:        url,
		httpClient: &http.Client{Timeout: 2 * time.Minute},
	}, nil
}

// compositorRequest is the JSON body sent to the compositor.
type compositorRequest struct {
	Images map[domain.Decade]string `json:"images"`
}

// CreateAlbum implements Assembler.
func (a *HTTPAssembler) CreateAlbum(ctx context.Context, images map[domain.Decade]string) (Artifact, error) {
	if len(images) == 0 {
		return Artifact{}, fmt.Errorf("%w: no images to compose", ErrAlbumFailed)
	}

	body, err := json.Marshal(compositorRequest{Images: images})
	if err != nil {
		return Artifact{}, fmt.Errorf("%w: encoding request: %v", ErrAlbumFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.url, bytes.NewReader(body))
	if err != nil {
		return Artifact{}, fmt.Errorf("%w: building request: %v", ErrAlbumFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	a.logger.InfoContext(ctx, "requesting album composition", "image_count", len(images))

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return Artifact{}, fmt.Errorf("%w: calling compositor: %v", ErrAlbumFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return Artifact{}, fmt.Errorf("%w: compositor returned %s", ErrAlbumFailed, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Artifact{}, fmt.Errorf("%w: reading compositor response: %v", ErrAlbumFailed, err)
	}
	if len(data) == 0 {
		return Artifact{}, fmt.Errorf("%w: compositor returned an empty body", ErrAlbumFailed)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}

	a.logger.InfoContext(ctx, "album composed",
		"content_type", contentType,
		"size_bytes", len(data))
	return Artifact{ContentType: contentType, Data: data}, nil
}
