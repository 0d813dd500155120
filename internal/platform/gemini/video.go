package gemini

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/phrazzld/pastforward-api/internal/domain"
	"github.com/phrazzld/pastforward-api/internal/generation"
	"google.golang.org/genai"
)

// GenerateVideo implements generation.VideoAnimator.
//
// It starts a long-running video generation operation, polls its status at
// the configured interval until completion, then resolves the content URI
// and downloads the bytes. Credential-class failures are reported as
// generation.ErrVideoCredential; everything else as
// generation.ErrVideoGeneration.
func (c *Client) GenerateVideo(
	ctx context.Context,
	source domain.SourceImage,
	decade domain.Decade,
	ratio generation.AspectRatio,
) ([]byte, error) {
	if err := source.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", generation.ErrInvalidInput, err)
	}
	if !ratio.Valid() {
		return nil, fmt.Errorf("%w: unsupported aspect ratio %q", generation.ErrInvalidInput, ratio)
	}
	prompt, err := generation.VideoPrompt(decade)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", generation.ErrInvalidInput, err)
	}

	c.logger.InfoContext(ctx, "starting video generation",
		"model", c.cfg.VideoModel,
		"decade", string(decade),
		"aspect_ratio", string(ratio))

	op, err := c.models.GenerateVideos(ctx, c.cfg.VideoModel, prompt,
		&genai.Image{ImageBytes: source.Data, MIMEType: source.MIMEType},
		&genai.GenerateVideosConfig{
			NumberOfVideos: 1,
			AspectRatio:    string(ratio),
			Resolution:     c.cfg.VideoResolution,
		})
	if err != nil {
		return nil, c.videoError("failed to start video generation", err)
	}

	for !op.Done {
		if err := c.sleep(ctx, c.cfg.VideoPollInterval); err != nil {
			return nil, fmt.Errorf("%w: polling cancelled: %v", generation.ErrVideoGeneration, err)
		}
		op, err = c.operations.GetVideosOperation(ctx, op, nil)
		if err != nil {
			return nil, c.videoError("failed to poll video operation", err)
		}
		c.logger.DebugContext(ctx, "polled video operation", "done", op.Done)
	}

	video := firstVideo(op)
	if video == nil {
		return nil, fmt.Errorf("%w: operation completed with no video output", generation.ErrVideoGeneration)
	}

	// Some backends inline the bytes; otherwise dereference the content URI.
	if len(video.VideoBytes) > 0 {
		c.logger.InfoContext(ctx, "video generated inline", "size_bytes", len(video.VideoBytes))
		return video.VideoBytes, nil
	}
	if video.URI == "" {
		return nil, fmt.Errorf("%w: operation completed but no download link was found", generation.ErrVideoGeneration)
	}

	return c.downloadVideo(ctx, video.URI)
}

// downloadVideo fetches the finished clip from its content URI. The content
// endpoint authenticates with the same API key as the generation calls.
func (c *Client) downloadVideo(ctx context.Context, uri string) ([]byte, error) {
	sep := "?"
	if strings.Contains(uri, "?") {
		sep = "&"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri+sep+"key="+c.cfg.GeminiAPIKey, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: building content request: %v", generation.ErrVideoGeneration, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetching video content: %v", generation.ErrVideoGeneration, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			return nil, fmt.Errorf("%w: content fetch returned %s", generation.ErrVideoCredential, resp.Status)
		}
		return nil, fmt.Errorf("%w: content fetch returned %s", generation.ErrVideoGeneration, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading video content: %v", generation.ErrVideoGeneration, err)
	}

	c.logger.InfoContext(ctx, "video content downloaded", "size_bytes", len(data))
	return data, nil
}

// videoError wraps an API failure as credential-class or generic video
// failure.
func (c *Client) videoError(msg string, err error) error {
	if isCredentialError(err) {
		return fmt.Errorf("%w: %s: %v", generation.ErrVideoCredential, msg, err)
	}
	return fmt.Errorf("%w: %s: %v", generation.ErrVideoGeneration, msg, err)
}

func firstVideo(op *genai.GenerateVideosOperation) *genai.Video {
	if op == nil || op.Response == nil || len(op.Response.GeneratedVideos) == 0 {
		return nil
	}
	return op.Response.GeneratedVideos[0].Video
}
