package gemini

import (
	"context"
	"fmt"
	"time"

	"github.com/phrazzld/pastforward-api/internal/domain"
	"github.com/phrazzld/pastforward-api/internal/generation"
	"google.golang.org/genai"
)

// GenerateImage implements generation.ImageGenerator.
//
// It validates the source payload, then issues the request with up to
// cfg.MaxAttempts attempts. Transient server-side failures back off
// exponentially between attempts (base delay, then doubled each time) and
// end in generation.ErrGenerationExhausted. A response carrying text instead
// of inline image data ends in generation.ErrNoImageReturned immediately;
// the fallback-prompt escalation is the caller's decision.
func (c *Client) GenerateImage(ctx context.Context, source domain.SourceImage, prompt string) (domain.SourceImage, error) {
	if err := source.Validate(); err != nil {
		return domain.SourceImage{}, fmt.Errorf("%w: %v", generation.ErrInvalidInput, err)
	}
	if prompt == "" {
		return domain.SourceImage{}, fmt.Errorf("%w: prompt cannot be empty", generation.ErrInvalidInput)
	}

	contents := imageContents(source, prompt)

	var lastErr error
	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		c.logger.InfoContext(ctx, "calling image generation",
			"model", c.cfg.ImageModel,
			"attempt", attempt,
			"max_attempts", c.cfg.MaxAttempts)

		resp, err := c.models.GenerateContent(ctx, c.cfg.ImageModel, contents, nil)
		if err == nil {
			return c.extractImage(ctx, resp)
		}

		c.logger.ErrorContext(ctx, "image generation call failed",
			"attempt", attempt,
			"error", err)
		lastErr = err

		if !isTransientError(err) {
			return domain.SourceImage{}, fmt.Errorf("image generation failed: %w", err)
		}
		if attempt == c.cfg.MaxAttempts {
			break
		}

		// 1s, 2s, 4s with the default base delay.
		delay := c.cfg.RetryBaseDelay * time.Duration(1<<(attempt-1))
		c.logger.InfoContext(ctx, "transient failure, retrying after delay",
			"attempt", attempt,
			"delay", delay)
		if err := c.sleep(ctx, delay); err != nil {
			return domain.SourceImage{}, fmt.Errorf("%w: %v", generation.ErrGenerationExhausted, err)
		}
	}

	return domain.SourceImage{}, fmt.Errorf("%w: %d attempts, last error: %v",
		generation.ErrGenerationExhausted, c.cfg.MaxAttempts, lastErr)
}

// EditImage implements generation.ImageEditor. Single shot: no retry and no
// fallback path, since edit instructions are user-directed free text.
func (c *Client) EditImage(ctx context.Context, source domain.SourceImage, instruction string) (domain.SourceImage, error) {
	if err := source.Validate(); err != nil {
		return domain.SourceImage{}, fmt.Errorf("%w: %v", generation.ErrInvalidInput, err)
	}
	if instruction == "" {
		return domain.SourceImage{}, fmt.Errorf("%w: edit instruction cannot be empty", generation.ErrInvalidInput)
	}

	c.logger.InfoContext(ctx, "calling image edit", "model", c.cfg.ImageModel)

	resp, err := c.models.GenerateContent(ctx, c.cfg.ImageModel, imageContents(source, instruction),
		&genai.GenerateContentConfig{
			ResponseModalities: []string{"IMAGE"},
		})
	if err != nil {
		return domain.SourceImage{}, fmt.Errorf("%w: %v", generation.ErrEditFailed, err)
	}

	img, ok := inlineImage(resp)
	if !ok {
		text := responseText(resp)
		c.logger.WarnContext(ctx, "edit returned no image", "response_text", text)
		return domain.SourceImage{}, fmt.Errorf("%w: model responded with text: %q", generation.ErrEditFailed, text)
	}
	return img, nil
}

// extractImage converts a successful generate-content response into an
// image payload, or reports the text-instead-of-image rejection.
func (c *Client) extractImage(ctx context.Context, resp *genai.GenerateContentResponse) (domain.SourceImage, error) {
	if img, ok := inlineImage(resp); ok {
		c.logger.InfoContext(ctx, "image generation succeeded",
			"mime_type", img.MIMEType,
			"size_bytes", len(img.Data))
		return img, nil
	}

	// The safety filter rejects by answering in prose. Keep the text for
	// diagnostics; it is logged, never shown to users.
	text := responseText(resp)
	if text == "" {
		text = "no text response received"
	}
	c.logger.WarnContext(ctx, "model returned text instead of an image", "response_text", text)
	return domain.SourceImage{}, fmt.Errorf("%w: %q", generation.ErrNoImageReturned, text)
}

// imageContents assembles the one-image-plus-instruction request body shared
// by generation and editing.
func imageContents(source domain.SourceImage, instruction string) []*genai.Content {
	return []*genai.Content{{
		Parts: []*genai.Part{
			{InlineData: &genai.Blob{MIMEType: source.MIMEType, Data: source.Data}},
			{Text: instruction},
		},
	}}
}
