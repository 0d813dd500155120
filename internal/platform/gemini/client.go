package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/pastforward-api/internal/config"
	"github.com/phrazzld/pastforward-api/internal/generation"
	"google.golang.org/genai"
)

// Client implements the generation capability interfaces
// (generation.ImageGenerator, ImageEditor, VideoAnimator, AudioNarrator)
// against the Gemini API.
type Client struct {
	logger *slog.Logger
	cfg    config.GenerationConfig

	models     modelsAPI
	operations operationsAPI
	httpClient *http.Client
	sleep      sleepFunc
}

// Compile-time interface checks.
var (
	_ generation.ImageGenerator = (*Client)(nil)
	_ generation.ImageEditor    = (*Client)(nil)
	_ generation.VideoAnimator  = (*Client)(nil)
	_ generation.AudioNarrator  = (*Client)(nil)
)

// NewClient creates a Gemini-backed generation client.
//
// Parameters:
//   - ctx: Context for SDK client construction
//   - logger: A structured logger for operation logging
//   - cfg: Generation configuration (API key, model names, retry policy)
//
// Returns a properly initialized Client or an error if the configuration is
// invalid or the SDK client cannot be constructed.
func NewClient(ctx context.Context, logger *slog.Logger, cfg config.GenerationConfig) (*Client, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}
	if cfg.ImageModel == "" || cfg.TextModel == "" || cfg.TTSModel == "" || cfg.VideoModel == "" {
		return nil, fmt.Errorf("%w: model names cannot be empty", generation.ErrInvalidConfig)
	}
	if cfg.MaxAttempts < 1 {
		return nil, fmt.Errorf("%w: max attempts must be at least 1", generation.ErrInvalidConfig)
	}

	sdk, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create genai client: %v", generation.ErrInvalidConfig, err)
	}

	return &Client{
		logger:     logger.With(slog.String("component", "gemini_client")),
		cfg:        cfg,
		models:     sdk.Models,
		operations: sdk.Operations,
		httpClient: &http.Client{Timeout: 2 * time.Minute},
		sleep:      defaultSleep,
	}, nil
}
