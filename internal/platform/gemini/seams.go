package gemini

import (
	"context"
	"time"

	"google.golang.org/genai"
)

// modelsAPI is the slice of genai.Models the client uses. *genai.Models
// satisfies it; tests substitute a fake.
type modelsAPI interface {
	GenerateContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)

	GenerateVideos(
		ctx context.Context,
		model string,
		prompt string,
		image *genai.Image,
		config *genai.GenerateVideosConfig,
	) (*genai.GenerateVideosOperation, error)
}

// operationsAPI is the slice of genai.Operations the client uses for
// polling long-running video generation. *genai.Operations satisfies it.
type operationsAPI interface {
	GetVideosOperation(
		ctx context.Context,
		operation *genai.GenerateVideosOperation,
		config *genai.GetOperationConfig,
	) (*genai.GenerateVideosOperation, error)
}

// sleepFunc waits for the given duration or until the context is done.
// Injected so tests can observe backoff and poll delays without waiting.
type sleepFunc func(ctx context.Context, d time.Duration) error

// defaultSleep is the production sleepFunc.
func defaultSleep(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
