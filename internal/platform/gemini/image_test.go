package gemini

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/pastforward-api/internal/domain"
	"github.com/phrazzld/pastforward-api/internal/generation"
)

func testSource() domain.SourceImage {
	return domain.SourceImage{MIMEType: "image/jpeg", Data: []byte("selfie-bytes")}
}

func TestGenerateImage(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("succeeds on first attempt", func(t *testing.T) {
		t.Parallel()
		models := &fakeModels{results: []contentResult{
			{resp: imageResponse("image/png", []byte("generated"))},
		}}
		var sleeps []time.Duration
		client := newTestClient(models, nil, &sleeps)

		img, err := client.GenerateImage(ctx, testSource(), "make it 1950s")
		require.NoError(t, err)
		assert.Equal(t, "image/png", img.MIMEType)
		assert.Equal(t, []byte("generated"), img.Data)

		require.Len(t, models.calls, 1)
		assert.Equal(t, "test-image-model", models.calls[0].model)
		require.Len(t, models.calls[0].contents, 1)
		require.Len(t, models.calls[0].contents[0].Parts, 2)
		assert.Equal(t, []byte("selfie-bytes"), models.calls[0].contents[0].Parts[0].InlineData.Data)
		assert.Equal(t, "make it 1950s", models.calls[0].contents[0].Parts[1].Text)
		assert.Empty(t, sleeps)
	})

	t.Run("retries transient failures with backoff", func(t *testing.T) {
		t.Parallel()
		transient := errors.New(`rpc failed: {"code":500,"status":"INTERNAL"}`)
		models := &fakeModels{results: []contentResult{
			{err: transient},
			{err: transient},
			{resp: imageResponse("image/png", []byte("generated"))},
		}}
		var sleeps []time.Duration
		client := newTestClient(models, nil, &sleeps)

		img, err := client.GenerateImage(ctx, testSource(), "make it 1950s")
		require.NoError(t, err)
		assert.Equal(t, []byte("generated"), img.Data)

		assert.Len(t, models.calls, 3)
		assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, sleeps)
	})

	t.Run("exhausts attempts on persistent transient failure", func(t *testing.T) {
		t.Parallel()
		transient := errors.New("Error 503: UNAVAILABLE")
		models := &fakeModels{results: []contentResult{
			{err: transient},
			{err: transient},
			{err: transient},
		}}
		var sleeps []time.Duration
		client := newTestClient(models, nil, &sleeps)

		_, err := client.GenerateImage(ctx, testSource(), "make it 1950s")
		assert.ErrorIs(t, err, generation.ErrGenerationExhausted)

		assert.Len(t, models.calls, 3)
		assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, sleeps)
	})

	t.Run("fails immediately on non-transient error", func(t *testing.T) {
		t.Parallel()
		models := &fakeModels{results: []contentResult{
			{err: errors.New("invalid argument")},
		}}
		var sleeps []time.Duration
		client := newTestClient(models, nil, &sleeps)

		_, err := client.GenerateImage(ctx, testSource(), "make it 1950s")
		assert.Error(t, err)
		assert.NotErrorIs(t, err, generation.ErrGenerationExhausted)

		assert.Len(t, models.calls, 1)
		assert.Empty(t, sleeps)
	})

	t.Run("reports text-only response without retrying", func(t *testing.T) {
		t.Parallel()
		models := &fakeModels{results: []contentResult{
			{resp: textResponse("I cannot edit photos of people.")},
		}}
		client := newTestClient(models, nil, nil)

		_, err := client.GenerateImage(ctx, testSource(), "make it 1950s")
		assert.ErrorIs(t, err, generation.ErrNoImageReturned)
		assert.Contains(t, err.Error(), "I cannot edit photos of people.")
		assert.Len(t, models.calls, 1)
	})

	t.Run("rejects invalid source", func(t *testing.T) {
		t.Parallel()
		models := &fakeModels{}
		client := newTestClient(models, nil, nil)

		_, err := client.GenerateImage(ctx, domain.SourceImage{}, "make it 1950s")
		assert.ErrorIs(t, err, generation.ErrInvalidInput)
		assert.Empty(t, models.calls)
	})

	t.Run("rejects empty prompt", func(t *testing.T) {
		t.Parallel()
		models := &fakeModels{}
		client := newTestClient(models, nil, nil)

		_, err := client.GenerateImage(ctx, testSource(), "")
		assert.ErrorIs(t, err, generation.ErrInvalidInput)
		assert.Empty(t, models.calls)
	})
}

func TestEditImage(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("succeeds with image modality requested", func(t *testing.T) {
		t.Parallel()
		models := &fakeModels{results: []contentResult{
			{resp: imageResponse("image/png", []byte("edited"))},
		}}
		client := newTestClient(models, nil, nil)

		img, err := client.EditImage(ctx, testSource(), "add a red hat")
		require.NoError(t, err)
		assert.Equal(t, []byte("edited"), img.Data)

		require.Len(t, models.calls, 1)
		require.NotNil(t, models.calls[0].config)
		assert.Equal(t, []string{"IMAGE"}, models.calls[0].config.ResponseModalities)
	})

	t.Run("does not retry on API failure", func(t *testing.T) {
		t.Parallel()
		models := &fakeModels{results: []contentResult{
			{err: errors.New(`{"code":500,"status":"INTERNAL"}`)},
		}}
		var sleeps []time.Duration
		client := newTestClient(models, nil, &sleeps)

		_, err := client.EditImage(ctx, testSource(), "add a red hat")
		assert.ErrorIs(t, err, generation.ErrEditFailed)
		assert.Len(t, models.calls, 1)
		assert.Empty(t, sleeps)
	})

	t.Run("fails when model responds with text", func(t *testing.T) {
		t.Parallel()
		models := &fakeModels{results: []contentResult{
			{resp: textResponse("That edit is not possible.")},
		}}
		client := newTestClient(models, nil, nil)

		_, err := client.EditImage(ctx, testSource(), "add a red hat")
		assert.ErrorIs(t, err, generation.ErrEditFailed)
		assert.Contains(t, err.Error(), "That edit is not possible.")
	})

	t.Run("rejects empty instruction", func(t *testing.T) {
		t.Parallel()
		models := &fakeModels{}
		client := newTestClient(models, nil, nil)

		_, err := client.EditImage(ctx, testSource(), "")
		assert.ErrorIs(t, err, generation.ErrInvalidInput)
		assert.Empty(t, models.calls)
	})
}
