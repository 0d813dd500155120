package gemini

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/phrazzld/pastforward-api/internal/domain"
	"github.com/phrazzld/pastforward-api/internal/generation"
)

func audioResponse(data []byte) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{
				Parts: []*genai.Part{{
					InlineData: &genai.Blob{MIMEType: "audio/wav", Data: data},
				}},
			},
		}},
	}
}

func TestGenerateNarration(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("runs script then speech synthesis", func(t *testing.T) {
		t.Parallel()
		models := &fakeModels{results: []contentResult{
			{resp: textResponse("  Welcome to the roaring twenties!  ")},
			{resp: audioResponse([]byte("wav-bytes"))},
		}}
		client := newTestClient(models, nil, nil)

		audio, err := client.GenerateNarration(ctx, domain.Decade1920s)
		require.NoError(t, err)
		assert.Equal(t, []byte("wav-bytes"), audio)

		require.Len(t, models.calls, 2)
		assert.Equal(t, "test-text-model", models.calls[0].model)
		assert.Equal(t, "test-tts-model", models.calls[1].model)

		// The synthesized input is the trimmed script from stage one.
		require.Len(t, models.calls[1].contents, 1)
		assert.Equal(t, "Welcome to the roaring twenties!", models.calls[1].contents[0].Parts[0].Text)

		ttsConfig := models.calls[1].config
		require.NotNil(t, ttsConfig)
		assert.Equal(t, []string{"AUDIO"}, ttsConfig.ResponseModalities)
		require.NotNil(t, ttsConfig.SpeechConfig)
		assert.Equal(t, "Kore", ttsConfig.SpeechConfig.VoiceConfig.PrebuiltVoiceConfig.VoiceName)
	})

	t.Run("fails when script stage errors", func(t *testing.T) {
		t.Parallel()
		models := &fakeModels{results: []contentResult{
			{err: errors.New("model overloaded")},
		}}
		client := newTestClient(models, nil, nil)

		_, err := client.GenerateNarration(ctx, domain.Decade1920s)
		assert.ErrorIs(t, err, generation.ErrAudioGeneration)
		assert.Len(t, models.calls, 1)
	})

	t.Run("fails on empty script", func(t *testing.T) {
		t.Parallel()
		models := &fakeModels{results: []contentResult{
			{resp: textResponse("   ")},
		}}
		client := newTestClient(models, nil, nil)

		_, err := client.GenerateNarration(ctx, domain.Decade1920s)
		assert.ErrorIs(t, err, generation.ErrAudioGeneration)
		assert.Len(t, models.calls, 1)
	})

	t.Run("fails when synthesis returns no audio", func(t *testing.T) {
		t.Parallel()
		models := &fakeModels{results: []contentResult{
			{resp: textResponse("Here is a script.")},
			{resp: textResponse("no audio for you")},
		}}
		client := newTestClient(models, nil, nil)

		_, err := client.GenerateNarration(ctx, domain.Decade1920s)
		assert.ErrorIs(t, err, generation.ErrAudioGeneration)
		assert.Len(t, models.calls, 2)
	})

	t.Run("rejects empty decade", func(t *testing.T) {
		t.Parallel()
		models := &fakeModels{}
		client := newTestClient(models, nil, nil)

		_, err := client.GenerateNarration(ctx, domain.Decade(""))
		assert.ErrorIs(t, err, generation.ErrInvalidInput)
		assert.Empty(t, models.calls)
	})
}
