package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/phrazzld/pastforward-api/internal/domain"
	"github.com/phrazzld/pastforward-api/internal/generation"
	"google.golang.org/genai"
)

// GenerateNarration implements generation.AudioNarrator.
//
// Two stages: the text model produces a short era-flavored script, then the
// TTS model synthesizes speech from that script with the configured voice
// preset. Either stage returning no usable payload fails the operation with
// generation.ErrAudioGeneration.
func (c *Client) GenerateNarration(ctx context.Context, decade domain.Decade) ([]byte, error) {
	scriptPrompt, err := generation.NarrationScriptPrompt(decade)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", generation.ErrInvalidInput, err)
	}

	c.logger.InfoContext(ctx, "generating narration script",
		"model", c.cfg.TextModel,
		"decade", string(decade))

	scriptResp, err := c.models.GenerateContent(ctx, c.cfg.TextModel, textContents(scriptPrompt), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: script generation: %v", generation.ErrAudioGeneration, err)
	}

	script := strings.TrimSpace(responseText(scriptResp))
	if script == "" {
		return nil, fmt.Errorf("%w: text model returned no script", generation.ErrAudioGeneration)
	}

	c.logger.InfoContext(ctx, "synthesizing narration audio",
		"model", c.cfg.TTSModel,
		"voice", c.cfg.NarrationVoice,
		"script_length", len(script))

	ttsResp, err := c.models.GenerateContent(ctx, c.cfg.TTSModel, textContents(script),
		&genai.GenerateContentConfig{
			ResponseModalities: []string{"AUDIO"},
			SpeechConfig: &genai.SpeechConfig{
				VoiceConfig: &genai.VoiceConfig{
					PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{
						VoiceName: c.cfg.NarrationVoice,
					},
				},
			},
		})
	if err != nil {
		return nil, fmt.Errorf("%w: speech synthesis: %v", generation.ErrAudioGeneration, err)
	}

	audio, ok := inlineData(ttsResp)
	if !ok {
		return nil, fmt.Errorf("%w: TTS model returned no audio data", generation.ErrAudioGeneration)
	}

	c.logger.InfoContext(ctx, "narration generated",
		"decade", string(decade),
		"size_bytes", len(audio))
	return audio, nil
}

func textContents(text string) []*genai.Content {
	return []*genai.Content{{
		Parts: []*genai.Part{{Text: text}},
	}}
}
