package gemini

import (
	"strings"

	"github.com/phrazzld/pastforward-api/internal/domain"
	"google.golang.org/genai"
)

// transientMarkers identify the retryable server-side failure class in API
// error text (5xx/internal-error signatures).
var transientMarkers = []string{
	`"code":500`,
	`"code":503`,
	"INTERNAL",
	"UNAVAILABLE",
	"DEADLINE_EXCEEDED",
	"Error 500",
	"Error 503",
}

// credentialMarkers identify credential-class failures that should prompt
// re-authentication rather than a retry.
var credentialMarkers = []string{
	"API key",
	"API_KEY",
	"PERMISSION_DENIED",
	"UNAUTHENTICATED",
	`"code":401`,
	`"code":403`,
	"Error 401",
	"Error 403",
}

// isTransientError reports whether the API error looks like a retryable
// server-side failure. The SDK does not expose a stable typed error for
// this class, so classification matches the error text.
func isTransientError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, marker := range transientMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// isCredentialError reports whether the API error is credential-class.
func isCredentialError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, marker := range credentialMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// inlineImage extracts the first inline image payload from a response, if
// any.
func inlineImage(resp *genai.GenerateContentResponse) (domain.SourceImage, bool) {
	for _, part := range responseParts(resp) {
		if part.InlineData != nil && len(part.InlineData.Data) > 0 {
			return domain.SourceImage{
				MIMEType: part.InlineData.MIMEType,
				Data:     part.InlineData.Data,
			}, true
		}
	}
	return domain.SourceImage{}, false
}

// inlineData extracts the first inline binary payload from a response,
// regardless of mime type. Used for the text-to-speech stage.
func inlineData(resp *genai.GenerateContentResponse) ([]byte, bool) {
	for _, part := range responseParts(resp) {
		if part.InlineData != nil && len(part.InlineData.Data) > 0 {
			return part.InlineData.Data, true
		}
	}
	return nil, false
}

// responseText concatenates the text parts of a response. Used both for the
// narration script stage and for surfacing the rejection text a safety
// filter returns in place of an image.
func responseText(resp *genai.GenerateContentResponse) string {
	var sb strings.Builder
	for _, part := range responseParts(resp) {
		sb.WriteString(part.Text)
	}
	return sb.String()
}

func responseParts(resp *genai.GenerateContentResponse) []*genai.Part {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil
	}
	return resp.Candidates[0].Content.Parts
}
