package generation

import (
	"errors"
	"fmt"

	"github.com/phrazzld/pastforward-api/internal/domain"
)

// ErrEmptyDecade is returned when a prompt is requested for an empty decade
// identifier.
var ErrEmptyDecade = errors.New("decade cannot be empty")

// genericStyleHint stands in for decades with no registered photographic
// style hint.
const genericStyleHint = "capture the distinct fashion, hairstyles, and overall atmosphere of that time period."

// PrimaryPrompt builds the full instruction text for a decade's primary
// generation attempt. Deterministic and side-effect free: it embeds the
// decade label, the photorealism and identity-preservation requirements,
// era-appropriate clothing/hairstyle requirements, the style hint verbatim,
// and the image-only output instruction.
func PrimaryPrompt(decade domain.Decade, styleHint string) (string, error) {
	if decade == "" {
		return "", ErrEmptyDecade
	}
	if styleHint == "" {
		styleHint = genericStyleHint
	}

	return fmt.Sprintf(`You are an expert fashion historian and photographer. Your task is to reimagine the person in this photo as if they were living in the %[1]s.

**Primary Goal**: Create a photorealistic image that is authentic to the %[1]s. The person's face and key features must be clearly recognizable.

**Key Elements**:
1.  **Clothing & Hairstyle**: Must be strictly era-appropriate for the %[1]s.
2.  **Photographic Style**: The image must visually match the photography of the era. Follow these specific style guidelines: *%[2]s*
3.  **Output Format**: The output must be ONLY the image. Do not include any text, captions, or descriptions.`, decade, styleHint), nil
}

// FallbackPrompt builds the shorter, less elaborate instruction used exactly
// once, after the primary prompt has been rejected by the service for policy
// reasons. It still encodes the decade and the style hint, substituting a
// generic era description when no hint is registered.
func FallbackPrompt(decade domain.Decade, styleHint string) (string, error) {
	if decade == "" {
		return "", ErrEmptyDecade
	}
	if styleHint == "" {
		styleHint = genericStyleHint
	}

	return fmt.Sprintf("Create an authentic-looking photograph of the person in this image from the %s. The clothing, hairstyle, and photo quality must match the era. Specific photo style to emulate: %s. The output must only be the image.", decade, styleHint), nil
}

// NarrationScriptPrompt builds the instruction for the narration script
// stage: a short, era-authentic audio script for a person looking at their
// photo from the decade.
func NarrationScriptPrompt(decade domain.Decade) (string, error) {
	if decade == "" {
		return "", ErrEmptyDecade
	}

	return fmt.Sprintf("Create a short, fun, immersive audio script (30-50 words) for a person looking at their photo from the %s. It could be a snippet from a radio broadcast, a diary entry, or a comment from a friend. Make it sound authentic to the era. The output should be only the script text itself.", decade), nil
}

// VideoPrompt builds the instruction for animating a decade image into a
// short vintage-style clip.
func VideoPrompt(decade domain.Decade) (string, error) {
	if decade == "" {
		return "", ErrEmptyDecade
	}

	return fmt.Sprintf("A short, vintage-style video clip of this person from the %s. The person should be subtly animated, perhaps smiling, looking around, or with a slight breeze in their hair. The video should have the look and feel of an authentic home movie from that era.", decade), nil
}
