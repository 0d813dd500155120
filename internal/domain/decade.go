package domain

import (
	"errors"
	"fmt"
)

// Decade identifies one of the twelve fixed era labels that drive prompt
// content and style hints.
type Decade string

// The fixed, ordered set of supported decades.
const (
	Decade1900s Decade = "1900s"
	Decade1910s Decade = "1910s"
	Decade1920s Decade = "1920s"
	Decade1930s Decade = "1930s"
	Decade1940s Decade = "1940s"
	Decade1950s Decade = "1950s"
	Decade1960s Decade = "1960s"
	Decade1970s Decade = "1970s"
	Decade1980s Decade = "1980s"
	Decade1990s Decade = "1990s"
	Decade2000s Decade = "2000s"
	Decade2010s Decade = "2010s"
)

// ErrUnknownDecade is returned when a decade identifier is not one of the
// twelve supported era labels.
var ErrUnknownDecade = errors.New("unknown decade")

// decadeOrder fixes the canonical ordering used for album layout and for
// iterating a session's requested decades.
var decadeOrder = []Decade{
	Decade1900s, Decade1910s, Decade1920s, Decade1930s,
	Decade1940s, Decade1950s, Decade1960s, Decade1970s,
	Decade1980s, Decade1990s, Decade2000s, Decade2010s,
}

// decadeDescriptions carries the era's descriptive text: clothing and
// hairstyle expectations shown to users and embedded in prompts.
var decadeDescriptions = map[Decade]string{
	Decade1900s: "The turn of the century, known as the Belle Époque. High collars, S-bend corsets for women, and formal three-piece suits for men. A time of artistic elegance before the great wars.",
	Decade1910s: "The decade of the Titanic and World War I. Fashion saw a move towards more practical clothing, with military influences, hobble skirts, and the rise of more relaxed silhouettes.",
	Decade1920s: "The Roaring Twenties. Flapper dresses, sharp suits, Art Deco elegance, and the dawn of jazz. A revolutionary era of social and artistic change.",
	Decade1930s: "The Golden Age of Hollywood. Glamorous gowns, tailored suits, and dramatic studio lighting. An era of escapism through silver screen elegance.",
	Decade1940s: "Dominated by World War II. Utilitarian fashion with sharp, padded shoulders and tailored suits for women. A sense of 'make do and mend' gave way to post-war optimism and pin-up glamour.",
	Decade1950s: "The era of rock 'n' roll, greaser jackets, and poodle skirts. Think classic Hollywood glamour and the birth of teenage rebellion.",
	Decade1960s: "A revolution in fashion, from polished Mod looks to the free-spirited hippie movement with bell-bottoms and psychedelic prints.",
	Decade1970s: "Defined by disco fever and bohemian flair. Earth tones, flare jeans, platform shoes, and feathered hair were all the rage.",
	Decade1980s: "Bigger was better! Big hair, bold colors, shoulder pads, and neon everything. The decade of pop icons and power dressing.",
	Decade1990s: "From grunge rock's flannel and ripped jeans to hip-hop's baggy sportswear. A decade of casual, minimalist, and alternative styles.",
	Decade2000s: "The new millennium brought low-rise jeans, velour tracksuits, and a heavy dose of denim, all with a touch of Y2K tech optimism.",
	Decade2010s: "The era of social media, indie pop, and hipster culture. Skinny jeans, plaid shirts, vintage-inspired filters, and the rise of the influencer aesthetic.",
}

// decadeStyles carries the photographic-style hint embedded verbatim in the
// primary generation prompt for each decade.
var decadeStyles = map[Decade]string{
	Decade1900s: "Recreate the look of early portrait photography. The image should be in black-and-white or a heavily faded sepia tone, with a soft, almost ethereal focus. The lighting should be natural or simple studio light, mimicking the style of albumen or platinum prints. The image should feel formal and posed.",
	Decade1910s: "Emulate the look of photography from this decade. Images should be in black-and-white or sepia, with a sharper focus than the 1900s but still retaining a classic, slightly grainy feel. The tone can be somber or formal, reflecting the era's mood. Posing should be stiff and traditional, as was common.",
	Decade1920s: "recreate the soft-focus, romanticized look of black-and-white or sepia-toned portraits from the era. Use lighting that creates dramatic shadows (like Rembrandt lighting), typical of studio photography of the time. The image should have a subtle grain and a timeless, classic feel.",
	Decade1930s: "emulate the high-glamour, sharp, and glossy look of Hollywood studio portraits. The lighting should be dramatic and controlled, creating a soft glow on the subject while maintaining deep, rich blacks. The final image should feel polished and aspirational, like a silver screen movie star's photograph.",
	Decade1940s: "Capture the look of 40s photography. It could be either black-and-white or early, subtly saturated color (like early Kodachrome). The lighting should be purposeful, creating a mix of glamour and seriousness, reminiscent of film noir or wartime Hollywood portraits. The image should feel strong and defined.",
	Decade1950s: "emulate the classic, slightly desaturated look of early color photography from that time. The image should have a hint of film grain and a soft focus, reminiscent of Kodachrome or early Ektachrome film.",
	Decade1960s: "capture the shift from polished, sharp, high-contrast fashion photography to the vibrant, saturated, and sometimes dreamlike quality of the late 60s. A vintage lens flare or slight color bleeding effect would be appropriate.",
	Decade1970s: "the photo must have a warm, earthy color palette with a distinct yellow or orange cast. Use a soft focus, noticeable film grain, and a slightly faded look, as if it were a well-loved photo print from an old album.",
	Decade1980s: "go for a sharp, glossy look with vibrant, potentially neon, colors. The photo should have higher contrast and could feature studio lighting effects like soft glows or defined lens flare, typical of 80s portrait and pop photography.",
	Decade1990s: "recreate the look of 90s point-and-shoot 35mm film cameras. The image should have a straightforward, slightly muted color palette, visible film grain, and the direct, sometimes harsh, look of an on-camera flash.",
	Decade2000s: "mimic the aesthetic of early consumer digital cameras. The image should be sharp, but may have some subtle digital noise or artifacts, slightly oversaturated colors, and the harsh, direct lighting from a built-in flash.",
	Decade2010s: "emulate the look of a high-quality smartphone photo with a popular Instagram-like filter (e.g., Valencia or X-Pro II). The image should have high saturation, possibly with a slight vignette or tilt-shift effect, capturing the polished-yet-casual social media aesthetic of the time.",
}

// Decades returns the full ordered set of supported decades. The returned
// slice is a copy and safe for callers to modify.
func Decades() []Decade {
	out := make([]Decade, len(decadeOrder))
	copy(out, decadeOrder)
	return out
}

// ParseDecade validates a raw era label and returns it as a Decade.
// Returns ErrUnknownDecade for anything outside the fixed set.
func ParseDecade(s string) (Decade, error) {
	d := Decade(s)
	if _, ok := decadeDescriptions[d]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownDecade, s)
	}
	return d, nil
}

// Valid reports whether the decade is one of the twelve supported labels.
func (d Decade) Valid() bool {
	_, ok := decadeDescriptions[d]
	return ok
}

// Description returns the decade's descriptive era text, or an empty string
// for an unknown decade.
func (d Decade) Description() string {
	return decadeDescriptions[d]
}

// StyleHint returns the decade's photographic-style hint, or an empty string
// when no hint is registered. Prompt building substitutes a generic era
// default in that case.
func (d Decade) StyleHint() string {
	return decadeStyles[d]
}
