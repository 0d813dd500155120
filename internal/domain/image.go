package domain

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// Common validation errors for SourceImage.
var (
	ErrEmptyImageData  = errors.New("image data cannot be empty")
	ErrInvalidMimeType = errors.New("image mime type must be an image/* type")
	ErrInvalidDataURL  = errors.New("invalid image data URL, expected 'data:image/...;base64,...'")
)

// SourceImage is a typed embedded-binary image payload: a mime type plus the
// raw image bytes. It is the unit exchanged with the generation backend and
// with callers (as a base64 data URL).
type SourceImage struct {
	MIMEType string `json:"mime_type"`
	Data     []byte `json:"data"`
}

// NewSourceImage creates a SourceImage and validates it.
func NewSourceImage(mimeType string, data []byte) (SourceImage, error) {
	img := SourceImage{MIMEType: mimeType, Data: data}
	if err := img.Validate(); err != nil {
		return SourceImage{}, err
	}
	return img, nil
}

// Validate checks that the payload is a well-formed embedded-binary image.
func (s SourceImage) Validate() error {
	if !strings.HasPrefix(s.MIMEType, "image/") || len(s.MIMEType) <= len("image/") {
		return fmt.Errorf("%w: got %q", ErrInvalidMimeType, s.MIMEType)
	}
	if len(s.Data) == 0 {
		return ErrEmptyImageData
	}
	return nil
}

// IsZero reports whether the image carries no payload at all.
func (s SourceImage) IsZero() bool {
	return s.MIMEType == "" && len(s.Data) == 0
}

// DataURL renders the image as a 'data:<mime>;base64,<payload>' URL, the
// interchange format used by callers and the album assembler.
func (s SourceImage) DataURL() string {
	return "data:" + s.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(s.Data)
}

// ParseDataURL parses a 'data:image/...;base64,...' URL into a SourceImage.
// Returns ErrInvalidDataURL when the shape is wrong and the underlying
// validation error when the decoded payload is invalid.
func ParseDataURL(url string) (SourceImage, error) {
	rest, ok := strings.CutPrefix(url, "data:")
	if !ok {
		return SourceImage{}, ErrInvalidDataURL
	}

	mimeType, payload, ok := strings.Cut(rest, ";base64,")
	if !ok {
		return SourceImage{}, ErrInvalidDataURL
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return SourceImage{}, fmt.Errorf("%w: %v", ErrInvalidDataURL, err)
	}

	return NewSourceImage(mimeType, data)
}
