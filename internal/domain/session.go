package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for Session.
var (
	ErrEmptySessionID  = errors.New("session ID cannot be empty")
	ErrNoDecades       = errors.New("session must request at least one decade")
	ErrDuplicateDecade = errors.New("session decades must be unique")
	ErrMissingItem     = errors.New("session is missing an item for a requested decade")
)

// Session groups one source photo with all of its per-decade generation
// results. It is the unit of persistence and of album export. A session is
// created once per generation batch and mutated in place as items complete;
// the core never deletes sessions.
type Session struct {
	ID          uuid.UUID                 `json:"id"`
	CreatedAt   time.Time                 `json:"created_at"`
	SourceImage SourceImage               `json:"source_image"`
	Decades     []Decade                  `json:"decades"`
	Items       map[Decade]GenerationItem `json:"items"`
}

// NewSession creates a session for the given source photo and requested
// decades, with every item seeded to pending so that a reader observes a
// fully-populated map from the first snapshot onward.
// Returns an error if validation fails.
func NewSession(source SourceImage, decades []Decade) (*Session, error) {
	sess := &Session{
		ID:          uuid.New(),
		CreatedAt:   time.Now().UTC(),
		SourceImage: source,
		Decades:     append([]Decade(nil), decades...),
		Items:       make(map[Decade]GenerationItem, len(decades)),
	}
	for _, d := range decades {
		sess.Items[d] = NewGenerationItem()
	}

	if err := sess.Validate(); err != nil {
		return nil, err
	}
	return sess, nil
}

// Validate checks the session's invariants.
func (s *Session) Validate() error {
	if s.ID == uuid.Nil {
		return ErrEmptySessionID
	}
	if err := s.SourceImage.Validate(); err != nil {
		return err
	}
	if len(s.Decades) == 0 {
		return ErrNoDecades
	}

	seen := make(map[Decade]bool, len(s.Decades))
	for _, d := range s.Decades {
		if !d.Valid() {
			return ErrUnknownDecade
		}
		if seen[d] {
			return ErrDuplicateDecade
		}
		seen[d] = true
		if _, ok := s.Items[d]; !ok {
			return ErrMissingItem
		}
	}

	for _, item := range s.Items {
		if err := item.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Complete reports whether every requested decade has reached a terminal
// primary status, the all-terminal condition callers observe to detect a
// finished batch.
func (s *Session) Complete() bool {
	for _, d := range s.Decades {
		if !s.Items[d].Terminal() {
			return false
		}
	}
	return true
}

// CompletedCount returns the number of requested decades whose primary image
// has reached a terminal status. Used for progress reporting.
func (s *Session) CompletedCount() int {
	n := 0
	for _, d := range s.Decades {
		if s.Items[d].Terminal() {
			n++
		}
	}
	return n
}

// Clone returns a deep copy of the session, safe for readers to hold while
// workers keep mutating the original through the state store.
func (s *Session) Clone() *Session {
	out := &Session{
		ID:          s.ID,
		CreatedAt:   s.CreatedAt,
		SourceImage: s.SourceImage.clone(),
		Decades:     append([]Decade(nil), s.Decades...),
		Items:       make(map[Decade]GenerationItem, len(s.Items)),
	}
	for d, item := range s.Items {
		out.Items[d] = item.clone()
	}
	return out
}

func (s SourceImage) clone() SourceImage {
	return SourceImage{MIMEType: s.MIMEType, Data: append([]byte(nil), s.Data...)}
}

func (i GenerationItem) clone() GenerationItem {
	out := i
	out.Result = i.Result.clone()
	out.VideoResult = append([]byte(nil), i.VideoResult...)
	out.AudioResult = append([]byte(nil), i.AudioResult...)
	return out
}
