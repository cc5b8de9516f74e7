package studio

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lehigh-university-libraries/stylist/internal/images"
	"github.com/lehigh-university-libraries/stylist/internal/moderation"
)

var (
	// ErrMissingInput is returned by Begin when the image or prompt is empty.
	ErrMissingInput = errors.New("image and prompt are required")
	// ErrBusy is returned by Begin while an attempt is already in flight.
	ErrBusy = errors.New("an edit is already in progress")
	// ErrNoResult is returned by Promote when there is no result to keep.
	ErrNoResult = errors.New("no generated image to continue from")
	// ErrUnknownExample is returned by UseExample for an out-of-range index.
	ErrUnknownExample = errors.New("unknown example prompt")
)

// Origin records which surface created a session.
type Origin string

const (
	// OriginAPI sessions are addressed by ID through the JSON API.
	OriginAPI Origin = "api"
	// OriginBrowser sessions belong to the holder of the session cookie.
	OriginBrowser Origin = "browser"
)

// Job is the input captured when an attempt begins, so the edit can run
// without holding the session lock.
type Job struct {
	Image  images.Asset
	Prompt string
}

// Session is one user's studio: the selected image, the prompt and the state
// of the current generation attempt.
type Session struct {
	ID        string
	Origin    Origin
	CreatedAt time.Time

	mu        sync.Mutex
	image     *images.Asset
	prompt    string
	state     State
	updatedAt time.Time
}

// Snapshot is a consistent copy of a session taken under its lock.
type Snapshot struct {
	ID        string
	Image     *images.Asset
	Prompt    string
	State     State
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewSession returns an idle API session with a fresh ID.
func NewSession() *Session {
	return NewSessionFor(OriginAPI)
}

// NewSessionFor returns an idle session created by origin.
func NewSessionFor(origin Origin) *Session {
	now := time.Now()
	return &Session{
		ID:        uuid.NewString(),
		Origin:    origin,
		CreatedAt: now,
		state:     Idle{},
		updatedAt: now,
	}
}

// Snapshot returns a copy of the session safe to read without the lock.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		ID:        s.ID,
		Prompt:    s.prompt,
		State:     s.state,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.updatedAt,
	}
	if s.image != nil {
		img := *s.image
		snap.Image = &img
	}
	return snap
}

// State returns the current cycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SelectImage replaces the source image and discards any previous result or
// error. Selecting while an edit is running is rejected with ErrBusy.
func (s *Session) SelectImage(img images.Asset) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, loading := s.state.(Loading); loading {
		return ErrBusy
	}
	s.image = &img
	s.transition(Idle{})
	return nil
}

// FailImage records an image that could not be read. The previous source is
// dropped, matching a fresh selection that failed.
func (s *Session) FailImage(err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, loading := s.state.(Loading); loading {
		return ErrBusy
	}
	s.image = nil
	s.transition(Failed{Message: Message(fmt.Errorf("%w: %w", images.ErrRead, err))})
	return nil
}

// SetPrompt updates the prompt. A failed attempt returns to Idle on the next
// edit; a succeeded one keeps showing its result.
func (s *Session) SetPrompt(prompt string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.prompt = prompt
	if _, failed := s.state.(Failed); failed {
		s.transition(Idle{})
		return
	}
	s.updatedAt = time.Now()
}

// UseExample fills the prompt with one of the canned examples.
func (s *Session) UseExample(index int, examples []string) error {
	if index < 0 || index >= len(examples) {
		return fmt.Errorf("%w: %d", ErrUnknownExample, index)
	}
	s.SetPrompt(examples[index])
	return nil
}

// Begin validates the session and moves it to Loading. Validation failures
// move it to Failed and are returned; nothing should be sent in that case.
func (s *Session) Begin(denylist []string) (Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, loading := s.state.(Loading); loading {
		return Job{}, ErrBusy
	}

	if err := Validate(s.image, s.prompt, denylist); err != nil {
		s.transition(Failed{Message: Message(err)})
		return Job{}, err
	}

	s.transition(Loading{Started: time.Now()})
	return Job{Image: *s.image, Prompt: s.prompt}, nil
}

// Validate applies the checks that must pass before anything is sent: an
// image and a prompt are present, and the prompt clears the denylist.
func Validate(img *images.Asset, prompt string, denylist []string) error {
	if img == nil || img.Empty() || strings.TrimSpace(prompt) == "" {
		return ErrMissingInput
	}
	return moderation.Check(prompt, denylist)
}

// Idle reports whether the session has had no activity since cutoff and
// nothing is in flight.
func (s *Session) Idle(cutoff time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, loading := s.state.(Loading); loading {
		return false
	}
	return s.updatedAt.Before(cutoff)
}

// Complete ends the in-flight attempt with either a result or an error.
func (s *Session) Complete(result images.Asset, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, loading := s.state.(Loading); !loading {
		return
	}
	if err != nil {
		s.transition(Failed{Message: Message(err)})
		return
	}
	s.transition(Succeeded{Result: result})
}

// Promote makes the last result the new source image so edits can be chained.
func (s *Session) Promote() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	succeeded, ok := s.state.(Succeeded)
	if !ok {
		return ErrNoResult
	}
	img := succeeded.Result
	s.image = &img
	s.transition(Idle{})
	return nil
}

func (s *Session) transition(next State) {
	s.state = next
	s.updatedAt = time.Now()
}
