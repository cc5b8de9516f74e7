// Package moderation holds the prompt filter applied before any request
// leaves the process. It is a shallow substring check; the model's own safety
// system remains the authority.
package moderation

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInappropriate is returned when a prompt contains a denylisted word.
var ErrInappropriate = errors.New("inappropriate request")

// DefaultDenylist is used when no denylist is configured.
var DefaultDenylist = []string{"undress", "remove", "nude", "naked", "disrobe"}

// Check rejects prompts containing any denylisted word, ignoring case.
func Check(prompt string, denylist []string) error {
	lowered := strings.ToLower(prompt)
	for _, word := range denylist {
		word = strings.ToLower(strings.TrimSpace(word))
		if word == "" {
			continue
		}
		if strings.Contains(lowered, word) {
			return fmt.Errorf("%w: prompt contains %q", ErrInappropriate, word)
		}
	}
	return nil
}
