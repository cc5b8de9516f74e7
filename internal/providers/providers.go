package providers

import (
	"context"
	"time"

	"github.com/lehigh-university-libraries/stylist/internal/images"
)

// DefaultModel is the Gemini model used for image edits.
const DefaultModel = "gemini-2.5-flash-image"

// Config represents the configuration for an image editing provider
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	// Timeout bounds a single edit call. Zero leaves the call unbounded.
	Timeout time.Duration
}

// Editor defines the interface for an image editing provider
type Editor interface {
	Edit(ctx context.Context, src images.Asset, prompt string) (images.Asset, error)
}
