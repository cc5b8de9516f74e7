package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/stylist/internal/images"
	"github.com/lehigh-university-libraries/stylist/internal/providers"
	"google.golang.org/genai"
)

var (
	// ErrSafetyBlocked means no image came back and the response carried
	// safety signals above negligible.
	ErrSafetyBlocked = errors.New("blocked by safety filters")
	// ErrNoImage means no image came back and nothing explains why.
	ErrNoImage = errors.New("no image generated")
	// ErrGeneration wraps transport and decoding failures.
	ErrGeneration = errors.New("failed to generate image")
	// ErrEmptyRequest is returned when the image or the prompt is missing.
	ErrEmptyRequest = errors.New("image and prompt are required")
)

// Gemini is an image editing provider backed by Google Gemini
type Gemini struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// New returns a new Gemini provider
func New(ctx context.Context, config providers.Config) (*Gemini, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}

	cc := &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if config.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: config.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create new gemini client: %w", err)
	}

	model := config.Model
	if model == "" {
		model = providers.DefaultModel
	}

	return &Gemini{
		client:  client,
		model:   model,
		timeout: config.Timeout,
	}, nil
}

// Model returns the configured model identifier.
func (g *Gemini) Model() string {
	return g.model
}

// Edit sends the image and prompt to Gemini in a single request and returns
// the first image the model produced.
func (g *Gemini) Edit(ctx context.Context, src images.Asset, prompt string) (images.Asset, error) {
	if src.Empty() || strings.TrimSpace(prompt) == "" {
		return images.Asset{}, ErrEmptyRequest
	}
	if err := images.CheckSupported(src.MIMEType); err != nil {
		return images.Asset{}, err
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	contents := []*genai.Content{{
		Role: "user",
		Parts: []*genai.Part{
			{InlineData: &genai.Blob{MIMEType: src.MIMEType, Data: src.Data}},
			{Text: prompt},
		},
	}}
	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{string(genai.ModalityImage)},
	}

	slog.Debug("Sending edit request", "model", g.model, "mime_type", src.MIMEType, "bytes", len(src.Data))
	start := time.Now()
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		slog.Error("Gemini API call failed", "model", g.model, "err", err)
		return images.Asset{}, fmt.Errorf("%w: %w", ErrGeneration, err)
	}

	result, err := ExtractImage(resp)
	if err != nil {
		slog.Warn("Gemini returned no image", "model", g.model, "err", err)
		return images.Asset{}, err
	}

	slog.Info("Image edited", "model", g.model, "mime_type", result.MIMEType, "bytes", len(result.Data), "duration", time.Since(start))
	return result, nil
}

// EditDataURI is Edit for callers holding data URIs.
func (g *Gemini) EditDataURI(ctx context.Context, uri, prompt string) (string, error) {
	src, err := images.ParseDataURI(uri)
	if err != nil {
		return "", err
	}
	result, err := g.Edit(ctx, src, prompt)
	if err != nil {
		return "", err
	}
	return result.DataURI(), nil
}

// ExtractImage takes the first inline image part of the first candidate.
// Without one it reports ErrSafetyBlocked when the response carries any
// safety rating other than negligible, otherwise ErrNoImage.
func ExtractImage(resp *genai.GenerateContentResponse) (images.Asset, error) {
	if resp == nil {
		return images.Asset{}, ErrNoImage
	}

	var candidate *genai.Candidate
	if len(resp.Candidates) > 0 {
		candidate = resp.Candidates[0]
	}

	if candidate != nil && candidate.Content != nil {
		for _, part := range candidate.Content.Parts {
			if part == nil || part.InlineData == nil || len(part.InlineData.Data) == 0 {
				continue
			}
			return images.Asset{
				MIMEType: part.InlineData.MIMEType,
				Data:     part.InlineData.Data,
			}, nil
		}
	}

	if candidate != nil && flagged(candidate.SafetyRatings) {
		return images.Asset{}, ErrSafetyBlocked
	}
	if fb := resp.PromptFeedback; fb != nil {
		if reason := string(fb.BlockReason); reason != "" && reason != "BLOCKED_REASON_UNSPECIFIED" {
			return images.Asset{}, fmt.Errorf("%w: %s", ErrSafetyBlocked, reason)
		}
		if flagged(fb.SafetyRatings) {
			return images.Asset{}, ErrSafetyBlocked
		}
	}

	return images.Asset{}, ErrNoImage
}

// flagged reports whether any rating is blocked or rated anything other
// than negligible. An unspecified probability counts as a signal.
func flagged(ratings []*genai.SafetyRating) bool {
	for _, r := range ratings {
		if r == nil {
			continue
		}
		if r.Blocked || r.Probability != genai.HarmProbabilityNegligible {
			return true
		}
	}
	return false
}
