package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/lehigh-university-libraries/stylist/internal/images"
	"github.com/lehigh-university-libraries/stylist/internal/providers"
	"google.golang.org/genai"
)

var jpegBytes = []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00\x01\x01\x00\x00\x01\x00\x01\x00\x00")

func TestExtractImage(t *testing.T) {
	tests := []struct {
		name        string
		resp        *genai.GenerateContentResponse
		expectedErr error
		expected    images.Asset
	}{
		{
			name: "first image part wins",
			resp: &genai.GenerateContentResponse{
				Candidates: []*genai.Candidate{{
					Content: &genai.Content{Parts: []*genai.Part{
						{Text: "here you go"},
						{InlineData: &genai.Blob{MIMEType: "image/png", Data: []byte("first")}},
						{InlineData: &genai.Blob{MIMEType: "image/jpeg", Data: []byte("second")}},
					}},
				}},
			},
			expected: images.Asset{MIMEType: "image/png", Data: []byte("first")},
		},
		{
			name: "image wins over safety ratings",
			resp: &genai.GenerateContentResponse{
				Candidates: []*genai.Candidate{{
					Content: &genai.Content{Parts: []*genai.Part{
						{InlineData: &genai.Blob{MIMEType: "image/jpeg", Data: []byte("img")}},
					}},
					SafetyRatings: []*genai.SafetyRating{{Probability: genai.HarmProbabilityMedium}},
				}},
			},
			expected: images.Asset{MIMEType: "image/jpeg", Data: []byte("img")},
		},
		{
			name: "non-negligible rating without image is a safety block",
			resp: &genai.GenerateContentResponse{
				Candidates: []*genai.Candidate{{
					Content: &genai.Content{Parts: []*genai.Part{{Text: "I can't help with that"}}},
					SafetyRatings: []*genai.SafetyRating{
						{Probability: genai.HarmProbabilityNegligible},
						{Probability: genai.HarmProbabilityLow},
					},
				}},
			},
			expectedErr: ErrSafetyBlocked,
		},
		{
			name: "blocked rating is a safety block",
			resp: &genai.GenerateContentResponse{
				Candidates: []*genai.Candidate{{
					SafetyRatings: []*genai.SafetyRating{{Probability: genai.HarmProbabilityNegligible, Blocked: true}},
				}},
			},
			expectedErr: ErrSafetyBlocked,
		},
		{
			name: "unspecified rating without image is a safety block",
			resp: &genai.GenerateContentResponse{
				Candidates: []*genai.Candidate{{
					SafetyRatings: []*genai.SafetyRating{{Probability: genai.HarmProbabilityUnspecified}},
				}},
			},
			expectedErr: ErrSafetyBlocked,
		},
		{
			name: "prompt feedback block reason is a safety block",
			resp: &genai.GenerateContentResponse{
				PromptFeedback: &genai.GenerateContentResponsePromptFeedback{BlockReason: "SAFETY"},
			},
			expectedErr: ErrSafetyBlocked,
		},
		{
			name: "negligible ratings only is an empty result",
			resp: &genai.GenerateContentResponse{
				Candidates: []*genai.Candidate{{
					Content:       &genai.Content{Parts: []*genai.Part{{Text: "no"}}},
					SafetyRatings: []*genai.SafetyRating{{Probability: genai.HarmProbabilityNegligible}},
				}},
			},
			expectedErr: ErrNoImage,
		},
		{
			name:        "no candidates is an empty result",
			resp:        &genai.GenerateContentResponse{},
			expectedErr: ErrNoImage,
		},
		{
			name: "inline part without data is skipped",
			resp: &genai.GenerateContentResponse{
				Candidates: []*genai.Candidate{{
					Content: &genai.Content{Parts: []*genai.Part{
						{InlineData: &genai.Blob{MIMEType: "image/png"}},
					}},
				}},
			},
			expectedErr: ErrNoImage,
		},
		{
			name:        "nil response is an empty result",
			resp:        nil,
			expectedErr: ErrNoImage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			asset, err := ExtractImage(tt.resp)
			if tt.expectedErr != nil {
				if !errors.Is(err, tt.expectedErr) {
					t.Fatalf("Expected %v, got %v", tt.expectedErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if asset.MIMEType != tt.expected.MIMEType || !bytes.Equal(asset.Data, tt.expected.Data) {
				t.Errorf("Expected %s %q, got %s %q", tt.expected.MIMEType, tt.expected.Data, asset.MIMEType, asset.Data)
			}
		})
	}
}

func TestSafetyAndEmptyErrorsAreDistinct(t *testing.T) {
	if errors.Is(ErrSafetyBlocked, ErrNoImage) || errors.Is(ErrNoImage, ErrSafetyBlocked) {
		t.Fatal("Expected safety and empty-result errors to be distinct")
	}
}

// fakeGemini serves a canned generateContent response and records requests.
func fakeGemini(t *testing.T, status int, body string) (*httptest.Server, *atomic.Int32, *atomic.Value) {
	t.Helper()
	var calls atomic.Int32
	var lastBody atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		data, _ := io.ReadAll(r.Body)
		lastBody.Store(string(data))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls, &lastBody
}

func newTestGemini(t *testing.T, baseURL string) *Gemini {
	t.Helper()
	g, err := New(context.Background(), providers.Config{APIKey: "test-key", BaseURL: baseURL + "/"})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}
	return g
}

func TestEditSendsOneRequest(t *testing.T) {
	payload := []byte("edited-image-bytes")
	body := fmt.Sprintf(`{"candidates":[{"content":{"role":"model","parts":[{"inlineData":{"mimeType":"image/png","data":%q}}]},"finishReason":"STOP"}]}`,
		base64.StdEncoding.EncodeToString(payload))
	srv, calls, lastBody := fakeGemini(t, http.StatusOK, body)

	g := newTestGemini(t, srv.URL)
	src := images.Asset{MIMEType: images.MIMEJPEG, Data: jpegBytes}

	result, err := g.EditDataURI(context.Background(), src.DataURI(), "Add a cool denim jacket")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	expected := "data:image/png;base64," + base64.StdEncoding.EncodeToString(payload)
	if result != expected {
		t.Errorf("Expected %s, got %s", expected, result)
	}
	if calls.Load() != 1 {
		t.Errorf("Expected exactly 1 call, got %d", calls.Load())
	}

	sent, _ := lastBody.Load().(string)
	for _, want := range []string{"Add a cool denim jacket", "IMAGE", base64.StdEncoding.EncodeToString(jpegBytes)} {
		if !strings.Contains(sent, want) {
			t.Errorf("Expected request body to contain %q, got %s", want, sent)
		}
	}
}

func TestEditTransportFailure(t *testing.T) {
	srv, calls, _ := fakeGemini(t, http.StatusInternalServerError, `{"error":{"code":500,"message":"boom","status":"INTERNAL"}}`)

	g := newTestGemini(t, srv.URL)
	_, err := g.Edit(context.Background(), images.Asset{MIMEType: images.MIMEPNG, Data: []byte("png")}, "Add a hat")
	if !errors.Is(err, ErrGeneration) {
		t.Fatalf("Expected ErrGeneration, got %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("Expected no retries, got %d calls", calls.Load())
	}
}

func TestEditRejectsBeforeCalling(t *testing.T) {
	srv, calls, _ := fakeGemini(t, http.StatusOK, `{}`)
	g := newTestGemini(t, srv.URL)

	tests := []struct {
		name        string
		src         images.Asset
		prompt      string
		expectedErr error
	}{
		{name: "gif", src: images.Asset{MIMEType: "image/gif", Data: []byte("GIF89a")}, prompt: "hat", expectedErr: images.ErrUnsupportedFormat},
		{name: "webp", src: images.Asset{MIMEType: "image/webp", Data: []byte("RIFF")}, prompt: "hat", expectedErr: images.ErrUnsupportedFormat},
		{name: "missing image", src: images.Asset{MIMEType: images.MIMEPNG}, prompt: "hat", expectedErr: ErrEmptyRequest},
		{name: "blank prompt", src: images.Asset{MIMEType: images.MIMEPNG, Data: []byte("png")}, prompt: "  ", expectedErr: ErrEmptyRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := g.Edit(context.Background(), tt.src, tt.prompt); !errors.Is(err, tt.expectedErr) {
				t.Errorf("Expected %v, got %v", tt.expectedErr, err)
			}
		})
	}

	if calls.Load() != 0 {
		t.Errorf("Expected no outbound calls, got %d", calls.Load())
	}
}

func TestNewRequiresAPIKey(t *testing.T) {
	if _, err := New(context.Background(), providers.Config{}); err == nil {
		t.Fatal("Expected an error without an API key")
	}
}
