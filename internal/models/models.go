package models

import "time"

// View is everything a client needs to draw the studio. It is derived from a
// session snapshot and never mutated by handlers.
type View struct {
	SessionID string     `json:"session_id"`
	State     string     `json:"state"` // "idle", "loading", "succeeded", "failed"
	Upload    UploadPane `json:"upload"`
	Output    OutputPane `json:"output"`
	Error     string     `json:"error,omitempty"`
	Prompt    string     `json:"prompt"`
	Examples  []string   `json:"examples"`
	Controls  Controls   `json:"controls"`
	// Refresh asks HTML clients to poll while an edit is running.
	Refresh   bool      `json:"refresh"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UploadPane shows either the upload placeholder or a preview of the source image.
type UploadPane struct {
	Placeholder bool   `json:"placeholder"`
	PreviewURI  string `json:"preview_uri,omitempty"`
}

// OutputPane shows the placeholder, the loading spinner, or the result.
type OutputPane struct {
	Placeholder bool   `json:"placeholder"`
	Loading     bool   `json:"loading"`
	ResultURI   string `json:"result_uri,omitempty"`
}

// Controls mirrors which inputs are enabled.
type Controls struct {
	PromptEnabled   bool `json:"prompt_enabled"`
	ExamplesEnabled bool `json:"examples_enabled"`
	GenerateEnabled bool `json:"generate_enabled"`
	PromoteEnabled  bool `json:"promote_enabled"`
}

// SessionSummary is the list entry returned by GET /api/sessions
type SessionSummary struct {
	ID        string    `json:"id"`
	State     string    `json:"state"`
	HasImage  bool      `json:"has_image"`
	CreatedAt time.Time `json:"created_at"`
}
