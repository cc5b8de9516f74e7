package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/lehigh-university-libraries/stylist/internal/moderation"
	"github.com/lehigh-university-libraries/stylist/internal/providers"
	"gopkg.in/yaml.v3"
)

// DefaultMaxUploadBytes matches the "PNG or JPG up to 10MB" upload hint.
const DefaultMaxUploadBytes = 10 * 1024 * 1024

// DefaultSessionTTL is how long an untouched session is kept in memory.
const DefaultSessionTTL = time.Hour

// DefaultExamples are the canned prompts offered next to the prompt field.
var DefaultExamples = []string{
	"Add a stylish black leather jacket.",
	"Change the t-shirt to a Hawaiian shirt.",
	"Give them a futuristic silver sci-fi suit.",
	"Add a cozy knitted sweater.",
	"Change the dress to a formal evening gown.",
}

// Config holds everything except the API key, which only ever comes from the
// environment.
type Config struct {
	APIKey         string        `yaml:"-"`
	Model          string        `yaml:"model"`
	BaseURL        string        `yaml:"base_url"`
	Timeout        time.Duration `yaml:"timeout"`
	Denylist       []string      `yaml:"denylist"`
	Examples       []string      `yaml:"examples"`
	MaxUploadBytes int64         `yaml:"max_upload_bytes"`
	SessionTTL     time.Duration `yaml:"session_ttl"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Model:          providers.DefaultModel,
		Denylist:       append([]string(nil), moderation.DefaultDenylist...),
		Examples:       append([]string(nil), DefaultExamples...),
		MaxUploadBytes: DefaultMaxUploadBytes,
		SessionTTL:     DefaultSessionTTL,
	}
}

// Load returns the defaults overlaid with the YAML file at path, if any, and
// the API key from the environment. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	cfg.APIKey = APIKeyFromEnv()
	return cfg, cfg.Validate()
}

// APIKeyFromEnv reads the Gemini credential. API_KEY is accepted for
// deployments configured for the browser client.
func APIKeyFromEnv() string {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		return key
	}
	return os.Getenv("API_KEY")
}

// Validate rejects settings that cannot work.
func (c Config) Validate() error {
	var errs []error
	if c.Model == "" {
		errs = append(errs, errors.New("model must not be empty"))
	}
	if c.Timeout < 0 {
		errs = append(errs, errors.New("timeout must not be negative"))
	}
	if c.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("max_upload_bytes must be positive"))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("session_ttl must be positive"))
	}
	return errors.Join(errs...)
}

// Provider returns the editor configuration.
func (c Config) Provider() providers.Config {
	return providers.Config{
		APIKey:  c.APIKey,
		Model:   c.Model,
		BaseURL: c.BaseURL,
		Timeout: c.Timeout,
	}
}
