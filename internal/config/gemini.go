package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	EnvGeminiAPIKey            = "COLORBOOK_GEMINI_API_KEY"
	EnvGeminiBaseURL           = "COLORBOOK_GEMINI_BASE_URL"
	EnvGeminiStandardModel     = "COLORBOOK_GEMINI_STANDARD_MODEL"
	EnvGeminiElevatedModel     = "COLORBOOK_GEMINI_ELEVATED_MODEL"
	EnvGeminiTextModel         = "COLORBOOK_GEMINI_TEXT_MODEL"
	EnvGeminiAspectRatio       = "COLORBOOK_GEMINI_ASPECT_RATIO"
	EnvGeminiRequestTimeout    = "COLORBOOK_GEMINI_REQUEST_TIMEOUT"
	EnvGeminiRequestsPerMinute = "COLORBOOK_GEMINI_REQUESTS_PER_MINUTE"
)

// GeminiConfig holds model selection, request pacing, and the ambient API key
// used for standard-tier requests when no credential has been selected.
// BaseURL overrides the Gemini endpoint, typically for a local stand-in.
type GeminiConfig struct {
	APIKey            string `toml:"api_key"`
	BaseURL           string `toml:"base_url"`
	StandardModel     string `toml:"standard_model"`
	ElevatedModel     string `toml:"elevated_model"`
	TextModel         string `toml:"text_model"`
	AspectRatio       string `toml:"aspect_ratio"`
	RequestTimeout    string `toml:"request_timeout"`
	RequestsPerMinute int    `toml:"requests_per_minute"`
	Burst             int    `toml:"burst"`
}

// RequestTimeoutDuration returns RequestTimeout as a time.Duration.
func (c *GeminiConfig) RequestTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.RequestTimeout)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *GeminiConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *GeminiConfig) Merge(overlay *GeminiConfig) {
	if overlay.APIKey != "" {
		c.APIKey = overlay.APIKey
	}
	if overlay.BaseURL != "" {
		c.BaseURL = overlay.BaseURL
	}
	if overlay.StandardModel != "" {
		c.StandardModel = overlay.StandardModel
	}
	if overlay.ElevatedModel != "" {
		c.ElevatedModel = overlay.ElevatedModel
	}
	if overlay.TextModel != "" {
		c.TextModel = overlay.TextModel
	}
	if overlay.AspectRatio != "" {
		c.AspectRatio = overlay.AspectRatio
	}
	if overlay.RequestTimeout != "" {
		c.RequestTimeout = overlay.RequestTimeout
	}
	if overlay.RequestsPerMinute != 0 {
		c.RequestsPerMinute = overlay.RequestsPerMinute
	}
	if overlay.Burst != 0 {
		c.Burst = overlay.Burst
	}
}

func (c *GeminiConfig) loadDefaults() {
	if c.StandardModel == "" {
		c.StandardModel = "gemini-2.5-flash-image"
	}
	if c.ElevatedModel == "" {
		c.ElevatedModel = "gemini-3-pro-image-preview"
	}
	if c.TextModel == "" {
		c.TextModel = "gemini-3-pro-preview"
	}
	if c.AspectRatio == "" {
		c.AspectRatio = "3:4"
	}
	if c.RequestTimeout == "" {
		c.RequestTimeout = "2m"
	}
	if c.RequestsPerMinute == 0 {
		c.RequestsPerMinute = 10
	}
	if c.Burst == 0 {
		c.Burst = 1
	}
}

func (c *GeminiConfig) loadEnv() {
	if v := os.Getenv(EnvGeminiAPIKey); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv(EnvGeminiBaseURL); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv(EnvGeminiStandardModel); v != "" {
		c.StandardModel = v
	}
	if v := os.Getenv(EnvGeminiElevatedModel); v != "" {
		c.ElevatedModel = v
	}
	if v := os.Getenv(EnvGeminiTextModel); v != "" {
		c.TextModel = v
	}
	if v := os.Getenv(EnvGeminiAspectRatio); v != "" {
		c.AspectRatio = v
	}
	if v := os.Getenv(EnvGeminiRequestTimeout); v != "" {
		c.RequestTimeout = v
	}
	if v := os.Getenv(EnvGeminiRequestsPerMinute); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RequestsPerMinute = n
		}
	}
}

func (c *GeminiConfig) validate() error {
	if c.RequestsPerMinute < 1 {
		return fmt.Errorf("requests_per_minute must be positive")
	}
	if c.Burst < 1 {
		return fmt.Errorf("burst must be positive")
	}
	if _, err := time.ParseDuration(c.RequestTimeout); err != nil {
		return fmt.Errorf("invalid request_timeout: %w", err)
	}
	return nil
}
