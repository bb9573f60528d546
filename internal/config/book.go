package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	EnvBookMaxPages     = "COLORBOOK_BOOK_MAX_PAGES"
	EnvBookDefaultPages = "COLORBOOK_BOOK_DEFAULT_PAGES"
	EnvBookDefaultTier  = "COLORBOOK_BOOK_DEFAULT_TIER"
	EnvBookDocumentTTL  = "COLORBOOK_BOOK_DOCUMENT_TTL"
	EnvBookExport       = "COLORBOOK_BOOK_EXPORT"
	EnvBookExportPrefix = "COLORBOOK_BOOK_EXPORT_PREFIX"

	EnvCredentialsSelectionTimeout = "COLORBOOK_CREDENTIALS_SELECTION_TIMEOUT"
)

// BookConfig holds coloring book generation limits and document retention.
// Assembled documents live in memory for DocumentTTL; when Export is set
// they are also written to storage under ExportPrefix.
type BookConfig struct {
	MaxPages     int    `toml:"max_pages"`
	DefaultPages int    `toml:"default_pages"`
	DefaultTier  string `toml:"default_tier"`
	DocumentTTL  string `toml:"document_ttl"`
	Export       bool   `toml:"export"`
	ExportPrefix string `toml:"export_prefix"`
}

// DocumentTTLDuration returns DocumentTTL as a time.Duration.
func (c *BookConfig) DocumentTTLDuration() time.Duration {
	d, _ := time.ParseDuration(c.DocumentTTL)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *BookConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *BookConfig) Merge(overlay *BookConfig) {
	if overlay.MaxPages != 0 {
		c.MaxPages = overlay.MaxPages
	}
	if overlay.DefaultPages != 0 {
		c.DefaultPages = overlay.DefaultPages
	}
	if overlay.DefaultTier != "" {
		c.DefaultTier = overlay.DefaultTier
	}
	if overlay.DocumentTTL != "" {
		c.DocumentTTL = overlay.DocumentTTL
	}
	if overlay.Export {
		c.Export = true
	}
	if overlay.ExportPrefix != "" {
		c.ExportPrefix = overlay.ExportPrefix
	}
}

func (c *BookConfig) loadDefaults() {
	if c.MaxPages == 0 {
		c.MaxPages = 12
	}
	if c.DefaultPages == 0 {
		c.DefaultPages = 5
	}
	if c.DefaultTier == "" {
		c.DefaultTier = "standard"
	}
	if c.DocumentTTL == "" {
		c.DocumentTTL = "30m"
	}
	if c.ExportPrefix == "" {
		c.ExportPrefix = "books"
	}
}

func (c *BookConfig) loadEnv() {
	if v := os.Getenv(EnvBookMaxPages); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxPages = n
		}
	}
	if v := os.Getenv(EnvBookDefaultPages); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.DefaultPages = n
		}
	}
	if v := os.Getenv(EnvBookDefaultTier); v != "" {
		c.DefaultTier = v
	}
	if v := os.Getenv(EnvBookDocumentTTL); v != "" {
		c.DocumentTTL = v
	}
	if v := os.Getenv(EnvBookExport); v != "" {
		if export, err := strconv.ParseBool(v); err == nil {
			c.Export = export
		}
	}
	if v := os.Getenv(EnvBookExportPrefix); v != "" {
		c.ExportPrefix = v
	}
}

func (c *BookConfig) validate() error {
	if c.MaxPages < 1 {
		return fmt.Errorf("max_pages must be positive")
	}
	if c.DefaultPages < 1 || c.DefaultPages > c.MaxPages {
		return fmt.Errorf("default_pages must be between 1 and max_pages (%d)", c.MaxPages)
	}
	switch c.DefaultTier {
	case "standard", "high", "ultra":
	default:
		return fmt.Errorf("unknown default_tier: %q", c.DefaultTier)
	}
	if d, err := time.ParseDuration(c.DocumentTTL); err != nil {
		return fmt.Errorf("invalid document_ttl: %w", err)
	} else if d <= 0 {
		return fmt.Errorf("document_ttl must be positive")
	}
	return nil
}

// CredentialsConfig controls the credential selection surface.
type CredentialsConfig struct {
	SelectionTimeout string `toml:"selection_timeout"`
}

// SelectionTimeoutDuration returns SelectionTimeout as a time.Duration.
func (c *CredentialsConfig) SelectionTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.SelectionTimeout)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *CredentialsConfig) Finalize() error {
	if c.SelectionTimeout == "" {
		c.SelectionTimeout = "5m"
	}
	if v := os.Getenv(EnvCredentialsSelectionTimeout); v != "" {
		c.SelectionTimeout = v
	}
	d, err := time.ParseDuration(c.SelectionTimeout)
	if err != nil {
		return fmt.Errorf("invalid selection_timeout: %w", err)
	}
	if d <= 0 {
		return fmt.Errorf("selection_timeout must be positive")
	}
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *CredentialsConfig) Merge(overlay *CredentialsConfig) {
	if overlay.SelectionTimeout != "" {
		c.SelectionTimeout = overlay.SelectionTimeout
	}
}
