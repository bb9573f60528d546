package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/JaimeStill/colorbook/internal/config"
)

const baseConfig = `
shutdown_timeout = "30s"
version = "0.1.0"

[server]
host = "0.0.0.0"
port = 8080
read_timeout = "1m"
write_timeout = "10m"
shutdown_timeout = "30s"

[database]
host = "localhost"
port = 5432
name = "colorbook"
user = "colorbook"
password = "colorbook"
ssl_mode = "disable"

[storage]
provider = "azure"
container_name = "books"
connection_string = "DefaultEndpointsProtocol=http;AccountName=devstoreaccount1;AccountKey=a2V5;BlobEndpoint=http://127.0.0.1:10000/devstoreaccount1;"

[api]
base_path = "/api"

[api.cors]
enabled = false

[api.pagination]
default_page_size = 25
max_page_size = 50

[gemini]
api_key = "ambient-key"
requests_per_minute = 20

[book]
max_pages = 8
default_pages = 4
export = true

[credentials]
selection_timeout = "2m"
`

const overlayConfig = `
[server]
port = 9090

[database]
host = "prodhost"

[book]
default_tier = "high"
`

func writeConfig(t *testing.T, dir, filename, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, filename), []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", filename, err)
	}
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	orig, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { os.Chdir(orig) })
}

func loadBase(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	writeConfig(t, dir, config.BaseConfigFile, baseConfig)
	chdir(t, dir)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	return cfg
}

func TestLoad(t *testing.T) {
	cfg := loadBase(t)

	tests := []struct {
		name     string
		got      any
		expected any
	}{
		{"server port", cfg.Server.Port, 8080},
		{"server header timeout", cfg.Server.HeaderTimeoutDuration(), 10 * time.Second},
		{"db host", cfg.Database.Host, "localhost"},
		{"storage provider", cfg.Storage.Provider, "azure"},
		{"storage container", cfg.Storage.ContainerName, "books"},
		{"api base path", cfg.API.BasePath, "/api"},
		{"pagination default", cfg.API.Pagination.DefaultPageSize, 25},
		{"pagination max", cfg.API.Pagination.MaxPageSize, 50},
		{"gemini key", cfg.Gemini.APIKey, "ambient-key"},
		{"gemini rpm", cfg.Gemini.RequestsPerMinute, 20},
		{"gemini standard model", cfg.Gemini.StandardModel, "gemini-2.5-flash-image"},
		{"gemini elevated model", cfg.Gemini.ElevatedModel, "gemini-3-pro-image-preview"},
		{"book max pages", cfg.Book.MaxPages, 8},
		{"book default pages", cfg.Book.DefaultPages, 4},
		{"book default tier", cfg.Book.DefaultTier, "standard"},
		{"book export", cfg.Book.Export, true},
		{"book export prefix", cfg.Book.ExportPrefix, "books"},
		{"selection timeout", cfg.Credentials.SelectionTimeoutDuration(), 2 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("got %v, want %v", tt.got, tt.expected)
			}
		})
	}
}

func TestLoadWithOverlay(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, config.BaseConfigFile, baseConfig)
	writeConfig(t, dir, "config.staging.toml", overlayConfig)
	chdir(t, dir)

	t.Setenv(config.EnvColorbookEnv, "staging")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("server port: got %d, want 9090 (from overlay)", cfg.Server.Port)
	}
	if cfg.Database.Host != "prodhost" {
		t.Errorf("db host: got %s, want prodhost (from overlay)", cfg.Database.Host)
	}
	if cfg.Database.Port != 5432 {
		t.Errorf("db port: got %d, want 5432 (from base)", cfg.Database.Port)
	}
	if cfg.Book.DefaultTier != "high" {
		t.Errorf("default tier: got %s, want high (from overlay)", cfg.Book.DefaultTier)
	}
	if cfg.Book.MaxPages != 8 {
		t.Errorf("max pages: got %d, want 8 (from base)", cfg.Book.MaxPages)
	}
}

func TestLoadEnvVarOverrides(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, config.BaseConfigFile, baseConfig)
	chdir(t, dir)

	t.Setenv(config.EnvColorbookVersion, "2.0.0")
	t.Setenv(config.EnvServerPort, "3000")
	t.Setenv(config.EnvGeminiAPIKey, "env-key")
	t.Setenv(config.EnvBookMaxPages, "10")
	t.Setenv(config.EnvGeminiBaseURL, "http://localhost:9000")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Version != "2.0.0" {
		t.Errorf("version: got %s, want 2.0.0", cfg.Version)
	}
	if cfg.Server.Port != 3000 {
		t.Errorf("server port: got %d, want 3000", cfg.Server.Port)
	}
	if cfg.Gemini.APIKey != "env-key" {
		t.Errorf("gemini key: got %s, want env-key", cfg.Gemini.APIKey)
	}
	if cfg.Book.MaxPages != 10 {
		t.Errorf("max pages: got %d, want 10", cfg.Book.MaxPages)
	}
	if cfg.Gemini.BaseURL != "http://localhost:9000" {
		t.Errorf("gemini base url: got %s", cfg.Gemini.BaseURL)
	}
}

func TestLoadNoConfigFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	t.Setenv("COLORBOOK_DB_NAME", "testdb")
	t.Setenv("COLORBOOK_STORAGE_BASE_PATH", "exports")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load without config.toml failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("server port default: got %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Name != "testdb" {
		t.Errorf("db name from env: got %s, want testdb", cfg.Database.Name)
	}
	if cfg.Storage.Provider != "local" {
		t.Errorf("storage provider default: got %s, want local", cfg.Storage.Provider)
	}
	if cfg.Storage.BasePath != "exports" {
		t.Errorf("storage base path from env: got %s, want exports", cfg.Storage.BasePath)
	}
	if cfg.Book.MaxPages != 12 {
		t.Errorf("max pages default: got %d, want 12", cfg.Book.MaxPages)
	}
	if cfg.Book.DefaultPages != 5 {
		t.Errorf("default pages default: got %d, want 5", cfg.Book.DefaultPages)
	}
	if d := cfg.Book.DocumentTTLDuration(); d != 30*time.Minute {
		t.Errorf("document ttl default: got %v, want 30m", d)
	}
	if d := cfg.Gemini.RequestTimeoutDuration(); d != 2*time.Minute {
		t.Errorf("request timeout default: got %v, want 2m", d)
	}
}

func TestLoadInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, config.BaseConfigFile, `[server`)
	chdir(t, dir)

	if _, err := config.Load(); err == nil {
		t.Fatal("expected error for invalid TOML")
	}
}

func TestEnvDefault(t *testing.T) {
	cfg := loadBase(t)
	if cfg.Env() != "local" {
		t.Errorf("env: got %s, want local", cfg.Env())
	}
}

func TestEnvFromEnvVar(t *testing.T) {
	t.Setenv(config.EnvColorbookEnv, "production")
	cfg := loadBase(t)
	if cfg.Env() != "production" {
		t.Errorf("env: got %s, want production", cfg.Env())
	}
}

func TestShutdownTimeoutDuration(t *testing.T) {
	cfg := loadBase(t)
	if d := cfg.ShutdownTimeoutDuration(); d != 30*time.Second {
		t.Errorf("shutdown timeout: got %v, want 30s", d)
	}
}

func TestServerAddr(t *testing.T) {
	cfg := loadBase(t)
	if addr := cfg.Server.Addr(); addr != "0.0.0.0:8080" {
		t.Errorf("addr: got %s, want 0.0.0.0:8080", addr)
	}
}

func TestPaginationEnvOverrides(t *testing.T) {
	t.Setenv("COLORBOOK_PAGINATION_DEFAULT_PAGE_SIZE", "10")
	t.Setenv("COLORBOOK_PAGINATION_MAX_PAGE_SIZE", "200")
	cfg := loadBase(t)

	if cfg.API.Pagination.DefaultPageSize != 10 {
		t.Errorf("pagination default_page_size: got %d, want 10", cfg.API.Pagination.DefaultPageSize)
	}
	if cfg.API.Pagination.MaxPageSize != 200 {
		t.Errorf("pagination max_page_size: got %d, want 200", cfg.API.Pagination.MaxPageSize)
	}
}

func TestMaxBodySizeBytes(t *testing.T) {
	tests := []struct {
		name string
		size string
		want int64
	}{
		{"valid 1MB", "1MB", 1024 * 1024},
		{"valid 256KB", "256KB", 256 * 1024},
		{"invalid falls back to 1MB", "bad", 1024 * 1024},
		{"empty falls back to 1MB", "", 1024 * 1024},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.APIConfig{MaxBodySize: tt.size}
			if got := cfg.MaxBodySizeBytes(); got != tt.want {
				t.Errorf("MaxBodySizeBytes() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name    string
		config  string
		wantErr string
	}{
		{
			name:    "invalid port",
			config:  "[server]\nport = 99999\n",
			wantErr: "invalid port",
		},
		{
			name:    "invalid read_timeout",
			config:  "[server]\nread_timeout = \"bad\"\n",
			wantErr: "invalid read_timeout",
		},
		{
			name:    "default pages exceed max",
			config:  "[book]\nmax_pages = 3\ndefault_pages = 4\n",
			wantErr: "default_pages must be between",
		},
		{
			name:    "unknown default tier",
			config:  "[book]\ndefault_tier = \"premium\"\n",
			wantErr: "unknown default_tier",
		},
		{
			name:    "invalid document ttl",
			config:  "[book]\ndocument_ttl = \"0s\"\n",
			wantErr: "document_ttl must be positive",
		},
		{
			name:    "invalid selection timeout",
			config:  "[credentials]\nselection_timeout = \"soon\"\n",
			wantErr: "invalid selection_timeout",
		},
		{
			name:    "unknown storage provider",
			config:  "[storage]\nprovider = \"s3\"\n",
			wantErr: "unknown provider",
		},
		{
			name:    "invalid max body size",
			config:  "[api]\nmax_body_size = \"lots\"\n",
			wantErr: "invalid max_body_size",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeConfig(t, dir, config.BaseConfigFile, tt.config)
			chdir(t, dir)

			_, err := config.Load()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}
