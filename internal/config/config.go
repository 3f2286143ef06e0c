// Package config defines client configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults; Load layers sources on top.
// - External errors are wrapped with this package's sentinel kinds.
package config

import (
	"strings"
	"time"
)

// DefaultAPIURL is the local-development backend used when api_url is unset.
const DefaultAPIURL = "http://localhost:3000/api"

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// APIURL is the backend API root, e.g. "https://example.vercel.app/api".
	APIURL string `koanf:"api_url"`

	// ResourcePath is the controller prefix appended to APIURL.
	ResourcePath string `koanf:"resource_path"`

	// StaticFilesURL serves bare photo filenames. Optional.
	StaticFilesURL string `koanf:"static_files_url"`

	// Token is sent as a bearer token when set.
	Token string `koanf:"token"`

	// TimeoutMS bounds each backend request.
	TimeoutMS int `koanf:"timeout_ms"`

	// UserAgent is sent on every request.
	UserAgent string `koanf:"user_agent"`

	// ExportWorkers bounds concurrent page fetches during export.
	ExportWorkers int `koanf:"export_workers"`

	// ExportPageSize is the page limit used while exporting.
	ExportPageSize int `koanf:"export_page_size"`

	fallbackURL bool
}

// New returns a Config populated with defaults. APIURL is left empty so that
// Load can tell whether any source provided it.
func New() *Config {
	return &Config{
		LogLevel:       "info",
		LogFormat:      "text",
		ResourcePath:   "/data",
		TimeoutMS:      15_000,
		UserAgent:      "kampus-client/1.0",
		ExportWorkers:  4,
		ExportPageSize: 100,
	}
}

// Timeout returns TimeoutMS as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

// UsingFallbackURL reports whether Load substituted DefaultAPIURL.
func (c *Config) UsingFallbackURL() bool {
	return c.fallbackURL
}

// BaseURL joins APIURL and ResourcePath without doubled slashes.
func (c *Config) BaseURL() string {
	base := strings.TrimRight(c.APIURL, "/")
	res := strings.Trim(c.ResourcePath, "/")
	if res == "" {
		return base
	}
	return base + "/" + res
}
