package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment variables read directly by Load.
const (
	EnvPrefix     = "KAMPUS_"
	EnvConfigFile = "KAMPUS_CONFIG"
	EnvDotEnvFile = "KAMPUS_ENV_FILE"

	defaultDotEnvFile = ".env"
)

// Load builds a Config by layering sources.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. dotenv file (KAMPUS_ENV_FILE, default .env) merged into the process env
//  3. YAML file if KAMPUS_CONFIG is set
//  4. env (prefix KAMPUS_)
//
// A missing api_url is not an error: DefaultAPIURL is used and
// UsingFallbackURL reports true so the caller can raise a diagnostic.
func Load(_ context.Context) (*Config, error) {
	base := New()

	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	k := koanf.New(".")

	if path := os.Getenv(EnvConfigFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// KAMPUS_API_URL -> api_url, KAMPUS_EXPORT_WORKERS -> export_workers
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if strings.TrimSpace(cfg.APIURL) == "" {
		cfg.APIURL = DefaultAPIURL
		cfg.fallbackURL = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadDotEnv merges the dotenv file into the process environment without
// overriding variables that are already set.
func loadDotEnv() error {
	path := os.Getenv(EnvDotEnvFile)
	if path == "" {
		path = defaultDotEnvFile
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
	}
	return nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	switch {
	case err != nil:
		return fmt.Errorf("%w: api_url: %w", ErrInvalidConfig, err)
	case u.Scheme != "http" && u.Scheme != "https":
		return fmt.Errorf("%w: api_url must be http(s), got %q", ErrInvalidConfig, c.APIURL)
	case u.Host == "":
		return fmt.Errorf("%w: api_url has no host: %q", ErrInvalidConfig, c.APIURL)
	case c.TimeoutMS <= 0:
		return fmt.Errorf("%w: timeout_ms must be positive", ErrInvalidConfig)
	case c.ExportWorkers <= 0:
		return fmt.Errorf("%w: export_workers must be positive", ErrInvalidConfig)
	case c.ExportPageSize <= 0:
		return fmt.Errorf("%w: export_page_size must be positive", ErrInvalidConfig)
	}
	if c.StaticFilesURL != "" {
		if s, err := url.Parse(c.StaticFilesURL); err != nil || s.Host == "" {
			return fmt.Errorf("%w: static_files_url is not an absolute URL: %q", ErrInvalidConfig, c.StaticFilesURL)
		}
	}
	return nil
}
