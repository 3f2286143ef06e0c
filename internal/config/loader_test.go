package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/kampus/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		_ = os.Setenv(config.EnvDotEnvFile, filepath.Join(t.TempDir(), "missing.env"))
		defer clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it falls back to the local API URL and flags it", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.APIURL, convey.ShouldEqual, config.DefaultAPIURL)
				convey.So(cfg.UsingFallbackURL(), convey.ShouldBeTrue)
				convey.So(cfg.BaseURL(), convey.ShouldEqual, "http://localhost:3000/api/data")
				convey.So(cfg.TimeoutMS, convey.ShouldEqual, 15_000)
				convey.So(cfg.ExportWorkers, convey.ShouldEqual, 4)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("KAMPUS_API_URL", "https://backend.example.com/api/")
			_ = os.Setenv("KAMPUS_TIMEOUT_MS", "2500")
			_ = os.Setenv("KAMPUS_EXPORT_WORKERS", "8")
			_ = os.Setenv("KAMPUS_TOKEN", "secret")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.UsingFallbackURL(), convey.ShouldBeFalse)
				convey.So(cfg.BaseURL(), convey.ShouldEqual, "https://backend.example.com/api/data")
				convey.So(cfg.TimeoutMS, convey.ShouldEqual, 2500)
				convey.So(cfg.Timeout().Seconds(), convey.ShouldEqual, 2.5)
				convey.So(cfg.ExportWorkers, convey.ShouldEqual, 8)
				convey.So(cfg.Token, convey.ShouldEqual, "secret")
			})
		})

		convey.Convey("When loading config with a YAML file", func() {
			tmpFile := createTempConfigFile(t, `
api_url: "https://yaml.example.com/api"
resource_path: "/v2"
export_page_size: 50
static_files_url: "https://cdn.example.com"
`)
			_ = os.Setenv(config.EnvConfigFile, tmpFile)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from the file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.BaseURL(), convey.ShouldEqual, "https://yaml.example.com/api/v2")
				convey.So(cfg.ExportPageSize, convey.ShouldEqual, 50)
				convey.So(cfg.StaticFilesURL, convey.ShouldEqual, "https://cdn.example.com")
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			tmpFile := createTempConfigFile(t, `
api_url: "https://yaml.example.com/api"
export_workers: 2
`)
			_ = os.Setenv(config.EnvConfigFile, tmpFile)
			_ = os.Setenv("KAMPUS_API_URL", "https://env.example.com/api")

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.APIURL, convey.ShouldEqual, "https://env.example.com/api")
				convey.So(cfg.ExportWorkers, convey.ShouldEqual, 2)
			})
		})

		convey.Convey("When a dotenv file provides the API URL", func() {
			dotenv := filepath.Join(t.TempDir(), ".env")
			convey.So(os.WriteFile(dotenv, []byte("KAMPUS_API_URL=https://dotenv.example.com/api\nKAMPUS_LOG_LEVEL=debug\n"), 0o600), convey.ShouldBeNil)
			_ = os.Setenv(config.EnvDotEnvFile, dotenv)

			cfg, err := config.Load(ctx)

			convey.Convey("Then its values are applied", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.APIURL, convey.ShouldEqual, "https://dotenv.example.com/api")
				convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")
			})
		})

		convey.Convey("When the process env and the dotenv file disagree", func() {
			dotenv := filepath.Join(t.TempDir(), ".env")
			convey.So(os.WriteFile(dotenv, []byte("KAMPUS_API_URL=https://dotenv.example.com/api\n"), 0o600), convey.ShouldBeNil)
			_ = os.Setenv(config.EnvDotEnvFile, dotenv)
			_ = os.Setenv("KAMPUS_API_URL", "https://process.example.com/api")

			cfg, err := config.Load(ctx)

			convey.Convey("Then the process env wins", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.APIURL, convey.ShouldEqual, "https://process.example.com/api")
			})
		})
	})
}

func TestConfigLoaderEdgeCases(t *testing.T) {
	convey.Convey("Given invalid configuration sources", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		_ = os.Setenv(config.EnvDotEnvFile, filepath.Join(t.TempDir(), "missing.env"))
		defer clearConfigEnvVars()

		convey.Convey("When the YAML file is malformed", func() {
			_ = os.Setenv(config.EnvConfigFile, createTempConfigFile(t, `invalid: yaml: content: [`))

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the YAML file does not exist", func() {
			_ = os.Setenv(config.EnvConfigFile, "/non/existent/file.yaml")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the API URL is not http(s)", func() {
			_ = os.Setenv("KAMPUS_API_URL", "ftp://files.example.com")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should be rejected", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the timeout is zero", func() {
			_ = os.Setenv("KAMPUS_TIMEOUT_MS", "0")

			_, err := config.Load(ctx)

			convey.Convey("Then it should be rejected", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When export workers is negative", func() {
			_ = os.Setenv("KAMPUS_EXPORT_WORKERS", "-1")

			_, err := config.Load(ctx)

			convey.Convey("Then it should be rejected", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})
	})
}

func clearConfigEnvVars() {
	envVars := []string{
		config.EnvConfigFile,
		config.EnvDotEnvFile,
		"KAMPUS_API_URL",
		"KAMPUS_TIMEOUT_MS",
		"KAMPUS_EXPORT_WORKERS",
		"KAMPUS_TOKEN",
		"KAMPUS_LOG_LEVEL",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "kampus.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}
