package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/okian/kampus/internal/adapters/http/client"
	service "github.com/okian/kampus/internal/app"
	"github.com/okian/kampus/internal/cli"
	"github.com/okian/kampus/internal/config"
	"github.com/okian/kampus/pkg/logger"
	"github.com/okian/kampus/pkg/metrics"
)

// Exit codes.
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run wires configuration, logging, the client and the command runner, then
// executes args. Logs go to stderr so stdout only carries command output.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("kampus", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		verbose     = fs.Bool("v", false, "Enable debug logging")
		metricsFile = fs.String("metrics-file", "", "Write Prometheus metrics to this file on exit")
	)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	// Load configuration (defaults -> .env -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		// Use fmt for initialization errors since logger isn't available yet
		fmt.Fprintln(stderr, "failed to load config:", err)
		return exitFailure
	}

	if err := logger.Init(logger.WithOutput(stderr), logger.WithFormat(cfg.LogFormat)); err != nil {
		fmt.Fprintln(stderr, "failed to initialize logging:", err)
		return exitFailure
	}
	defer func() { _ = logger.Sync() }()

	log := logger.Named("kampus")

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	if *verbose {
		_ = logger.SetLevelString("debug")
	}

	if cfg.UsingFallbackURL() {
		log.Error(ctx, "api_url is not configured; using the local development backend",
			logger.String("api_url", cfg.APIURL),
			logger.String("hint", "set KAMPUS_API_URL"))
	}

	c, err := client.New(cfg.APIURL,
		client.WithResourcePath(cfg.ResourcePath),
		client.WithTimeout(cfg.Timeout()),
		client.WithToken(cfg.Token),
		client.WithUserAgent(cfg.UserAgent),
		client.WithStaticFilesURL(cfg.StaticFilesURL),
		client.WithObserver(client.LogErrors(log.Named("client"))),
		client.WithObserver(client.LogRequests(log.Named("client"))),
		client.WithMetrics(),
	)
	if err != nil {
		log.Error(ctx, "failed to create client", logger.Error(err))
		return exitFailure
	}

	svc := service.New(c,
		service.WithLogger(log.Named("export")),
		service.WithWorkers(cfg.ExportWorkers),
		service.WithPageSize(cfg.ExportPageSize),
	)

	runErr := cli.New(c, svc, stdout, stderr, log).Run(ctx, fs.Args())

	if *metricsFile != "" {
		if err := prometheus.WriteToTextfile(*metricsFile, metrics.GetRegistry()); err != nil {
			log.Warn(ctx, "failed to write metrics file", logger.String("file", *metricsFile), logger.Error(err))
		}
	}

	return exitCode(ctx, log, runErr)
}

func exitCode(ctx context.Context, log logger.Logger, err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, cli.ErrUsage):
		log.Error(ctx, "invalid command line", logger.Error(err))
		return exitUsage
	}

	fields := []logger.Field{logger.Error(err)}
	if status := client.StatusCode(err); status != 0 {
		fields = append(fields, logger.Int("status", status))
	}
	// Backend failures were already logged by the client's LogErrors observer.
	if loggedByClient(err) {
		log.Debug(ctx, "command failed", fields...)
	} else {
		log.Error(ctx, "command failed", fields...)
	}
	return exitFailure
}

func loggedByClient(err error) bool {
	return errors.Is(err, client.ErrHTTP) ||
		errors.Is(err, client.ErrNetwork) ||
		errors.Is(err, client.ErrDecode)
}
