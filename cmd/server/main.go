// Package main provides the advising server entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/coursewise/advisor-go/internal/app"
	"github.com/coursewise/advisor-go/internal/buildinfo"
	"github.com/coursewise/advisor-go/internal/config"
	"github.com/coursewise/advisor-go/internal/sentry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := sentry.Initialize(sentry.Config{
		DSN:         cfg.SentryDSN,
		Environment: cfg.SentryEnvironment,
		Release:     buildinfo.Version,
		SampleRate:  cfg.SentrySampleRate,
	}); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to initialize Sentry: %v\n", err)
		os.Exit(1)
	}
	defer sentry.Flush(2 * time.Second)

	application, err := app.Initialize(context.Background(), cfg)
	if err != nil {
		sentry.CaptureException(err)
		_, _ = fmt.Fprintf(os.Stderr, "Failed to initialize application: %v\n", err)
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		sentry.CaptureException(err)
		_, _ = fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}
