// Package cmd hosts the shared process entrypoint: configuration path
// resolution, signal handling and logger teardown, independent of
// which application gets built on top.
package cmd

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bazumi/promobot/core/buildinfo"
	"github.com/bazumi/promobot/core/logger"
)

// App is a bootstrapped application ready to run until its context is
// cancelled.
type App interface {
	Run(ctx context.Context) error
}

// Options describe how to build the application.
type Options struct {
	// ConfigEnvVar names the env variable carrying the config path;
	// defaults to CONFIG_PATH. An empty resolved path means env-only
	// configuration.
	ConfigEnvVar      string
	DefaultConfigPath string

	Bootstrap func(ctx context.Context, configPath string) (App, error)
}

// Run resolves configuration, bootstraps the application and runs it
// under a signal-aware context.
func Run(opts Options) error {
	if opts.Bootstrap == nil {
		return fmt.Errorf("cmd: Bootstrap is required")
	}

	env := opts.ConfigEnvVar
	if env == "" {
		env = "CONFIG_PATH"
	}
	cfgPath := os.Getenv(env)
	if cfgPath == "" {
		cfgPath = opts.DefaultConfigPath
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	startedAt := time.Now()
	application, err := opts.Bootstrap(ctx, cfgPath)
	if err != nil {
		// The logger may not exist yet when bootstrap fails.
		log.Printf("bootstrap failed: %v", err)
		return err
	}
	defer func() {
		if err := logger.Shutdown(); err != nil {
			log.Printf("logger shutdown error: %v", err)
		}
	}()

	logger.Info(ctx, "app", "ready",
		slog.String("version", buildinfo.String()),
		slog.Duration("startup_duration", logger.RoundMS(time.Since(startedAt))),
	)

	err = application.Run(ctx)

	logger.Info(context.Background(), "app", "shutdown")
	return err
}
