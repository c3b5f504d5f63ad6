// Package cmd hosts the process lifecycle shared by binaries: configuration
// loading, bootstrap, signal handling and shutdown ordering.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/contact-solution/leadbot/core/bootstrap"
	coreconfig "github.com/contact-solution/leadbot/core/config"
	"github.com/contact-solution/leadbot/core/logger"
)

// Options describe how to load configuration and bootstrap the app.
type Options struct {
	ConfigEnvVar      string
	DefaultConfigPath string

	LoadConfig func(path string) (*coreconfig.Config, error)
	Bootstrap  func(ctx context.Context, opts bootstrap.Options) (*bootstrap.App, error)

	ShutdownLogger func() error
}

// Run loads configuration, bootstraps the app and serves the webhook until
// an interrupt or termination signal arrives.
func Run(opts Options) error {
	env := opts.ConfigEnvVar
	if env == "" {
		env = "CONFIG_PATH"
	}
	cfgPath := os.Getenv(env)
	if cfgPath == "" {
		cfgPath = opts.DefaultConfigPath
	}
	if cfgPath == "" {
		return fmt.Errorf("cmd: config path not provided via %s or DefaultConfigPath", env)
	}

	loadConfig := opts.LoadConfig
	if loadConfig == nil {
		loadConfig = coreconfig.Load
	}

	log.Printf("loading config: %s", cfgPath)
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return fmt.Errorf("cmd: failed to load config: %w", err)
	}

	shutdownLogger := opts.ShutdownLogger
	if shutdownLogger == nil {
		shutdownLogger = logger.Shutdown
	}
	defer func() {
		if err := shutdownLogger(); err != nil {
			log.Printf("logger shutdown error: %v", err)
		}
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	boot := opts.Bootstrap
	if boot == nil {
		boot = bootstrap.Run
	}

	startedAt := time.Now()
	app, err := boot(ctx, bootstrap.Options{Config: cfg})
	if err != nil {
		return fmt.Errorf("cmd: bootstrap failed: %w", err)
	}
	defer app.Close()

	logger.L.With("component", "app").Info("app ready",
		slog.String("event", "ready"),
		slog.String("listen", app.Server.Addr()),
		slog.Duration("startup_duration", logger.RoundMS(time.Since(startedAt))),
	)

	err = app.Server.Start(ctx)

	logger.L.With("component", "app").Info("shutting down...",
		slog.String("event", "shutdown"),
	)

	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
