package daemonrun

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"inkwell/internal/boot"
	"inkwell/internal/config"
	"inkwell/internal/daemon"
	"inkwell/internal/logging"
	"inkwell/internal/preflight"
)

// Options configures daemon process runtime behavior.
type Options struct {
	LogLevel    string
	BootTimeout time.Duration
}

// Run boots inkwelld and serves until interrupted.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if opts.LogLevel != "" {
		cfg.Logging.Level = opts.LogLevel
	}
	baseLogger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	hub := logging.NewStreamHub(4096)
	logger := logging.TeeLogger(baseLogger, logging.NewStreamHandler(hub, slog.LevelInfo))

	d, err := daemon.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}
	if err := d.Acquire(); err != nil {
		return err
	}
	defer d.Release()

	rt, err := Assemble(cfg, logger, hub)
	if err != nil {
		return err
	}
	defer rt.Close()

	ready, err := boot.New(rt.Deps).Boot(signalCtx, boot.Options{Timeout: opts.BootTimeout})
	if err != nil {
		return err
	}

	for _, result := range preflight.RunAll(signalCtx, cfg) {
		if result.Passed {
			continue
		}
		logging.WarnWithContext(logger, "preflight check failed", "preflight_failed",
			logging.String("check", result.Name),
			logging.String("detail", result.Detail),
			logging.String(logging.FieldErrorHint, "fix the path or service named in the detail"),
			logging.String(logging.FieldImpact, "some features may not work"),
		)
	}

	logger.Info("inkwelld ready",
		logging.String(logging.FieldEventType, "daemon_ready"),
		logging.String("bind", cfg.Server.Bind),
		logging.String("site_url", cfg.Site.URL),
	)
	if err := d.Serve(signalCtx, ready); err != nil {
		return err
	}
	logger.Info("inkwelld shutting down")
	return nil
}
