package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jpalmerr/gradeboard"
	"github.com/jpalmerr/gradeboard/config"
)

const (
	shutdownTimeout = 10 * time.Second
)

// newLogger creates a JSON logger for CLI use.
func newLogger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// serveCmd starts the GradeBoard dashboard server.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard server",
	Long: `Start the GradeBoard dashboard server.

The server will:
  - Load configuration from the specified YAML file
  - Start refreshing all configured sources
  - Serve the dashboard UI, JSON API and /metrics on the configured port

With --watch, threshold changes in the config file are applied without a
restart. Other changes are logged and take effect on the next start.

The server runs until interrupted (Ctrl+C) or receives SIGTERM.

Example:
  gradeboard serve -c config.yaml
  gradeboard serve --config /etc/gradeboard/config.yaml --watch`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	serveCmd.Flags().Bool("watch", false, "reload thresholds when the config file changes")
	_ = serveCmd.MarkFlagRequired("config")
}

func runServe(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	watch, _ := cmd.Flags().GetBool("watch")

	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger := newLogger(cfg.LogLevel.Level())

	logger.Info("config loaded", "sources", len(cfg.Sources), "watch", watch)
	logger.Info("starting server",
		"port", cfg.Port,
		"refresh_interval", cfg.RefreshInterval.Duration().String(),
	)

	sources, err := config.BuildSources(cfg)
	if err != nil {
		return fmt.Errorf("failed to build sources: %w", err)
	}

	opts := []gradeboard.Option{
		gradeboard.WithSources(sources...),
		gradeboard.WithPort(cfg.Port),
		gradeboard.WithRefreshInterval(cfg.RefreshInterval.Duration()),
		gradeboard.WithLogger(logger),
	}
	if cfg.Title != "" {
		opts = append(opts, gradeboard.WithTitle(cfg.Title))
	}

	board, err := gradeboard.New(opts...)
	if err != nil {
		return fmt.Errorf("failed to create GradeBoard: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return board.Start(gctx)
	})
	if watch {
		g.Go(func() error {
			return config.Watch(gctx, configFile, logger, func(next *config.Config) {
				applyReload(board, cfg, next, logger)
			})
		})
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- g.Wait()
	}()

	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		logger.Info("shutdown complete")
		return nil

	case <-ctx.Done():
		select {
		case err := <-errChan:
			if err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			logger.Info("shutdown complete")
			return nil
		case <-time.After(shutdownTimeout):
			logger.Warn("shutdown timed out",
				"timeout", shutdownTimeout.String(),
				"action", "forcing exit",
			)
			return nil
		}
	}
}

// thresholdSetter is the part of the board a config reload touches.
type thresholdSetter interface {
	SetThreshold(name string, threshold float64) error
}

// applyReload pushes the thresholds of a reloaded config into the running
// board. Sources added, removed or otherwise changed need a restart.
func applyReload(b thresholdSetter, current, next *config.Config, logger *slog.Logger) {
	known := current.Thresholds()
	for name, threshold := range next.Thresholds() {
		if _, ok := known[name]; !ok {
			logger.Warn("new source ignored until restart", "source", name)
			continue
		}
		if err := b.SetThreshold(name, threshold); err != nil {
			logger.Warn("threshold not applied", "source", name, "error", err)
		}
	}

	for name := range known {
		if _, ok := next.Thresholds()[name]; !ok {
			logger.Warn("removed source keeps running until restart", "source", name)
		}
	}
}
