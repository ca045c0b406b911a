package gradeboard

import (
	"errors"
	"log/slog"
	"time"
)

// boardConfig holds mutable state during Board construction.
type boardConfig struct {
	title           string
	sources         []Source
	refreshInterval time.Duration
	port            int
	logger          *slog.Logger
	clock           Clock
	callbacks       []func(Snapshot)
}

// Option is a function that configures a [Board] during construction.
//
// Options return an error if validation fails.
type Option func(*boardConfig) error

// WithSource adds a single [Source] to the board. Can be called multiple
// times; at least one source must be configured for [New] to succeed.
func WithSource(s Source) Option {
	return func(cfg *boardConfig) error {
		cfg.sources = append(cfg.sources, s)
		return nil
	}
}

// WithSources adds several sources at once. Equivalent to calling
// [WithSource] for each.
func WithSources(sources ...Source) Option {
	return func(cfg *boardConfig) error {
		cfg.sources = append(cfg.sources, sources...)
		return nil
	}
}

// WithRefreshInterval sets how often sources without their own interval are
// refreshed. Defaults to 5 seconds.
//
// Returns an error if the duration is zero or negative.
func WithRefreshInterval(d time.Duration) Option {
	return func(cfg *boardConfig) error {
		if d <= 0 {
			return errors.New("refresh interval must be positive")
		}
		cfg.refreshInterval = d
		return nil
	}
}

// WithPort sets the HTTP port for the dashboard server. Defaults to 8080.
//
// Returns an error if the port is outside the valid range (1-65535).
func WithPort(port int) Option {
	return func(cfg *boardConfig) error {
		if port < 1 || port > 65535 {
			return errors.New("port must be between 1 and 65535")
		}
		cfg.port = port
		return nil
	}
}

// WithTitle sets the dashboard title. Defaults to "GradeBoard".
func WithTitle(title string) Option {
	return func(cfg *boardConfig) error {
		cfg.title = title
		return nil
	}
}

// WithLogger sets a custom [slog.Logger] for the board and its pollers.
// If not specified, [slog.Default] is used.
//
// Returns an error if the logger is nil.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *boardConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// WithBoardClock replaces the clock that paces every poller of the board.
//
// Returns an error if the clock is nil.
func WithBoardClock(c Clock) Option {
	return func(cfg *boardConfig) error {
		if c == nil {
			return errors.New("clock cannot be nil")
		}
		cfg.clock = c
		return nil
	}
}

// WithUpdateCallback registers a function called with every published
// [Snapshot], after the dashboard store has been updated.
//
// Multiple callbacks run in registration order. Callbacks must be
// non-blocking and must not call back into the board; panics are recovered
// and logged.
//
// Example:
//
//	b, err := gradeboard.New(
//	    gradeboard.WithSource(alumnos),
//	    gradeboard.WithUpdateCallback(func(s gradeboard.Snapshot) {
//	        if s.Failed > 0 {
//	            log.Printf("%s: %d failing", s.Source, s.Failed)
//	        }
//	    }),
//	)
//
// Nil callbacks are silently ignored.
func WithUpdateCallback(cb func(Snapshot)) Option {
	return func(cfg *boardConfig) error {
		if cb == nil {
			return nil
		}
		cfg.callbacks = append(cfg.callbacks, cb)
		return nil
	}
}
