package gradeboard

import (
	"context"
	"log/slog"
	"time"

	"github.com/jpalmerr/gradeboard/internal/poller"
)

// Clock creates the tickers that pace a [Poller]. Replace it with
// [WithClock] to drive refresh cycles deterministically in tests.
type Clock = poller.Clock

// Ticker is the ticker interface returned by a [Clock].
type Ticker = poller.Ticker

// RefreshObserver is told about every completed refresh of a source,
// successful or not. It runs on the refresh goroutine and must not block.
type RefreshObserver func(source string, took time.Duration, err error)

// pollerConfig holds mutable state during poller construction.
type pollerConfig struct {
	logger   *slog.Logger
	clock    Clock
	observer RefreshObserver
	fetcher  *Fetcher
}

// PollerOption configures a [Poller].
type PollerOption func(*pollerConfig)

// WithPollerLogger sets the logger for refresh events.
func WithPollerLogger(l *slog.Logger) PollerOption {
	return func(cfg *pollerConfig) {
		if l != nil {
			cfg.logger = l
		}
	}
}

// WithClock replaces the real clock.
func WithClock(c Clock) PollerOption {
	return func(cfg *pollerConfig) {
		if c != nil {
			cfg.clock = c
		}
	}
}

// WithRefreshObserver registers an observer for refresh outcomes.
func WithRefreshObserver(fn RefreshObserver) PollerOption {
	return func(cfg *pollerConfig) {
		cfg.observer = fn
	}
}

// WithFetcher shares a [Fetcher] (and its connection pool) between pollers.
func WithFetcher(f *Fetcher) PollerOption {
	return func(cfg *pollerConfig) {
		if f != nil {
			cfg.fetcher = f
		}
	}
}

// Poller refreshes one [Source] on a fixed interval.
//
// [Poller.Start] fetches immediately and then every interval. Each successful
// fetch is delivered to the update callback exactly once, in completion
// order. A failed fetch is logged, reported to the [RefreshObserver], and
// otherwise ignored: the callback is not called, so the subscriber keeps its
// last good dataset. A tick that fires while a fetch is in flight is skipped.
//
// [Poller.Stop] is idempotent and, once it returns, the callback is never
// invoked again, even for a fetch that was in flight when Stop was called.
// Calling Start on a running poller restarts it.
//
// The poller keeps no reference to a dataset after delivering it.
type Poller struct {
	src   Source
	inner *poller.Poller[Dataset]
}

// NewPoller creates an idle [Poller] for src. The source's own interval, if
// set, takes precedence over interval.
func NewPoller(src Source, interval time.Duration, opts ...PollerOption) *Poller {
	cfg := &pollerConfig{
		logger: slog.Default(),
		clock:  poller.RealClock{},
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.fetcher == nil {
		cfg.fetcher = NewFetcher()
	}
	if src.interval > 0 {
		interval = src.interval
	}

	fetcher := cfg.fetcher
	observer := cfg.observer
	fetch := func(ctx context.Context) (Dataset, error) {
		start := time.Now()
		ds, err := fetcher.Fetch(ctx, src)
		if observer != nil {
			observer(src.name, time.Since(start), err)
		}
		return ds, err
	}

	return &Poller{
		src: src,
		inner: poller.New(fetch, interval,
			poller.WithName(src.name),
			poller.WithClock(cfg.clock),
			poller.WithLogger(cfg.logger),
		),
	}
}

// Source returns the polled source.
func (p *Poller) Source() Source {
	return p.src
}

// Interval returns the effective refresh interval.
func (p *Poller) Interval() time.Duration {
	return p.inner.Interval()
}

// Running reports whether the poller is in the Running state.
func (p *Poller) Running() bool {
	return p.inner.Running()
}

// Start begins refreshing in the background, stopping any previous loop
// first. The loop also ends when ctx is cancelled.
func (p *Poller) Start(ctx context.Context, onUpdate func(Dataset)) {
	p.inner.Start(ctx, onUpdate)
}

// Stop halts refreshing and waits for the loop to exit. It must not be
// called from inside the update callback.
func (p *Poller) Stop() {
	p.inner.Stop()
}
