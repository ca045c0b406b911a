package poller

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// DefaultInterval is used when a [Poller] is created with a non-positive interval.
const DefaultInterval = 5 * time.Second

// FetchFunc retrieves one value. It must honour ctx cancellation; [Poller.Stop]
// waits for an in-flight fetch to return.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// Option configures a [Poller].
type Option func(*options)

type options struct {
	name    string
	clock   Clock
	logger  *slog.Logger
	onError func(error)
}

// WithName sets the name used in log records.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithClock replaces the ticker source. Nil is ignored.
func WithClock(c Clock) Option {
	return func(o *options) {
		if c != nil {
			o.clock = c
		}
	}
}

// WithLogger sets the logger for refresh events. Nil is ignored.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithErrorHandler registers a hook called with every failed fetch, after the
// failure has been logged. It runs on the refresh goroutine.
func WithErrorHandler(fn func(error)) Option {
	return func(o *options) { o.onError = fn }
}

// Poller runs one fetch function on a fixed cadence.
//
// The lifecycle has two states, Idle and Running. [Poller.Start] fetches
// immediately and then once per interval; every successful fetch is handed
// to the update callback exactly once, in completion order. Failed fetches
// are logged and reported but never stop the loop and never reach the
// callback, so the subscriber keeps its last good value.
//
// At most one fetch is in flight. A tick that fires while a fetch is still
// running is skipped.
//
// Start and Stop are safe for concurrent use.
type Poller[T any] struct {
	fetch    FetchFunc[T]
	interval time.Duration
	opts     options

	lifeMu  sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	running atomic.Bool
}

type result[T any] struct {
	value T
	err   error
}

// New creates an idle [Poller] for fetch.
func New[T any](fetch FetchFunc[T], interval time.Duration, opts ...Option) *Poller[T] {
	o := options{
		clock:  RealClock{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller[T]{
		fetch:    fetch,
		interval: interval,
		opts:     o,
	}
}

// Interval returns the refresh interval.
func (p *Poller[T]) Interval() time.Duration {
	return p.interval
}

// Running reports whether the refresh loop is active.
func (p *Poller[T]) Running() bool {
	return p.running.Load()
}

// Start begins the refresh loop in a background goroutine and returns
// immediately. If the poller is already running, the previous loop is
// stopped first, so a poller never owns two timers.
//
// The loop ends when [Poller.Stop] is called or ctx is cancelled. If ctx is
// nil, context.Background() is used.
func (p *Poller[T]) Start(ctx context.Context, onUpdate func(T)) {
	p.lifeMu.Lock()
	defer p.lifeMu.Unlock()

	p.stopLocked()

	if ctx == nil {
		ctx = context.Background()
	}
	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	p.cancel = cancel
	p.done = done
	p.running.Store(true)

	go p.run(loopCtx, onUpdate, done)
}

// Stop halts the refresh loop and blocks until it has exited.
//
// Any in-flight fetch is cancelled and its result discarded: once Stop
// returns, the update callback is never invoked again. Stop is idempotent
// and a no-op on an idle poller. It must not be called from inside the
// update callback.
func (p *Poller[T]) Stop() {
	p.lifeMu.Lock()
	defer p.lifeMu.Unlock()
	p.stopLocked()
}

func (p *Poller[T]) stopLocked() {
	if p.cancel == nil {
		return
	}
	p.cancel()
	<-p.done
	p.cancel = nil
	p.done = nil
}

func (p *Poller[T]) run(ctx context.Context, onUpdate func(T), done chan struct{}) {
	defer close(done)
	defer p.running.Store(false)

	// buffered so a fetch finishing after the loop exits never blocks
	results := make(chan result[T], 1)
	inFlight := false

	var wg sync.WaitGroup
	defer wg.Wait()

	launch := func() {
		inFlight = true
		cycleID := uuid.NewString()
		p.opts.logger.Debug("refresh started", "poller", p.opts.name, "cycle_id", cycleID)

		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := p.fetch(ctx)
			if err != nil {
				p.opts.logger.Warn("refresh failed",
					"poller", p.opts.name,
					"cycle_id", cycleID,
					"error", err.Error(),
				)
			}
			results <- result[T]{value: v, err: err}
		}()
	}

	launch()

	ticker := p.opts.clock.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C():
			if inFlight {
				p.opts.logger.Debug("refresh skipped, previous fetch in flight", "poller", p.opts.name)
				continue
			}
			launch()

		case r := <-results:
			inFlight = false
			// a response resolving after Stop must not be published
			if ctx.Err() != nil {
				return
			}
			if r.err != nil {
				if p.opts.onError != nil {
					p.opts.onError(r.err)
				}
				continue
			}
			onUpdate(r.value)
		}
	}
}
