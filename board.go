package gradeboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/jpalmerr/gradeboard/dashboard"
	"github.com/jpalmerr/gradeboard/internal/metrics"
	"github.com/jpalmerr/gradeboard/internal/poller"
	"github.com/jpalmerr/gradeboard/internal/server"
	"github.com/jpalmerr/gradeboard/internal/store"
)

const (
	defaultRefreshInterval = poller.DefaultInterval
	defaultPort            = 8080
	refreshBucketCount     = 12
)

// Board is the main orchestrator for source refreshing and dashboard serving.
//
// Board keeps one [Poller] per [Source]. Every dataset a poller delivers is
// aggregated with the source's threshold, projected into chart series and
// published as a [Snapshot] to the dashboard, the metrics endpoint and any
// registered update callbacks.
//
// The typical lifecycle is:
//
//	b, err := gradeboard.New(gradeboard.WithSource(src))
//	if err != nil {
//	    slog.Error("failed to create board", "error", err)
//	    os.Exit(1)
//	}
//
//	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer cancel()
//
//	b.Start(ctx) // blocks until context cancelled
type Board struct {
	title           string
	sources         []Source
	refreshInterval time.Duration
	port            int
	logger          *slog.Logger
	clock           Clock
	callbacks       []func(Snapshot)

	store   store.Store
	metrics *metrics.Recorder
	started atomic.Bool

	// mu guards states; publishMu serializes snapshot publication so the
	// store never sees an older snapshot after a newer one.
	mu        sync.Mutex
	states    map[string]*sourceState
	publishMu sync.Mutex
}

// sourceState is the mutable per-source state of a running board.
type sourceState struct {
	src     Source
	dataset Dataset
	hasData bool
	snap    *Snapshot
}

// New creates a new [Board] with the given options.
//
// At least one source must be configured via [WithSource] or [WithSources],
// and source names must be unique. Other options have sensible defaults:
//   - Refresh interval: 5 seconds
//   - Port: 8080
//
// Example:
//
//	b, err := gradeboard.New(
//	    gradeboard.WithSource(alumnos),
//	    gradeboard.WithRefreshInterval(10 * time.Second),
//	    gradeboard.WithPort(9090),
//	)
func New(opts ...Option) (*Board, error) {
	cfg := &boardConfig{
		refreshInterval: defaultRefreshInterval,
		port:            defaultPort,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if len(cfg.sources) == 0 {
		return nil, errors.New("at least one source is required")
	}

	states := make(map[string]*sourceState, len(cfg.sources))
	for _, src := range cfg.sources {
		if src.name == "" {
			return nil, errors.New("source is not initialised; use NewSource")
		}
		if _, dup := states[src.name]; dup {
			return nil, fmt.Errorf("duplicate source name: %q", src.name)
		}
		states[src.name] = &sourceState{src: src}
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}
	clock := cfg.clock
	if clock == nil {
		clock = poller.RealClock{}
	}

	return &Board{
		title:           cfg.title,
		sources:         cfg.sources,
		refreshInterval: cfg.refreshInterval,
		port:            cfg.port,
		logger:          logger,
		clock:           clock,
		callbacks:       cfg.callbacks,
		store:           store.NewMemoryStore(),
		metrics:         metrics.New(metrics.WithHistogramBuckets(refreshBuckets(cfg.sources))),
		states:          states,
	}, nil
}

// Start begins refreshing sources and serving the dashboard.
//
// Start is a blocking call that runs until the provided context is cancelled:
//
//   - Every source is fetched immediately, then on its refresh interval
//   - The HTTP server starts on the configured port
//   - The dashboard is available at http://localhost:<port>
//
// On return every poller has stopped and no further snapshot is published.
// A Board can be started once.
//
// Returns nil on graceful shutdown. Returns an error if the HTTP server fails
// to start.
func (b *Board) Start(ctx context.Context) error {
	if !b.started.CompareAndSwap(false, true) {
		return errors.New("board already started")
	}

	b.logger.Info("gradeboard starting", "source_count", len(b.sources))
	b.logger.Info("refresh configured", "interval", b.refreshInterval.String())
	b.logger.Info("dashboard available", "url", fmt.Sprintf("http://localhost:%d", b.port))

	if ctx.Err() != nil {
		return nil
	}

	fetcher := NewFetcher()
	pollers := make([]*Poller, 0, len(b.sources))
	for _, src := range b.sources {
		p := NewPoller(src, b.refreshInterval,
			WithPollerLogger(b.logger),
			WithClock(b.clock),
			WithFetcher(fetcher),
			WithRefreshObserver(b.observeRefresh),
		)
		name := src.name
		p.Start(ctx, func(ds Dataset) { b.ingest(name, ds) })
		pollers = append(pollers, p)
	}

	cleanup := func() {
		for _, p := range pollers {
			p.Stop()
		}
		fetcher.Close()
	}

	httpServer := server.NewServer(b.store, b.port, dashboard.Assets, b.title, b.metrics.Handler(), b.logger)
	if err := httpServer.Start(ctx); err != nil {
		cleanup()
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	<-ctx.Done()
	cleanup()
	b.logger.Info("gradeboard stopped")
	return nil
}

// SetThreshold changes the pass threshold of a source. The source's latest
// dataset, if any, is re-classified and published immediately.
func (b *Board) SetThreshold(name string, threshold float64) error {
	if err := validateThreshold(threshold); err != nil {
		return err
	}

	b.mu.Lock()
	st, ok := b.states[name]
	if !ok {
		b.mu.Unlock()
		return fmt.Errorf("unknown source: %q", name)
	}
	old := st.src.threshold
	st.src = st.src.withThreshold(threshold)
	b.mu.Unlock()

	if old != threshold {
		b.logger.Info("threshold updated", "source", name, "from", old, "to", threshold)
	}
	b.publish(name)
	return nil
}

// Snapshot returns the latest snapshot of a source. The second result is
// false until the source has delivered its first dataset.
//
// The returned snapshot shares its slices with callbacks and must be treated
// as read-only.
func (b *Board) Snapshot(name string) (Snapshot, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	st, ok := b.states[name]
	if !ok || st.snap == nil {
		return Snapshot{}, false
	}
	return *st.snap, true
}

// Sources returns a copy of the configured sources with their current
// thresholds.
func (b *Board) Sources() []Source {
	b.mu.Lock()
	defer b.mu.Unlock()
	cp := make([]Source, len(b.sources))
	for i, src := range b.sources {
		cp[i] = b.states[src.name].src
	}
	return cp
}

// Port returns the configured HTTP port for the dashboard server.
func (b *Board) Port() int {
	return b.port
}

// RefreshInterval returns the default interval between refreshes.
func (b *Board) RefreshInterval() time.Duration {
	return b.refreshInterval
}

// ingest records the latest dataset of a source and publishes it.
func (b *Board) ingest(name string, ds Dataset) {
	b.mu.Lock()
	st := b.states[name]
	st.dataset = ds
	st.hasData = true
	b.mu.Unlock()

	b.publish(name)
}

// publish rebuilds the snapshot of a source from its latest dataset and
// threshold, then hands it to the store, the metrics and the callbacks.
func (b *Board) publish(name string) {
	b.publishMu.Lock()
	defer b.publishMu.Unlock()

	b.mu.Lock()
	st := b.states[name]
	if !st.hasData {
		b.mu.Unlock()
		return
	}
	src, ds := st.src, st.dataset
	b.mu.Unlock()

	snap := BuildSnapshot(src, ds, time.Now())

	b.mu.Lock()
	st.snap = &snap
	b.mu.Unlock()

	// store first so callbacks observe the data the dashboard already serves
	b.store.Update(snapshotToStore(snap))
	b.metrics.SetSnapshot(name, snap.Passed, snap.Failed)

	for _, cb := range b.callbacks {
		b.invokeCallbackSafe(cb, snap)
	}

	b.logger.Debug("snapshot published",
		"source", name,
		"entities", len(snap.Entities),
		"passed", snap.Passed,
		"failed", snap.Failed,
	)
}

// refreshBuckets spreads the refresh duration buckets exponentially from 5ms
// up to the longest source timeout, where a refresh gives up.
func refreshBuckets(sources []Source) []float64 {
	longest := time.Second
	for _, src := range sources {
		longest = max(longest, src.timeout)
	}
	return prometheus.ExponentialBucketsRange(0.005, longest.Seconds(), refreshBucketCount)
}

// observeRefresh feeds refresh outcomes into the metrics recorder.
func (b *Board) observeRefresh(source string, took time.Duration, err error) {
	if errors.Is(err, context.Canceled) {
		return
	}
	result := metrics.ResultSuccess
	if err != nil {
		result = errorKind(err)
	}
	b.metrics.ObserveRefresh(source, result, took)
}

// invokeCallbackSafe calls an update callback with panic recovery.
// Panics are logged with a correlation id and counted, but do not propagate.
func (b *Board) invokeCallbackSafe(cb func(Snapshot), snap Snapshot) {
	defer func() {
		if r := recover(); r != nil {
			b.metrics.IncCallbackPanics()
			b.logger.Error("update callback panicked",
				"panic", r,
				"source", snap.Source,
				"correlation_id", uuid.NewString(),
			)
		}
	}()
	cb(snap)
}

// snapshotToStore converts a snapshot to its storage representation.
func snapshotToStore(s Snapshot) store.Snapshot {
	entities := make([]store.Entity, len(s.Entities))
	for i, e := range s.Entities {
		entities[i] = store.Entity{
			ID:           e.ID,
			Name:         e.Name,
			ScoreAverage: e.ScoreAverage,
			Outcome:      e.Outcome.String(),
		}
	}

	perEntity := make([]store.Series, len(s.PerEntity))
	for i, cs := range s.PerEntity {
		perEntity[i] = seriesToStore(cs)
	}

	out := store.Snapshot{
		Source:      s.Source,
		URL:         s.URL,
		Threshold:   s.Threshold,
		Entities:    entities,
		PerEntity:   perEntity,
		Comparative: seriesToStore(s.Comparative),
		Outcomes:    seriesToStore(s.Outcomes),
		Identifiers: seriesToStore(s.Identifiers),
		Passed:      s.Passed,
		Failed:      s.Failed,
		UpdatedAt:   s.UpdatedAt,
	}
	if s.Distribution != nil {
		dist := seriesToStore(*s.Distribution)
		out.Distribution = &dist
	}
	return out
}

func seriesToStore(cs ChartSeries) store.Series {
	colors := make([]string, len(cs.Colors))
	for i, c := range cs.Colors {
		colors[i] = string(c)
	}
	return store.Series{
		Title:  cs.Title,
		Labels: append([]string{}, cs.Labels...),
		Values: append([]float64{}, cs.Values...),
		Colors: colors,
	}
}
