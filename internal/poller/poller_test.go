package poller

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"
)

// testLogger returns a logger that discards all output for clean test output.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeClock hands out manually driven tickers. Every ticker created is
// published on ready so tests can wait for a loop to be running.
type fakeClock struct {
	ready chan *fakeTicker
}

func newFakeClock() *fakeClock {
	return &fakeClock{ready: make(chan *fakeTicker, 16)}
}

func (f *fakeClock) NewTicker(time.Duration) Ticker {
	t := &fakeTicker{c: make(chan time.Time)}
	f.ready <- t
	return t
}

// next waits for the next ticker created by a refresh loop.
func (f *fakeClock) next(t *testing.T) *fakeTicker {
	t.Helper()
	select {
	case tk := <-f.ready:
		return tk
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for refresh loop to create a ticker")
		return nil
	}
}

type fakeTicker struct {
	c chan time.Time
}

func (f *fakeTicker) C() <-chan time.Time { return f.c }
func (f *fakeTicker) Stop()               {}

// tick blocks until the loop has received the tick.
func (f *fakeTicker) tick(t *testing.T) {
	t.Helper()
	select {
	case f.c <- time.Now():
	case <-time.After(time.Second):
		t.Fatal("timeout delivering tick")
	}
}

func expectUpdate(t *testing.T, updates <-chan int, want int) {
	t.Helper()
	select {
	case got := <-updates:
		if got != want {
			t.Fatalf("update = %d, want %d", got, want)
		}
	case <-time.After(time.Second):
		t.Fatalf("timeout waiting for update %d", want)
	}
}

func expectNoUpdate(t *testing.T, updates <-chan int) {
	t.Helper()
	select {
	case got := <-updates:
		t.Fatalf("unexpected update %d", got)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestPoller_FetchesImmediatelyAndOnTick(t *testing.T) {
	clock := newFakeClock()
	var calls atomic.Int32
	fetch := func(ctx context.Context) (int, error) {
		return int(calls.Add(1)), nil
	}

	p := New(fetch, time.Minute, WithClock(clock), WithLogger(testLogger()))
	updates := make(chan int, 10)
	p.Start(context.Background(), func(v int) { updates <- v })
	defer p.Stop()

	tk := clock.next(t)
	expectUpdate(t, updates, 1)

	tk.tick(t)
	expectUpdate(t, updates, 2)

	tk.tick(t)
	expectUpdate(t, updates, 3)
}

func TestPoller_FailuresKeepLastGoodValue(t *testing.T) {
	clock := newFakeClock()
	var calls atomic.Int32
	fetch := func(ctx context.Context) (int, error) {
		n := calls.Add(1)
		if n <= 3 {
			return 0, errors.New("unreachable")
		}
		return 42, nil
	}

	errs := make(chan error, 10)
	p := New(fetch, time.Minute,
		WithClock(clock),
		WithLogger(testLogger()),
		WithErrorHandler(func(err error) { errs <- err }),
	)
	updates := make(chan int, 10)
	p.Start(context.Background(), func(v int) { updates <- v })
	defer p.Stop()

	waitErr := func() {
		t.Helper()
		select {
		case <-errs:
		case <-time.After(time.Second):
			t.Fatal("timeout waiting for reported failure")
		}
	}

	tk := clock.next(t)
	waitErr() // immediate fetch
	tk.tick(t)
	waitErr()
	tk.tick(t)
	waitErr()
	expectNoUpdate(t, updates)

	tk.tick(t)
	expectUpdate(t, updates, 42)
	expectNoUpdate(t, updates)

	if got := len(errs); got != 0 {
		t.Errorf("extra failures reported: %d", got)
	}
	if !p.Running() {
		t.Error("Running() = false after failures, want true")
	}
}

func TestPoller_StopDiscardsInFlightFetch(t *testing.T) {
	clock := newFakeClock()
	started := make(chan struct{}, 1)
	fetch := func(ctx context.Context) (int, error) {
		started <- struct{}{}
		<-ctx.Done()
		// resolve successfully anyway; the value must be discarded
		return 7, nil
	}

	p := New(fetch, time.Minute, WithClock(clock), WithLogger(testLogger()))
	var delivered atomic.Int32
	p.Start(context.Background(), func(int) { delivered.Add(1) })

	clock.next(t)
	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("fetch never started")
	}

	p.Stop()
	time.Sleep(20 * time.Millisecond)

	if got := delivered.Load(); got != 0 {
		t.Errorf("onUpdate called %d times after Stop, want 0", got)
	}
	if p.Running() {
		t.Error("Running() = true after Stop")
	}
}

func TestPoller_SkipsTickWhileFetchInFlight(t *testing.T) {
	clock := newFakeClock()
	release := make(chan struct{})
	var calls atomic.Int32
	fetch := func(ctx context.Context) (int, error) {
		n := calls.Add(1)
		if n == 1 {
			select {
			case <-release:
			case <-ctx.Done():
			}
		}
		return int(n), nil
	}

	p := New(fetch, time.Minute, WithClock(clock), WithLogger(testLogger()))
	updates := make(chan int, 10)
	p.Start(context.Background(), func(v int) { updates <- v })
	defer p.Stop()

	tk := clock.next(t)
	tk.tick(t) // skipped, first fetch still blocked
	tk.tick(t) // skipped as well

	close(release)
	expectUpdate(t, updates, 1)
	if got := calls.Load(); got != 1 {
		t.Fatalf("fetch calls = %d, want 1", got)
	}

	tk.tick(t)
	expectUpdate(t, updates, 2)
}

func TestPoller_StopIsIdempotent(t *testing.T) {
	p := New(func(ctx context.Context) (int, error) { return 0, nil }, time.Minute,
		WithClock(newFakeClock()), WithLogger(testLogger()))

	// stop before start is a no-op
	p.Stop()

	p.Start(context.Background(), func(int) {})
	p.Stop()
	p.Stop()

	if p.Running() {
		t.Error("Running() = true after Stop")
	}
}

func TestPoller_StartRestartsRunningLoop(t *testing.T) {
	clock := newFakeClock()
	var calls atomic.Int32
	fetch := func(ctx context.Context) (int, error) {
		return int(calls.Add(1)), nil
	}

	p := New(fetch, time.Minute, WithClock(clock), WithLogger(testLogger()))
	updates := make(chan int, 10)
	onUpdate := func(v int) { updates <- v }

	p.Start(context.Background(), onUpdate)
	first := clock.next(t)
	expectUpdate(t, updates, 1)

	p.Start(context.Background(), onUpdate)
	second := clock.next(t)
	expectUpdate(t, updates, 2)
	defer p.Stop()

	// the first loop is gone: nobody receives its ticks
	select {
	case first.c <- time.Now():
		t.Fatal("first loop still running after restart")
	case <-time.After(50 * time.Millisecond):
	}

	second.tick(t)
	expectUpdate(t, updates, 3)
}

func TestPoller_ParentContextCancellation(t *testing.T) {
	clock := newFakeClock()
	p := New(func(ctx context.Context) (int, error) { return 1, nil }, time.Minute,
		WithClock(clock), WithLogger(testLogger()))

	ctx, cancel := context.WithCancel(context.Background())
	p.Start(ctx, func(int) {})
	clock.next(t)

	cancel()

	deadline := time.After(time.Second)
	for p.Running() {
		select {
		case <-deadline:
			t.Fatal("poller still running after parent context cancelled")
		case <-time.After(5 * time.Millisecond):
		}
	}

	// stop after the loop exited on its own must not block
	done := make(chan struct{})
	go func() {
		p.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop() blocked after context cancellation")
	}
}

func TestNew_DefaultInterval(t *testing.T) {
	p := New(func(ctx context.Context) (int, error) { return 0, nil }, 0)
	if p.Interval() != DefaultInterval {
		t.Errorf("Interval() = %v, want %v", p.Interval(), DefaultInterval)
	}
}
