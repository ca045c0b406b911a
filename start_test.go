package gradeboard

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// freePort returns a TCP port that was free a moment ago.
func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer func() { _ = ln.Close() }()
	return ln.Addr().(*net.TCPAddr).Port
}

func startBoard(t *testing.T, b *Board) (cancel func() error) {
	t.Helper()
	ctx, stop := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- b.Start(ctx) }()

	return func() error {
		stop()
		select {
		case err := <-done:
			return err
		case <-time.After(5 * time.Second):
			t.Fatal("Start() did not return after context cancellation")
			return nil
		}
	}
}

func TestStart_BlocksUntilContextCancelled(t *testing.T) {
	ts, _ := countingServer(t)
	b, err := New(
		WithSource(testSource(t, ts.URL)),
		WithPort(freePort(t)),
		WithLogger(discardLogger()),
		WithBoardClock(&manualClock{}),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- b.Start(ctx) }()

	time.Sleep(50 * time.Millisecond)
	select {
	case err := <-done:
		t.Fatalf("Start() returned early with error: %v", err)
	default:
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Start() returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Start() did not return after context cancellation")
	}
}

func TestStart_ReturnsImmediatelyIfContextAlreadyCancelled(t *testing.T) {
	b, err := New(WithSource(mustSource(t, "a")), WithPort(freePort(t)), WithLogger(discardLogger()))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan error, 1)
	go func() { done <- b.Start(ctx) }()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Start() error = %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Start() did not return with already-cancelled context")
	}
}

func TestStart_OnlyOnce(t *testing.T) {
	b, err := New(WithSource(mustSource(t, "a")), WithPort(freePort(t)), WithLogger(discardLogger()))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = b.Start(ctx)

	if err := b.Start(context.Background()); err == nil || !strings.Contains(err.Error(), "already started") {
		t.Errorf("second Start() error = %v, want already started", err)
	}
}

func TestStart_PortInUse(t *testing.T) {
	ln, err := net.Listen("tcp", ":0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer func() { _ = ln.Close() }()

	b, err := New(
		WithSource(mustSource(t, "a")),
		WithPort(ln.Addr().(*net.TCPAddr).Port),
		WithLogger(discardLogger()),
		WithBoardClock(&manualClock{}),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = b.Start(ctx)
	if err == nil || !strings.Contains(err.Error(), "failed to start HTTP server") {
		t.Errorf("Start() error = %v, want HTTP server failure", err)
	}
}

func TestStart_PublishesToCallbacksAndAPI(t *testing.T) {
	ts, _ := countingServer(t)
	port := freePort(t)

	published := make(chan Snapshot, 8)
	b, err := New(
		WithSource(testSource(t, ts.URL)),
		WithPort(port),
		WithLogger(discardLogger()),
		WithBoardClock(&manualClock{}),
		WithUpdateCallback(func(s Snapshot) { published <- s }),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	stop := startBoard(t, b)
	defer func() { _ = stop() }()

	select {
	case snap := <-published:
		if snap.Source != "test" || len(snap.Entities) != 1 || snap.Passed != 1 {
			t.Errorf("published snapshot = %+v", snap)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no snapshot published")
	}

	base := "http://127.0.0.1:" + strconv.Itoa(port)

	var snaps []map[string]any
	waitUntil(t, func() bool {
		resp, err := http.Get(base + "/api/snapshots")
		if err != nil {
			return false
		}
		defer func() { _ = resp.Body.Close() }()
		return json.NewDecoder(resp.Body).Decode(&snaps) == nil && len(snaps) == 1
	})
	if snaps[0]["source"] != "test" {
		t.Errorf("API snapshot = %v", snaps[0])
	}

	resp, err := http.Get(base + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if !strings.Contains(string(body), `gradeboard_refreshes_total{result="success",source="test"} 1`) {
		t.Errorf("metrics missing refresh counter:\n%s", body)
	}
}

func TestStart_NoCallbackAfterShutdown(t *testing.T) {
	ts, _ := countingServer(t)
	clock := &manualClock{}

	var mu sync.Mutex
	returned := false
	var late atomic.Bool
	b, err := New(
		WithSource(testSource(t, ts.URL)),
		WithPort(freePort(t)),
		WithLogger(discardLogger()),
		WithBoardClock(clock),
		WithUpdateCallback(func(Snapshot) {
			mu.Lock()
			if returned {
				late.Store(true)
			}
			mu.Unlock()
		}),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	stop := startBoard(t, b)
	waitUntil(t, func() bool { _, ok := b.Snapshot("test"); return ok })
	clock.tick()

	if err := stop(); err != nil {
		t.Errorf("Start() error = %v", err)
	}
	mu.Lock()
	returned = true
	mu.Unlock()

	clock.tick()
	time.Sleep(50 * time.Millisecond)
	if late.Load() {
		t.Error("callback invoked after Start returned")
	}
}

func TestStart_ConcurrentThresholdChanges(t *testing.T) {
	ts, _ := countingServer(t)
	clock := &manualClock{}
	b, err := New(
		WithSource(testSource(t, ts.URL)),
		WithPort(freePort(t)),
		WithLogger(discardLogger()),
		WithBoardClock(clock),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	stop := startBoard(t, b)
	waitUntil(t, func() bool { _, ok := b.Snapshot("test"); return ok })

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = b.SetThreshold("test", float64(i))
			clock.tick()
			_, _ = b.Snapshot("test")
			_ = b.Sources()
		}(i)
	}
	wg.Wait()

	if err := b.SetThreshold("test", 9); err != nil {
		t.Fatalf("SetThreshold() error = %v", err)
	}
	snap, _ := b.Snapshot("test")
	if snap.Threshold != 9 || snap.Failed != 1 {
		t.Errorf("final snapshot threshold %v failed %d, want 9 and 1", snap.Threshold, snap.Failed)
	}

	if err := stop(); err != nil {
		t.Errorf("Start() error = %v", err)
	}
}
