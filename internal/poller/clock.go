package poller

import "time"

// Clock creates tickers for the refresh loop.
//
// The real clock wraps [time.NewTicker]. Tests substitute a clock whose
// ticker channel they drive by hand, so refresh cycles happen exactly when
// the test says so instead of after wall-clock waits.
type Clock interface {
	NewTicker(d time.Duration) Ticker
}

// Ticker is the subset of [time.Ticker] the refresh loop needs.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// RealClock is the [Clock] backed by the time package.
type RealClock struct{}

// NewTicker returns a ticker firing every d.
func (RealClock) NewTicker(d time.Duration) Ticker {
	return realTicker{t: time.NewTicker(d)}
}

type realTicker struct {
	t *time.Ticker
}

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }
