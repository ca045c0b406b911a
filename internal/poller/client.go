package poller

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// MaxBodySize caps how much of a response body [Client.Get] keeps.
const MaxBodySize = 1 << 20

const userAgent = "gradeboard"

// connection pooling limits; a board polls a handful of hosts at most
const (
	defaultMaxIdleConns        = 20
	defaultMaxIdleConnsPerHost = 2
	defaultIdleConnTimeout     = 60 * time.Second
)

// Response is the outcome of one GET made by [Client].
type Response struct {
	// Body holds at most MaxBodySize bytes.
	Body []byte

	// Truncated is set when the server sent more than MaxBodySize bytes.
	Truncated bool

	// StatusCode is zero when no response arrived.
	StatusCode int

	Latency time.Duration

	// Error is a transport, timeout or body read failure.
	Error error
}

// Client issues dataset GETs over a pooled transport.
//
// There is no client-wide timeout: each call carries its own, so sources with
// different timeouts can share one Client.
type Client struct {
	httpClient *http.Client
}

// NewClient creates a [Client].
func NewClient() *Client {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        defaultMaxIdleConns,
		MaxIdleConnsPerHost: defaultMaxIdleConnsPerHost,
		IdleConnTimeout:     defaultIdleConnTimeout,
	}
	return &Client{httpClient: &http.Client{Transport: transport}}
}

// Get fetches url once. A zero timeout leaves the request bounded by ctx
// only. Failures are reported in [Response.Error]; a non-2xx status is not a
// failure at this level.
func (c *Client) Get(ctx context.Context, url string, timeout time.Duration) Response {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	fail := func(status int, err error) Response {
		return Response{StatusCode: status, Latency: time.Since(start), Error: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fail(0, fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fail(0, fmt.Errorf("request failed: %w", err))
	}
	defer func() { _ = resp.Body.Close() }()

	// one extra byte tells a body of exactly MaxBodySize from a longer one
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize+1))
	if err != nil {
		return fail(resp.StatusCode, fmt.Errorf("failed to read response body: %w", err))
	}

	out := Response{
		Body:       body,
		StatusCode: resp.StatusCode,
		Latency:    time.Since(start),
	}
	if len(body) > MaxBodySize {
		out.Body = body[:MaxBodySize]
		out.Truncated = true
	}
	return out
}

// Close drops idle pooled connections. The client stays usable; Close is a
// no-op on a nil client.
func (c *Client) Close() {
	if c == nil || c.httpClient == nil {
		return
	}
	c.httpClient.CloseIdleConnections()
}
