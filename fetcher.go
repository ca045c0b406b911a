package gradeboard

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jpalmerr/gradeboard/internal/poller"
)

// NetworkError reports that a source could not be reached or its body could
// not be read (connection refused, DNS failure, timeout).
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error fetching %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// HTTPStatusError reports a response outside the 2xx range.
type HTTPStatusError struct {
	URL        string
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.StatusCode, e.URL)
}

// ErrBodyTooLarge is wrapped by the [*ParseError] returned for a body over
// 1 MiB; the truncated remainder would not decode.
var ErrBodyTooLarge = errors.New("response body exceeds 1 MiB")

// ParseError reports a body that is not valid JSON.
type ParseError struct {
	URL string
	Err error
}

func (e *ParseError) Error() string {
	if e.URL == "" {
		return fmt.Sprintf("malformed JSON: %v", e.Err)
	}
	return fmt.Sprintf("malformed JSON from %s: %v", e.URL, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// errorKind names the taxonomy bucket of a fetch error for logs and metrics.
func errorKind(err error) string {
	switch err.(type) {
	case *NetworkError:
		return "network"
	case *HTTPStatusError:
		return "http_status"
	case *ParseError:
		return "parse"
	default:
		return "other"
	}
}

// Fetcher performs single dataset retrievals.
//
// A Fetcher holds a pooled HTTP client and may be shared by any number of
// sources. The zero value is not usable; create one with [NewFetcher].
type Fetcher struct {
	client *poller.Client
}

// NewFetcher creates a [Fetcher].
func NewFetcher() *Fetcher {
	return &Fetcher{client: poller.NewClient()}
}

// Fetch performs one GET against src and decodes the body into a [Dataset].
//
// Every failure collapses into one of [*NetworkError], [*HTTPStatusError] or
// [*ParseError]; no partial parse is attempted. A JSON body whose top level
// is not an array is an empty dataset, not an error.
func (f *Fetcher) Fetch(ctx context.Context, src Source) (Dataset, error) {
	resp := f.client.Get(ctx, src.url, src.timeout)
	if resp.Error != nil {
		return nil, &NetworkError{URL: src.url, Err: resp.Error}
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &HTTPStatusError{URL: src.url, StatusCode: resp.StatusCode}
	}

	if resp.Truncated {
		return nil, &ParseError{URL: src.url, Err: ErrBodyTooLarge}
	}

	ds, err := ParseDataset(resp.Body, src.fields)
	if err != nil {
		if pe, ok := err.(*ParseError); ok {
			pe.URL = src.url
		}
		return nil, err
	}
	return ds, nil
}

// Close releases idle connections held by the fetcher.
func (f *Fetcher) Close() {
	if f == nil {
		return
	}
	f.client.Close()
}
