package gradeboard

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"time"
)

const defaultSourceTimeout = 10 * time.Second

// Source is a remote endpoint serving a JSON array of records, together with
// the parameters used to classify and chart them.
//
// Source is immutable after creation via [NewSource]. Sources are configured
// using [SourceOption] functions such as [WithTimeout], [WithInterval],
// [WithFields] and [WithPartition].
type Source struct {
	name      string
	url       string
	threshold float64
	timeout   time.Duration
	interval  time.Duration
	fields    Fields
	partition *Partition
	colors    OutcomeColors
	palette   Palette
}

// Name returns the source's display name, unique within a [Board].
func (s Source) Name() string {
	return s.name
}

// URL returns the endpoint URL.
func (s Source) URL() string {
	return s.url
}

// Threshold returns the pass threshold applied by [Aggregate].
func (s Source) Threshold() float64 {
	return s.threshold
}

// Timeout returns the request timeout. Defaults to 10 seconds.
func (s Source) Timeout() time.Duration {
	return s.timeout
}

// Interval returns the source's own refresh interval, or 0 when the board's
// refresh interval applies.
func (s Source) Interval() time.Duration {
	return s.interval
}

// Fields returns the record field mapping.
func (s Source) Fields() Fields {
	return s.fields
}

// Partition returns the categorical partition and whether one is set.
func (s Source) Partition() (Partition, bool) {
	if s.partition == nil {
		return Partition{}, false
	}
	return *s.partition, true
}

// OutcomeColors returns the colors used for passed and failed entities.
func (s Source) OutcomeColors() OutcomeColors {
	return s.colors
}

// Palette returns the palette used for position-colored series.
func (s Source) Palette() Palette {
	return append(Palette(nil), s.palette...)
}

// withThreshold returns a copy of s with a different threshold.
func (s Source) withThreshold(t float64) Source {
	s.threshold = t
	return s
}

// NewSource creates a [Source] with the given name, URL, pass threshold and
// options.
//
// The threshold is required because distinct use cases classify the same
// averages differently (for example 6.0 versus 7.0). It must be finite and
// non-negative. The URL must use the http or https scheme.
//
// Example:
//
//	src, err := gradeboard.NewSource("alumnos", "https://example.com/apiAlumnos.php", 7,
//	    gradeboard.WithFields(gradeboard.Fields{ID: "id", Name: "nombre", Scores: "practicas"}),
//	)
func NewSource(name, rawURL string, threshold float64, opts ...SourceOption) (Source, error) {
	if name == "" {
		return Source{}, errors.New("source name cannot be empty")
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return Source{}, errors.New("invalid URL: " + err.Error())
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return Source{}, errors.New("URL must have an http:// or https:// scheme")
	}

	if err := validateThreshold(threshold); err != nil {
		return Source{}, err
	}

	cfg := &sourceConfig{
		timeout: defaultSourceTimeout,
		fields:  DefaultFields,
		colors:  DefaultOutcomeColors,
		palette: DefaultPalette,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return Source{}, fmt.Errorf("source %q: %w", name, err)
		}
	}

	return Source{
		name:      name,
		url:       rawURL,
		threshold: threshold,
		timeout:   cfg.timeout,
		interval:  cfg.interval,
		fields:    cfg.fields,
		partition: cfg.partition,
		colors:    cfg.colors,
		palette:   cfg.palette,
	}, nil
}

func validateThreshold(t float64) error {
	if math.IsNaN(t) || math.IsInf(t, 0) {
		return errors.New("threshold must be a finite number")
	}
	if t < 0 {
		return errors.New("threshold cannot be negative")
	}
	return nil
}
