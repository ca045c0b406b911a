package gradeboard

import (
	"errors"
	"time"
)

// sourceConfig holds mutable state during source construction.
type sourceConfig struct {
	timeout   time.Duration
	interval  time.Duration
	fields    Fields
	partition *Partition
	colors    OutcomeColors
	palette   Palette
}

// SourceOption is a function that configures a [Source] during construction.
// Options return an error if validation fails.
type SourceOption func(*sourceConfig) error

// WithTimeout sets the HTTP request timeout for this source.
//
// A refresh that does not complete within this duration fails with a
// [*NetworkError] and the previous dataset stays in place. Defaults to 10
// seconds.
//
// Returns an error if the duration is zero or negative.
func WithTimeout(d time.Duration) SourceOption {
	return func(cfg *sourceConfig) error {
		if d <= 0 {
			return errors.New("timeout must be positive")
		}
		cfg.timeout = d
		return nil
	}
}

// WithInterval sets a refresh interval for this source, overriding the
// board's [WithRefreshInterval].
//
// The interval must be at least 1 second and at most 1 hour.
func WithInterval(d time.Duration) SourceOption {
	return func(cfg *sourceConfig) error {
		if d < time.Second {
			return errors.New("interval must be at least 1 second")
		}
		if d > time.Hour {
			return errors.New("interval must not exceed 1 hour")
		}
		cfg.interval = d
		return nil
	}
}

// WithFields sets the record field mapping. Empty ID and Name paths fall back
// to [DefaultFields]; an empty Scores path means the source has no scores.
//
// Example:
//
//	gradeboard.WithFields(gradeboard.Fields{ID: "id", Name: "nombre", Scores: "practicas"})
func WithFields(f Fields) SourceOption {
	return func(cfg *sourceConfig) error {
		if f.ID == "" {
			f.ID = DefaultFields.ID
		}
		if f.Name == "" {
			f.Name = DefaultFields.Name
		}
		cfg.fields = f
		return nil
	}
}

// WithPartition adds a categorical distribution chart to the source.
//
// Example:
//
//	gradeboard.WithPartition(gradeboard.FieldPartition("By sex", "sexo",
//	    gradeboard.Category{Value: "M", Label: "Masculino", Color: "#007bff"},
//	    gradeboard.Category{Value: "F", Label: "Femenino", Color: "#dc3545"},
//	))
//
// Returns an error if the partition has no categories or no key function.
func WithPartition(p Partition) SourceOption {
	return func(cfg *sourceConfig) error {
		if len(p.Categories) == 0 {
			return errors.New("partition requires at least one category")
		}
		if p.Key == nil {
			return errors.New("partition requires a key function")
		}
		cfg.partition = &p
		return nil
	}
}

// WithOutcomeColors sets the colors for passed and failed entities.
func WithOutcomeColors(c OutcomeColors) SourceOption {
	return func(cfg *sourceConfig) error {
		if c.Passed == "" || c.Failed == "" {
			return errors.New("outcome colors must both be set")
		}
		cfg.colors = c
		return nil
	}
}

// WithPalette sets the palette for position-colored series.
func WithPalette(p Palette) SourceOption {
	return func(cfg *sourceConfig) error {
		if len(p) == 0 {
			return errors.New("palette cannot be empty")
		}
		cfg.palette = append(Palette(nil), p...)
		return nil
	}
}
