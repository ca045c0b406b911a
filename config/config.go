// Package config provides YAML configuration parsing for GradeBoard.
//
// This package enables running GradeBoard as a standalone binary with a
// configuration file, as an alternative to the programmatic SDK approach.
//
// Example configuration:
//
//	title: Grades
//	port: 8080
//	refresh_interval: 5s
//	log_level: info
//
//	sources:
//	  - name: alumnos
//	    url: ${API_BASE:-https://example.com}/apiAlumnos.php
//	    threshold: 7
//	    fields: {id: id, name: nombre, scores: practicas}
//
//	  - name: docentes
//	    url: https://example.com/apiBD.php
//	    threshold: 6
//	    partition:
//	      field: sexo
//	      title: Distribution by sex
//	      categories:
//	        - {value: M, label: Masculino, color: "#007bff"}
//	        - {value: F, label: Femenino, color: "#dc3545"}
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultPort            = 8080
	defaultRefreshInterval = 5 * time.Second

	// minRefreshInterval prevents accidental hammering of a source.
	minRefreshInterval = 1 * time.Second
)

// Config is the root configuration structure for GradeBoard.
//
// It maps directly to the YAML configuration file structure.
// Use [Load] or [Parse] to create a Config from YAML.
type Config struct {
	// Title is the dashboard title. Defaults to "GradeBoard" if not set.
	Title string `yaml:"title"`

	// Port is the HTTP server port. Defaults to 8080.
	Port int `yaml:"port"`

	// RefreshInterval is the time between refreshes of every source without
	// its own interval. Defaults to 5s.
	RefreshInterval Duration `yaml:"refresh_interval"`

	// LogLevel is one of debug, info, warn, error. Defaults to info.
	LogLevel LogLevel `yaml:"log_level"`

	// Sources lists the polled endpoints.
	Sources []SourceConfig `yaml:"sources"`
}

// SourceConfig defines a single polled source.
type SourceConfig struct {
	// Name is the display name, unique across sources.
	Name string `yaml:"name"`

	// URL is the endpoint serving a JSON array.
	// Supports environment variable substitution: ${VAR} or ${VAR:-default}
	URL string `yaml:"url"`

	// Threshold is the pass threshold. Required: a missing threshold is an
	// error rather than an implicit default.
	Threshold *float64 `yaml:"threshold"`

	// Timeout is the request timeout. Defaults to 10s.
	Timeout Duration `yaml:"timeout"`

	// Interval overrides refresh_interval for this source. Between 1s and 1h.
	Interval Duration `yaml:"interval"`

	// Fields maps record fields. Unset paths use id, name and scores.
	Fields *FieldsConfig `yaml:"fields"`

	// Partition adds a categorical distribution chart.
	Partition *PartitionConfig `yaml:"partition"`

	// Colors overrides the passed/failed colors.
	Colors *ColorsConfig `yaml:"colors"`

	// Palette overrides the palette of position-colored charts.
	Palette []string `yaml:"palette"`
}

// FieldsConfig holds dot-notation paths into each record.
type FieldsConfig struct {
	ID     string `yaml:"id"`
	Name   string `yaml:"name"`
	Scores string `yaml:"scores"`
}

// PartitionConfig groups records on one field into declared categories.
type PartitionConfig struct {
	Field      string           `yaml:"field"`
	Title      string           `yaml:"title"`
	Categories []CategoryConfig `yaml:"categories"`
}

// CategoryConfig is one bucket of a partition.
type CategoryConfig struct {
	Value string `yaml:"value"`
	Label string `yaml:"label"`
	Color string `yaml:"color"`
}

// ColorsConfig holds the outcome colors.
type ColorsConfig struct {
	Passed string `yaml:"passed"`
	Failed string `yaml:"failed"`
}

// Duration wraps time.Duration for YAML unmarshalling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// LogLevel wraps slog.Level for YAML unmarshalling.
type LogLevel slog.Level

// UnmarshalYAML implements yaml.Unmarshaler for LogLevel.
func (l *LogLevel) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return fmt.Errorf("invalid log_level %q (expected debug, info, warn or error)", s)
	}

	*l = LogLevel(level)
	return nil
}

// Level returns the underlying slog.Level value.
func (l LogLevel) Level() slog.Level {
	return slog.Level(l)
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
// Group 1: variable name
// Group 2: the ":-default" part (if present, indicates a default was specified)
// Group 3: the default value (may be empty for ${VAR:-})
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// colorPattern matches #rrggbb colors.
var colorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} patterns with environment values.
func expandEnvVars(s string) (string, error) {
	var firstErr error

	result := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if firstErr != nil {
			return match
		}

		sub := envVarPattern.FindStringSubmatch(match)
		name := sub[1]
		hasDefault := sub[2] != ""

		value, exists := os.LookupEnv(name)
		if !exists {
			if hasDefault {
				return sub[3]
			}
			firstErr = fmt.Errorf("environment variable %q is not set", name)
			return match
		}
		return value
	})

	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

// Load reads and parses a YAML configuration file.
//
// Returns an error if the file cannot be read, parsed or validated.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML configuration data.
//
// Environment variables are expanded in source URLs. Defaults are applied
// for Port (8080), RefreshInterval (5s) and LogLevel (info).
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if cfg.Port == 0 {
		cfg.Port = defaultPort
	}
	if cfg.RefreshInterval == 0 {
		cfg.RefreshInterval = Duration(defaultRefreshInterval)
	}

	if err := cfg.expandAndValidate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Thresholds returns the threshold of every source keyed by name.
func (c *Config) Thresholds() map[string]float64 {
	out := make(map[string]float64, len(c.Sources))
	for _, s := range c.Sources {
		if s.Threshold != nil {
			out[s.Name] = *s.Threshold
		}
	}
	return out
}

// expandAndValidate expands environment variables and validates the config.
func (c *Config) expandAndValidate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}
	if c.RefreshInterval.Duration() < minRefreshInterval {
		return fmt.Errorf("refresh_interval must be at least %s, got %s", minRefreshInterval, c.RefreshInterval.Duration())
	}

	if len(c.Sources) == 0 {
		return errors.New("at least one source must be defined")
	}

	seen := make(map[string]struct{}, len(c.Sources))
	for i := range c.Sources {
		s := &c.Sources[i]

		if s.Name == "" {
			return fmt.Errorf("sources[%d]: name is required", i)
		}
		where := fmt.Sprintf("sources[%d] (%s)", i, s.Name)

		if _, dup := seen[s.Name]; dup {
			return fmt.Errorf("%s: duplicate source name", where)
		}
		seen[s.Name] = struct{}{}

		if err := s.validateURL(where); err != nil {
			return err
		}

		if s.Threshold == nil {
			return fmt.Errorf("%s: threshold is required", where)
		}
		if t := *s.Threshold; math.IsNaN(t) || math.IsInf(t, 0) || t < 0 {
			return fmt.Errorf("%s: threshold must be a finite non-negative number, got %v", where, t)
		}

		if s.Timeout != 0 && s.Timeout.Duration() < time.Second {
			return fmt.Errorf("%s: timeout must be at least 1s if specified, got %s", where, s.Timeout.Duration())
		}

		if s.Interval != 0 {
			if s.Interval.Duration() < time.Second {
				return fmt.Errorf("%s: interval must be at least 1s, got %s", where, s.Interval.Duration())
			}
			if s.Interval.Duration() > time.Hour {
				return fmt.Errorf("%s: interval must not exceed 1h, got %s", where, s.Interval.Duration())
			}
		}

		if err := s.validatePresentation(where); err != nil {
			return err
		}
	}

	return nil
}

func (s *SourceConfig) validateURL(where string) error {
	if s.URL == "" {
		return fmt.Errorf("%s: url is required", where)
	}
	expanded, err := expandEnvVars(s.URL)
	if err != nil {
		return fmt.Errorf("%s: url: %w", where, err)
	}
	s.URL = expanded

	parsedURL, err := url.Parse(s.URL)
	if err != nil {
		return fmt.Errorf("%s: invalid url: %w", where, err)
	}
	if parsedURL.Scheme == "" {
		return fmt.Errorf("%s: url must have a scheme (http:// or https://)", where)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("%s: url scheme must be http or https, got %q", where, parsedURL.Scheme)
	}
	return nil
}

func (s *SourceConfig) validatePresentation(where string) error {
	if p := s.Partition; p != nil {
		if strings.TrimSpace(p.Field) == "" {
			return fmt.Errorf("%s: partition field is required", where)
		}
		if len(p.Categories) == 0 {
			return fmt.Errorf("%s: partition requires at least one category", where)
		}
		values := make(map[string]struct{}, len(p.Categories))
		for j, cat := range p.Categories {
			if cat.Value == "" {
				return fmt.Errorf("%s: partition.categories[%d]: value is required", where, j)
			}
			if _, dup := values[cat.Value]; dup {
				return fmt.Errorf("%s: partition has duplicate category %q", where, cat.Value)
			}
			values[cat.Value] = struct{}{}
			if cat.Color != "" && !colorPattern.MatchString(cat.Color) {
				return fmt.Errorf("%s: partition.categories[%d]: invalid color %q", where, j, cat.Color)
			}
		}
	}

	if c := s.Colors; c != nil {
		if !colorPattern.MatchString(c.Passed) || !colorPattern.MatchString(c.Failed) {
			return fmt.Errorf("%s: colors.passed and colors.failed must both be #rrggbb", where)
		}
	}

	for j, color := range s.Palette {
		if !colorPattern.MatchString(color) {
			return fmt.Errorf("%s: palette[%d]: invalid color %q", where, j, color)
		}
	}
	return nil
}
