// Package metrics provides Prometheus metrics for GradeBoard refresh cycles.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Result label values for refresh outcomes. Failures use the fetch error
// kind ("network", "http_status", "parse").
const (
	ResultSuccess = "success"
)

// Recorder records refresh and classification metrics on its own registry.
type Recorder struct {
	namespace string
	buckets   []float64
	registry  *prometheus.Registry

	refreshes       *prometheus.CounterVec
	refreshDuration *prometheus.HistogramVec
	lastSuccess     *prometheus.GaugeVec
	entities        *prometheus.GaugeVec
	outcomes        *prometheus.GaugeVec
	callbackPanics  prometheus.Counter
}

// Option applies a configuration option to the Recorder.
type Option func(*Recorder)

// WithNamespace sets the namespace for all metrics.
func WithNamespace(namespace string) Option {
	return func(r *Recorder) {
		if namespace != "" {
			r.namespace = namespace
		}
	}
}

// WithHistogramBuckets sets custom buckets for the refresh duration histogram.
func WithHistogramBuckets(buckets []float64) Option {
	return func(r *Recorder) {
		if len(buckets) > 0 {
			r.buckets = buckets
		}
	}
}

// New creates a Recorder with a fresh registry.
func New(opts ...Option) *Recorder {
	r := &Recorder{
		namespace: "gradeboard",
		buckets:   prometheus.DefBuckets,
		registry:  prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(r)
	}

	r.refreshes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: r.namespace,
		Name:      "refreshes_total",
		Help:      "Completed refreshes by source and result.",
	}, []string{"source", "result"})

	r.refreshDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: r.namespace,
		Name:      "refresh_duration_seconds",
		Help:      "Duration of refresh requests including decoding.",
		Buckets:   r.buckets,
	}, []string{"source"})

	r.lastSuccess = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: r.namespace,
		Name:      "last_success_timestamp_seconds",
		Help:      "Unix time of the last successful refresh.",
	}, []string{"source"})

	r.entities = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: r.namespace,
		Name:      "entities",
		Help:      "Entities in the current dataset.",
	}, []string{"source"})

	r.outcomes = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: r.namespace,
		Name:      "entities_by_outcome",
		Help:      "Entities in the current dataset by outcome.",
	}, []string{"source", "outcome"})

	r.callbackPanics = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: r.namespace,
		Name:      "callback_panics_total",
		Help:      "Update callbacks that panicked.",
	})

	r.registry.MustRegister(
		r.refreshes,
		r.refreshDuration,
		r.lastSuccess,
		r.entities,
		r.outcomes,
		r.callbackPanics,
	)
	return r
}

// ObserveRefresh records one completed refresh. result is [ResultSuccess] or
// a failure kind.
func (r *Recorder) ObserveRefresh(source, result string, took time.Duration) {
	r.refreshes.WithLabelValues(source, result).Inc()
	r.refreshDuration.WithLabelValues(source).Observe(took.Seconds())
	if result == ResultSuccess {
		r.lastSuccess.WithLabelValues(source).Set(float64(time.Now().Unix()))
	}
}

// SetSnapshot records the entity counts of the latest snapshot.
func (r *Recorder) SetSnapshot(source string, passed, failed int) {
	r.entities.WithLabelValues(source).Set(float64(passed + failed))
	r.outcomes.WithLabelValues(source, "passed").Set(float64(passed))
	r.outcomes.WithLabelValues(source, "failed").Set(float64(failed))
}

// IncCallbackPanics counts a recovered callback panic.
func (r *Recorder) IncCallbackPanics() {
	r.callbackPanics.Inc()
}

// Registry returns the registry the metrics are registered on.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler returns an HTTP handler exposing the registry.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
