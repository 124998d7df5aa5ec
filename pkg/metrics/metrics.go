// Package metrics holds the Prometheus collectors of the dashboard.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "evadash"

// Outcome labels of a dataset load.
const (
	OutcomeSuccess  = "success"
	OutcomeFallback = "fallback"
	OutcomeFailure  = "failure"
)

type Metrics struct {
	registry *prometheus.Registry

	loads          *prometheus.CounterVec
	loadDuration   prometheus.Histogram
	rows           *prometheus.GaugeVec
	lastSuccessTS  prometheus.Gauge
	annotationDiff prometheus.Gauge
	skippedRows    prometheus.Gauge
	requests       *prometheus.CounterVec
}

// New registers the collectors on a fresh registry, together with the Go
// runtime and process collectors.
func New(version string) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dataset_loads_total",
			Help:      "Dataset loads by outcome",
		}, []string{"outcome"}),
		loadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dataset_load_duration_seconds",
			Help:      "Time spent fetching, decoding and storing the dataset",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10), //nolint:mnd
		}),
		rows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_rows",
			Help:      "Records in the current dataset by country",
		}, []string{"country"}),
		lastSuccessTS: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_last_success_timestamp_seconds",
			Help:      "Unix timestamp of the last successful dataset load",
		}),
		annotationDiff: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "figure_annotation_mismatches",
			Help:      "Chart annotations that disagree with the current dataset",
		}),
		skippedRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_skipped_rows",
			Help:      "Malformed rows left out of the current dataset",
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code",
		}, []string{"route", "code"}),
	}

	buildInfo := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "build_info",
		Help:      "Build information",
	}, []string{"version"})
	buildInfo.WithLabelValues(version).Set(1)

	m.registry.MustRegister(
		m.loads, m.loadDuration, m.rows, m.lastSuccessTS,
		m.annotationDiff, m.skippedRows, m.requests, buildInfo,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveLoad records the outcome and duration of one load attempt.
func (m *Metrics) ObserveLoad(outcome string, elapsed time.Duration) {
	m.loads.WithLabelValues(outcome).Inc()
	m.loadDuration.Observe(elapsed.Seconds())

	if outcome != OutcomeFailure {
		m.lastSuccessTS.SetToCurrentTime()
	}
}

// SetRows replaces the per-country row counts.
func (m *Metrics) SetRows(counts map[string]int) {
	m.rows.Reset()

	for country, n := range counts {
		m.rows.WithLabelValues(country).Set(float64(n))
	}
}

func (m *Metrics) SetAnnotationMismatches(n int) {
	m.annotationDiff.Set(float64(n))
}

func (m *Metrics) SetSkippedRows(n int) {
	m.skippedRows.Set(float64(n))
}

func (m *Metrics) ObserveRequest(route string, code string) {
	m.requests.WithLabelValues(route, code).Inc()
}
