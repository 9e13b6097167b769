// Package metrics exposes Prometheus instrumentation for list-data fetches
// and tab autosaves.
//
// A Recorder owns its registry so tests and embedding applications never
// collide with the global default registry. A nil *Recorder is valid and
// records nothing.
package metrics

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "filterbox"

// Recorder collects fetch and save metrics.
type Recorder struct {
	registry      *prom.Registry
	fetches       *prom.CounterVec
	fetchDuration *prom.HistogramVec
	saves         *prom.CounterVec
	saveDuration  *prom.HistogramVec
}

// NewRecorder creates a recorder with its own registry. Go runtime and
// process collectors are registered alongside the filterbox metrics.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prom.NewRegistry(),
		fetches: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Subsystem: "listdata",
			Name:      "fetches_total",
			Help:      "Data source fetches by source, mode and outcome.",
		}, []string{"source", "mode", "outcome"}),
		fetchDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Subsystem: "listdata",
			Name:      "fetch_duration_seconds",
			Help:      "Time spent in data source fetches.",
			Buckets:   prom.DefBuckets,
		}, []string{"source", "mode"}),
		saves: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Subsystem: "tabs",
			Name:      "saves_total",
			Help:      "Tab autosave writes by saving mode and outcome.",
		}, []string{"mode", "outcome"}),
		saveDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Subsystem: "tabs",
			Name:      "save_duration_seconds",
			Help:      "Time spent writing tabs.",
			Buckets:   prom.DefBuckets,
		}, []string{"mode"}),
	}
	r.registry.MustRegister(
		r.fetches,
		r.fetchDuration,
		r.saves,
		r.saveDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// ObserveFetch records one data source fetch.
func (r *Recorder) ObserveFetch(source, mode, outcome string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.fetches.WithLabelValues(source, mode, outcome).Inc()
	r.fetchDuration.WithLabelValues(source, mode).Observe(elapsed.Seconds())
}

// ObserveSave records one tab save.
func (r *Recorder) ObserveSave(mode, outcome string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.saves.WithLabelValues(mode, outcome).Inc()
	r.saveDuration.WithLabelValues(mode).Observe(elapsed.Seconds())
}

// Registry returns the registry backing the recorder.
func (r *Recorder) Registry() *prom.Registry {
	return r.registry
}

// Handler serves the recorder's metrics in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
