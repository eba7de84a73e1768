// Package metrics exposes Prometheus collectors for sessions, record loads
// and view events.
//
// Collectors are registered on a private registry so tests and multiple
// servers in one process do not collide with the global default.
//
//	m := metrics.New()
//	m.LoadFinished("ready", time.Since(start))
//	r.Handle("/metrics", m.Handler())
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "people_table"

// Metrics holds every collector the service records to.
type Metrics struct {
	registry *prometheus.Registry

	sessionsActive  prometheus.Gauge
	sessionsEvicted prometheus.Counter
	loadsTotal      *prometheus.CounterVec
	loadDuration    prometheus.Histogram
	loadedRecords   prometheus.Gauge
	fetchesActive   prometheus.Gauge
	viewEvents      *prometheus.CounterVec
}

// New creates and registers the collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		sessionsActive: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Number of browser sessions currently held in memory",
		}),
		sessionsEvicted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_evicted_total",
			Help:      "Sessions removed by the idle sweeper",
		}),
		loadsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "loads_total",
			Help:      "Record loads by outcome",
		}, []string{"outcome"}),
		loadDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "load_duration_seconds",
			Help:      "Time from fetch start to ready or failed",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}),
		loadedRecords: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_load_records",
			Help:      "Record count of the most recent successful load",
		}),
		fetchesActive: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "fetches_active",
			Help:      "Upstream fetches currently holding a limiter slot",
		}),
		viewEvents: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "view_events_total",
			Help:      "View events by kind and whether they changed the view",
		}, []string{"event", "applied"}),
	}
}

// Registry returns the registry backing the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// SessionStarted counts a newly created session.
func (m *Metrics) SessionStarted() {
	if m == nil {
		return
	}
	m.sessionsActive.Inc()
}

// SessionsEvicted records n sessions removed by the sweeper.
func (m *Metrics) SessionsEvicted(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.sessionsActive.Sub(float64(n))
	m.sessionsEvicted.Add(float64(n))
}

// FetchStarted and FetchDone track limiter occupancy.
func (m *Metrics) FetchStarted() {
	if m == nil {
		return
	}
	m.fetchesActive.Inc()
}

func (m *Metrics) FetchDone() {
	if m == nil {
		return
	}
	m.fetchesActive.Dec()
}

// LoadFinished records a completed load. outcome is "ready" or "failed".
func (m *Metrics) LoadFinished(outcome string, records int, d time.Duration) {
	if m == nil {
		return
	}
	m.loadsTotal.WithLabelValues(outcome).Inc()
	m.loadDuration.Observe(d.Seconds())
	if outcome == "ready" {
		m.loadedRecords.Set(float64(records))
	}
}

// ViewEvent counts one handler invocation.
func (m *Metrics) ViewEvent(event string, applied bool) {
	if m == nil {
		return
	}
	a := "false"
	if applied {
		a = "true"
	}
	m.viewEvents.WithLabelValues(event, a).Inc()
}
