package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcomes para UpstreamRequests.
const (
	OutcomeOK       = "ok"
	OutcomeError    = "error"
	OutcomeNotFound = "not_found"
)

// Metrics agrupa las métricas de la app.
type Metrics struct {
	registry *prometheus.Registry

	// Backend Zoónica
	UpstreamRequests *prometheus.CounterVec
	UpstreamLatency  *prometheus.HistogramVec

	// Historial médico
	DegradedSections *prometheus.CounterVec

	// Ubicación en vivo
	TrackingSessions  prometheus.Gauge
	TrackingPositions prometheus.Counter
}

// New crea y registra las métricas en un registry propio (no el global),
// así tests y binarios pueden crear varias instancias.
func New(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		UpstreamRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "requests_total",
			Help:      "Requests sent to the Zoonica backend",
		}, []string{"resource", "outcome"}),
		UpstreamLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "request_duration_seconds",
			Help:      "Latency of requests to the Zoonica backend",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"resource"}),
		DegradedSections: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "history",
			Name:      "degraded_sections_total",
			Help:      "Medical history sections rendered empty because their fetch failed",
		}, []string{"category"}),
		TrackingSessions: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "tracking",
			Name:      "sessions",
			Help:      "Open live-location sessions",
		}),
		TrackingPositions: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tracking",
			Name:      "positions_total",
			Help:      "Positions appended to tracking paths",
		}),
	}
}

// ObserveUpstream registra una llamada al backend.
// Seguro con receiver nil (binarios sin métricas).
func (m *Metrics) ObserveUpstream(resource, outcome string, took time.Duration) {
	if m == nil {
		return
	}
	m.UpstreamRequests.WithLabelValues(resource, outcome).Inc()
	m.UpstreamLatency.WithLabelValues(resource).Observe(took.Seconds())
}

func (m *Metrics) SectionDegraded(category string) {
	if m == nil {
		return
	}
	m.DegradedSections.WithLabelValues(category).Inc()
}

func (m *Metrics) SessionOpened() {
	if m == nil {
		return
	}
	m.TrackingSessions.Inc()
}

func (m *Metrics) SessionClosed() {
	if m == nil {
		return
	}
	m.TrackingSessions.Dec()
}

func (m *Metrics) PositionAppended() {
	if m == nil {
		return
	}
	m.TrackingPositions.Inc()
}

// Handler expone /metrics.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
