package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups all Prometheus instruments used by the coach.
type Metrics struct {
	Turns          *prometheus.CounterVec
	StageDuration  *prometheus.HistogramVec
	ActiveSessions prometheus.Gauge
	Resets         prometheus.Counter
	SignalingPeers prometheus.Gauge

	registry *prometheus.Registry
}

func NewMetrics(namespace string, reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Turns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_total",
			Help:      "Interview turns by outcome.",
		}, []string{"outcome"}),
		StageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Time spent in each engine call of a turn.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 4, 8, 16},
		}, []string{"stage"}),
		ActiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Number of sessions with stored history.",
		}),
		Resets: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resets_total",
			Help:      "Session reset requests.",
		}),
		SignalingPeers: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "signaling_peers",
			Help:      "Connected WebRTC signaling peers.",
		}),
		registry: reg,
	}
}

func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	m.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (m *Metrics) TurnFinished(outcome string) {
	m.Turns.WithLabelValues(outcome).Inc()
}

func (m *Metrics) SessionsChanged(active int) {
	m.ActiveSessions.Set(float64(active))
}

func (m *Metrics) SessionReset() {
	m.Resets.Inc()
}

func (m *Metrics) PeersChanged(connected int) {
	m.SignalingPeers.Set(float64(connected))
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
