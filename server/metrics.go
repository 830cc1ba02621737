package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// metrics lives on its own registry so several servers (and tests) can
// coexist in one process.
type metrics struct {
	registry        *prometheus.Registry
	requests        *prometheus.CounterVec
	providerLatency prometheus.Histogram
	sessions        prometheus.Gauge
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "chatwidget",
			Name:      "chat_requests_total",
			Help:      "Chat requests by HTTP status code.",
		}, []string{"code"}),
		providerLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "chatwidget",
			Name:      "provider_latency_seconds",
			Help:      "Time spent waiting for the model provider.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
		}),
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "chatwidget",
			Name:      "widget_sessions_active",
			Help:      "Open widget websocket sessions.",
		}),
	}
	m.registry.MustRegister(m.requests, m.providerLatency, m.sessions)
	return m
}

func (m *metrics) observeRequest(code int) {
	m.requests.WithLabelValues(strconv.Itoa(code)).Inc()
}

func (m *metrics) observeProvider(d time.Duration) {
	m.providerLatency.Observe(d.Seconds())
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
