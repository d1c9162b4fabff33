package httpapi

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the request-level counters/histograms exposed at /metrics.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	ErrorsTotal     *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	return &Metrics{
		RequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "altis_http_requests_total",
			Help: "Total HTTP requests handled, by route, method and status text.",
		}, []string{"route", "method", "status"}),
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name: "altis_http_request_duration_seconds",
			Help: "HTTP request duration in seconds, by route.",
		}, []string{"route", "method"}),
		ErrorsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "altis_http_errors_total",
			Help: "Total HTTP error responses, by route and error kind.",
		}, []string{"route", "kind"}),
	}
}

func (m *Metrics) observe(route, method, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(route, method, status).Inc()
	m.RequestDuration.WithLabelValues(route, method).Observe(duration.Seconds())
}
