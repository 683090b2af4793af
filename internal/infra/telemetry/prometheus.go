package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"conduit/internal/domain"
)

type PrometheusMetrics struct {
	executionDuration *prometheus.HistogramVec
	connectAttempts   *prometheus.CounterVec
	readyServers      prometheus.Gauge
}

func NewPrometheusMetrics(registerer prometheus.Registerer) *PrometheusMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registerer)

	return &PrometheusMetrics{
		executionDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "conduit_execution_duration_seconds",
				Help:    "Duration of tool executions in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"server", "mode", "status"},
		),
		connectAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "conduit_connect_attempts_total",
				Help: "Total number of server connection attempts",
			},
			[]string{"server", "status"},
		),
		readyServers: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "conduit_ready_servers",
				Help: "Number of servers in the ready set",
			},
		),
	}
}

func (p *PrometheusMetrics) ObserveExecution(server, mode string, duration time.Duration, err error) {
	p.executionDuration.WithLabelValues(server, mode, statusLabel(err)).Observe(duration.Seconds())
}

func (p *PrometheusMetrics) ObserveConnect(server string, duration time.Duration, err error) {
	p.connectAttempts.WithLabelValues(server, statusLabel(err)).Inc()
}

func (p *PrometheusMetrics) SetReadyServers(count int) {
	p.readyServers.Set(float64(count))
}

func statusLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

var _ domain.Metrics = (*PrometheusMetrics)(nil)
