package telemetry

import (
	"time"

	"conduit/internal/domain"
)

type NoopMetrics struct{}

func NewNoopMetrics() *NoopMetrics {
	return &NoopMetrics{}
}

func (n *NoopMetrics) ObserveExecution(_ string, _ string, _ time.Duration, _ error) {}

func (n *NoopMetrics) ObserveConnect(_ string, _ time.Duration, _ error) {}

func (n *NoopMetrics) SetReadyServers(_ int) {}

var _ domain.Metrics = (*NoopMetrics)(nil)
