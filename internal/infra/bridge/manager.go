package bridge

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"conduit/internal/domain"
	"conduit/internal/infra/telemetry"
)

// Manager establishes server connections from their definitions. Every
// configured server is attempted exactly once, in parallel, during the
// startup sweep; there is no reconnect path afterwards.
type Manager struct {
	logger      *zap.Logger
	metrics     domain.Metrics
	timeout     time.Duration
	concurrency int
}

type Options struct {
	Logger      *zap.Logger
	Metrics     domain.Metrics
	Timeout     time.Duration
	Concurrency int
}

func NewManager(opts Options) *Manager {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = noopMetrics{}
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = time.Duration(domain.DefaultConnectTimeoutSeconds) * time.Second
	}
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = domain.DefaultConnectConcurrency
	}
	return &Manager{
		logger:      logger.Named("bridge"),
		metrics:     metrics,
		timeout:     timeout,
		concurrency: concurrency,
	}
}

// Connect builds the runtime connection for one definition. A definition
// without a launch descriptor is excluded: the returned connection carries
// StatusExcluded and must not enter the ready set. Declared credentials are
// resolved from the environment; a missing variable degrades the
// capability but never blocks the connection.
func (m *Manager) Connect(ctx context.Context, def domain.ServerDefinition) *domain.ServerConnection {
	start := time.Now()
	conn := &domain.ServerConnection{
		Definition: def,
		Status:     domain.StatusConnecting,
	}

	m.logger.Debug("connecting server",
		telemetry.EventField(telemetry.EventConnectAttempt),
		telemetry.ServerField(def.Name),
	)

	if len(def.Command) == 0 {
		conn.Status = domain.StatusExcluded
		m.metrics.ObserveConnect(def.Name, time.Since(start), fmt.Errorf("missing launch descriptor"))
		m.logger.Warn("server excluded: no launch descriptor",
			telemetry.EventField(telemetry.EventConnectExcluded),
			telemetry.ServerField(def.Name),
		)
		return conn
	}

	if len(def.Env) > 0 {
		conn.Credentials = make(map[string]string, len(def.Env))
		for configKey, envVar := range def.Env {
			value, ok := os.LookupEnv(envVar)
			if !ok || value == "" {
				m.logger.Warn("credential not set, capability degraded",
					telemetry.EventField(telemetry.EventCredentialMissing),
					telemetry.ServerField(def.Name),
					zap.String("configKey", configKey),
					zap.String("envVar", envVar),
				)
				continue
			}
			conn.Credentials[configKey] = value
		}
	}

	if err := ctx.Err(); err != nil {
		conn.Status = domain.StatusExcluded
		m.metrics.ObserveConnect(def.Name, time.Since(start), err)
		m.logger.Warn("server excluded: connect cancelled",
			telemetry.EventField(telemetry.EventConnectExcluded),
			telemetry.ServerField(def.Name),
			zap.Error(err),
		)
		return conn
	}

	conn.Status = domain.StatusReady
	m.metrics.ObserveConnect(def.Name, time.Since(start), nil)
	m.logger.Info("server ready",
		telemetry.EventField(telemetry.EventConnectSuccess),
		telemetry.ServerField(def.Name),
		zap.Int("credentials", len(conn.Credentials)),
		telemetry.DurationField(time.Since(start)),
	)
	return conn
}

// ConnectAll runs the startup sweep: every definition in parallel, joined
// with all-settled semantics. One broken server never blocks or fails its
// siblings. The returned map contains every connection, excluded ones
// included, keyed by server name.
func (m *Manager) ConnectAll(ctx context.Context, defs map[string]domain.ServerDefinition) map[string]*domain.ServerConnection {
	names := make([]string, 0, len(defs))
	for name := range defs {
		names = append(names, name)
	}
	sort.Strings(names)

	type connectResult struct {
		name string
		conn *domain.ServerConnection
	}

	semaphore := make(chan struct{}, m.concurrency)
	results := make(chan connectResult, len(names))
	var wg sync.WaitGroup

	for _, name := range names {
		def := defs[name]

		wg.Add(1)
		go func(name string, def domain.ServerDefinition) {
			defer wg.Done()

			select {
			case semaphore <- struct{}{}:
			case <-ctx.Done():
				results <- connectResult{name: name, conn: &domain.ServerConnection{
					Definition: def,
					Status:     domain.StatusExcluded,
				}}
				return
			}
			defer func() { <-semaphore }()

			connectCtx, cancel := context.WithTimeout(ctx, m.timeout)
			defer cancel()
			results <- connectResult{name: name, conn: m.Connect(connectCtx, def)}
		}(name, def)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	conns := make(map[string]*domain.ServerConnection, len(names))
	ready := 0
	for result := range results {
		conns[result.name] = result.conn
		if result.conn.Status == domain.StatusReady {
			ready++
		}
	}

	m.metrics.SetReadyServers(ready)
	m.logger.Info("startup sweep complete",
		zap.Int("total", len(names)),
		zap.Int("ready", ready),
		zap.Int("excluded", len(names)-ready),
	)
	return conns
}

type noopMetrics struct{}

func (noopMetrics) ObserveExecution(string, string, time.Duration, error) {}
func (noopMetrics) ObserveConnect(string, time.Duration, error)          {}
func (noopMetrics) SetReadyServers(int)                                  {}
