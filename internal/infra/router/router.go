package router

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"conduit/internal/domain"
	"conduit/internal/infra/simulate"
	"conduit/internal/infra/strategy"
	"conduit/internal/infra/telemetry"
)

// Router dispatches execute calls against the startup-built connection map.
// It is stateless per call: all lookups go into maps that are effectively
// immutable after startup, so no locking is needed.
type Router struct {
	conns    map[string]*domain.ServerConnection
	registry *strategy.Registry
	sim      *simulate.Simulator
	force    bool
	logger   *zap.Logger
	metrics  domain.Metrics
	now      func() time.Time
}

type Options struct {
	// ForceSimulation routes every call onto the simulated path. It is
	// resolved from the environment once at startup and passed in here, so
	// the router itself never reads global state.
	ForceSimulation bool
	Simulator       *simulate.Simulator
	Logger          *zap.Logger
	Metrics         domain.Metrics
	Now             func() time.Time
}

func New(conns map[string]*domain.ServerConnection, registry *strategy.Registry, opts Options) *Router {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = telemetry.NewNoopMetrics()
	}
	sim := opts.Simulator
	if sim == nil {
		sim = simulate.New(simulate.Options{})
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Router{
		conns:    conns,
		registry: registry,
		sim:      sim,
		force:    opts.ForceSimulation,
		logger:   logger.Named("router"),
		metrics:  metrics,
		now:      now,
	}
}

// Execute runs one tool call. Only the structural checks return errors
// (unknown server, not ready, unknown tool); once dispatch starts, every
// outcome is captured in the result, with Success=false and an error
// message when the strategy failed.
func (r *Router) Execute(ctx context.Context, req domain.ExecutionRequest) (domain.ExecutionResult, error) {
	conn, ok := r.conns[req.Server]
	if !ok {
		return domain.ExecutionResult{}, &domain.NotFoundError{Server: req.Server}
	}
	if conn.Status != domain.StatusReady {
		return domain.ExecutionResult{}, &domain.NotReadyError{Server: req.Server, Status: conn.Status}
	}
	if !conn.HasTool(req.Tool) {
		return domain.ExecutionResult{}, &domain.ToolNotFoundError{Server: req.Server, Tool: req.Tool}
	}

	start := r.now()
	decision := Decide(req, conn, r.force, r.registry)

	var payload map[string]any
	var execErr error

	if decision.Simulated {
		payload = r.sim.Run(ctx, req)
	} else {
		entry, registered := r.registry.Lookup(conn.Identity)
		if !registered {
			// The decision said real but no strategy exists for this
			// identity. Fail safe into the simulated path rather than call
			// an implementation that is not there.
			decision = domain.SimulationDecision{
				Simulated: true,
				Reason:    domain.ReasonPassthroughFallback,
				Guidance:  "no real integration registered for identity " + conn.Identity,
			}
			payload = r.sim.Run(ctx, req)
		} else {
			payload, execErr = entry.Strategy.Execute(ctx, req, conn)
		}
	}

	elapsed := time.Since(start)
	result := domain.ExecutionResult{
		RequestID:  uuid.NewString(),
		Success:    execErr == nil,
		Server:     req.Server,
		Tool:       req.Tool,
		Args:       req.Args,
		Payload:    payload,
		Timestamp:  start,
		Duration:   elapsed,
		Simulation: simulate.Annotate(decision),
	}
	if execErr != nil {
		result.Error = execErr.Error()
	}

	r.observe(req, result, elapsed, execErr)
	return result, nil
}

func (r *Router) observe(req domain.ExecutionRequest, result domain.ExecutionResult, elapsed time.Duration, execErr error) {
	mode := telemetry.ModeReal
	if result.Simulation.Simulated {
		mode = telemetry.ModeSimulated
	}
	r.metrics.ObserveExecution(req.Server, mode, elapsed, execErr)

	fields := []zap.Field{
		telemetry.EventField(telemetry.EventExecute),
		telemetry.ServerField(req.Server),
		telemetry.ToolField(req.Tool),
		telemetry.ModeField(mode),
		telemetry.ReasonField(string(result.Simulation.Reason)),
		telemetry.RequestIDField(result.RequestID),
		telemetry.DurationField(elapsed),
	}
	if execErr != nil {
		fields[0] = telemetry.EventField(telemetry.EventExecuteError)
		fields = append(fields, zap.Error(execErr))
		r.logger.Warn("execution failed", fields...)
		return
	}
	r.logger.Info("execution complete", fields...)
}
