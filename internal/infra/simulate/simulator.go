package simulate

import (
	"context"
	"math/rand"
	"time"

	"conduit/internal/domain"
)

// Simulator produces the synthetic execution path: a payload echoing the
// request inside an artificial latency window, so simulated calls feel like
// remote ones without hiding that they are synthetic.
type Simulator struct {
	minLatency time.Duration
	maxLatency time.Duration
	sleep      func(context.Context, time.Duration)
}

type Options struct {
	MinLatency time.Duration
	MaxLatency time.Duration
	// Sleep is replaced in tests to avoid real waiting.
	Sleep func(context.Context, time.Duration)
}

func New(opts Options) *Simulator {
	minLatency := opts.MinLatency
	if minLatency < 0 {
		minLatency = 0
	}
	maxLatency := opts.MaxLatency
	if maxLatency < minLatency {
		maxLatency = minLatency
	}
	sleep := opts.Sleep
	if sleep == nil {
		sleep = contextSleep
	}
	return &Simulator{
		minLatency: minLatency,
		maxLatency: maxLatency,
		sleep:      sleep,
	}
}

func NewDefault(cfg domain.SimulationConfig) *Simulator {
	return New(Options{
		MinLatency: time.Duration(cfg.MinLatencyMs) * time.Millisecond,
		MaxLatency: time.Duration(cfg.MaxLatencyMs) * time.Millisecond,
	})
}

// Run returns the synthetic payload for a request after the artificial
// delay. It never fails: the simulated path has no failure mode of its own.
func (s *Simulator) Run(ctx context.Context, req domain.ExecutionRequest) map[string]any {
	s.sleep(ctx, s.latency())

	return map[string]any{
		"simulated": true,
		"server":    req.Server,
		"tool":      req.Tool,
		"args":      req.Args,
		"note":      "synthetic response: no real backend was invoked",
	}
}

// latency picks a point in the configured window. The top-level rand
// functions are safe for concurrent requests.
func (s *Simulator) latency() time.Duration {
	if s.maxLatency == s.minLatency {
		return s.minLatency
	}
	return s.minLatency + time.Duration(rand.Int63n(int64(s.maxLatency-s.minLatency)))
}

func contextSleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}
