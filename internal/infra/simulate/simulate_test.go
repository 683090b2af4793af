package simulate

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"conduit/internal/domain"
)

func TestSimulator_PayloadEchoesRequest(t *testing.T) {
	var slept time.Duration
	sim := New(Options{
		MinLatency: 10 * time.Millisecond,
		MaxLatency: 20 * time.Millisecond,
		Sleep:      func(_ context.Context, d time.Duration) { slept = d },
	})

	payload := sim.Run(context.Background(), domain.ExecutionRequest{
		Server: "web",
		Tool:   "search",
		Args:   map[string]any{"query": "x"},
	})

	require.Equal(t, true, payload["simulated"])
	require.Equal(t, "web", payload["server"])
	require.Equal(t, "search", payload["tool"])
	require.Equal(t, map[string]any{"query": "x"}, payload["args"])
	require.NotEmpty(t, payload["note"])

	require.GreaterOrEqual(t, slept, 10*time.Millisecond)
	require.Less(t, slept, 20*time.Millisecond)
}

func TestSimulator_ZeroWindow(t *testing.T) {
	var slept time.Duration
	sim := New(Options{
		Sleep: func(_ context.Context, d time.Duration) { slept = d },
	})

	sim.Run(context.Background(), domain.ExecutionRequest{Server: "s", Tool: "t"})
	require.Equal(t, time.Duration(0), slept)
}

func TestAnnotate_Real(t *testing.T) {
	ann := Annotate(domain.SimulationDecision{Reason: domain.ReasonNone})

	require.False(t, ann.Simulated)
	require.Equal(t, domain.ReasonNone, ann.Reason)
	require.Equal(t, domain.ConfidenceRealData, ann.Confidence)
	require.Equal(t, domain.ServerOperational, ann.ServerStatus)
	require.Empty(t, ann.Warning)
	require.Empty(t, ann.Guidance)
}

func TestAnnotate_Simulated(t *testing.T) {
	cases := []struct {
		reason domain.SimulationReason
	}{
		{domain.ReasonForcedMockMode},
		{domain.ReasonMissingCredential},
		{domain.ReasonPassthroughFallback},
	}

	for _, tc := range cases {
		t.Run(string(tc.reason), func(t *testing.T) {
			ann := Annotate(domain.SimulationDecision{
				Simulated: true,
				Reason:    tc.reason,
				Guidance:  "do the thing",
			})

			require.True(t, ann.Simulated)
			require.Equal(t, tc.reason, ann.Reason)
			require.Equal(t, domain.ConfidenceMockData, ann.Confidence)
			require.Equal(t, domain.ServerDegraded, ann.ServerStatus)
			require.NotEmpty(t, ann.Warning)
			require.Equal(t, "do the thing", ann.Guidance)
		})
	}
}
