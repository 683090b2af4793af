package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"conduit/internal/app/catalog"
	"conduit/internal/domain"
	"conduit/internal/infra/bridge"
	"conduit/internal/infra/router"
	"conduit/internal/infra/simulate"
	"conduit/internal/infra/strategy"
	"conduit/internal/infra/strategy/fsops"
	"conduit/internal/infra/strategy/websearch"
)

// Wires the real pipeline (connect -> discover -> route) the way Serve does,
// without the HTTP surfaces.
func buildBridge(t *testing.T, defs map[string]domain.ServerDefinition, force bool) *router.Router {
	t.Helper()

	registry := strategy.NewRegistry()
	registry.Register(domain.IdentityFilesystem, strategy.Entry{Strategy: fsops.New()})
	registry.Register(domain.IdentityWebSearch, strategy.Entry{
		Strategy:      websearch.New(websearch.Options{}),
		CredentialKey: websearch.CredentialKey,
		Guidance:      websearch.Guidance,
	})

	manager := bridge.NewManager(bridge.Options{})
	conns := manager.ConnectAll(context.Background(), defs)

	cat := catalog.New(registry, nil)
	cat.DiscoverAll(conns)

	readySet := make(map[string]*domain.ServerConnection, len(conns))
	for name, conn := range conns {
		if conn.Status != domain.StatusExcluded {
			readySet[name] = conn
		}
	}

	return router.New(readySet, registry, router.Options{
		ForceSimulation: force,
		Simulator: simulate.New(simulate.Options{
			Sleep: func(context.Context, time.Duration) {},
		}),
	})
}

func TestScenario_ServerWithoutLaunchDescriptor(t *testing.T) {
	rt := buildBridge(t, map[string]domain.ServerDefinition{
		"alpha": {Name: "alpha"},
	}, false)

	_, err := rt.Execute(context.Background(), domain.ExecutionRequest{Server: "alpha", Tool: "x"})
	require.ErrorIs(t, err, domain.ErrServerNotFound)
}

func TestScenario_FilesystemListIsReal(t *testing.T) {
	dir := t.TempDir()
	seed := filepath.Join(dir, "known.txt")
	require.NoError(t, writeFile(seed, "seed"))

	rt := buildBridge(t, map[string]domain.ServerDefinition{
		"files": {Name: "files", Command: []string{"./files"}, Tags: []string{"filesystem"}},
	}, false)

	result, err := rt.Execute(context.Background(), domain.ExecutionRequest{
		Server: "files",
		Tool:   "list",
		Args:   map[string]any{"path": dir},
	})
	require.NoError(t, err)
	require.True(t, result.Success)
	require.False(t, result.Simulation.Simulated)

	entries := result.Payload["entries"].([]map[string]any)
	require.Len(t, entries, 1)
	require.Equal(t, "known.txt", entries[0]["name"])
}

func TestScenario_WebSearchWithoutCredentialSimulates(t *testing.T) {
	rt := buildBridge(t, map[string]domain.ServerDefinition{
		"web": {
			Name:    "web",
			Command: []string{"./web"},
			Tags:    []string{"web-search"},
			Env:     map[string]string{"apiKey": "CONDUIT_TEST_ABSENT_KEY"},
		},
	}, false)

	result, err := rt.Execute(context.Background(), domain.ExecutionRequest{
		Server: "web",
		Tool:   "search",
		Args:   map[string]any{"query": "x"},
	})
	require.NoError(t, err)
	require.True(t, result.Success)
	require.True(t, result.Simulation.Simulated)
	require.Equal(t, domain.ReasonMissingCredential, result.Simulation.Reason)
	require.NotEmpty(t, result.Simulation.Guidance)
}

func TestScenario_WriteThenReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t.txt")
	rt := buildBridge(t, map[string]domain.ServerDefinition{
		"files": {Name: "files", Command: []string{"./files"}, Tags: []string{"filesystem"}},
	}, false)

	written, err := rt.Execute(context.Background(), domain.ExecutionRequest{
		Server: "files",
		Tool:   "write",
		Args:   map[string]any{"path": path, "content": "hello"},
	})
	require.NoError(t, err)
	require.True(t, written.Success)
	require.False(t, written.Simulation.Simulated)

	read, err := rt.Execute(context.Background(), domain.ExecutionRequest{
		Server: "files",
		Tool:   "read",
		Args:   map[string]any{"path": path},
	})
	require.NoError(t, err)
	require.True(t, read.Success)
	require.Equal(t, "hello", read.Payload["content"])
}

func TestScenario_ForceSimulationCoversEveryCall(t *testing.T) {
	rt := buildBridge(t, map[string]domain.ServerDefinition{
		"files":   {Name: "files", Command: []string{"./files"}, Tags: []string{"filesystem"}},
		"planner": {Name: "planner", Command: []string{"./planner"}, Tags: []string{"taskmaster-ai"}},
	}, true)

	for _, call := range []domain.ExecutionRequest{
		{Server: "files", Tool: "list", Args: map[string]any{"path": "."}},
		{Server: "planner", Tool: "plan_task", Args: map[string]any{"task": "x"}},
	} {
		result, err := rt.Execute(context.Background(), call)
		require.NoError(t, err)
		require.True(t, result.Simulation.Simulated)
		require.Equal(t, domain.ReasonForcedMockMode, result.Simulation.Reason)
	}
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}
