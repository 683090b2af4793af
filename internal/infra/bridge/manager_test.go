package bridge

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"conduit/internal/domain"
)

func TestManager_ConnectReady(t *testing.T) {
	m := NewManager(Options{})

	conn := m.Connect(context.Background(), domain.ServerDefinition{
		Name:    "files",
		Command: []string{"./files"},
	})
	require.Equal(t, domain.StatusReady, conn.Status)
	require.Empty(t, conn.Credentials)
}

func TestManager_ConnectWithoutLaunchDescriptorExcludes(t *testing.T) {
	m := NewManager(Options{})

	conn := m.Connect(context.Background(), domain.ServerDefinition{Name: "alpha"})
	require.Equal(t, domain.StatusExcluded, conn.Status)
}

func TestManager_ConnectResolvesCredentials(t *testing.T) {
	t.Setenv("CONDUIT_TEST_TOKEN", "sekret")
	m := NewManager(Options{})

	conn := m.Connect(context.Background(), domain.ServerDefinition{
		Name:    "web",
		Command: []string{"./web"},
		Env: map[string]string{
			"apiKey": "CONDUIT_TEST_TOKEN",
			"region": "CONDUIT_TEST_UNSET_REGION",
		},
	})
	require.Equal(t, domain.StatusReady, conn.Status)
	require.Equal(t, "sekret", conn.Credential("apiKey"))
	// The missing variable degrades the capability but never blocks.
	require.Empty(t, conn.Credential("region"))
}

func TestManager_ConnectAllSettlesIndependently(t *testing.T) {
	m := NewManager(Options{Concurrency: 2, Timeout: time.Second})

	conns := m.ConnectAll(context.Background(), map[string]domain.ServerDefinition{
		"files": {Name: "files", Command: []string{"./files"}},
		"alpha": {Name: "alpha"},
		"web":   {Name: "web", Command: []string{"./web"}},
	})

	require.Len(t, conns, 3)
	require.Equal(t, domain.StatusReady, conns["files"].Status)
	require.Equal(t, domain.StatusReady, conns["web"].Status)
	require.Equal(t, domain.StatusExcluded, conns["alpha"].Status)
}

func TestManager_ConnectAllReportsReadyCount(t *testing.T) {
	metrics := &captureMetrics{}
	m := NewManager(Options{Metrics: metrics})

	m.ConnectAll(context.Background(), map[string]domain.ServerDefinition{
		"files": {Name: "files", Command: []string{"./files"}},
		"alpha": {Name: "alpha"},
	})

	require.Equal(t, 1, metrics.ready)
	require.Equal(t, 2, metrics.connects)
}

func TestManager_ConnectAllEmpty(t *testing.T) {
	m := NewManager(Options{})
	conns := m.ConnectAll(context.Background(), nil)
	require.Empty(t, conns)
}

type captureMetrics struct {
	mu       sync.Mutex
	ready    int
	connects int
}

func (c *captureMetrics) ObserveExecution(string, string, time.Duration, error) {}

func (c *captureMetrics) ObserveConnect(string, time.Duration, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connects++
}

func (c *captureMetrics) SetReadyServers(count int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ready = count
}
