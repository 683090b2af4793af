package memory

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"conduit/internal/domain"
)

func TestStrategy_StoreRetrieveRoundTrip(t *testing.T) {
	s := openStore(t)

	stored, err := s.Execute(context.Background(), request(ToolStore, map[string]any{
		"key":   "dashboard/theme",
		"value": map[string]any{"dark": true},
	}), nil)
	require.NoError(t, err)
	require.Equal(t, true, stored["stored"])

	retrieved, err := s.Execute(context.Background(), request(ToolRetrieve, map[string]any{
		"key": "dashboard/theme",
	}), nil)
	require.NoError(t, err)
	require.Equal(t, map[string]any{"dark": true}, retrieved["value"])
}

func TestStrategy_StoreOverwrites(t *testing.T) {
	s := openStore(t)

	_, err := s.Execute(context.Background(), request(ToolStore, map[string]any{"key": "k", "value": "v1"}), nil)
	require.NoError(t, err)
	_, err = s.Execute(context.Background(), request(ToolStore, map[string]any{"key": "k", "value": "v2"}), nil)
	require.NoError(t, err)

	retrieved, err := s.Execute(context.Background(), request(ToolRetrieve, map[string]any{"key": "k"}), nil)
	require.NoError(t, err)
	require.Equal(t, "v2", retrieved["value"])
}

func TestStrategy_RetrieveMissingKey(t *testing.T) {
	s := openStore(t)

	_, err := s.Execute(context.Background(), request(ToolRetrieve, map[string]any{"key": "ghost"}), nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "key not found")
}

func TestStrategy_MissingKeyArgument(t *testing.T) {
	s := openStore(t)

	_, err := s.Execute(context.Background(), request(ToolStore, map[string]any{"value": "v"}), nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "key")
}

func TestStrategy_Discover(t *testing.T) {
	s := openStore(t)
	tools := s.Discover(nil)

	names := make([]string, 0, len(tools))
	for _, tool := range tools {
		names = append(names, tool.Name)
	}
	require.ElementsMatch(t, []string{ToolStore, ToolRetrieve}, names)
}

func openStore(t *testing.T) *Strategy {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "memory.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func request(tool string, args map[string]any) domain.ExecutionRequest {
	return domain.ExecutionRequest{Server: "memory", Tool: tool, Args: args}
}
