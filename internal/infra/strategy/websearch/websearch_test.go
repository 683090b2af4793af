package websearch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"conduit/internal/domain"
)

func TestStrategy_SearchSuccess(t *testing.T) {
	var gotToken, gotQuery, gotCount string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("X-Subscription-Token")
		gotQuery = r.URL.Query().Get("q")
		gotCount = r.URL.Query().Get("count")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"web":{"results":[
			{"title":"Go","url":"https://go.dev","description":"The Go programming language"},
			{"title":"Docs","url":"https://go.dev/doc","description":"Documentation"}
		]}}`))
	}))
	defer server.Close()

	s := New(Options{Client: server.Client(), BaseURL: server.URL})
	payload, err := s.Execute(context.Background(), searchRequest(map[string]any{
		"query": "golang",
		"count": float64(5),
	}), connWithToken("tok-123"))
	require.NoError(t, err)

	require.Equal(t, "tok-123", gotToken)
	require.Equal(t, "golang", gotQuery)
	require.Equal(t, "5", gotCount)

	require.Equal(t, "golang", payload["query"])
	require.Equal(t, 2, payload["total"])
	results := payload["results"].([]map[string]any)
	require.Equal(t, "Go", results[0]["title"])
	require.Equal(t, "https://go.dev", results[0]["url"])
}

func TestStrategy_CountClamped(t *testing.T) {
	var gotCount string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCount = r.URL.Query().Get("count")
		_, _ = w.Write([]byte(`{"web":{"results":[]}}`))
	}))
	defer server.Close()

	s := New(Options{Client: server.Client(), BaseURL: server.URL})
	_, err := s.Execute(context.Background(), searchRequest(map[string]any{
		"query": "x",
		"count": float64(500),
	}), connWithToken("tok"))
	require.NoError(t, err)
	require.Equal(t, "20", gotCount)
}

func TestStrategy_AuthFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	s := New(Options{Client: server.Client(), BaseURL: server.URL})
	_, err := s.Execute(context.Background(), searchRequest(map[string]any{"query": "x"}), connWithToken("bad"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "rejected credentials")
}

func TestStrategy_RateLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	s := New(Options{Client: server.Client(), BaseURL: server.URL})
	_, err := s.Execute(context.Background(), searchRequest(map[string]any{"query": "x"}), connWithToken("tok"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "rate limit")
}

func TestStrategy_MissingQuery(t *testing.T) {
	s := New(Options{})
	_, err := s.Execute(context.Background(), searchRequest(nil), connWithToken("tok"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "query")
}

func TestStrategy_MissingToken(t *testing.T) {
	s := New(Options{})
	_, err := s.Execute(context.Background(), searchRequest(map[string]any{"query": "x"}), &domain.ServerConnection{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "credential")
}

func TestStrategy_UnsupportedTool(t *testing.T) {
	s := New(Options{})
	_, err := s.Execute(context.Background(), domain.ExecutionRequest{Server: "web", Tool: "scrape"}, connWithToken("tok"))
	require.Error(t, err)
}

func TestStrategy_Discover(t *testing.T) {
	tools := New(Options{}).Discover(nil)
	require.Len(t, tools, 1)
	require.Equal(t, ToolSearch, tools[0].Name)
}

func searchRequest(args map[string]any) domain.ExecutionRequest {
	return domain.ExecutionRequest{Server: "web", Tool: ToolSearch, Args: args}
}

func connWithToken(token string) *domain.ServerConnection {
	return &domain.ServerConnection{
		Identity:    "web-search",
		Credentials: map[string]string{CredentialKey: token},
	}
}
