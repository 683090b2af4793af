package websearch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"conduit/internal/domain"
)

const (
	ToolSearch = "search"

	// CredentialKey is the config key the web-search identity resolves its
	// subscription token from.
	CredentialKey = "apiKey"

	// Guidance is attached to simulated results when the token is missing.
	Guidance = "set BRAVE_API_KEY to enable live web search (https://brave.com/search/api)"

	defaultBaseURL = "https://api.search.brave.com/res/v1/web/search"
	defaultCount   = 10
	maxCount       = 20
)

// Strategy implements the web-search identity against the Brave Search
// API. Provider errors (auth, rate limit, transport) are reported as plain
// errors and end up as structured failures in the result.
type Strategy struct {
	client  *http.Client
	baseURL string
}

type Options struct {
	Client  *http.Client
	BaseURL string
}

func New(opts Options) *Strategy {
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Strategy{client: client, baseURL: baseURL}
}

func (s *Strategy) Discover(_ *domain.ServerConnection) []domain.Tool {
	return []domain.Tool{
		{Name: ToolSearch, Description: "Search the web via the Brave Search API"},
	}
}

func (s *Strategy) Execute(ctx context.Context, req domain.ExecutionRequest, conn *domain.ServerConnection) (map[string]any, error) {
	if req.Tool != ToolSearch {
		return nil, fmt.Errorf("unsupported web-search tool %q", req.Tool)
	}

	query, _ := req.Args["query"].(string)
	if query == "" {
		return nil, fmt.Errorf("missing required argument %q", "query")
	}

	token := conn.Credential(CredentialKey)
	if token == "" {
		// The router normally simulates before reaching this point; treat a
		// direct call without a token as a provider auth failure.
		return nil, fmt.Errorf("web search credential not configured")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("count", strconv.Itoa(searchCount(req.Args)))
	if locale, ok := req.Args["locale"].(string); ok && locale != "" {
		params.Set("country", locale)
	}
	if safety, ok := req.Args["safety"].(string); ok && safety != "" {
		params.Set("safesearch", safety)
	}
	httpReq.URL.RawQuery = params.Encode()
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Subscription-Token", token)

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, fmt.Errorf("search provider rejected credentials (status %d)", resp.StatusCode)
	case http.StatusTooManyRequests:
		return nil, fmt.Errorf("search provider rate limit exceeded")
	default:
		return nil, fmt.Errorf("search provider returned status %d", resp.StatusCode)
	}

	var body braveResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	results := make([]map[string]any, 0, len(body.Web.Results))
	for _, row := range body.Web.Results {
		results = append(results, map[string]any{
			"title":       row.Title,
			"url":         row.URL,
			"description": row.Description,
		})
	}

	return map[string]any{
		"query":   query,
		"results": results,
		"total":   len(results),
	}, nil
}

func searchCount(args map[string]any) int {
	count := defaultCount
	switch v := args["count"].(type) {
	case float64:
		count = int(v)
	case int:
		count = v
	}
	if count < 1 {
		count = 1
	}
	if count > maxCount {
		count = maxCount
	}
	return count
}

type braveResponse struct {
	Web struct {
		Results []struct {
			Title       string `json:"title"`
			URL         string `json:"url"`
			Description string `json:"description"`
		} `json:"results"`
	} `json:"web"`
}

var _ domain.Strategy = (*Strategy)(nil)
