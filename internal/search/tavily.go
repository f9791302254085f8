// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/pdiddy/account-intel/internal/httputil"
	"github.com/pdiddy/account-intel/pkg/types"
)

// tavilySearchURL is the Tavily search endpoint. Declared as a var so tests
// can substitute an httptest server.
var tavilySearchURL = "https://api.tavily.com/search"

const (
	defaultTavilyMaxResults = 5
	maxTavilyMaxResults     = 20
	defaultTavilyDepth      = "advanced"
)

// TavilyProvider queries the Tavily web search API.
type TavilyProvider struct {
	Client    *http.Client
	APIKey    string
	UserAgent string
	// MaxRetries bounds retries on HTTP 429; zero uses the httputil default.
	MaxRetries int
}

// NewTavilyProvider returns a provider using cfg's timeout and retry settings.
func NewTavilyProvider(apiKey string, cfg types.SearchConfig) *TavilyProvider {
	return &TavilyProvider{
		Client:     &http.Client{Timeout: cfg.Timeout},
		APIKey:     apiKey,
		UserAgent:  cfg.UserAgent,
		MaxRetries: cfg.MaxRetries,
	}
}

// Name returns the provider identifier.
func (p *TavilyProvider) Name() string { return "tavily" }

type tavilyRequest struct {
	APIKey        string `json:"api_key"`
	Query         string `json:"query"`
	SearchDepth   string `json:"search_depth"`
	MaxResults    int    `json:"max_results"`
	IncludeAnswer bool   `json:"include_answer"`
}

type tavilyResponse struct {
	Query   string         `json:"query"`
	Results []tavilyResult `json:"results"`
}

type tavilyResult struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// Search runs one Tavily query. Any non-2xx answer is an error.
func (p *TavilyProvider) Search(ctx context.Context, query string, opts Options) ([]types.RawSearchHit, error) {
	if p.APIKey == "" {
		return nil, fmt.Errorf("tavily: no API key")
	}
	if query == "" {
		return nil, fmt.Errorf("tavily: empty query")
	}

	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = defaultTavilyMaxResults
	}
	if maxResults > maxTavilyMaxResults {
		maxResults = maxTavilyMaxResults
	}
	depth := opts.Depth
	if depth == "" {
		depth = defaultTavilyDepth
	}

	payload, err := json.Marshal(tavilyRequest{
		APIKey:      p.APIKey,
		Query:       query,
		SearchDepth: depth,
		MaxResults:  maxResults,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding tavily request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tavilySearchURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.APIKey)
	if p.UserAgent != "" {
		req.Header.Set("User-Agent", p.UserAgent)
	}

	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := httputil.DoWithRetry(ctx, client, req, p.MaxRetries)
	if err != nil {
		return nil, fmt.Errorf("tavily request: %w", err)
	}
	defer resp.Body.Close()

	if !httputil.IsSuccess(resp.StatusCode) {
		return nil, httputil.StatusError("tavily", resp)
	}

	var tr tavilyResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, fmt.Errorf("parsing tavily response: %w", err)
	}

	hits := make([]types.RawSearchHit, 0, len(tr.Results))
	for _, r := range tr.Results {
		hits = append(hits, types.RawSearchHit{
			Title:   r.Title,
			URL:     r.URL,
			Content: r.Content,
			Score:   r.Score,
		})
	}
	return hits, nil
}
