// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package synthesis

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/account-intel/internal/httputil"
	"github.com/pdiddy/account-intel/pkg/types"
)

func init() {
	httputil.RetryBaseDelay = time.Millisecond
}

func withOpenAIServer(t *testing.T, h http.HandlerFunc) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(h)
	orig := openAIChatURL
	openAIChatURL = ts.URL
	t.Cleanup(func() {
		openAIChatURL = orig
		ts.Close()
	})
	return ts
}

func TestOpenAIComplete(t *testing.T) {
	var got map[string]any
	ts := withOpenAIServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{
			"choices": [{"message": {
				"content": "  Acme is a distributor.  ",
				"annotations": [
					{"type": "url_citation", "url_citation": {"url": "https://www.reuters.com/acme", "title": "Reuters"}},
					{"type": "file_citation"}
				]
			}}],
			"usage": {"prompt_tokens": 1200, "completion_tokens": 340}
		}`))
	})

	p := &OpenAIProvider{APIKey: "sk-test", Client: ts.Client()}
	resp, err := p.Complete(context.Background(), Request{
		Model:     "gpt-4o-search-preview",
		System:    "be factual",
		Messages:  []Message{{Role: "user", Content: "research Acme"}},
		WebSearch: true,
		MaxTokens: 2048,
	})
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o-search-preview", got["model"])
	assert.EqualValues(t, 2048, got["max_completion_tokens"])
	assert.Contains(t, got, "web_search_options")
	msgs := got["messages"].([]any)
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
	assert.Equal(t, "research Acme", msgs[1].(map[string]any)["content"])

	assert.Equal(t, "Acme is a distributor.", resp.Content)
	assert.Equal(t, types.TokenUsage{InputTokens: 1200, OutputTokens: 340}, resp.Usage)
	assert.Equal(t, []Annotation{{URL: "https://www.reuters.com/acme", Title: "Reuters"}}, resp.Annotations)
}

func TestOpenAICompleteWithoutWebSearch(t *testing.T) {
	var got map[string]any
	ts := withOpenAIServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"choices": [{"message": {"content": "{}"}}], "usage": {}}`))
	})

	p := &OpenAIProvider{APIKey: "k", Client: ts.Client()}
	_, err := p.Complete(context.Background(), Request{Model: "gpt-4o-mini", Messages: []Message{{Role: "user", Content: "x"}}})
	require.NoError(t, err)
	assert.NotContains(t, got, "web_search_options")
	assert.NotContains(t, got, "max_completion_tokens")
}

func TestOpenAIErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"unauthorized", http.StatusUnauthorized, `{"error":{"message":"bad key"}}`, "OpenAI API returned HTTP 401"},
		{"server error", http.StatusInternalServerError, `oops`, "HTTP 500"},
		{"no choices", http.StatusOK, `{"choices": []}`, "no choices"},
		{"bad json", http.StatusOK, `{`, "decoding OpenAI response"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := withOpenAIServer(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})
			p := &OpenAIProvider{APIKey: "k", Client: ts.Client()}
			_, err := p.Complete(context.Background(), Request{Model: "m"})
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestOpenAIRetriesRateLimit(t *testing.T) {
	var calls int32
	ts := withOpenAIServer(t, func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"choices": [{"message": {"content": "ok"}}]}`))
	})
	p := &OpenAIProvider{APIKey: "k", Client: ts.Client(), MaxRetries: 3}
	resp, err := p.Complete(context.Background(), Request{Model: "m"})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Content)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestOpenAIRequiresKeyAndModel(t *testing.T) {
	_, err := (&OpenAIProvider{}).Complete(context.Background(), Request{Model: "m"})
	assert.ErrorContains(t, err, "no API key")
	_, err = (&OpenAIProvider{APIKey: "k"}).Complete(context.Background(), Request{})
	assert.ErrorContains(t, err, "no model")
}
