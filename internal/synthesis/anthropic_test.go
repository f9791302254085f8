// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package synthesis

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/account-intel/pkg/types"
)

func withClaudeServer(t *testing.T, h http.HandlerFunc) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(h)
	orig := claudeAPIURL
	claudeAPIURL = ts.URL
	t.Cleanup(func() {
		claudeAPIURL = orig
		ts.Close()
	})
	return ts
}

func TestAnthropicComplete(t *testing.T) {
	var got claudeRequest
	ts := withClaudeServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "sk-ant", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{
			"content": [
				{"type": "server_tool_use", "id": "x"},
				{"type": "text", "text": "Acme was founded in 1952. ", "citations": [{"type": "web_search_result_location", "url": "https://acme.com/about", "title": "About"}]},
				{"type": "text", "text": "It is private."}
			],
			"usage": {"input_tokens": 900, "output_tokens": 150}
		}`))
	})

	p := &AnthropicProvider{APIKey: "sk-ant", Client: ts.Client()}
	resp, err := p.Complete(context.Background(), Request{
		Model:     "claude-sonnet-4-5",
		System:    "sys",
		Messages:  []Message{{Role: "user", Content: "research"}},
		WebSearch: true,
	})
	require.NoError(t, err)

	assert.Equal(t, "claude-sonnet-4-5", got.Model)
	assert.Equal(t, defaultClaudeTokens, got.MaxTokens)
	assert.Equal(t, "sys", got.System)
	require.Len(t, got.Tools, 1)
	assert.Equal(t, "web_search", got.Tools[0].Name)

	assert.Equal(t, "Acme was founded in 1952. It is private.", resp.Content)
	assert.Equal(t, types.TokenUsage{InputTokens: 900, OutputTokens: 150}, resp.Usage)
	assert.Equal(t, []Annotation{{URL: "https://acme.com/about", Title: "About"}}, resp.Annotations)
}

func TestAnthropicNoTools(t *testing.T) {
	var got map[string]any
	ts := withClaudeServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"content": [{"type": "text", "text": "{}"}]}`))
	})
	p := &AnthropicProvider{APIKey: "k", Client: ts.Client()}
	_, err := p.Complete(context.Background(), Request{Model: "m", MaxTokens: 100})
	require.NoError(t, err)
	assert.NotContains(t, got, "tools")
	assert.EqualValues(t, 100, got["max_tokens"])
}

func TestAnthropicErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"overloaded", 529, `{"type":"error"}`, "Claude API returned HTTP 529"},
		{"bad request", http.StatusBadRequest, `{}`, "HTTP 400"},
		{"no text", http.StatusOK, `{"content": [{"type": "tool_use"}]}`, "no text content"},
		{"bad json", http.StatusOK, `nope`, "decoding Claude response"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := withClaudeServer(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})
			p := &AnthropicProvider{APIKey: "k", Client: ts.Client()}
			_, err := p.Complete(context.Background(), Request{Model: "m"})
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestNewProvider(t *testing.T) {
	cfg := types.SynthesisConfig{}
	p, err := NewProvider("", "k", cfg)
	require.NoError(t, err)
	assert.Equal(t, ProviderOpenAI, p.Name())

	p, err = NewProvider(ProviderAnthropic, "k", cfg)
	require.NoError(t, err)
	assert.Equal(t, ProviderAnthropic, p.Name())

	_, err = NewProvider("bard", "k", cfg)
	assert.ErrorContains(t, err, "unknown generative provider")
}
