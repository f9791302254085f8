// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package synthesis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/pdiddy/account-intel/internal/httputil"
	"github.com/pdiddy/account-intel/pkg/types"
)

// claudeAPIURL is the Claude Messages endpoint. Package-level var for test
// substitution.
var claudeAPIURL = "https://api.anthropic.com/v1/messages"

const (
	anthropicVersion    = "2023-06-01"
	defaultClaudeTokens = 4096
	claudeWebSearchUses = 5
)

// AnthropicProvider calls the Claude Messages API. Requests with WebSearch
// set attach the server-side web search tool.
type AnthropicProvider struct {
	APIKey     string
	Client     *http.Client
	UserAgent  string
	MaxRetries int
}

// NewAnthropicProvider returns a provider using cfg's timeout and retry settings.
func NewAnthropicProvider(apiKey string, cfg types.HTTPConfig) *AnthropicProvider {
	return &AnthropicProvider{
		APIKey:     apiKey,
		Client:     &http.Client{Timeout: cfg.Timeout},
		UserAgent:  cfg.UserAgent,
		MaxRetries: cfg.MaxRetries,
	}
}

// Name returns the provider identifier.
func (c *AnthropicProvider) Name() string { return ProviderAnthropic }

// claudeRequest is the request body for the Claude Messages API.
type claudeRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	System    string          `json:"system,omitempty"`
	Messages  []claudeMessage `json:"messages"`
	Tools     []claudeTool    `json:"tools,omitempty"`
}

// claudeMessage is a single message in the Claude API conversation.
type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeTool struct {
	Type    string `json:"type"`
	Name    string `json:"name"`
	MaxUses int    `json:"max_uses,omitempty"`
}

// claudeResponse is the response body from the Claude Messages API.
type claudeResponse struct {
	Content []claudeContent `json:"content"`
	Usage   struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// claudeContent is a content block in the Claude API response. Only text
// blocks and their citations are read.
type claudeContent struct {
	Type      string `json:"type"`
	Text      string `json:"text"`
	Citations []struct {
		URL   string `json:"url"`
		Title string `json:"title"`
	} `json:"citations"`
}

// Complete sends one Messages API request and joins the text blocks of the
// answer.
func (c *AnthropicProvider) Complete(ctx context.Context, r Request) (Response, error) {
	if c.APIKey == "" {
		return Response{}, fmt.Errorf("anthropic: no API key")
	}
	if r.Model == "" {
		return Response{}, fmt.Errorf("anthropic: no model")
	}

	maxTokens := r.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultClaudeTokens
	}

	reqBody := claudeRequest{
		Model:     r.Model,
		MaxTokens: maxTokens,
		System:    r.System,
	}
	for _, m := range r.Messages {
		reqBody.Messages = append(reqBody.Messages, claudeMessage{Role: m.Role, Content: m.Content})
	}
	if r.WebSearch {
		reqBody.Tools = []claudeTool{{Type: "web_search_20250305", Name: "web_search", MaxUses: claudeWebSearchUses}}
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return Response{}, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, claudeAPIURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return Response{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.APIKey)
	req.Header.Set("anthropic-version", anthropicVersion)
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := httputil.DoWithRetry(ctx, client, req, c.MaxRetries)
	if err != nil {
		return Response{}, fmt.Errorf("calling Claude API: %w", err)
	}
	defer resp.Body.Close()

	if !httputil.IsSuccess(resp.StatusCode) {
		return Response{}, httputil.StatusError("Claude API", resp)
	}

	var cResp claudeResponse
	if err := json.NewDecoder(resp.Body).Decode(&cResp); err != nil {
		return Response{}, fmt.Errorf("decoding Claude response: %w", err)
	}

	var text strings.Builder
	out := Response{
		Usage: types.TokenUsage{
			InputTokens:  cResp.Usage.InputTokens,
			OutputTokens: cResp.Usage.OutputTokens,
		},
	}
	for _, block := range cResp.Content {
		if block.Type != "text" {
			continue
		}
		text.WriteString(block.Text)
		for _, cit := range block.Citations {
			out.Annotations = append(out.Annotations, Annotation{URL: cit.URL, Title: cit.Title})
		}
	}
	out.Content = strings.TrimSpace(text.String())
	if out.Content == "" {
		return Response{}, fmt.Errorf("no text content in Claude API response")
	}
	return out, nil
}
