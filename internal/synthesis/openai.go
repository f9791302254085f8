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

// openAIChatURL is the Chat Completions endpoint. Package-level var for test
// substitution.
var openAIChatURL = "https://api.openai.com/v1/chat/completions"

// OpenAIProvider calls the OpenAI Chat Completions API. Requests with
// WebSearch set enable the search-preview models' built-in web search.
type OpenAIProvider struct {
	APIKey     string
	Client     *http.Client
	UserAgent  string
	MaxRetries int
}

// NewOpenAIProvider returns a provider using cfg's timeout and retry settings.
func NewOpenAIProvider(apiKey string, cfg types.HTTPConfig) *OpenAIProvider {
	return &OpenAIProvider{
		APIKey:     apiKey,
		Client:     &http.Client{Timeout: cfg.Timeout},
		UserAgent:  cfg.UserAgent,
		MaxRetries: cfg.MaxRetries,
	}
}

// Name returns the provider identifier.
func (p *OpenAIProvider) Name() string { return ProviderOpenAI }

type openAIRequest struct {
	Model               string            `json:"model"`
	Messages            []Message         `json:"messages"`
	MaxCompletionTokens int               `json:"max_completion_tokens,omitempty"`
	WebSearchOptions    *openAIWebOptions `json:"web_search_options,omitempty"`
}

type openAIWebOptions struct {
	SearchContextSize string `json:"search_context_size,omitempty"`
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Content     string             `json:"content"`
			Annotations []openAIAnnotation `json:"annotations"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

type openAIAnnotation struct {
	Type        string `json:"type"`
	URLCitation struct {
		URL   string `json:"url"`
		Title string `json:"title"`
	} `json:"url_citation"`
}

// Complete sends one chat completion request.
func (p *OpenAIProvider) Complete(ctx context.Context, r Request) (Response, error) {
	if p.APIKey == "" {
		return Response{}, fmt.Errorf("openai: no API key")
	}
	if r.Model == "" {
		return Response{}, fmt.Errorf("openai: no model")
	}

	messages := make([]Message, 0, len(r.Messages)+1)
	if r.System != "" {
		messages = append(messages, Message{Role: "system", Content: r.System})
	}
	messages = append(messages, r.Messages...)

	body := openAIRequest{
		Model:               r.Model,
		Messages:            messages,
		MaxCompletionTokens: r.MaxTokens,
	}
	if r.WebSearch {
		body.WebSearchOptions = &openAIWebOptions{SearchContextSize: "medium"}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return Response{}, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, openAIChatURL, bytes.NewReader(payload))
	if err != nil {
		return Response{}, fmt.Errorf("creating request: %w", err)
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
		return Response{}, fmt.Errorf("calling OpenAI API: %w", err)
	}
	defer resp.Body.Close()

	if !httputil.IsSuccess(resp.StatusCode) {
		return Response{}, httputil.StatusError("OpenAI API", resp)
	}

	var oResp openAIResponse
	if err := json.NewDecoder(resp.Body).Decode(&oResp); err != nil {
		return Response{}, fmt.Errorf("decoding OpenAI response: %w", err)
	}
	if len(oResp.Choices) == 0 {
		return Response{}, fmt.Errorf("OpenAI API returned no choices")
	}

	msg := oResp.Choices[0].Message
	out := Response{
		Content: strings.TrimSpace(msg.Content),
		Usage: types.TokenUsage{
			InputTokens:  oResp.Usage.PromptTokens,
			OutputTokens: oResp.Usage.CompletionTokens,
		},
	}
	for _, a := range msg.Annotations {
		if a.Type != "url_citation" {
			continue
		}
		out.Annotations = append(out.Annotations, Annotation{URL: a.URLCitation.URL, Title: a.URLCitation.Title})
	}
	return out, nil
}
