// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package synthesis

import (
	"context"
	"fmt"

	"github.com/pdiddy/account-intel/pkg/types"
)

// Provider names accepted in ModelConfig.Provider.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Message is one turn of a chat-style prompt.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is a single generative call.
type Request struct {
	Model    string
	System   string
	Messages []Message
	// WebSearch asks the provider to ground its answer with live web search.
	WebSearch bool
	MaxTokens int
}

// Annotation is a source the provider cited in its answer.
type Annotation struct {
	URL   string
	Title string
}

// Response is the provider's answer to a Request.
type Response struct {
	Content     string
	Usage       types.TokenUsage
	Annotations []Annotation
}

// Provider abstracts a generative API so tests can supply a mock. Each
// implementation wraps one vendor's HTTP API.
type Provider interface {
	Name() string
	Complete(ctx context.Context, req Request) (Response, error)
}

// NewProvider returns the provider named by name using apiKey and cfg's HTTP
// settings.
func NewProvider(name, apiKey string, cfg types.SynthesisConfig) (Provider, error) {
	switch name {
	case "", ProviderOpenAI:
		return NewOpenAIProvider(apiKey, cfg.HTTPConfig), nil
	case ProviderAnthropic:
		return NewAnthropicProvider(apiKey, cfg.HTTPConfig), nil
	}
	return nil, fmt.Errorf("unknown generative provider %q (want %s or %s)", name, ProviderOpenAI, ProviderAnthropic)
}

// DefaultModels returns the built-in model names for provider.
func DefaultModels(provider string) types.ModelConfig {
	if provider == ProviderAnthropic {
		return types.ModelConfig{
			Provider: ProviderAnthropic,
			Search:   "claude-sonnet-4-5",
			Standard: "claude-haiku-4-5",
			Deep:     "claude-opus-4-1",
		}
	}
	return types.ModelConfig{
		Provider: ProviderOpenAI,
		Search:   "gpt-4o-search-preview",
		Standard: "gpt-4o-mini",
		Deep:     "o3",
	}
}

// uniqueURLs returns the distinct non-empty annotation URLs in order.
func uniqueURLs(anns []Annotation) []string {
	seen := make(map[string]bool, len(anns))
	urls := make([]string, 0, len(anns))
	for _, a := range anns {
		if a.URL == "" || seen[a.URL] {
			continue
		}
		seen[a.URL] = true
		urls = append(urls, a.URL)
	}
	return urls
}
