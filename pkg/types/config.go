package types

import "time"

// Depth selects how much effort the synthesis stage spends.
type Depth string

const (
	DepthStandard Depth = "standard"
	DepthDeep     Depth = "deep"
)

// Valid reports whether d is a known depth.
func (d Depth) Valid() bool {
	return d == DepthStandard || d == DepthDeep
}

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout bounds every request issued by the stage.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "account-intel/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`

	// MaxRetries is the number of retries on HTTP 429 (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// SearchConfig holds settings for the web search stage.
type SearchConfig struct {
	HTTPConfig `yaml:",inline"`

	// MaxResults is the per-query result cap (default 5).
	MaxResults int `json:"max_results" yaml:"max_results"`

	// Depth is passed to the provider as its search depth ("basic" or "advanced").
	Depth string `json:"depth" yaml:"depth"`

	// Budget caps the number of search calls per request (default 8).
	Budget int `json:"budget" yaml:"budget"`

	// RatePerSecond paces consecutive queries. Zero disables pacing.
	RatePerSecond float64 `json:"rate_per_second" yaml:"rate_per_second"`
}

// ModelConfig names the models used by each synthesis stage.
type ModelConfig struct {
	// Provider selects the generative API: "openai" or "anthropic".
	Provider string `json:"provider" yaml:"provider"`

	// Search is the search-capable model used for evidence gathering.
	Search string `json:"search" yaml:"search"`

	// Standard is the synthesis model for DepthStandard.
	Standard string `json:"standard" yaml:"standard"`

	// Deep is the reasoning synthesis model for DepthDeep.
	Deep string `json:"deep" yaml:"deep"`
}

// SynthesisModel returns the synthesis model for depth.
func (m ModelConfig) SynthesisModel(d Depth) string {
	if d == DepthDeep {
		return m.Deep
	}
	return m.Standard
}

// PromptConfig holds optional caller-defined prompt templates. Empty fields
// use the built-in templates.
type PromptConfig struct {
	Search    string `json:"search,omitempty" yaml:"search,omitempty"`
	Synthesis string `json:"synthesis,omitempty" yaml:"synthesis,omitempty"`
}

// SynthesisConfig holds settings for the generative stages.
type SynthesisConfig struct {
	HTTPConfig `yaml:",inline"`

	Models  ModelConfig  `json:"models" yaml:"models"`
	Prompts PromptConfig `json:"prompts" yaml:"prompts"`

	// MaxTokens caps the output of each call (default 4096).
	MaxTokens int `json:"max_tokens" yaml:"max_tokens"`
	// DeepMaxTokens caps deep-tier synthesis calls, whose reasoning tokens
	// count against the limit (default 16384).
	DeepMaxTokens int `json:"deep_max_tokens" yaml:"deep_max_tokens"`
}

// TierPricing holds per-1K token rates for one model tier.
type TierPricing struct {
	InputPer1K  float64 `json:"input_per_1k" yaml:"input_per_1k"`
	OutputPer1K float64 `json:"output_per_1k" yaml:"output_per_1k"`
}

// PricingConfig holds the rates used for cost estimation.
type PricingConfig struct {
	Standard      TierPricing `json:"standard" yaml:"standard"`
	Deep          TierPricing `json:"deep" yaml:"deep"`
	SearchPerCall float64     `json:"search_per_call" yaml:"search_per_call"`
}

// HistoryConfig holds settings for the local report history.
type HistoryConfig struct {
	// Path is the SQLite database file.
	Path string `json:"path" yaml:"path"`

	// MaxResults is the default row limit for list and search (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// PipelineConfig groups all stage configurations for the pipeline.
type PipelineConfig struct {
	Search    SearchConfig    `json:"search" yaml:"search"`
	Synthesis SynthesisConfig `json:"synthesis" yaml:"synthesis"`
	Pricing   PricingConfig   `json:"pricing" yaml:"pricing"`
	History   HistoryConfig   `json:"history" yaml:"history"`
}
