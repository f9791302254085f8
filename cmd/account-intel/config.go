package main

import (
	"github.com/spf13/viper"

	"github.com/pdiddy/account-intel/internal/pipeline"
	"github.com/pdiddy/account-intel/pkg/types"
)

const defaultUserAgent = "account-intel/0.1"

// setDefaults registers the built-in value of every config key so that
// environment variables can override keys absent from the config file.
func setDefaults(v *viper.Viper) {
	d := pipeline.DefaultConfig()

	v.SetDefault("search.max_results", d.Search.MaxResults)
	v.SetDefault("search.depth", d.Search.Depth)
	v.SetDefault("search.budget", d.Search.Budget)
	v.SetDefault("search.rate_per_second", d.Search.RatePerSecond)
	v.SetDefault("search.timeout", d.Search.Timeout)
	v.SetDefault("search.max_retries", 0)

	v.SetDefault("models.provider", "")
	v.SetDefault("models.search", "")
	v.SetDefault("models.standard", "")
	v.SetDefault("models.deep", "")

	v.SetDefault("synthesis.timeout", d.Synthesis.Timeout)
	v.SetDefault("synthesis.max_tokens", d.Synthesis.MaxTokens)
	v.SetDefault("synthesis.deep_max_tokens", d.Synthesis.DeepMaxTokens)
	v.SetDefault("synthesis.max_retries", 0)

	v.SetDefault("pricing.standard.input_per_1k", d.Pricing.Standard.InputPer1K)
	v.SetDefault("pricing.standard.output_per_1k", d.Pricing.Standard.OutputPer1K)
	v.SetDefault("pricing.deep.input_per_1k", d.Pricing.Deep.InputPer1K)
	v.SetDefault("pricing.deep.output_per_1k", d.Pricing.Deep.OutputPer1K)
	v.SetDefault("pricing.search_per_call", d.Pricing.SearchPerCall)

	v.SetDefault("prompts.search", "")
	v.SetDefault("prompts.synthesis", "")

	v.SetDefault("history.path", d.History.Path)
	v.SetDefault("history.max_results", d.History.MaxResults)

	v.SetDefault("user_agent", defaultUserAgent)
}

// pipelineConfig reads the effective configuration from v. Model names left
// empty are filled from the selected provider's defaults by the engine.
func pipelineConfig(v *viper.Viper) types.PipelineConfig {
	ua := v.GetString("user_agent")

	return types.PipelineConfig{
		Search: types.SearchConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:    v.GetDuration("search.timeout"),
				UserAgent:  ua,
				MaxRetries: v.GetInt("search.max_retries"),
			},
			MaxResults:    v.GetInt("search.max_results"),
			Depth:         v.GetString("search.depth"),
			Budget:        v.GetInt("search.budget"),
			RatePerSecond: v.GetFloat64("search.rate_per_second"),
		},
		Synthesis: types.SynthesisConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:    v.GetDuration("synthesis.timeout"),
				UserAgent:  ua,
				MaxRetries: v.GetInt("synthesis.max_retries"),
			},
			Models: types.ModelConfig{
				Provider: v.GetString("models.provider"),
				Search:   v.GetString("models.search"),
				Standard: v.GetString("models.standard"),
				Deep:     v.GetString("models.deep"),
			},
			Prompts: types.PromptConfig{
				Search:    v.GetString("prompts.search"),
				Synthesis: v.GetString("prompts.synthesis"),
			},
			MaxTokens:     v.GetInt("synthesis.max_tokens"),
			DeepMaxTokens: v.GetInt("synthesis.deep_max_tokens"),
		},
		Pricing: types.PricingConfig{
			Standard: types.TierPricing{
				InputPer1K:  v.GetFloat64("pricing.standard.input_per_1k"),
				OutputPer1K: v.GetFloat64("pricing.standard.output_per_1k"),
			},
			Deep: types.TierPricing{
				InputPer1K:  v.GetFloat64("pricing.deep.input_per_1k"),
				OutputPer1K: v.GetFloat64("pricing.deep.output_per_1k"),
			},
			SearchPerCall: v.GetFloat64("pricing.search_per_call"),
		},
		History: types.HistoryConfig{
			Path:       v.GetString("history.path"),
			MaxResults: v.GetInt("history.max_results"),
		},
	}
}
