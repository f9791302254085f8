// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"time"

	"github.com/pdiddy/account-intel/internal/cost"
	"github.com/pdiddy/account-intel/internal/synthesis"
	"github.com/pdiddy/account-intel/pkg/types"
)

// Defaults for the research pipeline.
const (
	DefaultBudget           = 8
	DefaultMaxResults       = 5
	DefaultSearchDepth      = "advanced"
	DefaultSearchTimeout    = 20 * time.Second
	DefaultSynthesisTimeout = 120 * time.Second
	DefaultMaxTokens        = 4096
	DefaultDeepMaxTokens    = 16384
	DefaultHistoryPath      = "account-intel.db"
	DefaultHistoryLimit     = 20
)

// DefaultConfig returns a complete configuration using the built-in defaults.
func DefaultConfig() types.PipelineConfig {
	return types.PipelineConfig{
		Search: types.SearchConfig{
			HTTPConfig: types.HTTPConfig{Timeout: DefaultSearchTimeout},
			MaxResults: DefaultMaxResults,
			Depth:      DefaultSearchDepth,
			Budget:     DefaultBudget,
		},
		Synthesis: types.SynthesisConfig{
			HTTPConfig:    types.HTTPConfig{Timeout: DefaultSynthesisTimeout},
			Models:        synthesis.DefaultModels(synthesis.ProviderOpenAI),
			MaxTokens:     DefaultMaxTokens,
			DeepMaxTokens: DefaultDeepMaxTokens,
		},
		Pricing: cost.DefaultPricing(),
		History: types.HistoryConfig{
			Path:       DefaultHistoryPath,
			MaxResults: DefaultHistoryLimit,
		},
	}
}
