// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cost estimates the dollar cost of a research request from token
// usage and search call counts.
package cost

import (
	"github.com/pdiddy/account-intel/pkg/types"
)

// DefaultSearchCount is the searches estimate used when a report cites
// nothing and no real counter exists.
const DefaultSearchCount = 5

// citationsPerSearch is the assumed yield of one search call.
const citationsPerSearch = 3

// Default per-1K token rates in USD. The standard tier is priced as a small
// chat model, the deep tier as a reasoning model.
var (
	DefaultStandard = types.TierPricing{InputPer1K: 0.00015, OutputPer1K: 0.0006}
	DefaultDeep     = types.TierPricing{InputPer1K: 0.0011, OutputPer1K: 0.0044}

	// DefaultSearchPerCall is the flat price of one web search call.
	DefaultSearchPerCall = 0.008
)

// DefaultPricing returns the built-in rate table.
func DefaultPricing() types.PricingConfig {
	return types.PricingConfig{
		Standard:      DefaultStandard,
		Deep:          DefaultDeep,
		SearchPerCall: DefaultSearchPerCall,
	}
}

// TierRates are the rates that apply to one request.
type TierRates struct {
	InputPer1K    float64
	OutputPer1K   float64
	SearchPerCall float64
}

// RatesFor selects the tier for depth from p. Zero-valued entries in p fall
// back to the built-in defaults.
func RatesFor(p types.PricingConfig, depth types.Depth) TierRates {
	tier, fallback := p.Standard, DefaultStandard
	if depth == types.DepthDeep {
		tier, fallback = p.Deep, DefaultDeep
	}
	if tier.InputPer1K == 0 && tier.OutputPer1K == 0 {
		tier = fallback
	}
	search := p.SearchPerCall
	if search == 0 {
		search = DefaultSearchPerCall
	}
	return TierRates{
		InputPer1K:    tier.InputPer1K,
		OutputPer1K:   tier.OutputPer1K,
		SearchPerCall: search,
	}
}

// Estimate returns
//
//	input/1000 × InputPer1K + output/1000 × OutputPer1K + searches × SearchPerCall
//
// Negative counts are treated as zero.
func Estimate(rates TierRates, usage types.TokenUsage, searches int) float64 {
	in := float64(max(usage.InputTokens, 0))
	out := float64(max(usage.OutputTokens, 0))
	s := float64(max(searches, 0))
	return in/1000*rates.InputPer1K + out/1000*rates.OutputPer1K + s*rates.SearchPerCall
}

// SearchEstimator derives a search count from the number of citations in a
// report. It is an approximation used only when the real call counter is
// unavailable.
type SearchEstimator func(citations int) int

// EstimateSearches is the default SearchEstimator: one search per three
// citations, rounded up, or DefaultSearchCount when there are no citations.
func EstimateSearches(citations int) int {
	if citations <= 0 {
		return DefaultSearchCount
	}
	return (citations + citationsPerSearch - 1) / citationsPerSearch
}
