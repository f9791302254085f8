// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cost

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/account-intel/pkg/types"
)

func TestEstimateStandardScenario(t *testing.T) {
	rates := TierRates{InputPer1K: 0.0025, OutputPer1K: 0.01, SearchPerCall: 0.008}
	got := Estimate(rates, types.TokenUsage{InputTokens: 5000, OutputTokens: 2000}, 8)
	want := 5*rates.InputPer1K + 2*rates.OutputPer1K + 8*rates.SearchPerCall
	assert.InDelta(t, want, got, 1e-12)
}

func TestEstimate(t *testing.T) {
	rates := TierRates{InputPer1K: 1, OutputPer1K: 2, SearchPerCall: 0.5}
	tests := []struct {
		name     string
		usage    types.TokenUsage
		searches int
		want     float64
	}{
		{"zero", types.TokenUsage{}, 0, 0},
		{"tokens only", types.TokenUsage{InputTokens: 1000, OutputTokens: 500}, 0, 2},
		{"searches only", types.TokenUsage{}, 4, 2},
		{"fractional thousands", types.TokenUsage{InputTokens: 1500}, 0, 1.5},
		{"negative clamped", types.TokenUsage{InputTokens: -100, OutputTokens: -1}, -3, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Estimate(rates, tt.usage, tt.searches), 1e-12)
		})
	}
}

func TestEstimateSearches(t *testing.T) {
	tests := []struct {
		citations int
		want      int
	}{
		{0, DefaultSearchCount},
		{-2, DefaultSearchCount},
		{1, 1},
		{3, 1},
		{4, 2},
		{9, 3},
		{10, 4},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, EstimateSearches(tt.citations), "citations=%d", tt.citations)
	}

	var est SearchEstimator = EstimateSearches
	assert.Equal(t, 2, est(6))
}

func TestRatesFor(t *testing.T) {
	p := types.PricingConfig{
		Standard:      types.TierPricing{InputPer1K: 0.1, OutputPer1K: 0.2},
		Deep:          types.TierPricing{InputPer1K: 1, OutputPer1K: 2},
		SearchPerCall: 0.05,
	}
	assert.Equal(t, TierRates{InputPer1K: 0.1, OutputPer1K: 0.2, SearchPerCall: 0.05}, RatesFor(p, types.DepthStandard))
	assert.Equal(t, TierRates{InputPer1K: 1, OutputPer1K: 2, SearchPerCall: 0.05}, RatesFor(p, types.DepthDeep))
}

func TestRatesForFallsBackToDefaults(t *testing.T) {
	got := RatesFor(types.PricingConfig{}, types.DepthDeep)
	assert.Equal(t, DefaultDeep.InputPer1K, got.InputPer1K)
	assert.Equal(t, DefaultDeep.OutputPer1K, got.OutputPer1K)
	assert.Equal(t, DefaultSearchPerCall, got.SearchPerCall)

	assert.Equal(t, DefaultPricing().Standard, types.TierPricing{
		InputPer1K:  RatesFor(types.PricingConfig{}, types.DepthStandard).InputPer1K,
		OutputPer1K: RatesFor(types.PricingConfig{}, types.DepthStandard).OutputPer1K,
	})
}
