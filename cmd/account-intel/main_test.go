package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/account-intel/internal/history"
	"github.com/pdiddy/account-intel/internal/pipeline"
	"github.com/pdiddy/account-intel/internal/secrets"
	"github.com/pdiddy/account-intel/pkg/types"
)

func TestPipelineConfigDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	cfg := pipelineConfig(v)

	d := pipeline.DefaultConfig()
	assert.Equal(t, d.Search.Budget, cfg.Search.Budget)
	assert.Equal(t, d.Search.MaxResults, cfg.Search.MaxResults)
	assert.Equal(t, d.Search.Timeout, cfg.Search.Timeout)
	assert.Equal(t, d.Synthesis.Timeout, cfg.Synthesis.Timeout)
	assert.Equal(t, d.Synthesis.DeepMaxTokens, cfg.Synthesis.DeepMaxTokens)
	assert.Equal(t, d.Pricing, cfg.Pricing)
	assert.Equal(t, d.History, cfg.History)
	assert.Equal(t, defaultUserAgent, cfg.Search.UserAgent)
	assert.Equal(t, types.ModelConfig{}, cfg.Synthesis.Models)
}

func TestPipelineConfigOverrides(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("search.budget", 3)
	v.Set("search.timeout", "45s")
	v.Set("models.provider", "anthropic")
	v.Set("models.deep", "custom-deep")
	v.Set("pricing.deep.output_per_1k", 0.5)
	v.Set("prompts.synthesis", "Summarize {{.CompanyName}}")
	v.Set("history.path", "/tmp/h.db")

	cfg := pipelineConfig(v)
	assert.Equal(t, 3, cfg.Search.Budget)
	assert.Equal(t, 45*time.Second, cfg.Search.Timeout)
	assert.Equal(t, "anthropic", cfg.Synthesis.Models.Provider)
	assert.Equal(t, "custom-deep", cfg.Synthesis.Models.Deep)
	assert.Equal(t, 0.5, cfg.Pricing.Deep.OutputPer1K)
	assert.Equal(t, "Summarize {{.CompanyName}}", cfg.Synthesis.Prompts.Synthesis)
	assert.Equal(t, "/tmp/h.db", cfg.History.Path)
}

func sampleReport() *types.IntelligenceReport {
	revenue := "$1.2B"
	return &types.IntelligenceReport{
		CompanyProfile: types.CompanyProfile{
			ConfirmedName: "Acme Corporation",
			OwnershipType: types.OwnershipPEBacked,
			Industry:      "Chemicals",
			Revenue:       &revenue,
		},
		RecentSignals: []types.RecentSignal{
			{Type: types.SignalPricing, Headline: "Acme raises list prices 8%", Date: "2026-02-11", IsIntentSignal: true},
		},
		IntentSignals: []types.IntentSignal{
			{SignalType: types.IntentRFP, Description: "RFP for CPQ software", FitScore: types.FitPerfect},
		},
		Hypothesis: types.Hypothesis{PrimaryHypothesis: "Pricing discipline after acquisition", Confidence: types.LevelHigh},
		OutreachPriority: types.OutreachPriority{
			RecommendedPersonas: []types.PersonaKey{types.PersonaPricingRGM, types.PersonaCFOFinance},
			Urgency:             types.LevelHigh,
		},
		ResearchGaps: []string{"No employee count"},
		Metadata: types.ReportMetadata{
			SearchesPerformed: 5,
			SearchesEstimated: true,
			SourcesCited:      9,
			ExecutionTimeMS:   2500,
			EstimatedCost:     0.0123,
			Usage:             types.TokenUsage{InputTokens: 100, OutputTokens: 50},
		},
	}
}

func TestWriteReportSummary(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeReport(&buf, sampleReport(), formatSummary))
	out := buf.String()

	assert.Contains(t, out, "Acme Corporation (PE-Backed)")
	assert.Contains(t, out, "Revenue:      $1.2B")
	assert.Contains(t, out, "Pricing discipline after acquisition")
	assert.Contains(t, out, "Acme raises list prices 8%")
	assert.Contains(t, out, "[rfp, perfect fit] RFP for CPQ software")
	assert.Contains(t, out, "high urgency, contact pricing_rgm, cfo_finance")
	assert.Contains(t, out, "Research gaps: No employee count")
	assert.Contains(t, out, "~5 searches, 9 sources, 100+50 tokens, $0.0123, 2.5s")
}

func TestWriteReportFormats(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeReport(&buf, sampleReport(), formatJSON))
	var decoded types.IntelligenceReport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "Acme Corporation", decoded.CompanyProfile.ConfirmedName)

	buf.Reset()
	require.NoError(t, writeReport(&buf, sampleReport(), formatYAML))
	decoded = types.IntelligenceReport{}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, types.LevelHigh, decoded.Hypothesis.Confidence)

	assert.Error(t, writeReport(&buf, sampleReport(), "xml"))
}

func TestWriteRecords(t *testing.T) {
	var buf bytes.Buffer
	writeRecords(&buf, nil)
	assert.Equal(t, "No reports found.\n", buf.String())

	buf.Reset()
	writeRecords(&buf, []history.Record{{
		ID:         "3f2a9c10-1111-2222-3333-444455556666",
		Company:    "Acme",
		Depth:      types.DepthDeep,
		Urgency:    types.LevelMedium,
		Hypothesis: "Price governance",
		CreatedAt:  time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		Usage:      history.Usage{EstimatedCost: 0.05},
	}})
	out := buf.String()
	assert.Contains(t, out, "3f2a9c10  ")
	assert.NotContains(t, out, "3f2a9c10-")
	assert.Contains(t, out, "$0.0500")
	assert.Contains(t, out, "1 reports")
}

func TestClip(t *testing.T) {
	assert.Equal(t, "short", clip("short", 10))
	assert.Equal(t, "abcdefg...", clip("abcdefghijklmnop", 10))
	assert.Equal(t, "ab", clip("abcdef", 2))
	assert.Equal(t, "héllo w...", clip("héllo wörld!", 10))
}

func TestLoadCredentialsPerCall(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, secrets.KeyOpenAI), []byte("sk-file\n"), 0o600))

	env := map[string]string{"TAVILY_API_KEY": "tv-env", "OPENAI_API_KEY": "sk-env"}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	first, err := loadCredentials(dir, lookup)
	require.NoError(t, err)
	assert.Equal(t, "sk-file", first.Get(secrets.KeyOpenAI))
	assert.Equal(t, "tv-env", first.Get(secrets.KeyTavily))

	delete(env, "TAVILY_API_KEY")
	second, err := loadCredentials(dir, lookup)
	require.NoError(t, err)
	assert.False(t, second.Has(secrets.KeyTavily))
	assert.True(t, first.Has(secrets.KeyTavily))
}
