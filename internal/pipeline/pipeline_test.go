// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/pdiddy/account-intel/internal/cost"
	"github.com/pdiddy/account-intel/internal/search"
	"github.com/pdiddy/account-intel/internal/secrets"
	"github.com/pdiddy/account-intel/internal/synthesis"
	"github.com/pdiddy/account-intel/pkg/types"
)

// --- fakes ---

type fakeSearch struct {
	mu    sync.Mutex
	fail  map[int]error
	calls int
}

func (f *fakeSearch) Name() string { return "fake-search" }

func (f *fakeSearch) Search(ctx context.Context, query string, _ search.Options) ([]types.RawSearchHit, error) {
	f.mu.Lock()
	f.calls++
	n := f.calls
	f.mu.Unlock()
	if err, ok := f.fail[n]; ok {
		return nil, err
	}
	return []types.RawSearchHit{{
		Title:   fmt.Sprintf("Result %d", n),
		URL:     fmt.Sprintf("https://www.reuters.com/acme-%d", n),
		Content: fmt.Sprintf("CONTENT-OF-QUERY-%d", n),
		Score:   0.5,
	}}, nil
}

type fakeGen struct {
	mu          sync.Mutex
	research    synthesis.Response
	synthesis   synthesis.Response
	researchErr error
	synthErr    error
	requests    []synthesis.Request
}

func (f *fakeGen) Name() string { return "fake-gen" }

func (f *fakeGen) Complete(_ context.Context, r synthesis.Request) (synthesis.Response, error) {
	f.mu.Lock()
	f.requests = append(f.requests, r)
	f.mu.Unlock()
	if r.WebSearch {
		return f.research, f.researchErr
	}
	return f.synthesis, f.synthErr
}

func (f *fakeGen) synthesisPrompt(t *testing.T) string {
	t.Helper()
	for _, r := range f.requests {
		if !r.WebSearch {
			return r.Messages[0].Content
		}
	}
	t.Fatal("no synthesis request recorded")
	return ""
}

const synthJSON = `{
	"company_profile": {"confirmed_name": "Acme Corporation", "ownership_type": "Private",
		"citations": ["https://www.reuters.com/acme-1", "https://acme.com/about", "https://acme.com/about/"]},
	"hypothesis": {"primary_hypothesis": "Price governance", "confidence": "medium"},
	"metadata": {"searches_performed": 99, "estimated_cost": 42}
}`

func newTestPipeline(t *testing.T, s search.Provider, g *fakeGen) *Pipeline {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Synthesis.Models = types.ModelConfig{Search: "search-model", Standard: "light-model", Deep: "reasoning-model"}
	cfg.Pricing = types.PricingConfig{
		Standard:      types.TierPricing{InputPer1K: 0.01, OutputPer1K: 0.03},
		Deep:          types.TierPricing{InputPer1K: 0.1, OutputPer1K: 0.3},
		SearchPerCall: 0.005,
	}

	p := New(cfg, zaptest.NewLogger(t))
	p.SearchProvider = func(secrets.Credentials, types.SearchConfig) (search.Provider, error) {
		if s == nil {
			return nil, nil
		}
		return s, nil
	}
	p.GenerativeProvider = func(secrets.Credentials, types.SynthesisConfig) (synthesis.Provider, error) {
		return g, nil
	}
	return p
}

func defaultGen() *fakeGen {
	return &fakeGen{
		research: synthesis.Response{
			Content:     "RESEARCH-NOTES about Acme",
			Usage:       types.TokenUsage{InputTokens: 3000, OutputTokens: 1000},
			Annotations: []synthesis.Annotation{{URL: "https://acme.com/about"}, {URL: "https://www.sec.gov/acme"}},
		},
		synthesis: synthesis.Response{
			Content: "```json\n" + synthJSON + "\n```",
			Usage:   types.TokenUsage{InputTokens: 2000, OutputTokens: 1000},
		},
	}
}

var acmeReq = Request{EntityName: "Acme", EntitySite: "acme.com", EntityCategory: "Chemicals", Depth: types.DepthStandard}

// --- scenarios ---

func TestRunOneQueryFails(t *testing.T) {
	s := &fakeSearch{fail: map[int]error{3: errors.New("tavily returned HTTP 500")}}
	g := defaultGen()
	p := newTestPipeline(t, s, g)

	out, err := p.Execute(context.Background(), acmeReq, nil)
	require.NoError(t, err)

	require.Len(t, out.Batch, 8)
	assert.False(t, out.Batch[2].Success)
	prompt := g.synthesisPrompt(t)
	assert.NotContains(t, prompt, "CONTENT-OF-QUERY-3")
	assert.Contains(t, prompt, "CONTENT-OF-QUERY-1")
	assert.Contains(t, prompt, "CONTENT-OF-QUERY-8")
	assert.Contains(t, prompt, "RESEARCH-NOTES about Acme")

	md := out.Report.Metadata
	assert.Equal(t, 8, md.SearchesPerformed)
	assert.False(t, md.SearchesEstimated)
	assert.Equal(t, 8, s.calls)
}

func TestRunFillsMetadata(t *testing.T) {
	g := defaultGen()
	p := newTestPipeline(t, &fakeSearch{}, g)
	ticks := []time.Time{time.Unix(1000, 0), time.Unix(1000, 0).Add(1500 * time.Millisecond)}
	p.now = func() time.Time {
		now := ticks[0]
		if len(ticks) > 1 {
			ticks = ticks[1:]
		}
		return now
	}

	report, err := p.Run(context.Background(), acmeReq, nil)
	require.NoError(t, err)

	md := report.Metadata
	assert.NotEmpty(t, md.RequestID)
	assert.Equal(t, 8, md.SearchesPerformed)
	assert.Equal(t, types.ModelsUsed{Search: "search-model", Synthesis: "light-model"}, md.ModelsUsed)
	assert.Equal(t, types.TokenUsage{InputTokens: 5000, OutputTokens: 2000}, md.Usage)
	assert.Equal(t, int64(1500), md.ExecutionTimeMS)
	// sec.gov and acme.com/about from research, reuters from the profile.
	assert.Equal(t, 3, md.SourcesCited)
	assert.InDelta(t, 5*0.01+2*0.03+8*0.005, md.EstimatedCost, 1e-9)

	assert.Equal(t, "Acme Corporation", report.CompanyProfile.ConfirmedName)
	assert.Len(t, report.RecentSignals, 0)
	assert.NotNil(t, report.RecentSignals)
}

func TestRunDeepUsesReasoningTier(t *testing.T) {
	g := defaultGen()
	p := newTestPipeline(t, &fakeSearch{}, g)

	req := acmeReq
	req.Depth = types.DepthDeep
	report, err := p.Run(context.Background(), req, nil)
	require.NoError(t, err)
	assert.Equal(t, "reasoning-model", report.Metadata.ModelsUsed.Synthesis)
	assert.InDelta(t, 5*0.1+2*0.3+8*0.005, report.Metadata.EstimatedCost, 1e-9)
}

func TestRunWithoutSearchProviderEstimatesSearches(t *testing.T) {
	g := defaultGen()
	p := newTestPipeline(t, nil, g)
	p.EstimateSearches = func(citations int) int { return citations * 10 }

	out, err := p.Execute(context.Background(), acmeReq, nil)
	require.NoError(t, err)
	assert.Empty(t, out.Batch)
	md := out.Report.Metadata
	assert.True(t, md.SearchesEstimated)
	assert.Equal(t, 30, md.SearchesPerformed)
	assert.Contains(t, g.synthesisPrompt(t), "(no search evidence available)")
}

func TestRunDefaultEstimator(t *testing.T) {
	g := defaultGen()
	g.research.Annotations = nil
	g.synthesis.Content = `{}`
	p := newTestPipeline(t, nil, g)

	report, err := p.Run(context.Background(), acmeReq, nil)
	require.NoError(t, err)
	assert.Equal(t, cost.DefaultSearchCount, report.Metadata.SearchesPerformed)
	assert.Equal(t, 0, report.Metadata.SourcesCited)
}

func TestRunUsesCustomQueries(t *testing.T) {
	s := &fakeSearch{}
	p := newTestPipeline(t, s, defaultGen())

	req := acmeReq
	req.Queries = []string{"acme pricing", "acme rfp"}
	out, err := p.Execute(context.Background(), req, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"acme pricing", "acme rfp"}, out.Queries)
	assert.Len(t, out.Batch, 2)
	assert.Equal(t, 2, out.Report.Metadata.SearchesPerformed)
}

func TestRunProgressLabels(t *testing.T) {
	p := newTestPipeline(t, &fakeSearch{}, defaultGen())
	var labels []string
	_, err := p.Run(context.Background(), acmeReq, func(s string) { labels = append(labels, s) })
	require.NoError(t, err)

	assert.Equal(t, "Searching the web…", labels[0])
	assert.Contains(t, labels, "Searching the web (1/8)…")
	assert.Contains(t, labels, "Searching the web (8/8)…")
	n := len(labels)
	assert.Equal(t, []string{"Gathering evidence…", "Synthesizing report…", "Done"}, labels[n-3:])
}

// --- errors ---

func TestRunMissingNameIsConfigurationError(t *testing.T) {
	g := defaultGen()
	p := newTestPipeline(t, &fakeSearch{}, g)

	_, err := p.Run(context.Background(), Request{EntityName: "  "}, nil)
	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Empty(t, g.requests)
}

func TestRunInvalidDepth(t *testing.T) {
	p := newTestPipeline(t, &fakeSearch{}, defaultGen())
	req := acmeReq
	req.Depth = "extreme"
	_, err := p.Run(context.Background(), req, nil)
	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
}

func TestRunMissingCredentialsBeforeAnyCall(t *testing.T) {
	s := &fakeSearch{}
	p := New(DefaultConfig(), zaptest.NewLogger(t))
	p.SearchProvider = func(secrets.Credentials, types.SearchConfig) (search.Provider, error) { return s, nil }

	_, err := p.Run(context.Background(), acmeReq, nil)
	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	var missing *secrets.MissingError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{secrets.KeyOpenAI}, missing.Keys)
	assert.Equal(t, 0, s.calls)
}

func TestRunUnrenderablePromptBeforeAnyCall(t *testing.T) {
	s := &fakeSearch{}
	g := defaultGen()
	p := newTestPipeline(t, s, g)
	p.Config.Synthesis.Prompts = types.PromptConfig{Synthesis: "{{.NoSuchField}}"}

	_, err := p.Execute(context.Background(), acmeReq, nil)
	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, 0, s.calls)
	assert.Empty(t, g.requests)
}

func TestRunResearchFailureIsStageFailure(t *testing.T) {
	g := defaultGen()
	g.researchErr = errors.New("OpenAI API returned HTTP 503")
	p := newTestPipeline(t, &fakeSearch{}, g)

	_, err := p.Run(context.Background(), acmeReq, nil)
	var sf *StageFailure
	require.ErrorAs(t, err, &sf)
	assert.Equal(t, types.StageEvidence, sf.Stage)
}

func TestRunUnparseableSynthesisIsParseFailure(t *testing.T) {
	g := defaultGen()
	g.synthesis.Content = "I'm sorry, I can't produce that."
	p := newTestPipeline(t, &fakeSearch{}, g)

	var labels []string
	report, err := p.Run(context.Background(), acmeReq, func(s string) { labels = append(labels, s) })
	assert.Nil(t, report)
	var pf *ParseFailure
	require.ErrorAs(t, err, &pf)
	var sf *StageFailure
	assert.False(t, errors.As(err, &sf))
	assert.Equal(t, "Failed", labels[len(labels)-1])
	assert.Equal(t, kindParse, errorKind(err))
}

func TestRunSynthesisTransportFailure(t *testing.T) {
	g := defaultGen()
	g.synthErr = errors.New("connection reset")
	p := newTestPipeline(t, &fakeSearch{}, g)

	_, err := p.Run(context.Background(), acmeReq, nil)
	var sf *StageFailure
	require.ErrorAs(t, err, &sf)
	assert.Equal(t, types.StageSynthesis, sf.Stage)
}

func TestRunCancelledDuringSearch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	g := defaultGen()
	p := newTestPipeline(t, &fakeSearch{}, g)
	var seen int
	_, err := p.Run(ctx, acmeReq, func(label string) {
		if strings.HasPrefix(label, "Searching the web (") {
			seen++
			if seen == 3 {
				cancel()
			}
		}
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, kindCancelled, errorKind(err))
	assert.Empty(t, g.requests, "no generative call after cancellation")
}

func TestConcurrentRunsAreIndependent(t *testing.T) {
	p := newTestPipeline(t, nil, defaultGen())
	p.SearchProvider = func(secrets.Credentials, types.SearchConfig) (search.Provider, error) {
		return &fakeSearch{}, nil
	}

	var wg sync.WaitGroup
	ids := make([]string, 4)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			report, err := p.Run(context.Background(), acmeReq, nil)
			if assert.NoError(t, err) {
				ids[i] = report.Metadata.RequestID
				assert.Equal(t, 8, report.Metadata.SearchesPerformed)
			}
		}(i)
	}
	wg.Wait()

	seen := map[string]bool{}
	for _, id := range ids {
		assert.False(t, seen[id], "duplicate request id %s", id)
		seen[id] = true
	}
}

func TestGenerativeFromCredentials(t *testing.T) {
	cfg := DefaultConfig().Synthesis
	_, err := GenerativeFromCredentials(secrets.Credentials{}, cfg)
	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)

	p, err := GenerativeFromCredentials(secrets.Credentials{secrets.KeyOpenAI: "sk"}, cfg)
	require.NoError(t, err)
	assert.Equal(t, synthesis.ProviderOpenAI, p.Name())

	cfg.Models.Provider = synthesis.ProviderAnthropic
	_, err = GenerativeFromCredentials(secrets.Credentials{secrets.KeyOpenAI: "sk"}, cfg)
	require.ErrorAs(t, err, &cfgErr)

	p, err = GenerativeFromCredentials(secrets.Credentials{secrets.KeyAnthropic: "sk-ant"}, cfg)
	require.NoError(t, err)
	assert.Equal(t, synthesis.ProviderAnthropic, p.Name())
}

func TestTavilyFromCredentials(t *testing.T) {
	p, err := TavilyFromCredentials(secrets.Credentials{}, types.SearchConfig{})
	require.NoError(t, err)
	assert.Nil(t, p)

	p, err = TavilyFromCredentials(secrets.Credentials{secrets.KeyTavily: "tvly"}, types.SearchConfig{})
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "tavily", p.Name())
}

func TestErrorKind(t *testing.T) {
	assert.Equal(t, kindConfiguration, errorKind(&ConfigurationError{Msg: "x"}))
	assert.Equal(t, kindStage, errorKind(&StageFailure{Stage: "synthesis", Err: errors.New("x")}))
	assert.Equal(t, kindParse, errorKind(fmt.Errorf("wrapped: %w", &ParseFailure{Err: errors.New("x")})))
	assert.Equal(t, kindCancelled, errorKind(&StageFailure{Stage: "evidence", Err: context.DeadlineExceeded}))
	assert.Equal(t, kindOther, errorKind(errors.New("x")))
}
