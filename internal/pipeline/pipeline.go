// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs one account research request end to end: a budgeted
// web search batch, the research and synthesis stages, normalization, and
// cost accounting. Each Run is independent; a Pipeline may serve concurrent
// requests.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pdiddy/account-intel/internal/budget"
	"github.com/pdiddy/account-intel/internal/cost"
	"github.com/pdiddy/account-intel/internal/logging"
	"github.com/pdiddy/account-intel/internal/metrics"
	"github.com/pdiddy/account-intel/internal/normalize"
	"github.com/pdiddy/account-intel/internal/search"
	"github.com/pdiddy/account-intel/internal/secrets"
	"github.com/pdiddy/account-intel/internal/synthesis"
	"github.com/pdiddy/account-intel/pkg/types"
)

// State is a step of a running request.
type State string

const (
	StateSearching    State = "searching"
	StateGathering    State = "gathering"
	StateSynthesizing State = "synthesizing"
	StateDone         State = "done"
	StateFailed       State = "failed"
)

// Request is one research request. Credentials are read for this request
// only and never cached.
type Request struct {
	EntityName     string
	EntitySite     string
	EntityCategory string
	Depth          types.Depth
	Credentials    secrets.Credentials

	// Queries replaces the built-in query plan when non-empty.
	Queries []string
}

// Outcome is the full result of a request: the report plus the
// intermediate artifacts a caller may want to keep.
type Outcome struct {
	Report   *types.IntelligenceReport
	Queries  []string
	Batch    []types.BatchSearchResult
	Research *synthesis.ResearchResult
	// Gaps lists report fields the normalizer had to default.
	Gaps []string
}

// SearchProviderFunc builds the web search provider for a request. It
// returns a nil provider when search is not configured, in which case the
// batch is skipped.
type SearchProviderFunc func(creds secrets.Credentials, cfg types.SearchConfig) (search.Provider, error)

// GenerativeProviderFunc builds the generative provider for a request.
type GenerativeProviderFunc func(creds secrets.Credentials, cfg types.SynthesisConfig) (synthesis.Provider, error)

// Pipeline holds the immutable configuration shared by all requests.
type Pipeline struct {
	Config types.PipelineConfig
	Logger *zap.Logger

	SearchProvider     SearchProviderFunc
	GenerativeProvider GenerativeProviderFunc
	// EstimateSearches derives a search count from citations when no batch ran.
	EstimateSearches cost.SearchEstimator

	now func() time.Time
}

// New returns a Pipeline with the default Tavily and OpenAI/Anthropic
// provider factories.
func New(cfg types.PipelineConfig, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		Config:             cfg,
		Logger:             logging.OrNop(logger),
		SearchProvider:     TavilyFromCredentials,
		GenerativeProvider: GenerativeFromCredentials,
		EstimateSearches:   cost.EstimateSearches,
		now:                time.Now,
	}
}

// TavilyFromCredentials returns a Tavily provider when creds hold a Tavily
// key, or nil otherwise.
func TavilyFromCredentials(creds secrets.Credentials, cfg types.SearchConfig) (search.Provider, error) {
	key := creds.Get(secrets.KeyTavily)
	if key == "" {
		return nil, nil
	}
	return search.NewTavilyProvider(key, cfg), nil
}

// GenerativeFromCredentials returns the provider named in cfg.Models.Provider
// using the matching key from creds.
func GenerativeFromCredentials(creds secrets.Credentials, cfg types.SynthesisConfig) (synthesis.Provider, error) {
	name := cfg.Models.Provider
	keyName := secrets.KeyOpenAI
	if name == synthesis.ProviderAnthropic {
		keyName = secrets.KeyAnthropic
	}
	if err := creds.Require(keyName); err != nil {
		return nil, &ConfigurationError{Msg: "generative provider credentials", Err: err}
	}
	p, err := synthesis.NewProvider(name, creds.Get(keyName), cfg)
	if err != nil {
		return nil, &ConfigurationError{Msg: "generative provider", Err: err}
	}
	return p, nil
}

// Run executes req and returns the normalized report with metadata filled.
// progress, if non-nil, receives a human-readable label at each step.
func (p *Pipeline) Run(ctx context.Context, req Request, progress func(string)) (*types.IntelligenceReport, error) {
	out, err := p.Execute(ctx, req, progress)
	if err != nil {
		return nil, err
	}
	return out.Report, nil
}

// Execute is Run returning the intermediate artifacts as well.
func (p *Pipeline) Execute(ctx context.Context, req Request, progress func(string)) (*Outcome, error) {
	start := p.clock()()
	req, err := p.validate(req)
	if err != nil {
		p.finish(req.Depth, err)
		return nil, err
	}

	r := &run{
		id:       uuid.NewString(),
		progress: progress,
	}
	r.logger = logging.OrNop(p.Logger).With(
		zap.String("request_id", r.id),
		zap.String("company", req.EntityName),
		zap.String("depth", string(req.Depth)))

	// Every provider is built before the first external call so that a
	// missing credential fails fast.
	searchProvider, engine, err := p.providers(req)
	if err != nil {
		r.fail(err)
		p.finish(req.Depth, err)
		return nil, err
	}

	out, err := p.execute(ctx, r, req, searchProvider, engine, start)
	if err != nil {
		r.fail(err)
		p.finish(req.Depth, err)
		return nil, err
	}
	p.finish(req.Depth, nil)
	metrics.ReportCostUSD.Observe(out.Report.Metadata.EstimatedCost)
	return out, nil
}

func (p *Pipeline) validate(req Request) (Request, error) {
	req.EntityName = strings.TrimSpace(req.EntityName)
	req.EntitySite = strings.TrimSpace(req.EntitySite)
	req.EntityCategory = strings.TrimSpace(req.EntityCategory)
	if req.EntityName == "" {
		return req, &ConfigurationError{Msg: "company name is required"}
	}
	if req.Depth == "" {
		req.Depth = types.DepthStandard
	}
	if !req.Depth.Valid() {
		return req, &ConfigurationError{Msg: fmt.Sprintf("unknown depth %q (want %s or %s)", req.Depth, types.DepthStandard, types.DepthDeep)}
	}
	return req, nil
}

func (p *Pipeline) providers(req Request) (search.Provider, *synthesis.Engine, error) {
	var searchProvider search.Provider
	if p.SearchProvider != nil {
		sp, err := p.SearchProvider(req.Credentials, p.Config.Search)
		if err != nil {
			return nil, nil, err
		}
		searchProvider = sp
	}

	if p.GenerativeProvider == nil {
		return nil, nil, &ConfigurationError{Msg: "no generative provider configured"}
	}
	gen, err := p.GenerativeProvider(req.Credentials, p.Config.Synthesis)
	if err != nil {
		return nil, nil, err
	}

	engine, err := synthesis.NewEngine(gen, gen, p.Config.Synthesis, p.Logger)
	if err != nil {
		return nil, nil, err
	}
	if err := engine.Validate(req.Depth); err != nil {
		return nil, nil, err
	}
	return searchProvider, engine, nil
}

func (p *Pipeline) execute(ctx context.Context, r *run, req Request, sp search.Provider, engine *synthesis.Engine, start time.Time) (*Outcome, error) {
	subject := synthesis.Subject{Name: req.EntityName, Website: req.EntitySite, Industry: req.EntityCategory}
	out := &Outcome{}

	// Searching
	r.enter(StateSearching, "Searching the web…")
	var tracker *budget.Tracker
	if sp != nil {
		out.Queries = req.Queries
		if len(out.Queries) == 0 {
			out.Queries = search.QueryPlan(search.Target{Name: req.EntityName, Website: req.EntitySite, Industry: req.EntityCategory})
		}
		tracker = budget.NewTracker(p.budget())

		orch := search.NewOrchestrator(sp, p.Config.Search, r.logger)
		orch.Progress = func(n, total int) {
			r.report(fmt.Sprintf("Searching the web (%d/%d)…", n, total))
		}

		stageStart := time.Now()
		batch, err := orch.Run(ctx, out.Queries, tracker, search.Options{
			MaxResults: p.Config.Search.MaxResults,
			Depth:      p.Config.Search.Depth,
		})
		observeStage(StateSearching, stageStart)
		if err != nil {
			return nil, fmt.Errorf("search batch: %w", err)
		}
		out.Batch = batch

		s := search.Summarize(batch)
		r.logger.Info("search batch complete",
			zap.Int("succeeded", s.Succeeded),
			zap.Int("failed", s.Failed),
			zap.Int("hits", s.Hits),
			zap.Int("calls", tracker.Consumed()))
	} else {
		r.logger.Info("no search provider configured, skipping search batch")
	}

	// Gathering
	r.enter(StateGathering, "Gathering evidence…")
	stageStart := time.Now()
	research, err := engine.Research(ctx, subject)
	observeStage(StateGathering, stageStart)
	if err != nil {
		return nil, err
	}
	out.Research = research

	// Synthesizing
	r.enter(StateSynthesizing, "Synthesizing report…")
	stageStart = time.Now()
	synth, err := engine.Synthesize(ctx, subject, research, search.Corpus(out.Batch), req.Depth)
	observeStage(StateSynthesizing, stageStart)
	if err != nil {
		return nil, err
	}

	report, gaps := normalize.ReportWithGaps(synth.Raw, req.EntityName)
	if len(gaps) > 0 {
		r.logger.Debug("report fields defaulted", zap.Strings("fields", gaps))
	}
	out.Gaps = gaps

	// Metadata always reflects this run, whatever the model emitted.
	usage := research.Usage.Add(synth.Usage)
	sources := citedSources(research.Citations, report.CompanyProfile.Citations)
	md := types.ReportMetadata{
		RequestID:    r.id,
		SourcesCited: sources,
		ModelsUsed: types.ModelsUsed{
			Search:    research.Model,
			Synthesis: synth.Model,
		},
		Usage: usage,
	}
	if tracker != nil {
		md.SearchesPerformed = tracker.Consumed()
	} else {
		md.SearchesPerformed = p.estimator()(sources)
		md.SearchesEstimated = true
	}
	md.EstimatedCost = cost.Estimate(cost.RatesFor(p.Config.Pricing, req.Depth), usage, md.SearchesPerformed)
	md.ExecutionTimeMS = p.clock()().Sub(start).Milliseconds()
	report.Metadata = md
	out.Report = &report

	r.enter(StateDone, "Done")
	r.logger.Info("report complete",
		zap.Int("searches", md.SearchesPerformed),
		zap.Int("sources", md.SourcesCited),
		zap.Float64("estimated_cost", md.EstimatedCost),
		zap.Int64("execution_time_ms", md.ExecutionTimeMS))
	return out, nil
}

func (p *Pipeline) budget() int {
	if p.Config.Search.Budget > 0 {
		return p.Config.Search.Budget
	}
	return DefaultBudget
}

func (p *Pipeline) estimator() cost.SearchEstimator {
	if p.EstimateSearches != nil {
		return p.EstimateSearches
	}
	return cost.EstimateSearches
}

func (p *Pipeline) clock() func() time.Time {
	if p.now != nil {
		return p.now
	}
	return time.Now
}

func (p *Pipeline) finish(depth types.Depth, err error) {
	status := "success"
	if err != nil {
		status = errorKind(err)
	}
	metrics.ReportsCompleted.WithLabelValues(string(depth), status).Inc()
}

// citedSources counts the distinct URLs across both citation lists.
func citedSources(lists ...[]string) int {
	seen := make(map[string]bool)
	for _, l := range lists {
		for _, u := range l {
			u = strings.TrimSuffix(strings.TrimSpace(u), "/")
			if u != "" {
				seen[u] = true
			}
		}
	}
	return len(seen)
}

func observeStage(s State, start time.Time) {
	metrics.StageDuration.WithLabelValues(string(s)).Observe(time.Since(start).Seconds())
}

// run tracks the state of a single request.
type run struct {
	id       string
	state    State
	progress func(string)
	logger   *zap.Logger
}

func (r *run) enter(s State, label string) {
	r.state = s
	r.logger.Info("state", zap.String("state", string(s)))
	r.report(label)
}

func (r *run) report(label string) {
	if r.progress != nil {
		r.progress(label)
	}
}

func (r *run) fail(err error) {
	stage := r.state
	if stage == "" {
		stage = "setup"
	}
	r.state = StateFailed
	kind := errorKind(err)
	metrics.StageFailures.WithLabelValues(string(stage), kind).Inc()
	r.logger.Error("request failed", zap.String("stage", string(stage)), zap.String("kind", kind), zap.Error(err))
	r.report("Failed")
}
