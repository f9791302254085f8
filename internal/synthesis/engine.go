// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package synthesis produces the raw account brief in two sequential
// generative calls. The research stage asks a search-capable model to
// gather sourced facts about the company; the synthesis stage turns those
// notes and the batch search evidence into a JSON object.
package synthesis

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/account-intel/internal/logging"
	"github.com/pdiddy/account-intel/internal/metrics"
	"github.com/pdiddy/account-intel/pkg/types"
)

const (
	defaultMaxTokens     = 4096
	defaultDeepMaxTokens = 16384
)

// Subject identifies the company being researched.
type Subject struct {
	Name     string
	Website  string
	Industry string
}

// ResearchResult is the output of the research stage.
type ResearchResult struct {
	Text      string
	Citations []string
	Usage     types.TokenUsage
	Model     string
}

// SynthesisResult is the output of the synthesis stage.
type SynthesisResult struct {
	Raw   map[string]any
	Usage types.TokenUsage
	Model string
}

// Engine runs the research and synthesis stages. The two stages may use
// different providers.
type Engine struct {
	ResearchProvider  Provider
	SynthesisProvider Provider
	Models            types.ModelConfig
	Prompts           *Prompts
	MaxTokens         int
	DeepMaxTokens     int
	Logger            *zap.Logger
}

// NewEngine builds an Engine from cfg. Empty model names take the provider
// defaults. Custom prompt templates are parsed and trial-rendered here so a
// bad template fails before any call is made.
func NewEngine(research, synthesis Provider, cfg types.SynthesisConfig, logger *zap.Logger) (*Engine, error) {
	prompts, err := NewPrompts(cfg.Prompts)
	if err != nil {
		return nil, &types.ConfigurationError{Msg: "invalid prompt template", Err: err}
	}

	models := cfg.Models
	defaults := DefaultModels(models.Provider)
	if models.Search == "" {
		models.Search = defaults.Search
	}
	if models.Standard == "" {
		models.Standard = defaults.Standard
	}
	if models.Deep == "" {
		models.Deep = defaults.Deep
	}

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	deepMaxTokens := cfg.DeepMaxTokens
	if deepMaxTokens <= 0 {
		deepMaxTokens = defaultDeepMaxTokens
	}

	return &Engine{
		ResearchProvider:  research,
		SynthesisProvider: synthesis,
		Models:            models,
		Prompts:           prompts,
		MaxTokens:         maxTokens,
		DeepMaxTokens:     deepMaxTokens,
		Logger:            logging.OrNop(logger),
	}, nil
}

// Validate reports a *types.ConfigurationError when either stage has no
// provider or model.
func (e *Engine) Validate(depth types.Depth) error {
	switch {
	case e == nil:
		return &types.ConfigurationError{Msg: "no synthesis engine configured"}
	case e.ResearchProvider == nil:
		return &types.ConfigurationError{Msg: "no research provider configured"}
	case e.SynthesisProvider == nil:
		return &types.ConfigurationError{Msg: "no synthesis provider configured"}
	case e.Models.Search == "":
		return &types.ConfigurationError{Msg: "no research model configured"}
	case e.Models.SynthesisModel(depth) == "":
		return &types.ConfigurationError{Msg: fmt.Sprintf("no synthesis model configured for depth %q", depth)}
	}
	return nil
}

// Research runs the web-grounded research stage. Provider errors are
// returned as a *types.StageFailure.
func (e *Engine) Research(ctx context.Context, s Subject) (*ResearchResult, error) {
	if err := e.Validate(types.DepthStandard); err != nil {
		return nil, err
	}

	prompt, err := e.prompts().Research(PromptData{
		CompanyName: s.Name,
		Website:     s.Website,
		Industry:    s.Industry,
	})
	if err != nil {
		return nil, &types.ConfigurationError{Msg: "research prompt", Err: err}
	}

	model := e.Models.Search
	resp, err := e.ResearchProvider.Complete(ctx, Request{
		Model:     model,
		System:    researchSystem,
		Messages:  []Message{{Role: "user", Content: prompt}},
		WebSearch: true,
		MaxTokens: e.MaxTokens,
	})
	if err != nil {
		return nil, &types.StageFailure{Stage: types.StageEvidence, Err: err}
	}
	if strings.TrimSpace(resp.Content) == "" {
		return nil, &types.StageFailure{Stage: types.StageEvidence, Err: fmt.Errorf("%s returned no research text", e.ResearchProvider.Name())}
	}

	recordUsage(model, resp.Usage)
	e.logger().Info("research stage complete",
		zap.String("model", model),
		zap.Int("citations", len(resp.Annotations)),
		zap.Int("input_tokens", resp.Usage.InputTokens),
		zap.Int("output_tokens", resp.Usage.OutputTokens))

	return &ResearchResult{
		Text:      resp.Content,
		Citations: uniqueURLs(resp.Annotations),
		Usage:     resp.Usage,
		Model:     model,
	}, nil
}

// Synthesize runs the synthesis stage over the research notes and the
// evidence corpus. The model tier is chosen by depth. Provider errors are
// returned as a *types.StageFailure and undecodable output as a
// *types.ParseFailure.
func (e *Engine) Synthesize(ctx context.Context, s Subject, research *ResearchResult, corpus string, depth types.Depth) (*SynthesisResult, error) {
	if err := e.Validate(depth); err != nil {
		return nil, err
	}
	if research == nil {
		research = &ResearchResult{}
	}

	prompt, err := e.prompts().Synthesis(PromptData{
		CompanyName: s.Name,
		Website:     s.Website,
		Industry:    s.Industry,
		Research:    research.Text,
		Evidence:    corpus,
	})
	if err != nil {
		return nil, &types.ConfigurationError{Msg: "synthesis prompt", Err: err}
	}

	model := e.Models.SynthesisModel(depth)
	resp, err := e.SynthesisProvider.Complete(ctx, Request{
		Model:     model,
		System:    synthesisSystem,
		Messages:  []Message{{Role: "user", Content: prompt}},
		MaxTokens: e.synthesisMaxTokens(depth),
	})
	if err != nil {
		return nil, &types.StageFailure{Stage: types.StageSynthesis, Err: err}
	}
	recordUsage(model, resp.Usage)

	raw, err := ParseReport(resp.Content)
	if err != nil {
		e.logger().Warn("synthesis output not parseable", zap.String("model", model), zap.Error(err))
		return nil, err
	}

	e.logger().Info("synthesis stage complete",
		zap.String("model", model),
		zap.String("depth", string(depth)),
		zap.Int("input_tokens", resp.Usage.InputTokens),
		zap.Int("output_tokens", resp.Usage.OutputTokens))

	return &SynthesisResult{Raw: raw, Usage: resp.Usage, Model: model}, nil
}

// synthesisMaxTokens returns the output limit for a synthesis call at depth.
func (e *Engine) synthesisMaxTokens(depth types.Depth) int {
	if depth == types.DepthDeep && e.DeepMaxTokens > 0 {
		return e.DeepMaxTokens
	}
	return e.MaxTokens
}

func (e *Engine) prompts() *Prompts {
	if e.Prompts == nil {
		return DefaultPrompts()
	}
	return e.Prompts
}

func (e *Engine) logger() *zap.Logger {
	return logging.OrNop(e.Logger)
}

func recordUsage(model string, u types.TokenUsage) {
	metrics.TokensUsed.WithLabelValues(model, "input").Add(float64(u.InputTokens))
	metrics.TokensUsed.WithLabelValues(model, "output").Add(float64(u.OutputTokens))
}
