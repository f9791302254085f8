// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search runs a budgeted, ordered batch of web search queries and
// turns the hits into an enriched evidence corpus. One failed query never
// aborts the batch.
package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/pdiddy/account-intel/internal/budget"
	"github.com/pdiddy/account-intel/internal/enrich"
	"github.com/pdiddy/account-intel/internal/logging"
	"github.com/pdiddy/account-intel/internal/metrics"
	"github.com/pdiddy/account-intel/pkg/types"
)

// Provider searches the web for a single query. Each implementation
// (Tavily, test fakes) wraps one search API.
type Provider interface {
	Name() string
	Search(ctx context.Context, query string, opts Options) ([]types.RawSearchHit, error)
}

// Options controls a single provider call.
type Options struct {
	// MaxResults caps the hits returned per query.
	MaxResults int

	// Depth is the provider's search depth ("basic" or "advanced").
	Depth string
}

// ErrBudgetExceeded marks queries skipped because the call budget ran out.
var ErrBudgetExceeded = errors.New("budget exceeded")

// Orchestrator issues queries one at a time against a Provider. A nil
// Limiter disables pacing. Progress, when set, is called before each query
// with its 1-based position and the batch size.
type Orchestrator struct {
	Provider Provider
	Enricher *enrich.Enricher
	Limiter  *rate.Limiter
	Logger   *zap.Logger
	Progress func(n, total int)
}

// NewOrchestrator builds an Orchestrator for p using cfg's pacing setting.
func NewOrchestrator(p Provider, cfg types.SearchConfig, logger *zap.Logger) *Orchestrator {
	o := &Orchestrator{
		Provider: p,
		Enricher: enrich.New(),
		Logger:   logging.OrNop(logger),
	}
	if cfg.RatePerSecond > 0 {
		o.Limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), 1)
	}
	return o
}

// Run executes queries in order and returns exactly one BatchSearchResult
// per query, in input order. Provider errors and an exhausted budget are
// recorded as failed results and the batch continues.
//
// The only errors returned are a *types.ConfigurationError, raised before
// any call when the orchestrator has no provider or no tracker, and the
// context error when ctx is cancelled. On cancellation the returned slice is
// still complete: the in-flight and remaining queries are marked failed.
// Budget consumed before cancellation is not refunded.
func (o *Orchestrator) Run(ctx context.Context, queries []string, tracker *budget.Tracker, opts Options) ([]types.BatchSearchResult, error) {
	if o == nil || o.Provider == nil {
		return nil, &types.ConfigurationError{Msg: "no search provider configured"}
	}
	if tracker == nil {
		return nil, &types.ConfigurationError{Msg: "no call budget supplied"}
	}

	logger := logging.OrNop(o.Logger)
	enricher := o.Enricher
	if enricher == nil {
		enricher = enrich.New()
	}
	provider := o.Provider.Name()

	results := make([]types.BatchSearchResult, 0, len(queries))
	for i, q := range queries {
		if err := ctx.Err(); err != nil {
			return cancelRemaining(results, queries[i:], err, provider), err
		}
		if o.Progress != nil {
			o.Progress(i+1, len(queries))
		}

		if !tracker.CanMakeCall() {
			msg := fmt.Sprintf("%v: %d of %d search calls used", ErrBudgetExceeded, tracker.Consumed(), tracker.Cap())
			results = append(results, types.BatchSearchResult{Query: q, Results: []types.EnrichedEvidence{}, Error: msg})
			metrics.SearchQueries.WithLabelValues(provider, metrics.SearchBudgetExceeded).Inc()
			logger.Warn("search query skipped", zap.Int("index", i), zap.String("query", q), zap.String("reason", msg))
			continue
		}

		if o.Limiter != nil {
			if err := o.Limiter.Wait(ctx); err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return cancelRemaining(results, queries[i:], ctxErr, provider), ctxErr
				}
				// Wait also fails when the deadline is closer than the next
				// token; treat that like a cancellation of this batch.
				return cancelRemaining(results, queries[i:], err, provider), err
			}
		}

		tracker.RecordCall()
		hits, err := o.Provider.Search(ctx, q, opts)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return cancelRemaining(results, queries[i:], ctxErr, provider), ctxErr
			}
			results = append(results, types.BatchSearchResult{Query: q, Results: []types.EnrichedEvidence{}, Error: err.Error()})
			metrics.SearchQueries.WithLabelValues(provider, metrics.SearchFailure).Inc()
			logger.Warn("search query failed", zap.Int("index", i), zap.String("query", q), zap.Error(err))
			continue
		}

		evidence := enricher.EnrichAll(hits)
		results = append(results, types.BatchSearchResult{Query: q, Results: evidence, Success: true})
		metrics.SearchQueries.WithLabelValues(provider, metrics.SearchSuccess).Inc()
		metrics.SearchHits.WithLabelValues(provider).Add(float64(len(evidence)))
		logger.Debug("search query succeeded", zap.Int("index", i), zap.String("query", q), zap.Int("hits", len(evidence)))
	}
	return results, nil
}

// cancelRemaining appends a failed result for every query in rest.
func cancelRemaining(results []types.BatchSearchResult, rest []string, cause error, provider string) []types.BatchSearchResult {
	for _, q := range rest {
		results = append(results, types.BatchSearchResult{
			Query:   q,
			Results: []types.EnrichedEvidence{},
			Error:   fmt.Sprintf("cancelled: %v", cause),
		})
		metrics.SearchQueries.WithLabelValues(provider, metrics.SearchCancelled).Inc()
	}
	return results
}

// Summary counts the outcome of a batch. Sources is the number of distinct
// evidence URLs across successful queries.
type Summary struct {
	Succeeded int
	Failed    int
	Hits      int
	Sources   int
}

// Total returns the number of queries in the batch.
func (s Summary) Total() int {
	return s.Succeeded + s.Failed
}

// HasFailures reports whether any query failed.
func (s Summary) HasFailures() bool {
	return s.Failed > 0
}

// Summarize counts successes, failures, hits, and distinct sources.
func Summarize(results []types.BatchSearchResult) Summary {
	var s Summary
	seen := make(map[string]bool)
	for _, r := range results {
		if !r.Success {
			s.Failed++
			continue
		}
		s.Succeeded++
		s.Hits += len(r.Results)
		for _, ev := range r.Results {
			key := dedupKey(ev)
			if key != "" && !seen[key] {
				seen[key] = true
				s.Sources++
			}
		}
	}
	return s
}

// maxSnippet bounds how much of each hit's content enters the corpus.
const maxSnippet = 800

// Corpus renders the successful results as the evidence text handed to the
// synthesis stage. Failed queries contribute nothing. Within a query, hits
// are ranked by credibility, then provider score, then URL; a URL already
// rendered under an earlier query is skipped.
func Corpus(results []types.BatchSearchResult) string {
	var b strings.Builder
	seen := make(map[string]bool)
	for _, r := range results {
		if !r.Success || len(r.Results) == 0 {
			continue
		}
		ranked := rank(r.Results)

		var section strings.Builder
		for _, ev := range ranked {
			key := dedupKey(ev)
			if key != "" {
				if seen[key] {
					continue
				}
				seen[key] = true
			}
			writeEvidence(&section, ev)
		}
		if section.Len() == 0 {
			continue
		}
		fmt.Fprintf(&b, "### Query: %s\n", r.Query)
		b.WriteString(section.String())
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String())
}

// rank returns a copy of evidence sorted by credibility, score, then URL.
func rank(evidence []types.EnrichedEvidence) []types.EnrichedEvidence {
	ranked := make([]types.EnrichedEvidence, len(evidence))
	copy(ranked, evidence)
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.CredibilityScore != b.CredibilityScore {
			return a.CredibilityScore > b.CredibilityScore
		}
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		return a.URL < b.URL
	})
	return ranked
}

func writeEvidence(w io.Writer, ev types.EnrichedEvidence) {
	date := "undated"
	if ev.DatePrecision != types.PrecisionUnknown && ev.PublicationDate != "" {
		date = fmt.Sprintf("%s (%s)", ev.PublicationDate, ev.DatePrecision)
	}
	fmt.Fprintf(w, "- %s\n  url: %s\n  source: %s | credibility %.2f | %s\n",
		oneLine(ev.Title), ev.URL, ev.Domain, ev.CredibilityScore, date)
	if content := oneLine(ev.Content); content != "" {
		fmt.Fprintf(w, "  %s\n", truncate(content, maxSnippet))
	}
}

// dedupKey identifies evidence by URL, ignoring scheme, "www." and a trailing slash.
func dedupKey(ev types.EnrichedEvidence) string {
	u := strings.ToLower(strings.TrimSpace(ev.URL))
	u = strings.TrimPrefix(u, "https://")
	u = strings.TrimPrefix(u, "http://")
	u = strings.TrimPrefix(u, "www.")
	return strings.TrimSuffix(u, "/")
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncate shortens s to at most max runes, marking the cut with "...".
func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	rs := []rune(s)
	return string(rs[:max-3]) + "..."
}

// FormatTable writes a per-query outcome table to w.
func FormatTable(results []types.BatchSearchResult, w io.Writer) {
	if len(results) == 0 {
		fmt.Fprintln(w, "No queries run.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-60s  %-7s  %-4s  %s\n", "#", "Query", "Status", "Hits", "Error")
	fmt.Fprintln(w, strings.Repeat("-", 100))
	for i, r := range results {
		status := "ok"
		if !r.Success {
			status = "failed"
		}
		fmt.Fprintf(w, "%-4d  %-60s  %-7s  %-4d  %s\n",
			i+1, truncate(r.Query, 60), status, len(r.Results), r.Error)
	}

	s := Summarize(results)
	fmt.Fprintf(w, "\n%d queries, %d failed, %d hits from %d sources\n", s.Total(), s.Failed, s.Hits, s.Sources)
}
