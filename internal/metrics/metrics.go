// Package metrics exposes Prometheus collectors for the research pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Search call outcomes.
const (
	SearchSuccess        = "success"
	SearchFailure        = "failure"
	SearchBudgetExceeded = "budget_exceeded"
	SearchCancelled      = "cancelled"
)

var (
	// Search metrics
	SearchQueries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "account_intel_search_queries_total",
			Help: "Search queries by provider and outcome",
		},
		[]string{"provider", "outcome"},
	)

	SearchHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "account_intel_search_hits_total",
			Help: "Enriched search hits returned by provider",
		},
		[]string{"provider"},
	)

	// Stage metrics
	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "account_intel_stage_duration_seconds",
			Help:    "Pipeline stage duration in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"stage"},
	)

	StageFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "account_intel_stage_failures_total",
			Help: "Pipeline failures by stage and error kind",
		},
		[]string{"stage", "kind"},
	)

	// Generative usage
	TokensUsed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "account_intel_tokens_total",
			Help: "Tokens consumed by generative calls",
		},
		[]string{"model", "direction"},
	)

	// Report metrics
	ReportsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "account_intel_reports_total",
			Help: "Research requests by depth and final status",
		},
		[]string{"depth", "status"},
	)

	ReportCostUSD = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "account_intel_report_cost_usd",
			Help:    "Estimated cost in USD per report",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
	)
)
