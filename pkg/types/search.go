// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the account-intel pipeline:
// search evidence, the intelligence report schema, and per-stage configuration.
package types

// RawSearchHit is a single result returned by a web search provider.
type RawSearchHit struct {
	// Title is the page title as returned by the provider.
	Title string `json:"title" yaml:"title"`

	// URL is the address of the source page.
	URL string `json:"url" yaml:"url"`

	// Content is the provider's snippet or extracted page text.
	Content string `json:"content" yaml:"content"`

	// Score is the provider's own relevance score.
	Score float64 `json:"score" yaml:"score"`
}

// DatePrecision describes how specific an extracted publication date is.
type DatePrecision string

const (
	PrecisionExact   DatePrecision = "exact"
	PrecisionMonth   DatePrecision = "month"
	PrecisionQuarter DatePrecision = "quarter"
	PrecisionYear    DatePrecision = "year"
	PrecisionUnknown DatePrecision = "unknown"
)

// UnknownDomain is the domain recorded when a hit's URL cannot be parsed.
const UnknownDomain = "unknown"

// EnrichedEvidence is a RawSearchHit annotated with its source domain,
// a heuristic credibility score, and an extracted publication date.
type EnrichedEvidence struct {
	RawSearchHit `yaml:",inline"`

	// Domain is the host of URL without a leading "www.", or UnknownDomain.
	Domain string `json:"domain" yaml:"domain"`

	// CredibilityScore is a reputation rating of Domain in [0, 1].
	CredibilityScore float64 `json:"credibility_score" yaml:"credibility_score"`

	// PublicationDate is the date found in the title or content, formatted
	// according to DatePrecision. Empty when DatePrecision is unknown.
	PublicationDate string `json:"publication_date,omitempty" yaml:"publication_date,omitempty"`

	DatePrecision DatePrecision `json:"date_precision" yaml:"date_precision"`
}

// BatchSearchResult is the outcome of one query in a search batch. A batch
// always yields one BatchSearchResult per input query, in input order.
type BatchSearchResult struct {
	Query   string             `json:"query" yaml:"query"`
	Results []EnrichedEvidence `json:"results" yaml:"results"`
	Success bool               `json:"success" yaml:"success"`
	Error   string             `json:"error,omitempty" yaml:"error,omitempty"`
}
