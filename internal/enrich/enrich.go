// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package enrich annotates raw search hits with their source domain, a
// heuristic credibility score, and the most precise publication date found
// in the hit's text.
package enrich

import (
	"net/url"
	"strings"
	"time"

	"github.com/pdiddy/account-intel/pkg/types"
)

// Enricher turns RawSearchHits into EnrichedEvidence. The zero value is not
// usable; construct with New or NewWithClock.
type Enricher struct {
	now func() time.Time
}

// New returns an Enricher that bounds bare-year matches relative to the
// current wall clock.
func New() *Enricher {
	return &Enricher{now: time.Now}
}

// NewWithClock returns an Enricher that reads the current time from now.
func NewWithClock(now func() time.Time) *Enricher {
	return &Enricher{now: now}
}

// Enrich scores and dates a single hit. It never fails: an unparseable URL
// yields types.UnknownDomain and the default credibility.
func (e *Enricher) Enrich(hit types.RawSearchHit) types.EnrichedEvidence {
	domain := ExtractDomain(hit.URL)
	date, precision := e.ExtractDate(hit.Title + " " + hit.Content)
	return types.EnrichedEvidence{
		RawSearchHit:     hit,
		Domain:           domain,
		CredibilityScore: Credibility(domain),
		PublicationDate:  date,
		DatePrecision:    precision,
	}
}

// EnrichAll enriches hits in order.
func (e *Enricher) EnrichAll(hits []types.RawSearchHit) []types.EnrichedEvidence {
	out := make([]types.EnrichedEvidence, 0, len(hits))
	for _, h := range hits {
		out = append(out, e.Enrich(h))
	}
	return out
}

// ExtractDomain returns the lowercased host of rawURL without port or a
// leading "www.". It returns types.UnknownDomain when the URL is malformed
// or has no host.
func ExtractDomain(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return types.UnknownDomain
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return types.UnknownDomain
	}
	host := strings.ToLower(u.Hostname())
	host = strings.TrimSuffix(host, ".")
	if host == "" || !strings.Contains(host, ".") {
		return types.UnknownDomain
	}
	return strings.TrimPrefix(host, "www.")
}
