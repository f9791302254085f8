// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"sort"
	"strings"
)

// DefaultCredibility is the score for a domain no rule recognizes.
const DefaultCredibility = 0.4

// credibilityTable maps curated source domains to reputation scores.
var credibilityTable = map[string]float64{
	"sec.gov":             1.0,
	"bloomberg.com":       0.95,
	"reuters.com":         0.95,
	"wsj.com":             0.95,
	"ft.com":              0.95,
	"apnews.com":          0.9,
	"nytimes.com":         0.9,
	"economist.com":       0.9,
	"barrons.com":         0.9,
	"cnbc.com":            0.85,
	"marketwatch.com":     0.85,
	"fortune.com":         0.85,
	"finance.yahoo.com":   0.8,
	"forbes.com":          0.8,
	"pitchbook.com":       0.8,
	"businesswire.com":    0.8,
	"techcrunch.com":      0.8,
	"prnewswire.com":      0.75,
	"globenewswire.com":   0.75,
	"crunchbase.com":      0.75,
	"dnb.com":             0.75,
	"businessinsider.com": 0.75,
	"linkedin.com":        0.7,
	"seekingalpha.com":    0.7,
	"zoominfo.com":        0.65,
	"macrotrends.net":     0.65,
	"wikipedia.org":       0.6,
	"glassdoor.com":       0.55,
	"indeed.com":          0.55,
	"owler.com":           0.5,
}

// suffixOrder lists table domains longest first so the most specific
// suffix wins; equal lengths fall back to lexical order.
var suffixOrder = func() []string {
	keys := make([]string, 0, len(credibilityTable))
	for k := range credibilityTable {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys
}()

// Credibility rates domain in [0, 1]. Rules apply in order: exact table
// match, subdomain of a table entry, .gov TLD, investor-relations host,
// newsroom host, then DefaultCredibility.
func Credibility(domain string) float64 {
	domain = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(domain)), "www.")
	if score, ok := credibilityTable[domain]; ok {
		return clamp(score)
	}
	for _, known := range suffixOrder {
		if strings.HasSuffix(domain, "."+known) {
			return clamp(credibilityTable[known])
		}
	}
	switch {
	case strings.HasSuffix(domain, ".gov"):
		return 0.9
	case strings.Contains(domain, "investor.") || strings.Contains(domain, "investors."):
		return 0.85
	case strings.Contains(domain, "newsroom.") || strings.Contains(domain, "news."):
		return 0.7
	}
	return DefaultCredibility
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
