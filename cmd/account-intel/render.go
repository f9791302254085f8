package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/account-intel/internal/history"
	"github.com/pdiddy/account-intel/pkg/types"
)

// Report output formats.
const (
	formatJSON    = "json"
	formatYAML    = "yaml"
	formatSummary = "summary"
)

// writeReport renders report to w in the named format.
func writeReport(w io.Writer, report *types.IntelligenceReport, format string) error {
	switch format {
	case formatJSON, "":
		return writeJSON(w, report)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("marshaling YAML: %w", err)
		}
		return enc.Close()
	case formatSummary:
		writeSummary(w, report)
		return nil
	}
	return fmt.Errorf("unsupported format %q: use json, yaml, or summary", format)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeSummary prints a human-readable digest of report.
func writeSummary(w io.Writer, r *types.IntelligenceReport) {
	p := r.CompanyProfile
	fmt.Fprintf(w, "%s (%s)\n", p.ConfirmedName, p.OwnershipType)
	if p.Industry != "" {
		fmt.Fprintf(w, "Industry:     %s\n", p.Industry)
	}
	if p.Revenue != nil {
		fmt.Fprintf(w, "Revenue:      %s\n", *p.Revenue)
	}
	if p.EmployeeCount != nil {
		fmt.Fprintf(w, "Employees:    %s\n", *p.EmployeeCount)
	}
	if p.Headquarters != nil {
		fmt.Fprintf(w, "Headquarters: %s\n", *p.Headquarters)
	}

	fmt.Fprintf(w, "\nHypothesis (%s confidence)\n  %s\n", r.Hypothesis.Confidence, r.Hypothesis.PrimaryHypothesis)

	fmt.Fprintln(w)
	if len(r.RecentSignals) == 0 {
		fmt.Fprintln(w, "No recent signals.")
	} else {
		fmt.Fprintf(w, "%-10s  %-12s  %-60s  %s\n", "Date", "Type", "Headline", "Intent")
		fmt.Fprintln(w, strings.Repeat("-", 94))
		for _, s := range r.RecentSignals {
			intent := ""
			if s.IsIntentSignal {
				intent = "yes"
			}
			fmt.Fprintf(w, "%-10s  %-12s  %-60s  %s\n", clip(s.Date, 10), s.Type, clip(s.Headline, 60), intent)
		}
	}

	if len(r.IntentSignals) > 0 {
		fmt.Fprintln(w, "\nIntent signals")
		for _, s := range r.IntentSignals {
			fmt.Fprintf(w, "  [%s, %s fit] %s\n", s.SignalType, s.FitScore, s.Description)
		}
	}

	o := r.OutreachPriority
	personas := make([]string, len(o.RecommendedPersonas))
	for i, k := range o.RecommendedPersonas {
		personas[i] = string(k)
	}
	fmt.Fprintf(w, "\nOutreach: %s urgency", o.Urgency)
	if len(personas) > 0 {
		fmt.Fprintf(w, ", contact %s", strings.Join(personas, ", "))
	}
	fmt.Fprintln(w)
	if o.UrgencyReason != "" {
		fmt.Fprintf(w, "  %s\n", o.UrgencyReason)
	}

	if len(r.ResearchGaps) > 0 {
		fmt.Fprintf(w, "\nResearch gaps: %s\n", strings.Join(r.ResearchGaps, "; "))
	}

	md := r.Metadata
	searches := fmt.Sprintf("%d", md.SearchesPerformed)
	if md.SearchesEstimated {
		searches = "~" + searches
	}
	fmt.Fprintf(w, "\n%s searches, %d sources, %d+%d tokens, $%.4f, %.1fs\n",
		searches, md.SourcesCited, md.Usage.InputTokens, md.Usage.OutputTokens,
		md.EstimatedCost, float64(md.ExecutionTimeMS)/1000)
}

// writeRecords prints history records as a table.
func writeRecords(w io.Writer, records []history.Record) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No reports found.")
		return
	}

	fmt.Fprintf(w, "%-8s  %-16s  %-20s  %-8s  %-7s  %-8s  %s\n",
		"ID", "Created", "Company", "Depth", "Urgency", "Cost", "Hypothesis")
	fmt.Fprintln(w, strings.Repeat("-", 110))
	for _, r := range records {
		fmt.Fprintf(w, "%-8s  %-16s  %-20s  %-8s  %-7s  $%-7.4f  %s\n",
			shortID(r.ID), r.CreatedAt.Local().Format("2006-01-02 15:04"), clip(r.Company, 20),
			r.Depth, r.Urgency, r.Usage.EstimatedCost, clip(r.Hypothesis, 40))
	}
	fmt.Fprintf(w, "\n%d reports\n", len(records))
}

// shortID returns the leading characters of id, enough to pass to
// "history show".
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// clip shortens s to at most n runes, marking the cut with "...".
func clip(s string, n int) string {
	rs := []rune(s)
	if len(rs) <= n {
		return s
	}
	if n <= 3 {
		return string(rs[:n])
	}
	return string(rs[:n-3]) + "..."
}
