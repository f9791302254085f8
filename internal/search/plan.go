// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"fmt"
	"os"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/account-intel/pkg/types"
)

// Target identifies the company a query plan is built for.
type Target struct {
	Name     string `yaml:"name"`
	Website  string `yaml:"website,omitempty"`
	Industry string `yaml:"industry,omitempty"`
}

// QueryPlan returns the fixed eight-query research plan for t. The order is
// stable: firmographics, ownership, recent news, leadership, pricing
// strategy, technology initiatives, vendor evaluation, hiring.
func QueryPlan(t Target) []string {
	name := quoted(t.Name)
	site := strings.TrimSpace(t.Website)
	industry := strings.TrimSpace(t.Industry)

	overview := join(name, site, "company overview revenue employees headquarters")
	pricing := join(name, "pricing strategy price increase", industry)

	return []string{
		overview,
		join(name, "ownership parent company investors private equity acquisition"),
		join(name, "latest news announcements"),
		join(name, "CEO CFO leadership team executive appointment"),
		pricing,
		join(name, "digital transformation technology initiative analytics platform"),
		join(name, "RFP vendor evaluation request for proposal software selection"),
		join(name, "hiring pricing analyst revenue management jobs"),
	}
}

func quoted(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	return `"` + strings.Trim(name, `"`) + `"`
}

func join(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}

// PlanFile is the on-disk representation of a query plan and, optionally,
// the results it produced. A saved plan can be edited by hand and fed back
// to the research command in place of the built-in plan.
type PlanFile struct {
	Target  Target                    `yaml:"target"`
	Config  PlanFileConfig            `yaml:"config"`
	Queries []string                  `yaml:"queries"`
	Results []types.BatchSearchResult `yaml:"results,omitempty"`
	Summary *PlanSummary              `yaml:"summary,omitempty"`
}

// PlanFileConfig stores the search settings the plan was run with.
type PlanFileConfig struct {
	MaxResults int    `yaml:"max_results"`
	Depth      string `yaml:"depth"`
	Budget     int    `yaml:"budget"`
}

// PlanSummary stores batch statistics and a timestamp.
type PlanSummary struct {
	Succeeded int       `yaml:"succeeded"`
	Failed    int       `yaml:"failed"`
	Hits      int       `yaml:"hits"`
	Sources   int       `yaml:"sources"`
	Timestamp time.Time `yaml:"timestamp"`
}

// NewPlanFile builds a PlanFile for t. When results is non-empty the summary
// is filled from it.
func NewPlanFile(t Target, queries []string, cfg types.SearchConfig, results []types.BatchSearchResult) PlanFile {
	pf := PlanFile{
		Target: t,
		Config: PlanFileConfig{
			MaxResults: cfg.MaxResults,
			Depth:      cfg.Depth,
			Budget:     cfg.Budget,
		},
		Queries: queries,
		Results: results,
	}
	if len(results) > 0 {
		s := Summarize(results)
		pf.Summary = &PlanSummary{
			Succeeded: s.Succeeded,
			Failed:    s.Failed,
			Hits:      s.Hits,
			Sources:   s.Sources,
			Timestamp: time.Now().UTC(),
		}
	}
	return pf
}

// WritePlanFile saves pf to path as YAML.
func WritePlanFile(path string, pf PlanFile) error {
	data, err := yaml.Marshal(&pf)
	if err != nil {
		return fmt.Errorf("marshaling plan file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadPlanFile loads a previously saved plan file. A plan with no queries
// is rejected.
func ReadPlanFile(path string) (*PlanFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading plan file: %w", err)
	}
	var pf PlanFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("parsing plan file: %w", err)
	}
	var queries []string
	for _, q := range pf.Queries {
		if q = strings.TrimSpace(q); q != "" {
			queries = append(queries, q)
		}
	}
	if len(queries) == 0 {
		return nil, fmt.Errorf("plan file %s has no queries", path)
	}
	pf.Queries = queries
	return &pf, nil
}
