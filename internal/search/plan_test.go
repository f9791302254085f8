// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/account-intel/pkg/types"
)

func TestQueryPlan(t *testing.T) {
	queries := QueryPlan(Target{Name: "Acme Corp", Website: "acme.com", Industry: "Industrial Distribution"})
	require.Len(t, queries, 8)

	for i, q := range queries {
		assert.True(t, strings.HasPrefix(q, `"Acme Corp" `), "query %d: %q", i, q)
	}
	assert.Contains(t, queries[0], "acme.com")
	assert.Contains(t, queries[1], "ownership")
	assert.Contains(t, queries[2], "news")
	assert.Contains(t, queries[3], "leadership")
	assert.Contains(t, queries[4], "Industrial Distribution")
	assert.Contains(t, queries[5], "technology")
	assert.Contains(t, queries[6], "RFP")
	assert.Contains(t, queries[7], "hiring")
}

func TestQueryPlanMinimalTarget(t *testing.T) {
	queries := QueryPlan(Target{Name: ` "Globex" `})
	require.Len(t, queries, 8)
	assert.Equal(t, `"Globex" company overview revenue employees headquarters`, queries[0])
	assert.Equal(t, `"Globex" pricing strategy price increase`, queries[4])
	for _, q := range queries {
		assert.NotContains(t, q, "  ")
	}
}

func TestQueryPlanDeterministic(t *testing.T) {
	target := Target{Name: "Acme", Website: "acme.com"}
	assert.Equal(t, QueryPlan(target), QueryPlan(target))
}

func TestPlanFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plan.yaml")

	target := Target{Name: "Acme", Website: "acme.com"}
	results := []types.BatchSearchResult{
		{Query: "a", Success: true, Results: []types.EnrichedEvidence{evidence("https://a.com", 0.9, 0.5)}},
		{Query: "b", Results: []types.EnrichedEvidence{}, Error: "budget exceeded"},
	}
	cfg := types.SearchConfig{MaxResults: 5, Depth: "advanced", Budget: 8}
	pf := NewPlanFile(target, []string{"a", "b"}, cfg, results)
	require.NotNil(t, pf.Summary)
	assert.Equal(t, 1, pf.Summary.Succeeded)
	assert.Equal(t, 1, pf.Summary.Failed)

	require.NoError(t, WritePlanFile(path, pf))

	got, err := ReadPlanFile(path)
	require.NoError(t, err)
	assert.Equal(t, target, got.Target)
	assert.Equal(t, []string{"a", "b"}, got.Queries)
	assert.Equal(t, PlanFileConfig{MaxResults: 5, Depth: "advanced", Budget: 8}, got.Config)
	require.Len(t, got.Results, 2)
	assert.Equal(t, "https://a.com", got.Results[0].Results[0].URL)
	assert.Equal(t, 0.9, got.Results[0].Results[0].CredibilityScore)
	assert.Equal(t, "budget exceeded", got.Results[1].Error)
}

func TestPlanFileWithoutResults(t *testing.T) {
	pf := NewPlanFile(Target{Name: "Acme"}, QueryPlan(Target{Name: "Acme"}), types.SearchConfig{}, nil)
	assert.Nil(t, pf.Summary)
	assert.Empty(t, pf.Results)
}

func TestReadPlanFileSkipsBlankQueries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.yaml")
	require.NoError(t, os.WriteFile(path, []byte("target:\n  name: Acme\nqueries:\n  - \"  \"\n  - acme news\n"), 0o644))

	pf, err := ReadPlanFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"acme news"}, pf.Queries)
}

func TestReadPlanFileErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := ReadPlanFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("target:\n  name: Acme\n"), 0o644))
	_, err = ReadPlanFile(empty)
	assert.ErrorContains(t, err, "no queries")

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("queries: [unclosed"), 0o644))
	_, err = ReadPlanFile(bad)
	assert.ErrorContains(t, err, "parsing plan file")
}
