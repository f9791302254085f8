// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/pdiddy/account-intel/pkg/types"
)

// Query holds parameters for history lookups.
type Query struct {
	// Text is an FTS5 match expression over company, hypothesis, and
	// signal headlines.
	Text string

	// Company filters by exact company name, ignoring case.
	Company string

	// Depth filters by research depth.
	Depth types.Depth

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

const recordColumns = `r.id, r.company, r.website, r.industry, r.depth, r.created_at,
	r.hypothesis, r.urgency,
	u.searches_performed, u.searches_estimated, u.sources_cited,
	u.input_tokens, u.output_tokens, u.estimated_cost,
	u.search_model, u.synthesis_model, u.execution_ms`

// Find returns saved report records. Full-text queries are ranked by
// relevance; other queries return the newest reports first.
func (s *Store) Find(ctx context.Context, q Query) ([]Record, error) {
	maxResults := q.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb     strings.Builder
		args   []any
		useFTS = strings.TrimSpace(q.Text) != ""
	)

	if useFTS {
		qb.WriteString(`SELECT ` + recordColumns + `
			FROM reports_fts
			JOIN reports r ON r.rowid = reports_fts.rowid
			LEFT JOIN usage u ON u.report_id = r.id
			WHERE reports_fts MATCH ?`)
		args = append(args, q.Text)
	} else {
		qb.WriteString(`SELECT ` + recordColumns + `
			FROM reports r
			LEFT JOIN usage u ON u.report_id = r.id
			WHERE 1=1`)
	}

	if q.Company != "" {
		qb.WriteString(` AND r.company = ? COLLATE NOCASE`)
		args = append(args, q.Company)
	}
	if q.Depth != "" {
		qb.WriteString(` AND r.depth = ?`)
		args = append(args, string(q.Depth))
	}

	if useFTS {
		qb.WriteString(` ORDER BY reports_fts.rank`)
	} else {
		qb.WriteString(` ORDER BY r.created_at DESC, r.rowid DESC`)
	}
	qb.WriteString(` LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Get returns the saved report whose ID is id or starts with id. A prefix
// that matches more than one report is an error.
func (s *Store) Get(ctx context.Context, id string) (Record, *types.IntelligenceReport, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Record{}, nil, ErrNotFound
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+recordColumns+`, r.report
		 FROM reports r
		 LEFT JOIN usage u ON u.report_id = r.id
		 WHERE r.id = ? OR substr(r.id, 1, ?) = ?
		 ORDER BY r.id = ? DESC
		 LIMIT 2`,
		id, len(id), id, id,
	)
	if err != nil {
		return Record{}, nil, fmt.Errorf("looking up report: %w", err)
	}
	defer rows.Close()

	type match struct {
		rec  Record
		data string
	}
	var matches []match
	for rows.Next() {
		var m match
		m.rec, err = scanRecord(rows, &m.data)
		if err != nil {
			return Record{}, nil, err
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return Record{}, nil, fmt.Errorf("looking up report: %w", err)
	}

	switch {
	case len(matches) == 0:
		return Record{}, nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	case len(matches) > 1 && matches[0].rec.ID != id:
		return Record{}, nil, fmt.Errorf("report ID prefix %q is ambiguous", id)
	}

	var report types.IntelligenceReport
	if err := json.Unmarshal([]byte(matches[0].data), &report); err != nil {
		return Record{}, nil, fmt.Errorf("decoding report %s: %w", matches[0].rec.ID, err)
	}
	return matches[0].rec, &report, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner, extra ...any) (Record, error) {
	var (
		rec       Record
		website   sql.NullString
		industry  sql.NullString
		depth     string
		created   string
		hyp       sql.NullString
		urgency   sql.NullString
		searches  sql.NullInt64
		estimated sql.NullBool
		sources   sql.NullInt64
		inTok     sql.NullInt64
		outTok    sql.NullInt64
		cost      sql.NullFloat64
		searchM   sql.NullString
		synthM    sql.NullString
		execMS    sql.NullInt64
	)

	dest := []any{
		&rec.ID, &rec.Company, &website, &industry, &depth, &created,
		&hyp, &urgency,
		&searches, &estimated, &sources,
		&inTok, &outTok, &cost,
		&searchM, &synthM, &execMS,
	}
	dest = append(dest, extra...)
	if err := row.Scan(dest...); err != nil {
		return Record{}, fmt.Errorf("scanning row: %w", err)
	}

	rec.Website = website.String
	rec.Industry = industry.String
	rec.Depth = types.Depth(depth)
	rec.Hypothesis = hyp.String
	rec.Urgency = types.Level(urgency.String)
	if t, err := time.Parse(time.RFC3339, created); err == nil {
		rec.CreatedAt = t
	}
	rec.Usage = Usage{
		SearchesPerformed: int(searches.Int64),
		SearchesEstimated: estimated.Bool,
		SourcesCited:      int(sources.Int64),
		InputTokens:       int(inTok.Int64),
		OutputTokens:      int(outTok.Int64),
		EstimatedCost:     cost.Float64,
		SearchModel:       searchM.String,
		SynthesisModel:    synthM.String,
		ExecutionTimeMS:   execMS.Int64,
	}
	return rec, nil
}
