// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history persists finished intelligence reports and their usage
// records in a local SQLite database with a full-text index over company
// names, hypotheses, and signal headlines.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/account-intel/pkg/types"
)

const defaultMaxResults = 20

// ErrNotFound is returned when no saved report matches an ID.
var ErrNotFound = errors.New("report not found")

// Store manages the report history database.
type Store struct {
	db         *sql.DB
	maxResults int
	now        func() time.Time
}

// Open opens or creates the history database at cfg.Path, creating the
// parent directory and schema if needed.
func Open(cfg types.HistoryConfig) (*Store, error) {
	if cfg.Path == "" {
		return nil, &types.ConfigurationError{Msg: "history path is empty"}
	}
	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	s := &Store{db: db, maxResults: maxResults, now: time.Now}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS reports (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			company TEXT NOT NULL,
			website TEXT,
			industry TEXT,
			depth TEXT NOT NULL,
			created_at TEXT NOT NULL,
			hypothesis TEXT,
			urgency TEXT,
			headlines TEXT,
			report TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_reports_company ON reports(company COLLATE NOCASE)`,
		`CREATE INDEX IF NOT EXISTS idx_reports_created ON reports(created_at)`,
		`CREATE TABLE IF NOT EXISTS usage (
			report_id TEXT PRIMARY KEY REFERENCES reports(id) ON DELETE CASCADE,
			searches_performed INTEGER,
			searches_estimated INTEGER,
			sources_cited INTEGER,
			input_tokens INTEGER,
			output_tokens INTEGER,
			estimated_cost REAL,
			search_model TEXT,
			synthesis_model TEXT,
			execution_ms INTEGER
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='reports_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}
	if ftsExists > 0 {
		return nil
	}

	ftsStatements := []string{
		`CREATE VIRTUAL TABLE reports_fts USING fts5(company, hypothesis, headlines, content=reports, content_rowid=rowid)`,
		`CREATE TRIGGER reports_ai AFTER INSERT ON reports BEGIN
			INSERT INTO reports_fts(rowid, company, hypothesis, headlines)
			VALUES (new.rowid, new.company, new.hypothesis, new.headlines);
		END`,
		`CREATE TRIGGER reports_ad AFTER DELETE ON reports BEGIN
			INSERT INTO reports_fts(reports_fts, rowid, company, hypothesis, headlines)
			VALUES ('delete', old.rowid, old.company, old.hypothesis, old.headlines);
		END`,
		`CREATE TRIGGER reports_au AFTER UPDATE ON reports BEGIN
			INSERT INTO reports_fts(reports_fts, rowid, company, hypothesis, headlines)
			VALUES ('delete', old.rowid, old.company, old.hypothesis, old.headlines);
			INSERT INTO reports_fts(rowid, company, hypothesis, headlines)
			VALUES (new.rowid, new.company, new.hypothesis, new.headlines);
		END`,
	}
	for _, stmt := range ftsStatements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("creating FTS infrastructure: %w", err)
		}
	}
	return nil
}

// Subject identifies the account a saved report describes.
type Subject struct {
	Company  string
	Website  string
	Industry string
	Depth    types.Depth
}

// Usage is the per-request usage record stored alongside each report.
type Usage struct {
	SearchesPerformed int     `json:"searches_performed" yaml:"searches_performed"`
	SearchesEstimated bool    `json:"searches_estimated,omitempty" yaml:"searches_estimated,omitempty"`
	SourcesCited      int     `json:"sources_cited" yaml:"sources_cited"`
	InputTokens       int     `json:"input_tokens" yaml:"input_tokens"`
	OutputTokens      int     `json:"output_tokens" yaml:"output_tokens"`
	EstimatedCost     float64 `json:"estimated_cost" yaml:"estimated_cost"`
	SearchModel       string  `json:"search_model" yaml:"search_model"`
	SynthesisModel    string  `json:"synthesis_model" yaml:"synthesis_model"`
	ExecutionTimeMS   int64   `json:"execution_time_ms" yaml:"execution_time_ms"`
}

func usageFrom(md types.ReportMetadata) Usage {
	return Usage{
		SearchesPerformed: md.SearchesPerformed,
		SearchesEstimated: md.SearchesEstimated,
		SourcesCited:      md.SourcesCited,
		InputTokens:       md.Usage.InputTokens,
		OutputTokens:      md.Usage.OutputTokens,
		EstimatedCost:     md.EstimatedCost,
		SearchModel:       md.ModelsUsed.Search,
		SynthesisModel:    md.ModelsUsed.Synthesis,
		ExecutionTimeMS:   md.ExecutionTimeMS,
	}
}

// Record is the summary row for one saved report.
type Record struct {
	ID         string      `json:"id" yaml:"id"`
	Company    string      `json:"company" yaml:"company"`
	Website    string      `json:"website,omitempty" yaml:"website,omitempty"`
	Industry   string      `json:"industry,omitempty" yaml:"industry,omitempty"`
	Depth      types.Depth `json:"depth" yaml:"depth"`
	CreatedAt  time.Time   `json:"created_at" yaml:"created_at"`
	Hypothesis string      `json:"hypothesis" yaml:"hypothesis"`
	Urgency    types.Level `json:"urgency" yaml:"urgency"`
	Usage      Usage       `json:"usage" yaml:"usage"`
}

// Save stores report under its request ID, replacing any earlier copy.
// Reports without a request ID get a fresh one.
func (s *Store) Save(ctx context.Context, subj Subject, report *types.IntelligenceReport) (Record, error) {
	if report == nil {
		return Record{}, errors.New("saving report: report is nil")
	}
	if strings.TrimSpace(subj.Company) == "" {
		return Record{}, errors.New("saving report: company is empty")
	}

	id := report.Metadata.RequestID
	if id == "" {
		id = uuid.NewString()
	}
	depth := subj.Depth
	if depth == "" {
		depth = types.DepthStandard
	}

	rec := Record{
		ID:         id,
		Company:    strings.TrimSpace(subj.Company),
		Website:    subj.Website,
		Industry:   subj.Industry,
		Depth:      depth,
		CreatedAt:  s.now().UTC().Truncate(time.Second),
		Hypothesis: report.Hypothesis.PrimaryHypothesis,
		Urgency:    report.OutreachPriority.Urgency,
		Usage:      usageFrom(report.Metadata),
	}

	data, err := json.Marshal(report)
	if err != nil {
		return Record{}, fmt.Errorf("marshaling report: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Record{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO reports (id, company, website, industry, depth, created_at, hypothesis, urgency, headlines, report)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			company=excluded.company, website=excluded.website, industry=excluded.industry,
			depth=excluded.depth, created_at=excluded.created_at, hypothesis=excluded.hypothesis,
			urgency=excluded.urgency, headlines=excluded.headlines, report=excluded.report`,
		rec.ID, rec.Company, rec.Website, rec.Industry, string(rec.Depth),
		rec.CreatedAt.Format(time.RFC3339), rec.Hypothesis, string(rec.Urgency),
		headlines(report), string(data),
	)
	if err != nil {
		return Record{}, fmt.Errorf("inserting report: %w", err)
	}

	u := rec.Usage
	_, err = tx.ExecContext(ctx,
		`INSERT INTO usage (report_id, searches_performed, searches_estimated, sources_cited,
			input_tokens, output_tokens, estimated_cost, search_model, synthesis_model, execution_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(report_id) DO UPDATE SET
			searches_performed=excluded.searches_performed, searches_estimated=excluded.searches_estimated,
			sources_cited=excluded.sources_cited, input_tokens=excluded.input_tokens,
			output_tokens=excluded.output_tokens, estimated_cost=excluded.estimated_cost,
			search_model=excluded.search_model, synthesis_model=excluded.synthesis_model,
			execution_ms=excluded.execution_ms`,
		rec.ID, u.SearchesPerformed, u.SearchesEstimated, u.SourcesCited,
		u.InputTokens, u.OutputTokens, u.EstimatedCost, u.SearchModel, u.SynthesisModel, u.ExecutionTimeMS,
	)
	if err != nil {
		return Record{}, fmt.Errorf("inserting usage: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Record{}, fmt.Errorf("committing report: %w", err)
	}
	return rec, nil
}

// headlines joins the text indexed for signal search.
func headlines(r *types.IntelligenceReport) string {
	var parts []string
	for _, s := range r.RecentSignals {
		if s.Headline != "" {
			parts = append(parts, s.Headline)
		}
	}
	for _, s := range r.IntentSignals {
		if s.Description != "" {
			parts = append(parts, s.Description)
		}
	}
	return strings.Join(parts, "\n")
}
