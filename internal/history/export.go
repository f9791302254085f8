// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/account-intel/pkg/types"
)

// ExportEntry is one saved report with its summary record.
type ExportEntry struct {
	Record `yaml:",inline"`
	Report *types.IntelligenceReport `json:"report" yaml:"report"`
}

const exportLimit = 100000

// Export formats accepted by ExportTo.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// ExportYAML writes every report matching q to w as a YAML list.
func (s *Store) ExportYAML(ctx context.Context, w io.Writer, q Query) error {
	entries, err := s.exportEntries(ctx, q)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(entries); err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return enc.Close()
}

// ExportJSON writes every report matching q to w as an indented JSON array.
func (s *Store) ExportJSON(ctx context.Context, w io.Writer, q Query) error {
	entries, err := s.exportEntries(ctx, q)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(entries); err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return nil
}

// ExportTo dispatches to ExportYAML or ExportJSON by format name.
func (s *Store) ExportTo(ctx context.Context, w io.Writer, format string, q Query) error {
	switch format {
	case FormatYAML, "yml":
		return s.ExportYAML(ctx, w, q)
	case FormatJSON:
		return s.ExportJSON(ctx, w, q)
	}
	return fmt.Errorf("unsupported export format %q (want yaml or json)", format)
}

func (s *Store) exportEntries(ctx context.Context, q Query) ([]ExportEntry, error) {
	q.MaxResults = exportLimit
	records, err := s.Find(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}

	entries := make([]ExportEntry, 0, len(records))
	for _, rec := range records {
		_, report, err := s.Get(ctx, rec.ID)
		if err != nil {
			return nil, fmt.Errorf("loading report %s: %w", rec.ID, err)
		}
		entries = append(entries, ExportEntry{Record: rec, Report: report})
	}
	return entries, nil
}
