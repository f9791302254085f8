// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/account-intel/internal/history"
	"github.com/pdiddy/account-intel/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List, search, show, or export saved reports",
	Long: `History manages the local SQLite database of finished reports. Each
entry stores the full report together with its usage record (searches,
sources, tokens, estimated cost, and models).`,
}

// --- list subcommand ---

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved reports, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withHistory(cmd, func(ctx context.Context, store *history.Store) error {
			records, err := store.Find(ctx, queryFromFlags(cmd, ""))
			if err != nil {
				return err
			}
			return printRecords(cmd, records)
		})
	},
}

// --- search subcommand ---

var historySearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Full-text search over company names, hypotheses, and signal headlines",
	Long: `Search matches an FTS5 query against saved company names, primary
hypotheses, and signal headlines. Results are ranked by relevance.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withHistory(cmd, func(ctx context.Context, store *history.Store) error {
			records, err := store.Find(ctx, queryFromFlags(cmd, strings.Join(args, " ")))
			if err != nil {
				return err
			}
			return printRecords(cmd, records)
		})
	},
}

// --- show subcommand ---

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a saved report (an unambiguous ID prefix is enough)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		return withHistory(cmd, func(ctx context.Context, store *history.Store) error {
			_, report, err := store.Get(ctx, args[0])
			if err != nil {
				return err
			}
			return writeReport(os.Stdout, report, format)
		})
	},
}

// --- export subcommand ---

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export saved reports to YAML or JSON",
	Long: `Export writes every saved report (or a filtered subset) with its usage
record. Output goes to stdout unless --output names a file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		outPath, _ := cmd.Flags().GetString("output")
		text, _ := cmd.Flags().GetString("query")

		return withHistory(cmd, func(ctx context.Context, store *history.Store) error {
			w := os.Stdout
			if outPath != "" {
				f, err := os.Create(outPath)
				if err != nil {
					return fmt.Errorf("creating %s: %w", outPath, err)
				}
				defer f.Close()
				w = f
			}
			if err := store.ExportTo(ctx, w, format, queryFromFlags(cmd, text)); err != nil {
				return err
			}
			if outPath != "" {
				fmt.Fprintf(os.Stderr, "Exported to %s\n", outPath)
			}
			return nil
		})
	},
}

// --- shared helpers ---

func withHistory(cmd *cobra.Command, fn func(context.Context, *history.Store) error) error {
	cfg := pipelineConfig(viper.GetViper()).History
	if path, _ := cmd.Flags().GetString("db"); path != "" {
		cfg.Path = path
	}
	store, err := history.Open(cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(cmd.Context(), store)
}

func queryFromFlags(cmd *cobra.Command, text string) history.Query {
	company, _ := cmd.Flags().GetString("company")
	depth, _ := cmd.Flags().GetString("depth")
	limit, _ := cmd.Flags().GetInt("limit")
	return history.Query{
		Text:       text,
		Company:    company,
		Depth:      types.Depth(depth),
		MaxResults: limit,
	}
}

func printRecords(cmd *cobra.Command, records []history.Record) error {
	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "", "table":
		writeRecords(os.Stdout, records)
		return nil
	case formatJSON:
		return writeJSON(os.Stdout, records)
	}
	return fmt.Errorf("unsupported format %q: use table or json", format)
}

func init() {
	// Shared flags on the parent command, inherited by subcommands.
	historyCmd.PersistentFlags().String("db", "", "history database path (default from history.path)")
	historyCmd.PersistentFlags().String("company", "", "filter by company name")
	historyCmd.PersistentFlags().String("depth", "", "filter by depth: standard or deep")
	historyCmd.PersistentFlags().Int("limit", 0, "maximum results (0 = use default)")

	historyListCmd.Flags().String("format", "table", "output format: table or json")
	historySearchCmd.Flags().String("format", "table", "output format: table or json")
	historyShowCmd.Flags().String("format", formatJSON, "output format: json, yaml, or summary")

	historyExportCmd.Flags().String("format", history.FormatYAML, "export format: yaml or json")
	historyExportCmd.Flags().StringP("output", "o", "", "write to a file instead of stdout")
	historyExportCmd.Flags().String("query", "", "full-text filter for partial export")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historySearchCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyExportCmd)

	rootCmd.AddCommand(historyCmd)
}
