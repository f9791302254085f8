package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/account-intel/internal/history"
	"github.com/pdiddy/account-intel/internal/pipeline"
	"github.com/pdiddy/account-intel/internal/search"
	"github.com/pdiddy/account-intel/internal/secrets"
	"github.com/pdiddy/account-intel/pkg/types"
)

var researchCmd = &cobra.Command{
	Use:   "research [company name]",
	Short: "Research a company and print its intelligence report",
	Long: `Research runs the full pipeline for one company: a batch of web searches
(when a Tavily key is configured), a search-grounded research pass, and a
structured synthesis pass. The normalized report is printed and saved to the
local history database.

Credentials are read from the secrets directory (tavily-api-key,
openai-api-key, anthropic-api-key) or the matching *_API_KEY environment
variables. A query plan written by the plan command can replace the built-in
queries with --plan.`,
	RunE: runResearch,
}

func init() {
	researchCmd.Flags().String("name", "", "company name (or pass it as arguments)")
	researchCmd.Flags().String("site", "", "company website")
	researchCmd.Flags().String("industry", "", "industry hint")
	researchCmd.Flags().String("depth", string(types.DepthStandard), "synthesis depth: standard or deep")
	researchCmd.Flags().String("plan", "", "read search queries from a plan file")
	researchCmd.Flags().String("save-plan", "", "write the queries and search results to a plan file")
	researchCmd.Flags().String("format", formatJSON, "output format: json, yaml, or summary")
	researchCmd.Flags().StringP("output", "o", "", "write the report to a file instead of stdout")
	researchCmd.Flags().Bool("no-save", false, "do not save the report to history")
	researchCmd.Flags().BoolP("quiet", "q", false, "suppress progress output")

	rootCmd.AddCommand(researchCmd)
}

func runResearch(cmd *cobra.Command, args []string) error {
	name, _ := cmd.Flags().GetString("name")
	if name == "" {
		name = strings.Join(args, " ")
	}
	site, _ := cmd.Flags().GetString("site")
	industry, _ := cmd.Flags().GetString("industry")
	depth, _ := cmd.Flags().GetString("depth")
	planPath, _ := cmd.Flags().GetString("plan")
	savePlan, _ := cmd.Flags().GetString("save-plan")
	format, _ := cmd.Flags().GetString("format")
	outPath, _ := cmd.Flags().GetString("output")
	noSave, _ := cmd.Flags().GetBool("no-save")
	quiet, _ := cmd.Flags().GetBool("quiet")

	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("provide a company name with --name or as arguments")
	}
	switch format {
	case formatJSON, formatYAML, formatSummary:
	default:
		return fmt.Errorf("unsupported format %q: use json, yaml, or summary", format)
	}

	secretsDir, _ := cmd.Flags().GetString("secrets-dir")
	creds, err := loadCredentials(secretsDir, os.LookupEnv)
	if err != nil {
		return err
	}

	cfg := pipelineConfig(viper.GetViper())
	req := pipeline.Request{
		EntityName:     name,
		EntitySite:     site,
		EntityCategory: industry,
		Depth:          types.Depth(depth),
		Credentials:    creds,
	}

	if planPath != "" {
		pf, err := search.ReadPlanFile(planPath)
		if err != nil {
			return err
		}
		req.Queries = pf.Queries
	}

	var progress func(string)
	if !quiet {
		progress = func(label string) { fmt.Fprintln(os.Stderr, label) }
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	p := pipeline.New(cfg, logger)
	out, err := p.Execute(ctx, req, progress)
	if err != nil {
		return fmt.Errorf("researching %s: %w", name, err)
	}

	if savePlan != "" {
		target := search.Target{Name: req.EntityName, Website: site, Industry: industry}
		if err := search.WritePlanFile(savePlan, search.NewPlanFile(target, out.Queries, cfg.Search, out.Batch)); err != nil {
			return fmt.Errorf("writing plan file: %w", err)
		}
		if !quiet && len(out.Batch) > 0 {
			search.FormatTable(out.Batch, os.Stderr)
		}
	}

	if !noSave {
		if err := saveToHistory(ctx, cfg.History, req, out.Report); err != nil {
			logger.Warn("report not saved to history", zap.Error(err))
		}
	}

	w := os.Stdout
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("creating %s: %w", outPath, err)
		}
		defer f.Close()
		w = f
	}
	return writeReport(w, out.Report, format)
}

// loadCredentials reads the API keys for one request from dir, falling back
// to the environment for keys with no file.
func loadCredentials(dir string, lookup func(string) (string, bool)) (secrets.Credentials, error) {
	s, err := secrets.Load(dir)
	if err != nil {
		return nil, err
	}
	creds := s.WithEnv(lookup)
	if keys := creds.Keys(); len(keys) > 0 {
		logger.Debug("loaded credentials", zap.Strings("keys", keys))
	}
	return creds, nil
}

func saveToHistory(ctx context.Context, cfg types.HistoryConfig, req pipeline.Request, report *types.IntelligenceReport) error {
	store, err := history.Open(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	depth := req.Depth
	if depth == "" {
		depth = types.DepthStandard
	}
	rec, err := store.Save(ctx, history.Subject{
		Company:  req.EntityName,
		Website:  req.EntitySite,
		Industry: req.EntityCategory,
		Depth:    depth,
	}, report)
	if err != nil {
		return err
	}
	logger.Info("saved report", zap.String("id", rec.ID), zap.String("path", cfg.Path))
	return nil
}
