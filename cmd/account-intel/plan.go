package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/account-intel/internal/search"
)

var planCmd = &cobra.Command{
	Use:   "plan [company name]",
	Short: "Print or save the search query plan for a company",
	Long: `Plan builds the web search queries the research command would run for a
company and prints them as a plan file. Save it with --output, edit the
queries by hand, and pass it back with "research --plan".`,
	RunE: runPlan,
}

func init() {
	planCmd.Flags().String("name", "", "company name (or pass it as arguments)")
	planCmd.Flags().String("site", "", "company website")
	planCmd.Flags().String("industry", "", "industry hint")
	planCmd.Flags().StringP("output", "o", "", "write the plan to a file instead of stdout")

	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	name, _ := cmd.Flags().GetString("name")
	if name == "" {
		name = strings.Join(args, " ")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("provide a company name with --name or as arguments")
	}
	site, _ := cmd.Flags().GetString("site")
	industry, _ := cmd.Flags().GetString("industry")
	outPath, _ := cmd.Flags().GetString("output")

	target := search.Target{Name: name, Website: site, Industry: industry}
	pf := search.NewPlanFile(target, search.QueryPlan(target), pipelineConfig(viper.GetViper()).Search, nil)

	if outPath != "" {
		if err := search.WritePlanFile(outPath, pf); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Wrote %d queries to %s\n", len(pf.Queries), outPath)
		return nil
	}

	data, err := yaml.Marshal(&pf)
	if err != nil {
		return fmt.Errorf("marshaling plan: %w", err)
	}
	_, err = os.Stdout.Write(data)
	return err
}
