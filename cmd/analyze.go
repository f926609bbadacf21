package cmd

import (
	"bytes"
	"fmt"
	"os"

	"github.com/KaramelBytes/medintel-cli/internal/analysis"
	"github.com/KaramelBytes/medintel-cli/internal/insight"
	"github.com/KaramelBytes/medintel-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	anaInput      inputFlags
	anaFilter     filterFlags
	anaFormat     string
	anaOutputPath string
	anaNoRules    bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Summarize a post export: charts, insights and rule-based recommendations",
	Example: `  medintel analyze posts.csv
  medintel analyze posts.csv --platform Instagram --start 2024-01-01 --end 2024-03-31
  medintel analyze posts.csv --format json --output charts.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, c, d, err := loadFiltered(args[0], anaInput, anaFilter)
		if err != nil {
			return err
		}
		v := analysisView{
			Source:   args[0],
			Summary:  res.Summary(),
			Criteria: c.String(),
			Records:  d.Len(),
			Charts:   insight.BuildCharts(d),
		}
		if !anaNoRules {
			v.Analysis = analysis.Recommend(d)
		}

		var buf bytes.Buffer
		if err := writeView(&buf, v, anaFormat); err != nil {
			return err
		}
		if anaOutputPath == "" {
			_, err := buf.WriteTo(os.Stdout)
			return err
		}
		if err := utils.SafeWriteFile(anaOutputPath, buf.Bytes()); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		fmt.Printf("✓ Wrote analysis to %s\n", anaOutputPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	anaInput.register(analyzeCmd)
	anaFilter.register(analyzeCmd)
	analyzeCmd.Flags().StringVar(&anaFormat, "format", "text", "output format: text|markdown|json")
	analyzeCmd.Flags().StringVarP(&anaOutputPath, "output", "o", "", "optional path to write the analysis")
	analyzeCmd.Flags().BoolVar(&anaNoRules, "charts-only", false, "skip the rule-based recommendations")
}
