package cmd

import (
	"fmt"

	"github.com/KaramelBytes/medintel-cli/internal/analysis"
	"github.com/KaramelBytes/medintel-cli/internal/report"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	repInput    inputFlags
	repFilter   filterFlags
	repSource   string
	repExt      externalOptions
	repOutput   string
	repFormat   string
	repTitle    string
	repInsights bool
)

var reportCmd = &cobra.Command{
	Use:   "report <file>",
	Short: "Write a PDF or Markdown campaign report",
	Example: `  medintel report posts.csv
  medintel report posts.csv --format markdown -o weekly.md --insights
  medintel report posts.csv --source external --model openai/gpt-4o-mini`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := report.ParseFormat(repFormat)
		if err != nil {
			return err
		}
		src, err := analysis.ParseSource(repSource)
		if err != nil {
			return err
		}
		_, c, d, err := loadFiltered(args[0], repInput, repFilter)
		if err != nil {
			return err
		}

		res := analysis.Recommend(d)
		if src == analysis.SourceExternal {
			ext, provider, err := newExternalAnalyzer(cfg, repExt)
			if err != nil {
				return err
			}
			fmt.Printf("⚙ Requesting external analysis with model=%s via %s ...\n", ext.Model(), provider)
			out, err := ext.Analyze(cmd.Context(), d)
			if err != nil {
				logger.Warn("external analysis failed; report uses rule-based result", zap.Error(err))
				fmt.Printf("⚠ Warning: %v; using the rule-based analysis\n", err)
				if hint := externalHint(err, provider, ext.Model()); hint != "" {
					fmt.Printf("  Hint: %s\n", hint)
				}
			} else {
				res = out
			}
		}

		title := repTitle
		if title == "" && cfg != nil {
			title = cfg.ReportTitle
		}
		doc := report.FromAnalysis(res, report.Options{
			Title:           title,
			Dataset:         &d,
			Criteria:        &c,
			IncludeInsights: repInsights,
		})
		path := repOutput
		if path == "" {
			path = format.DefaultFileName()
		}
		if err := report.WriteFile(path, doc, format); err != nil {
			return err
		}
		logger.Info("report written", zap.String("path", path), zap.String("format", string(format)), zap.String("source", string(res.Source)))
		fmt.Printf("✓ Wrote %s report (%s) to %s\n", format, res.Source, path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
	repInput.register(reportCmd)
	repFilter.register(reportCmd)
	reportCmd.Flags().StringVar(&repSource, "source", "rules", "analysis source: rules|external")
	registerExternalFlags(reportCmd, &repExt)
	reportCmd.Flags().StringVarP(&repOutput, "output", "o", "", "output path (default media_intelligence_report.pdf or .md)")
	reportCmd.Flags().StringVar(&repFormat, "format", "pdf", "report format: pdf|markdown")
	reportCmd.Flags().StringVar(&repTitle, "title", "", "report title (default from config)")
	reportCmd.Flags().BoolVar(&repInsights, "insights", false, "include the chart insight sections")
}
