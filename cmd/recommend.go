package cmd

import (
	"crypto/sha1"
	"fmt"
	"os"

	"github.com/KaramelBytes/medintel-cli/internal/ai"
	"github.com/KaramelBytes/medintel-cli/internal/analysis"
	"github.com/KaramelBytes/medintel-cli/internal/utils"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	recInput       inputFlags
	recFilter      filterFlags
	recSource      string
	recExt         externalOptions
	recDryRun      bool
	recBudgetLimit float64
	recJSON        bool
	recOutputPath  string
	recPreviewMax  int
)

var recommendCmd = &cobra.Command{
	Use:   "recommend <file>",
	Short: "Produce a campaign summary and recommendations",
	Example: `  medintel recommend posts.csv
  medintel recommend posts.csv --source external --model openai/gpt-4o-mini
  medintel recommend posts.csv --source external --provider ollama --model llama3.1:8b
  medintel recommend posts.csv --source external --dry-run`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := analysis.ParseSource(recSource)
		if err != nil {
			return err
		}
		_, c, d, err := loadFiltered(args[0], recInput, recFilter)
		if err != nil {
			return err
		}
		rules := analysis.Recommend(d)
		if src == analysis.SourceRuleBased {
			return emitResult(rules)
		}

		ext, provider, err := newExternalAnalyzer(cfg, recExt)
		if err != nil {
			return err
		}
		model := ext.Model()
		msgs, err := ext.Request(d).Messages()
		if err != nil {
			return err
		}
		sections := map[string]string{}
		prompt := ""
		for _, m := range msgs {
			sections[m.Role] += m.Content
			prompt += m.Content + "\n"
		}
		tokens := utils.CountTokens(prompt)
		maxTokens := 1024
		if cfg != nil && cfg.MaxTokens > 0 {
			maxTokens = cfg.MaxTokens
		}
		if !recJSON {
			bd := utils.TokenBreakdown(sections)
			fmt.Printf("Tokens: total≈%d (system≈%d, data≈%d)\n", tokens, bd["system"], bd["user"])
		}
		var estCost float64
		if cost, ok := ai.EstimateCostUSD(model, tokens, maxTokens); ok {
			estCost = cost
			if !recJSON {
				fmt.Printf("Estimated max cost: ~$%.4f\n", cost)
			}
		}
		if err := enforceBudget(estCost, recBudgetLimit); err != nil {
			return err
		}
		if recDryRun {
			sum := sha1.Sum([]byte(prompt))
			fmt.Println("\n--dry-run: no API call will be made. Prompt preview below --")
			fmt.Printf("Request ID (dry-run): sim_%x\n", sum[:6])
			if recPreviewMax > 0 {
				fmt.Println(utils.TruncateToTokenLimit(prompt, recPreviewMax))
			} else {
				fmt.Println(prompt)
			}
			return nil
		}

		if !recJSON {
			fmt.Printf("⚙ Requesting external analysis with model=%s via %s (filters: %s) ...\n", model, provider, c)
		}
		res, err := ext.Analyze(cmd.Context(), d)
		if err != nil {
			logger.Warn("external analysis failed; showing rule-based result", zap.Error(err))
			if !recJSON {
				fmt.Println("⚠ Warning: external analysis failed; rule-based result below")
			}
			if werr := emitResult(rules); werr != nil {
				return werr
			}
			if hint := externalHint(err, provider, model); hint != "" {
				fmt.Printf("  Hint: %s\n", hint)
			}
			return err
		}
		return emitResult(res)
	},
}

func emitResult(res *analysis.Result) error {
	if recJSON || recOutputPath != "" {
		b, err := utils.PrettyJSON(res)
		if err != nil {
			return err
		}
		if recOutputPath != "" {
			if err := utils.SafeWriteFile(recOutputPath, b); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			if !recJSON {
				fmt.Printf("✓ Saved analysis to %s\n", recOutputPath)
			}
		}
		if recJSON {
			fmt.Println(string(b))
			return nil
		}
	}
	writeResultText(os.Stdout, res)
	return nil
}

func init() {
	rootCmd.AddCommand(recommendCmd)
	recInput.register(recommendCmd)
	recFilter.register(recommendCmd)
	recommendCmd.Flags().StringVar(&recSource, "source", "rules", "analysis source: rules|external")
	registerExternalFlags(recommendCmd, &recExt)
	recommendCmd.Flags().BoolVar(&recDryRun, "dry-run", false, "print the external prompt and token estimate without calling the API")
	recommendCmd.Flags().IntVar(&recPreviewMax, "preview-tokens", 800, "truncate the --dry-run prompt preview to about this many tokens (0 = full)")
	recommendCmd.Flags().Float64Var(&recBudgetLimit, "budget-limit", 0, "fail if estimated max cost (USD) exceeds this budget")
	recommendCmd.Flags().BoolVar(&recJSON, "json", false, "emit the result as JSON")
	recommendCmd.Flags().StringVarP(&recOutputPath, "output", "o", "", "also save the result as JSON")
}

func registerExternalFlags(cmd *cobra.Command, o *externalOptions) {
	cmd.Flags().StringVar(&o.Provider, "provider", "", "external provider: openrouter|ollama (default from config)")
	cmd.Flags().StringVar(&o.Model, "model", "", "external model (default from config)")
	cmd.Flags().StringVar(&o.OllamaHost, "ollama-host", "", "override Ollama host (e.g., http://127.0.0.1:11434)")
	cmd.Flags().IntVar(&o.TimeoutSec, "timeout-sec", 0, "external analysis timeout in seconds (default from config)")
	cmd.Flags().IntVar(&o.SampleRows, "sample-rows", 0, "rows sent to the external model (default from config)")
}
