package cmd

import (
	"fmt"

	"github.com/KaramelBytes/medintel-cli/internal/insight"
	"github.com/spf13/cobra"
)

var (
	insInput  inputFlags
	insFilter filterFlags
	insChart  string
)

var insightsCmd = &cobra.Command{
	Use:   "insights <file>",
	Short: "Print the insight sentences for one chart or all charts",
	Example: `  medintel insights posts.csv
  medintel insights posts.csv --chart sentiment --platform TikTok`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cats := insight.All()
		if insChart != "" {
			c, err := insight.ParseCategory(insChart)
			if err != nil {
				return err
			}
			cats = []insight.Category{c}
		}
		_, _, d, err := loadFiltered(args[0], insInput, insFilter)
		if err != nil {
			return err
		}
		for i, c := range cats {
			if i > 0 {
				fmt.Println()
			}
			fmt.Printf("%s:\n", c.Title())
			for _, s := range insight.Generate(c, d) {
				fmt.Printf("  • %s\n", s)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(insightsCmd)
	insInput.register(insightsCmd)
	insFilter.register(insightsCmd)
	insightsCmd.Flags().StringVar(&insChart, "chart", "", "chart: sentiment|trend|platform|media|locations (default all)")
}
