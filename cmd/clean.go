package cmd

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/KaramelBytes/medintel-cli/internal/dataset"
	"github.com/KaramelBytes/medintel-cli/internal/filter"
	"github.com/KaramelBytes/medintel-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	cleanInput   inputFlags
	cleanOptions bool
	cleanOutput  string
)

var cleanCmd = &cobra.Command{
	Use:   "clean <file>",
	Short: "Normalize a post export (CSV, TSV or XLSX) and report what was kept",
	Example: `  medintel clean posts.csv
  medintel clean posts.csv --options
  medintel clean export.tsv --decimal comma --output cleaned.csv`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := loadDataset(args[0], cleanInput)
		if err != nil {
			return err
		}
		fmt.Printf("✓ %s\n", res.Summary())
		fmt.Println("Columns:")
		for _, f := range dataset.RequiredFields {
			if h, ok := res.Columns[f]; ok {
				fmt.Printf("  %-16s <- %q\n", f, h)
			} else {
				fmt.Printf("  %-16s (missing, filled with %q)\n", f, dataset.Unknown)
			}
		}

		if cleanOptions {
			printFilterOptions(res.Dataset)
		}

		if cleanOutput != "" {
			var buf bytes.Buffer
			if err := dataset.WriteCSV(&buf, res.Dataset); err != nil {
				return err
			}
			if err := utils.SafeWriteFile(cleanOutput, buf.Bytes()); err != nil {
				return fmt.Errorf("write cleaned csv: %w", err)
			}
			fmt.Printf("✓ Wrote %d cleaned records to %s\n", res.Dataset.Len(), cleanOutput)
		}
		return nil
	},
}

func printFilterOptions(d dataset.Dataset) {
	fmt.Println("Filter options:")
	if start, end, ok := filter.Bounds(d); ok {
		fmt.Printf("  %-12s %s .. %s\n", "date", start.Format(dataset.DateLayout), end.Format(dataset.DateLayout))
	}
	for _, f := range filter.Fields {
		fmt.Printf("  %-12s %s\n", f, strings.Join(filter.Options(d, f), ", "))
	}
}

func init() {
	rootCmd.AddCommand(cleanCmd)
	cleanInput.register(cleanCmd)
	cleanCmd.Flags().BoolVar(&cleanOptions, "options", false, "list filter values and the date range found in the data")
	cleanCmd.Flags().StringVarP(&cleanOutput, "output", "o", "", "write the cleaned dataset as CSV")
}
