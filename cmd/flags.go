package cmd

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/medintel-cli/internal/dataset"
	"github.com/KaramelBytes/medintel-cli/internal/filter"
	"github.com/KaramelBytes/medintel-cli/internal/normalize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// inputFlags controls how a post export is read.
type inputFlags struct {
	Delimiter string
	Decimal   string
	Thousands string
	MaxRows   int
	Sheet     string
}

func (f *inputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.Delimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' | '|' (auto-detect if omitted)")
	cmd.Flags().StringVar(&f.Decimal, "decimal", "", "decimal separator for engagements: '.'|'comma'")
	cmd.Flags().StringVar(&f.Thousands, "thousands", "", "thousands separator for engagements: ','|'.'|'space'")
	cmd.Flags().IntVar(&f.MaxRows, "max-rows", 0, "maximum rows to read (0 = unlimited)")
	cmd.Flags().StringVar(&f.Sheet, "sheet", "", "worksheet name for .xlsx input (default first sheet)")
}

func (f inputFlags) options() (normalize.Options, error) {
	opt := normalize.DefaultOptions()
	opt.MaxRows = f.MaxRows
	opt.Sheet = f.Sheet
	switch f.Delimiter {
	case "":
	case ",":
		opt.Delimiter = ','
	case "\t", "tab":
		opt.Delimiter = '\t'
	case ";":
		opt.Delimiter = ';'
	case "|", "pipe":
		opt.Delimiter = '|'
	default:
		return opt, fmt.Errorf("unsupported --delimiter: %s", f.Delimiter)
	}
	switch strings.ToLower(strings.TrimSpace(f.Decimal)) {
	case ",", "comma":
		opt.DecimalSeparator = ','
		if f.Thousands == "" {
			opt.ThousandsSeparator = '.'
		}
	case ".", "dot", "":
	default:
		return opt, fmt.Errorf("unsupported --decimal: %s (use '.'|'comma')", f.Decimal)
	}
	switch strings.ToLower(strings.TrimSpace(f.Thousands)) {
	case ",":
		opt.ThousandsSeparator = ','
	case ".":
		opt.ThousandsSeparator = '.'
	case "space", " ":
		opt.ThousandsSeparator = ' '
	case "":
	default:
		return opt, fmt.Errorf("unsupported --thousands: %s (use ','|'.'|'space')", f.Thousands)
	}
	if opt.DecimalSeparator == opt.ThousandsSeparator {
		return opt, fmt.Errorf("--decimal and --thousands must differ")
	}
	return opt, nil
}

// loadDataset normalizes path and reports warnings the way every command should.
func loadDataset(path string, f inputFlags) (*normalize.Result, error) {
	opt, err := f.options()
	if err != nil {
		return nil, err
	}
	res, err := normalize.NormalizeFile(path, opt)
	if err != nil {
		return nil, err
	}
	logger.Info("dataset loaded",
		zap.String("file", path),
		zap.Int("total", res.Total),
		zap.Int("retained", res.Retained),
		zap.Int("dropped_bad_date", res.DroppedBadDate))
	for _, w := range res.Warnings {
		fmt.Printf("⚠ Warning: %s\n", w)
	}
	return res, nil
}

// filterFlags mirrors filter.Criteria on the command line.
type filterFlags struct {
	Start     string
	End       string
	Platform  string
	Sentiment string
	Location  string
	MediaType string
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.Start, "start", "", "first date to include (inclusive)")
	cmd.Flags().StringVar(&f.End, "end", "", "last date to include (inclusive)")
	cmd.Flags().StringVar(&f.Platform, "platform", filter.MatchAll, "platform to include")
	cmd.Flags().StringVar(&f.Sentiment, "sentiment", filter.MatchAll, "sentiment to include")
	cmd.Flags().StringVar(&f.Location, "location", filter.MatchAll, "location to include")
	cmd.Flags().StringVar(&f.MediaType, "media-type", filter.MatchAll, "media type to include")
}

func (f filterFlags) criteria() (filter.Criteria, error) {
	c := filter.Criteria{Platform: f.Platform, Sentiment: f.Sentiment, Location: f.Location, MediaType: f.MediaType}
	if f.Start != "" {
		t, err := filter.ParseDate(f.Start)
		if err != nil {
			return c, fmt.Errorf("--start: %w", err)
		}
		c.Start = &t
	}
	if f.End != "" {
		t, err := filter.ParseDate(f.End)
		if err != nil {
			return c, fmt.Errorf("--end: %w", err)
		}
		c.End = &t
	}
	if c.Start != nil && c.End != nil && c.End.Before(*c.Start) {
		fmt.Printf("⚠ Warning: --end is before --start; no records can match\n")
	}
	return c, nil
}

// loadFiltered loads path and applies the filter flags.
func loadFiltered(path string, in inputFlags, ff filterFlags) (*normalize.Result, filter.Criteria, dataset.Dataset, error) {
	c, err := ff.criteria()
	if err != nil {
		return nil, c, dataset.Dataset{}, err
	}
	res, err := loadDataset(path, in)
	if err != nil {
		return nil, c, dataset.Dataset{}, err
	}
	d := filter.Apply(res.Dataset, c)
	logger.Debug("filter applied", zap.Stringer("criteria", c), zap.Int("matched", d.Len()))
	if d.Empty() && !res.Dataset.Empty() {
		fmt.Printf("⚠ Warning: no records match %s\n", c)
	}
	return res, c, d, nil
}
