package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/KaramelBytes/medintel-cli/internal/analysis"
	"github.com/KaramelBytes/medintel-cli/internal/dataset"
	"github.com/KaramelBytes/medintel-cli/internal/filter"
	"github.com/KaramelBytes/medintel-cli/internal/insight"
	"github.com/KaramelBytes/medintel-cli/internal/report"
	"github.com/KaramelBytes/medintel-cli/internal/session"
	"github.com/spf13/cobra"
)

var (
	shInput inputFlags
	shExt   externalOptions
)

var shellCmd = &cobra.Command{
	Use:   "shell <file>",
	Short: "Explore a post export interactively (filters, insights, analyses, reports)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := loadDataset(args[0], shInput)
		if err != nil {
			return err
		}
		st := session.New(res, args[0])
		newExternal := func() (analysis.Analyzer, error) {
			a, _, err := newExternalAnalyzer(cfg, shExt)
			return a, err
		}
		sh := newShell(st, cmd.OutOrStdout(), newExternal)
		return sh.run(cmd.Context(), cmd.InOrStdin())
	},
}

func init() {
	rootCmd.AddCommand(shellCmd)
	shInput.register(shellCmd)
	registerExternalFlags(shellCmd, &shExt)
}

const shellHelp = `Commands:
  status                      show dataset, filters and analysis state
  options                     list filter values found in the data
  filter <field> <value>      set platform|sentiment|location|media_type (All clears)
  filter start|end <date>     set an inclusive date bound ("-" clears)
  reset                       clear all filters
  insights [chart]            insight sentences (sentiment|trend|platform|media|locations)
  charts                      chart data and insights for the filtered view
  analyze [rules|external]    run an analysis (external runs in the background)
  wait                        wait for the background analysis
  cancel                      cancel the background analysis
  show                        print the current analysis
  report [path] [pdf|markdown]  write a report of the current analysis
  quit                        leave the shell`

type shell struct {
	st          *session.State
	runner      *session.Runner
	pending     *session.Pending
	out         io.Writer
	newExternal func() (analysis.Analyzer, error)
}

func newShell(st *session.State, out io.Writer, newExternal func() (analysis.Analyzer, error)) *shell {
	return &shell{st: st, runner: session.NewRunner(logger), out: out, newExternal: newExternal}
}

func (s *shell) printf(format string, a ...any) { fmt.Fprintf(s.out, format, a...) }

func (s *shell) run(ctx context.Context, in io.Reader) error {
	s.printf("✓ %s\n", s.st.Ingest.Summary())
	s.printf("Type 'help' for commands.\n")
	sc := bufio.NewScanner(in)
	for {
		s.collect()
		s.printf("medintel> ")
		if !sc.Scan() {
			break
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		quit, err := s.exec(ctx, line)
		if err != nil {
			s.printf("✗ Error: %v\n", err)
		}
		if quit {
			break
		}
	}
	s.printf("\n")
	if s.pending != nil && !s.pending.Finished() {
		s.pending.Cancel()
	}
	return sc.Err()
}

// collect folds a finished background analysis into the state.
func (s *shell) collect() {
	if s.pending == nil || !s.pending.Finished() {
		return
	}
	p := s.pending
	s.pending = nil
	res, err := p.Wait(context.Background())
	s.apply(p, res, err)
}

func (s *shell) apply(p *session.Pending, res *analysis.Result, err error) {
	if err != nil {
		s.st = s.st.WithAnalysisError(err)
		s.printf("⚠ Warning: %v\n", err)
		if s.st.Analysis != nil {
			s.printf("  Keeping the previous %s analysis.\n", s.st.Analysis.Source)
		}
		return
	}
	s.st = s.st.WithAnalysis(res, p.Criteria)
	s.printf("✓ %s analysis ready (%d recommendations). Type 'show' to view.\n", res.Source, len(res.Recommendations))
}

func (s *shell) exec(ctx context.Context, line string) (bool, error) {
	fields := strings.Fields(line)
	switch strings.ToLower(fields[0]) {
	case "quit", "exit", "q":
		return true, nil
	case "help", "?":
		s.printf("%s\n", shellHelp)
	case "status":
		s.status()
	case "options":
		s.options()
	case "filter":
		return false, s.filter(fields[1:])
	case "reset":
		s.st = s.st.WithCriteria(filter.Reset())
		s.printf("✓ Filters cleared (%d records)\n", s.st.Filtered.Len())
	case "insights":
		return false, s.insights(fields[1:])
	case "charts":
		writeViewText(s.out, analysisView{Criteria: s.st.Criteria.String(), Records: s.st.Filtered.Len(), Charts: s.st.Charts()})
	case "analyze":
		return false, s.analyze(ctx, fields[1:])
	case "wait":
		if s.pending == nil {
			s.printf("No analysis running.\n")
			return false, nil
		}
		p := s.pending
		s.pending = nil
		res, err := p.Wait(ctx)
		s.apply(p, res, err)
	case "cancel":
		if s.pending == nil {
			s.printf("No analysis running.\n")
			return false, nil
		}
		s.pending.Cancel()
		s.printf("Cancel requested.\n")
	case "show":
		if s.st.Analysis == nil {
			s.printf("No analysis yet. Run 'analyze'.\n")
			return false, nil
		}
		writeResultText(s.out, s.st.Analysis)
		if s.st.Stale() {
			s.printf("⚠ Warning: computed for %s; filters are now %s\n", s.st.AnalyzedWith, s.st.Criteria)
		}
	case "report":
		return false, s.report(fields[1:])
	default:
		return false, fmt.Errorf("unknown command %q (try 'help')", fields[0])
	}
	return false, nil
}

func (s *shell) status() {
	s.printf("File: %s\n", s.st.Source)
	s.printf("Records: %d total, %d after filters\n", s.st.Base.Len(), s.st.Filtered.Len())
	s.printf("Filters: %s\n", s.st.Criteria)
	switch {
	case s.st.Analysis == nil:
		s.printf("Analysis: none\n")
	case s.st.Stale():
		s.printf("Analysis: %s (for %s)\n", s.st.Analysis.Source, s.st.AnalyzedWith)
	default:
		s.printf("Analysis: %s\n", s.st.Analysis.Source)
	}
	if s.pending != nil {
		s.printf("Running: %s analysis\n", s.pending.Source)
	}
	if s.st.LastError != nil {
		s.printf("Last error: %v\n", s.st.LastError)
	}
}

func (s *shell) options() {
	d := s.st.Base
	if start, end, ok := filter.Bounds(d); ok {
		s.printf("  %-12s %s .. %s\n", "date", start.Format(dataset.DateLayout), end.Format(dataset.DateLayout))
	}
	for _, f := range filter.Fields {
		s.printf("  %-12s %s\n", f, strings.Join(filter.Options(d, f), ", "))
	}
}

func shellField(name string) (dataset.Field, bool) {
	switch strings.ToLower(name) {
	case "platform":
		return dataset.FieldPlatform, true
	case "sentiment":
		return dataset.FieldSentiment, true
	case "location":
		return dataset.FieldLocation, true
	case "media", "media_type", "media-type", "mediatype":
		return dataset.FieldMediaType, true
	}
	return "", false
}

func (s *shell) filter(args []string) error {
	if len(args) < 2 {
		return errors.New("usage: filter <field> <value>")
	}
	name, value := strings.ToLower(args[0]), strings.Join(args[1:], " ")
	c := s.st.Criteria
	switch name {
	case "start", "end":
		var bound *time.Time
		if value != "-" {
			t, err := filter.ParseDate(value)
			if err != nil {
				return err
			}
			bound = &t
		}
		if name == "start" {
			c.Start = bound
		} else {
			c.End = bound
		}
	default:
		f, ok := shellField(name)
		if !ok {
			return fmt.Errorf("unknown filter field %q", args[0])
		}
		var err error
		if c, err = c.With(f, value); err != nil {
			return err
		}
	}
	s.st = s.st.WithCriteria(c)
	s.printf("✓ Filters: %s (%d records)\n", c, s.st.Filtered.Len())
	if s.st.Filtered.Empty() {
		s.printf("⚠ Warning: no records match the current filters\n")
	}
	return nil
}

func (s *shell) insights(args []string) error {
	cats := insight.All()
	if len(args) > 0 {
		c, err := insight.ParseCategory(args[0])
		if err != nil {
			return err
		}
		cats = []insight.Category{c}
	}
	for _, c := range cats {
		s.printf("%s:\n", c.Title())
		for _, line := range s.st.Insights(c) {
			s.printf("  • %s\n", line)
		}
	}
	return nil
}

func (s *shell) analyze(ctx context.Context, args []string) error {
	src := analysis.SourceRuleBased
	if len(args) > 0 {
		var err error
		if src, err = analysis.ParseSource(args[0]); err != nil {
			return err
		}
	}
	if src == analysis.SourceRuleBased {
		s.st = s.st.WithAnalysis(analysis.Recommend(s.st.Filtered), s.st.Criteria)
		writeResultText(s.out, s.st.Analysis)
		return nil
	}
	if s.pending != nil {
		s.printf("An analysis is already running; type 'wait' or 'cancel'.\n")
		return nil
	}
	a, err := s.newExternal()
	if err != nil {
		return err
	}
	s.pending = s.runner.Start(ctx, a, s.st.Filtered, s.st.Criteria)
	s.printf("⚙ External analysis started on %d records; keep working or type 'wait'.\n", s.st.Filtered.Len())
	return nil
}

func (s *shell) report(args []string) error {
	if s.st.Analysis == nil {
		return errors.New("no analysis yet; run 'analyze' first")
	}
	format := report.FormatPDF
	if len(args) > 1 {
		var err error
		if format, err = report.ParseFormat(args[1]); err != nil {
			return err
		}
	}
	path := format.DefaultFileName()
	if len(args) > 0 {
		path = args[0]
	}
	title := ""
	if cfg != nil {
		title = cfg.ReportTitle
	}
	c := s.st.AnalyzedWith
	d := filter.Apply(s.st.Base, c)
	doc := report.FromAnalysis(s.st.Analysis, report.Options{Title: title, Dataset: &d, Criteria: &c})
	if err := report.WriteFile(path, doc, format); err != nil {
		return err
	}
	s.printf("✓ Wrote %s report to %s\n", format, path)
	return nil
}
