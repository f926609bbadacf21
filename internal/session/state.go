// Package session holds the interactive application state: the cleaned
// dataset, the current filter criteria with their filtered view, and the most
// recent analysis. State values are never mutated; every transition returns a
// new State.
package session

import (
	"github.com/KaramelBytes/medintel-cli/internal/analysis"
	"github.com/KaramelBytes/medintel-cli/internal/dataset"
	"github.com/KaramelBytes/medintel-cli/internal/filter"
	"github.com/KaramelBytes/medintel-cli/internal/insight"
	"github.com/KaramelBytes/medintel-cli/internal/normalize"
)

// State is a snapshot of one analysis session.
type State struct {
	Source   string
	Ingest   *normalize.Result
	Base     dataset.Dataset
	Criteria filter.Criteria
	Filtered dataset.Dataset

	// Analysis is the last successful result and AnalyzedWith the criteria
	// it was computed under.
	Analysis     *analysis.Result
	AnalyzedWith filter.Criteria
	// LastError is the most recent failed analysis; it never clears Analysis.
	LastError error
}

// New starts a session over an ingest result with match-all criteria.
func New(res *normalize.Result, source string) *State {
	s := &State{Source: source, Ingest: res, Criteria: filter.Reset()}
	if res != nil {
		s.Base = res.Dataset
	}
	s.Filtered = s.Base
	return s
}

// WithCriteria applies c to the base dataset. The current analysis is kept.
func (s *State) WithCriteria(c filter.Criteria) *State {
	cp := *s
	cp.Criteria = c
	cp.Filtered = filter.Apply(s.Base, c)
	return &cp
}

// WithAnalysis records a successful result computed under criteria c.
func (s *State) WithAnalysis(res *analysis.Result, c filter.Criteria) *State {
	cp := *s
	cp.Analysis = res
	cp.AnalyzedWith = c
	cp.LastError = nil
	return &cp
}

// WithAnalysisError records a failure and keeps the previous result.
func (s *State) WithAnalysisError(err error) *State {
	cp := *s
	cp.LastError = err
	return &cp
}

// Stale reports whether the criteria changed since the analysis ran.
func (s *State) Stale() bool {
	return s.Analysis != nil && s.AnalyzedWith.String() != s.Criteria.String()
}

// Insights returns the sentences for chart c over the filtered view.
func (s *State) Insights(c insight.Category) []string {
	return insight.Generate(c, s.Filtered)
}

// Charts builds all charts over the filtered view.
func (s *State) Charts() []insight.Chart {
	return insight.BuildCharts(s.Filtered)
}
