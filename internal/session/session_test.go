package session

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/KaramelBytes/medintel-cli/internal/analysis"
	"github.com/KaramelBytes/medintel-cli/internal/dataset"
	"github.com/KaramelBytes/medintel-cli/internal/filter"
	"github.com/KaramelBytes/medintel-cli/internal/insight"
	"github.com/KaramelBytes/medintel-cli/internal/normalize"
)

func ingest() *normalize.Result {
	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	d := dataset.New([]dataset.Record{
		{Date: day, Platform: "TikTok", Sentiment: "Positive", Location: "Jakarta", Engagements: 10, MediaType: "Video"},
		{Date: day.AddDate(0, 0, 1), Platform: "Instagram", Sentiment: "Negative", Location: "Bali", Engagements: 5, MediaType: "Image"},
	})
	return &normalize.Result{Dataset: d, Total: 2, Retained: 2}
}

func TestStateTransitions(t *testing.T) {
	s := New(ingest(), "posts.csv")
	if s.Filtered.Len() != 2 || !s.Criteria.IsMatchAll() {
		t.Fatalf("new state should show everything: %+v", s)
	}

	res := analysis.Recommend(s.Filtered)
	s2 := s.WithAnalysis(res, s.Criteria)
	if s.Analysis != nil {
		t.Fatalf("WithAnalysis mutated the previous state")
	}

	c, err := s2.Criteria.With(dataset.FieldPlatform, "TikTok")
	if err != nil {
		t.Fatal(err)
	}
	s3 := s2.WithCriteria(c)
	if s3.Filtered.Len() != 1 || s2.Filtered.Len() != 2 {
		t.Fatalf("filtered views: new=%d old=%d", s3.Filtered.Len(), s2.Filtered.Len())
	}
	if s3.Analysis != res || !s3.Stale() || s2.Stale() {
		t.Fatalf("criteria change should keep the analysis and mark it stale")
	}

	s4 := s3.WithAnalysisError(errors.New("boom"))
	if s4.Analysis != res || s4.LastError == nil {
		t.Fatalf("failure must keep the previous analysis")
	}
	if s5 := s4.WithAnalysis(res, s4.Criteria); s5.LastError != nil || s5.Stale() {
		t.Fatalf("success should clear the error and staleness")
	}

	if got := s3.Insights(insight.PlatformEngagements); len(got) == 0 || got[0] == insight.NoData {
		t.Fatalf("insights over filtered view: %v", got)
	}
	empty := s3.WithCriteria(filter.Criteria{Platform: "Nope"})
	if got := empty.Insights(insight.SentimentBreakdown); got[0] != insight.NoData {
		t.Fatalf("expected no-data sentinel, got %v", got)
	}
	if len(empty.Charts()) != len(insight.All()) {
		t.Fatalf("charts missing")
	}
}

type blockingAnalyzer struct {
	calls   int32
	release chan struct{}
}

func (b *blockingAnalyzer) Source() analysis.Source { return analysis.SourceExternal }

func (b *blockingAnalyzer) Analyze(ctx context.Context, d dataset.Dataset) (*analysis.Result, error) {
	atomic.AddInt32(&b.calls, 1)
	select {
	case <-b.release:
		return analysis.Recommend(d), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func TestRunnerSingleOutstanding(t *testing.T) {
	r := NewRunner(nil)
	a := &blockingAnalyzer{release: make(chan struct{})}
	d := ingest().Dataset

	p1 := r.Start(context.Background(), a, d, filter.Reset())
	p2 := r.Start(context.Background(), a, d, filter.Reset())
	if p1 != p2 {
		t.Fatalf("second start should join the outstanding run")
	}
	if r.Current() != p1 || p1.Finished() {
		t.Fatalf("run should be outstanding")
	}
	close(a.release)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	res, err := p1.Wait(ctx)
	if err != nil || res == nil {
		t.Fatalf("Wait = %v, %v", res, err)
	}
	if n := atomic.LoadInt32(&a.calls); n != 1 {
		t.Fatalf("analyzer called %d times", n)
	}
	if r.Current() != nil {
		t.Fatalf("finished run still reported as current")
	}

	p3 := r.Start(context.Background(), a, d, filter.Reset())
	if p3 == p1 {
		t.Fatalf("a finished run must not be reused")
	}
	if _, err := p3.Wait(ctx); err != nil {
		t.Fatalf("second run: %v", err)
	}
}

func TestRunnerCancel(t *testing.T) {
	r := NewRunner(nil)
	a := &blockingAnalyzer{release: make(chan struct{})}
	p := r.Start(context.Background(), a, ingest().Dataset, filter.Reset())
	p.Cancel()
	select {
	case <-p.Done():
	case <-time.After(2 * time.Second):
		t.Fatalf("cancel did not stop the run")
	}
	res, err := p.Wait(context.Background())
	if res != nil || !errors.Is(err, context.Canceled) {
		t.Fatalf("Wait after cancel = %v, %v", res, err)
	}
}

func TestWaitHonorsContext(t *testing.T) {
	r := NewRunner(nil)
	a := &blockingAnalyzer{release: make(chan struct{})}
	p := r.Start(context.Background(), a, ingest().Dataset, filter.Reset())
	defer p.Cancel()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := p.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}
