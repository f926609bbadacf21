package aggregate

import (
	"math"
	"testing"
	"time"

	"github.com/KaramelBytes/medintel-cli/internal/dataset"
)

func day(s string) time.Time {
	t, err := time.Parse(dataset.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func scenario() dataset.Dataset {
	return dataset.New([]dataset.Record{
		{Date: day("2024-01-01"), Platform: "TikTok", Sentiment: "Positive", Location: "Jakarta", Engagements: 100, MediaType: "Video"},
		{Date: day("2024-01-02"), Platform: "TikTok", Sentiment: "Negative", Location: "Bandung", Engagements: 50, MediaType: "Image"},
		{Date: day("2024-01-02"), Platform: "X", Sentiment: "Positive", Location: "Jakarta", Engagements: 200, MediaType: "Video"},
	})
}

func TestSumByDateScenario(t *testing.T) {
	got := SumByDate(scenario(), dataset.FieldEngagements)
	if len(got) != 2 {
		t.Fatalf("expected 2 points, got %+v", got)
	}
	if !got[0].Date.Equal(day("2024-01-01")) || got[0].Sum != 100 {
		t.Fatalf("first point = %+v", got[0])
	}
	if !got[1].Date.Equal(day("2024-01-02")) || got[1].Sum != 250 {
		t.Fatalf("second point = %+v", got[1])
	}
	if Trend(got) != Increasing {
		t.Fatalf("expected increasing trend")
	}
}

func TestSumByDateAscendingRegardlessOfInputOrder(t *testing.T) {
	d := dataset.New([]dataset.Record{
		{Date: day("2024-02-03"), Engagements: 1},
		{Date: day("2024-02-01"), Engagements: 2},
		{Date: day("2024-02-03"), Engagements: 3},
	})
	got := SumByDate(d, dataset.FieldEngagements)
	if len(got) != 2 || !got[0].Date.Equal(day("2024-02-01")) || got[1].Sum != 4 {
		t.Fatalf("unexpected series: %+v", got)
	}
}

func TestTopPlatformScenario(t *testing.T) {
	got := SumByCategory(scenario(), dataset.FieldPlatform, dataset.FieldEngagements)
	if len(got) != 2 || got[0].Category != "X" || got[0].Sum != 200 || got[1].Category != "TikTok" || got[1].Sum != 150 {
		t.Fatalf("unexpected totals: %+v", got)
	}
}

func TestCategoryShareSumsTo100(t *testing.T) {
	d := dataset.New([]dataset.Record{
		{Sentiment: "Positive"}, {Sentiment: "Negative"}, {Sentiment: "Neutral"},
		{Sentiment: "Positive"}, {Sentiment: "Neutral"}, {Sentiment: "Positive"}, {Sentiment: "Mixed"},
	})
	shares := CategoryShare(d, dataset.FieldSentiment)
	var total float64
	for _, s := range shares {
		total += s.Percent
	}
	if math.Abs(total-100) > 1e-9 {
		t.Fatalf("shares sum to %v", total)
	}
	if shares[0].Category != "Positive" || shares[0].Count != 3 {
		t.Fatalf("unexpected top share: %+v", shares[0])
	}
}

func TestTiesKeepFirstAppearanceOrder(t *testing.T) {
	d := dataset.New([]dataset.Record{
		{Platform: "B", Engagements: 10, MediaType: "Image"},
		{Platform: "A", Engagements: 10, MediaType: "Video"},
		{Platform: "C", Engagements: 5, MediaType: "Text"},
		{Platform: "D", Engagements: 10, MediaType: "Video"},
		{Platform: "C", Engagements: 5, MediaType: "Image"},
	})
	top := TopN(d, dataset.FieldPlatform, dataset.FieldEngagements, 3)
	got := []string{top[0].Category, top[1].Category, top[2].Category}
	want := []string{"B", "A", "C"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("tie order = %v, want %v", got, want)
		}
	}
	shares := CategoryShare(d, dataset.FieldMediaType)
	if shares[0].Category != "Image" || shares[1].Category != "Video" || shares[2].Category != "Text" {
		t.Fatalf("share tie order = %+v", shares)
	}
}

func TestTopNBounds(t *testing.T) {
	d := scenario()
	if TopN(d, dataset.FieldLocation, dataset.FieldEngagements, 0) != nil {
		t.Fatalf("n=0 should be nil")
	}
	if got := TopN(d, dataset.FieldLocation, dataset.FieldEngagements, 5); len(got) != 2 {
		t.Fatalf("expected 2 locations, got %+v", got)
	}
}

func TestInvalidFieldsAndEmpty(t *testing.T) {
	d := scenario()
	if CategoryShare(d, dataset.FieldEngagements) != nil {
		t.Fatalf("numeric field is not categorical")
	}
	if SumByCategory(d, dataset.FieldPlatform, dataset.FieldSentiment) != nil {
		t.Fatalf("sentiment is not numeric")
	}
	var empty dataset.Dataset
	if CategoryShare(empty, dataset.FieldSentiment) != nil || SumByDate(empty, dataset.FieldEngagements) != nil {
		t.Fatalf("empty dataset should aggregate to nil")
	}
}

func TestTrend(t *testing.T) {
	mk := func(sums ...int64) []DatePoint {
		out := make([]DatePoint, len(sums))
		for i, s := range sums {
			out[i] = DatePoint{Date: day("2024-01-01").AddDate(0, 0, i), Sum: s}
		}
		return out
	}
	cases := []struct {
		name string
		in   []DatePoint
		want Direction
	}{
		{"single", mk(5), Flat},
		{"up", mk(100, 111), Increasing},
		{"edge up", mk(100, 110), Stable},
		{"down", mk(100, 89), Decreasing},
		{"edge down", mk(100, 90), Stable},
		{"ignores middle", mk(100, 1000, 100), Stable},
		{"from zero", mk(0, 1), Increasing},
	}
	for _, c := range cases {
		if got := Trend(c.in); got != c.want {
			t.Errorf("%s: got %v, want %v", c.name, got, c.want)
		}
	}
}

func TestPeakAndTroughFirstOccurrence(t *testing.T) {
	pts := []DatePoint{{Date: day("2024-01-01"), Sum: 5}, {Date: day("2024-01-02"), Sum: 9}, {Date: day("2024-01-03"), Sum: 9}, {Date: day("2024-01-04"), Sum: 5}}
	p, _ := Peak(pts)
	lo, _ := Trough(pts)
	if !p.Date.Equal(day("2024-01-02")) || !lo.Date.Equal(day("2024-01-01")) {
		t.Fatalf("peak=%v trough=%v", p.Date, lo.Date)
	}
	if _, ok := Peak(nil); ok {
		t.Fatalf("expected no peak for empty series")
	}
}

func TestSumsSaturateInsteadOfWrapping(t *testing.T) {
	d := dataset.New([]dataset.Record{
		{Date: day("2024-01-01"), Platform: "X", Engagements: math.MaxInt64},
		{Date: day("2024-01-01"), Platform: "X", Engagements: math.MaxInt64},
		{Date: day("2024-01-02"), Platform: "TikTok", Engagements: 5},
	})
	byCat := SumByCategory(d, dataset.FieldPlatform, dataset.FieldEngagements)
	if len(byCat) != 2 || byCat[0].Category != "X" || byCat[0].Sum != math.MaxInt64 {
		t.Fatalf("unexpected totals: %+v", byCat)
	}
	byDate := SumByDate(d, dataset.FieldEngagements)
	if len(byDate) != 2 || byDate[0].Sum != math.MaxInt64 || byDate[1].Sum != 5 {
		t.Fatalf("unexpected series: %+v", byDate)
	}
}
