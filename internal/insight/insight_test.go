package insight

import (
	"strings"
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

func TestEmptyDatasetYieldsSentinel(t *testing.T) {
	for _, c := range All() {
		got := Generate(c, dataset.Dataset{})
		if len(got) != 1 || got[0] != NoData {
			t.Fatalf("%s: expected sentinel, got %v", c, got)
		}
	}
}

func TestUnknownCategoryFallback(t *testing.T) {
	got := Generate(Category("bogus"), scenario())
	if len(got) != 1 || got[0] != NoInsights {
		t.Fatalf("expected fallback, got %v", got)
	}
}

func TestAtMostThreeSentences(t *testing.T) {
	for _, c := range All() {
		if got := Generate(c, scenario()); len(got) == 0 || len(got) > 3 {
			t.Fatalf("%s: got %d sentences", c, len(got))
		}
	}
}

func TestEngagementTrendScenario(t *testing.T) {
	got := Generate(EngagementTrend, scenario())
	if len(got) != 3 {
		t.Fatalf("expected 3 sentences, got %v", got)
	}
	if !strings.Contains(got[0], "2024-01-02 with 250") {
		t.Fatalf("peak sentence: %s", got[0])
	}
	if !strings.Contains(got[1], "2024-01-01 with 100") {
		t.Fatalf("trough sentence: %s", got[1])
	}
	if !strings.Contains(got[2], "increasing trend") {
		t.Fatalf("trend sentence: %s", got[2])
	}
}

func TestSingleDateHasNoTrendSentence(t *testing.T) {
	d := dataset.New([]dataset.Record{{Date: day("2024-01-01"), Engagements: 3}})
	got := Generate(EngagementTrend, d)
	if len(got) != 2 {
		t.Fatalf("expected peak and trough only, got %v", got)
	}
}

func TestSentimentDegenerateCases(t *testing.T) {
	two := Generate(SentimentBreakdown, scenario())
	if len(two) != 3 {
		t.Fatalf("expected 3 sentences, got %v", two)
	}
	if two[0] != "The most dominant sentiment is 'Positive' with 66.67% of posts." {
		t.Fatalf("dominant sentence: %s", two[0])
	}
	if !strings.Contains(two[2], "notably less frequent") {
		t.Fatalf("two-category fallback missing: %v", two)
	}

	one := Generate(SentimentBreakdown, dataset.New([]dataset.Record{{Sentiment: "Neutral"}}))
	if len(one) != 1 || !strings.Contains(one[0], "'Neutral' with 100.00%") {
		t.Fatalf("single-category: %v", one)
	}

	four := dataset.New([]dataset.Record{
		{Sentiment: "Positive"}, {Sentiment: "Positive"}, {Sentiment: "Positive"},
		{Sentiment: "Neutral"}, {Sentiment: "Neutral"}, {Sentiment: "Negative"}, {Sentiment: "Mixed"},
	})
	got := Generate(SentimentBreakdown, four)
	if !strings.Contains(got[2], "top three is 'Negative' with 14.29%") {
		t.Fatalf("third sentence should name the third-ranked sentiment: %s", got[2])
	}
}

func TestPlatformAndLocationFallbacks(t *testing.T) {
	p := Generate(PlatformEngagements, scenario())
	if !strings.HasPrefix(p[0], "The platform 'X' generates the highest engagement with 200") {
		t.Fatalf("platform lead: %s", p[0])
	}
	if p[2] != "Engagement is heavily concentrated on a limited number of platforms." {
		t.Fatalf("platform fallback: %s", p[2])
	}
	l := Generate(TopLocations, scenario())
	if !strings.Contains(l[0], "'Jakarta' with 300") || !strings.Contains(l[2], "very small number of locations") {
		t.Fatalf("locations: %v", l)
	}
	m := Generate(MediaTypeMix, scenario())
	if !strings.Contains(m[0], "'Video' is the most frequently used media type, accounting for 66.67%") {
		t.Fatalf("media: %v", m)
	}
}

func TestParseCategoryAndCharts(t *testing.T) {
	c, err := ParseCategory(" Top-Locations ")
	if err != nil || c != TopLocations {
		t.Fatalf("ParseCategory = %v, %v", c, err)
	}
	if _, err := ParseCategory("pie"); err == nil {
		t.Fatalf("expected error for unknown chart")
	}
	charts := BuildCharts(scenario())
	if len(charts) != 5 {
		t.Fatalf("expected 5 charts, got %d", len(charts))
	}
	if len(charts[1].Series) != 2 || len(charts[0].Shares) != 2 || len(charts[2].Totals) != 2 {
		t.Fatalf("unexpected chart data: %+v", charts)
	}
}
