package insight

import (
	"github.com/KaramelBytes/medintel-cli/internal/aggregate"
	"github.com/KaramelBytes/medintel-cli/internal/dataset"
)

// Chart is the data behind one chart plus its insight sentences.
// Exactly one of Shares, Totals or Series is set for a non-empty dataset.
type Chart struct {
	Category Category              `json:"category"`
	Title    string                `json:"title"`
	Shares   []aggregate.Share     `json:"shares,omitempty"`
	Totals   []aggregate.Total     `json:"totals,omitempty"`
	Series   []aggregate.DatePoint `json:"series,omitempty"`
	Insights []string              `json:"insights"`
}

// BuildChart computes the aggregation for c and its insights.
func BuildChart(c Category, d dataset.Dataset) Chart {
	ch := Chart{Category: c, Title: c.Title(), Insights: Generate(c, d)}
	switch c {
	case SentimentBreakdown:
		ch.Shares = aggregate.CategoryShare(d, dataset.FieldSentiment)
	case EngagementTrend:
		ch.Series = aggregate.SumByDate(d, dataset.FieldEngagements)
	case PlatformEngagements:
		ch.Totals = aggregate.SumByCategory(d, dataset.FieldPlatform, dataset.FieldEngagements)
	case MediaTypeMix:
		ch.Shares = aggregate.CategoryShare(d, dataset.FieldMediaType)
	case TopLocations:
		ch.Totals = aggregate.TopN(d, dataset.FieldLocation, dataset.FieldEngagements, 5)
	}
	return ch
}

// BuildCharts builds every chart in display order.
func BuildCharts(d dataset.Dataset) []Chart {
	cats := All()
	out := make([]Chart, len(cats))
	for i, c := range cats {
		out[i] = BuildChart(c, d)
	}
	return out
}
