package analysis

import (
	"context"
	"fmt"
	"strings"

	"github.com/KaramelBytes/medintel-cli/internal/aggregate"
	"github.com/KaramelBytes/medintel-cli/internal/dataset"
)

// Sentinels for an empty dataset.
const (
	NoDataSummary    = "No data available to generate a summary."
	NoRecommendation = "No specific campaign recommendations could be generated at this time. Consider uploading more data or adjusting filters."
)

// Sentiment labels the rules react to.
const (
	SentimentPositive = "Positive"
	SentimentNegative = "Negative"
	SentimentNeutral  = "Neutral"
)

// RuleEngine is the built-in Analyzer. It never fails.
type RuleEngine struct{}

// NewRuleEngine returns the rule-based analyzer.
func NewRuleEngine() *RuleEngine { return &RuleEngine{} }

func (RuleEngine) Source() Source { return SourceRuleBased }

func (RuleEngine) Analyze(_ context.Context, d dataset.Dataset) (*Result, error) {
	return Recommend(d), nil
}

// Recommend applies the fixed rule set to d. Summary fragments and
// recommendations appear in rule order.
func Recommend(d dataset.Dataset) *Result {
	if d.Empty() {
		return newResult(SourceRuleBased, NoDataSummary, []string{NoRecommendation})
	}
	var summary, recs []string

	summary = append(summary, fmt.Sprintf("Analyzed a total of %d posts with %d engagements.", d.Len(), d.TotalEngagements()))

	if s := aggregate.CategoryShare(d, dataset.FieldSentiment); len(s) > 0 {
		top := s[0]
		summary = append(summary, fmt.Sprintf("The dominant sentiment is '%s' (%.1f%%).", top.Category, top.Percent))
		switch {
		case top.Category == SentimentPositive && top.Percent > 60:
			recs = append(recs, "Leverage positive sentiment: Focus on replicating strategies from high-performing positive content. Consider user-generated content campaigns showcasing positive experiences.")
		case top.Category == SentimentNegative && top.Percent > 30:
			recs = append(recs, "Address negative sentiment: Actively monitor and respond to negative feedback. Investigate root causes and consider a proactive PR strategy.")
		case top.Category == SentimentNeutral && top.Percent > 50:
			recs = append(recs, "Boost engagement for neutral content: Experiment with more emotive language, compelling visuals, and clear calls to action to shift neutral sentiment towards positive.")
		}
	}

	if p := aggregate.SumByCategory(d, dataset.FieldPlatform, dataset.FieldEngagements); len(p) > 0 {
		top := p[0]
		summary = append(summary, fmt.Sprintf("'%s' is the highest engaging platform, contributing %d engagements.", top.Category, top.Sum))
		recs = append(recs, fmt.Sprintf("Optimize for '%s': Allocate more resources to content creation and advertising on this platform, as it currently delivers the highest engagement.", top.Category))
		if len(p) > 1 && float64(top.Sum) > float64(p[1].Sum)*2 {
			recs = append(recs, fmt.Sprintf("Explore underperforming platforms: Investigate why platforms like '%s' have significantly lower engagement compared to the top performer. Could there be an audience mismatch or content style issue?", p[1].Category))
		}
	}

	if m := aggregate.CategoryShare(d, dataset.FieldMediaType); len(m) > 0 {
		top := m[0]
		summary = append(summary, fmt.Sprintf("'%s' is the most frequently used media type.", top.Category))
		recs = append(recs, fmt.Sprintf("Double down on '%s': Since this is the most used media type, ensure its quality is top-notch and explore variations within this format.", top.Category))
		if len(m) > 1 && float64(top.Count) > float64(m[1].Count)*1.5 {
			recs = append(recs, "Diversify media types: If your content is heavily skewed towards one media type, consider experimenting with other formats to reach different audience segments or cater to varied consumption preferences.")
		}
	}

	switch aggregate.Trend(aggregate.SumByDate(d, dataset.FieldEngagements)) {
	case aggregate.Increasing:
		summary = append(summary, "Engagements show an increasing trend over time.")
		recs = append(recs, "Capitalize on growth: Identify factors contributing to the increasing engagement trend (e.g., successful campaigns, trending topics) and scale those efforts.")
	case aggregate.Decreasing:
		summary = append(summary, "Engagements show a decreasing trend over time.")
		recs = append(recs, "Reverse declining trends: Analyze periods of low engagement to understand potential causes (e.g., content fatigue, competitive activity) and devise strategies to re-engage the audience.")
	case aggregate.Stable:
		summary = append(summary, "Engagements show a relatively stable trend over time.")
	}

	if len(recs) == 0 {
		recs = []string{NoRecommendation}
	}
	return newResult(SourceRuleBased, strings.Join(summary, " "), recs)
}
