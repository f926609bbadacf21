package insight

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/medintel-cli/internal/aggregate"
	"github.com/KaramelBytes/medintel-cli/internal/dataset"
)

// Sentinel sentences.
const (
	NoData     = "No data available to generate insights for this chart."
	NoInsights = "No specific insights available for this chart type."
)

// Category identifies one of the five dashboard charts.
type Category string

const (
	SentimentBreakdown  Category = "sentiment"
	EngagementTrend     Category = "trend"
	PlatformEngagements Category = "platform"
	MediaTypeMix        Category = "media"
	TopLocations        Category = "locations"
)

// All returns the chart categories in display order.
func All() []Category {
	return []Category{SentimentBreakdown, EngagementTrend, PlatformEngagements, MediaTypeMix, TopLocations}
}

// Title returns the chart title.
func (c Category) Title() string {
	switch c {
	case SentimentBreakdown:
		return "Sentiment Breakdown"
	case EngagementTrend:
		return "Engagement Trend over Time"
	case PlatformEngagements:
		return "Platform Engagements"
	case MediaTypeMix:
		return "Media Type Mix"
	case TopLocations:
		return "Top 5 Locations"
	}
	return string(c)
}

// ParseCategory accepts a category key or a loose alias.
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sentiment", "sentiment-breakdown":
		return SentimentBreakdown, nil
	case "trend", "engagement-trend", "engagements":
		return EngagementTrend, nil
	case "platform", "platforms", "platform-engagements":
		return PlatformEngagements, nil
	case "media", "media-type", "media-type-mix":
		return MediaTypeMix, nil
	case "locations", "location", "top-locations":
		return TopLocations, nil
	}
	return "", fmt.Errorf("unknown chart %q (use sentiment|trend|platform|media|locations)", s)
}

// Generate returns at most three sentences describing chart c over d.
func Generate(c Category, d dataset.Dataset) []string {
	if d.Empty() {
		return []string{NoData}
	}
	var out []string
	switch c {
	case SentimentBreakdown:
		out = sentiment(aggregate.CategoryShare(d, dataset.FieldSentiment))
	case EngagementTrend:
		out = trend(aggregate.SumByDate(d, dataset.FieldEngagements))
	case PlatformEngagements:
		out = platforms(aggregate.TopN(d, dataset.FieldPlatform, dataset.FieldEngagements, 3))
	case MediaTypeMix:
		out = media(aggregate.CategoryShare(d, dataset.FieldMediaType))
	case TopLocations:
		out = locations(aggregate.TopN(d, dataset.FieldLocation, dataset.FieldEngagements, 5))
	}
	if len(out) == 0 {
		return []string{NoInsights}
	}
	if len(out) > 3 {
		out = out[:3]
	}
	return out
}

func sentiment(s []aggregate.Share) []string {
	if len(s) == 0 {
		return nil
	}
	out := []string{fmt.Sprintf("The most dominant sentiment is '%s' with %.2f%% of posts.", s[0].Category, s[0].Percent)}
	if len(s) > 1 {
		out = append(out, fmt.Sprintf("The second most common sentiment is '%s' representing %.2f%% of posts.", s[1].Category, s[1].Percent))
	}
	switch {
	case len(s) > 2:
		out = append(out, fmt.Sprintf("The least common sentiment among the top three is '%s' with %.2f%%.", s[2].Category, s[2].Percent))
	case len(s) == 2:
		out = append(out, fmt.Sprintf("The second sentiment, '%s', is notably less frequent than the dominant one.", s[1].Category))
	}
	return out
}

func trend(points []aggregate.DatePoint) []string {
	peak, ok := aggregate.Peak(points)
	if !ok {
		return []string{"Not enough data points to determine a clear engagement trend."}
	}
	low, _ := aggregate.Trough(points)
	out := []string{
		fmt.Sprintf("Peak engagement occurred on %s with %d total engagements, indicating a significant event or campaign around that time.",
			peak.Date.Format(dataset.DateLayout), peak.Sum),
		fmt.Sprintf("Lowest engagement occurred on %s with %d total engagements, potentially due to low activity or off-peak periods.",
			low.Date.Format(dataset.DateLayout), low.Sum),
	}
	switch aggregate.Trend(points) {
	case aggregate.Increasing:
		out = append(out, "Overall, there appears to be an increasing trend in engagements over the analyzed period.")
	case aggregate.Decreasing:
		out = append(out, "Overall, there appears to be a decreasing trend in engagements over the analyzed period.")
	case aggregate.Stable:
		out = append(out, "Engagements show a relatively stable trend over time.")
	}
	return out
}

func platforms(top []aggregate.Total) []string {
	if len(top) == 0 {
		return nil
	}
	out := []string{fmt.Sprintf("The platform '%s' generates the highest engagement with %d total engagements, making it the most effective channel.",
		top[0].Category, top[0].Sum)}
	if len(top) > 1 {
		out = append(out, fmt.Sprintf("'%s' is the second highest platform, indicating its significant contribution to overall engagement.", top[1].Category))
	}
	if len(top) > 2 {
		out = append(out, fmt.Sprintf("The top three platforms ('%s', '%s', '%s') collectively capture a large majority of total engagements.",
			top[0].Category, top[1].Category, top[2].Category))
	} else {
		out = append(out, "Engagement is heavily concentrated on a limited number of platforms.")
	}
	return out
}

func media(s []aggregate.Share) []string {
	if len(s) == 0 {
		return nil
	}
	out := []string{fmt.Sprintf("'%s' is the most frequently used media type, accounting for %.2f%% of content.", s[0].Category, s[0].Percent)}
	if len(s) > 1 {
		out = append(out, fmt.Sprintf("The second most common media type is '%s', suggesting its importance in content strategy.", s[1].Category))
	}
	if len(s) > 2 {
		out = append(out, fmt.Sprintf("There's a diverse mix of media types, but the top three ('%s', '%s', '%s') dominate content creation.",
			s[0].Category, s[1].Category, s[2].Category))
	} else {
		out = append(out, "The content strategy appears focused on a few primary media types.")
	}
	return out
}

func locations(top []aggregate.Total) []string {
	if len(top) == 0 {
		return nil
	}
	out := []string{fmt.Sprintf("The top location by engagement is '%s' with %d total engagements, highlighting a key geographic market.",
		top[0].Category, top[0].Sum)}
	if len(top) > 1 {
		out = append(out, fmt.Sprintf("'%s' is the second most engaging location, indicating strong audience presence there.", top[1].Category))
	}
	if len(top) > 2 {
		out = append(out, "The top locations show concentrated engagement, suggesting specific regional marketing efforts could be highly effective.")
	} else {
		out = append(out, "Engagement is highly concentrated in a very small number of locations.")
	}
	return out
}
