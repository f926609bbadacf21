package filter

import (
	"fmt"
	"strings"
	"time"

	"github.com/KaramelBytes/medintel-cli/internal/dataset"
	"github.com/araddon/dateparse"
)

// MatchAll is the categorical value that imposes no constraint.
const MatchAll = "All"

// Criteria selects records by an inclusive date range and exact categorical values.
// Empty strings and MatchAll disable a categorical constraint; nil dates are open bounds.
type Criteria struct {
	Start     *time.Time `json:"start,omitempty"`
	End       *time.Time `json:"end,omitempty"`
	Platform  string     `json:"platform,omitempty"`
	Sentiment string     `json:"sentiment,omitempty"`
	Location  string     `json:"location,omitempty"`
	MediaType string     `json:"media_type,omitempty"`
}

// Reset returns criteria that match every record.
func Reset() Criteria {
	return Criteria{Platform: MatchAll, Sentiment: MatchAll, Location: MatchAll, MediaType: MatchAll}
}

// Fields lists the categorical fields a Criteria can constrain.
var Fields = []dataset.Field{dataset.FieldPlatform, dataset.FieldSentiment, dataset.FieldLocation, dataset.FieldMediaType}

// Value returns the constraint for a categorical field.
func (c Criteria) Value(f dataset.Field) string {
	switch f {
	case dataset.FieldPlatform:
		return c.Platform
	case dataset.FieldSentiment:
		return c.Sentiment
	case dataset.FieldLocation:
		return c.Location
	case dataset.FieldMediaType:
		return c.MediaType
	}
	return ""
}

// With returns a copy of c with the constraint for f replaced.
func (c Criteria) With(f dataset.Field, value string) (Criteria, error) {
	value = strings.TrimSpace(value)
	switch f {
	case dataset.FieldPlatform:
		c.Platform = value
	case dataset.FieldSentiment:
		c.Sentiment = value
	case dataset.FieldLocation:
		c.Location = value
	case dataset.FieldMediaType:
		c.MediaType = value
	default:
		return c, fmt.Errorf("field %q cannot be filtered", f)
	}
	return c, nil
}

// IsMatchAll reports whether c imposes no constraint at all.
func (c Criteria) IsMatchAll() bool {
	if c.Start != nil || c.End != nil {
		return false
	}
	for _, f := range Fields {
		if !isAll(c.Value(f)) {
			return false
		}
	}
	return true
}

// Matches reports whether r satisfies every active constraint.
func (c Criteria) Matches(r dataset.Record) bool {
	day := dataset.Day(r.Date)
	if c.Start != nil && day.Before(dataset.Day(*c.Start)) {
		return false
	}
	if c.End != nil && day.After(dataset.Day(*c.End)) {
		return false
	}
	for _, f := range Fields {
		want := strings.TrimSpace(c.Value(f))
		if isAll(want) {
			continue
		}
		if got, _ := r.Category(f); got != want {
			return false
		}
	}
	return true
}

// String describes the active constraints.
func (c Criteria) String() string {
	var parts []string
	if c.Start != nil || c.End != nil {
		from, to := "*", "*"
		if c.Start != nil {
			from = c.Start.Format(dataset.DateLayout)
		}
		if c.End != nil {
			to = c.End.Format(dataset.DateLayout)
		}
		parts = append(parts, fmt.Sprintf("date=%s..%s", from, to))
	}
	for _, f := range Fields {
		if v := c.Value(f); !isAll(v) {
			parts = append(parts, fmt.Sprintf("%s=%s", f, v))
		}
	}
	if len(parts) == 0 {
		return "all records"
	}
	return strings.Join(parts, ", ")
}

// Apply returns the records of d that match c, in their original order.
// An all-match-all criteria returns d itself.
func Apply(d dataset.Dataset, c Criteria) dataset.Dataset {
	if c.IsMatchAll() {
		return d
	}
	return d.Where(c.Matches)
}

// Options returns MatchAll followed by the sorted distinct values of f.
func Options(d dataset.Dataset, f dataset.Field) []string {
	return append([]string{MatchAll}, d.Distinct(f)...)
}

// Bounds returns the default date range covering d.
func Bounds(d dataset.Dataset) (start, end time.Time, ok bool) {
	return d.DateRange()
}

// ParseDate parses a filter bound and truncates it to the calendar day.
func ParseDate(s string) (t time.Time, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	defer func() {
		if r := recover(); r != nil {
			t, err = time.Time{}, fmt.Errorf("parse date %q: %v", s, r)
		}
	}()
	parsed, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return dataset.Day(parsed), nil
}

func isAll(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || v == MatchAll
}
