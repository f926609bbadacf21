package dataset

import (
	"math"
	"sort"
	"time"
)

// Unknown is substituted for any missing categorical value.
const Unknown = "Unknown"

// DateLayout is the calendar-date format used for display and serialization.
const DateLayout = "2006-01-02"

// Field names a logical column of a post record.
type Field string

const (
	FieldDate            Field = "date"
	FieldPlatform        Field = "platform"
	FieldSentiment       Field = "sentiment"
	FieldLocation        Field = "location"
	FieldEngagements     Field = "engagements"
	FieldMediaType       Field = "media_type"
	FieldInfluencerBrand Field = "influencer_brand"
	FieldPostType        Field = "post_type"
)

// RequiredFields lists every logical field in canonical column order.
var RequiredFields = []Field{
	FieldDate,
	FieldPlatform,
	FieldSentiment,
	FieldLocation,
	FieldEngagements,
	FieldMediaType,
	FieldInfluencerBrand,
	FieldPostType,
}

// IsCategorical reports whether f holds a string category.
func (f Field) IsCategorical() bool {
	switch f {
	case FieldPlatform, FieldSentiment, FieldLocation, FieldMediaType, FieldInfluencerBrand, FieldPostType:
		return true
	}
	return false
}

// IsNumeric reports whether f can be summed.
func (f Field) IsNumeric() bool { return f == FieldEngagements }

// Record is a cleaned, fully typed post.
type Record struct {
	Date            time.Time
	Platform        string
	Sentiment       string
	Location        string
	Engagements     int64
	MediaType       string
	InfluencerBrand string
	PostType        string
}

// Category returns the value of a categorical field.
func (r Record) Category(f Field) (string, bool) {
	switch f {
	case FieldPlatform:
		return r.Platform, true
	case FieldSentiment:
		return r.Sentiment, true
	case FieldLocation:
		return r.Location, true
	case FieldMediaType:
		return r.MediaType, true
	case FieldInfluencerBrand:
		return r.InfluencerBrand, true
	case FieldPostType:
		return r.PostType, true
	}
	return "", false
}

// Value returns the value of a numeric field.
func (r Record) Value(f Field) (int64, bool) {
	if f == FieldEngagements {
		return r.Engagements, true
	}
	return 0, false
}

// Map serializes the record as a field -> value mapping.
func (r Record) Map() map[string]any {
	return map[string]any{
		string(FieldDate):            r.Date.Format(DateLayout),
		string(FieldPlatform):        r.Platform,
		string(FieldSentiment):       r.Sentiment,
		string(FieldLocation):        r.Location,
		string(FieldEngagements):     r.Engagements,
		string(FieldMediaType):       r.MediaType,
		string(FieldInfluencerBrand): r.InfluencerBrand,
		string(FieldPostType):        r.PostType,
	}
}

// Dataset is an immutable, ordered collection of records.
// Derived datasets are new values; the backing slice is never modified.
type Dataset struct {
	records []Record
}

// New copies records into a dataset, preserving order.
func New(records []Record) Dataset {
	if len(records) == 0 {
		return Dataset{}
	}
	cp := make([]Record, len(records))
	copy(cp, records)
	return Dataset{records: cp}
}

// Len returns the number of records.
func (d Dataset) Len() int { return len(d.records) }

// Empty reports whether the dataset has no records.
func (d Dataset) Empty() bool { return len(d.records) == 0 }

// At returns the i-th record.
func (d Dataset) At(i int) Record { return d.records[i] }

// Records returns a copy of the records.
func (d Dataset) Records() []Record {
	out := make([]Record, len(d.records))
	copy(out, d.records)
	return out
}

// Where returns the records for which keep returns true, in order.
func (d Dataset) Where(keep func(Record) bool) Dataset {
	var out []Record
	for _, r := range d.records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return Dataset{records: out}
}

// Head returns at most n leading records.
func (d Dataset) Head(n int) Dataset {
	if n >= len(d.records) {
		return d
	}
	if n <= 0 {
		return Dataset{}
	}
	return Dataset{records: d.records[:n:n]}
}

// TotalEngagements sums engagements over all records.
func (d Dataset) TotalEngagements() int64 {
	var sum int64
	for _, r := range d.records {
		sum = AddEngagements(sum, r.Engagements)
	}
	return sum
}

// AddEngagements adds two non-negative engagement counts, saturating at
// math.MaxInt64 instead of wrapping.
func AddEngagements(a, b int64) int64 {
	if b > math.MaxInt64-a {
		return math.MaxInt64
	}
	return a + b
}

// DateRange returns the earliest and latest record dates.
func (d Dataset) DateRange() (first, last time.Time, ok bool) {
	if len(d.records) == 0 {
		return time.Time{}, time.Time{}, false
	}
	first, last = d.records[0].Date, d.records[0].Date
	for _, r := range d.records[1:] {
		if r.Date.Before(first) {
			first = r.Date
		}
		if r.Date.After(last) {
			last = r.Date
		}
	}
	return first, last, true
}

// Distinct returns the sorted distinct values of a categorical field.
func (d Dataset) Distinct(f Field) []string {
	if !f.IsCategorical() {
		return nil
	}
	seen := make(map[string]struct{})
	var out []string
	for _, r := range d.records {
		v, _ := r.Category(f)
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Day truncates t to its calendar date at midnight UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
