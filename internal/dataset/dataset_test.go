package dataset

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"
)

func day(s string) time.Time {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestNewCopiesInput(t *testing.T) {
	in := []Record{{Date: day("2024-01-01"), Platform: "TikTok"}}
	d := New(in)
	in[0].Platform = "X"
	if got := d.At(0).Platform; got != "TikTok" {
		t.Fatalf("dataset aliased caller slice: got %q", got)
	}
	recs := d.Records()
	recs[0].Platform = "Instagram"
	if got := d.At(0).Platform; got != "TikTok" {
		t.Fatalf("Records() aliased backing slice: got %q", got)
	}
}

func TestDistinctAndDateRange(t *testing.T) {
	d := New([]Record{
		{Date: day("2024-01-03"), Platform: "X"},
		{Date: day("2024-01-01"), Platform: "TikTok"},
		{Date: day("2024-01-02"), Platform: "X"},
	})
	got := d.Distinct(FieldPlatform)
	if strings.Join(got, ",") != "TikTok,X" {
		t.Fatalf("distinct = %v", got)
	}
	if d.Distinct(FieldEngagements) != nil {
		t.Fatalf("expected nil distinct for numeric field")
	}
	first, last, ok := d.DateRange()
	if !ok || !first.Equal(day("2024-01-01")) || !last.Equal(day("2024-01-03")) {
		t.Fatalf("range = %v..%v ok=%v", first, last, ok)
	}
	if _, _, ok := (Dataset{}).DateRange(); ok {
		t.Fatalf("expected no range for empty dataset")
	}
}

func TestHeadAndWhere(t *testing.T) {
	d := New([]Record{{Engagements: 1}, {Engagements: 2}, {Engagements: 3}})
	if d.Head(2).Len() != 2 || d.Head(10).Len() != 3 || d.Head(0).Len() != 0 {
		t.Fatalf("unexpected Head lengths")
	}
	odd := d.Where(func(r Record) bool { return r.Engagements%2 == 1 })
	if odd.Len() != 2 || odd.At(1).Engagements != 3 {
		t.Fatalf("Where = %+v", odd.Records())
	}
	if d.TotalEngagements() != 6 {
		t.Fatalf("total = %d", d.TotalEngagements())
	}
}

func TestWriteCSV(t *testing.T) {
	d := New([]Record{{
		Date: day("2024-01-01"), Platform: "TikTok", Sentiment: "Positive", Location: "Jakarta",
		Engagements: 100, MediaType: "Video", InfluencerBrand: "Brand, Inc", PostType: Unknown,
	}})
	var buf bytes.Buffer
	if err := WriteCSV(&buf, d); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	want := "date,platform,sentiment,location,engagements,media_type,influencer_brand,post_type\n" +
		"2024-01-01,TikTok,Positive,Jakarta,100,Video,\"Brand, Inc\",Unknown\n"
	if buf.String() != want {
		t.Fatalf("csv mismatch:\n%s", buf.String())
	}
}

func TestAddEngagementsSaturates(t *testing.T) {
	if got := AddEngagements(2, 3); got != 5 {
		t.Fatalf("AddEngagements(2, 3) = %d", got)
	}
	if got := AddEngagements(math.MaxInt64-1, 2); got != math.MaxInt64 {
		t.Fatalf("expected saturation, got %d", got)
	}
	d := New([]Record{{Engagements: math.MaxInt64}, {Engagements: math.MaxInt64}})
	if got := d.TotalEngagements(); got != math.MaxInt64 {
		t.Fatalf("TotalEngagements wrapped: %d", got)
	}
}
