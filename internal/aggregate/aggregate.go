// Package aggregate implements the grouping and ranking operations shared by
// insights, recommendations and chart output.
//
// Groups are created in first-appearance order over the input dataset and
// ranked with a stable sort, so categories with equal values keep the order
// in which they first appeared.
package aggregate

import (
	"sort"
	"time"

	"github.com/KaramelBytes/medintel-cli/internal/dataset"
)

// Share is one category's share of records.
type Share struct {
	Category string  `json:"category"`
	Count    int     `json:"count"`
	Percent  float64 `json:"percent"`
}

// Total is one category's summed value.
type Total struct {
	Category string `json:"category"`
	Sum      int64  `json:"sum"`
}

// DatePoint is the summed value for one calendar date.
type DatePoint struct {
	Date time.Time `json:"date"`
	Sum  int64     `json:"sum"`
}

// CategoryShare returns each category's percentage of records, descending.
func CategoryShare(d dataset.Dataset, field dataset.Field) []Share {
	if d.Empty() || !field.IsCategorical() {
		return nil
	}
	index := map[string]int{}
	var out []Share
	for i := 0; i < d.Len(); i++ {
		cat, _ := d.At(i).Category(field)
		j, ok := index[cat]
		if !ok {
			j = len(out)
			index[cat] = j
			out = append(out, Share{Category: cat})
		}
		out[j].Count++
	}
	total := float64(d.Len())
	for i := range out {
		out[i].Percent = 100 * float64(out[i].Count) / total
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Count > out[b].Count })
	return out
}

// SumByCategory sums valueField per category of field, descending.
func SumByCategory(d dataset.Dataset, field, valueField dataset.Field) []Total {
	if d.Empty() || !field.IsCategorical() || !valueField.IsNumeric() {
		return nil
	}
	index := map[string]int{}
	var out []Total
	for i := 0; i < d.Len(); i++ {
		r := d.At(i)
		cat, _ := r.Category(field)
		v, _ := r.Value(valueField)
		j, ok := index[cat]
		if !ok {
			j = len(out)
			index[cat] = j
			out = append(out, Total{Category: cat})
		}
		out[j].Sum = dataset.AddEngagements(out[j].Sum, v)
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Sum > out[b].Sum })
	return out
}

// TopN returns the n categories with the largest sums.
func TopN(d dataset.Dataset, field, valueField dataset.Field, n int) []Total {
	if n <= 0 {
		return nil
	}
	out := SumByCategory(d, field, valueField)
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// SumByDate sums valueField per calendar date, ascending by date.
// Dates without records are omitted.
func SumByDate(d dataset.Dataset, valueField dataset.Field) []DatePoint {
	if d.Empty() || !valueField.IsNumeric() {
		return nil
	}
	index := map[time.Time]int{}
	var out []DatePoint
	for i := 0; i < d.Len(); i++ {
		r := d.At(i)
		day := dataset.Day(r.Date)
		v, _ := r.Value(valueField)
		j, ok := index[day]
		if !ok {
			j = len(out)
			index[day] = j
			out = append(out, DatePoint{Date: day})
		}
		out[j].Sum = dataset.AddEngagements(out[j].Sum, v)
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Date.Before(out[b].Date) })
	return out
}
