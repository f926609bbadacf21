package normalize

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/KaramelBytes/medintel-cli/internal/dataset"
	"github.com/araddon/dateparse"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// RawRow is one untyped input row keyed by header text as it appears in the file.
type RawRow map[string]string

// Options controls how raw tabular input is read and coerced.
type Options struct {
	// MaxRows limits data rows read; 0 means unlimited.
	MaxRows int
	// Delimiter for CSV. If 0, '\t' for .tsv files and ',' otherwise.
	Delimiter rune
	// Numeric parsing locale for engagements.
	DecimalSeparator   rune
	ThousandsSeparator rune
	// Location used for dates without an explicit zone. Defaults to UTC.
	Location *time.Location
	// Sheet selects the XLSX worksheet by name; empty means the first sheet.
	Sheet string
}

// DefaultOptions returns reasonable defaults for post exports.
func DefaultOptions() Options {
	return Options{
		DecimalSeparator:   '.',
		ThousandsSeparator: ',',
		Location:           time.UTC,
	}
}

// SchemaError reports required logical fields that no header resolved to.
type SchemaError struct {
	Missing []dataset.Field
}

func (e *SchemaError) Error() string {
	names := make([]string, len(e.Missing))
	for i, f := range e.Missing {
		names[i] = string(f)
	}
	return fmt.Sprintf("missing required column(s): %s", strings.Join(names, ", "))
}

// Result is the outcome of normalizing one input.
type Result struct {
	Dataset        dataset.Dataset
	Total          int
	Retained       int
	DroppedBadDate int
	// Columns maps each logical field to the header it was read from.
	Columns  map[dataset.Field]string
	Warnings []string
}

// Summary describes the cleaning outcome in one line.
func (r *Result) Summary() string {
	return fmt.Sprintf("Found %d records; %d valid after cleaning (%d dropped for unparseable date)",
		r.Total, r.Retained, r.DroppedBadDate)
}

// NormalizeFile reads and normalizes a CSV, TSV or XLSX file.
func NormalizeFile(path string, opt Options) (*Result, error) {
	if isXLSX(path) {
		rows, header, err := ReadXLSXFile(path, opt)
		if err != nil {
			return nil, err
		}
		return Normalize(rows, header, opt)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	if opt.Delimiter == 0 {
		opt.Delimiter = sniffDelimiter(path)
	}
	return NormalizeCSV(f, opt)
}

// NormalizeCSV reads CSV input and normalizes it.
func NormalizeCSV(r io.Reader, opt Options) (*Result, error) {
	rows, header, err := ReadCSV(r, opt)
	if err != nil {
		return nil, err
	}
	return Normalize(rows, header, opt)
}

// ReadCSV reads a header row and the data rows that follow it.
func ReadCSV(r io.Reader, opt Options) ([]RawRow, []string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comma = opt.Delimiter
	if cr.Comma == 0 {
		cr.Comma = ','
	}

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("read header: %w", err)
	}
	header = append([]string(nil), header...)
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	var rows []RawRow
	for line := 1; len(rows) < maxRows(opt); line++ {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, nil, fmt.Errorf("read row %d: %w", line, err)
		}
		rows = append(rows, rawRow(header, rec))
	}
	return rows, header, nil
}

func maxRows(opt Options) int {
	if opt.MaxRows <= 0 {
		return math.MaxInt
	}
	return opt.MaxRows
}

// rawRow keys rec by header. Short records are padded with empty cells and
// the first of several identically named columns wins.
func rawRow(header, rec []string) RawRow {
	row := make(RawRow, len(header))
	for j, name := range header {
		if _, dup := row[name]; dup {
			continue
		}
		if j < len(rec) {
			row[name] = rec[j]
		} else {
			row[name] = ""
		}
	}
	return row
}

// Normalize resolves the header to logical fields and coerces every row.
// Rows with a missing or unparseable date are dropped and counted.
func Normalize(rows []RawRow, columns []string, opt Options) (*Result, error) {
	cols, warnings := resolveColumns(columns)
	var missing []dataset.Field
	for _, f := range dataset.RequiredFields {
		if _, ok := cols[f]; !ok {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return nil, &SchemaError{Missing: missing}
	}
	loc := opt.Location
	if loc == nil {
		loc = time.UTC
	}

	res := &Result{Total: len(rows), Columns: cols, Warnings: warnings}
	records := make([]dataset.Record, 0, len(rows))
	for _, row := range rows {
		date, ok := parseDate(row[cols[dataset.FieldDate]], loc)
		if !ok {
			res.DroppedBadDate++
			continue
		}
		records = append(records, dataset.Record{
			Date:            date,
			Platform:        category(row[cols[dataset.FieldPlatform]]),
			Sentiment:       category(row[cols[dataset.FieldSentiment]]),
			Location:        category(row[cols[dataset.FieldLocation]]),
			Engagements:     parseEngagements(row[cols[dataset.FieldEngagements]], opt),
			MediaType:       category(row[cols[dataset.FieldMediaType]]),
			InfluencerBrand: category(row[cols[dataset.FieldInfluencerBrand]]),
			PostType:        category(row[cols[dataset.FieldPostType]]),
		})
	}
	res.Dataset = dataset.New(records)
	res.Retained = res.Dataset.Len()
	return res, nil
}

// CanonicalKey folds a header name so that case, width, whitespace,
// underscores and hyphens do not matter.
func CanonicalKey(name string) string {
	s := cases.Fold().String(norm.NFKC.String(name))
	var b strings.Builder
	for _, r := range s {
		if unicode.IsSpace(r) || r == '_' || r == '-' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func resolveColumns(columns []string) (map[dataset.Field]string, []string) {
	want := make(map[string]dataset.Field, len(dataset.RequiredFields))
	for _, f := range dataset.RequiredFields {
		want[CanonicalKey(string(f))] = f
	}
	cols := make(map[dataset.Field]string)
	var warnings []string
	for _, name := range columns {
		f, ok := want[CanonicalKey(name)]
		if !ok {
			continue
		}
		if prev, taken := cols[f]; taken {
			warnings = append(warnings, fmt.Sprintf("column %q also maps to %s; using %q", name, f, prev))
			continue
		}
		cols[f] = name
	}
	return cols, warnings
}

func category(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return dataset.Unknown
	}
	return v
}

func parseDate(v string, loc *time.Location) (t time.Time, ok bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, false
	}
	// dateparse panics on some malformed inputs.
	defer func() {
		if recover() != nil {
			t, ok = time.Time{}, false
		}
	}()
	parsed, err := dateparse.ParseIn(v, loc)
	if err != nil || parsed.IsZero() {
		return time.Time{}, false
	}
	return dataset.Day(parsed), true
}

func parseEngagements(v string, opt Options) int64 {
	x, ok := parseNumeric(v, opt)
	if !ok || math.IsNaN(x) || math.IsInf(x, 0) || x <= 0 {
		return 0
	}
	x = math.Trunc(x)
	if x >= math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(x)
}

func parseNumeric(s string, opt Options) (float64, bool) {
	raw := strings.TrimSpace(s)
	raw = strings.ReplaceAll(raw, "%", "")
	raw = strings.ReplaceAll(raw, "\u00A0", " ")
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	dec := opt.DecimalSeparator
	thou := opt.ThousandsSeparator
	if dec == 0 {
		cpos := strings.LastIndex(raw, ",")
		dpos := strings.LastIndex(raw, ".")
		switch {
		case cpos >= 0 && dpos >= 0 && cpos > dpos:
			dec, thou = ',', '.'
		case cpos >= 0 && dpos >= 0:
			dec, thou = '.', ','
		case cpos >= 0:
			dec = ','
		default:
			dec = '.'
		}
	}
	if thou == 0 {
		for _, sep := range []rune{',', '.', ' '} {
			if sep != dec {
				raw = strings.ReplaceAll(raw, string(sep), "")
			}
		}
	} else if thou != dec {
		raw = strings.ReplaceAll(raw, string(thou), "")
	}
	if dec != '.' {
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func sniffDelimiter(path string) rune {
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t'
	}
	return ','
}
