package normalize

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/KaramelBytes/medintel-cli/internal/dataset"
)

// excelEpoch is day zero of the 1900 date system as Excel counts it.
var excelEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

func isXLSX(p string) bool {
	return strings.HasSuffix(strings.ToLower(p), ".xlsx")
}

// ReadXLSXFile reads the header row and data rows of one worksheet.
// Numeric serials in the date column are converted to ISO dates.
func ReadXLSXFile(p string, opt Options) ([]RawRow, []string, error) {
	zr, err := zip.OpenReader(p)
	if err != nil {
		return nil, nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer zr.Close()
	return readWorkbook(&zr.Reader, opt)
}

// ReadXLSX is ReadXLSXFile for an in-memory workbook.
func ReadXLSX(b []byte, opt Options) ([]RawRow, []string, error) {
	zr, err := zip.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return nil, nil, fmt.Errorf("open xlsx: %w", err)
	}
	return readWorkbook(zr, opt)
}

func readWorkbook(zr *zip.Reader, opt Options) ([]RawRow, []string, error) {
	sheets, err := parseWorkbook(zipEntry(zr, "xl/workbook.xml"))
	if err != nil {
		return nil, nil, err
	}
	rels := parseRelationships(zipEntry(zr, "xl/_rels/workbook.xml.rels"))
	target, err := sheetTarget(sheets, rels, opt.Sheet)
	if err != nil {
		return nil, nil, err
	}
	data := zipEntry(zr, target)
	if data == nil {
		return nil, nil, fmt.Errorf("xlsx: worksheet %s not found", target)
	}
	rr := &sheetReader{
		dec:    xml.NewDecoder(bytes.NewReader(data)),
		shared: parseSharedStrings(zipEntry(zr, "xl/sharedStrings.xml")),
	}

	header, err := rr.next()
	if errors.Is(err, io.EOF) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}
	dateCol := -1
	for j, h := range header {
		if CanonicalKey(h) == string(dataset.FieldDate) {
			dateCol = j
			break
		}
	}

	var rows []RawRow
	for line := 1; len(rows) < maxRows(opt); line++ {
		rec, err := rr.next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read row %d: %w", line, err)
		}
		if dateCol >= 0 && dateCol < len(rec) {
			rec[dateCol] = serialToDate(rec[dateCol])
		}
		rows = append(rows, rawRow(header, rec))
	}
	return rows, header, nil
}

func serialToDate(v string) string {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || f < 1 || f > 2958465 {
		return v
	}
	return excelEpoch.AddDate(0, 0, int(f)).Format(dataset.DateLayout)
}

type wbSheet struct {
	Name string
	RID  string
}

func parseWorkbook(data []byte) ([]wbSheet, error) {
	if data == nil {
		return nil, errors.New("xlsx: missing xl/workbook.xml")
	}
	var wb struct {
		Sheets []struct {
			Name string     `xml:"name,attr"`
			Attr []xml.Attr `xml:",any,attr"`
		} `xml:"sheets>sheet"`
	}
	if err := xml.Unmarshal(data, &wb); err != nil {
		return nil, fmt.Errorf("xlsx: parse workbook: %w", err)
	}
	out := make([]wbSheet, 0, len(wb.Sheets))
	for _, s := range wb.Sheets {
		ws := wbSheet{Name: s.Name}
		for _, a := range s.Attr {
			// r:id lives in the relationships namespace.
			if a.Name.Local == "id" {
				ws.RID = a.Value
			}
		}
		out = append(out, ws)
	}
	return out, nil
}

func parseRelationships(data []byte) map[string]string {
	out := map[string]string{}
	var rels struct {
		Items []struct {
			ID     string `xml:"Id,attr"`
			Target string `xml:"Target,attr"`
		} `xml:"Relationship"`
	}
	if err := xml.Unmarshal(data, &rels); err != nil {
		return out
	}
	for _, r := range rels.Items {
		if r.ID != "" && r.Target != "" {
			out[r.ID] = r.Target
		}
	}
	return out
}

func sheetTarget(sheets []wbSheet, rels map[string]string, name string) (string, error) {
	if len(sheets) == 0 {
		return "", errors.New("xlsx: workbook has no sheets")
	}
	pick := sheets[0]
	if name != "" {
		found := false
		names := make([]string, len(sheets))
		for i, s := range sheets {
			names[i] = s.Name
			if !found && strings.EqualFold(s.Name, name) {
				pick, found = s, true
			}
		}
		if !found {
			return "", fmt.Errorf("sheet %q not found; available sheets: %s", name, strings.Join(names, ", "))
		}
	}
	if rel, ok := rels[pick.RID]; ok {
		rel = strings.TrimPrefix(rel, "/")
		if strings.HasPrefix(rel, "xl/") {
			return rel, nil
		}
		return path.Join("xl", rel), nil
	}
	return "xl/worksheets/sheet1.xml", nil
}

func zipEntry(zr *zip.Reader, name string) []byte {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil
		}
		defer rc.Close()
		b, err := io.ReadAll(rc)
		if err != nil {
			return nil
		}
		return b
	}
	return nil
}

func parseSharedStrings(data []byte) []string {
	if data == nil {
		return nil
	}
	dec := xml.NewDecoder(bytes.NewReader(data))
	var (
		out []string
		buf strings.Builder
		inT bool
	)
	for {
		tok, err := dec.Token()
		if err != nil {
			return out
		}
		switch se := tok.(type) {
		case xml.StartElement:
			switch se.Name.Local {
			case "si":
				buf.Reset()
			case "t":
				inT = true
			}
		case xml.EndElement:
			switch se.Name.Local {
			case "t":
				inT = false
			case "si":
				out = append(out, buf.String())
			}
		case xml.CharData:
			if inT {
				buf.Write(se)
			}
		}
	}
}

// sheetReader streams <row> elements of a worksheet as dense string slices.
type sheetReader struct {
	dec    *xml.Decoder
	shared []string
}

func (r *sheetReader) next() ([]string, error) {
	var row []string
	inRow := false
	for {
		tok, err := r.dec.Token()
		if err != nil {
			return nil, err
		}
		switch se := tok.(type) {
		case xml.StartElement:
			switch {
			case se.Name.Local == "row":
				inRow, row = true, nil
			case inRow && se.Name.Local == "c":
				var ref, typ string
				for _, a := range se.Attr {
					switch a.Name.Local {
					case "r":
						ref = a.Value
					case "t":
						typ = a.Value
					}
				}
				col := colIndex(ref)
				if col < 0 {
					col = len(row)
				}
				val, err := r.cellValue(typ)
				if err != nil {
					return nil, err
				}
				for len(row) <= col {
					row = append(row, "")
				}
				row[col] = val
			}
		case xml.EndElement:
			if se.Name.Local == "row" && inRow {
				return row, nil
			}
		}
	}
}

func (r *sheetReader) cellValue(typ string) (string, error) {
	var val string
	for {
		tok, err := r.dec.Token()
		if err != nil {
			return "", err
		}
		switch se := tok.(type) {
		case xml.StartElement:
			if se.Name.Local == "v" || se.Name.Local == "t" {
				var s string
				if err := r.dec.DecodeElement(&s, &se); err != nil {
					return "", err
				}
				val += s
			}
		case xml.EndElement:
			if se.Name.Local != "c" {
				continue
			}
			if typ == "s" {
				i, err := strconv.Atoi(strings.TrimSpace(val))
				if err != nil || i < 0 || i >= len(r.shared) {
					return "", nil
				}
				return r.shared[i], nil
			}
			return val, nil
		}
	}
}

// colIndex maps a cell reference like "C12" to 2. It returns -1 when ref
// has no column letters.
func colIndex(ref string) int {
	idx := 0
	n := 0
	for _, c := range strings.ToUpper(ref) {
		if c < 'A' || c > 'Z' {
			break
		}
		idx = idx*26 + int(c-'A'+1)
		n++
	}
	if n == 0 {
		return -1
	}
	return idx - 1
}
