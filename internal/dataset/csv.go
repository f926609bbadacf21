package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// WriteCSV writes the dataset as a canonical CSV with a header row.
func WriteCSV(w io.Writer, d Dataset) error {
	cw := csv.NewWriter(w)
	header := make([]string, len(RequiredFields))
	for i, f := range RequiredFields {
		header[i] = string(f)
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, r := range d.records {
		row := []string{
			r.Date.Format(DateLayout),
			r.Platform,
			r.Sentiment,
			r.Location,
			strconv.FormatInt(r.Engagements, 10),
			r.MediaType,
			r.InfluencerBrand,
			r.PostType,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
