// Package samples reads pixel samples from CSV for the command line host
package samples

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chrissnell/bandmap/internal/bandmap"
)

// ErrMalformedRow is matched when a row is not valid CSV. The reader
// resumes at the next line.
var ErrMalformedRow = errors.New("malformed CSV row")

// Record is one CSV row decoded into a sample. Row counts data rows from 1.
type Record struct {
	Row    int
	Sample bandmap.Sample
}

// Reader decodes samples from CSV with a header row naming the band columns.
// Columns may appear in any order; columns that are not bands are skipped.
type Reader struct {
	csv     *csv.Reader
	columns map[bandmap.Band]int
	bands   []bandmap.Band
	row     int
}

// NewReader reads the header and checks every input band has a column
func NewReader(r io.Reader) (*Reader, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	headers, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV headers: %w", err)
	}

	columns := make(map[bandmap.Band]int)
	for i, h := range headers {
		b := bandmap.Band(strings.ToUpper(strings.TrimSpace(h)))
		if !bandmap.Describe().HasBand(b) {
			continue
		}
		if _, dup := columns[b]; dup {
			return nil, fmt.Errorf("band %s appears in more than one column", b)
		}
		columns[b] = i
	}

	var bands []bandmap.Band
	for _, in := range bandmap.Describe().Input {
		for _, b := range in.Bands {
			bands = append(bands, b)
			if _, ok := columns[b]; !ok {
				return nil, fmt.Errorf("CSV header has no %s column: %w",
					b, &bandmap.InvalidSampleError{Band: b, Reason: bandmap.ReasonMissing})
			}
		}
	}

	// rows may carry extra columns or fewer trailing ones; checked per band
	cr.FieldsPerRecord = -1

	return &Reader{csv: cr, columns: columns, bands: bands}, nil
}

// Next returns the next sample. It returns io.EOF after the last row.
func (r *Reader) Next() (Record, error) {
	fields, err := r.csv.Read()
	if err == io.EOF {
		return Record{}, io.EOF
	}
	r.row++
	if err != nil {
		return Record{Row: r.row}, fmt.Errorf("row %d: %w: %w", r.row, ErrMalformedRow, err)
	}

	values := make(map[bandmap.Band]float64, len(r.columns))
	for _, b := range r.bands {
		col := r.columns[b]
		if col >= len(fields) || strings.TrimSpace(fields[col]) == "" {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(fields[col]), 64)
		if err != nil {
			return Record{Row: r.row}, fmt.Errorf("row %d: value %q: %w", r.row, fields[col],
				&bandmap.InvalidSampleError{Band: b, Reason: bandmap.ReasonNotNumber})
		}
		values[b] = v
	}

	s, err := bandmap.SampleFromMap(values)
	if err != nil {
		return Record{Row: r.row}, fmt.Errorf("row %d: %w", r.row, err)
	}
	return Record{Row: r.row, Sample: s}, nil
}
