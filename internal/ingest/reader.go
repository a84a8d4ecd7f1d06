package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// RawRow maps a column name from the header row to that row's raw text
// value. Rows are ephemeral and discarded after processing.
type RawRow map[string]string

// RowReader decodes a CSV byte stream into a lazy, forward-only sequence
// of RawRow. The first line is the header; every data row must have the
// same column count. Not restartable after consumption.
type RowReader struct {
	r      *csv.Reader
	header []string
	line   int
}

// NewRowReader reads the header line and prepares the row sequence.
func NewRowReader(src io.Reader) (*RowReader, error) {
	r := csv.NewReader(src)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: reading header: %v", ErrMalformedInput, err)
	}
	// Strip a UTF-8 BOM if the file carries one.
	header[0] = strings.TrimPrefix(header[0], "\uFEFF")

	// Column-count mismatches below surface as csv.ErrFieldCount.
	r.FieldsPerRecord = len(header)

	return &RowReader{r: r, header: header, line: 1}, nil
}

// Header returns the column names from the header line.
func (rr *RowReader) Header() []string {
	return rr.header
}

// Next returns the next data row and its 1-based line number.
// Returns io.EOF when the sequence is exhausted and a wrapped
// ErrMalformedInput when a row cannot be decoded.
func (rr *RowReader) Next() (RawRow, int, error) {
	record, err := rr.r.Read()
	if err == io.EOF {
		return nil, 0, io.EOF
	}
	rr.line++
	if err != nil {
		return nil, rr.line, fmt.Errorf("%w: line %d: %v", ErrMalformedInput, rr.line, err)
	}

	row := make(RawRow, len(rr.header))
	for i, name := range rr.header {
		row[name] = record[i]
	}
	return row, rr.line, nil
}
