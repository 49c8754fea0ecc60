// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package tspevents adapts on-disk event logs into partition.Source
// values a query Driver can pull from.
package tspevents

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
)

// Row is one CSV record: the raw fields in file order, plus the
// column-name-to-field-index mapping when a header row was present,
// or nil otherwise.
type Row struct {
	Fields []string
	Header map[string]int
}

// Get returns the value of the named column, or "" if the source had
// no header or the column does not exist.
func (r Row) Get(col string) string {
	if r.Header == nil {
		return ""
	}
	i, ok := r.Header[col]
	if !ok || i >= len(r.Fields) {
		return ""
	}
	return r.Fields[i]
}

// CSVSource reads Row events from a CSV file, one row per Next call.
// It satisfies partition.Source[Row].
type CSVSource struct {
	f      *os.File
	r      *csv.Reader
	header map[string]int
}

// OpenCSVSource opens path and, if hasHeader, consumes its first line
// as column names.
func OpenCSVSource(path string, hasHeader bool) (*CSVSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("tspevents: failed to open %s: %w", path, err)
	}

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	s := &CSVSource{f: f, r: r}
	if hasHeader {
		cols, err := r.Read()
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("tspevents: failed to read header from %s: %w", path, err)
		}
		s.header = make(map[string]int, len(cols))
		for i, c := range cols {
			s.header[c] = i
		}
	}
	return s, nil
}

// Next implements partition.Source[Row].
func (s *CSVSource) Next() (Row, bool) {
	fields, err := s.r.Read()
	if err != nil {
		if err != io.EOF {
			// The Source contract is total once exhausted; a
			// mid-stream read error is treated the same way as a
			// clean EOF rather than panicking a running query.
			_ = err
		}
		return Row{}, false
	}
	return Row{Fields: fields, Header: s.header}, true
}

// Close releases the underlying file.
func (s *CSVSource) Close() error {
	return s.f.Close()
}
