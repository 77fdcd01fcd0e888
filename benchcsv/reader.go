// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package benchcsv reads the CSV tables written by the codec
// benchmarks.
//
// A table has a header row naming its columns. Every table has a
// "name" column holding the codec label, a "k" column holding the
// sample size of the access pattern (k == 0 marks the plain vector
// baseline), and one metric column, such as "elapsed" (seconds) or
// "space" (bytes). Columns may appear in any order and unknown
// columns are ignored.
package benchcsv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// A Record is one measurement row of a benchmark table.
type Record struct {
	// Name is the raw codec label, exactly as it appears in the
	// input.
	Name string

	// K is the sample-size parameter. Zero denotes the baseline
	// measurement.
	K int64

	// Value is the metric, in the unit the benchmark wrote.
	Value float64

	// Line is the 1-based line of the record in its input. It is
	// purely diagnostic.
	Line int
}

// A LoadError reports that a table could not be read at all: the file
// is missing or unreadable, is not valid CSV, or lacks a required
// column.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return e.Path + ": " + e.Err.Error()
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// A CoercionError reports a cell that could not be converted to the
// numeric type of its column.
type CoercionError struct {
	FileName string
	Line     int
	Column   string
	Value    string
	Err      error
}

func (e *CoercionError) Error() string {
	msg := e.Err.Error()
	var ne *strconv.NumError
	if errors.As(e.Err, &ne) {
		msg = ne.Err.Error()
	}
	return fmt.Sprintf("%s:%d: bad %s value %q: %s", e.FileName, e.Line, e.Column, e.Value, msg)
}

func (e *CoercionError) Unwrap() error {
	return e.Err
}

var (
	errNotInteger = errors.New("not an integer")
	errNotFinite  = errors.New("not a finite number")
)

// A Reader reads Records from a benchmark table.
//
// Its API is modeled on bufio.Scanner.
type Reader struct {
	csv      *csv.Reader
	fileName string
	metric   string

	// Column indexes of name, k, and the metric, once the header
	// has been read.
	nameCol, kCol, metricCol int
	header                   bool

	rec Record
	err error
}

// NewReader returns a Reader that reads records with the given metric
// column from r. fileName is used in error messages.
func NewReader(r io.Reader, fileName, metric string) *Reader {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true
	return &Reader{csv: cr, fileName: fileName, metric: metric}
}

// Scan advances to the next record, which will then be available
// through Record. It returns false when there are no more records,
// either because the input was exhausted or because of an error.
func (r *Reader) Scan() bool {
	if r.err != nil {
		return false
	}
	if !r.header {
		if err := r.readHeader(); err != nil {
			r.err = err
			return false
		}
	}

	row, err := r.csv.Read()
	if err == io.EOF {
		return false
	} else if err != nil {
		r.err = &LoadError{r.fileName, err}
		return false
	}
	line, _ := r.csv.FieldPos(0)

	rec := Record{Name: row[r.nameCol], Line: line}
	if rec.K, err = parseK(row[r.kCol]); err != nil {
		r.err = &CoercionError{r.fileName, line, "k", row[r.kCol], err}
		return false
	}
	if rec.Value, err = strconv.ParseFloat(strings.TrimSpace(row[r.metricCol]), 64); err != nil {
		r.err = &CoercionError{r.fileName, line, r.metric, row[r.metricCol], err}
		return false
	}
	if math.IsNaN(rec.Value) || math.IsInf(rec.Value, 0) {
		r.err = &CoercionError{r.fileName, line, r.metric, row[r.metricCol], errNotFinite}
		return false
	}
	r.rec = rec
	return true
}

func (r *Reader) readHeader() error {
	hdr, err := r.csv.Read()
	if err == io.EOF {
		return &LoadError{r.fileName, errors.New("empty table, missing header row")}
	} else if err != nil {
		return &LoadError{r.fileName, err}
	}

	cols := make(map[string]int)
	for i, h := range hdr {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		h = strings.TrimSpace(h)
		if _, ok := cols[h]; !ok {
			cols[h] = i
		}
	}
	find := func(name string) (int, error) {
		i, ok := cols[name]
		if !ok {
			return 0, &LoadError{r.fileName, fmt.Errorf("missing required column %q", name)}
		}
		return i, nil
	}
	if r.nameCol, err = find("name"); err != nil {
		return err
	}
	if r.kCol, err = find("k"); err != nil {
		return err
	}
	if r.metricCol, err = find(r.metric); err != nil {
		return err
	}
	r.header = true
	return nil
}

// Record returns the record read by the last successful call to Scan.
func (r *Reader) Record() Record {
	return r.rec
}

// Err returns the first error encountered by the Reader, if any.
func (r *Reader) Err() error {
	return r.err
}

// parseK parses a sample size. Integral floating-point spellings such
// as "5.0" are accepted, since some writers emit every number as a
// float.
func parseK(s string) (int64, error) {
	s = strings.TrimSpace(s)
	k, err := strconv.ParseInt(s, 10, 64)
	if err == nil {
		return k, nil
	}
	f, ferr := strconv.ParseFloat(s, 64)
	if ferr != nil {
		return 0, err
	}
	if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, errNotInteger
	}
	return int64(f), nil
}

// ReadFile reads every record with the given metric column from the
// table at path.
func ReadFile(path, metric string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{path, err}
	}
	defer f.Close()

	var recs []Record
	r := NewReader(f, path, metric)
	for r.Scan() {
		recs = append(recs, r.Record())
	}
	if err := r.Err(); err != nil {
		return nil, err
	}
	return recs, nil
}
