// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package benchagg reduces benchmark tables to one value per codec and
// sample size, relative to a baseline measurement.
//
// A table holds a single baseline row (k == 0), measured on a plain
// vector, and any number of rows for the codecs under test. Summarize
// separates the baseline, converts every measurement into its display
// unit, and averages the codec rows that share a canonical codec name
// and sample size.
package benchagg

import (
	"errors"
	"fmt"
	"sort"

	"github.com/aclements/go-gg/ggstat"
	"github.com/aclements/go-gg/table"
	"github.com/intvec/intvecplot/benchcsv"
	"github.com/intvec/intvecplot/benchunit"
	"github.com/intvec/intvecplot/codecname"
)

// ErrMissingBaseline is matched by every *MissingBaselineError.
var ErrMissingBaseline = errors.New("no baseline row with k == 0")

// A MissingBaselineError reports a table without a baseline row.
type MissingBaselineError struct {
	// Rows is the number of rows in the table.
	Rows int
}

func (e *MissingBaselineError) Error() string {
	return fmt.Sprintf("%v among %d rows", ErrMissingBaseline, e.Rows)
}

func (e *MissingBaselineError) Unwrap() error {
	return ErrMissingBaseline
}

// A Point is the mean measurement of one codec at one sample size.
type Point struct {
	Codec string
	K     int64
	Value float64 // In display units.
	N     int     // Number of rows averaged.
}

// A Summary is the result of reducing one benchmark table.
type Summary struct {
	// Baseline is the baseline measurement in display units.
	Baseline float64

	// Unit is the display unit of Baseline and every Point.
	Unit string

	// RawUnit is the unit the benchmark wrote. It is not archived.
	RawUnit string

	// Points holds one Point per codec and sample size, sorted by
	// codec and then k.
	Points []Point

	// ExtraBaselines counts k == 0 rows after the first. They are
	// ignored.
	ExtraBaselines int
}

// Codecs returns the distinct codecs of s in order.
func (s *Summary) Codecs() []string {
	var codecs []string
	for i, p := range s.Points {
		if i == 0 || p.Codec != s.Points[i-1].Codec {
			codecs = append(codecs, p.Codec)
		}
	}
	return codecs
}

// SplitBaseline separates the baseline row of recs from the rest.
//
// If recs has several k == 0 rows, the first one is the baseline and
// the others are dropped; they are not averaged. rest holds the
// remaining rows in input order.
func SplitBaseline(recs []benchcsv.Record) (baseline benchcsv.Record, rest []benchcsv.Record, err error) {
	found := false
	rest = make([]benchcsv.Record, 0, len(recs))
	for _, rec := range recs {
		if rec.K != 0 {
			rest = append(rest, rec)
			continue
		}
		if !found {
			baseline, found = rec, true
		}
	}
	if !found {
		return benchcsv.Record{}, nil, &MissingBaselineError{Rows: len(recs)}
	}
	return baseline, rest, nil
}

// row is the tabular form of a canonicalized, converted record.
// Field names become column names.
type row struct {
	Codec string
	K     int64
	Value float64
}

// Aggregate canonicalizes the codec name of each record, converts its
// value with conv, and returns the mean value of each (codec, k)
// group, sorted by codec and then k. Records with k == 0 are treated
// like any other; use SplitBaseline to remove them first.
func Aggregate(recs []benchcsv.Record, names codecname.Canonicalizer, conv benchunit.Conversion) []Point {
	if len(recs) == 0 {
		return nil
	}

	rows := make([]row, len(recs))
	for i, rec := range recs {
		rows[i] = row{names.Canonicalize(rec.Name), rec.K, conv.Apply(rec.Value)}
	}
	// Each group is summed in row order. Sorting fixes that order, so
	// the means do not depend on the order of recs.
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Codec != rows[j].Codec {
			return rows[i].Codec < rows[j].Codec
		}
		if rows[i].K != rows[j].K {
			return rows[i].K < rows[j].K
		}
		return rows[i].Value < rows[j].Value
	})

	g := ggstat.Agg("Codec", "K")(ggstat.AggMean("Value"), ggstat.AggCount("N")).F(table.TableFromStructs(rows))
	t := table.Flatten(g)

	codecs := t.MustColumn("Codec").([]string)
	ks := t.MustColumn("K").([]int64)
	means := t.MustColumn("mean Value").([]float64)
	counts := t.MustColumn("N").([]int)

	points := make([]Point, t.Len())
	for i := range points {
		points[i] = Point{codecs[i], ks[i], means[i], counts[i]}
	}
	sort.Slice(points, func(i, j int) bool {
		if points[i].Codec != points[j].Codec {
			return points[i].Codec < points[j].Codec
		}
		return points[i].K < points[j].K
	})
	return points
}

// Summarize extracts the baseline of recs and aggregates the remaining
// rows. Both are converted with conv.
func Summarize(recs []benchcsv.Record, names codecname.Canonicalizer, conv benchunit.Conversion) (*Summary, error) {
	base, rest, err := SplitBaseline(recs)
	if err != nil {
		return nil, err
	}
	return &Summary{
		Baseline:       conv.Apply(base.Value),
		Unit:           conv.To,
		RawUnit:        conv.From,
		Points:         Aggregate(rest, names, conv),
		ExtraBaselines: len(recs) - len(rest) - 1,
	}, nil
}
