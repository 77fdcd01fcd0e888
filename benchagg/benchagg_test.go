// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchagg

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/intvec/intvecplot/benchcsv"
	"github.com/intvec/intvecplot/benchunit"
	"github.com/intvec/intvecplot/codecname"
)

func rec(name string, k int64, v float64) benchcsv.Record {
	return benchcsv.Record{Name: name, K: k, Value: v}
}

var identity = benchunit.Conversion{From: "x", To: "x", Factor: 1}

func TestSummarizeElapsed(t *testing.T) {
	recs := []benchcsv.Record{
		rec("LEIntVec A", 0, 2.0),
		rec("LEIntVec A", 5, 0.001),
		rec("LEIntVec A", 5, 0.003),
	}
	sum, err := Summarize(recs, codecname.Elapsed, benchunit.SecondsToMillis)
	if err != nil {
		t.Fatal(err)
	}
	want := &Summary{
		Baseline: 2000,
		Unit:     "ms",
		RawUnit:  "sec",
		Points:   []Point{{"A", 5, 2.0, 2}},
	}
	if diff := cmp.Diff(want, sum); diff != "" {
		t.Errorf("summary mismatch (-want +got):\n%s", diff)
	}
}

func TestSummarizeSpace(t *testing.T) {
	recs := []benchcsv.Record{
		rec("ParamXCodec", 0, 1024),
		rec("ParamXCodec", 3, 2048),
	}
	sum, err := Summarize(recs, codecname.Space, benchunit.BytesToKilobytes)
	if err != nil {
		t.Fatal(err)
	}
	want := &Summary{
		Baseline: 1.0,
		Unit:     "kB",
		RawUnit:  "B",
		Points:   []Point{{"X", 3, 2.0, 1}},
	}
	if diff := cmp.Diff(want, sum); diff != "" {
		t.Errorf("summary mismatch (-want +got):\n%s", diff)
	}
}

func TestSummarizeMergesLayouts(t *testing.T) {
	recs := []benchcsv.Record{
		rec("Standard Vec", 0, 40960),
		rec("LEIntVec ParamGammaCodec", 8, 1024),
		rec("BEIntVec ParamGammaCodec", 8, 3072),
		rec("LEIntVec DeltaCodec", 8, 512),
		rec("LEIntVec DeltaCodec", 16, 256),
		rec("BEIntVec ParamGammaCodec", 16, 2048),
	}
	sum, err := Summarize(recs, codecname.Space, benchunit.BytesToKilobytes)
	if err != nil {
		t.Fatal(err)
	}
	want := []Point{
		{"Delta", 8, 0.5, 1},
		{"Delta", 16, 0.25, 1},
		{"Gamma", 8, 2, 2},
		{"Gamma", 16, 2, 1},
	}
	if diff := cmp.Diff(want, sum.Points); diff != "" {
		t.Errorf("points mismatch (-want +got):\n%s", diff)
	}
	if sum.Baseline != 40 {
		t.Errorf("baseline = %v, want 40", sum.Baseline)
	}
	if got, want := sum.Codecs(), []string{"Delta", "Gamma"}; !cmp.Equal(got, want) {
		t.Errorf("Codecs() = %v, want %v", got, want)
	}
}

func TestMissingBaseline(t *testing.T) {
	for _, recs := range [][]benchcsv.Record{
		nil,
		{rec("LEIntVec A", 5, 1)},
		{rec("LEIntVec A", 5, 1), rec("LEIntVec A", -1, 1)},
	} {
		_, err := Summarize(recs, codecname.Elapsed, benchunit.SecondsToMillis)
		var mbe *MissingBaselineError
		if !errors.As(err, &mbe) {
			t.Errorf("Summarize(%v): got error %v, want *MissingBaselineError", recs, err)
			continue
		}
		if !errors.Is(err, ErrMissingBaseline) {
			t.Errorf("errors.Is(%v, ErrMissingBaseline) = false", err)
		}
		if mbe.Rows != len(recs) {
			t.Errorf("Rows = %d, want %d", mbe.Rows, len(recs))
		}
	}
}

func TestBaselineOnly(t *testing.T) {
	sum, err := Summarize([]benchcsv.Record{rec("Standard Vec", 0, 0.5)}, codecname.Elapsed, benchunit.SecondsToMillis)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum.Baseline != 500 || len(sum.Points) != 0 {
		t.Errorf("got %+v, want baseline 500 and no points", sum)
	}
}

func TestFirstBaselineWins(t *testing.T) {
	recs := []benchcsv.Record{
		rec("LEIntVec A", 1, 4),
		rec("Standard Vec", 0, 1),
		rec("Standard Vec", 0, 3),
		rec("LEIntVec A", 1, 8),
		rec("Other Vec", 0, 5),
	}
	base, rest, err := SplitBaseline(recs)
	if err != nil {
		t.Fatal(err)
	}
	if base != recs[1] {
		t.Errorf("baseline = %+v, want %+v", base, recs[1])
	}
	if want := []benchcsv.Record{recs[0], recs[3]}; !cmp.Equal(rest, want) {
		t.Errorf("rest = %+v, want %+v", rest, want)
	}

	sum, err := Summarize(recs, codecname.Elapsed, identity)
	if err != nil {
		t.Fatal(err)
	}
	if sum.Baseline != 1 {
		t.Errorf("baseline = %v, want 1 (first k == 0 row, not averaged)", sum.Baseline)
	}
	if sum.ExtraBaselines != 2 {
		t.Errorf("ExtraBaselines = %d, want 2", sum.ExtraBaselines)
	}
	if want := []Point{{"A", 1, 6, 2}}; !cmp.Equal(sum.Points, want) {
		t.Errorf("points = %+v, want %+v", sum.Points, want)
	}
}

func TestAggregateEmpty(t *testing.T) {
	if got := Aggregate(nil, codecname.Elapsed, identity); got != nil {
		t.Errorf("Aggregate(nil) = %v, want nil", got)
	}
}

func TestAggregateEmptyCodec(t *testing.T) {
	recs := []benchcsv.Record{
		rec("LEIntVec ", 2, 1),
		rec("BEIntVec ", 2, 3),
		rec("", 2, 5),
	}
	want := []Point{{"", 2, 3, 3}}
	if got := Aggregate(recs, codecname.Elapsed, identity); !cmp.Equal(got, want) {
		t.Errorf("Aggregate = %+v, want %+v", got, want)
	}
}

func TestAggregateCaseSensitive(t *testing.T) {
	recs := []benchcsv.Record{
		rec("gamma", 2, 1),
		rec("Gamma", 2, 3),
	}
	want := []Point{{"Gamma", 2, 3, 1}, {"gamma", 2, 1, 1}}
	if got := Aggregate(recs, codecname.Elapsed, identity); !cmp.Equal(got, want) {
		t.Errorf("Aggregate = %+v, want %+v", got, want)
	}
}

func randomRecords(r *rand.Rand, n int) []benchcsv.Record {
	names := []string{"LEIntVec Gamma", "BEIntVec Gamma", "LEIntVec Delta", "BEIntVec Delta", "Rice", "LEIntVec "}
	recs := make([]benchcsv.Record, n)
	for i := range recs {
		recs[i] = rec(names[r.Intn(len(names))], int64(1+r.Intn(4)*8), r.Float64()/100)
	}
	return recs
}

func TestAggregateOrderIndependent(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for iter := 0; iter < 20; iter++ {
		recs := randomRecords(r, 50)
		want := Aggregate(recs, codecname.Elapsed, benchunit.SecondsToMillis)

		shuffled := append([]benchcsv.Record(nil), recs...)
		r.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		got := Aggregate(shuffled, codecname.Elapsed, benchunit.SecondsToMillis)
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("permuted input changed the result (-want +got):\n%s", diff)
		}
	}
}

func TestAggregateReversedGroup(t *testing.T) {
	// Floating-point addition is not associative, so the mean of a
	// group must not depend on the order of its rows.
	r := rand.New(rand.NewSource(3))
	for iter := 0; iter < 50; iter++ {
		recs := make([]benchcsv.Record, 5)
		for i := range recs {
			recs[i] = rec("LEIntVec A", 5, r.Float64()/100)
		}
		reversed := make([]benchcsv.Record, len(recs))
		for i, rec := range recs {
			reversed[len(recs)-1-i] = rec
		}
		fwd := Aggregate(recs, codecname.Elapsed, benchunit.SecondsToMillis)
		rev := Aggregate(reversed, codecname.Elapsed, benchunit.SecondsToMillis)
		if diff := cmp.Diff(fwd, rev); diff != "" {
			t.Fatalf("iteration %d: reversed rows changed the mean (-forward +reversed):\n%s", iter, diff)
		}
	}
}

func TestAggregateConversionCommutes(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	approx := cmpopts.EquateApprox(1e-12, 0)
	for _, conv := range []benchunit.Conversion{benchunit.SecondsToMillis, benchunit.BytesToKilobytes} {
		recs := randomRecords(r, 40)
		converted := Aggregate(recs, codecname.Elapsed, conv)
		raw := Aggregate(recs, codecname.Elapsed, identity)
		for i := range raw {
			raw[i].Value = conv.Apply(raw[i].Value)
		}
		if diff := cmp.Diff(raw, converted, approx); diff != "" {
			t.Errorf("%v: mean of converted values differs from converted mean (-want +got):\n%s", conv, diff)
		}
	}
}
