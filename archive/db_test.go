// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package archive

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/intvec/intvecplot/benchagg"
	_ "github.com/mattn/go-sqlite3"
)

func newDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenSQL("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestParseSource(t *testing.T) {
	for _, test := range []struct {
		source, driver, dsn string
		ok                  bool
	}{
		{"sqlite3:runs.db", "sqlite3", "runs.db", true},
		{"sqlite3::memory:", "sqlite3", ":memory:", true},
		{"mysql:root:@cloudsql(proj:region:inst)/perf", "mysql", "root:@cloudsql(proj:region:inst)/perf", true},
		{"runs.db", "", "", false},
		{":runs.db", "", "", false},
		{"sqlite3:", "", "", false},
	} {
		driver, dsn, err := ParseSource(test.source)
		if (err == nil) != test.ok {
			t.Errorf("ParseSource(%q) error = %v, want ok=%v", test.source, err, test.ok)
			continue
		}
		if driver != test.driver || dsn != test.dsn {
			t.Errorf("ParseSource(%q) = %q, %q, want %q, %q", test.source, driver, dsn, test.driver, test.dsn)
		}
	}
}

func TestInsertSummary(t *testing.T) {
	ctx := context.Background()
	db := newDB(t)

	defer func() { now = time.Now }()
	now = func() time.Time { return time.Unix(86400, 0) }

	if run, err := db.LatestRun(ctx, "space"); err != nil || run != nil {
		t.Fatalf("LatestRun on empty archive = %v, %v, want nil, nil", run, err)
	}

	first := &benchagg.Summary{
		Baseline: 1,
		Unit:     "kB",
		Points:   []benchagg.Point{{Codec: "X", K: 3, Value: 2, N: 1}},
	}
	second := &benchagg.Summary{
		Baseline:       39.0625,
		Unit:           "kB",
		ExtraBaselines: 1,
		Points: []benchagg.Point{
			{Codec: "", K: 8, Value: 0.5, N: 3},
			{Codec: "Gamma", K: 8, Value: 14, N: 2},
			{Codec: "Gamma", K: 16, Value: 11.75, N: 2},
		},
	}
	id1, err := db.InsertSummary(ctx, "space", first)
	if err != nil {
		t.Fatal(err)
	}
	id2, err := db.InsertSummary(ctx, "space", second)
	if err != nil {
		t.Fatal(err)
	}
	if id2 <= id1 {
		t.Errorf("run IDs %d, %d are not increasing", id1, id2)
	}
	if _, err := db.InsertSummary(ctx, "random_access", &benchagg.Summary{Baseline: 2000, Unit: "ms"}); err != nil {
		t.Fatal(err)
	}

	n, err := db.CountRuns(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("CountRuns = %d, want 3", n)
	}

	run, err := db.LatestRun(ctx, "space")
	if err != nil {
		t.Fatal(err)
	}
	want := &Run{
		ID:       id2,
		Pipeline: "space",
		Created:  time.Unix(86400, 0),
		Summary: benchagg.Summary{
			Baseline: 39.0625,
			Unit:     "kB",
			Points:   second.Points,
		},
	}
	if diff := cmp.Diff(want, run); diff != "" {
		t.Errorf("LatestRun mismatch (-want +got):\n%s", diff)
	}
}

func TestInsertSummaryDuplicatePoint(t *testing.T) {
	ctx := context.Background()
	db := newDB(t)
	sum := &benchagg.Summary{
		Baseline: 1,
		Unit:     "ms",
		Points: []benchagg.Point{
			{Codec: "A", K: 1, Value: 1, N: 1},
			{Codec: "A", K: 1, Value: 2, N: 1},
		},
	}
	if _, err := db.InsertSummary(ctx, "random_access", sum); err == nil {
		t.Fatal("InsertSummary with duplicate points succeeded")
	}
	n, err := db.CountRuns(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("CountRuns = %d after failed insert, want 0 (rolled back)", n)
	}
}
