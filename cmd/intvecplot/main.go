// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Intvecplot charts the results of the integer vector benchmarks.
//
// Usage:
//
//	intvecplot [flags]
//
// With no flags, intvecplot reads ../bench_results/bench_random_access.csv
// and ../bench_results/bench_space.csv, writes an SVG image and an
// HTML document for each to ../images/random_access/time_total_100k
// and ../images/space/space_total_10k, and opens each HTML document in
// the browser.
//
// Each table must have a name column, a k column, and a metric column
// (elapsed, in seconds, or space, in bytes). The row with k == 0 is the
// plain vector every codec is compared against. Rows for the little-
// and big-endian layouts of a codec are averaged into one series.
//
// The flags are:
//
//	-only pipeline
//	    Run only the named pipeline: random_access or space.
//	-results dir
//	    Read benchmark tables from dir.
//	-images dir
//	    Write charts below dir.
//	-csv
//	    Print each summary as CSV on standard output.
//	-show=false
//	    Do not open the HTML charts in the browser.
//	-db driver:dsn
//	    Archive each summary in a sqlite3 or mysql database.
//	-gcs gs://bucket/prefix
//	    Also upload the charts to Google Cloud Storage.
//	-gcs-credentials file
//	    Use the service account credentials in file for -gcs.
//	-v
//	    Report where each chart was written and, with -db, how the
//	    baseline compares with the previous archived run.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	_ "github.com/GoogleCloudPlatform/cloudsql-proxy/proxy/dialers/mysql" // cloudsql(...) addresses for mysql
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"

	"github.com/intvec/intvecplot/archive"
	"github.com/intvec/intvecplot/artifact"
	"github.com/intvec/intvecplot/benchagg"
	"github.com/intvec/intvecplot/benchchart"
	"github.com/intvec/intvecplot/pipeline"
)

func main() {
	log.SetPrefix("intvecplot: ")
	log.SetFlags(0)
	if err := intvecplot(os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			os.Exit(2)
		}
		log.Fatal(err)
	}
}

// openChart shows an HTML chart. It is replaced during testing.
var openChart = benchchart.Open

func intvecplot(stdout, stderr io.Writer, args []string) error {
	fs := flag.NewFlagSet("intvecplot", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: intvecplot [flags]\n")
		fs.PrintDefaults()
	}
	flagOnly := fs.String("only", "", "run only `pipeline` (random_access or space)")
	flagResults := fs.String("results", pipeline.DefaultResultsDir, "read benchmark tables from `dir`")
	flagImages := fs.String("images", pipeline.DefaultImagesDir, "write charts below `dir`")
	flagCSV := fs.Bool("csv", false, "print summaries in CSV form")
	flagShow := fs.Bool("show", true, "open the HTML charts in a browser")
	flagDB := fs.String("db", "", "archive summaries in `driver:dsn`")
	flagGCS := fs.String("gcs", "", "also upload charts to `gs://bucket/prefix`")
	flagGCSCreds := fs.String("gcs-credentials", "", "credentials `file` for -gcs")
	flagVerbose := fs.Bool("v", false, "report where charts are written and compare with archived runs")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		fs.Usage()
		return fmt.Errorf("unexpected arguments %q", fs.Args())
	}

	logger := log.New(stderr, "intvecplot: ", 0)
	ctx := context.Background()

	pipelines := pipeline.All
	if *flagOnly != "" {
		c, ok := pipeline.Lookup(*flagOnly)
		if !ok {
			return fmt.Errorf("unknown pipeline %q", *flagOnly)
		}
		pipelines = []pipeline.Config{c}
	}

	images := artifact.Dir(*flagImages)
	sinks := []artifact.Sink{images}
	if *flagGCS != "" {
		gcs, err := artifact.NewGCS(ctx, *flagGCS, *flagGCSCreds)
		if err != nil {
			return err
		}
		defer gcs.Close()
		sinks = append(sinks, gcs)
	}

	var db *archive.DB
	if *flagDB != "" {
		driverName, dataSourceName, err := archive.ParseSource(*flagDB)
		if err != nil {
			return err
		}
		if db, err = archive.OpenSQL(driverName, dataSourceName); err != nil {
			return fmt.Errorf("opening %s database: %w", driverName, err)
		}
		defer db.Close()
	}

	for i, c := range pipelines {
		res, err := c.Run(ctx, *flagResults, sinks...)
		if err != nil {
			return err
		}
		if n := res.Summary.ExtraBaselines; n > 0 {
			logger.Printf("%s: ignoring %d extra baseline row(s) with k == 0", c.Name, n)
		}
		if *flagVerbose {
			for _, loc := range res.Locations {
				logger.Printf("%s: wrote %s", c.Name, loc)
			}
		}

		if db != nil {
			if err := archiveRun(ctx, db, c.Name, res.Summary, *flagVerbose, logger); err != nil {
				return err
			}
		}

		if *flagCSV {
			if i > 0 {
				fmt.Fprintln(stdout)
			}
			if err := pipeline.WriteCSV(stdout, res.Summary); err != nil {
				return err
			}
		}

		if *flagShow {
			if err := openChart(images.Location(c.HTMLName())); err != nil {
				logger.Printf("%s: cannot open chart: %v", c.Name, err)
			}
		}
	}
	return nil
}

// archiveRun stores sum as a new run of the named pipeline. If
// verbose, it logs the new run and compares its baseline with the
// previous run.
func archiveRun(ctx context.Context, db *archive.DB, name string, sum *benchagg.Summary, verbose bool, logger *log.Logger) error {
	prev, err := db.LatestRun(ctx, name)
	if err != nil {
		return fmt.Errorf("%s: reading archive: %w", name, err)
	}
	id, err := db.InsertSummary(ctx, name, sum)
	if err != nil {
		return fmt.Errorf("%s: archiving summary: %w", name, err)
	}
	if !verbose {
		return nil
	}
	n, err := db.CountRuns(ctx)
	if err != nil {
		return fmt.Errorf("%s: reading archive: %w", name, err)
	}
	msg := fmt.Sprintf("%s: archived as run %d (%d archived runs)", name, id, n)
	if prev != nil {
		msg += fmt.Sprintf("; baseline %s %s, was %s %s in run %d",
			formatValue(sum.Baseline), sum.Unit, formatValue(prev.Baseline), prev.Unit, prev.ID)
	}
	logger.Print(msg)
	return nil
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
