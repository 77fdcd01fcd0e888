// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package pipeline turns a benchmark table into a chart of codec
// measurements against a baseline.
//
// One Config describes one kind of benchmark. RandomAccess and Space
// are the two benchmarks written by the codec benchmark suite.
package pipeline

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strconv"

	"github.com/intvec/intvecplot/artifact"
	"github.com/intvec/intvecplot/benchagg"
	"github.com/intvec/intvecplot/benchchart"
	"github.com/intvec/intvecplot/benchcsv"
	"github.com/intvec/intvecplot/benchunit"
	"github.com/intvec/intvecplot/codecname"
)

// A Config describes one benchmark pipeline.
type Config struct {
	// Name identifies the pipeline in messages and archives.
	Name string

	// Input is the benchmark table file name, relative to the
	// results directory.
	Input string

	// Metric is the table column holding the measurement.
	Metric string

	// Unit converts measurements to display units.
	Unit benchunit.Conversion

	// Names reduces raw labels to codec names.
	Names codecname.Canonicalizer

	Chart benchchart.Chart

	// Output is the slash-separated base name of the artifacts,
	// relative to the images directory. Extensions are added per
	// format.
	Output string
}

// Default directories, relative to the working directory, as laid out
// by the benchmark suite.
const (
	DefaultResultsDir = "../bench_results"
	DefaultImagesDir  = "../images"
)

const (
	xLabel        = "Sample Size (k)"
	legend        = "Codec Base"
	baselineLabel = "Standard Vec"
)

var (
	// RandomAccess charts the time to read random elements.
	RandomAccess = Config{
		Name:   "random_access",
		Input:  "bench_random_access.csv",
		Metric: "elapsed",
		Unit:   benchunit.SecondsToMillis,
		Names:  codecname.Elapsed,
		Chart: benchchart.Chart{
			Title:         "Time to Randomly Access Elements 10k elements",
			Subtitle:      "Vector with 10k random elements with uniform distribution in the range [0, 100_000). Indices are randomly generated.",
			XLabel:        xLabel,
			YLabel:        "Time to Access (ms)",
			Legend:        legend,
			BaselineLabel: baselineLabel,
			Width:         1000,
			Height:        600,
		},
		Output: "random_access/time_total_100k",
	}

	// Space charts the memory footprint of each codec.
	Space = Config{
		Name:   "space",
		Input:  "bench_space.csv",
		Metric: "space",
		Unit:   benchunit.BytesToKilobytes,
		Names:  codecname.Space,
		Chart: benchchart.Chart{
			Title:         "Space Usage per Codec",
			Subtitle:      "Vector with 10k random elements with uniform distribution in the range [0, 10_000)",
			XLabel:        xLabel,
			YLabel:        "Space Usage (kB)",
			Legend:        legend,
			BaselineLabel: baselineLabel,
			Width:         1200,
			Height:        900,
		},
		Output: "space/space_total_10k",
	}

	// All lists every pipeline in the order they run.
	All = []Config{RandomAccess, Space}
)

// Lookup returns the pipeline called name.
func Lookup(name string) (Config, bool) {
	for _, c := range All {
		if c.Name == name {
			return c, true
		}
	}
	return Config{}, false
}

// A Result is the outcome of one pipeline run.
type Result struct {
	Summary *benchagg.Summary

	// Locations lists where each artifact was stored, per sink.
	Locations []string
}

// SVGName and HTMLName are the artifact names of c.
func (c *Config) SVGName() string  { return c.Output + ".svg" }
func (c *Config) HTMLName() string { return c.Output + ".html" }

// Summarize reads the benchmark table from resultsDir and reduces it.
func (c *Config) Summarize(resultsDir string) (*benchagg.Summary, error) {
	recs, err := benchcsv.ReadFile(filepath.Join(resultsDir, c.Input), c.Metric)
	if err != nil {
		return nil, err
	}
	sum, err := benchagg.Summarize(recs, c.Names, c.Unit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Join(resultsDir, c.Input), err)
	}
	return sum, nil
}

// Run reads the benchmark table from resultsDir, charts it, and puts
// the SVG and HTML charts into every sink. Both charts are rendered
// before anything is stored.
func (c *Config) Run(ctx context.Context, resultsDir string, sinks ...artifact.Sink) (*Result, error) {
	sum, err := c.Summarize(resultsDir)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.Name, err)
	}
	art, err := c.Chart.Render(sum)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.Name, err)
	}

	res := &Result{Summary: sum}
	for _, sink := range sinks {
		for _, a := range []struct {
			name string
			data []byte
		}{
			{c.SVGName(), art.SVG},
			{c.HTMLName(), art.HTML},
		} {
			if err := sink.Put(ctx, a.name, a.data); err != nil {
				return nil, fmt.Errorf("%s: %w", c.Name, err)
			}
			res.Locations = append(res.Locations, sink.Location(a.name))
		}
	}
	return res, nil
}

// WriteCSV writes sum as CSV to w: a header, the baseline as a row
// with an empty k, then one row per point.
func WriteCSV(w io.Writer, sum *benchagg.Summary) error {
	strof := func(x float64) string {
		return strconv.FormatFloat(x, 'g', -1, 64)
	}
	tab := [][]string{
		{"codec", "k", sum.Unit, "n"},
		{baselineLabel, "", strof(sum.Baseline), "1"},
	}
	for _, p := range sum.Points {
		tab = append(tab, []string{p.Codec, strconv.FormatInt(p.K, 10), strof(p.Value), strconv.Itoa(p.N)})
	}
	csvw := csv.NewWriter(w)
	return csvw.WriteAll(tab)
}
