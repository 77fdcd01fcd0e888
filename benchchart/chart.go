// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package benchchart draws benchmark summaries as line charts.
//
// A chart has one line per codec, plotting the mean measurement
// against the sample size k, and a dashed reference line at the
// baseline measurement. Each chart is produced as a static SVG image
// and as a self-contained HTML document that embeds the image along
// with the underlying data.
package benchchart

import (
	"bytes"
	"fmt"
	"image/color"

	"github.com/aclements/go-moremath/stats"
	"github.com/intvec/intvecplot/benchagg"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/brewer"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgsvg"
)

// A Chart describes the fixed presentation of one kind of chart.
type Chart struct {
	Title    string
	Subtitle string

	XLabel string
	YLabel string

	// Legend heads the list of codecs.
	Legend string

	// BaselineLabel annotates the baseline reference line.
	BaselineLabel string

	// Width and Height are the size of the image in CSS pixels.
	Width, Height int
}

// Artifacts are the rendered forms of one chart.
type Artifacts struct {
	SVG  []byte
	HTML []byte
}

const pointRad = 3

// pixels converts CSS pixels (1/96 in) to a vg.Length.
func pixels(px int) vg.Length {
	return vg.Length(px) * vg.Inch / 96
}

// Render draws sum and returns the chart in every output format.
// Nothing is written anywhere; callers decide where the artifacts go.
func (c *Chart) Render(sum *benchagg.Summary) (*Artifacts, error) {
	p, err := c.plot(sum)
	if err != nil {
		return nil, err
	}

	can := vgsvg.New(pixels(c.Width), pixels(c.Height))
	p.Draw(draw.New(can))
	var svg bytes.Buffer
	if _, err := can.WriteTo(&svg); err != nil {
		return nil, fmt.Errorf("rendering %q: %w", c.Title, err)
	}

	html, err := c.html(sum, svg.Bytes())
	if err != nil {
		return nil, fmt.Errorf("rendering %q: %w", c.Title, err)
	}
	return &Artifacts{SVG: svg.Bytes(), HTML: html}, nil
}

func (c *Chart) plot(sum *benchagg.Summary) (*plot.Plot, error) {
	pl := plot.New()

	pl.Title.Text = c.Title
	if c.Subtitle != "" {
		pl.Title.Text += "\n" + c.Subtitle
	}
	pl.Title.TextStyle.Font.Size = 14
	pl.X.Label.Text = c.XLabel
	pl.Y.Label.Text = c.YLabel
	pl.Legend.Top = true
	pl.Legend.Padding = vg.Millimeter

	grid := plotter.NewGrid()
	grid.Vertical.Color = nil
	pl.Add(grid)

	codecs := sum.Codecs()
	colors := seriesColors(len(codecs))
	if c.Legend != "" && len(codecs) > 0 {
		pl.Legend.Add(c.Legend)
	}

	var ks []float64
	for i, codec := range codecs {
		var xys plotter.XYs
		for _, pt := range sum.Points {
			if pt.Codec == codec {
				xys = append(xys, plotter.XY{X: float64(pt.K), Y: pt.Value})
				ks = append(ks, float64(pt.K))
			}
		}
		line, points, err := plotter.NewLinePoints(xys)
		if err != nil {
			return nil, fmt.Errorf("codec %q: %w", codec, err)
		}
		line.Color = colors[i]
		line.Width = vg.Points(1.5)
		points.Color = colors[i]
		points.Shape = plotutil.Shape(i)
		points.Radius = pointRad

		pl.Add(line, points)
		name := codec
		if name == "" {
			name = `""`
		}
		pl.Legend.Add(name, line, points)
	}

	lo, hi := 0.0, 1.0
	if len(ks) > 0 {
		lo, hi = stats.Bounds(ks)
		if lo == hi {
			lo, hi = lo-1, hi+1
		}
	}
	ref := &hline{Y: sum.Baseline, XMin: lo, XMax: hi, LineStyle: plotter.DefaultLineStyle}
	ref.Color = color.Black
	ref.Dashes = []vg.Length{vg.Points(6), vg.Points(4)}
	pl.Add(ref)

	if c.BaselineLabel != "" {
		labels, err := plotter.NewLabels(plotter.XYLabels{
			XYs:    plotter.XYs{{X: hi, Y: sum.Baseline}},
			Labels: []string{c.BaselineLabel},
		})
		if err != nil {
			return nil, fmt.Errorf("baseline: %w", err)
		}
		for i := range labels.TextStyle {
			labels.TextStyle[i].XAlign = draw.XRight
			labels.TextStyle[i].YAlign = draw.YTop
		}
		labels.Offset = vg.Point{X: -vg.Points(2), Y: -vg.Points(2)}
		pl.Add(labels)
	}

	return pl, nil
}

// An hline is a horizontal line across the whole data area of a plot.
type hline struct {
	Y float64

	// XMin and XMax are the X range the line reports to the plot.
	// It is drawn from edge to edge regardless.
	XMin, XMax float64

	draw.LineStyle
}

func (h *hline) Plot(c draw.Canvas, plt *plot.Plot) {
	_, trY := plt.Transforms(&c)
	y := trY(h.Y)
	c.StrokeLine2(h.LineStyle, c.Min.X, y, c.Max.X, y)
}

func (h *hline) DataRange() (xmin, xmax, ymin, ymax float64) {
	return h.XMin, h.XMax, h.Y, h.Y
}

// seriesColors returns n distinguishable colors, from the qualitative
// "Paired" palette when it is large enough.
func seriesColors(n int) []color.Color {
	colors := make([]color.Color, n)
	if n <= 12 {
		size := n
		if size < 3 {
			size = 3
		}
		if pal, err := brewer.GetPalette(brewer.TypeQualitative, "Paired", size); err == nil {
			copy(colors, pal.Colors())
			return colors
		}
	}
	for i := range colors {
		colors[i] = plotutil.Color(i)
	}
	return colors
}
