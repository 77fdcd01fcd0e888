// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchchart

import (
	"bytes"
	"strconv"

	"github.com/google/safehtml"
	"github.com/google/safehtml/template"
	"github.com/google/safehtml/uncheckedconversions"
	"github.com/intvec/intvecplot/benchagg"
	"github.com/intvec/intvecplot/benchunit"
)

const pageTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; margin: 2em; }
h1 { font-size: 1.4em; margin-bottom: 0; }
p.subtitle { color: #555; margin-top: 0.3em; }
table { border-collapse: collapse; margin-top: 1em; }
th, td { padding: 0.2em 0.8em; text-align: right; }
th { cursor: pointer; border-bottom: 1px solid #999; }
td:first-child, th:first-child { text-align: left; }
tr.baseline td { font-style: italic; border-bottom: 1px dashed #000; }
tr.hidden { display: none; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<p class="subtitle">{{.Subtitle}}</p>
<div class="chart">{{.SVG}}</div>
<label>{{.Legend}}:
<select id="codec">
<option value="">all</option>
{{- range .Codecs}}
<option>{{.}}</option>
{{- end}}
</select>
</label>
<table id="points">
<thead>
<tr><th>{{.Legend}}</th><th>{{.XLabel}}</th><th>{{.YLabel}}</th><th>rows</th><th>{{.RawHeader}}</th></tr>
</thead>
<tbody>
<tr class="baseline"><td>{{.BaselineLabel}}</td><td></td><td>{{.Baseline}}</td><td>1</td><td>{{.BaselineRaw}}</td></tr>
{{- range .Rows}}
<tr><td>{{.Codec}}</td><td>{{.K}}</td><td>{{.Value}}</td><td>{{.N}}</td><td>{{.Raw}}</td></tr>
{{- end}}
</tbody>
</table>
<script>
(function() {
  var table = document.getElementById("points");
  var body = table.tBodies[0];
  document.getElementById("codec").addEventListener("change", function(e) {
    var want = e.target.value;
    for (var i = 1; i < body.rows.length; i++) {
      var row = body.rows[i];
      var show = want === "" || row.cells[0].textContent === want;
      row.classList.toggle("hidden", !show);
    }
  });
  var order = [];
  var heads = table.tHead.rows[0].cells;
  for (var c = 0; c < heads.length; c++) {
    heads[c].addEventListener("click", (function(col) {
      return function() {
        order[col] = !order[col];
        var rows = Array.prototype.slice.call(body.rows, 1);
        rows.sort(function(a, b) {
          var x = a.cells[col].textContent, y = b.cells[col].textContent;
          var nx = parseFloat(x), ny = parseFloat(y);
          var d = (isNaN(nx) || isNaN(ny)) ? x.localeCompare(y) : nx - ny;
          return order[col] ? d : -d;
        });
        rows.forEach(function(r) { body.appendChild(r); });
      };
    })(c));
  }
})();
</script>
</body>
</html>
`

var pageTmpl = template.Must(template.New("page").Parse(pageTemplate))

type page struct {
	*Chart
	SVG         safehtml.HTML
	Baseline    string
	BaselineRaw string
	RawHeader   string
	Codecs      []string
	Rows        []pageRow
}

type pageRow struct {
	Codec, K, Value, N, Raw string
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// rawFormatter returns the header of the raw-unit column and a
// function that formats a display value in the unit the benchmark
// wrote. All values of sum share one scale.
func rawFormatter(sum *benchagg.Summary) (string, func(float64) string) {
	if sum.RawUnit == "" {
		return "raw", func(float64) string { return "" }
	}
	back, err := benchunit.Convert(sum.Unit, sum.RawUnit)
	if err != nil {
		return "raw", func(float64) string { return "" }
	}
	vals := []float64{back.Apply(sum.Baseline)}
	for _, pt := range sum.Points {
		vals = append(vals, back.Apply(pt.Value))
	}
	s := benchunit.CommonScale(vals, benchunit.ClassOf(sum.RawUnit))
	return "raw (" + sum.RawUnit + ")", func(v float64) string {
		return s.Format(back.Apply(v))
	}
}

// html returns a standalone HTML document holding svg and the data
// points of sum.
func (c *Chart) html(sum *benchagg.Summary, svg []byte) ([]byte, error) {
	// svg is produced by vgsvg from our own plot, so it is trusted
	// markup. Drop the XML prolog, which has no meaning inline.
	if i := bytes.Index(svg, []byte("<svg")); i > 0 {
		svg = svg[i:]
	}
	rawHeader, raw := rawFormatter(sum)
	pg := page{
		Chart:       c,
		SVG:         uncheckedconversions.HTMLFromStringKnownToSatisfyTypeContract(string(svg)),
		Baseline:    formatValue(sum.Baseline),
		BaselineRaw: raw(sum.Baseline),
		RawHeader:   rawHeader,
		Codecs:      sum.Codecs(),
	}
	for _, pt := range sum.Points {
		pg.Rows = append(pg.Rows, pageRow{
			Codec: pt.Codec,
			K:     strconv.FormatInt(pt.K, 10),
			Value: formatValue(pt.Value),
			N:     strconv.Itoa(pt.N),
			Raw:   raw(pt.Value),
		})
	}

	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, pg); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
