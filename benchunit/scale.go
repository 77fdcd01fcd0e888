// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchunit

import (
	"fmt"
	"math"
	"strconv"
)

// A Scaler formats numbers against a fixed unit prefix.
type Scaler struct {
	Prec   int     // Digits after the decimal point
	Factor float64 // Value of one Prefix (e.g., 1 Ki => 1024)
	Prefix string  // Unit prefix ("m", "k", "Ki", etc)
}

// Format divides val by the scale's factor and appends its prefix.
// For example, with a Decimal scale chosen for 0.002, Format(0.002)
// returns "2.000m".
func (s Scaler) Format(val float64) string {
	buf := make([]byte, 0, 20)
	buf = strconv.AppendFloat(buf, val/s.Factor, 'f', s.Prec, 64)
	return string(append(buf, s.Prefix...))
}

type prefix struct {
	name   string
	factor float64
}

// Prefixes from largest to smallest. Binary prefixes stop at 1:
// fractional IEC prefixes are meaningless for byte counts.
var (
	decimalScale = []prefix{
		{"T", 1e12}, {"G", 1e9}, {"M", 1e6}, {"k", 1e3}, {"", 1},
		{"m", 1e-3}, {"µ", 1e-6}, {"n", 1e-9},
	}
	binaryScale = []prefix{
		{"Ti", 1 << 40}, {"Gi", 1 << 30}, {"Mi", 1 << 20}, {"Ki", 1 << 10}, {"", 1},
	}
)

// Rounding thresholds: a scaled value at or above digitsFor[i] prints
// with i+1 digits after the decimal point and still shows four
// significant digits once rounded (99.995 rounds to "100.0").
var digitsFor = [...]float64{99.995, 9.9995, 0.99995}

// maxPrec bounds the digits printed for values below the smallest
// prefix.
const maxPrec = 10

// Scale formats val with at least three significant digits, appending
// an SI or IEC prefix chosen for val alone.
func Scale(val float64, cls Class) string {
	return CommonScale([]float64{val}, cls).Format(val)
}

// CommonScale returns one Scaler for all of vals, chosen so the
// non-zero value nearest zero still shows three significant digits.
func CommonScale(vals []float64, cls Class) Scaler {
	var min float64
	for _, v := range vals {
		v = math.Abs(v)
		if v != 0 && !math.IsInf(v, 0) && (min == 0 || v < min) {
			min = v
		}
	}
	if min == 0 {
		return Scaler{3, 1, ""}
	}

	var scale []prefix
	switch cls {
	case Decimal:
		scale = decimalScale
	case Binary:
		scale = binaryScale
	default:
		panic(fmt.Sprintf("bad Class %v", cls))
	}

	for _, p := range scale {
		scaled := min / p.factor
		for i, t := range digitsFor {
			if scaled >= t {
				return Scaler{i + 1, p.factor, p.name}
			}
		}
	}

	// Below the smallest prefix: add digits until three are
	// significant.
	last := scale[len(scale)-1]
	scaled := min / last.factor
	prec := 3
	for t := digitsFor[len(digitsFor)-1]; prec < maxPrec && scaled < t; t /= 10 {
		prec++
	}
	return Scaler{prec, last.factor, last.name}
}
