// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package benchunit converts benchmark measurements between prefixed
// units, such as seconds and milliseconds or bytes and kilobytes.
package benchunit

import (
	"fmt"
	"math"
	"strings"
)

// A Class specifies what class of unit prefixes are in use.
type Class int

const (
	// Decimal indicates values of a given unit should be scaled
	// by powers of 1000. Decimal units use the International
	// System of Units SI prefixes, such as "m" and "k".
	Decimal Class = iota
	// Binary indicates values of a given unit should be scaled by
	// powers of 1024. Binary units accept both the IEC prefixes
	// ("Ki", "Mi") and the customary "k" and "M", which also mean
	// 1024 and 1024² when applied to bytes.
	Binary
)

func (c Class) String() string {
	switch c {
	case Decimal:
		return "Decimal"
	case Binary:
		return "Binary"
	}
	return fmt.Sprintf("Class(%d)", int(c))
}

// ClassOf returns the Class of unit. Measures of bytes are Binary;
// everything else is Decimal.
func ClassOf(unit string) Class {
	if _, base, ok := split(unit); ok && base == "B" {
		return Binary
	}
	return Decimal
}

// bases maps recognized base units to their canonical spelling.
// Longer spellings come first so "bytes" is not read as "byte" + "s".
var bases = []struct{ spelling, canonical string }{
	{"bytes", "B"},
	{"sec", "sec"},
	{"B", "B"},
	{"s", "sec"},
}

// Prefix exponents. Decimal exponents are powers of 10, binary ones
// powers of 2.
var (
	decimalPrefixes = map[string]int{
		"n": -9, "µ": -6, "u": -6, "m": -3, "": 0, "k": 3, "M": 6, "G": 9, "T": 12,
	}
	binaryPrefixes = map[string]int{
		"": 0, "k": 10, "K": 10, "Ki": 10, "M": 20, "Mi": 20, "G": 30, "Gi": 30, "T": 40, "Ti": 40,
	}
)

// split separates unit into its prefix exponent and canonical base unit.
func split(unit string) (exp int, base string, ok bool) {
	unit = strings.TrimSpace(unit)
	for _, b := range bases {
		if !strings.HasSuffix(unit, b.spelling) {
			continue
		}
		prefix := unit[:len(unit)-len(b.spelling)]
		prefixes := decimalPrefixes
		if b.canonical == "B" {
			prefixes = binaryPrefixes
		}
		if exp, ok := prefixes[prefix]; ok {
			return exp, b.canonical, true
		}
	}
	return 0, "", false
}

// A Conversion rescales values from one unit to another unit of the
// same dimension.
type Conversion struct {
	From, To string

	// Factor is the multiplier that takes a value in From to a
	// value in To.
	Factor float64
}

// Convert returns the Conversion from unit from to unit to. Both
// units must share a base, such as "sec" and "ms" or "B" and "kB".
//
// Factors are exact powers of 10 or 2, so converting and then
// averaging matches averaging and then converting up to rounding.
func Convert(from, to string) (Conversion, error) {
	fexp, fbase, ok := split(from)
	if !ok {
		return Conversion{}, fmt.Errorf("unknown unit %q", from)
	}
	texp, tbase, ok := split(to)
	if !ok {
		return Conversion{}, fmt.Errorf("unknown unit %q", to)
	}
	if fbase != tbase {
		return Conversion{}, fmt.Errorf("cannot convert %s to %s", from, to)
	}

	var factor float64
	switch ClassOf(fbase) {
	case Binary:
		factor = math.Ldexp(1, fexp-texp)
	default:
		factor = math.Pow10(fexp - texp)
	}
	return Conversion{From: from, To: to, Factor: factor}, nil
}

// MustConvert is like Convert but panics if the units are not
// compatible.
func MustConvert(from, to string) Conversion {
	c, err := Convert(from, to)
	if err != nil {
		panic(err)
	}
	return c
}

var (
	// SecondsToMillis converts elapsed times to milliseconds.
	SecondsToMillis = MustConvert("sec", "ms")

	// BytesToKilobytes converts sizes to kilobytes of 1024 bytes.
	BytesToKilobytes = MustConvert("B", "kB")
)

// Apply converts v from c.From to c.To.
func (c Conversion) Apply(v float64) float64 {
	return v * c.Factor
}

func (c Conversion) String() string {
	return fmt.Sprintf("%s→%s (×%g)", c.From, c.To, c.Factor)
}
