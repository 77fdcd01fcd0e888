// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package codecname reduces benchmark labels to the base name of the
// codec they measure.
//
// Benchmarks label each integer vector by its layout and codec, for
// example "LEIntVec GammaCodec" or "BEIntVec ParamExpGolombCodec".
// Results for the little- and big-endian layouts of one codec are
// compared as a single series, so the layout prefix (and, for space
// measurements, the "Param" and "Codec" decorations) is stripped
// before grouping.
package codecname

import "strings"

// A Kind says which end of a name a Rule strips.
type Kind int

const (
	Prefix Kind = iota
	Suffix
)

// A Rule strips at most one of its Literals from one end of a name.
// Literals are tried in order and the first match wins.
type Rule struct {
	Kind     Kind
	Literals []string
}

// Apply returns name with the first matching literal removed.
func (r Rule) Apply(name string) string {
	for _, lit := range r.Literals {
		switch r.Kind {
		case Prefix:
			if strings.HasPrefix(name, lit) {
				return name[len(lit):]
			}
		case Suffix:
			if strings.HasSuffix(name, lit) {
				return name[:len(name)-len(lit)]
			}
		}
	}
	return name
}

// A Canonicalizer is an ordered list of Rules.
type Canonicalizer []Rule

// Canonicalize applies c's rules in order, then trims surrounding
// white space. The pass is repeated until the name stops changing, so
// Canonicalize(Canonicalize(x)) == Canonicalize(x) for every x.
// Every pass but the last shortens the name, so this terminates.
func (c Canonicalizer) Canonicalize(name string) string {
	for {
		next := c.pass(name)
		if next == name {
			return next
		}
		name = next
	}
}

func (c Canonicalizer) pass(name string) string {
	for _, r := range c {
		name = r.Apply(name)
	}
	return strings.TrimSpace(name)
}

// With returns a new Canonicalizer that applies c's rules followed by
// rules.
func (c Canonicalizer) With(rules ...Rule) Canonicalizer {
	out := make(Canonicalizer, 0, len(c)+len(rules))
	out = append(out, c...)
	return append(out, rules...)
}

// Layouts strips the endianness prefix of an integer vector label.
var Layouts = Rule{Prefix, []string{"LEIntVec ", "BEIntVec "}}

var (
	// Elapsed canonicalizes labels of timing benchmarks.
	Elapsed = Canonicalizer{Layouts}

	// Space canonicalizes labels of space benchmarks, which also
	// carry "Param" prefixes and "Codec" suffixes.
	Space = Elapsed.With(
		Rule{Prefix, []string{"Param"}},
		Rule{Suffix, []string{"Codec"}},
	)
)
