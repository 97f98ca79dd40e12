package generate

import (
	"fmt"
	"strings"

	"psv/internal/sim"
)

// Shape is an initial ordering of a generated sequence.
type Shape string

const (
	ShapeOrdered   Shape = "ordered"   // 0..n-1
	ShapeReverse   Shape = "reverse"   // n-1..0
	ShapeRandom    Shape = "random"    // shuffled 0..n-1
	ShapeRanged    Shape = "ranged"    // shuffled sample of a custom range
	ShapeArbitrary Shape = "arbitrary" // user supplied numbers
	ShapePreset    Shape = "preset"    // named preset
)

// Shapes lists every shape in menu order.
var Shapes = []Shape{ShapeOrdered, ShapeReverse, ShapeRandom, ShapeRanged, ShapeArbitrary, ShapePreset}

// ParseShape accepts a shape name.
func ParseShape(s string) (Shape, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, shape := range Shapes {
		if string(shape) == s {
			return shape, nil
		}
	}
	return "", fmt.Errorf("unknown shape %q", s)
}

// Ordered returns 0..n-1.
func Ordered(n int) sim.Sequence {
	if n < 0 {
		n = 0
	}
	out := make(sim.Sequence, n)
	for i := range out {
		out[i] = i
	}
	return out
}

// ReverseOrdered returns n-1..0.
func ReverseOrdered(n int) sim.Sequence {
	out := Ordered(n)
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// Random returns a shuffled permutation of 0..n-1.
func (g *Generator) Random(n int) sim.Sequence {
	out := Ordered(n)
	g.Shuffle(out)
	return out
}

// RandomRanged returns n distinct shuffled values from [min, max].
func (g *Generator) RandomRanged(n, min, max int) (sim.Sequence, error) {
	out, err := g.Baseline(n, CustomRange(min, max))
	if err != nil {
		return nil, err
	}
	g.Shuffle(out)
	return out, nil
}

// Request gathers everything needed to build a sequence of any shape.
type Request struct {
	Shape  Shape
	Length int
	Range  RangeSpec
	// Numbers is the text for ShapeArbitrary.
	Numbers string
	// Preset names the entry for ShapePreset.
	Preset  string
	Presets []Preset
}

// Build produces the sequence described by req.
func (g *Generator) Build(req Request) (sim.Sequence, error) {
	switch req.Shape {
	case ShapeOrdered:
		return Ordered(req.Length), nil
	case ShapeReverse:
		return ReverseOrdered(req.Length), nil
	case ShapeRandom, "":
		return g.Random(req.Length), nil
	case ShapeRanged:
		return g.RandomRanged(req.Length, req.Range.Min, req.Range.Max)
	case ShapeArbitrary:
		return sim.ParseSequence(req.Numbers)
	case ShapePreset:
		p, err := FindPreset(req.Presets, req.Preset)
		if err != nil {
			return nil, err
		}
		return p.Sequence()
	default:
		return nil, fmt.Errorf("unknown shape %q", req.Shape)
	}
}
