// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package strokes turns the pen offsets produced by generation into absolute pen-down runs.
package strokes

import (
	"iter"
	"math"

	"github.com/Eeman1113/likho/pkg/ml/generation"
)

// Point is an absolute position of the pen.
type Point struct {
	X, Y float64
}

// Run is a maximal sequence of points drawn without lifting the pen. Runs are never empty.
type Run []Point

// Drawing is the result of assembling a generation run.
type Drawing struct {
	Runs []Run

	// Width of the strokes, used when rendering.
	Width float64
}

// Rect is an axis-aligned bounding box.
type Rect struct {
	Min, Max Point
}

// Width of the box.
func (r Rect) Width() float64 { return r.Max.X - r.Min.X }

// Height of the box.
func (r Rect) Height() float64 { return r.Max.Y - r.Min.Y }

// Assembler accumulates samples into a Drawing. The zero value is not usable: use NewAssembler.
type Assembler struct {
	drawing *Drawing
	cursor  Point
	current Run
}

// NewAssembler returns an Assembler with the cursor at the origin.
func NewAssembler(width float64) *Assembler {
	return &Assembler{drawing: &Drawing{Width: width}}
}

// Add moves the cursor by the sample offset and appends the new position to the current run.
// If the pen is lifted, the run is closed after this point.
func (a *Assembler) Add(sample generation.Sample) {
	a.cursor.X += sample.DX
	a.cursor.Y += sample.DY
	a.current = append(a.current, a.cursor)
	if sample.PenLifted {
		a.closeRun()
	}
}

func (a *Assembler) closeRun() {
	if len(a.current) > 0 {
		a.drawing.Runs = append(a.drawing.Runs, a.current)
		a.current = nil
	}
}

// Cursor returns the current pen position.
func (a *Assembler) Cursor() Point { return a.cursor }

// Drawing closes any open run and returns the drawing. The Assembler can keep being used,
// new points start a new run.
func (a *Assembler) Drawing() *Drawing {
	a.closeRun()
	return a.drawing
}

// Assemble consumes the samples and returns the drawing, with the cursor starting at (0, 0).
func Assemble(samples iter.Seq[generation.Sample], width float64) *Drawing {
	a := NewAssembler(width)
	for sample := range samples {
		a.Add(sample)
	}
	return a.Drawing()
}

// NumPoints returns the total number of points in all runs.
func (d *Drawing) NumPoints() (n int) {
	for _, run := range d.Runs {
		n += len(run)
	}
	return
}

// IsEmpty returns whether the drawing has no points.
func (d *Drawing) IsEmpty() bool { return d.NumPoints() == 0 }

// Bounds returns the bounding box of all points, and false if the drawing is empty.
func (d *Drawing) Bounds() (Rect, bool) {
	if d.IsEmpty() {
		return Rect{}, false
	}
	r := Rect{
		Min: Point{math.Inf(1), math.Inf(1)},
		Max: Point{math.Inf(-1), math.Inf(-1)},
	}
	for _, run := range d.Runs {
		for _, p := range run {
			r.Min.X = min(r.Min.X, p.X)
			r.Min.Y = min(r.Min.Y, p.Y)
			r.Max.X = max(r.Max.X, p.X)
			r.Max.Y = max(r.Max.Y, p.Y)
		}
	}
	return r, true
}

// Translate returns a copy of the drawing with all points shifted by (dx, dy).
func (d *Drawing) Translate(dx, dy float64) *Drawing {
	out := &Drawing{Width: d.Width, Runs: make([]Run, len(d.Runs))}
	for ii, run := range d.Runs {
		moved := make(Run, len(run))
		for jj, p := range run {
			moved[jj] = Point{p.X + dx, p.Y + dy}
		}
		out.Runs[ii] = moved
	}
	return out
}

// Stack lays out drawings as lines of text: each one is shifted so its bounding box starts at
// x=0, and placed below the previous one with the given spacing. Empty drawings still take a
// line of height spacing. The width of the first drawing is used.
func Stack(drawings []*Drawing, spacing float64) *Drawing {
	out := &Drawing{}
	if len(drawings) > 0 {
		out.Width = drawings[0].Width
	}
	top := 0.0
	for _, d := range drawings {
		bounds, ok := d.Bounds()
		if !ok {
			top += spacing
			continue
		}
		moved := d.Translate(-bounds.Min.X, top-bounds.Min.Y)
		out.Runs = append(out.Runs, moved.Runs...)
		top += bounds.Height() + spacing
	}
	return out
}
