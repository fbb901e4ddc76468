// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package strokes

import (
	"github.com/gomlx/bsplines"
)

// SmoothDegree is the degree of the B-splines used by Smooth.
const SmoothDegree = 3

// Smooth returns a copy of the drawing with each run replaced by a cubic B-spline through its
// points (used as control points), sampled at pointsPerSegment points per original segment.
// Runs with too few points for a cubic are kept as they are.
func Smooth(d *Drawing, pointsPerSegment int) *Drawing {
	pointsPerSegment = max(pointsPerSegment, 1)
	out := &Drawing{Width: d.Width, Runs: make([]Run, 0, len(d.Runs))}
	for _, run := range d.Runs {
		if len(run) <= SmoothDegree {
			out.Runs = append(out.Runs, append(Run(nil), run...))
			continue
		}
		xs := make([]float64, len(run))
		ys := make([]float64, len(run))
		for ii, p := range run {
			xs[ii], ys[ii] = p.X, p.Y
		}
		bx := bsplines.NewRegular(SmoothDegree, len(run)).WithControlPoints(xs).WithExtrapolation(bsplines.ExtrapolateConstant)
		by := bsplines.NewRegular(SmoothDegree, len(run)).WithControlPoints(ys).WithExtrapolation(bsplines.ExtrapolateConstant)
		numPoints := (len(run)-1)*pointsPerSegment + 1
		smoothed := make(Run, numPoints)
		for ii := range smoothed {
			t := float64(ii) / float64(numPoints-1)
			smoothed[ii] = Point{bx.Evaluate(t), by.Evaluate(t)}
		}
		out.Runs = append(out.Runs, smoothed)
	}
	return out
}
