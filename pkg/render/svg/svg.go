// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package svg renders drawings as SVG documents, and exports them to files.
package svg

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/Eeman1113/likho/pkg/ml/strokes"
	svgo "github.com/ajstarks/svgo"
	"github.com/pkg/errors"
)

// Padding around the bounding box of the drawing in the viewBox.
const Padding = 3.0

// PathData returns the SVG path "d" attribute for all runs of the drawing: one "M" command at
// the start of each run followed by "L" commands. Single point runs are drawn as a zero-length
// segment, visible with round line caps.
func PathData(d *strokes.Drawing) string {
	var sb strings.Builder
	for _, run := range d.Runs {
		writeRun(&sb, run)
	}
	return strings.TrimSpace(sb.String())
}

func writeRun(sb *strings.Builder, run strokes.Run) {
	for ii, p := range run {
		if ii == 0 {
			sb.WriteString(" M ")
		} else {
			sb.WriteString(" L ")
		}
		sb.WriteString(formatCoord(p.X))
		sb.WriteByte(' ')
		sb.WriteString(formatCoord(p.Y))
	}
	if len(run) == 1 {
		fmt.Fprintf(sb, " L %s %s", formatCoord(run[0].X), formatCoord(run[0].Y))
	}
}

// formatCoord prints a coordinate with at most 3 decimals.
func formatCoord(v float64) string {
	s := strconv.FormatFloat(v, 'f', 3, 64)
	s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	if s == "-0" {
		s = "0"
	}
	return s
}

// ViewBox returns the "viewBox" attribute value: the bounding box of the drawing padded by
// Padding on all sides, with 3 decimals. An empty drawing gets a box around the origin.
func ViewBox(d *strokes.Drawing) (x, y, width, height float64) {
	bounds, ok := d.Bounds()
	if !ok {
		bounds = strokes.Rect{}
	}
	return bounds.Min.X - Padding, bounds.Min.Y - Padding, bounds.Width() + 2*Padding, bounds.Height() + 2*Padding
}

// Style returns the CSS style of the drawing paths: black strokes of the drawing width, no fill.
func Style(d *strokes.Drawing) string {
	return fmt.Sprintf("fill:none;stroke:black;stroke-width:%s;stroke-linecap:round;stroke-linejoin:round",
		strconv.FormatFloat(d.Width, 'g', -1, 64))
}

// Write writes the drawing as a standalone SVG document, with one path per run.
func Write(w io.Writer, d *strokes.Drawing) error {
	ew := &errWriter{w: w}
	canvas := svgo.New(ew)
	x, y, width, height := ViewBox(d)
	canvas.Start(int(math.Ceil(width)), int(math.Ceil(height)),
		fmt.Sprintf(`viewBox="%.3f %.3f %.3f %.3f"`, x, y, width, height))
	style := Style(d)
	for _, run := range d.Runs {
		var sb strings.Builder
		writeRun(&sb, run)
		canvas.Path(strings.TrimSpace(sb.String()), style)
	}
	canvas.End()
	return ew.err
}

// errWriter keeps the first write error, since svgo doesn't report them.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) Write(p []byte) (int, error) {
	if ew.err != nil {
		return 0, ew.err
	}
	n, err := ew.w.Write(p)
	if err != nil {
		ew.err = errors.Wrap(err, "failed to write SVG")
	}
	return n, err
}
