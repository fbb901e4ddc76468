// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package preview renders drawings to raster images (or any format supported by gonum/plot),
// for a quick look without an SVG viewer.
package preview

import (
	"image/color"
	"io"
	"path/filepath"
	"strings"

	"github.com/Eeman1113/likho/pkg/ml/strokes"
	"github.com/Eeman1113/likho/pkg/support/fsutil"
	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// DefaultWidth of the previews. The height follows the aspect ratio of the drawing.
const DefaultWidth = 8 * vg.Inch

// PointsPerUnit converts the drawing stroke width to line width in the preview.
const PointsPerUnit = 2.0

// Plot returns a plot of the drawing, one line per run, with hidden axes.
// The y-axis is flipped so the preview has the same orientation as the SVG rendering.
func Plot(d *strokes.Drawing) (*plot.Plot, error) {
	p := plot.New()
	p.HideAxes()
	p.BackgroundColor = color.White
	lineStyle := draw.LineStyle{
		Color: color.Black,
		Width: vg.Points(d.Width * PointsPerUnit),
	}
	for ii, run := range d.Runs {
		xys := make(plotter.XYs, len(run))
		for jj, pt := range run {
			xys[jj] = plotter.XY{X: pt.X, Y: -pt.Y}
		}
		if len(run) == 1 {
			dot, err := plotter.NewScatter(xys)
			if err != nil {
				return nil, errors.Wrapf(err, "failed to plot run #%d", ii)
			}
			dot.GlyphStyle.Color = color.Black
			dot.GlyphStyle.Radius = lineStyle.Width / 2
			dot.GlyphStyle.Shape = draw.CircleGlyph{}
			p.Add(dot)
			continue
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to plot run #%d", ii)
		}
		line.LineStyle = lineStyle
		p.Add(line)
	}
	return p, nil
}

// Size returns the preview size for the drawing with the given width.
func Size(d *strokes.Drawing, width vg.Length) (vg.Length, vg.Length) {
	bounds, ok := d.Bounds()
	if !ok || bounds.Width() <= 0 {
		return width, width / 4
	}
	height := width * vg.Length(bounds.Height()/bounds.Width())
	return width, min(max(height, width/8), 2*width)
}

// WriteTo writes the preview in the given format ("png", "jpg", "svg", "pdf", ...) to w.
func WriteTo(w io.Writer, d *strokes.Drawing, format string) error {
	p, err := Plot(d)
	if err != nil {
		return err
	}
	width, height := Size(d, DefaultWidth)
	writerTo, err := p.WriterTo(width, height, format)
	if err != nil {
		return errors.Wrapf(err, "failed to render preview as %q", format)
	}
	if _, err = writerTo.WriteTo(w); err != nil {
		return errors.Wrap(err, "failed to write preview")
	}
	return nil
}

// Save writes the preview to filePath, with the format given by its extension.
func Save(filePath string, d *strokes.Drawing) error {
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(filePath)), ".")
	if format == "" {
		return errors.Errorf("preview file %q needs an extension to select the image format", filePath)
	}
	return fsutil.WriteFileAtomic(filePath, func(w io.Writer) error {
		return WriteTo(w, d, format)
	})
}
