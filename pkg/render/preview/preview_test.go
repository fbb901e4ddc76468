// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package preview

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/Eeman1113/likho/pkg/ml/strokes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot/vg"
)

func testDrawing() *strokes.Drawing {
	return &strokes.Drawing{
		Width: 0.75,
		Runs: []strokes.Run{
			{{X: 0, Y: 0}, {X: 4, Y: 1}, {X: 8, Y: -1}},
			{{X: 10, Y: 0}},
		},
	}
}

func TestPlot(t *testing.T) {
	p, err := Plot(testDrawing())
	require.NoError(t, err)
	assert.Equal(t, 0.0, p.X.Min)
	assert.Equal(t, 10.0, p.X.Max)
	// Flipped y-axis.
	assert.Equal(t, -1.0, p.Y.Min)
	assert.Equal(t, 1.0, p.Y.Max)
}

func TestSize(t *testing.T) {
	width, height := Size(testDrawing(), 10*vg.Inch)
	assert.Equal(t, 10*vg.Inch, width)
	assert.InDelta(t, float64(2*vg.Inch), float64(height), 1e-9)

	_, height = Size(&strokes.Drawing{}, 8*vg.Inch)
	assert.Equal(t, 2*vg.Inch, height)
}

func TestWritePNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTo(&buf, testDrawing(), "png"))
	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Greater(t, img.Bounds().Dx(), img.Bounds().Dy())
}

func TestSave(t *testing.T) {
	filePath := filepath.Join(t.TempDir(), "out", "preview.png")
	require.NoError(t, Save(filePath, testDrawing()))
	info, err := os.Stat(filePath)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	require.Error(t, Save(filepath.Join(t.TempDir(), "preview"), testDrawing()))
}
