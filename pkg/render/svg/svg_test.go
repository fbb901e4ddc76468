// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package svg

import (
	"bytes"
	"encoding/xml"
	"os"
	"path/filepath"
	"testing"

	"github.com/Eeman1113/likho/pkg/ml/strokes"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDrawing() *strokes.Drawing {
	return &strokes.Drawing{
		Width: 0.75,
		Runs: []strokes.Run{
			{{X: 0, Y: 0}, {X: 1.5, Y: 2}, {X: 3.25, Y: -1}},
			{{X: 10, Y: 0.1234}},
		},
	}
}

func TestPathData(t *testing.T) {
	assert.Equal(t, "M 0 0 L 1.5 2 L 3.25 -1 M 10 0.123 L 10 0.123", PathData(testDrawing()))
	assert.Equal(t, "", PathData(&strokes.Drawing{}))
	assert.Equal(t, "0", formatCoord(-0.0001))
	assert.Equal(t, "-12.346", formatCoord(-12.3456))
}

func TestViewBox(t *testing.T) {
	x, y, width, height := ViewBox(testDrawing())
	assert.Equal(t, -3.0, x)
	assert.Equal(t, -4.0, y)
	assert.Equal(t, 16.0, width)
	assert.Equal(t, 9.0, height)

	x, y, width, height = ViewBox(&strokes.Drawing{})
	assert.Equal(t, []float64{-3, -3, 6, 6}, []float64{x, y, width, height})
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, testDrawing()))
	out := buf.String()
	assert.Contains(t, out, `viewBox="-3.000 -4.000 16.000 9.000"`)
	assert.Contains(t, out, "stroke-width:0.75")
	assert.Contains(t, out, "fill:none")

	// Well-formed, with one path per run.
	var doc struct {
		Paths []struct {
			D string `xml:"d,attr"`
		} `xml:"path"`
	}
	require.NoError(t, xml.Unmarshal(buf.Bytes(), &doc))
	require.Len(t, doc.Paths, 2)
	assert.Equal(t, "M 0 0 L 1.5 2 L 3.25 -1", doc.Paths[0].D)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWriteError(t *testing.T) {
	require.Error(t, Write(failingWriter{}, testDrawing()))
}

func TestSlugify(t *testing.T) {
	for text, want := range map[string]string{
		"Hello, World!":           "hello-world",
		"  leading and trailing ": "leading-and-trailing",
		"Crème brûlée":            "creme-brulee",
		"a -- b":                  "a-b",
		"snake_case 42":           "snake_case-42",
		"!!!":                     "",
		"don't":                   "dont",
	} {
		assert.Equalf(t, want, Slugify(text), "Slugify(%q)", text)
	}
	assert.Equal(t, "handwriting.svg", FileName("?!"))
	assert.Equal(t, "hello-world.svg", FileName("Hello, World!"))
}

func TestExportFile(t *testing.T) {
	dir := t.TempDir()
	filePath, err := ExportFile(dir, "Hello, World!", testDrawing())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "hello-world.svg"), filePath)
	contents, err := os.ReadFile(filePath)
	require.NoError(t, err)
	assert.Contains(t, string(contents), "<svg")

	// A regular file where the directory should be.
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))
	d := testDrawing()
	_, err = ExportFile(filepath.Join(blocker, "sub"), "x", d)
	require.ErrorIs(t, err, ErrRenderIO)
	var exportErr *ExportError
	require.True(t, errors.As(err, &exportErr))
	assert.Equal(t, testDrawing(), d)
}
