// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package fsutil

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "out.txt")
	err := WriteFileAtomic(path, func(w io.Writer) error {
		_, err := io.WriteString(w, "hello")
		return err
	})
	require.NoError(t, err)
	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(contents))

	// A failing writer leaves the previous file untouched and no temporary files behind.
	err = WriteFileAtomic(path, func(w io.Writer) error {
		_, _ = io.WriteString(w, "partial")
		return errors.New("boom")
	})
	require.Error(t, err)
	contents, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(contents))
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	exists, err := FileExists(path)
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = FileExists(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestReplaceTildeInDir(t *testing.T) {
	got, err := ReplaceTildeInDir("/abs/path")
	require.NoError(t, err)
	assert.Equal(t, "/abs/path", got)

	got, err = ReplaceTildeInDir("~/models/d.bin")
	require.NoError(t, err)
	assert.NotContains(t, got, "~")
	assert.Equal(t, "d.bin", filepath.Base(got))
}

func TestIsURL(t *testing.T) {
	assert.True(t, IsURL("https://example.com/d.bin"))
	assert.True(t, IsURL("http://localhost:8080/d.bin"))
	assert.False(t, IsURL("/tmp/d.bin"))
	assert.False(t, IsURL("~/d.bin"))
}
