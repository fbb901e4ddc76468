// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package blob

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/Eeman1113/likho/pkg/core/tensors"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBlob(t *testing.T) []byte {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteDense("lb", tensors.FromFlatDataAndDimensions([]float32{1, 2, 3, 4}, 4)))
	require.NoError(t, w.WriteSparse("w", tensors.FromFlatDataAndDimensions([]float32{0, 5, 0, 6}, 2, 2), tensors.EncodingStructured))
	return buf.Bytes()
}

func TestLoadFile(t *testing.T) {
	data := testBlob(t)
	filePath := filepath.Join(t.TempDir(), "model.bin")
	require.NoError(t, os.WriteFile(filePath, data, 0o644))

	set, err := Load(context.Background(), filePath, LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"lb", "w"}, set.Names())

	_, err = Load(context.Background(), filepath.Join(t.TempDir(), "missing.bin"), LoadOptions{})
	require.ErrorIs(t, err, ErrLoad)
	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr))

	// A malformed blob is a parse error, not a load error.
	require.NoError(t, os.WriteFile(filePath, data[:len(data)-1], 0o644))
	_, err = Load(context.Background(), filePath, LoadOptions{})
	require.ErrorIs(t, err, ErrTruncated)
	assert.NotErrorIs(t, err, ErrLoad)
}

func TestLoadURL(t *testing.T) {
	data := testBlob(t)
	mux := http.NewServeMux()
	mux.HandleFunc("/model.bin", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(data)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	set, err := Load(context.Background(), server.URL+"/model.bin", LoadOptions{ShowProgress: true, Client: server.Client()})
	require.NoError(t, err)
	w, found := set.Lookup("w")
	require.True(t, found)
	assert.Equal(t, []float32{0, 5, 0, 6}, w.CopyFlatData())

	_, err = Load(context.Background(), server.URL+"/missing.bin", LoadOptions{Client: server.Client()})
	require.ErrorIs(t, err, ErrLoad)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Fetch(ctx, server.URL+"/model.bin", LoadOptions{Client: server.Client()})
	require.ErrorIs(t, err, ErrLoad)
}

func TestRead(t *testing.T) {
	set, err := Read(bytes.NewReader(testBlob(t)))
	require.NoError(t, err)
	assert.Equal(t, 2, set.Len())
}
