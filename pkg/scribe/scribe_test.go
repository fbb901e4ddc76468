// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package scribe

import (
	"context"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Eeman1113/likho/pkg/ml/generation"
	"github.com/Eeman1113/likho/pkg/ml/layers/synthesis"
	"github.com/Eeman1113/likho/pkg/ml/tokens"
	"github.com/Eeman1113/likho/pkg/ml/weights"
	"github.com/Eeman1113/likho/pkg/ml/weights/blob"
	"github.com/Eeman1113/likho/pkg/support/fsutil"
	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() synthesis.Config {
	config := synthesis.DefaultConfig()
	config.Hidden = 8
	return config
}

func writeZeroModel(t *testing.T) string {
	filePath := filepath.Join(t.TempDir(), "zero.bin")
	require.NoError(t, fsutil.WriteFileAtomic(filePath, func(w io.Writer) error {
		return blob.NewWriter(w).WriteSet(synthesis.ZeroWeights(testConfig()))
	}))
	return filePath
}

func TestEndToEndZeroModel(t *testing.T) {
	ctx := context.Background()
	session := New(Options{})
	assert.Equal(t, StateNotLoaded, session.State())

	_, err := session.Write(ctx, "hello", generation.DefaultParams())
	require.ErrorIs(t, err, generation.ErrNotReady)

	require.NoError(t, session.Load(ctx, writeZeroModel(t)))
	assert.Equal(t, StateReady, session.State())
	assert.True(t, session.Ready())
	assert.NoError(t, session.Err())

	params := generation.Params{Speed: 2.49, Bias: 0.75, StrokeWidth: 0.75, Style: generation.StyleNone, Seed: 17}
	result, err := session.Write(ctx, "Hello  world", params)
	require.NoError(t, err)
	assert.Equal(t, "Hello world", result.Text)
	assert.Equal(t, tokens.Encode("Hello world"), result.Tokens)
	assert.Equal(t, 0.75, result.Drawing.Width)
	require.NotEmpty(t, result.Drawing.Runs)
	for _, run := range result.Drawing.Runs {
		assert.NotEmpty(t, run)
	}
	assert.Equal(t, result.Steps, result.Drawing.NumPoints())
	assert.LessOrEqual(t, result.Steps, params.StepLimit(len(result.Tokens)))
	assert.NotEqual(t, [16]byte{}, [16]byte(result.RunID))

	// Same seed, same drawing.
	again, err := session.Write(ctx, "Hello world", params)
	require.NoError(t, err)
	assert.Equal(t, result.Drawing, again.Drawing)
	assert.NotEqual(t, result.RunID, again.RunID)
}

func TestWriteErrors(t *testing.T) {
	ctx := context.Background()
	session := New(Options{})
	require.NoError(t, session.LoadWeights("zero", synthesis.ZeroWeights(testConfig())))

	_, err := session.Write(ctx, strings.Repeat("x", tokens.MaxInputLength+1), generation.DefaultParams())
	require.ErrorIs(t, err, ErrInputTooLong)

	_, err = session.Write(ctx, " \t ", generation.DefaultParams())
	require.ErrorIs(t, err, generation.ErrEmptyInput)

	params := generation.DefaultParams()
	params.Bias = 0
	_, err = session.Write(ctx, "hi", params)
	require.ErrorIs(t, err, generation.ErrInvalidParams)
}

func TestLoadStates(t *testing.T) {
	ctx := context.Background()
	session := New(Options{})
	missing := filepath.Join(t.TempDir(), "missing.bin")

	require.ErrorIs(t, session.Load(ctx, missing), blob.ErrLoad)
	assert.Equal(t, StateFailed, session.State())
	assert.False(t, session.Ready())
	require.Error(t, session.Err())

	modelPath := writeZeroModel(t)
	require.NoError(t, <-session.LoadAsync(ctx, modelPath))
	assert.Equal(t, StateReady, session.State())
	assert.Equal(t, modelPath, session.Source())
	assert.False(t, session.LoadedAt().IsZero())
	assert.Equal(t, testConfig().LayerShapes()["l"], must.M1(session.Weights().Get("l")).Shape())

	// A failed reload keeps the previous model.
	corrupt := filepath.Join(t.TempDir(), "corrupt.bin")
	data, err := os.ReadFile(modelPath)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(corrupt, data[:len(data)-3], 0o644))
	require.ErrorIs(t, session.Load(ctx, corrupt), blob.ErrTruncated)
	assert.Equal(t, StateReady, session.State())
	assert.Equal(t, modelPath, session.Source())
	require.Error(t, session.Err())
	_, err = session.Write(ctx, "still works", generation.DefaultParams())
	require.NoError(t, err)

	// Weights that don't make a model are a failed load too.
	layers := synthesis.ZeroLayers(testConfig())
	delete(layers, synthesis.LayerMixture)
	require.ErrorIs(t, session.LoadWeights("partial", weights.New(layers)), weights.ErrMissingLayer)
	assert.Equal(t, modelPath, session.Source())

	require.NoError(t, session.LoadWeights("zero", synthesis.ZeroWeights(testConfig())))
	assert.NoError(t, session.Err())
}

// slowModel takes a millisecond per step, and signals when its first step starts.
type slowModel struct {
	started chan struct{}
	once    sync.Once
}

func (m *slowModel) InitialState(style generation.Style) (generation.HiddenState, generation.Position, error) {
	return generation.HiddenState{}, generation.Position{}, nil
}

func (m *slowModel) Step(hidden generation.HiddenState, toks []tokens.Token, pos generation.Position,
	params generation.Params, rng *rand.Rand) (generation.Sample, generation.HiddenState, generation.Position, error) {
	m.once.Do(func() { close(m.started) })
	time.Sleep(time.Millisecond)
	return generation.Sample{DX: 1, PenLifted: rng.IntN(2) == 0}, hidden, pos, nil
}

func TestWriteCancelsPrevious(t *testing.T) {
	ctx := context.Background()
	model := &slowModel{started: make(chan struct{})}
	session := New(Options{NewModel: func(ws *weights.Set) (generation.Model, error) { return model, nil }})
	require.NoError(t, session.LoadWeights("slow", weights.New(nil)))

	slow := generation.DefaultParams()
	slow.MaxSteps = generation.HardStepLimit
	firstErr := make(chan error, 1)
	go func() {
		_, err := session.Write(ctx, "the first text", slow)
		firstErr <- err
	}()
	<-model.started

	quick := generation.DefaultParams()
	quick.MaxSteps = 5
	result, err := session.Write(ctx, "second", quick)
	require.NoError(t, err)
	assert.Equal(t, 5, result.Steps)
	require.ErrorIs(t, <-firstErr, context.Canceled)

	// Cancelling the caller's context.
	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = session.Write(cancelled, "never", quick)
	require.ErrorIs(t, err, context.Canceled)
}

func TestWriteLines(t *testing.T) {
	ctx := context.Background()
	session := New(Options{MaxParallel: 2, SmoothPoints: 2})
	require.NoError(t, session.LoadWeights("zero", synthesis.ZeroWeights(testConfig())))

	params := generation.DefaultParams()
	params.Seed = 100
	lines := []string{"first line", "second", "and the third"}
	results, err := session.WriteLines(ctx, lines, params)
	require.NoError(t, err)
	require.Len(t, results, len(lines))
	for ii, result := range results {
		assert.Equal(t, lines[ii], result.Text)
		assert.Equal(t, params.Seed+uint64(ii), result.Params.Seed)
		assert.False(t, result.Drawing.IsEmpty())
	}

	// Each line is the same as writing it alone with its seed.
	params.Seed = 101
	alone, err := session.Write(ctx, "second", params)
	require.NoError(t, err)
	assert.Equal(t, alone.Drawing, results[1].Drawing)

	_, err = session.WriteLines(ctx, []string{"ok", ""}, params)
	require.ErrorIs(t, err, generation.ErrEmptyInput)
}
