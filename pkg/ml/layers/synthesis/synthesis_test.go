// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package synthesis

import (
	"bytes"
	"context"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/Eeman1113/likho/pkg/core/shapes"
	"github.com/Eeman1113/likho/pkg/core/tensors"
	"github.com/Eeman1113/likho/pkg/ml/generation"
	"github.com/Eeman1113/likho/pkg/ml/tokens"
	"github.com/Eeman1113/likho/pkg/ml/weights"
	"github.com/Eeman1113/likho/pkg/ml/weights/blob"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func smallConfig() Config {
	return Config{Hidden: 4, Window: 2, Mixtures: 3, Vocabulary: tokens.Default.Size(), Styles: 5}
}

func TestNew(t *testing.T) {
	t.Run("InferConfig", func(t *testing.T) {
		model, err := New(ZeroWeights(smallConfig()))
		require.NoError(t, err)
		assert.Equal(t, smallConfig(), model.Config())

		model, err = New(ZeroWeights(DefaultConfig()))
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig(), model.Config())

		noStyles := smallConfig()
		noStyles.Styles = 0
		model, err = New(ZeroWeights(noStyles))
		require.NoError(t, err)
		assert.Equal(t, 0, model.Config().Styles)
	})

	t.Run("MissingLayer", func(t *testing.T) {
		layers := ZeroLayers(smallConfig())
		delete(layers, LayerWindowBias)
		_, err := New(weights.New(layers))
		require.ErrorIs(t, err, weights.ErrMissingLayer)
	})

	t.Run("IncompatibleShapes", func(t *testing.T) {
		for name, shape := range map[string]shapes.Shape{
			LayerLSTM1Bias:   shapes.Make(15),
			LayerLSTM2:       shapes.Make(10, 16),
			LayerWindow:      shapes.Make(4, 9),
			LayerMixtureBias: shapes.Make(20),
			LayerMixture:     shapes.Make(4, 18),
			LayerStyles:      shapes.Make(40),
			LayerLSTM1:       shapes.Make(2, 3, 4),
		} {
			layers := ZeroLayers(smallConfig())
			layers[name] = tensors.FromShape(shape)
			_, err := New(weights.New(layers))
			require.ErrorIsf(t, err, ErrIncompatibleWeights, "layer %q with shape %s", name, shape)
		}
	})

	t.Run("FromBlob", func(t *testing.T) {
		var buf bytes.Buffer
		w := blob.NewWriter(&buf)
		for name, tensor := range ZeroLayers(smallConfig()) {
			if blob.StructuredLayers[name] {
				require.NoError(t, w.WriteSparse(name, tensor, tensors.EncodingStructured))
			} else {
				require.NoError(t, w.WriteSparse(name, tensor, tensors.EncodingFlat))
			}
		}
		ws, err := blob.Parse(buf.Bytes())
		require.NoError(t, err)
		model, err := New(ws)
		require.NoError(t, err)
		assert.Equal(t, smallConfig(), model.Config())
	})
}

func TestInitialState(t *testing.T) {
	config := smallConfig()
	layers := ZeroLayers(config)
	styles := make([]float32, config.Styles*2*config.Hidden)
	for ii := range styles {
		styles[ii] = float32(ii)
	}
	layers[LayerStyles] = tensors.FromFlatDataAndDimensions(styles, config.Styles, 2*config.Hidden)
	model, err := New(weights.New(layers))
	require.NoError(t, err)

	hidden, pos, err := model.InitialState(generation.StyleNone)
	require.NoError(t, err)
	assert.Len(t, hidden, model.stateSize())
	assert.Equal(t, make([]float64, config.Window), pos.Kappa)
	assert.False(t, pos.Done)

	hidden, _, err = model.InitialState(2)
	require.NoError(t, err)
	s := model.splitState(hidden)
	rowStart := float64(2 * 2 * config.Hidden)
	assert.Equal(t, []float64{rowStart, rowStart + 1, rowStart + 2, rowStart + 3}, s.h1)
	assert.Equal(t, []float64{rowStart + 4, rowStart + 5, rowStart + 6, rowStart + 7}, s.h2)
	assert.Equal(t, make([]float64, config.Hidden), s.c1)

	_, _, err = model.InitialState(generation.Style(config.Styles))
	require.ErrorIs(t, err, generation.ErrInvalidParams)

	// Without a style layer the style is ignored.
	config.Styles = 0
	model, err = New(ZeroWeights(config))
	require.NoError(t, err)
	hidden, _, err = model.InitialState(44)
	require.NoError(t, err)
	assert.Equal(t, make([]float64, model.stateSize()), []float64(hidden))
}

func TestStep(t *testing.T) {
	model, err := New(ZeroWeights(smallConfig()))
	require.NoError(t, err)
	toks := tokens.Encode("ab")
	params := generation.DefaultParams()
	rng := rand.New(rand.NewPCG(1, 2))

	hidden, pos, err := model.InitialState(params.Style)
	require.NoError(t, err)
	sample, next, nextPos, err := model.Step(hidden, toks, pos, params, rng)
	require.NoError(t, err)
	assert.Len(t, next, model.stateSize())
	assert.False(t, math.IsNaN(sample.DX) || math.IsNaN(sample.DY))

	// Zero weights: every window component advances by exactly one token at the default speed.
	assert.InDeltaSlice(t, []float64{1, 1}, nextPos.Kappa, 1e-9)
	assert.Equal(t, []float64{0, 0}, pos.Kappa, "input position must not be modified")

	// The window is the sum of the attention weights over the one-hot tokens.
	_, phi := model.attend(model.splitState(next).h1, pos.Kappa, len(toks), 1)
	var phiSum float64
	for _, p := range phi[:len(toks)] {
		phiSum += p
	}
	var windowSum float64
	for _, v := range model.splitState(next).window {
		windowSum += v
	}
	assert.InDelta(t, phiSum, windowSum, 1e-9)

	// The last stroke is fed back, unscaled.
	stroke := model.splitState(next).stroke
	assert.InDelta(t, sample.DX, stroke[0], 1e-12)
	assert.InDelta(t, sample.DY, stroke[1], 1e-12)

	// Errors.
	_, _, _, err = model.Step(hidden[1:], toks, pos, params, rng)
	require.Error(t, err)
	_, _, _, err = model.Step(hidden, toks, generation.Position{}, params, rng)
	require.Error(t, err)
	_, _, _, err = model.Step(hidden, []tokens.Token{tokens.Start, 200, tokens.End}, pos, params, rng)
	require.Error(t, err)
}

func TestSpeedAndBias(t *testing.T) {
	model, err := New(ZeroWeights(smallConfig()))
	require.NoError(t, err)
	toks := tokens.Encode("speed")
	hidden, pos, err := model.InitialState(generation.StyleNone)
	require.NoError(t, err)

	stats := func(params generation.Params) (meanAbs, kappa float64) {
		rng := rand.New(rand.NewPCG(3, 4))
		const n = 2000
		for range n {
			sample, _, nextPos, err := model.Step(hidden, toks, pos, params, rng)
			require.NoError(t, err)
			meanAbs += math.Abs(sample.DX) / n
			kappa = nextPos.Kappa[0]
		}
		return
	}
	params := generation.DefaultParams()
	baseAbs, baseKappa := stats(params)

	params.Speed = 2 * generation.DefaultSpeed
	fastAbs, fastKappa := stats(params)
	assert.InDelta(t, 2*baseKappa, fastKappa, 1e-9)
	assert.InDelta(t, 2*baseAbs, fastAbs, 1e-9)

	// Larger bias shrinks the offsets.
	params = generation.DefaultParams()
	params.Bias = 2
	biasedAbs, _ := stats(params)
	assert.Less(t, biasedAbs, baseAbs)
}

func TestGenerateTerminates(t *testing.T) {
	config := smallConfig()
	layers := ZeroLayers(config)
	// Pen lift probability sigmoid(3) ~ 0.95: the model finishes as soon as the window passes the text.
	eos := make([]float32, 1+6*config.Mixtures)
	eos[0] = 3
	layers[LayerMixtureBias] = tensors.FromFlatDataAndDimensions(eos, len(eos))
	model, err := New(weights.New(layers))
	require.NoError(t, err)

	toks := tokens.Encode("hi")
	params := generation.DefaultParams()
	params.Seed = 7
	run, err := generation.Generate(context.Background(), model, toks, params)
	require.NoError(t, err)
	samples, err := run.Collect()
	require.NoError(t, err)
	assert.True(t, run.Finished())
	assert.Len(t, samples, len(toks))

	// Twice the speed, half the steps.
	params.Speed = 2 * generation.DefaultSpeed
	run, err = generation.Generate(context.Background(), model, toks, params)
	require.NoError(t, err)
	samples, err = run.Collect()
	require.NoError(t, err)
	assert.True(t, run.Finished())
	assert.Len(t, samples, len(toks)/2)

	// The zero model never reaches the end threshold, and stops at the ceiling.
	model, err = New(ZeroWeights(config))
	require.NoError(t, err)
	params = generation.DefaultParams()
	run, err = generation.Generate(context.Background(), model, toks, params)
	require.NoError(t, err)
	samples, err = run.Collect()
	require.NoError(t, err)
	assert.False(t, run.Finished())
	assert.Len(t, samples, params.StepLimit(len(toks)))
}

func TestMixtureHelpers(t *testing.T) {
	logits := []float64{1, 2, 3}
	softmax(logits)
	assert.InDelta(t, 1.0, logits[0]+logits[1]+logits[2], 1e-12)
	assert.Greater(t, logits[2], logits[1])

	probs := []float64{0.2, 0.5, 0.3}
	assert.Equal(t, 0, sampleCategorical(probs, 0))
	assert.Equal(t, 1, sampleCategorical(probs, 0.3))
	assert.Equal(t, 2, sampleCategorical(probs, 0.99))
	assert.Equal(t, 2, sampleCategorical(probs, 1))
}
