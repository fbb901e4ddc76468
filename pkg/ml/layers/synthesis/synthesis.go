// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package synthesis implements a handwriting synthesis network in the style of Graves [1]:
// two stacked LSTMs with a soft attention window over the text between them, and a mixture of
// bivariate Gaussians (plus an end-of-stroke probability) predicting the next pen offset.
//
// The model is a generation.Model: it holds only read-only matrices, and the whole state of a
// run travels in the generation.HiddenState and generation.Position.
//
// [1] https://arxiv.org/abs/1308.0850, Alex Graves, "Generating Sequences With Recurrent Neural Networks", 2013
package synthesis

import (
	"math"
	"math/rand/v2"

	"github.com/Eeman1113/likho/pkg/core/tensors"
	"github.com/Eeman1113/likho/pkg/ml/generation"
	"github.com/Eeman1113/likho/pkg/ml/tokens"
	"github.com/Eeman1113/likho/pkg/ml/weights"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"k8s.io/klog/v2"
)

// ErrIncompatibleWeights is returned by New when the layer shapes don't describe a consistent model.
var ErrIncompatibleWeights = errors.New("incompatible model weights")

// EndThreshold is the pen lift probability above which, once the attention moved past the
// last token, the model considers the text written.
const EndThreshold = 0.5

// Model is a handwriting synthesis network. It is immutable and safe for concurrent use.
type Model struct {
	config       Config
	lstm1, lstm2 *lstmCell
	window       *mat.Dense
	windowBias   []float64
	mixture      *mat.Dense
	mixtureBias  []float64
	styles       *tensors.Tensor // nil if the model has no style layer.
}

var _ generation.Model = (*Model)(nil)

// New creates a Model from the weights, inferring its Config from the layer shapes.
//
// It returns an error wrapping weights.ErrMissingLayer if a required layer is missing, or
// ErrIncompatibleWeights if the shapes are not consistent. The weights are copied.
func New(ws *weights.Set) (*Model, error) {
	if err := ws.Require(RequiredLayers...); err != nil {
		return nil, err
	}
	config, err := inferConfig(ws)
	if err != nil {
		return nil, err
	}
	for name, shape := range config.LayerShapes() {
		t, err := ws.Get(name)
		if err != nil {
			return nil, err
		}
		if err := t.Shape().AssertDims(name, shape.Dimensions...); err != nil {
			return nil, errors.Wrapf(ErrIncompatibleWeights, "%v, for %+v", err, config)
		}
	}

	get := func(name string) *tensors.Tensor {
		t, _ := ws.Lookup(name)
		return t
	}
	m := &Model{
		config:      config,
		lstm1:       &lstmCell{hidden: config.Hidden, kernel: toMatrix(get(LayerLSTM1)), bias: toVector(get(LayerLSTM1Bias))},
		lstm2:       &lstmCell{hidden: config.Hidden, kernel: toMatrix(get(LayerLSTM2)), bias: toVector(get(LayerLSTM2Bias))},
		window:      toMatrix(get(LayerWindow)),
		windowBias:  toVector(get(LayerWindowBias)),
		mixture:     toMatrix(get(LayerMixture)),
		mixtureBias: toVector(get(LayerMixtureBias)),
	}
	if config.Styles > 0 {
		m.styles = get(LayerStyles)
	}
	klog.V(1).Infof("synthesis: model with hidden=%d, window=%d, mixtures=%d, vocabulary=%d, styles=%d",
		config.Hidden, config.Window, config.Mixtures, config.Vocabulary, config.Styles)
	return m, nil
}

func inferConfig(ws *weights.Set) (config Config, err error) {
	// vector returns the size of a rank-1 layer, matrix the dimensions of a rank-2 layer.
	vector := func(name string) (int, error) {
		t, _ := ws.Lookup(name)
		if err := t.Shape().AssertDims(name, -1); err != nil {
			return 0, errors.Wrap(ErrIncompatibleWeights, err.Error())
		}
		return t.Shape().Dim(0), nil
	}
	matrix := func(name string) (rows, cols int, err error) {
		t, _ := ws.Lookup(name)
		if err := t.Shape().AssertDims(name, -1, -1); err != nil {
			return 0, 0, errors.Wrap(ErrIncompatibleWeights, err.Error())
		}
		return t.Shape().Dim(0), t.Shape().Dim(1), nil
	}
	incompatible := func(format string, args ...any) error {
		return errors.Wrapf(ErrIncompatibleWeights, format, args...)
	}

	lb, err := vector(LayerLSTM1Bias)
	if err != nil {
		return config, err
	}
	if lb%4 != 0 {
		return config, incompatible("layer %q must have a size multiple of 4 (the LSTM gates), got %d", LayerLSTM1Bias, lb)
	}
	config.Hidden = lb / 4

	rows, _, err := matrix(LayerLSTM1)
	if err != nil {
		return config, err
	}
	if rows <= StrokeSize+config.Hidden {
		return config, incompatible("layer %q must have more than %d rows, got %d", LayerLSTM1, StrokeSize+config.Hidden, rows)
	}
	config.Vocabulary = rows - StrokeSize - config.Hidden

	wb, err := vector(LayerWindowBias)
	if err != nil {
		return config, err
	}
	if wb%3 != 0 {
		return config, incompatible("layer %q must have a size multiple of 3, got %d", LayerWindowBias, wb)
	}
	config.Window = wb / 3

	yb, err := vector(LayerMixtureBias)
	if err != nil {
		return config, err
	}
	if yb < 7 || (yb-1)%6 != 0 {
		return config, incompatible("layer %q must have size 1+6*mixtures, got %d", LayerMixtureBias, yb)
	}
	config.Mixtures = (yb - 1) / 6

	if ws.Has(LayerStyles) {
		config.Styles, _, err = matrix(LayerStyles)
		if err != nil {
			return config, err
		}
	}
	return config, nil
}

func toMatrix(t *tensors.Tensor) *mat.Dense {
	rows, cols := t.Shape().Dim(0), t.Shape().Dim(1)
	return mat.NewDense(rows, cols, toVector(t))
}

func toVector(t *tensors.Tensor) []float64 {
	data := make([]float64, t.Size())
	t.ConstFlatData(func(flat []float32) {
		for ii, v := range flat {
			data[ii] = float64(v)
		}
	})
	return data
}

// Config returns the dimensions of the model.
func (m *Model) Config() Config { return m.config }

// Layout of the generation.HiddenState: both LSTMs (hidden and cell), the last attention window
// and the last stroke.
func (m *Model) stateSize() int {
	return 4*m.config.Hidden + m.config.Vocabulary + StrokeSize
}

type state struct {
	h1, c1, h2, c2, window, stroke []float64
}

func (m *Model) splitState(hidden generation.HiddenState) state {
	h := m.config.Hidden
	var s state
	rest := []float64(hidden)
	for _, part := range []*[]float64{&s.h1, &s.c1, &s.h2, &s.c2} {
		*part, rest = rest[:h:h], rest[h:]
	}
	s.window, s.stroke = rest[:m.config.Vocabulary:m.config.Vocabulary], rest[m.config.Vocabulary:]
	return s
}

func (m *Model) joinState(s state) generation.HiddenState {
	hidden := make(generation.HiddenState, 0, m.stateSize())
	for _, part := range [][]float64{s.h1, s.c1, s.h2, s.c2, s.window, s.stroke} {
		hidden = append(hidden, part...)
	}
	return hidden
}

// InitialState implements generation.Model. With a style, the hidden states of both LSTMs are
// primed from the style layer. A model without a style layer ignores the style.
func (m *Model) InitialState(style generation.Style) (generation.HiddenState, generation.Position, error) {
	hidden := make(generation.HiddenState, m.stateSize())
	pos := generation.Position{Kappa: make([]float64, m.config.Window)}
	if style == generation.StyleNone {
		return hidden, pos, nil
	}
	if m.styles == nil {
		klog.V(1).Infof("synthesis: model has no style layer, ignoring style %d", style)
		return hidden, pos, nil
	}
	if style < 0 || int(style) >= m.config.Styles {
		return nil, generation.Position{}, errors.Wrapf(generation.ErrInvalidParams,
			"style %d not available, the model has %d styles", style, m.config.Styles)
	}
	row := m.styles.Row(int(style))
	s := m.splitState(hidden)
	for ii, v := range row[:m.config.Hidden] {
		s.h1[ii] = float64(v)
	}
	for ii, v := range row[m.config.Hidden:] {
		s.h2[ii] = float64(v)
	}
	return hidden, pos, nil
}

// Step implements generation.Model.
func (m *Model) Step(hidden generation.HiddenState, toks []tokens.Token, pos generation.Position,
	params generation.Params, rng *rand.Rand) (generation.Sample, generation.HiddenState, generation.Position, error) {
	if len(hidden) != m.stateSize() {
		return generation.Sample{}, nil, pos, errors.Errorf("synthesis: hidden state has size %d, expected %d", len(hidden), m.stateSize())
	}
	if len(pos.Kappa) != m.config.Window {
		return generation.Sample{}, nil, pos, errors.Errorf("synthesis: position has %d window components, expected %d", len(pos.Kappa), m.config.Window)
	}
	for ii, tok := range toks {
		if tok < 0 || int(tok) >= m.config.Vocabulary {
			return generation.Sample{}, nil, pos, errors.Errorf("synthesis: token #%d (%d) out of the model vocabulary of %d", ii, tok, m.config.Vocabulary)
		}
	}
	prev := m.splitState(hidden)
	var next state
	speedRatio := params.Speed / generation.DefaultSpeed

	// First LSTM sees the last stroke and the last attention window.
	next.h1, next.c1 = m.lstm1.step(prev.c1, prev.stroke, prev.window, prev.h1)

	// Attention window over the tokens.
	kappa, phi := m.attend(next.h1, pos.Kappa, len(toks), speedRatio)
	next.window = make([]float64, m.config.Vocabulary)
	for u, tok := range toks {
		next.window[tok] += phi[u]
	}

	// Second LSTM sees the new window and both LSTM states.
	next.h2, next.c2 = m.lstm2.step(prev.c2, prev.stroke, next.window, next.h1, prev.h2)

	// Mixture density output.
	out := mat.NewVecDense(len(m.mixtureBias), nil)
	out.MulVec(m.mixture.T(), mat.NewVecDense(len(next.h2), next.h2))
	floats.Add(out.RawVector().Data, m.mixtureBias)
	dx, dy, lifted, pLift := m.sampleMixture(out.RawVector().Data, params.Bias, rng)
	liftedValue := 0.0
	if lifted {
		liftedValue = 1
	}
	next.stroke = []float64{dx, dy, liftedValue}

	// Done once the attention is past the last token and the pen is likely to be lifted.
	phiEnd := phi[len(toks)]
	done := pLift > EndThreshold && (len(toks) == 0 || phiEnd > floats.Max(phi[:len(toks)]))

	sample := generation.Sample{DX: dx * speedRatio, DY: dy * speedRatio, PenLifted: lifted}
	if klog.V(3).Enabled() {
		klog.Infof("synthesis: sample=%+v kappa[0]=%.3f pLift=%.3f done=%v", sample, kappa[0], pLift, done)
	}
	return sample, m.joinState(next), generation.Position{Kappa: kappa, Done: done}, nil
}

// attend advances the window position and returns it, along with the window weights φ(u) for
// u in [0, numTokens]. The last one, φ(numTokens), is past the end of the text.
func (m *Model) attend(h1 []float64, prevKappa []float64, numTokens int, speedRatio float64) (kappa, phi []float64) {
	k := m.config.Window
	p := mat.NewVecDense(3*k, nil)
	p.MulVec(m.window.T(), mat.NewVecDense(len(h1), h1))
	params := p.RawVector().Data
	floats.Add(params, m.windowBias)
	alpha, beta, kappaHat := params[:k], params[k:2*k], params[2*k:]

	kappa = make([]float64, k)
	for ii := range kappa {
		kappa[ii] = prevKappa[ii] + math.Exp(kappaHat[ii])*speedRatio
		alpha[ii] = math.Exp(alpha[ii])
		beta[ii] = math.Exp(beta[ii])
	}
	phi = make([]float64, numTokens+1)
	for u := range phi {
		for ii := range kappa {
			d := kappa[ii] - float64(u)
			phi[u] += alpha[ii] * math.Exp(-beta[ii]*d*d)
		}
	}
	return kappa, phi
}
