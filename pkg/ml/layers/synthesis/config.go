// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package synthesis

import (
	"github.com/Eeman1113/likho/pkg/core/shapes"
	"github.com/Eeman1113/likho/pkg/core/tensors"
	"github.com/Eeman1113/likho/pkg/ml/tokens"
	"github.com/Eeman1113/likho/pkg/ml/weights"
)

// Layer names read from the weights.
const (
	LayerLSTM1       = "l"
	LayerLSTM1Bias   = "lb"
	LayerWindow      = "w"
	LayerWindowBias  = "wb"
	LayerLSTM2       = "r"
	LayerLSTM2Bias   = "rb"
	LayerMixture     = "y"
	LayerMixtureBias = "yb"
	LayerStyles      = "s"
)

// RequiredLayers are the layers New fails without.
var RequiredLayers = []string{
	LayerLSTM1, LayerLSTM1Bias, LayerWindow, LayerWindowBias,
	LayerLSTM2, LayerLSTM2Bias, LayerMixture, LayerMixtureBias,
}

// StrokeSize is the size of the pen input of each step: (dx, dy, pen lifted).
const StrokeSize = 3

// Config holds the dimensions of a synthesis model. They are inferred from the weights by New.
type Config struct {
	// Hidden is the size of the state of both LSTMs.
	Hidden int

	// Window is the number of Gaussian components of the attention window.
	Window int

	// Mixtures is the number of bivariate Gaussian components of the output distribution.
	Mixtures int

	// Vocabulary is the size of the one-hot token encoding.
	Vocabulary int

	// Styles is the number of styles the model can be primed with, 0 if none.
	Styles int
}

// DefaultConfig is a small configuration, used for zero models.
func DefaultConfig() Config {
	return Config{
		Hidden:     32,
		Window:     10,
		Mixtures:   20,
		Vocabulary: tokens.Default.Size(),
		Styles:     64, // Room for all the style presets.
	}
}

// LayerShapes returns the expected shape of each layer for the configuration.
func (c Config) LayerShapes() map[string]shapes.Shape {
	h := c.Hidden
	layerShapes := map[string]shapes.Shape{
		LayerLSTM1:       shapes.Make(StrokeSize+c.Vocabulary+h, 4*h),
		LayerLSTM1Bias:   shapes.Make(4 * h),
		LayerWindow:      shapes.Make(h, 3*c.Window),
		LayerWindowBias:  shapes.Make(3 * c.Window),
		LayerLSTM2:       shapes.Make(StrokeSize+c.Vocabulary+2*h, 4*h),
		LayerLSTM2Bias:   shapes.Make(4 * h),
		LayerMixture:     shapes.Make(h, 1+6*c.Mixtures),
		LayerMixtureBias: shapes.Make(1 + 6*c.Mixtures),
	}
	if c.Styles > 0 {
		layerShapes[LayerStyles] = shapes.Make(c.Styles, 2*h)
	}
	return layerShapes
}

// ZeroLayers returns all-zero tensors for every layer of the configuration.
func ZeroLayers(c Config) map[string]*tensors.Tensor {
	layers := make(map[string]*tensors.Tensor)
	for name, shape := range c.LayerShapes() {
		layers[name] = tensors.FromShape(shape)
	}
	return layers
}

// ZeroWeights returns the weights of a model with all parameters set to zero.
//
// Such a model ignores the text and samples offsets from a centered Gaussian, lifting the pen
// half of the time: useful to exercise the whole pipeline without a trained model.
func ZeroWeights(c Config) *weights.Set {
	return weights.New(ZeroLayers(c))
}
