// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package generation drives a handwriting model step by step, producing a lazy sequence of pen
// offsets for an encoded text.
//
// The model itself is pluggable (see Model): the package only owns the loop, the sampling
// parameters, termination and cancellation.
package generation

import (
	"math/rand/v2"

	"github.com/Eeman1113/likho/pkg/ml/tokens"
	"github.com/pkg/errors"
)

var (
	// ErrNotReady is returned when generating without a model.
	ErrNotReady = errors.New("model not ready")

	// ErrEmptyInput is returned when the text has nothing to write.
	ErrEmptyInput = errors.New("empty input")

	// ErrInvalidParams is wrapped by all sampling parameter validation errors.
	ErrInvalidParams = errors.New("invalid sampling parameters")
)

// Sample is one step of the pen: an offset from the previous position, and whether the pen
// is lifted after reaching the new position.
type Sample struct {
	DX, DY    float64
	PenLifted bool
}

// HiddenState is the recurrent state carried between steps. Its layout is owned by the Model.
type HiddenState []float64

// Position is where the model is on the input text.
type Position struct {
	// Kappa holds the model's attention position(s) along the tokens.
	Kappa []float64

	// Done is set by the model when it finished writing the text.
	Done bool
}

// Model is the recurrent handwriting model. Implementations must be safe for concurrent use:
// all the state of a run is passed in and returned, never stored in the model.
type Model interface {
	// InitialState returns the state to start a run with, primed with the given style.
	InitialState(style Style) (HiddenState, Position, error)

	// Step samples the next pen offset given the state, the input tokens and the current position.
	// It returns the sample, the next state and the next position.
	Step(hidden HiddenState, toks []tokens.Token, pos Position, params Params, rng *rand.Rand) (Sample, HiddenState, Position, error)
}
