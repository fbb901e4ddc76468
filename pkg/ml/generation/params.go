// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package generation

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
	"golang.org/x/exp/constraints"
)

// Ranges of the sampling parameters, as offered by the front ends.
const (
	MinSpeed     = 0.6
	MaxSpeed     = 9.51
	DefaultSpeed = 2.49

	MinBias     = 0.15
	MaxBias     = 2.5
	DefaultBias = 0.75

	MinStrokeWidth     = 0.1
	MaxStrokeWidth     = 1.5
	DefaultStrokeWidth = 0.75
)

// Step ceiling of a run, see Params.StepLimit.
const (
	// DefaultStepsPerToken is the number of steps allowed per input token when Params.MaxSteps is not set.
	DefaultStepsPerToken = 40

	// HardStepLimit is never exceeded, whatever Params.MaxSteps says.
	HardStepLimit = 4000
)

// Style selects one of the writing styles the model was primed with.
type Style int

// StyleNone means no style priming.
const StyleNone Style = -1

// StylePresets are the style ids behind the front end style selector: label i (1-based) selects StylePresets[i-1].
var StylePresets = []Style{44, 54, 23, 1, 19, 6, 30, 11, 21}

// StylePreset returns the style for the selector label (1 to len(StylePresets)). Label 0 means StyleNone.
func StylePreset(label int) (Style, error) {
	if label == 0 {
		return StyleNone, nil
	}
	if label < 1 || label > len(StylePresets) {
		return StyleNone, errors.Wrapf(ErrInvalidParams, "style label %d out of range, valid labels are 1 to %d", label, len(StylePresets))
	}
	return StylePresets[label-1], nil
}

// Params are the sampling parameters of one generation run.
type Params struct {
	// Speed controls how fast the attention moves along the text, and the size of the offsets.
	Speed float64

	// Bias trades variety for legibility: larger values sample closer to the most likely strokes.
	Bias float64

	// StrokeWidth is only used when rendering.
	StrokeWidth float64

	// Style primes the model with a writing style, or StyleNone.
	Style Style

	// Seed of the sampling random number generator. 0 means a time-based seed.
	Seed uint64

	// MaxSteps overrides the step ceiling if > 0. It is still capped by HardStepLimit.
	MaxSteps int
}

// DefaultParams returns the parameters the front ends start with.
func DefaultParams() Params {
	return Params{
		Speed:       DefaultSpeed,
		Bias:        DefaultBias,
		StrokeWidth: DefaultStrokeWidth,
		Style:       StyleNone,
	}
}

// Validate returns an error wrapping ErrInvalidParams if any parameter is not usable.
// Values outside the front end ranges are valid, as long as they are positive.
func (p Params) Validate() error {
	for _, v := range []struct {
		name  string
		value float64
	}{{"speed", p.Speed}, {"bias", p.Bias}, {"stroke width", p.StrokeWidth}} {
		if math.IsNaN(v.value) || math.IsInf(v.value, 0) || v.value <= 0 {
			return errors.Wrapf(ErrInvalidParams, "%s must be a positive number, got %g", v.name, v.value)
		}
	}
	if p.Style < 0 && p.Style != StyleNone {
		return errors.Wrapf(ErrInvalidParams, "style must be >= 0 or StyleNone, got %d", p.Style)
	}
	if p.MaxSteps < 0 {
		return errors.Wrapf(ErrInvalidParams, "max steps must be >= 0, got %d", p.MaxSteps)
	}
	return nil
}

// Clamp returns a copy of the parameters with speed, bias and stroke width clamped to the front end ranges.
func (p Params) Clamp() Params {
	p.Speed = clamp(p.Speed, MinSpeed, MaxSpeed)
	p.Bias = clamp(p.Bias, MinBias, MaxBias)
	p.StrokeWidth = clamp(p.StrokeWidth, MinStrokeWidth, MaxStrokeWidth)
	return p
}

// StepLimit returns the maximum number of steps of a run over numTokens tokens.
func (p Params) StepLimit(numTokens int) int {
	limit := p.MaxSteps
	if limit <= 0 {
		limit = DefaultStepsPerToken * numTokens
	}
	return min(limit, HardStepLimit)
}

// String implements fmt.Stringer.
func (p Params) String() string {
	style := "none"
	if p.Style != StyleNone {
		style = fmt.Sprint(int(p.Style))
	}
	return fmt.Sprintf("speed=%g;bias=%g;width=%g;style=%s;seed=%d;max_steps=%d",
		p.Speed, p.Bias, p.StrokeWidth, style, p.Seed, p.MaxSteps)
}

func clamp[T constraints.Float | constraints.Integer](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
