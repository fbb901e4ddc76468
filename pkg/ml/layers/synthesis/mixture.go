// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package synthesis

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
)

// sampleMixture samples a pen offset from the mixture density output
// [eos, π(M), μx(M), μy(M), σx(M), σy(M), ρ(M)], returning it along with the sampled pen lift
// and its probability.
//
// The bias sharpens the distribution: it scales the mixture logits by (1+bias) and shrinks the
// standard deviations by exp(-bias).
func (m *Model) sampleMixture(out []float64, bias float64, rng *rand.Rand) (dx, dy float64, lifted bool, pLift float64) {
	M := m.config.Mixtures
	eos := out[0]
	params := out[1:]
	piHat, muX, muY := params[:M], params[M:2*M], params[2*M:3*M]
	sigmaX, sigmaY, rhoHat := params[3*M:4*M], params[4*M:5*M], params[5*M:6*M]

	pi := make([]float64, M)
	floats.ScaleTo(pi, 1+bias, piHat)
	softmax(pi)
	j := sampleCategorical(pi, rng.Float64())

	sx := math.Exp(sigmaX[j] - bias)
	sy := math.Exp(sigmaY[j] - bias)
	rho := math.Tanh(rhoHat[j])
	z1, z2 := rng.NormFloat64(), rng.NormFloat64()
	dx = muX[j] + sx*z1
	dy = muY[j] + sy*(rho*z1+math.Sqrt(1-rho*rho)*z2)

	pLift = sigmoid(eos)
	lifted = rng.Float64() < pLift
	return
}

// softmax normalizes the logits in place.
func softmax(logits []float64) {
	maxLogit := floats.Max(logits)
	for ii, v := range logits {
		logits[ii] = math.Exp(v - maxLogit)
	}
	floats.Scale(1/floats.Sum(logits), logits)
}

// sampleCategorical returns the index selected by u in [0, 1) over the probabilities.
func sampleCategorical(probs []float64, u float64) int {
	for ii, p := range probs {
		u -= p
		if u < 0 {
			return ii
		}
	}
	return len(probs) - 1
}
