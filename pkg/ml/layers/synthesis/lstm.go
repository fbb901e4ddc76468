// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package synthesis

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// lstmCell is one LSTM layer with a single kernel over the concatenated inputs (the last of
// which is the previous hidden state). The gates are laid out as input, forget, cell and output.
type lstmCell struct {
	hidden int
	kernel *mat.Dense // [numInputs, 4*hidden]
	bias   []float64  // [4*hidden]
}

// step returns the new hidden and cell states.
func (c *lstmCell) step(cell []float64, inputs ...[]float64) (h, newCell []float64) {
	x := make([]float64, 0, c.kernel.RawMatrix().Rows)
	for _, input := range inputs {
		x = append(x, input...)
	}
	gates := mat.NewVecDense(4*c.hidden, nil)
	gates.MulVec(c.kernel.T(), mat.NewVecDense(len(x), x))
	g := gates.RawVector().Data
	floats.Add(g, c.bias)

	n := c.hidden
	h = make([]float64, n)
	newCell = make([]float64, n)
	for j := range n {
		inputGate := sigmoid(g[j])
		forgetGate := sigmoid(g[n+j])
		candidate := math.Tanh(g[2*n+j])
		outputGate := sigmoid(g[3*n+j])
		newCell[j] = forgetGate*cell[j] + inputGate*candidate
		h[j] = outputGate * math.Tanh(newCell[j])
	}
	return
}

func sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}
