// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package generation

import (
	"context"
	"iter"
	"math/rand/v2"
	"slices"
	"sync/atomic"
	"time"

	"github.com/Eeman1113/likho/pkg/ml/tokens"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Run is one lazy generation over a text. Create it with Generate and consume it with All.
type Run struct {
	ctx    context.Context
	model  Model
	toks   []tokens.Token
	params Params
	rng    *rand.Rand
	limit  int

	hidden HiddenState
	pos    Position

	consumed atomic.Bool
	steps    int
	finished bool
	err      error
}

// Generate validates its inputs and prepares a run of the model over toks.
//
// It fails fast, before any step is taken: ErrNotReady if model is nil, ErrEmptyInput if toks
// hold only framing tokens, ErrInvalidParams if params don't validate. Errors from the model
// initialization are returned as is.
//
// The steps are only computed while the sequence returned by Run.All is ranged over.
func Generate(ctx context.Context, model Model, toks []tokens.Token, params Params) (*Run, error) {
	if model == nil {
		return nil, errors.WithStack(ErrNotReady)
	}
	if tokens.IsEmpty(toks) {
		return nil, errors.WithStack(ErrEmptyInput)
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	hidden, pos, err := model.InitialState(params.Style)
	if err != nil {
		return nil, errors.WithMessagef(err, "initializing model with style %d", params.Style)
	}
	seed := params.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &Run{
		ctx:    ctx,
		model:  model,
		toks:   slices.Clone(toks),
		params: params,
		rng:    rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		limit:  params.StepLimit(len(toks)),
		hidden: hidden,
		pos:    pos,
	}, nil
}

// All returns the sequence of samples. It can only be ranged over once: later calls return an
// empty sequence.
//
// The sequence ends when the model is done, when the step ceiling is reached, when the context
// is cancelled or when the model fails. Check Err afterward.
func (r *Run) All() iter.Seq[Sample] {
	return func(yield func(Sample) bool) {
		if r.consumed.Swap(true) {
			return
		}
		for r.steps < r.limit {
			if err := r.ctx.Err(); err != nil {
				r.err = err
				return
			}
			sample, hidden, pos, err := r.model.Step(r.hidden, r.toks, r.pos, r.params, r.rng)
			if err != nil {
				r.err = errors.WithMessagef(err, "generation step %d", r.steps)
				return
			}
			r.steps++
			r.hidden, r.pos = hidden, pos
			if !yield(sample) {
				return
			}
			if pos.Done {
				r.finished = true
				return
			}
		}
		klog.Warningf("generation: stopped after the ceiling of %d steps without finishing %d tokens", r.limit, len(r.toks))
	}
}

// Collect consumes the run and returns all its samples.
func (r *Run) Collect() ([]Sample, error) {
	samples := slices.Collect(r.All())
	return samples, r.Err()
}

// Err returns the error that interrupted the run, if any: a context error if it was cancelled.
func (r *Run) Err() error { return r.err }

// Steps returns the number of samples produced so far.
func (r *Run) Steps() int { return r.steps }

// Limit returns the step ceiling of the run.
func (r *Run) Limit() int { return r.limit }

// Finished returns whether the model signaled it was done, as opposed to hitting the step ceiling
// or being interrupted.
func (r *Run) Finished() bool { return r.finished }
