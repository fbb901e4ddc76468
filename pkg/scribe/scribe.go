// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package scribe ties the pieces together: a Session loads a model once, and then writes texts
// as handwriting drawings.
//
// Example:
//
//	session := scribe.New(scribe.Options{})
//	if err := session.Load(ctx, "~/models/handwriting.bin"); err != nil { ... }
//	result, err := session.Write(ctx, "Hello, World!", generation.DefaultParams())
//	if err != nil { ... }
//	_, err = svg.ExportFile(outputDir, result.Text, result.Drawing)
package scribe

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Eeman1113/likho/pkg/ml/generation"
	"github.com/Eeman1113/likho/pkg/ml/layers/synthesis"
	"github.com/Eeman1113/likho/pkg/ml/strokes"
	"github.com/Eeman1113/likho/pkg/ml/tokens"
	"github.com/Eeman1113/likho/pkg/ml/weights"
	"github.com/Eeman1113/likho/pkg/ml/weights/blob"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"
)

// ErrInputTooLong is returned by Write when the text is longer than tokens.MaxInputLength.
var ErrInputTooLong = tokens.ErrInputTooLong

// ModelBuilder creates the generation model from the loaded weights.
type ModelBuilder func(ws *weights.Set) (generation.Model, error)

// SynthesisModel is the default ModelBuilder.
func SynthesisModel(ws *weights.Set) (generation.Model, error) {
	model, err := synthesis.New(ws)
	if err != nil {
		return nil, err
	}
	return model, nil
}

// Options configure a Session. The zero value is valid.
type Options struct {
	// Load options used to fetch the model.
	Load blob.LoadOptions

	// NewModel builds the model from the weights. Defaults to SynthesisModel.
	NewModel ModelBuilder

	// Alphabet used to encode the texts. Defaults to tokens.Default.
	Alphabet *tokens.Alphabet

	// MaxParallel is the number of lines WriteLines generates concurrently. Defaults to runtime.NumCPU().
	MaxParallel int

	// SmoothPoints, if > 0, smooths the drawings with strokes.Smooth using that many points per segment.
	SmoothPoints int
}

// loaded is an immutable snapshot of a successfully loaded model.
type loaded struct {
	source   string
	weights  *weights.Set
	model    generation.Model
	loadedAt time.Time
}

// Session owns the loaded model and serializes writes: a new Write (or WriteLines) cancels the
// one in flight. It is safe for concurrent use.
type Session struct {
	opts    Options
	current atomic.Pointer[loaded]
	state   atomic.Int32

	mu          sync.Mutex // Protects the fields below.
	loadErr     error
	cancelWrite context.CancelFunc
	writeSeq    uint64
}

// New creates a Session with no model loaded.
func New(opts Options) *Session {
	if opts.NewModel == nil {
		opts.NewModel = SynthesisModel
	}
	if opts.Alphabet == nil {
		opts.Alphabet = tokens.Default
	}
	if opts.MaxParallel <= 0 {
		opts.MaxParallel = runtime.NumCPU()
	}
	return &Session{opts: opts}
}

// State returns the current state of the model.
func (s *Session) State() State { return State(s.state.Load()) }

// Ready returns whether a model is loaded and can be used by Write.
func (s *Session) Ready() bool { return s.current.Load() != nil }

// Err returns the error of the last Load, nil if it succeeded.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadErr
}

// Source returns where the current model was loaded from, or "" if no model is loaded.
func (s *Session) Source() string {
	if l := s.current.Load(); l != nil {
		return l.source
	}
	return ""
}

// Weights returns the weights of the current model, or nil if no model is loaded.
func (s *Session) Weights() *weights.Set {
	if l := s.current.Load(); l != nil {
		return l.weights
	}
	return nil
}

// LoadedAt returns when the current model was installed, or the zero time if no model is loaded.
func (s *Session) LoadedAt() time.Time {
	if l := s.current.Load(); l != nil {
		return l.loadedAt
	}
	return time.Time{}
}

// Load loads the model from source (a file path or URL, see blob.Load) and makes it the current model.
//
// If it fails, the previous model (if any) is kept.
func (s *Session) Load(ctx context.Context, source string) error {
	s.state.Store(int32(StateLoading))
	ws, err := blob.Load(ctx, source, s.opts.Load)
	if err != nil {
		return s.loadFailed(source, err)
	}
	return s.install(source, ws)
}

// LoadWeights makes a model from already loaded weights the current model. The source is only
// used for logging.
func (s *Session) LoadWeights(source string, ws *weights.Set) error {
	s.state.Store(int32(StateLoading))
	return s.install(source, ws)
}

// LoadAsync runs Load in a separate goroutine. The returned channel receives its result and is closed.
func (s *Session) LoadAsync(ctx context.Context, source string) <-chan error {
	done := make(chan error, 1)
	go func() {
		defer close(done)
		done <- s.Load(ctx, source)
	}()
	return done
}

func (s *Session) install(source string, ws *weights.Set) error {
	model, err := s.opts.NewModel(ws)
	if err != nil {
		return s.loadFailed(source, errors.WithMessagef(err, "building model from %q", source))
	}
	s.current.Store(&loaded{source: source, weights: ws, model: model, loadedAt: time.Now()})
	s.mu.Lock()
	s.loadErr = nil
	s.mu.Unlock()
	s.state.Store(int32(StateReady))
	klog.V(1).Infof("scribe: model from %q ready, %d layers with %s parameters",
		source, ws.Len(), humanize.Comma(int64(ws.NumParameters())))
	return nil
}

func (s *Session) loadFailed(source string, err error) error {
	s.mu.Lock()
	s.loadErr = err
	s.mu.Unlock()
	if previous := s.current.Load(); previous != nil {
		klog.Warningf("scribe: failed to load model from %q, keeping the model from %q: %v", source, previous.source, err)
		s.state.Store(int32(StateReady))
	} else {
		s.state.Store(int32(StateFailed))
	}
	return err
}

// Result of writing one text.
type Result struct {
	// RunID identifies the generation run in the logs.
	RunID uuid.UUID

	Text    string
	Tokens  []tokens.Token
	Params  generation.Params
	Drawing *strokes.Drawing

	// Steps taken by the model, and whether it finished the text before the step ceiling.
	Steps    int
	Finished bool
	Elapsed  time.Duration
}

// beginWrite cancels the write in flight, if any, and returns the context for a new one.
func (s *Session) beginWrite(ctx context.Context) (context.Context, func()) {
	ctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	if s.cancelWrite != nil {
		s.cancelWrite()
	}
	s.writeSeq++
	seq := s.writeSeq
	s.cancelWrite = cancel
	s.mu.Unlock()
	return ctx, func() {
		s.mu.Lock()
		if s.writeSeq == seq {
			s.cancelWrite = nil
		}
		s.mu.Unlock()
		cancel()
	}
}

// Write generates the handwriting for text.
//
// It cancels any Write in flight in this session, and returns its context's error if it is itself
// cancelled. It fails with ErrInputTooLong if the text is too long, and with the generation errors
// (generation.ErrNotReady if no model is loaded, generation.ErrEmptyInput, generation.ErrInvalidParams).
func (s *Session) Write(ctx context.Context, text string, params generation.Params) (*Result, error) {
	ctx, done := s.beginWrite(ctx)
	defer done()
	return s.write(ctx, s.current.Load(), text, params)
}

// WriteLines generates the handwriting for each line concurrently, all using the same model.
// If params.Seed is set, line i uses the seed params.Seed+i.
//
// Like Write, it cancels the write in flight. If any line fails the others are cancelled, and
// the first error is returned.
func (s *Session) WriteLines(ctx context.Context, lines []string, params generation.Params) ([]*Result, error) {
	ctx, done := s.beginWrite(ctx)
	defer done()
	current := s.current.Load()
	results := make([]*Result, len(lines))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.MaxParallel)
	for ii, line := range lines {
		lineParams := params
		if params.Seed != 0 {
			lineParams.Seed = params.Seed + uint64(ii)
		}
		g.Go(func() error {
			result, err := s.write(gCtx, current, line, lineParams)
			if err != nil {
				return errors.WithMessagef(err, "line #%d", ii)
			}
			results[ii] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Session) write(ctx context.Context, current *loaded, text string, params generation.Params) (*Result, error) {
	if err := tokens.CheckLength(text); err != nil {
		return nil, err
	}
	var model generation.Model
	if current != nil {
		model = current.model
	}
	toks := s.opts.Alphabet.Encode(text)
	start := time.Now()
	run, err := generation.Generate(ctx, model, toks, params)
	if err != nil {
		return nil, err
	}
	result := &Result{
		RunID:  uuid.New(),
		Text:   tokens.Normalize(text),
		Tokens: toks,
		Params: params,
	}
	klog.V(1).Infof("scribe[%s]: writing %q (%d tokens) with %s", result.RunID, result.Text, len(toks), params)
	drawing := strokes.Assemble(run.All(), params.StrokeWidth)
	if err = run.Err(); err != nil {
		klog.V(1).Infof("scribe[%s]: interrupted after %d steps: %v", result.RunID, run.Steps(), err)
		return nil, err
	}
	if s.opts.SmoothPoints > 0 {
		drawing = strokes.Smooth(drawing, s.opts.SmoothPoints)
	}
	result.Drawing = drawing
	result.Steps = run.Steps()
	result.Finished = run.Finished()
	result.Elapsed = time.Since(start)
	klog.V(1).Infof("scribe[%s]: %d steps (finished=%v), %d runs with %d points in %s",
		result.RunID, result.Steps, result.Finished, len(drawing.Runs), drawing.NumPoints(), result.Elapsed)
	return result, nil
}
