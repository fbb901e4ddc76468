// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package weights holds Set, the named collection of tensors recovered from a model blob.
//
// A Set is immutable once built and safe to share across goroutines: every
// generation run reads from the same Set, and none of them may modify it.
// Reloading a model means building a new Set, never changing one in place.
package weights

import (
	"maps"
	"slices"

	"github.com/Eeman1113/likho/pkg/core/tensors"
	"github.com/pkg/errors"
)

// ErrMissingLayer is returned (wrapped) when a layer required by a model is not in the Set.
var ErrMissingLayer = errors.New("missing layer in weights")

// Set maps layer names to tensors.
type Set struct {
	layers map[string]*tensors.Tensor
	names  []string
}

// New creates a Set from the given map. The map is copied, but not the tensors:
// the caller must not modify them afterward.
func New(layers map[string]*tensors.Tensor) *Set {
	s := &Set{layers: maps.Clone(layers)}
	if s.layers == nil {
		s.layers = make(map[string]*tensors.Tensor)
	}
	s.names = slices.Sorted(maps.Keys(s.layers))
	return s
}

// Len returns the number of layers.
func (s *Set) Len() int { return len(s.names) }

// Names returns the sorted layer names.
func (s *Set) Names() []string { return slices.Clone(s.names) }

// Has returns whether the layer is present.
func (s *Set) Has(name string) bool {
	_, found := s.layers[name]
	return found
}

// Get returns the tensor for the layer name, or an error wrapping ErrMissingLayer.
func (s *Set) Get(name string) (*tensors.Tensor, error) {
	t, found := s.layers[name]
	if !found {
		return nil, errors.Wrapf(ErrMissingLayer, "layer %q (available: %v)", name, s.names)
	}
	return t, nil
}

// Lookup returns the tensor for the layer name and whether it was found.
func (s *Set) Lookup(name string) (*tensors.Tensor, bool) {
	t, found := s.layers[name]
	return t, found
}

// Require checks that all the given layer names are present. The error lists every missing name.
func (s *Set) Require(names ...string) error {
	var missing []string
	for _, name := range names {
		if !s.Has(name) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return errors.Wrapf(ErrMissingLayer, "layers %q", missing)
	}
	return nil
}

// Enumerate calls fn for each layer, in sorted name order.
func (s *Set) Enumerate(fn func(name string, t *tensors.Tensor)) {
	for _, name := range s.names {
		fn(name, s.layers[name])
	}
}

// NumParameters returns the total number of values held by all layers.
func (s *Set) NumParameters() (total int) {
	for _, t := range s.layers {
		total += t.Size()
	}
	return
}

// Memory returns the number of bytes used by the densely reconstructed values.
func (s *Set) Memory() (total uintptr) {
	for _, t := range s.layers {
		total += 4 * uintptr(t.Size())
	}
	return
}
