// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package shapes defines Shape, the dimensions of a weight tensor, and associated tools.
//
// All tensors in a model blob hold float32 values, so unlike a general purpose
// tensor library there is no DType: a Shape is only the list of dimensions.
//
// ## Glossary
//
//   - Rank: number of axes (dimensions) of a Tensor.
//   - Axis: the index of a dimension on a multidimensional Tensor.
//   - Dimension: the size of a multi-dimensions Tensor in one of its axes.
//   - Scalar: a shape with no axes, holding a single value.
//
// Example: a recurrent kernel with 88 inputs and 4 gates of 16 hidden units has
// shape `[88 64]`: rank 2, axis 0 has dimension 88 and axis 1 has dimension 64.
// It could be created with `shapes.Make(88, 64)`.
package shapes

import (
	"fmt"
	"math"
	"slices"

	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
)

// MaxDimension is the largest dimension representable in a model blob (dimensions are stored as uint16).
const MaxDimension = 1<<16 - 1

// MaxSize is the largest number of elements of a Shape.
const MaxSize = math.MaxInt32

// Shape represents the dimensions of a Tensor.
//
// Use Make to create a new shape, or Check to validate untrusted dimensions.
type Shape struct {
	Dimensions []int
}

// Make returns a Shape with the given dimensions.
//
// It panics (with exceptions.Panicf) if any dimension is <= 0: shapes built in code are
// expected to be valid. Use Check for dimensions read from an untrusted source.
func Make(dimensions ...int) Shape {
	s, err := Check(dimensions...)
	if err != nil {
		exceptions.Panicf("shapes.Make(%v): %v", dimensions, err)
	}
	return s
}

// Check returns a Shape with the given dimensions, or an error if any of the dimensions
// is not positive, or if the shape would have more than MaxSize elements.
func Check(dimensions ...int) (Shape, error) {
	size := 1
	for axis, dim := range dimensions {
		if dim <= 0 {
			return Shape{}, errors.Errorf("invalid dimension %d for axis %d of shape %v", dim, axis, dimensions)
		}
		if size > MaxSize/dim {
			return Shape{}, errors.Errorf("shape %v has more than %d elements", dimensions, MaxSize)
		}
		size *= dim
	}
	return Shape{Dimensions: slices.Clone(dimensions)}, nil
}

// Scalar returns the shape of a single value.
func Scalar() Shape { return Shape{} }

// Rank of the shape, that is, the number of dimensions.
func (s Shape) Rank() int { return len(s.Dimensions) }

// IsScalar returns whether the shape has no axes.
func (s Shape) IsScalar() bool { return s.Rank() == 0 }

// Dim returns the dimension of the given axis. axis can take negative numbers, in which
// case it counts as starting from the end -- so axis=-1 refers to the last axis.
// Like with a slice indexing, it panics for an out-of-bound axis.
func (s Shape) Dim(axis int) int {
	adjustedAxis := axis
	if adjustedAxis < 0 {
		adjustedAxis += s.Rank()
	}
	if adjustedAxis < 0 || adjustedAxis >= s.Rank() {
		exceptions.Panicf("Shape.Dim(%d) out-of-bounds for rank %d (shape=%s)", axis, s.Rank(), s)
	}
	return s.Dimensions[adjustedAxis]
}

// Size returns the number of elements needed for this shape. It's the product of all dimensions,
// and 1 for a scalar.
func (s Shape) Size() (size int) {
	size = 1
	for _, d := range s.Dimensions {
		size *= d
	}
	return
}

// Memory returns the number of bytes used to store the values of the shape densely as float32.
func (s Shape) Memory() uintptr {
	return 4 * uintptr(s.Size())
}

// Equal compares the dimensions of two shapes.
func (s Shape) Equal(s2 Shape) bool {
	return slices.Equal(s.Dimensions, s2.Dimensions)
}

// EqualDims returns whether the shape has the given dimensions. A dimension of -1 matches anything.
func (s Shape) EqualDims(dimensions ...int) bool {
	if len(dimensions) != s.Rank() {
		return false
	}
	for axis, dim := range dimensions {
		if dim != -1 && dim != s.Dimensions[axis] {
			return false
		}
	}
	return true
}

// AssertDims checks that the shape has the given dimensions (-1 matches anything), and returns
// an error otherwise. name is only used for the error message.
func (s Shape) AssertDims(name string, dimensions ...int) error {
	if !s.EqualDims(dimensions...) {
		return errors.Errorf("%q has shape %s, expected %v (-1 means any dimension)", name, s, dimensions)
	}
	return nil
}

// Clone returns a deep copy of the shape.
func (s Shape) Clone() Shape {
	return Shape{Dimensions: slices.Clone(s.Dimensions)}
}

// String implements fmt.Stringer, pretty-prints the shape.
func (s Shape) String() string {
	if s.Rank() == 0 {
		return "[]"
	}
	return fmt.Sprintf("%v", s.Dimensions)
}

// FlatIndex converts the per-axis indices to the flat row-major index.
// It returns an error if the number of indices doesn't match the rank or if any index is out of bounds.
func (s Shape) FlatIndex(indices ...int) (int, error) {
	if len(indices) != s.Rank() {
		return 0, errors.Errorf("shape %s requires %d indices, got %d", s, s.Rank(), len(indices))
	}
	flat := 0
	for axis, idx := range indices {
		if idx < 0 || idx >= s.Dimensions[axis] {
			return 0, errors.Errorf("index %d out of bounds for axis %d of shape %s", idx, axis, s)
		}
		flat = flat*s.Dimensions[axis] + idx
	}
	return flat, nil
}
