// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package tensors implement a `Tensor`, a float32 multidimensional array used to hold model weights.
//
// Tensors are defined by their shape (see package shapes) and their content, always stored densely
// in row-major order. A Tensor also remembers how it was stored in the model blob it was read from
// (see Storage and SparseEncoding): sparse tensors are reconstructed densely when loaded.
//
// There are various ways to construct a Tensor:
//
//   - FromShape(shape shapes.Shape): creates a tensor with the given shape, and zero values.
//   - FromFlatData(shape, data): creates a Tensor with the given shape, checking the size of the data.
//   - FromFlatDataAndDimensions(data, dimensions...): same, but panics on a mismatch. Example:
//
//     t := FromFlatDataAndDimensions([]float32{1, 2, 3, 4}, 2, 2) // Tensor with [[1,2], [3,4]]
//
// Tensors are meant to be shared read-only once built: the accessors that expose the
// underlying storage (ConstFlatData, Row) must not be used to modify it.
package tensors

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/Eeman1113/likho/pkg/core/shapes"
	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
)

// Storage describes how a tensor was stored in a model blob.
//
//go:generate go tool enumer -type=Storage -trimprefix=Storage -transform=snake -text -values -output=gen_storage_enumer.go
type Storage int

const (
	StorageDense Storage = iota
	StorageSparse
)

// SparseEncoding describes how the indices of a sparse tensor are encoded in a model blob.
//
//go:generate go tool enumer -type=SparseEncoding -trimprefix=Encoding -transform=snake -text -values -output=gen_sparseencoding_enumer.go
type SparseEncoding int

const (
	// EncodingNone is used by dense tensors.
	EncodingNone SparseEncoding = iota

	// EncodingFlat stores one 16-bit delta per value, accumulated into a running flat index.
	EncodingFlat

	// EncodingStructured stores one 8-bit column delta per value, row by row, for rank-2 tensors.
	// A zero delta (other than on the first value) starts a new row.
	EncodingStructured
)

// Tensor is a dense float32 multidimensional array.
type Tensor struct {
	shape    shapes.Shape
	flat     []float32
	storage  Storage
	encoding SparseEncoding
	nonZeros int
}

// FromShape returns a tensor with the given shape filled with zeros.
func FromShape(shape shapes.Shape) *Tensor {
	return &Tensor{shape: shape.Clone(), flat: make([]float32, shape.Size()), storage: StorageDense}
}

// FromFlatData returns a dense tensor holding data (not copied) with the given shape.
//
// It returns an error if len(data) doesn't match the shape size.
func FromFlatData(shape shapes.Shape, data []float32) (*Tensor, error) {
	if len(data) != shape.Size() {
		return nil, errors.Errorf("tensors.FromFlatData: shape %s requires %d values, got %d", shape, shape.Size(), len(data))
	}
	return &Tensor{shape: shape.Clone(), flat: data, storage: StorageDense}, nil
}

// FromFlatDataAndDimensions is like FromFlatData, but it takes the dimensions directly, and it panics
// on a mismatch. Convenient for tests and for tensors built in code.
func FromFlatDataAndDimensions(data []float32, dimensions ...int) *Tensor {
	t, err := FromFlatData(shapes.Make(dimensions...), data)
	if err != nil {
		panic(err)
	}
	return t
}

// Empty returns the "empty tensor": a scalar shape holding no values.
// It is what a model blob record with a value count of 0 and rank 0 decodes to.
func Empty() *Tensor {
	return &Tensor{shape: shapes.Scalar(), storage: StorageDense}
}

// MarkSparse records that the tensor was stored sparsely with the given encoding and number of
// stored (non-zero) entries. It returns the tensor itself.
func (t *Tensor) MarkSparse(encoding SparseEncoding, nonZeros int) *Tensor {
	t.storage = StorageSparse
	t.encoding = encoding
	t.nonZeros = nonZeros
	return t
}

// Shape of the tensor.
func (t *Tensor) Shape() shapes.Shape { return t.shape }

// Size is the number of values held, 0 for the empty tensor.
func (t *Tensor) Size() int { return len(t.flat) }

// IsEmpty returns whether the tensor holds no values.
func (t *Tensor) IsEmpty() bool { return len(t.flat) == 0 }

// Storage returns how the tensor was stored in the model blob.
func (t *Tensor) Storage() Storage { return t.storage }

// Encoding returns the sparse encoding used in the model blob, EncodingNone for dense tensors.
func (t *Tensor) Encoding() SparseEncoding { return t.encoding }

// NonZeros returns the number of stored entries: for dense tensors, the size of the tensor.
func (t *Tensor) NonZeros() int {
	if t.storage == StorageDense {
		return len(t.flat)
	}
	return t.nonZeros
}

// ConstFlatData calls accessFn with the flat (row-major) values of the tensor.
// accessFn must not modify or retain the slice.
func (t *Tensor) ConstFlatData(accessFn func(flat []float32)) {
	accessFn(t.flat)
}

// CopyFlatData returns a copy of the flat values of the tensor.
func (t *Tensor) CopyFlatData() []float32 {
	return slices.Clone(t.flat)
}

// At returns the value at the given indices. It panics if the indices are invalid.
func (t *Tensor) At(indices ...int) float32 {
	flat, err := t.shape.FlatIndex(indices...)
	if err != nil {
		exceptions.Panicf("Tensor.At: %v", err)
	}
	return t.flat[flat]
}

// Row returns the values of row `i` of a rank-2 tensor. The returned slice must not be modified.
func (t *Tensor) Row(i int) []float32 {
	if t.shape.Rank() != 2 {
		exceptions.Panicf("Tensor.Row(%d) requires a rank-2 tensor, got shape %s", i, t.shape)
	}
	cols := t.shape.Dim(1)
	if i < 0 || i >= t.shape.Dim(0) {
		exceptions.Panicf("Tensor.Row(%d) out of bounds for shape %s", i, t.shape)
	}
	return t.flat[i*cols : (i+1)*cols : (i+1)*cols]
}

// Equal returns whether both tensors have the same shape and values (NaNs are never equal).
// The storage information is not compared.
func (t *Tensor) Equal(t2 *Tensor) bool {
	return t.shape.Equal(t2.shape) && slices.Equal(t.flat, t2.flat)
}

// InDelta returns whether both tensors have the same shape and all values are within delta.
func (t *Tensor) InDelta(t2 *Tensor, delta float64) bool {
	if !t.shape.Equal(t2.shape) || len(t.flat) != len(t2.flat) {
		return false
	}
	for ii, v := range t.flat {
		if math.Abs(float64(v)-float64(t2.flat[ii])) > delta {
			return false
		}
	}
	return true
}

// String implements fmt.Stringer. Large tensors are abbreviated.
func (t *Tensor) String() string {
	const maxValues = 8
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s%s", t.storage, t.shape)
	if t.storage == StorageSparse {
		fmt.Fprintf(&sb, "{%s, nnz=%d}", t.encoding, t.nonZeros)
	}
	values := t.flat
	abbreviated := false
	if len(values) > maxValues {
		values = values[:maxValues]
		abbreviated = true
	}
	fmt.Fprintf(&sb, "%v", values)
	if abbreviated {
		sb.WriteString("...")
	}
	return sb.String()
}
