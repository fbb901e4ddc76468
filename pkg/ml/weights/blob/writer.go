// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package blob

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"

	"github.com/Eeman1113/likho/pkg/core/shapes"
	"github.com/Eeman1113/likho/pkg/core/tensors"
	"github.com/Eeman1113/likho/pkg/ml/weights"
	"github.com/pkg/errors"
)

// Writer encodes tensors as model blob records.
//
// Sparse records are written with the explicit encoding flags (FlagStructured or FlagFlat),
// unless LegacyFlags is set, in which case FlagSparse is written and the encoding must match
// the reserved name table (see EncodingForName).
type Writer struct {
	w           io.Writer
	names       map[string]bool
	LegacyFlags bool
}

// NewWriter returns a Writer that writes records to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w, names: make(map[string]bool)}
}

// WriteTensor writes the tensor using the storage it was read with: dense tensors are written
// densely, sparse tensors with their original sparse encoding.
func (w *Writer) WriteTensor(name string, t *tensors.Tensor) error {
	if t.Storage() == tensors.StorageSparse {
		return w.WriteSparse(name, t, t.Encoding())
	}
	return w.WriteDense(name, t)
}

// WriteDense writes the tensor as a dense record.
func (w *Writer) WriteDense(name string, t *tensors.Tensor) error {
	var values []float32
	t.ConstFlatData(func(flat []float32) { values = flat })
	return w.writeRecord(name, FlagDense, values, nil, 0, t.Shape())
}

// WriteSparse writes only the non-zero values of the tensor, with the given sparse encoding.
// EncodingStructured requires a rank-2 tensor.
func (w *Writer) WriteSparse(name string, t *tensors.Tensor, encoding tensors.SparseEncoding) error {
	var (
		values []float32
		deltas []int
		err    error
	)
	if t.Shape().Size() > MaxSparseSize {
		return errors.Errorf("layer %q has shape %s, sparse records are limited to %d elements", name, t.Shape(), MaxSparseSize)
	}
	t.ConstFlatData(func(flat []float32) {
		switch encoding {
		case tensors.EncodingFlat:
			values, deltas = encodeFlat(flat)
		case tensors.EncodingStructured:
			if t.Shape().Rank() != 2 {
				err = errors.Errorf("structured sparse encoding of %q requires a rank-2 tensor, got shape %s", name, t.Shape())
				return
			}
			values, deltas = encodeStructured(t.Shape().Dim(0), t.Shape().Dim(1), flat)
		default:
			err = errors.Errorf("invalid sparse encoding %s for %q", encoding, name)
		}
	})
	if err != nil {
		return err
	}

	flag := FlagFlat
	if encoding == tensors.EncodingStructured {
		flag = FlagStructured
	}
	if w.LegacyFlags {
		if EncodingForName(name) != encoding {
			return errors.Errorf("layer %q can't be written with legacy flags using encoding %s: the reserved name table selects %s",
				name, encoding, EncodingForName(name))
		}
		flag = FlagSparse
	}
	return w.writeRecord(name, flag, values, deltas, indexWidth(encoding), t.Shape())
}

// WriteSet writes all tensors of the set, in sorted name order, with WriteTensor.
func (w *Writer) WriteSet(set *weights.Set) error {
	var err error
	set.Enumerate(func(name string, t *tensors.Tensor) {
		if err == nil {
			err = w.WriteTensor(name, t)
		}
	})
	return err
}

func (w *Writer) writeRecord(name string, flag byte, values []float32, deltas []int, width int, shape shapes.Shape) error {
	if len(name) == 0 || len(name) > math.MaxUint8 {
		return errors.Errorf("layer name %q must have between 1 and %d bytes", name, math.MaxUint8)
	}
	if w.names[name] {
		return errors.Errorf("layer %q already written", name)
	}
	if shape.Rank() > math.MaxUint8 {
		return errors.Errorf("layer %q has rank %d, the maximum is %d", name, shape.Rank(), math.MaxUint8)
	}
	for _, dim := range shape.Dimensions {
		if dim > shapes.MaxDimension {
			return errors.Errorf("layer %q has shape %s, dimensions are limited to %d", name, shape, shapes.MaxDimension)
		}
	}
	if uint64(len(values)) > math.MaxUint32 {
		return errors.Errorf("layer %q has too many values (%d)", name, len(values))
	}

	var buf bytes.Buffer
	buf.Grow(1 + len(name) + 1 + 4 + 4*len(values) + width*len(deltas) + 1 + 2*shape.Rank())
	buf.WriteByte(byte(len(name)))
	buf.WriteString(name)
	buf.WriteByte(flag)
	buf.Write(binary.LittleEndian.AppendUint32(nil, uint32(len(values))))
	for _, v := range values {
		buf.Write(binary.LittleEndian.AppendUint32(nil, math.Float32bits(v)))
	}
	for _, delta := range deltas {
		if width == 1 {
			buf.WriteByte(byte(delta))
		} else {
			buf.Write(binary.LittleEndian.AppendUint16(nil, uint16(delta)))
		}
	}
	buf.WriteByte(byte(shape.Rank()))
	for _, dim := range shape.Dimensions {
		buf.Write(binary.LittleEndian.AppendUint16(nil, uint16(dim)))
	}
	if _, err := w.w.Write(buf.Bytes()); err != nil {
		return errors.Wrapf(err, "failed to write layer %q", name)
	}
	w.names[name] = true
	return nil
}

// encodeFlat returns the non-zero values and their 16-bit deltas. Gaps larger than a delta can
// express are bridged with explicit zero entries.
func encodeFlat(flat []float32) (values []float32, deltas []int) {
	prev := 0
	for idx, v := range flat {
		if v == 0 {
			continue
		}
		delta := idx - prev
		for delta > maxFlatDelta {
			values = append(values, 0)
			deltas = append(deltas, maxFlatDelta)
			delta -= maxFlatDelta
		}
		values = append(values, v)
		deltas = append(deltas, delta)
		prev = idx
	}
	return
}

// encodeStructured returns the values and 8-bit column deltas of a rows x cols matrix.
//
// Moving to the next row always places a value at its column 0 (possibly an explicit zero), and
// column gaps larger than a delta can express are bridged with explicit zero entries.
func encodeStructured(rows, cols int, flat []float32) (values []float32, deltas []int) {
	row, col := 0, 0
	emit := func(v float32, delta int) {
		values = append(values, v)
		deltas = append(deltas, delta)
	}
	for r := range rows {
		rowValues := flat[r*cols : (r+1)*cols]
		hasNonZero := false
		for _, v := range rowValues {
			if v != 0 {
				hasNonZero = true
				break
			}
		}
		if !hasNonZero {
			continue
		}

		placedColZero := false
		for row < r {
			if len(values) == 0 {
				// The first delta never advances the row: occupy (0, 0) first.
				emit(flat[0], 0)
			}
			row++
			col = 0
			emit(flat[row*cols], 0)
			placedColZero = true
		}

		for c, v := range rowValues {
			if v == 0 || (c == 0 && placedColZero) {
				continue
			}
			if len(values) == 0 && c == 0 {
				emit(v, 0)
				continue
			}
			for c-col > maxStructuredDelta {
				col += maxStructuredDelta
				emit(0, maxStructuredDelta)
			}
			emit(v, c-col)
			col = c
		}
	}
	return
}
