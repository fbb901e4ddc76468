// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package blob reads and writes the compact binary model format: a flat sequence of
// self-describing tensor records, with no header and no schema.
//
// Each record is laid out as (all integers little-endian):
//
//	u8       name length N (> 0)
//	N bytes  layer name
//	u8       storage flag: 0 dense, otherwise sparse (see FlagSparse, FlagStructured, FlagFlat)
//	u32      value count C
//	C x f32  values
//	         sparse only: C index entries, u8 (structured) or u16 (flat) each
//	u8       rank R
//	R x u16  dimensions
//
// Sparse tensors are reconstructed densely. Flat sparse records accumulate their 16-bit deltas
// into a running flat index, starting at 0, adding each delta before placing the value.
// Structured sparse records describe a rank-2 tensor row by row: the first delta is the column
// of the first value on row 0; afterward a delta of 0 moves to column 0 of the next row, and any
// other delta advances the column within the row.
//
// Records are parsed until the buffer is consumed exactly: there is no record count, and the
// order of records doesn't matter.
package blob

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/Eeman1113/likho/pkg/core/shapes"
	"github.com/Eeman1113/likho/pkg/core/tensors"
	"github.com/Eeman1113/likho/pkg/ml/weights"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Record is one named tensor decoded from a model blob.
type Record struct {
	Name   string
	Tensor *tensors.Tensor
}

// Parse decodes a model blob into a weights.Set.
//
// It returns a *ParseError (wrapped with a stack trace) if the blob is malformed, in which case
// nothing is returned. An empty blob yields an empty Set.
func Parse(data []byte) (*weights.Set, error) {
	records, err := Decode(data)
	if err != nil {
		return nil, err
	}
	layers := make(map[string]*tensors.Tensor, len(records))
	for _, record := range records {
		layers[record.Name] = record.Tensor
	}
	return weights.New(layers), nil
}

// Read reads the whole model blob from r and parses it.
func Read(r io.Reader) (*weights.Set, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read model blob")
	}
	return Parse(data)
}

// Decode decodes all records of a model blob, in the order they are stored.
func Decode(data []byte) ([]*Record, error) {
	d := &decoder{data: data}
	var records []*Record
	seen := make(map[string]bool)
	for d.pos < len(d.data) {
		record, err := d.record(len(records))
		if err != nil {
			return nil, err
		}
		if seen[record.Name] {
			return nil, d.errorf(KindDuplicateName, "layer already defined by a previous record")
		}
		seen[record.Name] = true
		klog.V(2).Infof("blob: record #%d %q: %s", len(records), record.Name, record.Tensor.Shape())
		records = append(records, record)
	}
	return records, nil
}

// decoder keeps the position on the buffer and the record being decoded, for error reporting.
type decoder struct {
	data []byte
	pos  int

	recordIdx, recordStart int
	layer                  string
}

func (d *decoder) errorf(kind ErrorKind, format string, args ...any) error {
	return errors.WithStack(&ParseError{
		Kind:   kind,
		Record: d.recordIdx,
		Offset: d.recordStart,
		Layer:  d.layer,
		Detail: fmt.Sprintf(format, args...),
	})
}

// take returns the next n bytes, or a ParseError of the given kind if there aren't enough bytes left.
func (d *decoder) take(n int, kind ErrorKind, what string) ([]byte, error) {
	if n < 0 || len(d.data)-d.pos < n {
		return nil, d.errorf(kind, "%s needs %d bytes at offset %d, only %d left", what, n, d.pos, len(d.data)-d.pos)
	}
	b := d.data[d.pos : d.pos+n]
	d.pos += n
	return b, nil
}

func (d *decoder) record(recordIdx int) (*Record, error) {
	d.recordIdx, d.recordStart, d.layer = recordIdx, d.pos, ""

	// Header: name, storage flag and value count. A buffer ending inside the header is
	// misaligned: the leftover bytes can't be a record.
	b, err := d.take(1, KindMisaligned, "name length")
	if err != nil {
		return nil, err
	}
	nameLen := int(b[0])
	if nameLen == 0 {
		return nil, d.errorf(KindEmptyName, "name length is 0")
	}
	b, err = d.take(nameLen, KindMisaligned, "layer name")
	if err != nil {
		return nil, err
	}
	d.layer = string(b)
	b, err = d.take(1, KindMisaligned, "storage flag")
	if err != nil {
		return nil, err
	}
	encoding := encodingForFlag(b[0], d.layer)
	b, err = d.take(4, KindMisaligned, "value count")
	if err != nil {
		return nil, err
	}
	count := int(binary.LittleEndian.Uint32(b))

	// Body: from here on, running out of bytes means the record was truncated.
	if count > (len(d.data)-d.pos)/4 {
		return nil, d.errorf(KindTruncated, "%d values need %d bytes, only %d left", count, 4*count, len(d.data)-d.pos)
	}
	b, err = d.take(4*count, KindTruncated, "values")
	if err != nil {
		return nil, err
	}
	values := make([]float32, count)
	for ii := range values {
		values[ii] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*ii:]))
	}

	var deltas []int
	if width := indexWidth(encoding); width > 0 {
		b, err = d.take(width*count, KindTruncated, "sparse indices")
		if err != nil {
			return nil, err
		}
		deltas = make([]int, count)
		for ii := range deltas {
			if width == 1 {
				deltas[ii] = int(b[ii])
			} else {
				deltas[ii] = int(binary.LittleEndian.Uint16(b[2*ii:]))
			}
		}
	}

	b, err = d.take(1, KindTruncated, "rank")
	if err != nil {
		return nil, err
	}
	rank := int(b[0])
	b, err = d.take(2*rank, KindTruncated, "dimensions")
	if err != nil {
		return nil, err
	}
	dims := make([]int, rank)
	for axis := range dims {
		dims[axis] = int(binary.LittleEndian.Uint16(b[2*axis:]))
	}

	tensor, err := d.build(encoding, values, deltas, dims)
	if err != nil {
		return nil, err
	}
	return &Record{Name: d.layer, Tensor: tensor}, nil
}

// build reconstructs the dense tensor of a record.
func (d *decoder) build(encoding tensors.SparseEncoding, values []float32, deltas []int, dims []int) (*tensors.Tensor, error) {
	if len(dims) == 0 && len(values) == 0 {
		return tensors.Empty(), nil
	}
	shape, err := shapes.Check(dims...)
	if err != nil {
		return nil, d.errorf(KindShapeMismatch, "%v", err)
	}

	if encoding != tensors.EncodingNone && shape.Size() > MaxSparseSize {
		return nil, d.errorf(KindShapeMismatch, "sparse shape %s has %d elements, the maximum is %d", shape, shape.Size(), MaxSparseSize)
	}

	switch encoding {
	case tensors.EncodingNone:
		if shape.Size() != len(values) {
			return nil, d.errorf(KindShapeMismatch, "dense shape %s requires %d values, got %d", shape, shape.Size(), len(values))
		}
		return tensors.FromFlatData(shape, values)

	case tensors.EncodingFlat:
		flat := make([]float32, shape.Size())
		idx := 0
		for ii, delta := range deltas {
			idx += delta
			if idx >= len(flat) {
				return nil, d.errorf(KindShapeMismatch, "flat sparse entry #%d has index %d, out of bounds for shape %s", ii, idx, shape)
			}
			flat[idx] = values[ii]
		}
		t, err := tensors.FromFlatData(shape, flat)
		if err != nil {
			return nil, err
		}
		return t.MarkSparse(tensors.EncodingFlat, len(values)), nil

	case tensors.EncodingStructured:
		if shape.Rank() != 2 {
			return nil, d.errorf(KindShapeMismatch, "structured sparse encoding requires a rank-2 shape, got %s", shape)
		}
		flat := make([]float32, shape.Size())
		row, col := 0, 0
		for ii, delta := range deltas {
			if ii > 0 && delta == 0 {
				row++
				col = 0
			} else {
				col += delta
			}
			idx, err := shape.FlatIndex(row, col)
			if err != nil {
				return nil, d.errorf(KindShapeMismatch, "structured sparse entry #%d: %v", ii, err)
			}
			flat[idx] = values[ii]
		}
		t, err := tensors.FromFlatData(shape, flat)
		if err != nil {
			return nil, err
		}
		return t.MarkSparse(tensors.EncodingStructured, len(values)), nil
	}
	return nil, errors.Errorf("unknown sparse encoding %s", encoding)
}
