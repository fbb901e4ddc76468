// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package blob

import "github.com/Eeman1113/likho/pkg/core/tensors"

// Storage flag values, the byte following the layer name.
//
// Any non-zero value marks a sparse record. The explicit values FlagStructured and FlagFlat name
// the index encoding; any other non-zero value (canonically FlagSparse) leaves the choice to the
// reserved name table, see EncodingForName.
const (
	FlagDense      byte = 0
	FlagSparse     byte = 1
	FlagStructured byte = 2
	FlagFlat       byte = 3
)

// StructuredLayers is the table of layer names whose sparse records use the structured (row by row,
// 8-bit column delta) encoding when the storage flag doesn't say explicitly.
// They are the recurrent kernels ("l", "r"), the attention window ("w") and the mixture output ("y").
var StructuredLayers = map[string]bool{
	"l": true,
	"r": true,
	"w": true,
	"y": true,
}

// EncodingForName returns the sparse encoding used by a sparse record with the given name,
// when its storage flag is FlagSparse.
func EncodingForName(name string) tensors.SparseEncoding {
	if StructuredLayers[name] {
		return tensors.EncodingStructured
	}
	return tensors.EncodingFlat
}

// encodingForFlag returns the sparse encoding of a record, EncodingNone for dense records.
func encodingForFlag(flag byte, name string) tensors.SparseEncoding {
	switch flag {
	case FlagDense:
		return tensors.EncodingNone
	case FlagStructured:
		return tensors.EncodingStructured
	case FlagFlat:
		return tensors.EncodingFlat
	default:
		return EncodingForName(name)
	}
}

// indexWidth is the number of bytes per sparse index entry.
func indexWidth(encoding tensors.SparseEncoding) int {
	switch encoding {
	case tensors.EncodingStructured:
		return 1
	case tensors.EncodingFlat:
		return 2
	}
	return 0
}

// Maximum deltas representable by each sparse encoding.
const (
	maxStructuredDelta = 1<<8 - 1
	maxFlatDelta       = 1<<16 - 1
)

// MaxSparseSize is the largest number of elements a sparse record can expand to. Larger shapes
// are a KindShapeMismatch error, and the Writer refuses to write them.
const MaxSparseSize = 1 << 24
