// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package blob

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorKind classifies a ParseError.
type ErrorKind int

//go:generate go tool enumer -type=ErrorKind -trimprefix=Kind -text -values -output=gen_errorkind_enumer.go

const (
	// KindEmptyName is a record whose name length is 0.
	KindEmptyName ErrorKind = iota + 1

	// KindTruncated is a buffer that ends after a record's value count was read: inside its values,
	// indices or shape.
	KindTruncated

	// KindMisaligned is a buffer with leftover bytes at a record boundary that can't hold a record header.
	KindMisaligned

	// KindShapeMismatch is a record whose values or sparse indices don't fit its declared shape.
	KindShapeMismatch

	// KindDuplicateName is a layer name that appears in more than one record.
	KindDuplicateName
)

// Sentinel errors, one per ErrorKind, to be used with errors.Is.
var (
	ErrEmptyName     = errors.New("empty layer name")
	ErrTruncated     = errors.New("truncated model blob")
	ErrMisaligned    = errors.New("misaligned model blob")
	ErrShapeMismatch = errors.New("tensor shape mismatch")
	ErrDuplicateName = errors.New("duplicate layer name")
)

var kindSentinels = map[ErrorKind]error{
	KindEmptyName:     ErrEmptyName,
	KindTruncated:     ErrTruncated,
	KindMisaligned:    ErrMisaligned,
	KindShapeMismatch: ErrShapeMismatch,
	KindDuplicateName: ErrDuplicateName,
}

// ParseError is returned by Parse when the model blob is malformed.
// A model blob with a ParseError is never partially loaded.
type ParseError struct {
	Kind ErrorKind

	// Record is the 0-based index of the record being parsed, Offset the byte offset where it starts.
	Record, Offset int

	// Layer is the name of the layer, if it was already read.
	Layer string

	Detail string
}

// Error implements error.
func (e *ParseError) Error() string {
	layer := ""
	if e.Layer != "" {
		layer = fmt.Sprintf(", layer %q", e.Layer)
	}
	return fmt.Sprintf("model blob parse error %s (record #%d at offset %d%s): %s", e.Kind, e.Record, e.Offset, layer, e.Detail)
}

// Unwrap returns the sentinel error matching the Kind, so errors.Is(err, ErrTruncated) works.
func (e *ParseError) Unwrap() error {
	return kindSentinels[e.Kind]
}
