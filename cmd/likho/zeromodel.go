// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package main

import (
	"io"

	"github.com/Eeman1113/likho/pkg/ml/layers/synthesis"
	"github.com/Eeman1113/likho/pkg/ml/weights/blob"
	"github.com/Eeman1113/likho/pkg/support/fsutil"
	"github.com/pkg/errors"
)

// writeZeroModel writes an all-zero model with the default configuration. The recurrent kernels
// and the mixture output are written sparse, as in trained models.
//
// An existing file is only replaced if overwrite is set.
func writeZeroModel(filePath string, overwrite bool) error {
	filePath, err := fsutil.ReplaceTildeInDir(filePath)
	if err != nil {
		return err
	}
	if !overwrite {
		exists, err := fsutil.FileExists(filePath)
		if err != nil {
			return err
		}
		if exists {
			return errors.Errorf("model file %q already exists, use -overwrite to replace it", filePath)
		}
	}
	ws := synthesis.ZeroWeights(synthesis.DefaultConfig())
	return fsutil.WriteFileAtomic(filePath, func(w io.Writer) error {
		bw := blob.NewWriter(w)
		for _, name := range ws.Names() {
			tensor, err := ws.Get(name)
			if err != nil {
				return err
			}
			if tensor.Shape().Rank() == 2 {
				err = bw.WriteSparse(name, tensor, blob.EncodingForName(name))
			} else {
				err = bw.WriteDense(name, tensor)
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
}
