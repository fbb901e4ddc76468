// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package fsutil contains utilities for working with the file system: home directory expansion,
// existence checks and atomic writes used when loading models and exporting drawings.
package fsutil

import (
	"io"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// FileExists returns whether the file or directory exists or an error if something went wrong in the filesystem.
func FileExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, errors.Wrapf(err, "failed to FileExists(%q)", path)
}

// ReplaceTildeInDir by the user's home directory. Returns dir if it doesn't start with "~".
//
// It returns an error if `dir` has an unknown user (e.g: `~unknown/...`).
func ReplaceTildeInDir(dir string) (string, error) {
	if len(dir) == 0 || dir[0] != '~' {
		return dir, nil
	}
	var userName string
	if dir != "~" && !strings.HasPrefix(dir, "~/") {
		sepIdx := strings.IndexRune(dir, '/')
		if sepIdx == -1 {
			userName = dir[1:]
		} else {
			userName = dir[1:sepIdx]
		}
	}
	var (
		usr *user.User
		err error
	)
	if userName == "" {
		usr, err = user.Current()
	} else {
		usr, err = user.Lookup(userName)
	}
	if err != nil {
		return "", errors.Wrapf(err, "failed to lookup home directory for user in path %q", dir)
	}
	return filepath.Join(usr.HomeDir, dir[1+len(userName):]), nil
}

// IsURL returns whether source should be fetched over HTTP(S) instead of read from disk.
func IsURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// WriteFileAtomic writes the file by first writing to a temporary file in the same directory and
// then renaming it, so readers never see a partially written file.
// The directory is created if it doesn't exist.
func WriteFileAtomic(path string, writeFn func(w io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "failed to create directory %q", dir)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return errors.Wrapf(err, "failed to create temporary file in %q", dir)
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }() // No-op after a successful rename.

	if err = writeFn(tmp); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return errors.Wrapf(err, "failed to close %q", tmpPath)
	}
	if err = os.Rename(tmpPath, path); err != nil {
		return errors.Wrapf(err, "failed to rename %q to %q", tmpPath, path)
	}
	return nil
}
