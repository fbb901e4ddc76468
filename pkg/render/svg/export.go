// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package svg

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/Eeman1113/likho/pkg/ml/strokes"
	"github.com/Eeman1113/likho/pkg/support/fsutil"
	"github.com/pkg/errors"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultFileName is used when the text has no characters usable in a file name.
const DefaultFileName = "handwriting"

// ErrRenderIO is matched (with errors.Is) by every ExportError.
var ErrRenderIO = errors.New("failed to export rendering")

// ExportError reports a failure to write an exported file. The drawing is never affected.
type ExportError struct {
	Path string
	Err  error
}

// Error implements error.
func (e *ExportError) Error() string {
	return fmt.Sprintf("failed to export to %q: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *ExportError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrRenderIO) true for any ExportError.
func (e *ExportError) Is(target error) bool { return target == ErrRenderIO }

var foldMarks = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slugify returns a file name friendly version of text: accents are removed, letters are
// lowercased, whitespace becomes "-" and anything other than ASCII letters, digits, "_" and "-"
// is dropped. Repeated "-" are collapsed, and leading and trailing ones trimmed.
func Slugify(text string) string {
	folded, _, err := transform.String(foldMarks, text)
	if err != nil {
		folded = text
	}
	var sb strings.Builder
	lastDash := true // Drops leading dashes.
	for _, r := range strings.ToLower(folded) {
		switch {
		case unicode.IsSpace(r) || r == '-':
			if !lastDash {
				sb.WriteByte('-')
				lastDash = true
			}
		case r == '_' || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			sb.WriteRune(r)
			lastDash = false
		}
	}
	return strings.TrimRight(sb.String(), "-")
}

// FileName returns the SVG file name for the text.
func FileName(text string) string {
	slug := Slugify(text)
	if slug == "" {
		slug = DefaultFileName
	}
	return slug + ".svg"
}

// ExportFile writes the drawing as an SVG file in dir, named after the text (see FileName),
// and returns its path. The file is replaced atomically. Failures are returned as *ExportError.
func ExportFile(dir, text string, d *strokes.Drawing) (string, error) {
	filePath := filepath.Join(dir, FileName(text))
	err := fsutil.WriteFileAtomic(filePath, func(w io.Writer) error {
		return Write(w, d)
	})
	if err != nil {
		return "", errors.WithStack(&ExportError{Path: filePath, Err: err})
	}
	return filePath, nil
}
