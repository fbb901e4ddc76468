// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package blob

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/Eeman1113/likho/pkg/ml/weights"
	"github.com/Eeman1113/likho/pkg/support/fsutil"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"k8s.io/klog/v2"
)

// ErrLoad is matched (with errors.Is) by every LoadError.
var ErrLoad = errors.New("failed to load model")

// LoadError reports a failure to fetch or read the model blob, as opposed to a malformed blob
// (see ParseError). Retrying is the caller's decision.
type LoadError struct {
	Source string
	Err    error
}

// Error implements error.
func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load model from %q: %v", e.Source, e.Err)
}

// Unwrap returns the underlying error.
func (e *LoadError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrLoad) true for any LoadError.
func (e *LoadError) Is(target error) bool { return target == ErrLoad }

func newLoadError(source string, err error) error {
	return errors.WithStack(&LoadError{Source: source, Err: err})
}

// LoadOptions configures Load.
type LoadOptions struct {
	// ShowProgress displays a progress bar while downloading from a URL.
	ShowProgress bool

	// Client used for URLs. If nil, http.DefaultClient is used.
	Client *http.Client
}

// Load reads and parses the model blob from source, which can be a file path (a leading "~" is
// expanded to the home directory) or an http(s) URL.
//
// It returns a *LoadError if the blob couldn't be fetched or read, and a *ParseError if it is malformed.
func Load(ctx context.Context, source string, opts LoadOptions) (*weights.Set, error) {
	var (
		data []byte
		err  error
	)
	if fsutil.IsURL(source) {
		data, err = Fetch(ctx, source, opts)
	} else {
		data, err = ReadFile(source)
	}
	if err != nil {
		return nil, err
	}
	set, err := Parse(data)
	if err != nil {
		return nil, errors.WithMessagef(err, "parsing model from %q", source)
	}
	klog.V(1).Infof("Loaded model from %q: %d layers, %s parameters, %s (blob has %s)",
		source, set.Len(), humanize.Comma(int64(set.NumParameters())),
		humanize.IBytes(uint64(set.Memory())), humanize.IBytes(uint64(len(data))))
	return set, nil
}

// ReadFile reads the raw model blob from a file.
func ReadFile(filePath string) ([]byte, error) {
	expanded, err := fsutil.ReplaceTildeInDir(filePath)
	if err != nil {
		return nil, newLoadError(filePath, err)
	}
	data, err := os.ReadFile(expanded)
	if err != nil {
		return nil, newLoadError(filePath, err)
	}
	return data, nil
}

// Fetch downloads the raw model blob from url.
func Fetch(ctx context.Context, url string, opts LoadOptions) ([]byte, error) {
	client := opts.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, newLoadError(url, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, newLoadError(url, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newLoadError(url, errors.Errorf("HTTP status %s", resp.Status))
	}

	var buf bytes.Buffer
	if resp.ContentLength > 0 {
		buf.Grow(int(resp.ContentLength))
	}
	var dst io.Writer = &buf
	var bar *progressbar.ProgressBar
	if opts.ShowProgress {
		bar = progressbar.NewOptions64(resp.ContentLength,
			progressbar.OptionSetDescription("model"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowBytes(true),
			progressbar.OptionUseANSICodes(true),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionSetTheme(progressbar.ThemeUnicode),
		)
		dst = io.MultiWriter(&buf, bar)
	}
	n, err := io.Copy(dst, resp.Body)
	if bar != nil {
		_ = bar.Finish()
		fmt.Fprintln(os.Stderr)
	}
	if err != nil {
		return nil, newLoadError(url, errors.Wrapf(err, "downloading after %s", humanize.IBytes(uint64(n))))
	}
	klog.V(1).Infof("Downloaded %s from %q", humanize.IBytes(uint64(n)), url)
	return buf.Bytes(), nil
}
