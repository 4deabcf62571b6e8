// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package flatten replaces a single symlink with a real copy of the data it
// points to.
//
// The replacement is two-phase: the link is read through (dereferenced) into
// a sibling temp file, and the temp file is then renamed over the link. A
// crash between the phases can leave the temp file behind, but observers
// never see the link path missing.
package flatten

import (
	"context"
	"io"
	"io/fs"
	"os"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// DefaultTempSuffix is appended to the link path (after its extension) to name the temp file
const DefaultTempSuffix = ".temp"

const ownerWrite fs.FileMode = 0o200

// ErrNotRegularFile is returned when a link resolves to something a file copy cannot flatten
var ErrNotRegularFile = errors.Base("link target is not a regular file")

// ErrTempExists is returned when something already occupies the temp path. It is never overwritten or removed.
var ErrTempExists = errors.Base("temp file already exists")

// 🚦 Outcome classifies a single flatten attempt
type Outcome int

const (
	OutcomeSuccess          Outcome = iota
	OutcomeRetryableFailure         // copy failed with a transient error
	OutcomeFatalFailure             // any other failure; not worth retrying
	OutcomeCancelled                // never attempted, or retries abandoned on cancellation
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeRetryableFailure:
		return "retryable"
	case OutcomeFatalFailure:
		return "fatal"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// 📦 Result is what a single flatten attempt produced
type Result struct {
	Path     string
	TempPath string
	Outcome  Outcome
	Bytes    int64
	// Err is a *CopyError or *RenameError for failures
	Err error
	// Warning is set when the file was flattened but the read-only flag could not be restored
	Warning error
}

// Orphaned reports whether copied data was left behind in the temp file
func (r Result) Orphaned() bool {
	var renameErr *RenameError
	return errors.As(r.Err, &renameErr)
}

// 🔧 Options configures a Flattener
type Options struct {
	// TempSuffix defaults to DefaultTempSuffix
	TempSuffix string
	// IsTransient defaults to DefaultTransient()
	IsTransient TransientFunc
}

// 🔗 Flattener performs copy-to-temp, permission handling and rename for one link at a time.
// It holds no per-item state and is safe for concurrent use.
type Flattener struct {
	tempSuffix  string
	isTransient TransientFunc

	rename func(oldpath, newpath string) error
	chmod  func(name string, mode fs.FileMode) error
}

// 🏭 New creates a flattener
func New(opts Options) *Flattener {
	if opts.TempSuffix == "" {
		opts.TempSuffix = DefaultTempSuffix
	}
	if opts.IsTransient == nil {
		opts.IsTransient = DefaultTransient()
	}
	return &Flattener{
		tempSuffix:  opts.TempSuffix,
		isTransient: opts.IsTransient,
		rename:      os.Rename,
		chmod:       os.Chmod,
	}
}

// TempPath keeps the original extension visible: foo.txt -> foo.txt.temp
func (f *Flattener) TempPath(path string) string {
	return path + f.tempSuffix
}

// 🔄 Flatten replaces the link at path with an independent copy of its target
func (f *Flattener) Flatten(ctx context.Context, path string) Result {
	temp := f.TempPath(path)
	logger := zerolog.Ctx(ctx).With().Str("path", path).Str("temp", temp).Logger()
	res := Result{Path: path, TempPath: temp}

	n, created, err := copyResolved(path, temp)
	if err != nil {
		if created {
			f.removeTemp(&logger, temp)
		}
		transient := !errors.Is(err, ErrTempExists) && f.isTransient(err)
		res.Err = &CopyError{Path: path, Transient: transient, Err: err}
		res.Outcome = OutcomeFatalFailure
		if transient {
			res.Outcome = OutcomeRetryableFailure
		}
		logger.Debug().Err(err).Bool("transient", transient).Msg("copy failed")
		return res
	}
	res.Bytes = n
	logger.Debug().Int64("bytes", n).Msg("copied link target to temp file")

	info, err := os.Stat(temp)
	if err != nil {
		f.removeTemp(&logger, temp)
		res.Err = &CopyError{Path: path, Err: errors.Errorf("reading temp file attributes: %w", err)}
		res.Outcome = OutcomeFatalFailure
		return res
	}

	mode := info.Mode().Perm()
	readOnly := mode&ownerWrite == 0
	if readOnly {
		if err := f.chmod(temp, mode|ownerWrite); err != nil {
			f.removeTemp(&logger, temp)
			res.Err = &CopyError{Path: path, Err: errors.Errorf("clearing read-only attribute: %w", err)}
			res.Outcome = OutcomeFatalFailure
			return res
		}
	}

	if err := f.rename(temp, path); err != nil {
		res.Err = &RenameError{Path: path, TempPath: temp, Err: err}
		res.Outcome = OutcomeFatalFailure
		logger.Debug().Err(err).Msg("rename failed, temp file kept")
		return res
	}

	if readOnly {
		if err := f.chmod(path, mode); err != nil {
			res.Warning = &AttributeRestoreError{Path: path, Err: err}
			logger.Debug().Err(err).Msg("restoring read-only attribute failed")
		}
	}

	res.Outcome = OutcomeSuccess
	return res
}

func (f *Flattener) removeTemp(logger *zerolog.Logger, temp string) {
	if err := os.Remove(temp); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Debug().Err(err).Msg("removing temp file")
	}
}

// copyResolved opens path through any link and copies the target bytes to
// dst, carrying over the target's permission bits. dst must not exist yet;
// created reports whether this call made it.
func copyResolved(path, dst string) (n int64, created bool, err error) {
	in, err := os.Open(path)
	if err != nil {
		return 0, false, errors.Errorf("opening link target: %w", err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return 0, false, errors.Errorf("reading link target attributes: %w", err)
	}
	if !info.Mode().IsRegular() {
		return 0, false, errors.Errorf("%s: %w", info.Mode().Type(), ErrNotRegularFile)
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm()|ownerWrite)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return 0, false, errors.Errorf("%s: %w", dst, ErrTempExists)
		}
		return 0, false, errors.Errorf("creating temp file: %w", err)
	}

	n, err = io.Copy(out, in)
	if err != nil {
		out.Close()
		return n, true, errors.Errorf("copying data: %w", err)
	}
	if err := out.Chmod(info.Mode().Perm()); err != nil {
		out.Close()
		return n, true, errors.Errorf("copying permissions: %w", err)
	}
	if err := out.Close(); err != nil {
		return n, true, errors.Errorf("closing temp file: %w", err)
	}
	return n, true, nil
}
