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

// Package operation wires discovery, confirmation and the flatten worker
// pool into a single run.
//
//	Discovering -> AwaitingConfirmation -> Processing -> Draining -> Done
//
// Discovery failures stop the run before anything is copied. Per-item
// failures never stop the pool.
package operation

import (
	"context"

	"github.com/walteh/flatten/pkg/cancel"
	"github.com/walteh/flatten/pkg/flatten"
	"github.com/walteh/flatten/pkg/listing"
	"github.com/walteh/flatten/pkg/progress"
	"github.com/walteh/flatten/pkg/retry"
	"gitlab.com/tozd/go/errors"
)

// ErrRootNotFound is returned when the directory to flatten does not exist
var ErrRootNotFound = errors.Base("directory does not exist")

// 🚦 State is a step of a run
type State int

const (
	StateDiscovering State = iota
	StateAwaitingConfirmation
	StateProcessing
	StateDraining
	StateDone
)

func (s State) String() string {
	switch s {
	case StateDiscovering:
		return "discovering"
	case StateAwaitingConfirmation:
		return "awaiting-confirmation"
	case StateProcessing:
		return "processing"
	case StateDraining:
		return "draining"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// MarshalText lets reports show the state name
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// 🎯 Operation is a single run against a root directory
type Operation interface {
	Execute(ctx context.Context) (*Summary, error)
}

// 🔗 Flattener replaces one link
type Flattener interface {
	Flatten(ctx context.Context, path string) flatten.Result
}

// ✋ Confirmer asks the operator whether to go ahead
type Confirmer interface {
	Confirm(ctx context.Context, found, directories int) bool
}

// 📢 Reporter receives human-facing progress. Item callbacks are invoked from worker goroutines.
type Reporter interface {
	Discovered(ctx context.Context, root string, res *listing.Result)
	NoLinks(ctx context.Context, root string)
	Declined(ctx context.Context)
	Processing(ctx context.Context, workers, total int)
	ItemStarted(ctx context.Context, index, total int, path string)
	ItemFinished(ctx context.Context, index, total int, rep retry.Report, totalBytes int64)
	Cancelling(ctx context.Context)
	Done(ctx context.Context, sum *Summary)
}

// 🚨 ItemFailure is a link that was not flattened
type ItemFailure struct {
	Path      string `json:"path" yaml:"path"`
	TempPath  string `json:"temp_path,omitempty" yaml:"temp_path,omitempty"`
	Error     string `json:"error" yaml:"error"`
	Attempts  int    `json:"attempts" yaml:"attempts"`
	Exhausted bool   `json:"retries_exhausted,omitempty" yaml:"retries_exhausted,omitempty"`
	Orphaned  bool   `json:"orphaned,omitempty" yaml:"orphaned,omitempty"`
}

// 📋 Summary is what a run did
type Summary struct {
	Root               string            `json:"root" yaml:"root"`
	States             []State           `json:"states" yaml:"states"`
	Directories        int               `json:"directories" yaml:"directories"`
	SkippedDirectories int               `json:"skipped_directories" yaml:"skipped_directories"`
	DirectoryLinks     int               `json:"directory_links" yaml:"directory_links"`
	Found              int               `json:"found" yaml:"found"`
	Workers            int               `json:"workers" yaml:"workers"`
	Progress           progress.Snapshot `json:"progress" yaml:"progress"`
	Declined           bool              `json:"declined,omitempty" yaml:"declined,omitempty"`
	Cancelled          bool              `json:"cancelled,omitempty" yaml:"cancelled,omitempty"`
	Failures           []ItemFailure     `json:"failures,omitempty" yaml:"failures,omitempty"`
	Warnings           []string          `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// State returns the last state reached
func (s *Summary) State() State {
	if len(s.States) == 0 {
		return StateDiscovering
	}
	return s.States[len(s.States)-1]
}

// Orphans lists temp files holding copied data that never replaced its link
func (s *Summary) Orphans() []string {
	var out []string
	for _, f := range s.Failures {
		if f.Orphaned {
			out = append(out, f.TempPath)
		}
	}
	return out
}

// 🔧 Options contains everything a run needs
type Options struct {
	Root      string
	Skip      *listing.SkipSet
	Lister    listing.Lister
	Workers   int
	AssumeYes bool

	Flattener Flattener
	Retry     *retry.Controller
	Gate      *cancel.Gate
	Confirmer Confirmer
	Reporter  Reporter
}

func (o Options) validate() error {
	if o.Root == "" {
		return errors.Errorf("root is required")
	}
	if o.Lister == nil {
		return errors.Errorf("lister is required")
	}
	if o.Reporter == nil {
		return errors.Errorf("reporter is required")
	}
	return nil
}
