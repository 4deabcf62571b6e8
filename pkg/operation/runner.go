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

package operation

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"github.com/walteh/flatten/pkg/cancel"
	"github.com/walteh/flatten/pkg/listing"
	"github.com/walteh/flatten/pkg/retry"
	"gitlab.com/tozd/go/errors"
)

// 🏭 NewFlattenOperation creates the full discover, confirm and flatten run
func NewFlattenOperation(opts Options) (Operation, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if opts.Flattener == nil {
		return nil, errors.Errorf("flattener is required")
	}
	if opts.Confirmer == nil && !opts.AssumeYes {
		return nil, errors.Errorf("confirmer is required unless confirmation is assumed")
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Gate == nil {
		opts.Gate = cancel.New()
	}
	if opts.Retry == nil {
		opts.Retry = retry.New(retry.DefaultPolicy(), opts.Gate, nil)
	}
	return &flattenOperation{opts: opts}, nil
}

// 🏭 NewScanOperation creates a discovery-only run that changes nothing
func NewScanOperation(opts Options) (Operation, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return &scanOperation{opts: opts}, nil
}

type flattenOperation struct {
	opts Options
}

type scanOperation struct {
	opts Options
}

// 🔍 Execute lists the links and reports them
func (op *scanOperation) Execute(ctx context.Context) (*Summary, error) {
	sum := &Summary{Root: op.opts.Root}
	enter(ctx, sum, StateDiscovering)

	res, err := discover(ctx, op.opts)
	if err != nil {
		return sum, err
	}
	sum.record(res)

	if len(res.Links) == 0 {
		op.opts.Reporter.NoLinks(ctx, op.opts.Root)
	} else {
		op.opts.Reporter.Discovered(ctx, op.opts.Root, res)
	}

	enter(ctx, sum, StateDone)
	op.opts.Reporter.Done(ctx, sum)
	return sum, nil
}

// 🏃 Execute runs every state of a flatten run
func (op *flattenOperation) Execute(ctx context.Context) (*Summary, error) {
	opts := op.opts
	sum := &Summary{Root: opts.Root, Workers: opts.Workers}

	enter(ctx, sum, StateDiscovering)
	res, err := discover(ctx, opts)
	if err != nil {
		return sum, err
	}
	sum.record(res)

	if len(res.Links) == 0 {
		opts.Reporter.NoLinks(ctx, opts.Root)
		enter(ctx, sum, StateDone)
		opts.Reporter.Done(ctx, sum)
		return sum, nil
	}
	opts.Reporter.Discovered(ctx, opts.Root, res)

	enter(ctx, sum, StateAwaitingConfirmation)
	if !opts.AssumeYes && !opts.Confirmer.Confirm(ctx, len(res.Links), res.Directories) {
		sum.Declined = true
		opts.Reporter.Declined(ctx)
		enter(ctx, sum, StateDone)
		opts.Reporter.Done(ctx, sum)
		return sum, nil
	}

	// the caller's context is one more way to trip the gate
	stop := context.AfterFunc(ctx, opts.Gate.RequestCancel)
	defer stop()

	enter(ctx, sum, StateProcessing)
	opts.Reporter.Processing(ctx, opts.Workers, len(res.Links))

	p := newPool(opts, res.Links)
	p.start(ctx)

	select {
	case <-p.done:
	case <-opts.Gate.Done():
		opts.Reporter.Cancelling(ctx)
	}
	enter(ctx, sum, StateDraining)
	p.wait()

	sum.Progress = p.tracker.Snapshot()
	sum.Failures, sum.Warnings = p.collect()
	sum.Cancelled = opts.Gate.IsCancelled()

	enter(ctx, sum, StateDone)
	opts.Reporter.Done(ctx, sum)
	return sum, nil
}

// 📂 discover checks the root and parses its listing
func discover(ctx context.Context, opts Options) (*listing.Result, error) {
	info, err := os.Stat(opts.Root)
	if err != nil || !info.IsDir() {
		return nil, errors.Errorf("%s: %w", opts.Root, ErrRootNotFound)
	}

	rc, err := opts.Lister.List(ctx, opts.Root)
	if err != nil {
		return nil, errors.Errorf("listing %s: %w", opts.Root, err)
	}
	defer rc.Close()

	res, err := listing.Parse(ctx, rc, opts.Skip)
	if err != nil {
		return nil, errors.Errorf("parsing listing: %w", err)
	}
	return res, nil
}

func (s *Summary) record(res *listing.Result) {
	s.Directories = res.Directories
	s.SkippedDirectories = res.SkippedDirectories
	s.DirectoryLinks = res.DirectoryLinks
	s.Found = len(res.Links)
}

func enter(ctx context.Context, sum *Summary, st State) {
	zerolog.Ctx(ctx).Debug().Stringer("state", st).Msg("entering state")
	sum.States = append(sum.States, st)
}
