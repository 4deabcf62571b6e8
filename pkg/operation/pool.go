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

	"github.com/rs/zerolog"
	"github.com/walteh/flatten/pkg/flatten"
	"github.com/walteh/flatten/pkg/partition"
	"github.com/walteh/flatten/pkg/progress"
	"github.com/walteh/flatten/pkg/retry"
	"golang.org/x/sync/errgroup"
)

// 👷 pool runs a fixed number of workers over a read-only link set.
// Each worker writes only the reports slot of the index it claimed.
type pool struct {
	opts    Options
	links   []string
	cursor  *partition.Cursor
	tracker *progress.Tracker
	reports []*retry.Report

	group errgroup.Group
	done  chan struct{}
}

func newPool(opts Options, links []string) *pool {
	return &pool{
		opts:    opts,
		links:   links,
		cursor:  partition.NewCursor(len(links)),
		tracker: progress.New(),
		reports: make([]*retry.Report, len(links)),
		done:    make(chan struct{}),
	}
}

func (p *pool) start(ctx context.Context) {
	for id := 0; id < p.opts.Workers; id++ {
		wctx := zerolog.Ctx(ctx).With().Int("worker", id).Logger().WithContext(ctx)
		p.group.Go(func() error {
			p.work(wctx)
			return nil
		})
	}
	go func() {
		_ = p.group.Wait()
		close(p.done)
	}()
}

func (p *pool) wait() {
	<-p.done
}

func (p *pool) work(ctx context.Context) {
	logger := zerolog.Ctx(ctx)
	total := len(p.links)

	for !p.opts.Gate.IsCancelled() {
		idx, ok := p.cursor.Claim()
		if !ok {
			return
		}
		path := p.links[idx]

		p.tracker.RecordAttempt()
		p.opts.Reporter.ItemStarted(ctx, idx, total, path)

		rep := p.opts.Retry.Do(ctx, path, p.opts.Flattener.Flatten)
		p.reports[idx] = &rep

		switch rep.Outcome {
		case flatten.OutcomeSuccess:
			p.tracker.RecordSuccess()
			p.tracker.RecordBytes(rep.Bytes)
		case flatten.OutcomeCancelled:
			logger.Debug().Str("path", path).Msg("abandoned on cancellation")
		default:
			p.tracker.RecordFailure()
			if rep.Orphaned() {
				p.tracker.RecordOrphan()
			}
		}

		p.opts.Reporter.ItemFinished(ctx, idx, total, rep, p.tracker.Snapshot().Bytes)
	}
}

// collect turns the per-index reports into failures and warnings, in link order
func (p *pool) collect() (failures []ItemFailure, warnings []string) {
	for _, rep := range p.reports {
		if rep == nil {
			continue
		}
		if rep.Warning != nil {
			warnings = append(warnings, rep.Warning.Error())
		}
		if rep.Outcome != flatten.OutcomeFatalFailure {
			continue
		}
		f := ItemFailure{
			Path:      rep.Path,
			Attempts:  rep.Attempts,
			Exhausted: rep.Exhausted,
			Orphaned:  rep.Orphaned(),
		}
		if rep.Err != nil {
			f.Error = rep.Err.Error()
		}
		if f.Orphaned {
			f.TempPath = rep.TempPath
		}
		failures = append(failures, f)
	}
	return failures, warnings
}
