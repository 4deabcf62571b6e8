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

package status

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"sync/atomic"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/walteh/flatten/pkg/listing"
	"github.com/walteh/flatten/pkg/log"
	"github.com/walteh/flatten/pkg/operation"
	"github.com/walteh/flatten/pkg/retry"
)

var _ operation.Reporter = (*Reporter)(nil)

// 📈 Reporter prints the progress of a run to a console
type Reporter struct {
	console  *log.Console
	listAll  bool
	finished atomic.Int64
}

// 🏭 NewReporter creates a reporter. With listLinks set every discovered
// link path is printed, which is what a scan wants.
func NewReporter(console *log.Console, listLinks bool) *Reporter {
	return &Reporter{console: console, listAll: listLinks}
}

func (r *Reporter) Discovered(ctx context.Context, root string, res *listing.Result) {
	r.console.Infof(ctx, "Found %d symlinks in %d directories", len(res.Links), res.Directories)
	if res.SkippedDirectories > 0 {
		r.console.Infof(ctx, "Skipped %d excluded directories", res.SkippedDirectories)
	}
	if res.DirectoryLinks > 0 {
		r.console.Warningf(ctx, "Left %d directory links in place", res.DirectoryLinks)
	}
	if r.listAll {
		for _, link := range res.Links {
			r.console.Println("    " + link)
		}
	}
}

func (r *Reporter) NoLinks(ctx context.Context, root string) {
	r.console.Infof(ctx, "No symlinks found in %s", root)
}

func (r *Reporter) Declined(ctx context.Context) {
	r.console.Warning(ctx, "Declined, nothing was flattened")
}

func (r *Reporter) Processing(ctx context.Context, workers, total int) {
	r.finished.Store(0)
	r.console.Infof(ctx, "Processing %d symlinks on %d workers", total, workers)
}

func (r *Reporter) ItemStarted(ctx context.Context, index, total int, path string) {
	r.console.Infof(ctx, "Resolving symlink (%d/%d) %s", index+1, total, path)
}

func (r *Reporter) ItemFinished(ctx context.Context, index, total int, rep retry.Report, totalBytes int64) {
	n := int(r.finished.Add(1))
	r.console.Println(FormatItem(index, total, rep))

	if rep.Warning != nil {
		r.console.Warningf(ctx, "%s: %v", rep.Path, rep.Warning)
	}

	zerolog.Ctx(ctx).Debug().
		Str("progress", FormatProgress(n, total)).
		Str("copied", FormatBytes(totalBytes)).
		Msg("item finished")
}

func (r *Reporter) Cancelling(ctx context.Context) {
	r.console.Warning(ctx, "Cancelling, waiting for in-flight items to finish")
}

func (r *Reporter) Done(ctx context.Context, sum *operation.Summary) {
	if !slices.Contains(sum.States, operation.StateProcessing) {
		return
	}

	r.console.Println(RenderTotals(sum))

	for _, f := range sum.Failures {
		if f.Orphaned {
			continue
		}
		r.console.Errorf(ctx, "%s: %s", f.Path, f.Error)
	}

	if orphans := sum.Orphans(); len(orphans) > 0 {
		r.console.Errorf(ctx, "%d copies could not be moved into place, recover them from:", len(orphans))
		for _, p := range orphans {
			r.console.Println("    " + p)
		}
	}

	switch {
	case sum.Cancelled:
		r.console.Warning(ctx, "Cancelled before every symlink was processed")
	case len(sum.Failures) > 0:
		r.console.Warningf(ctx, "Done with %d failures", len(sum.Failures))
	default:
		r.console.Successf(ctx, "Done, flattened %d symlinks (%s)", sum.Progress.Succeeded, FormatBytes(sum.Progress.Bytes))
	}
}

// 📊 RenderTotals renders the counters of a finished run as a table
func RenderTotals(sum *operation.Summary) string {
	p := sum.Progress
	data := pterm.TableData{
		{"found", "attempted", "flattened", "failed", "orphaned", "copied"},
		{
			strconv.Itoa(sum.Found),
			strconv.FormatInt(p.Attempted, 10),
			strconv.FormatInt(p.Succeeded, 10),
			strconv.FormatInt(p.Failed, 10),
			strconv.FormatInt(p.Orphaned, 10),
			FormatBytes(p.Bytes),
		},
	}

	out, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return fmt.Sprintf("%d/%d flattened, %s copied", p.Succeeded, sum.Found, FormatBytes(p.Bytes))
	}
	return out
}
