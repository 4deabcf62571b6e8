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

package commands

import (
	"context"
	"slices"

	"github.com/walteh/flatten/pkg/config"
	"github.com/walteh/flatten/pkg/listing"
	"github.com/walteh/flatten/pkg/log"
	"github.com/walteh/flatten/pkg/operation"
	"github.com/walteh/flatten/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// 🔍 discovery builds the listing side shared by run and scan
func discovery(ctx context.Context, cfg *config.Config, console *log.Console) (operation.Options, error) {
	skip, err := cfg.SkipSet()
	if err != nil {
		return operation.Options{}, errors.Errorf("building skip set: %w", err)
	}

	lister, err := listing.NewLister(cfg.Listing.Source, cfg.Listing.File, cfg.Listing.Command)
	if err != nil {
		return operation.Options{}, errors.Errorf("creating lister: %w", err)
	}

	console.Header(ctx, "gathering symlinks recursively for "+cfg.Root)
	if !skip.Empty() {
		console.Info(ctx, "Skipping directories matching:")
		for _, rule := range append(slices.Clone(skip.Substrings()), skip.Globs()...) {
			console.Println("    " + rule)
		}
	}

	return operation.Options{
		Root:    cfg.Root,
		Skip:    skip,
		Lister:  lister,
		Workers: cfg.Workers,
	}, nil
}

// 💾 finish writes the run report when one was asked for
func finish(ctx context.Context, cfg *config.Config, sum *operation.Summary) error {
	if cfg.Report == "" || sum == nil {
		return nil
	}
	if err := status.WriteReport(ctx, cfg.Report, sum); err != nil {
		return errors.Errorf("writing report %s: %w", cfg.Report, err)
	}
	return nil
}
