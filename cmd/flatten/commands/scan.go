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
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/flatten/cmd/flatten/opts"
	"github.com/walteh/flatten/pkg/log"
	"github.com/walteh/flatten/pkg/operation"
	"github.com/walteh/flatten/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// 🔎 NewScanCmd creates the scan command
func NewScanCmd(o *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [DIRECTORY]",
		Short: "List the symlinks that run would flatten without touching them",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := zerolog.Ctx(cmd.Context()).With().Str("command", "scan").Logger().WithContext(cmd.Context())

			cfg, err := o.Resolve(ctx, cmd, args)
			if err != nil {
				return err
			}

			console := log.NewConsole(o.Stdout)
			options, err := discovery(ctx, cfg, console)
			if err != nil {
				return err
			}
			options.Reporter = status.NewReporter(console, true)

			op, err := operation.NewScanOperation(options)
			if err != nil {
				return errors.Errorf("creating scan operation: %w", err)
			}

			sum, err := op.Execute(ctx)
			if err != nil {
				return errors.Errorf("scanning %s: %w", cfg.Root, err)
			}

			return finish(ctx, cfg, sum)
		},
	}

	o.AddDiscoveryFlags(cmd.Flags())
	return cmd
}
