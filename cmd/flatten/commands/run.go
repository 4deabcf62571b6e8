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
	"github.com/walteh/flatten/pkg/cancel"
	"github.com/walteh/flatten/pkg/flatten"
	"github.com/walteh/flatten/pkg/log"
	"github.com/walteh/flatten/pkg/operation"
	"github.com/walteh/flatten/pkg/retry"
	"github.com/walteh/flatten/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// 🔄 NewRunCmd creates the run command
func NewRunCmd(o *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [DIRECTORY]",
		Short: "Replace every symlink under a directory with a copy of its target",
		Long: `Run lists DIRECTORY recursively and replaces each file symlink with a real file.
It will:
1. Gather the symlinks, skipping excluded directories
2. Ask for confirmation (unless --yes)
3. Copy each link target next to the link and rename the copy over it
4. Retry network failures and report anything left behind`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return Run(cmd, o, args)
		},
	}

	o.AddDiscoveryFlags(cmd.Flags())
	o.AddRunFlags(cmd.Flags())
	return cmd
}

// Run flattens the directory named by args or the config
func Run(cmd *cobra.Command, o *opts.RootOpts, args []string) error {
	ctx := zerolog.Ctx(cmd.Context()).With().Str("command", "run").Logger().WithContext(cmd.Context())

	cfg, err := o.Resolve(ctx, cmd, args)
	if err != nil {
		return err
	}

	policy, err := cfg.RetryPolicy()
	if err != nil {
		return err
	}

	console := log.NewConsole(o.Stdout)
	options, err := discovery(ctx, cfg, console)
	if err != nil {
		return err
	}

	if !cfg.AssumeYes && !log.IsTerminal(o.Stdin) {
		zerolog.Ctx(ctx).Warn().Msg("stdin is not a terminal, reading the confirmation answer from it")
	}

	gate := cancel.New()
	options.AssumeYes = cfg.AssumeYes
	options.Gate = gate
	options.Retry = retry.New(policy, gate, nil)
	options.Flattener = flatten.New(flatten.Options{
		TempSuffix:  cfg.TempSuffix,
		IsTransient: flatten.TransientWithCodes(cfg.Retry.TransientCodes...),
	})
	options.Confirmer = &operation.LineConfirmer{In: o.Stdin, Out: o.Stdout}
	options.Reporter = status.NewReporter(console, false)

	op, err := operation.NewFlattenOperation(options)
	if err != nil {
		return errors.Errorf("creating flatten operation: %w", err)
	}

	sum, err := op.Execute(ctx)
	if err != nil {
		return errors.Errorf("flattening %s: %w", cfg.Root, err)
	}

	return finish(ctx, cfg, sum)
}
