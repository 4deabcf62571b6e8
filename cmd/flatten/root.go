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

package main

import (
	"github.com/spf13/cobra"
	"github.com/walteh/flatten/cmd/flatten/commands"
	"github.com/walteh/flatten/cmd/flatten/opts"
	"github.com/walteh/flatten/pkg/log"
)

// 🌱 newRootCmd creates the root command. Without a subcommand it behaves like run.
func newRootCmd(o *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "flatten [DIRECTORY]",
		Short: "Replace the symlinks in a directory tree with real files",
		Long: `flatten finds every file symlink under DIRECTORY and replaces it with an
independent copy of the data it points to, so the tree no longer depends on
the link targets. Network failures are retried and interrupted runs stop cleanly.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(cmd, o)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return commands.Run(cmd, o, args)
		},
	}

	o.AddRootFlags(cmd.PersistentFlags())
	o.AddDiscoveryFlags(cmd.Flags())
	o.AddRunFlags(cmd.Flags())

	cmd.AddCommand(
		commands.NewRunCmd(o),
		commands.NewScanCmd(o),
		newVersionCmd(o),
	)

	return cmd
}

// setupLogging puts the configured logger in the command context
func setupLogging(cmd *cobra.Command, o *opts.RootOpts) {
	log.SetStyling(log.IsTerminal(o.Stdout))
	logger := log.New(log.Options{Debug: o.Debug, JSON: o.LogJSON, Out: o.Stderr})
	cmd.SetContext(logger.WithContext(cmd.Context()))
}
