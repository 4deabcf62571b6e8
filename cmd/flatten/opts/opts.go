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

package opts

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/walteh/flatten/pkg/config"
	"github.com/walteh/flatten/pkg/listing"
	"gitlab.com/tozd/go/errors"
)

// 🎛️ RootOpts holds the flags and streams shared by every command
type RootOpts struct {
	ConfigFile string
	Debug      bool
	LogJSON    bool

	SkipDirs    []string
	SkipGlobs   []string
	ListingFile string
	Report      string

	Workers   int
	AssumeYes bool

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// AddRootFlags adds the flags every command understands
func (o *RootOpts) AddRootFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&o.ConfigFile, "config", "c", "", "config file path (default: ./.flatten.* then the XDG config dir)")
	fs.BoolVarP(&o.Debug, "debug", "d", false, "enable debug logging")
	fs.BoolVar(&o.LogJSON, "log-json", false, "write logs as JSON lines")
}

// AddDiscoveryFlags adds the flags that shape how links are found
func (o *RootOpts) AddDiscoveryFlags(fs *pflag.FlagSet) {
	fs.StringSliceVarP(&o.SkipDirs, "skip-dir", "s", nil, "skip directories whose path contains this text (repeatable)")
	fs.StringSliceVar(&o.SkipGlobs, "skip-glob", nil, "skip directories matching this glob (repeatable)")
	fs.StringVar(&o.ListingFile, "listing-file", "", "read a captured recursive listing instead of listing the directory")
	fs.StringVar(&o.Report, "report", "", "write a run report to this .yaml or .json file")
}

// AddRunFlags adds the flags that only matter when flattening
func (o *RootOpts) AddRunFlags(fs *pflag.FlagSet) {
	fs.IntVarP(&o.Workers, "workers", "w", 1, "number of concurrent workers")
	fs.BoolVarP(&o.AssumeYes, "yes", "y", false, "flatten without asking for confirmation")
}

// 🎯 Resolve loads the config and lays the flags that were set on top of it.
// The directory argument wins over the config root.
func (o *RootOpts) Resolve(ctx context.Context, cmd *cobra.Command, args []string) (*config.Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, errors.Errorf("getting working directory: %w", err)
	}

	cfg, err := config.LoadOrDefault(ctx, o.ConfigFile, cwd)
	if err != nil {
		return nil, errors.Errorf("loading config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("skip-dir") {
		cfg.SkipDirs = o.SkipDirs
	}
	if flags.Changed("skip-glob") {
		cfg.SkipGlobs = o.SkipGlobs
	}
	if flags.Changed("listing-file") {
		cfg.Listing.Source = listing.SourceFile
		cfg.Listing.File = o.ListingFile
	}
	if flags.Changed("report") {
		cfg.Report = o.Report
	}
	if flags.Changed("workers") {
		cfg.Workers = o.Workers
	}
	if flags.Changed("yes") {
		cfg.AssumeYes = o.AssumeYes
	}

	if len(args) > 0 {
		cfg.Root = args[0]
	}
	if cfg.Root == "" {
		return nil, errors.Errorf("a directory is required, as an argument or as root in the config")
	}

	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, errors.Errorf("getting absolute root path: %w", err)
	}
	cfg.Root = root

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}
	return cfg, nil
}
