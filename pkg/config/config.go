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

package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/walteh/flatten/pkg/flatten"
	"github.com/walteh/flatten/pkg/listing"
	"github.com/walteh/flatten/pkg/retry"
	"gitlab.com/tozd/go/errors"
)

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse decodes data on top of base
	Parse(ctx context.Context, data []byte, base *Config) (*Config, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// 🔁 RetryArgs is the retry budget for transient network errors
type RetryArgs struct {
	MaxRetries     int    `json:"max_retries" yaml:"max_retries" toml:"max_retries"`
	Delay          string `json:"delay" yaml:"delay" toml:"delay"`
	TransientCodes []int  `json:"transient_codes,omitempty" yaml:"transient_codes,omitempty" toml:"transient_codes,omitempty"`
}

// 📂 ListingArgs selects where the recursive listing text comes from
type ListingArgs struct {
	Source  string   `json:"source" yaml:"source" toml:"source"`
	File    string   `json:"file,omitempty" yaml:"file,omitempty" toml:"file,omitempty"`
	Command []string `json:"command,omitempty" yaml:"command,omitempty" toml:"command,omitempty"`
}

// 📚 Config represents the complete configuration
type Config struct {
	Root       string      `json:"root,omitempty" yaml:"root,omitempty" toml:"root,omitempty"`
	SkipDirs   []string    `json:"skip_dirs,omitempty" yaml:"skip_dirs,omitempty" toml:"skip_dirs,omitempty"`
	SkipGlobs  []string    `json:"skip_globs,omitempty" yaml:"skip_globs,omitempty" toml:"skip_globs,omitempty"`
	Workers    int         `json:"workers" yaml:"workers" toml:"workers"`
	Retry      RetryArgs   `json:"retry" yaml:"retry" toml:"retry"`
	TempSuffix string      `json:"temp_suffix" yaml:"temp_suffix" toml:"temp_suffix"`
	Listing    ListingArgs `json:"listing" yaml:"listing" toml:"listing"`
	AssumeYes  bool        `json:"assume_yes,omitempty" yaml:"assume_yes,omitempty" toml:"assume_yes,omitempty"`
	Report     string      `json:"report,omitempty" yaml:"report,omitempty" toml:"report,omitempty"`

	location string
}

// 🏭 Default returns the configuration used when nothing is set
func Default() *Config {
	return &Config{
		Workers: 1,
		Retry: RetryArgs{
			MaxRetries: retry.DefaultMaxRetries,
			Delay:      retry.DefaultDelay.String(),
		},
		TempSuffix: flatten.DefaultTempSuffix,
		Listing: ListingArgs{
			Source: listing.SourceAuto,
		},
	}
}

// 🎯 Load reads, parses and validates the configuration at path
func Load(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading configuration")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	cfg, err := p.Parse(ctx, data, Default())
	if err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}
	cfg.location = path

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Location is the file the config was loaded from, empty for defaults
func (cfg *Config) Location() string {
	return cfg.location
}

// 🔍 Validate checks if the configuration is valid
func (cfg *Config) Validate() error {
	if cfg.Workers < 1 {
		return errors.Errorf("workers must be at least 1, got %d", cfg.Workers)
	}
	if cfg.Retry.MaxRetries < 0 {
		return errors.Errorf("retry.max_retries must not be negative, got %d", cfg.Retry.MaxRetries)
	}
	if _, err := cfg.RetryDelay(); err != nil {
		return err
	}
	if cfg.TempSuffix == "" {
		return errors.Errorf("temp_suffix is required")
	}
	if strings.ContainsAny(cfg.TempSuffix, `/\`) {
		return errors.Errorf("temp_suffix must not contain path separators: %q", cfg.TempSuffix)
	}

	switch cfg.Listing.Source {
	case "", listing.SourceAuto, listing.SourceCommand, listing.SourceWalk:
	case listing.SourceFile:
		if cfg.Listing.File == "" {
			return errors.Errorf("listing.file is required when listing.source is %q", listing.SourceFile)
		}
	default:
		return errors.Errorf("unknown listing.source %q", cfg.Listing.Source)
	}

	if _, err := listing.NewSkipSet(cfg.SkipDirs, cfg.SkipGlobs); err != nil {
		return errors.Errorf("skip_globs: %w", err)
	}

	if cfg.Root != "" {
		cfg.Root = filepath.Clean(cfg.Root)
	}

	return nil
}

// ⏱️ RetryDelay parses retry.delay
func (cfg *Config) RetryDelay() (time.Duration, error) {
	if cfg.Retry.Delay == "" {
		return retry.DefaultDelay, nil
	}
	d, err := time.ParseDuration(cfg.Retry.Delay)
	if err != nil {
		return 0, errors.Errorf("retry.delay: %w", err)
	}
	if d < 0 {
		return 0, errors.Errorf("retry.delay must not be negative, got %s", d)
	}
	return d, nil
}

// RetryPolicy converts the retry settings for the retry controller
func (cfg *Config) RetryPolicy() (retry.Policy, error) {
	d, err := cfg.RetryDelay()
	if err != nil {
		return retry.Policy{}, err
	}
	return retry.Policy{MaxRetries: cfg.Retry.MaxRetries, Delay: d}, nil
}

// SkipSet builds the directory exclusions
func (cfg *Config) SkipSet() (*listing.SkipSet, error) {
	return listing.NewSkipSet(cfg.SkipDirs, cfg.SkipGlobs)
}

// 📝 String returns a string representation of the config
func (cfg *Config) String() string {
	return fmt.Sprintf("%s (workers=%d retries=%d delay=%s skip=%v)",
		cfg.Root, cfg.Workers, cfg.Retry.MaxRetries, cfg.Retry.Delay, append(slices.Clone(cfg.SkipDirs), cfg.SkipGlobs...))
}
