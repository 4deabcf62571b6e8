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
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
)

func init() {
	Register(&HCLParser{})
}

// 🔧 HCLParser implements the Parser interface for HCL files
type HCLParser struct{}

// 🔍 CanParse checks if this parser can handle the given file
func (p *HCLParser) CanParse(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".hcl")
}

// Define HCL schema. Optional values are pointers so unset keeps the default.
type hclConfig struct {
	Root       *string  `hcl:"root,optional"`
	SkipDirs   []string `hcl:"skip_dirs,optional"`
	SkipGlobs  []string `hcl:"skip_globs,optional"`
	Workers    *int     `hcl:"workers,optional"`
	TempSuffix *string  `hcl:"temp_suffix,optional"`
	AssumeYes  *bool    `hcl:"assume_yes,optional"`
	Report     *string  `hcl:"report,optional"`
	Retry      *struct {
		MaxRetries     *int    `hcl:"max_retries,optional"`
		Delay          *string `hcl:"delay,optional"`
		TransientCodes []int   `hcl:"transient_codes,optional"`
	} `hcl:"retry,block"`
	Listing *struct {
		Source  *string  `hcl:"source,optional"`
		File    *string  `hcl:"file,optional"`
		Command []string `hcl:"command,optional"`
	} `hcl:"listing,block"`
}

// 📝 Parse parses the config from HCL. Environment variables are available as env.NAME.
func (p *HCLParser) Parse(ctx context.Context, data []byte, base *Config) (*Config, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, "config.hcl")
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	// Create evaluation context
	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env": envObject(os.Environ()),
		},
	}

	var hclCfg hclConfig
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &hclCfg)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	// Convert to model
	cfg := *base
	setIf(&cfg.Root, hclCfg.Root)
	setIf(&cfg.Workers, hclCfg.Workers)
	setIf(&cfg.TempSuffix, hclCfg.TempSuffix)
	setIf(&cfg.AssumeYes, hclCfg.AssumeYes)
	setIf(&cfg.Report, hclCfg.Report)
	if hclCfg.SkipDirs != nil {
		cfg.SkipDirs = hclCfg.SkipDirs
	}
	if hclCfg.SkipGlobs != nil {
		cfg.SkipGlobs = hclCfg.SkipGlobs
	}
	if r := hclCfg.Retry; r != nil {
		setIf(&cfg.Retry.MaxRetries, r.MaxRetries)
		setIf(&cfg.Retry.Delay, r.Delay)
		if r.TransientCodes != nil {
			cfg.Retry.TransientCodes = r.TransientCodes
		}
	}
	if l := hclCfg.Listing; l != nil {
		setIf(&cfg.Listing.Source, l.Source)
		setIf(&cfg.Listing.File, l.File)
		if l.Command != nil {
			cfg.Listing.Command = l.Command
		}
	}

	return &cfg, nil
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// envObject exposes KEY=VALUE pairs as an HCL object
func envObject(environ []string) cty.Value {
	vals := make(map[string]cty.Value, len(environ))
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}
		vals[k] = cty.StringVal(v)
	}
	return cty.ObjectVal(vals)
}
