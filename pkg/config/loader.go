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
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// ConfigName is the base name searched for in the working directory
const ConfigName = ".flatten"

var extensions = []string{".yaml", ".yml", ".hcl", ".json", ".toml"}

// 🔎 Find returns the first config file found in dir, then in the XDG
// config directories. An empty path means none was found.
func Find(ctx context.Context, dir string) (string, error) {
	logger := zerolog.Ctx(ctx)

	for _, ext := range extensions {
		candidate := filepath.Join(dir, ConfigName+ext)
		if _, err := os.Stat(candidate); err == nil {
			logger.Debug().Str("path", candidate).Msg("found config in working directory")
			return candidate, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", errors.Errorf("checking %s: %w", candidate, err)
		}
	}

	for _, ext := range extensions {
		candidate, err := xdg.SearchConfigFile(filepath.Join("flatten", "config"+ext))
		if err == nil {
			logger.Debug().Str("path", candidate).Msg("found config in XDG config dir")
			return candidate, nil
		}
	}

	return "", nil
}

// 🎯 LoadOrDefault loads path, or the discovered config when path is empty,
// falling back to defaults when nothing exists
func LoadOrDefault(ctx context.Context, path, dir string) (*Config, error) {
	if path == "" {
		found, err := Find(ctx, dir)
		if err != nil {
			return nil, err
		}
		path = found
	}
	if path == "" {
		return Default(), nil
	}
	return Load(ctx, path)
}
