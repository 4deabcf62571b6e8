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
	"testing"
	"time"

	"github.com/adrg/xdg"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCtx(t *testing.T) context.Context {
	logger := zerolog.New(zerolog.NewTestWriter(t))
	return logger.WithContext(context.Background())
}

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	t.Setenv("FLATTEN_TEST_ROOT", "/mnt/share")

	tests := []struct {
		name        string
		file        string
		config      string
		wantErr     bool
		errContains string
		check       func(t *testing.T, cfg *Config)
	}{
		{
			name: "yaml_full",
			file: "flatten.yaml",
			config: `
root: /data/projects
skip_dirs: [node_modules, .cache]
skip_globs: ["**/build"]
workers: 8
retry:
  max_retries: 5
  delay: 2s
  transient_codes: [1231]
temp_suffix: .partial
listing:
  source: file
  file: /tmp/listing.txt
assume_yes: true
report: out.yaml
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "/data/projects", cfg.Root)
				assert.Equal(t, []string{"node_modules", ".cache"}, cfg.SkipDirs)
				assert.Equal(t, []string{"**/build"}, cfg.SkipGlobs)
				assert.Equal(t, 8, cfg.Workers)
				assert.Equal(t, 5, cfg.Retry.MaxRetries)
				assert.Equal(t, []int{1231}, cfg.Retry.TransientCodes)
				assert.Equal(t, ".partial", cfg.TempSuffix)
				assert.Equal(t, "file", cfg.Listing.Source)
				assert.Equal(t, "/tmp/listing.txt", cfg.Listing.File)
				assert.True(t, cfg.AssumeYes)
				assert.Equal(t, "out.yaml", cfg.Report)

				policy, err := cfg.RetryPolicy()
				require.NoError(t, err)
				assert.Equal(t, 2*time.Second, policy.Delay)
				assert.Equal(t, 5, policy.MaxRetries)
			},
		},
		{
			name:   "yaml_minimal_keeps_defaults",
			file:   "flatten.yml",
			config: "skip_dirs: [tmp]\n",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 1, cfg.Workers)
				assert.Equal(t, 3, cfg.Retry.MaxRetries)
				assert.Equal(t, ".temp", cfg.TempSuffix)
				assert.Equal(t, "auto", cfg.Listing.Source)
				d, err := cfg.RetryDelay()
				require.NoError(t, err)
				assert.Equal(t, 10*time.Second, d)
			},
		},
		{
			name:   "yaml_zero_retries_allowed",
			file:   "flatten.yaml",
			config: "retry:\n  max_retries: 0\n",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 0, cfg.Retry.MaxRetries)
			},
		},
		{
			name:        "yaml_unknown_field",
			file:        "flatten.yaml",
			config:      "wrokers: 3\n",
			wantErr:     true,
			errContains: "parsing YAML",
		},
		{
			name:   "json",
			file:   "flatten.json",
			config: `{"workers": 4, "skip_dirs": ["A"], "retry": {"max_retries": 1, "delay": "500ms"}}`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 4, cfg.Workers)
				assert.Equal(t, []string{"A"}, cfg.SkipDirs)
				assert.Equal(t, 1, cfg.Retry.MaxRetries)
				assert.Equal(t, "500ms", cfg.Retry.Delay)
				assert.Equal(t, ".temp", cfg.TempSuffix, "unset fields keep defaults")
			},
		},
		{
			name:        "json_unknown_field",
			file:        "flatten.json",
			config:      `{"nope": true}`,
			wantErr:     true,
			errContains: "parsing JSON",
		},
		{
			name: "hcl_with_env",
			file: "flatten.hcl",
			config: `
root      = "${env.FLATTEN_TEST_ROOT}/projects"
workers   = 2
skip_dirs = ["archive"]

retry {
  delay = "1m"
}

listing {
  source  = "command"
  command = ["cmd", "/C", "dir /s /a"]
}
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "/mnt/share/projects", cfg.Root)
				assert.Equal(t, 2, cfg.Workers)
				assert.Equal(t, []string{"archive"}, cfg.SkipDirs)
				assert.Equal(t, 3, cfg.Retry.MaxRetries, "unset attribute in block keeps default")
				assert.Equal(t, "1m", cfg.Retry.Delay)
				assert.Equal(t, "command", cfg.Listing.Source)
				assert.Equal(t, []string{"cmd", "/C", "dir /s /a"}, cfg.Listing.Command)
			},
		},
		{
			name:        "hcl_syntax_error",
			file:        "flatten.hcl",
			config:      "workers = = 3",
			wantErr:     true,
			errContains: "parsing HCL",
		},
		{
			name: "toml",
			file: "flatten.toml",
			config: `
workers = 3
skip_globs = ["**/.git"]

[retry]
max_retries = 2
delay = "3s"
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 3, cfg.Workers)
				assert.Equal(t, []string{"**/.git"}, cfg.SkipGlobs)
				assert.Equal(t, 2, cfg.Retry.MaxRetries)
				assert.Equal(t, "3s", cfg.Retry.Delay)
			},
		},
		{
			name:        "unsupported_extension",
			file:        "flatten.ini",
			config:      "workers=1",
			wantErr:     true,
			errContains: "no parser found",
		},
		{
			name:        "invalid_workers",
			file:        "flatten.yaml",
			config:      "workers: 0\n",
			wantErr:     true,
			errContains: "workers must be at least 1",
		},
		{
			name:        "invalid_delay",
			file:        "flatten.yaml",
			config:      "retry:\n  delay: soon\n",
			wantErr:     true,
			errContains: "retry.delay",
		},
		{
			name:        "negative_retries",
			file:        "flatten.yaml",
			config:      "retry:\n  max_retries: -1\n",
			wantErr:     true,
			errContains: "must not be negative",
		},
		{
			name:        "file_source_requires_file",
			file:        "flatten.yaml",
			config:      "listing:\n  source: file\n",
			wantErr:     true,
			errContains: "listing.file is required",
		},
		{
			name:        "unknown_source",
			file:        "flatten.yaml",
			config:      "listing:\n  source: carrier-pigeon\n",
			wantErr:     true,
			errContains: "unknown listing.source",
		},
		{
			name:        "bad_glob",
			file:        "flatten.yaml",
			config:      "skip_globs: [\"[oops\"]\n",
			wantErr:     true,
			errContains: "skip_globs",
		},
		{
			name:        "suffix_with_separator",
			file:        "flatten.yaml",
			config:      "temp_suffix: /x\n",
			wantErr:     true,
			errContains: "temp_suffix",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.file, tt.config)

			cfg, err := Load(testCtx(t), path)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, path, cfg.Location())
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestLoadOrDefault(t *testing.T) {
	// registered first so it runs after the env is restored
	t.Cleanup(xdg.Reload)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_DIRS", t.TempDir())
	xdg.Reload()

	t.Run("nothing_found_uses_defaults", func(t *testing.T) {
		cfg, err := LoadOrDefault(testCtx(t), "", t.TempDir())
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
	})

	t.Run("finds_working_directory_config", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".flatten.yaml"), []byte("workers: 6\n"), 0o644))

		found, err := Find(testCtx(t), dir)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, ".flatten.yaml"), found)

		cfg, err := LoadOrDefault(testCtx(t), "", dir)
		require.NoError(t, err)
		assert.Equal(t, 6, cfg.Workers)
	})

	t.Run("explicit_path_wins", func(t *testing.T) {
		path := writeConfig(t, "custom.json", `{"workers": 9}`)
		cfg, err := LoadOrDefault(testCtx(t), path, t.TempDir())
		require.NoError(t, err)
		assert.Equal(t, 9, cfg.Workers)
	})

	t.Run("explicit_missing_path_errors", func(t *testing.T) {
		_, err := LoadOrDefault(testCtx(t), filepath.Join(t.TempDir(), "missing.yaml"), "")
		assert.Error(t, err)
	})
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	policy, err := cfg.RetryPolicy()
	require.NoError(t, err)
	assert.Equal(t, 3, policy.MaxRetries)
	assert.Equal(t, 10*time.Second, policy.Delay)

	skip, err := cfg.SkipSet()
	require.NoError(t, err)
	assert.True(t, skip.Empty())
}
