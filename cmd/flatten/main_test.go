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
	"bytes"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/adrg/xdg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// isolateConfig keeps the machine's own XDG config out of the test
func isolateConfig(t *testing.T) {
	t.Cleanup(xdg.Reload)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_DIRS", t.TempDir())
	xdg.Reload()
}

// linkedTree creates root/docs/readme.txt as a symlink to a file outside root
func linkedTree(t *testing.T) (root, link string) {
	t.Helper()

	root = t.TempDir()
	target := filepath.Join(t.TempDir(), "readme.txt")
	require.NoError(t, os.WriteFile(target, []byte("hello world"), 0644))

	require.NoError(t, os.MkdirAll(filepath.Join(root, "docs"), 0755))
	link = filepath.Join(root, "docs", "readme.txt")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks not supported here: %v", err)
	}
	return root, link
}

func isSymlink(t *testing.T, path string) bool {
	info, err := os.Lstat(path)
	require.NoError(t, err)
	return info.Mode().Type() == fs.ModeSymlink
}

type result struct {
	code   int
	stdout string
	stderr string
}

func execute(t *testing.T, stdin string, args ...string) result {
	var stdout, stderr bytes.Buffer
	code := run(args, strings.NewReader(stdin), &stdout, &stderr)
	return result{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func TestRun(t *testing.T) {
	tests := []struct {
		name     string
		stdin    string
		args     func(t *testing.T, root string) []string
		wantCode int
		validate func(t *testing.T, root, link string, res result)
	}{
		{
			name: "flatten_with_yes",
			args: func(t *testing.T, root string) []string {
				return []string{root, "--yes", "--workers", "2"}
			},
			validate: func(t *testing.T, root, link string, res result) {
				assert.False(t, isSymlink(t, link))
				data, err := os.ReadFile(link)
				require.NoError(t, err)
				assert.Equal(t, "hello world", string(data))
				assert.Contains(t, res.stdout, "Found 1 symlinks in 2 directories")
			},
		},
		{
			name:  "run_subcommand_confirmed",
			stdin: "yes\n",
			args: func(t *testing.T, root string) []string {
				return []string{"run", root}
			},
			validate: func(t *testing.T, root, link string, res result) {
				assert.False(t, isSymlink(t, link))
				assert.Contains(t, res.stdout, "(y/n)")
			},
		},
		{
			name:  "declined",
			stdin: "n\n",
			args: func(t *testing.T, root string) []string {
				return []string{root}
			},
			validate: func(t *testing.T, root, link string, res result) {
				assert.True(t, isSymlink(t, link))
				assert.Contains(t, res.stdout, "Declined")
			},
		},
		{
			name: "skip_dir",
			args: func(t *testing.T, root string) []string {
				return []string{root, "--yes", "-s", "docs"}
			},
			validate: func(t *testing.T, root, link string, res result) {
				assert.True(t, isSymlink(t, link))
				assert.Contains(t, res.stdout, "No symlinks found")
			},
		},
		{
			name: "scan_leaves_links",
			args: func(t *testing.T, root string) []string {
				return []string{"scan", root}
			},
			validate: func(t *testing.T, root, link string, res result) {
				assert.True(t, isSymlink(t, link))
				assert.Contains(t, res.stdout, link)
			},
		},
		{
			name: "report_written",
			args: func(t *testing.T, root string) []string {
				return []string{root, "-y", "--report", filepath.Join(root, "..", filepath.Base(root)+"-report.yaml")}
			},
			validate: func(t *testing.T, root, link string, res result) {
				data, err := os.ReadFile(filepath.Join(root, "..", filepath.Base(root)+"-report.yaml"))
				require.NoError(t, err)

				var report map[string]any
				require.NoError(t, yaml.Unmarshal(data, &report))
				summary := report["summary"].(map[string]any)
				assert.Equal(t, 1, summary["found"])
			},
		},
		{
			name: "listing_file",
			args: func(t *testing.T, root string) []string {
				listingPath := filepath.Join(t.TempDir(), "listing.txt")
				listingText := " Directory of " + filepath.Join(root, "docs") + "\r\n" +
					"01/01/2024  10:00 AM    <SYMLINK>      readme.txt [elsewhere]\r\n"
				require.NoError(t, os.WriteFile(listingPath, []byte(listingText), 0644))
				return []string{root, "--yes", "--listing-file", listingPath}
			},
			validate: func(t *testing.T, root, link string, res result) {
				assert.False(t, isSymlink(t, link))
			},
		},
		{
			name: "missing_directory",
			args: func(t *testing.T, root string) []string {
				return []string{filepath.Join(root, "missing"), "--yes"}
			},
			wantCode: exitBadDirectory,
			validate: func(t *testing.T, root, link string, res result) {
				assert.Contains(t, res.stderr, "Directory does not exist")
			},
		},
		{
			name: "invalid_config",
			args: func(t *testing.T, root string) []string {
				cfg := filepath.Join(t.TempDir(), "flatten.yaml")
				require.NoError(t, os.WriteFile(cfg, []byte("workers: 0\n"), 0644))
				return []string{root, "--config", cfg}
			},
			wantCode: exitFailure,
			validate: func(t *testing.T, root, link string, res result) {
				assert.Contains(t, res.stderr, "workers must be at least 1")
				assert.True(t, isSymlink(t, link))
			},
		},
		{
			name: "config_supplies_root",
			args: func(t *testing.T, root string) []string {
				cfg := filepath.Join(t.TempDir(), "flatten.json")
				content := `{"root": ` + jsonString(t, root) + `, "assume_yes": true}`
				require.NoError(t, os.WriteFile(cfg, []byte(content), 0644))
				return []string{"--config", cfg}
			},
			validate: func(t *testing.T, root, link string, res result) {
				assert.False(t, isSymlink(t, link))
			},
		},
		{
			name: "no_directory",
			args: func(t *testing.T, root string) []string {
				return []string{}
			},
			wantCode: exitFailure,
			validate: func(t *testing.T, root, link string, res result) {
				assert.Contains(t, res.stderr, "a directory is required")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolateConfig(t)
			root, link := linkedTree(t)

			res := execute(t, tt.stdin, tt.args(t, root)...)

			assert.Equal(t, tt.wantCode, res.code, "stdout: %s\nstderr: %s", res.stdout, res.stderr)
			if tt.validate != nil {
				tt.validate(t, root, link, res)
			}
		})
	}
}

func jsonString(t *testing.T, s string) string {
	b, err := json.Marshal(s)
	require.NoError(t, err)
	return string(b)
}

func TestVersion(t *testing.T) {
	t.Run("text", func(t *testing.T) {
		res := execute(t, "", "version")
		assert.Equal(t, exitOK, res.code)
		assert.Contains(t, res.stdout, "flatten version info")
		assert.Contains(t, res.stdout, "Go:")
	})

	t.Run("json", func(t *testing.T) {
		res := execute(t, "", "version", "--json")
		require.Equal(t, exitOK, res.code)

		var info VersionInfo
		require.NoError(t, json.Unmarshal([]byte(res.stdout), &info))
		assert.NotEmpty(t, info.GoVersion)
		assert.NotEmpty(t, info.Version)
	})
}

func TestFormatVersion(t *testing.T) {
	out := FormatVersion(&VersionInfo{Version: "v1.2.3", Revision: "abc", Modified: true, GoVersion: "go1.23", Platform: "linux/amd64"})
	assert.Contains(t, out, "Version:   v1.2.3")
	assert.Contains(t, out, "Revision:  abc (modified)")
}
