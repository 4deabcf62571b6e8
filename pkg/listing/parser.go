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

// Package listing turns recursive directory listing text into the set of
// symlinks to flatten.
//
// The text format is the one printed by a recursive "dir" on Windows:
//
//	 Directory of C:\data
//
//	01/02/2024  10:00 AM    <SYMLINK>      report.xlsx [\\server\share\report.xlsx]
//	01/02/2024  10:00 AM    <SYMLINKD>     archive [\\server\share\archive]
//
// Only header lines and link lines matter; everything else is ignored.
package listing

import (
	"bufio"
	"context"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

const (
	DirectoryMarker = "Directory of "
	LinkMarker      = "<SYMLINK>"

	maxLineSize = 1 << 20
)

// directory links cannot be flattened with a file copy
var directoryLinkMarkers = []string{"<SYMLINKD>", "<JUNCTION>"}

var (
	// ErrLinkBeforeDirectory is returned when a link line appears before any directory header
	ErrLinkBeforeDirectory = errors.Base("link entry before any directory header")
	// ErrEmptyLinkName is returned when a link line carries no file name
	ErrEmptyLinkName = errors.Base("link entry without a name")
)

// 📋 Result is the discovered set. It is never mutated after Parse returns.
type Result struct {
	Links              []string `json:"links" yaml:"links"`
	Directories        int      `json:"directories" yaml:"directories"`
	SkippedDirectories int      `json:"skipped_directories" yaml:"skipped_directories"`
	DirectoryLinks     int      `json:"directory_links" yaml:"directory_links"`
}

// 🔍 Parse scans listing text and returns every file link outside excluded directories
func Parse(ctx context.Context, r io.Reader, skip *SkipSet) (*Result, error) {
	logger := zerolog.Ctx(ctx)

	res := &Result{Links: []string{}}
	var current string
	var skipping bool

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")

		// headers start the line; an entry name may contain the marker text
		if header, ok := strings.CutPrefix(strings.TrimLeft(line, " \t"), DirectoryMarker); ok {
			current = withSeparator(strings.TrimSpace(header))
			res.Directories++
			rule, matched := skip.Match(current)
			skipping = matched
			if skipping {
				res.SkippedDirectories++
				logger.Debug().Str("directory", current).Str("rule", rule).Msg("skipping directory")
			}
			continue
		}

		if isDirectoryLink(line) {
			if current == "" {
				return nil, errors.Errorf("line %d: %w", lineNo, ErrLinkBeforeDirectory)
			}
			if !skipping {
				res.DirectoryLinks++
			}
			continue
		}

		idx := strings.Index(line, LinkMarker)
		if idx < 0 {
			continue
		}
		if current == "" {
			return nil, errors.Errorf("line %d: %w", lineNo, ErrLinkBeforeDirectory)
		}
		if skipping {
			continue
		}

		name := stripTarget(strings.TrimLeft(line[idx+len(LinkMarker):], " \t"))
		if name == "" {
			return nil, errors.Errorf("line %d: %w", lineNo, ErrEmptyLinkName)
		}
		res.Links = append(res.Links, current+name)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Errorf("reading listing: %w", err)
	}

	logger.Debug().Int("links", len(res.Links)).Int("directories", res.Directories).Msg("parsed listing")
	return res, nil
}

func isDirectoryLink(line string) bool {
	for _, m := range directoryLinkMarkers {
		if strings.Contains(line, m) {
			return true
		}
	}
	return false
}

// stripTarget drops a trailing " [target]" annotation. Brackets are
// balanced from the end so a target containing brackets stays intact.
func stripTarget(name string) string {
	if !strings.HasSuffix(name, "]") {
		return name
	}
	depth := 0
	for i := len(name) - 1; i >= 0; i-- {
		switch name[i] {
		case ']':
			depth++
		case '[':
			depth--
			if depth == 0 {
				if i > 0 && name[i-1] == ' ' {
					return name[:i-1]
				}
				return name
			}
		}
	}
	return name
}

// withSeparator terminates dir with the separator style it already uses
func withSeparator(dir string) string {
	if dir == "" || strings.HasSuffix(dir, `\`) || strings.HasSuffix(dir, "/") {
		return dir
	}
	if strings.Contains(dir, `\`) {
		return dir + `\`
	}
	return dir + "/"
}
