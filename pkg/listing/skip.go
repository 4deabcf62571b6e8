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

package listing

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gitlab.com/tozd/go/errors"
)

// 🚫 SkipSet excludes directories whose path contains any of its substrings
// or matches any of its glob patterns. It is immutable once built.
type SkipSet struct {
	substrings []string
	globs      []string
}

// 🏭 NewSkipSet builds a skip set. Empty substrings are ignored since they would match every directory.
func NewSkipSet(substrings, globs []string) (*SkipSet, error) {
	s := &SkipSet{}
	for _, sub := range substrings {
		if sub == "" {
			continue
		}
		s.substrings = append(s.substrings, sub)
	}
	for _, g := range globs {
		if !doublestar.ValidatePattern(g) {
			return nil, errors.Errorf("invalid skip glob %q", g)
		}
		s.globs = append(s.globs, g)
	}
	return s, nil
}

// Substrings returns the substring exclusions
func (s *SkipSet) Substrings() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.substrings...)
}

// Globs returns the glob exclusions
func (s *SkipSet) Globs() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.globs...)
}

// Empty reports whether nothing is excluded
func (s *SkipSet) Empty() bool {
	return s == nil || (len(s.substrings) == 0 && len(s.globs) == 0)
}

// 🔍 Match reports whether dir is excluded and by which rule
func (s *SkipSet) Match(dir string) (rule string, ok bool) {
	if s == nil {
		return "", false
	}
	for _, sub := range s.substrings {
		if strings.Contains(dir, sub) {
			return sub, true
		}
	}
	if len(s.globs) == 0 {
		return "", false
	}
	slashed := strings.TrimSuffix(strings.ReplaceAll(dir, `\`, "/"), "/")
	relative := strings.TrimLeft(slashed, "/")
	for _, g := range s.globs {
		if matched, _ := doublestar.Match(g, slashed); matched {
			return g, true
		}
		if matched, _ := doublestar.Match(g, relative); matched {
			return g, true
		}
	}
	return "", false
}
