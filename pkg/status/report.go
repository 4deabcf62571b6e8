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

package status

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/walteh/flatten/pkg/operation"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

// 📄 Report is the persisted record of one run
type Report struct {
	GeneratedAt       time.Time          `json:"generated_at" yaml:"generated_at"`
	Summary           *operation.Summary `json:"summary" yaml:"summary"`
	OrphanedTempFiles []string           `json:"orphaned_temp_files,omitempty" yaml:"orphaned_temp_files,omitempty"`
}

// 🏭 NewReport captures sum
func NewReport(sum *operation.Summary, now time.Time) *Report {
	return &Report{
		GeneratedAt:       now.UTC(),
		Summary:           sum,
		OrphanedTempFiles: sum.Orphans(),
	}
}

// 📝 Marshal encodes the report as json for a .json path and yaml otherwise
func (r *Report) Marshal(path string) ([]byte, error) {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		data, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return nil, errors.Errorf("encoding json report: %w", err)
		}
		return append(data, '\n'), nil
	}

	data, err := yaml.Marshal(r)
	if err != nil {
		return nil, errors.Errorf("encoding yaml report: %w", err)
	}
	return data, nil
}

// 💾 WriteReport writes the run report for sum to path
func WriteReport(ctx context.Context, path string, sum *operation.Summary) error {
	data, err := NewReport(sum, time.Now()).Marshal(path)
	if err != nil {
		return err
	}

	if err := WriteFileAtomic(path, data); err != nil {
		return errors.Errorf("writing report: %w", err)
	}

	zerolog.Ctx(ctx).Debug().Str("path", path).Int("bytes", len(data)).Msg("wrote run report")
	return nil
}

// 💾 WriteFileAtomic writes content next to path and renames it into place
func WriteFileAtomic(path string, content []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Errorf("creating parent directories: %w", err)
	}

	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, content, 0644); err != nil {
		return errors.Errorf("writing temp file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return errors.Errorf("renaming temp file: %w", err)
	}
	return nil
}
