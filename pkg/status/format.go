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
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/walteh/flatten/pkg/flatten"
	"github.com/walteh/flatten/pkg/retry"
)

// 🎨 Display configuration
const (
	itemIndent   = 4  // spaces to indent item entries
	statusWidth  = 10 // Width for status text
	counterWidth = 12 // Width for the (i/N) counter
)

const oneMB = 1024 * 1024

// 🎯 FormatItem formats one finished item for display
func FormatItem(index, total int, rep retry.Report) string {
	var prefix, status string
	switch {
	case rep.Outcome == flatten.OutcomeSuccess:
		prefix = color.GreenString("✓")
		status = "flattened"
	case rep.Outcome == flatten.OutcomeCancelled:
		prefix = color.HiBlackString("-")
		status = "cancelled"
	case rep.Orphaned():
		prefix = color.RedString("✗")
		status = "orphaned"
	default:
		prefix = color.RedString("✗")
		status = "failed"
	}

	line := fmt.Sprintf("%s%s %-*s %-*s %s",
		strings.Repeat(" ", itemIndent),
		prefix,
		statusWidth, status,
		counterWidth, fmt.Sprintf("(%d/%d)", index+1, total),
		rep.Path,
	)

	switch {
	case rep.Outcome == flatten.OutcomeSuccess:
		line += color.HiBlackString(" %s", FormatBytes(rep.Bytes))
	case rep.Orphaned():
		line += color.RedString(" temp copy left at %s", rep.TempPath)
	case rep.Err != nil:
		line += color.RedString(" %v", rep.Err)
	}

	if rep.Attempts > 1 {
		line += color.YellowString(" after %d attempts", rep.Attempts)
	}
	return line
}

// FormatBytes renders a byte count in megabytes
func FormatBytes(n int64) string {
	return fmt.Sprintf("%.4f MB", float64(n)/oneMB)
}

// FormatProgress formats a progress message with percentage
func FormatProgress(current, total int) string {
	var percentage float64
	if total == 0 {
		if current > 0 {
			percentage = 100
		}
	} else {
		percentage = float64(current) / float64(total) * 100
	}

	if current >= total {
		return fmt.Sprintf("✅ Progress: %d/%d (%.0f%%)", current, total, percentage)
	}
	return fmt.Sprintf("⏳ Progress: %d/%d (%.0f%%)", current, total, percentage)
}
