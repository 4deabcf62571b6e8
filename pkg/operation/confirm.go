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

package operation

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
)

// ✋ LineConfirmer asks on Out and reads a single line from In.
// Anything starting with "y" in any case is a yes. Everything else is a no,
// including a read failure or a context cancelled while waiting.
type LineConfirmer struct {
	In  io.Reader
	Out io.Writer
}

// Confirm implements Confirmer
func (c *LineConfirmer) Confirm(ctx context.Context, found, directories int) bool {
	fmt.Fprintf(c.Out, "Found %d symlinks in %d directories. Flatten them into real files? (y/n) ", found, directories)

	// a read abandoned on cancellation stays blocked until In yields a line
	// or the process exits; stdin cannot be unblocked portably
	answer := make(chan string, 1)
	go func() {
		line, err := bufio.NewReader(c.In).ReadString('\n')
		if err != nil && line == "" {
			zerolog.Ctx(ctx).Debug().Err(err).Msg("reading confirmation")
		}
		answer <- line
	}()

	select {
	case line := <-answer:
		return IsAffirmative(line)
	case <-ctx.Done():
		fmt.Fprintln(c.Out)
		return false
	}
}

// IsAffirmative reports whether answer reads as a yes
func IsAffirmative(answer string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(answer)), "y")
}
