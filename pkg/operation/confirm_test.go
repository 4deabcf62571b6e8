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
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, assert.AnError }

func TestLineConfirmer(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{name: "y", input: "y\n", want: true},
		{name: "yes_mixed_case", input: "YeS\r\n", want: true},
		{name: "no_newline", input: "y", want: true},
		{name: "no", input: "n\n", want: false},
		{name: "empty_line", input: "\n", want: false},
		{name: "eof", input: "", want: false},
		{name: "other_word", input: "sure\n", want: false},
		{name: "only_first_line_counts", input: "n\ny\n", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			c := &LineConfirmer{In: strings.NewReader(tt.input), Out: &out}

			assert.Equal(t, tt.want, c.Confirm(context.Background(), 12, 3))
			assert.Contains(t, out.String(), "Found 12 symlinks in 3 directories")
		})
	}

	t.Run("cancelled_while_waiting", func(t *testing.T) {
		r, w := io.Pipe()
		t.Cleanup(func() { w.Close() })

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		c := &LineConfirmer{In: r, Out: &bytes.Buffer{}}
		assert.False(t, c.Confirm(ctx, 1, 1))
	})

	t.Run("read_error_declines", func(t *testing.T) {
		c := &LineConfirmer{In: failingReader{}, Out: &bytes.Buffer{}}
		assert.False(t, c.Confirm(context.Background(), 1, 1))
	})
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "awaiting-confirmation", StateAwaitingConfirmation.String())
	b, err := StateDraining.MarshalText()
	assert.NoError(t, err)
	assert.Equal(t, "draining", string(b))
	assert.Equal(t, "unknown", State(42).String())
}
