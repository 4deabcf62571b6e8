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

// Package partition hands out unique indices of the discovered link set to
// concurrent workers.
package partition

import "sync/atomic"

// 🎯 Cursor is a claim counter over [0, size). Claims never block and no two
// claims return the same index.
type Cursor struct {
	next atomic.Int64
	size int64
}

// 🏭 NewCursor creates a cursor over size items
func NewCursor(size int) *Cursor {
	return &Cursor{size: int64(size)}
}

// 🎟️ Claim reserves the next index. ok is false once the set is exhausted.
func (c *Cursor) Claim() (index int, ok bool) {
	n := c.next.Add(1) - 1
	if n >= c.size {
		return 0, false
	}
	return int(n), true
}

// Size returns the number of claimable indices
func (c *Cursor) Size() int {
	return int(c.size)
}
