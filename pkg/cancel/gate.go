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

// Package cancel provides the process-wide cooperative stop flag consulted
// by flatten workers between items.
package cancel

import (
	"sync"
	"sync/atomic"
)

// 🛑 Gate is a write-once flag. Once cancelled it never reverts.
type Gate struct {
	flag atomic.Bool
	once sync.Once
	done chan struct{}
}

// 🏭 New creates an open gate
func New() *Gate {
	return &Gate{done: make(chan struct{})}
}

// 🛑 RequestCancel closes the gate. Safe to call any number of times from any goroutine.
func (g *Gate) RequestCancel() {
	g.once.Do(func() {
		g.flag.Store(true)
		close(g.done)
	})
}

// 🔍 IsCancelled reports whether RequestCancel has been called
func (g *Gate) IsCancelled() bool {
	return g.flag.Load()
}

// Done returns a channel closed on cancellation, for use in select with timers.
func (g *Gate) Done() <-chan struct{} {
	return g.done
}
