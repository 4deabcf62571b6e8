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

// Package progress aggregates per-item outcomes across flatten workers.
//
// All counters are independent atomics. A Snapshot is consistent per field
// but not across fields; it is meant for reporting only.
package progress

import "sync/atomic"

// 📊 Tracker holds the run counters
type Tracker struct {
	attempted atomic.Int64
	succeeded atomic.Int64
	failed    atomic.Int64
	orphaned  atomic.Int64
	bytes     atomic.Int64
}

// 📸 Snapshot is a point-in-time copy of the counters
type Snapshot struct {
	Attempted int64 `json:"attempted" yaml:"attempted"`
	Succeeded int64 `json:"succeeded" yaml:"succeeded"`
	Failed    int64 `json:"failed" yaml:"failed"`
	Orphaned  int64 `json:"orphaned" yaml:"orphaned"`
	Bytes     int64 `json:"bytes" yaml:"bytes"`
}

// 🏭 New creates a zeroed tracker
func New() *Tracker {
	return &Tracker{}
}

// RecordAttempt counts one item taken off the work set
func (t *Tracker) RecordAttempt() {
	t.attempted.Add(1)
}

// RecordBytes adds n bytes copied by a successful flatten and returns the new total
func (t *Tracker) RecordBytes(n int64) int64 {
	return t.bytes.Add(n)
}

// RecordSuccess counts a flattened link
func (t *Tracker) RecordSuccess() {
	t.succeeded.Add(1)
}

// RecordFailure counts a link that could not be flattened
func (t *Tracker) RecordFailure() {
	t.failed.Add(1)
}

// RecordOrphan counts a failure that left copied data behind in a temp file
func (t *Tracker) RecordOrphan() {
	t.orphaned.Add(1)
}

// 📸 Snapshot reads every counter once
func (t *Tracker) Snapshot() Snapshot {
	return Snapshot{
		Attempted: t.attempted.Load(),
		Succeeded: t.succeeded.Load(),
		Failed:    t.failed.Load(),
		Orphaned:  t.orphaned.Load(),
		Bytes:     t.bytes.Load(),
	}
}
