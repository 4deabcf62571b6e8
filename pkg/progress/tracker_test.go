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

package progress

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrackerConcurrent(t *testing.T) {
	tr := New()

	const workers = 16
	const perWorker = 250

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				tr.RecordAttempt()
				tr.RecordBytes(3)
				tr.RecordSuccess()
			}
		}()
	}
	wg.Wait()

	snap := tr.Snapshot()
	assert.Equal(t, int64(workers*perWorker), snap.Attempted)
	assert.Equal(t, int64(workers*perWorker), snap.Succeeded)
	assert.Equal(t, int64(workers*perWorker*3), snap.Bytes)
	assert.Zero(t, snap.Failed)
	assert.Zero(t, snap.Orphaned)
}

func TestTrackerFailures(t *testing.T) {
	tr := New()
	tr.RecordAttempt()
	tr.RecordFailure()
	tr.RecordOrphan()

	assert.Equal(t, int64(10), tr.RecordBytes(10), "RecordBytes returns running total")
	assert.Equal(t, int64(15), tr.RecordBytes(5))

	snap := tr.Snapshot()
	assert.Equal(t, Snapshot{Attempted: 1, Failed: 1, Orphaned: 1, Bytes: 15}, snap)
}
