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

package batch

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/walteh/yawns/pkg/storage"
)

// 🔧 recordingCopier is an instrumented primitive that records every call
// and the highest number of calls outstanding at once
type recordingCopier struct {
	delay func(in storage.CopyInput) time.Duration
	fail  func(in storage.CopyInput) error

	mu        sync.Mutex
	calls     []storage.CopyInput
	inFlight  atomic.Int64
	highWater atomic.Int64
}

func (c *recordingCopier) Copy(ctx context.Context, in storage.CopyInput) (storage.CopyResult, error) {
	n := c.inFlight.Add(1)
	defer c.inFlight.Add(-1)
	for {
		hw := c.highWater.Load()
		if n <= hw || c.highWater.CompareAndSwap(hw, n) {
			break
		}
	}

	c.mu.Lock()
	c.calls = append(c.calls, in)
	c.mu.Unlock()

	if c.delay != nil {
		select {
		case <-time.After(c.delay(in)):
		case <-ctx.Done():
			return storage.CopyResult{}, ctx.Err()
		}
	}

	if c.fail != nil {
		if err := c.fail(in); err != nil {
			return storage.CopyResult{}, err
		}
	}

	return storage.CopyResult{ETag: "etag-" + in.DestinationKey, Size: 1}, nil
}

func (c *recordingCopier) Calls() []storage.CopyInput {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]storage.CopyInput, len(c.calls))
	copy(out, c.calls)
	return out
}

func fixedDelay(d time.Duration) func(storage.CopyInput) time.Duration {
	return func(storage.CopyInput) time.Duration { return d }
}

func requestsFor(keys ...string) []CopyRequest {
	reqs := make([]CopyRequest, 0, len(keys))
	for i, k := range keys {
		reqs = append(reqs, CopyRequest{Line: i + 1, SourceKey: k, DestinationKey: k})
	}
	return reqs
}

func numberedKeys(n int) []string {
	keys := make([]string, n)
	for i := range keys {
		keys[i] = fmt.Sprintf("obj-%03d.txt", i)
	}
	return keys
}
