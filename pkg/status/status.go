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
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/walteh/yawns/pkg/batch"
)

// SnapshotFunc returns the current counters of a running batch
type SnapshotFunc func() batch.Progress

// 📈 ProgressTicker prints a progress line on every tick until stopped
type ProgressTicker struct {
	out       io.Writer
	formatter Formatter
	snapshot  SnapshotFunc
	started   time.Time

	mu      sync.Mutex
	stop    chan struct{}
	done    chan struct{}
	stopped bool
}

// StartProgress begins printing progress every interval. An interval of
// zero or less disables the ticker; Stop is still safe to call.
func StartProgress(ctx context.Context, out io.Writer, interval time.Duration, formatter Formatter, snapshot SnapshotFunc) *ProgressTicker {
	if formatter == nil {
		formatter = NewDefaultFormatter()
	}
	p := &ProgressTicker{
		out:       out,
		formatter: formatter,
		snapshot:  snapshot,
		started:   time.Now(),
	}
	if interval <= 0 || snapshot == nil {
		return p
	}

	p.stop = make(chan struct{})
	p.done = make(chan struct{})

	go p.run(ctx, interval)
	return p
}

func (p *ProgressTicker) run(ctx context.Context, interval time.Duration) {
	defer close(p.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger := zerolog.Ctx(ctx)
	for {
		select {
		case <-ticker.C:
			snap := p.snapshot()
			elapsed := time.Since(p.started)
			fmt.Fprintln(p.out, p.formatter.FormatProgress(snap, elapsed))
			logger.Debug().
				Int("succeeded", snap.Succeeded).
				Int("failed", snap.Failed).
				Int("total", snap.Total).
				Dur("elapsed", elapsed).
				Msg("progress")
		case <-p.stop:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Stop ends the ticker and waits for the last line to be written
func (p *ProgressTicker) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stop == nil || p.stopped {
		return
	}
	p.stopped = true
	close(p.stop)
	<-p.done
}
