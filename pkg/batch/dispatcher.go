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
	"iter"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"github.com/walteh/yawns/pkg/storage"
)

// 🏃 Dispatcher runs the copy primitive for a sequence of requests with at
// most Concurrency calls outstanding at any time.
type Dispatcher struct {
	Copier            storage.Copier
	SourceBucket      string
	DestinationBucket string
	// Concurrency is the number of slots. Values below 1 run sequentially.
	Concurrency int
}

func (d *Dispatcher) limit() int {
	return max(d.Concurrency, 1)
}

// Dispatch admits requests in input order, one per free slot, and sends
// exactly one Outcome per request to outcomes as soon as it is terminal.
//
// Once ctx is done no further request is admitted; the remaining requests
// are reported as StatusNotAttempted. Requests already running keep ctx and
// the primitive decides whether to abort them. Dispatch returns after every
// slot has drained. It does not close outcomes.
func (d *Dispatcher) Dispatch(ctx context.Context, requests iter.Seq[CopyRequest], outcomes chan<- Outcome) {
	logger := zerolog.Ctx(ctx)
	slots := semaphore.NewWeighted(int64(d.limit()))

	var wg sync.WaitGroup
	stopped := false

	for req := range requests {
		if !stopped {
			stopped = !d.admit(ctx, slots)
			if stopped {
				logger.Warn().Int("line", req.Line).Msg("batch cancelled, no further copies will be started")
			}
		}

		if stopped {
			outcomes <- Outcome{Request: req, Status: StatusNotAttempted, Message: cancelMessage(ctx)}
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer slots.Release(1)
			outcomes <- d.execute(ctx, req)
		}()
	}

	wg.Wait()
}

// admit blocks until a slot is free. It reports false, holding no slot, once
// cancellation has been observed.
func (d *Dispatcher) admit(ctx context.Context, slots *semaphore.Weighted) bool {
	if err := slots.Acquire(ctx, 1); err != nil {
		return false
	}
	// Acquire may succeed on a done context when a slot is free
	if ctx.Err() != nil {
		slots.Release(1)
		return false
	}
	return true
}

func (d *Dispatcher) execute(ctx context.Context, req CopyRequest) (outcome Outcome) {
	logger := zerolog.Ctx(ctx).With().
		Int("line", req.Line).
		Str("source_key", req.SourceKey).
		Str("destination_key", req.DestinationKey).
		Logger()

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("copy primitive panicked")
			outcome = Outcome{
				Request:  req,
				Status:   StatusFailed,
				Kind:     storage.KindUnknown,
				Message:  fmt.Sprintf("panic: %v", r),
				Duration: time.Since(start),
			}
		}
	}()

	result, err := d.Copier.Copy(ctx, storage.CopyInput{
		SourceBucket:      d.SourceBucket,
		SourceKey:         req.SourceKey,
		DestinationBucket: d.DestinationBucket,
		DestinationKey:    req.DestinationKey,
		Metadata:          req.Metadata,
	})
	elapsed := time.Since(start)

	if err != nil {
		kind := storage.Classify(err)
		logger.Debug().Err(err).Str("kind", kind.String()).Dur("duration", elapsed).Msg("copy failed")
		return Outcome{
			Request:  req,
			Status:   StatusFailed,
			Kind:     kind,
			Message:  err.Error(),
			Duration: elapsed,
		}
	}

	logger.Trace().Str("etag", result.ETag).Dur("duration", elapsed).Msg("copy succeeded")
	return Outcome{
		Request:  req,
		Status:   StatusSucceeded,
		Result:   result,
		Duration: elapsed,
	}
}

func cancelMessage(ctx context.Context) string {
	if cause := context.Cause(ctx); cause != nil {
		return cause.Error()
	}
	return "batch cancelled"
}
