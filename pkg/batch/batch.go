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
	"io"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"

	"github.com/walteh/yawns/pkg/storage"
)

// DefaultConcurrency is the slot count used when none is configured
const DefaultConcurrency = 10

// 🔧 Options describes one batch invocation
type Options struct {
	// Input is the newline delimited object list
	Input io.Reader

	SourceBucket      string
	DestinationBucket string
	SourcePrefix      string
	DestinationPrefix string

	// Metadata holds raw key=value pairs applied to every object
	Metadata []string

	Concurrency int
	Copier      storage.Copier

	// Preflight runs after the input is parsed and before any copy starts.
	// A non-nil error aborts the batch as a batch fault.
	Preflight func(ctx context.Context) error

	// OnOutcome sees every outcome in completion order
	OnOutcome func(Outcome)

	// MirrorKey derives the destination key for lines without one
	MirrorKey func(source string) string

	// AllowEmptySource skips the source bucket check for primitives that
	// do not read from a bucket, such as local uploads.
	AllowEmptySource bool
}

// 🎯 Batch is a parsed, validated set of requests ready to run
type Batch struct {
	id         string
	requests   []CopyRequest
	dispatcher *Dispatcher
	aggregator *Aggregator
}

// Prepare validates the options, parses the whole input and runs the
// preflight check. Every error it returns wraps ErrInvalidInput or
// ErrBatchFault, and no copy has been attempted when it fails.
func Prepare(ctx context.Context, opts Options) (*Batch, error) {
	if opts.Copier == nil {
		return nil, invalidInput(errors.New("copier is required"))
	}
	if opts.SourceBucket == "" && !opts.AllowEmptySource {
		return nil, invalidInput(errors.New("source bucket is required"))
	}
	if opts.DestinationBucket == "" {
		return nil, invalidInput(errors.New("destination bucket is required"))
	}
	if opts.Input == nil {
		return nil, invalidInput(errors.New("input is required"))
	}

	metadata, err := ParseMetadata(opts.Metadata)
	if err != nil {
		return nil, err
	}

	requests, err := ParseAll(opts.Input, ParseOptions{
		SourcePrefix:      opts.SourcePrefix,
		DestinationPrefix: opts.DestinationPrefix,
		Metadata:          metadata,
		MirrorKey:         opts.MirrorKey,
	})
	if err != nil {
		return nil, errors.Errorf("parsing object list: %w", err)
	}

	b := &Batch{
		id:       uuid.NewString(),
		requests: requests,
		dispatcher: &Dispatcher{
			Copier:            opts.Copier,
			SourceBucket:      opts.SourceBucket,
			DestinationBucket: opts.DestinationBucket,
			Concurrency:       opts.Concurrency,
		},
		aggregator: NewAggregator(len(requests)),
	}
	b.aggregator.OnOutcome = opts.OnOutcome

	zerolog.Ctx(ctx).Debug().
		Str("batch_id", b.id).
		Int("requests", len(requests)).
		Int("concurrency", b.dispatcher.limit()).
		Msg("object list parsed")

	if opts.Preflight != nil {
		if err := opts.Preflight(ctx); err != nil {
			return nil, batchFault(errors.Errorf("preflight: %w", err))
		}
	}

	return b, nil
}

// ID is the unique identifier of this batch
func (b *Batch) ID() string {
	return b.id
}

// Requests returns the parsed requests in input order
func (b *Batch) Requests() []CopyRequest {
	return slices.Clone(b.requests)
}

// Progress reports the running counters; safe to call while Execute runs
func (b *Batch) Progress() Progress {
	return b.aggregator.Snapshot()
}

// Execute dispatches every request and returns the folded report. It never
// fails: per-object errors are part of the report, and cancellation shows up
// as NotAttempted requests.
func (b *Batch) Execute(ctx context.Context) *Report {
	ctx = zerolog.Ctx(ctx).With().Str("batch_id", b.id).Logger().WithContext(ctx)

	outcomes := make(chan Outcome, b.dispatcher.limit())
	started := time.Now()

	var report *Report
	var g errgroup.Group
	g.Go(func() error {
		defer close(outcomes)
		b.dispatcher.Dispatch(ctx, slices.Values(b.requests), outcomes)
		return nil
	})
	g.Go(func() error {
		report = b.aggregator.Consume(outcomes)
		return nil
	})
	_ = g.Wait()

	report.ID = b.id
	report.SourceBucket = b.dispatcher.SourceBucket
	report.DestinationBucket = b.dispatcher.DestinationBucket
	report.Started = started
	report.Finished = time.Now()
	report.Cancelled = report.Cancelled || ctx.Err() != nil

	zerolog.Ctx(ctx).Debug().
		Int("total", report.Total).
		Int("succeeded", report.Succeeded).
		Int("failed", report.Failed).
		Int("not_attempted", report.NotAttempted).
		Dur("duration", report.Duration()).
		Msg("batch finished")

	return report
}

// Run prepares and executes a batch in one call
func Run(ctx context.Context, opts Options) (*Report, error) {
	b, err := Prepare(ctx, opts)
	if err != nil {
		return nil, err
	}
	return b.Execute(ctx), nil
}
