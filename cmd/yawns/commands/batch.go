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

package commands

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/yawns/cmd/yawns/opts"
	"github.com/walteh/yawns/pkg/batch"
	"github.com/walteh/yawns/pkg/config"
	"github.com/walteh/yawns/pkg/log"
	"github.com/walteh/yawns/pkg/status"
)

const stdinList = "-"

// batchFlags are the settings shared by copy-list and upload-list
type batchFlags struct {
	output  string
	timeout time.Duration
}

func addBatchFlags(cmd *cobra.Command, f *batchFlags) {
	cmd.Flags().String("destination-bucket", "", "bucket objects are written to")
	cmd.Flags().String("destination-prefix", "", "prefix prepended to every destination key")
	cmd.Flags().Int("max-concurrent", batch.DefaultConcurrency, "maximum number of requests in flight")
	cmd.Flags().StringArrayP("metadata", "m", nil, "metadata key=value applied to every object (repeatable)")
	cmd.Flags().Duration("progress-interval", 5*time.Second, "how often to print progress, 0 disables")
	cmd.Flags().StringVar(&f.output, "output", string(status.FormatText), "report format: text, json or yaml")
	cmd.Flags().DurationVar(&f.timeout, "timeout", 0, "stop dispatching after this long, 0 means no limit")
}

var batchBindings = []config.Binding{
	{Key: config.KeyDestinationBucket, Flag: "destination-bucket", Env: "AWS_S3_DST_BUCKET"},
	{Key: config.KeyDestinationPrefix, Flag: "destination-prefix", Env: "AWS_S3_DST_OBJECT_PREFIX"},
	{Key: config.KeyMaxConcurrent, Flag: "max-concurrent", Env: "AWS_S3_MAX_CONCURRENT"},
	{Key: config.KeyMetadata, Flag: "metadata"},
	{Key: config.KeyProgressInterval, Flag: "progress-interval"},
	{Key: config.KeyObjectList, Env: "AWS_S3_SRC_OBJECT_LIST"},
}

// batchRun is one execution of a list driven batch
type batchRun struct {
	verb      string // present tense for the header, e.g. "copying"
	pastVerb  string // for progress and summary, e.g. "copied"
	options   batch.Options
	format    status.Format
	interval  time.Duration
	timeout   time.Duration
	formatter *status.DefaultFormatter
}

// newBatchRun resolves the shared settings into a batchRun. The caller
// fills in the copier, source bucket and any hooks afterwards.
func newBatchRun(ro *opts.RootOpts, f *batchFlags, verb, pastVerb string) (*batchRun, error) {
	format, err := status.ParseFormat(f.output)
	if err != nil {
		return nil, batch.MarkInvalidInput(err)
	}

	concurrency := ro.Viper.GetInt(config.KeyMaxConcurrent)
	if concurrency < 1 {
		return nil, batch.MarkInvalidInput(errors.Errorf("--max-concurrent must be at least 1, got %d", concurrency))
	}

	interval := ro.Viper.GetDuration(config.KeyProgressInterval)
	if interval < 0 {
		return nil, batch.MarkInvalidInput(errors.Errorf("--progress-interval must not be negative, got %s", interval))
	}
	if f.timeout < 0 {
		return nil, batch.MarkInvalidInput(errors.Errorf("--timeout must not be negative, got %s", f.timeout))
	}

	destination := ro.Viper.GetString(config.KeyDestinationBucket)
	if destination == "" {
		return nil, batch.MarkInvalidInput(errors.New("--destination-bucket is required"))
	}

	return &batchRun{
		verb:     verb,
		pastVerb: pastVerb,
		options: batch.Options{
			DestinationBucket: destination,
			DestinationPrefix: ro.Viper.GetString(config.KeyDestinationPrefix),
			Metadata:          ro.Viper.GetStringSlice(config.KeyMetadata),
			Concurrency:       concurrency,
		},
		format:    format,
		interval:  interval,
		timeout:   f.timeout,
		formatter: &status.DefaultFormatter{Verb: pastVerb},
	}, nil
}

// openList opens the object list named by the argument, the environment or
// the config, falling back to stdin
func openList(ro *opts.RootOpts, args []string) (io.Reader, func() error, error) {
	name := ro.Viper.GetString(config.KeyObjectList)
	if len(args) > 0 {
		name = args[0]
	}
	if name == "" || name == stdinList {
		if ro.Stdin == nil {
			return nil, nil, batch.MarkInvalidInput(errors.New("no object list given and stdin is unavailable"))
		}
		return ro.Stdin, func() error { return nil }, nil
	}

	f, err := os.Open(name)
	if err != nil {
		return nil, nil, batch.MarkInvalidInput(errors.Errorf("opening object list: %w", err))
	}
	return f, f.Close, nil
}

// execute prepares the batch, runs it with progress output and renders the
// report to stdout
func (r *batchRun) execute(ctx context.Context, ro *opts.RootOpts) (*batch.Report, error) {
	logger := log.FromContext(ctx)

	if ro.Verbose() {
		r.options.OnOutcome = func(o batch.Outcome) {
			logger.LogObject(ctx, log.ObjectOperation{
				Line:        o.Request.Line,
				Source:      o.Request.SourceKey,
				Destination: o.Request.DestinationKey,
				Status:      o.Status.String(),
				Kind:        kindOf(o),
				Message:     o.Message,
			})
		}
	}

	b, err := batch.Prepare(ctx, r.options)
	if err != nil {
		return nil, err
	}

	logger.StartBatch(ctx, log.BatchOperation{
		ID:                b.ID(),
		Verb:              r.verb,
		SourceBucket:      r.options.SourceBucket,
		DestinationBucket: r.options.DestinationBucket,
		Total:             len(b.Requests()),
		Concurrency:       r.options.Concurrency,
	})
	defer logger.EndBatch(ctx)

	runCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	ticker := status.StartProgress(runCtx, logger.Console(), r.interval, r.formatter, b.Progress)
	report := b.Execute(runCtx)
	ticker.Stop()

	if err := status.NewReporter(ro.Stdout, r.format, r.formatter).Render(report); err != nil {
		return report, errors.Errorf("rendering report: %w", err)
	}
	return report, nil
}

func kindOf(o batch.Outcome) string {
	if o.Status != batch.StatusFailed {
		return ""
	}
	return o.Kind.String()
}
