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

	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/yawns/cmd/yawns/opts"
	"github.com/walteh/yawns/pkg/config"
)

var copyListBindings = []config.Binding{
	{Key: config.KeySourceBucket, Flag: "source-bucket", Env: "AWS_S3_SRC_BUCKET"},
	{Key: config.KeySourcePrefix, Flag: "source-prefix", Env: "AWS_S3_SRC_OBJECT_PREFIX"},
}

// NewCopyListCmd creates the copy-list command
func NewCopyListCmd(ro *opts.RootOpts) *cobra.Command {
	var flags batchFlags

	cmd := &cobra.Command{
		Use:   "copy-list [LIST]",
		Short: "Copy every object named in a list between two buckets",
		Long: `Copy-list reads an object list, one request per line:

    source-key[<TAB>destination-key[<TAB>key=value key=value]]

An empty destination mirrors the source key. Lines starting with # and blank
lines are ignored. LIST is a file path or - for stdin.

The whole list is validated before the first copy. Individual failures are
reported at the end and do not stop the batch.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ro.Bind(cmd, append(copyListBindings, batchBindings...)...); err != nil {
				return err
			}
			return runCopyList(cmd.Context(), ro, &flags, args)
		},
	}

	cmd.Flags().String("source-bucket", "", "bucket objects are copied from")
	cmd.Flags().String("source-prefix", "", "prefix prepended to every source key")
	addBatchFlags(cmd, &flags)

	return cmd
}

func runCopyList(ctx context.Context, ro *opts.RootOpts, flags *batchFlags, args []string) error {
	run, err := newBatchRun(ro, flags, "copying", "copied")
	if err != nil {
		return err
	}

	input, closeInput, err := openList(ro, args)
	if err != nil {
		return err
	}
	defer closeInput()

	client, err := ro.S3(ctx)
	if err != nil {
		return errors.Errorf("creating s3 client: %w", err)
	}

	run.options.Input = input
	run.options.SourceBucket = ro.Viper.GetString(config.KeySourceBucket)
	run.options.SourcePrefix = ro.Viper.GetString(config.KeySourcePrefix)
	run.options.Copier = client.Copier()
	run.options.Preflight = func(ctx context.Context) error {
		if err := client.HeadBucket(ctx, run.options.SourceBucket); err != nil {
			return err
		}
		return client.HeadBucket(ctx, run.options.DestinationBucket)
	}

	_, err = run.execute(ctx, ro)
	return err
}
