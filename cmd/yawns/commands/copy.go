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
	"fmt"

	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/yawns/cmd/yawns/opts"
	"github.com/walteh/yawns/pkg/batch"
	"github.com/walteh/yawns/pkg/config"
	"github.com/walteh/yawns/pkg/storage"
)

// NewCopyCmd creates the copy command
func NewCopyCmd(ro *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "copy SOURCE-KEY DESTINATION-KEY",
		Short: "Copy a single object between buckets",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ro.Bind(cmd,
				config.Binding{Key: config.KeySourceBucket, Flag: "source-bucket", Env: "AWS_S3_SRC_BUCKET"},
				config.Binding{Key: config.KeyDestinationBucket, Flag: "destination-bucket", Env: "AWS_S3_DST_BUCKET"},
				config.Binding{Key: config.KeyMetadata, Flag: "metadata"},
			); err != nil {
				return err
			}

			ctx := cmd.Context()

			in := storage.CopyInput{
				SourceBucket:      ro.Viper.GetString(config.KeySourceBucket),
				SourceKey:         args[0],
				DestinationBucket: ro.Viper.GetString(config.KeyDestinationBucket),
				DestinationKey:    args[1],
			}
			if in.SourceBucket == "" || in.DestinationBucket == "" {
				return batch.MarkInvalidInput(errors.New("--source-bucket and --destination-bucket are required"))
			}

			metadata, err := batch.ParseMetadata(ro.Viper.GetStringSlice(config.KeyMetadata))
			if err != nil {
				return batch.MarkInvalidInput(err)
			}
			in.Metadata = metadata

			client, err := ro.S3(ctx)
			if err != nil {
				return errors.Errorf("creating s3 client: %w", err)
			}

			result, err := client.Copier().Copy(ctx, in)
			if err != nil {
				return errors.Errorf("copying s3://%s/%s: %w", in.SourceBucket, in.SourceKey, err)
			}

			fmt.Fprintln(ro.Stdout, result.ETag)
			return nil
		},
	}

	cmd.Flags().String("source-bucket", "", "bucket the object is copied from")
	cmd.Flags().String("destination-bucket", "", "bucket the object is written to")
	cmd.Flags().StringArrayP("metadata", "m", nil, "metadata key=value replacing the object's metadata (repeatable)")

	return cmd
}
