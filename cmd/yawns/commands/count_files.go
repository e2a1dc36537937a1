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

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/yawns/cmd/yawns/opts"
	"github.com/walteh/yawns/pkg/batch"
	"github.com/walteh/yawns/pkg/config"
)

const (
	keyCountBucket = "s3.count.bucket"
	keyCountPrefix = "s3.count.prefix"
)

// NewCountFilesCmd creates the count-files command
func NewCountFilesCmd(ro *opts.RootOpts) *cobra.Command {
	var match string

	cmd := &cobra.Command{
		Use:   "count-files",
		Short: "Count the objects in a bucket, optionally under a prefix",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ro.Bind(cmd,
				config.Binding{Key: keyCountBucket, Flag: "bucket", Env: "AWS_S3_BUCKET"},
				config.Binding{Key: keyCountPrefix, Flag: "prefix", Env: "AWS_S3_OBJECT_PREFIX"},
			); err != nil {
				return err
			}

			bucket := ro.Viper.GetString(keyCountBucket)
			if bucket == "" {
				return batch.MarkInvalidInput(errors.New("--bucket is required"))
			}

			var filter func(string) bool
			if match != "" {
				if !doublestar.ValidatePattern(match) {
					return batch.MarkInvalidInput(errors.Errorf("invalid --match pattern %q", match))
				}
				filter = func(key string) bool {
					ok, _ := doublestar.Match(match, key)
					return ok
				}
			}

			ctx := cmd.Context()
			client, err := ro.S3(ctx)
			if err != nil {
				return errors.Errorf("creating s3 client: %w", err)
			}

			count, err := client.CountObjects(ctx, bucket, ro.Viper.GetString(keyCountPrefix), filter)
			if err != nil {
				return err
			}

			fmt.Fprintln(ro.Stdout, count)
			return nil
		},
	}

	cmd.Flags().String("bucket", "", "bucket to count")
	cmd.Flags().String("prefix", "", "only count keys under this prefix")
	cmd.Flags().StringVar(&match, "match", "", "only count keys matching this glob (** crosses /)")

	return cmd
}
