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
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/yawns/cmd/yawns/opts"
	"github.com/walteh/yawns/pkg/batch"
	"github.com/walteh/yawns/pkg/status"
)

// NewListBucketsCmd creates the list-buckets command
func NewListBucketsCmd(ro *opts.RootOpts) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "list-buckets",
		Short: "List the buckets visible to the current credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := status.ParseFormat(output)
			if err != nil {
				return batch.MarkInvalidInput(err)
			}

			ctx := cmd.Context()
			client, err := ro.S3(ctx)
			if err != nil {
				return errors.Errorf("creating s3 client: %w", err)
			}

			buckets, err := client.ListBuckets(ctx)
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(buckets))
			for _, b := range buckets {
				rows = append(rows, []string{b.Name, b.CreatedAt})
			}
			return status.NewReporter(ro.Stdout, format, nil).Table([]string{"Name", "CreatedAt"}, rows)
		},
	}

	cmd.Flags().StringVar(&output, "output", string(status.FormatText), "output format: text, json or yaml")

	return cmd
}
