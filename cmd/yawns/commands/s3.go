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

	"github.com/walteh/yawns/cmd/yawns/opts"
)

// NewS3Cmd groups the S3 commands
func NewS3Cmd(ro *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "s3",
		Short: "Batch operations on S3 buckets",
	}

	cmd.AddCommand(
		NewCopyListCmd(ro),
		NewCopyCmd(ro),
		NewUploadListCmd(ro),
		NewListBucketsCmd(ro),
		NewCountFilesCmd(ro),
	)

	return cmd
}
