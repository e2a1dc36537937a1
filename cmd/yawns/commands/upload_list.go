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
	"path/filepath"

	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/yawns/cmd/yawns/opts"
)

// ErrUploadsFailed is returned by upload-list when at least one file could
// not be uploaded
var ErrUploadsFailed = errors.Base("uploads failed")

// NewUploadListCmd creates the upload-list command
func NewUploadListCmd(ro *opts.RootOpts) *cobra.Command {
	var flags batchFlags

	cmd := &cobra.Command{
		Use:   "upload-list [LIST]",
		Short: "Upload every local file named in a list to a bucket",
		Long: `Upload-list reads a list of local file paths in the same format as
copy-list. A file without an explicit destination key is stored under its
base name below --destination-prefix.

Unlike copy-list, the command fails when any upload failed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ro.Bind(cmd, batchBindings...); err != nil {
				return err
			}
			return runUploadList(cmd.Context(), ro, &flags, args)
		},
	}

	addBatchFlags(cmd, &flags)

	return cmd
}

func runUploadList(ctx context.Context, ro *opts.RootOpts, flags *batchFlags, args []string) error {
	run, err := newBatchRun(ro, flags, "uploading", "uploaded")
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
	run.options.AllowEmptySource = true
	run.options.MirrorKey = filepath.Base
	run.options.Copier = client.Uploader()
	run.options.Preflight = func(ctx context.Context) error {
		return client.HeadBucket(ctx, run.options.DestinationBucket)
	}

	report, err := run.execute(ctx, ro)
	if err != nil {
		return err
	}
	if report.Failed > 0 {
		return errors.Errorf("%d of %d files: %w", report.Failed, report.Total, ErrUploadsFailed)
	}
	return nil
}
