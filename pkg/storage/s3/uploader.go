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

package s3

import (
	"context"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/yawns/pkg/storage"
)

// 📤 FileUploader puts local files into a bucket. The SourceKey of each
// input is a local path; SourceBucket is ignored.
type FileUploader struct {
	api API
}

var _ storage.Copier = (*FileUploader)(nil)

// Uploader returns the local file upload primitive for this client
func (c *Client) Uploader() *FileUploader {
	return &FileUploader{api: c.api}
}

// Copy uploads the file at in.SourceKey to in.DestinationBucket/in.DestinationKey
func (u *FileUploader) Copy(ctx context.Context, in storage.CopyInput) (storage.CopyResult, error) {
	if in.SourceKey == "" || in.DestinationBucket == "" || in.DestinationKey == "" {
		return storage.CopyResult{}, errors.Errorf("upload input is incomplete: %+v", in)
	}

	file, err := os.Open(in.SourceKey)
	if err != nil {
		return storage.CopyResult{}, errors.Errorf("opening %s: %w", in.SourceKey, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return storage.CopyResult{}, errors.Errorf("stat %s: %w", in.SourceKey, err)
	}
	if info.IsDir() {
		return storage.CopyResult{}, errors.Errorf("%s is a directory", in.SourceKey)
	}

	contentType := "application/octet-stream"
	if mtype, err := mimetype.DetectFile(in.SourceKey); err == nil {
		contentType = mtype.String()
	} else {
		zerolog.Ctx(ctx).Debug().Err(err).Str("path", in.SourceKey).Msg("content type detection failed")
	}

	input := &s3.PutObjectInput{
		Bucket:        aws.String(in.DestinationBucket),
		Key:           aws.String(in.DestinationKey),
		Body:          file,
		ContentLength: aws.Int64(info.Size()),
		ContentType:   aws.String(contentType),
	}
	if len(in.Metadata) > 0 {
		input.Metadata = in.Metadata
	}

	out, err := u.api.PutObject(ctx, input)
	if err != nil {
		return storage.CopyResult{}, errors.Errorf("uploading %s to s3://%s/%s: %w",
			in.SourceKey, in.DestinationBucket, in.DestinationKey, err)
	}

	return storage.CopyResult{
		ETag:      trimETag(aws.ToString(out.ETag)),
		Size:      info.Size(),
		VersionID: aws.ToString(out.VersionId),
	}, nil
}
