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
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/yawns/pkg/storage"
)

// ErrMissingCopyResult is returned when CopyObject succeeds without reporting an ETag
var ErrMissingCopyResult = errors.Base("copy object result has no etag")

// 📦 ObjectCopier performs server side copies between buckets
type ObjectCopier struct {
	api API
}

var _ storage.Copier = (*ObjectCopier)(nil)

// Copier returns the server side copy primitive for this client
func (c *Client) Copier() *ObjectCopier {
	return &ObjectCopier{api: c.api}
}

// Copy issues a single CopyObject call. When metadata is supplied the
// destination metadata is replaced with it, otherwise it is copied from the source.
func (o *ObjectCopier) Copy(ctx context.Context, in storage.CopyInput) (storage.CopyResult, error) {
	if in.SourceBucket == "" || in.SourceKey == "" || in.DestinationBucket == "" || in.DestinationKey == "" {
		return storage.CopyResult{}, errors.Errorf("copy input is incomplete: %+v", in)
	}

	input := &s3.CopyObjectInput{
		Bucket:            aws.String(in.DestinationBucket),
		Key:               aws.String(in.DestinationKey),
		CopySource:        aws.String(CopySource(in.SourceBucket, in.SourceKey)),
		MetadataDirective: types.MetadataDirectiveCopy,
	}
	if len(in.Metadata) > 0 {
		input.Metadata = in.Metadata
		input.MetadataDirective = types.MetadataDirectiveReplace
	}

	out, err := o.api.CopyObject(ctx, input)
	if err != nil {
		return storage.CopyResult{}, errors.Errorf("copying s3://%s/%s to s3://%s/%s: %w",
			in.SourceBucket, in.SourceKey, in.DestinationBucket, in.DestinationKey, err)
	}

	result := storage.CopyResult{VersionID: aws.ToString(out.VersionId)}
	if out.CopyObjectResult != nil {
		result.ETag = trimETag(aws.ToString(out.CopyObjectResult.ETag))
	}
	if result.ETag == "" {
		return result, errors.Errorf("copying s3://%s/%s: %w", in.SourceBucket, in.SourceKey, ErrMissingCopyResult)
	}

	return result, nil
}

// CopySource builds the url encoded "bucket/key" value CopyObject expects.
// A literal plus is escaped as well since S3 decodes it as a space.
func CopySource(bucket, key string) string {
	escaped := (&url.URL{Path: bucket + "/" + key}).EscapedPath()
	return strings.ReplaceAll(escaped, "+", "%2B")
}

func trimETag(etag string) string {
	return strings.Trim(etag, `"`)
}
