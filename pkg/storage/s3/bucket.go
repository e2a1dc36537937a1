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
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/yawns/pkg/storage"
)

// HeadBucket checks that the bucket exists and the caller may access it
func (c *Client) HeadBucket(ctx context.Context, bucket string) error {
	if _, err := c.api.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(bucket)}); err != nil {
		return errors.Errorf("checking bucket %s: %w", bucket, err)
	}
	return nil
}

// 🪣 ListBuckets returns every bucket owned by the caller
func (c *Client) ListBuckets(ctx context.Context) ([]storage.Bucket, error) {
	var buckets []storage.Bucket
	var token *string
	for {
		out, err := c.api.ListBuckets(ctx, &s3.ListBucketsInput{ContinuationToken: token})
		if err != nil {
			return nil, errors.Errorf("listing buckets: %w", err)
		}
		for _, b := range out.Buckets {
			created := ""
			if b.CreationDate != nil {
				created = b.CreationDate.UTC().Format(time.RFC3339)
			}
			buckets = append(buckets, storage.Bucket{Name: aws.ToString(b.Name), CreatedAt: created})
		}
		if aws.ToString(out.ContinuationToken) == "" {
			return buckets, nil
		}
		token = out.ContinuationToken
	}
}

// 🔢 CountObjects pages through a bucket listing and counts the keys under
// prefix that match. A nil match counts every key.
func (c *Client) CountObjects(ctx context.Context, bucket, prefix string, match func(key string) bool) (int64, error) {
	input := &s3.ListObjectsV2Input{Bucket: aws.String(bucket)}
	if prefix != "" {
		input.Prefix = aws.String(prefix)
	}

	var count int64
	paginator := s3.NewListObjectsV2Paginator(c.api, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return count, errors.Errorf("listing objects in %s: %w", bucket, err)
		}
		for _, obj := range page.Contents {
			if match == nil || match(aws.ToString(obj.Key)) {
				count++
			}
		}
	}
	return count, nil
}
