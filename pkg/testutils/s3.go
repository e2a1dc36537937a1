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

// Package testutils runs an in-memory S3 server for end to end tests.
package testutils

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/yashikota/minis3"
)

// Credentials are accepted by the in-memory server
var Credentials = aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
	return aws.Credentials{AccessKeyID: "test", SecretAccessKey: "test"}, nil
})

// 🧪 S3Server is a running minis3 instance plus a raw SDK client to seed
// and inspect it
type S3Server struct {
	Endpoint string
	Config   aws.Config
	Client   *s3.Client
}

// Context returns a context carrying a zerolog logger that writes to t
func Context(t testing.TB) context.Context {
	return zerolog.New(zerolog.TestWriter{T: t}).WithContext(context.Background())
}

// StartS3 runs a server for the duration of the test
func StartS3(t testing.TB) *S3Server {
	t.Helper()

	server := minis3.New()
	require.NoError(t, server.Start(), "starting minis3")
	t.Cleanup(func() { _ = server.Close() })

	cfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion("us-east-1"),
		config.WithCredentialsProvider(Credentials),
	)
	require.NoError(t, err, "loading aws config")

	endpoint := "http://" + server.Addr()
	return &S3Server{
		Endpoint: endpoint,
		Config:   cfg,
		Client: s3.NewFromConfig(cfg, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}),
	}
}

// Seed creates bucket and puts objects into it
func (s *S3Server) Seed(t testing.TB, bucket string, objects map[string]string) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(bucket)})
	require.NoError(t, err, "creating bucket %s", bucket)

	for key, body := range objects {
		_, err := s.Client.PutObject(ctx, &s3.PutObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(key),
			Body:   strings.NewReader(body),
		})
		require.NoError(t, err, "putting %s", key)
	}
}

// Exists reports whether bucket/key can be read
func (s *S3Server) Exists(t testing.TB, bucket, key string) bool {
	t.Helper()
	_, err := s.Client.HeadObject(context.Background(), &s3.HeadObjectInput{Bucket: aws.String(bucket), Key: aws.String(key)})
	return err == nil
}

// Body returns the content of bucket/key, failing the test when it is missing
func (s *S3Server) Body(t testing.TB, bucket, key string) string {
	t.Helper()

	out, err := s.Client.GetObject(context.Background(), &s3.GetObjectInput{Bucket: aws.String(bucket), Key: aws.String(key)})
	require.NoError(t, err, "getting %s/%s", bucket, key)
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	require.NoError(t, err, "reading %s/%s", bucket, key)
	return string(data)
}
