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

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

const defaultProfile = "default"

// 🔧 Options configures how the SDK client is built
type Options struct {
	Region  string
	Profile string
	// EndpointURL points the client at an S3 compatible service and
	// switches it to path style addressing.
	EndpointURL string
	// Credentials overrides the default credential chain when set
	Credentials aws.CredentialsProvider
}

// LoadAWSConfig resolves region, profile and credentials into an aws.Config
func LoadAWSConfig(ctx context.Context, opts Options) (aws.Config, error) {
	var loadOpts []func(*config.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(opts.Region))
	}
	// a named profile must exist in the shared files, "default" need not
	if opts.Profile != "" && opts.Profile != defaultProfile && opts.Credentials == nil {
		loadOpts = append(loadOpts, config.WithSharedConfigProfile(opts.Profile))
	}
	if opts.Credentials != nil {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(opts.Credentials))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return aws.Config{}, errors.Errorf("loading aws config: %w", err)
	}

	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}

	zerolog.Ctx(ctx).Debug().
		Str("region", cfg.Region).
		Str("profile", opts.Profile).
		Str("endpoint", opts.EndpointURL).
		Msg("aws config loaded")

	return cfg, nil
}

// 🏭 Client wraps an S3 API with the operations yawns needs
type Client struct {
	api API
}

// NewFromConfig creates a Client from an already resolved aws.Config
func NewFromConfig(cfg aws.Config, endpointURL string) *Client {
	raw := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpointURL != "" {
			o.BaseEndpoint = aws.String(endpointURL)
			o.UsePathStyle = true
		}
	})
	return &Client{api: raw}
}

// New loads the AWS configuration and creates a Client
func New(ctx context.Context, opts Options) (*Client, error) {
	cfg, err := LoadAWSConfig(ctx, opts)
	if err != nil {
		return nil, err
	}
	return NewFromConfig(cfg, opts.EndpointURL), nil
}

// NewWithAPI creates a Client around a custom API implementation
func NewWithAPI(api API) *Client {
	return &Client{api: api}
}

// API returns the underlying S3 API
func (c *Client) API() API {
	return c.api
}
