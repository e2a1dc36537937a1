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

package opts

import (
	"context"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/walteh/yawns/pkg/config"
	"github.com/walteh/yawns/pkg/kms"
	"github.com/walteh/yawns/pkg/storage/s3"
)

// RootOpts contains shared options used by all commands
type RootOpts struct {
	Viper *viper.Viper

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// NewS3 and NewKMS build service clients; tests replace them to point
	// commands at an in-memory server or a mock
	NewS3  func(ctx context.Context, o s3.Options) (*s3.Client, error)
	NewKMS func(ctx context.Context, o s3.Options) (*kms.Client, error)
}

// New creates RootOpts wired to the real AWS clients
func New(stdin io.Reader, stdout, stderr io.Writer) *RootOpts {
	return &RootOpts{
		Viper:  viper.New(),
		Stdin:  stdin,
		Stdout: stdout,
		Stderr: stderr,
		NewS3:  s3.New,
		NewKMS: func(ctx context.Context, o s3.Options) (*kms.Client, error) {
			cfg, err := s3.LoadAWSConfig(ctx, o)
			if err != nil {
				return nil, err
			}
			return kms.NewFromConfig(cfg, o.EndpointURL), nil
		},
	}
}

// AWSOptions returns the resolved global AWS settings
func (o *RootOpts) AWSOptions() s3.Options {
	return s3.Options{
		Region:      o.Viper.GetString(config.KeyRegion),
		Profile:     o.Viper.GetString(config.KeyProfile),
		EndpointURL: o.Viper.GetString(config.KeyEndpointURL),
	}
}

// S3 builds an S3 client from the resolved settings
func (o *RootOpts) S3(ctx context.Context) (*s3.Client, error) {
	return o.NewS3(ctx, o.AWSOptions())
}

// KMS builds a KMS client from the resolved settings
func (o *RootOpts) KMS(ctx context.Context) (*kms.Client, error) {
	return o.NewKMS(ctx, o.AWSOptions())
}

// Verbose reports whether per-object output was requested
func (o *RootOpts) Verbose() bool {
	return o.Viper.GetBool(config.KeyVerbose)
}

// Bind ties cmd's flags and their environment variables to the shared viper
func (o *RootOpts) Bind(cmd *cobra.Command, bindings ...config.Binding) error {
	return config.Bind(o.Viper, cmd.Flags(), bindings...)
}
