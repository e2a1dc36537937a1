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

package config

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gitlab.com/tozd/go/errors"
)

// 🔑 Setting keys shared by flags, environment variables and config files
const (
	KeyRegion            = "aws.region"
	KeyProfile           = "aws.profile"
	KeyEndpointURL       = "aws.endpoint_url"
	KeySourceBucket      = "s3.source_bucket"
	KeyDestinationBucket = "s3.destination_bucket"
	KeySourcePrefix      = "s3.source_prefix"
	KeyDestinationPrefix = "s3.destination_prefix"
	KeyMaxConcurrent     = "s3.max_concurrent"
	KeyProgressInterval  = "s3.progress_interval"
	KeyMetadata          = "s3.metadata"
	KeyObjectList        = "s3.object_list"
	KeyVerbose           = "verbose"
	KeyConfigFile        = "config"
)

// 🔗 Binding ties a setting key to the flag and environment variable that can set it
type Binding struct {
	Key  string
	Flag string
	Env  string
}

// Bind connects each binding's flag and environment variable to v. A
// binding may name a flag that is not registered on flags; it is then only
// settable from the environment or a file.
func Bind(v *viper.Viper, flags *pflag.FlagSet, bindings ...Binding) error {
	for _, b := range bindings {
		if b.Flag != "" && flags != nil {
			if f := flags.Lookup(b.Flag); f != nil {
				if err := v.BindPFlag(b.Key, f); err != nil {
					return errors.Errorf("binding flag --%s: %w", b.Flag, err)
				}
			}
		}
		if b.Env != "" {
			if err := v.BindEnv(b.Key, b.Env); err != nil {
				return errors.Errorf("binding env %s: %w", b.Env, err)
			}
		}
	}
	return nil
}

// 📥 Apply loads the file at path, or a discovered default file when path is
// empty, into v's config layer. A missing default file is not an error.
func Apply(ctx context.Context, v *viper.Viper, path, dir string) (string, error) {
	explicit := path != ""
	if !explicit {
		path = Discover(dir)
		if path == "" {
			return "", nil
		}
	}

	cfg, err := Load(ctx, path)
	if err != nil {
		return path, err
	}

	if err := v.MergeConfigMap(cfg.Settings()); err != nil {
		return path, errors.Errorf("merging config %s: %w", path, err)
	}

	zerolog.Ctx(ctx).Debug().Str("path", path).Bool("explicit", explicit).Stringer("config", cfg).Msg("configuration applied")
	return path, nil
}
