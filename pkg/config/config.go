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
	"bytes"
	"context"
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse parses the config from bytes
	Parse(ctx context.Context, data []byte) (*Config, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// ☁️ AWSConfig holds connection settings shared by every command
type AWSConfig struct {
	Region      string `json:"region,omitempty" yaml:"region,omitempty" hcl:"region,optional"`
	Profile     string `json:"profile,omitempty" yaml:"profile,omitempty" hcl:"profile,optional"`
	EndpointURL string `json:"endpoint_url,omitempty" yaml:"endpoint_url,omitempty" hcl:"endpoint_url,optional"`
}

// 🪣 S3Config holds defaults for the s3 commands
type S3Config struct {
	SourceBucket      string            `json:"source_bucket,omitempty" yaml:"source_bucket,omitempty" hcl:"source_bucket,optional"`
	DestinationBucket string            `json:"destination_bucket,omitempty" yaml:"destination_bucket,omitempty" hcl:"destination_bucket,optional"`
	SourcePrefix      string            `json:"source_prefix,omitempty" yaml:"source_prefix,omitempty" hcl:"source_prefix,optional"`
	DestinationPrefix string            `json:"destination_prefix,omitempty" yaml:"destination_prefix,omitempty" hcl:"destination_prefix,optional"`
	MaxConcurrent     int               `json:"max_concurrent,omitempty" yaml:"max_concurrent,omitempty" hcl:"max_concurrent,optional"`
	ProgressInterval  string            `json:"progress_interval,omitempty" yaml:"progress_interval,omitempty" hcl:"progress_interval,optional"`
	Metadata          map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty" hcl:"metadata,optional"`
}

// 📚 Config represents the complete configuration file
type Config struct {
	AWS *AWSConfig `json:"aws,omitempty" yaml:"aws,omitempty" hcl:"aws,block"`
	S3  *S3Config  `json:"s3,omitempty" yaml:"s3,omitempty" hcl:"s3,block"`
}

// 🎯 Load loads the configuration from a file
func Load(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading configuration")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	p := GetParser(path)
	if p == nil {
		return loadAny(ctx, path, data)
	}

	cfg, err := p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// 🔍 Validate checks if the configuration is valid
func (cfg *Config) Validate() error {
	if cfg.S3 == nil {
		return nil
	}
	if cfg.S3.MaxConcurrent < 0 {
		return errors.Errorf("s3.max_concurrent must not be negative, got %d", cfg.S3.MaxConcurrent)
	}
	if cfg.S3.ProgressInterval != "" {
		d, err := time.ParseDuration(cfg.S3.ProgressInterval)
		if err != nil {
			return errors.Errorf("s3.progress_interval: %w", err)
		}
		if d < 0 {
			return errors.Errorf("s3.progress_interval must not be negative, got %s", d)
		}
	}
	for k := range cfg.S3.Metadata {
		if strings.TrimSpace(k) == "" {
			return errors.Errorf("s3.metadata has an empty key")
		}
	}
	return nil
}

// 🗺️ Settings flattens the file into viper keys, leaving out unset values
func (cfg *Config) Settings() map[string]any {
	out := map[string]any{}

	if a := cfg.AWS; a != nil {
		aws := map[string]any{}
		setString(aws, KeyRegion, a.Region)
		setString(aws, KeyProfile, a.Profile)
		setString(aws, KeyEndpointURL, a.EndpointURL)
		if len(aws) > 0 {
			out["aws"] = aws
		}
	}

	if s := cfg.S3; s != nil {
		s3 := map[string]any{}
		setString(s3, KeySourceBucket, s.SourceBucket)
		setString(s3, KeyDestinationBucket, s.DestinationBucket)
		setString(s3, KeySourcePrefix, s.SourcePrefix)
		setString(s3, KeyDestinationPrefix, s.DestinationPrefix)
		setString(s3, KeyProgressInterval, s.ProgressInterval)
		if s.MaxConcurrent > 0 {
			s3[leaf(KeyMaxConcurrent)] = s.MaxConcurrent
		}
		if len(s.Metadata) > 0 {
			pairs := make([]string, 0, len(s.Metadata))
			for _, k := range slices.Sorted(maps.Keys(s.Metadata)) {
				pairs = append(pairs, k+"="+s.Metadata[k])
			}
			s3[leaf(KeyMetadata)] = pairs
		}
		if len(s3) > 0 {
			out["s3"] = s3
		}
	}

	return out
}

// 📝 String returns a string representation of the config
func (cfg *Config) String() string {
	region, profile := "", ""
	if cfg.AWS != nil {
		region, profile = cfg.AWS.Region, cfg.AWS.Profile
	}
	concurrent := 0
	if cfg.S3 != nil {
		concurrent = cfg.S3.MaxConcurrent
	}
	return fmt.Sprintf("region=%s profile=%s max_concurrent=%d", region, profile, concurrent)
}

func setString(m map[string]any, key, value string) {
	if value != "" {
		m[leaf(key)] = value
	}
}

func leaf(key string) string {
	_, after, found := strings.Cut(key, ".")
	if !found {
		return key
	}
	return after
}

// 🔧 YAMLParser implements the Parser interface for YAML files
type YAMLParser struct{}

func init() {
	Register(&YAMLParser{})
}

// 🔍 CanParse checks if this parser can handle the given file
func (p *YAMLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".yaml") || strings.HasSuffix(filename, ".yml")
}

// 📝 Parse parses the config from YAML
func (p *YAMLParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, errors.Errorf("parsing YAML: %w", err)
	}
	return &cfg, nil
}
