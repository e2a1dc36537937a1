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
	"os"
	"path/filepath"
	"strings"

	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
)

// DefaultFiles are looked up in the working directory when no config path is given
var DefaultFiles = []string{".yawns.hcl", ".yawns.yaml", ".yawns.yml", ".yawns.json", ".yawns"}

// 🔍 Discover returns the first default config file present in dir, or "" if none
func Discover(dir string) string {
	for _, name := range DefaultFiles {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// loadAny handles files without a known extension, such as .yawns, by
// trying YAML first and then HCL
func loadAny(ctx context.Context, path string, data []byte) (*Config, error) {
	cfg, yamlErr := (&YAMLParser{}).Parse(ctx, data)
	if yamlErr != nil {
		var hclErr error
		cfg, hclErr = (&HCLParser{}).Parse(ctx, data)
		if hclErr != nil {
			return nil, errors.Errorf("failed to parse %s as YAML or HCL: %w", path, errors.Join(yamlErr, hclErr))
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

func envObject() cty.Value {
	vars := map[string]cty.Value{}
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if ok && k != "" {
			vars[k] = cty.StringVal(v)
		}
	}
	if len(vars) == 0 {
		return cty.EmptyObjectVal
	}
	return cty.ObjectVal(vars)
}
