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

package batch

import (
	"maps"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// ParseMetadata turns repeated key=value arguments into a mapping. The pair
// is split on the first '='; values may be empty or contain '='. Later
// pairs win over earlier ones with the same key.
func ParseMetadata(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	metadata := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, err := parsePair(pair)
		if err != nil {
			return nil, invalidInput(errors.Errorf("parsing metadata: %w", err))
		}
		metadata[key] = value
	}
	return metadata, nil
}

func parsePair(pair string) (string, string, error) {
	key, value, ok := strings.Cut(pair, "=")
	if !ok {
		return "", "", errors.Errorf("invalid KEY=value: no `=` found in %q", pair)
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return "", "", errors.Errorf("invalid KEY=value: empty key in %q", pair)
	}
	return key, value, nil
}

// 🔀 Overlay merges per-item metadata over the global mapping and returns a
// new map. Neither argument is modified. Returns nil when both are empty.
func Overlay(global, item map[string]string) map[string]string {
	if len(global) == 0 && len(item) == 0 {
		return nil
	}

	merged := make(map[string]string, len(global)+len(item))
	maps.Copy(merged, global)
	maps.Copy(merged, item)
	return merged
}
