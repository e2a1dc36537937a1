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

// Package storage defines the object storage primitives the batch engine
// talks to, and the classification of their failures.
package storage

import (
	"context"
)

// 📦 CopyInput describes a single object transfer between two containers
type CopyInput struct {
	SourceBucket      string
	SourceKey         string
	DestinationBucket string
	DestinationKey    string
	Metadata          map[string]string
}

// 🎯 CopyResult is what the primitive reports about the written object.
// Fields are zero when the backend does not return them.
type CopyResult struct {
	ETag      string
	Size      int64
	VersionID string
}

// Copier is the single-object transfer primitive. Implementations own their
// retry policy; callers invoke Copy exactly once per request.
type Copier interface {
	Copy(ctx context.Context, in CopyInput) (CopyResult, error)
}

// CopierFunc adapts a plain function to the Copier interface
type CopierFunc func(ctx context.Context, in CopyInput) (CopyResult, error)

func (f CopierFunc) Copy(ctx context.Context, in CopyInput) (CopyResult, error) {
	return f(ctx, in)
}

// 🪣 Bucket is a named container as reported by a listing
type Bucket struct {
	Name      string
	CreatedAt string
}
