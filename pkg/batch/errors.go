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

// Package batch is the copy-list engine: it parses a list of object
// references, overlays metadata, copies every object under a concurrency
// bound and folds the per-object outcomes into a Report.
//
// Data moves strictly forward:
//
//	input -> Parser -> Overlay -> Dispatcher -> Aggregator -> Report
//
// Only the Dispatcher runs work concurrently. Requests and outcomes change
// hands over channels and are never shared for writing.
package batch

import (
	"fmt"

	"gitlab.com/tozd/go/errors"
)

var (
	// ErrInvalidInput marks failures caused by the caller's input: malformed
	// list lines, bad metadata flags, unreadable streams, missing arguments.
	ErrInvalidInput = errors.Base("invalid input")

	// ErrBatchFault marks failures that stop a batch before any object is
	// attempted, such as unreachable buckets or rejected credentials.
	ErrBatchFault = errors.Base("batch fault")
)

// classified attaches one of the package sentinels to an underlying error
type classified struct {
	sentinel error
	err      error
}

func (e *classified) Error() string {
	return e.err.Error()
}

func (e *classified) Unwrap() []error {
	return []error{e.sentinel, e.err}
}

func invalidInput(err error) error {
	return &classified{sentinel: ErrInvalidInput, err: err}
}

// MarkInvalidInput classifies err as ErrInvalidInput, for argument and flag
// errors found before a batch is prepared
func MarkInvalidInput(err error) error {
	if err == nil || errors.Is(err, ErrInvalidInput) {
		return err
	}
	return invalidInput(err)
}

func batchFault(err error) error {
	return &classified{sentinel: ErrBatchFault, err: err}
}

// 📝 ParseError reports a malformed input line
type ParseError struct {
	Line   int
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("line %d: %s: %v", e.Line, e.Reason, e.Err)
	}
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}

func (e *ParseError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrInvalidInput, e.Err}
	}
	return []error{ErrInvalidInput}
}
