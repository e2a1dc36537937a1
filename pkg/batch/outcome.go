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
	"cmp"
	"slices"
	"time"

	"github.com/walteh/yawns/pkg/storage"
)

// 📊 Status is the terminal state of a single request
type Status int

const (
	StatusSucceeded Status = iota
	StatusFailed
	StatusNotAttempted // the batch was cancelled before the request was admitted
)

func (s Status) String() string {
	switch s {
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	case StatusNotAttempted:
		return "not_attempted"
	default:
		return "unknown"
	}
}

// 🎯 Outcome is the result of one request. It is created once by the worker
// that ran the request and handed to the Aggregator without further changes.
type Outcome struct {
	Request  CopyRequest
	Status   Status
	Result   storage.CopyResult
	Kind     storage.ErrorKind
	Message  string
	Duration time.Duration
}

// Failure returns the descriptor kept in the Report for a failed outcome
func (o Outcome) Failure() Failure {
	return Failure{
		Line:           o.Request.Line,
		SourceKey:      o.Request.SourceKey,
		DestinationKey: o.Request.DestinationKey,
		Kind:           o.Kind,
		Message:        o.Message,
	}
}

// ❌ Failure explains why one request did not succeed
type Failure struct {
	Line           int               `json:"line" yaml:"line"`
	SourceKey      string            `json:"source_key" yaml:"source_key"`
	DestinationKey string            `json:"destination_key" yaml:"destination_key"`
	Kind           storage.ErrorKind `json:"kind" yaml:"kind"`
	Message        string            `json:"message" yaml:"message"`
}

// 📋 Report is the terminal artifact of a batch.
// Succeeded + Failed + NotAttempted always equals Total.
type Report struct {
	ID                string    `json:"id" yaml:"id"`
	SourceBucket      string    `json:"source_bucket,omitempty" yaml:"source_bucket,omitempty"`
	DestinationBucket string    `json:"destination_bucket" yaml:"destination_bucket"`
	Total             int       `json:"total" yaml:"total"`
	Succeeded         int       `json:"succeeded" yaml:"succeeded"`
	Failed            int       `json:"failed" yaml:"failed"`
	NotAttempted      int       `json:"not_attempted" yaml:"not_attempted"`
	Bytes             int64     `json:"bytes,omitempty" yaml:"bytes,omitempty"`
	Cancelled         bool      `json:"cancelled" yaml:"cancelled"`
	Started           time.Time `json:"started" yaml:"started"`
	Finished          time.Time `json:"finished" yaml:"finished"`
	// Failures is in completion order
	Failures []Failure `json:"failures" yaml:"failures"`
}

// Duration is the wall time between dispatch start and drain
func (r *Report) Duration() time.Duration {
	return r.Finished.Sub(r.Started)
}

// Rate is the number of terminal outcomes (successes and failures) per second
func (r *Report) Rate() float64 {
	secs := r.Duration().Seconds()
	if secs <= 0 {
		return 0
	}
	return float64(r.Succeeded+r.Failed) / secs
}

// SortedFailures returns the failures ordered by input line
func (r *Report) SortedFailures() []Failure {
	sorted := slices.Clone(r.Failures)
	slices.SortStableFunc(sorted, func(a, b Failure) int {
		return cmp.Compare(a.Line, b.Line)
	})
	return sorted
}
