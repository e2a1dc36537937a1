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

package status

import (
	"fmt"
	"time"

	"github.com/walteh/yawns/pkg/batch"
)

// 🎨 Formatter turns batch state into display lines
type Formatter interface {
	// FormatProgress formats a running batch
	FormatProgress(p batch.Progress, elapsed time.Duration) string

	// FormatSummary formats the one line result of a finished batch
	FormatSummary(r *batch.Report) string

	// FormatError formats an error message
	FormatError(err error) string
}

// DefaultFormatter provides a default implementation of Formatter
type DefaultFormatter struct {
	// Verb is used in place of "copied", e.g. "uploaded"
	Verb string
}

// NewDefaultFormatter creates a new DefaultFormatter
func NewDefaultFormatter() *DefaultFormatter {
	return &DefaultFormatter{Verb: "copied"}
}

func (f *DefaultFormatter) verb() string {
	if f.Verb == "" {
		return "copied"
	}
	return f.Verb
}

// FormatProgress formats a progress message with rate and eta
func (f *DefaultFormatter) FormatProgress(p batch.Progress, elapsed time.Duration) string {
	attempted := p.Succeeded + p.Failed
	rate := 0.0
	if secs := elapsed.Seconds(); secs > 0 {
		rate = float64(attempted) / secs
	}

	eta := "unknown"
	remaining := p.Total - p.Done()
	switch {
	case remaining <= 0:
		eta = "0s"
	case rate > 0:
		eta = time.Duration(float64(remaining) / rate * float64(time.Second)).Round(time.Second).String()
	}

	prefix := "⏳"
	if remaining <= 0 {
		prefix = "✅"
	}

	return fmt.Sprintf("%s %s %d/%d (%d failed) in %s (%.2f objects/second), eta %s",
		prefix, f.verb(), attempted, p.Total, p.Failed, elapsed.Round(time.Second), rate, eta)
}

// FormatSummary formats the final line for a report
func (f *DefaultFormatter) FormatSummary(r *batch.Report) string {
	elapsed := r.Duration().Round(time.Millisecond)

	switch {
	case r.Cancelled:
		return fmt.Sprintf("🛑 cancelled: %s %d/%d objects in %s, %d failed, %d not attempted",
			f.verb(), r.Succeeded, r.Total, elapsed, r.Failed, r.NotAttempted)
	case r.Failed > 0:
		return fmt.Sprintf("⚠️  %s %d/%d objects in %s, %d failed",
			f.verb(), r.Succeeded, r.Total, elapsed, r.Failed)
	default:
		return fmt.Sprintf("✅ %s %d/%d objects in %s (%.2f objects/second)",
			f.verb(), r.Succeeded, r.Total, elapsed, r.Rate())
	}
}

// FormatError formats an error message with emoji
func (f *DefaultFormatter) FormatError(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("❌ Error: %v", err)
}
