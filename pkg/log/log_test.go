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

package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger(t *testing.T) {
	// Disable color for testing
	color.NoColor = true
	defer func() { color.NoColor = false }()

	tests := []struct {
		name     string
		op       func(t *testing.T, logger *Logger)
		wantLogs []string
	}{
		{
			name: "log_object_operation",
			op: func(t *testing.T, logger *Logger) {
				logger.LogObject(context.Background(), ObjectOperation{
					Line:        1,
					Source:      "obj1.txt",
					Destination: "obj1.txt",
					Status:      "succeeded",
				})
			},
			wantLogs: []string{
				"✓ obj1.txt" + strings.Repeat(" ", keyWidth-len("obj1.txt")+1+keyWidth+1) + "succeeded",
			},
		},
		{
			name: "start_batch",
			op: func(t *testing.T, logger *Logger) {
				logger.StartBatch(context.Background(), BatchOperation{
					ID:                "b1",
					SourceBucket:      "src",
					DestinationBucket: "dst",
					Total:             3,
					Concurrency:       2,
				})
			},
			wantLogs: []string{
				"[copying s3://src → s3://dst]",
				"◆ 3 objects • 2 concurrent",
			},
		},
		{
			name: "start_upload_batch",
			op: func(t *testing.T, logger *Logger) {
				logger.StartBatch(context.Background(), BatchOperation{
					Verb:              "uploading",
					DestinationBucket: "dst",
					Total:             1,
					Concurrency:       10,
				})
				logger.EndBatch(context.Background())
			},
			wantLogs: []string{
				"[uploading local files → s3://dst]",
				"◆ 1 objects • 10 concurrent",
			},
		},
		{
			name: "log_messages",
			op: func(t *testing.T, logger *Logger) {
				logger.Info("info message")
				logger.Warning("warning message")
				logger.Error("error message")
				logger.Success("success message")
			},
			wantLogs: []string{
				"ℹ️  info message",
				"⚠️  warning message",
				"❌ error message",
				"✅ success message",
			},
		},
		{
			name: "log_formatted_messages",
			op: func(t *testing.T, logger *Logger) {
				logger.Infof("info %s", "test")
				logger.Warningf("warning %s", "test")
				logger.Errorf("error %s", "test")
				logger.Successf("success %s", "test")
			},
			wantLogs: []string{
				"ℹ️  info test",
				"⚠️  warning test",
				"❌ error test",
				"✅ success test",
			},
		},
		{
			name: "log_header",
			op: func(t *testing.T, logger *Logger) {
				logger.Header("copying object list")
			},
			wantLogs: []string{
				"yawns • copying object list",
			},
		},
		{
			name: "log_newline",
			op: func(t *testing.T, logger *Logger) {
				logger.Info("first")
				logger.LogNewline()
				logger.Info("second")
			},
			wantLogs: []string{
				"ℹ️  first",
				"",
				"ℹ️  second",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Create buffer for console output
			buf := &bytes.Buffer{}
			logger := New(buf, zerolog.Disabled)

			// Perform operation
			tt.op(t, logger)

			// Check output
			output := strings.TrimSpace(buf.String())
			lines := strings.Split(output, "\n")

			require.Equal(t, len(tt.wantLogs), len(lines), "number of log lines should match")
			for i, want := range tt.wantLogs {
				assert.Equal(t, want, strings.TrimSpace(lines[i]), "log line %d should match", i)
			}
		})
	}
}

func TestLoggerContext(t *testing.T) {
	logger := New(io.Discard, zerolog.InfoLevel)

	ctx := NewContext(context.Background(), logger)

	got := FromContext(ctx)
	assert.Same(t, logger, got, "logger from context should be the same instance")

	assert.Panics(t, func() {
		FromContext(context.Background())
	}, "FromContext should panic when logger is missing")
}

func TestObjectOperationFormatting(t *testing.T) {
	// Disable color for testing
	color.NoColor = true
	defer func() { color.NoColor = false }()

	row := func(symbol, source, target, status string) string {
		return fmt.Sprintf("    %s %-*s %-*s %-*s", symbol, keyWidth, source, keyWidth, target, statusWidth, status)
	}

	tests := []struct {
		name string
		op   ObjectOperation
		want string
	}{
		{
			name: "mirrored_copy",
			op:   ObjectOperation{Source: "a.txt", Destination: "a.txt", Status: "succeeded"},
			want: row("✓", "a.txt", "", "succeeded"),
		},
		{
			name: "renamed_copy",
			op:   ObjectOperation{Source: "obj2.txt", Destination: "renamed2.txt", Status: "succeeded"},
			want: row("✓", "obj2.txt", "renamed2.txt", "succeeded"),
		},
		{
			name: "failed_copy_shows_kind",
			op:   ObjectOperation{Source: "gone.txt", Destination: "gone.txt", Status: "failed", Kind: "not_found"},
			want: row("✗", "gone.txt", "", "not_found"),
		},
		{
			name: "not_attempted",
			op:   ObjectOperation{Source: "later.txt", Destination: "x.txt", Status: "not_attempted"},
			want: row("-", "later.txt", "x.txt", "not_attempted"),
		},
	}

	logger := New(io.Discard, zerolog.Disabled)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, logger.formatObjectOperation(tt.op))
		})
	}
}
