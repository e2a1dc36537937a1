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
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/walteh/yawns/pkg/batch"
	"github.com/walteh/yawns/pkg/storage"
)

func sampleReport() *batch.Report {
	started := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	return &batch.Report{
		ID:                "batch-1",
		SourceBucket:      "src",
		DestinationBucket: "dst",
		Total:             4,
		Succeeded:         2,
		Failed:            2,
		Started:           started,
		Finished:          started.Add(2 * time.Second),
		Failures: []batch.Failure{
			{Line: 9, SourceKey: "late.txt", DestinationKey: "late.txt", Kind: storage.KindAccessDenied, Message: "denied"},
			{Line: 3, SourceKey: "early.txt", DestinationKey: "early.txt", Kind: storage.KindNotFound, Message: "NoSuchKey"},
		},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{in: "", want: FormatText},
		{in: "text", want: FormatText},
		{in: "JSON", want: FormatJSON},
		{in: " yaml ", want: FormatYAML},
		{in: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRenderText(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	buf := &bytes.Buffer{}
	require.NoError(t, NewReporter(buf, FormatText, nil).Render(sampleReport()))

	out := buf.String()
	assert.Contains(t, out, "copied 2/4 objects in 2s, 2 failed")
	assert.Contains(t, out, "Line")
	assert.Contains(t, out, "not_found")

	early := strings.Index(out, "early.txt")
	late := strings.Index(out, "late.txt")
	require.NotEqual(t, -1, early)
	require.NotEqual(t, -1, late)
	assert.Less(t, early, late, "failures should be listed by input line")
}

func TestRenderTextNoFailures(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	report := sampleReport()
	report.Failed = 0
	report.Succeeded = 4
	report.Failures = []batch.Failure{}

	buf := &bytes.Buffer{}
	require.NoError(t, NewReporter(buf, FormatText, nil).Render(report))
	assert.Equal(t, "✅ copied 4/4 objects in 2s (2.00 objects/second)\n", buf.String())
}

func TestRenderJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, NewReporter(buf, FormatJSON, nil).Render(sampleReport()))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))

	assert.Equal(t, "batch-1", got["id"])
	assert.Equal(t, float64(4), got["total"])
	assert.Equal(t, float64(2), got["failed"])
	assert.Equal(t, "2s", got["duration"])
	assert.Equal(t, float64(2), got["objects_per_second"])

	failures, ok := got["failures"].([]any)
	require.True(t, ok)
	require.Len(t, failures, 2)
	assert.Equal(t, float64(3), failures[0].(map[string]any)["line"], "sorted by line")
	assert.Equal(t, "not_found", failures[0].(map[string]any)["kind"])
}

func TestRenderYAML(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, NewReporter(buf, FormatYAML, nil).Render(sampleReport()))

	var got struct {
		ID       string `yaml:"id"`
		Total    int    `yaml:"total"`
		Failures []struct {
			Line int    `yaml:"line"`
			Kind string `yaml:"kind"`
		} `yaml:"failures"`
	}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))

	assert.Equal(t, "batch-1", got.ID)
	assert.Equal(t, 4, got.Total)
	require.Len(t, got.Failures, 2)
	assert.Equal(t, 3, got.Failures[0].Line)
	assert.Equal(t, 9, got.Failures[1].Line)
}

func TestTable(t *testing.T) {
	header := []string{"Name", "CreatedAt"}
	rows := [][]string{{"alpha", "2024-03-01T12:00:00Z"}, {"beta", ""}}

	t.Run("text", func(t *testing.T) {
		buf := &bytes.Buffer{}
		require.NoError(t, NewReporter(buf, FormatText, nil).Table(header, rows))
		assert.Contains(t, buf.String(), "alpha")
		assert.Contains(t, buf.String(), "CreatedAt")
	})

	t.Run("json", func(t *testing.T) {
		buf := &bytes.Buffer{}
		require.NoError(t, NewReporter(buf, FormatJSON, nil).Table(header, rows))

		var got []map[string]string
		require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
		assert.Equal(t, []map[string]string{
			{"name": "alpha", "createdat": "2024-03-01T12:00:00Z"},
			{"name": "beta", "createdat": ""},
		}, got)
	})

	t.Run("yaml", func(t *testing.T) {
		buf := &bytes.Buffer{}
		require.NoError(t, NewReporter(buf, FormatYAML, nil).Table(header, rows))
		assert.Contains(t, buf.String(), "name: alpha")
	})
}
