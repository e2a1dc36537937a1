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
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"

	"github.com/walteh/yawns/pkg/batch"
)

// 🖨️ Format selects how a report is rendered
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ErrUnknownFormat is returned by ParseFormat for unsupported names
var ErrUnknownFormat = errors.Base("unknown output format")

// ParseFormat validates an --output value
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatText, nil
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", errors.Errorf("%w: %q (want text, json or yaml)", ErrUnknownFormat, s)
	}
}

// document is the serialized shape of a report
type document struct {
	ID                string          `json:"id" yaml:"id"`
	SourceBucket      string          `json:"source_bucket,omitempty" yaml:"source_bucket,omitempty"`
	DestinationBucket string          `json:"destination_bucket" yaml:"destination_bucket"`
	Total             int             `json:"total" yaml:"total"`
	Succeeded         int             `json:"succeeded" yaml:"succeeded"`
	Failed            int             `json:"failed" yaml:"failed"`
	NotAttempted      int             `json:"not_attempted" yaml:"not_attempted"`
	Bytes             int64           `json:"bytes,omitempty" yaml:"bytes,omitempty"`
	Cancelled         bool            `json:"cancelled" yaml:"cancelled"`
	Started           time.Time       `json:"started" yaml:"started"`
	Finished          time.Time       `json:"finished" yaml:"finished"`
	Duration          string          `json:"duration" yaml:"duration"`
	Rate              float64         `json:"objects_per_second" yaml:"objects_per_second"`
	Failures          []batch.Failure `json:"failures" yaml:"failures"`
}

// 📋 Reporter writes finished reports and listings
type Reporter struct {
	out       io.Writer
	format    Format
	formatter Formatter
}

// NewReporter creates a Reporter writing to out
func NewReporter(out io.Writer, format Format, formatter Formatter) *Reporter {
	if formatter == nil {
		formatter = NewDefaultFormatter()
	}
	return &Reporter{out: out, format: format, formatter: formatter}
}

// Render writes the report in the configured format. Failures are listed by input line.
func (r *Reporter) Render(report *batch.Report) error {
	switch r.format {
	case FormatJSON:
		enc := json.NewEncoder(r.out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(r.document(report)); err != nil {
			return errors.Errorf("encoding report as json: %w", err)
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(r.out)
		enc.SetIndent(2)
		if err := enc.Encode(r.document(report)); err != nil {
			return errors.Errorf("encoding report as yaml: %w", err)
		}
		return enc.Close()
	default:
		return r.renderText(report)
	}
}

func (r *Reporter) document(report *batch.Report) document {
	return document{
		ID:                report.ID,
		SourceBucket:      report.SourceBucket,
		DestinationBucket: report.DestinationBucket,
		Total:             report.Total,
		Succeeded:         report.Succeeded,
		Failed:            report.Failed,
		NotAttempted:      report.NotAttempted,
		Bytes:             report.Bytes,
		Cancelled:         report.Cancelled,
		Started:           report.Started,
		Finished:          report.Finished,
		Duration:          report.Duration().Round(time.Millisecond).String(),
		Rate:              report.Rate(),
		Failures:          report.SortedFailures(),
	}
}

func (r *Reporter) renderText(report *batch.Report) error {
	summary := r.formatter.FormatSummary(report)
	switch {
	case report.Cancelled:
		summary = color.New(color.FgYellow).Sprint(summary)
	case report.Failed > 0:
		summary = color.New(color.FgRed).Sprint(summary)
	default:
		summary = color.New(color.FgGreen).Sprint(summary)
	}
	fmt.Fprintln(r.out, summary)

	failures := report.SortedFailures()
	if len(failures) == 0 {
		return nil
	}

	rows := make([][]string, 0, len(failures))
	for _, f := range failures {
		rows = append(rows, []string{strconv.Itoa(f.Line), f.SourceKey, f.DestinationKey, f.Kind.String(), f.Message})
	}
	return r.Table([]string{"Line", "Source", "Destination", "Kind", "Message"}, rows)
}

// Table renders rows under header with pterm. Structured formats are
// written as a list of header keyed objects instead.
func (r *Reporter) Table(header []string, rows [][]string) error {
	if r.format == FormatJSON || r.format == FormatYAML {
		return r.records(header, rows)
	}

	data := pterm.TableData{header}
	data = append(data, rows...)

	rendered, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return errors.Errorf("rendering table: %w", err)
	}
	fmt.Fprintln(r.out, rendered)
	return nil
}

func (r *Reporter) records(header []string, rows [][]string) error {
	out := make([]map[string]string, 0, len(rows))
	for _, row := range rows {
		rec := make(map[string]string, len(header))
		for i, h := range header {
			if i < len(row) {
				rec[strings.ToLower(h)] = row[i]
			}
		}
		out = append(out, rec)
	}

	if r.format == FormatJSON {
		enc := json.NewEncoder(r.out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			return errors.Errorf("encoding records as json: %w", err)
		}
		return nil
	}

	enc := yaml.NewEncoder(r.out)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return errors.Errorf("encoding records as yaml: %w", err)
	}
	return enc.Close()
}
