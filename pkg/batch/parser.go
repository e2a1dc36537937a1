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
	"bufio"
	"io"
	"iter"
	"strings"
)

const (
	fieldSeparator = "\t"
	commentPrefix  = "#"
	maxLineSize    = 1024 * 1024
)

// 📦 CopyRequest is one unit of work for the Dispatcher
type CopyRequest struct {
	// Line is the 1-based input line the request was parsed from
	Line           int               `json:"line" yaml:"line"`
	SourceKey      string            `json:"source_key" yaml:"source_key"`
	DestinationKey string            `json:"destination_key" yaml:"destination_key"`
	Metadata       map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// ParseOptions controls how list lines become requests
type ParseOptions struct {
	// SourcePrefix and DestinationPrefix are prepended verbatim to the keys
	SourcePrefix      string
	DestinationPrefix string
	// Metadata is the global mapping overlaid under every item's own metadata
	Metadata map[string]string
	// MirrorKey derives the destination when a line names none. Nil keeps
	// the source unchanged.
	MirrorKey func(source string) string
}

// 📝 Parser reads object references, one per line:
//
//	source
//	source<TAB>destination
//	source<TAB>destination<TAB>key=value key=value
//
// Fields are whitespace trimmed and an empty destination mirrors the source.
// Blank lines and lines starting with '#' are skipped. The underlying reader
// is consumed once; a Parser cannot be restarted.
type Parser struct {
	r    io.Reader
	opts ParseOptions
}

// NewParser creates a Parser over r
func NewParser(r io.Reader, opts ParseOptions) *Parser {
	return &Parser{r: r, opts: opts}
}

// Requests lazily yields one request per non-blank, non-comment line. The
// first malformed line yields a *ParseError and ends the sequence.
func (p *Parser) Requests() iter.Seq2[CopyRequest, error] {
	return func(yield func(CopyRequest, error) bool) {
		scanner := bufio.NewScanner(p.r)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

		line := 0
		for scanner.Scan() {
			line++
			req, ok, err := p.parseLine(line, scanner.Text())
			if err != nil {
				yield(CopyRequest{}, err)
				return
			}
			if !ok {
				continue
			}
			if !yield(req, nil) {
				return
			}
		}

		if err := scanner.Err(); err != nil {
			yield(CopyRequest{}, &ParseError{Line: line + 1, Reason: "reading input", Err: err})
		}
	}
}

// ParseAll consumes the whole input up front so that a malformed line fails
// the batch before any copy is attempted.
func ParseAll(r io.Reader, opts ParseOptions) ([]CopyRequest, error) {
	var requests []CopyRequest
	for req, err := range NewParser(r, opts).Requests() {
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	return requests, nil
}

func (p *Parser) parseLine(line int, text string) (CopyRequest, bool, error) {
	text = strings.TrimSuffix(text, "\r")

	trimmed := strings.TrimSpace(text)
	if trimmed == "" || strings.HasPrefix(trimmed, commentPrefix) {
		return CopyRequest{}, false, nil
	}

	fields := strings.Split(text, fieldSeparator)
	if len(fields) > 3 {
		return CopyRequest{}, false, &ParseError{Line: line, Reason: "too many fields, expected source[<TAB>destination[<TAB>metadata]]"}
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	source := fields[0]
	if source == "" {
		return CopyRequest{}, false, &ParseError{Line: line, Reason: "empty source key"}
	}

	destination := source
	if p.opts.MirrorKey != nil {
		destination = p.opts.MirrorKey(source)
	}
	if len(fields) > 1 && fields[1] != "" {
		destination = fields[1]
	}

	var item map[string]string
	if len(fields) == 3 && fields[2] != "" {
		pairs := strings.Fields(fields[2])
		item = make(map[string]string, len(pairs))
		for _, pair := range pairs {
			key, value, err := parsePair(pair)
			if err != nil {
				return CopyRequest{}, false, &ParseError{Line: line, Reason: "malformed metadata", Err: err}
			}
			item[key] = value
		}
	}

	return CopyRequest{
		Line:           line,
		SourceKey:      p.opts.SourcePrefix + source,
		DestinationKey: p.opts.DestinationPrefix + destination,
		Metadata:       Overlay(p.opts.Metadata, item),
	}, true, nil
}
