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
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

// 🎨 Display configuration
const (
	objectIndent = 4  // spaces to indent object entries
	keyWidth     = 35 // Base width for object keys
	statusWidth  = 15 // Width for status text
)

// 🎯 ObjectOperation is a single object copy as shown on the console
type ObjectOperation struct {
	Line        int    // Input line the request came from
	Source      string // Source key or local path
	Destination string // Destination key
	Status      string // succeeded, failed or not_attempted
	Kind        string // Failure kind, empty on success
	Message     string // Failure detail
}

// 📦 BatchOperation describes a batch for logging
type BatchOperation struct {
	ID                string // Batch id
	Verb              string // copying / uploading
	SourceBucket      string
	DestinationBucket string
	Total             int // Number of requests
	Concurrency       int // Slot count
}

// 🎯 Logger handles structured logging with console output
type Logger struct {
	zlog      zerolog.Logger
	console   io.Writer
	mu        sync.Mutex
	currentOp *BatchOperation
	objects   int
}

// 🏭 New creates a new logger
func New(console io.Writer, level zerolog.Level) *Logger {
	zlog := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger().Level(level)
	return &Logger{
		zlog:    zlog,
		console: console,
		mu:      sync.Mutex{},
	}
}

// Console is the writer user facing output goes to
func (l *Logger) Console() io.Writer {
	return l.console
}

// 🔑 contextKey is the type for context values
type contextKey struct{}

// 🎯 FromContext gets the logger from context
func FromContext(ctx context.Context) *Logger {
	logger, ok := ctx.Value(contextKey{}).(*Logger)
	if !ok {
		panic("logger not found in context")
	}
	return logger
}

// 🎯 NewContext adds the logger to context
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// 📝 formatObjectOperation formats an object operation for display
func (l *Logger) formatObjectOperation(op ObjectOperation) string {
	var symbol rune
	var symbolColor color.Attribute
	switch op.Status {
	case "succeeded":
		symbol = '✓'
		symbolColor = color.FgGreen
	case "failed":
		symbol = '✗'
		symbolColor = color.FgRed
	default:
		symbol = '-'
		symbolColor = color.FgYellow
	}

	target := op.Destination
	if target == op.Source {
		target = ""
	}

	status := op.Status
	if op.Kind != "" {
		status = op.Kind
	}

	return fmt.Sprintf("%s%s %s %s %s",
		fmt.Sprintf("%*s", objectIndent, ""),
		color.New(symbolColor).Sprint(string(symbol)),
		fmt.Sprintf("%-*s", keyWidth, op.Source),
		color.New(color.FgBlue).Sprint(fmt.Sprintf("%-*s", keyWidth, target)),
		color.New(symbolColor).Sprint(fmt.Sprintf("%-*s", statusWidth, status)))
}

// 📝 LogObject logs a terminal object outcome
func (l *Logger) LogObject(ctx context.Context, op ObjectOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.objects++

	fmt.Fprintln(l.console, l.formatObjectOperation(op))

	event := l.zlog.Debug()
	if op.Status == "failed" {
		event = l.zlog.Warn()
	}
	event.
		Int("line", op.Line).
		Str("source", op.Source).
		Str("destination", op.Destination).
		Str("status", op.Status).
		Str("kind", op.Kind).
		Str("message", op.Message).
		Msg("object operation")
}

// 📝 StartBatch prints the batch header
func (l *Logger) StartBatch(ctx context.Context, op BatchOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.currentOp = &op
	l.objects = 0

	verb := op.Verb
	if verb == "" {
		verb = "copying"
	}

	from := "local files"
	if op.SourceBucket != "" {
		from = "s3://" + op.SourceBucket
	}

	fmt.Fprintf(l.console, "[%s %s → %s]\n",
		verb,
		color.New(color.FgCyan).Sprint(from),
		color.New(color.FgCyan).Sprint("s3://"+op.DestinationBucket))

	fmt.Fprintf(l.console, "%s %s %s %s\n",
		color.New(color.FgMagenta).Sprint("◆"),
		color.New(color.Bold).Sprintf("%d objects", op.Total),
		color.New(color.Faint).Sprint("•"),
		color.New(color.FgYellow).Sprintf("%d concurrent", op.Concurrency))

	l.zlog.Info().
		Str("batch_id", op.ID).
		Str("source_bucket", op.SourceBucket).
		Str("destination_bucket", op.DestinationBucket).
		Int("total", op.Total).
		Int("concurrency", op.Concurrency).
		Msg("starting batch")
}

// 📝 EndBatch ends the current batch
func (l *Logger) EndBatch(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.currentOp == nil {
		return
	}

	l.zlog.Info().
		Str("batch_id", l.currentOp.ID).
		Int("objects", l.objects).
		Msg("batch complete")

	l.currentOp = nil
	l.objects = 0
}

// 📝 LogNewline logs a newline
func (l *Logger) LogNewline() {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console)
}

// 📝 Header logs a header
func (l *Logger) Header(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	name := color.New(color.Bold, color.FgCyan).Sprint("yawns")
	fmt.Fprintf(l.console, "\n%s %s\n\n", name, color.New(color.Faint).Sprint("• "+msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Success logs a success message
func (l *Logger) Success(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "✅ %s\n", color.New(color.FgGreen).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Warning logs a warning message
func (l *Logger) Warning(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "⚠️  %s\n", color.New(color.FgYellow).Sprint(msg))
	l.zlog.Warn().Msg(msg)
}

// 📝 Error logs an error message
func (l *Logger) Error(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "❌ %s\n", color.New(color.FgRed).Sprint(msg))
	l.zlog.Error().Msg(msg)
}

// 📝 Info logs an info message
func (l *Logger) Info(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "ℹ️  %s\n", color.New(color.FgCyan).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...any) {
	l.Info(fmt.Sprintf(format, args...))
}

// 📝 Warningf logs a formatted warning message
func (l *Logger) Warningf(format string, args ...any) {
	l.Warning(fmt.Sprintf(format, args...))
}

// 📝 Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...any) {
	l.Error(fmt.Sprintf(format, args...))
}

// 📝 Successf logs a formatted success message
func (l *Logger) Successf(format string, args ...any) {
	l.Success(fmt.Sprintf(format, args...))
}
