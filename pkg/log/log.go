// Copyright 2026 walteh LLC
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
	"sync"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/walteh/certsync/pkg/category"
	"github.com/walteh/certsync/pkg/operation"
	"github.com/walteh/certsync/pkg/status"
)

// 🎯 Logger prints human-readable run progress and mirrors it to zerolog
type Logger struct {
	zlog    zerolog.Logger
	console io.Writer
	mu      sync.Mutex
	table   string
	records int
}

// 🏭 New creates a logger writing lines to console and events to zlog
func New(console io.Writer, zlog zerolog.Logger) *Logger {
	return &Logger{
		zlog:    zlog,
		console: console,
	}
}

// WithZerolog returns a logger sharing the console but mirroring to zlog.
func (l *Logger) WithZerolog(zlog zerolog.Logger) *Logger {
	return New(l.console, zlog)
}

// 🔑 contextKey is the type for context values
type contextKey struct{}

// 🎯 FromContext gets the logger from context, falling back to a discarding one
func FromContext(ctx context.Context) *Logger {
	logger, ok := ctx.Value(contextKey{}).(*Logger)
	if !ok {
		return New(io.Discard, *zerolog.Ctx(ctx))
	}
	return logger
}

// 🎯 NewContext adds the logger to context
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// 📝 Header prints the run banner
func (l *Logger) Header(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	name := color.New(color.Bold, color.FgCyan).Sprint("certsync")
	fmt.Fprintf(l.console, "\n%s %s\n\n", name, color.New(color.Faint).Sprint("• "+msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Record prints one processed record, opening a table section when the
// table changes
func (l *Logger) Record(res operation.Result) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if res.Table != l.table {
		l.startTable(res.Table, res.Category)
	}
	l.records++

	fmt.Fprintln(l.console, status.FormatOutcome(res))

	event := l.zlog.Info()
	if res.Outcome == operation.OutcomeError {
		event = l.zlog.Warn().Err(res.Err)
	}
	event.
		Str("table", res.Table).
		Int64("record_id", res.Record.ID).
		Str("company", res.Record.CompanyCode).
		Str("user", res.Record.UserIdentifier).
		Str("outcome", res.Outcome.String()).
		Str("path", res.RemotePath).
		Msg("record processed")
}

func (l *Logger) startTable(table string, c category.Category) {
	if l.table != "" {
		fmt.Fprintln(l.console)
	}
	l.table = table
	fmt.Fprintf(l.console, "%s %s %s %s\n",
		color.New(color.FgMagenta).Sprint("◆"),
		color.New(color.Bold).Sprint(table),
		color.New(color.Faint).Sprint("•"),
		color.New(color.FgYellow).Sprint(c.Folder()))
}

// 📊 Summary prints the closing counters table
func (l *Logger) Summary(s *status.Summary) {
	l.mu.Lock()
	defer l.mu.Unlock()

	fmt.Fprintln(l.console)
	if err := status.RenderSummary(l.console, s); err != nil {
		l.zlog.Warn().Err(err).Msg("rendering summary")
	}
	l.zlog.Info().
		Str("run_id", s.RunID.String()).
		Int("processed", s.Stats.Processed).
		Int("uploaded", s.Stats.Uploaded).
		Int("skipped", s.Stats.Skipped).
		Int("errors", s.Stats.Errors).
		Msg(s.Stats.String())
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
func (l *Logger) Infof(format string, args ...interface{}) {
	l.Info(fmt.Sprintf(format, args...))
}

// 📝 Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.Error(fmt.Sprintf(format, args...))
}

// 📝 Successf logs a formatted success message
func (l *Logger) Successf(format string, args ...interface{}) {
	l.Success(fmt.Sprintf(format, args...))
}

// Records returns how many record lines were printed.
func (l *Logger) Records() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.records
}
