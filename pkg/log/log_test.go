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
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/certsync/pkg/category"
	"github.com/walteh/certsync/pkg/operation"
	"github.com/walteh/certsync/pkg/source"
	"github.com/walteh/certsync/pkg/status"
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
				logger.Errorf("error %s", "test")
				logger.Successf("success %s", "test")
			},
			wantLogs: []string{
				"ℹ️  info test",
				"❌ error test",
				"✅ success test",
			},
		},
		{
			name: "log_header",
			op: func(t *testing.T, logger *Logger) {
				logger.Header("syncing safety certificates")
			},
			wantLogs: []string{
				"certsync • syncing safety certificates",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			logger := New(buf, zerolog.Nop())

			tt.op(t, logger)

			output := strings.TrimSpace(buf.String())
			lines := strings.Split(output, "\n")

			require.Equal(t, len(tt.wantLogs), len(lines), "number of log lines should match")
			for i, want := range tt.wantLogs {
				assert.Equal(t, want, strings.TrimSpace(lines[i]), "log line %d should match", i)
			}
		})
	}
}

func TestLoggerRecords(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	console := &bytes.Buffer{}
	events := &bytes.Buffer{}
	logger := New(console, zerolog.New(events))

	mario := source.Record{ID: 1, CompanyCode: "S03", UserIdentifier: "mario.rossi"}
	logger.Record(operation.Result{
		Record:     mario,
		Table:      "local_report_certificato_sicurezza_12",
		Category:   category.General,
		Outcome:    operation.OutcomeUploaded,
		RemotePath: "/archive/bruno/CERTIFICATI_SICUREZZA/GENERALE/MARIO.ROSSI-RSSMRA80A01H501Z.pdf",
	})
	logger.Record(operation.Result{
		Record:   source.Record{ID: 2, CompanyCode: "ZZ"},
		Table:    "local_report_certificato_sicurezza_12",
		Category: category.General,
		Outcome:  operation.OutcomeError,
		Err:      operation.ErrMissingUser,
	})
	logger.Record(operation.Result{
		Record:     mario,
		Table:      "local_report_specifica",
		Category:   category.Specific,
		Outcome:    operation.OutcomeSkipped,
		RemotePath: "/archive/bruno/CERTIFICATI_SICUREZZA/SPECIFICA/MARIO.ROSSI-RSSMRA80A01H501Z.pdf",
	})

	lines := strings.Split(strings.TrimSpace(console.String()), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "◆ local_report_certificato_sicurezza_12 • GENERALE", lines[0])
	assert.Contains(t, lines[1], "[OK]")
	assert.Contains(t, lines[2], "[ERROR]")
	assert.Contains(t, lines[2], "record has no user identifier")
	assert.Equal(t, "", lines[3])
	assert.Equal(t, "◆ local_report_specifica • SPECIFICA", lines[4])
	assert.Contains(t, lines[5], "[SKIP]")
	assert.Equal(t, 3, logger.Records())

	assert.Contains(t, events.String(), `"outcome":"uploaded"`)
	assert.Contains(t, events.String(), `"level":"warn"`)
}

func TestLoggerSummary(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	console := &bytes.Buffer{}
	events := &bytes.Buffer{}
	logger := New(console, zerolog.New(events))

	s := status.NewSummary("sync", false)
	s.Finish(operation.Stats{Processed: 4, Uploaded: 2, Skipped: 1, Errors: 1}, nil)
	logger.Summary(s)

	assert.Contains(t, console.String(), "Skipped (existing)")
	assert.Contains(t, events.String(), "Processed: 4 | Uploaded: 2 | Skipped (existing): 1 | Errors: 1")
}

func TestLoggerContext(t *testing.T) {
	logger := New(&bytes.Buffer{}, zerolog.Nop())

	ctx := NewContext(context.Background(), logger)
	assert.Same(t, logger, FromContext(ctx), "logger from context should be the same instance")

	fallback := FromContext(context.Background())
	require.NotNil(t, fallback)
	fallback.Info("dropped")
}
