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

package status

import (
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/walteh/certsync/pkg/operation"
	"gitlab.com/tozd/go/errors"
)

// 📋 Summary describes one finished run
type Summary struct {
	RunID    uuid.UUID       `json:"run_id"`
	Command  string          `json:"command"`
	Started  time.Time       `json:"started"`
	Duration time.Duration   `json:"duration_ns"`
	DryRun   bool            `json:"dry_run"`
	Stats    operation.Stats `json:"stats"`
	// Error is set when the run aborted before processing records.
	Error string `json:"error,omitempty"`
}

// 🏭 NewSummary starts a summary for a run beginning now
func NewSummary(command string, dryRun bool) *Summary {
	return &Summary{
		RunID:   uuid.New(),
		Command: command,
		Started: time.Now(),
		DryRun:  dryRun,
	}
}

// Finish records the outcome of the run.
func (s *Summary) Finish(stats operation.Stats, err error) {
	s.Duration = time.Since(s.Started)
	s.Stats = stats
	if err != nil {
		s.Error = err.Error()
	}
}

// Success reports whether the run got past bootstrap.
func (s *Summary) Success() bool {
	return s.Error == ""
}

// JSON encodes the summary.
func (s *Summary) JSON() ([]byte, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, errors.Errorf("encoding summary: %w", err)
	}
	return b, nil
}
