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

package operation

import (
	"fmt"

	"github.com/walteh/certsync/pkg/category"
	"github.com/walteh/certsync/pkg/source"
	"gitlab.com/tozd/go/errors"
)

// 📊 Outcome is the final state of one processed record
type Outcome int

const (
	OutcomeError Outcome = iota
	OutcomeUploaded
	OutcomeSkipped
	OutcomePending
)

var outcomeNames = map[Outcome]string{
	OutcomeError:    "error",
	OutcomeUploaded: "uploaded",
	OutcomeSkipped:  "skipped",
	OutcomePending:  "pending",
}

func (o Outcome) String() string {
	if s, ok := outcomeNames[o]; ok {
		return s
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

func (o Outcome) MarshalText() ([]byte, error) {
	if _, ok := outcomeNames[o]; !ok {
		return nil, errors.Errorf("unknown outcome %d", int(o))
	}
	return []byte(o.String()), nil
}

// 📝 Result describes what happened to a record
type Result struct {
	Record     source.Record
	Category   category.Category
	Table      string
	Outcome    Outcome
	RemotePath string
	URL        string
	Err        error
}

// 🧮 Stats counts outcomes over a run
type Stats struct {
	Processed int `json:"processed"`
	Uploaded  int `json:"uploaded"`
	Skipped   int `json:"skipped"`
	Errors    int `json:"errors"`
	Pending   int `json:"pending,omitempty"`
}

// Add counts one processed record.
func (s *Stats) Add(o Outcome) {
	s.Processed++
	switch o {
	case OutcomeUploaded:
		s.Uploaded++
	case OutcomeSkipped:
		s.Skipped++
	case OutcomePending:
		s.Pending++
	default:
		s.Errors++
	}
}

func (s Stats) String() string {
	out := fmt.Sprintf("Processed: %d | Uploaded: %d | Skipped (existing): %d | Errors: %d",
		s.Processed, s.Uploaded, s.Skipped, s.Errors)
	if s.Pending > 0 {
		out += fmt.Sprintf(" | Pending: %d", s.Pending)
	}
	return out
}
