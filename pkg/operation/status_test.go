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
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsAdd(t *testing.T) {
	var s Stats
	for _, o := range []Outcome{OutcomeUploaded, OutcomeSkipped, OutcomeSkipped, OutcomeError, OutcomePending} {
		s.Add(o)
	}
	assert.Equal(t, Stats{Processed: 5, Uploaded: 1, Skipped: 2, Errors: 1, Pending: 1}, s)
}

func TestStatsString(t *testing.T) {
	tests := []struct {
		name  string
		stats Stats
		want  string
	}{
		{name: "zero", want: "Processed: 0 | Uploaded: 0 | Skipped (existing): 0 | Errors: 0"},
		{name: "full_run", stats: Stats{Processed: 7, Uploaded: 3, Skipped: 2, Errors: 2}, want: "Processed: 7 | Uploaded: 3 | Skipped (existing): 2 | Errors: 2"},
		{name: "dry_run", stats: Stats{Processed: 2, Pending: 2}, want: "Processed: 2 | Uploaded: 0 | Skipped (existing): 0 | Errors: 0 | Pending: 2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.stats.String())
		})
	}
}

func TestOutcomeText(t *testing.T) {
	b, err := json.Marshal(map[string]Outcome{"a": OutcomeUploaded, "b": OutcomeError})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":"uploaded","b":"error"}`, string(b))

	_, err = Outcome(42).MarshalText()
	assert.Error(t, err)
	assert.Equal(t, "outcome(42)", Outcome(42).String())
}
