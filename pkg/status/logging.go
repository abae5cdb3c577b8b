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
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/pterm/pterm"
	"gitlab.com/tozd/go/errors"
)

// 📊 RenderSummary writes the end-of-run counters as a table
func RenderSummary(w io.Writer, s *Summary) error {
	data := pterm.TableData{
		{"Processed", "Uploaded", "Skipped (existing)", "Errors"},
		{
			strconv.Itoa(s.Stats.Processed),
			strconv.Itoa(s.Stats.Uploaded),
			strconv.Itoa(s.Stats.Skipped),
			strconv.Itoa(s.Stats.Errors),
		},
	}
	if s.DryRun {
		data[0] = append(data[0], "Pending")
		data[1] = append(data[1], strconv.Itoa(s.Stats.Pending))
	}

	table, err := pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(data).Srender()
	if err != nil {
		return errors.Errorf("rendering summary table: %w", err)
	}

	if _, err := fmt.Fprintf(w, "%s\nrun %s finished in %s\n", table, s.RunID, s.Duration.Round(time.Millisecond)); err != nil {
		return errors.Errorf("writing summary: %w", err)
	}
	return nil
}
