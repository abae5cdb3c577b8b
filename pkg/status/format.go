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
	"strings"

	"github.com/fatih/color"
	"github.com/walteh/certsync/pkg/operation"
)

// 🎨 Display configuration
const (
	lineIndent = 4  // spaces to indent record lines
	tagWidth   = 9  // width of the [OUTCOME] tag
	userWidth  = 28 // width of the user column
)

var (
	okTag      = color.New(color.FgGreen).SprintFunc()
	skipTag    = color.New(color.FgHiBlack).SprintFunc()
	errorTag   = color.New(color.FgRed).SprintFunc()
	pendingTag = color.New(color.FgYellow).SprintFunc()
)

// Tag returns the bracketed label printed for an outcome.
func Tag(o operation.Outcome) string {
	switch o {
	case operation.OutcomeUploaded:
		return "[OK]"
	case operation.OutcomeSkipped:
		return "[SKIP]"
	case operation.OutcomePending:
		return "[PENDING]"
	default:
		return "[ERROR]"
	}
}

// 🎯 FormatOutcome renders a processed record as one coloured line
func FormatOutcome(res operation.Result) string {
	tag := fmt.Sprintf("%-*s", tagWidth, Tag(res.Outcome))
	switch res.Outcome {
	case operation.OutcomeUploaded:
		tag = okTag(tag)
	case operation.OutcomeSkipped:
		tag = skipTag(tag)
	case operation.OutcomePending:
		tag = pendingTag(tag)
	default:
		tag = errorTag(tag)
	}

	user := res.Record.UserIdentifier
	if user == "" {
		user = fmt.Sprintf("#%d", res.Record.ID)
	}

	var detail string
	switch {
	case res.Err != nil:
		detail = res.Err.Error()
	case res.Outcome == operation.OutcomePending:
		detail = res.RemotePath + " <- " + res.URL
	default:
		detail = res.RemotePath
	}

	return fmt.Sprintf("%s%s %-6s %-*s %s",
		strings.Repeat(" ", lineIndent),
		tag,
		res.Record.CompanyCode,
		userWidth, user,
		detail,
	)
}
