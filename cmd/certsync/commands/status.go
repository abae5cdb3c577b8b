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

package commands

import (
	"github.com/spf13/cobra"
	"github.com/walteh/certsync/cmd/certsync/opts"
)

func NewStatusCmd(ro *opts.RootOpts) *cobra.Command {
	var (
		tables string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "List certificates that still need to be archived",
		Long: `Status runs every check of a sync without downloading or uploading.
Only the SFTP archive is opened; records whose certificate is missing are
reported as pending.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return execute(cmd.Context(), ro, runArgs{
				command:     "status",
				dryRun:      true,
				tableFilter: tables,
				json:        asJSON,
			})
		},
	}

	cmd.Flags().StringVar(&tables, "tables", "", "only process tables matching this glob")
	cmd.Flags().BoolVar(&asJSON, "json", false, "also print the summary as JSON")

	return cmd
}
