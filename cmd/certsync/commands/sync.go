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

func NewSyncCmd(ro *opts.RootOpts) *cobra.Command {
	var (
		tables string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Upload every missing certificate to the archive",
		Long: `Sync archives the safety training certificates of every partner company.
It will:
1. Open the SFTP archive and log into the learning platform
2. Read each report table, category by category
3. Skip certificates already archived
4. Download and upload the missing ones
5. Print the run summary`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return execute(cmd.Context(), ro, runArgs{
				command:     "sync",
				tableFilter: tables,
				json:        asJSON,
			})
		},
	}

	cmd.Flags().StringVar(&tables, "tables", "", "only process tables matching this glob")
	cmd.Flags().BoolVar(&asJSON, "json", false, "also print the summary as JSON")

	return cmd
}
