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
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/walteh/certsync/cmd/certsync/opts"
	"github.com/walteh/certsync/pkg/company"
	"github.com/walteh/certsync/pkg/log"
	"gitlab.com/tozd/go/errors"
)

func NewCompaniesCmd(ro *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "companies",
		Short: "Print the company code to archive path map",
		RunE: func(cmd *cobra.Command, args []string) error {
			resolver, err := company.NewResolver(ro.Config.CompanyEntries())
			if err != nil {
				return errors.Errorf("building company map: %w", err)
			}

			data := pterm.TableData{{"Code", "Archive path"}}
			for _, code := range resolver.Codes() {
				path, err := resolver.Resolve(code)
				if err != nil {
					return err
				}
				data = append(data, []string{code, path})
			}

			out, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
			if err != nil {
				return errors.Errorf("rendering companies: %w", err)
			}
			fmt.Fprintln(os.Stdout, out)

			tables, err := ro.Config.TableMapping()
			if err != nil {
				return err
			}
			for _, g := range tables.Grouped() {
				log.FromContext(cmd.Context()).Infof("%s: %v", g.Category.Folder(), g.Tables)
			}
			return nil
		},
	}

	return cmd
}
