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
	"github.com/walteh/certsync/pkg/log"
	"github.com/walteh/certsync/pkg/session"
	"github.com/walteh/certsync/pkg/source"
	"gitlab.com/tozd/go/errors"
)

func NewCheckCmd(ro *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify database, SFTP and portal credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := ro.Config
			console := log.FromContext(ctx)

			console.Header("checking connections")
			console.Infof("config %s", cfg.Location())
			if cfg.SFTP.KnownHosts == "" {
				console.Warning("no known_hosts configured, the sftp host key is not verified")
			}

			src, err := source.Open(ctx, cfg.Database.URL, cfg.Database.TablePrefix)
			if err != nil {
				return errors.Errorf("database: %w", err)
			}
			src.Close()
			console.Success("database reachable")

			s, err := session.Bootstrap(ctx, session.FromConfig(cfg), session.Options{})
			if err != nil {
				return err
			}
			defer s.Close()

			console.Successf("sftp session open as %s@%s", cfg.SFTP.Username, cfg.SFTP.Host)
			console.Successf("portal login accepted for %s", cfg.Portal.Username)
			return nil
		},
	}

	return cmd
}
