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

package main

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/certsync/cmd/certsync/commands"
	"github.com/walteh/certsync/cmd/certsync/opts"
	"github.com/walteh/certsync/pkg/config"
	"github.com/walteh/certsync/pkg/log"
	"gitlab.com/tozd/go/errors"
)

var (
	// Flags
	configFile string
	debug      bool
)

// newRootCmd builds the command tree; options are filled once flags are parsed
func newRootCmd() *cobra.Command {
	ro := &opts.RootOpts{}

	cmd := &cobra.Command{
		Use:   "certsync",
		Short: "Archive safety training certificates on the company SFTP servers",
		Long: `certsync reads the certificate report tables of the learning platform,
downloads every certificate that is not archived yet and uploads it to
{company path}/CERTIFICATI_SICUREZZA/{category}/{USER}-{TAXCODE}.pdf.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			ctx := setupLogging(cmd)

			cfg, err := config.Load(ctx, configFile)
			if err != nil {
				return errors.Errorf("loading config: %w", err)
			}

			zerolog.Ctx(ctx).Debug().Str("path", cfg.Location()).Msg("config loaded")

			ro.Config = cfg
			ro.Console = log.New(os.Stdout, *zerolog.Ctx(ctx))
			cmd.SetContext(log.NewContext(ctx, ro.Console))
			return nil
		},
	}

	addRootFlags(cmd)

	cmd.AddCommand(
		commands.NewSyncCmd(ro),
		commands.NewStatusCmd(ro),
		commands.NewCheckCmd(ro),
		commands.NewCompaniesCmd(ro),
	)

	return cmd
}

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVarP(&configFile, "config", "c", "certsync.yaml", "config file path (.yaml, .hcl or .json)")
	cmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug logging")
}

// setupLogging attaches a zerolog logger to the command context
func setupLogging(cmd *cobra.Command) context.Context {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(os.Stderr).
		Level(level).
		With().
		Timestamp().
		Str("command", cmd.Name()).
		Logger()
	return logger.WithContext(cmd.Context())
}
