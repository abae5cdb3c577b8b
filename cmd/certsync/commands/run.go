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
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/walteh/certsync/cmd/certsync/opts"
	"github.com/walteh/certsync/pkg/company"
	"github.com/walteh/certsync/pkg/config"
	"github.com/walteh/certsync/pkg/log"
	"github.com/walteh/certsync/pkg/notify"
	"github.com/walteh/certsync/pkg/operation"
	"github.com/walteh/certsync/pkg/session"
	"github.com/walteh/certsync/pkg/source"
	"github.com/walteh/certsync/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// runArgs selects the flavour of a run
type runArgs struct {
	command     string
	dryRun      bool
	tableFilter string
	json        bool
}

// 🏃 execute performs a full or dry run and hands the summary to every reporter
func execute(ctx context.Context, ro *opts.RootOpts, args runArgs) error {
	summary := status.NewSummary(args.command, args.dryRun)
	logger := zerolog.Ctx(ctx).With().Str("run_id", summary.RunID.String()).Logger()
	ctx = logger.WithContext(ctx)
	console := log.FromContext(ctx).WithZerolog(logger)

	if args.dryRun {
		console.Header("checking which certificates are missing")
	} else {
		console.Header("syncing safety certificates")
	}

	stats, err := run(ctx, ro.Config, args, console.Record)
	summary.Finish(stats, err)

	switch {
	case err != nil:
		console.Error(err.Error())
	case console.Records() == 0:
		console.Info("no certificate records found")
	case stats.Errors > 0:
		console.Warning(fmt.Sprintf("%d records failed, see the log for details", stats.Errors))
	}
	report(ctx, ro, console, summary, args.json)
	return err
}

func run(ctx context.Context, cfg *config.Config, args runArgs, onResult func(operation.Result)) (operation.Stats, error) {
	companies, err := company.NewResolver(cfg.CompanyEntries())
	if err != nil {
		return operation.Stats{}, errors.Errorf("building company map: %w", err)
	}
	if companies.Len() == 0 {
		return operation.Stats{}, operation.ErrNoCompanies
	}

	tables, err := cfg.TableMapping()
	if err != nil {
		return operation.Stats{}, errors.Errorf("building table map: %w", err)
	}

	src, err := source.Open(ctx, cfg.Database.URL, cfg.Database.TablePrefix)
	if err != nil {
		return operation.Stats{}, errors.Errorf("opening record source: %w", err)
	}
	defer src.Close()

	return operation.Run(ctx, operation.RunOptions{
		Companies:   companies,
		Tables:      tables,
		Source:      src,
		Directory:   src,
		Connect:     connector(cfg),
		BaseURL:     cfg.Portal.BaseURL,
		TableFilter: args.tableFilter,
		DryRun:      args.dryRun,
		OnResult:    onResult,
	})
}

// connector adapts the session bootstrap to the operation package
func connector(cfg *config.Config) operation.Connector {
	return func(ctx context.Context, dryRun bool) (*operation.Sessions, error) {
		s, err := session.Bootstrap(ctx, session.FromConfig(cfg), session.Options{SkipPortal: dryRun})
		if err != nil {
			return nil, err
		}
		out := &operation.Sessions{Archive: s.Archive(), Close: s.Close}
		if p := s.Portal(); p != nil {
			out.Fetcher = p
		}
		return out, nil
	}
}

// 📣 report sends the summary to the console, stdout, metrics and the queue.
// Reporter failures are logged only.
func report(ctx context.Context, ro *opts.RootOpts, console *log.Logger, s *status.Summary, asJSON bool) {
	logger := zerolog.Ctx(ctx)

	console.Summary(s)

	if asJSON {
		b, err := s.JSON()
		if err != nil {
			logger.Warn().Err(err).Msg("encoding summary")
		} else {
			fmt.Fprintln(os.Stdout, string(b))
		}
	}

	if path := ro.Config.Metrics.Textfile; path != "" {
		m := status.NewMetrics()
		m.Observe(s)
		if err := m.WriteTextfile(path); err != nil {
			logger.Warn().Err(err).Str("path", path).Msg("writing metrics")
		}
	}

	if url := ro.Config.Notify.AMQPURL; url != "" {
		pub, err := notify.Dial(url, ro.Config.Notify.Queue)
		if err != nil {
			logger.Warn().Err(err).Msg("connecting to notification broker")
			return
		}
		defer pub.Close()
		if err := pub.Publish(ctx, s); err != nil {
			logger.Warn().Err(err).Msg("publishing summary")
		}
	}
}
