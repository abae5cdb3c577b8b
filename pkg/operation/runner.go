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
	"context"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/walteh/certsync/pkg/category"
	"github.com/walteh/certsync/pkg/source"
	"gitlab.com/tozd/go/errors"
)

// 🔐 Sessions are the open transports handed to the processor
type Sessions struct {
	Archive Archive
	// Fetcher is nil when the portal was skipped.
	Fetcher Fetcher
	// Close tears down every transport; nil means nothing to release.
	Close func() error
}

// Connector opens the sessions for a run. dryRun asks for the archive only.
type Connector func(ctx context.Context, dryRun bool) (*Sessions, error)

// 🔧 RunOptions configures a run
type RunOptions struct {
	Companies CompanyResolver
	Tables    *category.Mapping
	Source    source.Source
	Directory source.Directory
	Connect   Connector
	// BaseURL prefixes relative certificate links.
	BaseURL string
	// TableFilter is an optional doublestar pattern matched against table names.
	TableFilter string
	// DryRun stops every record after the existence check.
	DryRun bool
	// OnResult is called after each record, in processing order.
	OnResult func(Result)
}

func (o RunOptions) validate() error {
	if o.Companies == nil || o.Companies.Len() == 0 {
		return ErrNoCompanies
	}
	if o.Tables == nil || o.Tables.Len() == 0 {
		return errors.New("no tables configured")
	}
	if o.Source == nil {
		return errors.New("record source is required")
	}
	if o.Directory == nil {
		return errors.New("user directory is required")
	}
	if o.Connect == nil {
		return errors.New("session connector is required")
	}
	if o.TableFilter != "" && !doublestar.ValidatePattern(o.TableFilter) {
		return errors.Errorf("invalid table filter %q", o.TableFilter)
	}
	return nil
}

// 🏃 Run processes every record of every mapped table, one at a time.
// Errors are returned only before the first record: missing companies,
// invalid options or a failed session bootstrap. Sessions opened by Connect
// are closed on every path out of Run.
func Run(ctx context.Context, opts RunOptions) (Stats, error) {
	var stats Stats
	logger := zerolog.Ctx(ctx)

	if err := opts.validate(); err != nil {
		return stats, err
	}

	sessions, err := opts.Connect(ctx, opts.DryRun)
	if err != nil {
		return stats, &bootstrapError{cause: err}
	}
	if sessions == nil {
		return stats, &bootstrapError{cause: errors.New("connector returned no sessions")}
	}
	defer func() {
		if sessions.Close == nil {
			return
		}
		if err := sessions.Close(); err != nil {
			logger.Warn().Err(err).Msg("closing sessions")
		}
	}()

	processor, err := NewProcessor(ProcessorOptions{
		Companies: opts.Companies,
		Directory: opts.Directory,
		Archive:   sessions.Archive,
		Fetcher:   sessions.Fetcher,
		BaseURL:   opts.BaseURL,
		DryRun:    opts.DryRun,
	})
	if err != nil {
		return stats, &bootstrapError{cause: err}
	}

	started := time.Now()
	logger.Info().
		Int("companies", opts.Companies.Len()).
		Int("tables", opts.Tables.Len()).
		Bool("dry_run", opts.DryRun).
		Msg("sync started")

	for _, group := range opts.Tables.Grouped() {
		for _, table := range group.Tables {
			if opts.TableFilter != "" {
				if ok, _ := doublestar.Match(opts.TableFilter, table); !ok {
					logger.Debug().Str("table", table).Msg("table filtered out")
					continue
				}
			}

			records, err := opts.Source.Records(ctx, table)
			if err != nil {
				logger.Error().Err(err).Str("table", table).Msg("skipping table")
				continue
			}

			for _, rec := range records {
				res := processor.Process(ctx, table, group.Category, rec)
				stats.Add(res.Outcome)
				if opts.OnResult != nil {
					opts.OnResult(res)
				}
			}
		}
	}

	logger.Info().
		Int("processed", stats.Processed).
		Int("uploaded", stats.Uploaded).
		Int("skipped", stats.Skipped).
		Int("errors", stats.Errors).
		Int("pending", stats.Pending).
		Dur("duration", time.Since(started)).
		Msg(stats.String())

	return stats, nil
}
