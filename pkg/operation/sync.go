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
	"bytes"
	"context"
	"path"
	"strings"

	"github.com/rs/zerolog"
	"github.com/walteh/certsync/pkg/category"
	"github.com/walteh/certsync/pkg/session"
	"github.com/walteh/certsync/pkg/source"
	"gitlab.com/tozd/go/errors"
)

var pdfSignature = []byte("%PDF")

// 🔧 ProcessorOptions wires the collaborators of a Processor
type ProcessorOptions struct {
	Companies CompanyResolver
	Directory source.Directory
	Archive   Archive
	// Fetcher may be nil in dry runs.
	Fetcher Fetcher
	// BaseURL prefixes relative certificate links.
	BaseURL string
	DryRun  bool
}

// ⚙️ Processor walks a single record through lookup, download and upload
type Processor struct {
	companies CompanyResolver
	directory source.Directory
	archive   Archive
	fetcher   Fetcher
	baseURL   string
	dryRun    bool
}

// 🏭 NewProcessor validates the options and builds a Processor
func NewProcessor(opts ProcessorOptions) (*Processor, error) {
	if opts.Companies == nil {
		return nil, errors.New("company resolver is required")
	}
	if opts.Directory == nil {
		return nil, errors.New("user directory is required")
	}
	if opts.Archive == nil {
		return nil, errors.New("archive is required")
	}
	if opts.Fetcher == nil && !opts.DryRun {
		return nil, errors.New("fetcher is required")
	}
	return &Processor{
		companies: opts.Companies,
		directory: opts.Directory,
		archive:   opts.Archive,
		fetcher:   opts.Fetcher,
		baseURL:   opts.BaseURL,
		dryRun:    opts.DryRun,
	}, nil
}

// 🔄 Process runs every check in order. The first failure ends the record
// with OutcomeError; nothing is uploaded unless all checks pass.
func (p *Processor) Process(ctx context.Context, table string, c category.Category, rec source.Record) Result {
	res := Result{Record: rec, Category: c, Table: table}
	logger := zerolog.Ctx(ctx).With().
		Str("table", table).
		Int64("record_id", rec.ID).
		Str("company", rec.CompanyCode).
		Str("user", rec.UserIdentifier).
		Logger()

	fail := func(err error) Result {
		res.Outcome = OutcomeError
		res.Err = err
		logger.Debug().Err(err).Msg("record failed")
		return res
	}

	base, err := p.companies.Resolve(strings.TrimSpace(rec.CompanyCode))
	if err != nil {
		return fail(err)
	}

	user := strings.TrimSpace(rec.UserIdentifier)
	if user == "" {
		return fail(ErrMissingUser)
	}

	taxCode, err := p.directory.LookupTaxCode(ctx, user)
	if err != nil {
		return fail(err)
	}
	if taxCode == "" {
		return fail(errors.Errorf("%w: %q", ErrMissingTaxCode, user))
	}

	res.RemotePath = DestinationPath(base, c, user, taxCode)

	exists, err := p.archive.Exists(ctx, res.RemotePath)
	if err != nil {
		return fail(errors.Errorf("checking destination: %w", err))
	}
	if exists {
		res.Outcome = OutcomeSkipped
		logger.Debug().Str("path", res.RemotePath).Msg("certificate already archived")
		return res
	}

	ref, ok := session.ExtractCertificateURL(rec.CertificateMarkup)
	if !ok {
		return fail(ErrNoCertificateURL)
	}
	res.URL = session.ResolveURL(p.baseURL, ref)

	if p.dryRun {
		res.Outcome = OutcomePending
		return res
	}

	data, err := p.fetcher.Fetch(ctx, res.URL)
	if err != nil {
		return fail(errors.Errorf("downloading certificate: %w", err))
	}
	if len(data) == 0 {
		return fail(ErrEmptyResponse)
	}
	if !bytes.HasPrefix(data, pdfSignature) {
		return fail(ErrNotPDF)
	}

	if err := p.archive.EnsureDir(ctx, path.Dir(res.RemotePath)); err != nil {
		return fail(errors.Errorf("creating destination directory: %w", err))
	}
	if err := p.archive.Put(ctx, res.RemotePath, data); err != nil {
		return fail(errors.Errorf("uploading certificate: %w", err))
	}

	res.Outcome = OutcomeUploaded
	logger.Debug().Str("path", res.RemotePath).Int("bytes", len(data)).Msg("certificate uploaded")
	return res
}
