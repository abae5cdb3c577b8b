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

package source

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

var (
	ErrUserNotFound = errors.New("user not found in directory")
	ErrNoDatabase   = errors.New("database url is not configured")
)

// 📄 Record is one row of a certificate report table
type Record struct {
	ID                int64
	CompanyCode       string
	UserIdentifier    string
	CertificateMarkup string
}

// Source lists the records of a report table.
type Source interface {
	Records(ctx context.Context, table string) ([]Record, error)
}

// Directory resolves a user identifier to its tax code.
type Directory interface {
	LookupTaxCode(ctx context.Context, identifier string) (string, error)
}

// Querier is the subset of pgx shared by pools, connections and transactions.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// 🐘 Postgres reads report tables and the user directory of the platform database
type Postgres struct {
	db     Querier
	prefix string
	pool   *pgxpool.Pool
}

var (
	_ Source    = (*Postgres)(nil)
	_ Directory = (*Postgres)(nil)
)

// New wraps an existing querier. prefix is prepended to every table name.
func New(db Querier, prefix string) *Postgres {
	return &Postgres{db: db, prefix: prefix}
}

// 🔌 Open connects a pool to url and checks it is reachable
func Open(ctx context.Context, url, prefix string) (*Postgres, error) {
	if strings.TrimSpace(url) == "" {
		return nil, ErrNoDatabase
	}

	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, errors.Errorf("creating pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Errorf("pinging database: %w", err)
	}

	zerolog.Ctx(ctx).Debug().Str("host", pool.Config().ConnConfig.Host).Msg("database connected")

	return &Postgres{db: pool, prefix: prefix, pool: pool}, nil
}

// Close releases the pool when Open created it.
func (p *Postgres) Close() {
	if p.pool != nil {
		p.pool.Close()
		p.pool = nil
	}
}

func (p *Postgres) table(name string) string {
	return pgx.Identifier{p.prefix + name}.Sanitize()
}

// 📚 Records returns every row of the table ordered by id. NULL columns read as ""
func (p *Postgres) Records(ctx context.Context, table string) ([]Record, error) {
	sql := "SELECT id, aziendasocia::text, utente::text, visualizzacertificato::text FROM " + p.table(table) + " ORDER BY id"

	rows, err := p.db.Query(ctx, sql)
	if err != nil {
		return nil, errors.Errorf("querying %s: %w", table, err)
	}

	records, err := pgx.CollectRows(rows, scanRecord)
	if err != nil {
		return nil, errors.Errorf("reading %s: %w", table, err)
	}

	zerolog.Ctx(ctx).Debug().Str("table", table).Int("records", len(records)).Msg("records loaded")
	return records, nil
}

func scanRecord(row pgx.CollectableRow) (Record, error) {
	var r Record
	var code, user, markup *string
	if err := row.Scan(&r.ID, &code, &user, &markup); err != nil {
		return Record{}, err
	}
	r.CompanyCode = deref(code)
	r.UserIdentifier = deref(user)
	r.CertificateMarkup = deref(markup)
	return r, nil
}

// 🔎 LookupTaxCode finds the user by lowercase username and returns its
// trimmed, uppercased idnumber. A user without one yields "".
func (p *Postgres) LookupTaxCode(ctx context.Context, identifier string) (string, error) {
	sql := "SELECT idnumber FROM " + p.table("user") + " WHERE username = $1 ORDER BY id LIMIT 1"

	var idnumber *string
	err := p.db.QueryRow(ctx, sql, strings.ToLower(identifier)).Scan(&idnumber)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", errors.Errorf("%w: %q", ErrUserNotFound, identifier)
	}
	if err != nil {
		return "", errors.Errorf("looking up %q: %w", identifier, err)
	}

	return strings.ToUpper(strings.TrimSpace(deref(idnumber))), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
