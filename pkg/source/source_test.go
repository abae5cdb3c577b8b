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
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"
)

// fakeRows serves fixed rows through the pgx.Rows interface.
type fakeRows struct {
	rows   [][]any
	idx    int
	err    error
	closed bool
}

func (r *fakeRows) Close()                                       { r.closed = true }
func (r *fakeRows) Err() error                                   { return r.err }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func (r *fakeRows) Next() bool {
	if r.closed || r.idx >= len(r.rows) {
		return false
	}
	r.idx++
	return true
}

func (r *fakeRows) Values() ([]any, error) { return r.rows[r.idx-1], nil }

func (r *fakeRows) Scan(dest ...any) error { return scanInto(r.rows[r.idx-1], dest) }

type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	return scanInto(r.values, dest)
}

func scanInto(values []any, dest []any) error {
	if len(values) != len(dest) {
		return fmt.Errorf("scan: %d values into %d targets", len(values), len(dest))
	}
	for i, d := range dest {
		switch d := d.(type) {
		case *int64:
			*d = values[i].(int64)
		case **string:
			if values[i] == nil {
				*d = nil
				continue
			}
			s := values[i].(string)
			*d = &s
		default:
			return fmt.Errorf("scan: unsupported target %T", d)
		}
	}
	return nil
}

type fakeQuerier struct {
	sql      []string
	args     [][]any
	rows     *fakeRows
	queryErr error
	row      fakeRow
}

func (q *fakeQuerier) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	q.sql = append(q.sql, sql)
	q.args = append(q.args, args)
	if q.queryErr != nil {
		return nil, q.queryErr
	}
	return q.rows, nil
}

func (q *fakeQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	q.sql = append(q.sql, sql)
	q.args = append(q.args, args)
	return q.row
}

func TestRecords(t *testing.T) {
	tests := []struct {
		name        string
		querier     *fakeQuerier
		want        []Record
		wantErr     bool
		errContains string
	}{
		{
			name: "rows_with_nulls",
			querier: &fakeQuerier{rows: &fakeRows{rows: [][]any{
				{int64(1), "S03", "mario.rossi", "<a href='/cert.php?id=1'></a>"},
				{int64(2), nil, "anna.bianchi", nil},
			}}},
			want: []Record{
				{ID: 1, CompanyCode: "S03", UserIdentifier: "mario.rossi", CertificateMarkup: "<a href='/cert.php?id=1'></a>"},
				{ID: 2, CompanyCode: "", UserIdentifier: "anna.bianchi", CertificateMarkup: ""},
			},
		},
		{
			name:    "empty_table",
			querier: &fakeQuerier{rows: &fakeRows{}},
			want:    []Record{},
		},
		{
			name:        "query_failure",
			querier:     &fakeQuerier{queryErr: errors.New("relation does not exist")},
			wantErr:     true,
			errContains: "querying local_report_specifica",
		},
		{
			name:        "iteration_failure",
			querier:     &fakeQuerier{rows: &fakeRows{err: errors.New("conn reset")}},
			wantErr:     true,
			errContains: "reading local_report_specifica",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := New(tt.querier, "mdl_")
			got, err := src.Records(context.Background(), "local_report_specifica")
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, tt.querier.rows.closed, "rows must be closed")
			require.Len(t, tt.querier.sql, 1)
			assert.Contains(t, tt.querier.sql[0], `FROM "mdl_local_report_specifica" ORDER BY id`)
		})
	}
}

func TestRecordsQuotesTableName(t *testing.T) {
	q := &fakeQuerier{rows: &fakeRows{}}
	_, err := New(q, "mdl_").Records(context.Background(), `x"; DROP TABLE y; --`)
	require.NoError(t, err)
	assert.Contains(t, q.sql[0], `FROM "mdl_x""; DROP TABLE y; --" ORDER BY id`)
}

func TestLookupTaxCode(t *testing.T) {
	tests := []struct {
		name    string
		row     fakeRow
		want    string
		wantErr error
	}{
		{name: "found", row: fakeRow{values: []any{" rssmra80a01h501z "}}, want: "RSSMRA80A01H501Z"},
		{name: "null_idnumber", row: fakeRow{values: []any{nil}}, want: ""},
		{name: "missing_user", row: fakeRow{err: pgx.ErrNoRows}, wantErr: ErrUserNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := &fakeQuerier{row: tt.row}
			got, err := New(q, "mdl_").LookupTaxCode(context.Background(), "Mario.Rossi")
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Contains(t, err.Error(), `"Mario.Rossi"`)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Contains(t, q.sql[0], `FROM "mdl_user" WHERE username = $1`)
			assert.Equal(t, []any{"mario.rossi"}, q.args[0])
		})
	}
}

func TestLookupTaxCodeDriverError(t *testing.T) {
	q := &fakeQuerier{row: fakeRow{err: errors.New("timeout")}}
	_, err := New(q, "mdl_").LookupTaxCode(context.Background(), "mario.rossi")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUserNotFound)
	assert.Contains(t, err.Error(), "looking up")
}

func TestOpenWithoutURL(t *testing.T) {
	_, err := Open(context.Background(), " ", "mdl_")
	assert.ErrorIs(t, err, ErrNoDatabase)
}
