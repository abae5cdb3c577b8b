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
	"path"
	"strings"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/walteh/certsync/pkg/company"
	"github.com/walteh/certsync/pkg/source"
	"gitlab.com/tozd/go/errors"
)

// memArchive is an in-memory Archive that counts calls.
type memArchive struct {
	files     map[string][]byte
	dirs      map[string]bool
	existsErr error
	mkdirErr  error
	putErr    error
	puts      int
}

func newMemArchive() *memArchive {
	return &memArchive{files: map[string][]byte{}, dirs: map[string]bool{}}
}

func (a *memArchive) Exists(ctx context.Context, p string) (bool, error) {
	if a.existsErr != nil {
		return false, a.existsErr
	}
	_, ok := a.files[p]
	return ok || a.dirs[p], nil
}

func (a *memArchive) EnsureDir(ctx context.Context, dir string) error {
	if a.mkdirErr != nil {
		return a.mkdirErr
	}
	for d := dir; d != "/" && d != "." && d != ""; d = path.Dir(d) {
		a.dirs[d] = true
	}
	return nil
}

func (a *memArchive) Put(ctx context.Context, p string, data []byte) error {
	a.puts++
	if a.putErr != nil {
		return a.putErr
	}
	if dir := path.Dir(p); !a.dirs[dir] {
		return errors.Errorf("no such directory %s", dir)
	}
	a.files[p] = append([]byte(nil), data...)
	return nil
}

// mockFetcher records downloads through testify's mock.
type mockFetcher struct {
	mock.Mock
}

func (f *mockFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	args := f.Called(ctx, url)
	var data []byte
	if v := args.Get(0); v != nil {
		data = v.([]byte)
	}
	return data, args.Error(1)
}

// mapDirectory resolves users from a map keyed by lowercase username.
type mapDirectory struct {
	users   map[string]string
	lookups int
}

func (d *mapDirectory) LookupTaxCode(ctx context.Context, identifier string) (string, error) {
	d.lookups++
	tax, ok := d.users[strings.ToLower(identifier)]
	if !ok {
		return "", errors.Errorf("%w: %q", source.ErrUserNotFound, identifier)
	}
	return tax, nil
}

// mapSource serves records per table; tables listed in failing return an error.
type mapSource struct {
	tables  map[string][]source.Record
	failing map[string]bool
	queried []string
}

func (s *mapSource) Records(ctx context.Context, table string) ([]source.Record, error) {
	s.queried = append(s.queried, table)
	if s.failing[table] {
		return nil, errors.Errorf("relation %s does not exist", table)
	}
	return s.tables[table], nil
}

func newResolver(t *testing.T, entries ...company.Entry) *company.Resolver {
	t.Helper()
	r, err := company.NewResolver(entries)
	require.NoError(t, err)
	return r
}

func brunoResolver(t *testing.T) *company.Resolver {
	return newResolver(t, company.Entry{Key: "bruno", Codes: "S03", Path: "/archive/bruno"})
}

var marioRecord = source.Record{
	ID:                1,
	CompanyCode:       "S03",
	UserIdentifier:    "mario.rossi",
	CertificateMarkup: "<a href='/cert.php?id=1'></a>",
}

const marioPath = "/archive/bruno/CERTIFICATI_SICUREZZA/GENERALE/MARIO.ROSSI-RSSMRA80A01H501Z.pdf"
