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
	"fmt"
	"path"
	"strings"

	"github.com/walteh/certsync/pkg/category"
	"gitlab.com/tozd/go/errors"
)

const certificatesDir = "CERTIFICATI_SICUREZZA"

var (
	ErrMissingUser      = errors.New("record has no user identifier")
	ErrMissingTaxCode   = errors.New("user has no tax code")
	ErrNoCertificateURL = errors.New("no certificate link in markup")
	ErrEmptyResponse    = errors.New("empty certificate download")
	ErrNotPDF           = errors.New("downloaded certificate is not a pdf")
	ErrNoCompanies      = errors.New("no companies configured")
	ErrBootstrap        = errors.New("session bootstrap failed")
)

// 📦 Archive is the remote file store certificates are uploaded to
type Archive interface {
	// Exists reports whether path is present
	Exists(ctx context.Context, path string) (bool, error)
	// EnsureDir creates dir and its parents, succeeding when it already exists
	EnsureDir(ctx context.Context, dir string) error
	// Put writes data to path, replacing any previous content
	Put(ctx context.Context, path string, data []byte) error
}

// 🌐 Fetcher downloads a certificate over the authenticated portal session
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// 🏢 CompanyResolver maps a company code to its archive base path
type CompanyResolver interface {
	Resolve(code string) (string, error)
	Len() int
}

// 🗺️ DestinationPath builds {base}/CERTIFICATI_SICUREZZA/{FOLDER}/{USER}-{TAX}.pdf
func DestinationPath(base string, c category.Category, user, taxCode string) string {
	name := fmt.Sprintf("%s-%s.pdf", strings.ToUpper(user), strings.ToUpper(taxCode))
	return path.Join(strings.TrimRight(base, "/"), certificatesDir, c.Folder(), name)
}

// bootstrapError keeps both ErrBootstrap and the session failure in the chain.
type bootstrapError struct {
	cause error
}

func (e *bootstrapError) Error() string {
	return ErrBootstrap.Error() + ": " + e.cause.Error()
}

func (e *bootstrapError) Unwrap() []error {
	return []error{ErrBootstrap, e.cause}
}
