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

package company

import (
	"sort"
	"strings"

	"gitlab.com/tozd/go/errors"
)

var (
	ErrUnknownCode   = errors.New("unknown company code")
	ErrAliasConflict = errors.New("company code mapped to more than one path")
)

// 🏢 Entry is one configured partner company
type Entry struct {
	Key   string // settings key, e.g. bruno_spa
	Name  string // display name
	Codes string // comma-separated company codes used by report rows
	Path  string // remote base path
}

// 🗺️ Resolver maps company codes to remote base paths
type Resolver struct {
	paths map[string]string
}

// 🏭 NewResolver builds the alias map from the configured companies.
// Entries without codes or path are ignored.
func NewResolver(entries []Entry) (*Resolver, error) {
	r := &Resolver{paths: make(map[string]string)}

	for _, e := range entries {
		path := strings.TrimRight(strings.TrimSpace(e.Path), "/")
		if strings.TrimSpace(e.Codes) == "" || path == "" {
			continue
		}
		for _, code := range SplitCodes(e.Codes) {
			if prev, ok := r.paths[code]; ok && prev != path {
				return nil, errors.Errorf("%w: %s -> %s, %s", ErrAliasConflict, code, prev, path)
			}
			r.paths[code] = path
		}
	}

	return r, nil
}

// SplitCodes splits a comma-separated code list, dropping blanks.
func SplitCodes(codes string) []string {
	var out []string
	for _, c := range strings.Split(codes, ",") {
		c = strings.TrimSpace(c)
		if c != "" {
			out = append(out, c)
		}
	}
	return out
}

// 🔍 Resolve returns the base path for a code (exact, case-sensitive match)
func (r *Resolver) Resolve(code string) (string, error) {
	path, ok := r.paths[code]
	if !ok {
		return "", errors.Errorf("%w: %q", ErrUnknownCode, code)
	}
	return path, nil
}

// Len returns the number of configured codes.
func (r *Resolver) Len() int {
	return len(r.paths)
}

// Codes returns the configured codes, sorted.
func (r *Resolver) Codes() []string {
	out := make([]string, 0, len(r.paths))
	for c := range r.paths {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
