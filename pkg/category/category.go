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

package category

import (
	"strings"

	"gitlab.com/tozd/go/errors"
)

// 🏷️ Category identifies the destination sub-folder of a certificate
type Category int

const (
	General   Category = iota // GENERALE
	Specific                  // SPECIFICA
	Refresher                 // AGGIORNAMENTO
)

// All lists the categories in processing order.
var All = []Category{General, Specific, Refresher}

var ErrUnknownCategory = errors.New("unknown category")

// String returns the enum name
func (c Category) String() string {
	switch c {
	case General:
		return "GENERAL"
	case Specific:
		return "SPECIFIC"
	case Refresher:
		return "REFRESHER"
	default:
		return "UNKNOWN"
	}
}

// 📁 Folder returns the remote sub-folder name for the category
func (c Category) Folder() string {
	switch c {
	case General:
		return "GENERALE"
	case Specific:
		return "SPECIFICA"
	case Refresher:
		return "AGGIORNAMENTO"
	default:
		return ""
	}
}

// 🔍 Parse accepts either the enum name or the folder name, in any case
func Parse(s string) (Category, error) {
	v := strings.ToUpper(strings.TrimSpace(s))
	for _, c := range All {
		if v == c.String() || v == c.Folder() {
			return c, nil
		}
	}
	return 0, errors.Errorf("%w: %q", ErrUnknownCategory, s)
}

// MarshalText implements encoding.TextMarshaler
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (c *Category) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
