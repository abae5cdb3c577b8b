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

// 📋 Table binds one source report table to the category it feeds
type Table struct {
	Name     string
	Category Category
}

// 🗺️ Mapping is the immutable table-to-category configuration
type Mapping struct {
	groups map[Category][]string
}

// DefaultTables returns the report tables of the standard deployment.
func DefaultTables() []Table {
	return []Table{
		{Name: "local_report_certificato_sicurezza_12", Category: General},
		{Name: "local_report_certificato_sicurezza_22", Category: General},
		{Name: "local_report_specifica", Category: Specific},
		{Name: "local_report_aggiornamento", Category: Refresher},
		{Name: "local_report_aggiornamento2023", Category: Refresher},
	}
}

// 🏭 NewMapping builds a mapping, keeping table order within each category
func NewMapping(tables []Table) (*Mapping, error) {
	m := &Mapping{groups: make(map[Category][]string)}
	seen := make(map[string]Category)

	for _, t := range tables {
		name := strings.TrimSpace(t.Name)
		if name == "" {
			return nil, errors.New("table name is empty")
		}
		if t.Category.Folder() == "" {
			return nil, errors.Errorf("%w: table %s", ErrUnknownCategory, name)
		}
		if prev, ok := seen[name]; ok {
			return nil, errors.Errorf("table %s mapped twice (%s, %s)", name, prev, t.Category)
		}
		seen[name] = t.Category
		m.groups[t.Category] = append(m.groups[t.Category], name)
	}

	return m, nil
}

// Group is one category together with the tables that feed it.
type Group struct {
	Category Category
	Tables   []string
}

// 🔄 Grouped returns the non-empty groups in category order
func (m *Mapping) Grouped() []Group {
	out := make([]Group, 0, len(All))
	for _, c := range All {
		tables := m.groups[c]
		if len(tables) == 0 {
			continue
		}
		out = append(out, Group{Category: c, Tables: append([]string(nil), tables...)})
	}
	return out
}

// Len returns the number of tables in the mapping.
func (m *Mapping) Len() int {
	n := 0
	for _, tables := range m.groups {
		n += len(tables)
	}
	return n
}
