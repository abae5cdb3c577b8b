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

package config

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/certsync/pkg/category"
)

func TestJSONParsing(t *testing.T) {
	tests := []struct {
		name        string
		json        string
		wantErr     bool
		errContains string
		check       func(t *testing.T, cfg *Config)
	}{
		{
			name: "full_document",
			json: `{
				"sftp": {"host": "sftp.example.com", "username": "certs", "timeout": "45s"},
				"portal": {"base_url": "https://learn.example.com", "username": "bot", "downloads_per_second": 2.5},
				"database": {"url": "postgres://moodle@db/moodle", "table_prefix": "m_"},
				"companies": [{"key": "comet", "codes": "S07", "path": "/archive/comet"}],
				"tables": [{"name": "local_report_aggiornamento", "category": "AGGIORNAMENTO"}],
				"metrics": {"textfile": "/var/lib/node_exporter/certsync.prom"}
			}`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "45s", cfg.SFTP.Timeout.Std().String())
				assert.Equal(t, 2.5, cfg.Portal.DownloadsPerSecond)
				assert.Equal(t, "m_", cfg.Database.TablePrefix)
				require.Len(t, cfg.Tables, 1)
				assert.Equal(t, category.Refresher, cfg.Tables[0].Category)
				assert.Equal(t, "/var/lib/node_exporter/certsync.prom", cfg.Metrics.Textfile)
			},
		},
		{
			name:        "unknown_field",
			json:        `{"sftp": {"host": "h", "hostname": "x"}}`,
			wantErr:     true,
			errContains: "parsing JSON",
		},
		{
			name:        "bad_category",
			json:        `{"tables": [{"name": "t", "category": "FIRE"}]}`,
			wantErr:     true,
			errContains: "parsing JSON",
		},
		{
			name:        "malformed",
			json:        `{"sftp": `,
			wantErr:     true,
			errContains: "parsing JSON",
		},
	}

	parser := &JSONParser{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := parser.Parse(context.Background(), []byte(tt.json))
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}
