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
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/certsync/pkg/category"
)

const yamlConfig = `
sftp:
  host: sftp.example.com
  username: certs
  key_file: archive.key
portal:
  base_url: https://learn.example.com/
  username: sync-bot
  password: hunter2
  download_timeout: 90s
database:
  url: postgres://moodle@localhost/moodle
companies:
  - key: bruno_spa
    name: BRUNO SPA
    codes: "S03, S3"
    path: /archive/bruno/
  - key: comet
    name: COMET
    codes: ""
    path: ""
`

const hclConfigText = `
sftp {
  host     = "sftp.example.com"
  port     = 2222
  username = "certs"
  timeout  = "10s"
}

portal {
  base_url = "https://learn.example.com"
  username = "sync-bot"
  password = "hunter2"
}

database {
  url          = "postgres://moodle@localhost/moodle"
  table_prefix = "m_"
}

company "bruno_spa" {
  name  = "BRUNO SPA"
  codes = "S03"
  path  = "/archive/bruno"
}

table "local_report_specifica" {
  category = "SPECIFICA"
}

table "local_report_extra" {
  category = "refresher"
}
`

const jsonConfig = `{
  "sftp": {"host": "sftp.example.com", "username": "certs"},
  "portal": {"base_url": "https://learn.example.com", "username": "sync-bot", "password": "x"},
  "database": {"url": "postgres://localhost/moodle"},
  "companies": [{"key": "dimo_spa", "codes": "S05", "path": "/archive/dimo"}],
  "tables": [{"name": "local_report_specifica", "category": "SPECIFIC"}]
}`

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		file        string
		content     string
		env         map[string]string
		wantErr     bool
		errContains string
		check       func(t *testing.T, cfg *Config)
	}{
		{
			name:    "yaml_with_defaults",
			file:    "certsync.yaml",
			content: yamlConfig,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 22, cfg.SFTP.Port, "port should default to 22")
				assert.Equal(t, "keys", cfg.SFTP.KeyDir)
				assert.Equal(t, "archive.key", cfg.SFTP.KeyFile)
				assert.Equal(t, 30*time.Second, cfg.SFTP.Timeout.Std())
				assert.Equal(t, "https://learn.example.com", cfg.Portal.BaseURL, "trailing slash should be trimmed")
				assert.Equal(t, "/login/index.php", cfg.Portal.LoginPath)
				assert.Equal(t, "/my/", cfg.Portal.VerifyPath)
				assert.Equal(t, 90*time.Second, cfg.Portal.DownloadTimeout.Std())
				assert.Equal(t, DefaultMaxRedirects, cfg.Portal.RedirectLimit())
				assert.Equal(t, "mdl_", cfg.Database.TablePrefix)
				assert.Len(t, cfg.Tables, len(category.DefaultTables()), "default tables should be used")
				require.Len(t, cfg.Companies, 2)
				assert.NotEmpty(t, cfg.Location())
			},
		},
		{
			name:    "hcl_blocks",
			file:    "certsync.hcl",
			content: hclConfigText,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 2222, cfg.SFTP.Port)
				assert.Equal(t, 10*time.Second, cfg.SFTP.Timeout.Std())
				assert.Equal(t, "m_", cfg.Database.TablePrefix)
				require.Len(t, cfg.Companies, 1)
				assert.Equal(t, "bruno_spa", cfg.Companies[0].Key)
				require.Len(t, cfg.Tables, 2)
				assert.Equal(t, category.Specific, cfg.Tables[0].Category)
				assert.Equal(t, category.Refresher, cfg.Tables[1].Category)
			},
		},
		{
			name:    "explicit_zero_redirects",
			file:    "certsync.yaml",
			content: strings.Replace(yamlConfig, "download_timeout: 90s", "download_timeout: 90s\n  max_redirects: 0", 1),
			check: func(t *testing.T, cfg *Config) {
				require.NotNil(t, cfg.Portal.MaxRedirects)
				assert.Equal(t, 0, cfg.Portal.RedirectLimit(), "explicit zero should survive defaults")
			},
		},
		{
			name:    "json",
			file:    "certsync.json",
			content: jsonConfig,
			check: func(t *testing.T, cfg *Config) {
				require.Len(t, cfg.Tables, 1)
				assert.Equal(t, category.Specific, cfg.Tables[0].Category)
			},
		},
		{
			name:    "env_overrides_secrets",
			file:    "certsync.yaml",
			content: yamlConfig,
			env: map[string]string{
				EnvPortalPassword: "from-env",
				EnvDatabaseURL:    "postgres://env/moodle",
				EnvKeyPassphrase:  "secret",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "from-env", cfg.Portal.Password)
				assert.Equal(t, "postgres://env/moodle", cfg.Database.URL)
				assert.Equal(t, "secret", cfg.SFTP.KeyPassphrase)
			},
		},
		{
			name:        "unknown_yaml_field",
			file:        "certsync.yaml",
			content:     yamlConfig + "\nbogus: true\n",
			wantErr:     true,
			errContains: "parsing YAML",
		},
		{
			name:        "unsupported_extension",
			file:        "certsync.toml",
			content:     "",
			wantErr:     true,
			errContains: "no parser found",
		},
		{
			name:        "missing_required_fields",
			file:        "certsync.yaml",
			content:     "sftp:\n  host: h\nportal:\n  base_url: https://x\n",
			wantErr:     true,
			errContains: "SFTP.Username",
		},
		{
			name: "alias_conflict",
			file: "certsync.yaml",
			content: yamlConfig + `  - key: other
    codes: S3
    path: /archive/other
`,
			wantErr:     true,
			errContains: "companies",
		},
		{
			name:        "bad_category",
			file:        "certsync.yaml",
			content:     yamlConfig + "tables:\n  - name: t\n    category: FIRE\n",
			wantErr:     true,
			errContains: "unknown category",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := writeConfig(t, tt.file, tt.content)

			cfg, err := Load(context.Background(), path)
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

func TestCompanyEntriesAndMapping(t *testing.T) {
	cfg := &Config{
		Companies: []CompanyConfig{{Key: "bruno_spa", Name: "BRUNO SPA", Codes: "S03", Path: "/archive/bruno"}},
	}
	cfg.ApplyDefaults()

	entries := cfg.CompanyEntries()
	require.Len(t, entries, 1)
	assert.Equal(t, "S03", entries[0].Codes)

	mapping, err := cfg.TableMapping()
	require.NoError(t, err)
	assert.Equal(t, 5, mapping.Len())
}

func TestDurationUnmarshalText(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalText([]byte(" 45s ")))
	assert.Equal(t, 45*time.Second, d.Std())

	assert.Error(t, d.UnmarshalText([]byte("soon")))

	b, err := Duration(2 * time.Minute).MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "2m0s", string(b))
}
