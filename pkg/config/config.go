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
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/walteh/certsync/pkg/category"
	"github.com/walteh/certsync/pkg/company"
	"gitlab.com/tozd/go/errors"
)

// 🔑 Environment variables that override secrets from the config file
const (
	EnvKeyPassphrase  = "CERTSYNC_SFTP_KEY_PASSPHRASE"
	EnvPortalPassword = "CERTSYNC_PORTAL_PASSWORD"
	EnvDatabaseURL    = "CERTSYNC_DATABASE_URL"
)

// ⏱️ Duration is a time.Duration that decodes from strings like "30s"
type Duration time.Duration

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(b)))
	if err != nil {
		return errors.Errorf("parsing duration %q: %w", string(b), err)
	}
	*d = Duration(v)
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// 📡 SFTPConfig holds the archive connection settings
type SFTPConfig struct {
	Host          string   `yaml:"host" json:"host" validate:"required"`
	Port          int      `yaml:"port,omitempty" json:"port,omitempty" validate:"min=1,max=65535"`
	Username      string   `yaml:"username" json:"username" validate:"required"`
	KeyDir        string   `yaml:"key_dir,omitempty" json:"key_dir,omitempty"`
	KeyFile       string   `yaml:"key_file,omitempty" json:"key_file,omitempty" validate:"required"`
	KeyPassphrase string   `yaml:"key_passphrase,omitempty" json:"key_passphrase,omitempty"`
	KnownHosts    string   `yaml:"known_hosts,omitempty" json:"known_hosts,omitempty"`
	Timeout       Duration `yaml:"timeout,omitempty" json:"timeout,omitempty" validate:"gt=0"`
}

// 🌐 PortalConfig holds the learning platform login and download settings
type PortalConfig struct {
	BaseURL            string   `yaml:"base_url" json:"base_url" validate:"required,url"`
	Username           string   `yaml:"username" json:"username" validate:"required"`
	Password           string   `yaml:"password,omitempty" json:"password,omitempty" validate:"required"`
	LoginPath          string   `yaml:"login_path,omitempty" json:"login_path,omitempty" validate:"required,startswith=/"`
	VerifyPath         string   `yaml:"verify_path,omitempty" json:"verify_path,omitempty" validate:"required,startswith=/"`
	Timeout            Duration `yaml:"timeout,omitempty" json:"timeout,omitempty" validate:"gt=0"`
	DownloadTimeout    Duration `yaml:"download_timeout,omitempty" json:"download_timeout,omitempty" validate:"gt=0"`
	MaxRedirects       *int     `yaml:"max_redirects,omitempty" json:"max_redirects,omitempty" validate:"omitempty,min=0,max=20"`
	DownloadsPerSecond float64  `yaml:"downloads_per_second,omitempty" json:"downloads_per_second,omitempty" validate:"min=0"`
	MaxDownloadBytes   int64    `yaml:"max_download_bytes,omitempty" json:"max_download_bytes,omitempty" validate:"min=0"`
}

// DefaultMaxRedirects is used when max_redirects is not set. An explicit 0
// disables redirects.
const DefaultMaxRedirects = 5

// RedirectLimit returns the configured redirect cap or the default.
func (p PortalConfig) RedirectLimit() int {
	if p.MaxRedirects == nil {
		return DefaultMaxRedirects
	}
	return *p.MaxRedirects
}

// 🗄️ DatabaseConfig points at the platform database holding the report tables
type DatabaseConfig struct {
	URL         string `yaml:"url,omitempty" json:"url,omitempty" validate:"required"`
	TablePrefix string `yaml:"table_prefix,omitempty" json:"table_prefix,omitempty"`
}

// 🏢 CompanyConfig is one partner company
type CompanyConfig struct {
	Key   string `yaml:"key" json:"key" validate:"required"`
	Name  string `yaml:"name,omitempty" json:"name,omitempty"`
	Codes string `yaml:"codes" json:"codes"`
	Path  string `yaml:"path" json:"path"`
}

// 📋 TableConfig maps one report table to a category
type TableConfig struct {
	Name     string            `yaml:"name" json:"name" validate:"required"`
	Category category.Category `yaml:"category" json:"category"`
}

// 📊 MetricsConfig controls the prometheus textfile output
type MetricsConfig struct {
	Textfile string `yaml:"textfile,omitempty" json:"textfile,omitempty"`
}

// 📣 NotifyConfig controls the run summary notification
type NotifyConfig struct {
	AMQPURL string `yaml:"amqp_url,omitempty" json:"amqp_url,omitempty" validate:"omitempty,url"`
	Queue   string `yaml:"queue,omitempty" json:"queue,omitempty" validate:"required_with=AMQPURL"`
}

// 📚 Config represents the complete configuration
type Config struct {
	SFTP      SFTPConfig      `yaml:"sftp" json:"sftp"`
	Portal    PortalConfig    `yaml:"portal" json:"portal"`
	Database  DatabaseConfig  `yaml:"database" json:"database"`
	Companies []CompanyConfig `yaml:"companies" json:"companies" validate:"dive"`
	Tables    []TableConfig   `yaml:"tables,omitempty" json:"tables,omitempty" validate:"dive"`
	Metrics   MetricsConfig   `yaml:"metrics,omitempty" json:"metrics,omitempty"`
	Notify    NotifyConfig    `yaml:"notify,omitempty" json:"notify,omitempty"`

	location string
}

// 🎯 Load loads, defaults and validates the configuration from a file
func Load(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading configuration")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	cfg, err := p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}
	cfg.location = path

	cfg.ApplyEnv(os.Getenv)
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Location returns the file the config was loaded from.
func (cfg *Config) Location() string {
	return cfg.location
}

// 🔐 ApplyEnv overrides secrets with non-empty environment values
func (cfg *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv(EnvKeyPassphrase); v != "" {
		cfg.SFTP.KeyPassphrase = v
	}
	if v := getenv(EnvPortalPassword); v != "" {
		cfg.Portal.Password = v
	}
	if v := getenv(EnvDatabaseURL); v != "" {
		cfg.Database.URL = v
	}
}

// 🔧 ApplyDefaults fills in unset optional values
func (cfg *Config) ApplyDefaults() {
	if cfg.SFTP.Port == 0 {
		cfg.SFTP.Port = 22
	}
	if cfg.SFTP.KeyDir == "" {
		cfg.SFTP.KeyDir = "keys"
	}
	if cfg.SFTP.KeyFile == "" {
		cfg.SFTP.KeyFile = "server.key"
	}
	if cfg.SFTP.Timeout == 0 {
		cfg.SFTP.Timeout = Duration(30 * time.Second)
	}

	cfg.Portal.BaseURL = strings.TrimRight(cfg.Portal.BaseURL, "/")
	if cfg.Portal.LoginPath == "" {
		cfg.Portal.LoginPath = "/login/index.php"
	}
	if cfg.Portal.VerifyPath == "" {
		cfg.Portal.VerifyPath = "/my/"
	}
	if cfg.Portal.Timeout == 0 {
		cfg.Portal.Timeout = Duration(30 * time.Second)
	}
	if cfg.Portal.DownloadTimeout == 0 {
		cfg.Portal.DownloadTimeout = Duration(60 * time.Second)
	}
	if cfg.Portal.MaxRedirects == nil {
		n := DefaultMaxRedirects
		cfg.Portal.MaxRedirects = &n
	}
	if cfg.Portal.MaxDownloadBytes == 0 {
		cfg.Portal.MaxDownloadBytes = 50 << 20
	}

	if cfg.Database.TablePrefix == "" {
		cfg.Database.TablePrefix = "mdl_"
	}

	if len(cfg.Tables) == 0 {
		for _, t := range category.DefaultTables() {
			cfg.Tables = append(cfg.Tables, TableConfig{Name: t.Name, Category: t.Category})
		}
	}
}

// 🔍 Validate checks struct constraints and the company/table semantics
func (cfg *Config) Validate() error {
	if err := validateStruct(cfg); err != nil {
		return err
	}

	if _, err := company.NewResolver(cfg.CompanyEntries()); err != nil {
		return errors.Errorf("companies: %w", err)
	}

	if _, err := cfg.TableMapping(); err != nil {
		return errors.Errorf("tables: %w", err)
	}

	return nil
}

// CompanyEntries converts the configured companies for the resolver.
func (cfg *Config) CompanyEntries() []company.Entry {
	out := make([]company.Entry, 0, len(cfg.Companies))
	for _, c := range cfg.Companies {
		out = append(out, company.Entry{Key: c.Key, Name: c.Name, Codes: c.Codes, Path: c.Path})
	}
	return out
}

// TableMapping builds the immutable table-to-category mapping.
func (cfg *Config) TableMapping() (*category.Mapping, error) {
	tables := make([]category.Table, 0, len(cfg.Tables))
	for _, t := range cfg.Tables {
		tables = append(tables, category.Table{Name: t.Name, Category: t.Category})
	}
	return category.NewMapping(tables)
}
