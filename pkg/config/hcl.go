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

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/walteh/certsync/pkg/category"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
)

func init() {
	Register(&HCLParser{})
}

// 🔧 HCLParser implements the Parser interface for HCL files
type HCLParser struct{}

func (p *HCLParser) CanParse(filename string) bool {
	return hasExt(filename, ".hcl")
}

// hclConfig is the HCL schema. Companies and tables are labelled blocks:
//
//	company "bruno_spa" { codes = "S03" path = "/archive/bruno" }
//	table "local_report_specifica" { category = "SPECIFICA" }
type hclConfig struct {
	SFTP struct {
		Host          string  `hcl:"host"`
		Port          *int    `hcl:"port,optional"`
		Username      string  `hcl:"username"`
		KeyDir        *string `hcl:"key_dir,optional"`
		KeyFile       *string `hcl:"key_file,optional"`
		KeyPassphrase *string `hcl:"key_passphrase,optional"`
		KnownHosts    *string `hcl:"known_hosts,optional"`
		Timeout       *string `hcl:"timeout,optional"`
	} `hcl:"sftp,block"`
	Portal struct {
		BaseURL            string   `hcl:"base_url"`
		Username           string   `hcl:"username"`
		Password           *string  `hcl:"password,optional"`
		LoginPath          *string  `hcl:"login_path,optional"`
		VerifyPath         *string  `hcl:"verify_path,optional"`
		Timeout            *string  `hcl:"timeout,optional"`
		DownloadTimeout    *string  `hcl:"download_timeout,optional"`
		MaxRedirects       *int     `hcl:"max_redirects,optional"`
		DownloadsPerSecond *float64 `hcl:"downloads_per_second,optional"`
		MaxDownloadBytes   *int64   `hcl:"max_download_bytes,optional"`
	} `hcl:"portal,block"`
	Database *struct {
		URL         *string `hcl:"url,optional"`
		TablePrefix *string `hcl:"table_prefix,optional"`
	} `hcl:"database,block"`
	Companies []struct {
		Key   string  `hcl:"key,label"`
		Name  *string `hcl:"name,optional"`
		Codes string  `hcl:"codes"`
		Path  string  `hcl:"path"`
	} `hcl:"company,block"`
	Tables []struct {
		Name     string `hcl:"name,label"`
		Category string `hcl:"category"`
	} `hcl:"table,block"`
	Metrics *struct {
		Textfile *string `hcl:"textfile,optional"`
	} `hcl:"metrics,block"`
	Notify *struct {
		AMQPURL string `hcl:"amqp_url"`
		Queue   string `hcl:"queue"`
	} `hcl:"notify,block"`
}

func (p *HCLParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, "certsync.hcl")
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{},
	}

	var h hclConfig
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &h)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	cfg := &Config{
		SFTP: SFTPConfig{
			Host:          h.SFTP.Host,
			Port:          deref(h.SFTP.Port),
			Username:      h.SFTP.Username,
			KeyDir:        deref(h.SFTP.KeyDir),
			KeyFile:       deref(h.SFTP.KeyFile),
			KeyPassphrase: deref(h.SFTP.KeyPassphrase),
			KnownHosts:    deref(h.SFTP.KnownHosts),
		},
		Portal: PortalConfig{
			BaseURL:            h.Portal.BaseURL,
			Username:           h.Portal.Username,
			Password:           deref(h.Portal.Password),
			LoginPath:          deref(h.Portal.LoginPath),
			VerifyPath:         deref(h.Portal.VerifyPath),
			MaxRedirects:       h.Portal.MaxRedirects,
			DownloadsPerSecond: deref(h.Portal.DownloadsPerSecond),
			MaxDownloadBytes:   deref(h.Portal.MaxDownloadBytes),
		},
	}

	durations := []struct {
		raw *string
		dst *Duration
	}{
		{h.SFTP.Timeout, &cfg.SFTP.Timeout},
		{h.Portal.Timeout, &cfg.Portal.Timeout},
		{h.Portal.DownloadTimeout, &cfg.Portal.DownloadTimeout},
	}
	for _, d := range durations {
		if d.raw == nil {
			continue
		}
		if err := d.dst.UnmarshalText([]byte(*d.raw)); err != nil {
			return nil, err
		}
	}

	if h.Database != nil {
		cfg.Database = DatabaseConfig{
			URL:         deref(h.Database.URL),
			TablePrefix: deref(h.Database.TablePrefix),
		}
	}

	for _, c := range h.Companies {
		cfg.Companies = append(cfg.Companies, CompanyConfig{
			Key:   c.Key,
			Name:  deref(c.Name),
			Codes: c.Codes,
			Path:  c.Path,
		})
	}

	for _, t := range h.Tables {
		cat, err := category.Parse(t.Category)
		if err != nil {
			return nil, errors.Errorf("table %s: %w", t.Name, err)
		}
		cfg.Tables = append(cfg.Tables, TableConfig{Name: t.Name, Category: cat})
	}

	if h.Metrics != nil {
		cfg.Metrics.Textfile = deref(h.Metrics.Textfile)
	}
	if h.Notify != nil {
		cfg.Notify = NotifyConfig{AMQPURL: h.Notify.AMQPURL, Queue: h.Notify.Queue}
	}

	return cfg, nil
}

func deref[T any](v *T) T {
	var zero T
	if v == nil {
		return zero
	}
	return *v
}
