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

package session

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/time/rate"
)

var (
	ErrPortalConfig      = errors.New("portal settings incomplete")
	ErrLoginTokenMissing = errors.New("login token not found on login page")
	ErrLoginRejected     = errors.New("portal login rejected")
	ErrTooLarge          = errors.New("response exceeds size limit")
)

// maxPageBytes caps how much of a login or verification page is read.
const maxPageBytes = 4 << 20

// 🌐 PortalConfig configures the authenticated HTTP session
type PortalConfig struct {
	BaseURL            string
	Username           string
	Password           string
	LoginPath          string
	VerifyPath         string
	Timeout            time.Duration
	DownloadTimeout    time.Duration
	MaxRedirects       int
	DownloadsPerSecond float64
	MaxDownloadBytes   int64
}

// 🌐 Portal is a cookie-authenticated HTTP session against the learning
// platform, used only to download certificates
type Portal struct {
	cfg     PortalConfig
	client  *http.Client
	limiter *rate.Limiter
}

// 🏭 NewPortal creates an unauthenticated portal client bound to the store
func NewPortal(cfg PortalConfig, cookies *CookieStore) (*Portal, error) {
	if cfg.BaseURL == "" || cfg.Username == "" || cfg.Password == "" {
		return nil, errors.Errorf("%w: base url, username and password are required", ErrPortalConfig)
	}
	if _, err := url.ParseRequestURI(cfg.BaseURL); err != nil {
		return nil, errors.Errorf("%w: invalid base url %q", ErrPortalConfig, cfg.BaseURL)
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.DownloadTimeout <= 0 {
		cfg.DownloadTimeout = 60 * time.Second
	}
	if cfg.MaxDownloadBytes <= 0 {
		cfg.MaxDownloadBytes = 50 << 20
	}

	maxRedirects := cfg.MaxRedirects
	client := &http.Client{
		Jar: cookies,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) > maxRedirects {
				return errors.Errorf("stopped after %d redirects", maxRedirects)
			}
			return nil
		},
	}

	p := &Portal{cfg: cfg, client: client}
	if cfg.DownloadsPerSecond > 0 {
		p.limiter = rate.NewLimiter(rate.Limit(cfg.DownloadsPerSecond), 1)
	}
	return p, nil
}

// 🔐 Login performs the token scrape, credential post and verification
func (p *Portal) Login(ctx context.Context) error {
	logger := zerolog.Ctx(ctx)
	loginURL := p.cfg.BaseURL + p.cfg.LoginPath

	page, err := p.getPage(ctx, loginURL)
	if err != nil {
		return errors.Errorf("fetching login page: %w", err)
	}

	token, ok := ExtractLoginToken(page)
	if !ok {
		return ErrLoginTokenMissing
	}

	form := url.Values{
		"username":   {p.cfg.Username},
		"password":   {p.cfg.Password},
		"logintoken": {token},
	}
	if err := p.postForm(ctx, loginURL, form); err != nil {
		return errors.Errorf("posting credentials: %w", err)
	}

	check, err := p.getPage(ctx, p.cfg.BaseURL+p.cfg.VerifyPath)
	if err != nil {
		return errors.Errorf("verifying login: %w", err)
	}
	if HasLoginForm(check) {
		return ErrLoginRejected
	}

	logger.Info().Str("portal", p.cfg.BaseURL).Str("user", p.cfg.Username).Msg("portal authentication successful")
	return nil
}

func (p *Portal) getPage(ctx context.Context, target string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", errors.Errorf("creating request: %w", err)
	}
	body, err := p.do(req, maxPageBytes)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func (p *Portal) postForm(ctx context.Context, target string, form url.Values) error {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, strings.NewReader(form.Encode()))
	if err != nil {
		return errors.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	_, err = p.do(req, maxPageBytes)
	return err
}

// do executes the request and reads at most limit bytes of a 2xx body.
func (p *Portal) do(req *http.Request, limit int64) ([]byte, error) {
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, errors.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, errors.Errorf("reading response: %w", err)
	}
	if int64(len(body)) > limit {
		return nil, errors.Errorf("%w: more than %d bytes", ErrTooLarge, limit)
	}
	return body, nil
}

// 📥 Fetch downloads a certificate through the authenticated session.
// Relative references are resolved against the portal base.
func (p *Portal) Fetch(ctx context.Context, target string) ([]byte, error) {
	target = p.ResolveURL(target)

	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, errors.Errorf("waiting for download slot: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, p.cfg.DownloadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, errors.Errorf("creating request: %w", err)
	}
	return p.do(req, p.cfg.MaxDownloadBytes)
}

// 🔗 ResolveURL makes a certificate reference absolute against the portal base
func (p *Portal) ResolveURL(ref string) string {
	return ResolveURL(p.cfg.BaseURL, ref)
}

// Close releases idle connections.
func (p *Portal) Close() error {
	p.client.CloseIdleConnections()
	return nil
}
