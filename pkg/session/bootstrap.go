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

	"github.com/rs/zerolog"
	"github.com/walteh/certsync/pkg/config"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

// ⚙️ Config holds the settings of both transports
type Config struct {
	Archive ArchiveConfig
	Portal  PortalConfig
}

// FromConfig extracts the transport settings from the loaded configuration.
func FromConfig(cfg *config.Config) Config {
	return Config{
		Archive: ArchiveConfig{
			Host:          cfg.SFTP.Host,
			Port:          cfg.SFTP.Port,
			Username:      cfg.SFTP.Username,
			KeyDir:        cfg.SFTP.KeyDir,
			KeyFile:       cfg.SFTP.KeyFile,
			KeyPassphrase: cfg.SFTP.KeyPassphrase,
			KnownHosts:    cfg.SFTP.KnownHosts,
			Timeout:       cfg.SFTP.Timeout.Std(),
		},
		Portal: PortalConfig{
			BaseURL:            cfg.Portal.BaseURL,
			Username:           cfg.Portal.Username,
			Password:           cfg.Portal.Password,
			LoginPath:          cfg.Portal.LoginPath,
			VerifyPath:         cfg.Portal.VerifyPath,
			Timeout:            cfg.Portal.Timeout.Std(),
			DownloadTimeout:    cfg.Portal.DownloadTimeout.Std(),
			MaxRedirects:       cfg.Portal.RedirectLimit(),
			DownloadsPerSecond: cfg.Portal.DownloadsPerSecond,
			MaxDownloadBytes:   cfg.Portal.MaxDownloadBytes,
		},
	}
}

// 🚦 Options tunes the bootstrap
type Options struct {
	// SkipPortal opens only the archive (dry runs never download).
	SkipPortal bool
	// DialArchive replaces DialArchive, for tests.
	DialArchive func(ctx context.Context, cfg ArchiveConfig) (*Archive, error)
	// NewCookies replaces NewCookieStore, for tests.
	NewCookies func() (*CookieStore, error)
}

// 🔐 Sessions owns the authenticated transports of one run
type Sessions struct {
	archive *Archive
	portal  *Portal
	cookies *CookieStore
}

// Archive returns the SFTP session.
func (s *Sessions) Archive() *Archive { return s.archive }

// Portal returns the HTTP session, nil when skipped.
func (s *Sessions) Portal() *Portal { return s.portal }

// 🚀 Bootstrap opens the SFTP session and logs into the portal concurrently.
// When either fails everything already acquired is released before returning.
func Bootstrap(ctx context.Context, cfg Config, opts Options) (*Sessions, error) {
	logger := zerolog.Ctx(ctx)
	dial := opts.DialArchive
	if dial == nil {
		dial = DialArchive
	}

	newCookies := opts.NewCookies
	if newCookies == nil {
		newCookies = NewCookieStore
	}

	// cookie store must exist before any session goroutine starts
	s := &Sessions{}
	if !opts.SkipPortal {
		cookies, err := newCookies()
		if err != nil {
			return nil, errors.Errorf("portal session: %w", err)
		}
		s.cookies = cookies
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a, err := dial(gctx, cfg.Archive)
		if err != nil {
			return errors.Errorf("sftp session: %w", err)
		}
		s.archive = a
		return nil
	})

	if s.cookies != nil {
		cookies := s.cookies
		g.Go(func() error {
			p, err := NewPortal(cfg.Portal, cookies)
			if err != nil {
				return errors.Errorf("portal session: %w", err)
			}
			if err := p.Login(gctx); err != nil {
				p.Close()
				return errors.Errorf("portal session: %w", err)
			}
			s.portal = p
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if cerr := s.Close(); cerr != nil {
			logger.Warn().Err(cerr).Msg("releasing partially opened sessions")
		}
		return nil, err
	}

	return s, nil
}

// 🧹 Close tears down both sessions and releases the cookie store. Safe to
// call on a partially initialised value and more than once.
func (s *Sessions) Close() error {
	var errs []error
	if s.archive != nil {
		if err := s.archive.Close(); err != nil {
			errs = append(errs, errors.Errorf("closing sftp session: %w", err))
		}
		s.archive = nil
	}
	if s.portal != nil {
		if err := s.portal.Close(); err != nil {
			errs = append(errs, errors.Errorf("closing portal session: %w", err))
		}
		s.portal = nil
	}
	if s.cookies != nil {
		s.cookies.Release()
	}
	return errors.Join(errs...)
}
