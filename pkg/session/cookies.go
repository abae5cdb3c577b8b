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
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"

	"gitlab.com/tozd/go/errors"
	"golang.org/x/net/publicsuffix"
)

// 🍪 CookieStore is the per-run cookie jar of the portal session. Once
// released it forgets every cookie and refuses new ones.
type CookieStore struct {
	mu       sync.Mutex
	jar      *cookiejar.Jar
	released bool
}

var _ http.CookieJar = (*CookieStore)(nil)

// NewCookieStore creates an empty store.
func NewCookieStore() (*CookieStore, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, errors.Errorf("creating cookie jar: %w", err)
	}
	return &CookieStore{jar: jar}, nil
}

func (s *CookieStore) SetCookies(u *url.URL, cookies []*http.Cookie) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return
	}
	s.jar.SetCookies(u, cookies)
}

func (s *CookieStore) Cookies(u *url.URL) []*http.Cookie {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return nil
	}
	return s.jar.Cookies(u)
}

// 🧹 Release drops all cookies. Safe to call more than once.
func (s *CookieStore) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.released = true
	s.jar = nil
}

// Released reports whether Release has been called.
func (s *CookieStore) Released() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.released
}
