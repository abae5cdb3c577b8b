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
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	// loginTokenField is the anti-forgery field of the platform login form. Its
	// presence on any page also marks that page as the login form.
	loginTokenField = "logintoken"
)

// hrefPattern matches the first quoted href attribute. The attribute must start
// at a word boundary that is not part of another attribute name (data-href).
var hrefPattern = regexp.MustCompile(`(?i)(?:^|[\s<])href\s*=\s*['"]([^'"]+)['"]`)

// 🔑 ExtractLoginToken returns the value of the login form token input,
// regardless of attribute order
func ExtractLoginToken(page string) (string, bool) {
	z := html.NewTokenizer(strings.NewReader(page))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return "", false
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			if tok.DataAtom != atom.Input {
				continue
			}
			var name, value string
			for _, a := range tok.Attr {
				switch strings.ToLower(a.Key) {
				case "name":
					name = a.Val
				case "value":
					value = a.Val
				}
			}
			if name == loginTokenField && value != "" {
				return value, true
			}
		}
	}
}

// HasLoginForm reports whether the page still carries the login form marker.
func HasLoginForm(page string) bool {
	return strings.Contains(page, loginTokenField)
}

// 🔗 ExtractCertificateURL returns the entity-decoded target of the first
// href attribute in the markup
func ExtractCertificateURL(markup string) (string, bool) {
	if strings.TrimSpace(markup) == "" {
		return "", false
	}
	m := hrefPattern.FindStringSubmatch(markup)
	if m == nil {
		return "", false
	}
	u := strings.TrimSpace(html.UnescapeString(m[1]))
	if u == "" {
		return "", false
	}
	return u, true
}

// ResolveURL prefixes a relative reference with base. Absolute http(s)
// references are returned unchanged.
func ResolveURL(base, ref string) string {
	lower := strings.ToLower(ref)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return ref
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(ref, "/")
}
