// Copyright 2026 The Twinroute Authors
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

package server

import (
	"regexp"
	"strings"
)

// originPattern is one compiled allow-origin rule. Patterns without a
// wildcard compile to an exact comparison; wildcard patterns compile to a
// regular expression once, at dispatcher construction.
type originPattern struct {
	exact string
	re    *regexp.Regexp
}

// compileOrigin compiles one configured allow-origin string:
//
//   - no "://" separator: "https://" is assumed;
//   - "*" in the protocol position matches any protocol token, so
//     "*://localhost:3000" accepts http and https on that host;
//   - "*." at the start of the host matches zero or one subdomain label,
//     so "https://*.example.com" accepts both "https://example.com" and
//     "https://shop.example.com";
//   - no "*" anywhere: exact match.
func compileOrigin(origin string) originPattern {
	if !strings.Contains(origin, "://") {
		origin = "https://" + origin
	}
	if !strings.Contains(origin, "*") {
		return originPattern{exact: origin}
	}

	proto, host, _ := strings.Cut(origin, "://")

	var b strings.Builder
	b.WriteString("^")
	if proto == "*" {
		b.WriteString(`[a-zA-Z][a-zA-Z0-9+.-]*`)
	} else {
		b.WriteString(regexp.QuoteMeta(proto))
	}
	b.WriteString("://")
	if rest, ok := strings.CutPrefix(host, "*."); ok {
		b.WriteString(`(?:[a-zA-Z0-9-]+\.)?`)
		b.WriteString(regexp.QuoteMeta(rest))
	} else {
		b.WriteString(regexp.QuoteMeta(host))
	}
	b.WriteString("$")

	return originPattern{re: regexp.MustCompile(b.String())}
}

func (p originPattern) match(origin string) bool {
	if p.re != nil {
		return p.re.MatchString(origin)
	}
	return p.exact == origin
}

// originAllowed reports whether the request origin matches at least one
// allowed pattern.
func originAllowed(patterns []originPattern, origin string) bool {
	for _, p := range patterns {
		if p.match(origin) {
			return true
		}
	}
	return false
}
