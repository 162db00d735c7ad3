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

// Package pattern compiles path templates into bidirectional matchers.
//
// A template is a slash-separated list of segments where a leading colon
// marks a parameter: "users/:id/posts/:postID". A compiled [Pattern] maps
// URLs to captured parameters with [Pattern.Match] and parameters back to a
// canonical path with [Pattern.Href]; for any parameter set the two
// round-trip.
package pattern

import (
	"fmt"
	"net/url"
	"strings"
)

// segment is one slash-delimited piece of a template: either static text
// or a named parameter capture.
type segment struct {
	static bool
	value  string // static text, or the parameter name without the colon
}

// Pattern is a compiled path template. It is immutable and safe for
// concurrent use.
type Pattern struct {
	raw      string
	segments []segment
	params   []string
}

// Compile parses a template into a Pattern. Leading and trailing slashes
// in the template are ignored; matching is always against an absolute
// request path.
func Compile(template string) (*Pattern, error) {
	p := &Pattern{raw: template}

	trimmed := strings.Trim(template, "/")
	if trimmed == "" {
		return p, nil
	}

	seen := make(map[string]bool)
	for _, part := range strings.Split(trimmed, "/") {
		if part == "" {
			return nil, fmt.Errorf("pattern: empty segment in template %q", template)
		}
		if !strings.HasPrefix(part, ":") {
			p.segments = append(p.segments, segment{static: true, value: part})
			continue
		}
		name := part[1:]
		if name == "" {
			return nil, fmt.Errorf("pattern: unnamed parameter in template %q", template)
		}
		if seen[name] {
			return nil, fmt.Errorf("pattern: duplicate parameter %q in template %q", name, template)
		}
		seen[name] = true
		p.segments = append(p.segments, segment{value: name})
		p.params = append(p.params, name)
	}

	return p, nil
}

// MustCompile is Compile but panics on error. Templates are written at
// declaration time, so a malformed one is a configuration error.
func MustCompile(template string) *Pattern {
	p, err := Compile(template)
	if err != nil {
		panic(err.Error())
	}
	return p
}

// Match tests a request path against the pattern. On success it returns
// the captured parameters keyed by name, in declaration order when ranged
// via [Pattern.Params]. Captured values are path-unescaped.
func (p *Pattern) Match(path string) (map[string]string, bool) {
	trimmed := strings.Trim(path, "/")

	var parts []string
	if trimmed != "" {
		parts = strings.Split(trimmed, "/")
	}
	if len(parts) != len(p.segments) {
		return nil, false
	}

	params := make(map[string]string, len(p.params))
	for i, seg := range p.segments {
		if seg.static {
			if parts[i] != seg.value {
				return nil, false
			}
			continue
		}
		val, err := url.PathUnescape(parts[i])
		if err != nil {
			return nil, false
		}
		params[seg.value] = val
	}

	return params, true
}

// Href builds the canonical path for the given parameter values. Values
// are path-escaped. Missing parameters are an error; extra keys are
// ignored.
func (p *Pattern) Href(params map[string]string) (string, error) {
	var buf strings.Builder
	buf.WriteByte('/')

	for i, seg := range p.segments {
		if i > 0 {
			buf.WriteByte('/')
		}
		if seg.static {
			buf.WriteString(seg.value)
			continue
		}
		val, ok := params[seg.value]
		if !ok {
			return "", fmt.Errorf("pattern: missing required parameter %q for template %q", seg.value, p.raw)
		}
		buf.WriteString(url.PathEscape(val))
	}

	return buf.String(), nil
}

// Params returns the parameter names in template order.
func (p *Pattern) Params() []string {
	out := make([]string, len(p.params))
	copy(out, p.params)
	return out
}

// String returns the original template.
func (p *Pattern) String() string { return p.raw }
