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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompileOrigin(t *testing.T) {
	tests := []struct {
		pattern string
		origin  string
		want    bool
	}{
		// Exact patterns.
		{"https://example.com", "https://example.com", true},
		{"https://example.com", "http://example.com", false},
		{"https://example.com", "https://example.com.evil.com", false},

		// No protocol: https assumed.
		{"example.com", "https://example.com", true},
		{"example.com", "http://example.com", false},

		// Protocol wildcard.
		{"*://localhost:3000", "http://localhost:3000", true},
		{"*://localhost:3000", "https://localhost:3000", true},
		{"*://localhost:3000", "ws://localhost:3000", true},
		{"*://localhost:3000", "http://localhost:3001", false},
		{"*://localhost:3000", "://localhost:3000", false},

		// Subdomain wildcard accepts the bare apex and one label.
		{"https://*.example.com", "https://example.com", true},
		{"https://*.example.com", "https://shop.example.com", true},
		{"https://*.example.com", "https://a.b.example.com", false},
		{"https://*.example.com", "http://shop.example.com", false},
		{"https://*.example.com", "https://notexample.com", false},
		{"https://*.example.com", "https://example.com.evil.com", false},
	}

	for _, tt := range tests {
		p := compileOrigin(tt.pattern)
		assert.Equal(t, tt.want, p.match(tt.origin),
			"pattern %q against origin %q", tt.pattern, tt.origin)
	}
}

func TestOriginAllowed(t *testing.T) {
	patterns := []originPattern{
		compileOrigin("https://*.example.com"),
		compileOrigin("*://localhost:3000"),
	}

	assert.True(t, originAllowed(patterns, "https://shop.example.com"))
	assert.True(t, originAllowed(patterns, "http://localhost:3000"))
	assert.False(t, originAllowed(patterns, "https://evil.com"))
	assert.False(t, originAllowed(patterns, ""))
	assert.False(t, originAllowed(nil, "https://anything.com"))
}
