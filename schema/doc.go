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

// Package schema provides composable validators for the values that cross
// a twinroute boundary: path parameters, query strings, headers, and JSON
// bodies.
//
// Schemas are built once at declaration time and are immutable afterwards,
// so they are safe to share between the server dispatcher and any number of
// clients:
//
//	params := schema.Object(schema.Fields{
//	    "name": schema.String(),
//	})
//	filters := schema.Object(schema.Fields{
//	    "excited": schema.Bool().Optional(),
//	    "limit":   schema.Int().Min(1).Max(100).Optional(),
//	})
//
// # Validation errors
//
// Failures are structured, never opaque strings. Every failure is an
// [Issue] with a dotted path, a stable code, and a message; one Parse call
// collects all of them into a single [*Error] that unwraps to [ErrSchema]:
//
//	_, err := filters.Parse(map[string]any{"excited": "maybe"})
//	var serr *schema.Error
//	if errors.As(err, &serr) {
//	    fmt.Println(serr.Issues[0].Path, serr.Issues[0].Code)
//	}
//
// # Coercion
//
// Path segments, query strings, and headers arrive as strings. [Coerce]
// rewrites a schema so numeric and boolean leaves accept their string
// representations, recursively through objects and arrays. The rewrite of
// an object schema is cached by schema identity, so each schema is
// transformed once per process no matter how many requests touch it.
package schema
