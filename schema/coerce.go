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

package schema

import (
	"maps"
	"strconv"
	"sync"
	"sync/atomic"
)

var (
	// RCU pattern: atomic pointer to an immutable map. Readers never lock;
	// the write side copies, inserts, and swaps.
	coerceCachePtr atomic.Pointer[map[uint64]Schema]

	// Write-side lock (only for cache updates).
	coerceCacheMu sync.Mutex
)

func init() {
	m := make(map[uint64]Schema)
	coerceCachePtr.Store(&m)
}

// Coerce rewrites a schema so that, where it expects a number or boolean,
// it first accepts the string representation that arrives from URL path
// segments, query strings, and headers:
//
//   - number leaf: a string value is converted with strconv before the
//     original numeric validation runs;
//   - bool leaf: the literal "true" becomes true and the literal "false"
//     becomes false; any other string passes through unchanged and fails
//     the underlying strict bool schema;
//   - object: every field schema is coerced recursively; the rewrite is
//     cached by the identity of the input schema so each object schema is
//     rewritten once per process;
//   - array: the element schema is coerced recursively;
//   - anything else is returned unchanged.
//
// Coerce is idempotent: feeding it an already-coerced schema returns that
// schema. It is safe for concurrent use; a race on first use may derive
// the same coerced object schema twice, but a partially built schema is
// never published.
//
// Coerce applies to path, query, and header schemas only. Body values
// arrive already JSON-typed and must not be coerced.
func Coerce(s Schema) Schema {
	switch t := s.(type) {
	case *NumberSchema:
		return &coercedNumber{ident: newIdent(), inner: t}
	case *BoolSchema:
		return &coercedBool{ident: newIdent(), inner: t}
	case *ObjectSchema:
		if t.coerced {
			return t
		}
		return coerceObject(t)
	case *ArraySchema:
		if t.coerced {
			return t
		}
		c := *t
		c.ident = t.ident.derive()
		c.elem = Coerce(t.elem)
		c.coerced = true
		return &c
	default:
		// Already-coerced leaves and every other schema kind pass through.
		return s
	}
}

// coerceObject derives the coerced form of an object schema, consulting
// the identity-keyed cache first.
func coerceObject(s *ObjectSchema) Schema {
	// Lock-free read from the current map.
	m := coerceCachePtr.Load()
	if cached, ok := (*m)[s.id()]; ok {
		return cached
	}

	// Derive outside the lock; the result is immutable so a concurrent
	// duplicate derivation is harmless.
	c := s.clone()
	for key, field := range s.fields {
		c.fields[key] = Coerce(field)
	}
	c.coerced = true

	coerceCacheMu.Lock()
	defer coerceCacheMu.Unlock()

	// Double-check: another goroutine may have published first; share its
	// copy so repeated lookups stay identical.
	m = coerceCachePtr.Load()
	if cached, ok := (*m)[s.id()]; ok {
		return cached
	}

	newMap := make(map[uint64]Schema, len(*m)+1)
	maps.Copy(newMap, *m)
	newMap[s.id()] = c
	coerceCachePtr.Store(&newMap)

	return c
}

// coercedNumber converts string input to float64 before delegating to the
// wrapped numeric schema.
type coercedNumber struct {
	ident
	inner *NumberSchema
}

func (s *coercedNumber) Kind() Kind { return KindNumber }

func (s *coercedNumber) optional() bool { return s.inner.optional() }

// Parse implements [Schema].
func (s *coercedNumber) Parse(v any) (any, error) {
	if str, ok := v.(string); ok {
		n, err := strconv.ParseFloat(str, 64)
		if err != nil {
			return nil, issuef(CodeInvalidType, "expected number, got %q", str)
		}
		v = n
	}
	return s.inner.Parse(v)
}

// SafeParse implements [Schema].
func (s *coercedNumber) SafeParse(v any) Result { return safeParse(s, v) }

// coercedBool converts the literal strings "true" and "false" before
// delegating to the wrapped bool schema. Any other string passes through
// unchanged so the strict schema rejects it; that asymmetry is part of the
// contract and must not be tightened.
type coercedBool struct {
	ident
	inner *BoolSchema
}

func (s *coercedBool) Kind() Kind { return KindBool }

func (s *coercedBool) optional() bool { return s.inner.optional() }

// Parse implements [Schema].
func (s *coercedBool) Parse(v any) (any, error) {
	switch v {
	case "true":
		v = true
	case "false":
		v = false
	}
	return s.inner.Parse(v)
}

// SafeParse implements [Schema].
func (s *coercedBool) SafeParse(v any) Result { return safeParse(s, v) }
