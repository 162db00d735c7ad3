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
	"regexp"
	"sync/atomic"
)

// Kind identifies the shape a schema validates. The coercion transformer
// dispatches on it; everything else treats schemas as opaque.
type Kind int

const (
	KindAny Kind = iota
	KindString
	KindNumber
	KindBool
	KindObject
	KindArray
)

// String returns the kind name for diagnostics.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	default:
		return "any"
	}
}

// Schema validates and transforms a single value. Implementations are
// immutable once constructed and safe for concurrent use; the fluent
// modifiers (Min, Max, Optional, ...) return copies.
//
// Path, query, and header schemas validate string-keyed maps; body schemas
// validate arbitrary JSON-decoded values.
type Schema interface {
	// Parse validates v and returns the transformed value, or an *Error
	// describing every issue found.
	Parse(v any) (any, error)

	// SafeParse is Parse with the outcome reified into a Result instead of
	// an error return.
	SafeParse(v any) Result

	// Kind reports the shape this schema validates.
	Kind() Kind

	// id returns the process-unique identity used by the coercion cache.
	id() uint64
}

// Result is the reified outcome of a SafeParse call.
type Result struct {
	OK    bool
	Value any
	Error *Error
}

// schemaIDs hands out process-unique schema identities. Identity, not
// structure, keys the coercion cache: two structurally equal schemas are
// still distinct cache entries.
var schemaIDs atomic.Uint64

// ident carries the identity and optionality shared by every schema type.
type ident struct {
	sid uint64
	opt bool
}

func newIdent() ident {
	return ident{sid: schemaIDs.Add(1)}
}

// derive mints a fresh identity while preserving optionality; used by the
// fluent modifiers so copies stay distinct cache entries.
func (d ident) derive() ident {
	return ident{sid: schemaIDs.Add(1), opt: d.opt}
}

func (d ident) id() uint64 { return d.sid }

// optionalOf reports whether a field schema tolerates an absent key.
func optionalOf(s Schema) bool {
	type optioner interface{ optional() bool }
	if o, ok := s.(optioner); ok {
		return o.optional()
	}
	return false
}

func (d ident) optional() bool { return d.opt }

func safeParse(s Schema, v any) Result {
	out, err := s.Parse(v)
	if err != nil {
		// Parse only ever returns *Error; anything else is a programming
		// error inside this package.
		return Result{Error: err.(*Error)}
	}
	return Result{OK: true, Value: out}
}

// StringSchema validates string values with optional length and pattern
// rules.
type StringSchema struct {
	ident
	minLen  *int
	maxLen  *int
	pattern *regexp.Regexp
}

// String returns a schema accepting any string value.
func String() *StringSchema {
	return &StringSchema{ident: newIdent()}
}

// Min requires at least n characters.
func (s *StringSchema) Min(n int) *StringSchema {
	c := *s
	c.ident = s.ident.derive()
	c.minLen = &n
	return &c
}

// Max allows at most n characters.
func (s *StringSchema) Max(n int) *StringSchema {
	c := *s
	c.ident = s.ident.derive()
	c.maxLen = &n
	return &c
}

// Pattern requires the value to match the given regular expression.
// Pattern panics on an invalid expression; schemas are built at startup
// and a bad pattern is a configuration error.
func (s *StringSchema) Pattern(expr string) *StringSchema {
	c := *s
	c.ident = s.ident.derive()
	c.pattern = regexp.MustCompile(expr)
	return &c
}

// Optional marks the schema as tolerating an absent object key.
func (s *StringSchema) Optional() *StringSchema {
	c := *s
	c.ident = s.ident.derive()
	c.opt = true
	return &c
}

// Kind returns KindString.
func (s *StringSchema) Kind() Kind { return KindString }

// Parse implements [Schema].
func (s *StringSchema) Parse(v any) (any, error) {
	str, ok := v.(string)
	if !ok {
		return nil, issuef(CodeInvalidType, "expected string, got %T", v)
	}
	if s.minLen != nil && len(str) < *s.minLen {
		return nil, issuef(CodeTooSmall, "must be at least %d characters", *s.minLen)
	}
	if s.maxLen != nil && len(str) > *s.maxLen {
		return nil, issuef(CodeTooBig, "must be at most %d characters", *s.maxLen)
	}
	if s.pattern != nil && !s.pattern.MatchString(str) {
		return nil, issuef(CodePattern, "must match %s", s.pattern.String())
	}
	return str, nil
}

// SafeParse implements [Schema].
func (s *StringSchema) SafeParse(v any) Result { return safeParse(s, v) }

// NumberSchema validates numeric values. JSON-decoded numbers arrive as
// float64; Go-native ints are accepted and widened.
type NumberSchema struct {
	ident
	integral bool
	min      *float64
	max      *float64
}

// Number returns a schema accepting any numeric value.
func Number() *NumberSchema {
	return &NumberSchema{ident: newIdent()}
}

// Int returns a schema accepting only integral numeric values.
func Int() *NumberSchema {
	return &NumberSchema{ident: newIdent(), integral: true}
}

// Min requires the value to be at least n.
func (s *NumberSchema) Min(n float64) *NumberSchema {
	c := *s
	c.ident = s.ident.derive()
	c.min = &n
	return &c
}

// Max allows the value to be at most n.
func (s *NumberSchema) Max(n float64) *NumberSchema {
	c := *s
	c.ident = s.ident.derive()
	c.max = &n
	return &c
}

// Optional marks the schema as tolerating an absent object key.
func (s *NumberSchema) Optional() *NumberSchema {
	c := *s
	c.ident = s.ident.derive()
	c.opt = true
	return &c
}

// Kind returns KindNumber.
func (s *NumberSchema) Kind() Kind { return KindNumber }

// Parse implements [Schema].
func (s *NumberSchema) Parse(v any) (any, error) {
	var n float64
	switch t := v.(type) {
	case float64:
		n = t
	case float32:
		n = float64(t)
	case int:
		n = float64(t)
	case int32:
		n = float64(t)
	case int64:
		n = float64(t)
	default:
		return nil, issuef(CodeInvalidType, "expected number, got %T", v)
	}
	if s.integral && n != float64(int64(n)) {
		return nil, issuef(CodeNotInteger, "expected integer, got %v", n)
	}
	if s.min != nil && n < *s.min {
		return nil, issuef(CodeTooSmall, "must be at least %v", *s.min)
	}
	if s.max != nil && n > *s.max {
		return nil, issuef(CodeTooBig, "must be at most %v", *s.max)
	}
	return n, nil
}

// SafeParse implements [Schema].
func (s *NumberSchema) SafeParse(v any) Result { return safeParse(s, v) }

// BoolSchema validates boolean values. It is strict: strings such as
// "true" are rejected unless the schema went through [Coerce].
type BoolSchema struct {
	ident
}

// Bool returns a schema accepting only boolean values.
func Bool() *BoolSchema {
	return &BoolSchema{ident: newIdent()}
}

// Optional marks the schema as tolerating an absent object key.
func (s *BoolSchema) Optional() *BoolSchema {
	c := *s
	c.ident = s.ident.derive()
	c.opt = true
	return &c
}

// Kind returns KindBool.
func (s *BoolSchema) Kind() Kind { return KindBool }

// Parse implements [Schema].
func (s *BoolSchema) Parse(v any) (any, error) {
	b, ok := v.(bool)
	if !ok {
		return nil, issuef(CodeInvalidType, "expected bool, got %T", v)
	}
	return b, nil
}

// SafeParse implements [Schema].
func (s *BoolSchema) SafeParse(v any) Result { return safeParse(s, v) }

// AnySchema accepts every value unchanged.
type AnySchema struct {
	ident
}

// Any returns a schema that accepts every value unchanged.
func Any() *AnySchema {
	return &AnySchema{ident: newIdent()}
}

// Optional marks the schema as tolerating an absent object key.
func (s *AnySchema) Optional() *AnySchema {
	c := *s
	c.ident = s.ident.derive()
	c.opt = true
	return &c
}

// Kind returns KindAny.
func (s *AnySchema) Kind() Kind { return KindAny }

// Parse implements [Schema].
func (s *AnySchema) Parse(v any) (any, error) { return v, nil }

// SafeParse implements [Schema].
func (s *AnySchema) SafeParse(v any) Result { return safeParse(s, v) }
