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
	"errors"
	"sort"
	"strconv"
)

// Fields maps object keys to their field schemas.
type Fields map[string]Schema

// ObjectSchema validates a string-keyed map field by field. Unknown keys
// pass through untouched unless the schema is strict. All field failures
// are collected into one *Error rather than stopping at the first.
type ObjectSchema struct {
	ident
	fields  Fields
	strict  bool
	coerced bool
}

// Object returns a schema validating the given fields.
func Object(fields Fields) *ObjectSchema {
	copied := make(Fields, len(fields))
	for k, s := range fields {
		copied[k] = s
	}
	return &ObjectSchema{ident: newIdent(), fields: copied}
}

// Strict makes unknown keys a validation failure.
func (s *ObjectSchema) Strict() *ObjectSchema {
	c := s.clone()
	c.strict = true
	return c
}

// Optional marks the schema as tolerating an absent object key.
func (s *ObjectSchema) Optional() *ObjectSchema {
	c := s.clone()
	c.opt = true
	return c
}

func (s *ObjectSchema) clone() *ObjectSchema {
	c := *s
	c.ident = s.ident.derive()
	c.fields = make(Fields, len(s.fields))
	for k, f := range s.fields {
		c.fields[k] = f
	}
	return &c
}

// Field returns the schema for a key, or nil when the key is not declared.
func (s *ObjectSchema) Field(key string) Schema { return s.fields[key] }

// Keys returns the declared field keys in sorted order.
func (s *ObjectSchema) Keys() []string {
	keys := make([]string, 0, len(s.fields))
	for k := range s.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Kind returns KindObject.
func (s *ObjectSchema) Kind() Kind { return KindObject }

// Parse implements [Schema].
func (s *ObjectSchema) Parse(v any) (any, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, issuef(CodeInvalidType, "expected object, got %T", v)
	}

	out := make(map[string]any, len(m))
	collected := &Error{}

	for key, field := range s.fields {
		raw, present := m[key]
		if !present {
			if !optionalOf(field) {
				collected.add(key, Issue{Code: CodeRequired, Message: "is required"})
			}
			continue
		}
		parsed, err := field.Parse(raw)
		if err != nil {
			var fieldErr *Error
			if errors.As(err, &fieldErr) {
				collected.merge(key, fieldErr)
			} else {
				collected.add(key, Issue{Code: CodeInvalidType, Message: err.Error()})
			}
			continue
		}
		out[key] = parsed
	}

	for key, raw := range m {
		if _, declared := s.fields[key]; declared {
			continue
		}
		if s.strict {
			collected.add(key, Issue{Code: CodeUnknownKey, Message: "is not allowed"})
			continue
		}
		out[key] = raw
	}

	if len(collected.Issues) > 0 {
		return nil, collected
	}
	return out, nil
}

// SafeParse implements [Schema].
func (s *ObjectSchema) SafeParse(v any) Result { return safeParse(s, v) }

// ArraySchema validates a slice element by element.
type ArraySchema struct {
	ident
	elem    Schema
	minLen  *int
	maxLen  *int
	coerced bool
}

// Array returns a schema validating every element against elem.
func Array(elem Schema) *ArraySchema {
	return &ArraySchema{ident: newIdent(), elem: elem}
}

// Min requires at least n elements.
func (s *ArraySchema) Min(n int) *ArraySchema {
	c := *s
	c.ident = s.ident.derive()
	c.minLen = &n
	return &c
}

// Max allows at most n elements.
func (s *ArraySchema) Max(n int) *ArraySchema {
	c := *s
	c.ident = s.ident.derive()
	c.maxLen = &n
	return &c
}

// Optional marks the schema as tolerating an absent object key.
func (s *ArraySchema) Optional() *ArraySchema {
	c := *s
	c.ident = s.ident.derive()
	c.opt = true
	return &c
}

// Elem returns the element schema.
func (s *ArraySchema) Elem() Schema { return s.elem }

// Kind returns KindArray.
func (s *ArraySchema) Kind() Kind { return KindArray }

// Parse implements [Schema].
func (s *ArraySchema) Parse(v any) (any, error) {
	items, ok := v.([]any)
	if !ok {
		return nil, issuef(CodeInvalidType, "expected array, got %T", v)
	}
	if s.minLen != nil && len(items) < *s.minLen {
		return nil, issuef(CodeTooSmall, "must have at least %d elements", *s.minLen)
	}
	if s.maxLen != nil && len(items) > *s.maxLen {
		return nil, issuef(CodeTooBig, "must have at most %d elements", *s.maxLen)
	}

	out := make([]any, len(items))
	collected := &Error{}
	for i, item := range items {
		parsed, err := s.elem.Parse(item)
		if err != nil {
			var elemErr *Error
			if errors.As(err, &elemErr) {
				collected.merge(strconv.Itoa(i), elemErr)
			} else {
				collected.add(strconv.Itoa(i), Issue{Code: CodeInvalidType, Message: err.Error()})
			}
			continue
		}
		out[i] = parsed
	}

	if len(collected.Issues) > 0 {
		return nil, collected
	}
	return out, nil
}

// SafeParse implements [Schema].
func (s *ArraySchema) SafeParse(v any) Result { return safeParse(s, v) }
