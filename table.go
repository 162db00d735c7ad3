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

package twinroute

import (
	"fmt"
	"strings"

	"github.com/twinroute/twinroute/pattern"
)

// Operations maps declared HTTP methods to their operations. Each method
// appears at most once per route by construction.
type Operations map[Method]Operation

// Declaration is one named route before table construction: a path
// template plus its per-method operations.
type Declaration struct {
	Name       string
	Template   string
	Operations Operations
}

// Route builds a Declaration. It is a readability helper for the slice
// handed to [New].
func Route(name, template string, ops Operations) Declaration {
	return Declaration{Name: name, Template: template, Operations: ops}
}

// Entry is one row of a [Table]: a compiled pattern bound to per-method
// operations. Entries are immutable and owned by their table.
type Entry struct {
	name     string
	template string
	pattern  *pattern.Pattern
	ops      Operations
}

// Name returns the declaration name.
func (e *Entry) Name() string { return e.name }

// Template returns the template the entry was compiled from, including any
// table base path.
func (e *Entry) Template() string { return e.template }

// Pattern returns the compiled pattern.
func (e *Entry) Pattern() *pattern.Pattern { return e.pattern }

// Operation returns the operation declared for m, if any.
func (e *Entry) Operation(m Method) (Operation, bool) {
	op, ok := e.ops[m]
	return op, ok
}

// Methods returns the declared methods in canonical order.
func (e *Entry) Methods() []Method {
	var out []Method
	for _, m := range []Method{GET, POST, PUT, PATCH, DELETE} {
		if _, ok := e.ops[m]; ok {
			out = append(out, m)
		}
	}
	return out
}

// Table is the immutable, ordered route collection shared by the server
// dispatcher and the client request builder. Declaration order determines
// dispatch precedence, so it is preserved exactly.
type Table struct {
	entries  []*Entry
	byName   map[string]*Entry
	basePath string
}

// Option configures table construction.
type Option func(*tableConfig)

type tableConfig struct {
	basePath string
}

// WithBasePath prepends a path prefix to every route template before
// compilation. Surrounding slashes are normalized, so "api", "/api", and
// "/api/" are equivalent.
func WithBasePath(p string) Option {
	return func(cfg *tableConfig) {
		cfg.basePath = p
	}
}

// New compiles the declarations into a table. Construction compiles each
// template exactly once and checks the declaration shape (names unique,
// method keys consistent with their operation variants); it does not
// validate schema content — a malformed schema surfaces when first
// exercised at request time.
func New(decls []Declaration, opts ...Option) (*Table, error) {
	var cfg tableConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	base := strings.Trim(cfg.basePath, "/")

	t := &Table{
		byName: make(map[string]*Entry, len(decls)),
	}
	if base != "" {
		t.basePath = "/" + base
	}

	for _, d := range decls {
		if d.Name == "" {
			return nil, fmt.Errorf("twinroute: route with template %q has no name", d.Template)
		}
		if _, dup := t.byName[d.Name]; dup {
			return nil, fmt.Errorf("twinroute: duplicate route name %q", d.Name)
		}
		if len(d.Operations) == 0 {
			return nil, fmt.Errorf("twinroute: route %q declares no operations", d.Name)
		}

		for m, op := range d.Operations {
			if !op.declared {
				return nil, fmt.Errorf("twinroute: route %q: operation for %s must be built with Query or Mutation", d.Name, m)
			}
			switch m {
			case GET:
				if op.kind != OpQuery {
					return nil, fmt.Errorf("twinroute: route %q: %s requires a query operation", d.Name, m)
				}
			case POST, PUT, PATCH, DELETE:
				if op.kind != OpMutation {
					return nil, fmt.Errorf("twinroute: route %q: %s requires a mutation operation", d.Name, m)
				}
			default:
				return nil, fmt.Errorf("twinroute: route %q: unsupported method %q", d.Name, m)
			}
		}

		template := strings.Trim(d.Template, "/")
		if base != "" {
			template = base + "/" + template
		}

		compiled, err := pattern.Compile(template)
		if err != nil {
			return nil, fmt.Errorf("twinroute: route %q: %w", d.Name, err)
		}

		ops := make(Operations, len(d.Operations))
		for m, op := range d.Operations {
			ops[m] = op
		}

		entry := &Entry{
			name:     d.Name,
			template: template,
			pattern:  compiled,
			ops:      ops,
		}
		t.entries = append(t.entries, entry)
		t.byName[d.Name] = entry
	}

	return t, nil
}

// MustNew is New but panics on error. Route tables are built once at
// startup, so a malformed declaration is a configuration error.
func MustNew(decls []Declaration, opts ...Option) *Table {
	t, err := New(decls, opts...)
	if err != nil {
		panic(err.Error())
	}
	return t
}

// Entries returns the entries in declaration order. The returned slice is
// shared; callers must treat it as read-only.
func (t *Table) Entries() []*Entry { return t.entries }

// Lookup returns the entry with the given declaration name.
func (t *Table) Lookup(name string) (*Entry, bool) {
	e, ok := t.byName[name]
	return e, ok
}

// BasePath returns the normalized base path ("" when none was configured).
func (t *Table) BasePath() string { return t.basePath }
