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
	"net/http"

	"github.com/twinroute/twinroute/schema"
)

// Method is a declared HTTP method. OPTIONS is reserved for CORS preflight
// and can never carry an operation.
type Method string

// Supported declared methods.
const (
	GET    Method = http.MethodGet
	POST   Method = http.MethodPost
	PUT    Method = http.MethodPut
	PATCH  Method = http.MethodPatch
	DELETE Method = http.MethodDelete
)

// OpKind distinguishes the two operation variants. A query operation (GET)
// may declare a query-string schema and never a body; a mutation operation
// (POST/PUT/PATCH/DELETE) may declare a body schema and never a query
// string. The constructors make the illegal combinations unrepresentable.
type OpKind int

const (
	// OpQuery is a read operation addressed by URL and query string.
	OpQuery OpKind = iota
	// OpMutation is a write operation carrying a JSON body.
	OpMutation
)

// String returns the kind name for diagnostics.
func (k OpKind) String() string {
	if k == OpMutation {
		return "mutation"
	}
	return "query"
}

// Operation bundles the schemas for one HTTP method on one route. Build it
// with [Query] or [Mutation]; the zero value is not a valid operation.
type Operation struct {
	kind     OpKind
	declared bool
	path     schema.Schema
	query    schema.Schema
	body     schema.Schema
	headers  schema.Schema
}

// Kind reports whether this is a query or a mutation operation.
func (o Operation) Kind() OpKind { return o.kind }

// Path returns the path-parameter schema, or nil when none is declared.
func (o Operation) Path() schema.Schema { return o.path }

// Query returns the query-string schema, or nil. Only query operations
// carry one.
func (o Operation) Query() schema.Schema { return o.query }

// Body returns the body schema, or nil. Only mutation operations carry one.
func (o Operation) Body() schema.Schema { return o.body }

// Headers returns the header schema, or nil.
func (o Operation) Headers() schema.Schema { return o.headers }

// QueryOption configures a query operation.
type QueryOption interface {
	applyQuery(*Operation)
}

// MutationOption configures a mutation operation.
type MutationOption interface {
	applyMutation(*Operation)
}

// OperationOption configures either operation variant.
type OperationOption interface {
	QueryOption
	MutationOption
}

type sharedOption func(*Operation)

func (f sharedOption) applyQuery(o *Operation)    { f(o) }
func (f sharedOption) applyMutation(o *Operation) { f(o) }

type queryOnlyOption func(*Operation)

func (f queryOnlyOption) applyQuery(o *Operation) { f(o) }

type mutationOnlyOption func(*Operation)

func (f mutationOnlyOption) applyMutation(o *Operation) { f(o) }

// PathParams declares the schema for captured path parameters.
func PathParams(s schema.Schema) OperationOption {
	return sharedOption(func(o *Operation) { o.path = s })
}

// Headers declares the schema for request headers. Header names are
// matched lowercase.
func Headers(s schema.Schema) OperationOption {
	return sharedOption(func(o *Operation) { o.headers = s })
}

// QueryParams declares the schema for the query string. Only query
// operations accept it.
func QueryParams(s schema.Schema) QueryOption {
	return queryOnlyOption(func(o *Operation) { o.query = s })
}

// Body declares the schema for the JSON request body. Only mutation
// operations accept it.
func Body(s schema.Schema) MutationOption {
	return mutationOnlyOption(func(o *Operation) { o.body = s })
}

// Query builds the operation for a query method (GET).
//
// Example:
//
//	twinroute.Query(
//	    twinroute.PathParams(params),
//	    twinroute.QueryParams(filters),
//	)
func Query(opts ...QueryOption) Operation {
	op := Operation{kind: OpQuery, declared: true}
	for _, opt := range opts {
		opt.applyQuery(&op)
	}
	return op
}

// Mutation builds the operation for a mutation method (POST, PUT, PATCH,
// or DELETE).
//
// Example:
//
//	twinroute.Mutation(
//	    twinroute.Body(createInput),
//	)
func Mutation(opts ...MutationOption) Operation {
	op := Operation{kind: OpMutation, declared: true}
	for _, opt := range opts {
		opt.applyMutation(&op)
	}
	return op
}
