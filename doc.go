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

// Package twinroute declares HTTP routes once and shares them between a
// server dispatcher and a client request builder, so URL shape, parameter
// validation, and payload shape stay consistent on both sides of the
// boundary.
//
// A route binds a path template to per-method operations. A query
// operation (GET) may validate path parameters, the query string, and
// headers; a mutation operation (POST/PUT/PATCH/DELETE) validates a JSON
// body instead of a query string. The two variants are separate
// constructors, so a GET with a body schema does not typecheck.
//
//	routes := twinroute.MustNew([]twinroute.Declaration{
//	    twinroute.Route("hello", "hello/:name", twinroute.Operations{
//	        twinroute.GET: twinroute.Query(
//	            twinroute.PathParams(schema.Object(schema.Fields{
//	                "name": schema.String(),
//	            })),
//	            twinroute.QueryParams(schema.Object(schema.Fields{
//	                "excited": schema.Bool().Optional(),
//	            })),
//	        ),
//	    }),
//	})
//
// The server side mounts the table with package server; the client side
// consumes the same table with package client. Tables are immutable after
// construction and safe for concurrent use; dispatch scans entries in
// declaration order, so earlier routes win.
package twinroute
