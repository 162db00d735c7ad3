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

// Package server dispatches incoming HTTP requests against a twinroute
// table.
//
// The dispatcher scans entries in declaration order; the first entry whose
// pattern matches the URL and which declares the request method wins.
// Its request parts are then validated in a fixed order — path parameters,
// headers, query string, body — with string-sourced parts passing through
// the schema coercion transformer first. The first failing part stops
// validation and answers 400 with the structured issues; on success the
// bound handler runs with the validated values.
//
//	d := server.New(routes, server.Handlers{
//	    "hello": {twinroute.GET: func(c *server.Ctx) (any, error) {
//	        return map[string]any{"greeting": "hi"}, nil
//	    }},
//	})
//	http.ListenAndServe(":8080", d)
//
// # Middleware position
//
// A dispatcher is one link of a middleware chain. When no route matches it
// produces no response; [Dispatcher.Middleware] passes the request to the
// next handler, and [Dispatcher.ServeHTTP] falls back to a configurable
// not-found handler.
//
// # CORS preflight
//
// OPTIONS requests are treated as CORS preflights: the candidate route is
// selected by the Access-Control-Request-Method header (GET when absent)
// and answered 204 before any validation, or 403 when an origin allow-list
// is configured and the request origin matches none of its patterns. See
// [WithAllowedOrigins] for the wildcard rules.
package server
