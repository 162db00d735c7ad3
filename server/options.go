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
	"log/slog"
	"net/http"
)

// Option configures a Dispatcher.
type Option func(*config)

type config struct {
	origins  []string
	debug    bool
	log      *slog.Logger
	recorder Recorder
	notFound http.Handler
}

// WithAllowedOrigins restricts CORS preflight to the given origin
// patterns. Each pattern is compiled once; see the matching rules on the
// dispatcher documentation. With no allow-list configured every origin is
// accepted.
//
// Example:
//
//	server.New(table, handlers,
//	    server.WithAllowedOrigins("https://*.example.com", "*://localhost:3000"),
//	)
func WithAllowedOrigins(origins ...string) Option {
	return func(cfg *config) {
		cfg.origins = origins
	}
}

// WithDebug enables development behavior: validation failure messages
// carry the underlying error detail, and a matched route without a bound
// handler panics instead of being skipped.
//
// Do not enable in production; the verbose messages can leak schema
// internals to clients.
func WithDebug() Option {
	return func(cfg *config) {
		cfg.debug = true
	}
}

// WithErrorLog sets the logger for debug-mode validation logging. Without
// a logger the dispatcher stays silent.
//
// Example:
//
//	server.New(table, handlers,
//	    server.WithDebug(),
//	    server.WithErrorLog(slog.Default()),
//	)
func WithErrorLog(log *slog.Logger) Option {
	return func(cfg *config) {
		cfg.log = log
	}
}

// WithObservability sets a dispatch lifecycle recorder. See
// [NewOTelRecorder] for the OpenTelemetry-backed implementation.
func WithObservability(rec Recorder) Option {
	return func(cfg *config) {
		cfg.recorder = rec
	}
}

// WithNotFound sets the fallback handler used by [Dispatcher.ServeHTTP]
// when no route matches. Default: http.NotFoundHandler. Ignored when the
// dispatcher runs via [Dispatcher.Middleware], where the chain decides.
func WithNotFound(h http.Handler) Option {
	return func(cfg *config) {
		cfg.notFound = h
	}
}
