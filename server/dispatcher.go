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
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"github.com/twinroute/twinroute"
	"github.com/twinroute/twinroute/schema"
)

// Ctx carries the validated request parts into a handler. The four value
// fields hold whatever the declared schemas produced; a part with no
// schema holds the raw input (path captures as map[string]string) or nil.
// A Ctx lives for one request and must not be retained.
type Ctx struct {
	// Request is the raw incoming request. Context values attached by
	// upstream middleware are reachable through it.
	Request *http.Request

	Path    any // validated path params, or raw map[string]string captures
	Query   any // validated query values; nil when no query schema declared
	Body    any // validated JSON body; nil when no body schema declared
	Headers any // validated headers; nil when no headers schema declared
}

// Context returns the request context.
func (c *Ctx) Context() context.Context { return c.Request.Context() }

// Handler produces a result for one validated request. Return a
// [*Response] to control the response verbatim; any other value is
// serialized as JSON with status 200. A non-nil error is shaped into a
// JSON error response.
type Handler func(c *Ctx) (any, error)

// MethodHandlers binds handlers per method for one route.
type MethodHandlers map[twinroute.Method]Handler

// Handlers binds handlers to route declaration names.
type Handlers map[string]MethodHandlers

// Dispatcher matches incoming requests against a route table, validates
// their parts, and invokes the bound handlers. It slots into a middleware
// chain: when no route matches, the dispatcher produces no response and
// the chain decides the fallback.
type Dispatcher struct {
	table    *twinroute.Table
	handlers Handlers
	origins  []originPattern
	debug    bool
	log      *slog.Logger
	recorder Recorder
	notFound http.Handler
}

// New builds a dispatcher for the table. Handler bindings are keyed by
// route declaration name; a declared operation without a bound handler is
// skipped during dispatch (fatal in debug mode).
func New(table *twinroute.Table, handlers Handlers, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		table:    table,
		handlers: handlers,
		notFound: http.NotFoundHandler(),
	}
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}
	d.debug = cfg.debug
	d.log = cfg.log
	d.recorder = cfg.recorder
	if cfg.notFound != nil {
		d.notFound = cfg.notFound
	}
	for _, o := range cfg.origins {
		d.origins = append(d.origins, compileOrigin(o))
	}
	return d
}

// Middleware wraps next so that requests matching the route table are
// dispatched and everything else falls through.
func (d *Dispatcher) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !d.dispatch(w, r) {
			next.ServeHTTP(w, r)
		}
	})
}

// ServeHTTP dispatches the request, answering unmatched requests with the
// configured not-found handler. Use [Dispatcher.Middleware] to decide the
// fallback elsewhere in the chain.
func (d *Dispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !d.dispatch(w, r) {
		d.notFound.ServeHTTP(w, r)
	}
}

// dispatch scans the table in declaration order and reports whether it
// produced a response.
func (d *Dispatcher) dispatch(w http.ResponseWriter, r *http.Request) bool {
	method := twinroute.Method(r.Method)
	preflight := false
	if r.Method == http.MethodOptions {
		// CORS preflight: the route candidate is determined by the method
		// the browser intends to send, not OPTIONS itself.
		preflight = true
		requested := r.Header.Get("Access-Control-Request-Method")
		if requested == "" {
			requested = http.MethodGet
		}
		method = twinroute.Method(requested)
	}

	for _, entry := range d.table.Entries() {
		params, ok := entry.Pattern().Match(r.URL.Path)
		if !ok {
			continue
		}
		op, ok := entry.Operation(method)
		if !ok {
			continue
		}

		if preflight {
			d.preflight(w, r, string(method))
			return true
		}

		h := d.handlers[entry.Name()][method]
		if h == nil {
			if d.debug {
				panic(fmt.Sprintf("server: no handler bound for %s %s (route %q)", method, entry.Template(), entry.Name()))
			}
			// Without a handler this candidate cannot answer; a later
			// entry may still match.
			continue
		}

		ctx := r.Context()
		var state any
		if d.recorder != nil {
			ctx, state = d.recorder.OnDispatchStart(ctx, r)
			r = r.WithContext(ctx)
		}

		status := d.handle(w, r, op, params, h)

		if d.recorder != nil {
			d.recorder.OnDispatchEnd(ctx, state, entry.Template(), string(method), status)
		}
		return true
	}

	return false
}

// handle validates the request parts in the fixed order path -> headers ->
// query -> body, invokes the handler, and writes the response. It returns
// the status code written.
func (d *Dispatcher) handle(w http.ResponseWriter, r *http.Request, op twinroute.Operation, params map[string]string, h Handler) int {
	c := &Ctx{Request: r}

	if ps := op.Path(); ps != nil {
		v, serr := parseCoerced(ps, stringAnyMap(params))
		if serr != nil {
			return d.writeInvalid(w, r, "Invalid path parameter", serr)
		}
		c.Path = v
	} else {
		// No path schema: raw captures pass through without coercion.
		c.Path = params
	}

	if hs := op.Headers(); hs != nil {
		v, serr := parseCoerced(hs, headerMap(r.Header))
		if serr != nil {
			return d.writeInvalid(w, r, "Invalid request headers", serr)
		}
		c.Headers = v
	}

	if qs := op.Query(); qs != nil {
		v, serr := parseCoerced(qs, queryMap(r))
		if serr != nil {
			return d.writeInvalid(w, r, "Invalid query string", serr)
		}
		c.Query = v
	}

	if bs := op.Body(); bs != nil {
		raw, serr := decodeBody(r.Body)
		if serr == nil {
			// Body values arrive JSON-typed; never coerced.
			var v any
			v, serr = parsePart(bs, raw)
			c.Body = v
		}
		if serr != nil {
			return d.writeInvalid(w, r, "Invalid request body", serr)
		}
	}

	result, err := h(c)
	if err != nil {
		return d.writeError(w, err)
	}
	if resp, ok := result.(*Response); ok {
		return writeRaw(w, resp)
	}
	return writeJSON(w, http.StatusOK, result)
}

// preflight answers a CORS preflight for a matched candidate. It runs
// before any schema validation.
func (d *Dispatcher) preflight(w http.ResponseWriter, r *http.Request, requestedMethod string) {
	origin := r.Header.Get("Origin")

	if len(d.origins) > 0 && !originAllowed(d.origins, origin) {
		w.WriteHeader(http.StatusForbidden)
		return
	}

	h := w.Header()
	if origin != "" {
		h.Set("Access-Control-Allow-Origin", origin)
	} else {
		h.Set("Access-Control-Allow-Origin", "*")
	}
	h.Set("Access-Control-Allow-Methods", requestedMethod)
	if reqHeaders := r.Header.Get("Access-Control-Request-Headers"); reqHeaders != "" {
		h.Set("Access-Control-Allow-Headers", reqHeaders)
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeInvalid recovers a validation failure into a 400 response embedding
// the structured issues.
func (d *Dispatcher) writeInvalid(w http.ResponseWriter, r *http.Request, message string, serr *schema.Error) int {
	if d.debug {
		message = message + ": " + serr.Error()
		if d.log != nil {
			d.log.Debug("request validation failed",
				"method", r.Method,
				"path", r.URL.Path,
				"message", message,
			)
		}
	}
	return writeJSON(w, http.StatusBadRequest, invalidBody{
		Message: message,
		Issues:  serr.Issues,
	})
}

// invalidBody is the wire shape of a validation failure.
type invalidBody struct {
	Message string         `json:"message"`
	Issues  []schema.Issue `json:"issues"`
}

// parseCoerced validates a string-sourced part through the lazily coerced
// form of its schema.
func parseCoerced(s schema.Schema, v any) (any, *schema.Error) {
	return parsePart(schema.Coerce(s), v)
}

func parsePart(s schema.Schema, v any) (any, *schema.Error) {
	out, err := s.Parse(v)
	if err != nil {
		var serr *schema.Error
		if errors.As(err, &serr) {
			return nil, serr
		}
		return nil, &schema.Error{Issues: []schema.Issue{{
			Code:    schema.CodeInvalidType,
			Message: err.Error(),
		}}}
	}
	return out, nil
}

// decodeBody reads the request body as JSON. An unreadable or malformed
// body reports as a single root issue.
func decodeBody(body io.Reader) (any, *schema.Error) {
	var v any
	if err := json.NewDecoder(body).Decode(&v); err != nil {
		return nil, &schema.Error{Issues: []schema.Issue{{
			Code:    schema.CodeInvalidType,
			Message: "malformed JSON body: " + err.Error(),
		}}}
	}
	return v, nil
}

// stringAnyMap widens path captures for schema input.
func stringAnyMap(in map[string]string) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// queryMap flattens the query string to first values.
func queryMap(r *http.Request) map[string]any {
	values := r.URL.Query()
	out := make(map[string]any, len(values))
	for k, vs := range values {
		if len(vs) > 0 {
			out[k] = vs[0]
		}
	}
	return out
}

// headerMap flattens request headers to lowercase keys and first values.
func headerMap(h http.Header) map[string]any {
	out := make(map[string]any, len(h))
	for k, vs := range h {
		if len(vs) > 0 {
			out[strings.ToLower(k)] = vs[0]
		}
	}
	return out
}
