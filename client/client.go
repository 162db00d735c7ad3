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

// Package client builds outgoing HTTP requests from the same route table
// the server dispatches with, so a request that leaves the client is
// already known to fit the URL and payload shape the server validates.
//
// Argument mistakes — a query object on a route that declares no query
// schema, a body that fails its schema — are programmer errors: they
// surface as [*UsageError] before any network I/O.
//
//	c, err := client.New(routes, "https://api.example.com")
//	if err != nil { ... }
//
//	var out helloReply
//	err = c.CallJSON(ctx, "hello", twinroute.GET, client.Args{
//	    Path:  map[string]any{"name": "world"},
//	    Query: map[string]any{"excited": true},
//	}, &out)
package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/twinroute/twinroute"
	"github.com/twinroute/twinroute/schema"
)

// Args holds the unvalidated inputs for one call. Every field is
// optional; whether a field is allowed depends on the operation's declared
// schemas.
type Args struct {
	Path    map[string]any    // path parameter values
	Query   map[string]any    // query values; only for operations declaring a query schema
	Body    any               // JSON body; only for operations declaring a body schema
	Headers map[string]string // per-call headers; an empty value removes a default header
}

// UsageError reports a call that could not be turned into a request:
// unknown route or method, arguments a schema rejected, or arguments the
// operation does not declare. It is raised before any network I/O.
type UsageError struct {
	Route string
	Part  string // "route", "method", "path", "query", "body", "headers"
	Err   error
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("client: route %q: invalid %s: %v", e.Route, e.Part, e.Err)
}

func (e *UsageError) Unwrap() error { return e.Err }

// Client builds requests against one route table and base URL. A Client
// is immutable after New and safe for concurrent use.
type Client struct {
	table        *twinroute.Table
	base         *url.URL
	httpc        *http.Client
	headers      map[string]string
	errorHandler func(*http.Response) error
}

// New builds a client for the table. baseURL must be absolute; route
// paths are appended to its path component.
func New(table *twinroute.Table, baseURL string, opts ...Option) (*Client, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("client: invalid base URL %q: %w", baseURL, err)
	}
	if !base.IsAbs() {
		return nil, fmt.Errorf("client: base URL %q is not absolute", baseURL)
	}

	c := &Client{
		table:   table,
		base:    base,
		httpc:   http.DefaultClient,
		headers: make(map[string]string),
	}
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.httpc != nil {
		c.httpc = cfg.httpc
	}
	for k, v := range cfg.headers {
		c.headers[strings.ToLower(k)] = v
	}
	c.errorHandler = cfg.errorHandler

	return c, nil
}

// Call validates the arguments against the operation's schemas, builds
// the request, and issues it. The caller owns the returned response and
// must close its body.
func (c *Client) Call(ctx context.Context, route string, method twinroute.Method, args Args) (*http.Response, error) {
	req, err := c.NewRequest(ctx, route, method, args)
	if err != nil {
		return nil, err
	}
	return c.httpc.Do(req)
}

// NewRequest builds the validated request without issuing it.
func (c *Client) NewRequest(ctx context.Context, route string, method twinroute.Method, args Args) (*http.Request, error) {
	entry, ok := c.table.Lookup(route)
	if !ok {
		return nil, &UsageError{Route: route, Part: "route", Err: errors.New("not declared in the table")}
	}
	op, ok := entry.Operation(method)
	if !ok {
		return nil, &UsageError{Route: route, Part: "method", Err: fmt.Errorf("%s not declared for this route", method)}
	}

	u, err := c.buildURL(route, entry, op, args)
	if err != nil {
		return nil, err
	}

	body, err := c.buildBody(route, op, args)
	if err != nil {
		return nil, err
	}

	headers, err := c.mergeHeaders(route, op, args)
	if err != nil {
		return nil, err
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, string(method), u.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("client: route %q: %w", route, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req, nil
}

// CallJSON issues the call and decodes the response body as JSON into
// out. When the response status indicates failure and an error handler is
// configured, the handler decides instead of the decoder; otherwise the
// body is parsed as JSON regardless of status.
func (c *Client) CallJSON(ctx context.Context, route string, method twinroute.Method, args Args, out any) error {
	resp, err := c.Call(ctx, route, method, args)
	if err != nil {
		return err
	}
	defer resp.Body.Close() //nolint:errcheck // read-side close

	if resp.StatusCode >= http.StatusBadRequest && c.errorHandler != nil {
		return c.errorHandler(resp)
	}
	if out == nil {
		out = new(any)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// buildURL validates path args, generates the path from the pattern, and
// resolves it against the base URL, then serializes the query string.
func (c *Client) buildURL(route string, entry *twinroute.Entry, op twinroute.Operation, args Args) (*url.URL, error) {
	pathVals := make(map[string]string, len(args.Path))
	if ps := op.Path(); ps != nil {
		in := args.Path
		if in == nil {
			in = map[string]any{}
		}
		v, perr := schema.Coerce(ps).Parse(in)
		if perr != nil {
			return nil, &UsageError{Route: route, Part: "path", Err: perr}
		}
		if m, ok := v.(map[string]any); ok {
			for k, val := range m {
				pathVals[k] = stringify(val)
			}
		}
	} else {
		for k, val := range args.Path {
			pathVals[k] = stringify(val)
		}
	}

	href, err := entry.Pattern().Href(pathVals)
	if err != nil {
		return nil, &UsageError{Route: route, Part: "path", Err: err}
	}

	u, err := c.resolve(href)
	if err != nil {
		return nil, &UsageError{Route: route, Part: "path", Err: err}
	}

	if qs := op.Query(); qs != nil {
		in := args.Query
		if in == nil {
			in = map[string]any{}
		}
		v, perr := schema.Coerce(qs).Parse(in)
		if perr != nil {
			return nil, &UsageError{Route: route, Part: "query", Err: perr}
		}
		values := url.Values{}
		if m, ok := v.(map[string]any); ok {
			for k, val := range m {
				values.Set(k, stringify(val))
			}
		}
		u.RawQuery = values.Encode()
	} else if args.Query != nil {
		return nil, &UsageError{Route: route, Part: "query", Err: errors.New("operation declares no query schema")}
	}

	return u, nil
}

// resolve places a generated path under the base URL. A root-relative
// path extends the base path; an absolute URL is used as-is.
func (c *Client) resolve(href string) (*url.URL, error) {
	if strings.Contains(href, "://") {
		return url.Parse(href)
	}
	// The href arrives path-escaped; parse it so Path carries the decoded
	// form and RawPath the escaped one, otherwise String would re-escape.
	ref, err := url.Parse(href)
	if err != nil {
		return nil, err
	}
	u := *c.base
	u.Path = strings.TrimRight(c.base.Path, "/") + ref.Path
	u.RawPath = strings.TrimRight(c.base.EscapedPath(), "/") + ref.EscapedPath()
	return &u, nil
}

// buildBody validates and serializes the JSON body, or rejects one the
// operation does not declare.
func (c *Client) buildBody(route string, op twinroute.Operation, args Args) ([]byte, error) {
	bs := op.Body()
	if bs == nil {
		if args.Body != nil {
			return nil, &UsageError{Route: route, Part: "body", Err: errors.New("operation declares no body schema")}
		}
		return nil, nil
	}

	in := args.Body
	if in == nil {
		in = map[string]any{}
	}
	v, perr := bs.Parse(in)
	if perr != nil {
		return nil, &UsageError{Route: route, Part: "body", Err: perr}
	}
	buf, err := json.Marshal(v)
	if err != nil {
		return nil, &UsageError{Route: route, Part: "body", Err: err}
	}
	return buf, nil
}

// mergeHeaders overlays per-call headers onto the configured defaults,
// removing entries whose per-call value is empty, then validates the
// merged result when the operation declares a headers schema.
func (c *Client) mergeHeaders(route string, op twinroute.Operation, args Args) (map[string]string, error) {
	merged := make(map[string]string, len(c.headers)+len(args.Headers))
	for k, v := range c.headers {
		merged[k] = v
	}
	for k, v := range args.Headers {
		key := strings.ToLower(k)
		if v == "" {
			delete(merged, key)
			continue
		}
		merged[key] = v
	}

	hs := op.Headers()
	if hs == nil {
		return merged, nil
	}

	in := make(map[string]any, len(merged))
	for k, v := range merged {
		in[k] = v
	}
	v, perr := schema.Coerce(hs).Parse(in)
	if perr != nil {
		return nil, &UsageError{Route: route, Part: "headers", Err: perr}
	}
	out := make(map[string]string, len(merged))
	if m, ok := v.(map[string]any); ok {
		for k, val := range m {
			out[k] = stringify(val)
		}
	}
	return out, nil
}

// stringify renders a validated value for a URL or header position.
func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		return fmt.Sprint(v)
	}
}
