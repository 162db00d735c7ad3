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

package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twinroute/twinroute"
	"github.com/twinroute/twinroute/schema"
)

func testTable(t *testing.T) *twinroute.Table {
	t.Helper()
	return twinroute.MustNew([]twinroute.Declaration{
		twinroute.Route("hello", "/hello/:name", twinroute.Operations{
			twinroute.GET: twinroute.Query(
				twinroute.PathParams(schema.Object(schema.Fields{
					"name": schema.String().Min(1),
				})),
				twinroute.QueryParams(schema.Object(schema.Fields{
					"excited": schema.Bool().Optional(),
				})),
			),
		}),
		twinroute.Route("createPost", "/posts", twinroute.Operations{
			twinroute.POST: twinroute.Mutation(
				twinroute.Body(schema.Object(schema.Fields{
					"title": schema.String().Min(1),
				})),
			),
		}),
	})
}

func TestNew_RejectsRelativeBase(t *testing.T) {
	_, err := New(testTable(t), "/not/absolute")
	assert.Error(t, err)

	_, err = New(testTable(t), "https://api.example.com")
	assert.NoError(t, err)
}

// TestNewRequest_FailsBeforeNetwork covers the fail-fast contract: every
// argument mistake surfaces as a *UsageError without touching the wire.
// The base URL points nowhere reachable on purpose.
func TestNewRequest_FailsBeforeNetwork(t *testing.T) {
	c, err := New(testTable(t), "http://no.such.host.invalid")
	require.NoError(t, err)
	ctx := context.Background()

	tests := []struct {
		name   string
		route  string
		method twinroute.Method
		args   Args
		part   string
	}{
		{"unknown route", "nope", twinroute.GET, Args{}, "route"},
		{"undeclared method", "hello", twinroute.POST, Args{}, "method"},
		{"missing path param", "hello", twinroute.GET, Args{}, "path"},
		{"path fails schema", "hello", twinroute.GET,
			Args{Path: map[string]any{"name": ""}}, "path"},
		{"query fails schema", "hello", twinroute.GET,
			Args{Path: map[string]any{"name": "x"}, Query: map[string]any{"excited": "maybe"}}, "query"},
		{"undeclared query", "createPost", twinroute.POST,
			Args{Body: map[string]any{"title": "t"}, Query: map[string]any{"a": 1}}, "query"},
		{"body fails schema", "createPost", twinroute.POST,
			Args{Body: map[string]any{"title": ""}}, "body"},
		{"undeclared body", "hello", twinroute.GET,
			Args{Path: map[string]any{"name": "x"}, Body: map[string]any{"a": 1}}, "body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.NewRequest(ctx, tt.route, tt.method, tt.args)
			var uerr *UsageError
			require.ErrorAs(t, err, &uerr)
			assert.Equal(t, tt.part, uerr.Part)
		})
	}
}

func TestNewRequest_BuildsURL(t *testing.T) {
	c, err := New(testTable(t), "https://api.example.com")
	require.NoError(t, err)

	req, err := c.NewRequest(context.Background(), "hello", twinroute.GET, Args{
		Path:  map[string]any{"name": "world"},
		Query: map[string]any{"excited": true},
	})
	require.NoError(t, err)

	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "https://api.example.com/hello/world?excited=true", req.URL.String())
	assert.Nil(t, req.Body)
}

func TestNewRequest_CoercesStringArgs(t *testing.T) {
	c, err := New(testTable(t), "https://api.example.com")
	require.NoError(t, err)

	// Path and query args arrive through the coerced schema, so string
	// forms of typed values are fine.
	req, err := c.NewRequest(context.Background(), "hello", twinroute.GET, Args{
		Path:  map[string]any{"name": "world"},
		Query: map[string]any{"excited": "true"},
	})
	require.NoError(t, err)
	assert.Equal(t, "excited=true", req.URL.RawQuery)
}

func TestNewRequest_EscapesPathValues(t *testing.T) {
	c, err := New(testTable(t), "https://api.example.com")
	require.NoError(t, err)

	req, err := c.NewRequest(context.Background(), "hello", twinroute.GET, Args{
		Path: map[string]any{"name": "a b"},
	})
	require.NoError(t, err)
	assert.Equal(t, "/hello/a%20b", req.URL.RequestURI())
}

func TestNewRequest_BasePathJoin(t *testing.T) {
	c, err := New(testTable(t), "https://api.example.com/v2/")
	require.NoError(t, err)

	req, err := c.NewRequest(context.Background(), "hello", twinroute.GET, Args{
		Path: map[string]any{"name": "world"},
	})
	require.NoError(t, err)
	assert.Equal(t, "/v2/hello/world", req.URL.Path)
}

func TestNewRequest_Body(t *testing.T) {
	c, err := New(testTable(t), "https://api.example.com")
	require.NoError(t, err)

	req, err := c.NewRequest(context.Background(), "createPost", twinroute.POST, Args{
		Body: map[string]any{"title": "first"},
	})
	require.NoError(t, err)

	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
	raw, err := io.ReadAll(req.Body)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "first", decoded["title"])
}

func TestNewRequest_HeaderMerge(t *testing.T) {
	c, err := New(testTable(t), "https://api.example.com",
		WithDefaultHeaders(map[string]string{
			"Authorization": "Bearer abc",
			"X-Tenant":      "acme",
		}),
	)
	require.NoError(t, err)

	req, err := c.NewRequest(context.Background(), "hello", twinroute.GET, Args{
		Path: map[string]any{"name": "world"},
		Headers: map[string]string{
			"X-Tenant":  "",         // empty value removes the default
			"X-Request": "trace-42", // per-call addition
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "Bearer abc", req.Header.Get("authorization"))
	assert.Empty(t, req.Header.Get("x-tenant"))
	assert.Equal(t, "trace-42", req.Header.Get("x-request"))
}

func TestCall_RoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/hello/world", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("excited"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"greeting":"Hello, world!"}`)
	}))
	defer srv.Close()

	c, err := New(testTable(t), srv.URL)
	require.NoError(t, err)

	var out struct {
		Greeting string `json:"greeting"`
	}
	err = c.CallJSON(context.Background(), "hello", twinroute.GET, Args{
		Path:  map[string]any{"name": "world"},
		Query: map[string]any{"excited": true},
	}, &out)
	require.NoError(t, err)
	assert.Equal(t, "Hello, world!", out.Greeting)
}

func TestCallJSON_ErrorHandler(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	handlerErr := errors.New("upstream rejected the call")
	c, err := New(testTable(t), srv.URL,
		WithErrorHandler(func(resp *http.Response) error {
			defer resp.Body.Close() //nolint:errcheck // read-side close
			assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
			return handlerErr
		}),
	)
	require.NoError(t, err)

	err = c.CallJSON(context.Background(), "hello", twinroute.GET, Args{
		Path: map[string]any{"name": "world"},
	}, nil)
	assert.ErrorIs(t, err, handlerErr)
}

func TestCallJSON_NoErrorHandlerDecodesAnyway(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"message":"Invalid query string"}`)
	}))
	defer srv.Close()

	c, err := New(testTable(t), srv.URL)
	require.NoError(t, err)

	var out map[string]any
	err = c.CallJSON(context.Background(), "hello", twinroute.GET, Args{
		Path: map[string]any{"name": "world"},
	}, &out)
	require.NoError(t, err, "without a handler the body is decoded regardless of status")
	assert.Equal(t, "Invalid query string", out["message"])
}

func TestUsageError_Unwrap(t *testing.T) {
	c, err := New(testTable(t), "https://api.example.com")
	require.NoError(t, err)

	_, err = c.NewRequest(context.Background(), "hello", twinroute.GET, Args{
		Path: map[string]any{"name": ""},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, schema.ErrSchema, "schema failures stay reachable through the usage error")
}
