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
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogRecorder_AccessLine(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))

	d := New(helloTable(t), helloHandlers(),
		WithObservability(NewLogRecorder(log)),
	)

	rec := httptest.NewRecorder()
	d.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/hello/world", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	line := buf.String()
	assert.Contains(t, line, "request dispatched")
	assert.Contains(t, line, "method=GET")
	assert.Contains(t, line, "route=hello/:name")
	assert.Contains(t, line, "status=200")
	assert.Contains(t, line, "path=/hello/world")
	assert.NotContains(t, line, "trace_id", "no span in context means no correlation fields")
}

func TestLogRecorder_RecordsFailures(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))

	d := New(helloTable(t), helloHandlers(),
		WithObservability(NewLogRecorder(log)),
	)

	rec := httptest.NewRecorder()
	d.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/hello/world?excited=maybe", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, buf.String(), "status=400")
}

type countingRecorder struct {
	starts int
	ends   int
	order  *[]string
	name   string
}

func (c *countingRecorder) OnDispatchStart(ctx context.Context, req *http.Request) (context.Context, any) {
	c.starts++
	*c.order = append(*c.order, c.name+":start")
	return ctx, c.name
}

func (c *countingRecorder) OnDispatchEnd(ctx context.Context, state any, route, method string, status int) {
	c.ends++
	*c.order = append(*c.order, c.name+":end")
}

func TestMultiRecorder_Order(t *testing.T) {
	var order []string
	first := &countingRecorder{order: &order, name: "first"}
	second := &countingRecorder{order: &order, name: "second"}

	d := New(helloTable(t), helloHandlers(),
		WithObservability(MultiRecorder(first, second)),
	)

	rec := httptest.NewRecorder()
	d.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/hello/world", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, 1, first.starts)
	assert.Equal(t, 1, second.ends)
	assert.Equal(t, []string{"first:start", "second:start", "second:end", "first:end"}, order,
		"end runs in reverse of start")
}
