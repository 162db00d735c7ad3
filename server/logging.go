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
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// LogRecorder writes one structured access-log line per dispatched
// request. When the request context carries an active OpenTelemetry span,
// trace_id and span_id are attached so log lines correlate with traces.
//
// Combine it with [OTelRecorder] through [MultiRecorder]:
//
//	otelRec, _ := server.NewOTelRecorder()
//	server.New(table, handlers,
//	    server.WithObservability(server.MultiRecorder(
//	        otelRec,
//	        server.NewLogRecorder(slog.Default()),
//	    )),
//	)
type LogRecorder struct {
	log *slog.Logger
}

// NewLogRecorder builds a recorder writing to log. A nil logger falls
// back to slog.Default.
func NewLogRecorder(log *slog.Logger) *LogRecorder {
	if log == nil {
		log = slog.Default()
	}
	return &LogRecorder{log: log}
}

type logState struct {
	start  time.Time
	remote string
	path   string
}

// OnDispatchStart implements [Recorder].
func (r *LogRecorder) OnDispatchStart(ctx context.Context, req *http.Request) (context.Context, any) {
	return ctx, &logState{
		start:  time.Now(),
		remote: req.RemoteAddr,
		path:   req.URL.Path,
	}
}

// OnDispatchEnd implements [Recorder].
func (r *LogRecorder) OnDispatchEnd(ctx context.Context, state any, route, method string, status int) {
	st, ok := state.(*logState)
	if !ok {
		return
	}

	attrs := []any{
		"method", method,
		"route", route,
		"path", st.path,
		"status", status,
		"remote", st.remote,
		"duration_ms", time.Since(st.start).Milliseconds(),
	}
	if sc := trace.SpanFromContext(ctx).SpanContext(); sc.IsValid() {
		attrs = append(attrs,
			"trace_id", sc.TraceID().String(),
			"span_id", sc.SpanID().String(),
		)
	}

	r.log.InfoContext(ctx, "request dispatched", attrs...)
}

// multiRecorder fans the dispatch lifecycle out to several recorders.
// Start runs in argument order and End in reverse, so a tracing recorder
// listed first has its span visible to the loggers listed after it.
type multiRecorder struct {
	recorders []Recorder
}

// MultiRecorder combines recorders into one.
func MultiRecorder(recorders ...Recorder) Recorder {
	if len(recorders) == 1 {
		return recorders[0]
	}
	return &multiRecorder{recorders: recorders}
}

// OnDispatchStart implements [Recorder].
func (m *multiRecorder) OnDispatchStart(ctx context.Context, req *http.Request) (context.Context, any) {
	states := make([]any, len(m.recorders))
	for i, r := range m.recorders {
		ctx, states[i] = r.OnDispatchStart(ctx, req)
	}
	return ctx, states
}

// OnDispatchEnd implements [Recorder].
func (m *multiRecorder) OnDispatchEnd(ctx context.Context, state any, route, method string, status int) {
	states, ok := state.([]any)
	if !ok {
		return
	}
	for i := len(m.recorders) - 1; i >= 0; i-- {
		m.recorders[i].OnDispatchEnd(ctx, states[i], route, method, status)
	}
}
