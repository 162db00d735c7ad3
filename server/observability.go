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
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/twinroute/twinroute/server"

// Recorder observes the dispatch lifecycle. Implementations typically
// combine tracing, metrics, and access logging.
//
// OnDispatchStart runs once a route candidate has been selected, before
// validation; it may enrich the request context (e.g. with a trace span)
// and returns an opaque state token. OnDispatchEnd runs after the response
// has been written, with the route template, effective method, and status.
// Unmatched requests are not recorded: the dispatcher produces no response
// for them.
//
// All methods must be safe for concurrent use.
type Recorder interface {
	OnDispatchStart(ctx context.Context, req *http.Request) (context.Context, any)
	OnDispatchEnd(ctx context.Context, state any, route, method string, status int)
}

// OTelRecorder records one span, a request counter, and a duration
// histogram per dispatched request through the global OpenTelemetry
// providers. Exporter setup is the embedding application's concern.
type OTelRecorder struct {
	tracer   trace.Tracer
	requests metric.Int64Counter
	duration metric.Float64Histogram
}

// NewOTelRecorder builds a recorder against the global tracer and meter
// providers.
func NewOTelRecorder() (*OTelRecorder, error) {
	meter := otel.Meter(instrumentationName)

	requests, err := meter.Int64Counter("twinroute.dispatch.requests",
		metric.WithDescription("Dispatched requests by route, method, and status"),
	)
	if err != nil {
		return nil, err
	}
	duration, err := meter.Float64Histogram("twinroute.dispatch.duration",
		metric.WithUnit("ms"),
		metric.WithDescription("Dispatch duration from candidate selection to response"),
	)
	if err != nil {
		return nil, err
	}

	return &OTelRecorder{
		tracer:   otel.Tracer(instrumentationName),
		requests: requests,
		duration: duration,
	}, nil
}

type dispatchState struct {
	span  trace.Span
	start time.Time
}

// OnDispatchStart implements [Recorder].
func (r *OTelRecorder) OnDispatchStart(ctx context.Context, req *http.Request) (context.Context, any) {
	ctx, span := r.tracer.Start(ctx, "twinroute.dispatch",
		trace.WithSpanKind(trace.SpanKindServer),
	)
	return ctx, &dispatchState{span: span, start: time.Now()}
}

// OnDispatchEnd implements [Recorder].
func (r *OTelRecorder) OnDispatchEnd(ctx context.Context, state any, route, method string, status int) {
	st, ok := state.(*dispatchState)
	if !ok {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("http.route", route),
		attribute.String("http.request.method", method),
		attribute.Int("http.response.status_code", status),
	}

	st.span.SetAttributes(attrs...)
	st.span.End()

	opts := metric.WithAttributes(attrs...)
	r.requests.Add(ctx, 1, opts)
	r.duration.Record(ctx, float64(time.Since(st.start).Milliseconds()), opts)
}
