// Copyright 2025 The Rivaas Authors
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

package webengine

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ObservabilityRecorder provides request lifecycle hooks so a server can
// emit traces, metrics, and access logs without the engine's core dispatch
// path knowing anything about a particular backend. The no-op
// implementation returned by NoopRecorder is the default; installing a
// recorder never changes control flow, only what gets recorded.
//
// Lifecycle, driven entirely by Server:
//  1. OnRequestStart(ctx, req) -> enriched ctx, opaque state
//  2. routing and handler execution happen
//  3. OnRequestEnd(ctx, state, resp, routePattern)
//
// routePattern is the matched route's pattern, or a sentinel such as
// "_unmatched" or "_static" when no route object exists, so that metrics
// cardinality stays bounded by route count rather than unique paths.
type ObservabilityRecorder interface {
	OnRequestStart(ctx context.Context, req *Request) (context.Context, any)
	OnRequestEnd(ctx context.Context, state any, resp *Response, routePattern string)
}

type noopRecorder struct{}

func (noopRecorder) OnRequestStart(ctx context.Context, _ *Request) (context.Context, any) {
	return ctx, nil
}
func (noopRecorder) OnRequestEnd(context.Context, any, *Response, string) {}

// NoopRecorder returns an ObservabilityRecorder that records nothing.
func NoopRecorder() ObservabilityRecorder { return noopRecorder{} }

// tracingState is the opaque state token threaded between OnRequestStart
// and OnRequestEnd by TracingRecorder.
type tracingState struct {
	span  trace.Span
	start time.Time
}

// TracingRecorder is an ObservabilityRecorder backed by an OpenTelemetry
// tracer. Each request becomes one span named "<method> <path>", annotated
// with the matched route pattern and final status code once known.
type TracingRecorder struct {
	tracer trace.Tracer
}

// NewTracingRecorder builds a TracingRecorder using the given tracer name
// (typically the server/module name) resolved through the global OTel
// TracerProvider.
func NewTracingRecorder(tracerName string) *TracingRecorder {
	return &TracingRecorder{tracer: otel.Tracer(tracerName)}
}

// OnRequestStart starts a span named "<method> <path>".
func (t *TracingRecorder) OnRequestStart(ctx context.Context, req *Request) (context.Context, any) {
	spanCtx, span := t.tracer.Start(ctx, req.Method()+" "+req.Path(),
		trace.WithAttributes(
			attribute.String("http.method", req.Method()),
			attribute.String("http.path", req.Path()),
			attribute.String("request.id", req.ID()),
		),
	)
	return spanCtx, &tracingState{span: span, start: time.Now()}
}

// OnRequestEnd records the matched route and final status, then ends the
// span.
func (t *TracingRecorder) OnRequestEnd(_ context.Context, state any, resp *Response, routePattern string) {
	st, ok := state.(*tracingState)
	if !ok || st == nil {
		return
	}
	status := resp.Status()
	st.span.SetAttributes(
		attribute.String("http.route", routePattern),
		attribute.Int("http.status_code", status),
		attribute.Int64("http.duration_ms", time.Since(st.start).Milliseconds()),
	)
	if status >= 500 {
		st.span.SetStatus(codes.Error, "handler reported a server error")
	}
	st.span.End()
}

// multiRecorder fans a single lifecycle out to several recorders, each
// keeping its own opaque state. Useful for combining a TracingRecorder and
// a PrometheusRecorder under one Option.
type multiRecorder struct {
	recorders []ObservabilityRecorder
}

// CombineRecorders returns an ObservabilityRecorder that drives every
// recorder in recorders.
func CombineRecorders(recorders ...ObservabilityRecorder) ObservabilityRecorder {
	return &multiRecorder{recorders: recorders}
}

func (m *multiRecorder) OnRequestStart(ctx context.Context, req *Request) (context.Context, any) {
	states := make([]any, len(m.recorders))
	for i, rec := range m.recorders {
		var st any
		ctx, st = rec.OnRequestStart(ctx, req)
		states[i] = st
	}
	return ctx, states
}

func (m *multiRecorder) OnRequestEnd(ctx context.Context, state any, resp *Response, routePattern string) {
	states, ok := state.([]any)
	if !ok {
		return
	}
	for i, rec := range m.recorders {
		if i < len(states) {
			rec.OnRequestEnd(ctx, states[i], resp, routePattern)
		}
	}
}
