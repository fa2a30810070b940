// Copyright 2025 The Corepath Authors
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

// Package otelrecorder implements router.ObservabilityRecorder on top of
// OpenTelemetry metrics and tracing. It brackets a single Dispatch call
// with a span and records a duration histogram plus request/error
// counters, the same instruments the rivaas metrics middleware exposes,
// narrowed to the core's match+bind+run lifecycle instead of a full
// HTTP request/response.
package otelrecorder

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	router "corepath.dev/corepath"
)

// Recorder is a router.ObservabilityRecorder backed by an OpenTelemetry
// MeterProvider and TracerProvider. The zero value is not usable; build
// one with New.
type Recorder struct {
	tracer trace.Tracer

	dispatchDuration metric.Float64Histogram
	dispatchCount    metric.Int64Counter
	dispatchErrors   metric.Int64Counter

	serviceName    string
	serviceVersion string
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithServiceName attaches a service.name attribute to every recorded
// metric and span. Defaults to "corepath".
func WithServiceName(name string) Option {
	return func(r *Recorder) { r.serviceName = name }
}

// WithServiceVersion attaches a service.version attribute. Defaults to
// "" (omitted).
func WithServiceVersion(version string) Option {
	return func(r *Recorder) { r.serviceVersion = version }
}

// New builds a Recorder from the given MeterProvider and TracerProvider,
// creating the dispatch-duration histogram and request/error counters.
func New(mp metric.MeterProvider, tp trace.TracerProvider, opts ...Option) (*Recorder, error) {
	r := &Recorder{
		tracer:      tp.Tracer("corepath.dev/corepath"),
		serviceName: "corepath",
	}
	for _, opt := range opts {
		opt(r)
	}

	meter := mp.Meter("corepath.dev/corepath")

	var err error
	r.dispatchDuration, err = meter.Float64Histogram(
		"router_dispatch_duration_seconds",
		metric.WithDescription("Duration of router.Dispatch calls in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("otelrecorder: create dispatch duration histogram: %w", err)
	}

	r.dispatchCount, err = meter.Int64Counter(
		"router_dispatch_total",
		metric.WithDescription("Total number of router.Dispatch calls"),
	)
	if err != nil {
		return nil, fmt.Errorf("otelrecorder: create dispatch counter: %w", err)
	}

	r.dispatchErrors, err = meter.Int64Counter(
		"router_dispatch_errors_total",
		metric.WithDescription("Total number of router.Dispatch calls that returned an error"),
	)
	if err != nil {
		return nil, fmt.Errorf("otelrecorder: create dispatch error counter: %w", err)
	}

	return r, nil
}

// dispatchState carries the per-call data StartDispatch hands back to
// EndDispatch: the open span plus the attributes that don't change
// between the two calls.
type dispatchState struct {
	span   trace.Span
	method string
	path   string
	start  time.Time
}

// StartDispatch opens a span for the dispatch and records its start
// time.
func (r *Recorder) StartDispatch(ctx context.Context, method, path string) (context.Context, any) {
	ctx, span := r.tracer.Start(ctx, "router.dispatch",
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("http.route_candidate", path),
		),
	)
	return ctx, &dispatchState{span: span, method: method, path: path, start: time.Now()}
}

// EndDispatch closes the span and records the duration and count
// instruments. routeName is "" when nothing matched; errKind is ""
// on success.
func (r *Recorder) EndDispatch(ctx context.Context, state any, routeName string, duration time.Duration, errKind router.Kind) {
	st, ok := state.(*dispatchState)
	if !ok || st == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("http.method", st.method),
		attribute.String("service.name", r.serviceName),
	}
	if r.serviceVersion != "" {
		attrs = append(attrs, attribute.String("service.version", r.serviceVersion))
	}
	if routeName != "" {
		attrs = append(attrs, attribute.String("router.route", routeName))
		st.span.SetAttributes(attribute.String("router.route", routeName))
	} else {
		attrs = append(attrs, attribute.String("http.route_candidate", st.path))
	}

	if errKind != "" {
		attrs = append(attrs, attribute.String("router.error_kind", string(errKind)))
		st.span.SetStatus(codes.Error, string(errKind))
		r.dispatchErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
	} else {
		st.span.SetStatus(codes.Ok, "")
	}

	set := metric.WithAttributes(attrs...)
	r.dispatchDuration.Record(ctx, duration.Seconds(), set)
	r.dispatchCount.Add(ctx, 1, set)

	st.span.End()
}
