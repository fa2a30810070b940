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

// Package promrecorder implements router.ObservabilityRecorder directly
// on github.com/prometheus/client_golang, for callers who already run a
// Prometheus registry and would rather not pull in an OpenTelemetry
// metrics pipeline just to scrape dispatch counters.
package promrecorder

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	router "corepath.dev/corepath"
)

// Recorder is a router.ObservabilityRecorder that records dispatch
// duration and counts as Prometheus vectors labeled by method, route,
// and error kind.
type Recorder struct {
	registry *prometheus.Registry

	duration *prometheus.HistogramVec
	total    *prometheus.CounterVec
	errors   *prometheus.CounterVec
}

// New registers the dispatch instruments on a fresh registry and
// returns the Recorder. Use Handler to serve the registry over HTTP.
func New() *Recorder {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Recorder{
		registry: registry,
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name: "router_dispatch_duration_seconds",
			Help: "Duration of router.Dispatch calls in seconds",
		}, []string{"method", "route"}),
		total: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "router_dispatch_total",
			Help: "Total number of router.Dispatch calls",
		}, []string{"method", "route"}),
		errors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "router_dispatch_errors_total",
			Help: "Total number of router.Dispatch calls that returned an error",
		}, []string{"method", "route", "error_kind"}),
	}
}

// Handler returns an http.Handler serving the recorder's registry in
// the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// dispatchState carries the per-call data StartDispatch hands back to
// EndDispatch.
type dispatchState struct {
	method string
	start  time.Time
}

// StartDispatch records the call's start time. Prometheus recording is
// synchronous and needs no span-carrying context, so the returned
// context is unchanged.
func (r *Recorder) StartDispatch(ctx context.Context, method, path string) (context.Context, any) {
	return ctx, &dispatchState{method: method, start: time.Now()}
}

// EndDispatch observes the duration histogram and increments the
// request/error counters, labeled by the matched route name (or ""
// when nothing matched).
func (r *Recorder) EndDispatch(_ context.Context, state any, routeName string, duration time.Duration, errKind router.Kind) {
	st, ok := state.(*dispatchState)
	if !ok || st == nil {
		return
	}

	r.duration.WithLabelValues(st.method, routeName).Observe(duration.Seconds())
	r.total.WithLabelValues(st.method, routeName).Inc()
	if errKind != "" {
		r.errors.WithLabelValues(st.method, routeName, string(errKind)).Inc()
	}
}
