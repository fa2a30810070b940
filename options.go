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

package router

import (
	"log/slog"

	"corepath.dev/corepath/dispatch"
	"corepath.dev/corepath/route"
)

// config holds every Router-wide dependency and setting a Router can be
// constructed or reconfigured with.
type config struct {
	diagnostics    DiagnosticHandler
	logger         *slog.Logger
	observability  ObservabilityRecorder
	maxDepth       int
	rules          map[string]string
	defaults       map[string]any
	bindings       map[string]any
	middleware     []any
	matchers       []route.Matcher
	dispatchTable  map[dispatch.Kind]dispatch.Dispatcher
	resolver       Resolver
	emitter        Emitter
	history        History
	skipMiddleware bool
	strict         bool
}

func defaultConfig() config {
	return config{
		logger:        slog.Default(),
		observability: noopRecorder{},
		maxDepth:      32,
	}
}

// Option configures a Router at construction (New/MustNew) or
// reconfiguration (Configure) time.
type Option func(*config)

// WithDiagnostics sets the handler that receives DiagnosticEvents emitted
// while the router builds its RouteCollection.
//
// Diagnostic events are optional informational signals — a registered
// route, a route with an unusually high parameter count. The router
// functions identically whether or not they are collected.
//
// Example:
//
//	handler := router.DiagnosticHandlerFunc(func(e router.DiagnosticEvent) {
//	    slog.Warn(e.Message, "kind", e.Kind, "fields", e.Fields)
//	})
//	r := router.MustNew(router.WithDiagnostics(handler))
func WithDiagnostics(handler DiagnosticHandler) Option {
	return func(c *config) { c.diagnostics = handler }
}

// WithLogger sets the *slog.Logger stored in the router's configuration.
// Defaults to slog.Default(). The router writes no log records of its own
// through it; failures are reported only as returned errors.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithObservability wires a metrics/tracing recorder around every
// Dispatch call. See ObservabilityRecorder.
func WithObservability(recorder ObservabilityRecorder) Option {
	return func(c *config) {
		if recorder == nil {
			recorder = noopRecorder{}
		}
		c.observability = recorder
	}
}

// WithMaxDepth sets the mapper's nesting limit for route definitions.
// Defaults to 32. Must be greater than zero or Configure/New fails.
func WithMaxDepth(depth int) Option {
	return func(c *config) { c.maxDepth = depth }
}

// WithRules sets router-wide default regex fragments for named
// parameters, inherited by every root-level definition and overridden by
// any rules a definition declares itself.
func WithRules(rules map[string]string) Option {
	return func(c *config) { c.rules = rules }
}

// WithDefaults sets router-wide default values for named parameters.
func WithDefaults(defaults map[string]any) Option {
	return func(c *config) { c.defaults = defaults }
}

// WithBindings sets router-wide binders for named parameters.
func WithBindings(bindings map[string]any) Option {
	return func(c *config) { c.bindings = bindings }
}

// WithMiddleware appends global middleware, run before every route's own
// middleware for every dispatch. See Router.Use for the equivalent
// post-construction call.
func WithMiddleware(mw ...any) Option {
	return func(c *config) { c.middleware = append(c.middleware, mw...) }
}

// WithMatchers replaces the C2 matcher list every route is constructed
// with. Defaults to route.DefaultMatchers() (uri, method, protocol,
// host) when never set.
func WithMatchers(matchers ...route.Matcher) Option {
	return func(c *config) { c.matchers = matchers }
}

// WithDispatchers replaces the C3 dispatch table every route is
// constructed with. Defaults to dispatch.DefaultTable() when never set.
func WithDispatchers(table map[dispatch.Kind]dispatch.Dispatcher) Option {
	return func(c *config) { c.dispatchTable = table }
}

// WithResolver sets the external dependency-resolution collaborator used
// for class-handler instantiation and string-bound binder aliases.
func WithResolver(resolver Resolver) Option {
	return func(c *config) { c.resolver = resolver }
}

// WithEmitter sets the external event-emitter collaborator Router.On and
// the "routing"/"routed" lifecycle events delegate to.
func WithEmitter(emitter Emitter) Option {
	return func(c *config) { c.emitter = emitter }
}

// WithHistory wires the browser-history collaborator Navigate delegates
// to. Leave unset outside a browser-hosted embedding; Navigate then
// always fails with ErrNoBrowser, as spec'd.
func WithHistory(history History) Option {
	return func(c *config) { c.history = history }
}

// WithSkipMiddleware disables gatherRouteMiddleware entirely: Dispatch
// still matches, binds, and runs, but returns no middleware chain.
func WithSkipMiddleware(skip bool) Option {
	return func(c *config) { c.skipMiddleware = skip }
}

// WithStrict sets the router-wide default for the strict matching flag
// (exact trailing-slash matching), inherited by every root-level
// definition that doesn't set Strict itself.
func WithStrict(strict bool) Option {
	return func(c *config) { c.strict = strict }
}
