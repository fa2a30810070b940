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

// DiagnosticEvent represents a router diagnostic or anomaly: informational
// events that may indicate a configuration issue worth a human's attention.
// The router functions correctly whether or not they are collected.
type DiagnosticEvent struct {
	Kind    DiagnosticKind
	Message string
	Fields  map[string]any
}

// DiagnosticKind categorizes diagnostic events.
type DiagnosticKind string

const (
	// DiagHighParamCount fires when a route declares more than 8 parameters.
	DiagHighParamCount DiagnosticKind = "route_param_count_high"
	// DiagRouteRegistered fires once per route produced by the mapper,
	// except synthesized internal HEAD twins.
	DiagRouteRegistered DiagnosticKind = "route_registered"
	// DiagHeadSynthesisSuppressed names the case of a user-defined HEAD
	// route preventing synthesis of the usual HEAD twin of a GET route. No
	// component currently emits it.
	DiagHeadSynthesisSuppressed DiagnosticKind = "head_synthesis_suppressed"
	// DiagDepthGuardNearLimit names the case of a definition nesting within
	// one level of the mapper's maxDepth. No component currently emits it.
	DiagDepthGuardNearLimit DiagnosticKind = "depth_guard_near_limit"
	// DiagBindingFallback names the case of a binder returning its raw
	// input unchanged. No component currently emits it.
	DiagBindingFallback DiagnosticKind = "binding_fallback"
)

// DiagnosticHandler receives diagnostic events from the router. Implementations
// may log, emit metrics, trace events, or ignore them. Optional: if not
// provided, diagnostics are silently dropped.
type DiagnosticHandler interface {
	OnDiagnostic(DiagnosticEvent)
}

// DiagnosticHandlerFunc is a function adapter for DiagnosticHandler.
type DiagnosticHandlerFunc func(DiagnosticEvent)

func (f DiagnosticHandlerFunc) OnDiagnostic(e DiagnosticEvent) { f(e) }

func (r *Router) emit(kind DiagnosticKind, msg string, fields map[string]any) {
	if r.cfg.diagnostics == nil {
		return
	}
	r.cfg.diagnostics.OnDiagnostic(DiagnosticEvent{Kind: kind, Message: msg, Fields: fields})
}
