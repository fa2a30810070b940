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
	"context"
	"time"
)

// ObservabilityRecorder is the router's unified hook for metrics and
// tracing around a single Dispatch call. Unlike a per-request HTTP
// middleware, this core has no request/response objects of its own — the
// recorder brackets match+bind+run instead, and is given only what the
// router itself knows: the matched route's name (or "" if unmatched), how
// long the whole dispatch (match, bind and run) took, and the error kind
// on failure.
//
// Implementations must be safe for concurrent use; Dispatch may be called
// from multiple goroutines.
type ObservabilityRecorder interface {
	// StartDispatch is called before RouteCollection.Match runs. It
	// returns a context to thread through bind/run (e.g. carrying a span)
	// and an opaque state token passed back to EndDispatch.
	StartDispatch(ctx context.Context, method, path string) (context.Context, any)

	// EndDispatch is called once Dispatch has matched, bound, and run (or
	// failed at any of those steps). routeName is "" when no route
	// matched. errKind is "" on success, else one of the stable Kind wire
	// values (RouterError, RouteNotFoundError, MethodNotAllowedError).
	EndDispatch(ctx context.Context, state any, routeName string, duration time.Duration, errKind Kind)
}

// noopRecorder is installed when no ObservabilityRecorder is configured,
// so Dispatch never has to nil-check it on the hot path.
type noopRecorder struct{}

func (noopRecorder) StartDispatch(ctx context.Context, method, path string) (context.Context, any) {
	return ctx, nil
}

func (noopRecorder) EndDispatch(ctx context.Context, state any, routeName string, duration time.Duration, errKind Kind) {
}
