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
	"net/url"

	"corepath.dev/corepath/route"
)

// Event is the incoming-event contract the router consumes. A concrete
// server-side implementation wraps an *http.Request; a browser-side one
// wraps the History API's current location. The router never constructs
// one itself.
type Event interface {
	URL() *url.URL
	Pathname() string
	// DecodedPathname returns a percent-decoded pathname, or ("", false) if
	// the event does not distinguish it from Pathname.
	DecodedPathname() (string, bool)
	Method() string
	Protocol() string
	Host() string
	// GetURI returns the full request URI; required by Route.Bind.
	GetURI() string
	Query() map[string]string
	IsMethod(method string) bool
	// PreferredType reports the response flavor an error handler should
	// render: "html", "json", "text", "xml", or an implementation-defined
	// value.
	PreferredType() string
	// SetRouteResolver installs a closure the event can later call to
	// retrieve the route currently bound to it.
	SetRouteResolver(resolver func() *route.Route)
	GetMetadataValue(key string) (any, bool)
}

// Response is the outgoing-response contract the router produces for its
// built-in OPTIONS fallback. Redirect routes do not produce a Response:
// their result is the *dispatch.RedirectTarget the redirect dispatcher
// returns. Handler results are passed through unchanged; the router never
// transforms them.
type Response struct {
	StatusCode int
	Headers    map[string]string
	Content    map[string]any
}

// Resolver is the optional external dependency-resolution collaborator
// used for class instantiation and string-bound binder aliases.
type Resolver interface {
	Resolve(idOrClass string, singleton bool) (any, error)
	Has(id string) bool
	Alias(id string, aliases ...string)
	Instance(id string, value any)
}

// Emitter is the optional external event-emitter collaborator used by
// Router.On and the "routing"/"routed" lifecycle events.
type Emitter interface {
	Emit(name string, payload any)
	On(name string, listener func(payload any))
}

// History is the optional browser-history collaborator Navigate delegates
// to. A Go process has no "browser global" of its own — this is the seam
// an embedder running under GOOS=js/wasm (or proxying to an actual
// browser) supplies to make Navigate do something real; without one,
// Navigate always fails with ErrNoBrowser.
type History interface {
	// PushState pushes url onto the history stack.
	PushState(url string)
	// ReplaceState replaces the current history entry with url.
	ReplaceState(url string)
}
