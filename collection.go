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
	"fmt"
	"sort"
	"strings"

	"corepath.dev/corepath/route"
)

// RouteCollection is C5: the ordered set of compiled routes a Router
// dispatches against, indexed by method and by name for fast lookup.
// Registration order is preserved because the first matching route wins.
type RouteCollection struct {
	routes   []*route.Route
	byMethod map[string][]*route.Route
	byName   map[string]*route.Route
	fallback *route.Route
}

// NewRouteCollection returns an empty collection.
func NewRouteCollection() *RouteCollection {
	return &RouteCollection{
		byMethod: make(map[string][]*route.Route),
		byName:   make(map[string]*route.Route),
	}
}

// Add appends rt to the collection, indexing it by method and, if named, by
// name (a later route with the same name overwrites the name index entry,
// but both routes remain reachable by method/path matching).
func (rc *RouteCollection) Add(rt *route.Route) {
	if rt.IsFallback() {
		rc.fallback = rt
	}
	rc.routes = append(rc.routes, rt)
	rc.byMethod[rt.Method()] = append(rc.byMethod[rt.Method()], rt)
	if rt.Name() != "" {
		rc.byName[rt.Name()] = rt
	}
}

// Routes returns every route in registration order.
func (rc *RouteCollection) Routes() []*route.Route { return rc.routes }

// GetRoutesByMethod returns the routes registered for method, in
// registration order.
func (rc *RouteCollection) GetRoutesByMethod(method string) []*route.Route {
	return rc.byMethod[method]
}

// GetByName returns the route registered under name, if any.
func (rc *RouteCollection) GetByName(name string) (*route.Route, bool) {
	rt, ok := rc.byName[name]
	return rt, ok
}

// HasNamedRoute reports whether name is registered.
func (rc *RouteCollection) HasNamedRoute(name string) bool {
	_, ok := rc.byName[name]
	return ok
}

// bindableEvent is the event contract Match needs: EventView for the
// matcher predicates, plus whatever route.BindEvent additionally requires
// so the caller never has to re-type-assert after a match.
type bindableEvent = route.BindEvent

// Match finds the first registered route whose matchers all pass against
// ev, evaluating method as part of the matcher chain. If every matcher but
// method passes for at least one route sharing ev's path, Match returns a
// *MethodNotAllowedError listing every method that path does accept. If
// ev's method is OPTIONS and at least one route's path matches, Match
// returns a nil route and an internal *optionsAllowed error carrying the
// methods of every route whose path matches, so the caller can synthesize
// a bare OPTIONS response per spec.md's built-in OPTIONS handling.
// Otherwise it returns *RouteNotFoundError. Synthesized HEAD twins take
// part in the full match but are left out of the allowed-method list.
func (rc *RouteCollection) Match(ev bindableEvent) (*route.Route, error) {
	for _, rt := range rc.routes {
		if rt.IsFallback() {
			continue
		}
		if rt.Matches(ev, true) {
			return rt, nil
		}
	}

	// The fallback route's own Method (a mapper bookkeeping artifact — it
	// has to carry some verb to satisfy route construction) must not
	// participate here: its wildcard path matches every request, so if it
	// were scanned alongside real routes, a non-GET request to an
	// otherwise-unmatched path would see a path match with "GET" as the
	// only allowed method and report 405 instead of ever reaching the
	// fallback below. A fallback route matches when no other route would,
	// regardless of method.
	var allowed []string
	pathMatches := false
	for _, rt := range rc.routes {
		if rt.IsInternalHeader() || rt.IsFallback() {
			continue
		}
		if rt.Matches(ev, false) {
			pathMatches = true
			allowed = append(allowed, rt.Method())
		}
	}

	if pathMatches {
		if ev.IsMethod("OPTIONS") {
			return nil, &optionsAllowed{allowed: allowed}
		}
		return nil, &MethodNotAllowedError{
			Method:  methodOf(ev),
			Path:    ev.Pathname(),
			Allowed: dedupeMethods(allowed),
		}
	}

	if rc.fallback != nil {
		return rc.fallback, nil
	}

	return nil, &RouteNotFoundError{Method: methodOf(ev), Path: ev.Pathname()}
}

// optionsAllowed is an internal signal, not a user-facing error: it lets
// Match report the allowed-method set for a bare OPTIONS request without
// the caller mistaking it for a failed match. The Router's Dispatch method
// unwraps it into a built-in Response.
type optionsAllowed struct {
	allowed []string
}

func (e *optionsAllowed) Error() string {
	return fmt.Sprintf("router: OPTIONS preflight (allowed: %s)", strings.Join(dedupeMethods(e.allowed), ","))
}

// AllowedHeader renders the Allow header value: the allowed methods,
// deduplicated, sorted, comma-joined.
func (e *optionsAllowed) AllowedHeader() string {
	return strings.Join(dedupeMethods(e.allowed), ",")
}

func dedupeMethods(methods []string) []string {
	seen := make(map[string]bool, len(methods))
	out := make([]string, 0, len(methods))
	for _, m := range methods {
		if seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

// methodOf extracts a plain method string from an event for error
// reporting. Events report their method via IsMethod rather than a direct
// accessor, so this probes the common verb set.
func methodOf(ev bindableEvent) string {
	for _, m := range []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS", "HEAD"} {
		if ev.IsMethod(m) {
			return m
		}
	}
	return ""
}

// Dump returns every non-internal route's introspection record, sorted by
// path then method, for the CLI and debugging surfaces.
func (rc *RouteCollection) Dump() []route.Info {
	var infos []route.Info
	for _, rt := range rc.routes {
		if rt.IsInternalHeader() {
			continue
		}
		infos = append(infos, rt.Info())
	}
	sort.Slice(infos, func(i, j int) bool {
		if infos[i].Path != infos[j].Path {
			return infos[i].Path < infos[j].Path
		}
		return infos[i].Method < infos[j].Method
	})
	return infos
}

// String renders a human-readable route table, the same data Dump exposes
// structurally.
func (rc *RouteCollection) String() string {
	var b strings.Builder
	for _, info := range rc.Dump() {
		name := info.Name
		if name == "" {
			name = "-"
		}
		fmt.Fprintf(&b, "%-7s %-40s %-20s %s\n", info.Method, info.Path, name, info.HandlerName)
	}
	return b.String()
}

// Len returns the number of registered routes, including internal ones.
func (rc *RouteCollection) Len() int { return len(rc.routes) }
