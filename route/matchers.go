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

package route

// EventView is the narrow slice of the incoming-event contract the
// matchers need. The root router package's Event interface is a superset
// of this one, so any router.Event is directly assignable here without an
// import back into router (which would cycle).
type EventView interface {
	Pathname() string
	DecodedPathname() (string, bool)
	Host() string
	Protocol() string
	IsMethod(method string) bool
}

// Matcher is an independent predicate evaluated against an event and a
// compiled route. Matches iterates a configurable list of Matchers in
// order and short-circuits on the first false. includeMethod lets a caller
// (RouteCollection's method-not-allowed fallback) skip the method check
// without rebuilding the list.
type Matcher func(ev EventView, rt *Route, includeMethod bool) bool

// MatchURI matches the event's decoded pathname (falling back to the raw
// pathname) against the route's compiled regex, including the host when
// the route declares a domain constraint.
func MatchURI(ev EventView, rt *Route, includeMethod bool) bool {
	pathname := ev.Pathname()
	if decoded, ok := ev.DecodedPathname(); ok {
		pathname = decoded
	}
	subject := pathname
	if rt.HasDomain() {
		subject = ev.Host() + pathname
	}
	return rt.uriRegexp.MatchString(subject)
}

// MatchMethod matches the event's method against the route's method.
// Skipped entirely when includeMethod is false.
func MatchMethod(ev EventView, rt *Route, includeMethod bool) bool {
	if !includeMethod {
		return true
	}
	return ev.IsMethod(rt.opts.Method)
}

// MatchProtocol matches the event's protocol against the route's declared
// protocol restriction, if any.
func MatchProtocol(ev EventView, rt *Route, includeMethod bool) bool {
	switch rt.opts.Protocol {
	case "http":
		return ev.Protocol() == "http"
	case "https":
		return ev.Protocol() == "https"
	default:
		return true
	}
}

// MatchHost always passes: the domain portion of a route's template is
// folded into the same regex MatchURI evaluates, so there is nothing left
// to check independently. It exists as its own predicate so the
// registration-order/short-circuit invariant applies to host matching too,
// exactly as spec.md's four-matcher list describes.
func MatchHost(ev EventView, rt *Route, includeMethod bool) bool {
	return true
}

// DefaultMatchers is the order C2 predicates run in: uri, method, protocol,
// host.
func DefaultMatchers() []Matcher {
	return []Matcher{MatchURI, MatchMethod, MatchProtocol, MatchHost}
}

// Matches runs rt's matcher list against ev in registration order,
// short-circuiting on the first false.
func (rt *Route) Matches(ev EventView, includeMethod bool) bool {
	for _, m := range rt.matchers {
		if !m(ev, rt, includeMethod) {
			return false
		}
	}
	return true
}
