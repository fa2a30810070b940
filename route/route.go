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

// A Route is constructed once by the mapper and mutated only by Bind and
// the fluent setters for the rest of its lifetime, which is the lifetime
// of the owning RouteCollection.
package route

import (
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"corepath.dev/corepath/dispatch"
)

// NotFoundError mirrors the root package's RouteNotFoundError without an
// import cycle; the root package wraps it when it crosses back out of
// Bind.
type NotFoundError struct {
	Method string
	Path   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("route: no route matches %s %s", e.Method, e.Path)
}

// Options holds everything the mapper resolves before constructing a
// Route: the original definition's fields plus the dependency-injected
// matcher list, dispatch table, and resolver.
type Options struct {
	Method            string
	PathTemplate      string
	DomainTemplate    string
	Protocol          string // "", "http", "https"
	Strict            bool
	Fallback          bool
	Name              string
	Rules             map[string]string
	Defaults          map[string]any
	Bindings          map[string]any
	Middleware        []any
	ExcludeMiddleware []any
	IsInternalHeader  bool
	PageLayout        any
	CustomOptions     map[string]any

	HandlerSpec    *dispatch.HandlerSpec
	DispatcherKind dispatch.Kind
	DispatchTable  map[dispatch.Kind]dispatch.Dispatcher
	Matchers       []Matcher
	Resolver       Resolver
}

// Route is the compiled, matchable unit produced by the mapper from a
// single route definition plus the constraints the uri compiler derived
// from its path (and domain) template.
type Route struct {
	opts        Options
	constraints []Constraint
	uriRegexp   *regexp.Regexp
	hasDomain   bool
	matchers    []Matcher

	bound       bool
	routeParams map[string]any
	query       map[string]string
	eventURI    string
}

// New constructs a compiled Route. Constraints and uriRegexp are the
// output of the uri compiler; New itself performs no compilation, keeping
// C1 and C4 independently testable per spec.md's component split.
func New(opts Options, constraints []Constraint, uriRegexp *regexp.Regexp, hasDomain bool) *Route {
	matchers := opts.Matchers
	if matchers == nil {
		matchers = DefaultMatchers()
	}
	return &Route{
		opts:        opts,
		constraints: constraints,
		uriRegexp:   uriRegexp,
		hasDomain:   hasDomain,
		matchers:    matchers,
	}
}

// --- accessors -------------------------------------------------------

func (r *Route) Method() string   { return r.opts.Method }
func (r *Route) Name() string     { return r.opts.Name }
func (r *Route) Domain() string   { return r.opts.DomainTemplate }
func (r *Route) Path() string     { return r.opts.PathTemplate }
func (r *Route) Protocol() string { return r.opts.Protocol }

func (r *Route) HasDomain() bool           { return r.hasDomain }
func (r *Route) IsHTTPOnly() bool          { return r.opts.Protocol == "http" }
func (r *Route) IsHTTPSOnly() bool         { return r.opts.Protocol == "https" }
func (r *Route) IsSecure() bool            { return r.opts.Protocol == "https" }
func (r *Route) IsStrict() bool            { return r.opts.Strict }
func (r *Route) IsFallback() bool          { return r.opts.Fallback }
func (r *Route) IsInternalHeader() bool    { return r.opts.IsInternalHeader }
func (r *Route) Constraints() []Constraint { return r.constraints }

// GetOption returns an option set on the originating definition: the keys
// "pageLayout", "middleware" and "isInternalHeader" read the route's own
// options, and any other key is looked up in its customOptions, falling
// back to fallback when absent.
func (r *Route) GetOption(key string, fallback any) any {
	switch key {
	case "pageLayout":
		if r.opts.PageLayout != nil {
			return r.opts.PageLayout
		}
	case "middleware":
		return r.opts.Middleware
	case "isInternalHeader":
		return r.opts.IsInternalHeader
	default:
		if v, ok := r.opts.CustomOptions[key]; ok {
			return v
		}
	}
	return fallback
}

// IsMiddlewareExcluded reports whether mw appears in this route's
// excludeMiddleware list, by identity. Middleware values are compared by
// MiddlewareIdentity rather than ==, since a bare func value is not
// comparable and would panic the interface equality the naive check would
// otherwise use.
func (r *Route) IsMiddlewareExcluded(mw any) bool {
	key := MiddlewareIdentity(mw)
	for _, ex := range r.opts.ExcludeMiddleware {
		if MiddlewareIdentity(ex) == key {
			return true
		}
	}
	return false
}

// MiddlewareIdentity returns a comparable identity for a middleware value:
// the value itself when it is already comparable, or its underlying code
// pointer for a func (the common case, since middleware is usually a bare
// function). Two equal identities do not guarantee mw values are
// interchangeable beyond deduplication/exclusion purposes.
func MiddlewareIdentity(mw any) any {
	v := reflect.ValueOf(mw)
	switch v.Kind() {
	case reflect.Func, reflect.Slice, reflect.Map, reflect.Chan:
		return v.Pointer()
	default:
		return mw
	}
}

// Middleware returns this route's own declared middleware, in order.
func (r *Route) Middleware() []any { return r.opts.Middleware }

// AddMiddleware appends middleware to an already-constructed route —
// Router.UseOn's "if already compiled, to the Route" path.
func (r *Route) AddMiddleware(mw ...any) *Route {
	r.opts.Middleware = append(r.opts.Middleware, mw...)
	return r
}

// SetMatchers replaces the matcher list used by Matches.
func (r *Route) SetMatchers(matchers []Matcher) *Route {
	r.matchers = matchers
	return r
}

// SetDispatchers replaces the dispatch table used by Run.
func (r *Route) SetDispatchers(table map[dispatch.Kind]dispatch.Dispatcher) *Route {
	r.opts.DispatchTable = table
	return r
}

// SetResolver sets the external resolver used for bindings and class
// dispatch.
func (r *Route) SetResolver(resolver Resolver) *Route {
	r.opts.Resolver = resolver
	return r
}

// --- parameter API -----------------------------------------------------

// Params returns the bound parameter map; fails unless Bind has succeeded.
func (r *Route) Params() (map[string]any, error) {
	if !r.bound {
		return nil, fmt.Errorf("route: params accessed before bind")
	}
	return r.routeParams, nil
}

// HasParam reports whether name was produced by the last successful bind.
func (r *Route) HasParam(name string) bool {
	if !r.bound {
		return false
	}
	_, ok := r.routeParams[name]
	return ok
}

// GetParam returns the bound value for name, or fallback if unbound or
// absent.
func (r *Route) GetParam(name string, fallback any) any {
	if !r.bound {
		return fallback
	}
	if v, ok := r.routeParams[name]; ok {
		return v
	}
	return fallback
}

// GetParamNames returns every parameter name this route's template
// declares, in template order.
func (r *Route) GetParamNames() []string {
	var names []string
	for _, c := range r.constraints {
		if c.IsParameter() {
			names = append(names, c.Param)
		}
	}
	return names
}

// GetDefinedParams returns the bound parameter map, or an empty map if
// unbound.
func (r *Route) GetDefinedParams() map[string]any {
	if !r.bound {
		return map[string]any{}
	}
	return r.routeParams
}

// GetOptionalParamNames returns the names of every parameter constraint
// considered optional.
func (r *Route) GetOptionalParamNames() []string {
	var names []string
	for _, c := range r.constraints {
		if c.IsParameter() && c.IsOptional() {
			names = append(names, c.Param)
		}
	}
	return names
}

// IsParamNameOptional reports whether name's constraint is optional:
// Optional flag set, quantifier '?'/'*', or a default value present.
func (r *Route) IsParamNameOptional(name string) bool {
	for _, c := range r.constraints {
		if c.Param == name {
			return c.IsOptional()
		}
	}
	return false
}

// --- bind ---------------------------------------------------------------

// BindEvent is the slice of the incoming-event contract Bind needs: the
// EventView matchers need, plus the raw URI and query map spec.md's bind
// algorithm reads.
type BindEvent interface {
	EventView
	GetURI() string
	Query() map[string]string
}

// Bind runs the compiled regex against ev's decoded URI, resolves each
// parameter's binding (if declared), coerces numeric-looking unbound
// values, and persists routeParams/query/eventURI. It fails with
// *NotFoundError if any non-optional parameter resolves to nil.
//
// An in-flight Bind that fails must not mutate the route beyond
// routeParams/query/eventURI, which are only ever overwritten together on
// the next successful Bind — so a failed Bind simply returns before
// touching them.
func (r *Route) Bind(ev BindEvent) error {
	pathname := ev.Pathname()
	if decoded, ok := ev.DecodedPathname(); ok {
		pathname = decoded
	}
	subject := pathname
	if r.hasDomain {
		subject = ev.Host() + pathname
	}

	groups := r.uriRegexp.FindStringSubmatch(subject)
	if groups == nil {
		return &NotFoundError{Method: r.opts.Method, Path: pathname}
	}

	params := make(map[string]any)
	groupIdx := 1
	for _, c := range r.constraints {
		if !c.IsParameter() {
			continue
		}

		var raw any
		if groupIdx < len(groups) && groups[groupIdx] != "" {
			raw = groups[groupIdx]
		} else {
			raw = c.Default
		}
		groupIdx++

		key := c.Param
		if c.Alias != "" {
			key = c.Alias
		}

		value := raw
		if binding, ok := r.opts.Bindings[c.Param]; ok {
			resolved, err := ResolveBinding(binding, key, raw, ev, r.opts.Resolver)
			if err != nil {
				return fmt.Errorf("route: resolving binding for %q: %w", c.Param, err)
			}
			value = resolved
		} else if s, ok := raw.(string); ok {
			value = CoerceNumeric(s)
		}

		if value == nil && !c.IsOptional() {
			return &NotFoundError{Method: r.opts.Method, Path: pathname}
		}

		params[c.Param] = value
		if c.Alias != "" {
			params[c.Alias] = value
		}
	}

	r.routeParams = params
	r.query = ev.Query()
	r.eventURI = ev.GetURI()
	r.bound = true
	return nil
}

// --- generate -------------------------------------------------------

// GenerateOptions parameterizes Generate.
type GenerateOptions struct {
	Params     map[string]any
	Query      map[string]string
	Hash       string
	WithDomain bool
	Protocol   string
}

var multiSlash = regexp.MustCompile(`/{2,}`)

// Generate walks the constraint list in order, emitting each constraint's
// prefix/literal-or-value/suffix; optional trailing segments with no
// supplied value are omitted entirely. Unknown input parameters become
// query-string entries. Fails if a required parameter is missing.
func (r *Route) Generate(opts GenerateOptions) (string, error) {
	var b strings.Builder
	used := make(map[string]bool, len(opts.Params))

	for _, c := range r.constraints {
		if !c.IsParameter() {
			b.WriteString(c.Match)
			continue
		}

		value, has := opts.Params[c.Param]
		used[c.Param] = true
		if !has || value == nil {
			if c.Default != nil {
				value = c.Default
			} else if c.IsOptional() {
				continue
			} else {
				return "", fmt.Errorf("route: generate: %w: %q", errMissingParam, c.Param)
			}
		}

		b.WriteString(c.Prefix)
		b.WriteString(fmt.Sprint(value))
		b.WriteString(c.Suffix)
	}

	path := multiSlash.ReplaceAllString(b.String(), "/")
	if path == "" {
		path = "/"
	}

	queryParts := make([]string, 0, len(opts.Query))
	for k, v := range opts.Query {
		queryParts = append(queryParts, k+"="+v)
	}
	for k, v := range opts.Params {
		if used[k] {
			continue
		}
		queryParts = append(queryParts, fmt.Sprintf("%s=%v", k, v))
	}
	sort.Strings(queryParts)
	if len(queryParts) > 0 {
		path += "?" + strings.Join(queryParts, "&")
	}
	if opts.Hash != "" {
		path += "#" + opts.Hash
	}

	if opts.WithDomain {
		protocol := opts.Protocol
		if protocol == "" {
			protocol = r.opts.Protocol
		}
		if protocol == "" {
			protocol = "http"
		}
		domain := r.opts.DomainTemplate
		path = protocol + "://" + domain + path
	}

	return path, nil
}

var errMissingParam = fmt.Errorf("missing required parameter")

// --- run ----------------------------------------------------------------

// Run selects a dispatcher by the route's handler shape and runs it
// against ev. Fails if no dispatcher is registered for the shape.
func (r *Route) Run(ev any) (any, error) {
	table := r.opts.DispatchTable
	if table == nil {
		table = dispatch.DefaultTable()
	}
	d := dispatch.Select(table, r.opts.DispatcherKind)
	if d == nil {
		return nil, fmt.Errorf("route: no dispatcher registered for %q", r.opts.DispatcherKind)
	}
	return d.Dispatch(r.opts.HandlerSpec, r, ev, r.opts.Resolver)
}

// DispatcherName returns the selected dispatcher's name(route) value, used
// by ToJSON.
func (r *Route) DispatcherName() string {
	table := r.opts.DispatchTable
	if table == nil {
		table = dispatch.DefaultTable()
	}
	d := dispatch.Select(table, r.opts.DispatcherKind)
	if d == nil {
		return "unknown"
	}
	return d.Name(r.opts.HandlerSpec)
}

// --- introspection -------------------------------------------------------

// ToJSON renders the minimal introspection shape spec.md's C4 mandates.
func (r *Route) ToJSON() map[string]any {
	name := r.opts.Name
	if name == "" {
		name = "N/A"
	}
	domain := r.opts.DomainTemplate
	if domain == "" {
		domain = "N/A"
	}
	return map[string]any{
		"path":     r.opts.PathTemplate,
		"method":   r.opts.Method,
		"handler":  r.DispatcherName(),
		"name":     name,
		"domain":   domain,
		"fallback": r.opts.Fallback,
	}
}

// Info renders the richer introspection record carried beyond spec.md's
// minimal ToJSON shape, for CLI/debugging use.
func (r *Route) Info() Info {
	constraints := make(map[string]string, len(r.constraints))
	paramCount := 0
	for _, c := range r.constraints {
		if !c.IsParameter() {
			continue
		}
		paramCount++
		if c.Rule != nil {
			constraints[c.Param] = c.Rule.String()
		}
	}
	middleware := make([]string, 0, len(r.opts.Middleware))
	for _, mw := range r.opts.Middleware {
		middleware = append(middleware, fmt.Sprintf("%T", mw))
	}
	return Info{
		Method:      r.opts.Method,
		Path:        r.opts.PathTemplate,
		HandlerName: r.DispatcherName(),
		Name:        r.opts.Name,
		Domain:      r.opts.DomainTemplate,
		Fallback:    r.opts.Fallback,
		Middleware:  middleware,
		Constraints: constraints,
		IsStatic:    paramCount == 0,
		ParamCount:  paramCount,
		IsInternal:  r.opts.IsInternalHeader,
	}
}
