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

// Package mapper implements the RouteMapper (C6): it expands a tree of
// nested route definitions into a flat list of compiled routes, enforcing
// a depth limit, folding inherited attributes parent-to-child, and
// synthesizing a HEAD twin for every GET route that doesn't already have
// one.
package mapper

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"corepath.dev/corepath/dispatch"
	"corepath.dev/corepath/route"
	"corepath.dev/corepath/uri"
)

// Errors returned by ToRoutes. These parallel the root package's sentinels
// without importing it — router wraps them in its own RouterError when
// Configure/define surfaces a mapping failure.
var (
	ErrInvalidMaxDepth = errors.New("mapper: maxDepth must be greater than zero")
	ErrDepthExceeded   = errors.New("mapper: maximum nesting depth exceeded")
	ErrMissingPath     = errors.New("mapper: route definition is missing a path")
	ErrMissingHandler  = errors.New("mapper: route definition has neither handler, redirect, nor children")
	ErrMissingMethod   = errors.New("mapper: route definition has a handler but no method and no children")
	ErrUnknownVerb     = errors.New("mapper: method is not in the allowed verb set")
)

// allowedVerbs is the full verb set a Definition's method(s) must draw
// from. "ANY" is a pseudo-method expanded before this check runs.
var allowedVerbs = map[string]bool{
	"GET": true, "HEAD": true, "POST": true, "PUT": true,
	"PATCH": true, "DELETE": true, "OPTIONS": true,
}

// anyVerbs is what the "ANY" pseudo-method expands to: every verb except
// HEAD, which is only ever synthesized from GET.
var anyVerbs = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}

// Definition is a user-authored, possibly-nested route declaration. A
// Definition with Children and no Handler is a pure group: it contributes
// no route of its own, only a path/name prefix and inherited attributes
// for its children. A Definition may carry both a Handler and Children.
type Definition struct {
	Path    string
	Method  string   // single verb, or "ANY"
	Methods []string // preferred over Method when non-empty

	// Handler carries either a callable/class/component shape or a
	// redirect shape (Kind == dispatch.KindRedirect); construct with the
	// dispatch package's builders (dispatch.Callable, dispatch.Class,
	// dispatch.Redirect, ...).
	Handler *dispatch.HandlerSpec

	Name   string
	Domain string
	// Protocol restricts matching to "http" or "https"; "" matches both.
	Protocol string

	Rules    map[string]string
	Defaults map[string]any
	Bindings map[string]any

	Middleware        []any
	ExcludeMiddleware []any

	// Strict and Fallback are tri-state: nil inherits the parent's
	// resolved value (false at the root if never set).
	Strict   *bool
	Fallback *bool

	Children []Definition

	PageLayout    any
	CustomOptions map[string]any
}

// Options configures a Mapper with the dependencies it injects into every
// Route it constructs.
type Options struct {
	MaxDepth      int
	Matchers      []route.Matcher
	DispatchTable map[dispatch.Kind]dispatch.Dispatcher
	Resolver      route.Resolver

	// RootRules, RootDefaults, RootBindings, and RootStrict are the
	// router-wide defaults every root-level definition inherits from,
	// exactly as if they were set on an invisible ancestor definition.
	RootRules    map[string]string
	RootDefaults map[string]any
	RootBindings map[string]any
	RootStrict   bool
}

// Mapper is C6: it owns nothing but its configuration: ToRoutes is a pure
// function of its input definitions given that configuration.
type Mapper struct {
	opts Options
}

// New constructs a Mapper. Fails if MaxDepth <= 0.
func New(opts Options) (*Mapper, error) {
	if opts.MaxDepth <= 0 {
		return nil, ErrInvalidMaxDepth
	}
	return &Mapper{opts: opts}, nil
}

// inherited carries the left-fold of parent attributes down to a child
// definition, per spec.md §4.6 step 2.
type inherited struct {
	pathPrefix        string
	namePrefix        string
	middleware        []any
	excludeMiddleware []any
	rules             map[string]string
	defaults          map[string]any
	bindings          map[string]any
	domain            string
	protocol          string
	strict            bool
	fallback          bool
	pageLayout        any
	customOptions     map[string]any
}

// built retains everything needed to synthesize a HEAD twin after the
// whole tree has been walked, since a Route itself doesn't expose its
// constraints/options/regexp to a caller outside package route.
type built struct {
	rt          *route.Route
	routeOpts   route.Options
	constraints []route.Constraint
	regexp      *regexp.Regexp
	hasDomain   bool
}

// ToRoutes expands definitions into a flat route list, depth-first,
// folding inherited attributes and synthesizing HEAD twins for every GET
// route that has no user-defined HEAD sibling at the same path.
func (m *Mapper) ToRoutes(definitions []Definition) ([]*route.Route, error) {
	root := inherited{
		rules:    m.opts.RootRules,
		defaults: m.opts.RootDefaults,
		bindings: m.opts.RootBindings,
		strict:   m.opts.RootStrict,
	}
	var all []built

	for _, def := range definitions {
		produced, err := m.walk(def, 1, root)
		if err != nil {
			return nil, err
		}
		all = append(all, produced...)
	}

	existingHead := make(map[string]bool)
	for _, b := range all {
		if b.rt.Method() == "HEAD" {
			existingHead[headKey(b.rt)] = true
		}
	}

	routes := make([]*route.Route, 0, len(all))
	var synthesized []*route.Route
	for _, b := range all {
		routes = append(routes, b.rt)
		if b.rt.Method() != "GET" {
			continue
		}
		if existingHead[headKey(b.rt)] {
			continue
		}
		headOpts := b.routeOpts
		headOpts.Method = "HEAD"
		headOpts.IsInternalHeader = true
		twin := route.New(headOpts, b.constraints, b.regexp, b.hasDomain)
		synthesized = append(synthesized, twin)
		existingHead[headKey(twin)] = true
	}

	return append(routes, synthesized...), nil
}

func headKey(rt *route.Route) string {
	return rt.Domain() + "\x00" + rt.Path()
}

// walk processes a single definition and its subtree, returning every
// route it (and its descendants) produce.
func (m *Mapper) walk(def Definition, depth int, parent inherited) ([]built, error) {
	if depth > m.opts.MaxDepth {
		return nil, fmt.Errorf("%w: depth %d exceeds max %d", ErrDepthExceeded, depth, m.opts.MaxDepth)
	}
	if def.Path == "" {
		return nil, ErrMissingPath
	}
	if def.Handler == nil && len(def.Children) == 0 {
		return nil, ErrMissingHandler
	}

	cur := inherited{
		pathPrefix:        joinPath(parent.pathPrefix, def.Path),
		namePrefix:        joinName(parent.namePrefix, def.Name),
		middleware:        append(append([]any{}, parent.middleware...), def.Middleware...),
		excludeMiddleware: append(append([]any{}, parent.excludeMiddleware...), def.ExcludeMiddleware...),
		rules:             mergeStringMap(parent.rules, def.Rules),
		defaults:          mergeAnyMap(parent.defaults, def.Defaults),
		bindings:          mergeAnyMap(parent.bindings, def.Bindings),
		domain:            firstNonEmpty(def.Domain, parent.domain),
		protocol:          firstNonEmpty(def.Protocol, parent.protocol),
		strict:            resolveTri(def.Strict, parent.strict),
		fallback:          resolveTri(def.Fallback, parent.fallback),
		pageLayout:        firstNonNil(def.PageLayout, parent.pageLayout),
		customOptions:     mergeAnyMap(parent.customOptions, def.CustomOptions),
	}

	var produced []built

	if def.Handler != nil {
		methods, err := expandMethods(def)
		if errors.Is(err, ErrMissingMethod) && len(def.Children) > 0 {
			// No method but children: the definition acts as a group only.
			methods, err = nil, nil
		}
		if err != nil {
			return nil, err
		}
		for _, method := range methods {
			b, err := m.buildRoute(def, cur, method)
			if err != nil {
				return nil, err
			}
			produced = append(produced, b)
		}
	}

	for _, child := range def.Children {
		childRoutes, err := m.walk(child, depth+1, cur)
		if err != nil {
			return nil, err
		}
		produced = append(produced, childRoutes...)
	}

	return produced, nil
}

// expandMethods resolves a definition's method(s): Methods[] takes
// priority, else the singleton Method, else "GET" when a redirect is set
// and no method was given. "ANY" expands to every verb but HEAD.
func expandMethods(def Definition) ([]string, error) {
	var raw []string
	switch {
	case len(def.Methods) > 0:
		raw = def.Methods
	case def.Method != "":
		raw = []string{def.Method}
	case def.Handler != nil && def.Handler.Kind == dispatch.KindRedirect:
		raw = []string{"GET"}
	default:
		return nil, ErrMissingMethod
	}

	var methods []string
	for _, m := range raw {
		m = strings.ToUpper(m)
		if m == "ANY" {
			methods = append(methods, anyVerbs...)
			continue
		}
		if !allowedVerbs[m] {
			return nil, fmt.Errorf("%w: %q", ErrUnknownVerb, m)
		}
		methods = append(methods, m)
	}
	return methods, nil
}

func (m *Mapper) buildRoute(def Definition, cur inherited, method string) (built, error) {
	compiled, err := uri.Compile(cur.domain, cur.pathPrefix, uri.Options{
		Rules:    cur.rules,
		Defaults: cur.defaults,
		Strict:   cur.strict,
	})
	if err != nil {
		return built{}, err
	}

	opts := route.Options{
		Method:            method,
		PathTemplate:      cur.pathPrefix,
		DomainTemplate:    cur.domain,
		Protocol:          cur.protocol,
		Strict:            cur.strict,
		Fallback:          cur.fallback,
		Name:              cur.namePrefix,
		Rules:             cur.rules,
		Defaults:          cur.defaults,
		Bindings:          cur.bindings,
		Middleware:        cur.middleware,
		ExcludeMiddleware: cur.excludeMiddleware,
		PageLayout:        cur.pageLayout,
		CustomOptions:     cur.customOptions,

		HandlerSpec:    def.Handler,
		DispatcherKind: def.Handler.Kind,
		DispatchTable:  m.opts.DispatchTable,
		Matchers:       m.opts.Matchers,
		Resolver:       m.opts.Resolver,
	}

	rt := route.New(opts, compiled.Constraints, compiled.Regexp, compiled.HasDomain)
	return built{
		rt:          rt,
		routeOpts:   opts,
		constraints: compiled.Constraints,
		regexp:      compiled.Regexp,
		hasDomain:   compiled.HasDomain,
	}, nil
}

var multiSlashRx = regexp.MustCompile(`/{2,}`)
var multiDotRx = regexp.MustCompile(`\.{2,}`)

func joinPath(parent, child string) string {
	combined := multiSlashRx.ReplaceAllString(parent+"/"+child, "/")
	if combined != "/" {
		combined = strings.TrimRight(combined, "/")
	}
	if combined == "" {
		combined = "/"
	}
	return combined
}

func joinName(parent, child string) string {
	switch {
	case parent == "":
		return strings.Trim(child, ".")
	case child == "":
		return strings.Trim(parent, ".")
	default:
		combined := multiDotRx.ReplaceAllString(parent+"."+child, ".")
		return strings.Trim(combined, ".")
	}
}

func mergeStringMap(parent, child map[string]string) map[string]string {
	if len(parent) == 0 && len(child) == 0 {
		return nil
	}
	merged := make(map[string]string, len(parent)+len(child))
	for k, v := range parent {
		merged[k] = v
	}
	for k, v := range child {
		merged[k] = v
	}
	return merged
}

func mergeAnyMap(parent, child map[string]any) map[string]any {
	if len(parent) == 0 && len(child) == 0 {
		return nil
	}
	merged := make(map[string]any, len(parent)+len(child))
	for k, v := range parent {
		merged[k] = v
	}
	for k, v := range child {
		merged[k] = v
	}
	return merged
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstNonNil(values ...any) any {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

func resolveTri(value *bool, parent bool) bool {
	if value != nil {
		return *value
	}
	return parent
}
