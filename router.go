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
	"fmt"
	"time"

	"corepath.dev/corepath/dispatch"
	"corepath.dev/corepath/mapper"
	"corepath.dev/corepath/route"
)

// MiddlewareExecutor actually runs a gathered, ordered middleware chain
// around terminal. The core only specifies gather-and-order (see
// gatherRouteMiddleware); execution is an external collaborator, since the
// core has no opinion on what a middleware value even is. When no executor
// is configured, Dispatch calls terminal directly.
type MiddlewareExecutor func(mw []any, ev Event, terminal func() (any, error)) (any, error)

// Router is C7: the public façade over RouteCollection (C5) and
// RouteMapper (C6). It owns the current route-definition tree, the
// compiled RouteCollection built from it, and the configuration every
// Route is constructed with.
type Router struct {
	cfg config

	definitions []mapper.Definition
	groupStack  []*mapper.Definition

	mapper     *mapper.Mapper
	collection *RouteCollection
	dirty      bool

	currentRoute *route.Route

	middlewareExecutor MiddlewareExecutor
}

// New constructs a Router from opts. Fails if the resulting configuration
// is invalid (currently: MaxDepth <= 0).
func New(opts ...Option) (*Router, error) {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}

	m, err := newMapper(cfg)
	if err != nil {
		return nil, newRouterError("New", err)
	}

	return &Router{
		cfg:        cfg,
		mapper:     m,
		collection: NewRouteCollection(),
	}, nil
}

// MustNew is New, panicking on error. Intended for program startup, where
// a misconfigured router is a fatal condition.
func MustNew(opts ...Option) *Router {
	r, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return r
}

func newMapper(cfg config) (*mapper.Mapper, error) {
	if cfg.maxDepth <= 0 {
		return nil, ErrInvalidMaxDepth
	}
	return mapper.New(mapper.Options{
		MaxDepth:      cfg.maxDepth,
		Matchers:      cfg.matchers,
		DispatchTable: cfg.dispatchTable,
		Resolver:      adaptResolver(cfg.resolver),
		RootRules:     cfg.rules,
		RootDefaults:  cfg.defaults,
		RootBindings:  cfg.bindings,
		RootStrict:    cfg.strict,
	})
}

// adaptResolver narrows the root package's broader Resolver (Resolve,
// Has, Alias, Instance) to the route package's Resolver (Resolve, Has),
// so route/binder.go need not depend on this package.
func adaptResolver(r Resolver) route.Resolver {
	if r == nil {
		return nil
	}
	return r
}

// Configure merges opts onto the Router's existing configuration and
// rebuilds the mapper and RouteCollection from the current definition
// tree: configuration never applies partially.
func (r *Router) Configure(opts ...Option) error {
	cfg := r.cfg
	for _, o := range opts {
		o(&cfg)
	}
	m, err := newMapper(cfg)
	if err != nil {
		return newRouterError("Configure", err)
	}
	prevCfg, prevMapper, prevDirty := r.cfg, r.mapper, r.dirty
	r.cfg, r.mapper, r.dirty = cfg, m, true
	if err := r.build(); err != nil {
		r.cfg, r.mapper, r.dirty = prevCfg, prevMapper, prevDirty
		return err
	}
	return nil
}

// WithMiddlewareExecutor installs exec as the executor Dispatch hands the
// gathered middleware chain to. Not a config Option: it is set directly on
// the Router rather than threaded through defaultConfig.
func (r *Router) WithMiddlewareExecutor(exec MiddlewareExecutor) *Router {
	r.middlewareExecutor = exec
	return r
}

// --- registration ---------------------------------------------------

// RouteOption mutates a single route definition before it is added to the
// Router's definition tree.
type RouteOption func(*mapper.Definition)

func WithName(name string) RouteOption {
	return func(d *mapper.Definition) { d.Name = name }
}

func WithRouteRules(rules map[string]string) RouteOption {
	return func(d *mapper.Definition) { d.Rules = rules }
}

func WithRouteDefaults(defaults map[string]any) RouteOption {
	return func(d *mapper.Definition) { d.Defaults = defaults }
}

func WithRouteBindings(bindings map[string]any) RouteOption {
	return func(d *mapper.Definition) { d.Bindings = bindings }
}

func WithRouteMiddleware(mw ...any) RouteOption {
	return func(d *mapper.Definition) { d.Middleware = append(d.Middleware, mw...) }
}

func WithExcludeMiddleware(mw ...any) RouteOption {
	return func(d *mapper.Definition) { d.ExcludeMiddleware = append(d.ExcludeMiddleware, mw...) }
}

func WithDomain(domain string) RouteOption {
	return func(d *mapper.Definition) { d.Domain = domain }
}

func WithProtocol(protocol string) RouteOption {
	return func(d *mapper.Definition) { d.Protocol = protocol }
}

func WithRouteStrict(strict bool) RouteOption {
	return func(d *mapper.Definition) { d.Strict = &strict }
}

func WithPageLayout(layout any) RouteOption {
	return func(d *mapper.Definition) { d.PageLayout = layout }
}

func WithCustomOptions(opts map[string]any) RouteOption {
	return func(d *mapper.Definition) { d.CustomOptions = opts }
}

func (r *Router) register(method, path string, handler *dispatch.HandlerSpec, opts []RouteOption) *Router {
	def := mapper.Definition{Path: path, Method: method, Handler: handler}
	for _, o := range opts {
		o(&def)
	}
	r.addDefinition(def)
	return r
}

func (r *Router) Get(path string, handler *dispatch.HandlerSpec, opts ...RouteOption) *Router {
	return r.register("GET", path, handler, opts)
}

func (r *Router) Post(path string, handler *dispatch.HandlerSpec, opts ...RouteOption) *Router {
	return r.register("POST", path, handler, opts)
}

func (r *Router) Put(path string, handler *dispatch.HandlerSpec, opts ...RouteOption) *Router {
	return r.register("PUT", path, handler, opts)
}

func (r *Router) Patch(path string, handler *dispatch.HandlerSpec, opts ...RouteOption) *Router {
	return r.register("PATCH", path, handler, opts)
}

func (r *Router) Delete(path string, handler *dispatch.HandlerSpec, opts ...RouteOption) *Router {
	return r.register("DELETE", path, handler, opts)
}

func (r *Router) Options(path string, handler *dispatch.HandlerSpec, opts ...RouteOption) *Router {
	return r.register("OPTIONS", path, handler, opts)
}

// Any registers path against every verb but HEAD (HEAD is only ever
// synthesized from a GET route).
func (r *Router) Any(path string, handler *dispatch.HandlerSpec, opts ...RouteOption) *Router {
	return r.register("ANY", path, handler, opts)
}

// Page is a GET alias, named for the server-rendered-page use case.
func (r *Router) Page(path string, handler *dispatch.HandlerSpec, opts ...RouteOption) *Router {
	return r.Get(path, handler, opts...)
}

// Add is a GET alias.
func (r *Router) Add(path string, handler *dispatch.HandlerSpec, opts ...RouteOption) *Router {
	return r.Get(path, handler, opts...)
}

// Match registers path against exactly the given methods.
func (r *Router) Match(path string, handler *dispatch.HandlerSpec, methods []string, opts ...RouteOption) *Router {
	def := mapper.Definition{Path: path, Methods: methods, Handler: handler}
	for _, o := range opts {
		o(&def)
	}
	r.addDefinition(def)
	return r
}

// fallbackPath is the conventional catch-all template for a fallback
// route: a single greedy parameter matching any remaining path segments.
const fallbackPath = `/:__fallback__(.*)*`

// Fallback registers handler as the catch-all route matched when nothing
// else does, regardless of the incoming request's method (RouteCollection
// excludes fallback routes from method-based 405 reporting entirely, see
// collection.go's Match). Method is fixed at "GET" only because route
// construction requires some verb to report through Info/Dump — it plays
// no part in whether the fallback matches.
func (r *Router) Fallback(handler *dispatch.HandlerSpec, opts ...RouteOption) *Router {
	isFallback := true
	def := mapper.Definition{Path: fallbackPath, Method: "GET", Handler: handler, Fallback: &isFallback}
	for _, o := range opts {
		o(&def)
	}
	r.addDefinition(def)
	return r
}

// Define bulk-registers a set of definitions at the root of the tree (or
// under the current group, if one is open).
func (r *Router) Define(definitions ...mapper.Definition) *Router {
	for _, def := range definitions {
		r.addDefinition(def)
	}
	return r
}

// SetRoutes replaces the Router's compiled collection directly, bypassing
// the mapper. Subsequent registrations still flow through the mapper on
// the next build; mixing the two is unusual but not forbidden.
func (r *Router) SetRoutes(collection *RouteCollection) error {
	if collection == nil {
		return newRouterError("SetRoutes", ErrInvalidRouteCollection)
	}
	r.collection = collection
	r.dirty = false
	return nil
}

// addDefinition appends def as a child of the currently open group, or to
// the root definition list if no group is open. It returns a pointer into
// the owning slice so Group can push it onto the group stack; that
// pointer stays valid because every later append through it targets this
// same struct's own Children field, never the slice the Definition itself
// lives in.
func (r *Router) addDefinition(def mapper.Definition) *mapper.Definition {
	r.dirty = true
	if len(r.groupStack) > 0 {
		top := r.groupStack[len(r.groupStack)-1]
		top.Children = append(top.Children, def)
		return &top.Children[len(top.Children)-1]
	}
	r.definitions = append(r.definitions, def)
	return &r.definitions[len(r.definitions)-1]
}

// --- grouping -----------------------------------------------------------

// Group opens a new group definition nested under the currently open
// group (or the root, if none is open): the prefix, name, and the other
// group-level fields set via opts are inherited by every definition added
// until the matching NoGroup call. Groups may be nested arbitrarily.
func (r *Router) Group(prefix string, opts ...RouteOption) *Router {
	def := mapper.Definition{Path: prefix}
	for _, o := range opts {
		o(&def)
	}
	ptr := r.addDefinition(def)
	r.groupStack = append(r.groupStack, ptr)
	return r
}

// NoGroup closes the innermost open group, returning subsequent
// registrations to its parent's context (or the root).
func (r *Router) NoGroup() *Router {
	if len(r.groupStack) > 0 {
		r.groupStack = r.groupStack[:len(r.groupStack)-1]
	}
	return r
}

// --- middleware -----------------------------------------------------

// Use appends global middleware, run ahead of every route's own middleware
// on every dispatch.
func (r *Router) Use(mw ...any) *Router {
	r.cfg.middleware = append(r.cfg.middleware, mw...)
	return r
}

// UseOn appends mw to every pending definition whose name is in names, and
// to the already-compiled Route of the same name if the collection has
// already been built.
func (r *Router) UseOn(names []string, mw ...any) *Router {
	nameSet := make(map[string]bool, len(names))
	for _, n := range names {
		nameSet[n] = true
	}
	addToDefinitions(r.definitions, nameSet, mw)
	if r.collection != nil {
		for _, rt := range r.collection.Routes() {
			if nameSet[rt.Name()] {
				rt.AddMiddleware(mw...)
			}
		}
	}
	r.dirty = true
	return r
}

func addToDefinitions(defs []mapper.Definition, names map[string]bool, mw []any) {
	for i := range defs {
		if names[defs[i].Name] {
			defs[i].Middleware = append(defs[i].Middleware, mw...)
		}
		addToDefinitions(defs[i].Children, names, mw)
	}
}

// gatherRouteMiddleware returns global middleware followed by rt's own
// (already parent-folded by the mapper), de-duplicated by identity while
// preserving first-seen order, and filtered by rt's excludeMiddleware and
// the Router's skipMiddleware flag.
func (r *Router) gatherRouteMiddleware(rt *route.Route) []any {
	if r.cfg.skipMiddleware {
		return nil
	}

	seen := make(map[any]bool)
	var out []any
	add := func(mw any) {
		if rt.IsMiddlewareExcluded(mw) {
			return
		}
		key := route.MiddlewareIdentity(mw)
		if seen[key] {
			return
		}
		seen[key] = true
		out = append(out, mw)
	}

	for _, mw := range r.cfg.middleware {
		add(mw)
	}
	for _, mw := range rt.Middleware() {
		add(mw)
	}
	return out
}

// --- dispatch -----------------------------------------------------------

// DispatchResult carries everything a Dispatch call produces: the route
// that was run, the gathered-and-ordered middleware chain, and the
// handler's return value.
type DispatchResult struct {
	Route      *route.Route
	Middleware []any
	Value      any
}

// Dispatch runs a single event through match, bind, gather middleware, and
// run, in that order, per spec.md's concurrency model. An OPTIONS request
// whose path matches at least one registered route (regardless of that
// route's own method) short-circuits with a synthesized 200 Response
// carrying an Allow header, even when no route is registered for OPTIONS
// itself.
func (r *Router) Dispatch(ctx context.Context, ev Event) (*DispatchResult, error) {
	if err := r.build(); err != nil {
		return nil, err
	}

	start := time.Now()
	ctx, state := r.cfg.observability.StartDispatch(ctx, methodOf(ev), ev.Pathname())

	r.emitLifecycle("routing", ev)
	ev.SetRouteResolver(func() *route.Route { return r.currentRoute })

	matched, err := r.collection.Match(ev)
	if err != nil {
		if opts, ok := err.(*optionsAllowed); ok {
			r.cfg.observability.EndDispatch(ctx, state, "", time.Since(start), "")
			return &DispatchResult{Value: Response{
				StatusCode: 200,
				Headers:    map[string]string{"Allow": opts.AllowedHeader()},
			}}, nil
		}
		r.cfg.observability.EndDispatch(ctx, state, "", time.Since(start), errKindOf(err))
		return nil, err
	}

	matched.SetDispatchers(r.cfg.dispatchTable)
	matched.SetResolver(adaptResolver(r.cfg.resolver))

	if err := matched.Bind(ev); err != nil {
		wrapped := wrapBindError(err, ev)
		r.cfg.observability.EndDispatch(ctx, state, matched.Name(), time.Since(start), errKindOf(wrapped))
		return nil, wrapped
	}

	r.currentRoute = matched
	mw := r.gatherRouteMiddleware(matched)

	r.emitLifecycle("routed", ev)

	terminal := func() (any, error) { return matched.Run(ev) }
	var value any
	if r.middlewareExecutor != nil {
		value, err = r.middlewareExecutor(mw, ev, terminal)
	} else {
		value, err = terminal()
	}

	r.cfg.observability.EndDispatch(ctx, state, matched.Name(), time.Since(start), errKindOf(err))
	if err != nil {
		return nil, err
	}
	return &DispatchResult{Route: matched, Middleware: mw, Value: value}, nil
}

func errKindOf(err error) Kind {
	switch e := err.(type) {
	case *RouterError:
		return e.Kind()
	case *RouteNotFoundError:
		return e.Kind()
	case *MethodNotAllowedError:
		return e.Kind()
	default:
		if err == nil {
			return ""
		}
		return KindRouterError
	}
}

func wrapBindError(err error, ev Event) error {
	if _, ok := err.(*route.NotFoundError); ok {
		return &RouteNotFoundError{Method: methodOf(ev), Path: ev.Pathname()}
	}
	return newRouterError("Bind", err)
}

func (r *Router) emitLifecycle(name string, ev Event) {
	if r.cfg.emitter == nil {
		return
	}
	r.cfg.emitter.Emit(name, ev)
}

// On subscribes listener to name via the configured Emitter. A no-op if no
// Emitter is configured.
func (r *Router) On(name string, listener func(payload any)) {
	if r.cfg.emitter == nil {
		return
	}
	r.cfg.emitter.On(name, listener)
}

// --- named navigation -------------------------------------------------

// RespondWithRouteName resolves name via the collection's name index,
// binds ev to it, and runs it directly, bypassing Match entirely. Fails
// with *RouteNotFoundError if name is unregistered.
func (r *Router) RespondWithRouteName(ev Event, name string) (any, error) {
	if err := r.build(); err != nil {
		return nil, err
	}
	rt, ok := r.collection.GetByName(name)
	if !ok {
		return nil, &RouteNotFoundError{Name: name}
	}
	rt.SetDispatchers(r.cfg.dispatchTable)
	rt.SetResolver(adaptResolver(r.cfg.resolver))
	if err := rt.Bind(ev); err != nil {
		return nil, wrapBindError(err, ev)
	}
	r.currentRoute = rt
	return rt.Run(ev)
}

// GenerateOptions parameterizes Generate.
type GenerateOptions struct {
	Name       string
	Params     map[string]any
	Query      map[string]string
	Hash       string
	WithDomain bool
	Protocol   string
}

// Generate builds a URL for the named route via route.Generate. Fails
// with *RouteNotFoundError if the name is unregistered.
func (r *Router) Generate(opts GenerateOptions) (string, error) {
	if err := r.build(); err != nil {
		return "", err
	}
	rt, ok := r.collection.GetByName(opts.Name)
	if !ok {
		return "", &RouteNotFoundError{Name: opts.Name}
	}
	return rt.Generate(route.GenerateOptions{
		Params:     opts.Params,
		Query:      opts.Query,
		Hash:       opts.Hash,
		WithDomain: opts.WithDomain,
		Protocol:   opts.Protocol,
	})
}

// Navigate pushes (or, if replace is true, replaces) target onto the
// configured History collaborator. Browser-only: without a History wired
// via WithHistory, it always fails with *RouterError wrapping
// ErrNoBrowser, since a plain Go process has no browser global of its own.
func (r *Router) Navigate(target string, replace bool) error {
	if r.cfg.history == nil {
		return newRouterError("Navigate", ErrNoBrowser)
	}
	if replace {
		r.cfg.history.ReplaceState(target)
	} else {
		r.cfg.history.PushState(target)
	}
	if r.cfg.emitter != nil {
		r.cfg.emitter.Emit("popstate", target)
	}
	return nil
}

// --- introspection -------------------------------------------------

// GetCurrentRoute returns the route bound by the most recent Dispatch or
// RespondWithRouteName call, or nil before the first one.
func (r *Router) GetCurrentRoute() *route.Route { return r.currentRoute }

// GetCurrentRouteName returns the current route's name, or "" if unbound
// or unnamed.
func (r *Router) GetCurrentRouteName() string {
	if r.currentRoute == nil {
		return ""
	}
	return r.currentRoute.Name()
}

// IsCurrentRouteNamed reports whether the current route's name equals
// name.
func (r *Router) IsCurrentRouteNamed(name string) bool {
	return r.currentRoute != nil && r.currentRoute.Name() == name
}

// GetParams returns the current route's bound parameters. Fails if no
// route is current or the current route hasn't been bound.
func (r *Router) GetParams() (map[string]any, error) {
	if r.currentRoute == nil {
		return nil, newRouterError("GetParams", fmt.Errorf("no current route"))
	}
	return r.currentRoute.Params()
}

// GetParam returns the current route's bound value for name, or fallback
// if there's no current route or the name is absent.
func (r *Router) GetParam(name string, fallback any) any {
	if r.currentRoute == nil {
		return fallback
	}
	return r.currentRoute.GetParam(name, fallback)
}

// HasRoute reports whether every given name is registered.
func (r *Router) HasRoute(names ...string) bool {
	if err := r.build(); err != nil {
		return false
	}
	for _, n := range names {
		if !r.collection.HasNamedRoute(n) {
			return false
		}
	}
	return true
}

// DumpRoutes returns the introspection snapshot of every non-internal
// route, sorted by path then method.
func (r *Router) DumpRoutes() ([]route.Info, error) {
	if err := r.build(); err != nil {
		return nil, err
	}
	return r.collection.Dump(), nil
}

// --- build -----------------------------------------------------------

// build rebuilds the RouteCollection from the definition tree if it has
// changed since the last build. Registration and dispatch must not
// overlap; the Router does not guard against that itself — shared
// resources are mutated only during registration/configuration, per
// spec.md's concurrency model.
func (r *Router) build() error {
	if !r.dirty {
		return nil
	}
	if len(r.definitions) == 0 {
		r.dirty = false
		return nil
	}

	routes, err := r.mapper.ToRoutes(r.definitions)
	if err != nil {
		return newRouterError("build", err)
	}

	collection := NewRouteCollection()
	for _, rt := range routes {
		collection.Add(rt)
		if !rt.IsInternalHeader() {
			r.emit(DiagRouteRegistered, "route registered", map[string]any{
				"path": rt.Path(), "method": rt.Method(), "name": rt.Name(),
			})
			if n := len(rt.GetParamNames()); n > 8 {
				r.emit(DiagHighParamCount, "route declares more than 8 parameters", map[string]any{
					"path": rt.Path(), "method": rt.Method(), "count": n,
				})
			}
		}
	}
	r.collection = collection
	r.dirty = false
	return nil
}
