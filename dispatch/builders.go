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

package dispatch

// Callable builds a HandlerSpec for a bare function handler.
func Callable(fn func(event any) (any, error)) *HandlerSpec {
	return &HandlerSpec{Kind: KindCallable, Callable: fn}
}

// Factory builds a HandlerSpec for a function that must itself be resolved
// once (with the resolver) before it can handle events.
func Factory(factory func(resolver Resolver) (func(event any) (any, error), error)) *HandlerSpec {
	return &HandlerSpec{Kind: KindCallable, Factory: factory}
}

// Class builds a HandlerSpec naming a class to resolve through the
// router's external resolver, with the action to invoke (default
// "handle").
func Class(className, action string) *HandlerSpec {
	return &HandlerSpec{Kind: KindClass, ClassName: className, Action: action}
}

// ClassInstance builds a HandlerSpec from an already-constructed instance,
// skipping resolver construction.
func ClassInstance(className string, instance any, action string) *HandlerSpec {
	return &HandlerSpec{Kind: KindClass, ClassName: className, Instance: instance, Action: action}
}

// Component builds a HandlerSpec for an eagerly-available UI component.
func Component(component any) *HandlerSpec {
	return &HandlerSpec{Kind: KindComponent, Component: component}
}

// LazyComponent builds a HandlerSpec for a component resolved on first
// dispatch via loader, then cached on the spec for subsequent dispatches.
func LazyComponent(loader func() (any, error)) *HandlerSpec {
	return &HandlerSpec{Kind: KindComponent, Lazy: true, Loader: loader}
}

// Redirect builds a HandlerSpec for a bare redirect location, defaulting
// to a 302 status.
func Redirect(location string) *HandlerSpec {
	return &HandlerSpec{Kind: KindRedirect, RedirectString: location}
}

// RedirectWithStatus builds a HandlerSpec for a redirect with an explicit
// status code.
func RedirectWithStatus(location string, status int) *HandlerSpec {
	return &HandlerSpec{Kind: KindRedirect, RedirectTarget: &RedirectTarget{Location: location, Status: status}}
}

// RedirectFunc builds a HandlerSpec for a redirect resolved dynamically
// from the route and event; its return value is resolved the same way a
// static target would be, recursively.
func RedirectFunc(fn func(route any, event any) (any, error)) *HandlerSpec {
	return &HandlerSpec{Kind: KindRedirect, RedirectFunc: fn}
}
