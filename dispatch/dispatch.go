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

// Package dispatch implements the four handler shapes a route can run:
// callable, class, component, and redirect. Each dispatcher exposes
// Name(spec) and Dispatch(spec, route, event, resolver); selection between the
// four happens by inspecting the shape of a HandlerSpec, not by a type
// switch scattered across callers.
package dispatch

import "fmt"

// Kind identifies a handler shape.
type Kind string

const (
	KindCallable  Kind = "callable"
	KindClass     Kind = "class"
	KindComponent Kind = "component"
	KindRedirect  Kind = "redirect"
)

// RedirectTarget is a resolved redirect: a location and a status code.
type RedirectTarget struct {
	Location string
	Status   int
}

// Resolver abstracts external class/alias instantiation, used by the class
// dispatcher when a route declares a class by name rather than a
// pre-built instance.
type Resolver interface {
	Resolve(idOrClass string, singleton bool) (any, error)
	Has(id string) bool
}

// Invoker is implemented by a resolved class instance to run the selected
// action against an event.
type Invoker interface {
	Invoke(action string, event any) (any, error)
}

// HandlerSpec is the tagged union over the four handler shapes a route
// definition's handler/redirect field may take. Exactly one group of
// fields is meaningful, selected by Kind.
type HandlerSpec struct {
	Kind Kind

	// callable
	Callable     func(event any) (any, error)
	Factory      func(resolver Resolver) (func(event any) (any, error), error)
	resolvedOnce func(event any) (any, error)

	// class
	ClassName string
	Action    string
	Instance  any

	// component
	Component any
	Lazy      bool
	Loader    func() (any, error)

	// redirect
	RedirectString string
	RedirectTarget *RedirectTarget
	RedirectFunc   func(route any, event any) (any, error)
}

// Dispatcher converts a route's handler spec and an incoming event into a
// response, or fails with a router error for an invalid shape.
type Dispatcher interface {
	Name(spec *HandlerSpec) string
	Dispatch(spec *HandlerSpec, route any, event any, resolver Resolver) (any, error)
}

// Select returns the dispatcher registered for kind, or nil if none is
// registered — callers must treat a nil return as an unknown-dispatcher
// error per spec.md §4.4's run().
func Select(table map[Kind]Dispatcher, kind Kind) Dispatcher {
	return table[kind]
}

// DefaultTable returns the four built-in dispatchers, keyed by the shape
// they handle.
func DefaultTable() map[Kind]Dispatcher {
	return map[Kind]Dispatcher{
		KindCallable:  CallableDispatcher{},
		KindClass:     ClassDispatcher{},
		KindComponent: ComponentDispatcher{},
		KindRedirect:  RedirectDispatcher{},
	}
}

func errInvalidShape(kind Kind, reason string) error {
	return fmt.Errorf("dispatch: invalid %s handler: %s", kind, reason)
}
