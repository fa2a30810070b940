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

import (
	"fmt"
	"strconv"
	"strings"
)

// Resolver is the narrow external-container contract a string-bound binder
// resolves against. It mirrors router.Resolver without importing the
// router package, avoiding an import cycle.
type Resolver interface {
	Resolve(idOrClass string, singleton bool) (any, error)
	Has(id string) bool
}

// BinderFunc adapts a plain function to the Binder protocol: a plain
// function `(key, raw, event) → any` per the binding DSL.
type BinderFunc func(key string, raw any, event any) (any, error)

// BindingResolver is implemented by a "class with a static
// resolveRouteBinding" in the spec's terms: any value exposing
// ResolveRouteBinding is treated as that shape.
type BindingResolver interface {
	ResolveRouteBinding(key string, raw any, event any) (any, error)
}

// AliasBinding is the reified form of the "Alias@method" binder DSL,
// parsed once at mapper time rather than at bind time. Grammar:
// identifier "@" identifier.
type AliasBinding struct {
	Alias  string
	Method string
}

// ParseAliasBinding parses the "Alias@method" binder DSL. ok is false if s
// does not match the grammar.
func ParseAliasBinding(s string) (AliasBinding, bool) {
	at := strings.LastIndex(s, "@")
	if at <= 0 || at == len(s)-1 {
		return AliasBinding{}, false
	}
	return AliasBinding{Alias: s[:at], Method: s[at+1:]}, true
}

// ResolveBinding dispatches a declared binding value to its shape: a
// BinderFunc, anything implementing BindingResolver, a plain
// func(string, any, any) (any, error), an AliasBinding resolved through
// resolver, or a bare "Alias@method" string. key is alias ?? param per the
// spec's bind algorithm.
func ResolveBinding(binding any, key string, raw any, event any, resolver Resolver) (any, error) {
	switch b := binding.(type) {
	case nil:
		return raw, nil
	case BinderFunc:
		return b(key, raw, event)
	case func(string, any, any) (any, error):
		return b(key, raw, event)
	case BindingResolver:
		return b.ResolveRouteBinding(key, raw, event)
	case AliasBinding:
		return resolveAlias(b, key, raw, resolver)
	case string:
		alias, ok := ParseAliasBinding(b)
		if !ok {
			return nil, fmt.Errorf("route: invalid binder string %q", b)
		}
		return resolveAlias(alias, key, raw, resolver)
	default:
		return nil, fmt.Errorf("route: unresolvable binding of type %T for %q", binding, key)
	}
}

func resolveAlias(b AliasBinding, key string, raw any, resolver Resolver) (any, error) {
	if resolver == nil {
		return nil, fmt.Errorf("route: binding %q requires a resolver, none configured", b.Alias)
	}
	instance, err := resolver.Resolve(b.Alias, true)
	if err != nil {
		return nil, fmt.Errorf("route: resolving binder alias %q: %w", b.Alias, err)
	}
	type methodBinder interface {
		CallBindingMethod(method, key string, raw any) (any, error)
	}
	if mb, ok := instance.(methodBinder); ok {
		return mb.CallBindingMethod(b.Method, key, raw)
	}
	return nil, fmt.Errorf("route: resolved binder %q does not expose binding methods", b.Alias)
}

// CoerceNumeric coerces a numeric-looking raw string value to an int64 or
// float64 when the parameter has no declared binding; otherwise the raw
// string is left untouched.
func CoerceNumeric(raw string) any {
	if raw == "" {
		return raw
	}
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	return raw
}
