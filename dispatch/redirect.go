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

// RedirectDispatcher resolves a redirect field into a {status, Location}
// pair: a bare string defaults to 302, an explicit RedirectTarget is used
// as-is, and a function is invoked with (route, event) and its return
// value resolved the same way, recursively.
type RedirectDispatcher struct{}

func (RedirectDispatcher) Name(spec *HandlerSpec) string { return "redirect" }

func (RedirectDispatcher) Dispatch(spec *HandlerSpec, route any, event any, resolver Resolver) (any, error) {
	return resolveRedirect(spec, route, event, 0)
}

const maxRedirectRecursion = 8

func resolveRedirect(spec *HandlerSpec, route any, event any, depth int) (*RedirectTarget, error) {
	if depth > maxRedirectRecursion {
		return nil, errInvalidShape(KindRedirect, "redirect function recursion too deep")
	}

	switch {
	case spec.RedirectFunc != nil:
		result, err := spec.RedirectFunc(route, event)
		if err != nil {
			return nil, err
		}
		return resolveRedirectValue(result, route, event, depth+1)
	case spec.RedirectTarget != nil:
		if spec.RedirectTarget.Location == "" {
			return nil, errInvalidShape(KindRedirect, "empty redirect location")
		}
		target := *spec.RedirectTarget
		if target.Status == 0 {
			target.Status = 302
		}
		return &target, nil
	case spec.RedirectString != "":
		return &RedirectTarget{Location: spec.RedirectString, Status: 302}, nil
	default:
		return nil, errInvalidShape(KindRedirect, "empty redirect")
	}
}

func resolveRedirectValue(value any, route any, event any, depth int) (*RedirectTarget, error) {
	switch v := value.(type) {
	case string:
		if v == "" {
			return nil, errInvalidShape(KindRedirect, "empty redirect")
		}
		return &RedirectTarget{Location: v, Status: 302}, nil
	case RedirectTarget:
		return resolveRedirect(&HandlerSpec{RedirectTarget: &v}, route, event, depth)
	case *RedirectTarget:
		return resolveRedirect(&HandlerSpec{RedirectTarget: v}, route, event, depth)
	case func(any, any) (any, error):
		return resolveRedirect(&HandlerSpec{RedirectFunc: v}, route, event, depth)
	default:
		return nil, errInvalidShape(KindRedirect, "redirect function returned an unsupported value")
	}
}
