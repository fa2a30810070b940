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

// CallableDispatcher handles a bare function handler, or a factory that is
// invoked once (with the resolver) to obtain the real function.
type CallableDispatcher struct{}

func (CallableDispatcher) Name(spec *HandlerSpec) string { return "callable" }

func (CallableDispatcher) Dispatch(spec *HandlerSpec, route any, event any, resolver Resolver) (any, error) {
	fn := spec.Callable
	if spec.Factory != nil {
		if spec.resolvedOnce == nil {
			resolved, err := spec.Factory(resolver)
			if err != nil {
				return nil, err
			}
			spec.resolvedOnce = resolved
		}
		fn = spec.resolvedOnce
	}
	if fn == nil {
		return nil, errInvalidShape(KindCallable, "no function or factory provided")
	}
	return fn(event)
}
