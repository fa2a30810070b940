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

import "fmt"

// ComponentDispatcher handles a UI-component handler. Lazy components
// carry a Loader that is awaited once; the result replaces Component and
// Lazy is cleared, so later dispatches skip the loader entirely — this is
// the single-threaded interior-mutability cell spec.md's design notes call
// for.
type ComponentDispatcher struct{}

func (ComponentDispatcher) Name(spec *HandlerSpec) string {
	return fmt.Sprintf("component(%T)", spec.Component)
}

func (ComponentDispatcher) Dispatch(spec *HandlerSpec, route any, event any, resolver Resolver) (any, error) {
	if spec.Lazy {
		if spec.Loader == nil {
			return nil, errInvalidShape(KindComponent, "lazy component has no loader")
		}
		resolved, err := spec.Loader()
		if err != nil {
			return nil, err
		}
		spec.Component = resolved
		spec.Lazy = false
		spec.Loader = nil
	}
	if spec.Component == nil {
		return nil, errInvalidShape(KindComponent, "no component provided")
	}
	return spec.Component, nil
}
