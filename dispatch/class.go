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

// ClassDispatcher handles a class-shaped handler: resolve an instance
// (through the resolver if present, else use a pre-built Instance), then
// invoke its selected action against the event. Action defaults to
// "handle".
type ClassDispatcher struct{}

func (ClassDispatcher) Name(spec *HandlerSpec) string {
	action := spec.Action
	if action == "" {
		action = "handle"
	}
	return spec.ClassName + "@" + action
}

func (ClassDispatcher) Dispatch(spec *HandlerSpec, route any, event any, resolver Resolver) (any, error) {
	action := spec.Action
	if action == "" {
		action = "handle"
	}

	instance := spec.Instance
	if instance == nil {
		if spec.ClassName == "" {
			return nil, errInvalidShape(KindClass, "no class name or instance provided")
		}
		if resolver == nil {
			return nil, errInvalidShape(KindClass, "no resolver configured to construct "+spec.ClassName)
		}
		resolved, err := resolver.Resolve(spec.ClassName, false)
		if err != nil {
			return nil, err
		}
		instance = resolved
	}

	invoker, ok := instance.(Invoker)
	if !ok {
		return nil, errInvalidShape(KindClass, spec.ClassName+" does not implement Invoke(action, event)")
	}
	return invoker.Invoke(action, event)
}
