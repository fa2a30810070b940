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

// Package example registers a small sample route set under the name
// "example", so `corepath list -routes=example` has something to show
// out of the box. A real embedder replaces this package with its own.
package example

import (
	router "corepath.dev/corepath"
	"corepath.dev/corepath/dispatch"
	"corepath.dev/corepath/routerctl"
)

func init() {
	routerctl.Register("example", build)
}

func build() (*router.Router, error) {
	r, err := router.New()
	if err != nil {
		return nil, err
	}

	r.Get("/health", dispatch.Callable(func(any) (any, error) { return "ok", nil }), router.WithName("health.show"))
	r.Get("/users/:id", dispatch.Callable(func(any) (any, error) { return nil, nil }), router.WithName("users.show"))
	r.Post("/users", dispatch.Callable(func(any) (any, error) { return nil, nil }), router.WithName("users.create"))

	return r, nil
}
