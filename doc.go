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

// Package router is a transport-agnostic request router core.
//
// # Overview
//
// Given a declarative tree of route definitions, the router compiles them
// into matchable, indexed routes, selects the best match for an incoming
// event, binds its URI parameters, and dispatches to one of four handler
// shapes (callable, class, component, redirect). It owns no socket, no
// server loop, and no response serialization: it is a pure, in-memory
// event-to-handler resolver meant to sit underneath both a server-side HTTP
// stack and a browser-side history API.
//
// # Components
//
//   - corepath.dev/corepath/uri compiles a path template into an ordered
//     constraint list and a matching regular expression.
//   - corepath.dev/corepath/route holds the compiled Route: constraints,
//     regex, bound parameters, URL generation, and the selected dispatcher.
//   - corepath.dev/corepath/dispatch implements the four handler shapes.
//   - corepath.dev/corepath/mapper expands nested route definitions into a
//     flat slice of routes, with inheritance and HEAD synthesis.
//   - Router (this package) is the public façade: registration, grouping,
//     configuration, dispatch, named navigation, and URL generation.
//
// # Concurrency
//
// The router is single-threaded and cooperative outside of explicit
// suspension points in bind, run, and dump. Registration and configuration
// must not overlap with dispatch; see Router.Configure.
package router
