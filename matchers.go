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

import "corepath.dev/corepath/route"

// Matcher is an independent C2 predicate evaluated against (event, route).
// It is an alias of route.Matcher; the real implementations live alongside
// Route since they need its unexported fields, but the public name for
// configuring a Router lives here.
type Matcher = route.Matcher

// Default matcher set, run in order: uri, method, protocol, host.
var (
	MatchURI      Matcher = route.MatchURI
	MatchMethod   Matcher = route.MatchMethod
	MatchProtocol Matcher = route.MatchProtocol
	MatchHost     Matcher = route.MatchHost
)

// DefaultMatchers returns the standard C2 matcher list in registration
// order.
func DefaultMatchers() []Matcher {
	return route.DefaultMatchers()
}
