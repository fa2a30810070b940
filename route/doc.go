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

// Package route implements the compiled Route (C4): constraints, a
// matching regex, the bind/params/generate/run lifecycle, and JSON
// introspection.
//
// Routes are produced by the mapper package from a flattened route
// definition; this package never constructs one from a raw template
// itself — that is the uri compiler's job.
package route
