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

// Package routerctl backs the corepath CLI (cmd/corepath). The core
// router package has no notion of a main binary or a filesystem, so an
// embedder wanting `corepath list` wires its own route-building code into
// this package's registry (typically from an init func in a blank
// import), and the CLI itself stays a generic, embedder-agnostic
// shell around Register/Run.
package routerctl

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	router "corepath.dev/corepath"
)

// Builder constructs the Router an embedder wants the CLI to introspect.
// Called once per Run, so it's safe to build routes from scratch here.
type Builder func() (*router.Router, error)

var registry = map[string]Builder{}

// Register associates name with a Builder. Panics on a duplicate name,
// the same way database/sql panics on a duplicate driver registration —
// it means two packages are fighting over the same CLI route set.
func Register(name string, build Builder) {
	if _, exists := registry[name]; exists {
		panic(fmt.Sprintf("routerctl: Builder already registered under name %q", name))
	}
	registry[name] = build
}

// Names returns the registered builder names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Run implements the `list` subcommand: it looks up name's Builder,
// builds its Router, and writes a tab-aligned dump of every registered
// route to out.
func Run(out io.Writer, name string) error {
	build, ok := registry[name]
	if !ok {
		return fmt.Errorf("routerctl: no route set registered under name %q (known: %v)", name, Names())
	}

	r, err := build()
	if err != nil {
		return fmt.Errorf("routerctl: build route set %q: %w", name, err)
	}

	infos, err := r.DumpRoutes()
	if err != nil {
		return fmt.Errorf("routerctl: dump routes for %q: %w", name, err)
	}

	tw := tabwriter.NewWriter(out, 0, 2, 2, ' ', 0)
	fmt.Fprintln(tw, "METHOD\tPATH\tNAME\tHANDLER")
	for _, info := range infos {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", info.Method, info.Path, info.Name, info.HandlerName)
	}
	return tw.Flush()
}
