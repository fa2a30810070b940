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

// Command corepath is a thin introspection CLI around a registered
// corepath.dev/corepath/routerctl route set. It carries no routes of
// its own; embedders register a Builder (typically via a blank import
// of their own package, from an init func) and point -routes at its
// name.
//
// Usage:
//
//	corepath list -routes=myapp
package main

import (
	"flag"
	"fmt"
	"os"

	"corepath.dev/corepath/routerctl"

	// Blank-imported for its routerctl.Register side effect. Swap this
	// for your own application's route package when vendoring this
	// command.
	_ "corepath.dev/corepath/routerctl/example"
)

func main() {
	if len(os.Args) < 2 || os.Args[1] != "list" {
		fmt.Fprintln(os.Stderr, "usage: corepath list -routes=<name>")
		os.Exit(2)
	}

	fs := flag.NewFlagSet("list", flag.ExitOnError)
	name := fs.String("routes", "", "name of the registered route set to dump")
	_ = fs.Parse(os.Args[2:])

	if *name == "" {
		fmt.Fprintln(os.Stderr, "usage: corepath list -routes=<name>")
		os.Exit(2)
	}

	if err := routerctl.Run(os.Stdout, *name); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
