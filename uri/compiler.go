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

// Package uri implements the path compiler (C1): it tokenizes a path
// template, plus an optional domain template, into an ordered list of
// constraints and a single whole-subject regular expression.
package uri

import (
	"fmt"
	"regexp"
	"strings"

	"corepath.dev/corepath/route"
)

// Options parameterizes Compile with everything the route definition
// contributes beyond the bare templates.
type Options struct {
	Rules    map[string]string
	Defaults map[string]any
	Aliases  map[string]string // param name -> binder alias, from bindings
	Strict   bool
}

// Result is the output of Compile: the ordered constraint list and the
// regex that matches a full subject string (host+path when a domain is
// present, path alone otherwise).
type Result struct {
	Constraints []route.Constraint
	Regexp      *regexp.Regexp
	HasDomain   bool
}

// Compile parses pathTemplate (and domainTemplate, if non-empty) into a
// Result. A template such as `/users/:id(\d+)?/posts/:slug?` yields, in
// order: a parameter constraint for "id" with an explicit rule, '?'
// quantifier, prefix "/users/" and suffix "/posts/", and a parameter
// constraint for "slug" with an implicit `[^/]+` rule and '?' quantifier.
// Literal runs become parameters' prefixes and suffixes rather than
// constraints of their own.
func Compile(domainTemplate, pathTemplate string, opts Options) (*Result, error) {
	var constraints []route.Constraint

	if domainTemplate != "" {
		domainConstraints, err := tokenize(domainTemplate, true, opts)
		if err != nil {
			return nil, fmt.Errorf("uri: compiling domain %q: %w", domainTemplate, err)
		}
		constraints = append(constraints, domainConstraints...)
	}

	pathConstraints, err := tokenize(pathTemplate, false, opts)
	if err != nil {
		return nil, fmt.Errorf("uri: compiling path %q: %w", pathTemplate, err)
	}
	constraints = append(constraints, pathConstraints...)

	rx, err := buildRegexp(constraints, opts.Strict)
	if err != nil {
		return nil, fmt.Errorf("uri: building regexp: %w", err)
	}

	return &Result{Constraints: constraints, Regexp: rx, HasDomain: domainTemplate != ""}, nil
}

// isParamNameByte reports whether b may appear in a `:name` parameter
// identifier.
func isParamNameByte(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

// tokenize scans a single template (domain or path) left to right,
// producing either a single literal constraint (no parameters present) or
// one constraint per parameter, with surrounding literal text distributed
// as each parameter's prefix (only the first parameter can have one — a
// literal run between two parameters belongs to the preceding parameter's
// suffix) and suffix (every parameter claims the literal run up to the
// next parameter or the end of the template).
func tokenize(template string, isHost bool, opts Options) ([]route.Constraint, error) {
	var params []route.Constraint
	var literalRuns []string

	i := 0
	literalRuns = append(literalRuns, "")
	for i < len(template) {
		if template[i] != ':' {
			literalRuns[len(literalRuns)-1] += string(template[i])
			i++
			continue
		}

		j := i + 1
		for j < len(template) && isParamNameByte(template[j]) {
			j++
		}
		if j == i+1 {
			// Bare ':' with no identifier following; treat as literal.
			literalRuns[len(literalRuns)-1] += string(template[i])
			i++
			continue
		}
		name := template[i+1 : j]
		i = j

		var explicitRule string
		if i < len(template) && template[i] == '(' {
			depth := 1
			start := i + 1
			k := start
			for k < len(template) && depth > 0 {
				switch template[k] {
				case '(':
					depth++
				case ')':
					depth--
				}
				k++
			}
			if depth != 0 {
				return nil, fmt.Errorf("uri: unterminated group for parameter %q", name)
			}
			explicitRule = template[start : k-1]
			i = k
		}

		var quantifier route.Quantifier
		if i < len(template) {
			switch template[i] {
			case '?', '+', '*':
				quantifier = route.Quantifier(template[i])
				i++
			}
		}

		rule, err := resolveRule(name, explicitRule, quantifier, opts.Rules)
		if err != nil {
			return nil, err
		}

		c := route.Constraint{
			Param:      name,
			Quantifier: quantifier,
			Rule:       rule,
			IsHost:     isHost,
		}
		if def, ok := opts.Defaults[name]; ok {
			c.Default = def
		}
		if alias, ok := opts.Aliases[name]; ok {
			c.Alias = alias
		}
		params = append(params, c)
		literalRuns = append(literalRuns, "")
	}

	if len(params) == 0 {
		literal := literalRuns[0]
		if literal == "" {
			return nil, nil
		}
		return []route.Constraint{{Match: literal, IsHost: isHost}}, nil
	}

	params[0].Prefix = literalRuns[0]
	for idx := range params {
		params[idx].Suffix = literalRuns[idx+1]
	}
	return params, nil
}

// resolveRule computes the effective regex fragment for a parameter: an
// explicit `(...)` group, else rules[name] from route options, else a
// default that depends on the quantifier (a repeating quantifier spans
// slashes; a singular one does not).
func resolveRule(name, explicitRule string, quantifier route.Quantifier, rules map[string]string) (*regexp.Regexp, error) {
	pattern := explicitRule
	if pattern == "" {
		pattern = rules[name]
	}
	if pattern == "" {
		switch quantifier {
		case route.QuantifierPlus:
			pattern = `.+`
		case route.QuantifierStar:
			pattern = `.*`
		default:
			pattern = `[^/]+`
		}
	}
	rx, err := regexp.Compile("^(?:" + pattern + ")$")
	if err != nil {
		return nil, fmt.Errorf("uri: invalid rule for parameter %q: %w", name, err)
	}
	return rx, nil
}

// buildRegexp concatenates every constraint's regex fragment into a single
// whole-subject expression, anchored at both ends. Optional parameters
// (quantifier '?'/'*', or Optional/Default set) wrap their capture, plus a
// trailing '/' of the prefix, as non-capturing-optional so a miss doesn't
// fail the whole match; the rest of the prefix and the suffix stay
// required. Host constraints are wrapped case-insensitively; path constraints
// are not.
func buildRegexp(constraints []route.Constraint, strict bool) (*regexp.Regexp, error) {
	var b strings.Builder
	b.WriteString("^")

	for _, c := range constraints {
		fragment := constraintFragment(c)
		if c.IsHost {
			fragment = "(?i:" + fragment + ")"
		}
		b.WriteString(fragment)
	}

	if !strict {
		b.WriteString(`/?`)
	}
	b.WriteString("$")

	return regexp.Compile(b.String())
}

func constraintFragment(c route.Constraint) string {
	if !c.IsParameter() {
		return regexp.QuoteMeta(c.Match)
	}

	rulePattern := `[^/]+`
	if c.Rule != nil {
		rulePattern = strings.TrimSuffix(strings.TrimPrefix(c.Rule.String(), "^(?:"), ")$")
	}

	suffix := regexp.QuoteMeta(c.Suffix)

	if !c.IsOptional() {
		return regexp.QuoteMeta(c.Prefix) + "(" + rulePattern + ")" + suffix
	}

	// A skipped optional parameter must not strand a bare delimiter.
	// Wrapping the whole prefix+capture+suffix group (the previous
	// approach) dropped the *suffix*'s connective literal too whenever
	// the parameter was absent, which left the next required literal
	// disconnected from the rest of the path. Instead, only the
	// separator directly touching the capture travels with it into the
	// optional group: if the prefix ends in a path separator, that
	// separator is pulled out of the mandatory prefix and placed beside
	// the capture, so omitting the parameter also omits its own
	// separator while every surrounding literal stays put.
	prefix := c.Prefix
	sep := ""
	if strings.HasSuffix(prefix, "/") {
		prefix = strings.TrimSuffix(prefix, "/")
		sep = "/"
	}

	return regexp.QuoteMeta(prefix) + "(?:" + sep + "(" + rulePattern + ")" + ")?" + suffix
}
