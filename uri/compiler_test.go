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

package uri

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"corepath.dev/corepath/route"
)

func TestCompileStaticPath(t *testing.T) {
	result, err := Compile("", "/users", Options{})
	require.NoError(t, err)
	assert.Len(t, result.Constraints, 1)
	assert.False(t, result.Constraints[0].IsParameter())
	assert.True(t, result.Regexp.MatchString("/users"))
	assert.True(t, result.Regexp.MatchString("/users/"))
	assert.False(t, result.Regexp.MatchString("/users/1"))
}

func TestCompileStrictDisallowsTrailingSlash(t *testing.T) {
	result, err := Compile("", "/users", Options{Strict: true})
	require.NoError(t, err)
	assert.True(t, result.Regexp.MatchString("/users"))
	assert.False(t, result.Regexp.MatchString("/users/"))
}

func TestCompileSingleParam(t *testing.T) {
	result, err := Compile("", "/users/:id", Options{})
	require.NoError(t, err)
	require.Len(t, result.Constraints, 1)
	c := result.Constraints[0]
	assert.True(t, c.IsParameter())
	assert.Equal(t, "id", c.Param)
	assert.Equal(t, "/users/", c.Prefix)
	assert.Equal(t, "", c.Suffix)
	assert.False(t, c.IsOptional())

	m := result.Regexp.FindStringSubmatch("/users/42")
	require.Len(t, m, 2)
	assert.Equal(t, "42", m[1])
	assert.False(t, result.Regexp.MatchString("/users/"))
}

func TestCompileExplicitRuleAndQuantifierOrder(t *testing.T) {
	// spec.md's own literal example: quantifier trails the explicit group.
	result, err := Compile("", `/users/:id(\d+)?/posts/:slug?`, Options{})
	require.NoError(t, err)
	require.Len(t, result.Constraints, 2)

	idC := result.Constraints[0]
	assert.Equal(t, "id", idC.Param)
	assert.Equal(t, route.QuantifierOpt, idC.Quantifier)
	assert.True(t, idC.IsOptional())
	assert.Equal(t, "/users/", idC.Prefix)
	assert.Equal(t, "/posts/", idC.Suffix)

	slugC := result.Constraints[1]
	assert.Equal(t, "slug", slugC.Param)
	assert.Equal(t, route.QuantifierOpt, slugC.Quantifier)
	assert.Equal(t, "", slugC.Suffix)

	assert.True(t, result.Regexp.MatchString("/users/123/posts/hello"))
	assert.True(t, result.Regexp.MatchString("/users/posts/"))
	assert.False(t, result.Regexp.MatchString("/users/abc/posts/hello"))
}

func TestCompileOptionalParamOmitsOwnSeparatorOnly(t *testing.T) {
	// An omitted optional parameter must drop its own delimiter, not the
	// literal connecting to the next segment — "/users/:id?/posts" must
	// collapse to "/users/posts", never "/users//posts" or "/posts".
	result, err := Compile("", "/users/:id?/posts", Options{})
	require.NoError(t, err)

	assert.True(t, result.Regexp.MatchString("/users/posts"))
	assert.True(t, result.Regexp.MatchString("/users/42/posts"))
	assert.False(t, result.Regexp.MatchString("/users//posts"))
	assert.False(t, result.Regexp.MatchString("/posts"))
}

func TestCompileLiteralRunsDisjoint(t *testing.T) {
	result, err := Compile("", "/a/:x/b/:y/c", Options{})
	require.NoError(t, err)
	require.Len(t, result.Constraints, 2)

	x := result.Constraints[0]
	y := result.Constraints[1]
	assert.Equal(t, "/a/", x.Prefix)
	assert.Equal(t, "/b/", x.Suffix)
	// Only the first parameter ever receives a prefix.
	assert.Equal(t, "", y.Prefix)
	assert.Equal(t, "/c", y.Suffix)
}

func TestCompilePlusAndStarDefaults(t *testing.T) {
	result, err := Compile("", "/files/:path+", Options{})
	require.NoError(t, err)
	require.Len(t, result.Constraints, 1)
	assert.Equal(t, route.QuantifierPlus, result.Constraints[0].Quantifier)
	assert.True(t, result.Regexp.MatchString("/files/a/b/c"))

	result, err = Compile("", "/files/:path*", Options{})
	require.NoError(t, err)
	assert.True(t, result.Constraints[0].IsOptional())
}

func TestCompileRuleFromOptions(t *testing.T) {
	result, err := Compile("", "/users/:id", Options{Rules: map[string]string{"id": `\d+`}})
	require.NoError(t, err)
	assert.True(t, result.Regexp.MatchString("/users/42"))
	assert.False(t, result.Regexp.MatchString("/users/abc"))
}

func TestCompileDefaultAndAlias(t *testing.T) {
	result, err := Compile("", "/users/:id", Options{
		Defaults: map[string]any{"id": "0"},
		Aliases:  map[string]string{"id": "userId"},
	})
	require.NoError(t, err)
	c := result.Constraints[0]
	assert.Equal(t, "0", c.Default)
	assert.Equal(t, "userId", c.Alias)
	assert.True(t, c.IsOptional())
}

func TestCompileDomainAndPath(t *testing.T) {
	result, err := Compile(":tenant.example.com", "/users/:id", Options{})
	require.NoError(t, err)
	require.Len(t, result.Constraints, 2)
	assert.True(t, result.HasDomain)
	assert.True(t, result.Constraints[0].IsHost)
	assert.False(t, result.Constraints[1].IsHost)

	assert.True(t, result.Regexp.MatchString("acme.example.com/users/42"))
	// Host constraints are matched case-insensitively.
	assert.True(t, result.Regexp.MatchString("ACME.example.com/users/42"))
}

func TestCompileUnterminatedGroup(t *testing.T) {
	_, err := Compile("", `/users/:id(\d+`, Options{})
	assert.Error(t, err)
}

func TestCompileInvalidRulePattern(t *testing.T) {
	_, err := Compile("", "/users/:id", Options{Rules: map[string]string{"id": "("}})
	assert.Error(t, err)
}

func TestCompileBareColonIsLiteral(t *testing.T) {
	result, err := Compile("", "/a:/b", Options{})
	require.NoError(t, err)
	require.Len(t, result.Constraints, 1)
	assert.False(t, result.Constraints[0].IsParameter())
	assert.Equal(t, "/a:/b", result.Constraints[0].Match)
}

func TestCompileEmptyTemplate(t *testing.T) {
	result, err := Compile("", "", Options{})
	require.NoError(t, err)
	assert.Empty(t, result.Constraints)
	assert.True(t, result.Regexp.MatchString(""))
}
