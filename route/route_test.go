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

package route

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"corepath.dev/corepath/uri"
)

type fakeEvent struct {
	method string
	path   string
	host   string
	proto  string
	query  map[string]string
}

func (e *fakeEvent) Pathname() string                  { return e.path }
func (e *fakeEvent) DecodedPathname() (string, bool)    { return "", false }
func (e *fakeEvent) Host() string                       { return e.host }
func (e *fakeEvent) Protocol() string {
	if e.proto == "" {
		return "http"
	}
	return e.proto
}
func (e *fakeEvent) IsMethod(m string) bool { return e.method == m }
func (e *fakeEvent) GetURI() string         { return e.path }
func (e *fakeEvent) Query() map[string]string {
	if e.query == nil {
		return map[string]string{}
	}
	return e.query
}

func compileRoute(t *testing.T, method, path string, spec Options) *Route {
	t.Helper()
	result, err := uri.Compile("", path, uri.Options{Rules: spec.Rules, Defaults: spec.Defaults, Strict: spec.Strict})
	require.NoError(t, err)
	spec.Method = method
	spec.PathTemplate = path
	return New(spec, result.Constraints, result.Regexp, result.HasDomain)
}

func TestRouteMatchesAndBind(t *testing.T) {
	rt := compileRoute(t, "GET", "/users/:id", Options{})
	ev := &fakeEvent{method: "GET", path: "/users/42"}
	assert.True(t, rt.Matches(ev, true))

	require.NoError(t, rt.Bind(ev))
	params, err := rt.Params()
	require.NoError(t, err)
	assert.Equal(t, int64(42), params["id"])
}

func TestRouteBindCoercesNumeric(t *testing.T) {
	rt := compileRoute(t, "GET", "/score/:value", Options{})
	ev := &fakeEvent{method: "GET", path: "/score/3.5"}
	require.NoError(t, rt.Bind(ev))
	v := rt.GetParam("value", nil)
	assert.Equal(t, 3.5, v)
}

func TestRouteBindResolvesBindingResolverEndToEnd(t *testing.T) {
	resolver := &recordingBindingResolver{}
	rt := compileRoute(t, "GET", "/users/:id", Options{
		Bindings: map[string]any{"id": resolver},
	})
	ev := &fakeEvent{method: "GET", path: "/users/42"}

	require.NoError(t, rt.Bind(ev))
	assert.Equal(t, "resolved-42", rt.GetParam("id", nil))
	assert.Equal(t, []string{"id"}, resolver.keys)
}

func TestRouteBindResolvesAliasMethodStringEndToEnd(t *testing.T) {
	container := methodBinderContainer{known: map[string]any{"UserBinder": userBinder{}}}
	rt := compileRoute(t, "GET", "/users/:id", Options{
		Bindings: map[string]any{"id": "UserBinder@fromRoute"},
		Resolver: container,
	})
	ev := &fakeEvent{method: "GET", path: "/users/42"}

	require.NoError(t, rt.Bind(ev))
	assert.Equal(t, "fromRoute:id=42", rt.GetParam("id", nil))
}

func TestRouteBindMissingRequiredParam(t *testing.T) {
	rt := compileRoute(t, "GET", "/users/:id", Options{})
	ev := &fakeEvent{method: "GET", path: "/users/other/path"}
	err := rt.Bind(ev)
	assert.Error(t, err)
}

func TestRouteBindNotFoundBeforeBind(t *testing.T) {
	rt := compileRoute(t, "GET", "/users/:id", Options{})
	assert.False(t, rt.HasParam("id"))
	assert.Equal(t, "fallback", rt.GetParam("id", "fallback"))
	_, err := rt.Params()
	assert.Error(t, err)
}

func TestRouteGenerateRoundTrip(t *testing.T) {
	rt := compileRoute(t, "GET", "/users/:id/posts/:slug?", Options{})
	path, err := rt.Generate(GenerateOptions{Params: map[string]any{"id": 7}})
	require.NoError(t, err)
	assert.Equal(t, "/users/7/posts/", path)

	path, err = rt.Generate(GenerateOptions{Params: map[string]any{"id": 7, "slug": "hello"}})
	require.NoError(t, err)
	assert.Equal(t, "/users/7/posts/hello", path)
}

func TestRouteGenerateMissingRequiredParam(t *testing.T) {
	rt := compileRoute(t, "GET", "/users/:id", Options{})
	_, err := rt.Generate(GenerateOptions{})
	assert.Error(t, err)
}

func TestRouteGenerateUnknownParamsBecomeQuery(t *testing.T) {
	rt := compileRoute(t, "GET", "/users/:id", Options{})
	path, err := rt.Generate(GenerateOptions{Params: map[string]any{"id": 1, "sort": "asc"}})
	require.NoError(t, err)
	assert.Equal(t, "/users/1?sort=asc", path)
}

func TestRouteMiddlewareExcludedByIdentity(t *testing.T) {
	mw := func(next any) any { return next }
	rt := compileRoute(t, "GET", "/x", Options{ExcludeMiddleware: []any{mw}})
	assert.True(t, rt.IsMiddlewareExcluded(mw))

	other := func(next any) any { return next }
	assert.False(t, rt.IsMiddlewareExcluded(other))
}

func TestMiddlewareIdentityComparableValuesPassThrough(t *testing.T) {
	assert.Equal(t, "literal", MiddlewareIdentity("literal"))
	assert.Equal(t, 42, MiddlewareIdentity(42))
}

func TestRouteToJSONAndInfo(t *testing.T) {
	rt := compileRoute(t, "GET", "/users/:id", Options{Name: "users.show"})
	j := rt.ToJSON()
	assert.Equal(t, "/users/:id", j["path"])
	assert.Equal(t, "users.show", j["name"])
	assert.Equal(t, "N/A", j["domain"])

	info := rt.Info()
	assert.Equal(t, 1, info.ParamCount)
	assert.False(t, info.IsStatic)
}

func TestRouteRunNoDispatcherRegistered(t *testing.T) {
	rt := compileRoute(t, "GET", "/x", Options{DispatcherKind: "unknown-kind"})
	_, err := rt.Run(nil)
	assert.Error(t, err)
}
