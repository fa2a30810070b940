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
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAliasBindingValid(t *testing.T) {
	alias, ok := ParseAliasBinding("UserBinder@fromRoute")
	require.True(t, ok)
	assert.Equal(t, AliasBinding{Alias: "UserBinder", Method: "fromRoute"}, alias)
}

func TestParseAliasBindingRejectsMalformed(t *testing.T) {
	for _, s := range []string{"", "noAt", "@method", "Alias@"} {
		_, ok := ParseAliasBinding(s)
		assert.False(t, ok, "expected %q to be rejected", s)
	}
}

func TestResolveBindingNilPassesRawThrough(t *testing.T) {
	v, err := ResolveBinding(nil, "id", "42", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "42", v)
}

func TestResolveBindingFunc(t *testing.T) {
	fn := BinderFunc(func(key string, raw any, event any) (any, error) {
		return fmt.Sprintf("%s=%v", key, raw), nil
	})
	v, err := ResolveBinding(fn, "id", "42", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "id=42", v)
}

func TestResolveBindingPlainFunc(t *testing.T) {
	fn := func(key string, raw any, event any) (any, error) { return raw, nil }
	v, err := ResolveBinding(fn, "id", "42", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "42", v)
}

type recordingBindingResolver struct {
	keys []string
}

func (r *recordingBindingResolver) ResolveRouteBinding(key string, raw any, event any) (any, error) {
	r.keys = append(r.keys, key)
	return fmt.Sprintf("resolved-%v", raw), nil
}

func TestResolveBindingBindingResolverShape(t *testing.T) {
	resolver := &recordingBindingResolver{}
	v, err := ResolveBinding(resolver, "id", "42", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "resolved-42", v)
	assert.Equal(t, []string{"id"}, resolver.keys)
}

type methodBinderContainer struct{ known map[string]any }

func (c methodBinderContainer) Resolve(idOrClass string, singleton bool) (any, error) {
	if instance, ok := c.known[idOrClass]; ok {
		return instance, nil
	}
	return nil, fmt.Errorf("unknown binder alias %q", idOrClass)
}

func (c methodBinderContainer) Has(id string) bool {
	_, ok := c.known[id]
	return ok
}

type userBinder struct{}

func (userBinder) CallBindingMethod(method, key string, raw any) (any, error) {
	return fmt.Sprintf("%s:%s=%v", method, key, raw), nil
}

func TestResolveBindingAliasStruct(t *testing.T) {
	resolver := methodBinderContainer{known: map[string]any{"UserBinder": userBinder{}}}
	v, err := ResolveBinding(AliasBinding{Alias: "UserBinder", Method: "fromRoute"}, "id", "42", nil, resolver)
	require.NoError(t, err)
	assert.Equal(t, "fromRoute:id=42", v)
}

func TestResolveBindingAliasMethodString(t *testing.T) {
	resolver := methodBinderContainer{known: map[string]any{"UserBinder": userBinder{}}}
	v, err := ResolveBinding("UserBinder@fromRoute", "id", "42", nil, resolver)
	require.NoError(t, err)
	assert.Equal(t, "fromRoute:id=42", v)
}

func TestResolveBindingAliasStringMalformed(t *testing.T) {
	_, err := ResolveBinding("not-a-binder", "id", "42", nil, methodBinderContainer{})
	assert.Error(t, err)
}

func TestResolveBindingAliasRequiresResolver(t *testing.T) {
	_, err := ResolveBinding("UserBinder@fromRoute", "id", "42", nil, nil)
	assert.Error(t, err)
}

func TestResolveBindingAliasResolvedValueNotABinder(t *testing.T) {
	resolver := methodBinderContainer{known: map[string]any{"NotABinder": "plain-string"}}
	_, err := ResolveBinding("NotABinder@fromRoute", "id", "42", nil, resolver)
	assert.Error(t, err)
}

func TestResolveBindingUnknownShape(t *testing.T) {
	_, err := ResolveBinding(42, "id", "42", nil, nil)
	assert.Error(t, err)
}

func TestCoerceNumericInt(t *testing.T) {
	assert.Equal(t, int64(42), CoerceNumeric("42"))
}

func TestCoerceNumericFloat(t *testing.T) {
	assert.Equal(t, 3.5, CoerceNumeric("3.5"))
}

func TestCoerceNumericNonNumeric(t *testing.T) {
	assert.Equal(t, "abc", CoerceNumeric("abc"))
}

func TestCoerceNumericEmpty(t *testing.T) {
	assert.Equal(t, "", CoerceNumeric(""))
}
