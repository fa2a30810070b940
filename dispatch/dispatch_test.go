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

package dispatch

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCallableDispatch(t *testing.T) {
	spec := Callable(func(event any) (any, error) {
		return event, nil
	})

	table := DefaultTable()
	d := Select(table, KindCallable)
	require.NotNil(t, d)

	result, err := d.Dispatch(spec, nil, "the-event", nil)
	require.NoError(t, err)
	assert.Equal(t, "the-event", result)
	assert.Equal(t, "callable", d.Name(spec))
}

func TestFactoryResolvedOnce(t *testing.T) {
	calls := 0
	spec := Factory(func(resolver Resolver) (func(event any) (any, error), error) {
		calls++
		return func(event any) (any, error) { return event, nil }, nil
	})

	table := DefaultTable()
	d := Select(table, KindCallable)

	_, err := d.Dispatch(spec, nil, "a", nil)
	require.NoError(t, err)
	_, err = d.Dispatch(spec, nil, "b", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestCallableMissingFunction(t *testing.T) {
	spec := &HandlerSpec{Kind: KindCallable}
	d := Select(DefaultTable(), KindCallable)
	_, err := d.Dispatch(spec, nil, nil, nil)
	assert.Error(t, err)
}

type stubInvoker struct {
	invoked string
}

func (s *stubInvoker) Invoke(action string, event any) (any, error) {
	s.invoked = action
	return "invoked:" + action, nil
}

type stubResolver struct {
	instance any
}

func (r *stubResolver) Resolve(idOrClass string, singleton bool) (any, error) {
	return r.instance, nil
}
func (r *stubResolver) Has(id string) bool { return true }

func TestClassDispatchWithInstance(t *testing.T) {
	inst := &stubInvoker{}
	spec := ClassInstance("Controller", inst, "show")
	d := Select(DefaultTable(), KindClass)

	result, err := d.Dispatch(spec, nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "invoked:show", result)
	assert.Equal(t, "show", inst.invoked)
	assert.Equal(t, "Controller@show", d.Name(spec))
}

func TestClassDispatchDefaultAction(t *testing.T) {
	inst := &stubInvoker{}
	spec := ClassInstance("Controller", inst, "")
	d := Select(DefaultTable(), KindClass)

	_, err := d.Dispatch(spec, nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "handle", inst.invoked)
	assert.Equal(t, "Controller@handle", d.Name(spec))
}

func TestClassDispatchViaResolver(t *testing.T) {
	inst := &stubInvoker{}
	spec := Class("Controller", "index")
	resolver := &stubResolver{instance: inst}
	d := Select(DefaultTable(), KindClass)

	_, err := d.Dispatch(spec, nil, nil, resolver)
	require.NoError(t, err)
	assert.Equal(t, "index", inst.invoked)
}

func TestClassDispatchMissingResolver(t *testing.T) {
	spec := Class("Controller", "index")
	d := Select(DefaultTable(), KindClass)
	_, err := d.Dispatch(spec, nil, nil, nil)
	assert.Error(t, err)
}

func TestClassDispatchNotAnInvoker(t *testing.T) {
	spec := ClassInstance("Controller", "not-an-invoker", "show")
	d := Select(DefaultTable(), KindClass)
	_, err := d.Dispatch(spec, nil, nil, nil)
	assert.Error(t, err)
}

func TestComponentDispatchEager(t *testing.T) {
	spec := Component("the-page")
	d := Select(DefaultTable(), KindComponent)

	result, err := d.Dispatch(spec, nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "the-page", result)
}

func TestComponentDispatchLazyCachesAfterFirstLoad(t *testing.T) {
	loads := 0
	spec := LazyComponent(func() (any, error) {
		loads++
		return "loaded-page", nil
	})
	d := Select(DefaultTable(), KindComponent)

	result, err := d.Dispatch(spec, nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "loaded-page", result)
	assert.False(t, spec.Lazy)

	result, err = d.Dispatch(spec, nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "loaded-page", result)
	assert.Equal(t, 1, loads)
}

func TestRedirectDispatchString(t *testing.T) {
	spec := Redirect("/login")
	d := Select(DefaultTable(), KindRedirect)

	result, err := d.Dispatch(spec, nil, nil, nil)
	require.NoError(t, err)
	target := result.(*RedirectTarget)
	assert.Equal(t, "/login", target.Location)
	assert.Equal(t, 302, target.Status)
}

func TestRedirectDispatchWithStatus(t *testing.T) {
	spec := RedirectWithStatus("/new-home", 301)
	d := Select(DefaultTable(), KindRedirect)

	result, err := d.Dispatch(spec, nil, nil, nil)
	require.NoError(t, err)
	target := result.(*RedirectTarget)
	assert.Equal(t, "/new-home", target.Location)
	assert.Equal(t, 301, target.Status)
}

func TestRedirectDispatchFuncRecursive(t *testing.T) {
	spec := RedirectFunc(func(route any, event any) (any, error) {
		return RedirectTarget{Location: "/final", Status: 303}, nil
	})
	d := Select(DefaultTable(), KindRedirect)

	result, err := d.Dispatch(spec, nil, nil, nil)
	require.NoError(t, err)
	target := result.(*RedirectTarget)
	assert.Equal(t, "/final", target.Location)
	assert.Equal(t, 303, target.Status)
}

func TestRedirectDispatchFuncPropagatesError(t *testing.T) {
	boom := errors.New("boom")
	spec := RedirectFunc(func(route any, event any) (any, error) {
		return nil, boom
	})
	d := Select(DefaultTable(), KindRedirect)

	_, err := d.Dispatch(spec, nil, nil, nil)
	assert.ErrorIs(t, err, boom)
}

func TestRedirectDispatchEmpty(t *testing.T) {
	spec := &HandlerSpec{Kind: KindRedirect}
	d := Select(DefaultTable(), KindRedirect)
	_, err := d.Dispatch(spec, nil, nil, nil)
	assert.Error(t, err)
}

func TestSelectUnknownKind(t *testing.T) {
	d := Select(DefaultTable(), Kind("nope"))
	assert.Nil(t, d)
}
