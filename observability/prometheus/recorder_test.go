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

package promrecorder

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	router "corepath.dev/corepath"
)

func TestRecorderRecordsSuccessfulDispatch(t *testing.T) {
	r := New()

	ctx, state := r.StartDispatch(context.Background(), "GET", "/users/1")
	time.Sleep(time.Millisecond)
	r.EndDispatch(ctx, state, "users.show", 5*time.Millisecond, "")

	body := scrape(t, r)
	assert.Contains(t, body, `router_dispatch_total{method="GET",route="users.show"} 1`)
	assert.Contains(t, body, "router_dispatch_duration_seconds")
	assert.NotContains(t, body, "router_dispatch_errors_total")
}

func TestRecorderRecordsFailedDispatch(t *testing.T) {
	r := New()

	ctx, state := r.StartDispatch(context.Background(), "GET", "/nope")
	r.EndDispatch(ctx, state, "", time.Millisecond, router.KindRouteNotFoundError)

	body := scrape(t, r)
	assert.Contains(t, body, `router_dispatch_errors_total{error_kind="RouteNotFoundError",method="GET",route=""} 1`)
}

func TestRecorderIgnoresMalformedState(t *testing.T) {
	r := New()
	assert.NotPanics(t, func() {
		r.EndDispatch(context.Background(), "not-a-state", "x", time.Millisecond, "")
	})
}

func scrape(t *testing.T, r *Recorder) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	r.Handler().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	return collapseWhitespace(w.Body.String())
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
