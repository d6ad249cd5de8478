package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChain_AppliesMiddlewaresInOrder(t *testing.T) {
	var order []string
	tag := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	handler := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	}), tag("first"), tag("second"))

	req, err := http.NewRequest("GET", "/", nil)
	require.NoError(t, err)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, []string{"first", "second", "handler"}, order)
}

func TestRequestOptionsMiddleware_DryRunFlag(t *testing.T) {
	var seen bool
	handler := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = isDryRunFromContext(r)
	}), requestOptionsMiddleware)

	req, err := http.NewRequest("GET", "/players?dry_run=true", nil)
	require.NoError(t, err)
	handler.ServeHTTP(httptest.NewRecorder(), req)
	assert.True(t, seen)

	req, err = http.NewRequest("GET", "/players", nil)
	require.NoError(t, err)
	handler.ServeHTTP(httptest.NewRecorder(), req)
	assert.False(t, seen)
}

func TestIsDryRunFromContext_MissingValue(t *testing.T) {
	req, err := http.NewRequest("GET", "/players", nil)
	require.NoError(t, err)
	assert.False(t, isDryRunFromContext(req))
}
