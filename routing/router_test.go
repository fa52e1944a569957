package routing_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-ioc/routing"
)

func TestRouter_GetAndJSON(t *testing.T) {
	r := routing.New()
	r.Get("/ping", func(w http.ResponseWriter, req *http.Request) {
		routing.JSON(w, http.StatusOK, map[string]string{"pong": "ok"})
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
	assert.JSONEq(t, `{"pong":"ok"}`, rec.Body.String())
}

func TestRouter_PrefixAndParam(t *testing.T) {
	r := routing.New()
	r.Prefix("/api/v1", func(api *routing.Router) {
		api.Get("/components/{name}", func(w http.ResponseWriter, req *http.Request) {
			routing.JSON(w, http.StatusOK, map[string]string{"name": routing.Param(req, "name")})
		})
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/components/store", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"name":"store"}`, rec.Body.String())
}

func TestRouter_NotFound(t *testing.T) {
	r := routing.New()
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
