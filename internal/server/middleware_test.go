package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zsiec/timecode/internal/config"
	"github.com/zsiec/timecode/internal/errors"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestRequestIDMiddleware(t *testing.T) {
	server := New(testConfig(), testLogger(), nil)

	var seen string
	handler := server.requestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get("X-Request-ID")
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/test", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rr.Header().Get("X-Request-ID"))

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("X-Request-ID", "test-request-id")
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, "test-request-id", rr.Header().Get("X-Request-ID"))
}

func TestCORSMiddleware(t *testing.T) {
	handler := New(testConfig(), testLogger(), nil).corsMiddleware(okHandler)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("POST", "/test", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "GET, POST, OPTIONS", rr.Header().Get("Access-Control-Allow-Methods"))

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("OPTIONS", "/test", nil))
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestRecoveryMiddleware(t *testing.T) {
	server := New(testConfig(), testLogger(), nil)
	handler := server.recoveryMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("test panic")
	}))

	rr := httptest.NewRecorder()
	assert.NotPanics(t, func() {
		handler.ServeHTTP(rr, httptest.NewRequest("GET", "/test", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, rr.Code)

	var resp errors.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, errors.ErrorTypeInternal, resp.Error.Type)
}

func TestRateLimitMiddleware(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit = config.RateLimitConfig{Enabled: true, RequestsPerSecond: 0.001, Burst: 2}
	server := New(cfg, testLogger(), nil)
	handler := server.rateLimitMiddleware(okHandler)

	request := func(path, ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("POST", path, nil)
		req.RemoteAddr = ip + ":1234"
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr
	}

	assert.Equal(t, http.StatusOK, request("/api", "10.0.0.1").Code)
	assert.Equal(t, http.StatusOK, request("/api", "10.0.0.1").Code)

	limited := request("/api", "10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Equal(t, "1", limited.Header().Get("Retry-After"))

	var resp errors.ErrorResponse
	require.NoError(t, json.Unmarshal(limited.Body.Bytes(), &resp))
	assert.Equal(t, errors.ErrorTypeRateLimit, resp.Error.Type)

	assert.Equal(t, http.StatusOK, request("/api", "10.0.0.2").Code, "buckets are per client")
	assert.Equal(t, http.StatusOK, request("/health", "10.0.0.1").Code, "probes are never limited")
}

func TestRateLimitMiddlewareDisabled(t *testing.T) {
	handler := New(testConfig(), testLogger(), nil).rateLimitMiddleware(okHandler)
	for i := 0; i < 10; i++ {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest("POST", "/api", nil))
		assert.Equal(t, http.StatusOK, rr.Code)
	}
}

func TestMetricsMiddlewareUsesRouteTemplate(t *testing.T) {
	server := New(testConfig(), testLogger(), nil)
	server.RegisterRoutes(func(r *mux.Router) {
		r.HandleFunc("/api/v1/items/{id}", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusAccepted)
		}).Methods("GET")
	})
	router := server.Router()

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/api/v1/items/{id}", "202"))
	for _, id := range []string{"a", "b", "c"} {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest("GET", "/api/v1/items/"+id, nil))
		require.Equal(t, http.StatusAccepted, rr.Code)
	}
	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/api/v1/items/{id}", "202"))
	assert.Equal(t, float64(3), after-before)
}
