package server

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zsiec/timecode/internal/config"
	"github.com/zsiec/timecode/internal/health"
	"github.com/zsiec/timecode/pkg/version"
)

func testLogger() *logrus.Entry {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	logger.SetLevel(logrus.DebugLevel)
	return logrus.NewEntry(logger)
}

func testConfig() *config.ServerConfig {
	return &config.ServerConfig{
		HTTPPort:        8080,
		ShutdownTimeout: time.Second,
		HealthInterval:  time.Hour,
	}
}

func TestNew(t *testing.T) {
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer redisClient.Close()

	cfg := testConfig()
	cfg.RateLimit = config.RateLimitConfig{Enabled: true, RequestsPerSecond: 1, Burst: 1}

	server := New(cfg, testLogger(), redisClient)

	assert.Equal(t, cfg, server.config)
	assert.Equal(t, redisClient, server.redis)
	assert.NotNil(t, server.router)
	assert.NotNil(t, server.ErrorHandler())
	assert.NotNil(t, server.limiter)

	results := server.HealthManager().RunChecks(context.Background())
	assert.Contains(t, results, "converter")
	assert.Contains(t, results, "memory")
	assert.Contains(t, results, "redis")
	assert.Equal(t, health.StatusOK, server.HealthManager().GetOverallStatus())
}

func TestNewWithoutRedis(t *testing.T) {
	server := New(testConfig(), testLogger(), nil)
	assert.Nil(t, server.limiter, "rate limiting is off unless enabled")

	results := server.HealthManager().RunChecks(context.Background())
	assert.NotContains(t, results, "redis")
	assert.Len(t, results, 2)
}

func TestRoutes(t *testing.T) {
	server := New(testConfig(), testLogger(), nil)
	server.RegisterRoutes(func(r *mux.Router) {
		r.HandleFunc("/api/v1/echo", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		}).Methods("POST")
	})
	server.HealthManager().RunChecks(context.Background())
	router := server.Router()

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{"GET", "/health", http.StatusOK},
		{"GET", "/ready", http.StatusOK},
		{"GET", "/live", http.StatusOK},
		{"GET", "/version", http.StatusOK},
		{"POST", "/api/v1/echo", http.StatusTeapot},
		{"GET", "/api/v1/echo", http.StatusMethodNotAllowed},
		{"GET", "/nope", http.StatusNotFound},
		{"GET", "/debug/info", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.want, rr.Code)
			assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
		})
	}
}

func TestVersionEndpoint(t *testing.T) {
	router := New(testConfig(), testLogger(), nil).Router()

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("GET", "/version", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "public, max-age=3600", rr.Header().Get("Cache-Control"))

	var info version.Info
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &info))
	assert.Equal(t, version.Version, info.Version)
}

func TestDebugEndpoints(t *testing.T) {
	cfg := testConfig()
	cfg.DebugEndpoints = true
	cfg.RateLimit = config.RateLimitConfig{Enabled: true, RequestsPerSecond: 100, Burst: 100}
	router := New(cfg, testLogger(), nil).Router()

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("GET", "/debug/info", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var info map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &info))
	assert.Equal(t, true, info["debug_enabled"])
	assert.Contains(t, info, "rate_limit")

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("GET", "/debug/pprof/", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

func TestStartAndShutdown(t *testing.T) {
	cfg := testConfig()
	cfg.HTTPPort = freePort(t)
	server := New(cfg, testLogger(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.Start(ctx) }()

	url := "http://127.0.0.1:" + strconv.Itoa(cfg.HTTPPort) + "/live"
	assert.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestStartHTTP3MissingCertificates(t *testing.T) {
	cfg := testConfig()
	cfg.HTTP3 = config.HTTP3Config{Enabled: true, Port: 8443, TLSCertFile: "missing.pem", TLSKeyFile: "missing.key"}
	server := New(cfg, testLogger(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	err := server.Start(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load TLS certificates")
}

func TestShutdownWithoutStart(t *testing.T) {
	server := New(testConfig(), testLogger(), nil)
	assert.NoError(t, server.Shutdown())
}
