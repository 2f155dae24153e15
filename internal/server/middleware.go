package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/zsiec/timecode/internal/errors"
	"github.com/zsiec/timecode/internal/logger"
	"github.com/zsiec/timecode/internal/metrics"
)

var (
	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "http_requests_in_flight",
		Help: "Number of HTTP requests currently being processed",
	})
)

// requestIDMiddleware makes sure every request and response carries an
// X-Request-ID.
func (s *Server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := logger.EnsureRequestID(r)
		w.Header().Set(logger.RequestIDHeader, requestID)
		next.ServeHTTP(w, r)
	})
}

func isProbePath(path string) bool {
	return strings.HasPrefix(path, "/health") || strings.HasPrefix(path, "/ready") || strings.HasPrefix(path, "/live")
}

// routeTemplate returns the matched route pattern so metric labels stay
// bounded.
func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}

// metricsMiddleware tracks request metrics.
func (s *Server) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isProbePath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		httpRequestsInFlight.Inc()
		defer httpRequestsInFlight.Dec()

		rw := logger.NewResponseWriter(w)
		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(rw.StatusCode())
		path := routeTemplate(r)

		httpRequestDuration.WithLabelValues(r.Method, path, status).Observe(duration)
		httpRequestsTotal.WithLabelValues(r.Method, path, status).Inc()

		logger.FromContext(r.Context()).WithFields(logger.Fields{
			"status":      rw.StatusCode(),
			"duration_ms": duration * 1000,
			"bytes":       rw.BytesWritten(),
		}).Info("Request completed")
	})
}

// corsMiddleware handles CORS headers.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// recoveryMiddleware recovers from panics.
func (s *Server) recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				s.logger.WithFields(logger.Fields{
					"error":      err,
					"request_id": r.Header.Get(logger.RequestIDHeader),
					"method":     r.Method,
					"path":       r.URL.Path,
				}).Error("Panic recovered")

				s.errorHandler.HandlePanic(w, r, err)
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// rateLimitMiddleware rejects clients that exceed their token bucket.
// Probes are never limited.
func (s *Server) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.limiter == nil || isProbePath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		if !s.limiter.Allow(logger.RemoteIP(r)) {
			metrics.RecordRateLimited()
			w.Header().Set("Retry-After", "1")
			s.errorHandler.HandleError(w, r, errors.NewRateLimitError("Too many requests"))
			return
		}

		next.ServeHTTP(w, r)
	})
}
