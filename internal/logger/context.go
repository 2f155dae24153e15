package logger

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type contextKey string

const (
	// LoggerKey is the context key for the request logger
	LoggerKey contextKey = "logger"
	// RequestIDKey is the context key for the request ID
	RequestIDKey contextKey = "request_id"

	// RequestIDHeader carries the request ID in both directions.
	RequestIDHeader = "X-Request-ID"
)

// WithLogger adds a logger entry to the context.
func WithLogger(ctx context.Context, entry *logrus.Entry) context.Context {
	return context.WithValue(ctx, LoggerKey, entry)
}

// FromContext retrieves the logger entry from context, falling back to the
// standard logger.
func FromContext(ctx context.Context) *logrus.Entry {
	if entry, ok := ctx.Value(LoggerKey).(*logrus.Entry); ok {
		return entry
	}
	return logrus.NewEntry(logrus.StandardLogger())
}

// WithRequestID adds a request ID to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetRequestID retrieves the request ID from context.
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// EnsureRequestID returns the request's X-Request-ID, generating and
// storing one on the request when it is missing.
func EnsureRequestID(r *http.Request) string {
	requestID := r.Header.Get(RequestIDHeader)
	if requestID == "" {
		requestID = uuid.New().String()
		r.Header.Set(RequestIDHeader, requestID)
	}
	return requestID
}

// WithRequest creates a logger entry with request information.
func WithRequest(entry *logrus.Entry, r *http.Request) *logrus.Entry {
	return entry.WithFields(logrus.Fields{
		"request_id": EnsureRequestID(r),
		"method":     r.Method,
		"path":       r.URL.Path,
		"remote_ip":  RemoteIP(r),
		"user_agent": r.UserAgent(),
	})
}

// RequestLoggerMiddleware stores a request-scoped logger and the request ID
// in the request context.
func RequestLoggerMiddleware(base *logrus.Entry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			entry := WithRequest(base, r)

			ctx := WithLogger(r.Context(), entry)
			ctx = WithRequestID(ctx, r.Header.Get(RequestIDHeader))

			entry.Debug("Request started")

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RemoteIP returns the client address, preferring the first proxy hop
// reported in X-Forwarded-For, then X-Real-IP, then the connection's host.
func RemoteIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// ResponseWriter wraps http.ResponseWriter to capture status code and size
type ResponseWriter struct {
	http.ResponseWriter
	statusCode int
	bytes      int
	written    bool
}

// NewResponseWriter creates a new ResponseWriter.
func NewResponseWriter(w http.ResponseWriter) *ResponseWriter {
	return &ResponseWriter{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
	}
}

// WriteHeader captures the status code.
func (rw *ResponseWriter) WriteHeader(code int) {
	if !rw.written {
		rw.statusCode = code
		rw.ResponseWriter.WriteHeader(code)
		rw.written = true
	}
}

// Write records the first write as a 200 and counts bytes.
func (rw *ResponseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	n, err := rw.ResponseWriter.Write(b)
	rw.bytes += n
	return n, err
}

// StatusCode returns the captured status code.
func (rw *ResponseWriter) StatusCode() int {
	return rw.statusCode
}

// BytesWritten returns the number of body bytes written.
func (rw *ResponseWriter) BytesWritten() int {
	return rw.bytes
}
