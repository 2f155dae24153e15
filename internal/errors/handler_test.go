package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zsiec/timecode/pkg/timecode"
)

func newTestHandler() *ErrorHandler {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewErrorHandler(logrus.NewEntry(logger))
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var response ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
	return response
}

func TestHandleError(t *testing.T) {
	handler := newTestHandler()

	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedType   ErrorType
		expectedCode   string
	}{
		{
			name:           "AppError",
			err:            NewValidationError("invalid input"),
			expectedStatus: http.StatusBadRequest,
			expectedType:   ErrorTypeValidation,
		},
		{
			name:           "Standard error",
			err:            errors.New("something went wrong"),
			expectedStatus: http.StatusInternalServerError,
			expectedType:   ErrorTypeInternal,
		},
		{
			name:           "Missing frame rate",
			err:            timecode.ErrFrameRateRequired,
			expectedStatus: http.StatusBadRequest,
			expectedType:   ErrorTypeValidation,
			expectedCode:   CodeFrameRateRequired,
		},
		{
			name:           "Wrapped malformed timecode",
			err:            fmt.Errorf("%w: bad field", timecode.ErrMalformedTimecode),
			expectedStatus: http.StatusBadRequest,
			expectedType:   ErrorTypeValidation,
			expectedCode:   CodeMalformedTimecode,
		},
		{
			name:           "Rate limited",
			err:            NewRateLimitError("slow down"),
			expectedStatus: http.StatusTooManyRequests,
			expectedType:   ErrorTypeRateLimit,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/v1/timecode/to-seconds", nil)
			req.Header.Set("X-Request-ID", "test-123")
			rr := httptest.NewRecorder()

			handler.HandleError(rr, req, tt.err)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

			response := decodeError(t, rr)
			assert.Equal(t, tt.expectedType, response.Error.Type)
			assert.Equal(t, tt.expectedCode, response.Error.Code)
			assert.NotEmpty(t, response.Error.Message)
			assert.Equal(t, "test-123", response.TraceID)
		})
	}
}

func TestHandleNotFound(t *testing.T) {
	rr := httptest.NewRecorder()
	newTestHandler().HandleNotFound(rr, httptest.NewRequest("GET", "/nonexistent", nil))

	assert.Equal(t, http.StatusNotFound, rr.Code)
	response := decodeError(t, rr)
	assert.Equal(t, ErrorTypeNotFound, response.Error.Type)
	assert.Contains(t, response.Error.Message, "endpoint")
}

func TestHandleMethodNotAllowed(t *testing.T) {
	rr := httptest.NewRecorder()
	newTestHandler().HandleMethodNotAllowed(rr, httptest.NewRequest("GET", "/api/v1/timecode/validate", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	response := decodeError(t, rr)
	assert.Equal(t, ErrorTypeValidation, response.Error.Type)
	assert.Contains(t, response.Error.Message, "Method not allowed")
}

func TestMiddleware(t *testing.T) {
	panicHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("middleware test panic")
	})
	protected := newTestHandler().Middleware(panicHandler)

	rr := httptest.NewRecorder()
	assert.NotPanics(t, func() {
		protected.ServeHTTP(rr, httptest.NewRequest("GET", "/test", nil))
	})

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	response := decodeError(t, rr)
	assert.Equal(t, ErrorTypeInternal, response.Error.Type)
	assert.Contains(t, response.Error.Message, "unexpected error")
}
