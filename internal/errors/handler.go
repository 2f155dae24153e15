package errors

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"
)

// ErrorResponse represents the error response structure.
type ErrorResponse struct {
	Error   ErrorDetails `json:"error"`
	TraceID string       `json:"trace_id,omitempty"`
}

// ErrorDetails contains the error details.
type ErrorDetails struct {
	Type    ErrorType              `json:"type"`
	Message string                 `json:"message"`
	Code    string                 `json:"code,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// ErrorHandler writes JSON error responses.
type ErrorHandler struct {
	logger *logrus.Entry
}

// NewErrorHandler creates a new error handler.
func NewErrorHandler(logger *logrus.Entry) *ErrorHandler {
	return &ErrorHandler{
		logger: logger,
	}
}

// HandleError logs err and writes it as a JSON response. Library errors
// from the timecode package are mapped to 400 responses with a code.
func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	traceID := r.Header.Get("X-Request-ID")
	appErr := FromTimecodeError(err)

	logEntry := h.logger.WithFields(logrus.Fields{
		"error_type": appErr.Type,
		"error_code": appErr.Code,
		"trace_id":   traceID,
		"method":     r.Method,
		"path":       r.URL.Path,
	})

	switch {
	case appErr.HTTPStatus >= http.StatusInternalServerError:
		logEntry.Error(appErr.Error())
	case appErr.HTTPStatus == http.StatusBadRequest, appErr.HTTPStatus == http.StatusNotFound:
		logEntry.Warn(appErr.Error())
	default:
		logEntry.Info(appErr.Error())
	}

	h.writeJSON(w, appErr.HTTPStatus, ErrorResponse{
		Error: ErrorDetails{
			Type:    appErr.Type,
			Message: appErr.Message,
			Code:    appErr.Code,
			Details: appErr.Details,
		},
		TraceID: traceID,
	})
}

// HandleNotFound handles 404 errors.
func (h *ErrorHandler) HandleNotFound(w http.ResponseWriter, r *http.Request) {
	h.HandleError(w, r, NewNotFoundError("endpoint"))
}

// HandleMethodNotAllowed handles 405 errors.
func (h *ErrorHandler) HandleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	h.HandleError(w, r, New(ErrorTypeValidation, "Method not allowed", http.StatusMethodNotAllowed))
}

// HandlePanic handles panics in HTTP handlers.
func (h *ErrorHandler) HandlePanic(w http.ResponseWriter, r *http.Request, recovered interface{}) {
	h.logger.WithFields(logrus.Fields{
		"panic":    recovered,
		"method":   r.Method,
		"path":     r.URL.Path,
		"trace_id": r.Header.Get("X-Request-ID"),
	}).Error("Panic recovered in HTTP handler")

	h.HandleError(w, r, NewInternalError("An unexpected error occurred"))
}

func (h *ErrorHandler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.WithError(err).Error("Failed to encode error response")
	}
}

// Middleware recovers panics raised by next.
func (h *ErrorHandler) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if recovered := recover(); recovered != nil {
				h.HandlePanic(w, r, recovered)
			}
		}()

		next.ServeHTTP(w, r)
	})
}
