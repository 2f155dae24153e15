// Package api serves the timecode conversions over HTTP.
package api

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/zsiec/timecode/internal/cache"
	"github.com/zsiec/timecode/internal/config"
	"github.com/zsiec/timecode/internal/errors"
	"github.com/zsiec/timecode/internal/logger"
	"github.com/zsiec/timecode/internal/metrics"
	"github.com/zsiec/timecode/pkg/timecode"
)

const maxRequestBytes = 1 << 20

// Operation names used in routes, cache keys and metric labels.
const (
	OpFromSeconds = "from-seconds"
	OpToSeconds   = "to-seconds"
	OpShort       = "short"
	OpValidate    = "validate"
	OpRanges      = "ranges"
)

// Handlers serves the /api/v1/timecode endpoints.
type Handlers struct {
	cfg          config.TimecodeConfig
	cache        cache.Cache
	sink         timecode.Sink
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

// NewHandlers creates the API handlers. sink receives every advisory raised
// while serving a request, in addition to the advisories returned in the
// response. A nil cache disables response caching and a nil log discards
// handler logs.
func NewHandlers(cfg config.TimecodeConfig, c cache.Cache, sink timecode.Sink, errorHandler *errors.ErrorHandler, log logger.Logger) *Handlers {
	if c == nil {
		c = cache.Nop{}
	}
	if sink == nil {
		sink = timecode.Discard
	}
	if log == nil {
		log = logger.NewNullLogger()
	}
	return &Handlers{
		cfg:          cfg,
		cache:        c,
		sink:         sink,
		errorHandler: errorHandler,
		logger:       log.WithField("component", "api"),
	}
}

// RegisterRoutes registers the conversion routes on router.
func (h *Handlers) RegisterRoutes(router *mux.Router) {
	api := router.PathPrefix("/api/v1/timecode").Subrouter()

	api.HandleFunc("/"+OpFromSeconds, h.HandleFromSeconds).Methods("POST")
	api.HandleFunc("/"+OpToSeconds, h.HandleToSeconds).Methods("POST")
	api.HandleFunc("/"+OpShort, h.HandleShort).Methods("POST")
	api.HandleFunc("/"+OpValidate, h.HandleValidate).Methods("POST")
	api.HandleFunc("/"+OpRanges, h.HandleRanges).Methods("POST")
	api.HandleFunc("/rates", h.HandleRates).Methods("GET")

	h.logger.Info("Timecode routes registered")
}

// HandleFromSeconds converts seconds to a timecode label.
func (h *Handlers) HandleFromSeconds(w http.ResponseWriter, r *http.Request) {
	var req FromSecondsRequest
	if !h.decode(w, r, OpFromSeconds, &req) {
		return
	}

	h.serve(w, r, OpFromSeconds, req, &FromSecondsResponse{}, func() (interface{}, timecode.Format, error) {
		resp, err := FromSeconds(h.sink, req)
		if err != nil {
			return nil, "", err
		}
		return resp, resp.Format, nil
	})
}

// HandleToSeconds converts a label, or passes a number through, to seconds.
func (h *Handlers) HandleToSeconds(w http.ResponseWriter, r *http.Request) {
	var req ToSecondsRequest
	if !h.decode(w, r, OpToSeconds, &req) {
		return
	}

	h.serve(w, r, OpToSeconds, req, &ToSecondsResponse{}, func() (interface{}, timecode.Format, error) {
		resp, err := ToSeconds(h.sink, req)
		if err != nil {
			return nil, "", err
		}
		return resp, resp.Format, nil
	})
}

// HandleShort renders an hh:mm:ss label from a label or a number of seconds.
func (h *Handlers) HandleShort(w http.ResponseWriter, r *http.Request) {
	var req ShortRequest
	if !h.decode(w, r, OpShort, &req) {
		return
	}

	h.serve(w, r, OpShort, req, &ShortResponse{}, func() (interface{}, timecode.Format, error) {
		resp, err := Short(h.sink, req)
		if err != nil {
			return nil, "", err
		}
		return resp, "", nil
	})
}

// HandleValidate validates a label. Findings are part of a 200 response;
// only an undecodable body is an error.
func (h *Handlers) HandleValidate(w http.ResponseWriter, r *http.Request) {
	var req ValidateRequest
	if !h.decode(w, r, OpValidate, &req) {
		return
	}

	h.serve(w, r, OpValidate, req, &ValidateResponse{}, func() (interface{}, timecode.Format, error) {
		resp := Validate(h.sink, req)
		metrics.RecordValidation(resp.Valid)
		return resp, resp.Format, nil
	})
}

// HandleRanges converts a batch of [start, end] ranges.
func (h *Handlers) HandleRanges(w http.ResponseWriter, r *http.Request) {
	var req RangesRequest
	if !h.decode(w, r, OpRanges, &req) {
		return
	}

	if limit := h.cfg.MaxBatchSize; limit > 0 && len(req.Ranges) > limit {
		metrics.RecordConversionError(OpRanges, errors.CodeBatchTooLarge)
		h.errorHandler.HandleError(w, r, errors.NewValidationError(
			fmt.Sprintf("Batch of %d ranges exceeds the limit of %d", len(req.Ranges), limit)).
			WithCode(errors.CodeBatchTooLarge).
			WithDetails(map[string]interface{}{"limit": limit, "size": len(req.Ranges)}))
		return
	}
	metrics.ObserveBatchSize(len(req.Ranges))

	h.serve(w, r, OpRanges, req, &RangesResponse{}, func() (interface{}, timecode.Format, error) {
		resp, err := Ranges(h.sink, req)
		if err != nil {
			return nil, "", err
		}
		return resp, "", nil
	})
}

// HandleRates lists the known broadcast frame rates.
func (h *Handlers) HandleRates(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "public, max-age=3600")
	h.writeJSON(w, http.StatusOK, Rates())
}

// decode reads the JSON body into dst and answers 400 on failure.
func (h *Handlers) decode(w http.ResponseWriter, r *http.Request, op string, dst interface{}) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBytes))
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err == nil {
		return true
	}

	var appErr *errors.AppError
	switch {
	case stderrors.Is(err, timecode.ErrInvalidFrameRate), stderrors.Is(err, timecode.ErrMalformedTimecode):
		appErr = errors.FromTimecodeError(err)
	default:
		appErr = errors.NewBadRequestError(err)
	}
	metrics.RecordConversionError(op, appErr.Code)
	h.errorHandler.HandleError(w, r, appErr)
	return false
}

// serve answers from the cache when it can, otherwise runs compute, records
// metrics and stores the response. Cache failures never fail the request.
func (h *Handlers) serve(w http.ResponseWriter, r *http.Request, op string, req interface{}, cached interface{},
	compute func() (interface{}, timecode.Format, error)) {
	ctx := r.Context()
	log := h.logger.WithField("operation", op)

	key, err := cache.Key(op, req)
	if err != nil {
		log.WithError(err).Warn("Failed to derive cache key")
	}
	if key != "" {
		switch err := h.cache.Get(ctx, key, cached); {
		case err == nil:
			w.Header().Set("X-Cache", "HIT")
			h.writeJSON(w, http.StatusOK, cached)
			return
		case !stderrors.Is(err, cache.ErrMiss):
			log.WithError(err).Warn("Cache lookup failed")
		}
	}

	start := time.Now()
	resp, format, err := compute()
	metrics.ObserveConversionDuration(op, time.Since(start).Seconds())
	if err != nil {
		appErr := errors.FromTimecodeError(err)
		metrics.RecordConversionError(op, appErr.Code)
		h.errorHandler.HandleError(w, r, appErr)
		return
	}
	metrics.RecordConversion(op, format)

	if key != "" {
		h.store(ctx, log, key, resp)
		w.Header().Set("X-Cache", "MISS")
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handlers) store(ctx context.Context, log logger.Logger, key string, resp interface{}) {
	if err := h.cache.Set(ctx, key, resp); err != nil {
		log.WithError(err).Warn("Failed to store response in cache")
	}
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.WithError(err).Error("Failed to encode response")
	}
}
