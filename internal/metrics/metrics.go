package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/zsiec/timecode/pkg/timecode"
)

// Cache lookup results.
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

var (
	// Conversion metrics
	conversionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "timecode_conversions_total",
		Help: "Total conversions by operation and output format",
	}, []string{"operation", "format"})

	conversionErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "timecode_conversion_errors_total",
		Help: "Total rejected conversions by operation and error code",
	}, []string{"operation", "code"})

	conversionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "timecode_conversion_duration_seconds",
		Help:    "Time spent handling a conversion request",
		Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10), // 10µs to ~2.6s
	}, []string{"operation"})

	batchSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "timecode_batch_size",
		Help:    "Number of ranges per batch request",
		Buckets: prometheus.ExponentialBuckets(1, 4, 8), // 1 to 16k
	})

	// Advisory and validation metrics
	advisoriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "timecode_advisories_total",
		Help: "Total advisories raised by code",
	}, []string{"code"})

	validationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "timecode_validations_total",
		Help: "Total timecode validations by outcome",
	}, []string{"valid"})

	// Service metrics
	cacheRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "timecode_cache_requests_total",
		Help: "Total response cache lookups by result",
	}, []string{"result"})

	rateLimitedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "timecode_rate_limited_requests_total",
		Help: "Total requests rejected by the rate limiter",
	})
)

// RecordConversion counts a successful conversion.
func RecordConversion(operation string, format timecode.Format) {
	f := string(format)
	if f == "" {
		f = "none"
	}
	conversionsTotal.WithLabelValues(operation, f).Inc()
}

// RecordConversionError counts a rejected conversion.
func RecordConversionError(operation, code string) {
	conversionErrorsTotal.WithLabelValues(operation, code).Inc()
}

// ObserveConversionDuration records how long a conversion request took.
func ObserveConversionDuration(operation string, seconds float64) {
	conversionDuration.WithLabelValues(operation).Observe(seconds)
}

// ObserveBatchSize records the number of ranges in a batch.
func ObserveBatchSize(n int) {
	batchSize.Observe(float64(n))
}

// RecordAdvisory counts an advisory.
func RecordAdvisory(code timecode.AdvisoryCode) {
	advisoriesTotal.WithLabelValues(string(code)).Inc()
}

// RecordValidation counts a validation outcome.
func RecordValidation(valid bool) {
	validationsTotal.WithLabelValues(strconv.FormatBool(valid)).Inc()
}

// RecordCacheResult counts a cache lookup: CacheHit, CacheMiss or CacheError.
func RecordCacheResult(result string) {
	cacheRequestsTotal.WithLabelValues(result).Inc()
}

// RecordRateLimited counts a request rejected by the rate limiter.
func RecordRateLimited() {
	rateLimitedTotal.Inc()
}

// AdvisorySink returns a timecode.Sink that counts advisories by code.
func AdvisorySink() timecode.Sink {
	return timecode.SinkFunc(func(a timecode.Advisory) {
		RecordAdvisory(a.Code)
	})
}
