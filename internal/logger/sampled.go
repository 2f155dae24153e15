package logger

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/zsiec/timecode/pkg/timecode"
)

// SampledLogger rate-limits log lines per category. Categories without a
// sampler are always logged.
type SampledLogger struct {
	base     Logger
	samplers *samplerSet
}

type samplerSet struct {
	mu sync.RWMutex
	m  map[string]*LogSampler
}

// LogSampler handles sampling for one category
type LogSampler struct {
	name           string
	maxFrequency   time.Duration // minimum spacing before the burst counter resets
	burstAllowance int
	sampleRate     float64 // 0.0-1.0 after the burst is used up

	lastLogTime  int64 // atomic, unix nanos
	messageCount int64 // atomic
	burstCounter int64 // atomic

	totalMessages   int64 // atomic
	sampledMessages int64 // atomic
	droppedMessages int64 // atomic
}

// SamplerStats holds statistics for a log sampler
type SamplerStats struct {
	Name            string  `json:"name"`
	TotalMessages   int64   `json:"total_messages"`
	SampledMessages int64   `json:"sampled_messages"`
	DroppedMessages int64   `json:"dropped_messages"`
	CurrentRate     float64 `json:"current_rate"`
}

// NewSampledLogger creates a sampled logger with no samplers.
func NewSampledLogger(base Logger) *SampledLogger {
	return &SampledLogger{
		base:     base,
		samplers: &samplerSet{m: make(map[string]*LogSampler)},
	}
}

// WithSampler configures sampling for category.
func (s *SampledLogger) WithSampler(category string, maxFreq time.Duration, burstAllowance int, sampleRate float64) *SampledLogger {
	s.samplers.mu.Lock()
	defer s.samplers.mu.Unlock()

	s.samplers.m[category] = &LogSampler{
		name:           category,
		maxFrequency:   maxFreq,
		burstAllowance: burstAllowance,
		sampleRate:     sampleRate,
	}
	return s
}

// With returns a logger writing to base that shares this logger's samplers.
func (s *SampledLogger) With(base Logger) *SampledLogger {
	return &SampledLogger{base: base, samplers: s.samplers}
}

func (s *SampledLogger) sampler(category string) (*LogSampler, bool) {
	s.samplers.mu.RLock()
	defer s.samplers.mu.RUnlock()
	sampler, ok := s.samplers.m[category]
	return sampler, ok
}

func (s *SampledLogger) shouldLog(category string) bool {
	sampler, ok := s.sampler(category)
	if !ok {
		return true
	}

	now := time.Now().UnixNano()
	atomic.AddInt64(&sampler.totalMessages, 1)

	lastLog := atomic.LoadInt64(&sampler.lastLogTime)
	if now-lastLog >= sampler.maxFrequency.Nanoseconds() {
		atomic.StoreInt64(&sampler.burstCounter, 1)
		atomic.StoreInt64(&sampler.lastLogTime, now)
		atomic.AddInt64(&sampler.sampledMessages, 1)
		return true
	}

	if atomic.LoadInt64(&sampler.burstCounter) < int64(sampler.burstAllowance) {
		atomic.AddInt64(&sampler.burstCounter, 1)
		atomic.StoreInt64(&sampler.lastLogTime, now)
		atomic.AddInt64(&sampler.sampledMessages, 1)
		return true
	}

	if sampler.sampleRate <= 0 {
		atomic.AddInt64(&sampler.droppedMessages, 1)
		return false
	}

	// Log every 1/sampleRate messages
	if float64(atomic.AddInt64(&sampler.messageCount, 1))*sampler.sampleRate >= 1.0 {
		atomic.StoreInt64(&sampler.messageCount, 0)
		atomic.StoreInt64(&sampler.lastLogTime, now)
		atomic.AddInt64(&sampler.sampledMessages, 1)
		return true
	}

	atomic.AddInt64(&sampler.droppedMessages, 1)
	return false
}

// LogSampled logs msg at level unless category's sampler drops it. Logged
// lines carry the sampler's counters.
func (s *SampledLogger) LogSampled(level logrus.Level, category, msg string, fields Fields) {
	if !s.shouldLog(category) {
		return
	}
	if fields == nil {
		fields = make(Fields)
	}
	fields["category"] = category

	if sampler, ok := s.sampler(category); ok {
		if total := atomic.LoadInt64(&sampler.totalMessages); total > 0 {
			fields["_sampling_total"] = total
			fields["_sampling_dropped"] = atomic.LoadInt64(&sampler.droppedMessages)
		}
	}
	s.base.WithFields(fields).Log(level, msg)
}

// Stats returns statistics for every sampler.
func (s *SampledLogger) Stats() map[string]SamplerStats {
	s.samplers.mu.RLock()
	defer s.samplers.mu.RUnlock()

	stats := make(map[string]SamplerStats, len(s.samplers.m))
	for name, sampler := range s.samplers.m {
		total := atomic.LoadInt64(&sampler.totalMessages)
		sampled := atomic.LoadInt64(&sampler.sampledMessages)
		st := SamplerStats{
			Name:            name,
			TotalMessages:   total,
			SampledMessages: sampled,
			DroppedMessages: atomic.LoadInt64(&sampler.droppedMessages),
		}
		if total > 0 {
			st.CurrentRate = float64(sampled) / float64(total)
		}
		stats[name] = st
	}
	return stats
}

// NewAdvisoryLogger creates a sampled logger tuned for conversion
// advisories, which can repeat once per item of a batch request.
func NewAdvisoryLogger(base Logger) *SampledLogger {
	return NewSampledLogger(base).
		// Drift: max 1/sec, burst 5, then 10% sampling
		WithSampler(string(timecode.AdvisoryNonDropDrift), time.Second, 5, 0.1).
		// Rate mismatch: max 1/sec, burst 5, then 10% sampling
		WithSampler(string(timecode.AdvisoryRateMismatch), time.Second, 5, 0.1).
		// Validation warnings: max 2/sec, burst 10, then 20% sampling
		WithSampler(string(timecode.AdvisoryValidationWarning), 500*time.Millisecond, 10, 0.2)
}

// AdvisorySink returns a timecode.Sink that logs each advisory at warn
// level with its code.
func (s *SampledLogger) AdvisorySink() timecode.Sink {
	return timecode.SinkFunc(func(a timecode.Advisory) {
		s.LogSampled(logrus.WarnLevel, string(a.Code), a.Message, Fields{
			"advisory_code": string(a.Code),
		})
	})
}
