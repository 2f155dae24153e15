package health

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"

	"github.com/redis/go-redis/v9"

	"github.com/zsiec/timecode/pkg/timecode"
)

// RedisChecker pings the response cache backend. Redis only backs the
// cache, so a failure degrades the service rather than taking it down.
type RedisChecker struct {
	client *redis.Client
	name   string
}

// NewRedisChecker creates a checker for client.
func NewRedisChecker(client *redis.Client) *RedisChecker {
	return &RedisChecker{
		client: client,
		name:   "redis",
	}
}

func (r *RedisChecker) Name() string {
	return r.name
}

func (r *RedisChecker) Optional() bool {
	return true
}

func (r *RedisChecker) Check(ctx context.Context) error {
	if r.client == nil {
		return fmt.Errorf("redis client not configured")
	}
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// MemoryChecker fails when the Go heap grows past a byte limit.
type MemoryChecker struct {
	maxHeapBytes uint64
	lastHeap     atomic.Uint64
}

// NewMemoryChecker creates a checker with the given heap limit. A limit of
// zero disables the check.
func NewMemoryChecker(maxHeapBytes uint64) *MemoryChecker {
	return &MemoryChecker{maxHeapBytes: maxHeapBytes}
}

func (m *MemoryChecker) Name() string {
	return "memory"
}

func (m *MemoryChecker) Check(ctx context.Context) error {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	m.lastHeap.Store(stats.HeapAlloc)

	if m.maxHeapBytes > 0 && stats.HeapAlloc > m.maxHeapBytes {
		return fmt.Errorf("heap in use %d bytes exceeds limit %d", stats.HeapAlloc, m.maxHeapBytes)
	}
	return nil
}

func (m *MemoryChecker) Details() map[string]interface{} {
	return map[string]interface{}{
		"heap_alloc_bytes": m.lastHeap.Load(),
		"goroutines":       runtime.NumGoroutine(),
	}
}

// ConverterChecker round-trips a known drop-frame label through the
// converter so a broken build never reports ready.
type ConverterChecker struct {
	label   string
	rate    float64
	seconds float64
}

// NewConverterChecker creates the self-test checker.
func NewConverterChecker() *ConverterChecker {
	return &ConverterChecker{label: "00:10:00;00", rate: 29.97, seconds: 600}
}

func (c *ConverterChecker) Name() string {
	return "converter"
}

func (c *ConverterChecker) Check(ctx context.Context) error {
	got, err := timecode.TimecodeToSeconds(c.label, c.rate)
	if err != nil {
		return fmt.Errorf("decode %s: %w", c.label, err)
	}
	if got != c.seconds {
		return fmt.Errorf("decode %s: got %v seconds, want %v", c.label, got, c.seconds)
	}

	back, err := timecode.SecondsToTimecode(got, c.rate, timecode.DropFrameOn)
	if err != nil {
		return fmt.Errorf("encode %v: %w", got, err)
	}
	if back != c.label {
		return fmt.Errorf("encode %v: got %s, want %s", got, back, c.label)
	}
	return ctx.Err()
}
