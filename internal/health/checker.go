package health

import (
	"context"
	stderrors "errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Status is the health of a component or of the whole service.
type Status string

const (
	StatusOK       Status = "ok"
	StatusDegraded Status = "degraded"
	StatusDown     Status = "down"
)

// DefaultCheckTimeout bounds a single checker run.
const DefaultCheckTimeout = 5 * time.Second

// Check is the result of one checker run.
type Check struct {
	Name        string                 `json:"name"`
	Status      Status                 `json:"status"`
	Message     string                 `json:"message,omitempty"`
	LastChecked time.Time              `json:"last_checked"`
	Duration    time.Duration          `json:"-"`
	DurationMS  float64                `json:"duration_ms"`
	Details     map[string]interface{} `json:"details,omitempty"`
}

// Checker is implemented by every health probe.
type Checker interface {
	Name() string
	Check(ctx context.Context) error
}

// Optional marks a checker whose failure degrades the service instead of
// taking it down.
type Optional interface {
	Optional() bool
}

// Manager runs checkers and keeps their latest results.
type Manager struct {
	checkers []Checker
	results  map[string]*Check
	timeout  time.Duration
	mu       sync.RWMutex
	logger   *logrus.Entry
}

// NewManager creates a manager that logs through logger.
func NewManager(logger *logrus.Entry) *Manager {
	return &Manager{
		checkers: make([]Checker, 0),
		results:  make(map[string]*Check),
		timeout:  DefaultCheckTimeout,
		logger:   logger.WithField("component", "health"),
	}
}

// Register adds a checker.
func (m *Manager) Register(checker Checker) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checkers = append(m.checkers, checker)
	m.logger.WithField("checker", checker.Name()).Debug("Registered health checker")
}

// SetTimeout changes the per-checker timeout.
func (m *Manager) SetTimeout(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d > 0 {
		m.timeout = d
	}
}

// RunChecks runs all checkers concurrently and stores their results.
func (m *Manager) RunChecks(ctx context.Context) map[string]*Check {
	m.mu.RLock()
	checkers := append([]Checker(nil), m.checkers...)
	timeout := m.timeout
	m.mu.RUnlock()

	var wg sync.WaitGroup
	resultsChan := make(chan *Check, len(checkers))

	for _, checker := range checkers {
		wg.Add(1)
		go func(c Checker) {
			defer wg.Done()
			resultsChan <- m.runOne(ctx, c, timeout)
		}(checker)
	}

	wg.Wait()
	close(resultsChan)

	results := make(map[string]*Check, len(checkers))
	m.mu.Lock()
	for check := range resultsChan {
		results[check.Name] = check
		m.results[check.Name] = check
	}
	m.mu.Unlock()

	return results
}

func (m *Manager) runOne(ctx context.Context, c Checker, timeout time.Duration) *Check {
	checkCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	err := c.Check(checkCtx)
	duration := time.Since(start)

	check := &Check{
		Name:        c.Name(),
		Status:      StatusOK,
		LastChecked: time.Now(),
		Duration:    duration,
		DurationMS:  float64(duration.Microseconds()) / 1000,
	}
	if d, ok := c.(interface{ Details() map[string]interface{} }); ok {
		check.Details = d.Details()
	}

	fields := logrus.Fields{"checker": c.Name(), "duration": duration}
	if err == nil {
		m.logger.WithFields(fields).Debug("Health check passed")
		return check
	}

	check.Status = StatusDown
	if opt, ok := c.(Optional); ok && opt.Optional() {
		check.Status = StatusDegraded
	}
	check.Message = err.Error()
	if stderrors.Is(err, context.DeadlineExceeded) {
		check.Message = "Health check timed out"
	}
	m.logger.WithFields(fields).WithError(err).Error("Health check failed")
	return check
}

// GetResults returns copies of the latest results.
func (m *Manager) GetResults() map[string]*Check {
	m.mu.RLock()
	defer m.mu.RUnlock()

	results := make(map[string]*Check, len(m.results))
	for k, v := range m.results {
		checkCopy := *v
		results[k] = &checkCopy
	}
	return results
}

// GetOverallStatus folds the latest results into one status. No results
// yet means down.
func (m *Manager) GetOverallStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.results) == 0 {
		return StatusDown
	}

	overall := StatusOK
	for _, check := range m.results {
		switch check.Status {
		case StatusDown:
			return StatusDown
		case StatusDegraded:
			overall = StatusDegraded
		}
	}
	return overall
}

// StartPeriodicChecks runs the checkers every interval until ctx is done.
func (m *Manager) StartPeriodicChecks(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	m.RunChecks(ctx)

	for {
		select {
		case <-ticker.C:
			m.RunChecks(ctx)
		case <-ctx.Done():
			m.logger.Info("Stopping periodic health checks")
			return
		}
	}
}
