package health

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/zsiec/timecode/pkg/version"
)

// Response is the body of /health.
type Response struct {
	Status    Status            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	Uptime    string            `json:"uptime"`
	Checks    map[string]*Check `json:"checks,omitempty"`
}

type statusResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// Handler serves the health endpoints.
type Handler struct {
	manager   *Manager
	startTime time.Time
}

// NewHandler creates a handler backed by manager.
func NewHandler(manager *Manager) *Handler {
	return &Handler{
		manager:   manager,
		startTime: time.Now(),
	}
}

// HandleHealth runs every checker and reports the details. Degraded still
// answers 200.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	checks := h.manager.RunChecks(ctx)
	overall := h.manager.GetOverallStatus()

	statusCode := http.StatusOK
	if overall == StatusDown {
		statusCode = http.StatusServiceUnavailable
	}

	h.writeJSON(w, statusCode, Response{
		Status:    overall,
		Timestamp: time.Now(),
		Version:   version.Version,
		Uptime:    formatUptime(time.Since(h.startTime)),
		Checks:    checks,
	})
}

// HandleReady reports the status of the last check run.
func (h *Handler) HandleReady(w http.ResponseWriter, r *http.Request) {
	overall := h.manager.GetOverallStatus()

	statusCode := http.StatusOK
	if overall == StatusDown {
		statusCode = http.StatusServiceUnavailable
	}
	h.writeJSON(w, statusCode, statusResponse{Status: string(overall), Timestamp: time.Now()})
}

// HandleLive answers as long as the process can serve HTTP.
func (h *Handler) HandleLive(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, statusResponse{Status: "alive", Timestamp: time.Now()})
}

// formatUptime renders d as "2 days 1 hour 5 seconds", skipping zero units.
func formatUptime(d time.Duration) string {
	units := []struct {
		name  string
		value int
	}{
		{"day", int(d.Hours() / 24)},
		{"hour", int(d.Hours()) % 24},
		{"minute", int(d.Minutes()) % 60},
		{"second", int(d.Seconds()) % 60},
	}

	var parts []string
	for _, u := range units {
		if u.value > 0 {
			parts = append(parts, formatUnit(u.value, u.name))
		}
	}
	if len(parts) == 0 {
		return formatUnit(0, "second")
	}
	return strings.Join(parts, " ")
}

func formatUnit(value int, unit string) string {
	if value == 1 {
		return "1 " + unit
	}
	return strconv.Itoa(value) + " " + unit + "s"
}

func (h *Handler) writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.manager.logger.WithError(err).Error("Failed to encode health response")
	}
}
