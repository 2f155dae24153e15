package server

import (
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/zsiec/timecode/internal/config"
)

const (
	// maxTrackedClients bounds the limiter table; idle entries are pruned
	// once it is reached.
	maxTrackedClients = 10000
	clientIdleTimeout = 5 * time.Minute
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ClientLimiter keeps one token bucket per client address.
type ClientLimiter struct {
	rps     rate.Limit
	burst   int
	clients map[string]*clientLimiter
	mu      sync.Mutex
	now     func() time.Time
}

// NewClientLimiter creates a limiter from cfg.
func NewClientLimiter(cfg config.RateLimitConfig) *ClientLimiter {
	return &ClientLimiter{
		rps:     rate.Limit(cfg.RequestsPerSecond),
		burst:   cfg.Burst,
		clients: make(map[string]*clientLimiter),
		now:     time.Now,
	}
}

// Allow reports whether client may make a request now.
func (l *ClientLimiter) Allow(client string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	entry, ok := l.clients[client]
	if !ok {
		if len(l.clients) >= maxTrackedClients {
			l.prune(now)
		}
		entry = &clientLimiter{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.clients[client] = entry
	}
	entry.lastSeen = now
	return entry.limiter.AllowN(now, 1)
}

// Clients returns the number of tracked clients.
func (l *ClientLimiter) Clients() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

func (l *ClientLimiter) prune(now time.Time) {
	for client, entry := range l.clients {
		if now.Sub(entry.lastSeen) > clientIdleTimeout {
			delete(l.clients, client)
		}
	}
}
