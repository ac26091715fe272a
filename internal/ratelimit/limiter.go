// Package ratelimit throttles requests per client IP with fixed-window counters.
package ratelimit

import (
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/elskow/medtrack/internal/config"
)

// Policy allows Limit requests per Window for each client. Status is the
// HTTP status written when a client exceeds it.
type Policy struct {
	Name   string
	Limit  int
	Window time.Duration
	Status int
}

// Login throttles credential checks. Breaches answer 403.
func Login() Policy {
	return Policy{Name: "login", Limit: 5, Window: 30 * time.Second, Status: http.StatusForbidden}
}

// Read throttles safe requests against group. Breaches answer 400.
func Read(group string) Policy {
	return Policy{Name: group + ":read", Limit: 10, Window: time.Minute, Status: http.StatusBadRequest}
}

// Write throttles unsafe requests against group. Breaches answer 400.
func Write(group string) Policy {
	return Policy{Name: group + ":write", Limit: 5, Window: time.Minute, Status: http.StatusBadRequest}
}

type window struct {
	start    time.Time
	count    int
	lastSeen time.Time
}

type Limiter struct {
	enabled bool
	entries map[string]*window
	mu      sync.RWMutex
	now     func() time.Time
	log     *zap.Logger
}

func NewLimiter(cfg *config.RateLimitConfig, log *zap.Logger) *Limiter {
	return &Limiter{
		enabled: cfg.Enabled,
		entries: make(map[string]*window),
		now:     time.Now,
		log:     log,
	}
}

func (l *Limiter) Enabled() bool {
	return l.enabled
}

// Allow counts one request for (policy, key) in the current fixed window.
// The window opens at the first request and the counter resets once Window
// has elapsed since then.
func (l *Limiter) Allow(p Policy, key string) bool {
	if !l.enabled || p.Limit <= 0 || p.Window <= 0 {
		return true
	}

	id := p.Name + "|" + key
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.entries[id]
	if !ok || now.Sub(w.start) >= p.Window {
		w = &window{start: now}
		l.entries[id] = w
	}
	w.lastSeen = now

	if w.count >= p.Limit {
		l.log.Debug("rate limit exceeded",
			zap.String("policy", p.Name),
			zap.String("key", key),
			zap.Time("window_start", w.start))
		return false
	}
	w.count++
	return true
}

// Sweep drops counters unused for longer than idle and returns how many went.
func (l *Limiter) Sweep(idle time.Duration) int {
	cutoff := l.now().Add(-idle)

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for id, e := range l.entries {
		if e.lastSeen.Before(cutoff) {
			delete(l.entries, id)
			removed++
		}
	}
	return removed
}

// Len is the number of live counters.
func (l *Limiter) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}
