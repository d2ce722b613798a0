package service

import (
	"strings"
	"sync"
	"time"
)

// RateLimiter limita la frecuencia de solicitudes por clave.
type RateLimiter interface {
	Allow(key string) bool
	// Refund devuelve al cupo la última solicitud contada para key.
	Refund(key string)
}

// RateLimit describe un cupo de solicitudes por ventana.
type RateLimit struct {
	Name   string
	Window time.Duration
	Max    int
}

// Cupos por grupo de rutas.
var (
	AuthRateLimit  = RateLimit{Name: "auth", Window: 15 * time.Minute, Max: 5}
	OTPRateLimit   = RateLimit{Name: "otp", Window: 10 * time.Minute, Max: 3}
	ResetRateLimit = RateLimit{Name: "reset", Window: time.Hour, Max: 3}
)

type memoryRateLimiter struct {
	mu        sync.Mutex
	window    time.Duration
	max       int
	hits      map[string][]time.Time
	now       func() time.Time
	lastSweep time.Time
}

// NewMemoryRateLimiter crea un rate limiter en memoria con ventana deslizante.
func NewMemoryRateLimiter(window time.Duration, max int) RateLimiter {
	return newMemoryRateLimiter(window, max, nil)
}

func newMemoryRateLimiter(window time.Duration, max int, now func() time.Time) *memoryRateLimiter {
	if max <= 0 {
		max = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &memoryRateLimiter{
		window: window,
		max:    max,
		hits:   make(map[string][]time.Time),
		now:    now,
	}
}

func (l *memoryRateLimiter) Allow(key string) bool {
	key = strings.ToLower(strings.TrimSpace(key))
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	cutoff := now.Add(-l.window)
	if now.Sub(l.lastSweep) >= l.window {
		l.sweepLocked(cutoff)
		l.lastSweep = now
	}

	kept := liveHits(l.hits[key], cutoff)
	if len(kept) >= l.max {
		l.hits[key] = kept
		return false
	}
	l.hits[key] = append(kept, now)
	return true
}

func (l *memoryRateLimiter) Refund(key string) {
	key = strings.ToLower(strings.TrimSpace(key))
	l.mu.Lock()
	defer l.mu.Unlock()
	entries := l.hits[key]
	if len(entries) <= 1 {
		delete(l.hits, key)
		return
	}
	l.hits[key] = entries[:len(entries)-1]
}

// sweepLocked requiere l.mu tomado; descarta claves sin solicitudes vivas.
func (l *memoryRateLimiter) sweepLocked(cutoff time.Time) {
	for key, entries := range l.hits {
		kept := liveHits(entries, cutoff)
		if len(kept) == 0 {
			delete(l.hits, key)
			continue
		}
		l.hits[key] = kept
	}
}

func liveHits(entries []time.Time, cutoff time.Time) []time.Time {
	kept := entries[:0]
	for _, ts := range entries {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	return kept
}
