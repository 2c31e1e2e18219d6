// internal/app/system/ratelimit/ratelimit.go

// Package ratelimit provides sliding-window rate limiting for the login
// endpoint, keyed by client IP and by the submitted login identifier.
package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Limiter counts requests per key within a fixed window. Safe for
// concurrent use.
type Limiter struct {
	mu       sync.Mutex
	windows  map[string]*window
	limit    int
	duration time.Duration
	cleanup  time.Duration
}

type window struct {
	count     int
	expiresAt time.Time
}

// New creates a limiter allowing limit requests per key per duration.
func New(limit int, duration time.Duration) *Limiter {
	l := &Limiter{
		windows:  make(map[string]*window),
		limit:    limit,
		duration: duration,
		cleanup:  duration * 2,
	}
	go l.cleanupLoop()
	return l
}

// Allow reports whether a request from the given key should proceed.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	w, exists := l.windows[key]
	if !exists || now.After(w.expiresAt) {
		l.windows[key] = &window{count: 1, expiresAt: now.Add(l.duration)}
		return true
	}
	if w.count >= l.limit {
		return false
	}
	w.count++
	return true
}

// Reset clears the window for a key, e.g. after a successful login.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.windows, key)
}

// cleanupLoop periodically removes expired entries so the table stays
// bounded by recent traffic.
func (l *Limiter) cleanupLoop() {
	ticker := time.NewTicker(l.cleanup)
	defer ticker.Stop()

	for range ticker.C {
		l.mu.Lock()
		now := time.Now()
		for key, w := range l.windows {
			if now.After(w.expiresAt) {
				delete(l.windows, key)
			}
		}
		l.mu.Unlock()
	}
}

// ClientIP extracts the client IP from an HTTP request, preferring the
// proxy headers over RemoteAddr.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ip := strings.TrimSpace(strings.Split(xff, ",")[0])
		if ip != "" {
			return ip
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// LoginLimiter layers two limits over login attempts: per source IP
// against distributed guessing, and per login identifier against
// attacks targeting one account.
type LoginLimiter struct {
	ipLimiter         *Limiter
	identifierLimiter *Limiter
}

// NewLoginLimiter creates a limiter with the default login limits:
// 10 attempts per IP per minute, 5 attempts per identifier per 5 minutes.
func NewLoginLimiter() *LoginLimiter {
	return &LoginLimiter{
		ipLimiter:         New(10, time.Minute),
		identifierLimiter: New(5, 5*time.Minute),
	}
}

// Check reports whether a login attempt should be allowed, and if not,
// the message for the caller.
func (ll *LoginLimiter) Check(r *http.Request, identifier string) (bool, string) {
	if !ll.ipLimiter.Allow(ClientIP(r)) {
		return false, "too many login attempts; please wait a minute before trying again"
	}
	if identifier != "" {
		key := strings.ToLower(strings.TrimSpace(identifier))
		if !ll.identifierLimiter.Allow(key) {
			return false, "too many login attempts for this account; please wait a few minutes"
		}
	}
	return true, ""
}

// ResetIdentifier clears the identifier limit after a successful login.
func (ll *LoginLimiter) ResetIdentifier(identifier string) {
	if identifier != "" {
		ll.identifierLimiter.Reset(strings.ToLower(strings.TrimSpace(identifier)))
	}
}
