// Package ratelimit guards the login endpoint with a per-(client, email)
// sliding window and lockout. State is process-local and best-effort; the
// background cleanup sweeps keys that have gone idle.
package ratelimit

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Config bounds login attempts per key within a rolling window.
type Config struct {
	Window        time.Duration // rolling window length
	MaxAttempts   int           // attempts allowed inside the window
	BlockDuration time.Duration // lockout once the window overflows
}

// DefaultConfig mirrors the production settings: 5 attempts per minute,
// 5 minute lockout.
func DefaultConfig() Config {
	return Config{
		Window:        1 * time.Minute,
		MaxAttempts:   5,
		BlockDuration: 5 * time.Minute,
	}
}

type record struct {
	timestamps []time.Time
	blockUntil time.Time
}

// LoginLimiter tracks login attempts keyed by (client address, normalized
// email). A single lock is enough at expected contention.
type LoginLimiter struct {
	mu      sync.Mutex
	config  Config
	records map[string]*record
	now     func() time.Time
}

func NewLoginLimiter(config Config) *LoginLimiter {
	return &LoginLimiter{
		config:  config,
		records: make(map[string]*record),
		now:     time.Now,
	}
}

// Key builds the limiter key. Email is normalized so case variants share a
// window; an unparsable body degrades to "unknown" rather than bypassing
// the limiter.
func Key(clientIP, email string) string {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		email = "unknown"
	}
	return fmt.Sprintf("%s:%s", clientIP, email)
}

// Allow evaluates one login attempt. When the attempt is rejected it returns
// allowed=false and the Retry-After duration. A rejected call during an
// active lockout is not recorded as an attempt.
func (l *LoginLimiter) Allow(key string) (allowed bool, retryAfter time.Duration) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.records[key]
	if !ok {
		rec = &record{}
		l.records[key] = rec
	}

	if rec.blockUntil.After(now) {
		return false, rec.blockUntil.Sub(now)
	}

	// Drop timestamps outside the rolling window, then count this attempt.
	recent := rec.timestamps[:0]
	for _, ts := range rec.timestamps {
		if now.Sub(ts) < l.config.Window {
			recent = append(recent, ts)
		}
	}
	recent = append(recent, now)

	// Lock on the attempt that exceeds the maximum within the window.
	if len(recent) > l.config.MaxAttempts {
		rec.timestamps = nil
		rec.blockUntil = now.Add(l.config.BlockDuration)
		return false, l.config.BlockDuration
	}

	rec.timestamps = recent
	rec.blockUntil = time.Time{}
	return true, 0
}

// Sweep drops records that are neither locked nor have attempts inside the
// window, bounding memory for long-running processes. Returns the number of
// keys removed.
func (l *LoginLimiter) Sweep() int {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for key, rec := range l.records {
		if rec.blockUntil.After(now) {
			continue
		}
		live := false
		for _, ts := range rec.timestamps {
			if now.Sub(ts) < l.config.Window {
				live = true
				break
			}
		}
		if !live {
			delete(l.records, key)
			removed++
		}
	}
	return removed
}

// Size returns the number of tracked keys.
func (l *LoginLimiter) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}
