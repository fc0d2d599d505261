// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"fmt"
	"sync"
	"time"
)

// Default failed-login limits: an IP that fails this many times inside the
// window is blocked until the window elapses.
const (
	DefaultMaxFailures = 10
	DefaultWindow      = 15 * time.Minute
)

// RateLimitedError reports a blocked client and how long it must wait.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("too many failed login attempts, retry after %s", e.RetryAfter)
}

// RetryAfterSeconds rounds the wait up to whole seconds for the Retry-After
// header.
func (e *RateLimitedError) RetryAfterSeconds() int {
	secs := int((e.RetryAfter + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return secs
}

type failureRecord struct {
	count       int
	windowStart time.Time
}

// Limiter counts failed login attempts per key (client IP) inside a rolling
// window and blocks a key once the count reaches the threshold. State lives
// only in process memory: it is lost on restart and not shared across
// instances, which is fine for a single-instance admin panel.
type Limiter struct {
	mu       sync.Mutex
	failures map[string]*failureRecord

	maxFailures int
	window      time.Duration

	now func() time.Time // replaced in tests
}

// NewLimiter creates a limiter with the given threshold and window; zero
// values fall back to the defaults.
func NewLimiter(maxFailures int, window time.Duration) *Limiter {
	if maxFailures <= 0 {
		maxFailures = DefaultMaxFailures
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &Limiter{
		failures:    make(map[string]*failureRecord),
		maxFailures: maxFailures,
		window:      window,
		now:         time.Now,
	}
}

// Check reports whether key is currently blocked. It must run before any
// credential comparison so a blocked client learns nothing about validity.
// Returns a *RateLimitedError carrying the remaining wait, or nil.
func (l *Limiter) Check(key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.failures[key]
	if !ok {
		return nil
	}

	now := l.now()
	if now.Sub(rec.windowStart) >= l.window {
		delete(l.failures, key)
		return nil
	}
	if rec.count >= l.maxFailures {
		return &RateLimitedError{RetryAfter: rec.windowStart.Add(l.window).Sub(now)}
	}
	return nil
}

// RecordFailure counts one failed attempt against key. The window starts at
// the first failure and is not extended by later ones, so a block always
// lifts after at most one full window.
func (l *Limiter) RecordFailure(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	rec, ok := l.failures[key]
	if !ok || now.Sub(rec.windowStart) >= l.window {
		l.failures[key] = &failureRecord{count: 1, windowStart: now}
		return
	}
	rec.count++
}

// Reset clears the record for key immediately; called on successful login.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.failures, key)
}

// Prune drops expired records. Called periodically by the owner; the limiter
// also self-heals lazily in Check.
func (l *Limiter) Prune() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for key, rec := range l.failures {
		if now.Sub(rec.windowStart) >= l.window {
			delete(l.failures, key)
		}
	}
}
