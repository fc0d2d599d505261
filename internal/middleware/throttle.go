// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync"

	"golang.org/x/time/rate"
)

// limiterCache is a generic rate limiter cache with double-check locking.
type limiterCache[K comparable] struct {
	limiters map[K]*rate.Limiter
	mu       sync.RWMutex
	rate     rate.Limit
	burst    int
}

func newLimiterCache[K comparable](rps float64, burst int) *limiterCache[K] {
	return &limiterCache[K]{
		limiters: make(map[K]*rate.Limiter),
		rate:     rate.Limit(rps),
		burst:    burst,
	}
}

// get returns the rate limiter for a specific key, creating one if needed.
func (lc *limiterCache[K]) get(key K) *rate.Limiter {
	lc.mu.RLock()
	limiter, exists := lc.limiters[key]
	lc.mu.RUnlock()

	if exists {
		return limiter
	}

	lc.mu.Lock()
	defer lc.mu.Unlock()

	// Double-check after acquiring write lock
	if limiter, exists = lc.limiters[key]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(lc.rate, lc.burst)
	lc.limiters[key] = limiter
	return limiter
}

// clearIfExceeds clears all entries if the cache exceeds maxSize.
func (lc *limiterCache[K]) clearIfExceeds(maxSize int) bool {
	lc.mu.Lock()
	defer lc.mu.Unlock()

	if len(lc.limiters) > maxSize {
		lc.limiters = make(map[K]*rate.Limiter)
		return true
	}
	return false
}

// maxLimiterEntries bounds the per-IP limiter map.
const maxLimiterEntries = 10000

// Throttle paces requests per client IP, independent of the failed-attempt
// lockout applied inside the auth service. It keeps a scripted client from
// hammering the login endpoint faster than rps requests per second.
type Throttle struct {
	cache      *limiterCache[string]
	retryAfter int
}

// NewThrottle creates an IP throttle. rps is requests per second, burst the
// number of requests allowed to arrive at once.
func NewThrottle(rps float64, burst int) *Throttle {
	retry := 1
	if rps > 0 && rps < 1 {
		retry = int(math.Ceil(1 / rps))
	}
	return &Throttle{
		cache:      newLimiterCache[string](rps, burst),
		retryAfter: retry,
	}
}

// Middleware returns the throttling middleware. Over-limit requests get a
// 429 JSON body with a Retry-After hint derived from the configured rate.
func (t *Throttle) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := ClientIP(r)
			if !t.cache.get(ip).Allow() {
				slog.Warn("request throttled", "ip", ip, "path", r.URL.Path)
				w.Header().Set("Retry-After", strconv.Itoa(t.retryAfter))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"success":false,"error":"Too many requests. Please slow down."}`))
				return
			}
			if t.cache.clearIfExceeds(maxLimiterEntries) {
				slog.Info("cleared IP throttle cache due to size")
			}
			next.ServeHTTP(w, r)
		})
	}
}
