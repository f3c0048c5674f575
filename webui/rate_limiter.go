// Package webui provides the HTTP surface of the VRAM estimator service.
// This file contains the per-IP request rate limiter for the API.
package webui

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// RateLimiter caps the number of API requests per client IP within a
// fixed window. The estimator itself is cheap, so the limiter exists to
// keep a misbehaving client from drowning out the request log, not to
// protect compute.
//
// Thread safety is provided via sync.Mutex; entries for idle IPs are
// removed by the cleanup ticker.
type RateLimiter struct {
	mu       sync.Mutex
	counters map[string]*windowCounter
	limit    int
	window   time.Duration
}

// windowCounter tracks request counts for one IP in the current window.
type windowCounter struct {
	count       int
	windowStart time.Time
}

// NewRateLimiter creates a RateLimiter allowing limit requests per window
// for each client IP.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		counters: make(map[string]*windowCounter),
		limit:    limit,
		window:   window,
	}
}

// Allow records a request for the IP and reports whether it is within the
// limit.
func (r *RateLimiter) Allow(ip string) bool {
	now := time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	counter, exists := r.counters[ip]
	if !exists || now.Sub(counter.windowStart) >= r.window {
		r.counters[ip] = &windowCounter{count: 1, windowStart: now}
		return true
	}

	counter.count++
	return counter.count <= r.limit
}

// Handler wraps an http.Handler, answering 429 for clients over the limit.
func (r *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if !r.Allow(clientIP(req)) {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", formatSeconds(r.window))
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error":"Too many requests","details":"Rate limit exceeded, retry later."}`))
			return
		}

		next.ServeHTTP(w, req)
	})
}

// Cleanup removes counters whose window has expired.
// Returns the number of entries removed.
func (r *RateLimiter) Cleanup() int {
	now := time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for ip, counter := range r.counters {
		if now.Sub(counter.windowStart) >= r.window {
			delete(r.counters, ip)
			removed++
		}
	}
	return removed
}

// StartCleanupTicker runs Cleanup periodically until ctx is cancelled.
func (r *RateLimiter) StartCleanupTicker(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.Cleanup()
			}
		}
	}()
}

// Count returns the number of tracked client IPs.
func (r *RateLimiter) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.counters)
}

// formatSeconds renders a duration as whole seconds for Retry-After.
func formatSeconds(d time.Duration) string {
	secs := int(d / time.Second)
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}
