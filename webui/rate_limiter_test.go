package webui

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimiterAllow(t *testing.T) {
	t.Run("allows up to limit", func(t *testing.T) {
		limiter := NewRateLimiter(3, time.Minute)

		for i := 0; i < 3; i++ {
			if !limiter.Allow("10.0.0.1") {
				t.Fatalf("request %d should be allowed", i+1)
			}
		}
		if limiter.Allow("10.0.0.1") {
			t.Error("request over the limit should be denied")
		}
	})

	t.Run("ips tracked independently", func(t *testing.T) {
		limiter := NewRateLimiter(1, time.Minute)

		if !limiter.Allow("10.0.0.1") {
			t.Fatal("first IP should be allowed")
		}
		if !limiter.Allow("10.0.0.2") {
			t.Error("second IP should have its own window")
		}
	})

	t.Run("window expiry resets count", func(t *testing.T) {
		limiter := NewRateLimiter(1, 10*time.Millisecond)

		if !limiter.Allow("10.0.0.1") {
			t.Fatal("first request should be allowed")
		}
		if limiter.Allow("10.0.0.1") {
			t.Fatal("second request in window should be denied")
		}

		time.Sleep(15 * time.Millisecond)
		if !limiter.Allow("10.0.0.1") {
			t.Error("request after window expiry should be allowed")
		}
	})
}

func TestRateLimiterHandler(t *testing.T) {
	limiter := NewRateLimiter(1, time.Minute)
	handler := limiter.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/estimate", nil)
	req.RemoteAddr = "10.0.0.1:5000"

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("first request should pass, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request should be limited, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") != "60" {
		t.Errorf("expected Retry-After 60, got %q", rec.Header().Get("Retry-After"))
	}
}

func TestRateLimiterCleanup(t *testing.T) {
	limiter := NewRateLimiter(5, 10*time.Millisecond)

	limiter.Allow("10.0.0.1")
	limiter.Allow("10.0.0.2")
	if limiter.Count() != 2 {
		t.Fatalf("expected 2 tracked IPs, got %d", limiter.Count())
	}

	time.Sleep(15 * time.Millisecond)
	removed := limiter.Cleanup()
	if removed != 2 {
		t.Errorf("expected 2 entries removed, got %d", removed)
	}
	if limiter.Count() != 0 {
		t.Errorf("expected empty limiter after cleanup, got %d", limiter.Count())
	}
}

func TestFormatSeconds(t *testing.T) {
	tests := []struct {
		d        time.Duration
		expected string
	}{
		{time.Minute, "60"},
		{time.Second, "1"},
		{500 * time.Millisecond, "1"},
		{2 * time.Minute, "120"},
	}

	for _, tt := range tests {
		if got := formatSeconds(tt.d); got != tt.expected {
			t.Errorf("formatSeconds(%v) = %q, expected %q", tt.d, got, tt.expected)
		}
	}
}
