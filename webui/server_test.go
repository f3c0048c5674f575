package webui

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"vram_backend/core"
)

func testServerConfig() core.Config {
	cfg := *core.DefaultConfig()
	cfg.Port = 0
	return cfg
}

func TestServerRouting(t *testing.T) {
	server := NewServer(testServerConfig(), nil)
	handler := server.Handler()

	t.Run("estimate endpoint wired", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/estimate",
			strings.NewReader(`{"height":768,"width":768,"prompt_length":77,"optimization":true}`))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}

		var body map[string]interface{}
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("response is not JSON: %v", err)
		}
		if body["predicted_vram_gb"] != 2.82 {
			t.Errorf("expected 2.82 GB, got %v", body["predicted_vram_gb"])
		}
	})

	t.Run("health endpoint wired", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})

	t.Run("frontend served at root", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
			t.Errorf("expected html at root, got %q", ct)
		}
	})

	t.Run("request id header added", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Header().Get(RequestIDHeader) == "" {
			t.Error("expected request ID header from logging middleware")
		}
	})
}

func TestServerRateLimitOnlyAppliesToAPI(t *testing.T) {
	cfg := testServerConfig()
	cfg.RateLimitEnabled = true
	cfg.RateLimitPerMinute = 1

	server := NewServer(cfg, nil)
	handler := server.Handler()

	estimate := func() int {
		req := httptest.NewRequest(http.MethodPost, "/api/estimate",
			strings.NewReader(`{"height":512,"width":512,"prompt_length":77,"optimization":true}`))
		req.RemoteAddr = "10.0.0.1:5000"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := estimate(); code != http.StatusOK {
		t.Fatalf("first API call should pass, got %d", code)
	}
	if code := estimate(); code != http.StatusTooManyRequests {
		t.Fatalf("second API call should be limited, got %d", code)
	}

	// Static assets are exempt from the limit
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:5000"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("static asset should not be rate limited, got %d", rec.Code)
	}
}

func TestServerCORSFromConfig(t *testing.T) {
	cfg := testServerConfig()
	cfg.AllowedOrigins = []string{"http://localhost:3000"}

	server := NewServer(cfg, nil)
	handler := server.Handler()

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("expected CORS header from config, got %q", got)
	}
}

func TestServerShutdownWithoutStart(t *testing.T) {
	server := NewServer(testServerConfig(), nil)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		t.Errorf("shutdown of unstarted server should succeed, got %v", err)
	}
}
