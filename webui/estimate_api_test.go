package webui

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func doRequest(t *testing.T, handler http.HandlerFunc, method, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %v (%q)", err, rec.Body.String())
	}
	return body
}

func TestHandleEstimate(t *testing.T) {
	api := NewEstimateAPI()

	t.Run("valid request returns breakdown", func(t *testing.T) {
		rec := doRequest(t, api.HandleEstimate, http.MethodPost,
			`{"height":512,"width":512,"prompt_length":77,"optimization":true}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}

		body := decodeResponse(t, rec)
		if body["predicted_vram_gb"] != 2.71 {
			t.Errorf("expected predicted_vram_gb 2.71, got %v", body["predicted_vram_gb"])
		}
		if body["attention_mode"] != "Optimized (Linear Scaling)" {
			t.Errorf("unexpected attention_mode %v", body["attention_mode"])
		}
		if body["fixed_cost_gb"] != 2.63 {
			t.Errorf("expected fixed_cost_gb 2.63, got %v", body["fixed_cost_gb"])
		}
		if body["spatial_cost_gb"] != 0.08 {
			t.Errorf("expected spatial_cost_gb 0.08, got %v", body["spatial_cost_gb"])
		}
	})

	t.Run("standard attention reported", func(t *testing.T) {
		rec := doRequest(t, api.HandleEstimate, http.MethodPost,
			`{"height":512,"width":512,"prompt_length":77,"optimization":false}`)

		body := decodeResponse(t, rec)
		if body["attention_mode"] != "Standard" {
			t.Errorf("unexpected attention_mode %v", body["attention_mode"])
		}
	})

	t.Run("non-positive dimensions", func(t *testing.T) {
		rec := doRequest(t, api.HandleEstimate, http.MethodPost,
			`{"height":0,"width":512,"prompt_length":10,"optimization":true}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		body := decodeResponse(t, rec)
		if body["error"] != "Height and width must be positive numbers." {
			t.Errorf("unexpected error message %v", body["error"])
		}
	})

	t.Run("dimensions not multiple of 8", func(t *testing.T) {
		rec := doRequest(t, api.HandleEstimate, http.MethodPost,
			`{"height":513,"width":512,"prompt_length":10,"optimization":true}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		body := decodeResponse(t, rec)
		if body["error"] != "Input dimensions must be multiples of 8." {
			t.Errorf("unexpected error message %v", body["error"])
		}
		if body["details"] != "Please use dimensions divisible by 8 (e.g., 512, 768, 1024)." {
			t.Errorf("unexpected details %v", body["details"])
		}
	})

	t.Run("prompt length out of range", func(t *testing.T) {
		rec := doRequest(t, api.HandleEstimate, http.MethodPost,
			`{"height":512,"width":512,"prompt_length":78,"optimization":true}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		body := decodeResponse(t, rec)
		if body["error"] != "Prompt length must be between 1 and 77 tokens." {
			t.Errorf("unexpected error message %v", body["error"])
		}
	})

	t.Run("malformed JSON", func(t *testing.T) {
		rec := doRequest(t, api.HandleEstimate, http.MethodPost, `{"height":`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		body := decodeResponse(t, rec)
		if body["error"] != "Invalid request body" {
			t.Errorf("unexpected error message %v", body["error"])
		}
	})

	t.Run("unknown field rejected", func(t *testing.T) {
		rec := doRequest(t, api.HandleEstimate, http.MethodPost,
			`{"height":512,"width":512,"prompt_length":10,"optimization":true,"batch":4}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("GET not allowed", func(t *testing.T) {
		rec := doRequest(t, api.HandleEstimate, http.MethodGet, "")

		if rec.Code != http.StatusMethodNotAllowed {
			t.Fatalf("expected 405, got %d", rec.Code)
		}
	})
}

func TestHandleTokens(t *testing.T) {
	api := NewEstimateAPI()

	t.Run("short prompt", func(t *testing.T) {
		rec := doRequest(t, api.HandleTokens, http.MethodPost, `{"prompt":"a red fox"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		body := decodeResponse(t, rec)
		if body["estimated_tokens"] != float64(3) {
			t.Errorf("expected 3 tokens, got %v", body["estimated_tokens"])
		}
		if body["clamped"] != false {
			t.Errorf("expected clamped=false, got %v", body["clamped"])
		}
	})

	t.Run("long prompt clamps to 77", func(t *testing.T) {
		long := strings.Repeat("word ", 200)
		payload, _ := json.Marshal(map[string]string{"prompt": long})
		rec := doRequest(t, api.HandleTokens, http.MethodPost, string(payload))

		body := decodeResponse(t, rec)
		if body["estimated_tokens"] != float64(77) {
			t.Errorf("expected 77 tokens, got %v", body["estimated_tokens"])
		}
		if body["clamped"] != true {
			t.Errorf("expected clamped=true, got %v", body["clamped"])
		}
	})

	t.Run("GET not allowed", func(t *testing.T) {
		rec := doRequest(t, api.HandleTokens, http.MethodGet, "")

		if rec.Code != http.StatusMethodNotAllowed {
			t.Fatalf("expected 405, got %d", rec.Code)
		}
	})
}

func TestHandleHealth(t *testing.T) {
	api := NewEstimateAPI()

	t.Run("reports healthy", func(t *testing.T) {
		rec := doRequest(t, api.HandleHealth, http.MethodGet, "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		body := decodeResponse(t, rec)
		if body["status"] != "healthy" {
			t.Errorf("expected healthy status, got %v", body["status"])
		}
		if body["service"] != ServiceName {
			t.Errorf("expected service %q, got %v", ServiceName, body["service"])
		}
	})

	t.Run("POST not allowed", func(t *testing.T) {
		rec := doRequest(t, api.HandleHealth, http.MethodPost, "")

		if rec.Code != http.StatusMethodNotAllowed {
			t.Fatalf("expected 405, got %d", rec.Code)
		}
	})
}

func TestRegisterRoutes(t *testing.T) {
	api := NewEstimateAPI()
	mux := http.NewServeMux()
	api.RegisterRoutes(mux)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected routed health check to return 200, got %d", rec.Code)
	}
}
