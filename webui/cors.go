// Package webui provides the HTTP surface of the VRAM estimator service.
// This file contains the CORS middleware for cross-origin frontend
// deployments (the embedded frontend itself is same-origin and needs none
// of this).
package webui

import "net/http"

// CORSMiddleware applies an origin allow-list to API responses and
// answers preflight requests.
//
// An empty allow-list disables CORS entirely: no headers are added and
// preflights fall through to the next handler. The wildcard entry "*"
// allows any origin.
type CORSMiddleware struct {
	allowedOrigins map[string]bool
	allowAny       bool
}

// NewCORSMiddleware creates a CORSMiddleware for the given origins.
func NewCORSMiddleware(origins []string) *CORSMiddleware {
	allowed := make(map[string]bool, len(origins))
	allowAny := false
	for _, origin := range origins {
		if origin == "*" {
			allowAny = true
			continue
		}
		allowed[origin] = true
	}

	return &CORSMiddleware{
		allowedOrigins: allowed,
		allowAny:       allowAny,
	}
}

// Enabled reports whether any origins are configured.
func (m *CORSMiddleware) Enabled() bool {
	return m.allowAny || len(m.allowedOrigins) > 0
}

// Handler wraps an http.Handler with CORS header handling.
func (m *CORSMiddleware) Handler(next http.Handler) http.Handler {
	if !m.Enabled() {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && m.originAllowed(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")

			if r.Method == http.MethodOptions {
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
				w.Header().Set("Access-Control-Max-Age", "600")
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

// originAllowed checks an Origin header value against the allow-list.
func (m *CORSMiddleware) originAllowed(origin string) bool {
	return m.allowAny || m.allowedOrigins[origin]
}
