// Package webui provides the HTTP surface of the VRAM estimator service.
// This file contains the JSON API handlers for the estimate, token, and
// health endpoints.
package webui

import (
	"encoding/json"
	"errors"
	"net/http"

	"vram_backend/estimator"
)

// ServiceName is reported by the health endpoint.
const ServiceName = "VRAM Estimator API"

// maxRequestBodyBytes caps API request bodies. Estimate requests are a
// handful of scalars; anything bigger is abuse.
const maxRequestBodyBytes = 4 * 1024

// EstimateAPI provides the REST handlers around the estimator core.
// The core is pure and stateless, so the API holds no per-request state
// and is safe for concurrent use.
//
// Endpoints:
//   - POST /api/estimate - peak VRAM estimate with cost breakdown
//   - POST /api/tokens   - heuristic prompt token count for the frontend
//   - GET  /api/health   - unconditional liveness check
type EstimateAPI struct{}

// NewEstimateAPI creates the API handler set.
func NewEstimateAPI() *EstimateAPI {
	return &EstimateAPI{}
}

// ErrorResponse is the JSON body for client errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// HealthResponse is the JSON body for /api/health.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// TokensRequest is the JSON body for /api/tokens.
type TokensRequest struct {
	Prompt string `json:"prompt"`
}

// TokensResponse is the JSON body for a successful /api/tokens call.
type TokensResponse struct {
	EstimatedTokens int  `json:"estimated_tokens"`
	Clamped         bool `json:"clamped"`
}

// HandleEstimate handles POST /api/estimate requests.
//
// A validation failure returns 400 with the estimator's fixed message and
// optional details; a valid request returns the EstimateResult as-is.
func (api *EstimateAPI) HandleEstimate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		api.writeError(w, http.StatusMethodNotAllowed, "method not allowed", "")
		return
	}

	var req estimator.EstimateRequest
	if !api.decodeBody(w, r, &req) {
		return
	}

	result, err := estimator.Estimate(req)
	if err != nil {
		var verr *estimator.ValidationError
		if errors.As(err, &verr) {
			api.writeError(w, http.StatusBadRequest, verr.Message, verr.Details)
			return
		}
		// The estimator only produces validation errors; anything else
		// would be a programming error.
		api.writeError(w, http.StatusInternalServerError, "internal error", "")
		return
	}

	api.writeJSON(w, http.StatusOK, result)
}

// HandleTokens handles POST /api/tokens requests.
func (api *EstimateAPI) HandleTokens(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		api.writeError(w, http.StatusMethodNotAllowed, "method not allowed", "")
		return
	}

	var req TokensRequest
	if !api.decodeBody(w, r, &req) {
		return
	}

	tokens, clamped := estimator.EstimateTokensClamped(req.Prompt)
	api.writeJSON(w, http.StatusOK, TokensResponse{
		EstimatedTokens: tokens,
		Clamped:         clamped,
	})
}

// HandleHealth handles GET /api/health requests.
// It reports healthy unconditionally; the service has no dependencies to
// check.
func (api *EstimateAPI) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		api.writeError(w, http.StatusMethodNotAllowed, "method not allowed", "")
		return
	}

	api.writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "healthy",
		Service: ServiceName,
	})
}

// RegisterRoutes registers all API routes on the given ServeMux.
func (api *EstimateAPI) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/estimate", api.HandleEstimate)
	mux.HandleFunc("/api/tokens", api.HandleTokens)
	mux.HandleFunc("/api/health", api.HandleHealth)
}

// decodeBody decodes a JSON request body into dst. On failure it writes a
// 400 response and returns false.
func (api *EstimateAPI) decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		api.writeError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return false
	}
	return true
}

// writeJSON writes a JSON response with the given status code.
func (api *EstimateAPI) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Best effort - headers already written
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// writeError writes an error response in the wire format the frontend
// expects: {"error": ..., "details": ...}.
func (api *EstimateAPI) writeError(w http.ResponseWriter, status int, message, details string) {
	api.writeJSON(w, status, ErrorResponse{Error: message, Details: details})
}
