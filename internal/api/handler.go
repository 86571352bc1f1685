// Package api implements the Farmwatch REST API: distressed-farmer
// ranking, per-farm assessment, order allocation recommendations, summary
// rollups, and the manual recalculation trigger.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/farmwatch/farmwatch/internal/task"
	"github.com/farmwatch/farmwatch/pkg/distress"
)

// Handler is the top-level API handler for the Farmwatch service.
type Handler struct {
	svc    *distress.Service
	runner *task.Runner
	cache  *AssessmentCache
}

// NewHandler creates a new API handler.
func NewHandler(svc *distress.Service, runner *task.Runner, cache *AssessmentCache) *Handler {
	if cache == nil {
		cache = NewAssessmentCacheFromEnv()
	}
	return &Handler{
		svc:    svc,
		runner: runner,
		cache:  cache,
	}
}

// RegisterRoutes registers all API routes on the given ServeMux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Read endpoints
	mux.HandleFunc("GET /api/v1/farmers/distressed", h.handleRankFarmers)
	mux.HandleFunc("GET /api/v1/farms/{farmID}/distress", h.handleFarmDistress)
	mux.HandleFunc("GET /api/v1/farms/{farmID}/distress/history", h.handleDistressHistory)
	mux.HandleFunc("GET /api/v1/orders/{orderID}/recommendations", h.handleRecommendations)
	mux.HandleFunc("GET /api/v1/distress/summary", h.handleSummary)

	// Write endpoints (auth-protected)
	mux.HandleFunc("POST /api/v1/distress/recalculate", h.handleRecalculate)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
