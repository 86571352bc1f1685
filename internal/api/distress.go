package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/farmwatch/farmwatch/pkg/distress"
)

// handleRankFarmers returns the distressed-farmer ranking, filtered and
// ordered by query parameters.
func (h *Handler) handleRankFarmers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := distress.RankRequest{
		ProductionType: q.Get("production_type"),
		Region:         q.Get("region"),
		District:       q.Get("district"),
		Ordering:       q.Get("ordering"),
	}
	if v := q.Get("min_distress_score"); v != "" {
		score, err := strconv.ParseFloat(v, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid min_distress_score: "+v)
			return
		}
		req.MinDistressScore = score
	}
	if v := q.Get("min_capacity"); v != "" {
		capacity, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid min_capacity: "+v)
			return
		}
		req.MinCapacity = capacity
	}
	if v := q.Get("has_available_stock"); v == "true" || v == "1" {
		req.HasAvailableStock = true
	}
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit: "+v)
			return
		}
		req.Limit = limit
	}

	result, err := h.svc.RankFarmers(r.Context(), req)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "rank farmers: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleFarmDistress returns the full assessment for one farm. Recent
// assessments are served from cache unless refresh=true.
func (h *Handler) handleFarmDistress(w http.ResponseWriter, r *http.Request) {
	farmID := r.PathValue("farmID")
	refresh := r.URL.Query().Get("refresh") == "true"

	if !refresh {
		if cached := h.cache.Get(farmID); cached != nil {
			writeJSON(w, http.StatusOK, cached)
			return
		}
	}

	assessment, err := h.svc.AssessFarm(r.Context(), farmID)
	if err != nil {
		if errors.Is(err, distress.ErrFarmNotFound) {
			writeError(w, http.StatusNotFound, "farm not found: "+farmID)
			return
		}
		writeError(w, http.StatusInternalServerError, "assess farm: "+err.Error())
		return
	}

	h.cache.Put(farmID, assessment)
	writeJSON(w, http.StatusOK, assessment)
}

// handleDistressHistory returns the farm's calculation history for trend
// charts, newest first.
func (h *Handler) handleDistressHistory(w http.ResponseWriter, r *http.Request) {
	farmID := r.PathValue("farmID")

	days := 0
	if v := r.URL.Query().Get("days"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, "invalid days: "+v)
			return
		}
		days = parsed
	}

	entries, err := h.svc.TrendHistory(r.Context(), farmID, days)
	if err != nil {
		if errors.Is(err, distress.ErrFarmNotFound) {
			writeError(w, http.StatusNotFound, "farm not found: "+farmID)
			return
		}
		writeError(w, http.StatusInternalServerError, "distress history: "+err.Error())
		return
	}
	if entries == nil {
		entries = []distress.HistoryEntry{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"farm_id": farmID,
		"count":   len(entries),
		"history": entries,
	})
}

// handleRecommendations returns the allocation preview for one order.
func (h *Handler) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	orderID := r.PathValue("orderID")

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit: "+v)
			return
		}
		limit = parsed
	}

	result, err := h.svc.RecommendAllocations(r.Context(), orderID, limit)
	if err != nil {
		if errors.Is(err, distress.ErrOrderNotFound) {
			writeError(w, http.StatusNotFound, "order not found: "+orderID)
			return
		}
		writeError(w, http.StatusInternalServerError, "recommend allocations: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleSummary returns the distress rollup, optionally filtered to one
// region.
func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.svc.DistressSummary(r.Context(), r.URL.Query().Get("region"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "distress summary: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// handleRecalculate runs a full recalculation pass synchronously and
// returns the run report.
func (h *Handler) handleRecalculate(w http.ResponseWriter, r *http.Request) {
	if h.runner == nil {
		writeError(w, http.StatusServiceUnavailable, "recalculation not configured")
		return
	}

	report, err := h.runner.RunDaily(r.Context(), distress.CalculatedByAPI)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "recalculate: "+err.Error())
		return
	}

	// Cached assessments predate the new scores.
	h.cache.Flush()
	writeJSON(w, http.StatusOK, report)
}
