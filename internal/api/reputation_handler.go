package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/everfaz/ses-compliance/internal/pkg/logger"
)

// HandleReputationStats reports trailing-window sending rates against the
// provider thresholds.
//
//	GET /api/reputation
func (h *Handlers) HandleReputationStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.reputation.Stats(r.Context())
	if err != nil {
		logger.Error("reputation stats failed", "error", err.Error())
		respondError(w, http.StatusInternalServerError, "failed to compute reputation stats")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"stats":             stats,
		"exceedsThresholds": stats.ExceedsThresholds(),
	})
}

// HandleDailyMetrics returns the per-day counter rows for the requested
// trailing window (default 30 days, max 90).
//
//	GET /api/metrics/daily?days=30
func (h *Handlers) HandleDailyMetrics(w http.ResponseWriter, r *http.Request) {
	days := 30
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			respondError(w, http.StatusBadRequest, "days must be a positive integer")
			return
		}
		days = n
	}
	if days > 90 {
		days = 90
	}

	to := time.Now().UTC().Truncate(24 * time.Hour)
	from := to.AddDate(0, 0, -(days - 1))

	rows, err := h.metrics.Range(r.Context(), from, to)
	if err != nil {
		logger.Error("daily metrics query failed", "error", err.Error())
		respondError(w, http.StatusInternalServerError, "failed to load metrics")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"days":    days,
		"metrics": rows,
	})
}
