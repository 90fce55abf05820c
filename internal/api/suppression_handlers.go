package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/everfaz/ses-compliance/internal/pkg/logger"
	"github.com/everfaz/ses-compliance/internal/service/suppression"
)

// HandleListSuppressions pages through the suppression list.
//
//	GET /api/suppressions?type=bounce&limit=50&offset=0
func (h *Handlers) HandleListSuppressions(w http.ResponseWriter, r *http.Request) {
	filter := suppression.ListFilter{
		Type:  r.URL.Query().Get("type"),
		Limit: 50,
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 1000 {
			respondError(w, http.StatusBadRequest, "limit must be between 1 and 1000")
			return
		}
		filter.Limit = n
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			respondError(w, http.StatusBadRequest, "offset must be non-negative")
			return
		}
		filter.Offset = n
	}

	entries, total, err := h.suppressions.List(r.Context(), filter)
	if err != nil {
		logger.Error("listing suppressions failed", "error", err.Error())
		respondError(w, http.StatusInternalServerError, "failed to list suppressions")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"suppressions": entries,
		"total":        total,
		"limit":        filter.Limit,
		"offset":       filter.Offset,
	})
}

// HandleCheckSuppression answers whether one address may receive mail. The
// answer fails closed: when the list is unreachable the address reports as
// suppressed.
//
//	POST /api/suppressions/check
func (h *Handlers) HandleCheckSuppression(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Email == "" {
		respondError(w, http.StatusBadRequest, "email is required")
		return
	}

	status := h.suppressions.Check(r.Context(), body.Email)
	respondJSON(w, http.StatusOK, status)
}
