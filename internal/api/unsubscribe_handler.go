package api

import (
	"encoding/json"
	"net/http"

	"github.com/everfaz/ses-compliance/internal/pkg/logger"
)

// HandleUnsubscribe removes an address from all future sends. Repeating the
// request for an already unsubscribed address succeeds all the same.
//
//	POST /api/unsubscribe
func (h *Handlers) HandleUnsubscribe(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	h.unsubscribe(w, r, body.Email)
}

// HandleUnsubscribeLink serves the one-click link embedded in outbound email.
//
//	GET /unsubscribe?email=...
func (h *Handlers) HandleUnsubscribeLink(w http.ResponseWriter, r *http.Request) {
	h.unsubscribe(w, r, r.URL.Query().Get("email"))
}

func (h *Handlers) unsubscribe(w http.ResponseWriter, r *http.Request, email string) {
	if email == "" {
		respondError(w, http.StatusBadRequest, "email is required")
		return
	}

	if err := h.contacts.Unsubscribe(r.Context(), email); err != nil {
		logger.Error("unsubscribe failed", "email", email, "error", err.Error())
		respondError(w, http.StatusBadRequest, "could not process unsubscribe")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "You have been unsubscribed and will not receive further emails.",
	})
}
