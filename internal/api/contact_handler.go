package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/everfaz/ses-compliance/internal/domain"
	"github.com/everfaz/ses-compliance/internal/pkg/logger"
	"github.com/everfaz/ses-compliance/internal/service/consent"
)

// HandleContact accepts a website contact-form submission, stores it, and
// sends the transactional confirmation. Confirmation delivery is best
// effort; a transport problem never fails the submission.
//
//	POST /api/contact
func (h *Handlers) HandleContact(w http.ResponseWriter, r *http.Request) {
	var sub domain.ContactSubmission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	contact, err := h.contacts.AddContact(r.Context(), sub, r.RemoteAddr, r.UserAgent())
	if err != nil {
		var verr *consent.ValidationError
		switch {
		case errors.As(err, &verr):
			respondJSON(w, http.StatusBadRequest, map[string]interface{}{
				"error":         verr.Error(),
				"missingFields": verr.Missing,
			})
		case errors.Is(err, consent.ErrSuppressed):
			respondError(w, http.StatusForbidden, "this email address cannot receive messages")
		default:
			logger.Error("contact submission failed", "error", err.Error())
			respondError(w, http.StatusInternalServerError, "failed to process submission")
		}
		return
	}

	confirmationSent := false
	if res, err := h.sender.SendContactConfirmation(r.Context(), sub); err != nil {
		logger.Error("confirmation email failed", "email", contact.Email, "error", err.Error())
	} else {
		confirmationSent = res.Success
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"success":          true,
		"contactId":        contact.ID,
		"confirmationSent": confirmationSent,
	})
}
