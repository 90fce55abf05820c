package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/everfaz/ses-compliance/internal/domain"
	"github.com/everfaz/ses-compliance/internal/service/reputation"
	"github.com/everfaz/ses-compliance/internal/service/sending"
	"github.com/everfaz/ses-compliance/internal/service/suppression"
)

// ContactService is the slice of the consent service the contact endpoint
// needs.
type ContactService interface {
	AddContact(ctx context.Context, sub domain.ContactSubmission, ip, userAgent string) (*domain.Contact, error)
	Unsubscribe(ctx context.Context, email string) error
}

// SuppressionService exposes the suppression list to the admin endpoints.
type SuppressionService interface {
	Check(ctx context.Context, email string) domain.SuppressionStatus
	List(ctx context.Context, filter suppression.ListFilter) ([]domain.Suppression, int, error)
	Count(ctx context.Context) (int, error)
}

// ReputationService consumes provider feedback and reports sending health.
type ReputationService interface {
	HandleBounce(ctx context.Context, ev reputation.BounceEvent) error
	HandleComplaint(ctx context.Context, ev reputation.ComplaintEvent) error
	HandleDelivery(ctx context.Context, ev reputation.DeliveryEvent) error
	Stats(ctx context.Context) (domain.ReputationStats, error)
}

// Sender dispatches transactional mail triggered by site activity.
type Sender interface {
	SendContactConfirmation(ctx context.Context, sub domain.ContactSubmission) (*sending.Result, error)
}

// MetricsReader reads the per-day counter rows.
type MetricsReader interface {
	Range(ctx context.Context, from, to time.Time) ([]domain.DailyMetrics, error)
}

// Handlers carries the HTTP handlers and their dependencies.
type Handlers struct {
	contacts     ContactService
	suppressions SuppressionService
	reputation   ReputationService
	sender       Sender
	metrics      MetricsReader
	health       *HealthChecker
}

// NewHandlers creates the handler set.
func NewHandlers(contacts ContactService, suppressions SuppressionService, rep ReputationService, sender Sender, metrics MetricsReader) *Handlers {
	return &Handlers{
		contacts:     contacts,
		suppressions: suppressions,
		reputation:   rep,
		sender:       sender,
		metrics:      metrics,
	}
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}
