package reputation

import (
	"context"
	"fmt"
	"time"

	"github.com/everfaz/ses-compliance/internal/domain"
	"github.com/everfaz/ses-compliance/internal/pkg/logger"
)

const (
	// softBounceWindow is the trailing window for the soft-bounce rule.
	softBounceWindow = 7 * 24 * time.Hour
	// softBounceLimit is the soft-bounce count (within the window, including
	// the triggering event) at which an address is suppressed.
	softBounceLimit = 3
	// statsWindowDays is the trailing window for reputation rates.
	statsWindowDays = 30
)

// BounceEvent is a provider bounce notification for a single recipient.
type BounceEvent struct {
	Email          string
	BounceType     domain.BounceType
	BounceSubType  string
	Timestamp      time.Time
	DiagnosticCode string
}

// ComplaintEvent is a provider spam-complaint notification for a single
// recipient.
type ComplaintEvent struct {
	Email         string
	ComplaintType domain.ComplaintType
	Timestamp     time.Time
}

// DeliveryEvent is a provider delivery confirmation for a single recipient.
type DeliveryEvent struct {
	Email     string
	Timestamp time.Time
	MessageID string
}

// Service implements the reputation policy.
type Service struct {
	events     EventRepository
	metrics    MetricsRepository
	suppressor Suppressor
	statuses   StatusSetter
	alert      AlertFunc
	now        func() time.Time
}

// NewService creates the reputation policy service. statuses and alert may be
// nil; a nil alert logs threshold crossings as warnings.
func NewService(events EventRepository, metrics MetricsRepository, suppressor Suppressor, statuses StatusSetter, alert AlertFunc) *Service {
	s := &Service{
		events:     events,
		metrics:    metrics,
		suppressor: suppressor,
		statuses:   statuses,
		alert:      alert,
		now:        time.Now,
	}
	if s.alert == nil {
		s.alert = logAlert
	}
	return s
}

func logAlert(stats domain.ReputationStats) {
	logger.Warn("reputation thresholds exceeded",
		"bounce_rate", fmt.Sprintf("%.2f", stats.BounceRate),
		"complaint_rate", fmt.Sprintf("%.3f", stats.ComplaintRate),
		"total_sent", stats.TotalSent)
}

// HandleBounce processes one bounce notification. The event append error
// propagates; suppression, metrics and status side effects are best-effort.
func (s *Service) HandleBounce(ctx context.Context, ev BounceEvent) error {
	email := domain.NormalizeEmail(ev.Email)
	logger.Info("processing bounce",
		"email", email, "bounce_type", string(ev.BounceType), "sub_type", ev.BounceSubType)

	if err := s.events.Record(ctx, &domain.EmailEvent{
		Email:          email,
		Type:           domain.EventBounce,
		BounceType:     ev.BounceType,
		BounceSubType:  ev.BounceSubType,
		DiagnosticCode: ev.DiagnosticCode,
		CreatedAt:      ev.Timestamp,
	}); err != nil {
		return fmt.Errorf("recording bounce event: %w", err)
	}

	switch ev.BounceType {
	case domain.BounceHard:
		reason := fmt.Sprintf("hard bounce: %s", ev.BounceSubType)
		if err := s.suppressor.Suppress(ctx, email, domain.SuppressionBounce, reason, true, nil); err != nil {
			logger.Error("suppressing hard bounce failed", "email", email, "error", err)
		}
	default:
		count, err := s.events.CountBouncesSince(ctx, email, domain.BounceSoft, s.now().Add(-softBounceWindow))
		if err != nil {
			logger.Error("counting soft bounces failed", "email", email, "error", err)
		} else if count >= softBounceLimit {
			reason := fmt.Sprintf("soft bounce: %s", ev.BounceSubType)
			if err := s.suppressor.Suppress(ctx, email, domain.SuppressionBounce, reason, false, nil); err != nil {
				logger.Error("suppressing soft bounce failed", "email", email, "error", err)
			}
		}
	}

	s.setStatus(ctx, email, domain.ConsentBounced)

	if err := s.metrics.AddBounce(ctx, s.today(), ev.BounceType == domain.BounceHard); err != nil {
		logger.Error("updating bounce metrics failed", "error", err)
	}
	return nil
}

// HandleComplaint processes one complaint notification. Complaints always
// suppress permanently; a rising complaint rate also fires the alert hook.
func (s *Service) HandleComplaint(ctx context.Context, ev ComplaintEvent) error {
	email := domain.NormalizeEmail(ev.Email)
	logger.Info("processing complaint", "email", email, "complaint_type", string(ev.ComplaintType))

	if err := s.events.Record(ctx, &domain.EmailEvent{
		Email:         email,
		Type:          domain.EventComplaint,
		ComplaintType: ev.ComplaintType,
		CreatedAt:     ev.Timestamp,
	}); err != nil {
		return fmt.Errorf("recording complaint event: %w", err)
	}

	reason := fmt.Sprintf("complaint: %s", ev.ComplaintType)
	if err := s.suppressor.Suppress(ctx, email, domain.SuppressionComplaint, reason, true, nil); err != nil {
		logger.Error("suppressing complaint failed", "email", email, "error", err)
	}

	s.setStatus(ctx, email, domain.ConsentComplained)

	if err := s.metrics.AddComplaint(ctx, s.today()); err != nil {
		logger.Error("updating complaint metrics failed", "error", err)
	}

	// Observability only: threshold crossings never block ingestion.
	if stats, err := s.Stats(ctx); err != nil {
		logger.Error("computing reputation stats failed", "error", err)
	} else if stats.ExceedsThresholds() {
		s.alert(stats)
	}
	return nil
}

// HandleDelivery records a delivery confirmation.
func (s *Service) HandleDelivery(ctx context.Context, ev DeliveryEvent) error {
	email := domain.NormalizeEmail(ev.Email)

	if err := s.events.Record(ctx, &domain.EmailEvent{
		Email:     email,
		Type:      domain.EventDelivery,
		MessageID: ev.MessageID,
		CreatedAt: ev.Timestamp,
	}); err != nil {
		return fmt.Errorf("recording delivery event: %w", err)
	}

	if err := s.metrics.AddDelivery(ctx, s.today()); err != nil {
		logger.Error("updating delivery metrics failed", "error", err)
	}
	return nil
}

// RecordSend appends a send event and bumps the daily sent counter. Called by
// the orchestrator after a successful dispatch.
func (s *Service) RecordSend(ctx context.Context, email, templateName, messageID string) error {
	email = domain.NormalizeEmail(email)

	if err := s.events.Record(ctx, &domain.EmailEvent{
		Email:        email,
		Type:         domain.EventSend,
		TemplateName: templateName,
		MessageID:    messageID,
		CreatedAt:    s.now(),
	}); err != nil {
		return fmt.Errorf("recording send event: %w", err)
	}

	if err := s.metrics.AddSent(ctx, s.today(), 1); err != nil {
		logger.Error("updating sent metrics failed", "error", err)
	}
	return nil
}

// Stats computes the trailing-30-day sending rates. Rates are percentages:
// 1000 sends with 60 bounces yields BounceRate 6.0.
func (s *Service) Stats(ctx context.Context) (domain.ReputationStats, error) {
	agg, err := s.events.AggregateSince(ctx, s.now().AddDate(0, 0, -statsWindowDays))
	if err != nil {
		return domain.ReputationStats{}, fmt.Errorf("aggregating events: %w", err)
	}

	stats := domain.ReputationStats{
		TotalSent:       agg.TotalSent,
		TotalBounces:    agg.TotalBounces,
		TotalComplaints: agg.TotalComplaints,
		Period:          fmt.Sprintf("%d days", statsWindowDays),
	}
	if agg.TotalSent > 0 {
		stats.BounceRate = float64(agg.TotalBounces) / float64(agg.TotalSent) * 100
		stats.ComplaintRate = float64(agg.TotalComplaints) / float64(agg.TotalSent) * 100
	}
	return stats, nil
}

func (s *Service) setStatus(ctx context.Context, email string, status domain.ConsentStatus) {
	if s.statuses == nil {
		return
	}
	if err := s.statuses.SetStatus(ctx, email, status); err != nil {
		logger.Error("denormalizing consent status failed",
			"email", email, "status", string(status), "error", err)
	}
}

func (s *Service) today() time.Time {
	return s.now().UTC().Truncate(24 * time.Hour)
}
