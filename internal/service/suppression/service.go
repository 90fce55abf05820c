package suppression

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/everfaz/ses-compliance/internal/domain"
	"github.com/everfaz/ses-compliance/internal/pkg/logger"
)

// Service implements suppression business logic. It is safe for concurrent use.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService creates a suppression service backed by the given repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Check reports whether an address may receive mail. It never returns an
// error: if the store is unreachable the address is reported suppressed with
// a generic reason (fail closed).
func (s *Service) Check(ctx context.Context, email string) domain.SuppressionStatus {
	email = domain.NormalizeEmail(email)

	rec, err := s.repo.Active(ctx, email, s.now())
	if err != nil {
		logger.Error("suppression check failed, failing closed",
			"email", email, "error", err)
		return domain.SuppressionStatus{
			Suppressed: true,
			Reason:     UnverifiableReason,
		}
	}
	if rec == nil {
		return domain.SuppressionStatus{}
	}

	at := rec.SuppressedAt
	return domain.SuppressionStatus{
		Suppressed:   true,
		Reason:       rec.Reason,
		SuppressedAt: &at,
		IsPermanent:  rec.IsPermanent,
	}
}

// Suppress writes a suppression record for an address. Idempotent upsert;
// the last write for an address wins regardless of the prior type.
func (s *Service) Suppress(ctx context.Context, email string, typ domain.SuppressionType, reason string, permanent bool, until *time.Time) error {
	email = domain.NormalizeEmail(email)
	if email == "" {
		return ErrEmptyEmail
	}

	rec := &domain.Suppression{
		ID:            uuid.New().String(),
		Email:         email,
		Type:          typ,
		Reason:        reason,
		SuppressedAt:  s.now(),
		IsPermanent:   permanent,
		SuppressUntil: until,
	}
	if err := s.repo.Upsert(ctx, rec); err != nil {
		return err
	}

	logger.Info("address suppressed",
		"email", email, "type", string(typ), "permanent", permanent, "reason", reason)
	return nil
}

// List returns suppression entries matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]domain.Suppression, int, error) {
	return s.repo.List(ctx, filter)
}

// Count returns the total number of suppression records.
func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}
