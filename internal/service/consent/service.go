package consent

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/everfaz/ses-compliance/internal/domain"
	"github.com/everfaz/ses-compliance/internal/pkg/logger"
)

// SourceContactForm marks consent collected through the website contact form.
const SourceContactForm = "contact_form"

// Service coordinates contact intake, consent resolution and unsubscribes.
type Service struct {
	consents     Repository
	contacts     ContactRepository
	suppressions SuppressionChecker
	suppressor   Suppressor
	now          func() time.Time
}

func NewService(consents Repository, contacts ContactRepository, suppressions SuppressionChecker, suppressor Suppressor) *Service {
	return &Service{
		consents:     consents,
		contacts:     contacts,
		suppressions: suppressions,
		suppressor:   suppressor,
		now:          time.Now,
	}
}

// AddContact validates and persists a contact-form submission and records the
// implied consent it carries. Suppressed addresses are refused before any
// write; when the suppression status cannot be verified the submission is
// refused too.
func (s *Service) AddContact(ctx context.Context, sub domain.ContactSubmission, ip, userAgent string) (*domain.Contact, error) {
	if missing, emailOK := sub.Validate(); len(missing) > 0 || !emailOK {
		return nil, &ValidationError{Missing: missing, EmailInvalid: !emailOK}
	}
	email := domain.NormalizeEmail(sub.Email)

	if status := s.suppressions.Check(ctx, email); status.Suppressed {
		logger.Warn("contact submission refused",
			"email", email,
			"reason", status.Reason)
		return nil, fmt.Errorf("%w: %s", ErrSuppressed, status.Reason)
	}

	contact := &domain.Contact{
		FirstName:   sub.FirstName,
		LastName:    sub.LastName,
		Email:       email,
		Phone:       sub.Phone,
		CountryCode: sub.CountryCode,
		Message:     sub.Message,
		CreatedAt:   s.now(),
	}
	id, err := s.contacts.Insert(ctx, contact)
	if err != nil {
		return nil, fmt.Errorf("storing contact: %w", err)
	}
	contact.ID = id

	rec := &domain.ConsentRecord{
		ID:               uuid.New().String(),
		Email:            email,
		ContactID:        &id,
		HasConsented:     true,
		ConsentDate:      s.now(),
		ConsentSource:    SourceContactForm,
		ConsentIPAddress: ip,
		ConsentUserAgent: userAgent,
		Status:           domain.ConsentActive,
	}
	if err := s.consents.Upsert(ctx, rec); err != nil {
		// The contact row is already stored; consent can be backfilled.
		logger.Error("storing consent record failed",
			"email", email,
			"error", err.Error())
	}

	logger.Info("contact stored",
		"email", email,
		"contact_id", id)
	return contact, nil
}

// Recipient resolves a send-eligible recipient for the address.
// explicitConsent selects the marketing rules: a stored record with an active
// explicit opt-in is required. With explicitConsent false the recipient is
// synthesized from the existing business relationship.
func (s *Service) Recipient(ctx context.Context, email string, explicitConsent bool) (*domain.Recipient, error) {
	email = domain.NormalizeEmail(email)

	rec, err := s.consents.Get(ctx, email)

	if !explicitConsent {
		// The stored record, when present, carries the real source and
		// date for the outbound message tags.
		if err == nil && rec != nil {
			return &domain.Recipient{
				Email:        rec.Email,
				HasConsented: true,
				ConsentDate:  rec.ConsentDate,
				Source:       rec.ConsentSource,
			}, nil
		}
		if err != nil {
			logger.Warn("loading consent record failed, assuming business relationship",
				"email", email,
				"error", err.Error())
		}
		return &domain.Recipient{
			Email:        email,
			HasConsented: true,
			ConsentDate:  s.now(),
			Source:       domain.SourceTransactional,
		}, nil
	}

	if err != nil {
		return nil, fmt.Errorf("loading consent record: %w", err)
	}
	if rec == nil {
		return nil, ErrNoConsentRecord
	}
	if !rec.HasConsented || rec.Status != domain.ConsentActive {
		return nil, ErrNoExplicitConsent
	}
	return &domain.Recipient{
		Email:        rec.Email,
		HasConsented: true,
		ConsentDate:  rec.ConsentDate,
		Source:       rec.ConsentSource,
	}, nil
}

// SetStatus denormalizes a consent status change, typically driven by bounce
// or complaint events.
func (s *Service) SetStatus(ctx context.Context, email string, status domain.ConsentStatus) error {
	return s.consents.SetStatus(ctx, domain.NormalizeEmail(email), status)
}

// Unsubscribe permanently suppresses the address and marks its consent
// record unsubscribed. Repeating the call for an already unsubscribed address
// succeeds without change.
func (s *Service) Unsubscribe(ctx context.Context, email string) error {
	email = domain.NormalizeEmail(email)
	if !domain.ValidEmail(email) {
		return ErrInvalidEmail
	}

	if err := s.suppressor.Suppress(ctx, email, domain.SuppressionUnsubscribe, "user unsubscribed", true, nil); err != nil {
		return fmt.Errorf("suppressing unsubscribed address: %w", err)
	}
	if err := s.consents.SetStatus(ctx, email, domain.ConsentUnsubscribed); err != nil {
		logger.Error("updating consent status failed",
			"email", email,
			"error", err.Error())
	}

	logger.Info("unsubscribe processed", "email", email)
	return nil
}
