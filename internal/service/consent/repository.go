package consent

import (
	"context"
	"time"

	"github.com/everfaz/ses-compliance/internal/domain"
)

// Repository stores consent records keyed by normalized email.
type Repository interface {
	// Get returns the record for the address, or nil when none exists.
	Get(ctx context.Context, email string) (*domain.ConsentRecord, error)

	// Upsert inserts or replaces the record for its address.
	Upsert(ctx context.Context, rec *domain.ConsentRecord) error

	// SetStatus updates only the status of an existing record. A missing
	// record is not an error.
	SetStatus(ctx context.Context, email string, status domain.ConsentStatus) error
}

// ContactRepository persists contact-form submissions.
type ContactRepository interface {
	Insert(ctx context.Context, c *domain.Contact) (int64, error)
}

// SuppressionChecker answers whether mail may be sent to an address.
type SuppressionChecker interface {
	Check(ctx context.Context, email string) domain.SuppressionStatus
}

// Suppressor adds an address to the suppression list.
type Suppressor interface {
	Suppress(ctx context.Context, email string, typ domain.SuppressionType, reason string, permanent bool, until *time.Time) error
}
