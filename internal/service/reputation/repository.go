package reputation

import (
	"context"
	"time"

	"github.com/everfaz/ses-compliance/internal/domain"
)

// EventRepository is the append-only email event log.
type EventRepository interface {
	// Record appends an event. Replaying the same (email, type, created_at)
	// is not an error; the duplicate is discarded silently.
	Record(ctx context.Context, e *domain.EmailEvent) error

	// CountBouncesSince counts bounce events of the given type for one
	// address with created_at >= since.
	CountBouncesSince(ctx context.Context, email string, bounceType domain.BounceType, since time.Time) (int, error)

	// AggregateSince returns send/bounce/complaint totals for all addresses
	// with created_at >= since.
	AggregateSince(ctx context.Context, since time.Time) (domain.EventAggregate, error)
}

// MetricsRepository maintains the per-day counter row. Implementations must
// increment atomically; read-modify-write loses counts under concurrency.
type MetricsRepository interface {
	AddSent(ctx context.Context, day time.Time, n int) error
	AddBounce(ctx context.Context, day time.Time, hard bool) error
	AddComplaint(ctx context.Context, day time.Time) error
	AddDelivery(ctx context.Context, day time.Time) error
}

// Suppressor is the slice of the suppression service the policy needs.
type Suppressor interface {
	Suppress(ctx context.Context, email string, typ domain.SuppressionType, reason string, permanent bool, until *time.Time) error
}

// StatusSetter denormalizes consent status on bounce/complaint. The
// suppression list stays authoritative for send-eligibility; this is a
// read-optimization only.
type StatusSetter interface {
	SetStatus(ctx context.Context, email string, status domain.ConsentStatus) error
}

// AlertFunc receives reputation stats whenever a threshold is crossed.
type AlertFunc func(domain.ReputationStats)
