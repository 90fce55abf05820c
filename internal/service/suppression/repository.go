package suppression

import (
	"context"
	"time"

	"github.com/everfaz/ses-compliance/internal/domain"
)

// Repository defines the data access contract for the suppression list.
type Repository interface {
	// Active returns the suppression record currently in force for the email,
	// or nil if the address may receive mail. A record is in force when it is
	// permanent, when its suppress_until has not elapsed, or when it has no
	// suppress_until and was created within the last 30 days.
	Active(ctx context.Context, email string, now time.Time) (*domain.Suppression, error)

	// Upsert writes a suppression record for an address. The last write for
	// an address wins regardless of the prior suppression type.
	Upsert(ctx context.Context, s *domain.Suppression) error

	// List returns suppression entries matching the filter, newest first.
	List(ctx context.Context, filter ListFilter) ([]domain.Suppression, int, error)

	// Count returns the total number of suppression records.
	Count(ctx context.Context) (int, error)
}

// ListFilter controls pagination and filtering for suppression listings.
type ListFilter struct {
	Type   string
	Limit  int
	Offset int
}
