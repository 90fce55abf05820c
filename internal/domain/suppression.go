package domain

import "time"

// SuppressionType enumerates why an address was blocked from future sends.
type SuppressionType string

const (
	SuppressionBounce      SuppressionType = "bounce"
	SuppressionComplaint   SuppressionType = "complaint"
	SuppressionUnsubscribe SuppressionType = "unsubscribe"
)

// Suppression represents the single active suppression record for an address.
// At most one record exists per email; a new suppression replaces the old one
// regardless of the prior type.
type Suppression struct {
	ID            string          `json:"id" db:"id"`
	Email         string          `json:"email" db:"email"`
	Type          SuppressionType `json:"suppression_type" db:"suppression_type"`
	Reason        string          `json:"reason" db:"reason"`
	SuppressedAt  time.Time       `json:"suppressed_at" db:"suppressed_at"`
	IsPermanent   bool            `json:"is_permanent" db:"is_permanent"`
	SuppressUntil *time.Time      `json:"suppress_until,omitempty" db:"suppress_until"`
}

// SuppressionStatus is the answer to "may this address receive mail?".
// Reason and the timestamps are only meaningful when Suppressed is true.
type SuppressionStatus struct {
	Suppressed   bool       `json:"suppressed"`
	Reason       string     `json:"reason,omitempty"`
	SuppressedAt *time.Time `json:"suppressed_at,omitempty"`
	IsPermanent  bool       `json:"is_permanent,omitempty"`
}
