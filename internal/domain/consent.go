package domain

import "time"

// ConsentStatus tracks an address's standing in the consent registry. The
// status is a read-optimization denormalized from events; the suppression
// list remains authoritative for send-eligibility.
type ConsentStatus string

const (
	ConsentActive       ConsentStatus = "active"
	ConsentPending      ConsentStatus = "pending"
	ConsentBounced      ConsentStatus = "bounced"
	ConsentComplained   ConsentStatus = "complained"
	ConsentUnsubscribed ConsentStatus = "unsubscribed"
)

// ConsentRecord captures how and when an address opted in. One record per
// address; a new consent event replaces the prior record.
type ConsentRecord struct {
	ID               string        `json:"id" db:"id"`
	Email            string        `json:"email" db:"email"`
	ContactID        *int64        `json:"contact_id,omitempty" db:"contact_id"`
	HasConsented     bool          `json:"has_consented" db:"has_consented"`
	ConsentDate      time.Time     `json:"consent_date" db:"consent_date"`
	ConsentSource    string        `json:"consent_source" db:"consent_source"`
	ConsentIPAddress string        `json:"consent_ip_address,omitempty" db:"consent_ip_address"`
	ConsentUserAgent string        `json:"consent_user_agent,omitempty" db:"consent_user_agent"`
	Status           ConsentStatus `json:"status" db:"status"`
}

// Recipient is a send-eligible address resolved from the consent registry.
// For transactional templates a Recipient may be synthesized without a stored
// consent record (Source = SourceTransactional).
type Recipient struct {
	Email        string    `json:"email"`
	Name         string    `json:"name,omitempty"`
	HasConsented bool      `json:"has_consented"`
	ConsentDate  time.Time `json:"consent_date"`
	Source       string    `json:"source"`
}

// SourceTransactional marks implied consent derived from an existing business
// relationship rather than an explicit opt-in.
const SourceTransactional = "transactional_relationship"
