package domain

import "time"

// EventType enumerates the kinds of facts recorded in the email event log.
type EventType string

const (
	EventSend      EventType = "send"
	EventBounce    EventType = "bounce"
	EventComplaint EventType = "complaint"
	EventDelivery  EventType = "delivery"
)

// BounceType distinguishes permanent failures from transient ones.
type BounceType string

const (
	BounceHard BounceType = "hard"
	BounceSoft BounceType = "soft"
)

// ComplaintType categorizes spam complaints as reported by the provider's
// feedback loop.
type ComplaintType string

const (
	ComplaintSpam  ComplaintType = "spam"
	ComplaintAbuse ComplaintType = "abuse"
	ComplaintFraud ComplaintType = "fraud"
	ComplaintVirus ComplaintType = "virus"
	ComplaintOther ComplaintType = "other"
)

// EmailEvent is an immutable fact in the append-only event log. Events are
// never mutated or deleted; (Email, Type, CreatedAt) is the identity used to
// deduplicate webhook replays.
type EmailEvent struct {
	ID             int64         `json:"id" db:"id"`
	Email          string        `json:"email" db:"email"`
	Type           EventType     `json:"event_type" db:"event_type"`
	BounceType     BounceType    `json:"bounce_type,omitempty" db:"bounce_type"`
	BounceSubType  string        `json:"bounce_sub_type,omitempty" db:"bounce_sub_type"`
	ComplaintType  ComplaintType `json:"complaint_type,omitempty" db:"complaint_type"`
	DiagnosticCode string        `json:"diagnostic_code,omitempty" db:"diagnostic_code"`
	TemplateName   string        `json:"template_name,omitempty" db:"template_name"`
	MessageID      string        `json:"message_id,omitempty" db:"message_id"`
	CreatedAt      time.Time     `json:"created_at" db:"created_at"`
}

// EventAggregate holds trailing-window totals from the event log, used for
// reputation rate computation.
type EventAggregate struct {
	TotalSent       int `json:"total_sent"`
	TotalBounces    int `json:"total_bounces"`
	TotalComplaints int `json:"total_complaints"`
}
