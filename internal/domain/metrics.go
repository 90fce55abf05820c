package domain

import "time"

// DailyMetrics is one row of aggregated counters per calendar date. It is
// derived data, reconstructable from the event log if lost.
type DailyMetrics struct {
	Date            time.Time `json:"date" db:"date"`
	EmailsSent      int       `json:"emails_sent" db:"emails_sent"`
	BounceCount     int       `json:"bounce_count" db:"bounce_count"`
	HardBounceCount int       `json:"hard_bounce_count" db:"hard_bounce_count"`
	SoftBounceCount int       `json:"soft_bounce_count" db:"soft_bounce_count"`
	ComplaintCount  int       `json:"complaint_count" db:"complaint_count"`
	DeliveryCount   int       `json:"delivery_count" db:"delivery_count"`
	BounceRate      float64   `json:"bounce_rate" db:"bounce_rate"`
	ComplaintRate   float64   `json:"complaint_rate" db:"complaint_rate"`
}

// ReputationStats are trailing-window sending rates. Rates are percentages
// (a value of 5.0 means 5%), matching the units of the provider thresholds.
type ReputationStats struct {
	BounceRate      float64 `json:"bounce_rate"`
	ComplaintRate   float64 `json:"complaint_rate"`
	TotalSent       int     `json:"total_sent"`
	TotalBounces    int     `json:"total_bounces"`
	TotalComplaints int     `json:"total_complaints"`
	Period          string  `json:"period"`
}

// Provider reputation thresholds, in percentage units. Exceeding either
// (strictly) risks provider-level sending suspension.
const (
	BounceRateThreshold    = 5.0
	ComplaintRateThreshold = 0.1
)

// ExceedsThresholds reports whether either rate is strictly above its
// provider threshold. A complaint rate of exactly 0.1 does not trip it.
func (s ReputationStats) ExceedsThresholds() bool {
	return s.ComplaintRate > ComplaintRateThreshold || s.BounceRate > BounceRateThreshold
}
