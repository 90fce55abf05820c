package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/everfaz/ses-compliance/internal/domain"
)

// EventRepo implements reputation.EventRepository against PostgreSQL.
type EventRepo struct{ db *sql.DB }

// NewEventRepo creates a Postgres-backed email event log.
func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

// Record appends one event. Replays of the same (email, event_type,
// created_at) tuple are silently discarded by the unique constraint.
func (r *EventRepo) Record(ctx context.Context, e *domain.EmailEvent) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO email_events (email, event_type, bounce_type, bounce_sub_type, complaint_type, diagnostic_code, template_name, message_id, created_at)
		VALUES ($1, $2, NULLIF($3, ''), $4, NULLIF($5, ''), $6, $7, $8, $9)
		ON CONFLICT (email, event_type, created_at) DO NOTHING
	`, e.Email, e.Type, string(e.BounceType), e.BounceSubType, string(e.ComplaintType), e.DiagnosticCode, e.TemplateName, e.MessageID, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("record event: %w", err)
	}
	return nil
}

func (r *EventRepo) CountBouncesSince(ctx context.Context, email string, bounceType domain.BounceType, since time.Time) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM email_events
		WHERE email = $1 AND event_type = 'bounce' AND bounce_type = $2 AND created_at >= $3
	`, email, bounceType, since).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count bounces: %w", err)
	}
	return n, nil
}

func (r *EventRepo) AggregateSince(ctx context.Context, since time.Time) (domain.EventAggregate, error) {
	var agg domain.EventAggregate
	err := r.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE event_type = 'send'),
			COUNT(*) FILTER (WHERE event_type = 'bounce'),
			COUNT(*) FILTER (WHERE event_type = 'complaint')
		FROM email_events
		WHERE created_at >= $1
	`, since).Scan(&agg.TotalSent, &agg.TotalBounces, &agg.TotalComplaints)
	if err != nil {
		return domain.EventAggregate{}, fmt.Errorf("aggregate events: %w", err)
	}
	return agg, nil
}
