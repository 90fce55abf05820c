package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/everfaz/ses-compliance/internal/domain"
)

// MetricsRepo implements reputation.MetricsRepository against PostgreSQL.
// Every counter update is a single INSERT ... ON CONFLICT increment; a
// read-modify-write cycle would lose counts under concurrent webhooks.
type MetricsRepo struct{ db *sql.DB }

// NewMetricsRepo creates a Postgres-backed daily metrics store.
func NewMetricsRepo(db *sql.DB) *MetricsRepo { return &MetricsRepo{db: db} }

func (r *MetricsRepo) AddSent(ctx context.Context, day time.Time, n int) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO daily_email_metrics (date, emails_sent)
		VALUES ($1, $2)
		ON CONFLICT (date) DO UPDATE SET
			emails_sent = daily_email_metrics.emails_sent + EXCLUDED.emails_sent
	`, day, n)
	if err != nil {
		return fmt.Errorf("add sent: %w", err)
	}
	return nil
}

func (r *MetricsRepo) AddBounce(ctx context.Context, day time.Time, hard bool) error {
	hardN, softN := 0, 1
	if hard {
		hardN, softN = 1, 0
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO daily_email_metrics (date, bounce_count, hard_bounce_count, soft_bounce_count)
		VALUES ($1, 1, $2, $3)
		ON CONFLICT (date) DO UPDATE SET
			bounce_count = daily_email_metrics.bounce_count + 1,
			hard_bounce_count = daily_email_metrics.hard_bounce_count + EXCLUDED.hard_bounce_count,
			soft_bounce_count = daily_email_metrics.soft_bounce_count + EXCLUDED.soft_bounce_count
	`, day, hardN, softN)
	if err != nil {
		return fmt.Errorf("add bounce: %w", err)
	}
	return nil
}

func (r *MetricsRepo) AddComplaint(ctx context.Context, day time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO daily_email_metrics (date, complaint_count)
		VALUES ($1, 1)
		ON CONFLICT (date) DO UPDATE SET
			complaint_count = daily_email_metrics.complaint_count + 1
	`, day)
	if err != nil {
		return fmt.Errorf("add complaint: %w", err)
	}
	return nil
}

func (r *MetricsRepo) AddDelivery(ctx context.Context, day time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO daily_email_metrics (date, delivery_count)
		VALUES ($1, 1)
		ON CONFLICT (date) DO UPDATE SET
			delivery_count = daily_email_metrics.delivery_count + 1
	`, day)
	if err != nil {
		return fmt.Errorf("add delivery: %w", err)
	}
	return nil
}

// Range returns the daily rows between from and to inclusive, oldest first.
// Rates are computed at read time from the stored counters.
func (r *MetricsRepo) Range(ctx context.Context, from, to time.Time) ([]domain.DailyMetrics, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT date, emails_sent, bounce_count, hard_bounce_count, soft_bounce_count, complaint_count, delivery_count
		FROM daily_email_metrics
		WHERE date BETWEEN $1 AND $2
		ORDER BY date
	`, from, to)
	if err != nil {
		return nil, fmt.Errorf("metrics range: %w", err)
	}
	defer rows.Close()

	var out []domain.DailyMetrics
	for rows.Next() {
		var m domain.DailyMetrics
		if err := rows.Scan(&m.Date, &m.EmailsSent, &m.BounceCount, &m.HardBounceCount, &m.SoftBounceCount, &m.ComplaintCount, &m.DeliveryCount); err != nil {
			return nil, fmt.Errorf("scan metrics: %w", err)
		}
		if m.EmailsSent > 0 {
			m.BounceRate = float64(m.BounceCount) / float64(m.EmailsSent) * 100
			m.ComplaintRate = float64(m.ComplaintCount) / float64(m.EmailsSent) * 100
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
