package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/everfaz/ses-compliance/internal/domain"
	"github.com/everfaz/ses-compliance/internal/service/suppression"
)

// implicitExpiryDays bounds temporary suppressions that carry no explicit
// suppress_until.
const implicitExpiryDays = 30

// SuppressionRepo implements suppression.Repository against PostgreSQL.
type SuppressionRepo struct{ db *sql.DB }

// NewSuppressionRepo creates a Postgres-backed suppression repository.
func NewSuppressionRepo(db *sql.DB) *SuppressionRepo { return &SuppressionRepo{db: db} }

func (r *SuppressionRepo) Active(ctx context.Context, email string, now time.Time) (*domain.Suppression, error) {
	var s domain.Suppression
	err := r.db.QueryRowContext(ctx, `
		SELECT id, email, suppression_type, reason, suppressed_at, is_permanent, suppress_until
		FROM email_suppressions
		WHERE email = $1
		  AND (is_permanent = true
		       OR (suppress_until IS NOT NULL AND suppress_until > $2)
		       OR (suppress_until IS NULL AND suppressed_at > $2 - ($3 || ' days')::interval))
	`, email, now, implicitExpiryDays).Scan(
		&s.ID, &s.Email, &s.Type, &s.Reason, &s.SuppressedAt, &s.IsPermanent, &s.SuppressUntil,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("active suppression: %w", err)
	}
	return &s, nil
}

func (r *SuppressionRepo) Upsert(ctx context.Context, s *domain.Suppression) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO email_suppressions (id, email, suppression_type, reason, suppressed_at, is_permanent, suppress_until)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (email) DO UPDATE SET
			suppression_type = EXCLUDED.suppression_type,
			reason = EXCLUDED.reason,
			suppressed_at = EXCLUDED.suppressed_at,
			is_permanent = EXCLUDED.is_permanent,
			suppress_until = EXCLUDED.suppress_until
	`, s.ID, s.Email, s.Type, s.Reason, s.SuppressedAt, s.IsPermanent, s.SuppressUntil)
	if err != nil {
		return fmt.Errorf("upsert suppression: %w", err)
	}
	return nil
}

func (r *SuppressionRepo) List(ctx context.Context, f suppression.ListFilter) ([]domain.Suppression, int, error) {
	where := ""
	args := []interface{}{}
	if f.Type != "" {
		where = "WHERE suppression_type = $1"
		args = append(args, f.Type)
	}

	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM email_suppressions `+where, args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count suppressions: %w", err)
	}

	limit := f.Limit
	if limit <= 0 {
		limit = total
	}
	args = append(args, limit, f.Offset)

	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT id, email, suppression_type, reason, suppressed_at, is_permanent, suppress_until
		FROM email_suppressions
		%s
		ORDER BY suppressed_at DESC
		LIMIT $%d OFFSET $%d
	`, where, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list suppressions: %w", err)
	}
	defer rows.Close()

	var out []domain.Suppression
	for rows.Next() {
		var s domain.Suppression
		if err := rows.Scan(&s.ID, &s.Email, &s.Type, &s.Reason, &s.SuppressedAt, &s.IsPermanent, &s.SuppressUntil); err != nil {
			return nil, 0, fmt.Errorf("scan suppression: %w", err)
		}
		out = append(out, s)
	}
	return out, total, rows.Err()
}

func (r *SuppressionRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM email_suppressions`,
	).Scan(&n)
	return n, err
}
