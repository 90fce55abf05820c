package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/everfaz/ses-compliance/internal/domain"
)

// ConsentRepo implements consent.Repository against PostgreSQL.
type ConsentRepo struct{ db *sql.DB }

// NewConsentRepo creates a Postgres-backed consent registry.
func NewConsentRepo(db *sql.DB) *ConsentRepo { return &ConsentRepo{db: db} }

func (r *ConsentRepo) Get(ctx context.Context, email string) (*domain.ConsentRecord, error) {
	var rec domain.ConsentRecord
	var ip, ua sql.NullString
	err := r.db.QueryRowContext(ctx, `
		SELECT id, email, contact_id, has_consented, consent_date, consent_source, consent_ip_address, consent_user_agent, status
		FROM email_consent
		WHERE email = $1
	`, email).Scan(
		&rec.ID, &rec.Email, &rec.ContactID, &rec.HasConsented, &rec.ConsentDate,
		&rec.ConsentSource, &ip, &ua, &rec.Status,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get consent: %w", err)
	}
	rec.ConsentIPAddress = ip.String
	rec.ConsentUserAgent = ua.String
	return &rec, nil
}

func (r *ConsentRepo) Upsert(ctx context.Context, rec *domain.ConsentRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO email_consent (id, email, contact_id, has_consented, consent_date, consent_source, consent_ip_address, consent_user_agent, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (email) DO UPDATE SET
			contact_id = EXCLUDED.contact_id,
			has_consented = EXCLUDED.has_consented,
			consent_date = EXCLUDED.consent_date,
			consent_source = EXCLUDED.consent_source,
			consent_ip_address = EXCLUDED.consent_ip_address,
			consent_user_agent = EXCLUDED.consent_user_agent,
			status = EXCLUDED.status
	`, rec.ID, rec.Email, rec.ContactID, rec.HasConsented, rec.ConsentDate,
		rec.ConsentSource, rec.ConsentIPAddress, rec.ConsentUserAgent, rec.Status)
	if err != nil {
		return fmt.Errorf("upsert consent: %w", err)
	}
	return nil
}

// SetStatus updates the status of an existing record. A missing record is
// not an error; status is a denormalization, not the source of truth.
func (r *ConsentRepo) SetStatus(ctx context.Context, email string, status domain.ConsentStatus) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE email_consent SET status = $2 WHERE email = $1`,
		email, status,
	)
	if err != nil {
		return fmt.Errorf("set consent status: %w", err)
	}
	return nil
}
