package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/everfaz/ses-compliance/internal/domain"
)

// ContactRepo implements consent.ContactRepository against PostgreSQL.
type ContactRepo struct{ db *sql.DB }

// NewContactRepo creates a Postgres-backed contact store.
func NewContactRepo(db *sql.DB) *ContactRepo { return &ContactRepo{db: db} }

func (r *ContactRepo) Insert(ctx context.Context, c *domain.Contact) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO contacts (first_name, last_name, email, phone, country_code, message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, c.FirstName, c.LastName, c.Email, c.Phone, c.CountryCode, c.Message, c.CreatedAt).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert contact: %w", err)
	}
	return id, nil
}
