package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/everfaz/ses-compliance/internal/domain"
	"github.com/everfaz/ses-compliance/internal/service/suppression"
)

func TestSuppressionRepo_Active(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	repo := NewSuppressionRepo(db)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	suppressedAt := now.Add(-48 * time.Hour)

	t.Run("record in force", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, email, suppression_type").
			WithArgs("bad@x.com", now, implicitExpiryDays).
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "email", "suppression_type", "reason", "suppressed_at", "is_permanent", "suppress_until",
			}).AddRow("s-1", "bad@x.com", "bounce", "hard bounce: General", suppressedAt, true, nil))

		s, err := repo.Active(context.Background(), "bad@x.com", now)
		if err != nil {
			t.Fatalf("Active: %v", err)
		}
		if s == nil || !s.IsPermanent || s.Reason != "hard bounce: General" {
			t.Errorf("record = %+v", s)
		}
	})

	t.Run("no record", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, email, suppression_type").
			WithArgs("ok@x.com", now, implicitExpiryDays).
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "email", "suppression_type", "reason", "suppressed_at", "is_permanent", "suppress_until",
			}))

		s, err := repo.Active(context.Background(), "ok@x.com", now)
		if err != nil {
			t.Fatalf("Active: %v", err)
		}
		if s != nil {
			t.Errorf("expected nil, got %+v", s)
		}
	})

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestSuppressionRepo_Upsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	repo := NewSuppressionRepo(db)
	now := time.Now()

	mock.ExpectExec("INSERT INTO email_suppressions").
		WithArgs("s-1", "bad@x.com", "complaint", "complaint: spam", now, true, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.Upsert(context.Background(), &domain.Suppression{
		ID:           "s-1",
		Email:        "bad@x.com",
		Type:         domain.SuppressionComplaint,
		Reason:       "complaint: spam",
		SuppressedAt: now,
		IsPermanent:  true,
	})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestSuppressionRepo_ListWithTypeFilter(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	repo := NewSuppressionRepo(db)
	now := time.Now()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM email_suppressions`).
		WithArgs("bounce").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("SELECT id, email, suppression_type").
		WithArgs("bounce", 10, 0).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "email", "suppression_type", "reason", "suppressed_at", "is_permanent", "suppress_until",
		}).AddRow("s-1", "bad@x.com", "bounce", "hard bounce: General", now, true, nil))

	out, total, err := repo.List(context.Background(), suppression.ListFilter{Type: "bounce", Limit: 10})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 1 || len(out) != 1 || out[0].Email != "bad@x.com" {
		t.Errorf("out=%+v total=%d", out, total)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestEventRepo_RecordIgnoresDuplicates(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	repo := NewEventRepo(db)
	ts := time.Now()

	// The conflict clause makes a replay a zero-row insert, not an error.
	mock.ExpectExec("INSERT INTO email_events").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO email_events").
		WillReturnResult(sqlmock.NewResult(0, 0))

	ev := &domain.EmailEvent{
		Email:      "dup@x.com",
		Type:       domain.EventBounce,
		BounceType: domain.BounceHard,
		CreatedAt:  ts,
	}
	if err := repo.Record(context.Background(), ev); err != nil {
		t.Fatalf("first Record: %v", err)
	}
	if err := repo.Record(context.Background(), ev); err != nil {
		t.Fatalf("replayed Record: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestEventRepo_AggregateSince(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	repo := NewEventRepo(db)
	since := time.Now().AddDate(0, 0, -30)

	mock.ExpectQuery("SELECT").
		WithArgs(since).
		WillReturnRows(sqlmock.NewRows([]string{"send", "bounce", "complaint"}).AddRow(1000, 60, 2))

	agg, err := repo.AggregateSince(context.Background(), since)
	if err != nil {
		t.Fatalf("AggregateSince: %v", err)
	}
	if agg.TotalSent != 1000 || agg.TotalBounces != 60 || agg.TotalComplaints != 2 {
		t.Errorf("aggregate = %+v", agg)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestConsentRepo_GetMissingRecord(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	repo := NewConsentRepo(db)

	mock.ExpectQuery("SELECT id, email, contact_id").
		WithArgs("nobody@x.com").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "email", "contact_id", "has_consented", "consent_date",
			"consent_source", "consent_ip_address", "consent_user_agent", "status",
		}))

	rec, err := repo.Get(context.Background(), "nobody@x.com")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec != nil {
		t.Errorf("expected nil record, got %+v", rec)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestConsentRepo_SetStatusMissingRecordIsNotError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	repo := NewConsentRepo(db)

	mock.ExpectExec("UPDATE email_consent SET status").
		WithArgs("nobody@x.com", "bounced").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.SetStatus(context.Background(), "nobody@x.com", domain.ConsentBounced); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestContactRepo_Insert(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	repo := NewContactRepo(db)

	mock.ExpectQuery("INSERT INTO contacts").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))

	id, err := repo.Insert(context.Background(), &domain.Contact{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Message:   "Hello",
		CreatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if id != 42 {
		t.Errorf("id = %d", id)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestMetricsRepo_AddBounceIncrements(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	repo := NewMetricsRepo(db)
	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec("INSERT INTO daily_email_metrics").
		WithArgs(day, 1, 0).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.AddBounce(context.Background(), day, true); err != nil {
		t.Fatalf("AddBounce: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestMetricsRepo_RangeComputesRates(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	repo := NewMetricsRepo(db)
	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT date, emails_sent").
		WillReturnRows(sqlmock.NewRows([]string{
			"date", "emails_sent", "bounce_count", "hard_bounce_count", "soft_bounce_count", "complaint_count", "delivery_count",
		}).AddRow(day, 1000, 60, 50, 10, 2, 930))

	out, err := repo.Range(context.Background(), day, day)
	if err != nil {
		t.Fatalf("Range: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("rows = %d", len(out))
	}
	if out[0].BounceRate != 6.0 || out[0].ComplaintRate != 0.2 {
		t.Errorf("rates = %v / %v", out[0].BounceRate, out[0].ComplaintRate)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
