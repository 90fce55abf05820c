package reputation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/everfaz/ses-compliance/internal/domain"
)

// eventKey mirrors the event log's uniqueness constraint.
type eventKey struct {
	email     string
	eventType domain.EventType
	createdAt time.Time
}

type mockEventRepo struct {
	events    map[eventKey]domain.EmailEvent
	recordErr error
}

func newMockEventRepo() *mockEventRepo {
	return &mockEventRepo{events: make(map[eventKey]domain.EmailEvent)}
}

func (m *mockEventRepo) Record(_ context.Context, e *domain.EmailEvent) error {
	if m.recordErr != nil {
		return m.recordErr
	}
	k := eventKey{e.Email, e.Type, e.CreatedAt}
	if _, dup := m.events[k]; dup {
		return nil // silently discard replay
	}
	m.events[k] = *e
	return nil
}

func (m *mockEventRepo) CountBouncesSince(_ context.Context, email string, bt domain.BounceType, since time.Time) (int, error) {
	n := 0
	for _, e := range m.events {
		if e.Email == email && e.Type == domain.EventBounce && e.BounceType == bt && !e.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (m *mockEventRepo) AggregateSince(_ context.Context, since time.Time) (domain.EventAggregate, error) {
	var agg domain.EventAggregate
	for _, e := range m.events {
		if e.CreatedAt.Before(since) {
			continue
		}
		switch e.Type {
		case domain.EventSend:
			agg.TotalSent++
		case domain.EventBounce:
			agg.TotalBounces++
		case domain.EventComplaint:
			agg.TotalComplaints++
		}
	}
	return agg, nil
}

type mockMetrics struct {
	sent, bounces, hard, soft, complaints, deliveries int
	err                                               error
}

func (m *mockMetrics) AddSent(_ context.Context, _ time.Time, n int) error {
	if m.err != nil {
		return m.err
	}
	m.sent += n
	return nil
}

func (m *mockMetrics) AddBounce(_ context.Context, _ time.Time, hardBounce bool) error {
	if m.err != nil {
		return m.err
	}
	m.bounces++
	if hardBounce {
		m.hard++
	} else {
		m.soft++
	}
	return nil
}

func (m *mockMetrics) AddComplaint(_ context.Context, _ time.Time) error {
	if m.err != nil {
		return m.err
	}
	m.complaints++
	return nil
}

func (m *mockMetrics) AddDelivery(_ context.Context, _ time.Time) error {
	if m.err != nil {
		return m.err
	}
	m.deliveries++
	return nil
}

type mockSuppressor struct {
	records map[string]*domain.Suppression
	err     error
}

func newMockSuppressor() *mockSuppressor {
	return &mockSuppressor{records: make(map[string]*domain.Suppression)}
}

func (m *mockSuppressor) Suppress(_ context.Context, email string, typ domain.SuppressionType, reason string, permanent bool, until *time.Time) error {
	if m.err != nil {
		return m.err
	}
	m.records[email] = &domain.Suppression{
		Email: email, Type: typ, Reason: reason,
		IsPermanent: permanent, SuppressUntil: until,
	}
	return nil
}

type mockStatuses struct {
	statuses map[string]domain.ConsentStatus
}

func newMockStatuses() *mockStatuses {
	return &mockStatuses{statuses: make(map[string]domain.ConsentStatus)}
}

func (m *mockStatuses) SetStatus(_ context.Context, email string, status domain.ConsentStatus) error {
	m.statuses[email] = status
	return nil
}

type fixture struct {
	svc        *Service
	events     *mockEventRepo
	metrics    *mockMetrics
	suppressor *mockSuppressor
	statuses   *mockStatuses
	alerts     []domain.ReputationStats
}

func newFixture() *fixture {
	f := &fixture{
		events:     newMockEventRepo(),
		metrics:    &mockMetrics{},
		suppressor: newMockSuppressor(),
		statuses:   newMockStatuses(),
	}
	f.svc = NewService(f.events, f.metrics, f.suppressor, f.statuses,
		func(s domain.ReputationStats) { f.alerts = append(f.alerts, s) })
	return f
}

func TestHandleBounce_HardBounceSuppressesPermanently(t *testing.T) {
	f := newFixture()

	err := f.svc.HandleBounce(context.Background(), BounceEvent{
		Email:         "A@X.com",
		BounceType:    domain.BounceHard,
		BounceSubType: "General",
		Timestamp:     time.Now(),
	})
	if err != nil {
		t.Fatalf("HandleBounce: %v", err)
	}

	rec := f.suppressor.records["a@x.com"]
	if rec == nil {
		t.Fatal("expected suppression record")
	}
	if !rec.IsPermanent {
		t.Error("hard bounce must suppress permanently")
	}
	if rec.Reason != "hard bounce: General" {
		t.Errorf("unexpected reason: %q", rec.Reason)
	}
	if f.metrics.bounces != 1 || f.metrics.hard != 1 || f.metrics.soft != 0 {
		t.Errorf("metrics bounces=%d hard=%d soft=%d", f.metrics.bounces, f.metrics.hard, f.metrics.soft)
	}
	if f.statuses.statuses["a@x.com"] != domain.ConsentBounced {
		t.Error("consent status should denormalize to bounced")
	}
}

func TestHandleBounce_SoftBounceThreshold(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	base := time.Now()

	for i := 0; i < 2; i++ {
		err := f.svc.HandleBounce(ctx, BounceEvent{
			Email:         "c@y.com",
			BounceType:    domain.BounceSoft,
			BounceSubType: "MailboxFull",
			Timestamp:     base.Add(time.Duration(i) * time.Hour),
		})
		if err != nil {
			t.Fatalf("HandleBounce #%d: %v", i, err)
		}
	}
	if f.suppressor.records["c@y.com"] != nil {
		t.Fatal("two soft bounces in 7 days must not suppress")
	}

	// Third soft bounce within the same window trips the rule.
	err := f.svc.HandleBounce(ctx, BounceEvent{
		Email:         "c@y.com",
		BounceType:    domain.BounceSoft,
		BounceSubType: "MailboxFull",
		Timestamp:     base.Add(2 * time.Hour),
	})
	if err != nil {
		t.Fatalf("HandleBounce #3: %v", err)
	}

	rec := f.suppressor.records["c@y.com"]
	if rec == nil {
		t.Fatal("third soft bounce must suppress")
	}
	if rec.IsPermanent {
		t.Error("soft bounce suppression must be temporary")
	}
	if f.metrics.soft != 3 {
		t.Errorf("soft bounce metric = %d, want 3", f.metrics.soft)
	}
}

func TestHandleBounce_SoftBouncesOutsideWindowDoNotCount(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	// Two stale soft bounces, 8 days ago.
	stale := time.Now().AddDate(0, 0, -8)
	for i := 0; i < 2; i++ {
		_ = f.svc.HandleBounce(ctx, BounceEvent{
			Email:      "old@y.com",
			BounceType: domain.BounceSoft,
			Timestamp:  stale.Add(time.Duration(i) * time.Hour),
		})
	}
	_ = f.svc.HandleBounce(ctx, BounceEvent{
		Email:      "old@y.com",
		BounceType: domain.BounceSoft,
		Timestamp:  time.Now(),
	})
	if f.suppressor.records["old@y.com"] != nil {
		t.Error("soft bounces outside the 7-day window must not count toward the limit")
	}
}

func TestHandleBounce_DuplicateEventDiscarded(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	ts := time.Now().Truncate(time.Second)

	ev := BounceEvent{Email: "dup@x.com", BounceType: domain.BounceSoft, Timestamp: ts}
	if err := f.svc.HandleBounce(ctx, ev); err != nil {
		t.Fatalf("first HandleBounce: %v", err)
	}
	if err := f.svc.HandleBounce(ctx, ev); err != nil {
		t.Fatalf("replayed HandleBounce: %v", err)
	}

	if len(f.events.events) != 1 {
		t.Errorf("expected 1 stored event after replay, got %d", len(f.events.events))
	}
}

func TestHandleBounce_EventAppendFailurePropagates(t *testing.T) {
	f := newFixture()
	f.events.recordErr = errors.New("disk full")

	err := f.svc.HandleBounce(context.Background(), BounceEvent{
		Email:      "x@x.com",
		BounceType: domain.BounceHard,
		Timestamp:  time.Now(),
	})
	if err == nil {
		t.Fatal("event-append failure must propagate")
	}
}

func TestHandleBounce_SuppressionFailureDoesNotPropagate(t *testing.T) {
	f := newFixture()
	f.suppressor.err = errors.New("store down")

	err := f.svc.HandleBounce(context.Background(), BounceEvent{
		Email:      "x@x.com",
		BounceType: domain.BounceHard,
		Timestamp:  time.Now(),
	})
	if err != nil {
		t.Fatalf("suppression failure must not fail the handler: %v", err)
	}
}

func TestHandleComplaint_AlwaysPermanent(t *testing.T) {
	f := newFixture()

	err := f.svc.HandleComplaint(context.Background(), ComplaintEvent{
		Email:         "angry@x.com",
		ComplaintType: domain.ComplaintSpam,
		Timestamp:     time.Now(),
	})
	if err != nil {
		t.Fatalf("HandleComplaint: %v", err)
	}

	rec := f.suppressor.records["angry@x.com"]
	if rec == nil || !rec.IsPermanent {
		t.Fatal("complaint must suppress permanently")
	}
	if rec.Reason != "complaint: spam" {
		t.Errorf("unexpected reason: %q", rec.Reason)
	}
	if f.metrics.complaints != 1 {
		t.Errorf("complaint metric = %d, want 1", f.metrics.complaints)
	}
	if f.statuses.statuses["angry@x.com"] != domain.ConsentComplained {
		t.Error("consent status should denormalize to complained")
	}
}

func TestStats_RatesArePercentages(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	base := time.Now().Add(-time.Hour)

	seedEvents(f.events, base, 1000, 60, 2)

	stats, err := f.svc.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.BounceRate != 6.0 {
		t.Errorf("BounceRate = %v, want 6.0", stats.BounceRate)
	}
	if stats.ComplaintRate != 0.2 {
		t.Errorf("ComplaintRate = %v, want 0.2", stats.ComplaintRate)
	}
	if !stats.ExceedsThresholds() {
		t.Error("6.0%% bounce / 0.2%% complaint must exceed thresholds")
	}
}

func TestStats_ZeroSent(t *testing.T) {
	f := newFixture()

	stats, err := f.svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.BounceRate != 0 || stats.ComplaintRate != 0 {
		t.Error("rates must be zero when nothing was sent")
	}
}

func TestComplaintRateBoundary_ExactThresholdDoesNotAlert(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	base := time.Now().Add(-time.Hour)

	// 1000 sent, 1 complaint = exactly 0.1%. Strict > comparison: no alert.
	seedEvents(f.events, base, 1000, 0, 0)

	err := f.svc.HandleComplaint(ctx, ComplaintEvent{
		Email:         "edge@x.com",
		ComplaintType: domain.ComplaintSpam,
		Timestamp:     base.Add(time.Minute),
	})
	if err != nil {
		t.Fatalf("HandleComplaint: %v", err)
	}
	if len(f.alerts) != 0 {
		t.Errorf("complaint rate of exactly 0.1 must not alert, got %d alerts", len(f.alerts))
	}
}

func TestComplaintAboveThresholdAlerts(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	base := time.Now().Add(-time.Hour)

	// 1000 sent, 1 prior complaint; the second pushes the rate to 0.2%.
	seedEvents(f.events, base, 1000, 0, 1)

	err := f.svc.HandleComplaint(ctx, ComplaintEvent{
		Email:         "second@x.com",
		ComplaintType: domain.ComplaintAbuse,
		Timestamp:     base.Add(time.Minute),
	})
	if err != nil {
		t.Fatalf("HandleComplaint: %v", err)
	}
	if len(f.alerts) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(f.alerts))
	}
	if f.alerts[0].ComplaintRate != 0.2 {
		t.Errorf("alert ComplaintRate = %v, want 0.2", f.alerts[0].ComplaintRate)
	}
}

func TestRecordSend_AppendsEventAndMetric(t *testing.T) {
	f := newFixture()

	err := f.svc.RecordSend(context.Background(), "To@X.com", "welcome", "msg-123")
	if err != nil {
		t.Fatalf("RecordSend: %v", err)
	}
	if f.metrics.sent != 1 {
		t.Errorf("sent metric = %d, want 1", f.metrics.sent)
	}
	found := false
	for _, e := range f.events.events {
		if e.Email == "to@x.com" && e.Type == domain.EventSend && e.TemplateName == "welcome" {
			found = true
		}
	}
	if !found {
		t.Error("expected a normalized send event in the log")
	}
}

func TestHandleDelivery_RecordsEvent(t *testing.T) {
	f := newFixture()

	err := f.svc.HandleDelivery(context.Background(), DeliveryEvent{
		Email:     "ok@x.com",
		Timestamp: time.Now(),
		MessageID: "msg-9",
	})
	if err != nil {
		t.Fatalf("HandleDelivery: %v", err)
	}
	if f.metrics.deliveries != 1 {
		t.Errorf("delivery metric = %d, want 1", f.metrics.deliveries)
	}
}

// seedEvents populates the log with sends, bounces and complaints spread
// across distinct timestamps inside the 30-day stats window.
func seedEvents(repo *mockEventRepo, base time.Time, sends, bounces, complaints int) {
	for i := 0; i < sends; i++ {
		repo.events[eventKey{"bulk@x.com", domain.EventSend, base.Add(time.Duration(i) * time.Millisecond)}] = domain.EmailEvent{
			Email: "bulk@x.com", Type: domain.EventSend,
			CreatedAt: base.Add(time.Duration(i) * time.Millisecond),
		}
	}
	for i := 0; i < bounces; i++ {
		ts := base.Add(time.Duration(i)*time.Millisecond + time.Second)
		repo.events[eventKey{"b@x.com", domain.EventBounce, ts}] = domain.EmailEvent{
			Email: "b@x.com", Type: domain.EventBounce, BounceType: domain.BounceHard, CreatedAt: ts,
		}
	}
	for i := 0; i < complaints; i++ {
		ts := base.Add(time.Duration(i)*time.Millisecond + 2*time.Second)
		repo.events[eventKey{"c@x.com", domain.EventComplaint, ts}] = domain.EmailEvent{
			Email: "c@x.com", Type: domain.EventComplaint, ComplaintType: domain.ComplaintSpam, CreatedAt: ts,
		}
	}
}
