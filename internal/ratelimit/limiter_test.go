package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestLimiter(t *testing.T, sendsPerSecond int) (*Limiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewLimiter(client, sendsPerSecond), mr
}

func TestAllow_WithinBudget(t *testing.T) {
	l, _ := newTestLimiter(t, 3)
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return fixed }
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, err := l.Allow(ctx)
		if err != nil {
			t.Fatalf("Allow #%d: %v", i, err)
		}
		if !allowed {
			t.Fatalf("Allow #%d denied inside the budget", i)
		}
	}

	allowed, err := l.Allow(ctx)
	if err != nil {
		t.Fatalf("Allow: %v", err)
	}
	if allowed {
		t.Error("fourth send in the same second must be denied")
	}
}

func TestAllow_BucketRollsOver(t *testing.T) {
	l, _ := newTestLimiter(t, 1)
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return fixed }
	ctx := context.Background()

	if allowed, _ := l.Allow(ctx); !allowed {
		t.Fatal("first send denied")
	}
	if allowed, _ := l.Allow(ctx); allowed {
		t.Fatal("second send in the same second allowed")
	}

	fixed = fixed.Add(time.Second)
	allowed, err := l.Allow(ctx)
	if err != nil {
		t.Fatalf("Allow: %v", err)
	}
	if !allowed {
		t.Error("new second should open a new budget")
	}
}

func TestWait_BlocksUntilSlotOpens(t *testing.T) {
	l, _ := newTestLimiter(t, 1)
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 500_000_000, time.UTC)
	l.now = func() time.Time { return fixed }

	sleeps := 0
	l.sleep = func(_ context.Context, d time.Duration) error {
		sleeps++
		fixed = fixed.Add(d)
		return nil
	}

	ctx := context.Background()
	if err := l.Wait(ctx); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if err := l.Wait(ctx); err != nil {
		t.Fatalf("second Wait: %v", err)
	}
	if sleeps == 0 {
		t.Error("second Wait should have paused for the next bucket")
	}
}

func TestWait_ContextCancelled(t *testing.T) {
	l, _ := newTestLimiter(t, 1)

	ctx := context.Background()
	if err := l.Wait(ctx); err != nil {
		t.Fatalf("Wait: %v", err)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if err := l.Wait(cancelled); err == nil {
		t.Error("Wait must respect context cancellation")
	}
}

func TestAllow_RedisUnavailable(t *testing.T) {
	l, mr := newTestLimiter(t, 1)
	mr.Close()

	if _, err := l.Allow(context.Background()); err == nil {
		t.Error("expected an error when redis is unreachable")
	}
}
