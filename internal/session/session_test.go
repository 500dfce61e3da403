package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/Charbel-5/moondev-coding-challenge/internal/common"
)

func TestExpired(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name         string
		lastActivity time.Time
		timeout      time.Duration
		want         bool
	}{
		{name: "active within timeout", lastActivity: now.Add(-30 * time.Minute), timeout: time.Hour, want: false},
		{name: "exactly at timeout", lastActivity: now.Add(-time.Hour), timeout: time.Hour, want: false},
		{name: "past timeout", lastActivity: now.Add(-61 * time.Minute), timeout: time.Hour, want: true},
		{name: "no recorded activity", lastActivity: time.Time{}, timeout: time.Hour, want: false},
		{name: "tracking disabled", lastActivity: now.Add(-24 * time.Hour), timeout: 0, want: false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Expired(now, tc.lastActivity, tc.timeout); got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func newTestTracker(t *testing.T, timeout time.Duration) (*Tracker, *miniredis.Miniredis, *time.Time) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	current := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tracker := NewTracker(client, timeout)
	tracker.now = func() time.Time { return current }
	return tracker, mr, &current
}

func TestTrackerIdleTimeout(t *testing.T) {
	tracker, _, clock := newTestTracker(t, time.Hour)
	userID := common.NewUUID()
	login := *clock

	tracker.Touch(context.Background(), userID)

	*clock = clock.Add(30 * time.Minute)
	if tracker.ExpiredFor(context.Background(), userID, login) {
		t.Fatal("expected active session within timeout")
	}

	*clock = clock.Add(31 * time.Minute)
	if !tracker.ExpiredFor(context.Background(), userID, login) {
		t.Fatal("expected expired session past timeout")
	}
}

func TestTrackerStaysExpiredHoweverLongIdle(t *testing.T) {
	tracker, mr, clock := newTestTracker(t, time.Hour)
	userID := common.NewUUID()
	login := *clock

	tracker.Touch(context.Background(), userID)
	if ttl := mr.TTL("session:last_activity:" + userID.String()); ttl != 0 {
		t.Fatalf("expected persistent key, got ttl %s", ttl)
	}

	for _, idle := range []time.Duration{61 * time.Minute, 3 * time.Hour, 48 * time.Hour} {
		*clock = login.Add(idle)
		mr.FastForward(idle)
		if !tracker.ExpiredFor(context.Background(), userID, login) {
			t.Fatalf("session came back to life after %s idle", idle)
		}
	}
}

func TestTrackerFreshTokenStartsNewSession(t *testing.T) {
	tracker, _, clock := newTestTracker(t, time.Hour)
	userID := common.NewUUID()
	firstLogin := *clock

	tracker.Touch(context.Background(), userID)

	*clock = clock.Add(3 * time.Hour)
	if !tracker.ExpiredFor(context.Background(), userID, firstLogin) {
		t.Fatal("expected the first session to be expired")
	}

	// The identity provider issued a new token after the recorded
	// activity; that is a new login, not a resumed idle session.
	secondLogin := *clock
	if tracker.ExpiredFor(context.Background(), userID, secondLogin) {
		t.Fatal("expected a freshly issued token to start a new session")
	}
	tracker.Touch(context.Background(), userID)
	*clock = clock.Add(10 * time.Minute)
	if tracker.ExpiredFor(context.Background(), userID, secondLogin) {
		t.Fatal("expected the new session to be active")
	}
}

func TestTrackerUnknownUserIsActive(t *testing.T) {
	tracker, _, _ := newTestTracker(t, time.Hour)
	if tracker.ExpiredFor(context.Background(), common.NewUUID(), time.Time{}) {
		t.Fatal("expected unknown user to count as active")
	}
}

func TestTrackerWithoutRedisStaysActive(t *testing.T) {
	tracker := NewTracker(nil, time.Hour)
	userID := common.NewUUID()

	tracker.Touch(context.Background(), userID)
	if tracker.ExpiredFor(context.Background(), userID, time.Time{}) {
		t.Fatal("expected tracking to be disabled without redis")
	}
}
