// Package session tracks per-user activity for idle-timeout enforcement.
// The original kept a module-level last-activity timestamp; here the check
// is a pure function and the state lives in redis, owned by the tracker.
package session

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Charbel-5/moondev-coding-challenge/internal/common"
)

// Expired reports whether a session has been idle past the timeout. A zero
// lastActivity means no activity was ever recorded and counts as active.
func Expired(now, lastActivity time.Time, timeout time.Duration) bool {
	if lastActivity.IsZero() || timeout <= 0 {
		return false
	}
	return now.Sub(lastActivity) > timeout
}

// Tracker records last-activity timestamps keyed by user. A nil redis
// client disables tracking entirely (every session stays active).
type Tracker struct {
	rdb     *redis.Client
	timeout time.Duration
	now     func() time.Time
}

func NewTracker(rdb *redis.Client, timeout time.Duration) *Tracker {
	return &Tracker{rdb: rdb, timeout: timeout, now: time.Now}
}

func (t *Tracker) key(userID common.UUID) string {
	return "session:last_activity:" + userID.String()
}

// Touch records activity now. The key carries no TTL: letting it expire
// would turn the longest-idle sessions back into active ones once the
// entry is gone. One key per user, overwritten on every request, bounds
// the footprint; a fresh login supersedes it through the issued-at check.
func (t *Tracker) Touch(ctx context.Context, userID common.UUID) {
	if t == nil || t.rdb == nil {
		return
	}
	value := strconv.FormatInt(t.now().UTC().Unix(), 10)
	_ = t.rdb.Set(ctx, t.key(userID), value, 0).Err()
}

// ExpiredFor reports whether the user's session idled out. A token issued
// after the recorded activity is a new login and starts a new session, so
// an idled-out user is not locked out once the identity provider issues
// them a fresh token. Unknown users (no recorded activity, or redis
// unavailable) are treated as active; the token's own expiry still bounds
// them.
func (t *Tracker) ExpiredFor(ctx context.Context, userID common.UUID, issuedAt time.Time) bool {
	if t == nil || t.rdb == nil {
		return false
	}
	value, err := t.rdb.Get(ctx, t.key(userID)).Result()
	if err != nil {
		return false
	}
	unix, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return false
	}
	lastActivity := time.Unix(unix, 0).UTC()
	if !issuedAt.IsZero() && lastActivity.Before(issuedAt) {
		return false
	}
	return Expired(t.now().UTC(), lastActivity, t.timeout)
}
