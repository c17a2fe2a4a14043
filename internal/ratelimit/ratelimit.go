package ratelimit

import (
	"context"
	"log"
	"time"
)

// Record is the single per-device rate state: the window start and the
// number of requests accepted inside it.
type Record struct {
	LastRequest int64 `json:"lastRequest"` // epoch millis
	Count       int   `json:"count"`
}

// Store persists one Record per device key. A missing record returns
// (nil, nil).
type Store interface {
	GetRecord(ctx context.Context, key string) (*Record, error)
	SetRecord(ctx context.Context, key string, rec *Record, ttl time.Duration) error
}

// Limiter is a fixed-window counter: the window start is pinned to the
// first accepted request and only moves once the full window has elapsed.
// Denials never mutate stored state.
type Limiter struct {
	store       Store
	window      time.Duration
	anonCeiling int
	authCeiling int

	// injectable for tests
	now func() time.Time
}

func New(store Store, window time.Duration, anonCeiling, authCeiling int) *Limiter {
	if window <= 0 {
		window = time.Minute
	}
	if anonCeiling <= 0 {
		anonCeiling = 1
	}
	if authCeiling <= 0 {
		authCeiling = 2
	}
	return &Limiter{
		store:       store,
		window:      window,
		anonCeiling: anonCeiling,
		authCeiling: authCeiling,
		now:         time.Now,
	}
}

// Allow reports whether one more request may proceed for the device.
// An empty key or an unreachable store denies: with no durable counter
// there is no way to bound call volume, so the limiter fails closed.
func (l *Limiter) Allow(ctx context.Context, deviceKey string, authenticated bool) bool {
	if deviceKey == "" {
		return false
	}

	ceiling := l.anonCeiling
	if authenticated {
		ceiling = l.authCeiling
	}

	now := l.now()
	rec, err := l.store.GetRecord(ctx, deviceKey)
	if err != nil {
		log.Printf("ratelimit: get record failed key=%s err=%v", deviceKey, err)
		return false
	}

	// First request ever, or the window has elapsed: reset to a fresh window.
	if rec == nil || now.UnixMilli()-rec.LastRequest > l.window.Milliseconds() {
		fresh := &Record{LastRequest: now.UnixMilli(), Count: 1}
		if err := l.store.SetRecord(ctx, deviceKey, fresh, l.recordTTL()); err != nil {
			log.Printf("ratelimit: set record failed key=%s err=%v", deviceKey, err)
			return false
		}
		return true
	}

	if rec.Count < ceiling {
		next := &Record{LastRequest: rec.LastRequest, Count: rec.Count + 1}
		if err := l.store.SetRecord(ctx, deviceKey, next, l.recordTTL()); err != nil {
			log.Printf("ratelimit: set record failed key=%s err=%v", deviceKey, err)
			return false
		}
		return true
	}

	return false
}

// Records only matter within one window; keep them around a little longer
// so a reset after expiry reads state that is clearly stale.
func (l *Limiter) recordTTL() time.Duration {
	return 2 * l.window
}

// SetClock overrides the wall clock. Tests only.
func (l *Limiter) SetClock(now func() time.Time) {
	l.now = now
}
