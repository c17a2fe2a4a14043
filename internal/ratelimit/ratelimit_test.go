package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"
)

type memStore struct {
	recs map[string]*Record
	err  error
}

func newMemStore() *memStore {
	return &memStore{recs: make(map[string]*Record)}
}

func (s *memStore) GetRecord(ctx context.Context, key string) (*Record, error) {
	if s.err != nil {
		return nil, s.err
	}
	rec, ok := s.recs[key]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (s *memStore) SetRecord(ctx context.Context, key string, rec *Record, ttl time.Duration) error {
	if s.err != nil {
		return s.err
	}
	cp := *rec
	s.recs[key] = &cp
	return nil
}

func fixedClock(at *time.Time) func() time.Time {
	return func() time.Time { return *at }
}

func TestAnonymousCeilingWithinWindow(t *testing.T) {
	store := newMemStore()
	l := New(store, time.Minute, 1, 2)
	now := time.Unix(1_700_000_000, 0)
	l.SetClock(fixedClock(&now))

	if !l.Allow(context.Background(), "dev1", false) {
		t.Fatal("first anonymous request should be allowed")
	}
	// strictly inside the window: ceiling 1 is spent
	now = now.Add(10 * time.Second)
	if l.Allow(context.Background(), "dev1", false) {
		t.Fatal("second anonymous request within the window should be denied")
	}
	// denial must not mutate state: still denied, still same window
	if l.Allow(context.Background(), "dev1", false) {
		t.Fatal("repeat denial expected")
	}
	if store.recs["dev1"].Count != 1 {
		t.Fatalf("denials must not mutate stored count, got %d", store.recs["dev1"].Count)
	}
}

func TestAuthenticatedCeiling(t *testing.T) {
	store := newMemStore()
	l := New(store, time.Minute, 1, 2)
	now := time.Unix(1_700_000_000, 0)
	l.SetClock(fixedClock(&now))

	if !l.Allow(context.Background(), "dev1", true) {
		t.Fatal("request 1 allowed")
	}
	now = now.Add(5 * time.Second)
	if !l.Allow(context.Background(), "dev1", true) {
		t.Fatal("request 2 allowed for authenticated caller")
	}
	now = now.Add(5 * time.Second)
	if l.Allow(context.Background(), "dev1", true) {
		t.Fatal("request 3 should be denied")
	}
}

func TestWindowResetAfterElapse(t *testing.T) {
	store := newMemStore()
	l := New(store, time.Minute, 1, 2)
	now := time.Unix(1_700_000_000, 0)
	l.SetClock(fixedClock(&now))

	if !l.Allow(context.Background(), "dev1", false) {
		t.Fatal("first request allowed")
	}
	now = now.Add(30 * time.Second)
	if l.Allow(context.Background(), "dev1", false) {
		t.Fatal("denied inside window")
	}

	// advance past the window measured from the first request
	now = now.Add(31 * time.Second)
	if !l.Allow(context.Background(), "dev1", false) {
		t.Fatal("request after window elapse should reset and be allowed")
	}
	if store.recs["dev1"].Count != 1 {
		t.Fatalf("reset should restart the counter, got %d", store.recs["dev1"].Count)
	}
	if store.recs["dev1"].LastRequest != now.UnixMilli() {
		t.Fatal("reset should restart the window at the current time")
	}
}

func TestWindowStartPreservedOnIncrement(t *testing.T) {
	store := newMemStore()
	l := New(store, time.Minute, 3, 3)
	now := time.Unix(1_700_000_000, 0)
	l.SetClock(fixedClock(&now))

	l.Allow(context.Background(), "dev1", false)
	start := store.recs["dev1"].LastRequest

	now = now.Add(20 * time.Second)
	l.Allow(context.Background(), "dev1", false)
	if store.recs["dev1"].LastRequest != start {
		t.Fatal("increment must keep the original window start")
	}
}

func TestFailClosed(t *testing.T) {
	store := newMemStore()
	l := New(store, time.Minute, 5, 5)

	if l.Allow(context.Background(), "", false) {
		t.Fatal("missing device key must deny")
	}

	store.err = errors.New("store down")
	if l.Allow(context.Background(), "dev1", true) {
		t.Fatal("unreachable store must deny")
	}
}

func TestDevicesAreIndependent(t *testing.T) {
	store := newMemStore()
	l := New(store, time.Minute, 1, 2)
	now := time.Unix(1_700_000_000, 0)
	l.SetClock(fixedClock(&now))

	if !l.Allow(context.Background(), "dev1", false) {
		t.Fatal("dev1 allowed")
	}
	if !l.Allow(context.Background(), "dev2", false) {
		t.Fatal("dev2 should have its own window")
	}
}
