package chat

import (
	"context"
	"encoding/json"
	"log"
	"time"
)

// KV is the minimal key/value surface the guest store needs. The redis
// store implements it; tests use an in-memory map.
type KV interface {
	// Get returns (value, found, error); a missing key is (_, false, nil).
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// GuestStore keeps anonymous sessions per device, the server-side stand-in
// for browser local storage. One JSON-encoded list per device id, entries
// expiring a fixed period after creation.
//
// Failure semantics follow the storage contract: every error is logged and
// swallowed, reads degrade to empty, writes to no-ops. A missing device id
// means "no local storage available" and disables all operations.
type GuestStore struct {
	kv  KV
	ttl time.Duration

	// injectable for tests
	now func() time.Time
}

func NewGuestStore(kv KV, ttl time.Duration) *GuestStore {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &GuestStore{kv: kv, ttl: ttl, now: time.Now}
}

// Save inserts or replaces (by session id) one session in the device's list.
func (s *GuestStore) Save(ctx context.Context, deviceID string, sess *Session) {
	if deviceID == "" || sess == nil {
		return
	}
	sessions := s.load(ctx, deviceID)

	replaced := false
	for i := range sessions {
		if sessions[i].ID == sess.ID {
			sessions[i] = *sess
			replaced = true
			break
		}
	}
	if !replaced {
		sessions = append(sessions, *sess)
	}

	s.persist(ctx, deviceID, sessions)
}

// Get returns the session with the given id, or nil.
func (s *GuestStore) Get(ctx context.Context, deviceID, sessionID string) *Session {
	if deviceID == "" {
		return nil
	}
	for _, sess := range s.load(ctx, deviceID) {
		if sess.ID == sessionID {
			cp := sess
			return &cp
		}
	}
	return nil
}

// ListAll returns every non-expired session; expired entries are removed
// from the persisted list as a side effect.
func (s *GuestStore) ListAll(ctx context.Context, deviceID string) []Session {
	if deviceID == "" {
		return nil
	}
	return s.load(ctx, deviceID)
}

// Delete removes one session by id.
func (s *GuestStore) Delete(ctx context.Context, deviceID, sessionID string) {
	if deviceID == "" {
		return
	}
	sessions := s.load(ctx, deviceID)
	kept := sessions[:0]
	for _, sess := range sessions {
		if sess.ID != sessionID {
			kept = append(kept, sess)
		}
	}
	s.persist(ctx, deviceID, kept)
}

// ClearAll drops the device's entire list.
func (s *GuestStore) ClearAll(ctx context.Context, deviceID string) {
	if deviceID == "" {
		return
	}
	if err := s.kv.Del(ctx, deviceID); err != nil {
		log.Printf("gueststore: clear failed device=%s err=%v", deviceID, err)
	}
}

// load reads the device's list and sweeps expired entries, rewriting the
// stored list when anything was dropped.
func (s *GuestStore) load(ctx context.Context, deviceID string) []Session {
	raw, found, err := s.kv.Get(ctx, deviceID)
	if err != nil {
		log.Printf("gueststore: read failed device=%s err=%v", deviceID, err)
		return nil
	}
	if !found {
		return nil
	}

	var sessions []Session
	if err := json.Unmarshal([]byte(raw), &sessions); err != nil {
		log.Printf("gueststore: corrupted session list device=%s err=%v", deviceID, err)
		return nil
	}

	now := s.now()
	valid := make([]Session, 0, len(sessions))
	for _, sess := range sessions {
		if now.Sub(sess.CreatedAt) < s.ttl {
			valid = append(valid, sess)
		}
	}

	if len(valid) != len(sessions) {
		s.persist(ctx, deviceID, valid)
	}
	return valid
}

func (s *GuestStore) persist(ctx context.Context, deviceID string, sessions []Session) {
	if len(sessions) == 0 {
		if err := s.kv.Del(ctx, deviceID); err != nil {
			log.Printf("gueststore: clear failed device=%s err=%v", deviceID, err)
		}
		return
	}
	b, err := json.Marshal(sessions)
	if err != nil {
		log.Printf("gueststore: encode failed device=%s err=%v", deviceID, err)
		return
	}
	if err := s.kv.Set(ctx, deviceID, string(b), s.ttl); err != nil {
		log.Printf("gueststore: write failed device=%s err=%v", deviceID, err)
	}
}
