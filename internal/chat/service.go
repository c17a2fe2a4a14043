package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mythchat/mythchat/internal/ai"
	"github.com/mythchat/mythchat/internal/common"
	"github.com/mythchat/mythchat/internal/mythology"
	"github.com/mythchat/mythchat/internal/ratelimit"
)

var (
	ErrMissingFields     = errors.New("chat: missing required fields")
	ErrGodNotFound       = errors.New("chat: god not found")
	ErrGodMismatch       = errors.New("chat: god does not belong to the mythology")
	ErrUnresolvedSession = errors.New("chat: no mythology can be resolved for the session")
	ErrNotFound          = errors.New("chat: session not found")
	ErrRateLimited       = errors.New("chat: rate limit exceeded")
	ErrSendInFlight      = errors.New("chat: a send is already in flight for this session")
	ErrUpstreamThrottled = errors.New("chat: upstream model is throttling, try again shortly")
	ErrUpstream          = errors.New("chat: upstream completion failed")
)

// Actor identifies the caller of a session operation: an authenticated
// account, an anonymous device, or both (a logged-in browser still sends
// its device id, which keys the rate limiter).
type Actor struct {
	UserID        uint64
	DeviceID      string
	Authenticated bool
}

// Service owns the chat session lifecycle: resolving or synthesizing the
// session, rate limiting, calling the model, and persisting into whichever
// store the actor's auth state selects.
type Service struct {
	repo     *Repo
	guests   *GuestStore
	myths    *mythology.Repo
	limiter  *ratelimit.Limiter
	registry *ai.Registry
	provider string
	model    string
	window   int

	mu       sync.Mutex
	inflight map[string]struct{}

	// injectable for tests
	now func() time.Time
}

func NewService(repo *Repo, guests *GuestStore, myths *mythology.Repo, limiter *ratelimit.Limiter, registry *ai.Registry, provider, model string, window int) *Service {
	if window <= 0 || window > 100 {
		window = 10
	}
	return &Service{
		repo:     repo,
		guests:   guests,
		myths:    myths,
		limiter:  limiter,
		registry: registry,
		provider: provider,
		model:    model,
		window:   window,
		inflight: make(map[string]struct{}),
		now:      time.Now,
	}
}

// Resolve loads the actor's session by id, or synthesizes an empty one from
// the target mythology/god. Explicit ids win over the pair encoded in the
// session id itself.
func (s *Service) Resolve(ctx context.Context, actor Actor, sessionID, mythologyID, godID string) (*Session, error) {
	if mythologyID == "" {
		if decMyth, decGod, ok := DecodeSessionID(sessionID); ok {
			mythologyID = decMyth
			if godID == "" {
				godID = decGod
			}
		}
	}

	if existing := s.lookup(ctx, actor, sessionID); existing != nil {
		return existing, nil
	}

	if mythologyID == "" {
		return nil, ErrUnresolvedSession
	}

	sess := &Session{
		ID:          sessionID,
		MythologyID: mythologyID,
		CreatedAt:   s.now(),
	}
	if sess.ID == "" {
		sess.ID = EncodeSessionID(mythologyID, godID)
	}

	// Catalog lookups fill display names; a missing mythology row is not
	// fatal (seed data may lag), the generic label stands in.
	sess.MythologyName = "Mitologia"
	if myth, err := s.myths.GetByID(ctx, mythologyID); err == nil {
		sess.MythologyName = myth.Name
	}

	if godID != "" {
		god, err := s.myths.GodByID(ctx, godID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrGodNotFound
			}
			return nil, err
		}
		if god.MythologyID != mythologyID {
			return nil, ErrGodMismatch
		}
		sess.GodID = &god.ID
		name := god.Name
		sess.GodName = &name
	}

	sess.SessionName = sess.DisplayName()
	sess.LastMessageAt = sess.CreatedAt

	// Guests get the empty session persisted right away; account sessions
	// only hit the database on the first message.
	if !actor.Authenticated {
		s.guests.Save(ctx, actor.DeviceID, sess)
	}
	return sess, nil
}

func (s *Service) lookup(ctx context.Context, actor Actor, sessionID string) *Session {
	if sessionID == "" {
		return nil
	}
	if actor.Authenticated {
		sess, err := s.repo.GetSession(ctx, actor.UserID, sessionID)
		if err != nil {
			return nil
		}
		s.fillNames(ctx, sess)
		return sess
	}
	return s.guests.Get(ctx, actor.DeviceID, sessionID)
}

// fillNames resolves display names for a row loaded from the database,
// which stores only the catalog ids.
func (s *Service) fillNames(ctx context.Context, sess *Session) {
	sess.MythologyName = "Mitologia"
	if myth, err := s.myths.GetByID(ctx, sess.MythologyID); err == nil {
		sess.MythologyName = myth.Name
	}
	if sess.GodID != nil {
		if god, err := s.myths.GodByID(ctx, *sess.GodID); err == nil {
			name := god.Name
			sess.GodName = &name
		}
	}
}

type SendInput struct {
	SessionID   string
	MythologyID string
	GodID       string
	Content     string

	// Initial marks a landing-page query carried into a fresh session; it
	// is submitted at most once, so a session that already has messages
	// ignores it.
	Initial bool
}

type SendResult struct {
	Session *Session
	// Reply is nil when the send was skipped (repeated initial query).
	Reply *Message
	// SessionIDChanged reports that the database-assigned id replaced the
	// client-derived one; callers update the address they navigate by.
	SessionIDChanged bool
}

// SendMessage runs one full chat turn. The user message is appended before
// anything can fail, so a throttled or failed turn still returns a
// transcript containing it; only a fully successful turn is persisted.
func (s *Service) SendMessage(ctx context.Context, actor Actor, in SendInput) (*SendResult, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, ErrMissingFields
	}

	sess, err := s.Resolve(ctx, actor, in.SessionID, in.MythologyID, in.GodID)
	if err != nil {
		return nil, err
	}

	if in.Initial && len(sess.Messages) > 0 {
		return &SendResult{Session: sess}, nil
	}

	if !s.acquire(sess.ID) {
		return nil, ErrSendInFlight
	}
	defer s.release(sess.ID)

	priorCount := len(sess.Messages)

	userMsg := Message{
		ID:        newMessageID(),
		Role:      RoleUser,
		Content:   content,
		Timestamp: s.now(),
	}
	sess.Messages = append(sess.Messages, userMsg)

	if !s.limiter.Allow(ctx, actor.DeviceID, actor.Authenticated) {
		return &SendResult{Session: sess}, ErrRateLimited
	}

	history := make([]ai.Message, 0, len(sess.Messages))
	for _, m := range sess.Messages {
		history = append(history, ai.Message{Role: m.Role, Content: m.Content})
	}

	reply, _, err := s.Complete(ctx, CompletionInput{
		MythologyID:   sess.MythologyID,
		MythologyName: sess.MythologyName,
		GodID:         sess.GodID,
		GodName:       sess.GodName,
		Messages:      history,
	})
	if err != nil {
		// the optimistic user message stays in the returned transcript;
		// nothing from the failed turn is persisted
		return &SendResult{Session: sess}, err
	}

	assistantMsg := Message{
		ID:        newMessageID(),
		Role:      RoleAssistant,
		Content:   reply,
		Timestamp: s.now(),
	}
	sess.Messages = append(sess.Messages, assistantMsg)
	sess.LastMessageAt = assistantMsg.Timestamp

	result := &SendResult{Session: sess, Reply: &assistantMsg}

	switch {
	case actor.Authenticated && priorCount == 0:
		// first persistence point for an account session: create the row
		// under a database-assigned id and adopt it
		newID, err := common.NewULID()
		if err != nil {
			return result, err
		}
		sess.ID = newID
		sess.UserID = actor.UserID
		sess.SessionName = sess.DisplayName()
		if err := s.repo.CreateSession(ctx, sess); err != nil {
			return result, err
		}
		result.SessionIDChanged = true

	case actor.Authenticated:
		if err := s.repo.UpdateSessionMessages(ctx, actor.UserID, sess.ID, sess.Messages, sess.LastMessageAt); err != nil {
			return result, err
		}

	default:
		// full-record replace, mirroring the local-storage write
		s.guests.Save(ctx, actor.DeviceID, sess)
	}

	return result, nil
}

// ListSessions returns the actor's sessions from whichever store their auth
// state selects, newest activity first.
func (s *Service) ListSessions(ctx context.Context, actor Actor) ([]Session, error) {
	if actor.Authenticated {
		sessions, err := s.repo.ListSessions(ctx, actor.UserID)
		if err != nil {
			return nil, err
		}
		for i := range sessions {
			s.fillNames(ctx, &sessions[i])
		}
		return sessions, nil
	}
	return s.guests.ListAll(ctx, actor.DeviceID), nil
}

func (s *Service) GetSession(ctx context.Context, actor Actor, id string) (*Session, error) {
	if sess := s.lookup(ctx, actor, id); sess != nil {
		return sess, nil
	}
	return nil, ErrNotFound
}

func (s *Service) DeleteSession(ctx context.Context, actor Actor, id string) error {
	if actor.Authenticated {
		err := s.repo.DeleteSession(ctx, actor.UserID, id)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	s.guests.Delete(ctx, actor.DeviceID, id)
	return nil
}

type CompletionInput struct {
	MythologyID   string
	MythologyName string
	GodID         *string
	GodName       *string
	Messages      []ai.Message
}

// Complete is the gateway operation: resolve the system prompt, truncate
// the history to the most recent window, call the model once. No retries.
func (s *Service) Complete(ctx context.Context, in CompletionInput) (string, time.Time, error) {
	if in.MythologyID == "" || len(in.Messages) == 0 {
		return "", time.Time{}, ErrMissingFields
	}

	var systemPrompt string
	if in.GodID != nil && *in.GodID != "" {
		god, err := s.myths.GodByID(ctx, *in.GodID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return "", time.Time{}, ErrGodNotFound
			}
			return "", time.Time{}, err
		}
		if god.SystemPrompt != nil && *god.SystemPrompt != "" {
			systemPrompt = *god.SystemPrompt
		} else {
			systemPrompt = GodPrompt(god.Name, god.Title, god.Domain, god.Personality, in.MythologyName)
		}
	} else {
		// a missing mythology row falls back to the template with the
		// caller-supplied display name
		myth, err := s.myths.GetByID(ctx, in.MythologyID)
		if err == nil && myth.SystemPrompt != nil && *myth.SystemPrompt != "" {
			systemPrompt = *myth.SystemPrompt
		} else {
			systemPrompt = MythologyPrompt(in.MythologyName)
		}
	}

	recent := in.Messages
	if len(recent) > s.window {
		recent = recent[len(recent)-s.window:]
	}

	payload := make([]ai.Message, 0, len(recent)+1)
	payload = append(payload, ai.Message{Role: "system", Content: systemPrompt})
	payload = append(payload, recent...)

	provider, err := s.registry.Get(ctx, s.provider, s.model)
	if err != nil {
		return "", time.Time{}, err
	}

	reply, err := provider.Chat(ctx, payload)
	if err != nil {
		if errors.Is(err, ai.ErrRateLimited) {
			return "", time.Time{}, ErrUpstreamThrottled
		}
		return "", time.Time{}, errors.Join(ErrUpstream, err)
	}
	return reply, s.now(), nil
}

// Migrate moves every guest session of the device into the actor's account
// store. Guest data is cleared only after all inserts succeeded; replays
// de-duplicate on the origin session id.
func (s *Service) Migrate(ctx context.Context, userID uint64, deviceID string) (int, error) {
	locals := s.guests.ListAll(ctx, deviceID)
	if len(locals) == 0 {
		return 0, nil
	}

	migrated := 0
	for i := range locals {
		local := locals[i]

		id, err := common.NewULID()
		if err != nil {
			return migrated, err
		}
		origin := local.ID

		row := &Session{
			ID:              id,
			UserID:          userID,
			OriginSessionID: &origin,
			MythologyID:     local.MythologyID,
			GodID:           local.GodID,
			SessionName:     local.DisplayName(),
			Messages:        local.Messages,
			CreatedAt:       local.CreatedAt,
			LastMessageAt:   local.lastActivity(),
		}

		created, err := s.repo.CreateMigratedOrSkip(ctx, row)
		if err != nil {
			return migrated, err
		}
		if created {
			migrated++
		}
	}

	s.guests.ClearAll(ctx, deviceID)
	return migrated, nil
}

// Migration job plumbing used by the HTTP handler and the worker.

func (s *Service) CreateJobOrGetExisting(ctx context.Context, job *MigrationJob) (*MigrationJob, bool, error) {
	return s.repo.CreateJobOrGetExisting(ctx, job)
}

func (s *Service) GetJob(ctx context.Context, id string) (*MigrationJob, error) {
	return s.repo.GetJobByID(ctx, id)
}

func (s *Service) RunJob(ctx context.Context, jobID string) error {
	_ = s.repo.UpdateJobStatusRunning(ctx, jobID)

	job, err := s.repo.GetJobByID(ctx, jobID)
	if err != nil {
		return err
	}

	count, err := s.Migrate(ctx, job.UserID, job.DeviceID)
	if err != nil {
		_ = s.repo.MarkJobFailed(ctx, jobID, err.Error())
		return err
	}
	return s.repo.MarkJobSucceeded(ctx, jobID, count)
}

func (s *Service) acquire(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inflight[sessionID]; busy {
		return false
	}
	s.inflight[sessionID] = struct{}{}
	return true
}

func (s *Service) release(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, sessionID)
}

// newMessageID returns a time-ordered identifier (UUIDv7); messages sort
// by id in insertion order.
func newMessageID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
