package chat

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// Repo is the account-backed session store. Rows are owner-scoped: every
// query carries the user id, and a foreign session reads as not-found.
type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) CreateSession(ctx context.Context, s *Session) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *Repo) GetSession(ctx context.Context, userID uint64, id string) (*Session, error) {
	var s Session
	if err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// ListSessions returns the user's sessions, most recent activity first.
func (r *Repo) ListSessions(ctx context.Context, userID uint64) ([]Session, error) {
	var out []Session
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("last_message_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateSessionMessages replaces the stored transcript and advances
// last_message_at. Last write wins; there is no version check.
func (r *Repo) UpdateSessionMessages(ctx context.Context, userID uint64, id string, messages []Message, lastMessageAt time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&Session{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(Session{Messages: messages, LastMessageAt: lastMessageAt})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *Repo) DeleteSession(ctx context.Context, userID uint64, id string) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&Session{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CreateMigratedOrSkip inserts a migrated session; when the (user, origin)
// pair already exists the insert is skipped and the row left untouched, so
// a replayed migration cannot duplicate.
func (r *Repo) CreateMigratedOrSkip(ctx context.Context, s *Session) (created bool, err error) {
	if s.OriginSessionID == nil || *s.OriginSessionID == "" {
		return false, errors.New("chat: migrated session needs an origin id")
	}

	createErr := r.db.WithContext(ctx).Create(s).Error
	if createErr == nil {
		return true, nil
	}

	var existing Session
	getErr := r.db.WithContext(ctx).
		Where("user_id = ? AND origin_session_id = ?", s.UserID, *s.OriginSessionID).
		First(&existing).Error
	if getErr == nil {
		return false, nil
	}
	if errors.Is(getErr, gorm.ErrRecordNotFound) {
		return false, createErr
	}
	return false, getErr
}

// Migration job CRUD

func (r *Repo) CreateJob(ctx context.Context, job *MigrationJob) error {
	return r.db.WithContext(ctx).Create(job).Error
}

func (r *Repo) GetJobByID(ctx context.Context, id string) (*MigrationJob, error) {
	var j MigrationJob
	if err := r.db.WithContext(ctx).First(&j, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &j, nil
}

func (r *Repo) UpdateJobStatusRunning(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&MigrationJob{}).
		Where("id = ? AND status = ?", id, JobQueued).
		Update("status", JobRunning).Error
}

func (r *Repo) MarkJobSucceeded(ctx context.Context, id string, migrated int) error {
	return r.db.WithContext(ctx).Model(&MigrationJob{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":   JobSucceeded,
			"migrated": migrated,
			"error":    nil,
		}).Error
}

func (r *Repo) MarkJobFailed(ctx context.Context, id string, errMsg string) error {
	return r.db.WithContext(ctx).Model(&MigrationJob{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":   JobFailed,
			"error":    errMsg,
			"migrated": nil,
		}).Error
}

func (r *Repo) getJobByUserAndIdempotencyKey(ctx context.Context, userID uint64, key string) (*MigrationJob, error) {
	var job MigrationJob
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND idempotency_key = ?", userID, key).
		First(&job).Error
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// CreateJobOrGetExisting tries to create a job; if (user_id,
// idempotency_key) already exists it returns the existing job instead.
func (r *Repo) CreateJobOrGetExisting(ctx context.Context, job *MigrationJob) (*MigrationJob, bool, error) {
	if job.IdempotencyKey == nil || *job.IdempotencyKey == "" {
		job.IdempotencyKey = nil
		if err := r.db.WithContext(ctx).Create(job).Error; err != nil {
			return nil, false, err
		}
		return job, true, nil
	}

	err := r.db.WithContext(ctx).Create(job).Error
	if err == nil {
		return job, true, nil
	}

	existing, getErr := r.getJobByUserAndIdempotencyKey(ctx, job.UserID, *job.IdempotencyKey)
	if getErr == nil {
		return existing, false, nil
	}
	if errors.Is(getErr, gorm.ErrRecordNotFound) {
		return nil, false, err
	}
	return nil, false, getErr
}
