package chat

import "time"

type JobStatus string

const (
	JobQueued    JobStatus = "queued"
	JobRunning   JobStatus = "running"
	JobSucceeded JobStatus = "succeeded"
	JobFailed    JobStatus = "failed"
)

// MigrationJob tracks one guest-to-account session migration. The worker
// consumes these from the queue; row-level origin dedupe makes a replayed
// job safe.
type MigrationJob struct {
	ID string `gorm:"primaryKey;size:26" json:"id"` // ULID length

	UserID   uint64 `gorm:"not null;index;index:uniq_user_idempo,unique,priority:1" json:"-"`
	DeviceID string `gorm:"size:64;not null" json:"device_id"`

	IdempotencyKey *string `gorm:"type:varchar(128);index:uniq_user_idempo,unique,priority:2" json:"-"`

	Status JobStatus `gorm:"type:varchar(16);index;not null" json:"status"`

	// Filled when succeeded
	Migrated *int `json:"migrated"`

	// Filled when failed
	Error *string `gorm:"type:text" json:"error"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (MigrationJob) TableName() string { return "migration_jobs" }
