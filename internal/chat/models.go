package chat

import (
	"fmt"
	"time"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of a conversation. Messages are append-only: once
// created they are never mutated.
type Message struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Session is one conversation scoped to a mythology and optionally one god.
// The same shape serves both backends: guest sessions are JSON-encoded into
// the per-device store, account sessions persist as chat_sessions rows
// (display names are resolved from the catalog, never stored).
type Session struct {
	ID     string `gorm:"primaryKey;size:64" json:"id"`
	UserID uint64 `gorm:"index;index:uniq_user_origin,unique,priority:1" json:"-"`

	// Guest session id this row was migrated from; unique per user so a
	// retried migration cannot double-insert.
	OriginSessionID *string `gorm:"size:64;index:uniq_user_origin,unique,priority:2" json:"-"`

	MythologyID   string  `gorm:"size:64;not null" json:"mythologyId"`
	MythologyName string  `gorm:"-" json:"mythologyName"`
	GodID         *string `gorm:"size:64;index" json:"godId"`
	GodName       *string `gorm:"-" json:"godName"`

	SessionName   string    `gorm:"type:varchar(255)" json:"sessionName"`
	Messages      []Message `gorm:"serializer:json;type:json" json:"messages"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
	LastMessageAt time.Time `gorm:"index" json:"lastMessageAt"`
}

func (Session) TableName() string { return "chat_sessions" }

// DisplayName is the human-readable session name: god name when talking to
// a persona, mythology name when talking to the narrator.
func (s *Session) DisplayName() string {
	if s.GodName != nil && *s.GodName != "" {
		return *s.GodName
	}
	return s.MythologyName
}

// Greeting is the opening line shown before any message exists.
func (s *Session) Greeting() string {
	if s.GodName != nil && *s.GodName != "" {
		return fmt.Sprintf("Witaj, śmiertelniku. Jestem %s. Czego pragniesz ode mnie?", *s.GodName)
	}
	return fmt.Sprintf("Witaj w świecie %s. O czym chcesz się dowiedzieć?", s.MythologyName)
}

// lastActivity derives last_message_at: the newest message's timestamp, or
// the creation time for an empty session.
func (s *Session) lastActivity() time.Time {
	if n := len(s.Messages); n > 0 {
		return s.Messages[n-1].Timestamp
	}
	return s.CreatedAt
}
