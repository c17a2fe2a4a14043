package mythology

import "time"

// Mythology is a top-level content category (a pantheon). Rows are seeded
// outside the application and read-only here.
type Mythology struct {
	ID           string    `gorm:"primaryKey;size:64" json:"id"`
	Name         string    `gorm:"type:varchar(128);uniqueIndex;not null" json:"name"`
	Description  *string   `gorm:"type:text" json:"description"`
	Region       *string   `gorm:"type:varchar(128)" json:"region"`
	SystemPrompt *string   `gorm:"type:text" json:"system_prompt"`
	ThemeColor   string    `gorm:"type:varchar(16);not null" json:"theme_color"`
	ImageURL     *string   `gorm:"type:varchar(512)" json:"image_url"`
	CreatedAt    time.Time `json:"created_at"`

	Gods []God `gorm:"foreignKey:MythologyID" json:"gods,omitempty"`
}

func (Mythology) TableName() string { return "mythologies" }

// God is a character belonging to one mythology, optionally chattable as a
// first-person persona.
type God struct {
	ID           string    `gorm:"primaryKey;size:64" json:"id"`
	MythologyID  string    `gorm:"size:64;index;not null" json:"mythology_id"`
	Name         string    `gorm:"type:varchar(128);not null" json:"name"`
	Title        *string   `gorm:"type:varchar(255)" json:"title"`
	EntityType   string    `gorm:"type:varchar(32);not null;default:god" json:"entity_type"`
	Domain       *string   `gorm:"type:varchar(255)" json:"domain"`
	Description  *string   `gorm:"type:text" json:"description"`
	Personality  *string   `gorm:"type:text" json:"personality"`
	SystemPrompt *string   `gorm:"type:text" json:"system_prompt"`
	AccentColor  *string   `gorm:"type:varchar(16)" json:"accent_color"`
	AvatarURL    *string   `gorm:"type:varchar(512)" json:"avatar_url"`
	IconURL      *string   `gorm:"type:varchar(512)" json:"icon_url"`
	CreatedAt    time.Time `json:"created_at"`
}

func (God) TableName() string { return "gods" }

// Summary is the lightweight shape served by GET /api/mythologies.
type Summary struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	ThemeColor string `json:"theme_color"`
}
