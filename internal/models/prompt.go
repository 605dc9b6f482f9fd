package models

import "time"

// SavedPrompt represents a prompt persisted in the library
type SavedPrompt struct {
	ID          uint       `gorm:"primarykey" json:"id"`
	Title       string     `gorm:"index;not null" json:"title"`
	Content     string     `gorm:"type:text;not null" json:"content"`
	Description string     `json:"description"`
	Category    string     `gorm:"index;not null;default:'General'" json:"category"`
	Tags        StringList `gorm:"type:text" json:"tags"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `gorm:"index" json:"updated_at"`
	UsageCount  int        `gorm:"not null;default:0" json:"usage_count"`
}

// TableName keeps the table name aligned with the on-disk schema.
func (SavedPrompt) TableName() string {
	return "saved_prompts"
}
