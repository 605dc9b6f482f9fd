package models

import (
	"time"

	"gorm.io/datatypes"
)

// ExecutionRecord is one row of the execution history log.
type ExecutionRecord struct {
	ID            uint           `gorm:"primarykey" json:"id"`
	Prompt        string         `gorm:"type:text;not null" json:"prompt"`
	Model         string         `gorm:"not null" json:"model"`
	Temperature   float64        `gorm:"not null" json:"temperature"`
	MaxTokens     int            `json:"max_tokens"`
	Success       bool           `gorm:"not null" json:"success"`
	Response      string         `gorm:"type:text" json:"response"`
	ErrorMsg      string         `json:"error_msg,omitempty"`
	ExecutionTime float64        `json:"execution_time"`
	TokenUsage    datatypes.JSON `json:"token_usage"`
	CreatedAt     time.Time      `gorm:"index" json:"timestamp"`
}

// TableName keeps the table name aligned with the on-disk schema.
func (ExecutionRecord) TableName() string {
	return "execution_history"
}
