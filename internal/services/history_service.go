package services

import (
	"encoding/json"

	"promptforge/internal/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// HistoryService records executed prompts into the execution_history table.
type HistoryService struct {
	db *gorm.DB
}

func NewHistoryService(db *gorm.DB) *HistoryService {
	return &HistoryService{db: db}
}

// Record persists one execution outcome, success or not.
func (s *HistoryService) Record(prompt string, temperature float64, maxTokens int, result models.ExecutionResult) error {
	usage, err := json.Marshal(result.TokenUsage)
	if err != nil {
		usage = []byte("{}")
	}

	record := models.ExecutionRecord{
		Prompt:        prompt,
		Model:         result.Model,
		Temperature:   temperature,
		MaxTokens:     maxTokens,
		Success:       result.Success,
		Response:      result.Response,
		ErrorMsg:      result.ErrorMessage,
		ExecutionTime: result.ExecutionTime,
		TokenUsage:    datatypes.JSON(usage),
	}
	return s.db.Create(&record).Error
}

// Recent returns the most recent execution records, newest first.
func (s *HistoryService) Recent(limit int) ([]models.ExecutionRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	var records []models.ExecutionRecord
	if err := s.db.Order("created_at desc").Limit(limit).Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
