package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"promptforge/internal/models"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

const (
	promptCacheKeyPrefix = "prompt:id:"
	promptCacheDuration  = 24 * time.Hour

	defaultSearchLimit = 20
)

// LibraryService owns persisted prompts: create, read-by-id, filtered search
// and delete. A nil redis client disables the read cache.
type LibraryService struct {
	db    *gorm.DB
	cache *redis.Client
}

func NewLibraryService(db *gorm.DB, cache *redis.Client) *LibraryService {
	return &LibraryService{db: db, cache: cache}
}

// Save persists a new prompt and returns the freshly read-back record.
func (s *LibraryService) Save(title, content, description, category string, tags []string) (*models.SavedPrompt, error) {
	if category == "" {
		category = "General"
	}
	if tags == nil {
		tags = []string{}
	}

	prompt := &models.SavedPrompt{
		Title:       title,
		Content:     content,
		Description: description,
		Category:    category,
		Tags:        models.StringList(tags),
	}

	if err := s.db.Create(prompt).Error; err != nil {
		return nil, err
	}

	return s.Get(prompt.ID)
}

// Get retrieves a prompt by id. A miss is not an error: (nil, nil).
func (s *LibraryService) Get(id uint) (*models.SavedPrompt, error) {
	cacheKey := fmt.Sprintf("%s%d", promptCacheKeyPrefix, id)

	// Try cache
	if s.cache != nil {
		val, err := s.cache.Get(context.Background(), cacheKey).Result()
		if err == nil {
			var prompt models.SavedPrompt
			if err := json.Unmarshal([]byte(val), &prompt); err == nil {
				return &prompt, nil
			}
		}
	}

	var prompt models.SavedPrompt
	if err := s.db.First(&prompt, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	// Set cache
	if s.cache != nil {
		if data, err := json.Marshal(prompt); err == nil {
			s.cache.Set(context.Background(), cacheKey, data, promptCacheDuration)
		}
	}

	return &prompt, nil
}

// Search filters saved prompts, most-recently-updated first. The query
// matches case-insensitively against title, content or description; category
// is an exact filter. The limit is applied in SQL before the tag post-filter,
// so fewer than limit rows can come back even when more would match on
// query/category alone. That asymmetry is deliberate and load-bearing for
// callers that page by limit.
func (s *LibraryService) Search(query, category string, tags []string, limit int) ([]models.SavedPrompt, error) {
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	db := s.db.Model(&models.SavedPrompt{})
	if query != "" {
		pattern := "%" + query + "%"
		db = db.Where("title LIKE ? OR content LIKE ? OR description LIKE ?", pattern, pattern, pattern)
	}
	if category != "" {
		db = db.Where("category = ?", category)
	}

	var rows []models.SavedPrompt
	if err := db.Order("updated_at desc").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}

	if len(tags) == 0 {
		return rows, nil
	}

	// Tag filter runs client-side: a record passes with at least one tag in
	// common with the filter set.
	results := make([]models.SavedPrompt, 0, len(rows))
	for _, row := range rows {
		for _, tag := range tags {
			if row.Tags.Contains(tag) {
				results = append(results, row)
				break
			}
		}
	}
	return results, nil
}

// Delete removes a prompt by id, reporting whether a record existed.
func (s *LibraryService) Delete(id uint) (bool, error) {
	result := s.db.Delete(&models.SavedPrompt{}, id)
	if result.Error != nil {
		return false, result.Error
	}

	// Invalidate cache
	if s.cache != nil {
		cacheKey := fmt.Sprintf("%s%d", promptCacheKeyPrefix, id)
		s.cache.Del(context.Background(), cacheKey)
	}

	return result.RowsAffected > 0, nil
}
