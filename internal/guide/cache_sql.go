package guide

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AnswerCacheEntry is one cached answer, keyed by the exact question text.
type AnswerCacheEntry struct {
	Question  string    `gorm:"primaryKey"`
	Answer    string    `gorm:"not null"`
	CreatedAt time.Time
}

// SQLCache keeps answers in the answer_cache_entries table.
type SQLCache struct {
	db *gorm.DB
}

func NewSQLCache(db *gorm.DB) *SQLCache {
	return &SQLCache{db: db}
}

func (c *SQLCache) Get(ctx context.Context, question string) (string, bool, error) {
	var entry AnswerCacheEntry
	err := c.db.WithContext(ctx).Where("question = ?", question).Take(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("cache lookup: %w", err)
	}
	return entry.Answer, true, nil
}

func (c *SQLCache) PutIfAbsent(ctx context.Context, question, answer string) (string, error) {
	entry := AnswerCacheEntry{Question: question, Answer: answer}
	err := c.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&entry).Error
	if err != nil {
		return "", fmt.Errorf("cache store: %w", err)
	}

	stored, ok, err := c.Get(ctx, question)
	if err != nil {
		return "", err
	}
	if !ok {
		return answer, nil
	}
	return stored, nil
}

func (c *SQLCache) Len(ctx context.Context) (int, error) {
	var n int64
	if err := c.db.WithContext(ctx).Model(&AnswerCacheEntry{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("cache size: %w", err)
	}
	return int(n), nil
}
