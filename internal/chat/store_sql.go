package chat

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// SQLStore keeps the transcript in the turns table.
type SQLStore struct {
	db *gorm.DB
}

// NewSQLStore expects the Turn table to be migrated already (see db.Open).
func NewSQLStore(db *gorm.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) Append(ctx context.Context, turn Turn) error {
	turn.ID = 0
	if err := s.db.WithContext(ctx).Create(&turn).Error; err != nil {
		return fmt.Errorf("insert turn: %w", err)
	}
	return nil
}

func (s *SQLStore) List(ctx context.Context) ([]Turn, error) {
	var turns []Turn
	if err := s.db.WithContext(ctx).Order("id asc").Find(&turns).Error; err != nil {
		return nil, fmt.Errorf("list turns: %w", err)
	}
	return turns, nil
}

func (s *SQLStore) Clear(ctx context.Context) error {
	err := s.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&Turn{}).Error
	if err != nil {
		return fmt.Errorf("clear turns: %w", err)
	}
	return nil
}
