package repository

import (
	"context"
	"fmt"

	"inkwell/internal/models"

	"gorm.io/gorm"
)

// UsageRepositoryImpl handles the append-only AI usage log using GORM.
// Records are only ever inserted; there is no update or delete path.
type UsageRepositoryImpl struct {
	db *gorm.DB
}

// NewUsageRepository creates a new usage repository
func NewUsageRepository(db *gorm.DB) *UsageRepositoryImpl {
	return &UsageRepositoryImpl{db: db}
}

// Create appends one usage record.
func (r *UsageRepositoryImpl) Create(ctx context.Context, record *models.AIUsageRecord) error {
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("failed to create usage record: %w", err)
	}
	return nil
}

// ListByUser returns all of a user's usage records, oldest first.
func (r *UsageRepositoryImpl) ListByUser(ctx context.Context, userID string) ([]*models.AIUsageRecord, error) {
	var records []*models.AIUsageRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list usage records: %w", err)
	}
	return records, nil
}

// Recent returns the user's newest records, truncated to limit.
func (r *UsageRepositoryImpl) Recent(ctx context.Context, userID string, limit int) ([]*models.AIUsageRecord, error) {
	var records []*models.AIUsageRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list recent usage: %w", err)
	}
	return records, nil
}
