package repository

import (
	"context"
	"errors"
	"fmt"

	"inkwell/internal/errs"
	"inkwell/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CollaborationRepositoryImpl handles per-document access grants using GORM.
type CollaborationRepositoryImpl struct {
	db *gorm.DB
}

// NewCollaborationRepository creates a new collaboration repository
func NewCollaborationRepository(db *gorm.DB) *CollaborationRepositoryImpl {
	return &CollaborationRepositoryImpl{db: db}
}

// Upsert creates the grant or, if a row for (document, user) already exists,
// updates its permission level in place. invited_by keeps its original value
// across re-shares; the unique index serializes concurrent upserts.
func (r *CollaborationRepositoryImpl) Upsert(ctx context.Context, collab *models.Collaboration) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "document_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"permission_level", "updated_at"}),
		}).
		Create(collab).Error
	if err != nil {
		return fmt.Errorf("failed to upsert collaboration: %w", err)
	}
	return nil
}

// GetGrant returns the unique grant for (document, user), or nil without
// error when none exists.
func (r *CollaborationRepositoryImpl) GetGrant(ctx context.Context, documentID, userID string) (*models.Collaboration, error) {
	var collab models.Collaboration
	err := r.db.WithContext(ctx).
		First(&collab, "document_id = ? AND user_id = ?", documentID, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get collaboration: %w", err)
	}
	return &collab, nil
}

// ListByDocument returns all grants on a document with their users preloaded.
// Order is not meaningful.
func (r *CollaborationRepositoryImpl) ListByDocument(ctx context.Context, documentID string) ([]*models.Collaboration, error) {
	var collabs []*models.Collaboration
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("document_id = ?", documentID).
		Find(&collabs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list collaborations: %w", err)
	}
	return collabs, nil
}

// Delete removes a user's grant on a document.
func (r *CollaborationRepositoryImpl) Delete(ctx context.Context, documentID, userID string) error {
	result := r.db.WithContext(ctx).
		Delete(&models.Collaboration{}, "document_id = ? AND user_id = ?", documentID, userID)
	if result.Error != nil {
		return fmt.Errorf("failed to delete collaboration: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errs.NotFound("no grant for user %s on document %s", userID, documentID)
	}
	return nil
}
