package repository

import (
	"context"
	"errors"
	"fmt"

	"inkwell/internal/errs"
	"inkwell/internal/models"

	"gorm.io/gorm"
)

// DocumentRepositoryImpl handles all database operations for documents using GORM.
type DocumentRepositoryImpl struct {
	db *gorm.DB
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(db *gorm.DB) *DocumentRepositoryImpl {
	return &DocumentRepositoryImpl{db: db}
}

// Create inserts a new document. The KSUID is auto-generated in the
// BeforeCreate hook.
func (r *DocumentRepositoryImpl) Create(ctx context.Context, doc *models.Document) error {
	if err := r.db.WithContext(ctx).Create(doc).Error; err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}
	return nil
}

// GetByID retrieves a document by its KSUID. Soft-deleted documents are
// excluded.
func (r *DocumentRepositoryImpl) GetByID(ctx context.Context, id string) (*models.Document, error) {
	var doc models.Document
	err := r.db.WithContext(ctx).First(&doc, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NotFound("document not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return &doc, nil
}

// ListAccessible returns documents the user owns or has a grant on, newest
// first, with pagination. KSUIDs are time-ordered so sorting by ID is sorting
// by creation time.
func (r *DocumentRepositoryImpl) ListAccessible(ctx context.Context, userID string, limit, offset int) ([]*models.Document, error) {
	var documents []*models.Document

	err := r.db.WithContext(ctx).
		Where("owner_id = ? OR id IN (?)",
			userID,
			r.db.Model(&models.Collaboration{}).Select("document_id").Where("user_id = ?", userID),
		).
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&documents).Error

	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	return documents, nil
}

// Update modifies title/type/privacy/metadata of an existing document. The
// owner reference is never touched.
func (r *DocumentRepositoryImpl) Update(ctx context.Context, id string, update *models.DocumentUpdate) (*models.Document, error) {
	doc, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if update.Title != nil {
		updates["title"] = *update.Title
	}
	if update.Type != nil {
		updates["type"] = *update.Type
	}
	if update.Privacy != nil {
		updates["privacy"] = *update.Privacy
	}
	if update.Metadata != nil {
		updates["metadata"] = update.Metadata
	}

	if len(updates) == 0 {
		return doc, nil
	}

	if err := r.db.WithContext(ctx).Model(doc).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update document: %w", err)
	}
	return doc, nil
}

// DeleteCascade removes a document together with its versions, grants and
// embeddings, and detaches usage records, all in one transaction. Usage rows
// are billing history and must survive the document.
func (r *DocumentRepositoryImpl) DeleteCascade(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&models.Document{}, "id = ?", id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete document: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return errs.NotFound("document not found: %s", id)
		}

		if err := tx.Unscoped().Delete(&models.Version{}, "document_id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete versions: %w", err)
		}
		if err := tx.Unscoped().Delete(&models.Collaboration{}, "document_id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete collaborations: %w", err)
		}
		if err := tx.Where("document_id = ?", id).Delete(&models.Embedding{}).Error; err != nil {
			return fmt.Errorf("failed to delete embeddings: %w", err)
		}
		if err := tx.Model(&models.AIUsageRecord{}).
			Where("document_id = ?", id).
			Update("document_id", nil).Error; err != nil {
			return fmt.Errorf("failed to detach usage records: %w", err)
		}
		return nil
	})
}
