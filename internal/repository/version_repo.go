package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"inkwell/internal/errs"
	"inkwell/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// VersionRepositoryImpl handles the append-only version ledger using GORM.
type VersionRepositoryImpl struct {
	db *gorm.DB
}

// NewVersionRepository creates a new version repository
func NewVersionRepository(db *gorm.DB) *VersionRepositoryImpl {
	return &VersionRepositoryImpl{db: db}
}

// Create appends a version to the document's ledger. The document row is
// locked for the duration of the transaction so concurrent writers cannot
// compute the same next version number, and the document's updated_at bump
// commits atomically with the new row.
func (r *VersionRepositoryImpl) Create(ctx context.Context, version *models.Version) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var doc models.Document
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&doc, "id = ?", version.DocumentID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Raced with a concurrent delete.
			return errs.NotFound("document not found: %s", version.DocumentID)
		}
		if err != nil {
			return fmt.Errorf("failed to lock document: %w", err)
		}

		var maxNumber int
		err = tx.Model(&models.Version{}).
			Where("document_id = ?", version.DocumentID).
			Select("COALESCE(MAX(version_number), 0)").
			Scan(&maxNumber).Error
		if err != nil {
			return fmt.Errorf("failed to read version counter: %w", err)
		}
		version.VersionNumber = maxNumber + 1

		if err := tx.Create(version).Error; err != nil {
			return fmt.Errorf("failed to create version: %w", err)
		}

		if err := tx.Model(&doc).Update("updated_at", time.Now()).Error; err != nil {
			return fmt.Errorf("failed to bump document timestamp: %w", err)
		}
		return nil
	})
}

// ListByDocument returns a document's versions, most recent first.
func (r *VersionRepositoryImpl) ListByDocument(ctx context.Context, documentID string) ([]*models.Version, error) {
	var versions []*models.Version
	err := r.db.WithContext(ctx).
		Where("document_id = ?", documentID).
		Order("version_number DESC").
		Find(&versions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list versions: %w", err)
	}
	return versions, nil
}

// GetByNumber retrieves one version of a document.
func (r *VersionRepositoryImpl) GetByNumber(ctx context.Context, documentID string, number int) (*models.Version, error) {
	var version models.Version
	err := r.db.WithContext(ctx).
		First(&version, "document_id = ? AND version_number = ?", documentID, number).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NotFound("version %d not found for document %s", number, documentID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get version: %w", err)
	}
	return &version, nil
}

// Latest returns the most recent version of a document, or NotFound if the
// ledger is empty.
func (r *VersionRepositoryImpl) Latest(ctx context.Context, documentID string) (*models.Version, error) {
	var version models.Version
	err := r.db.WithContext(ctx).
		Where("document_id = ?", documentID).
		Order("version_number DESC").
		First(&version).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NotFound("document %s has no versions", documentID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest version: %w", err)
	}
	return &version, nil
}
