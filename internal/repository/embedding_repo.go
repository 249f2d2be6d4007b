package repository

import (
	"context"
	"fmt"

	"inkwell/internal/models"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

// EmbeddingRepositoryImpl handles vector operations using pgvector.
type EmbeddingRepositoryImpl struct {
	db *gorm.DB
}

// NewEmbeddingRepository creates a new embedding repository
func NewEmbeddingRepository(db *gorm.DB) *EmbeddingRepositoryImpl {
	return &EmbeddingRepositoryImpl{db: db}
}

// StoreEmbedding saves one document chunk embedding.
func (r *EmbeddingRepositoryImpl) StoreEmbedding(ctx context.Context, embedding *models.Embedding) error {
	if err := r.db.WithContext(ctx).Create(embedding).Error; err != nil {
		return fmt.Errorf("failed to store embedding: %w", err)
	}
	return nil
}

// SemanticSearch performs vector similarity search with cosine distance. The
// <=> operator comes from pgvector; lower distance means more similar. Hits
// are limited to documents the given user can read: owned, granted, or public.
func (r *EmbeddingRepositoryImpl) SemanticSearch(ctx context.Context, userID string, queryEmbedding []float32, limit int) ([]*models.SearchResult, error) {
	vec := pgvector.NewVector(queryEmbedding)

	var results []*models.SearchResult

	// Raw SQL since GORM has no native vector support.
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			e.document_id,
			d.title,
			e.chunk_text,
			1 - (e.embedding <=> ?) as score
		FROM embeddings e
		JOIN documents d ON d.id = e.document_id
		WHERE e.deleted_at IS NULL AND d.deleted_at IS NULL
		  AND (
			d.owner_id = ?
			OR d.privacy = 'public'
			OR EXISTS (
				SELECT 1 FROM collaborations c
				WHERE c.document_id = d.id AND c.user_id = ?
			)
		  )
		ORDER BY e.embedding <=> ?
		LIMIT ?
	`, vec, userID, userID, vec, limit).Scan(&results).Error

	if err != nil {
		return nil, fmt.Errorf("failed to perform semantic search: %w", err)
	}
	return results, nil
}

// DeleteByDocumentID soft deletes all embeddings for a document, typically
// ahead of a re-index.
func (r *EmbeddingRepositoryImpl) DeleteByDocumentID(ctx context.Context, docID string) error {
	if err := r.db.WithContext(ctx).Where("document_id = ?", docID).Delete(&models.Embedding{}).Error; err != nil {
		return fmt.Errorf("failed to delete embeddings: %w", err)
	}
	return nil
}
