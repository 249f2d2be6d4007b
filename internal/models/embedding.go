package models

import (
	"time"

	"github.com/pgvector/pgvector-go"
	"github.com/segmentio/ksuid"
	"gorm.io/gorm"
)

// Embedding stores one vectorized chunk of a document's latest content.
// Chunks are re-indexed whenever a new version is created.
type Embedding struct {
	ID         string          `json:"id" gorm:"type:char(27);primaryKey"`
	DocumentID string          `json:"document_id" gorm:"type:char(27);not null;index"`
	ChunkIndex int             `json:"chunk_index" gorm:"not null"`
	ChunkText  string          `json:"chunk_text" gorm:"type:text;not null"`
	Embedding  pgvector.Vector `json:"-" gorm:"type:vector(1536)"`
	CreatedAt  time.Time       `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	DeletedAt  gorm.DeletedAt  `json:"-" gorm:"column:deleted_at;index"`
}

// BeforeCreate hook generates a KSUID before inserting
func (e *Embedding) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = ksuid.New().String()
	}
	return nil
}

// SearchResult is one semantic search hit.
type SearchResult struct {
	DocumentID string  `json:"document_id"`
	Title      string  `json:"title"`
	ChunkText  string  `json:"chunk_text"`
	Score      float32 `json:"score"`
}
