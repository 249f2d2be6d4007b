package services

import (
	"context"

	"inkwell/internal/ai"
	"inkwell/internal/models"
)

// Interfaces are declared here, where they are consumed, not next to their
// GORM implementations in the repository package.

// DocumentRepository defines what the services need from document storage.
type DocumentRepository interface {
	Create(ctx context.Context, doc *models.Document) error
	GetByID(ctx context.Context, id string) (*models.Document, error)
	ListAccessible(ctx context.Context, userID string, limit, offset int) ([]*models.Document, error)
	Update(ctx context.Context, id string, update *models.DocumentUpdate) (*models.Document, error)
	DeleteCascade(ctx context.Context, id string) error
}

// VersionRepository defines what the services need from the version ledger.
type VersionRepository interface {
	Create(ctx context.Context, version *models.Version) error
	ListByDocument(ctx context.Context, documentID string) ([]*models.Version, error)
	GetByNumber(ctx context.Context, documentID string, number int) (*models.Version, error)
	Latest(ctx context.Context, documentID string) (*models.Version, error)
}

// CollaborationRepository defines what the services need from grant storage.
type CollaborationRepository interface {
	Upsert(ctx context.Context, collab *models.Collaboration) error
	GetGrant(ctx context.Context, documentID, userID string) (*models.Collaboration, error)
	ListByDocument(ctx context.Context, documentID string) ([]*models.Collaboration, error)
	Delete(ctx context.Context, documentID, userID string) error
}

// UserRepository defines what the services need from user storage.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// UsageRepository defines what the services need from the usage log.
type UsageRepository interface {
	Create(ctx context.Context, record *models.AIUsageRecord) error
	ListByUser(ctx context.Context, userID string) ([]*models.AIUsageRecord, error)
	Recent(ctx context.Context, userID string, limit int) ([]*models.AIUsageRecord, error)
}

// EmbeddingRepository defines what the services need from vector storage.
type EmbeddingRepository interface {
	StoreEmbedding(ctx context.Context, embedding *models.Embedding) error
	SemanticSearch(ctx context.Context, userID string, queryEmbedding []float32, limit int) ([]*models.SearchResult, error)
	DeleteByDocumentID(ctx context.Context, docID string) error
}

// ContentStore reads and writes version content by opaque reference.
type ContentStore interface {
	Put(ctx context.Context, documentID string, content []byte) (string, error)
	Get(ctx context.Context, ref string) ([]byte, error)
}

// TaskInvoker runs one AI task against a provider backend.
type TaskInvoker interface {
	Invoke(ctx context.Context, task ai.TaskKind, content string, opts ai.Options) (*ai.TaskResult, error)
}

// Embedder turns a chunk of text into a vector.
type Embedder interface {
	CreateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// EventPublisher pushes document events to live subscribers.
type EventPublisher interface {
	Publish(documentID string, eventType string, payload any)
}
