package api

import (
	"context"

	"inkwell/internal/ai"
	"inkwell/internal/models"
	"inkwell/internal/services"
)

// This package is the consumer of the service layer, so the interfaces it
// depends on live here. Only the methods handlers actually call are declared.

// AuthService handles registration and credential checks.
type AuthService interface {
	Register(ctx context.Context, req *models.UserRegister) (*models.User, error)
	Login(ctx context.Context, req *models.UserLogin) (*models.User, error)
	ChangePassword(ctx context.Context, userID, current, next string) error
}

// SessionStore issues and revokes session tokens.
type SessionStore interface {
	Create(ctx context.Context, userID string) (string, error)
	Revoke(ctx context.Context, token string) error
	Ping(ctx context.Context) error
}

// UserDirectory reads and updates user profiles.
type UserDirectory interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	UpdateProfile(ctx context.Context, id string, update *models.UserUpdate) (*models.User, error)
}

// DocumentService is the document CRUD surface.
type DocumentService interface {
	Create(ctx context.Context, ownerID string, req *models.DocumentCreate) (*models.Document, error)
	Get(ctx context.Context, userID, documentID string) (*models.Document, error)
	List(ctx context.Context, userID string, limit, offset int) ([]*models.Document, error)
	Update(ctx context.Context, userID, documentID string, update *models.DocumentUpdate) (*models.Document, error)
	Delete(ctx context.Context, userID, documentID string) error
}

// VersionService is the revision-history surface.
type VersionService interface {
	Create(ctx context.Context, userID, documentID string, req *models.VersionCreate) (*models.Version, error)
	List(ctx context.Context, userID, documentID string) ([]*models.Version, error)
	GetContent(ctx context.Context, userID, documentID string, number int) (*models.Version, []byte, error)
	LatestContent(ctx context.Context, userID, documentID string) (*models.Version, []byte, error)
}

// CollaborationService manages document sharing grants.
type CollaborationService interface {
	Share(ctx context.Context, ownerID, documentID string, req *models.ShareRequest) (*models.Collaboration, error)
	List(ctx context.Context, userID, documentID string) ([]models.Collaborator, error)
	Revoke(ctx context.Context, ownerID, documentID, targetUserID string) error
}

// AITaskService runs AI tasks against documents.
type AITaskService interface {
	Invoke(ctx context.Context, userID string, req services.InvokeRequest) (*ai.TaskResult, error)
}

// UsageService reports AI usage and spend.
type UsageService interface {
	Summarize(ctx context.Context, userID string) (*models.UsageSummary, error)
	Recent(ctx context.Context, userID string, limit int) ([]*models.AIUsageRecord, error)
}

// SearchService runs semantic search over accessible documents.
type SearchService interface {
	Search(ctx context.Context, userID, query string, limit int) ([]*models.SearchResult, error)
}
