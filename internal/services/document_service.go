package services

import (
	"context"
	"fmt"

	"inkwell/internal/access"
	"inkwell/internal/errs"
	"inkwell/internal/models"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Event types published on the document feed.
const (
	EventDocumentUpdated      = "document.updated"
	EventDocumentDeleted      = "document.deleted"
	EventVersionCreated       = "version.created"
	EventCollaborationUpdated = "collaboration.updated"
	EventCollaborationRevoked = "collaboration.revoked"
)

// DocumentService implements document CRUD with access control.
type DocumentService struct {
	docs     DocumentRepository
	versions VersionRepository
	content  ContentStore
	auth     *authorizer
	events   EventPublisher
	indexer  *IndexerService
}

// NewDocumentService creates a new document service
func NewDocumentService(
	docs DocumentRepository,
	versions VersionRepository,
	collabs CollaborationRepository,
	content ContentStore,
	events EventPublisher,
	indexer *IndexerService,
) *DocumentService {
	return &DocumentService{
		docs:     docs,
		versions: versions,
		content:  content,
		auth:     &authorizer{docs: docs, collabs: collabs},
		events:   events,
		indexer:  indexer,
	}
}

func validateDocumentCreate(req *models.DocumentCreate) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Title, validation.Required, validation.Length(1, 500)),
	)
}

// Create makes a new document owned by the caller. When initial content is
// provided it becomes version 1.
func (s *DocumentService) Create(ctx context.Context, ownerID string, req *models.DocumentCreate) (*models.Document, error) {
	if err := validateDocumentCreate(req); err != nil {
		return nil, errs.InvalidArgument("invalid document: %v", err)
	}
	if req.Type == "" {
		req.Type = models.TypeArticle
	}
	if !req.Type.Valid() {
		return nil, errs.InvalidArgument("unknown document type %q", req.Type)
	}
	if req.Privacy == "" {
		req.Privacy = models.PrivacyPrivate
	}
	if !req.Privacy.Valid() {
		return nil, errs.InvalidArgument("unknown privacy level %q", req.Privacy)
	}

	doc := &models.Document{
		Title:    req.Title,
		Type:     req.Type,
		OwnerID:  ownerID,
		Privacy:  req.Privacy,
		Metadata: req.Metadata,
	}
	if err := s.docs.Create(ctx, doc); err != nil {
		return nil, err
	}

	if req.Content != "" {
		ref, err := s.content.Put(ctx, doc.ID, []byte(req.Content))
		if err != nil {
			return nil, fmt.Errorf("failed to store initial content: %w", err)
		}
		version := &models.Version{
			DocumentID: doc.ID,
			ContentRef: ref,
			Summary:    "Initial version",
			AuthorID:   ownerID,
		}
		if err := s.versions.Create(ctx, version); err != nil {
			return nil, err
		}
		if s.indexer != nil {
			// Indexing is best effort; the document exists either way.
			_ = s.indexer.Submit(IndexJob{DocumentID: doc.ID, Content: req.Content})
		}
	}
	return doc, nil
}

// Get returns a document the caller can read.
func (s *DocumentService) Get(ctx context.Context, userID, documentID string) (*models.Document, error) {
	return s.auth.require(ctx, documentID, userID, access.Read)
}

// List returns documents the caller owns or has a grant on, paginated.
func (s *DocumentService) List(ctx context.Context, userID string, limit, offset int) ([]*models.Document, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.docs.ListAccessible(ctx, userID, limit, offset)
}

// Update modifies title/type/metadata (write access) or privacy (owner only).
func (s *DocumentService) Update(ctx context.Context, userID, documentID string, update *models.DocumentUpdate) (*models.Document, error) {
	if update.Title != nil && *update.Title == "" {
		return nil, errs.InvalidArgument("title must not be empty")
	}
	if update.Type != nil && !update.Type.Valid() {
		return nil, errs.InvalidArgument("unknown document type %q", *update.Type)
	}
	if update.Privacy != nil && !update.Privacy.Valid() {
		return nil, errs.InvalidArgument("unknown privacy level %q", *update.Privacy)
	}

	if update.Privacy != nil {
		if _, err := s.auth.requireOwner(ctx, documentID, userID); err != nil {
			return nil, err
		}
	} else {
		if _, err := s.auth.require(ctx, documentID, userID, access.Write); err != nil {
			return nil, err
		}
	}

	doc, err := s.docs.Update(ctx, documentID, update)
	if err != nil {
		return nil, err
	}

	if s.events != nil {
		s.events.Publish(doc.ID, EventDocumentUpdated, doc)
	}
	return doc, nil
}

// Delete removes a document and everything hanging off it. Owner only; an
// admin-level collaborator cannot delete.
func (s *DocumentService) Delete(ctx context.Context, userID, documentID string) error {
	if _, err := s.auth.requireOwner(ctx, documentID, userID); err != nil {
		return err
	}
	if err := s.docs.DeleteCascade(ctx, documentID); err != nil {
		return err
	}
	if s.events != nil {
		s.events.Publish(documentID, EventDocumentDeleted, map[string]string{"document_id": documentID})
	}
	return nil
}
