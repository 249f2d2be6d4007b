package services

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"inkwell/internal/access"
	"inkwell/internal/errs"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
)

// VersionService implements the append-only version ledger with access
// control.
type VersionService struct {
	versions VersionRepository
	content  ContentStore
	auth     *authorizer
	events   EventPublisher
	indexer  *IndexerService
}

// NewVersionService creates a new version service
func NewVersionService(
	docs DocumentRepository,
	versions VersionRepository,
	collabs CollaborationRepository,
	content ContentStore,
	events EventPublisher,
	indexer *IndexerService,
) *VersionService {
	return &VersionService{
		versions: versions,
		content:  content,
		auth:     &authorizer{docs: docs, collabs: collabs},
		events:   events,
		indexer:  indexer,
	}
}

// Create appends a new version authored by the caller. Requires write access.
// The version number is assigned inside the repository's transaction, so two
// concurrent writers never get the same number.
func (s *VersionService) Create(ctx context.Context, userID, documentID string, req *models.VersionCreate) (*models.Version, error) {
	if req.Content == "" {
		return nil, errs.InvalidArgument("content must not be empty")
	}

	ctx, span := middleware.StartSpan(ctx, "VersionService.Create",
		attribute.String("document.id", documentID),
		attribute.Int("content.bytes", len(req.Content)),
	)
	defer span.End()

	if _, err := s.auth.require(ctx, documentID, userID, access.Write); err != nil {
		return nil, err
	}

	ref, err := s.content.Put(ctx, documentID, []byte(req.Content))
	if err != nil {
		err = fmt.Errorf("failed to store content: %w", err)
		middleware.AddSpanError(ctx, err)
		return nil, err
	}

	version := &models.Version{
		DocumentID: documentID,
		ContentRef: ref,
		Summary:    req.Summary,
		AuthorID:   userID,
	}
	if err := s.versions.Create(ctx, version); err != nil {
		middleware.AddSpanError(ctx, err)
		return nil, err
	}

	middleware.AddSpanEvent(ctx, "version_created",
		attribute.Int("version.number", version.VersionNumber),
	)

	if s.events != nil {
		s.events.Publish(documentID, EventVersionCreated, version)
	}
	if s.indexer != nil {
		_ = s.indexer.Submit(IndexJob{DocumentID: documentID, Content: req.Content})
	}
	return version, nil
}

// List returns a document's versions, most recent first. Requires read
// access.
func (s *VersionService) List(ctx context.Context, userID, documentID string) ([]*models.Version, error) {
	if _, err := s.auth.require(ctx, documentID, userID, access.Read); err != nil {
		return nil, err
	}
	return s.versions.ListByDocument(ctx, documentID)
}

// GetContent fetches the stored text of one version. Requires read access.
func (s *VersionService) GetContent(ctx context.Context, userID, documentID string, number int) (*models.Version, []byte, error) {
	if _, err := s.auth.require(ctx, documentID, userID, access.Read); err != nil {
		return nil, nil, err
	}

	version, err := s.versions.GetByNumber(ctx, documentID, number)
	if err != nil {
		return nil, nil, err
	}
	content, err := s.content.Get(ctx, version.ContentRef)
	if err != nil {
		return nil, nil, err
	}
	return version, content, nil
}

// LatestContent fetches the text of the most recent version. Requires read
// access.
func (s *VersionService) LatestContent(ctx context.Context, userID, documentID string) (*models.Version, []byte, error) {
	if _, err := s.auth.require(ctx, documentID, userID, access.Read); err != nil {
		return nil, nil, err
	}

	version, err := s.versions.Latest(ctx, documentID)
	if err != nil {
		return nil, nil, err
	}
	content, err := s.content.Get(ctx, version.ContentRef)
	if err != nil {
		return nil, nil, err
	}
	return version, content, nil
}
