package services

import (
	"context"

	"inkwell/internal/access"
	"inkwell/internal/errs"
	"inkwell/internal/models"
)

// CollaborationService manages per-document access grants. All mutations are
// owner-only per policy; a collaborator holding admin cannot re-share.
type CollaborationService struct {
	collabs CollaborationRepository
	users   UserRepository
	auth    *authorizer
	events  EventPublisher
}

// NewCollaborationService creates a new collaboration service
func NewCollaborationService(
	docs DocumentRepository,
	collabs CollaborationRepository,
	users UserRepository,
	events EventPublisher,
) *CollaborationService {
	return &CollaborationService{
		collabs: collabs,
		users:   users,
		auth:    &authorizer{docs: docs, collabs: collabs},
		events:  events,
	}
}

// Share grants targetEmail the given level on the document, or updates the
// existing grant in place. Re-sharing never duplicates the row and never
// rewrites who originally invited the user.
func (s *CollaborationService) Share(ctx context.Context, ownerID, documentID string, req *models.ShareRequest) (*models.Collaboration, error) {
	if !req.PermissionLevel.Valid() {
		return nil, errs.InvalidArgument("unknown permission level %q", req.PermissionLevel)
	}

	doc, err := s.auth.requireOwner(ctx, documentID, ownerID)
	if err != nil {
		return nil, err
	}

	target, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if target.ID == doc.OwnerID {
		// The owner is implicitly admin and never appears in the registry.
		return nil, errs.InvalidArgument("cannot share a document with its owner")
	}

	collab := &models.Collaboration{
		DocumentID:      documentID,
		UserID:          target.ID,
		PermissionLevel: req.PermissionLevel,
		InvitedByID:     ownerID,
	}
	if err := s.collabs.Upsert(ctx, collab); err != nil {
		return nil, err
	}

	if s.events != nil {
		s.events.Publish(documentID, EventCollaborationUpdated, map[string]any{
			"user_id":          target.ID,
			"permission_level": req.PermissionLevel,
		})
	}
	return collab, nil
}

// List returns the document's collaborators. The owner is never among them.
// Requires read access so collaborators can see who else has the document.
func (s *CollaborationService) List(ctx context.Context, userID, documentID string) ([]models.Collaborator, error) {
	if _, err := s.auth.require(ctx, documentID, userID, access.Read); err != nil {
		return nil, err
	}

	collabs, err := s.collabs.ListByDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}

	out := make([]models.Collaborator, 0, len(collabs))
	for _, c := range collabs {
		entry := models.Collaborator{
			PermissionLevel: c.PermissionLevel,
			InvitedByID:     c.InvitedByID,
			GrantedAt:       c.CreatedAt,
		}
		if c.User != nil {
			entry.User = c.User.Public()
		} else {
			entry.User = models.PublicUser{ID: c.UserID}
		}
		out = append(out, entry)
	}
	return out, nil
}

// Revoke removes a user's grant. Owner only.
func (s *CollaborationService) Revoke(ctx context.Context, ownerID, documentID, targetUserID string) error {
	if _, err := s.auth.requireOwner(ctx, documentID, ownerID); err != nil {
		return err
	}
	if err := s.collabs.Delete(ctx, documentID, targetUserID); err != nil {
		return err
	}
	if s.events != nil {
		s.events.Publish(documentID, EventCollaborationRevoked, map[string]string{"user_id": targetUserID})
	}
	return nil
}
