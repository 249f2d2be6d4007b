package services

import (
	"context"

	"inkwell/internal/access"
	"inkwell/internal/errs"
	"inkwell/internal/models"
)

// authorizer resolves a caller's effective permission on a document. All
// document-scoped services go through it.
type authorizer struct {
	docs    DocumentRepository
	collabs CollaborationRepository
}

// require loads the document and checks the caller holds at least min.
func (a *authorizer) require(ctx context.Context, documentID, userID string, min access.Level) (*models.Document, error) {
	doc, err := a.docs.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}

	level, err := a.effective(ctx, doc, userID)
	if err != nil {
		return nil, err
	}
	if !access.AtLeast(level, min) {
		return nil, errs.PermissionDenied("requires %s access to document %s", min, documentID)
	}
	return doc, nil
}

// requireOwner loads the document and checks the caller owns it. Owner-only
// actions are not satisfied by an admin-level grant.
func (a *authorizer) requireOwner(ctx context.Context, documentID, userID string) (*models.Document, error) {
	doc, err := a.docs.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if !access.IsOwner(doc, userID) {
		return nil, errs.PermissionDenied("only the document owner may perform this action")
	}
	return doc, nil
}

func (a *authorizer) effective(ctx context.Context, doc *models.Document, userID string) (access.Level, error) {
	if doc.OwnerID == userID {
		// Skip the grant lookup; the owner never has a collaboration row.
		return access.Admin, nil
	}
	grant, err := a.collabs.GetGrant(ctx, doc.ID, userID)
	if err != nil {
		return access.None, err
	}
	return access.Effective(doc, userID, grant), nil
}
