package services

import (
	"context"
	"fmt"
	"testing"

	"inkwell/internal/contentstore"
	"inkwell/internal/errs"
	"inkwell/internal/models"
)

func versionFixture(doc *models.Document, grants *memCollabStore) (*VersionService, *memVersionStore, *contentstore.MemoryStore) {
	docs := docFixture(doc)
	versions := newMemVersionStore(docs)
	content := contentstore.NewMemoryStore()
	svc := NewVersionService(docs, versions, grants, content, nil, nil)
	return svc, versions, content
}

func TestCreateVersionSequentialNumbering(t *testing.T) {
	doc := &models.Document{ID: "doc-1", OwnerID: "owner", Privacy: models.PrivacyPrivate}
	svc, _, _ := versionFixture(doc, newMemCollabStore())
	ctx := context.Background()

	const n = 5
	for i := 1; i <= n; i++ {
		version, err := svc.Create(ctx, "owner", "doc-1", &models.VersionCreate{
			Content: fmt.Sprintf("revision %d", i),
			Summary: fmt.Sprintf("change %d", i),
		})
		if err != nil {
			t.Fatalf("Create %d failed: %v", i, err)
		}
		if version.VersionNumber != i {
			t.Fatalf("version number = %d, want %d", version.VersionNumber, i)
		}
	}

	versions, err := svc.List(ctx, "owner", "doc-1")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(versions) != n {
		t.Fatalf("got %d versions, want %d", len(versions), n)
	}
	// Most recent first, gap-free.
	for i, v := range versions {
		if want := n - i; v.VersionNumber != want {
			t.Errorf("versions[%d].VersionNumber = %d, want %d", i, v.VersionNumber, want)
		}
	}
}

func TestCreateVersionRequiresWrite(t *testing.T) {
	doc := &models.Document{ID: "doc-1", OwnerID: "owner", Privacy: models.PrivacyPrivate}
	grants := newMemCollabStore()
	grants.Upsert(context.Background(), &models.Collaboration{
		DocumentID: "doc-1", UserID: "reader", PermissionLevel: models.PermissionRead, InvitedByID: "owner",
	})
	svc, _, _ := versionFixture(doc, grants)
	ctx := context.Background()

	_, err := svc.Create(ctx, "reader", "doc-1", &models.VersionCreate{Content: "attempt"})
	if !errs.IsKind(err, errs.KindPermissionDenied) {
		t.Fatalf("reader create: expected PermissionDenied, got %v", err)
	}

	// The same reader can still list versions.
	if _, err := svc.List(ctx, "reader", "doc-1"); err != nil {
		t.Fatalf("reader list failed: %v", err)
	}

	// A stranger cannot even list.
	if _, err := svc.List(ctx, "stranger", "doc-1"); !errs.IsKind(err, errs.KindPermissionDenied) {
		t.Fatalf("stranger list: expected PermissionDenied, got %v", err)
	}
}

func TestCreateVersionWriterIsAuthor(t *testing.T) {
	doc := &models.Document{ID: "doc-1", OwnerID: "owner", Privacy: models.PrivacyPrivate}
	grants := newMemCollabStore()
	grants.Upsert(context.Background(), &models.Collaboration{
		DocumentID: "doc-1", UserID: "writer", PermissionLevel: models.PermissionWrite, InvitedByID: "owner",
	})
	svc, _, _ := versionFixture(doc, grants)

	version, err := svc.Create(context.Background(), "writer", "doc-1", &models.VersionCreate{Content: "by a collaborator"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if version.AuthorID != "writer" {
		t.Errorf("author = %s, want writer", version.AuthorID)
	}
}

func TestCreateVersionMissingDocument(t *testing.T) {
	doc := &models.Document{ID: "doc-1", OwnerID: "owner"}
	svc, _, _ := versionFixture(doc, newMemCollabStore())

	_, err := svc.Create(context.Background(), "owner", "doc-gone", &models.VersionCreate{Content: "x"})
	if !errs.IsKind(err, errs.KindNotFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestCreateVersionEmptyContent(t *testing.T) {
	doc := &models.Document{ID: "doc-1", OwnerID: "owner"}
	svc, _, _ := versionFixture(doc, newMemCollabStore())

	_, err := svc.Create(context.Background(), "owner", "doc-1", &models.VersionCreate{})
	if !errs.IsKind(err, errs.KindInvalidArgument) {
		t.Fatalf("expected InvalidArgument, got %v", err)
	}
}

func TestVersionContentRoundTrip(t *testing.T) {
	doc := &models.Document{ID: "doc-1", OwnerID: "owner"}
	svc, _, _ := versionFixture(doc, newMemCollabStore())
	ctx := context.Background()

	if _, err := svc.Create(ctx, "owner", "doc-1", &models.VersionCreate{Content: "first"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := svc.Create(ctx, "owner", "doc-1", &models.VersionCreate{Content: "second"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	version, content, err := svc.GetContent(ctx, "owner", "doc-1", 1)
	if err != nil {
		t.Fatalf("GetContent failed: %v", err)
	}
	if version.VersionNumber != 1 || string(content) != "first" {
		t.Errorf("got v%d %q, want v1 \"first\"", version.VersionNumber, content)
	}

	latest, content, err := svc.LatestContent(ctx, "owner", "doc-1")
	if err != nil {
		t.Fatalf("LatestContent failed: %v", err)
	}
	if latest.VersionNumber != 2 || string(content) != "second" {
		t.Errorf("got v%d %q, want v2 \"second\"", latest.VersionNumber, content)
	}
}
