package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"inkwell/internal/errs"
	"inkwell/internal/models"
)

// fakeDocStore is a func-field fake for DocumentRepository.
type fakeDocStore struct {
	createFn        func(context.Context, *models.Document) error
	getByIDFn       func(context.Context, string) (*models.Document, error)
	listFn          func(context.Context, string, int, int) ([]*models.Document, error)
	updateFn        func(context.Context, string, *models.DocumentUpdate) (*models.Document, error)
	deleteCascadeFn func(context.Context, string) error
}

func (f *fakeDocStore) Create(ctx context.Context, doc *models.Document) error {
	if f.createFn != nil {
		return f.createFn(ctx, doc)
	}
	if doc.ID == "" {
		doc.ID = "doc-generated"
	}
	return nil
}

func (f *fakeDocStore) GetByID(ctx context.Context, id string) (*models.Document, error) {
	if f.getByIDFn != nil {
		return f.getByIDFn(ctx, id)
	}
	return nil, errs.NotFound("document not found: %s", id)
}

func (f *fakeDocStore) ListAccessible(ctx context.Context, userID string, limit, offset int) ([]*models.Document, error) {
	if f.listFn != nil {
		return f.listFn(ctx, userID, limit, offset)
	}
	return nil, nil
}

func (f *fakeDocStore) Update(ctx context.Context, id string, update *models.DocumentUpdate) (*models.Document, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, id, update)
	}
	return &models.Document{ID: id}, nil
}

func (f *fakeDocStore) DeleteCascade(ctx context.Context, id string) error {
	if f.deleteCascadeFn != nil {
		return f.deleteCascadeFn(ctx, id)
	}
	return nil
}

// memVersionStore mimics the ledger semantics: per-document max+1 numbering
// and NotFound when the document has vanished.
type memVersionStore struct {
	mu       sync.Mutex
	versions map[string][]*models.Version
	docs     *fakeDocStore
}

func newMemVersionStore(docs *fakeDocStore) *memVersionStore {
	return &memVersionStore{versions: make(map[string][]*models.Version), docs: docs}
}

func (m *memVersionStore) Create(ctx context.Context, version *models.Version) error {
	if m.docs != nil {
		if _, err := m.docs.GetByID(ctx, version.DocumentID); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	version.VersionNumber = len(m.versions[version.DocumentID]) + 1
	version.ID = "v-generated"
	version.CreatedAt = time.Now()
	m.versions[version.DocumentID] = append(m.versions[version.DocumentID], version)
	return nil
}

func (m *memVersionStore) ListByDocument(_ context.Context, documentID string) ([]*models.Version, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.Version, len(m.versions[documentID]))
	copy(out, m.versions[documentID])
	sort.Slice(out, func(i, j int) bool { return out[i].VersionNumber > out[j].VersionNumber })
	return out, nil
}

func (m *memVersionStore) GetByNumber(_ context.Context, documentID string, number int) (*models.Version, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range m.versions[documentID] {
		if v.VersionNumber == number {
			return v, nil
		}
	}
	return nil, errs.NotFound("version %d not found for document %s", number, documentID)
}

func (m *memVersionStore) Latest(_ context.Context, documentID string) (*models.Version, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	versions := m.versions[documentID]
	if len(versions) == 0 {
		return nil, errs.NotFound("document %s has no versions", documentID)
	}
	return versions[len(versions)-1], nil
}

// memCollabStore mimics the (document, user) unique-index upsert.
type memCollabStore struct {
	mu     sync.Mutex
	grants map[string]*models.Collaboration // key: documentID + "/" + userID
}

func newMemCollabStore() *memCollabStore {
	return &memCollabStore{grants: make(map[string]*models.Collaboration)}
}

func (m *memCollabStore) key(documentID, userID string) string {
	return documentID + "/" + userID
}

func (m *memCollabStore) Upsert(_ context.Context, collab *models.Collaboration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.grants[m.key(collab.DocumentID, collab.UserID)]; ok {
		existing.PermissionLevel = collab.PermissionLevel
		existing.UpdatedAt = time.Now()
		*collab = *existing
		return nil
	}
	collab.ID = "collab-" + collab.UserID
	collab.CreatedAt = time.Now()
	stored := *collab
	m.grants[m.key(collab.DocumentID, collab.UserID)] = &stored
	return nil
}

func (m *memCollabStore) GetGrant(_ context.Context, documentID, userID string) (*models.Collaboration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if grant, ok := m.grants[m.key(documentID, userID)]; ok {
		copied := *grant
		return &copied, nil
	}
	return nil, nil
}

func (m *memCollabStore) ListByDocument(_ context.Context, documentID string) ([]*models.Collaboration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Collaboration
	for _, grant := range m.grants {
		if grant.DocumentID == documentID {
			copied := *grant
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *memCollabStore) Delete(_ context.Context, documentID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := m.key(documentID, userID)
	if _, ok := m.grants[key]; !ok {
		return errs.NotFound("no grant for user %s on document %s", userID, documentID)
	}
	delete(m.grants, key)
	return nil
}

// fakeUserStore is a func-field fake for UserRepository.
type fakeUserStore struct {
	getByIDFn    func(context.Context, string) (*models.User, error)
	getByEmailFn func(context.Context, string) (*models.User, error)
}

func (f *fakeUserStore) GetByID(ctx context.Context, id string) (*models.User, error) {
	if f.getByIDFn != nil {
		return f.getByIDFn(ctx, id)
	}
	return nil, errs.NotFound("user not found: %s", id)
}

func (f *fakeUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if f.getByEmailFn != nil {
		return f.getByEmailFn(ctx, email)
	}
	return nil, errs.NotFound("no user with email %s", email)
}

// memUsageStore is an append-only in-memory usage log.
type memUsageStore struct {
	mu      sync.Mutex
	records []*models.AIUsageRecord
	failing bool
}

func (m *memUsageStore) Create(_ context.Context, record *models.AIUsageRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return errs.Internal("usage store unavailable", nil)
	}
	record.CreatedAt = time.Now()
	copied := *record
	m.records = append(m.records, &copied)
	return nil
}

func (m *memUsageStore) ListByUser(_ context.Context, userID string) ([]*models.AIUsageRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.AIUsageRecord
	for _, r := range m.records {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memUsageStore) Recent(_ context.Context, userID string, limit int) ([]*models.AIUsageRecord, error) {
	records, _ := m.ListByUser(nil, userID)
	m.mu.Lock()
	defer m.mu.Unlock()
	sort.Slice(records, func(i, j int) bool { return records[i].CreatedAt.After(records[j].CreatedAt) })
	if len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

func (m *memUsageStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

// docFixture returns a doc store with one document.
func docFixture(doc *models.Document) *fakeDocStore {
	return &fakeDocStore{
		getByIDFn: func(_ context.Context, id string) (*models.Document, error) {
			if id == doc.ID {
				copied := *doc
				return &copied, nil
			}
			return nil, errs.NotFound("document not found: %s", id)
		},
	}
}
