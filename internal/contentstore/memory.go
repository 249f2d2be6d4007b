package contentstore

import (
	"context"
	"fmt"
	"sync"

	"inkwell/internal/errs"

	"github.com/segmentio/ksuid"
)

// MemoryStore is an in-memory Store used in tests and local development.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

// NewMemoryStore creates an empty in-memory content store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string][]byte)}
}

func (s *MemoryStore) Put(_ context.Context, documentID string, content []byte) (string, error) {
	ref := fmt.Sprintf("documents/%s/%s", documentID, ksuid.New().String())

	s.mu.Lock()
	defer s.mu.Unlock()
	buf := make([]byte, len(content))
	copy(buf, content)
	s.objects[ref] = buf
	return ref, nil
}

func (s *MemoryStore) Get(_ context.Context, ref string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	content, ok := s.objects[ref]
	if !ok {
		return nil, errs.NotFound("content not found: %s", ref)
	}
	buf := make([]byte, len(content))
	copy(buf, content)
	return buf, nil
}

// Len returns the number of stored objects.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
