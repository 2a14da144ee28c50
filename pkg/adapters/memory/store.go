// Package memory provides an in-memory DraftStore, the default for
// single-process editors and tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/espalier/pkg/document"
	"github.com/aretw0/espalier/pkg/domain"
)

// Store implements ports.DraftStore in memory.
// Safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	drafts map[string]*document.Document
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		drafts: make(map[string]*document.Document),
	}
}

// Save persists the draft in memory. The document is deep-copied so later
// caller mutations cannot reach the stored version.
func (s *Store) Save(ctx context.Context, name string, doc *document.Document) error {
	copied := doc.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[name] = copied
	return nil
}

// Load retrieves a draft. The caller gets a copy.
func (s *Store) Load(ctx context.Context, name string) (*document.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.drafts[name]
	if !ok {
		return nil, domain.ErrDraftNotFound
	}
	return doc.Clone(), nil
}

// Delete removes a draft.
func (s *Store) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, name)
	return nil
}

// List returns stored draft names.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.drafts))
	for name := range s.drafts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
