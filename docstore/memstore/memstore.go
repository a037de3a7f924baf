// Package memstore implements docstore.Store with an in-memory map. It is
// the backend used by tests and works anywhere a single-process store is
// enough; cross-writer conflicts are still detected through the version tag.
package memstore

import (
	"context"
	"sync"

	"github.com/lindstrom-j/docmap/docstore"
	"github.com/lindstrom-j/docmap/internal/hexid"
)

// Store is an in-memory docstore.Store. The zero value is not usable; call
// New.
type Store struct {
	mu   sync.RWMutex
	docs map[string]docstore.Payload
}

var _ docstore.Store = (*Store)(nil)

// New creates an empty in-memory store.
func New() *Store {
	return &Store{docs: make(map[string]docstore.Payload)}
}

// Insert stores a new document under a fresh primary key.
func (s *Store) Insert(ctx context.Context, payload docstore.Payload) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	id := hexid.New()
	payload[docstore.FieldID] = id

	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[id] = docstore.Clone(payload)
	return id, nil
}

// ConditionalReplace swaps the payload only when the stored version tag
// matches. The check and the write happen under one lock.
func (s *Store) ConditionalReplace(ctx context.Context, id, expectedTag string, payload docstore.Payload) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.docs[id]
	if !ok {
		return false, nil
	}
	tag, _ := current[docstore.FieldUpdated].(string)
	if tag != expectedTag {
		return false, nil
	}
	s.docs[id] = docstore.Clone(payload)
	return true, nil
}

// Replace upserts the payload regardless of its version tag.
func (s *Store) Replace(ctx context.Context, id string, payload docstore.Payload) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[id] = docstore.Clone(payload)
	return nil
}

// Delete removes the document at id.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.docs[id]
	delete(s.docs, id)
	return ok, nil
}

// Find returns clones of every matching document.
func (s *Store) Find(ctx context.Context, filter docstore.Filter, projection docstore.Projection) ([]docstore.Payload, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	var results []docstore.Payload
	for _, doc := range s.docs {
		if docstore.Match(doc, filter) {
			results = append(results, docstore.Clone(docstore.Project(doc, projection)))
		}
	}
	return results, nil
}

// FindOne returns a clone of the first matching document.
func (s *Store) FindOne(ctx context.Context, filter docstore.Filter, projection docstore.Projection) (docstore.Payload, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, doc := range s.docs {
		if docstore.Match(doc, filter) {
			return docstore.Clone(docstore.Project(doc, projection)), nil
		}
	}
	return nil, docstore.ErrNotFound
}

// Len reports the number of stored documents.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}
