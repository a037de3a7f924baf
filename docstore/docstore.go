// Package docstore defines the storage primitives the document layer builds on.
//
// A Store holds whole documents keyed by an opaque hex primary key. The
// document layer never reads and re-writes in two steps: the one ordering
// guarantee it needs is that ConditionalReplace checks the version tag and
// replaces the payload in a single atomic operation.
package docstore

import (
	"context"
	"errors"
)

// FieldID is the payload field holding the primary key.
const FieldID = "_id"

// FieldUpdated is the payload field holding the version tag compared by
// ConditionalReplace.
const FieldUpdated = "_updated"

// ErrNotFound is returned when no document matches a lookup.
var ErrNotFound = errors.New("docmap: document not found")

// Payload is a raw document: string keys mapping to arbitrarily nested
// JSON-shaped values (maps, slices, strings, numbers, booleans, nil).
type Payload = map[string]any

// Filter selects documents by top-level field equality. A nil or empty
// filter matches every document.
type Filter = map[string]any

// Projection lists the top-level fields to return. A nil projection returns
// the whole payload. The primary key is always included.
type Projection []string

// Store is implemented by each storage backend.
type Store interface {
	// Insert stores a new document, assigns its primary key, sets the key
	// under FieldID in the payload and returns it.
	Insert(ctx context.Context, payload Payload) (string, error)

	// ConditionalReplace replaces the document at id only if its stored
	// version tag equals expectedTag. It reports whether a replacement
	// happened; a version mismatch or missing document is (false, nil).
	ConditionalReplace(ctx context.Context, id, expectedTag string, payload Payload) (bool, error)

	// Replace upserts the document at id regardless of its version tag.
	Replace(ctx context.Context, id string, payload Payload) error

	// Delete removes the document at id, reporting whether it existed.
	Delete(ctx context.Context, id string) (bool, error)

	// Find returns every document matching filter, trimmed to projection.
	Find(ctx context.Context, filter Filter, projection Projection) ([]Payload, error)

	// FindOne returns the first document matching filter, or ErrNotFound.
	FindOne(ctx context.Context, filter Filter, projection Projection) (Payload, error)
}
