package memstore_test

import (
	"context"
	"errors"
	"testing"

	"github.com/lindstrom-j/docmap/docstore"
	"github.com/lindstrom-j/docmap/docstore/memstore"
	"github.com/lindstrom-j/docmap/internal/hexid"
)

func TestInsertAssignsID(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()

	payload := docstore.Payload{"name": "event"}
	id, err := s.Insert(ctx, payload)
	if err != nil {
		t.Fatalf("Insert() error: %v", err)
	}
	if !hexid.Valid(id) {
		t.Errorf("Insert() assigned invalid id %q", id)
	}
	if payload[docstore.FieldID] != id {
		t.Errorf("Insert() did not set %s in payload", docstore.FieldID)
	}
	if s.Len() != 1 {
		t.Errorf("expected 1 stored document, got %d", s.Len())
	}
}

func TestInsertedPayloadDoesNotAlias(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()

	payload := docstore.Payload{"nested": map[string]any{"a": 1}}
	id, err := s.Insert(ctx, payload)
	if err != nil {
		t.Fatalf("Insert() error: %v", err)
	}

	// Mutate the caller's map after insert; the store must keep its own copy.
	payload["nested"].(map[string]any)["a"] = 2

	stored, err := s.FindOne(ctx, docstore.Filter{docstore.FieldID: id}, nil)
	if err != nil {
		t.Fatalf("FindOne() error: %v", err)
	}
	if got := stored["nested"].(map[string]any)["a"]; got != 1 {
		t.Errorf("stored nested value = %v, expected 1", got)
	}
}

func TestConditionalReplace(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()

	payload := docstore.Payload{"name": "event", docstore.FieldUpdated: "t1"}
	id, err := s.Insert(ctx, payload)
	if err != nil {
		t.Fatalf("Insert() error: %v", err)
	}

	tests := []struct {
		name        string
		id          string
		expectedTag string
		replaced    bool
	}{
		{"matching tag", id, "t1", true},
		{"stale tag", id, "t1", false}, // first case moved the tag to t2
		{"missing document", "ffffffffffffffffffffffffffffffff", "t2", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := docstore.Payload{docstore.FieldID: tt.id, "name": "updated", docstore.FieldUpdated: "t2"}
			replaced, err := s.ConditionalReplace(ctx, tt.id, tt.expectedTag, next)
			if err != nil {
				t.Fatalf("ConditionalReplace() error: %v", err)
			}
			if replaced != tt.replaced {
				t.Errorf("ConditionalReplace() = %v, expected %v", replaced, tt.replaced)
			}
		})
	}
}

func TestReplaceUpserts(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()

	id := "00000000000000000000000000000001"
	if err := s.Replace(ctx, id, docstore.Payload{docstore.FieldID: id, "name": "forced"}); err != nil {
		t.Fatalf("Replace() error: %v", err)
	}

	doc, err := s.FindOne(ctx, docstore.Filter{docstore.FieldID: id}, nil)
	if err != nil {
		t.Fatalf("FindOne() error: %v", err)
	}
	if doc["name"] != "forced" {
		t.Errorf("expected upserted document, got %v", doc)
	}
}

func TestDelete(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()

	id, err := s.Insert(ctx, docstore.Payload{"name": "event"})
	if err != nil {
		t.Fatalf("Insert() error: %v", err)
	}

	existed, err := s.Delete(ctx, id)
	if err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if !existed {
		t.Error("Delete() reported missing for an existing document")
	}

	existed, err = s.Delete(ctx, id)
	if err != nil {
		t.Fatalf("second Delete() error: %v", err)
	}
	if existed {
		t.Error("second Delete() reported the document still existed")
	}
}

func TestFind(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()

	for _, name := range []string{"a", "b", "b"} {
		if _, err := s.Insert(ctx, docstore.Payload{"name": name}); err != nil {
			t.Fatalf("Insert() error: %v", err)
		}
	}

	docs, err := s.Find(ctx, docstore.Filter{"name": "b"}, nil)
	if err != nil {
		t.Fatalf("Find() error: %v", err)
	}
	if len(docs) != 2 {
		t.Errorf("Find() returned %d documents, expected 2", len(docs))
	}

	docs, err = s.Find(ctx, docstore.Filter{"name": "absent"}, nil)
	if err != nil {
		t.Fatalf("Find() error: %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("Find() returned %d documents, expected 0", len(docs))
	}
}

func TestFindOneNotFound(t *testing.T) {
	s := memstore.New()

	_, err := s.FindOne(context.Background(), docstore.Filter{"name": "absent"}, nil)
	if !errors.Is(err, docstore.ErrNotFound) {
		t.Errorf("FindOne() error = %v, expected ErrNotFound", err)
	}
}

func TestFindProjection(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()

	id, err := s.Insert(ctx, docstore.Payload{"name": "event", "seats": 10})
	if err != nil {
		t.Fatalf("Insert() error: %v", err)
	}

	doc, err := s.FindOne(ctx, docstore.Filter{docstore.FieldID: id}, docstore.Projection{"name"})
	if err != nil {
		t.Fatalf("FindOne() error: %v", err)
	}
	if doc["name"] != "event" {
		t.Errorf("projected field missing: %v", doc)
	}
	if _, ok := doc["seats"]; ok {
		t.Errorf("unprojected field present: %v", doc)
	}
	if doc[docstore.FieldID] != id {
		t.Errorf("projection dropped the primary key: %v", doc)
	}
}
