package document_test

import (
	"context"
	"errors"
	"testing"

	"github.com/lindstrom-j/docmap/document"
	"github.com/lindstrom-j/docmap/docstore"
	"github.com/lindstrom-j/docmap/docstore/memstore"
)

var (
	tickets  = document.Container{Name: "tickets", Kind: document.Keyed}
	sessions = document.Container{Name: "sessions", Kind: document.Ordered}
	venue    = document.Container{Name: "venue", Kind: document.Single}
)

func eventCollection(store *memstore.Store) *document.Collection {
	return document.NewCollection(store, document.Config{
		Containers: []document.Container{tickets, sessions, venue},
	})
}

func newEvent(t *testing.T) (*document.Collection, *document.Document) {
	t.Helper()
	coll := eventCollection(memstore.New())
	doc, err := coll.New(docstore.Payload{"name": "gophercon"})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return coll, doc
}

func TestKeyedContainer(t *testing.T) {
	_, doc := newEvent(t)
	ctx := context.Background()

	a, err := tickets.Create(ctx, doc, docstore.Payload{"holder": "ada"}, document.CreateOptions{SkipSave: true})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	b, err := tickets.Create(ctx, doc, docstore.Payload{"holder": "grace"}, document.CreateOptions{SkipSave: true})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if a.Key() == b.Key() {
		t.Fatalf("both tickets got key %q", a.Key())
	}

	got, err := tickets.Get(doc, a.Key())
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if holder, _ := got.Get("holder"); holder != "ada" {
		t.Errorf("holder = %v, expected ada", holder)
	}

	if !tickets.Exists(doc, a.Key()) {
		t.Error("Exists() = false for a present key")
	}
	if tickets.Exists(doc, "ffff") {
		t.Error("Exists() = true for an absent key")
	}

	_, err = tickets.Get(doc, "ffff")
	if !errors.Is(err, document.ErrNotFound) {
		t.Errorf("Get() of absent key error = %v, expected ErrNotFound", err)
	}

	if err := tickets.Remove(doc, a.Key()); err != nil {
		t.Fatalf("Remove() error: %v", err)
	}
	if tickets.Exists(doc, a.Key()) {
		t.Error("removed key still exists")
	}
	if err := tickets.Remove(doc, a.Key()); !errors.Is(err, document.ErrNotFound) {
		t.Errorf("double Remove() error = %v, expected ErrNotFound", err)
	}
}

func TestKeyedListOrder(t *testing.T) {
	_, doc := newEvent(t)
	ctx := context.Background()

	// Allocate past "f" so single- and double-digit hex keys mix.
	var keys []string
	for i := 0; i < 18; i++ {
		p, err := tickets.Create(ctx, doc, docstore.Payload{"n": i}, document.CreateOptions{SkipSave: true})
		if err != nil {
			t.Fatalf("Create() error: %v", err)
		}
		keys = append(keys, p.Key())
	}

	listed, err := tickets.List(doc)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(listed) != len(keys) {
		t.Fatalf("List() returned %d proxies, expected %d", len(listed), len(keys))
	}
	// Allocation order is numeric order, so List must return the same
	// sequence even though "10" sorts before "2" lexically.
	for i, p := range listed {
		if p.Key() != keys[i] {
			t.Errorf("List()[%d].Key() = %q, expected %q", i, p.Key(), keys[i])
		}
	}
}

func TestKeyedListOrderCallerKeys(t *testing.T) {
	coll := eventCollection(memstore.New())
	doc, err := coll.New(docstore.Payload{
		"name": "gophercon",
		"tickets": map[string]any{
			"aaa": map[string]any{"n": 1},
			"zz":  map[string]any{"n": 2},
			"b":   map[string]any{"n": 3},
		},
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	listed, err := tickets.List(doc)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	// Shorter keys first, lexical within a length.
	want := []string{"b", "zz", "aaa"}
	if len(listed) != len(want) {
		t.Fatalf("List() returned %d proxies, expected %d", len(listed), len(want))
	}
	for i, p := range listed {
		if p.Key() != want[i] {
			t.Errorf("List()[%d].Key() = %q, expected %q", i, p.Key(), want[i])
		}
	}
}

func TestOrderedContainer(t *testing.T) {
	_, doc := newEvent(t)
	ctx := context.Background()

	for _, title := range []string{"opening", "keynote", "closing"} {
		_, err := sessions.Create(ctx, doc, docstore.Payload{"title": title}, document.CreateOptions{SkipSave: true})
		if err != nil {
			t.Fatalf("Create() error: %v", err)
		}
	}

	listed, err := sessions.List(doc)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(listed) != 3 {
		t.Fatalf("List() returned %d proxies, expected 3", len(listed))
	}
	for i, title := range []string{"opening", "keynote", "closing"} {
		if got, _ := listed[i].Get("title"); got != title {
			t.Errorf("List()[%d].title = %v, expected %q", i, got, title)
		}
	}

	// Elements are addressed by key, never by position.
	middle := listed[1]
	if err := sessions.Remove(doc, listed[0].Key()); err != nil {
		t.Fatalf("Remove() error: %v", err)
	}
	if title, _ := middle.Get("title"); title != "keynote" {
		t.Errorf("proxy drifted after removal: title = %v", title)
	}

	remaining, err := sessions.List(doc)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(remaining) != 2 {
		t.Fatalf("List() returned %d proxies after removal, expected 2", len(remaining))
	}
}

func TestSingleContainer(t *testing.T) {
	_, doc := newEvent(t)
	ctx := context.Background()

	_, err := venue.Get(doc, "")
	if !errors.Is(err, document.ErrNotFound) {
		t.Errorf("Get() of empty single error = %v, expected ErrNotFound", err)
	}

	first, err := venue.Create(ctx, doc, docstore.Payload{"city": "oslo"}, document.CreateOptions{SkipSave: true})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if first.Key() != "0" {
		t.Errorf("single proxy key = %q, expected \"0\"", first.Key())
	}

	// Create on an occupied single container replaces the subdocument.
	_, err = venue.Create(ctx, doc, docstore.Payload{"city": "berlin"}, document.CreateOptions{SkipSave: true})
	if err != nil {
		t.Fatalf("Create() replace error: %v", err)
	}
	got, err := venue.Get(doc, "ignored")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if city, _ := got.Get("city"); city != "berlin" {
		t.Errorf("city = %v, expected berlin", city)
	}

	_, err = venue.List(doc)
	if !errors.Is(err, document.ErrUnsupported) {
		t.Errorf("List() on single error = %v, expected ErrUnsupported", err)
	}

	if err := venue.Remove(doc, ""); err != nil {
		t.Fatalf("Remove() error: %v", err)
	}
	if venue.Exists(doc, "") {
		t.Error("removed single subdocument still exists")
	}
}

func TestRemovedKeyIsNeverReallocated(t *testing.T) {
	_, doc := newEvent(t)
	ctx := context.Background()

	p, err := tickets.Create(ctx, doc, nil, document.CreateOptions{SkipSave: true})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	removed := p.Key()
	if err := tickets.Remove(doc, removed); err != nil {
		t.Fatalf("Remove() error: %v", err)
	}

	next, err := tickets.Create(ctx, doc, nil, document.CreateOptions{SkipSave: true})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if next.Key() == removed {
		t.Errorf("key %q was reallocated after removal", removed)
	}
}

func TestCreateSavesRootByDefault(t *testing.T) {
	store := memstore.New()
	coll := eventCollection(store)
	ctx := context.Background()

	doc, err := coll.New(docstore.Payload{"name": "gophercon"})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if _, err := tickets.Create(ctx, doc, docstore.Payload{"holder": "ada"}, document.CreateOptions{}); err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if !doc.Persisted() {
		t.Fatal("Create() did not save the root document")
	}

	loaded, err := coll.LoadByID(ctx, doc.ID(), document.FindOptions{})
	if err != nil {
		t.Fatalf("LoadByID() error: %v", err)
	}
	stored, err := tickets.List(loaded)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(stored) != 1 {
		t.Fatalf("stored document holds %d tickets, expected 1", len(stored))
	}
	if holder, _ := stored[0].Get("holder"); holder != "ada" {
		t.Errorf("stored holder = %v, expected ada", holder)
	}
}

func TestCreateSkipSaveStaysInMemory(t *testing.T) {
	store := memstore.New()
	coll := eventCollection(store)
	ctx := context.Background()

	doc, err := coll.New(nil)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if _, err := tickets.Create(ctx, doc, nil, document.CreateOptions{SkipSave: true}); err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if doc.Persisted() {
		t.Error("SkipSave create saved the root anyway")
	}
	if store.Len() != 0 {
		t.Errorf("store holds %d documents, expected 0", store.Len())
	}
}

func TestKeysAllocatedAfterReloadDoNotCollide(t *testing.T) {
	store := memstore.New()
	coll := eventCollection(store)
	ctx := context.Background()

	doc, _ := coll.New(nil)
	first, err := tickets.Create(ctx, doc, docstore.Payload{"holder": "ada"}, document.CreateOptions{})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	// A fresh in-memory instance must seed its allocator from the stored
	// payload and keep allocating above the keys already in use.
	reloaded, err := coll.LoadByID(ctx, doc.ID(), document.FindOptions{})
	if err != nil {
		t.Fatalf("LoadByID() error: %v", err)
	}
	second, err := tickets.Create(ctx, reloaded, docstore.Payload{"holder": "grace"}, document.CreateOptions{})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if second.Key() == first.Key() {
		t.Fatalf("reloaded document reallocated key %q", first.Key())
	}

	listed, err := tickets.List(reloaded)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(listed) != 2 {
		t.Errorf("List() returned %d tickets, expected 2", len(listed))
	}
}
