package document_test

import (
	"testing"

	"github.com/lindstrom-j/docmap/document"
	"github.com/lindstrom-j/docmap/docstore"
	"github.com/lindstrom-j/docmap/docstore/memstore"
)

func allocatorCollection() *document.Collection {
	return document.NewCollection(memstore.New(), document.Config{
		Containers: []document.Container{
			{Name: "tickets", Kind: document.Keyed},
			{Name: "sessions", Kind: document.Ordered},
			{
				Name: "venue",
				Kind: document.Single,
				Children: []document.Container{
					{Name: "rooms", Kind: document.Keyed},
				},
			},
		},
	})
}

func TestNextKeyStartsAtOne(t *testing.T) {
	coll := allocatorCollection()
	doc, err := coll.New(nil)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	for i, expected := range []string{"1", "2", "3"} {
		if key := doc.NextKey(); key != expected {
			t.Errorf("NextKey() #%d = %q, expected %q", i+1, key, expected)
		}
	}
}

func TestNextKeySeedsAboveExistingKeys(t *testing.T) {
	coll := allocatorCollection()
	doc, err := coll.New(docstore.Payload{
		"tickets": map[string]any{
			"3": map[string]any{"holder": "ada"},
			"7": map[string]any{"holder": "grace"},
			"9": map[string]any{"holder": "edsger"},
		},
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if key := doc.NextKey(); key != "a" {
		t.Errorf("NextKey() = %q, expected \"a\"", key)
	}
}

func TestNextKeySeedsAcrossContainerShapes(t *testing.T) {
	coll := allocatorCollection()
	doc, err := coll.New(docstore.Payload{
		"tickets": map[string]any{
			"2": map[string]any{},
		},
		"sessions": []any{
			map[string]any{"_sdkey": "5", "title": "keynote"},
		},
		"venue": map[string]any{
			"rooms": map[string]any{
				"b": map[string]any{},
			},
		},
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	// "b" inside the single container's child is the largest key in use.
	if key := doc.NextKey(); key != "c" {
		t.Errorf("NextKey() = %q, expected \"c\"", key)
	}
}

func TestNextKeyIgnoresNonHexKeys(t *testing.T) {
	coll := allocatorCollection()
	doc, err := coll.New(docstore.Payload{
		"tickets": map[string]any{
			"general-admission": map[string]any{},
			"2":                 map[string]any{},
		},
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if key := doc.NextKey(); key != "3" {
		t.Errorf("NextKey() = %q, expected \"3\"", key)
	}
}

func TestNextKeyIgnoresUndeclaredFields(t *testing.T) {
	coll := allocatorCollection()
	doc, err := coll.New(docstore.Payload{
		"notes": map[string]any{
			"ff": map[string]any{},
		},
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if key := doc.NextKey(); key != "1" {
		t.Errorf("NextKey() = %q, expected \"1\"", key)
	}
}

func TestNextKeyNeverRepeats(t *testing.T) {
	coll := allocatorCollection()
	doc, err := coll.New(nil)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	seen := map[string]bool{}
	for i := 0; i < 1000; i++ {
		key := doc.NextKey()
		if seen[key] {
			t.Fatalf("NextKey() repeated %q after %d allocations", key, i)
		}
		seen[key] = true
	}
}
