package docstore_test

import (
	"reflect"
	"testing"

	"github.com/lindstrom-j/docmap/docstore"
)

func TestMatch(t *testing.T) {
	doc := docstore.Payload{
		"_id":    "abc",
		"name":   "spring gala",
		"seats":  200,
		"open":   true,
		"nested": map[string]any{"a": 1},
		"tags":   []any{"x", "y"},
	}

	tests := []struct {
		name     string
		filter   docstore.Filter
		expected bool
	}{
		{"nil filter", nil, true},
		{"empty filter", docstore.Filter{}, true},
		{"string equal", docstore.Filter{"name": "spring gala"}, true},
		{"string differs", docstore.Filter{"name": "other"}, false},
		{"missing field", docstore.Filter{"absent": 1}, false},
		{"int equal", docstore.Filter{"seats": 200}, true},
		{"int vs float from json", docstore.Filter{"seats": float64(200)}, true},
		{"int differs", docstore.Filter{"seats": 300}, false},
		{"bool equal", docstore.Filter{"open": true}, true},
		{"two terms", docstore.Filter{"name": "spring gala", "seats": 200}, true},
		{"one term fails", docstore.Filter{"name": "spring gala", "seats": 1}, false},
		{"nested map equal", docstore.Filter{"nested": map[string]any{"a": 1}}, true},
		{"nested map numeric coercion", docstore.Filter{"nested": map[string]any{"a": float64(1)}}, true},
		{"list equal", docstore.Filter{"tags": []any{"x", "y"}}, true},
		{"list differs", docstore.Filter{"tags": []any{"y", "x"}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := docstore.Match(doc, tt.filter); got != tt.expected {
				t.Errorf("Match() = %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestCloneIsDeep(t *testing.T) {
	original := docstore.Payload{
		"name": "event",
		"venue": map[string]any{
			"city": "singapore",
		},
		"sessions": []any{
			map[string]any{"title": "opening"},
		},
	}

	clone := docstore.Clone(original)
	if !reflect.DeepEqual(original, clone) {
		t.Fatalf("clone differs from original: %v vs %v", clone, original)
	}

	clone["venue"].(map[string]any)["city"] = "oslo"
	clone["sessions"].([]any)[0].(map[string]any)["title"] = "closing"

	if original["venue"].(map[string]any)["city"] != "singapore" {
		t.Error("mutating clone's nested map affected original")
	}
	if original["sessions"].([]any)[0].(map[string]any)["title"] != "opening" {
		t.Error("mutating clone's nested list affected original")
	}
}

func TestCloneNil(t *testing.T) {
	if got := docstore.Clone(nil); got != nil {
		t.Errorf("Clone(nil) = %v, expected nil", got)
	}
}

func TestProject(t *testing.T) {
	doc := docstore.Payload{
		"_id":   "abc",
		"name":  "event",
		"seats": 10,
		"venue": map[string]any{"city": "singapore"},
	}

	tests := []struct {
		name       string
		projection docstore.Projection
		expected   docstore.Payload
	}{
		{"nil returns all", nil, doc},
		{"subset keeps id", docstore.Projection{"name"}, docstore.Payload{"_id": "abc", "name": "event"}},
		{"missing fields ignored", docstore.Projection{"absent"}, docstore.Payload{"_id": "abc"}},
		{"empty keeps only id", docstore.Projection{}, docstore.Payload{"_id": "abc"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := docstore.Project(doc, tt.projection)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Project() = %v, expected %v", got, tt.expected)
			}
		})
	}
}
