package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

type widget struct {
	ID     string `json:"id,omitempty"`
	Name   string `json:"name"`
	Color  string `json:"color"`
	Count  int    `json:"count"`
	Active bool   `json:"active"`
}

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestInsertAndFindOne(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.Insert(ctx, "widgets", widget{Name: "gizmo", Color: "red", Count: 3})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if id == "" {
		t.Fatal("Insert returned empty id")
	}

	var got widget
	found, err := s.FindOne(ctx, "widgets", id, &got)
	if err != nil {
		t.Fatalf("FindOne: %v", err)
	}
	if !found {
		t.Fatal("document not found after insert")
	}
	if got.ID != id {
		t.Errorf("document id = %q, want %q", got.ID, id)
	}
	if got.Name != "gizmo" || got.Color != "red" || got.Count != 3 {
		t.Errorf("unexpected document: %+v", got)
	}
}

func TestFindOneAbsent(t *testing.T) {
	s := newTestStore(t)

	var got widget
	found, err := s.FindOne(context.Background(), "widgets", "nope", &got)
	if err != nil {
		t.Fatalf("FindOne: %v", err)
	}
	if found {
		t.Fatal("expected absent document")
	}
}

func TestFindOneWrongCollection(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.Insert(ctx, "widgets", widget{Name: "gizmo"})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}

	var got widget
	found, err := s.FindOne(ctx, "gadgets", id, &got)
	if err != nil {
		t.Fatalf("FindOne: %v", err)
	}
	if found {
		t.Fatal("document leaked across collections")
	}
}

func TestFindManyFilter(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	docs := []widget{
		{Name: "a", Color: "red", Count: 1, Active: true},
		{Name: "b", Color: "red", Count: 2, Active: false},
		{Name: "c", Color: "blue", Count: 1, Active: true},
	}
	for _, d := range docs {
		if _, err := s.Insert(ctx, "widgets", d); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}

	var red []widget
	if err := s.FindMany(ctx, "widgets", Filter{"color": "red"}, &red); err != nil {
		t.Fatalf("FindMany: %v", err)
	}
	if len(red) != 2 {
		t.Fatalf("got %d red widgets, want 2", len(red))
	}
	// Insertion order is preserved
	if red[0].Name != "a" || red[1].Name != "b" {
		t.Errorf("unexpected order: %q, %q", red[0].Name, red[1].Name)
	}

	var redActive []widget
	if err := s.FindMany(ctx, "widgets", Filter{"color": "red", "active": true}, &redActive); err != nil {
		t.Fatalf("FindMany: %v", err)
	}
	if len(redActive) != 1 || redActive[0].Name != "a" {
		t.Fatalf("conjunction filter failed: %+v", redActive)
	}

	var all []widget
	if err := s.FindMany(ctx, "widgets", nil, &all); err != nil {
		t.Fatalf("FindMany: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d widgets, want 3", len(all))
	}
}

func TestFindManyEmpty(t *testing.T) {
	s := newTestStore(t)

	var got []widget
	if err := s.FindMany(context.Background(), "widgets", nil, &got); err != nil {
		t.Fatalf("FindMany: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("got %d widgets, want 0", len(got))
	}
}

func TestUpdateFields(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.Insert(ctx, "widgets", widget{Name: "gizmo", Color: "red", Count: 3})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}

	err = s.UpdateFields(ctx, "widgets", id, Fields{"color": "green", "count": 7})
	if err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}

	var got widget
	if _, err := s.FindOne(ctx, "widgets", id, &got); err != nil {
		t.Fatalf("FindOne: %v", err)
	}
	if got.Color != "green" || got.Count != 7 {
		t.Errorf("merge failed: %+v", got)
	}
	// Untouched fields survive the merge
	if got.Name != "gizmo" || got.ID != id {
		t.Errorf("merge clobbered fields: %+v", got)
	}
}

func TestUpdateFieldsStructValue(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	type nested struct {
		Widget widget `json:"widget"`
		Label  string `json:"label"`
	}

	id, err := s.Insert(ctx, "boxes", nested{Widget: widget{Name: "old"}, Label: "keep"})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}

	err = s.UpdateFields(ctx, "boxes", id, Fields{"widget": widget{Name: "new", Count: 5}})
	if err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}

	var got nested
	if _, err := s.FindOne(ctx, "boxes", id, &got); err != nil {
		t.Fatalf("FindOne: %v", err)
	}
	if got.Widget.Name != "new" || got.Widget.Count != 5 {
		t.Errorf("struct field not replaced: %+v", got.Widget)
	}
	if got.Label != "keep" {
		t.Errorf("sibling field lost: %+v", got)
	}
}

func TestUpdateFieldsMissingDocument(t *testing.T) {
	s := newTestStore(t)

	err := s.UpdateFields(context.Background(), "widgets", "nope", Fields{"color": "green"})
	if !errors.Is(err, ErrNoDocument) {
		t.Fatalf("got %v, want ErrNoDocument", err)
	}
}

func TestInsertGeneratesDistinctIDs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seen := map[string]bool{}
	for i := 0; i < 10; i++ {
		id, err := s.Insert(ctx, "widgets", widget{Name: "gizmo"})
		if err != nil {
			t.Fatalf("Insert: %v", err)
		}
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}
