// Package storetest checks DocumentStore and PageStore implementations
// against the behavior the editor relies on.
package storetest

import (
	"bytes"
	"canvas-editor/core"
	"context"
	"errors"
	"testing"
)

// TestDocumentStore exercises create and lookup of shared documents.
func TestDocumentStore(t *testing.T, store core.DocumentStore) {
	t.Helper()
	ctx := context.Background()

	testData := `{"version":1,"objects":[]}`
	id, err := store.Create(ctx, &core.SharedDocument{Data: *bytes.NewBufferString(testData)})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if id == "" {
		t.Fatal("Create() returned empty ID")
	}

	doc, err := store.FindID(ctx, id)
	if err != nil {
		t.Fatalf("FindID() failed: %v", err)
	}
	if doc.Data.String() != testData {
		t.Errorf("Data mismatch: got %q, want %q", doc.Data.String(), testData)
	}

	emptyID, err := store.Create(ctx, &core.SharedDocument{})
	if err != nil {
		t.Fatalf("Create() failed for empty document: %v", err)
	}
	if emptyID == id {
		t.Error("Create() reused an ID")
	}
	empty, err := store.FindID(ctx, emptyID)
	if err != nil {
		t.Fatalf("FindID() failed for empty document: %v", err)
	}
	if empty.Data.Len() != 0 {
		t.Errorf("Expected empty document, got %d bytes", empty.Data.Len())
	}

	if _, err := store.FindID(ctx, "01ARZ3NDEKTSV4RRFFQ69G5FAV"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func page(projectID, id, name string, position int) *core.Page {
	return &core.Page{
		ID:         id,
		ProjectID:  projectID,
		Name:       name,
		Data:       `{"version":1,"width":900,"height":1200,"objects":[]}`,
		Width:      900,
		Height:     1200,
		Background: "#ffffff",
		Thumbnail:  "data:image/png;base64,AAAA",
		Position:   position,
	}
}

// TestPageStore exercises the project-scoped page operations.
func TestPageStore(t *testing.T, store core.PageStore) {
	t.Helper()
	ctx := context.Background()

	pages, err := store.List(ctx, "empty-project")
	if err != nil {
		t.Fatalf("List() failed for empty project: %v", err)
	}
	if len(pages) != 0 {
		t.Errorf("Expected no pages, got %d", len(pages))
	}

	for _, p := range []*core.Page{
		page("alpha", "p3", "Page 3", 2),
		page("alpha", "p1", "Page 1", 0),
		page("alpha", "p2", "Page 2", 1),
		page("beta", "p9", "Other", 0),
	} {
		if err := store.Save(ctx, p); err != nil {
			t.Fatalf("Save(%s) failed: %v", p.ID, err)
		}
		if p.CreatedAt.IsZero() || p.UpdatedAt.IsZero() {
			t.Errorf("Save(%s) did not set timestamps", p.ID)
		}
	}

	pages, err = store.List(ctx, "alpha")
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(pages) != 3 {
		t.Fatalf("Expected 3 pages, got %d", len(pages))
	}
	for i, want := range []string{"p1", "p2", "p3"} {
		if pages[i].ID != want {
			t.Errorf("List()[%d] = %s, want %s", i, pages[i].ID, want)
		}
		if pages[i].Data == "" {
			t.Errorf("List()[%d] has no data", i)
		}
		if pages[i].ProjectID != "alpha" {
			t.Errorf("List()[%d] has project %q", i, pages[i].ProjectID)
		}
	}

	got, err := store.Get(ctx, "alpha", "p2")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if got.Name != "Page 2" || got.Width != 900 || got.Background != "#ffffff" || got.Thumbnail == "" {
		t.Errorf("Unexpected page: %+v", got)
	}
	created := got.CreatedAt

	if _, err := store.Get(ctx, "beta", "p2"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Expected ErrNotFound across projects, got %v", err)
	}

	update := page("alpha", "p2", "Renamed", 1)
	update.Locked = true
	if err := store.Save(ctx, update); err != nil {
		t.Fatalf("Save() update failed: %v", err)
	}
	got, err = store.Get(ctx, "alpha", "p2")
	if err != nil {
		t.Fatalf("Get() after update failed: %v", err)
	}
	if got.Name != "Renamed" || !got.Locked {
		t.Errorf("Update not stored: %+v", got)
	}
	if got.CreatedAt.UnixMilli() != created.UnixMilli() {
		t.Errorf("CreatedAt changed on update: %v -> %v", created, got.CreatedAt)
	}

	if err := store.Delete(ctx, "alpha", "p1"); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if _, err := store.Get(ctx, "alpha", "p1"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}
	if err := store.Delete(ctx, "alpha", "p1"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Expected ErrNotFound deleting twice, got %v", err)
	}
	if err := store.Delete(ctx, "beta", "p3"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Expected ErrNotFound deleting across projects, got %v", err)
	}

	pages, err = store.List(ctx, "beta")
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(pages) != 1 || pages[0].ID != "p9" {
		t.Errorf("Project beta not isolated: %d pages", len(pages))
	}
}
