package filesystem

import (
	"canvas-editor/core"
	"canvas-editor/stores/storetest"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestNewStore_CreatesDirectory(t *testing.T) {
	tempDir := filepath.Join(t.TempDir(), "nested", "path")
	store := NewStore(tempDir)

	if store == nil {
		t.Fatal("NewStore() returned nil")
	}
	for _, dir := range []string{documentsDir, projectsDir} {
		if _, err := os.Stat(filepath.Join(tempDir, dir)); os.IsNotExist(err) {
			t.Errorf("NewStore() did not create %s", dir)
		}
	}
}

func TestDocumentStore(t *testing.T) {
	storetest.TestDocumentStore(t, NewStore(t.TempDir()))
}

func TestPageStore(t *testing.T) {
	storetest.TestPageStore(t, NewStore(t.TempDir()))
}

func TestCreate_WritesFile(t *testing.T) {
	tempDir := t.TempDir()
	store := NewStore(tempDir)

	id, err := store.Create(context.Background(), &core.SharedDocument{})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(tempDir, documentsDir, id)); err != nil {
		t.Errorf("Create() did not create file on disk: %v", err)
	}
}

func TestPathTraversal(t *testing.T) {
	tempDir := t.TempDir()
	store := NewStore(tempDir)
	ctx := context.Background()

	if err := os.WriteFile(filepath.Join(tempDir, "secret"), []byte("x"), 0644); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}
	if _, err := store.FindID(ctx, "../secret"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for a traversal id, got %v", err)
	}

	for _, id := range []string{"", "..", "../x", "a/b"} {
		if _, err := store.Get(ctx, "proj", id); !errors.Is(err, core.ErrInvalidArgument) {
			t.Errorf("Get(%q): expected ErrInvalidArgument, got %v", id, err)
		}
		if err := store.Save(ctx, &core.Page{ProjectID: id, ID: "p1"}); !errors.Is(err, core.ErrInvalidArgument) {
			t.Errorf("Save(project %q): expected ErrInvalidArgument, got %v", id, err)
		}
	}
}

func TestList_SkipsCorruptFiles(t *testing.T) {
	tempDir := t.TempDir()
	store := NewStore(tempDir)
	ctx := context.Background()

	if err := store.Save(ctx, &core.Page{ID: "good", ProjectID: "proj", Name: "Good"}); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	dir := filepath.Join(tempDir, projectsDir, "proj")
	if err := os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{"), 0644); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}

	pages, err := store.List(ctx, "proj")
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(pages) != 1 || pages[0].ID != "good" {
		t.Errorf("Expected only the good page, got %d pages", len(pages))
	}
	if _, err := os.Stat(filepath.Join(dir, "good.json.tmp")); !os.IsNotExist(err) {
		t.Error("Temporary file left behind")
	}
}
