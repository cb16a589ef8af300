package editor

import (
	"canvas-editor/core"
	"canvas-editor/scene"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/image/font/gofont/goregular"
)

func TestFontService_Fallback(t *testing.T) {
	fonts := NewFontService(nil, quietLogger())

	if st := fonts.State(FallbackFamily); st != FontReady {
		t.Errorf("Expected fallback ready, got %s", st)
	}
	if fonts.Face("Anything", 12) == nil {
		t.Error("Expected fallback face for an unknown family")
	}
	if st := fonts.EnsureLoaded("Unknown"); st != FontFailed {
		t.Errorf("Expected failed without a fetcher, got %s", st)
	}
}

func TestFontService_DirFetcher(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "Roboto.ttf"), goregular.TTF, 0o644); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}
	fonts := NewFontService(DirFetcher{Dir: dir}, quietLogger())
	ctx := context.Background()

	st, err := fonts.Wait(ctx, "Roboto", 2*time.Second)
	if err != nil {
		t.Fatalf("Wait() failed: %v", err)
	}
	if st != FontReady {
		t.Errorf("Expected ready, got %s", st)
	}
	if fonts.Face("roboto", 16) == nil {
		t.Error("Expected a face for a loaded family")
	}

	st, err = fonts.Wait(ctx, "Missing", 2*time.Second)
	if !errors.Is(err, ErrFontUnavailable) {
		t.Errorf("Expected ErrFontUnavailable, got %v", err)
	}
	if st != FontFailed {
		t.Errorf("Expected failed, got %s", st)
	}
}

func TestDirFetcher_RejectsTraversal(t *testing.T) {
	f := DirFetcher{Dir: t.TempDir()}
	for _, family := range []string{"", "..", "/"} {
		if _, err := f.Fetch(context.Background(), family); !errors.Is(err, ErrFontUnavailable) {
			t.Errorf("Fetch(%q): expected ErrFontUnavailable, got %v", family, err)
		}
	}
}

func TestFontService_Register(t *testing.T) {
	fonts := NewFontService(nil, quietLogger())
	if err := fonts.Register("Broken", []byte("not a font")); err == nil {
		t.Error("Expected error for invalid font data")
	}
	if err := fonts.Register("Custom", goregular.TTF); err != nil {
		t.Fatalf("Register() failed: %v", err)
	}
	if st := fonts.State("custom"); st != FontReady {
		t.Errorf("Expected ready, got %s", st)
	}
}

// slowFetcher blocks until released.
type slowFetcher struct {
	release chan struct{}
}

func (f slowFetcher) Fetch(ctx context.Context, _ string) ([]byte, error) {
	select {
	case <-f.release:
		return goregular.TTF, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func TestFontService_WaitTimeout(t *testing.T) {
	f := slowFetcher{release: make(chan struct{})}
	defer close(f.release)
	fonts := NewFontService(f, quietLogger())

	st, err := fonts.Wait(context.Background(), "Slow", 10*time.Millisecond)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected deadline exceeded, got %v", err)
	}
	if st != FontPending {
		t.Errorf("Expected pending, got %s", st)
	}
}

func TestLoadDocument_RestoresReadyFonts(t *testing.T) {
	fonts := NewFontService(nil, quietLogger())
	if err := fonts.Register("Roboto", goregular.TTF); err != nil {
		t.Fatalf("Register() failed: %v", err)
	}
	e, c, _ := newTestEditor(t, WithFonts(fonts))

	src := scene.New(100, 100)
	text := core.NewObject(core.KindText)
	text.Text = "hello"
	text.FontFamily = FallbackFamily
	text.OriginalFont = "Roboto"
	text.FontSize = 20
	text.Width, text.Height = 100, 24
	src.Add(text)
	doc, err := src.Serialize(core.DocumentKeys...)
	if err != nil {
		t.Fatalf("Serialize() failed: %v", err)
	}
	data, err := doc.Marshal()
	if err != nil {
		t.Fatalf("Marshal() failed: %v", err)
	}

	if err := e.LoadDocument(data); err != nil {
		t.Fatalf("LoadDocument() failed: %v", err)
	}
	loaded := c.Find(text.ID)
	if loaded == nil {
		t.Fatal("Text not loaded")
	}
	if loaded.FontFamily != "Roboto" {
		t.Errorf("Expected family restored to Roboto, got %q", loaded.FontFamily)
	}
}
