package cli

import (
	"bytes"
	"canvas-editor/core"
	"canvas-editor/editor"
	"canvas-editor/handlers/api/sessions"
	"canvas-editor/stores/memory"
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func newTestCLI(t *testing.T) (*CLI, *bytes.Buffer) {
	t.Helper()
	reg := sessions.NewRegistry(sessions.Options{
		Pages:        memory.NewStore(),
		HistoryLimit: 50,
	})
	t.Cleanup(func() { reg.CloseAll(context.Background()) })

	s, err := reg.Create(context.Background(), "cli-project", editor.Size{Width: 800, Height: 600})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	var out bytes.Buffer
	return New(s, &out), &out
}

func run(t *testing.T, c *CLI, line string) {
	t.Helper()
	if err := c.Execute(context.Background(), ParseArgs(line)); err != nil {
		t.Fatalf("%q failed: %v", line, err)
	}
}

func layerCount(t *testing.T, c *CLI) int {
	t.Helper()
	var n int
	if err := c.Session.Do(context.Background(), func(e *editor.Editor) error {
		n = e.Layers().Len()
		return nil
	}); err != nil {
		t.Fatalf("Do() failed: %v", err)
	}
	return n
}

func TestParseArgs(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"", nil},
		{"undo", []string{"undo"}},
		{"  add   rect ", []string{"add", "rect"}},
		{`add text "hello world"`, []string{"add", "text", "hello world"}},
		{`page rename 01H "" `, []string{"page", "rename", "01H", ""}},
		{"style\tfill red", []string{"style", "fill", "red"}},
	}
	for _, tt := range tests {
		if got := ParseArgs(tt.input); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ParseArgs(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestExecute_AddAndDelete(t *testing.T) {
	c, out := newTestCLI(t)

	run(t, c, "add rect")
	run(t, c, `add text "two words"`)
	run(t, c, `add icon "M 0 0 L 24 0 L 12 24 Z"`)
	run(t, c, "add chart Sales q1=4 q2=7")
	if n := layerCount(t, c); n != 4 {
		t.Fatalf("Expected 4 layers, got %d", n)
	}
	if !strings.Contains(out.String(), "Added text") {
		t.Errorf("Missing add output: %s", out.String())
	}

	run(t, c, "dup")
	run(t, c, "stack back")
	run(t, c, "del")
	if n := layerCount(t, c); n != 4 {
		t.Errorf("Expected 4 layers after dup and del, got %d", n)
	}

	err := c.Execute(context.Background(), ParseArgs("add hexagon"))
	if !errors.Is(err, core.ErrInvalidArgument) {
		t.Errorf("Expected ErrInvalidArgument, got %v", err)
	}
}

func TestChartSpec(t *testing.T) {
	spec := chartSpec([]string{"Revenue", "a=1", "2.5", "b=3"})
	if spec.Title != "Revenue" {
		t.Errorf("Expected title Revenue, got %q", spec.Title)
	}
	if !reflect.DeepEqual(spec.Labels, []string{"a", "2", "b"}) || !reflect.DeepEqual(spec.Values, []float64{1, 2.5, 3}) {
		t.Errorf("Unexpected chart spec: %+v", spec)
	}
}

func TestExecute_Style(t *testing.T) {
	c, out := newTestCLI(t)
	run(t, c, "add rect")

	run(t, c, "style fill #00ff00")
	run(t, c, "style strokeWidth 3")
	if !strings.Contains(out.String(), "fill=#00ff00") || !strings.Contains(out.String(), "strokeWidth=3") {
		t.Errorf("Style not reported: %s", out.String())
	}

	if err := c.Execute(context.Background(), ParseArgs("style strokeWidth wide")); !errors.Is(err, core.ErrInvalidArgument) {
		t.Errorf("Expected ErrInvalidArgument, got %v", err)
	}

	run(t, c, "gradient linear 45 #ff0000:0 #0000ff:100:0.5")
	var got core.GradientDescriptor
	c.Session.Do(context.Background(), func(e *editor.Editor) error {
		got = e.ActiveGradient()
		return nil
	})
	if len(got.Stops) != 2 || got.Stops[0].Opacity != 1 || got.Stops[1].Opacity != 0.5 {
		t.Errorf("Unexpected gradient: %+v", got)
	}
	if err := c.Execute(context.Background(), ParseArgs("gradient linear 0 #fff:0 #000:150")); !errors.Is(err, core.ErrInvalidGradient) {
		t.Errorf("Expected ErrInvalidGradient, got %v", err)
	}
}

func TestExecute_UndoRedo(t *testing.T) {
	c, out := newTestCLI(t)
	run(t, c, "add circle")

	run(t, c, "undo")
	if n := layerCount(t, c); n != 0 {
		t.Errorf("Expected 0 layers after undo, got %d", n)
	}
	run(t, c, "redo")
	if n := layerCount(t, c); n != 1 {
		t.Errorf("Expected 1 layer after redo, got %d", n)
	}
	if !strings.Contains(out.String(), "undo=true redo=false") {
		t.Errorf("History state not reported: %s", out.String())
	}
}

func TestExecute_Pages(t *testing.T) {
	c, out := newTestCLI(t)

	run(t, c, "page add Cover")
	run(t, c, "pages")
	if !strings.Contains(out.String(), "Cover") {
		t.Errorf("New page not listed: %s", out.String())
	}

	var ids []string
	c.Session.Do(context.Background(), func(e *editor.Editor) error {
		for _, p := range e.Pages().Pages() {
			ids = append(ids, p.ID)
		}
		return nil
	})
	run(t, c, "page switch "+ids[0])
	run(t, c, "page rename "+ids[1]+" Back Cover")
	run(t, c, "page move 1 0")
	run(t, c, "page lock "+ids[0])
	if err := c.Execute(context.Background(), ParseArgs("page save")); !errors.Is(err, core.ErrPageLocked) {
		t.Errorf("Expected ErrPageLocked, got %v", err)
	}
	run(t, c, "page del "+ids[1])
	if err := c.Execute(context.Background(), ParseArgs("page del "+ids[0])); !errors.Is(err, core.ErrLastPage) {
		t.Errorf("Expected ErrLastPage, got %v", err)
	}

	run(t, c, "persist")
	if !strings.Contains(out.String(), "Persisted project cli-project") {
		t.Errorf("Persist not reported: %s", out.String())
	}
}

func TestExecute_LayersAndDrawing(t *testing.T) {
	c, out := newTestCLI(t)
	run(t, c, "add rect")

	var id string
	c.Session.Do(context.Background(), func(e *editor.Editor) error {
		id = e.Layers().Layers()[0].ID
		return nil
	})
	run(t, c, "layer opacity "+id+" 0.5")
	run(t, c, "layer lock "+id)
	run(t, c, "layers")
	if !strings.Contains(out.String(), "opacity=0.5 locked") {
		t.Errorf("Layer state not listed: %s", out.String())
	}

	run(t, c, "draw on")
	run(t, c, "draw color #123456")
	run(t, c, "draw width 4")
	run(t, c, "draw erase 30")
	run(t, c, "draw pen")
	run(t, c, "draw clear")
	var settings editor.DrawSettings
	c.Session.Do(context.Background(), func(e *editor.Editor) error {
		settings = e.Drawing().Settings()
		return nil
	})
	if settings.Color != "#123456" || settings.Width != 4 || settings.EraserSize != 30 || settings.Mode != editor.DrawModeDraw {
		t.Errorf("Unexpected draw settings: %+v", settings)
	}
}

func TestExecute_ExportAndLoad(t *testing.T) {
	c, _ := newTestCLI(t)
	dir := t.TempDir()
	run(t, c, "size 320 200")
	run(t, c, "bg color #fafafa")
	run(t, c, "add triangle")

	for _, format := range []string{"png", "svg", "json"} {
		path := filepath.Join(dir, "page."+format)
		run(t, c, "export "+format+" "+path)
		info, err := os.Stat(path)
		if err != nil || info.Size() == 0 {
			t.Errorf("Export %s produced no file: %v", format, err)
		}
	}

	other, _ := newTestCLI(t)
	run(t, other, "load "+filepath.Join(dir, "page.json"))
	if n := layerCount(t, other); n != 1 {
		t.Errorf("Expected 1 layer after load, got %d", n)
	}
	if err := other.Execute(context.Background(), ParseArgs("load "+filepath.Join(dir, "missing.json"))); err == nil {
		t.Error("Expected error for a missing file")
	}
}

func TestExecute_HelpAndExit(t *testing.T) {
	c, out := newTestCLI(t)

	run(t, c, "help")
	if !strings.Contains(out.String(), "Available commands:") || !strings.Contains(out.String(), "gradient") {
		t.Errorf("Unexpected help: %s", out.String())
	}
	out.Reset()
	run(t, c, "help size")
	if !strings.Contains(out.String(), "size <width> <height>") {
		t.Errorf("Unexpected command help: %s", out.String())
	}

	if err := c.Execute(context.Background(), []string{"quit"}); !errors.Is(err, ErrExit) {
		t.Errorf("Expected ErrExit, got %v", err)
	}
	if err := c.Execute(context.Background(), []string{"frobnicate"}); err == nil {
		t.Error("Expected error for an unknown command")
	}
	if err := c.Execute(context.Background(), nil); err != nil {
		t.Errorf("Empty line returned %v", err)
	}
}
