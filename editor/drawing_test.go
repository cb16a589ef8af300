package editor

import (
	"canvas-editor/core"
	"canvas-editor/scene"
	"errors"
	"testing"
)

func drawStroke(c *scene.Canvas, points ...core.Point) {
	c.DispatchPointer(core.EventMouseDown, points[0])
	for _, p := range points[1 : len(points)-1] {
		c.DispatchPointer(core.EventMouseMove, p)
	}
	c.DispatchPointer(core.EventMouseUp, points[len(points)-1])
}

func TestDrawingMode_CapturesStrokes(t *testing.T) {
	e, c, s := newTestEditor(t)
	d := e.Drawing()

	d.EnableDrawingMode()
	if !c.DrawingMode() || !d.Enabled() {
		t.Fatal("Drawing mode not enabled")
	}
	drawStroke(c, core.Point{X: 100, Y: 100}, core.Point{X: 110, Y: 110}, core.Point{X: 120, Y: 120})
	if n := len(d.strokes()); n != 1 {
		t.Fatalf("Expected 1 stroke, got %d", n)
	}
	l := e.Layers().Layers()[0]
	if l.Name != "Drawing" {
		t.Errorf("Expected layer name Drawing, got %q", l.Name)
	}
	settle(s)
	if e.History().Len() != 2 {
		t.Errorf("Stroke not committed: %d snapshots", e.History().Len())
	}

	d.DisableDrawingMode()
	if c.DrawingMode() {
		t.Error("Drawing mode still on")
	}
}

func TestEraser(t *testing.T) {
	e, c, _ := newTestEditor(t)
	d := e.Drawing()
	d.EnableDrawingMode()
	drawStroke(c, core.Point{X: 100, Y: 100}, core.Point{X: 120, Y: 120})
	drawStroke(c, core.Point{X: 400, Y: 400}, core.Point{X: 420, Y: 420})

	if err := d.ChangeDrawSettings(DrawSettings{Mode: DrawModeErase, EraserSize: 20}); err != nil {
		t.Fatalf("ChangeDrawSettings() failed: %v", err)
	}
	if c.DrawingMode() {
		t.Error("Capture still on in erase mode")
	}
	if n := c.ListenerCount(core.EventMouseDown); n != 1 {
		t.Fatalf("Expected 1 mouse:down listener, got %d", n)
	}

	// Moving without a pressed button erases nothing.
	c.DispatchPointer(core.EventMouseMove, core.Point{X: 110, Y: 110})
	if n := len(d.strokes()); n != 2 {
		t.Fatalf("Erased without pressing: %d strokes left", n)
	}

	c.DispatchPointer(core.EventMouseDown, core.Point{X: 300, Y: 300})
	c.DispatchPointer(core.EventMouseMove, core.Point{X: 112, Y: 108})
	c.DispatchPointer(core.EventMouseUp, core.Point{X: 112, Y: 108})

	strokes := d.strokes()
	if len(strokes) != 1 {
		t.Fatalf("Expected 1 stroke left, got %d", len(strokes))
	}
	if strokes[0].Left != 400 {
		t.Error("Wrong stroke erased")
	}

	if err := d.ChangeDrawSettings(DrawSettings{Mode: DrawModeDraw}); err != nil {
		t.Fatalf("ChangeDrawSettings() failed: %v", err)
	}
	if n := c.ListenerCount(core.EventMouseDown); n != 0 {
		t.Errorf("Erase listeners still attached: %d", n)
	}
	if !c.DrawingMode() {
		t.Error("Capture not restored in draw mode")
	}
}

func TestEraser_SkipsShapes(t *testing.T) {
	e, c, _ := newTestEditor(t)
	rect := e.AddRect()
	d := e.Drawing()
	d.EnableDrawingMode()
	if err := d.ChangeDrawSettings(DrawSettings{Mode: DrawModeErase, EraserSize: 1000}); err != nil {
		t.Fatalf("ChangeDrawSettings() failed: %v", err)
	}

	c.DispatchPointer(core.EventMouseDown, rect.Center())
	if c.Find(rect.ID) == nil {
		t.Error("Eraser removed a shape")
	}
}

func TestChangeDrawSettings(t *testing.T) {
	e, c, _ := newTestEditor(t)
	d := e.Drawing()

	if err := d.ChangeDrawSettings(DrawSettings{Color: "#ff0000", Width: 9}); err != nil {
		t.Fatalf("ChangeDrawSettings() failed: %v", err)
	}
	got := d.Settings()
	if got.Color != "#ff0000" || got.Width != 9 || got.Mode != DrawModeDraw || got.EraserSize != defaultEraserSize {
		t.Errorf("Unexpected settings: %+v", got)
	}
	d.EnableDrawingMode()
	if color, width := c.Brush(); color != "#ff0000" || width != 9 {
		t.Errorf("Brush not applied: %s %v", color, width)
	}

	if err := d.ChangeDrawSettings(DrawSettings{Mode: "spray"}); !errors.Is(err, core.ErrInvalidArgument) {
		t.Errorf("Expected ErrInvalidArgument, got %v", err)
	}
}

func TestClearDrawing(t *testing.T) {
	e, c, s := newTestEditor(t)
	rect := e.AddRect()
	d := e.Drawing()
	d.EnableDrawingMode()
	drawStroke(c, core.Point{X: 1, Y: 1}, core.Point{X: 5, Y: 5})
	drawStroke(c, core.Point{X: 10, Y: 10}, core.Point{X: 50, Y: 50})
	settle(s)
	before := e.History().Len()

	if n := d.ClearDrawing(); n != 2 {
		t.Errorf("Expected 2 strokes cleared, got %d", n)
	}
	if c.Find(rect.ID) == nil {
		t.Error("ClearDrawing removed a shape")
	}
	if e.Layers().Len() != 1 {
		t.Errorf("Expected 1 layer left, got %d", e.Layers().Len())
	}
	settle(s)
	if e.History().Len() != before+1 {
		t.Errorf("Expected one history step, got %d", e.History().Len()-before)
	}
	if n := d.ClearDrawing(); n != 0 {
		t.Errorf("Expected nothing to clear, got %d", n)
	}
}

func TestUndoLastStroke(t *testing.T) {
	e, c, _ := newTestEditor(t)
	d := e.Drawing()
	d.EnableDrawingMode()
	drawStroke(c, core.Point{X: 1, Y: 1}, core.Point{X: 5, Y: 5})
	drawStroke(c, core.Point{X: 10, Y: 10}, core.Point{X: 50, Y: 50})

	if !d.UndoLastStroke() {
		t.Fatal("UndoLastStroke() found nothing")
	}
	strokes := d.strokes()
	if len(strokes) != 1 || strokes[0].Left != 1 {
		t.Error("Wrong stroke removed")
	}
	d.UndoLastStroke()
	if d.UndoLastStroke() {
		t.Error("UndoLastStroke() on an empty scene reported success")
	}
}

func TestPageSwitch_DropsEraseGesture(t *testing.T) {
	e, c, _ := newTestEditor(t)
	d := e.Drawing()
	d.EnableDrawingMode()
	if err := d.ChangeDrawSettings(DrawSettings{Mode: DrawModeErase}); err != nil {
		t.Fatalf("ChangeDrawSettings() failed: %v", err)
	}
	c.DispatchPointer(core.EventMouseDown, core.Point{X: 0, Y: 0})
	e.Pages().AddPage("")

	if d.erasing {
		t.Error("Erase gesture survived a page switch")
	}
}
