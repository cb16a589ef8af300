package scene

import (
	"canvas-editor/core"
	"strings"
	"testing"
)

func newRect(left, top, w, h float64) *core.Object {
	o := core.NewObject(core.KindShape)
	o.Shape = core.ShapeRect
	o.Left, o.Top, o.Width, o.Height = left, top, w, h
	o.Fill = core.SolidFill("#ff0000")
	return o
}

func TestAdd_AssignsIDsAndEmits(t *testing.T) {
	c := New(800, 600)
	var added int
	c.On(core.EventObjectAdded, func(core.Event) { added++ })

	a, b := newRect(0, 0, 10, 10), newRect(5, 5, 10, 10)
	b.ID = "fixed"
	c.Add(a, b)

	if added != 2 {
		t.Errorf("Expected 2 added events, got %d", added)
	}
	if a.ID == "" {
		t.Error("Add() did not assign an id")
	}
	if b.ID != "fixed" {
		t.Errorf("Add() replaced a unique id: got %s", b.ID)
	}

	dup := newRect(0, 0, 1, 1)
	dup.ID = "fixed"
	c.Add(dup)
	if dup.ID == "fixed" {
		t.Error("Add() kept a duplicate id")
	}
}

func TestUnsubscribe(t *testing.T) {
	c := New(100, 100)
	var calls int
	off := c.On(core.EventObjectAdded, func(core.Event) { calls++ })
	if c.ListenerCount(core.EventObjectAdded) != 1 {
		t.Fatalf("Expected 1 listener, got %d", c.ListenerCount(core.EventObjectAdded))
	}
	off()
	c.Add(newRect(0, 0, 1, 1))
	if calls != 0 {
		t.Errorf("Handler called after unsubscribe: %d", calls)
	}
	if c.ListenerCount(core.EventObjectAdded) != 0 {
		t.Errorf("Expected 0 listeners, got %d", c.ListenerCount(core.EventObjectAdded))
	}
}

func TestMoveTo_Order(t *testing.T) {
	c := New(100, 100)
	a, b, d := newRect(0, 0, 1, 1), newRect(0, 0, 1, 1), newRect(0, 0, 1, 1)
	c.Add(a, b, d)

	c.BringToFront(a)
	if got := c.IndexOf(a); got != 2 {
		t.Errorf("BringToFront: expected index 2, got %d", got)
	}
	c.SendToBack(d)
	if got := c.IndexOf(d); got != 0 {
		t.Errorf("SendToBack: expected index 0, got %d", got)
	}
	c.MoveTo(b, 99)
	if got := c.IndexOf(b); got != 2 {
		t.Errorf("MoveTo clamp: expected index 2, got %d", got)
	}
}

func TestRemove_DropsSelection(t *testing.T) {
	c := New(100, 100)
	a := newRect(0, 0, 1, 1)
	c.Add(a)
	c.SetActiveSelection(a)
	if len(c.ActiveSelection()) != 1 {
		t.Fatalf("Expected 1 selected object, got %d", len(c.ActiveSelection()))
	}

	c.Remove(a)
	if len(c.ActiveSelection()) != 0 {
		t.Error("Removed object is still selected")
	}
	if c.Len() != 0 {
		t.Errorf("Expected empty canvas, got %d objects", c.Len())
	}
}

func TestSetActiveSelection_SkipsUnselectable(t *testing.T) {
	c := New(100, 100)
	a, b := newRect(0, 0, 1, 1), newRect(0, 0, 1, 1)
	b.Selectable = false
	c.Add(a, b)
	c.SetActiveSelection(a, b, newRect(0, 0, 1, 1))

	sel := c.ActiveSelection()
	if len(sel) != 1 || sel[0] != a {
		t.Errorf("Expected only the selectable object on canvas, got %d objects", len(sel))
	}
}

func TestDrawingMode_CreatesPath(t *testing.T) {
	c := New(100, 100)
	c.SetDrawingMode(true)
	c.SetBrush("#00ff00", 4)

	var created *core.Object
	c.On(core.EventPathCreated, func(ev core.Event) { created = ev.Target })

	c.DispatchPointer(core.EventMouseDown, core.Point{X: 10, Y: 10})
	c.DispatchPointer(core.EventMouseMove, core.Point{X: 20, Y: 15})
	c.DispatchPointer(core.EventMouseUp, core.Point{X: 30, Y: 30})

	if created == nil {
		t.Fatal("Expected a path:created event")
	}
	if !created.IsStroke() {
		t.Error("Created object is not a stroke")
	}
	if created.Left != 10 || created.Top != 10 || created.Width != 20 || created.Height != 20 {
		t.Errorf("Unexpected stroke box: %+v", created.BoundingRect())
	}
	if created.Stroke != "#00ff00" || created.StrokeWidth != 4 {
		t.Errorf("Stroke did not take brush settings: %s %v", created.Stroke, created.StrokeWidth)
	}
	if c.Len() != 1 {
		t.Errorf("Expected 1 object, got %d", c.Len())
	}
}

func TestDrawingMode_Off(t *testing.T) {
	c := New(100, 100)
	var downs int
	c.On(core.EventMouseDown, func(core.Event) { downs++ })

	c.DispatchPointer(core.EventMouseDown, core.Point{X: 1, Y: 1})
	c.DispatchPointer(core.EventMouseUp, core.Point{X: 5, Y: 5})

	if downs != 1 {
		t.Errorf("Expected mouse events without drawing mode, got %d", downs)
	}
	if c.Len() != 0 {
		t.Errorf("Expected no stroke outside drawing mode, got %d objects", c.Len())
	}
}

func TestToImage(t *testing.T) {
	c := New(40, 30)
	c.Add(newRect(5, 5, 20, 10))

	uri, err := c.ToImage(core.RasterOptions{Format: "png", Multiplier: 2})
	if err != nil {
		t.Fatalf("ToImage() failed: %v", err)
	}
	if !strings.HasPrefix(uri, "data:image/png;base64,") {
		t.Errorf("Unexpected data uri prefix: %.40s", uri)
	}

	if _, err := c.ToImage(core.RasterOptions{Format: "tiff"}); err == nil {
		t.Error("Expected error for unsupported format")
	}

	c.Detach()
	if _, err := c.ToImage(core.RasterOptions{}); err != ErrDetached {
		t.Errorf("Expected ErrDetached, got %v", err)
	}
}

func TestToSVG(t *testing.T) {
	c := New(200, 100)
	r := newRect(10, 20, 30, 40)
	r.Fill = core.Fill{Kind: core.FillGradient, Gradient: &core.Gradient{
		Type: core.GradientLinear, X2: 30,
		Stops: []core.ColorStop{{Offset: 0, Color: "red", Opacity: 1}, {Offset: 1, Color: "blue", Opacity: 1}},
	}}
	hidden := newRect(0, 0, 5, 5)
	hidden.Visible = false
	text := core.NewObject(core.KindText)
	text.Text = "a < b"
	text.FontFamily = "Arial"
	text.FontSize = 12
	c.Add(r, hidden, text)

	svg, err := c.ToSVG(nil)
	if err != nil {
		t.Fatalf("ToSVG() failed: %v", err)
	}
	for _, want := range []string{`viewBox="0 0 200 100"`, "<linearGradient", `fill="url(#gradient_1)"`, "a &lt; b", `d="M10 20 L40 20 L40 60 L10 60 Z"`, `font-family="Arial"`} {
		if !strings.Contains(svg, want) {
			t.Errorf("SVG missing %q", want)
		}
	}
	if n := strings.Count(svg, "<path"); n != 1 {
		t.Errorf("Expected one path (hidden skipped), got %d", n)
	}
}

func TestToSVG_Region(t *testing.T) {
	c := New(200, 100)
	r := newRect(50, 40, 10, 10)
	r.Stroke = "#0000ff"
	r.StrokeWidth = 2
	r.StrokeDashArray = []float64{4, 2}
	c.Add(r)

	svg, err := c.ToSVG(&core.Rect{Left: 50, Top: 40, Width: 20, Height: 20})
	if err != nil {
		t.Fatalf("ToSVG() failed: %v", err)
	}
	for _, want := range []string{`width="20" height="20"`, `d="M0 0 L10 0 L10 10 L0 10 Z"`, `stroke="#0000ff"`, `stroke-dasharray="4 2"`, `fill="#ff0000"`} {
		if !strings.Contains(svg, want) {
			t.Errorf("SVG missing %q", want)
		}
	}

	if _, err := c.ToSVG(&core.Rect{Width: 0, Height: 10}); err == nil {
		t.Error("Expected error for an empty region")
	}
}

func TestToSVG_RecordsWithPainter(t *testing.T) {
	c := New(100, 100)
	o := newRect(0, 0, 10, 10)
	o.ScaleX, o.ScaleY = 2, 2
	o.Stroke = "#000000"
	o.StrokeWidth = 3
	c.Add(o)

	svg, err := c.ToSVG(nil)
	if err != nil {
		t.Fatalf("ToSVG() failed: %v", err)
	}
	// Scaled objects keep their on-screen stroke width.
	if !strings.Contains(svg, `stroke-width="6"`) {
		t.Errorf("Stroke width not scaled: %s", svg)
	}
	if !strings.Contains(svg, `L20 20`) {
		t.Errorf("Scale not baked into the path: %s", svg)
	}
}

func TestRenderObject(t *testing.T) {
	c := New(100, 100)
	o := newRect(10, 10, 50, 25)
	uri, err := c.RenderObject(o, 64)
	if err != nil {
		t.Fatalf("RenderObject() failed: %v", err)
	}
	if !strings.HasPrefix(uri, "data:image/png") {
		t.Errorf("Unexpected thumbnail: %.40s", uri)
	}
}

func TestParseColor(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"#fff", true},
		{"#112233", true},
		{"rgb(10, 20, 30)", true},
		{"rgba(10,20,30,0.5)", true},
		{"red", true},
		{"transparent", true},
		{"#zzz", false},
		{"rgb(1,2)", false},
		{"", false},
		{"notacolor", false},
	}
	for _, tc := range cases {
		if _, ok := ParseColor(tc.in); ok != tc.ok {
			t.Errorf("ParseColor(%q) ok = %v, want %v", tc.in, ok, tc.ok)
		}
	}
}
