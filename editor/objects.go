package editor

import (
	"context"
	"fmt"
	"image"
	"math"
	"strconv"
	"strings"

	"canvas-editor/core"

	"github.com/sirupsen/logrus"
)

// ChartSpec describes a bar chart added as a group.
type ChartSpec struct {
	Title  string    `json:"title"`
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
	Color  string    `json:"color"`
}

// place centers o on the workspace, adds it and selects it.
func (e *Editor) place(o *core.Object) *core.Object {
	e.center(o)
	e.surface.Add(o)
	e.surface.SetActiveSelection(o)
	e.render()
	e.log.WithFields(logrus.Fields{"object_id": o.ID, "kind": o.Kind}).Debug("Object added")
	return o
}

func (e *Editor) newShape(shape core.Shape, w, h float64) *core.Object {
	o := core.NewObject(core.KindShape)
	o.Shape = shape
	o.Width, o.Height = w, h
	o.Fill = core.SolidFill(e.style.fill)
	o.Stroke = e.style.stroke
	o.StrokeWidth = e.style.strokeWidth
	o.StrokeDashArray = append([]float64(nil), e.style.dash...)
	return o
}

func (e *Editor) AddRect() *core.Object {
	return e.place(e.newShape(core.ShapeRect, rectSize, rectSize))
}

func (e *Editor) AddCircle() *core.Object {
	return e.place(e.newShape(core.ShapeCircle, 2*circleRadius, 2*circleRadius))
}

func (e *Editor) AddTriangle() *core.Object {
	return e.place(e.newShape(core.ShapeTriangle, triangleSize, triangleSize))
}

func (e *Editor) AddLine() *core.Object {
	o := e.newShape(core.ShapeLine, lineLength*0.75, lineLength*0.5)
	o.Fill = core.Fill{Kind: core.FillNone}
	o.Points = []core.Point{{X: 0, Y: 0}, {X: o.Width, Y: o.Height}}
	return e.place(o)
}

// AddText adds a text box using the current font family.
func (e *Editor) AddText(value string) *core.Object {
	o := core.NewObject(core.KindText)
	o.Text = value
	o.FontFamily = e.style.fontFamily
	o.OriginalFont = e.style.fontFamily
	o.FontSize = DefaultFontSize
	o.FontWeight = DefaultFontWeight
	o.FontStyle = DefaultFontStyle
	o.TextAlign = DefaultTextAlign
	o.Fill = core.SolidFill(e.style.fill)
	o.Width = textWidth
	o.Height = textHeight(value, o.FontSize)
	e.requestFont(o.FontFamily)
	return e.place(o)
}

func textHeight(value string, size float64) float64 {
	return float64(strings.Count(value, "\n")+1) * size * 1.16
}

// AddIcon adds an SVG path icon scaled to a fixed size.
func (e *Editor) AddIcon(pathData string) (*core.Object, error) {
	cmds, err := core.ParsePathData(pathData)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrInvalidArgument, err)
	}
	box := core.PathBounds(cmds)
	if box.Width <= 0 && box.Height <= 0 {
		return nil, fmt.Errorf("%w: icon path has no extent", core.ErrInvalidArgument)
	}
	o := core.NewObject(core.KindShape)
	o.Shape = core.ShapePath
	o.PathData = pathData
	o.Width, o.Height = math.Max(box.Width, 1), math.Max(box.Height, 1)
	scale := iconSize / math.Max(o.Width, o.Height)
	o.ScaleX, o.ScaleY = scale, scale
	o.Fill = core.SolidFill(e.style.fill)
	return e.place(o), nil
}

// AddChart adds a bar chart as one group object.
func (e *Editor) AddChart(spec ChartSpec) (*core.Object, error) {
	if len(spec.Values) == 0 {
		return nil, fmt.Errorf("%w: chart needs values", core.ErrInvalidArgument)
	}
	if len(spec.Labels) > 0 && len(spec.Labels) != len(spec.Values) {
		return nil, fmt.Errorf("%w: %d labels for %d values", core.ErrInvalidArgument, len(spec.Labels), len(spec.Values))
	}
	color := spec.Color
	if color == "" {
		color = e.style.fill
	}

	maxValue := 0.0
	for _, v := range spec.Values {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: chart value %v", core.ErrInvalidArgument, v)
		}
		maxValue = math.Max(maxValue, v)
	}
	if maxValue == 0 {
		maxValue = 1
	}

	const labelHeight, titleHeight = 24.0, 36.0
	group := core.NewObject(core.KindGroup)
	group.Width, group.Height = chartWidth, chartHeight

	top := 0.0
	if spec.Title != "" {
		title := chartText(spec.Title, 24, chartWidth)
		title.TextAlign = "center"
		group.Objects = append(group.Objects, title)
		top = titleHeight
	}
	plot := chartHeight - top - labelHeight
	slot := chartWidth / float64(len(spec.Values))
	for i, v := range spec.Values {
		bar := core.NewObject(core.KindShape)
		bar.Shape = core.ShapeRect
		bar.Fill = core.SolidFill(color)
		bar.Width = slot * 0.6
		bar.Height = math.Max(plot*v/maxValue, 0)
		bar.Left = slot*float64(i) + slot*0.2
		bar.Top = top + plot - bar.Height
		group.Objects = append(group.Objects, bar)

		label := strconv.FormatFloat(v, 'f', -1, 64)
		if len(spec.Labels) > 0 {
			label = spec.Labels[i]
		}
		t := chartText(label, 14, slot)
		t.Left = slot * float64(i)
		t.Top = chartHeight - labelHeight
		t.TextAlign = "center"
		group.Objects = append(group.Objects, t)
	}
	return e.place(group), nil
}

func chartText(value string, size, width float64) *core.Object {
	t := core.NewObject(core.KindText)
	t.Text = value
	t.FontFamily = DefaultFontFamily
	t.OriginalFont = DefaultFontFamily
	t.FontSize = size
	t.Width = width
	t.Height = size * 1.16
	t.Fill = core.SolidFill(DefaultFillColor)
	return t
}

// AddImage loads src in the background and adds it, fitted to the workspace, once
// the pixels arrive. Loads finishing after a page switch are dropped.
func (e *Editor) AddImage(src string) error {
	if strings.TrimSpace(src) == "" {
		return fmt.Errorf("%w: empty image source", core.ErrInvalidArgument)
	}
	e.loadImage(src, func(img image.Image) {
		b := img.Bounds()
		o := core.NewObject(core.KindImage)
		o.Src = src
		o.Width, o.Height = float64(b.Dx()), float64(b.Dy())
		ws := e.WorkspaceSize()
		if scale := math.Min(ws.Width/o.Width, ws.Height/o.Height); scale < 1 {
			o.ScaleX, o.ScaleY = scale, scale
		}
		e.place(o)
	})
	return nil
}

// loadImage resolves src off the engine goroutine and runs apply back on it,
// unless the page or editor changed in between.
func (e *Editor) loadImage(src string, apply func(img image.Image)) {
	gen := e.generation
	log := e.log.WithField("src", truncate(src, 64))
	go func() {
		img, err := e.images.Load(context.Background(), src)
		e.sched.AfterFunc(0, func() {
			if e.closed || gen != e.generation {
				log.Debug("Dropping stale image load")
				return
			}
			if err != nil {
				log.WithError(err).Error("Image load failed")
				e.notify("error", "Failed to load image")
				return
			}
			if c, ok := e.surface.(imageCache); ok {
				c.CacheImage(src, img)
			}
			apply(img)
		})
	}()
}

// Delete removes the selected objects.
func (e *Editor) Delete() int {
	sel := e.selection()
	if len(sel) == 0 {
		return 0
	}
	e.surface.ClearSelection()
	e.surface.Remove(sel...)
	e.render()
	return len(sel)
}

// Duplicate copies the selection with an offset and selects the copies.
func (e *Editor) Duplicate() []*core.Object {
	sel := e.selection()
	if len(sel) == 0 {
		return nil
	}
	copies := make([]*core.Object, 0, len(sel))
	for _, o := range sel {
		c := cloneAsNew(o)
		e.surface.Add(c)
		copies = append(copies, c)
	}
	e.surface.SetActiveSelection(copies...)
	e.render()
	return copies
}

func cloneAsNew(o *core.Object) *core.Object {
	c := o.Clone()
	c.ID = ""
	c.LayerName = ""
	c.Locked = false
	c.Selectable = true
	c.Left += DuplicateOffset
	c.Top += DuplicateOffset
	return c
}

// BringForward moves each selected object one step up.
func (e *Editor) BringForward() {
	e.reorder(func(o *core.Object) {
		e.surface.MoveTo(o, e.surface.IndexOf(o)+1)
	})
}

// SendBackwards moves each selected object one step down, never below the workspace.
func (e *Editor) SendBackwards() {
	e.reorder(func(o *core.Object) {
		if i := e.surface.IndexOf(o); i > 1 {
			e.surface.MoveTo(o, i-1)
		}
	})
}

func (e *Editor) BringToFront() {
	e.reorder(e.surface.BringToFront)
}

func (e *Editor) SendToBack() {
	e.reorder(e.surface.SendToBack)
}

func (e *Editor) reorder(move func(o *core.Object)) {
	sel := e.selection()
	if len(sel) == 0 {
		return
	}
	for _, o := range sel {
		move(o)
	}
	e.assertWorkspace(e.Workspace())
	e.history.Commit()
	e.layers.changed()
	e.render()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
