package editor

import (
	"fmt"
	"math"

	"canvas-editor/core"
)

type DrawMode string

const (
	DrawModeDraw  DrawMode = "draw"
	DrawModeErase DrawMode = "erase"

	defaultBrushWidth = 5
	defaultEraserSize = 20
)

// DrawSettings configures the draw tool.
type DrawSettings struct {
	Color      string   `json:"color"`
	Width      float64  `json:"width"`
	Mode       DrawMode `json:"mode"`
	EraserSize float64  `json:"eraserSize"`
}

// Drawing switches the surface between freehand capture and erasing.
//
// Erasing removes every stroke whose bounding box center lies within EraserSize/2
// of the pointer. Strokes with large sparse boxes can be erased from far away.
type Drawing struct {
	e        *Editor
	settings DrawSettings
	enabled  bool
	erasing  bool
	off      []func()
}

func newDrawing(e *Editor) *Drawing {
	return &Drawing{
		e: e,
		settings: DrawSettings{
			Color:      DefaultStrokeColor,
			Width:      defaultBrushWidth,
			Mode:       DrawModeDraw,
			EraserSize: defaultEraserSize,
		},
	}
}

func (d *Drawing) Settings() DrawSettings {
	return d.settings
}

func (d *Drawing) Enabled() bool {
	return d.enabled
}

// EnableDrawingMode activates the draw tool in the configured mode.
func (d *Drawing) EnableDrawingMode() {
	d.enabled = true
	d.e.surface.ClearSelection()
	d.apply()
}

// DisableDrawingMode leaves both capture and erase modes.
func (d *Drawing) DisableDrawingMode() {
	d.enabled = false
	d.e.surface.SetDrawingMode(false)
	d.detachErase()
	d.e.render()
}

// ChangeDrawSettings updates the brush and mode. Zero values keep the current setting.
func (d *Drawing) ChangeDrawSettings(s DrawSettings) error {
	switch s.Mode {
	case "", DrawModeDraw, DrawModeErase:
	default:
		return fmt.Errorf("%w: draw mode %q", core.ErrInvalidArgument, s.Mode)
	}
	if s.Color != "" {
		d.settings.Color = s.Color
	}
	if s.Width > 0 {
		d.settings.Width = s.Width
	}
	if s.EraserSize > 0 {
		d.settings.EraserSize = s.EraserSize
	}
	if s.Mode != "" {
		d.settings.Mode = s.Mode
	}
	if d.enabled {
		d.apply()
	}
	return nil
}

func (d *Drawing) apply() {
	if d.settings.Mode == DrawModeErase {
		d.e.surface.SetDrawingMode(false)
		d.attachErase()
	} else {
		d.detachErase()
		d.e.surface.SetBrush(d.settings.Color, d.settings.Width)
		d.e.surface.SetDrawingMode(true)
	}
	d.e.render()
}

func (d *Drawing) attachErase() {
	if len(d.off) > 0 {
		return
	}
	d.off = []func(){
		d.e.surface.On(core.EventMouseDown, func(ev core.Event) {
			d.erasing = true
			d.eraseAt(ev.Pointer)
		}),
		d.e.surface.On(core.EventMouseMove, func(ev core.Event) {
			if d.erasing {
				d.eraseAt(ev.Pointer)
			}
		}),
		d.e.surface.On(core.EventMouseUp, func(core.Event) {
			d.erasing = false
		}),
	}
}

func (d *Drawing) detachErase() {
	for _, off := range d.off {
		off()
	}
	d.off = nil
	d.erasing = false
}

// pageChanged drops an in-progress erase gesture.
func (d *Drawing) pageChanged() {
	d.erasing = false
}

func (d *Drawing) eraseAt(p core.Point) {
	radius := d.settings.EraserSize / 2
	var hit []*core.Object
	for _, o := range d.e.surface.Objects() {
		if !o.IsStroke() || o.Locked {
			continue
		}
		c := o.BoundingRect()
		if math.Hypot(c.Left+c.Width/2-p.X, c.Top+c.Height/2-p.Y) <= radius {
			hit = append(hit, o)
		}
	}
	if len(hit) > 0 {
		d.e.surface.Remove(hit...)
		d.e.render()
	}
}

// ClearDrawing removes every freehand stroke as one history step.
func (d *Drawing) ClearDrawing() int {
	strokes := d.strokes()
	if len(strokes) == 0 {
		return 0
	}
	d.e.suspend(func() {
		d.e.surface.Remove(strokes...)
	})
	d.e.history.Commit()
	d.e.pages.scheduleAutosave()
	d.e.layers.changed()
	d.e.render()
	return len(strokes)
}

// UndoLastStroke removes the top-most stroke.
func (d *Drawing) UndoLastStroke() bool {
	strokes := d.strokes()
	if len(strokes) == 0 {
		return false
	}
	d.e.surface.Remove(strokes[len(strokes)-1])
	d.e.render()
	return true
}

func (d *Drawing) strokes() []*core.Object {
	var out []*core.Object
	for _, o := range d.e.surface.Objects() {
		if o.IsStroke() {
			out = append(out, o)
		}
	}
	return out
}
