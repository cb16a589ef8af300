package scene

import (
	"math"

	"canvas-editor/core"
)

// SetDrawingMode toggles native freehand capture.
func (c *Canvas) SetDrawingMode(on bool) {
	c.drawing = on
	if !on {
		c.capturing = false
		c.stroke = nil
	}
}

func (c *Canvas) DrawingMode() bool {
	return c.drawing
}

// SetBrush configures the freehand brush.
func (c *Canvas) SetBrush(color string, width float64) {
	if color != "" {
		c.brushColor = color
	}
	if width > 0 {
		c.brushWidth = width
	}
}

func (c *Canvas) Brush() (string, float64) {
	return c.brushColor, c.brushWidth
}

// DispatchPointer feeds a pointer sample into the canvas. In drawing mode the
// samples are captured into a stroke; subscribers receive the event either way.
func (c *Canvas) DispatchPointer(t core.EventType, p core.Point) {
	if c.drawing {
		switch t {
		case core.EventMouseDown:
			c.capturing = true
			c.stroke = []core.Point{p}
		case core.EventMouseMove:
			if c.capturing {
				c.stroke = append(c.stroke, p)
			}
		case core.EventMouseUp:
			if c.capturing {
				c.stroke = append(c.stroke, p)
				c.finishStroke()
			}
		}
	}
	c.emit(core.Event{Type: t, Pointer: p})
}

func (c *Canvas) finishStroke() {
	points := c.stroke
	c.capturing = false
	c.stroke = nil
	if len(points) < 2 {
		return
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range points {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}

	path := core.NewObject(core.KindShape)
	path.Shape = core.ShapePath
	path.Left, path.Top = minX, minY
	path.Width, path.Height = math.Max(maxX-minX, 1), math.Max(maxY-minY, 1)
	path.Stroke = c.brushColor
	path.StrokeWidth = c.brushWidth
	path.Points = make([]core.Point, len(points))
	for i, p := range points {
		path.Points[i] = core.Point{X: p.X - minX, Y: p.Y - minY}
	}

	c.Add(path)
	c.emit(core.Event{Type: core.EventPathCreated, Target: path})
}
