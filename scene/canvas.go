// Package scene is an in-memory 2D object graph with event subscription, selection,
// freehand stroke capture, serialization and raster/vector output.
//
// A Canvas is not safe for concurrent use; it is meant to be driven from a single
// goroutine, the same way a browser drives its canvas from the UI thread.
package scene

import (
	"errors"
	"image"
	"math"

	"canvas-editor/core"

	"github.com/gogpu/gg/text"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ErrDetached is returned by rendering calls after the canvas has been torn down.
var ErrDetached = errors.New("canvas is detached")

type (
	subscription struct {
		id int
		fn core.Handler
	}

	// FaceResolver returns a font face for a family and size, or nil when unavailable.
	FaceResolver func(family string, size float64) text.Face

	Canvas struct {
		width, height int
		zoom          float64

		objects   []*core.Object
		selection []*core.Object
		handlers  map[core.EventType][]subscription
		nextSub   int

		drawing    bool
		brushColor string
		brushWidth float64
		capturing  bool
		stroke     []core.Point

		faces    FaceResolver
		images   map[string]image.Image
		detached bool
		log      *logrus.Entry
	}
)

// New creates a canvas with the given viewport size.
func New(width, height int) *Canvas {
	return &Canvas{
		width:      width,
		height:     height,
		zoom:       1,
		handlers:   make(map[core.EventType][]subscription),
		brushColor: "#000000",
		brushWidth: 5,
		images:     make(map[string]image.Image),
		log:        logrus.WithField("component", "scene"),
	}
}

// On subscribes h to events of type t. The returned function detaches it.
func (c *Canvas) On(t core.EventType, h core.Handler) func() {
	c.nextSub++
	id := c.nextSub
	c.handlers[t] = append(c.handlers[t], subscription{id: id, fn: h})
	return func() {
		subs := c.handlers[t]
		for i, s := range subs {
			if s.id == id {
				c.handlers[t] = append(subs[:i:i], subs[i+1:]...)
				return
			}
		}
	}
}

// ListenerCount returns the number of handlers subscribed to t.
func (c *Canvas) ListenerCount(t core.EventType) int {
	return len(c.handlers[t])
}

func (c *Canvas) emit(ev core.Event) {
	subs := append([]subscription(nil), c.handlers[ev.Type]...)
	for _, s := range subs {
		s.fn(ev)
	}
}

// Objects returns the objects in z-order, back-most first.
func (c *Canvas) Objects() []*core.Object {
	return append([]*core.Object(nil), c.objects...)
}

func (c *Canvas) Len() int {
	return len(c.objects)
}

// Find returns the object with the given id, or nil.
func (c *Canvas) Find(id string) *core.Object {
	for _, o := range c.objects {
		if o.ID == id {
			return o
		}
	}
	return nil
}

// IndexOf returns the z-index of o, or -1 when o is not on the canvas.
func (c *Canvas) IndexOf(o *core.Object) int {
	for i, obj := range c.objects {
		if obj == o {
			return i
		}
	}
	return -1
}

// Add appends objects on top of the stack, assigning ids to objects without one.
func (c *Canvas) Add(objs ...*core.Object) {
	for _, o := range objs {
		c.Insert(o, len(c.objects))
	}
}

// Insert places o at index, clamped to the stack bounds.
func (c *Canvas) Insert(o *core.Object, index int) {
	if o == nil || c.IndexOf(o) >= 0 {
		return
	}
	if o.ID == "" || c.Find(o.ID) != nil {
		o.ID = newID()
	}
	index = clampIndex(index, len(c.objects))
	c.objects = append(c.objects, nil)
	copy(c.objects[index+1:], c.objects[index:])
	c.objects[index] = o
	c.emit(core.Event{Type: core.EventObjectAdded, Target: o})
}

// Remove takes objects off the canvas and out of the selection.
func (c *Canvas) Remove(objs ...*core.Object) {
	for _, o := range objs {
		i := c.IndexOf(o)
		if i < 0 {
			continue
		}
		c.objects = append(c.objects[:i], c.objects[i+1:]...)
		c.dropFromSelection(o)
		c.emit(core.Event{Type: core.EventObjectRemoved, Target: o})
	}
}

// Clear removes every object.
func (c *Canvas) Clear() {
	c.ClearSelection()
	for len(c.objects) > 0 {
		c.Remove(c.objects[len(c.objects)-1])
	}
}

// MoveTo moves o to index in the stack.
func (c *Canvas) MoveTo(o *core.Object, index int) {
	i := c.IndexOf(o)
	if i < 0 {
		return
	}
	c.objects = append(c.objects[:i], c.objects[i+1:]...)
	index = clampIndex(index, len(c.objects))
	c.objects = append(c.objects, nil)
	copy(c.objects[index+1:], c.objects[index:])
	c.objects[index] = o
}

func (c *Canvas) BringToFront(o *core.Object) {
	c.MoveTo(o, len(c.objects)-1)
}

func (c *Canvas) SendToBack(o *core.Object) {
	c.MoveTo(o, 0)
}

// Modified notifies subscribers that o's properties changed.
func (c *Canvas) Modified(o *core.Object) {
	c.emit(core.Event{Type: core.EventObjectModified, Target: o})
}

func (c *Canvas) ActiveSelection() []*core.Object {
	return append([]*core.Object(nil), c.selection...)
}

// SetActiveSelection replaces the selection with the selectable objects among objs.
func (c *Canvas) SetActiveSelection(objs ...*core.Object) {
	c.selection = c.selection[:0]
	for _, o := range objs {
		if o != nil && o.Selectable && c.IndexOf(o) >= 0 {
			c.selection = append(c.selection, o)
		}
	}
	c.emit(core.Event{Type: core.EventSelectionChanged})
}

func (c *Canvas) ClearSelection() {
	if len(c.selection) == 0 {
		return
	}
	c.selection = c.selection[:0]
	c.emit(core.Event{Type: core.EventSelectionChanged})
}

func (c *Canvas) dropFromSelection(o *core.Object) {
	for i, s := range c.selection {
		if s == o {
			c.selection = append(c.selection[:i], c.selection[i+1:]...)
			c.emit(core.Event{Type: core.EventSelectionChanged})
			return
		}
	}
}

// SetZoom sets the viewport zoom factor.
func (c *Canvas) SetZoom(z float64) {
	if z <= 0 || math.IsNaN(z) || math.IsInf(z, 0) {
		return
	}
	c.zoom = z
}

func (c *Canvas) Zoom() float64 {
	return c.zoom
}

// ViewportSize returns the size of the host surface in pixels.
func (c *Canvas) ViewportSize() (int, int) {
	return c.width, c.height
}

func (c *Canvas) SetViewportSize(width, height int) {
	c.width, c.height = width, height
}

// SetFaceResolver installs the font lookup used when rasterizing text.
func (c *Canvas) SetFaceResolver(r func(family string, size float64) text.Face) {
	c.faces = r
}

// CacheImage registers decoded pixels for an image source so rendering can use them.
func (c *Canvas) CacheImage(src string, img image.Image) {
	if src == "" || img == nil {
		return
	}
	c.images[src] = img
}

// Detach tears the canvas down; later render calls fail with ErrDetached.
func (c *Canvas) Detach() {
	c.detached = true
}

// Render repaints the canvas. Headless canvases only verify that a surface exists.
func (c *Canvas) Render() error {
	if c.detached {
		return ErrDetached
	}
	return nil
}

func newID() string {
	return uuid.NewString()
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i > n {
		return n
	}
	return i
}
