package editor

import (
	"image"

	"canvas-editor/core"

	"github.com/gogpu/gg/text"
)

// Surface is the scene the engine drives. The engine never bypasses it: every
// object it creates or changes goes through these calls.
type Surface interface {
	On(t core.EventType, h core.Handler) func()

	Objects() []*core.Object
	Find(id string) *core.Object
	IndexOf(o *core.Object) int
	Add(objs ...*core.Object)
	Insert(o *core.Object, index int)
	Remove(objs ...*core.Object)
	Clear()
	MoveTo(o *core.Object, index int)
	BringToFront(o *core.Object)
	SendToBack(o *core.Object)
	Modified(o *core.Object)

	ActiveSelection() []*core.Object
	SetActiveSelection(objs ...*core.Object)
	ClearSelection()

	Serialize(keys ...string) (*core.Document, error)
	Deserialize(doc *core.Document) error

	SetDrawingMode(on bool)
	DrawingMode() bool
	SetBrush(color string, width float64)

	SetZoom(z float64)
	Zoom() float64

	ToImage(opts core.RasterOptions) (string, error)
	ToSVG(region *core.Rect) (string, error)
	RenderObject(o *core.Object, size int) (string, error)
	Render() error
}

// Optional surface capabilities.
type (
	faceSetter interface {
		SetFaceResolver(r func(family string, size float64) text.Face)
	}

	imageCache interface {
		CacheImage(src string, img image.Image)
	}
)
