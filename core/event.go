package core

type EventType string

const (
	EventObjectAdded      EventType = "object:added"
	EventObjectRemoved    EventType = "object:removed"
	EventObjectModified   EventType = "object:modified"
	EventSelectionChanged EventType = "selection:changed"
	EventPathCreated      EventType = "path:created"
	EventLoaded           EventType = "canvas:loaded"
	EventMouseDown        EventType = "mouse:down"
	EventMouseMove        EventType = "mouse:move"
	EventMouseUp          EventType = "mouse:up"
)

type (
	// Event is delivered synchronously to scene subscribers.
	Event struct {
		Type    EventType
		Target  *Object
		Pointer Point
	}

	Handler func(Event)

	// RasterOptions controls image export. Region is in scene coordinates; nil means
	// the whole viewport.
	RasterOptions struct {
		Format     string
		Quality    float64
		Multiplier float64
		Region     *Rect
	}
)
