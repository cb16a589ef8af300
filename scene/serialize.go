package scene

import (
	"fmt"
	"math"

	"canvas-editor/core"
)

// Serialize captures every object into a document, keeping the custom fields in keys.
// It fails when an object holds non-finite geometry.
func (c *Canvas) Serialize(keys ...string) (*core.Document, error) {
	doc := &core.Document{
		Version: core.DocumentVersion,
		Objects: make([]core.ObjectRecord, 0, len(c.objects)),
	}
	for i, o := range c.objects {
		if err := checkFinite(o); err != nil {
			return nil, fmt.Errorf("object %d (%s): %w", i, o.ID, err)
		}
		rec, err := core.EncodeObject(o, keys)
		if err != nil {
			return nil, fmt.Errorf("object %d (%s): %w", i, o.ID, err)
		}
		doc.Objects = append(doc.Objects, rec)
	}
	return doc, nil
}

// Deserialize replaces the canvas content with doc. Decoding happens before any
// mutation, so a malformed document leaves the canvas untouched. Subscribers get a
// single EventLoaded instead of per-object events.
func (c *Canvas) Deserialize(doc *core.Document) error {
	if doc == nil {
		return fmt.Errorf("%w: nil document", core.ErrInvalidDocument)
	}
	objs := make([]*core.Object, 0, len(doc.Objects))
	for _, rec := range doc.Objects {
		o, err := core.DecodeObject(rec)
		if err != nil {
			return err
		}
		if err := checkFinite(o); err != nil {
			return fmt.Errorf("%w: %v", core.ErrInvalidDocument, err)
		}
		objs = append(objs, o)
	}

	seen := make(map[string]bool, len(objs))
	for _, o := range objs {
		if o.ID == "" || seen[o.ID] {
			o.ID = newID()
		}
		seen[o.ID] = true
	}

	c.selection = c.selection[:0]
	c.objects = objs
	c.emit(core.Event{Type: core.EventLoaded})
	return nil
}

func checkFinite(o *core.Object) error {
	for _, v := range []float64{o.Left, o.Top, o.Width, o.Height, o.ScaleX, o.ScaleY, o.Angle, o.Opacity, o.StrokeWidth} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("non-finite geometry")
		}
	}
	for _, child := range o.Objects {
		if err := checkFinite(child); err != nil {
			return err
		}
	}
	return nil
}
