package core

import "fmt"

// Kind is the closed set of scene object variants.
type Kind string

const (
	KindText       Kind = "text"
	KindImage      Kind = "image"
	KindShape      Kind = "shape"
	KindGroup      Kind = "group"
	KindBackground Kind = "background"
)

// Shape is the geometry of a KindShape object.
type Shape string

const (
	ShapeRect     Shape = "rect"
	ShapeCircle   Shape = "circle"
	ShapeEllipse  Shape = "ellipse"
	ShapeTriangle Shape = "triangle"
	ShapeLine     Shape = "line"
	ShapePolygon  Shape = "polygon"
	ShapePath     Shape = "path"
)

type FillKind string

const (
	FillNone     FillKind = "none"
	FillColor    FillKind = "color"
	FillGradient FillKind = "gradient"
	FillPattern  FillKind = "pattern"
	FillImage    FillKind = "image"
)

// Traits describes how style operations apply to a kind.
type Traits struct {
	// StrokeAsFill routes stroke color edits to the fill channel.
	StrokeAsFill bool
	Stroke       bool
	Fill         bool
	Font         bool
	CornerRadius bool
	Shadow       bool
	LayerBase    string
}

var kindTraits = map[Kind]Traits{
	KindText:       {StrokeAsFill: true, Fill: true, Font: true, Shadow: true, LayerBase: "Text"},
	KindImage:      {Stroke: true, CornerRadius: true, Shadow: true, LayerBase: "Image"},
	KindShape:      {Stroke: true, Fill: true, CornerRadius: true, Shadow: true, LayerBase: "Shape"},
	KindGroup:      {Stroke: true, Fill: true, Shadow: true, LayerBase: "Group"},
	KindBackground: {Fill: true, Shadow: true, LayerBase: "Background"},
}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	_, ok := kindTraits[k]
	return ok
}

func (k Kind) Traits() Traits {
	return kindTraits[k]
}

// ParseKind converts a type tag into a Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.Valid() {
		return "", fmt.Errorf("unknown object kind %q", s)
	}
	return k, nil
}

// Traits returns the behaviour table entry for o, refined by its shape.
func (o *Object) Traits() Traits {
	t := o.Kind.Traits()
	if o.Kind == KindShape {
		switch o.Shape {
		case ShapeRect:
		case ShapeLine:
			t.Fill = false
			t.CornerRadius = false
		case ShapePath:
			t.CornerRadius = false
			if o.IsStroke() {
				t.LayerBase = "Drawing"
				t.Fill = false
			} else {
				t.LayerBase = "Icon"
			}
		default:
			t.CornerRadius = false
		}
	}
	return t
}
