package core

import "math"

// WorkspaceName is the reserved name of the page background object.
const WorkspaceName = "workspace"

type (
	Point struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
	}

	Rect struct {
		Left   float64 `json:"left"`
		Top    float64 `json:"top"`
		Width  float64 `json:"width"`
		Height float64 `json:"height"`
	}

	Shadow struct {
		Color   string  `json:"color"`
		Blur    float64 `json:"blur"`
		OffsetX float64 `json:"offsetX"`
		OffsetY float64 `json:"offsetY"`
	}

	// Pattern is a tiled or stretched image fill. Source is a data URI.
	Pattern struct {
		Source string  `json:"source"`
		Repeat string  `json:"repeat"`
		Width  int     `json:"width,omitempty"`
		Height int     `json:"height,omitempty"`
		ScaleX float64 `json:"scaleX,omitempty"`
		ScaleY float64 `json:"scaleY,omitempty"`
	}

	Fill struct {
		Kind     FillKind  `json:"kind"`
		Color    string    `json:"color,omitempty"`
		Gradient *Gradient `json:"gradient,omitempty"`
		Pattern  *Pattern  `json:"pattern,omitempty"`
	}

	// Object is one graphical primitive owned by the scene. Left and Top locate the
	// unrotated box; rotation is applied about the box center.
	Object struct {
		ID    string `json:"-"`
		Kind  Kind   `json:"kind"`
		Shape Shape  `json:"shape,omitempty"`

		Left   float64 `json:"left"`
		Top    float64 `json:"top"`
		Width  float64 `json:"width"`
		Height float64 `json:"height"`
		ScaleX float64 `json:"scaleX"`
		ScaleY float64 `json:"scaleY"`
		Angle  float64 `json:"angle"`

		Fill            Fill      `json:"fill"`
		Stroke          string    `json:"stroke,omitempty"`
		StrokeWidth     float64   `json:"strokeWidth"`
		StrokeDashArray []float64 `json:"strokeDashArray,omitempty"`
		Opacity         float64   `json:"opacity"`
		Shadow          *Shadow   `json:"shadow,omitempty"`
		Rx              float64   `json:"rx,omitempty"`
		Ry              float64   `json:"ry,omitempty"`

		Visible    bool `json:"visible"`
		Selectable bool `json:"selectable"`
		Locked     bool `json:"locked"`

		Points   []Point `json:"points,omitempty"`
		PathData string  `json:"pathData,omitempty"`

		Text        string  `json:"text,omitempty"`
		FontFamily  string  `json:"fontFamily,omitempty"`
		FontSize    float64 `json:"fontSize,omitempty"`
		FontWeight  string  `json:"fontWeight,omitempty"`
		FontStyle   string  `json:"fontStyle,omitempty"`
		Underline   bool    `json:"underline,omitempty"`
		Linethrough bool    `json:"linethrough,omitempty"`
		TextAlign   string  `json:"textAlign,omitempty"`

		Src string `json:"src,omitempty"`

		Objects []*Object `json:"-"`

		// Custom metadata, serialized only through the document allow-list.
		Name         string              `json:"-"`
		OriginalFont string              `json:"-"`
		GradientSpec *GradientDescriptor `json:"-"`
		LayerName    string              `json:"-"`
	}
)

// NewObject returns an object of the given kind with the scene defaults applied.
func NewObject(kind Kind) *Object {
	return &Object{
		Kind:       kind,
		ScaleX:     1,
		ScaleY:     1,
		Opacity:    1,
		Visible:    true,
		Selectable: true,
		Fill:       Fill{Kind: FillNone},
	}
}

// IsWorkspace reports whether o is the reserved page background object.
func (o *Object) IsWorkspace() bool {
	return o != nil && o.Name == WorkspaceName
}

// ScaledSize returns the width and height after scaling.
func (o *Object) ScaledSize() (float64, float64) {
	return o.Width * o.ScaleX, o.Height * o.ScaleY
}

// Center returns the center of the object's box in scene coordinates.
func (o *Object) Center() Point {
	w, h := o.ScaledSize()
	return Point{X: o.Left + w/2, Y: o.Top + h/2}
}

// SetCenter moves the object so its box is centered on p.
func (o *Object) SetCenter(p Point) {
	w, h := o.ScaledSize()
	o.Left = p.X - w/2
	o.Top = p.Y - h/2
}

// BoundingRect returns the axis-aligned box that contains the rotated object.
func (o *Object) BoundingRect() Rect {
	w, h := o.ScaledSize()
	if o.Angle == 0 {
		return Rect{Left: o.Left, Top: o.Top, Width: w, Height: h}
	}
	c := o.Center()
	rad := o.Angle * math.Pi / 180
	cos, sin := math.Abs(math.Cos(rad)), math.Abs(math.Sin(rad))
	bw := w*cos + h*sin
	bh := w*sin + h*cos
	return Rect{Left: c.X - bw/2, Top: c.Y - bh/2, Width: bw, Height: bh}
}

// IsStroke reports whether o is a freehand stroke produced by drawing mode.
func (o *Object) IsStroke() bool {
	return o.Kind == KindShape && o.Shape == ShapePath && o.PathData == ""
}

// Clone returns a deep copy of o. The clone keeps the id; callers that add it to a
// scene as a new object must clear it first.
func (o *Object) Clone() *Object {
	if o == nil {
		return nil
	}
	c := *o
	if o.StrokeDashArray != nil {
		c.StrokeDashArray = append([]float64(nil), o.StrokeDashArray...)
	}
	if o.Points != nil {
		c.Points = append([]Point(nil), o.Points...)
	}
	if o.Shadow != nil {
		s := *o.Shadow
		c.Shadow = &s
	}
	c.Fill = o.Fill.Clone()
	if o.GradientSpec != nil {
		c.GradientSpec = o.GradientSpec.Clone()
	}
	if o.Objects != nil {
		c.Objects = make([]*Object, len(o.Objects))
		for i, child := range o.Objects {
			c.Objects[i] = child.Clone()
		}
	}
	return &c
}

// Clone returns a deep copy of f.
func (f Fill) Clone() Fill {
	c := f
	if f.Gradient != nil {
		g := *f.Gradient
		g.Stops = append([]ColorStop(nil), f.Gradient.Stops...)
		c.Gradient = &g
	}
	if f.Pattern != nil {
		p := *f.Pattern
		c.Pattern = &p
	}
	return c
}

// SolidFill returns a flat color fill.
func SolidFill(color string) Fill {
	if color == "" || color == "transparent" {
		return Fill{Kind: FillNone}
	}
	return Fill{Kind: FillColor, Color: color}
}
