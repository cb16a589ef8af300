package editor

import (
	"fmt"

	"canvas-editor/core"
)

// applyStyle runs fn over the selection and marks every object it changed. An
// empty selection is a no-op.
func (e *Editor) applyStyle(fn func(o *core.Object) bool) int {
	changed := 0
	for _, o := range e.selection() {
		if fn(o) {
			changed++
			e.surface.Modified(o)
		}
	}
	if changed > 0 {
		e.render()
	}
	return changed
}

// first returns the first selected object, or nil.
func (e *Editor) first() *core.Object {
	if sel := e.selection(); len(sel) > 0 {
		return sel[0]
	}
	return nil
}

// eachFillTarget visits o, or the children of a group, that accept a fill.
func eachFillTarget(o *core.Object, fn func(o *core.Object)) bool {
	if o.Kind == core.KindGroup {
		hit := false
		for _, child := range o.Objects {
			hit = eachFillTarget(child, fn) || hit
		}
		return hit
	}
	if !o.Traits().Fill {
		return false
	}
	fn(o)
	return true
}

func (e *Editor) SetFillColor(color string) {
	e.style.fill = color
	e.applyStyle(func(o *core.Object) bool {
		return eachFillTarget(o, func(o *core.Object) {
			o.Fill = core.SolidFill(color)
			o.GradientSpec = nil
		})
	})
}

// SetStrokeColor sets the stroke. Text has no stroke channel, so it gets the color as fill.
func (e *Editor) SetStrokeColor(color string) {
	e.style.stroke = color
	e.applyStyle(func(o *core.Object) bool {
		t := o.Traits()
		switch {
		case t.StrokeAsFill:
			o.Fill = core.SolidFill(color)
			o.GradientSpec = nil
		case t.Stroke:
			o.Stroke = color
		default:
			return false
		}
		return true
	})
}

func (e *Editor) SetStrokeWidth(width float64) {
	if width < 0 || !core.Finite(width) {
		return
	}
	e.style.strokeWidth = width
	e.applyStyle(func(o *core.Object) bool {
		if !o.Traits().Stroke {
			return false
		}
		o.StrokeWidth = width
		return true
	})
}

func (e *Editor) SetStrokeDashArray(dash []float64) {
	for _, d := range dash {
		if d < 0 || !core.Finite(d) {
			return
		}
	}
	e.style.dash = append([]float64(nil), dash...)
	e.applyStyle(func(o *core.Object) bool {
		if !o.Traits().Stroke {
			return false
		}
		o.StrokeDashArray = append([]float64(nil), dash...)
		return true
	})
}

// SetOpacity sets the opacity of the selection, clamped to [0,1].
func (e *Editor) SetOpacity(opacity float64) error {
	if !core.Finite(opacity) {
		return fmt.Errorf("%w: opacity %v", core.ErrInvalidArgument, opacity)
	}
	opacity = clamp(opacity, 0, 1)
	e.applyStyle(func(o *core.Object) bool {
		o.Opacity = opacity
		return true
	})
	return nil
}

// SetFontFamily changes the family of selected text and starts loading the font.
func (e *Editor) SetFontFamily(family string) {
	if family == "" {
		return
	}
	e.style.fontFamily = family
	e.requestFont(family)
	e.applyStyle(func(o *core.Object) bool {
		if !o.Traits().Font {
			return false
		}
		o.FontFamily = family
		o.OriginalFont = family
		return true
	})
}

func (e *Editor) SetFontSize(size float64) {
	if size <= 0 || !core.Finite(size) {
		return
	}
	e.applyStyle(func(o *core.Object) bool {
		if !o.Traits().Font {
			return false
		}
		o.FontSize = size
		o.Height = textHeight(o.Text, size)
		return true
	})
}

func (e *Editor) SetFontWeight(weight string) {
	e.setFont(func(o *core.Object) { o.FontWeight = weight })
}

func (e *Editor) SetFontStyle(style string) {
	e.setFont(func(o *core.Object) { o.FontStyle = style })
}

func (e *Editor) SetFontUnderline(on bool) {
	e.setFont(func(o *core.Object) { o.Underline = on })
}

func (e *Editor) SetFontLinethrough(on bool) {
	e.setFont(func(o *core.Object) { o.Linethrough = on })
}

func (e *Editor) SetTextAlign(align string) {
	switch align {
	case "left", "center", "right", "justify":
	default:
		return
	}
	e.setFont(func(o *core.Object) { o.TextAlign = align })
}

func (e *Editor) setFont(fn func(o *core.Object)) {
	e.applyStyle(func(o *core.Object) bool {
		if !o.Traits().Font {
			return false
		}
		fn(o)
		return true
	})
}

func (e *Editor) SetCornerRadius(r float64) {
	if r < 0 || !core.Finite(r) {
		return
	}
	e.applyStyle(func(o *core.Object) bool {
		if !o.Traits().CornerRadius {
			return false
		}
		o.Rx, o.Ry = r, r
		return true
	})
}

// SetShadow sets or, with nil, removes the shadow of the selection.
func (e *Editor) SetShadow(s *core.Shadow) {
	e.applyStyle(func(o *core.Object) bool {
		if !o.Traits().Shadow {
			return false
		}
		if s == nil {
			o.Shadow = nil
		} else {
			c := *s
			o.Shadow = &c
		}
		return true
	})
}

// SetGradient realizes desc on each selected object's box and keeps the
// authoring parameters on the object.
func (e *Editor) SetGradient(desc core.GradientDescriptor) error {
	if err := desc.Validate(); err != nil {
		return err
	}
	e.applyStyle(func(o *core.Object) bool {
		return eachFillTarget(o, func(o *core.Object) {
			g := Realize(desc, o.Width, o.Height)
			o.Fill = core.Fill{Kind: core.FillGradient, Gradient: &g}
			o.GradientSpec = desc.Clone()
		})
	})
	return nil
}

func (e *Editor) ActiveFillColor() string {
	if o := e.first(); o != nil && o.Fill.Kind == core.FillColor {
		return o.Fill.Color
	}
	return e.style.fill
}

func (e *Editor) ActiveStrokeColor() string {
	o := e.first()
	if o == nil {
		return e.style.stroke
	}
	if o.Traits().StrokeAsFill {
		if o.Fill.Kind == core.FillColor {
			return o.Fill.Color
		}
		return e.style.stroke
	}
	if o.Stroke == "" {
		return e.style.stroke
	}
	return o.Stroke
}

func (e *Editor) ActiveStrokeWidth() float64 {
	if o := e.first(); o != nil && o.Traits().Stroke {
		return o.StrokeWidth
	}
	return e.style.strokeWidth
}

func (e *Editor) ActiveStrokeDashArray() []float64 {
	if o := e.first(); o != nil && o.Traits().Stroke {
		return append([]float64(nil), o.StrokeDashArray...)
	}
	return append([]float64(nil), e.style.dash...)
}

func (e *Editor) ActiveOpacity() float64 {
	if o := e.first(); o != nil {
		return o.Opacity
	}
	return DefaultOpacity
}

func (e *Editor) activeText() *core.Object {
	if o := e.first(); o != nil && o.Traits().Font {
		return o
	}
	return nil
}

func (e *Editor) ActiveFontFamily() string {
	if o := e.activeText(); o != nil {
		if o.OriginalFont != "" {
			return o.OriginalFont
		}
		return o.FontFamily
	}
	return e.style.fontFamily
}

func (e *Editor) ActiveFontSize() float64 {
	if o := e.activeText(); o != nil {
		return o.FontSize
	}
	return DefaultFontSize
}

func (e *Editor) ActiveFontWeight() string {
	if o := e.activeText(); o != nil && o.FontWeight != "" {
		return o.FontWeight
	}
	return DefaultFontWeight
}

func (e *Editor) ActiveFontStyle() string {
	if o := e.activeText(); o != nil && o.FontStyle != "" {
		return o.FontStyle
	}
	return DefaultFontStyle
}

func (e *Editor) ActiveFontUnderline() bool {
	if o := e.activeText(); o != nil {
		return o.Underline
	}
	return false
}

func (e *Editor) ActiveFontLinethrough() bool {
	if o := e.activeText(); o != nil {
		return o.Linethrough
	}
	return false
}

func (e *Editor) ActiveTextAlign() string {
	if o := e.activeText(); o != nil && o.TextAlign != "" {
		return o.TextAlign
	}
	return DefaultTextAlign
}

func (e *Editor) ActiveCornerRadius() float64 {
	if o := e.first(); o != nil && o.Traits().CornerRadius {
		return o.Rx
	}
	return 0
}

func (e *Editor) ActiveShadow() *core.Shadow {
	if o := e.first(); o != nil && o.Shadow != nil {
		s := *o.Shadow
		return &s
	}
	return nil
}

// ActiveGradient returns the authoring parameters of the first selected object's
// gradient, or the default gradient.
func (e *Editor) ActiveGradient() core.GradientDescriptor {
	if o := e.first(); o != nil && o.GradientSpec != nil {
		return *o.GradientSpec.Clone()
	}
	return *defaultGradient.Clone()
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
