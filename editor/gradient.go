package editor

import (
	"math"
	"sort"

	"canvas-editor/core"
)

// LinearEndpoints places the gradient line through the center of a w×h box at
// angle degrees, with both ends on the box's bounding circle.
func LinearEndpoints(angle, w, h float64) (start, end core.Point) {
	cx, cy := w/2, h/2
	r := math.Sqrt(cx*cx + cy*cy)
	rad := angle * math.Pi / 180
	dx, dy := r*math.Cos(rad), r*math.Sin(rad)
	return core.Point{X: cx - dx, Y: cy - dy}, core.Point{X: cx + dx, Y: cy + dy}
}

// RadialGeometry returns the center and radius of a radial gradient on a w×h box.
func RadialGeometry(w, h float64) (center core.Point, radius float64) {
	return core.Point{X: w / 2, Y: h / 2}, math.Min(w, h) / 2
}

// Realize turns authoring parameters into a fill primitive for a w×h box.
// Conic gradients have no backend support and are drawn as linear ones.
func Realize(desc core.GradientDescriptor, w, h float64) core.Gradient {
	g := core.Gradient{Type: desc.Type, Stops: make([]core.ColorStop, len(desc.Stops))}
	for i, s := range desc.Stops {
		g.Stops[i] = core.ColorStop{Offset: s.Position / 100, Color: s.Color, Opacity: s.Opacity}
	}
	sort.SliceStable(g.Stops, func(i, j int) bool { return g.Stops[i].Offset < g.Stops[j].Offset })
	if desc.Type == core.GradientRadial {
		c, r := RadialGeometry(w, h)
		g.X1, g.Y1, g.X2, g.Y2 = c.X, c.Y, c.X, c.Y
		g.R1, g.R2 = 0, r
		return g
	}
	g.Type = core.GradientLinear
	start, end := LinearEndpoints(desc.Angle, w, h)
	g.X1, g.Y1, g.X2, g.Y2 = start.X, start.Y, end.X, end.Y
	return g
}
