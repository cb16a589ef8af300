package scene

import (
	"image"
	"image/color"
	"math"

	"canvas-editor/core"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/recording"
	"github.com/gogpu/gg/text"
	"golang.org/x/image/draw"
)

// painter is the drawing surface shared by raster and vector output. Both a
// gg.Context and a recording.Recorder satisfy most of it directly.
type painter interface {
	Push()
	Pop()
	Translate(x, y float64)
	Scale(sx, sy float64)
	RotateAbout(angle, x, y float64)
	TransformPoint(x, y float64) (float64, float64)

	MoveTo(x, y float64)
	LineTo(x, y float64)
	QuadraticTo(cx, cy, x, y float64)
	CubicTo(c1x, c1y, c2x, c2y, x, y float64)
	ClosePath()
	ClearPath()
	DrawRectangle(x, y, w, h float64)
	DrawRoundedRectangle(x, y, w, h, r float64)
	DrawEllipse(x, y, rx, ry float64)
	DrawLine(x1, y1, x2, y2 float64)

	SetFillBrush(b gg.Brush)
	SetStrokeBrush(b gg.Brush)
	SetLineWidth(w float64)
	SetDash(lengths ...float64)
	ClearDash()
	Fill() error
	FillPreserve() error
	Stroke() error

	MeasureString(s string) (float64, float64)
	DrawString(s string, x, y float64)

	// textScale is the factor between object units and the units DrawString
	// positions and font sizes are given in.
	textScale() float64
	// useFont selects the face for a text object; false means text cannot be drawn.
	useFont(face text.Face, o *core.Object, size float64) bool
	drawImage(img image.Image, w, h, opacity float64)
	// fillPattern paints the current path with img tiled at pw×ph and clears it.
	fillPattern(img image.Image, pw, ph int, w, h float64)
}

type rasterPainter struct {
	*gg.Context
}

// Text is drawn in device space, so the face is sized by the current scale.
func (p rasterPainter) textScale() float64 {
	return deviceScale(p)
}

func (p rasterPainter) useFont(face text.Face, _ *core.Object, _ float64) bool {
	if face == nil {
		return false
	}
	p.SetFont(face)
	return true
}

func (p rasterPainter) DrawString(s string, x, y float64) {
	dx, dy := p.Context.TransformPoint(x, y)
	p.Context.DrawString(s, dx, dy)
}

func (p rasterPainter) MeasureString(s string) (float64, float64) {
	w, h := p.Context.MeasureString(s)
	scale := p.textScale()
	return w / scale, h / scale
}

func (p rasterPainter) drawImage(img image.Image, w, h, opacity float64) {
	p.DrawImageEx(gg.ImageBufFromImage(img), gg.DrawImageOptions{
		DstWidth:  w,
		DstHeight: h,
		Opacity:   opacity,
	})
}

func (p rasterPainter) fillPattern(img image.Image, pw, ph int, _, _ float64) {
	p.SetFillPattern(p.CreateImagePattern(gg.ImageBufFromImage(img), 0, 0, pw, ph))
	_ = p.Context.Fill()
}

// vectorPainter records into a recording.Recorder. The recorder bakes the
// transform into path coordinates, so widths, dashes and gradient geometry are
// mapped to device units here.
type vectorPainter struct {
	*recording.Recorder
	text *textState
}

// textState carries the text attributes a recording drops on playback, one
// run per DrawString in recording order.
type textState struct {
	current textRun
	runs    []textRun
}

type textRun struct {
	family string
	size   float64
	weight string
	style  string
}

func newVectorPainter(rec *recording.Recorder) vectorPainter {
	return vectorPainter{Recorder: rec, text: &textState{}}
}

func (p vectorPainter) scale() float64 {
	return p.GetTransform().ScaleFactor()
}

func (p vectorPainter) textScale() float64 {
	return p.scale()
}

func (p vectorPainter) useFont(face text.Face, o *core.Object, size float64) bool {
	if face != nil {
		p.SetFont(face)
	}
	p.SetFontFamily(o.FontFamily)
	p.SetFontSize(size)
	p.text.current = textRun{family: o.FontFamily, size: size, weight: o.FontWeight, style: o.FontStyle}
	return true
}

func (p vectorPainter) DrawString(s string, x, y float64) {
	p.Recorder.DrawString(s, x, y)
	p.text.runs = append(p.text.runs, p.text.current)
}

func (p vectorPainter) MeasureString(s string) (float64, float64) {
	w, h := p.Recorder.MeasureString(s)
	scale := p.scale()
	return w / scale, h / scale
}

func (p vectorPainter) SetLineWidth(w float64) {
	p.Recorder.SetLineWidth(w * p.scale())
}

func (p vectorPainter) SetDash(lengths ...float64) {
	scale := p.scale()
	scaled := make([]float64, len(lengths))
	for i, l := range lengths {
		scaled[i] = l * scale
	}
	p.Recorder.SetDash(scaled...)
}

func (p vectorPainter) SetFillBrush(b gg.Brush) {
	p.Recorder.SetFillBrush(p.toDevice(b))
}

func (p vectorPainter) SetStrokeBrush(b gg.Brush) {
	p.Recorder.SetStrokeBrush(p.toDevice(b))
}

func (p vectorPainter) toDevice(b gg.Brush) gg.Brush {
	m := p.GetTransform()
	pt := func(q gg.Point) gg.Point {
		x, y := m.TransformPoint(q.X, q.Y)
		return gg.Point{X: x, Y: y}
	}
	switch g := b.(type) {
	case *gg.LinearGradientBrush:
		out := *g
		out.Start, out.End = pt(g.Start), pt(g.End)
		return &out
	case *gg.RadialGradientBrush:
		out := *g
		out.Center, out.Focus = pt(g.Center), pt(g.Focus)
		s := m.ScaleFactor()
		out.StartRadius, out.EndRadius = g.StartRadius*s, g.EndRadius*s
		return &out
	}
	return b
}

func (p vectorPainter) Fill() error {
	p.Recorder.Fill()
	return nil
}

func (p vectorPainter) FillPreserve() error {
	p.Recorder.FillPreserve()
	return nil
}

func (p vectorPainter) Stroke() error {
	p.Recorder.Stroke()
	return nil
}

func (p vectorPainter) drawImage(img image.Image, w, h, opacity float64) {
	p.DrawImageScaled(fade(img, opacity), 0, 0, w, h)
}

func (p vectorPainter) fillPattern(img image.Image, pw, ph int, w, h float64) {
	tiled := tile(img, pw, ph, w, h)
	if tiled == nil {
		p.ClearPath()
		return
	}
	p.Push()
	p.Clip()
	p.DrawImageScaled(tiled, 0, 0, w, h)
	p.ResetClip()
	p.Pop()
}

// maxTileArea caps the pixels of a pre-tiled pattern image.
const maxTileArea = 4096 * 4096

// tile repeats img across a w×h area, each copy drawn at pw×ph.
func tile(img image.Image, pw, ph int, w, h float64) image.Image {
	iw, ih := int(math.Ceil(w)), int(math.Ceil(h))
	if iw <= 0 || ih <= 0 || iw*ih > maxTileArea {
		return nil
	}
	dc := gg.NewContext(iw, ih)
	defer dc.Close()
	dc.SetFillPattern(dc.CreateImagePattern(gg.ImageBufFromImage(img), 0, 0, pw, ph))
	dc.DrawRectangle(0, 0, w, h)
	if err := dc.Fill(); err != nil {
		return nil
	}
	out := image.NewRGBA(image.Rect(0, 0, iw, ih))
	draw.Draw(out, out.Bounds(), dc.Image(), image.Point{}, draw.Src)
	return out
}

// fade returns img with its alpha multiplied by opacity.
func fade(img image.Image, opacity float64) image.Image {
	if opacity >= 1 {
		return img
	}
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	mask := image.NewUniform(color.Alpha{A: uint8(clamp01(opacity) * 255)})
	draw.DrawMask(out, out.Bounds(), img, b.Min, mask, image.Point{}, draw.Over)
	return out
}

func deviceScale(p interface {
	TransformPoint(x, y float64) (float64, float64)
}) float64 {
	sx, sy := p.TransformPoint(1, 0)
	ox, oy := p.TransformPoint(0, 0)
	return math.Hypot(sx-ox, sy-oy)
}
