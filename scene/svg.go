package scene

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"image"
	"image/png"
	"io"
	"math"
	"strconv"
	"strings"

	"canvas-editor/core"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/recording"
	"github.com/gogpu/gg/text"
)

// ToSVG renders the visible objects as an SVG document. A nil region covers the
// whole viewport.
//
// Objects are recorded once with a recording.Recorder and played back to the
// "svg" backend when one is registered (github.com/gogpu/gg-svg), otherwise to
// the built-in writer below.
func (c *Canvas) ToSVG(region *core.Rect) (string, error) {
	if c.detached {
		return "", ErrDetached
	}
	r := core.Rect{Width: float64(c.width), Height: float64(c.height)}
	if region != nil {
		r = *region
	}
	w, h := int(math.Ceil(r.Width)), int(math.Ceil(r.Height))
	if w <= 0 || h <= 0 {
		return "", fmt.Errorf("empty export region %vx%v", r.Width, r.Height)
	}

	rec := recording.NewRecorder(w, h)
	p := newVectorPainter(rec)
	p.Translate(-r.Left, -r.Top)
	if err := c.drawAll(p); err != nil {
		c.log.WithError(err).Warn("Some objects failed to record")
	}

	backend := recording.Backend(newSVGBackend(p.text.runs))
	if recording.IsRegistered("svg") {
		b, err := recording.NewBackend("svg")
		if err != nil {
			return "", err
		}
		backend = b
	}
	wb, ok := backend.(recording.WriterBackend)
	if !ok {
		return "", fmt.Errorf("%w: svg backend cannot write", core.ErrUnsupported)
	}
	if err := rec.FinishRecording().Playback(wb); err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := wb.WriteTo(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// svgBackend writes recorded commands as SVG 1.1 elements in device coordinates.
type svgBackend struct {
	width, height int
	body, defs    strings.Builder
	out           []byte
	ids           int

	transform recording.Matrix
	clip      string
	stack     []svgState

	runs []textRun
	next int
}

type svgState struct {
	transform recording.Matrix
	clip      string
}

var _ recording.WriterBackend = (*svgBackend)(nil)

func newSVGBackend(runs []textRun) *svgBackend {
	return &svgBackend{runs: runs}
}

func (b *svgBackend) Begin(width, height int) error {
	b.width, b.height = width, height
	b.body.Reset()
	b.defs.Reset()
	b.out = nil
	b.ids, b.next = 0, 0
	b.transform = recording.Identity()
	b.clip = ""
	b.stack = b.stack[:0]
	return nil
}

func (b *svgBackend) End() error {
	var out strings.Builder
	out.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="no" ?>` + "\n")
	fmt.Fprintf(&out, `<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" version="1.1" width="%d" height="%d" viewBox="0 0 %d %d">`+"\n",
		b.width, b.height, b.width, b.height)
	if b.defs.Len() > 0 {
		out.WriteString("<defs>\n")
		out.WriteString(b.defs.String())
		out.WriteString("</defs>\n")
	}
	out.WriteString(b.body.String())
	out.WriteString("</svg>\n")
	b.out = []byte(out.String())
	return nil
}

func (b *svgBackend) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(b.out)
	return int64(n), err
}

func (b *svgBackend) Save() {
	b.stack = append(b.stack, svgState{transform: b.transform, clip: b.clip})
}

func (b *svgBackend) Restore() {
	if len(b.stack) == 0 {
		return
	}
	s := b.stack[len(b.stack)-1]
	b.stack = b.stack[:len(b.stack)-1]
	b.transform, b.clip = s.transform, s.clip
}

func (b *svgBackend) SetTransform(m recording.Matrix) {
	b.transform = m
}

// SetClip intersects the current clip with path.
func (b *svgBackend) SetClip(path *gg.Path, rule recording.FillRule) {
	id := b.id("clip")
	fmt.Fprintf(&b.defs, `<clipPath id="%s"><path d="%s"%s%s/></clipPath>`+"\n",
		id, pathData(path), clipRule(rule), b.clipAttr())
	b.clip = id
}

func (b *svgBackend) ClearClip() {
	b.clip = ""
}

func (b *svgBackend) FillPath(path *gg.Path, brush recording.Brush, rule recording.FillRule) {
	attrs := b.paint("fill", brush)
	if rule == recording.FillRuleEvenOdd {
		attrs += ` fill-rule="evenodd"`
	}
	fmt.Fprintf(&b.body, `<path d="%s" %s%s/>`+"\n", pathData(path), attrs, b.clipAttr())
}

func (b *svgBackend) StrokePath(path *gg.Path, brush recording.Brush, stroke recording.Stroke) {
	attrs := `fill="none" ` + b.paint("stroke", brush) + ` stroke-width="` + num(stroke.Width) + `"`
	switch stroke.Cap {
	case recording.LineCapRound:
		attrs += ` stroke-linecap="round"`
	case recording.LineCapSquare:
		attrs += ` stroke-linecap="square"`
	}
	switch stroke.Join {
	case recording.LineJoinRound:
		attrs += ` stroke-linejoin="round"`
	case recording.LineJoinBevel:
		attrs += ` stroke-linejoin="bevel"`
	}
	if len(stroke.DashPattern) > 0 {
		dash := make([]string, len(stroke.DashPattern))
		for i, d := range stroke.DashPattern {
			dash[i] = num(d)
		}
		attrs += ` stroke-dasharray="` + strings.Join(dash, " ") + `"`
		if stroke.DashOffset != 0 {
			attrs += ` stroke-dashoffset="` + num(stroke.DashOffset) + `"`
		}
	}
	fmt.Fprintf(&b.body, `<path d="%s" %s%s/>`+"\n", pathData(path), attrs, b.clipAttr())
}

func (b *svgBackend) FillRect(r recording.Rect, brush recording.Brush) {
	fmt.Fprintf(&b.body, `<rect x="%s" y="%s" width="%s" height="%s" %s%s/>`+"\n",
		num(r.MinX), num(r.MinY), num(r.Width()), num(r.Height()), b.paint("fill", brush), b.clipAttr())
}

func (b *svgBackend) DrawImage(img image.Image, _, dst recording.Rect, opts recording.ImageOptions) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return
	}
	fmt.Fprintf(&b.body, `<image x="%s" y="%s" width="%s" height="%s" preserveAspectRatio="none" xlink:href="%s"`,
		num(dst.MinX), num(dst.MinY), num(dst.Width()), num(dst.Height()), core.EncodeDataURI("image/png", buf.Bytes()))
	if opts.Alpha < 1 {
		fmt.Fprintf(&b.body, ` opacity="%s"`, num(opts.Alpha))
	}
	fmt.Fprintf(&b.body, "%s/>\n", b.clipAttr())
}

// DrawText receives device coordinates; the run supplies the font attributes
// and the transform's rotation is kept on the element.
func (b *svgBackend) DrawText(s string, x, y float64, _ text.Face, brush recording.Brush) {
	var run textRun
	if b.next < len(b.runs) {
		run = b.runs[b.next]
	}
	b.next++

	fmt.Fprintf(&b.body, `<text x="%s" y="%s"`, num(x), num(y))
	if run.family != "" {
		fmt.Fprintf(&b.body, ` font-family="%s"`, escape(run.family))
	}
	if run.size > 0 {
		fmt.Fprintf(&b.body, ` font-size="%s"`, num(run.size))
	}
	if run.weight != "" {
		fmt.Fprintf(&b.body, ` font-weight="%s"`, escape(run.weight))
	}
	if run.style != "" {
		fmt.Fprintf(&b.body, ` font-style="%s"`, escape(run.style))
	}
	if m := b.transform; math.Abs(m.B) > 1e-9 || math.Abs(m.D) > 1e-9 {
		deg := math.Atan2(m.D, m.A) * 180 / math.Pi
		fmt.Fprintf(&b.body, ` transform="rotate(%s %s %s)"`, num(deg), num(x), num(y))
	}
	fmt.Fprintf(&b.body, " %s%s>%s</text>\n", b.paint("fill", brush), b.clipAttr(), escape(s))
}

func (b *svgBackend) id(prefix string) string {
	b.ids++
	return prefix + "_" + strconv.Itoa(b.ids)
}

func (b *svgBackend) clipAttr() string {
	if b.clip == "" {
		return ""
	}
	return ` clip-path="url(#` + b.clip + `)"`
}

// paint returns the attributes painting with brush as attr ("fill" or "stroke"),
// writing gradient definitions into defs.
func (b *svgBackend) paint(attr string, brush recording.Brush) string {
	switch br := brush.(type) {
	case recording.SolidBrush:
		return solidPaint(attr, br.Color)
	case *recording.LinearGradientBrush:
		id := b.id("gradient")
		fmt.Fprintf(&b.defs, `<linearGradient id="%s" gradientUnits="userSpaceOnUse" x1="%s" y1="%s" x2="%s" y2="%s">`+"\n",
			id, num(br.Start.X), num(br.Start.Y), num(br.End.X), num(br.End.Y))
		b.stops(br.Stops)
		b.defs.WriteString("</linearGradient>\n")
		return attr + `="url(#` + id + `)"`
	case *recording.RadialGradientBrush:
		id := b.id("gradient")
		fmt.Fprintf(&b.defs, `<radialGradient id="%s" gradientUnits="userSpaceOnUse" cx="%s" cy="%s" r="%s" fx="%s" fy="%s" fr="%s">`+"\n",
			id, num(br.Center.X), num(br.Center.Y), num(br.EndRadius), num(br.Focus.X), num(br.Focus.Y), num(br.StartRadius))
		b.stops(br.Stops)
		b.defs.WriteString("</radialGradient>\n")
		return attr + `="url(#` + id + `)"`
	case *recording.SweepGradientBrush:
		if len(br.Stops) > 0 {
			return solidPaint(attr, br.Stops[0].Color)
		}
	}
	return attr + `="none"`
}

func (b *svgBackend) stops(stops []recording.GradientStop) {
	for _, s := range stops {
		fmt.Fprintf(&b.defs, `<stop offset="%s" stop-color="%s" stop-opacity="%s"/>`+"\n",
			num(s.Offset), hexColor(s.Color), num(s.Color.A))
	}
}

func solidPaint(attr string, c gg.RGBA) string {
	out := attr + `="` + hexColor(c) + `"`
	if c.A < 1 {
		out += ` ` + attr + `-opacity="` + num(c.A) + `"`
	}
	return out
}

func hexColor(c gg.RGBA) string {
	to8 := func(f float64) uint8 { return uint8(math.Round(clamp01(f) * 255)) }
	return fmt.Sprintf("#%02x%02x%02x", to8(c.R), to8(c.G), to8(c.B))
}

func pathData(path *gg.Path) string {
	var d strings.Builder
	path.Iterate(func(verb gg.PathVerb, c []float64) {
		if d.Len() > 0 {
			d.WriteByte(' ')
		}
		switch verb {
		case gg.MoveTo:
			d.WriteString("M" + num(c[0]) + " " + num(c[1]))
		case gg.LineTo:
			d.WriteString("L" + num(c[0]) + " " + num(c[1]))
		case gg.QuadTo:
			d.WriteString("Q" + num(c[0]) + " " + num(c[1]) + " " + num(c[2]) + " " + num(c[3]))
		case gg.CubicTo:
			d.WriteString("C" + num(c[0]) + " " + num(c[1]) + " " +
				num(c[2]) + " " + num(c[3]) + " " + num(c[4]) + " " + num(c[5]))
		case gg.Close:
			d.WriteString("Z")
		}
	})
	return d.String()
}

func clipRule(rule recording.FillRule) string {
	if rule == recording.FillRuleEvenOdd {
		return ` clip-rule="evenodd"`
	}
	return ""
}

func num(f float64) string {
	return strconv.FormatFloat(math.Round(f*1000)/1000, 'f', -1, 64)
}

func escape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
