package scene

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"math"
	"strings"

	// Decoders for data URI sources.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"canvas-editor/core"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	_ "golang.org/x/image/webp"
)

// ToImage rasterizes the visible objects and returns a data URI.
func (c *Canvas) ToImage(opts core.RasterOptions) (string, error) {
	if c.detached {
		return "", ErrDetached
	}
	region := core.Rect{Width: float64(c.width), Height: float64(c.height)}
	if opts.Region != nil {
		region = *opts.Region
	}
	m := opts.Multiplier
	if m <= 0 {
		m = 1
	}
	w, h := int(math.Ceil(region.Width*m)), int(math.Ceil(region.Height*m))
	if w <= 0 || h <= 0 {
		return "", fmt.Errorf("empty export region %vx%v", region.Width, region.Height)
	}

	dc := gg.NewContext(w, h)
	defer dc.Close()
	format := strings.ToLower(opts.Format)
	if format == "jpeg" || format == "jpg" {
		dc.ClearWithColor(gg.RGB(1, 1, 1))
	}
	dc.Scale(m, m)
	dc.Translate(-region.Left, -region.Top)

	if err := c.drawAll(rasterPainter{dc}); err != nil {
		c.log.WithError(err).Warn("Some objects failed to rasterize")
	}
	return encode(dc, format, opts.Quality)
}

// RenderObject rasterizes o alone, scaled to fit a size×size square.
func (c *Canvas) RenderObject(o *core.Object, size int) (string, error) {
	if c.detached {
		return "", ErrDetached
	}
	if o == nil || size <= 0 {
		return "", fmt.Errorf("nothing to render")
	}
	box := o.BoundingRect()
	if box.Width <= 0 || box.Height <= 0 {
		return "", fmt.Errorf("object %s has an empty box", o.ID)
	}
	scale := float64(size) / math.Max(box.Width, box.Height)

	dc := gg.NewContext(size, size)
	defer dc.Close()
	dc.Translate((float64(size)-box.Width*scale)/2, (float64(size)-box.Height*scale)/2)
	dc.Scale(scale, scale)
	dc.Translate(-box.Left, -box.Top)
	if err := c.drawObject(rasterPainter{dc}, o); err != nil {
		return "", err
	}
	return encode(dc, "png", 1)
}

func (c *Canvas) drawAll(p painter) error {
	var errs []error
	for _, o := range c.objects {
		if o.Visible {
			errs = append(errs, c.drawObject(p, o))
		}
	}
	return errors.Join(errs...)
}

func encode(dc *gg.Context, format string, quality float64) (string, error) {
	var buf bytes.Buffer
	switch format {
	case "", "png":
		if err := dc.EncodePNG(&buf); err != nil {
			return "", err
		}
		return core.EncodeDataURI("image/png", buf.Bytes()), nil
	case "jpeg", "jpg":
		q := int(quality * 100)
		if q <= 0 || q > 100 {
			q = 100
		}
		if err := dc.EncodeJPEG(&buf, q); err != nil {
			return "", err
		}
		return core.EncodeDataURI("image/jpeg", buf.Bytes()), nil
	default:
		return "", fmt.Errorf("%w: image format %q", core.ErrUnsupported, format)
	}
}

func (c *Canvas) drawObject(p painter, o *core.Object) error {
	if o.ScaleX == 0 || o.ScaleY == 0 {
		return nil
	}
	p.Push()
	defer p.Pop()

	if o.Angle != 0 {
		center := o.Center()
		p.RotateAbout(o.Angle*math.Pi/180, center.X, center.Y)
	}
	p.Translate(o.Left, o.Top)
	p.Scale(o.ScaleX, o.ScaleY)

	switch o.Kind {
	case core.KindGroup:
		var errs []error
		for _, child := range o.Objects {
			if child.Visible {
				errs = append(errs, c.drawObject(p, child))
			}
		}
		return errors.Join(errs...)
	case core.KindImage:
		return c.drawImage(p, o)
	case core.KindText:
		return c.drawText(p, o)
	}

	if o.Shadow != nil {
		if col, ok := ParseColor(o.Shadow.Color); ok {
			p.Push()
			p.Translate(o.Shadow.OffsetX, o.Shadow.OffsetY)
			if err := tracePath(p, o); err == nil {
				p.SetFillBrush(gg.Solid(withAlpha(col, o.Opacity*0.5)))
				_ = p.Fill()
			}
			p.Pop()
		}
	}

	if err := tracePath(p, o); err != nil {
		return err
	}
	filled, err := c.applyFill(p, o)
	if err != nil {
		p.ClearPath()
		return err
	}
	if !filled {
		if !o.Traits().Stroke || o.Stroke == "" || o.StrokeWidth <= 0 {
			p.ClearPath()
			return nil
		}
	} else if err := p.FillPreserve(); err != nil {
		p.ClearPath()
		return err
	}
	return strokePath(p, o)
}

func tracePath(p painter, o *core.Object) error {
	w, h := o.Width, o.Height
	switch {
	case o.Kind == core.KindBackground || o.Shape == core.ShapeRect:
		if o.Rx > 0 {
			p.DrawRoundedRectangle(0, 0, w, h, o.Rx)
		} else {
			p.DrawRectangle(0, 0, w, h)
		}
	case o.Shape == core.ShapeCircle || o.Shape == core.ShapeEllipse:
		p.DrawEllipse(w/2, h/2, w/2, h/2)
	case o.Shape == core.ShapeTriangle:
		p.MoveTo(w/2, 0)
		p.LineTo(w, h)
		p.LineTo(0, h)
		p.ClosePath()
	case o.Shape == core.ShapeLine, o.Shape == core.ShapePolygon, o.IsStroke():
		for i, pt := range o.Points {
			if i == 0 {
				p.MoveTo(pt.X, pt.Y)
			} else {
				p.LineTo(pt.X, pt.Y)
			}
		}
		if o.Shape == core.ShapePolygon {
			p.ClosePath()
		}
	case o.Shape == core.ShapePath:
		cmds, err := core.ParsePathData(o.PathData)
		if err != nil {
			return err
		}
		// Icon path data keeps its own coordinates; shift it into the object box.
		box := core.PathBounds(cmds)
		p.Push()
		defer p.Pop()
		p.Translate(-box.Left, -box.Top)
		for _, cmd := range cmds {
			switch cmd.Op {
			case 'M':
				p.MoveTo(cmd.Points[0].X, cmd.Points[0].Y)
			case 'L':
				p.LineTo(cmd.Points[0].X, cmd.Points[0].Y)
			case 'C':
				p.CubicTo(cmd.Points[0].X, cmd.Points[0].Y, cmd.Points[1].X, cmd.Points[1].Y, cmd.Points[2].X, cmd.Points[2].Y)
			case 'Q':
				p.QuadraticTo(cmd.Points[0].X, cmd.Points[0].Y, cmd.Points[1].X, cmd.Points[1].Y)
			case 'Z':
				p.ClosePath()
			}
		}
	default:
		return fmt.Errorf("%w: shape %q", core.ErrUnsupported, o.Shape)
	}
	return nil
}

// applyFill installs the object's fill brush and reports whether the path still
// needs filling. Image fills are painted here and leave the path traced for the
// stroke.
func (c *Canvas) applyFill(p painter, o *core.Object) (bool, error) {
	if !o.Traits().Fill {
		return false, nil
	}
	switch o.Fill.Kind {
	case core.FillColor:
		col, ok := ParseColor(o.Fill.Color)
		if !ok {
			return false, fmt.Errorf("bad fill color %q", o.Fill.Color)
		}
		p.SetFillBrush(gg.Solid(withAlpha(col, o.Opacity)))
		return true, nil
	case core.FillGradient:
		b, err := gradientBrush(o.Fill.Gradient, o.Opacity)
		if err != nil {
			return false, err
		}
		p.SetFillBrush(b)
		return true, nil
	case core.FillPattern, core.FillImage:
		if o.Fill.Pattern == nil {
			return false, nil
		}
		img, err := c.decodeSource(o.Fill.Pattern.Source)
		if err != nil {
			return false, err
		}
		if o.Fill.Pattern.Repeat == "no-repeat" {
			p.drawImage(img, o.Width, o.Height, o.Opacity)
			return false, nil
		}
		pw, ph := o.Fill.Pattern.Width, o.Fill.Pattern.Height
		if pw <= 0 || ph <= 0 {
			pw, ph = img.Bounds().Dx(), img.Bounds().Dy()
		}
		p.fillPattern(img, pw, ph, o.Width, o.Height)
		return false, tracePath(p, o)
	}
	return false, nil
}

func gradientBrush(g *core.Gradient, opacity float64) (gg.Brush, error) {
	if g == nil || len(g.Stops) == 0 {
		return nil, fmt.Errorf("%w: no stops", core.ErrInvalidGradient)
	}
	stop := func(s core.ColorStop) (float64, gg.RGBA) {
		col, _ := ParseColor(s.Color)
		return s.Offset, withAlpha(col, s.Opacity*opacity)
	}
	if g.Type == core.GradientRadial {
		b := gg.NewRadialGradientBrush(g.X1, g.Y1, g.R1, g.R2)
		for _, s := range g.Stops {
			b.AddColorStop(stop(s))
		}
		return b, nil
	}
	b := gg.NewLinearGradientBrush(g.X1, g.Y1, g.X2, g.Y2)
	for _, s := range g.Stops {
		b.AddColorStop(stop(s))
	}
	return b, nil
}

func strokePath(p painter, o *core.Object) error {
	if !o.Traits().Stroke || o.Stroke == "" || o.StrokeWidth <= 0 {
		p.ClearPath()
		return nil
	}
	col, ok := ParseColor(o.Stroke)
	if !ok {
		p.ClearPath()
		return fmt.Errorf("bad stroke color %q", o.Stroke)
	}
	p.SetStrokeBrush(gg.Solid(withAlpha(col, o.Opacity)))
	p.SetLineWidth(o.StrokeWidth)
	if len(o.StrokeDashArray) > 0 {
		p.SetDash(o.StrokeDashArray...)
	} else {
		p.ClearDash()
	}
	return p.Stroke()
}

func (c *Canvas) drawImage(p painter, o *core.Object) error {
	img, err := c.decodeSource(o.Src)
	if err != nil {
		return err
	}
	p.drawImage(img, o.Width, o.Height, o.Opacity)
	return nil
}

func (c *Canvas) drawText(p painter, o *core.Object) error {
	if o.Text == "" {
		return nil
	}
	scale := p.textScale()
	var face text.Face
	if c.faces != nil {
		face = c.faces(o.FontFamily, o.FontSize*scale)
	}
	if !p.useFont(face, o, o.FontSize*scale) {
		return nil
	}

	col := gg.RGBA{A: 1}
	if o.Fill.Kind == core.FillColor {
		if parsed, ok := ParseColor(o.Fill.Color); ok {
			col = parsed
		}
	}
	p.SetFillBrush(gg.Solid(withAlpha(col, o.Opacity)))

	lineHeight := o.FontSize * 1.16
	for i, line := range strings.Split(o.Text, "\n") {
		lw, _ := p.MeasureString(line)
		x := 0.0
		switch o.TextAlign {
		case "center":
			x = (o.Width - lw) / 2
		case "right":
			x = o.Width - lw
		}
		baseline := lineHeight*float64(i) + o.FontSize
		p.DrawString(line, x, baseline)
		if o.Underline || o.Linethrough {
			p.SetStrokeBrush(gg.Solid(withAlpha(col, o.Opacity)))
			p.SetLineWidth(math.Max(o.FontSize/15, 1))
			if o.Underline {
				p.DrawLine(x, baseline+o.FontSize*0.1, x+lw, baseline+o.FontSize*0.1)
				_ = p.Stroke()
			}
			if o.Linethrough {
				p.DrawLine(x, baseline-o.FontSize*0.3, x+lw, baseline-o.FontSize*0.3)
				_ = p.Stroke()
			}
			p.SetFillBrush(gg.Solid(withAlpha(col, o.Opacity)))
		}
	}
	return nil
}

// decodeSource returns pixels for an image source from the cache or a data URI.
func (c *Canvas) decodeSource(src string) (image.Image, error) {
	if img, ok := c.images[src]; ok {
		return img, nil
	}
	if !core.IsDataURI(src) {
		return nil, fmt.Errorf("image %q not loaded", truncate(src, 48))
	}
	_, data, err := core.DecodeDataURI(src)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	c.images[src] = img
	return img, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
