package editor

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"math"

	"canvas-editor/core"
	"canvas-editor/scene"

	"github.com/gogpu/gg"
	xdraw "golang.org/x/image/draw"
)

type (
	BackgroundKind string
	PatternKind    string

	// Background describes a workspace fill change.
	Background struct {
		Kind         BackgroundKind `json:"kind"`
		Color        string         `json:"color,omitempty"`
		Pattern      PatternKind    `json:"pattern,omitempty"`
		PatternColor string         `json:"patternColor,omitempty"`
		Spacing      float64        `json:"spacing,omitempty"`
		Src          string         `json:"src,omitempty"`
	}
)

const (
	BackgroundColor       BackgroundKind = "color"
	BackgroundTransparent BackgroundKind = "transparent"
	BackgroundPattern     BackgroundKind = "pattern"
	BackgroundImage       BackgroundKind = "image"

	PatternDots         PatternKind = "dots"
	PatternGrid         PatternKind = "grid"
	PatternLines        PatternKind = "lines"
	PatternDiagonal     PatternKind = "diagonal"
	PatternCheckerboard PatternKind = "checkerboard"

	defaultPatternColor   = "#cccccc"
	defaultPatternSpacing = 20
)

// ChangeBackground replaces the workspace fill. Image backgrounds load
// asynchronously; the other kinds apply immediately.
func (e *Editor) ChangeBackground(bg Background) error {
	switch bg.Kind {
	case BackgroundColor:
		if bg.Color == "" {
			return fmt.Errorf("%w: background color required", core.ErrInvalidArgument)
		}
		e.setWorkspaceFill(core.SolidFill(bg.Color), bg.Color)
	case BackgroundTransparent:
		e.setWorkspaceFill(core.Fill{Kind: core.FillNone}, "transparent")
	case BackgroundPattern:
		fill, err := patternFill(bg)
		if err != nil {
			return err
		}
		e.setWorkspaceFill(fill, bg.Color)
	case BackgroundImage:
		if bg.Src == "" {
			return fmt.Errorf("%w: background image source required", core.ErrInvalidArgument)
		}
		wsID := e.Workspace().ID
		e.loadImage(bg.Src, func(img image.Image) {
			ws := e.surface.Find(wsID)
			if ws == nil {
				e.log.WithField("workspace_id", wsID).Debug("Workspace gone before background image loaded")
				return
			}
			uri, err := coverImage(img, int(math.Round(ws.Width)), int(math.Round(ws.Height)))
			if err != nil {
				e.log.WithError(err).Error("Background image failed")
				e.notify("error", "Failed to apply background image")
				return
			}
			e.setWorkspaceFill(core.Fill{Kind: core.FillImage, Pattern: &core.Pattern{
				Source: uri,
				Repeat: "no-repeat",
				Width:  int(math.Round(ws.Width)),
				Height: int(math.Round(ws.Height)),
			}}, "")
		})
	default:
		return fmt.Errorf("%w: background kind %q", core.ErrInvalidArgument, bg.Kind)
	}
	return nil
}

func (e *Editor) setWorkspaceFill(fill core.Fill, color string) {
	ws := e.Workspace()
	ws.Fill = fill
	ws.GradientSpec = nil
	if p := e.pages.current(); p != nil && color != "" {
		p.Background = color
	}
	e.surface.Modified(ws)
	// Some fills reorder the scene; the workspace must stay back-most.
	e.assertWorkspace(ws)
	e.render()
}

func patternFill(bg Background) (core.Fill, error) {
	spacing := bg.Spacing
	if spacing <= 0 {
		spacing = defaultPatternSpacing
	}
	fg := bg.PatternColor
	if fg == "" {
		fg = defaultPatternColor
	}
	fgColor, ok := scene.ParseColor(fg)
	if !ok {
		return core.Fill{}, fmt.Errorf("%w: pattern color %q", core.ErrInvalidArgument, fg)
	}
	var base gg.RGBA
	if bg.Color != "" {
		if base, ok = scene.ParseColor(bg.Color); !ok {
			return core.Fill{}, fmt.Errorf("%w: background color %q", core.ErrInvalidArgument, bg.Color)
		}
	}

	tile, err := renderTile(bg.Pattern, spacing, base, fgColor)
	if err != nil {
		return core.Fill{}, err
	}
	return core.Fill{Kind: core.FillPattern, Pattern: &core.Pattern{
		Source: tile.uri,
		Repeat: "repeat",
		Width:  tile.size,
		Height: tile.size,
	}}, nil
}

type tile struct {
	uri  string
	size int
}

// renderTile draws one repeat unit of a pattern.
func renderTile(kind PatternKind, spacing float64, base, fg gg.RGBA) (tile, error) {
	size := int(math.Ceil(spacing))
	if kind == PatternCheckerboard {
		size *= 2
	}
	dc := gg.NewContext(size, size)
	defer dc.Close()
	if base.A > 0 {
		dc.ClearWithColor(base)
	}
	s := float64(size)
	dc.SetFillBrush(gg.Solid(fg))
	dc.SetStrokeBrush(gg.Solid(fg))
	dc.SetLineWidth(1)

	var err error
	switch kind {
	case PatternDots:
		dc.DrawCircle(s/2, s/2, math.Max(s/10, 1))
		err = dc.Fill()
	case PatternGrid:
		dc.DrawLine(0, 0.5, s, 0.5)
		dc.DrawLine(0.5, 0, 0.5, s)
		err = dc.Stroke()
	case PatternLines:
		dc.DrawLine(0, s/2, s, s/2)
		err = dc.Stroke()
	case PatternDiagonal:
		dc.DrawLine(0, s, s, 0)
		err = dc.Stroke()
	case PatternCheckerboard:
		half := s / 2
		dc.DrawRectangle(0, 0, half, half)
		dc.DrawRectangle(half, half, half, half)
		err = dc.Fill()
	default:
		return tile{}, fmt.Errorf("%w: pattern %q", core.ErrInvalidArgument, kind)
	}
	if err != nil {
		return tile{}, err
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return tile{}, err
	}
	return tile{uri: core.EncodeDataURI("image/png", buf.Bytes()), size: size}, nil
}

// coverImage scales img to cover a w×h box and crops the overflow around the center.
func coverImage(img image.Image, w, h int) (string, error) {
	if w <= 0 || h <= 0 {
		return "", fmt.Errorf("workspace has no area")
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return "", fmt.Errorf("image has no pixels")
	}
	scale := math.Max(float64(w)/float64(b.Dx()), float64(h)/float64(b.Dy()))
	cw, ch := int(math.Round(float64(w)/scale)), int(math.Round(float64(h)/scale))
	x0 := b.Min.X + (b.Dx()-cw)/2
	y0 := b.Min.Y + (b.Dy()-ch)/2
	src := image.Rect(x0, y0, x0+cw, y0+ch).Intersect(b)

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, src, xdraw.Over, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return "", err
	}
	return core.EncodeDataURI("image/png", buf.Bytes()), nil
}
