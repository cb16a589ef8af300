package editor

import (
	"errors"
	"fmt"
	"strings"

	"canvas-editor/core"
)

const pageThumbnailWidth = 256

func isNotFound(err error) bool {
	return errors.Is(err, core.ErrNotFound)
}

// document serializes the scene with the custom field allow-list and the
// workspace size.
func (e *Editor) document() (*core.Document, error) {
	ws := e.Workspace()
	doc, err := e.surface.Serialize(core.DocumentKeys...)
	if err != nil {
		return nil, err
	}
	doc.Width, doc.Height = ws.ScaledSize()
	return doc, nil
}

func (e *Editor) documentJSON() (string, error) {
	doc, err := e.document()
	if err != nil {
		return "", err
	}
	return doc.Marshal()
}

func (e *Editor) workspaceRegion() core.Rect {
	return e.Workspace().BoundingRect()
}

// SaveAsImage rasterizes the workspace area. format is png or jpeg.
func (e *Editor) SaveAsImage(format string) (string, error) {
	format = strings.ToLower(format)
	switch format {
	case "", "png":
		format = "png"
	case "jpg", "jpeg":
		format = "jpeg"
	default:
		return "", e.exportFailed(fmt.Errorf("%w: image format %q", core.ErrUnsupported, format))
	}
	region := e.workspaceRegion()
	uri, err := e.surface.ToImage(core.RasterOptions{
		Format:     format,
		Quality:    1,
		Multiplier: 1,
		Region:     &region,
	})
	if err != nil {
		return "", e.exportFailed(err)
	}
	return uri, nil
}

// SaveAsVector returns SVG markup of the workspace area.
func (e *Editor) SaveAsVector() (string, error) {
	region := e.workspaceRegion()
	svg, err := e.surface.ToSVG(&region)
	if err != nil {
		return "", e.exportFailed(err)
	}
	return svg, nil
}

// SaveAsDocument returns the scene as JSON, keeping the allow-listed custom fields.
func (e *Editor) SaveAsDocument() (string, error) {
	s, err := e.documentJSON()
	if err != nil {
		return "", e.exportFailed(err)
	}
	return s, nil
}

func (e *Editor) exportFailed(err error) error {
	e.log.WithError(err).Error("Export failed")
	e.notify("error", "Export failed")
	return fmt.Errorf("export: %w", err)
}

// LoadDocument replaces the scene with a serialized document. A malformed document
// leaves the scene as it was.
func (e *Editor) LoadDocument(s string) error {
	doc, err := core.ParseDocument(s)
	if err != nil {
		e.log.WithError(err).Error("Document load failed")
		e.notify("error", "Could not open document")
		return err
	}
	e.generation++
	e.history.Cancel()
	var loadErr error
	e.suspend(func() {
		if loadErr = e.surface.Deserialize(doc); loadErr != nil {
			return
		}
		e.afterLoad()
		if doc.Width > 0 && doc.Height > 0 {
			ws := e.Workspace()
			ws.Width, ws.Height = doc.Width, doc.Height
			ws.ScaleX, ws.ScaleY = 1, 1
		}
	})
	if loadErr != nil {
		e.log.WithError(loadErr).Error("Document load failed")
		e.notify("error", "Could not open document")
		return loadErr
	}
	if p := e.pages.current(); p != nil {
		ws := e.Workspace()
		p.Width, p.Height = ws.Width, ws.Height
	}
	e.AutoZoom()
	e.history.Reset()
	e.layers.changed()
	return nil
}

// pageThumbnail renders a small preview of the workspace. Failures yield "".
func (e *Editor) pageThumbnail() string {
	region := e.workspaceRegion()
	if region.Width <= 0 {
		return ""
	}
	uri, err := e.surface.ToImage(core.RasterOptions{
		Format:     "png",
		Multiplier: pageThumbnailWidth / region.Width,
		Region:     &region,
	})
	if err != nil {
		return ""
	}
	return uri
}
