package editor

import (
	"fmt"
	"math"

	"canvas-editor/core"
)

func newWorkspace(size Size, background string) *core.Object {
	ws := core.NewObject(core.KindBackground)
	ws.Shape = core.ShapeRect
	ws.Name = core.WorkspaceName
	ws.Width, ws.Height = size.Width, size.Height
	ws.Fill = core.SolidFill(background)
	if background == "" {
		ws.Fill = core.SolidFill(DefaultBackground)
	}
	ws.Selectable = false
	ws.Locked = true
	shadow := workspaceShadow
	ws.Shadow = &shadow
	return ws
}

// Workspace returns the page background object, recreating it at the back of the
// scene when it is missing.
func (e *Editor) Workspace() *core.Object {
	var ws *core.Object
	for _, o := range e.surface.Objects() {
		if o.IsWorkspace() {
			ws = o
			break
		}
	}
	if ws == nil {
		size := e.opts.workspace
		if p := e.pages.current(); p != nil && p.Width > 0 && p.Height > 0 {
			size = Size{Width: p.Width, Height: p.Height}
		}
		ws = newWorkspace(size, e.pages.currentBackground())
		e.surface.Insert(ws, 0)
		e.log.WithField("workspace_id", ws.ID).Info("Workspace recreated")
	}
	e.assertWorkspace(ws)
	return ws
}

// assertWorkspace keeps the workspace back-most and out of reach of the pointer.
func (e *Editor) assertWorkspace(ws *core.Object) {
	ws.Selectable = false
	if e.surface.IndexOf(ws) != 0 {
		e.surface.SendToBack(ws)
	}
}

// WorkspaceSize returns the current page bounds.
func (e *Editor) WorkspaceSize() Size {
	ws := e.Workspace()
	w, h := ws.ScaledSize()
	return Size{Width: w, Height: h}
}

// ChangeSize resizes the workspace in place. Other objects keep their positions.
func (e *Editor) ChangeSize(size Size) error {
	if !(size.Width > 0) || !(size.Height > 0) || math.IsInf(size.Width, 0) || math.IsInf(size.Height, 0) {
		return fmt.Errorf("%w: workspace size %vx%v", core.ErrInvalidArgument, size.Width, size.Height)
	}
	ws := e.Workspace()
	ws.Width, ws.Height = size.Width, size.Height
	ws.ScaleX, ws.ScaleY = 1, 1
	e.assertWorkspace(ws)
	if p := e.pages.current(); p != nil && !p.Locked {
		p.Width, p.Height = size.Width, size.Height
	}
	e.AutoZoom()
	e.surface.Modified(ws)
	e.render()
	return nil
}

// AutoZoom fits the workspace into the container.
func (e *Editor) AutoZoom() {
	if e.container.Width <= 0 || e.container.Height <= 0 {
		return
	}
	ws := e.Workspace()
	w, h := ws.ScaledSize()
	if w <= 0 || h <= 0 {
		return
	}
	zoom := math.Min(e.container.Width/w, e.container.Height/h) * autoZoomRatio
	e.surface.SetZoom(zoom)
	e.render()
}

// SetContainer updates the host container size and refits the workspace.
func (e *Editor) SetContainer(size Size) {
	e.container = size
	e.AutoZoom()
}

// center places o on the workspace center.
func (e *Editor) center(o *core.Object) {
	o.SetCenter(e.Workspace().Center())
}

// afterLoad repairs engine invariants after the whole scene was replaced.
func (e *Editor) afterLoad() {
	e.suspend(func() {
		e.dropExtraWorkspaces()
		e.Workspace()
	})
	e.restoreFonts()
	e.layers.RefreshLayers()
	e.render()
}

// dropExtraWorkspaces keeps the first workspace of a loaded scene and removes
// the rest.
func (e *Editor) dropExtraWorkspaces() {
	var extra []*core.Object
	seen := false
	for _, o := range e.surface.Objects() {
		if !o.IsWorkspace() {
			continue
		}
		if seen {
			extra = append(extra, o)
		}
		seen = true
	}
	if len(extra) == 0 {
		return
	}
	e.surface.Remove(extra...)
	e.log.WithField("count", len(extra)).Warn("Removed duplicate workspaces")
}
