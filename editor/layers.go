package editor

import (
	"fmt"
	"sort"
	"strconv"

	"canvas-editor/core"

	"github.com/sirupsen/logrus"
)

// Layer is the host-facing entry for one scene object. ID and Name never change.
type Layer struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Kind      core.Kind `json:"kind"`
	Visible   bool      `json:"visible"`
	Locked    bool      `json:"locked"`
	Opacity   float64   `json:"opacity"`
	Thumbnail string    `json:"thumbnail,omitempty"`
	ZIndex    int       `json:"zIndex"`
}

// LayerManager projects the scene into a list ordered highest z first. Scene
// add/remove events keep it current; RefreshLayers rebuilds it from scratch.
type LayerManager struct {
	e      *Editor
	layers []*Layer
	stale  map[string]bool
	off    []func()
}

func newLayerManager(e *Editor) *LayerManager {
	m := &LayerManager{e: e, stale: make(map[string]bool)}
	m.off = append(m.off,
		e.surface.On(core.EventObjectAdded, func(ev core.Event) {
			if ev.Target != nil && m.AddLayer(ev.Target) {
				m.changed()
			}
		}),
		e.surface.On(core.EventObjectRemoved, func(ev core.Event) {
			if ev.Target != nil && m.drop(ev.Target.ID) {
				m.changed()
			}
		}),
		e.surface.On(core.EventObjectModified, func(ev core.Event) {
			if ev.Target != nil {
				m.stale[ev.Target.ID] = true
			}
		}),
		e.surface.On(core.EventLoaded, func(core.Event) {
			m.RefreshLayers()
		}),
	)
	return m
}

func (m *LayerManager) close() {
	for _, off := range m.off {
		off()
	}
	m.off = nil
}

// Layers returns a copy of the list with flags read back from the scene.
func (m *LayerManager) Layers() []Layer {
	m.sync()
	out := make([]Layer, len(m.layers))
	for i, l := range m.layers {
		if l.Thumbnail == "" || m.stale[l.ID] {
			m.renderThumbnail(l)
		}
		out[i] = *l
	}
	return out
}

// Len returns the number of layers.
func (m *LayerManager) Len() int {
	return len(m.layers)
}

func (m *LayerManager) find(id string) (int, *Layer) {
	for i, l := range m.layers {
		if l.ID == id {
			return i, l
		}
	}
	return -1, nil
}

// Layer returns the entry for id.
func (m *LayerManager) Layer(id string) (Layer, error) {
	m.sync()
	_, l := m.find(id)
	if l == nil {
		return Layer{}, fmt.Errorf("layer %s: %w", id, core.ErrNotFound)
	}
	return *l, nil
}

// AddLayer starts tracking o. It reports false for the workspace and for objects
// already tracked.
func (m *LayerManager) AddLayer(o *core.Object) bool {
	if o.IsWorkspace() || o.ID == "" {
		return false
	}
	if _, l := m.find(o.ID); l != nil {
		return false
	}
	l := &Layer{ID: o.ID, Name: m.uniqueName(o), Kind: o.Kind}
	o.LayerName = l.Name
	m.layers = append(m.layers, l)
	m.sync()
	m.e.log.WithFields(logrus.Fields{"layer_id": l.ID, "layer_name": l.Name}).Debug("Layer added")
	return true
}

// uniqueName keeps a stored name when it is free, otherwise derives one from the
// kind: "Shape", "Shape 2", "Shape 3".
func (m *LayerManager) uniqueName(o *core.Object) string {
	taken := make(map[string]bool, len(m.layers))
	for _, l := range m.layers {
		taken[l.Name] = true
	}
	if o.LayerName != "" && !taken[o.LayerName] {
		return o.LayerName
	}
	base := o.Traits().LayerBase
	if !taken[base] {
		return base
	}
	for n := 2; ; n++ {
		if name := base + " " + strconv.Itoa(n); !taken[name] {
			return name
		}
	}
}

// RemoveLayer deletes the object behind id from the scene.
func (m *LayerManager) RemoveLayer(id string) error {
	o, err := m.object(id)
	if err != nil {
		return err
	}
	m.e.surface.Remove(o)
	m.e.render()
	return nil
}

func (m *LayerManager) drop(id string) bool {
	i, _ := m.find(id)
	if i < 0 {
		return false
	}
	m.layers = append(m.layers[:i], m.layers[i+1:]...)
	delete(m.stale, id)
	m.sync()
	return true
}

func (m *LayerManager) object(id string) (*core.Object, error) {
	if _, l := m.find(id); l == nil {
		return nil, fmt.Errorf("layer %s: %w", id, core.ErrNotFound)
	}
	o := m.e.surface.Find(id)
	if o == nil {
		return nil, fmt.Errorf("object %s: %w", id, core.ErrNotFound)
	}
	return o, nil
}

// ReorderLayers moves the entry at display index from to display index to and
// restacks the scene to match the list.
func (m *LayerManager) ReorderLayers(from, to int) error {
	m.sync()
	n := len(m.layers)
	if from < 0 || from >= n || to < 0 || to >= n {
		return fmt.Errorf("%w: reorder %d -> %d with %d layers", core.ErrInvalidArgument, from, to, n)
	}
	if from == to {
		return nil
	}
	l := m.layers[from]
	m.layers = append(m.layers[:from], m.layers[from+1:]...)
	m.layers = append(m.layers[:to], append([]*Layer{l}, m.layers[to:]...)...)

	// Scene index 0 belongs to the workspace.
	m.e.Workspace()
	const base = 1
	// Display index i maps to scene index n-1-i above the workspace. Placing the
	// lowest targets first keeps earlier placements fixed.
	for i := n - 1; i >= 0; i-- {
		if o := m.e.surface.Find(m.layers[i].ID); o != nil {
			m.e.surface.MoveTo(o, base+n-1-i)
		}
	}
	m.e.history.Commit()
	m.changed()
	m.e.render()
	return nil
}

func (m *LayerManager) ToggleVisibility(id string) error {
	return m.update(id, func(o *core.Object, l *Layer) {
		o.Visible = !o.Visible
		l.Visible = o.Visible
		if !o.Visible {
			m.deselect(o)
		}
	})
}

// ToggleLock locks or unlocks the object; locked objects cannot be selected.
func (m *LayerManager) ToggleLock(id string) error {
	return m.update(id, func(o *core.Object, l *Layer) {
		o.Locked = !o.Locked
		o.Selectable = !o.Locked
		l.Locked = o.Locked
		if o.Locked {
			m.deselect(o)
		}
	})
}

func (m *LayerManager) UpdateLayerOpacity(id string, opacity float64) error {
	if !core.Finite(opacity) {
		return fmt.Errorf("%w: opacity %v", core.ErrInvalidArgument, opacity)
	}
	opacity = clamp(opacity, 0, 1)
	return m.update(id, func(o *core.Object, l *Layer) {
		o.Opacity = opacity
		l.Opacity = opacity
	})
}

// update changes the object and its entry in one step, then announces it.
func (m *LayerManager) update(id string, fn func(o *core.Object, l *Layer)) error {
	o, err := m.object(id)
	if err != nil {
		return err
	}
	_, l := m.find(id)
	fn(o, l)
	m.e.surface.Modified(o)
	m.changed()
	m.e.render()
	return nil
}

func (m *LayerManager) deselect(o *core.Object) {
	sel := m.e.surface.ActiveSelection()
	keep := sel[:0]
	found := false
	for _, s := range sel {
		if s == o {
			found = true
			continue
		}
		keep = append(keep, s)
	}
	if found {
		m.e.surface.SetActiveSelection(keep...)
	}
}

// DuplicateLayer copies the object with a new identity and an offset, and selects
// the copy. It returns the new layer.
func (m *LayerManager) DuplicateLayer(id string) (Layer, error) {
	o, err := m.object(id)
	if err != nil {
		return Layer{}, err
	}
	c := cloneAsNew(o)
	m.e.surface.Add(c)
	m.e.surface.SetActiveSelection(c)
	m.e.render()
	return m.Layer(c.ID)
}

// SelectLayer makes the object the active selection when it can be selected.
func (m *LayerManager) SelectLayer(id string) error {
	o, err := m.object(id)
	if err != nil {
		return err
	}
	if !o.Selectable || !o.Visible {
		return fmt.Errorf("%w: layer %s is locked or hidden", core.ErrInvalidArgument, id)
	}
	m.e.surface.SetActiveSelection(o)
	m.e.render()
	return nil
}

// RefreshLayers reconciles the list with the scene: untracked objects get an
// entry, entries without an object are dropped, z-indexes are recomputed.
func (m *LayerManager) RefreshLayers() {
	objs := m.e.surface.Objects()
	present := make(map[string]bool, len(objs))
	for _, o := range objs {
		present[o.ID] = true
	}
	kept := m.layers[:0]
	for _, l := range m.layers {
		if present[l.ID] {
			kept = append(kept, l)
		} else {
			delete(m.stale, l.ID)
		}
	}
	m.layers = kept
	for _, o := range objs {
		m.AddLayer(o)
	}
	for _, l := range m.layers {
		m.stale[l.ID] = true
	}
	m.sync()
	m.changed()
}

// sync copies flags and z-order from the scene and sorts highest z first.
func (m *LayerManager) sync() {
	objs := m.e.surface.Objects()
	index := make(map[string]int, len(objs))
	for i, o := range objs {
		index[o.ID] = i
	}
	for _, l := range m.layers {
		i, ok := index[l.ID]
		if !ok {
			continue
		}
		o := objs[i]
		l.ZIndex = i
		l.Visible = o.Visible
		l.Locked = o.Locked
		l.Opacity = o.Opacity
	}
	sortLayers(m.layers)
}

func sortLayers(layers []*Layer) {
	sort.SliceStable(layers, func(i, j int) bool { return layers[i].ZIndex > layers[j].ZIndex })
}

// Thumbnail renders the object on its own. Failures yield "".
func (m *LayerManager) Thumbnail(id string) string {
	_, l := m.find(id)
	if l == nil {
		return ""
	}
	m.renderThumbnail(l)
	return l.Thumbnail
}

func (m *LayerManager) renderThumbnail(l *Layer) {
	delete(m.stale, l.ID)
	o := m.e.surface.Find(l.ID)
	if o == nil {
		l.Thumbnail = ""
		return
	}
	uri, err := m.e.surface.RenderObject(o, m.e.opts.thumbnailSize)
	if err != nil {
		l.Thumbnail = ""
		return
	}
	l.Thumbnail = uri
}

// changed refreshes z-indexes and tells the host.
func (m *LayerManager) changed() {
	m.sync()
	if m.e.suspended > 0 {
		return
	}
	out := make([]Layer, len(m.layers))
	for i, l := range m.layers {
		out[i] = *l
	}
	m.e.notifier.Notify(Notification{Type: NotificationLayers, Payload: out})
}
