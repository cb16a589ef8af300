package editor

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"canvas-editor/core"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
)

// PageInfo is the host-facing summary of a page.
type PageInfo struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Locked    bool      `json:"locked"`
	Width     float64   `json:"width"`
	Height    float64   `json:"height"`
	Thumbnail string    `json:"thumbnail,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// PageManager owns the ordered pages of a project. Exactly one page is current
// and lives in the scene; the others are held as serialized documents.
type PageManager struct {
	e         *Editor
	projectID string
	pages     []*core.Page
	currentID string
	deleted   map[string]bool
	autosave  Timer
	token     int
	now       func() time.Time
}

func newPageManager(e *Editor) *PageManager {
	projectID := e.opts.projectID
	if projectID == "" {
		projectID = newULID()
	}
	return &PageManager{
		e:         e,
		projectID: projectID,
		deleted:   make(map[string]bool),
		now:       time.Now,
	}
}

func newULID() string {
	return ulid.Make().String()
}

// init creates the first page around the existing workspace.
func (m *PageManager) init() {
	if len(m.pages) > 0 {
		return
	}
	ws := m.e.Workspace()
	p := m.newPage("Page 1", Size{Width: ws.Width, Height: ws.Height}, workspaceColor(ws))
	m.pages = append(m.pages, p)
	m.currentID = p.ID
	m.saveCurrent()
	m.changed()
}

func (m *PageManager) newPage(name string, size Size, background string) *core.Page {
	now := m.now()
	return &core.Page{
		ID:         newULID(),
		ProjectID:  m.projectID,
		Name:       name,
		Width:      size.Width,
		Height:     size.Height,
		Background: background,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func workspaceColor(ws *core.Object) string {
	switch ws.Fill.Kind {
	case core.FillColor:
		return ws.Fill.Color
	case core.FillNone:
		return "transparent"
	}
	return DefaultBackground
}

func (m *PageManager) ProjectID() string {
	return m.projectID
}

// Pages lists the pages in order.
func (m *PageManager) Pages() []PageInfo {
	out := make([]PageInfo, len(m.pages))
	for i, p := range m.pages {
		out[i] = pageInfo(p)
	}
	return out
}

func pageInfo(p *core.Page) PageInfo {
	return PageInfo{
		ID:        p.ID,
		Name:      p.Name,
		Locked:    p.Locked,
		Width:     p.Width,
		Height:    p.Height,
		Thumbnail: p.Thumbnail,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// Current returns the current page id.
func (m *PageManager) Current() string {
	return m.currentID
}

// Page returns a copy of the stored record for id.
func (m *PageManager) Page(id string) (*core.Page, error) {
	_, p := m.find(id)
	if p == nil {
		return nil, fmt.Errorf("page %s: %w", id, core.ErrNotFound)
	}
	return p.Clone(), nil
}

func (m *PageManager) find(id string) (int, *core.Page) {
	for i, p := range m.pages {
		if p.ID == id {
			return i, p
		}
	}
	return -1, nil
}

func (m *PageManager) current() *core.Page {
	_, p := m.find(m.currentID)
	return p
}

func (m *PageManager) currentBackground() string {
	if p := m.current(); p != nil && p.Background != "" {
		return p.Background
	}
	return DefaultBackground
}

// AddPage saves the current page, then creates and switches to a blank page with
// the same size and background.
func (m *PageManager) AddPage(name string) PageInfo {
	m.saveCurrent()
	size := m.e.opts.workspace
	background := DefaultBackground
	if cur := m.current(); cur != nil {
		size = Size{Width: cur.Width, Height: cur.Height}
		background = cur.Background
	}
	if strings.TrimSpace(name) == "" {
		name = "Page " + strconv.Itoa(len(m.pages)+1)
	}
	p := m.newPage(name, size, background)
	m.pages = append(m.pages, p)
	m.currentID = p.ID
	m.load(p)
	m.e.log.WithField("page_id", p.ID).Info("Page added")
	m.changed()
	return pageInfo(p)
}

// SwitchToPage makes id current. The outgoing page is saved unless it is locked.
func (m *PageManager) SwitchToPage(id string) error {
	if id == m.currentID {
		return nil
	}
	_, p := m.find(id)
	if p == nil {
		return fmt.Errorf("page %s: %w", id, core.ErrNotFound)
	}
	m.saveCurrent()
	m.currentID = id
	m.load(p)
	m.e.log.WithField("page_id", id).Debug("Switched page")
	m.changed()
	return nil
}

// DeletePage removes id. The only page cannot be deleted. When the current page is
// deleted its predecessor, or the new first page, becomes current.
func (m *PageManager) DeletePage(id string) error {
	i, p := m.find(id)
	if p == nil {
		return fmt.Errorf("page %s: %w", id, core.ErrNotFound)
	}
	if len(m.pages) == 1 {
		return core.ErrLastPage
	}
	m.pages = append(m.pages[:i], m.pages[i+1:]...)
	m.deleted[id] = true
	if id == m.currentID {
		next := i - 1
		if next < 0 {
			next = 0
		}
		m.currentID = m.pages[next].ID
		m.load(m.pages[next])
	}
	m.e.log.WithField("page_id", id).Info("Page deleted")
	m.changed()
	return nil
}

// DuplicatePage copies id right after itself as "<name> Copy" and switches to it.
func (m *PageManager) DuplicatePage(id string) (PageInfo, error) {
	i, src := m.find(id)
	if src == nil {
		return PageInfo{}, fmt.Errorf("page %s: %w", id, core.ErrNotFound)
	}
	m.saveCurrent()

	now := m.now()
	c := src.Clone()
	c.ID = newULID()
	c.Name = src.Name + " Copy"
	c.Locked = false
	c.CreatedAt, c.UpdatedAt = now, now
	m.pages = append(m.pages[:i+1], append([]*core.Page{c}, m.pages[i+1:]...)...)
	m.currentID = c.ID
	m.load(c)
	m.e.log.WithFields(logrus.Fields{"page_id": c.ID, "source_id": id}).Info("Page duplicated")
	m.changed()
	return pageInfo(c), nil
}

func (m *PageManager) RenamePage(id, name string) error {
	_, p := m.find(id)
	if p == nil {
		return fmt.Errorf("page %s: %w", id, core.ErrNotFound)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: empty page name", core.ErrInvalidArgument)
	}
	p.Name = name
	p.UpdatedAt = m.now()
	m.changed()
	return nil
}

// ToggleLock flips the lock on id. Locking the current page saves it first so the
// stored content is the state at lock time.
func (m *PageManager) ToggleLock(id string) error {
	_, p := m.find(id)
	if p == nil {
		return fmt.Errorf("page %s: %w", id, core.ErrNotFound)
	}
	if !p.Locked && id == m.currentID {
		m.saveCurrent()
	}
	p.Locked = !p.Locked
	p.UpdatedAt = m.now()
	m.changed()
	return nil
}

// MovePage reorders the pages.
func (m *PageManager) MovePage(from, to int) error {
	n := len(m.pages)
	if from < 0 || from >= n || to < 0 || to >= n {
		return fmt.Errorf("%w: move page %d -> %d with %d pages", core.ErrInvalidArgument, from, to, n)
	}
	p := m.pages[from]
	m.pages = append(m.pages[:from], m.pages[from+1:]...)
	m.pages = append(m.pages[:to], append([]*core.Page{p}, m.pages[to:]...)...)
	m.changed()
	return nil
}

// SaveCurrentPage writes the live scene into the current page record.
func (m *PageManager) SaveCurrentPage() error {
	p := m.current()
	if p == nil {
		return fmt.Errorf("current page: %w", core.ErrNotFound)
	}
	if p.Locked {
		return core.ErrPageLocked
	}
	if !m.saveCurrent() {
		return fmt.Errorf("save page %s: scene could not be serialized", p.ID)
	}
	m.changed()
	return nil
}

// saveCurrent stores the live scene and a thumbnail in the current page. Locked
// pages keep their content.
func (m *PageManager) saveCurrent() bool {
	m.cancelAutosave()
	p := m.current()
	if p == nil || p.Locked {
		return false
	}
	data, err := m.e.documentJSON()
	if err != nil {
		m.e.log.WithError(err).WithField("page_id", p.ID).Warn("Page not saved")
		return false
	}
	ws := m.e.Workspace()
	p.Data = data
	p.Width, p.Height = ws.Width, ws.Height
	p.Thumbnail = m.e.pageThumbnail()
	p.UpdatedAt = m.now()
	return true
}

// load materializes p into the scene. Missing or unreadable content falls back
// to a bare workspace built from the page record.
func (m *PageManager) load(p *core.Page) {
	m.cancelAutosave()
	m.e.generation++
	m.e.history.Cancel()
	m.e.drawing.pageChanged()

	m.e.suspend(func() {
		m.e.surface.ClearSelection()
		loaded := false
		if p.Data != "" {
			doc, err := core.ParseDocument(p.Data)
			if err == nil {
				err = m.e.surface.Deserialize(doc)
			}
			if err != nil {
				m.e.log.WithError(err).WithField("page_id", p.ID).Warn("Page content unreadable, using blank workspace")
			} else {
				loaded = true
			}
		}
		if !loaded {
			m.e.surface.Clear()
			size := Size{Width: p.Width, Height: p.Height}
			if size.Width <= 0 || size.Height <= 0 {
				size = m.e.opts.workspace
			}
			m.e.surface.Add(newWorkspace(size, p.Background))
		}
		m.e.afterLoad()
	})
	m.e.AutoZoom()
	m.e.history.Reset()
	m.e.layers.changed()
}

// scheduleAutosave refreshes the current page's cached content and thumbnail once
// the scene has been quiet for the history debounce.
func (m *PageManager) scheduleAutosave() {
	m.cancelAutosave()
	m.token++
	token, id := m.token, m.currentID
	m.autosave = m.e.sched.AfterFunc(m.e.history.debounce, func() {
		if token != m.token || id != m.currentID {
			return
		}
		m.autosave = nil
		if p := m.current(); p != nil {
			if !p.Locked {
				m.saveCurrent()
			} else {
				p.Thumbnail = m.e.pageThumbnail()
			}
			m.changed()
		}
	})
}

func (m *PageManager) cancelAutosave() {
	if m.autosave != nil {
		m.autosave.Stop()
		m.autosave = nil
	}
	m.token++
}

// Persist saves every page through the configured store and removes deleted ones.
func (m *PageManager) Persist(ctx context.Context) error {
	store := m.e.opts.pages
	if store == nil {
		return fmt.Errorf("%w: no page store configured", core.ErrUnsupported)
	}
	m.saveCurrent()
	for i, p := range m.pages {
		p.Position = i
		p.ProjectID = m.projectID
		if err := store.Save(ctx, p); err != nil {
			return fmt.Errorf("persist page %s: %w", p.ID, err)
		}
	}
	for id := range m.deleted {
		if err := store.Delete(ctx, m.projectID, id); err != nil && !isNotFound(err) {
			return fmt.Errorf("delete page %s: %w", id, err)
		}
		delete(m.deleted, id)
	}
	m.e.log.WithFields(logrus.Fields{"project_id": m.projectID, "pages": len(m.pages)}).Info("Pages persisted")
	return nil
}

// Restore replaces the pages with those stored for projectID and loads the first.
// An empty project starts with one blank page.
func (m *PageManager) Restore(ctx context.Context, projectID string) error {
	store := m.e.opts.pages
	if store == nil {
		return fmt.Errorf("%w: no page store configured", core.ErrUnsupported)
	}
	pages, err := store.List(ctx, projectID)
	if err != nil {
		return fmt.Errorf("restore project %s: %w", projectID, err)
	}
	m.projectID = projectID
	m.deleted = make(map[string]bool)
	if len(pages) == 0 {
		pages = []*core.Page{m.newPage("Page 1", m.e.opts.workspace, DefaultBackground)}
	}
	m.pages = pages
	m.currentID = pages[0].ID
	m.load(pages[0])
	m.e.log.WithFields(logrus.Fields{"project_id": projectID, "pages": len(pages)}).Info("Pages restored")
	m.changed()
	return nil
}

func (m *PageManager) changed() {
	m.e.notifier.Notify(Notification{
		Type:    NotificationPages,
		Payload: PagesState{Pages: m.Pages(), Current: m.currentID},
	})
}
