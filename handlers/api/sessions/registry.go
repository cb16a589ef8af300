package sessions

import (
	"canvas-editor/core"
	"canvas-editor/editor"
	"canvas-editor/scene"
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
)

type (
	// Options configures every engine the registry creates.
	Options struct {
		Pages           core.PageStore
		Fonts           *editor.FontService
		Images          editor.ImageLoader
		Notifier        func(sessionID string) editor.Notifier
		HistoryDebounce time.Duration
		HistoryLimit    int
		Workspace       editor.Size
		ThumbnailSize   int
	}

	// Session is one engine instance running on its own loop.
	Session struct {
		ID        string
		ProjectID string
		CreatedAt time.Time

		loop   *editor.Loop
		editor *editor.Editor
		canvas *scene.Canvas
	}

	SessionInfo struct {
		ID        string    `json:"id"`
		ProjectID string    `json:"projectId"`
		CreatedAt time.Time `json:"createdAt"`
	}

	Registry struct {
		mu       sync.RWMutex
		sessions map[string]*Session
		opts     Options
	}
)

func NewRegistry(opts Options) *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		opts:     opts,
	}
}

// Do runs fn on the session's loop and waits for it.
func (s *Session) Do(ctx context.Context, fn func(e *editor.Editor) error) error {
	return s.loop.Call(ctx, func() error {
		return fn(s.editor)
	})
}

func (s *Session) Info() SessionInfo {
	return SessionInfo{ID: s.ID, ProjectID: s.ProjectID, CreatedAt: s.CreatedAt}
}

// Create starts an engine sized to container. With a page store and a
// projectID the stored pages are restored once the workspace exists.
func (r *Registry) Create(ctx context.Context, projectID string, container editor.Size) (*Session, error) {
	if container.Width <= 0 || container.Height <= 0 {
		return nil, fmt.Errorf("%w: container size must be positive", core.ErrInvalidArgument)
	}
	id := ulid.Make().String()
	log := logrus.WithFields(logrus.Fields{"session_id": id, "project_id": projectID})

	opts := []editor.Option{
		editor.WithLogger(log),
		editor.WithWorkspaceSize(r.opts.Workspace),
	}
	if r.opts.HistoryLimit > 0 {
		opts = append(opts, editor.WithHistory(r.opts.HistoryDebounce, r.opts.HistoryLimit))
	}
	if r.opts.ThumbnailSize > 0 {
		opts = append(opts, editor.WithThumbnailSize(r.opts.ThumbnailSize))
	}
	if r.opts.Fonts != nil {
		opts = append(opts, editor.WithFonts(r.opts.Fonts))
	}
	if r.opts.Images != nil {
		opts = append(opts, editor.WithImageLoader(r.opts.Images))
	}
	if r.opts.Notifier != nil {
		opts = append(opts, editor.WithNotifier(r.opts.Notifier(id)))
	}
	if r.opts.Pages != nil {
		opts = append(opts, editor.WithPageStore(r.opts.Pages, projectID))
	}

	loop := editor.NewLoop()
	canvas := scene.New(int(container.Width), int(container.Height))
	s := &Session{
		ID:        id,
		CreatedAt: time.Now(),
		loop:      loop,
		canvas:    canvas,
		editor:    editor.New(canvas, append(opts, editor.WithLoop(loop))...),
	}

	err := loop.Call(ctx, func() error {
		s.editor.Init(container)
		return nil
	})
	// Init queues the workspace setup ahead of this call.
	if err == nil {
		err = loop.Call(ctx, func() error {
			if r.opts.Pages != nil && projectID != "" {
				if err := s.editor.Pages().Restore(ctx, projectID); err != nil {
					return err
				}
			}
			s.ProjectID = s.editor.Pages().ProjectID()
			return nil
		})
	}
	if err != nil {
		s.close()
		log.WithError(err).Error("Failed to start session")
		return nil, err
	}

	r.mu.Lock()
	r.sessions[id] = s
	r.mu.Unlock()

	log.Info("Session created")
	return s, nil
}

func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, core.ErrNotFound)
	}
	return s, nil
}

// List returns the open sessions, oldest first.
func (r *Registry) List() []SessionInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]SessionInfo, 0, len(r.sessions))
	for _, s := range r.sessions {
		infos = append(infos, s.Info())
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos
}

// Delete persists the session's pages when a store is configured, then stops it.
func (r *Registry) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("session %s: %w", id, core.ErrNotFound)
	}

	var err error
	if r.opts.Pages != nil {
		err = s.Do(ctx, func(e *editor.Editor) error {
			return e.Pages().Persist(ctx)
		})
	}
	s.close()

	log := logrus.WithField("session_id", id)
	if err != nil {
		log.WithError(err).Warn("Session closed without persisting")
		return err
	}
	log.Info("Session deleted")
	return nil
}

// CloseAll stops every session, persisting pages where possible.
func (r *Registry) CloseAll(ctx context.Context) {
	r.mu.RLock()
	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	r.mu.RUnlock()

	for _, id := range ids {
		_ = r.Delete(ctx, id)
	}
}

func (s *Session) close() {
	_ = s.loop.Call(context.Background(), func() error {
		s.editor.Close()
		return nil
	})
	s.loop.Close()
}
