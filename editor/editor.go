// Package editor is the editing engine of the design editor. It sits between host
// gestures and a Surface, and keeps the undo history, the layer list, the page
// collection and the selection consistent.
//
// An Editor is single-threaded. All calls, scheduled callbacks and image/font
// completions run on one goroutine, normally a Loop.
package editor

import (
	"time"

	"canvas-editor/core"

	"github.com/sirupsen/logrus"
)

type (
	// Size is a width/height pair in scene units.
	Size struct {
		Width  float64 `json:"width"`
		Height float64 `json:"height"`
	}

	Option func(*options)

	options struct {
		log           *logrus.Entry
		loop          *Loop
		scheduler     Scheduler
		fonts         *FontService
		images        ImageLoader
		notifier      Notifier
		pages         core.PageStore
		projectID     string
		debounce      time.Duration
		historyLimit  int
		workspace     Size
		thumbnailSize int
	}

	// style holds the values new objects are created with; setters update it.
	style struct {
		fill        string
		stroke      string
		strokeWidth float64
		dash        []float64
		fontFamily  string
	}

	Editor struct {
		surface   Surface
		container Size
		opts      options
		log       *logrus.Entry
		sched     Scheduler
		ownLoop   bool

		history  *History
		layers   *LayerManager
		pages    *PageManager
		drawing  *Drawing
		fonts    *FontService
		images   ImageLoader
		notifier Notifier

		style       style
		initTimer   Timer
		suspended   int
		generation  int
		closed      bool
		unsubscribe []func()
	}
)

func WithLogger(log *logrus.Entry) Option {
	return func(o *options) { o.log = log }
}

// WithLoop runs scheduled callbacks on l.
func WithLoop(l *Loop) Option {
	return func(o *options) { o.loop = l }
}

// WithScheduler overrides the scheduler. Tests use it to control time.
func WithScheduler(s Scheduler) Option {
	return func(o *options) { o.scheduler = s }
}

func WithFonts(f *FontService) Option {
	return func(o *options) { o.fonts = f }
}

func WithImageLoader(l ImageLoader) Option {
	return func(o *options) { o.images = l }
}

func WithNotifier(n Notifier) Option {
	return func(o *options) { o.notifier = n }
}

// WithPageStore enables Persist and Restore on the page manager.
func WithPageStore(s core.PageStore, projectID string) Option {
	return func(o *options) {
		o.pages = s
		o.projectID = projectID
	}
}

// WithHistory sets the commit debounce and the maximum number of snapshots kept.
func WithHistory(debounce time.Duration, limit int) Option {
	return func(o *options) {
		o.debounce = debounce
		o.historyLimit = limit
	}
}

// WithWorkspaceSize sets the size used when a workspace has to be created.
func WithWorkspaceSize(s Size) Option {
	return func(o *options) { o.workspace = s }
}

func WithThumbnailSize(px int) Option {
	return func(o *options) { o.thumbnailSize = px }
}

// New wires an engine to surface. Nothing is drawn until Init.
func New(surface Surface, opts ...Option) *Editor {
	o := options{
		debounce:      DefaultDebounce,
		historyLimit:  DefaultHistoryLimit,
		workspace:     Size{Width: DefaultWorkspaceWidth, Height: DefaultWorkspaceHeight},
		thumbnailSize: DefaultThumbnailSize,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logrus.WithField("component", "editor")
	}
	if o.notifier == nil {
		o.notifier = NopNotifier{}
	}
	if o.images == nil {
		o.images = NewImageLoader(nil)
	}
	if o.fonts == nil {
		o.fonts = NewFontService(nil, o.log)
	}
	if o.workspace.Width <= 0 || o.workspace.Height <= 0 {
		o.workspace = Size{Width: DefaultWorkspaceWidth, Height: DefaultWorkspaceHeight}
	}

	e := &Editor{
		surface:  surface,
		opts:     o,
		log:      o.log,
		fonts:    o.fonts,
		images:   o.images,
		notifier: o.notifier,
		style: style{
			fill:        DefaultFillColor,
			stroke:      DefaultStrokeColor,
			strokeWidth: DefaultStrokeWidth,
			fontFamily:  DefaultFontFamily,
		},
	}
	switch {
	case o.scheduler != nil:
		e.sched = o.scheduler
	case o.loop != nil:
		e.sched = o.loop.Scheduler()
	default:
		o.loop = NewLoop()
		e.opts.loop = o.loop
		e.ownLoop = true
		e.sched = o.loop.Scheduler()
	}

	if fs, ok := surface.(faceSetter); ok {
		fs.SetFaceResolver(e.fonts.Face)
	}

	e.history = newHistory(e, o.debounce, o.historyLimit)
	e.layers = newLayerManager(e)
	e.pages = newPageManager(e)
	e.drawing = newDrawing(e)

	for _, t := range []core.EventType{core.EventObjectAdded, core.EventObjectRemoved, core.EventObjectModified, core.EventPathCreated} {
		e.unsubscribe = append(e.unsubscribe, surface.On(t, e.onSceneChanged))
	}
	return e
}

// Init records the container size and schedules the workspace setup one tick later.
func (e *Editor) Init(container Size) {
	e.container = container
	if e.initTimer != nil {
		e.initTimer.Stop()
	}
	e.initTimer = e.sched.AfterFunc(0, e.setup)
}

func (e *Editor) setup() {
	e.initTimer = nil
	if e.closed {
		return
	}
	e.suspend(func() {
		e.Workspace()
	})
	e.AutoZoom()
	e.pages.init()
	e.layers.RefreshLayers()
	e.history.Reset()
	e.log.WithField("workspace_id", e.Workspace().ID).Debug("Editor initialized")
}

// Close cancels every pending callback and detaches from the surface.
func (e *Editor) Close() {
	if e.closed {
		return
	}
	e.closed = true
	e.generation++
	if e.initTimer != nil {
		e.initTimer.Stop()
		e.initTimer = nil
	}
	e.history.Cancel()
	e.pages.cancelAutosave()
	e.drawing.detachErase()
	e.layers.close()
	for _, off := range e.unsubscribe {
		off()
	}
	e.unsubscribe = nil
	if e.ownLoop {
		e.opts.loop.Close()
	}
}

// Loop returns the loop the editor schedules on, or nil when a custom scheduler is used.
func (e *Editor) Loop() *Loop {
	return e.opts.loop
}

func (e *Editor) Surface() Surface {
	return e.surface
}

func (e *Editor) History() *History {
	return e.history
}

func (e *Editor) Layers() *LayerManager {
	return e.layers
}

func (e *Editor) Pages() *PageManager {
	return e.pages
}

func (e *Editor) Drawing() *Drawing {
	return e.drawing
}

func (e *Editor) Fonts() *FontService {
	return e.fonts
}

// onSceneChanged turns scene mutations into a debounced commit.
func (e *Editor) onSceneChanged(ev core.Event) {
	if e.closed || e.suspended > 0 || e.history.Loading() {
		return
	}
	if ev.Target != nil && ev.Target.IsWorkspace() && ev.Type == core.EventObjectAdded {
		e.surface.SendToBack(ev.Target)
	}
	e.history.Commit()
	e.pages.scheduleAutosave()
}

// suspend runs fn without turning its scene events into commits.
func (e *Editor) suspend(fn func()) {
	e.suspended++
	defer func() { e.suspended-- }()
	fn()
}

// render repaints the surface. Failures are transient and never abort a mutation.
func (e *Editor) render() {
	if err := e.surface.Render(); err != nil {
		e.log.WithError(err).Debug("Render skipped")
	}
}

func (e *Editor) notify(level, message string) {
	e.notifier.Notify(Notification{
		Type:    NotificationMessage,
		Payload: Message{Level: level, Text: message},
	})
}

// selection returns the selected objects, never including the workspace.
func (e *Editor) selection() []*core.Object {
	sel := e.surface.ActiveSelection()
	out := sel[:0]
	for _, o := range sel {
		if !o.IsWorkspace() {
			out = append(out, o)
		}
	}
	return out
}
