package editor

import (
	"canvas-editor/core"
	"canvas-editor/scene"
	"errors"
	"io"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

// manualScheduler runs callbacks only when the test advances its clock.
type manualScheduler struct {
	mu    sync.Mutex
	now   time.Duration
	tasks []*manualTimer
}

type manualTimer struct {
	s       *manualScheduler
	at      time.Duration
	fn      func()
	stopped bool
	fired   bool
}

func (s *manualScheduler) AfterFunc(d time.Duration, fn func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &manualTimer{s: s, at: s.now + d, fn: fn}
	s.tasks = append(s.tasks, t)
	return t
}

func (t *manualTimer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

// Advance moves the clock forward by d and runs every callback that comes due,
// including callbacks scheduled by other callbacks.
func (s *manualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now + d
	s.mu.Unlock()
	for {
		s.mu.Lock()
		var next *manualTimer
		for _, t := range s.tasks {
			if t.stopped || t.fired || t.at > target {
				continue
			}
			if next == nil || t.at < next.at {
				next = t
			}
		}
		if next == nil {
			s.now = target
			s.mu.Unlock()
			return
		}
		next.fired = true
		if next.at > s.now {
			s.now = next.at
		}
		s.mu.Unlock()
		next.fn()
	}
}

// Pending returns the number of callbacks waiting to run.
func (s *manualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.tasks {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// waitPending blocks until at least n callbacks are waiting, posted from other goroutines.
func (s *manualScheduler) waitPending(t *testing.T, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for s.Pending() < n {
		if time.Now().After(deadline) {
			t.Fatalf("Timed out waiting for %d scheduled callbacks, have %d", n, s.Pending())
		}
		time.Sleep(time.Millisecond)
	}
}

type recordingNotifier struct {
	mu    sync.Mutex
	items []Notification
}

func (r *recordingNotifier) Notify(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
}

func (r *recordingNotifier) last(typ string) (Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.items) - 1; i >= 0; i-- {
		if r.items[i].Type == typ {
			return r.items[i], true
		}
	}
	return Notification{}, false
}

func quietLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

// newTestEditor returns an initialized editor on a fresh canvas.
func newTestEditor(t *testing.T, opts ...Option) (*Editor, *scene.Canvas, *manualScheduler) {
	t.Helper()
	c := scene.New(1000, 800)
	s := &manualScheduler{}
	base := []Option{WithScheduler(s), WithLogger(quietLogger())}
	e := New(c, append(base, opts...)...)
	e.Init(Size{Width: 1000, Height: 800})
	s.Advance(0)
	t.Cleanup(e.Close)
	return e, c, s
}

// settle lets every debounced commit and autosave run.
func settle(s *manualScheduler) {
	s.Advance(time.Minute)
}

func countKind(c *scene.Canvas, kind core.Kind, shape core.Shape) int {
	n := 0
	for _, o := range c.Objects() {
		if o.Kind == kind && (shape == "" || o.Shape == shape) {
			n++
		}
	}
	return n
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestInit_CreatesWorkspace(t *testing.T) {
	e, c, _ := newTestEditor(t)

	if c.Len() != 1 {
		t.Fatalf("Expected only the workspace, got %d objects", c.Len())
	}
	ws := c.Objects()[0]
	if !ws.IsWorkspace() {
		t.Fatal("Object at index 0 is not the workspace")
	}
	if ws.Selectable {
		t.Error("Workspace must not be selectable")
	}
	if ws.Width != DefaultWorkspaceWidth || ws.Height != DefaultWorkspaceHeight {
		t.Errorf("Expected %vx%v workspace, got %vx%v", DefaultWorkspaceWidth, DefaultWorkspaceHeight, ws.Width, ws.Height)
	}
	if len(e.Pages().Pages()) != 1 {
		t.Errorf("Expected 1 page after init, got %d", len(e.Pages().Pages()))
	}
	if e.History().Len() != 1 || e.History().CanUndo() {
		t.Errorf("Expected a single baseline snapshot, got %d (canUndo=%v)", e.History().Len(), e.History().CanUndo())
	}
	if want := math.Min(1000.0/900, 800.0/1200) * autoZoomRatio; !approx(c.Zoom(), want) {
		t.Errorf("Expected zoom %v, got %v", want, c.Zoom())
	}
}

func TestInit_Deferred(t *testing.T) {
	c := scene.New(100, 100)
	s := &manualScheduler{}
	e := New(c, WithScheduler(s), WithLogger(quietLogger()))
	defer e.Close()

	e.Init(Size{Width: 100, Height: 100})
	if c.Len() != 0 {
		t.Errorf("Init() should defer setup, got %d objects", c.Len())
	}
	s.Advance(0)
	if c.Len() != 1 {
		t.Errorf("Expected workspace after one tick, got %d objects", c.Len())
	}
}

func TestClose_CancelsInit(t *testing.T) {
	c := scene.New(100, 100)
	s := &manualScheduler{}
	e := New(c, WithScheduler(s), WithLogger(quietLogger()))
	e.Init(Size{Width: 100, Height: 100})
	e.Close()
	s.Advance(0)

	if c.Len() != 0 {
		t.Errorf("Setup ran after Close(): %d objects", c.Len())
	}
	if n := c.ListenerCount(core.EventObjectAdded); n != 0 {
		t.Errorf("Expected no listeners after Close(), got %d", n)
	}
}

func TestAddShapes_CenteredAndSelected(t *testing.T) {
	e, c, _ := newTestEditor(t)
	center := e.Workspace().Center()

	for _, o := range []*core.Object{e.AddRect(), e.AddCircle(), e.AddTriangle(), e.AddLine(), e.AddText("hello")} {
		if got := o.Center(); !approx(got.X, center.X) || !approx(got.Y, center.Y) {
			t.Errorf("%s %s not centered: got %+v, want %+v", o.Kind, o.Shape, got, center)
		}
		sel := c.ActiveSelection()
		if len(sel) != 1 || sel[0] != o {
			t.Errorf("%s %s is not the active selection", o.Kind, o.Shape)
		}
	}
	if c.Len() != 6 {
		t.Errorf("Expected 6 objects, got %d", c.Len())
	}
}

func TestAddLine_HasNoFill(t *testing.T) {
	e, _, _ := newTestEditor(t)
	line := e.AddLine()
	if line.Fill.Kind != core.FillNone {
		t.Errorf("Expected line without fill, got %s", line.Fill.Kind)
	}
	if len(line.Points) != 2 {
		t.Errorf("Expected 2 points, got %d", len(line.Points))
	}
}

func TestAddIcon(t *testing.T) {
	e, _, _ := newTestEditor(t)

	icon, err := e.AddIcon("M0 0 L100 0 L100 50 Z")
	if err != nil {
		t.Fatalf("AddIcon() failed: %v", err)
	}
	if w, h := icon.ScaledSize(); !approx(w, iconSize) || !approx(h, iconSize/2) {
		t.Errorf("Expected icon scaled to %v wide, got %vx%v", iconSize, w, h)
	}
	if icon.IsStroke() {
		t.Error("Icon must not be treated as a freehand stroke")
	}

	if _, err := e.AddIcon("not a path"); !errors.Is(err, core.ErrInvalidArgument) {
		t.Errorf("Expected ErrInvalidArgument, got %v", err)
	}
}

func TestAddChart(t *testing.T) {
	e, _, _ := newTestEditor(t)

	chart, err := e.AddChart(ChartSpec{Title: "Sales", Labels: []string{"a", "b"}, Values: []float64{1, 2}})
	if err != nil {
		t.Fatalf("AddChart() failed: %v", err)
	}
	if chart.Kind != core.KindGroup {
		t.Fatalf("Expected a group, got %s", chart.Kind)
	}
	// Title plus a bar and a label per value.
	if len(chart.Objects) != 5 {
		t.Errorf("Expected 5 children, got %d", len(chart.Objects))
	}

	tests := []ChartSpec{
		{},
		{Labels: []string{"a"}, Values: []float64{1, 2}},
		{Values: []float64{-1}},
	}
	for _, spec := range tests {
		if _, err := e.AddChart(spec); !errors.Is(err, core.ErrInvalidArgument) {
			t.Errorf("AddChart(%+v): expected ErrInvalidArgument, got %v", spec, err)
		}
	}
}

func TestDeleteAndDuplicate(t *testing.T) {
	e, c, _ := newTestEditor(t)
	rect := e.AddRect()

	copies := e.Duplicate()
	if len(copies) != 1 {
		t.Fatalf("Expected 1 copy, got %d", len(copies))
	}
	cp := copies[0]
	if cp.ID == rect.ID {
		t.Error("Copy kept the source id")
	}
	if cp.Left != rect.Left+DuplicateOffset || cp.Top != rect.Top+DuplicateOffset {
		t.Errorf("Copy not offset: got (%v,%v)", cp.Left, cp.Top)
	}
	if sel := c.ActiveSelection(); len(sel) != 1 || sel[0] != cp {
		t.Error("Copy is not selected")
	}

	if n := e.Delete(); n != 1 {
		t.Errorf("Expected 1 deleted object, got %d", n)
	}
	if c.Find(cp.ID) != nil {
		t.Error("Deleted object still on canvas")
	}
	if n := e.Delete(); n != 0 {
		t.Errorf("Delete() with empty selection removed %d objects", n)
	}
	if !c.Objects()[0].IsWorkspace() {
		t.Error("Workspace lost during delete")
	}
}

func TestDelete_NeverRemovesWorkspace(t *testing.T) {
	e, c, _ := newTestEditor(t)
	ws := e.Workspace()
	ws.Selectable = true
	c.SetActiveSelection(ws)

	if n := e.Delete(); n != 0 {
		t.Errorf("Expected nothing deleted, got %d", n)
	}
	if c.Find(ws.ID) == nil {
		t.Error("Workspace was deleted")
	}
}

func TestStacking_KeepsWorkspaceAtBack(t *testing.T) {
	e, c, _ := newTestEditor(t)
	a := e.AddRect()
	b := e.AddCircle()

	c.SetActiveSelection(b)
	e.SendToBack()
	if !c.Objects()[0].IsWorkspace() {
		t.Fatal("SendToBack() moved an object below the workspace")
	}
	if c.IndexOf(b) != 1 {
		t.Errorf("Expected circle at index 1, got %d", c.IndexOf(b))
	}

	e.SendBackwards()
	if c.IndexOf(b) != 1 {
		t.Errorf("SendBackwards() went below the workspace: index %d", c.IndexOf(b))
	}

	e.BringForward()
	if c.IndexOf(b) != 2 || c.IndexOf(a) != 1 {
		t.Errorf("BringForward(): got circle %d rect %d", c.IndexOf(b), c.IndexOf(a))
	}

	c.SetActiveSelection(a)
	e.BringToFront()
	if c.IndexOf(a) != 2 {
		t.Errorf("BringToFront(): expected index 2, got %d", c.IndexOf(a))
	}
}

func TestWorkspace_Recreated(t *testing.T) {
	e, c, _ := newTestEditor(t)
	if err := e.ChangeSize(Size{Width: 300, Height: 200}); err != nil {
		t.Fatalf("ChangeSize() failed: %v", err)
	}
	rect := e.AddRect()
	old := e.Workspace()

	c.Remove(old)
	ws := e.Workspace()

	if ws == old {
		t.Fatal("Expected a new workspace object")
	}
	if c.IndexOf(ws) != 0 {
		t.Errorf("Recreated workspace at index %d, want 0", c.IndexOf(ws))
	}
	if ws.Width != 300 || ws.Height != 200 {
		t.Errorf("Recreated workspace has %vx%v, want page size 300x200", ws.Width, ws.Height)
	}
	if ws.Selectable {
		t.Error("Recreated workspace is selectable")
	}
	if c.Find(rect.ID) == nil {
		t.Error("Other objects lost")
	}
}

func TestWorkspace_ExternalAddSentToBack(t *testing.T) {
	e, c, _ := newTestEditor(t)
	e.AddRect()
	c.Remove(c.Objects()[0])
	c.Add(newWorkspace(Size{Width: 10, Height: 10}, "red"))

	if !c.Objects()[0].IsWorkspace() {
		t.Error("Added workspace was not sent to the back")
	}
}

func TestChangeSize(t *testing.T) {
	e, _, _ := newTestEditor(t)

	if err := e.ChangeSize(Size{Width: 500, Height: 400}); err != nil {
		t.Fatalf("ChangeSize() failed: %v", err)
	}
	if got := e.WorkspaceSize(); got.Width != 500 || got.Height != 400 {
		t.Errorf("Expected 500x400, got %vx%v", got.Width, got.Height)
	}
	page, err := e.Pages().Page(e.Pages().Current())
	if err != nil {
		t.Fatalf("Page() failed: %v", err)
	}
	if page.Width != 500 || page.Height != 400 {
		t.Errorf("Page dims not updated: %vx%v", page.Width, page.Height)
	}

	for _, bad := range []Size{{0, 10}, {10, -1}, {math.NaN(), 10}, {math.Inf(1), 10}} {
		if err := e.ChangeSize(bad); !errors.Is(err, core.ErrInvalidArgument) {
			t.Errorf("ChangeSize(%v): expected ErrInvalidArgument, got %v", bad, err)
		}
	}
	if got := e.WorkspaceSize(); got.Width != 500 {
		t.Errorf("Invalid size changed the workspace: %v", got)
	}
}

func TestChangeSize_LockedPageKeepsRecord(t *testing.T) {
	e, _, _ := newTestEditor(t)
	pm := e.Pages()
	if err := e.ChangeSize(Size{Width: 500, Height: 400}); err != nil {
		t.Fatalf("ChangeSize() failed: %v", err)
	}
	if err := pm.ToggleLock(pm.Current()); err != nil {
		t.Fatalf("ToggleLock() failed: %v", err)
	}

	if err := e.ChangeSize(Size{Width: 300, Height: 200}); err != nil {
		t.Fatalf("ChangeSize() failed: %v", err)
	}
	page, err := pm.Page(pm.Current())
	if err != nil {
		t.Fatalf("Page() failed: %v", err)
	}
	if page.Width != 500 || page.Height != 400 {
		t.Errorf("Locked page dims changed to %vx%v", page.Width, page.Height)
	}
}

func TestChangeBackground(t *testing.T) {
	e, _, _ := newTestEditor(t)

	if err := e.ChangeBackground(Background{Kind: BackgroundColor, Color: "#eeeeee"}); err != nil {
		t.Fatalf("ChangeBackground() failed: %v", err)
	}
	if ws := e.Workspace(); ws.Fill.Color != "#eeeeee" {
		t.Errorf("Expected workspace fill #eeeeee, got %q", ws.Fill.Color)
	}
	page, _ := e.Pages().Page(e.Pages().Current())
	if page.Background != "#eeeeee" {
		t.Errorf("Page background not updated: %q", page.Background)
	}

	if err := e.ChangeBackground(Background{Kind: BackgroundPattern, Pattern: PatternDots, Spacing: 10}); err != nil {
		t.Fatalf("ChangeBackground(pattern) failed: %v", err)
	}
	ws := e.Workspace()
	if ws.Fill.Kind != core.FillPattern || ws.Fill.Pattern == nil {
		t.Fatalf("Expected pattern fill, got %s", ws.Fill.Kind)
	}
	if ws.Fill.Pattern.Width != 10 || ws.Fill.Pattern.Repeat != "repeat" {
		t.Errorf("Unexpected pattern: %+v", *ws.Fill.Pattern)
	}

	if err := e.ChangeBackground(Background{Kind: BackgroundTransparent}); err != nil {
		t.Fatalf("ChangeBackground(transparent) failed: %v", err)
	}
	if e.Workspace().Fill.Kind != core.FillNone {
		t.Error("Expected no fill for transparent background")
	}

	bad := []Background{
		{Kind: BackgroundColor},
		{Kind: BackgroundImage},
		{Kind: BackgroundPattern, Pattern: "stars"},
		{Kind: "video"},
	}
	for _, bg := range bad {
		if err := e.ChangeBackground(bg); !errors.Is(err, core.ErrInvalidArgument) {
			t.Errorf("ChangeBackground(%+v): expected ErrInvalidArgument, got %v", bg, err)
		}
	}
}

func TestCoverImage(t *testing.T) {
	img := solidImage(40, 10)
	uri, err := coverImage(img, 20, 20)
	if err != nil {
		t.Fatalf("coverImage() failed: %v", err)
	}
	if !core.IsDataURI(uri) {
		t.Errorf("Expected data uri, got %.30s", uri)
	}
	if _, err := coverImage(img, 0, 20); err == nil {
		t.Error("Expected error for empty box")
	}
}
