package editor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"canvas-editor/core"

	"github.com/gogpu/gg/text"
	"github.com/sirupsen/logrus"
	"golang.org/x/image/font/gofont/goregular"
)

type FontState string

const (
	FontPending FontState = "pending"
	FontReady   FontState = "ready"
	FontFailed  FontState = "failed"

	// FallbackFamily is always available and renders text whose font is not ready.
	FallbackFamily = "Go"

	fontWaitTimeout = 10 * time.Second
)

var ErrFontUnavailable = errors.New("font unavailable")

type (
	// FontFetcher returns TTF/OTF bytes for a family.
	FontFetcher interface {
		Fetch(ctx context.Context, family string) ([]byte, error)
	}

	// DirFetcher reads "<Dir>/<family>.ttf" or ".otf".
	DirFetcher struct {
		Dir string
	}

	fontEntry struct {
		state  FontState
		source *text.FontSource
		err    error
		ready  chan struct{}
	}

	// FontService loads fonts on first use and tracks their state. It is safe for
	// concurrent use; loads run on their own goroutines.
	FontService struct {
		mu      sync.Mutex
		fetcher FontFetcher
		fonts   map[string]*fontEntry
		log     *logrus.Entry
	}
)

func (f DirFetcher) Fetch(_ context.Context, family string) ([]byte, error) {
	name := strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == 0 {
			return -1
		}
		return r
	}, family)
	if name == "" || name == "." || name == ".." {
		return nil, fmt.Errorf("%w: %q", ErrFontUnavailable, family)
	}
	for _, ext := range []string{".ttf", ".otf"} {
		data, err := os.ReadFile(filepath.Join(f.Dir, name+ext))
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: %q not in %s", ErrFontUnavailable, family, f.Dir)
}

// NewFontService creates a service with the built-in fallback family registered.
// A nil fetcher means only registered fonts are available.
func NewFontService(fetcher FontFetcher, log *logrus.Entry) *FontService {
	if log == nil {
		log = logrus.WithField("component", "fonts")
	}
	s := &FontService{
		fetcher: fetcher,
		fonts:   make(map[string]*fontEntry),
		log:     log,
	}
	if err := s.Register(FallbackFamily, goregular.TTF); err != nil {
		log.WithError(err).Warn("Fallback font unavailable")
	}
	return s
}

// Register makes family ready from font bytes.
func (s *FontService) Register(family string, data []byte) error {
	src, err := text.NewFontSource(data)
	if err != nil {
		return fmt.Errorf("font %s: %w", family, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.fonts[key(family)]
	if ok && e.state == FontPending {
		e.state, e.source = FontReady, src
		close(e.ready)
		return nil
	}
	ready := make(chan struct{})
	close(ready)
	s.fonts[key(family)] = &fontEntry{state: FontReady, source: src, ready: ready}
	return nil
}

func key(family string) string {
	return strings.ToLower(strings.TrimSpace(family))
}

// State returns the load state without starting a load. Unknown fonts are pending.
func (s *FontService) State(family string) FontState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.fonts[key(family)]; ok {
		return e.state
	}
	return FontPending
}

// EnsureLoaded starts loading family if needed and returns its current state.
func (s *FontService) EnsureLoaded(family string) FontState {
	return s.ensure(family).state
}

func (s *FontService) ensure(family string) fontEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key(family)
	if e, ok := s.fonts[k]; ok {
		return *e
	}
	e := &fontEntry{state: FontPending, ready: make(chan struct{})}
	s.fonts[k] = e
	if s.fetcher == nil {
		e.state, e.err = FontFailed, ErrFontUnavailable
		close(e.ready)
		return *e
	}
	go s.load(family, e)
	return *e
}

func (s *FontService) load(family string, e *fontEntry) {
	ctx, cancel := context.WithTimeout(context.Background(), fontWaitTimeout)
	defer cancel()
	var src *text.FontSource
	data, err := s.fetcher.Fetch(ctx, family)
	if err == nil {
		src, err = text.NewFontSource(data)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if e.state != FontPending {
		return
	}
	if err != nil {
		e.state, e.err = FontFailed, err
		s.log.WithError(err).WithField("font", family).Warn("Font load failed")
	} else {
		e.state, e.source = FontReady, src
		s.log.WithField("font", family).Debug("Font loaded")
	}
	close(e.ready)
}

// Wait blocks until family is ready, failed, the timeout passes or ctx ends.
func (s *FontService) Wait(ctx context.Context, family string, timeout time.Duration) (FontState, error) {
	e := s.ensure(family)
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-e.ready:
		st := s.State(family)
		if st == FontFailed {
			return st, fmt.Errorf("font %s: %w", family, ErrFontUnavailable)
		}
		return st, nil
	case <-timer.C:
		return FontPending, fmt.Errorf("font %s: %w", family, context.DeadlineExceeded)
	case <-ctx.Done():
		return FontPending, ctx.Err()
	}
}

// Face returns a face for family, or the fallback face while family is not ready.
func (s *FontService) Face(family string, size float64) text.Face {
	if size <= 0 {
		size = DefaultFontSize
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.fonts[key(family)]; ok && e.state == FontReady {
		return e.source.Face(size)
	}
	if e, ok := s.fonts[key(FallbackFamily)]; ok && e.state == FontReady {
		return e.source.Face(size)
	}
	return nil
}

// requestFont starts loading family and repaints once it is ready.
func (e *Editor) requestFont(family string) {
	if e.fonts.EnsureLoaded(family) != FontPending {
		return
	}
	go func() {
		if _, err := e.fonts.Wait(context.Background(), family, fontWaitTimeout); err != nil {
			return
		}
		e.sched.AfterFunc(0, func() {
			if e.closed {
				return
			}
			e.restoreFonts()
			e.render()
		})
	}()
}

// restoreFonts gives text back its requested family once that font is ready.
func (e *Editor) restoreFonts() {
	var visit func(objs []*core.Object)
	visit = func(objs []*core.Object) {
		for _, o := range objs {
			if o.Kind == core.KindGroup {
				visit(o.Objects)
				continue
			}
			if o.Kind != core.KindText || o.OriginalFont == "" || o.OriginalFont == o.FontFamily {
				continue
			}
			switch e.fonts.EnsureLoaded(o.OriginalFont) {
			case FontReady:
				o.FontFamily = o.OriginalFont
			case FontPending:
				e.requestFont(o.OriginalFont)
			}
		}
	}
	visit(e.surface.Objects())
}
