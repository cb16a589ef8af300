package editor

import (
	"fmt"
	"time"

	"canvas-editor/core"
)

// History is a linear stack of serialized scene snapshots with a cursor.
// Commits are debounced so a burst of mutations produces one snapshot.
type History struct {
	e        *Editor
	debounce time.Duration
	limit    int

	stack   []string
	cursor  int
	pending Timer
	token   int
	loading bool
}

func newHistory(e *Editor, debounce time.Duration, limit int) *History {
	if limit < 2 {
		limit = DefaultHistoryLimit
	}
	return &History{e: e, debounce: debounce, limit: limit, cursor: -1}
}

// Commit schedules a snapshot after the debounce interval, restarting the
// interval when one is already pending.
func (h *History) Commit() {
	if h.loading {
		return
	}
	h.stopPending()
	h.token++
	token := h.token
	h.pending = h.e.sched.AfterFunc(h.debounce, func() {
		// A stopped timer may still have queued its callback.
		if token != h.token || h.pending == nil {
			return
		}
		h.pending = nil
		h.Save()
	})
}

// Flush runs a pending commit now. It reports whether one was pending.
func (h *History) Flush() bool {
	if h.pending == nil {
		return false
	}
	h.stopPending()
	h.Save()
	return true
}

// Pending reports whether a debounced commit is waiting.
func (h *History) Pending() bool {
	return h.pending != nil
}

// Cancel drops a pending commit.
func (h *History) Cancel() {
	h.stopPending()
}

func (h *History) stopPending() {
	if h.pending != nil {
		h.pending.Stop()
		h.pending = nil
	}
	h.token++
}

// Save captures the scene immediately. A capture failure leaves the stack as it was.
func (h *History) Save() bool {
	if h.loading {
		return false
	}
	snapshot, err := h.capture()
	if err != nil {
		h.e.log.WithError(err).Warn("Skipping history commit")
		return false
	}
	if h.cursor >= 0 && h.stack[h.cursor] == snapshot {
		return false
	}

	h.stack = append(h.stack[:h.cursor+1], snapshot)
	if len(h.stack) > h.limit {
		drop := len(h.stack) - h.limit
		h.stack = append([]string(nil), h.stack[drop:]...)
	}
	h.cursor = len(h.stack) - 1
	h.e.log.WithField("snapshots", len(h.stack)).Debug("History committed")
	h.changed()
	return true
}

func (h *History) capture() (string, error) {
	doc, err := h.e.surface.Serialize(core.DocumentKeys...)
	if err != nil {
		return "", err
	}
	return doc.Marshal()
}

// Undo moves the cursor back and reloads that snapshot. A pending commit is
// flushed first so the latest change is the one undone.
func (h *History) Undo() error {
	h.Flush()
	if !h.CanUndo() {
		return nil
	}
	if err := h.load(h.stack[h.cursor-1]); err != nil {
		return err
	}
	h.cursor--
	h.changed()
	return nil
}

func (h *History) Redo() error {
	h.Flush()
	if !h.CanRedo() {
		return nil
	}
	if err := h.load(h.stack[h.cursor+1]); err != nil {
		return err
	}
	h.cursor++
	h.changed()
	return nil
}

func (h *History) CanUndo() bool {
	return h.cursor > 0
}

func (h *History) CanRedo() bool {
	return h.cursor >= 0 && h.cursor < len(h.stack)-1
}

// Len returns the number of snapshots held.
func (h *History) Len() int {
	return len(h.stack)
}

// Loading reports whether a snapshot is being applied to the scene.
func (h *History) Loading() bool {
	return h.loading
}

// Reset drops all snapshots and takes the current scene as the new baseline.
func (h *History) Reset() {
	h.stopPending()
	h.stack = h.stack[:0]
	h.cursor = -1
	if snapshot, err := h.capture(); err == nil {
		h.stack = append(h.stack, snapshot)
		h.cursor = 0
	} else {
		h.e.log.WithError(err).Warn("History baseline unavailable")
	}
	h.changed()
}

// load applies a snapshot without recording it.
func (h *History) load(snapshot string) error {
	doc, err := core.ParseDocument(snapshot)
	if err != nil {
		return fmt.Errorf("history snapshot: %w", err)
	}
	h.loading = true
	defer func() { h.loading = false }()
	if err := h.e.surface.Deserialize(doc); err != nil {
		return fmt.Errorf("history snapshot: %w", err)
	}
	h.e.afterLoad()
	return nil
}

func (h *History) changed() {
	h.e.notifier.Notify(Notification{
		Type:    NotificationHistory,
		Payload: HistoryState{CanUndo: h.CanUndo(), CanRedo: h.CanRedo()},
	})
}
