package websocket

import (
	"canvas-editor/editor"
	"errors"
	"sync"
	"testing"
	"time"
)

type emitted struct {
	room  string
	event string
	args  []any
}

// recordingEmitter captures emits and signals each one on got.
type recordingEmitter struct {
	mu      sync.Mutex
	emits   []emitted
	got     chan struct{}
	release chan struct{}
	err     error
}

func newRecordingEmitter() *recordingEmitter {
	return &recordingEmitter{got: make(chan struct{}, 64)}
}

func (r *recordingEmitter) Emit(room, event string, args ...any) error {
	if r.release != nil {
		<-r.release
	}
	r.mu.Lock()
	r.emits = append(r.emits, emitted{room: room, event: event, args: args})
	r.mu.Unlock()
	r.got <- struct{}{}
	return r.err
}

func (r *recordingEmitter) wait(t *testing.T, n int) []emitted {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-r.got:
		case <-time.After(2 * time.Second):
			t.Fatalf("Timed out waiting for emit %d", i+1)
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]emitted(nil), r.emits...)
}

func TestHub_NotifierEmitsToSessionRoom(t *testing.T) {
	out := newRecordingEmitter()
	hub := newHub(out, 8)
	defer hub.Close()

	hub.Notifier("session-1").Notify(editor.Notification{
		Type:    editor.NotificationHistory,
		Payload: editor.HistoryState{CanUndo: true},
	})
	hub.Notifier("session-2").Notify(editor.Notification{
		Type:    editor.NotificationMessage,
		Payload: editor.Message{Level: "error", Text: "Export failed"},
	})

	emits := out.wait(t, 2)
	if emits[0].room != "session-1" || emits[0].event != editor.NotificationHistory {
		t.Errorf("Unexpected first emit: %+v", emits[0])
	}
	payload, ok := emits[0].args[0].(map[string]any)
	if !ok {
		t.Fatalf("Expected a JSON object payload, got %T", emits[0].args[0])
	}
	if payload["canUndo"] != true || payload["canRedo"] != false {
		t.Errorf("Unexpected history payload: %v", payload)
	}

	msg := emits[1].args[0].(map[string]any)
	if emits[1].room != "session-2" || msg["text"] != "Export failed" {
		t.Errorf("Unexpected second emit: %+v", emits[1])
	}
}

func TestHub_NotifyDoesNotBlock(t *testing.T) {
	out := newRecordingEmitter()
	out.release = make(chan struct{})
	hub := newHub(out, 1)

	n := hub.Notifier("busy")
	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			n.Notify(editor.Notification{Type: editor.NotificationLayers})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Notify blocked on a full queue")
	}

	close(out.release)
	hub.Close()
}

func TestHub_EmitErrorKeepsDispatching(t *testing.T) {
	out := newRecordingEmitter()
	out.err = errors.New("transport closed")
	hub := newHub(out, 8)
	defer hub.Close()

	n := hub.Notifier("s")
	n.Notify(editor.Notification{Type: editor.NotificationPages})
	n.Notify(editor.Notification{Type: editor.NotificationLayers})

	if emits := out.wait(t, 2); len(emits) != 2 {
		t.Errorf("Expected 2 emits, got %d", len(emits))
	}
}

func TestHub_CloseIsIdempotent(t *testing.T) {
	hub := newHub(newRecordingEmitter(), 1)
	hub.Close()
	hub.Close()

	// Notify after close must not block.
	hub.Notifier("s").Notify(editor.Notification{Type: editor.NotificationLayers})
}

func TestHub_Watchers(t *testing.T) {
	hub := newHub(newRecordingEmitter(), 1)
	defer hub.Close()

	hub.setWatchers("a", 2)
	hub.setWatchers("b", 1)
	hub.setWatchers("b", 0)

	watchers := hub.Watchers()
	if len(watchers) != 1 || watchers["a"] != 2 {
		t.Errorf("Unexpected watchers: %v", watchers)
	}
	watchers["a"] = 99
	if hub.Watchers()["a"] != 2 {
		t.Error("Watchers() exposed internal state")
	}
}

func TestToWire(t *testing.T) {
	v, err := toWire(editor.PagesState{Current: "p1", Pages: []editor.PageInfo{{ID: "p1", Name: "Page 1"}}})
	if err != nil {
		t.Fatalf("toWire() failed: %v", err)
	}
	state := v.(map[string]any)
	if state["current"] != "p1" {
		t.Errorf("Unexpected current: %v", state["current"])
	}
	pages := state["pages"].([]any)
	if pages[0].(map[string]any)["name"] != "Page 1" {
		t.Errorf("Unexpected pages: %v", pages)
	}

	if v, err := toWire(nil); err != nil || v != nil {
		t.Errorf("toWire(nil) = %v, %v", v, err)
	}
	if _, err := toWire(func() {}); err == nil {
		t.Error("Expected error for an unencodable payload")
	}
}

func TestSessionArg(t *testing.T) {
	exists := func(id string) bool { return id == "open" }

	tests := []struct {
		name    string
		args    []any
		want    string
		wantErr bool
	}{
		{"missing", nil, "", true},
		{"empty", []any{""}, "", true},
		{"not a string", []any{42}, "", true},
		{"unknown session", []any{"closed"}, "", true},
		{"open session", []any{"open"}, "open", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := sessionArg(tt.args, exists)
			if (err != nil) != tt.wantErr {
				t.Fatalf("sessionArg() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("sessionArg() = %q, want %q", got, tt.want)
			}
		})
	}

	if got, err := sessionArg([]any{"anything"}, nil); err != nil || got != "anything" {
		t.Errorf("Expected any id accepted without a check, got %q, %v", got, err)
	}
}
