package editor

import (
	"canvas-editor/scene"
	"context"
	"errors"
	"testing"
	"time"
)

func TestLoop_Call(t *testing.T) {
	l := NewLoop()
	defer l.Close()

	ran := false
	if err := l.Call(context.Background(), func() error {
		ran = true
		return nil
	}); err != nil {
		t.Fatalf("Call() failed: %v", err)
	}
	if !ran {
		t.Error("Call() returned before fn ran")
	}

	want := errors.New("boom")
	if err := l.Call(context.Background(), func() error { return want }); !errors.Is(err, want) {
		t.Errorf("Expected fn error, got %v", err)
	}
}

func TestLoop_Closed(t *testing.T) {
	l := NewLoop()
	l.Close()
	l.Close()

	if err := l.Post(func() {}); !errors.Is(err, ErrLoopClosed) {
		t.Errorf("Expected ErrLoopClosed, got %v", err)
	}
	if err := l.Call(context.Background(), func() error { return nil }); !errors.Is(err, ErrLoopClosed) {
		t.Errorf("Expected ErrLoopClosed, got %v", err)
	}
}

func TestLoop_CallContext(t *testing.T) {
	l := NewLoop()
	defer l.Close()
	release := make(chan struct{})
	defer close(release)
	if err := l.Post(func() { <-release }); err != nil {
		t.Fatalf("Post() failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := l.Call(ctx, func() error { return nil }); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected deadline exceeded, got %v", err)
	}
}

func TestLoop_SchedulerRunsOnLoop(t *testing.T) {
	l := NewLoop()
	defer l.Close()

	done := make(chan struct{})
	l.Scheduler().AfterFunc(time.Millisecond, func() { close(done) })
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Scheduled callback never ran")
	}

	stopped := l.Scheduler().AfterFunc(time.Hour, func() { t.Error("Stopped callback ran") })
	if !stopped.Stop() {
		t.Error("Stop() reported the timer already fired")
	}
}

// An editor without a scheduler drives itself on its own loop.
func TestEditor_OwnLoop(t *testing.T) {
	e := New(scene.New(800, 600), WithLogger(quietLogger()))
	l := e.Loop()
	if l == nil {
		t.Fatal("Expected an editor-owned loop")
	}
	defer l.Call(context.Background(), func() error {
		e.Close()
		return nil
	})

	if err := l.Call(context.Background(), func() error {
		e.Init(Size{Width: 800, Height: 600})
		return nil
	}); err != nil {
		t.Fatalf("Call() failed: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		var n int
		if err := l.Call(context.Background(), func() error {
			n = len(e.Surface().Objects())
			return nil
		}); err != nil {
			t.Fatalf("Call() failed: %v", err)
		}
		if n == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("Workspace never created on the loop")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestLoop_ZeroDelayRunsBeforeLaterCalls(t *testing.T) {
	l := NewLoop()
	defer l.Close()

	var order []string
	if err := l.Call(context.Background(), func() error {
		l.Scheduler().AfterFunc(0, func() { order = append(order, "scheduled") })
		stopped := l.Scheduler().AfterFunc(0, func() { order = append(order, "stopped") })
		if !stopped.Stop() {
			t.Error("Stop() reported the callback already ran")
		}
		return nil
	}); err != nil {
		t.Fatalf("Call() failed: %v", err)
	}
	if err := l.Call(context.Background(), func() error {
		order = append(order, "call")
		return nil
	}); err != nil {
		t.Fatalf("Call() failed: %v", err)
	}

	if len(order) != 2 || order[0] != "scheduled" || order[1] != "call" {
		t.Errorf("Unexpected order: %v", order)
	}
}
