package editor

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// ErrLoopClosed is returned when posting to a loop that has stopped.
var ErrLoopClosed = errors.New("editor loop closed")

type (
	// Timer is a scheduled callback that can be cancelled.
	Timer interface {
		Stop() bool
	}

	// Scheduler runs fn after d. Callbacks must execute on the engine's goroutine.
	Scheduler interface {
		AfterFunc(d time.Duration, fn func()) Timer
	}

	// Loop serializes every engine call onto one goroutine.
	Loop struct {
		tasks chan func()
		done  chan struct{}
		once  sync.Once
	}

	loopScheduler struct {
		loop *Loop
	}

	loopTimer struct {
		t *time.Timer
	}

	// queuedTimer is a zero-delay callback already sitting in the task queue.
	queuedTimer struct {
		state atomic.Int32
	}
)

const (
	timerPending int32 = iota
	timerFired
	timerStopped
)

// NewLoop starts the loop goroutine.
func NewLoop() *Loop {
	l := &Loop{
		tasks: make(chan func(), 64),
		done:  make(chan struct{}),
	}
	go l.run()
	return l
}

func (l *Loop) run() {
	for {
		select {
		case fn := <-l.tasks:
			fn()
		case <-l.done:
			return
		}
	}
}

// Post queues fn without waiting for it.
func (l *Loop) Post(fn func()) error {
	select {
	case <-l.done:
		return ErrLoopClosed
	default:
	}
	select {
	case l.tasks <- fn:
		return nil
	case <-l.done:
		return ErrLoopClosed
	}
}

// Call runs fn on the loop and waits for it to return.
func (l *Loop) Call(ctx context.Context, fn func() error) error {
	result := make(chan error, 1)
	if err := l.Post(func() { result <- fn() }); err != nil {
		return err
	}
	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		return ErrLoopClosed
	}
}

// Close stops the loop. Queued tasks that have not started are dropped.
func (l *Loop) Close() {
	l.once.Do(func() { close(l.done) })
}

// Scheduler returns a scheduler whose callbacks are posted back onto l.
func (l *Loop) Scheduler() Scheduler {
	return loopScheduler{loop: l}
}

// enqueue adds fn behind the tasks already queued. It never blocks, so the
// loop goroutine may call it.
func (l *Loop) enqueue(fn func()) {
	select {
	case l.tasks <- fn:
	default:
		go l.Post(fn)
	}
}

// AfterFunc with d <= 0 queues fn directly, so it runs before any task posted
// after this call returns.
func (s loopScheduler) AfterFunc(d time.Duration, fn func()) Timer {
	if d <= 0 {
		t := &queuedTimer{}
		s.loop.enqueue(func() {
			if t.state.CompareAndSwap(timerPending, timerFired) {
				fn()
			}
		})
		return t
	}
	return loopTimer{t: time.AfterFunc(d, func() {
		_ = s.loop.Post(fn)
	})}
}

func (t *queuedTimer) Stop() bool {
	return t.state.CompareAndSwap(timerPending, timerStopped)
}

func (t loopTimer) Stop() bool {
	return t.t.Stop()
}
