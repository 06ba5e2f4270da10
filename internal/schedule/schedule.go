// Package schedule provides cancellable deferred calls that always run on a
// single event loop, so the game state is never mutated concurrently.
package schedule

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Task is a pending deferred call.
type Task interface {
	// Stop cancels the call. It reports whether the call was still pending.
	// Once Stop returns on the event loop the call will not run.
	Stop() bool
}

// Scheduler runs f on the owning event loop once d has elapsed.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Task
}

// Poster hands f to the owning event loop. It is called from timer goroutines
// and must not run f itself.
type Poster func(f func())

// Deferred is a Scheduler backed by real timers. Expired timers do not call f
// directly: they post it to the event loop, where the task's state is checked
// again so a Stop issued on the loop always wins.
type Deferred struct {
	post Poster
}

// NewDeferred returns a Scheduler that delivers calls through post.
func NewDeferred(post Poster) *Deferred {
	return &Deferred{post: post}
}

type deferredTask struct {
	timer *time.Timer
	done  atomic.Bool
}

// AfterFunc implements Scheduler.
func (d *Deferred) AfterFunc(dur time.Duration, f func()) Task {
	t := &deferredTask{}
	t.timer = time.AfterFunc(dur, func() {
		d.post(func() {
			if t.done.CompareAndSwap(false, true) {
				f()
			}
		})
	})
	return t
}

func (t *deferredTask) Stop() bool {
	t.timer.Stop()
	return t.done.CompareAndSwap(false, true)
}

// Loop is a minimal event loop for callers that do not bring their own
// (the terminal UI uses the bubbletea program instead).
type Loop struct {
	queue chan func()
	done  chan struct{}
	once  sync.Once
}

// NewLoop returns a loop whose queue holds up to size pending calls.
func NewLoop(size int) *Loop {
	return &Loop{
		queue: make(chan func(), size),
		done:  make(chan struct{}),
	}
}

// Run executes posted calls one at a time until ctx is done or Close is called.
func (l *Loop) Run(ctx context.Context) error {
	defer l.Close()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.done:
			return nil
		case f := <-l.queue:
			f()
		}
	}
}

// Post queues f. Calls posted after the loop stopped are dropped.
func (l *Loop) Post(f func()) {
	select {
	case l.queue <- f:
	case <-l.done:
	}
}

// Do runs f on the loop and waits for it to finish.
func (l *Loop) Do(ctx context.Context, f func()) error {
	finished := make(chan struct{})
	l.Post(func() {
		f()
		close(finished)
	})
	select {
	case <-finished:
		return nil
	case <-l.done:
		return context.Canceled
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the loop.
func (l *Loop) Close() {
	l.once.Do(func() { close(l.done) })
}

// Scheduler returns a Scheduler that delivers onto this loop.
func (l *Loop) Scheduler() *Deferred {
	return NewDeferred(l.Post)
}
