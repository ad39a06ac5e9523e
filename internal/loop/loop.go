// Package loop provides the main sequencing goroutine and the bounded worker
// pool that feeds it.
//
// Everything that mutates shared application state runs as a closure posted
// to a Loop; closures run one at a time, in FIFO order. Blocking work runs
// on a Pool and posts its completion back to the Loop.
package loop

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// ErrClosed is returned when posting to a closed loop.
var ErrClosed = errors.New("loop closed")

// Loop runs posted closures sequentially on a single goroutine.
type Loop struct {
	mu      sync.Mutex
	queue   []func()
	closed  bool
	started bool
	wake    chan struct{}
	stop    chan struct{}
	done    chan struct{}
	log     zerolog.Logger
}

// New returns a loop that is not yet running.
func New(log zerolog.Logger) *Loop {
	return &Loop{
		wake: make(chan struct{}, 1),
		stop: make(chan struct{}),
		done: make(chan struct{}),
		log:  log.With().Str("component", "loop").Logger(),
	}
}

// Start runs the loop on a new goroutine. Calling it twice is a no-op.
func (l *Loop) Start() {
	l.mu.Lock()
	if l.started {
		l.mu.Unlock()
		return
	}
	l.started = true
	l.mu.Unlock()
	go l.run()
}

// Post enqueues fn and returns immediately. It never blocks, including when
// called from the loop itself. It reports false once the loop is closed.
func (l *Loop) Post(fn func()) bool {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return false
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()
	select {
	case l.wake <- struct{}{}:
	default:
	}
	return true
}

// Call runs fn on the loop and waits for it to finish. It must not be
// called from a closure running on the loop.
func (l *Loop) Call(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	if !l.Post(func() {
		defer close(finished)
		fn()
	}) {
		return ErrClosed
	}
	select {
	case <-finished:
		return nil
	case <-l.done:
		select {
		case <-finished:
			return nil
		default:
			return ErrClosed
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting closures, runs the ones already queued and waits
// for the loop goroutine to exit. A loop that was never started is drained
// on the caller's goroutine.
func (l *Loop) Close() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		<-l.done
		return
	}
	l.closed = true
	started := l.started
	l.started = true
	l.mu.Unlock()
	close(l.stop)
	if !started {
		l.drain()
		close(l.done)
		return
	}
	<-l.done
}

// Done is closed once the loop has exited.
func (l *Loop) Done() <-chan struct{} { return l.done }

func (l *Loop) run() {
	defer close(l.done)
	for {
		select {
		case <-l.wake:
			l.drain()
		case <-l.stop:
			l.drain()
			return
		}
	}
}

func (l *Loop) drain() {
	for {
		l.mu.Lock()
		if len(l.queue) == 0 {
			l.mu.Unlock()
			return
		}
		fn := l.queue[0]
		l.queue[0] = nil
		l.queue = l.queue[1:]
		l.mu.Unlock()
		l.exec(fn)
	}
}

func (l *Loop) exec(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.log.Error().Str("panic", fmt.Sprint(r)).Msg("recovered panic in loop task")
		}
	}()
	fn()
}
