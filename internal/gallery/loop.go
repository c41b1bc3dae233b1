package gallery

import (
	"context"
	"errors"
	"sync"
)

// ErrLoopClosed is returned by Sync once the loop has stopped.
var ErrLoopClosed = errors.New("owner loop closed")

// Owner executes work on the goroutine that owns gallery state.
type Owner interface {
	// Post queues fn. It never blocks and reports false once the owner has
	// shut down.
	Post(fn func()) bool
}

// Loop is an Owner backed by an unbounded FIFO queue. Work runs either on
// the goroutine calling Run or on a goroutine calling Drain, never both at
// once.
type Loop struct {
	mu     sync.Mutex
	queue  []func()
	wake   chan struct{}
	closed bool
}

func NewLoop() *Loop {
	return &Loop{wake: make(chan struct{}, 1)}
}

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

// Run executes queued work until ctx is cancelled. Work still queued at
// that point is executed before Run returns; later posts are rejected.
func (l *Loop) Run(ctx context.Context) error {
	for {
		l.Drain()
		select {
		case <-ctx.Done():
			l.mu.Lock()
			l.closed = true
			l.mu.Unlock()
			l.Drain()
			return nil
		case <-l.wake:
		}
	}
}

// Drain runs queued work on the calling goroutine until the queue is empty,
// including work posted while draining. It returns the number of functions
// run.
func (l *Loop) Drain() int {
	n := 0
	for {
		l.mu.Lock()
		if len(l.queue) == 0 {
			l.mu.Unlock()
			return n
		}
		batch := l.queue
		l.queue = nil
		l.mu.Unlock()

		for _, fn := range batch {
			fn()
			n++
		}
	}
}

// Sync waits until everything posted before the call has run.
func (l *Loop) Sync(ctx context.Context) error {
	done := make(chan struct{})
	if !l.Post(func() { close(done) }) {
		return ErrLoopClosed
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Pending returns the number of queued functions.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}
