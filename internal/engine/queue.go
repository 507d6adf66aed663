package engine

import (
	"sync"

	"github.com/roach88/cartwheel/internal/cart"
)

// dispatchEvent wraps an action for the queue. A non-nil reply channel makes
// the dispatch observable: the loop sends the post-apply state on it.
type dispatchEvent struct {
	action cart.Action
	reply  chan cart.State // buffered size 1, nil for fire-and-forget
}

// actionQueue is a thread-safe FIFO queue for dispatch events.
//
// The queue is unbounded so background dispatchers (reconciler, persistence
// callbacks) never block. Thread-safety covers external enqueuing while the
// Dispatcher's Run loop dequeues; in practice most usage is single-threaded.
//
// A buffered signal channel enables context-aware waiting in the Run loop.
type actionQueue struct {
	mu     sync.Mutex
	events []dispatchEvent
	closed bool
	signal chan struct{} // signals event availability (buffered, size 1)
}

func newActionQueue() *actionQueue {
	return &actionQueue{
		events: make([]dispatchEvent, 0, 16),
		signal: make(chan struct{}, 1),
	}
}

// Enqueue adds an event to the back of the queue.
// Thread-safe: may be called from any goroutine.
// Returns false if the queue is closed.
func (q *actionQueue) Enqueue(e dispatchEvent) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}

	q.events = append(q.events, e)

	// Non-blocking signal - buffer of 1 coalesces multiple signals.
	select {
	case q.signal <- struct{}{}:
	default:
	}

	return true
}

// TryDequeue attempts to dequeue without blocking.
// Returns (dispatchEvent{}, false) if the queue is empty.
func (q *actionQueue) TryDequeue() (dispatchEvent, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.events) == 0 {
		return dispatchEvent{}, false
	}

	e := q.events[0]

	// Nil out the slot so the action's payload can be collected; the
	// underlying array would otherwise retain it until reallocation.
	q.events[0] = dispatchEvent{}

	if len(q.events) == 1 {
		q.events = q.events[:0]
	} else {
		q.events = q.events[1:]
	}

	return e, true
}

// Wait returns a channel that signals when events may be available.
// Use with select alongside ctx.Done() for context-aware waiting.
func (q *actionQueue) Wait() <-chan struct{} {
	return q.signal
}

// Len returns the current queue length.
func (q *actionQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

// Close signals that no more events will be enqueued.
// Wakes any blocked waiters by closing the signal channel.
func (q *actionQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}

	q.closed = true
	close(q.signal)
}
