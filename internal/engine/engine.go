package engine

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/roach88/cartwheel/internal/cart"
)

// ErrStopped is returned by DispatchWait when the dispatcher has been
// stopped before the action could be applied.
var ErrStopped = errors.New("engine: dispatcher stopped")

// Persister mirrors each new state durably. Implemented by persist.Adapter.
//
// Persist failures are non-fatal: the dispatcher logs them and continues.
// The write is wholesale (last-writer-wins across processes), with revision
// carried alongside for diagnostics.
type Persister interface {
	Persist(ctx context.Context, state cart.State, revision int64) error
}

// Subscriber receives every post-transition state value.
//
// Subscribers run in the loop goroutine: they must be fast and must never
// mutate the state or dispatch synchronously (re-enter via Dispatch from a
// separate goroutine, or enqueue — Dispatch itself is non-blocking and safe).
type Subscriber func(state cart.State)

// Dispatcher is the single logical owner of the cart state.
//
// CRITICAL: All mutations happen in the single-writer Run loop goroutine.
// External callers use Dispatch()/DispatchWait() to submit actions.
//
// Thread-safety model:
//   - Dispatch(), DispatchWait(): safe from any goroutine
//   - Run(): must be called from exactly one goroutine
//   - State(), Revision(): safe from any goroutine (read snapshot)
//   - Subscribe(): call before Run(); not synchronized with the loop
type Dispatcher struct {
	queue     *actionQueue
	clock     *Clock
	persister Persister // nil means ephemeral (no durable mirror)
	tokens    TokenGenerator

	mu    sync.RWMutex
	state cart.State

	subs []Subscriber
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithPersister wires a durable persister. Every transition is mirrored
// best-effort; failures are logged and swallowed.
func WithPersister(p Persister) Option {
	return func(d *Dispatcher) {
		d.persister = p
	}
}

// WithClock sets a pre-positioned revision clock, used to resume from a
// rehydrated snapshot's revision.
func WithClock(c *Clock) Option {
	return func(d *Dispatcher) {
		d.clock = c
	}
}

// WithTokenGenerator overrides the background-pass token generator.
// Tests use a FixedGenerator for deterministic output.
func WithTokenGenerator(g TokenGenerator) Option {
	return func(d *Dispatcher) {
		d.tokens = g
	}
}

// New creates a Dispatcher owning the given initial state — either
// cart.Empty() on first visit or a rehydrated snapshot.
func New(initial cart.State, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		queue:  newActionQueue(),
		clock:  NewClock(),
		tokens: UUIDv7Generator{},
		state:  initial,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch submits an action for processing by the Run loop.
// Fire-and-forget; thread-safe from any goroutine.
//
// Returns false if the dispatcher has been stopped.
func (d *Dispatcher) Dispatch(a cart.Action) bool {
	return d.queue.Enqueue(dispatchEvent{action: a})
}

// DispatchWait submits an action and blocks until it has been applied,
// returning the post-apply state. Used by callers that need to observe the
// transition result (HTTP handlers, session merge).
func (d *Dispatcher) DispatchWait(ctx context.Context, a cart.Action) (cart.State, error) {
	reply := make(chan cart.State, 1)
	if !d.queue.Enqueue(dispatchEvent{action: a, reply: reply}) {
		return cart.State{}, ErrStopped
	}

	select {
	case <-ctx.Done():
		return cart.State{}, ctx.Err()
	case state, ok := <-reply:
		if !ok {
			return cart.State{}, ErrStopped
		}
		return state, nil
	}
}

// State returns the current state snapshot.
// Thread-safe; the returned value must be treated as immutable.
func (d *Dispatcher) State() cart.State {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.state
}

// Revision returns the revision of the current state.
func (d *Dispatcher) Revision() int64 {
	return d.clock.Current()
}

// Subscribe registers an observer for post-transition states.
// Must be called before Run() starts.
func (d *Dispatcher) Subscribe(fn Subscriber) {
	d.subs = append(d.subs, fn)
}

// NewPassToken generates a correlation token for a background pass.
// Thread-safe: delegates to the configured generator.
func (d *Dispatcher) NewPassToken() string {
	return d.tokens.Generate()
}

// QueueLen returns the number of pending actions. Useful for tests.
func (d *Dispatcher) QueueLen() int {
	return d.queue.Len()
}

// Run starts the single-writer dispatch loop.
// Blocks until the context is cancelled or Stop() is called.
//
// CRITICAL: Must be called from exactly ONE goroutine. All reducer
// applications, subscriber notifications, and persistence writes happen here.
func (d *Dispatcher) Run(ctx context.Context) error {
	slog.Info("dispatcher starting", "revision", d.clock.Current())

	for {
		event, ok := d.queue.TryDequeue()
		if ok {
			d.apply(ctx, event)
			continue
		}

		select {
		case <-ctx.Done():
			slog.Info("dispatcher stopping: context cancelled")
			d.queue.Close()
			d.drainReplies()
			return ctx.Err()

		case <-d.queue.Wait():
			// Signal received - loop back to TryDequeue. The signal
			// channel closes when the queue closes, so this case fires
			// immediately on Stop().
			if d.queue.Len() == 0 {
				slog.Info("dispatcher stopping: queue closed")
				return nil
			}
		}
	}
}

// Stop gracefully shuts down the dispatcher.
// Closes the action queue, which causes Run() to return after the backlog
// drains.
func (d *Dispatcher) Stop() {
	d.queue.Close()
}

// apply runs one atomic transition: reduce, publish, notify, persist.
// CRITICAL: called only from the Run goroutine - single-writer guarantee.
func (d *Dispatcher) apply(ctx context.Context, event dispatchEvent) {
	next := cart.Apply(d.State(), event.action)
	revision := d.clock.Next()

	d.mu.Lock()
	d.state = next
	d.mu.Unlock()

	slog.Debug("action applied",
		"action", event.action.Kind(),
		"revision", revision,
		"items", len(next.Items),
		"total", next.Total,
	)

	// Subscribers before the reply: when DispatchWait returns, every
	// observer has already seen the transition.
	for _, fn := range d.subs {
		fn(next)
	}

	if event.reply != nil {
		event.reply <- next
	}

	if d.persister != nil {
		// Best-effort durable mirror. "Log and continue" - the in-memory
		// transition is never rolled back on write failure.
		if err := d.persister.Persist(ctx, next, revision); err != nil {
			slog.Error("persist failed",
				"error", err,
				"action", event.action.Kind(),
				"revision", revision,
			)
		}
	}
}

// drainReplies unblocks any DispatchWait callers whose actions were queued
// but never applied before shutdown.
func (d *Dispatcher) drainReplies() {
	for {
		event, ok := d.queue.TryDequeue()
		if !ok {
			return
		}
		if event.reply != nil {
			close(event.reply)
		}
	}
}
