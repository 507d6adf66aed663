// Package engine implements the single-writer dispatch loop for the cart.
//
// ARCHITECTURE:
//
// Single-Writer Event Loop:
// All state transitions happen in one goroutine for deterministic behavior.
// UI events and async callbacks interleave, but each reducer invocation runs
// to completion before the next. This ensures:
// - No two transitions are ever in flight concurrently
// - Actions dispatched from the same caller apply in dispatch order
// - Simple reasoning about the state at any observation point
//
// Dispatch Flow:
// 1. Actions enqueued to a FIFO queue (Dispatch / DispatchWait)
// 2. Dispatcher.Run() dequeues one action at a time
// 3. cart.Apply produces the next state value
// 4. Subscribers are notified with the new value (in the loop goroutine)
// 5. The persister mirrors the state durably, best-effort
//
// Asynchronous work (persistence writes, discount fetches, the session merge
// network call) never mutates state directly — it re-enters the system by
// dispatching a new action.
//
// ERROR HANDLING: Persistence failure is logged and processing continues.
// The in-memory state remains the source of truth for the process lifetime;
// durability is an optimization for continuity, not a transaction guard.
package engine
