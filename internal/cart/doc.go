// Package cart defines the cart state model and the pure reducer that owns
// every mutation rule.
//
// ARCHITECTURE:
//
// The cart is a value. State transitions happen exclusively through
// Apply(State, Action) — a pure function with no I/O, no randomness, and no
// hidden time dependency. Everything asynchronous (persistence, discount
// reconciliation, session merge) lives outside this package and re-enters the
// system by dispatching a new Action through the engine's single-writer loop.
//
// INVARIANTS:
//   - Items never contains two entries with the same variant key
//   - Quantity >= 1 for every item; reaching 0 means the row does not exist
//   - DiscountPercent is always within [0, 100]
//   - Total is a pure function of Items — recomputed atomically with every
//     transition, never independently assigned
//
// Apply is total over its action domain: malformed-but-well-typed actions
// (unknown variant key, quantity below 1) are no-ops, never errors.
package cart
