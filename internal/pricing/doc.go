// Package pricing keeps locally-cached discount percentages from growing
// stale relative to server-side promotions.
//
// The Client is a thin HTTP consumer of the Pricing Service's per-product
// discount endpoint. The Reconciler subscribes to the dispatcher and, when
// products appear in the cart that haven't been priced this session, fans
// out one fetch per product, collects the results, and folds them back into
// the cart with a single UPDATE_DISCOUNTS dispatch.
//
// Failure philosophy: an individual product's fetch failure never blocks the
// rest of the pass, is logged, and is otherwise silent — the stale local
// discount simply stands until the next opportunity. Late results for
// products removed in the meantime are discarded before dispatch; the
// reducer's patch-only semantics make even a missed discard harmless.
package pricing
