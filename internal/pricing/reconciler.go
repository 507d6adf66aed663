package pricing

import (
	"context"
	"log/slog"
	"sync"

	"github.com/roach88/cartwheel/internal/cart"
	"github.com/roach88/cartwheel/internal/engine"
)

// DiscountFetcher is the Pricing Service surface the reconciler needs.
// Implemented by Client; tests substitute fakes.
type DiscountFetcher interface {
	Discount(ctx context.Context, productID string) (float64, error)
}

// Reconciler folds current server-side discounts into the cart.
//
// It observes every state transition and keeps a per-session set of product
// IDs already priced. The first time the item list becomes non-empty every
// product is fetched; afterwards only products newly added to the cart
// trigger fetches — a quantity change or discount patch re-triggers nothing,
// avoiding a request storm. Removing a product forgets it, so re-adding
// refetches.
//
// Re-entrancy: each pass collects results privately and dispatches exactly
// one UPDATE_DISCOUNTS after all of its fetches resolve (or individually
// fail), so two overlapping passes cannot interleave into a torn state.
type Reconciler struct {
	dispatcher *engine.Dispatcher
	fetcher    DiscountFetcher

	mu   sync.Mutex
	seen map[string]bool // product IDs priced (or in flight) this session

	wg sync.WaitGroup // outstanding passes, for tests and shutdown
}

// NewReconciler creates a reconciler and subscribes it to the dispatcher.
// Call before the dispatcher's Run loop starts.
func NewReconciler(d *engine.Dispatcher, f DiscountFetcher) *Reconciler {
	r := &Reconciler{
		dispatcher: d,
		fetcher:    f,
		seen:       make(map[string]bool),
	}
	d.Subscribe(r.observe)
	return r
}

// observe runs in the dispatcher's loop goroutine on every transition.
// It must stay fast: diff the product set, then hand off to a goroutine.
func (r *Reconciler) observe(state cart.State) {
	inCart := make(map[string]bool)
	var fresh []string

	r.mu.Lock()
	for _, id := range state.ProductIDs() {
		inCart[id] = true
		if !r.seen[id] {
			r.seen[id] = true
			fresh = append(fresh, id)
		}
	}
	// Forget products no longer in the cart so a later re-add refetches.
	for id := range r.seen {
		if !inCart[id] {
			delete(r.seen, id)
		}
	}
	r.mu.Unlock()

	if len(fresh) == 0 {
		return
	}

	token := r.dispatcher.NewPassToken()
	r.wg.Add(1)
	go r.pass(token, fresh)
}

// pass fetches discounts for the given product IDs and dispatches one
// batched UPDATE_DISCOUNTS. Fetches are not cancelable mid-flight; late
// results for removed products are filtered out before dispatch.
func (r *Reconciler) pass(token string, productIDs []string) {
	defer r.wg.Done()

	slog.Debug("reconciliation pass starting",
		"pass", token,
		"products", len(productIDs),
	)

	ctx := context.Background()

	var (
		resMu     sync.Mutex
		discounts = make(map[string]float64, len(productIDs))
		fanout    sync.WaitGroup
	)

	// Fan out one fetch per product; failures are isolated per product.
	for _, id := range productIDs {
		fanout.Add(1)
		go func(productID string) {
			defer fanout.Done()
			d, err := r.fetcher.Discount(ctx, productID)
			if err != nil {
				// "No change" for this product - logged, never surfaced.
				slog.Warn("discount fetch failed",
					"pass", token,
					"product_id", productID,
					"error", err,
				)
				return
			}
			resMu.Lock()
			discounts[productID] = d
			resMu.Unlock()
		}(id)
	}
	fanout.Wait()

	// Tag check: drop results for products removed while we fetched.
	// The reducer would ignore them anyway (patch-only), but discarding
	// here keeps the dispatched action honest.
	current := r.dispatcher.State()
	stillIn := make(map[string]bool, len(current.Items))
	for _, id := range current.ProductIDs() {
		stillIn[id] = true
	}
	for id := range discounts {
		if !stillIn[id] {
			delete(discounts, id)
		}
	}

	if len(discounts) == 0 {
		slog.Debug("reconciliation pass empty", "pass", token)
		return
	}

	r.dispatcher.Dispatch(cart.UpdateDiscounts{ByProductID: discounts})
	slog.Info("discounts reconciled",
		"pass", token,
		"updated", len(discounts),
		"fetched", len(productIDs),
	)
}

// Wait blocks until all in-flight passes have dispatched or given up.
// Used by tests and graceful shutdown.
func (r *Reconciler) Wait() {
	r.wg.Wait()
}
