package coupon

import (
	"context"
	"log/slog"
	"sync"

	"github.com/roach88/cartwheel/internal/cart"
	"github.com/roach88/cartwheel/internal/engine"
)

// Applier applies and removes coupons through the dispatcher. Delivery
// charge changes are action-only: no component writes the field directly.
type Applier struct {
	dispatcher *engine.Dispatcher
	book       *Book

	mu     sync.Mutex
	active string // currently applied code, "" when none
}

// NewApplier creates an applier over the given rule book.
func NewApplier(d *engine.Dispatcher, b *Book) *Applier {
	return &Applier{dispatcher: d, book: b}
}

// Apply evaluates the code against the current cart and, when it grants,
// dispatches the delivery charge change. One coupon is active at a time;
// applying a second replaces the first.
func (a *Applier) Apply(ctx context.Context, code string) (Rule, error) {
	rule, err := a.book.Evaluate(code, a.dispatcher.State())
	if err != nil {
		return Rule{}, err
	}

	if _, err := a.dispatcher.DispatchWait(ctx, cart.SetDeliveryCharge{Amount: rule.DeliveryCharge}); err != nil {
		return Rule{}, err
	}

	a.mu.Lock()
	a.active = rule.Code
	a.mu.Unlock()

	slog.Info("coupon applied", "code", rule.Code, "delivery_charge", rule.DeliveryCharge)
	return rule, nil
}

// Remove clears the active coupon and restores the default delivery charge.
// No-op when no coupon is active.
func (a *Applier) Remove(ctx context.Context) error {
	a.mu.Lock()
	code := a.active
	a.mu.Unlock()

	if code == "" {
		return nil
	}

	if _, err := a.dispatcher.DispatchWait(ctx, cart.SetDeliveryCharge{Amount: cart.DefaultDeliveryCharge}); err != nil {
		return err
	}

	a.mu.Lock()
	a.active = ""
	a.mu.Unlock()

	slog.Info("coupon removed", "code", code)
	return nil
}

// Active returns the currently applied coupon code, or "".
func (a *Applier) Active() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.active
}
