package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/roach88/cartwheel/internal/cart"
	"github.com/roach88/cartwheel/internal/engine"
)

// ErrAlreadyMerged is returned when Merge is invoked again after a
// successful merge for this login transition.
var ErrAlreadyMerged = errors.New("session: cart already merged")

// CartCreator is the Cart Service surface the merger needs.
// Implemented by Client; tests substitute fakes.
type CartCreator interface {
	CreateCart(ctx context.Context, items []cart.LineItem) ([]cart.LineItem, error)
}

// Merger performs the one-shot session merge at the login boundary.
type Merger struct {
	dispatcher *engine.Dispatcher
	creator    CartCreator
	merged     atomic.Bool
}

// NewMerger creates a merger bound to the dispatcher and cart service.
func NewMerger(d *engine.Dispatcher, c CartCreator) *Merger {
	return &Merger{dispatcher: d, creator: c}
}

// Merge submits the local cart to the server and replaces the local item
// list with the server's authoritative snapshot.
//
// On server failure the error is returned, the local cart is untouched, and
// the caller may retry — no data is lost. A second call after a successful
// merge fails with ErrAlreadyMerged; failed attempts do not arm the guard.
func (m *Merger) Merge(ctx context.Context) (cart.State, error) {
	if m.merged.Load() {
		return cart.State{}, ErrAlreadyMerged
	}

	local := m.dispatcher.State()

	serverItems, err := m.creator.CreateCart(ctx, local.Items)
	if err != nil {
		// Local cart stays usable; the caller surfaces and retries.
		return cart.State{}, fmt.Errorf("session merge: %w", err)
	}

	// The server cart is canonical from here on. SET_ITEMS replaces
	// wholesale, so even a duplicate dispatch could not double items.
	next, err := m.dispatcher.DispatchWait(ctx, cart.SetItems{Items: serverItems})
	if err != nil {
		return cart.State{}, fmt.Errorf("session merge: %w", err)
	}

	m.merged.Store(true)
	slog.Info("session merged",
		"local_items", len(local.Items),
		"server_items", len(serverItems),
	)
	return next, nil
}

// Merged reports whether a successful merge has happened.
func (m *Merger) Merged() bool {
	return m.merged.Load()
}
