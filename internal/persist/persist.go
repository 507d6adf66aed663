package persist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/cartwheel/internal/cart"
)

// ErrNotFound is returned by Storage.Load when the key has no snapshot.
var ErrNotFound = errors.New("persist: key not found")

// Storage is a namespaced durable key/value surface. Implementations:
// SQLiteStorage, RedisStorage, MemoryStorage.
type Storage interface {
	// Load returns the snapshot bytes stored under key, or ErrNotFound.
	Load(ctx context.Context, key string) ([]byte, error)
	// Save replaces the snapshot stored under key. Last writer wins.
	Save(ctx context.Context, key string, data []byte) error
	// Delete removes the snapshot stored under key. Absent keys are no-ops.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}

// Adapter binds a Storage backend to a single cart key and implements the
// engine.Persister contract.
type Adapter struct {
	storage Storage
	key     string
}

// NewAdapter creates an adapter persisting under the given key.
func NewAdapter(storage Storage, key string) *Adapter {
	return &Adapter{storage: storage, key: key}
}

// Rehydrate reads the persisted cart. Fail-soft: on missing key, corrupt or
// unparseable data, or any read failure it returns the canonical empty cart
// and revision 0 — never an error, never a blocked startup.
//
// The stored total is treated as reconstructible: sanitize recomputes it
// from the item list, along with re-clamping discounts, dropping
// non-positive quantities, and collapsing duplicate variant keys.
func (a *Adapter) Rehydrate(ctx context.Context) (cart.State, int64) {
	data, err := a.storage.Load(ctx, a.key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			slog.Warn("rehydrate failed, starting empty", "key", a.key, "error", err)
		}
		return cart.Empty(), 0
	}

	snap, err := unmarshalSnapshot(data)
	if err != nil {
		slog.Warn("rehydrate: corrupt snapshot, starting empty", "key", a.key, "error", err)
		return cart.Empty(), 0
	}

	state := sanitize(snap.State())
	slog.Info("cart rehydrated",
		"key", a.key,
		"items", len(state.Items),
		"revision", snap.Revision,
	)
	return state, snap.Revision
}

// Persist mirrors the state durably under the adapter's key.
// Implements engine.Persister. Errors are returned for the caller to log;
// they must not roll back the in-memory state.
func (a *Adapter) Persist(ctx context.Context, state cart.State, revision int64) error {
	data, err := marshalSnapshot(state, revision)
	if err != nil {
		return fmt.Errorf("persist %s: %w", a.key, err)
	}
	if err := a.storage.Save(ctx, a.key, data); err != nil {
		return fmt.Errorf("persist %s: %w", a.key, err)
	}
	return nil
}

// Clear removes the persisted snapshot, e.g. on logout.
func (a *Adapter) Clear(ctx context.Context) error {
	if err := a.storage.Delete(ctx, a.key); err != nil {
		return fmt.Errorf("clear %s: %w", a.key, err)
	}
	return nil
}

// sanitize restores the cart invariants on data that may predate the current
// format: duplicate variant keys collapse into the first row (quantities
// accumulate), non-positive quantities drop the row, discounts re-clamp, and
// the total is recomputed from scratch.
func sanitize(state cart.State) cart.State {
	clean := cart.Empty()
	if state.DeliveryCharge >= 0 {
		clean.DeliveryCharge = state.DeliveryCharge
	}
	if len(state.Items) > 0 {
		clean = cart.Apply(clean, cart.AddItems{Items: state.Items})
	}
	return clean
}
