package persist

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/cartwheel/internal/cart"
)

// snapshotVersion identifies the persisted format for forward compatibility.
const snapshotVersion = 1

// Snapshot is the persisted representation of a cart:
// {items, deliveryCharge, total} plus versioning metadata.
//
// Total is stored for debuggability but is NOT trusted on load — Rehydrate
// recomputes it from the items.
type Snapshot struct {
	Version        int             `json:"version"`
	Revision       int64           `json:"revision"`
	Items          []cart.LineItem `json:"items"`
	DeliveryCharge float64         `json:"deliveryCharge"`
	Total          float64         `json:"total"`
}

// State reassembles the cart state carried by the snapshot.
func (s Snapshot) State() cart.State {
	items := s.Items
	if items == nil {
		items = []cart.LineItem{}
	}
	return cart.State{
		Items:          items,
		DeliveryCharge: s.DeliveryCharge,
		Total:          s.Total,
	}
}

// marshalSnapshot serializes a state wholesale for durable storage.
func marshalSnapshot(state cart.State, revision int64) ([]byte, error) {
	snap := Snapshot{
		Version:        snapshotVersion,
		Revision:       revision,
		Items:          state.Items,
		DeliveryCharge: state.DeliveryCharge,
		Total:          state.Total,
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	return data, nil
}

// unmarshalSnapshot parses stored bytes back into a Snapshot.
func unmarshalSnapshot(data []byte) (Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return snap, nil
}
