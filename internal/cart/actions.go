package cart

// Action is a state transition request processed by Apply.
//
// Concrete action types are plain values: they carry payload only, never
// behavior. The engine serializes them through its single-writer loop, so two
// actions are never applied concurrently to the same State.
type Action interface {
	// Kind returns a stable name for logging and tracing.
	Kind() string
}

// Reset replaces the cart with the canonical empty state. Idempotent.
type Reset struct{}

// SetItems replaces the item list wholesale, e.g. after a full server sync
// (session merge). The caller is responsible for variant-key uniqueness of
// the incoming list; Apply recomputes the total.
type SetItems struct {
	Items []LineItem
}

// AddItems adds a batch of product snapshots. Items whose variant key already
// exists (including duplicates within the batch) accumulate quantity onto the
// existing row; new keys append in input order. The whole batch is one atomic
// transition.
type AddItems struct {
	Items []LineItem
}

// RemoveItem deletes the item with the given variant key. No-op when absent —
// this is what makes a user removal racing an in-flight discount fetch safe.
type RemoveItem struct {
	VariantKey string
}

// SetItemQuantity sets the quantity of an existing item. Quantities below 1
// are rejected as no-ops: quantity changes never implicitly delete, deletion
// is RemoveItem's job. Unknown keys are no-ops.
type SetItemQuantity struct {
	VariantKey string
	Quantity   int
}

// UpdateDiscounts patches DiscountPercent for every item whose product ID has
// an entry in the map; items absent from the map are untouched. Values are
// clamped to [0, 100]. Dispatched by the discount reconciler, never by direct
// user intent.
type UpdateDiscounts struct {
	ByProductID map[string]float64
}

// SetDeliveryCharge sets the flat delivery charge. Negative amounts are
// rejected as no-ops. Dispatched by coupon rule application.
type SetDeliveryCharge struct {
	Amount float64
}

func (Reset) Kind() string             { return "RESET" }
func (SetItems) Kind() string          { return "SET_ITEMS" }
func (AddItems) Kind() string          { return "ADD_ITEMS" }
func (RemoveItem) Kind() string        { return "REMOVE_ITEM" }
func (SetItemQuantity) Kind() string   { return "SET_ITEM_QUANTITY" }
func (UpdateDiscounts) Kind() string   { return "UPDATE_DISCOUNTS" }
func (SetDeliveryCharge) Kind() string { return "SET_DELIVERY_CHARGE" }
