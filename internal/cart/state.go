package cart

import (
	"fmt"
	"math"
)

// DefaultDeliveryCharge is the flat delivery charge applied to a fresh cart.
// Coupon rules may lower it (see internal/coupon); it never goes negative.
const DefaultDeliveryCharge = 250

// variantSentinel stands in for size or color when the product has no such
// selection, so that VariantKey stays stable and collision-free.
const variantSentinel = "-"

// LineItem is one purchasable configuration in the cart.
//
// UnitPrice is the pre-discount price captured at add time and is immutable
// afterwards. DiscountPercent is mutable only through UpdateDiscounts (the
// reconciler's action). Title, ImageRef, Size and Color are denormalized
// display metadata, also captured at add time.
type LineItem struct {
	ProductID       string  `json:"productId"`
	Title           string  `json:"title"`
	UnitPrice       float64 `json:"unitPrice"`
	DiscountPercent float64 `json:"discountPercent"`
	Quantity        int     `json:"quantity"`
	ImageRef        string  `json:"imageRef,omitempty"`
	Size            string  `json:"size,omitempty"`
	Color           string  `json:"color,omitempty"`
}

// VariantKey is the cart's uniqueness key: product identity combined with the
// size/color selection. Two additions with the same key merge quantities
// rather than creating a duplicate row.
func (li LineItem) VariantKey() string {
	size, color := li.Size, li.Color
	if size == "" {
		size = variantSentinel
	}
	if color == "" {
		color = variantSentinel
	}
	return fmt.Sprintf("%s-%s-%s", li.ProductID, size, color)
}

// lineTotal is the item's contribution to the cart total, in floating units.
// Rounding happens only at display time (see Round2) to avoid compounding
// rounding error across items.
func (li LineItem) lineTotal() float64 {
	base := li.UnitPrice * float64(li.Quantity)
	return base - base*li.DiscountPercent/100
}

// State is the canonical in-memory representation of the cart.
//
// Total is derived, not authoritative: it always equals the sum of the items'
// discounted line totals and is recomputed atomically with every transition.
// DeliveryCharge is independent of the items and is NOT folded into Total;
// checkout adds it on top (matching the persisted representation).
type State struct {
	Items          []LineItem `json:"items"`
	DeliveryCharge float64    `json:"deliveryCharge"`
	Total          float64    `json:"total"`
}

// Empty returns the canonical empty cart: no items, default delivery charge,
// zero total.
func Empty() State {
	return State{
		Items:          []LineItem{},
		DeliveryCharge: DefaultDeliveryCharge,
		Total:          0,
	}
}

// ComputeTotal returns the derived sum over items:
// quantity x unitPrice x (1 - discountPercent/100), unrounded.
func ComputeTotal(items []LineItem) float64 {
	var sum float64
	for _, li := range items {
		sum += li.lineTotal()
	}
	return sum
}

// ItemCount returns the number of units in the cart (sum of quantities).
func (s State) ItemCount() int {
	var n int
	for _, li := range s.Items {
		n += li.Quantity
	}
	return n
}

// Find returns the item with the given variant key, if present.
func (s State) Find(variantKey string) (LineItem, bool) {
	for _, li := range s.Items {
		if li.VariantKey() == variantKey {
			return li, true
		}
	}
	return LineItem{}, false
}

// ProductIDs returns the distinct product IDs in item order.
// The reconciler fans out one pricing fetch per entry.
func (s State) ProductIDs() []string {
	seen := make(map[string]bool, len(s.Items))
	ids := make([]string, 0, len(s.Items))
	for _, li := range s.Items {
		if !seen[li.ProductID] {
			seen[li.ProductID] = true
			ids = append(ids, li.ProductID)
		}
	}
	return ids
}

// clone returns a copy of s with its own Items backing array, so the reducer
// can mutate the copy without aliasing the previous state value.
func (s State) clone() State {
	items := make([]LineItem, len(s.Items))
	copy(items, s.Items)
	s.Items = items
	return s
}

// Round2 rounds a currency amount to 2 decimals for display. State keeps
// unrounded floating values; only presentation boundaries round.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// clampDiscount forces a discount percentage into [0, 100].
func clampDiscount(d float64) float64 {
	switch {
	case d < 0:
		return 0
	case d > 100:
		return 100
	default:
		return d
	}
}
