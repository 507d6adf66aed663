package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func item(productID string, unitPrice float64, quantity int) LineItem {
	return LineItem{
		ProductID: productID,
		Title:     "Item " + productID,
		UnitPrice: unitPrice,
		Quantity:  quantity,
	}
}

func variant(productID, size, color string, unitPrice float64, quantity int) LineItem {
	li := item(productID, unitPrice, quantity)
	li.Size = size
	li.Color = color
	return li
}

// requireInvariants checks the properties that must hold after every action:
// variant-key uniqueness, positive quantities, bounded discounts, and the
// derived-total formula.
func requireInvariants(t *testing.T, s State) {
	t.Helper()

	seen := make(map[string]bool)
	for _, li := range s.Items {
		key := li.VariantKey()
		require.False(t, seen[key], "duplicate variant key %q", key)
		seen[key] = true
		require.GreaterOrEqual(t, li.Quantity, 1, "item %q quantity", key)
		require.GreaterOrEqual(t, li.DiscountPercent, 0.0, "item %q discount", key)
		require.LessOrEqual(t, li.DiscountPercent, 100.0, "item %q discount", key)
	}
	require.InDelta(t, ComputeTotal(s.Items), s.Total, 1e-9, "total drifted from derived sum")
}

func TestApply_Reset(t *testing.T) {
	s := Apply(Empty(), AddItems{Items: []LineItem{item("A", 100, 2)}})
	require.NotEmpty(t, s.Items)

	s = Apply(s, Reset{})
	assert.Empty(t, s.Items)
	assert.Equal(t, float64(DefaultDeliveryCharge), s.DeliveryCharge)
	assert.Zero(t, s.Total)

	// Idempotent: a second reset yields the same empty state.
	again := Apply(s, Reset{})
	assert.Equal(t, s, again)
}

func TestApply_AddItems_NewRows(t *testing.T) {
	s := Apply(Empty(), AddItems{Items: []LineItem{
		item("A", 1000, 1),
		item("B", 500, 2),
	}})

	require.Len(t, s.Items, 2)
	assert.Equal(t, "A", s.Items[0].ProductID)
	assert.Equal(t, "B", s.Items[1].ProductID)
	assert.InDelta(t, 2000, s.Total, 1e-9)
	requireInvariants(t, s)
}

func TestApply_AddItems_MergesSameVariant(t *testing.T) {
	// Add (A, M, red, qty 1) then the same variant qty 2
	// -> one row, qty 3, total 3000.
	s := Apply(Empty(), AddItems{Items: []LineItem{variant("A", "M", "red", 1000, 1)}})
	s = Apply(s, AddItems{Items: []LineItem{variant("A", "M", "red", 1000, 2)}})

	require.Len(t, s.Items, 1)
	assert.Equal(t, 3, s.Items[0].Quantity)
	assert.InDelta(t, 3000, s.Total, 1e-9)
	requireInvariants(t, s)
}

func TestApply_AddItems_DifferentVariantsStaySeparate(t *testing.T) {
	s := Apply(Empty(), AddItems{Items: []LineItem{
		variant("A", "M", "red", 1000, 1),
		variant("A", "L", "red", 1000, 1),
		variant("A", "M", "blue", 1000, 1),
	}})

	require.Len(t, s.Items, 3)
	requireInvariants(t, s)
}

func TestApply_AddItems_InBatchDuplicatesAccumulate(t *testing.T) {
	// Later duplicates within one batch accumulate onto the same row.
	s := Apply(Empty(), AddItems{Items: []LineItem{
		variant("A", "M", "red", 1000, 1),
		variant("A", "M", "red", 1000, 2),
	}})

	require.Len(t, s.Items, 1)
	assert.Equal(t, 3, s.Items[0].Quantity)
	requireInvariants(t, s)
}

func TestApply_AddItems_SkipsNonPositiveQuantity(t *testing.T) {
	s := Apply(Empty(), AddItems{Items: []LineItem{
		item("A", 1000, 0),
		item("B", 500, 1),
	}})

	require.Len(t, s.Items, 1)
	assert.Equal(t, "B", s.Items[0].ProductID)
	requireInvariants(t, s)
}

func TestApply_AddItems_ClampsDiscount(t *testing.T) {
	over := item("A", 100, 1)
	over.DiscountPercent = 150
	under := item("B", 100, 1)
	under.DiscountPercent = -5

	s := Apply(Empty(), AddItems{Items: []LineItem{over, under}})

	assert.Equal(t, 100.0, s.Items[0].DiscountPercent)
	assert.Equal(t, 0.0, s.Items[1].DiscountPercent)
	requireInvariants(t, s)
}

func TestApply_AddItems_DoesNotMutatePrevious(t *testing.T) {
	before := Apply(Empty(), AddItems{Items: []LineItem{item("A", 100, 1)}})
	after := Apply(before, AddItems{Items: []LineItem{item("A", 100, 5)}})

	assert.Equal(t, 1, before.Items[0].Quantity, "previous state mutated")
	assert.Equal(t, 6, after.Items[0].Quantity)
}

func TestApply_SetItems_ReplacesWholesale(t *testing.T) {
	s := Apply(Empty(), AddItems{Items: []LineItem{item("A", 1000, 2)}})
	s = Apply(s, SetItems{Items: []LineItem{item("B", 200, 3)}})

	require.Len(t, s.Items, 1)
	assert.Equal(t, "B", s.Items[0].ProductID)
	assert.InDelta(t, 600, s.Total, 1e-9)
	requireInvariants(t, s)
}

func TestApply_SetItems_Empty(t *testing.T) {
	s := Apply(Empty(), AddItems{Items: []LineItem{item("A", 1000, 2)}})
	s = Apply(s, SetItems{Items: nil})

	assert.Empty(t, s.Items)
	assert.Zero(t, s.Total)
}

func TestApply_RemoveItem(t *testing.T) {
	a := variant("A", "M", "red", 1000, 2)
	s := Apply(Empty(), AddItems{Items: []LineItem{a, item("B", 500, 1)}})

	s = Apply(s, RemoveItem{VariantKey: a.VariantKey()})

	require.Len(t, s.Items, 1)
	assert.Equal(t, "B", s.Items[0].ProductID)
	assert.InDelta(t, 500, s.Total, 1e-9)
	requireInvariants(t, s)
}

func TestApply_RemoveItem_UnknownKeyIsNoop(t *testing.T) {
	s := Apply(Empty(), AddItems{Items: []LineItem{item("A", 1000, 1)}})
	before := s

	s = Apply(s, RemoveItem{VariantKey: "no-such-key"})
	assert.Equal(t, before, s)
}

func TestApply_SetItemQuantity(t *testing.T) {
	a := item("A", 1000, 1)
	s := Apply(Empty(), AddItems{Items: []LineItem{a}})

	s = Apply(s, SetItemQuantity{VariantKey: a.VariantKey(), Quantity: 4})

	assert.Equal(t, 4, s.Items[0].Quantity)
	assert.InDelta(t, 4000, s.Total, 1e-9)
	requireInvariants(t, s)
}

func TestApply_SetItemQuantity_RejectsBelowOne(t *testing.T) {
	// Quantity changes never implicitly delete - deletion is RemoveItem's
	// job. Zero and negative quantities leave the state unchanged.
	a := item("A", 1000, 2)
	s := Apply(Empty(), AddItems{Items: []LineItem{a}})
	before := s

	for _, q := range []int{0, -1, -100} {
		next := Apply(s, SetItemQuantity{VariantKey: a.VariantKey(), Quantity: q})
		assert.Equal(t, before, next, "quantity %d should be a no-op", q)
	}

	// Explicit removal for the same key deletes and recomputes.
	removed := Apply(s, RemoveItem{VariantKey: a.VariantKey()})
	assert.Empty(t, removed.Items)
	assert.Zero(t, removed.Total)
}

func TestApply_SetItemQuantity_UnknownKeyIsNoop(t *testing.T) {
	s := Apply(Empty(), AddItems{Items: []LineItem{item("A", 1000, 1)}})
	before := s

	s = Apply(s, SetItemQuantity{VariantKey: "no-such-key", Quantity: 5})
	assert.Equal(t, before, s)
}

func TestApply_UpdateDiscounts(t *testing.T) {
	// A at 1000 with qty 2, discount 20% -> total 1600.
	s := Apply(Empty(), AddItems{Items: []LineItem{item("A", 1000, 2)}})

	s = Apply(s, UpdateDiscounts{ByProductID: map[string]float64{"A": 20}})

	assert.Equal(t, 20.0, s.Items[0].DiscountPercent)
	assert.InDelta(t, 1600, s.Total, 1e-9)
	requireInvariants(t, s)
}

func TestApply_UpdateDiscounts_PartialMapLeavesOthersUntouched(t *testing.T) {
	s := Apply(Empty(), AddItems{Items: []LineItem{
		item("A", 1000, 1),
		item("B", 500, 2),
	}})

	s = Apply(s, UpdateDiscounts{ByProductID: map[string]float64{"A": 10}})

	assert.Equal(t, 10.0, s.Items[0].DiscountPercent)
	assert.Equal(t, 0.0, s.Items[1].DiscountPercent, "B must be untouched")
	assert.InDelta(t, 900+1000, s.Total, 1e-9)
	requireInvariants(t, s)
}

func TestApply_UpdateDiscounts_UnknownProductIsNoop(t *testing.T) {
	// A stale reconciliation result for a removed product patches nothing.
	s := Apply(Empty(), AddItems{Items: []LineItem{item("A", 1000, 1)}})
	before := s

	s = Apply(s, UpdateDiscounts{ByProductID: map[string]float64{"GONE": 50}})
	assert.Equal(t, before, s)
}

func TestApply_UpdateDiscounts_AppliesToAllVariantsOfProduct(t *testing.T) {
	// Discounts key by product, not variant: every row of the product
	// gets the new percentage.
	s := Apply(Empty(), AddItems{Items: []LineItem{
		variant("A", "M", "red", 1000, 1),
		variant("A", "L", "blue", 1000, 1),
	}})

	s = Apply(s, UpdateDiscounts{ByProductID: map[string]float64{"A": 25}})

	assert.Equal(t, 25.0, s.Items[0].DiscountPercent)
	assert.Equal(t, 25.0, s.Items[1].DiscountPercent)
	assert.InDelta(t, 1500, s.Total, 1e-9)
}

func TestApply_UpdateDiscounts_ClampsOutOfRange(t *testing.T) {
	s := Apply(Empty(), AddItems{Items: []LineItem{
		item("A", 100, 1),
		item("B", 100, 1),
	}})

	s = Apply(s, UpdateDiscounts{ByProductID: map[string]float64{"A": 120, "B": -10}})

	assert.Equal(t, 100.0, s.Items[0].DiscountPercent)
	assert.Equal(t, 0.0, s.Items[1].DiscountPercent)
	requireInvariants(t, s)
}

func TestApply_SetDeliveryCharge(t *testing.T) {
	s := Apply(Empty(), SetDeliveryCharge{Amount: 0})
	assert.Equal(t, 0.0, s.DeliveryCharge)

	s = Apply(s, SetDeliveryCharge{Amount: 250})
	assert.Equal(t, 250.0, s.DeliveryCharge)
}

func TestApply_SetDeliveryCharge_RejectsNegative(t *testing.T) {
	before := Empty()
	s := Apply(before, SetDeliveryCharge{Amount: -1})
	assert.Equal(t, before, s)
}

func TestApply_TotalHoldsAcrossActionSequence(t *testing.T) {
	// The derived-total property checked after every action of a longer
	// interleaved sequence, not just at the end.
	a := variant("A", "M", "red", 999.99, 1)
	b := item("B", 123.45, 3)

	actions := []Action{
		AddItems{Items: []LineItem{a}},
		AddItems{Items: []LineItem{b, a}},
		UpdateDiscounts{ByProductID: map[string]float64{"B": 33.3}},
		SetItemQuantity{VariantKey: a.VariantKey(), Quantity: 7},
		RemoveItem{VariantKey: b.VariantKey()},
		UpdateDiscounts{ByProductID: map[string]float64{"A": 5}},
		SetDeliveryCharge{Amount: 0},
	}

	s := Empty()
	for _, action := range actions {
		s = Apply(s, action)
		requireInvariants(t, s)
	}

	require.Len(t, s.Items, 1)
	assert.Equal(t, 7, s.Items[0].Quantity)
}

func TestApply_UnknownActionIsNoop(t *testing.T) {
	type bogus struct{ Action }
	s := Apply(Empty(), bogus{})
	assert.Equal(t, Empty(), s)
}
