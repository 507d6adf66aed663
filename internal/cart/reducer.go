package cart

// Apply is the cart reducer: given the current state and an action, it
// returns the next state. Pure — no I/O, no clock, no randomness — and total
// over its action domain: invalid payloads degrade to no-ops, never errors.
//
// Every branch that touches Items recomputes Total from the full item list in
// the same transition, so observers can never see the two disagree.
func Apply(state State, action Action) State {
	switch a := action.(type) {
	case Reset:
		return Empty()

	case SetItems:
		next := state.clone()
		items := make([]LineItem, len(a.Items))
		copy(items, a.Items)
		next.Items = items
		next.Total = ComputeTotal(next.Items)
		return next

	case AddItems:
		next := state.clone()
		for _, incoming := range a.Items {
			if incoming.Quantity < 1 {
				continue
			}
			incoming.DiscountPercent = clampDiscount(incoming.DiscountPercent)
			key := incoming.VariantKey()
			merged := false
			for i := range next.Items {
				if next.Items[i].VariantKey() == key {
					next.Items[i].Quantity += incoming.Quantity
					merged = true
					break
				}
			}
			if !merged {
				next.Items = append(next.Items, incoming)
			}
		}
		next.Total = ComputeTotal(next.Items)
		return next

	case RemoveItem:
		next := state.clone()
		kept := next.Items[:0]
		for _, li := range next.Items {
			if li.VariantKey() != a.VariantKey {
				kept = append(kept, li)
			}
		}
		next.Items = kept
		next.Total = ComputeTotal(next.Items)
		return next

	case SetItemQuantity:
		// Quantity below 1 never deletes — rejected outright.
		if a.Quantity < 1 {
			return state
		}
		next := state.clone()
		for i := range next.Items {
			if next.Items[i].VariantKey() == a.VariantKey {
				next.Items[i].Quantity = a.Quantity
				break
			}
		}
		next.Total = ComputeTotal(next.Items)
		return next

	case UpdateDiscounts:
		next := state.clone()
		for i := range next.Items {
			if d, ok := a.ByProductID[next.Items[i].ProductID]; ok {
				next.Items[i].DiscountPercent = clampDiscount(d)
			}
		}
		next.Total = ComputeTotal(next.Items)
		return next

	case SetDeliveryCharge:
		if a.Amount < 0 {
			return state
		}
		next := state.clone()
		next.DeliveryCharge = a.Amount
		return next

	default:
		return state
	}
}
