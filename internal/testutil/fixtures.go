// Package testutil provides shared fixtures for cartwheel tests.
package testutil

import "github.com/roach88/cartwheel/internal/cart"

// Item builds a line item fixture with sensible defaults.
func Item(productID string, unitPrice float64, quantity int) cart.LineItem {
	return cart.LineItem{
		ProductID: productID,
		Title:     "Item " + productID,
		UnitPrice: unitPrice,
		Quantity:  quantity,
	}
}

// Variant builds a line item fixture with a size/color selection.
func Variant(productID, size, color string, unitPrice float64, quantity int) cart.LineItem {
	li := Item(productID, unitPrice, quantity)
	li.Size = size
	li.Color = color
	return li
}
