// Package harness runs YAML-defined cart scenarios through the reducer.
//
// Scenarios are conformance tests: a script of actions applied in order,
// with the cart invariants checked after every step and assertions on the
// final state. Golden comparison captures the full final state for
// regression detection.
package harness

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/cartwheel/internal/cart"
)

// Scenario defines a conformance test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario (also names the golden file).
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description,omitempty"`

	// Steps is the action script, applied in order to an empty cart.
	Steps []Step `yaml:"steps"`

	// Expect validates the final state. Nil skips final assertions
	// (invariants are still checked after every step).
	Expect *Expectation `yaml:"expect,omitempty"`
}

// Step is one action in the script. Exactly one action field is set.
type Step struct {
	Reset          bool                `yaml:"reset,omitempty"`
	Add            []Item              `yaml:"add,omitempty"`
	Set            []Item              `yaml:"set,omitempty"`
	Remove         string              `yaml:"remove,omitempty"`
	Quantity       *QuantityStep       `yaml:"quantity,omitempty"`
	Discounts      map[string]float64  `yaml:"discounts,omitempty"`
	DeliveryCharge *float64            `yaml:"deliveryCharge,omitempty"`
}

// Item is a line-item literal in scenario YAML.
type Item struct {
	ProductID       string  `yaml:"productId"`
	Title           string  `yaml:"title,omitempty"`
	UnitPrice       float64 `yaml:"unitPrice"`
	DiscountPercent float64 `yaml:"discountPercent,omitempty"`
	Quantity        int     `yaml:"quantity"`
	Size            string  `yaml:"size,omitempty"`
	Color           string  `yaml:"color,omitempty"`
}

// QuantityStep sets the quantity of an existing item.
type QuantityStep struct {
	VariantKey string `yaml:"variantKey"`
	Quantity   int    `yaml:"quantity"`
}

// Expectation validates the final cart state. Zero-valued fields with the
// corresponding Check flag unset are skipped.
type Expectation struct {
	Items          *int     `yaml:"items,omitempty"`          // item row count
	Units          *int     `yaml:"units,omitempty"`          // sum of quantities
	Total          *float64 `yaml:"total,omitempty"`          // derived total
	DeliveryCharge *float64 `yaml:"deliveryCharge,omitempty"` // current charge
}

// LoadScenario parses a scenario YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load scenario: %w", err)
	}

	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if s.Name == "" {
		return nil, fmt.Errorf("scenario %s: name is required", path)
	}
	return &s, nil
}

// lineItem converts a scenario item literal to the cart type.
func (it Item) lineItem() cart.LineItem {
	return cart.LineItem{
		ProductID:       it.ProductID,
		Title:           it.Title,
		UnitPrice:       it.UnitPrice,
		DiscountPercent: it.DiscountPercent,
		Quantity:        it.Quantity,
		Size:            it.Size,
		Color:           it.Color,
	}
}

// action converts a step to the cart action it encodes.
func (st Step) action() (cart.Action, error) {
	switch {
	case st.Reset:
		return cart.Reset{}, nil
	case len(st.Add) > 0:
		items := make([]cart.LineItem, len(st.Add))
		for i, it := range st.Add {
			items[i] = it.lineItem()
		}
		return cart.AddItems{Items: items}, nil
	case len(st.Set) > 0:
		items := make([]cart.LineItem, len(st.Set))
		for i, it := range st.Set {
			items[i] = it.lineItem()
		}
		return cart.SetItems{Items: items}, nil
	case st.Remove != "":
		return cart.RemoveItem{VariantKey: st.Remove}, nil
	case st.Quantity != nil:
		return cart.SetItemQuantity{
			VariantKey: st.Quantity.VariantKey,
			Quantity:   st.Quantity.Quantity,
		}, nil
	case st.Discounts != nil:
		return cart.UpdateDiscounts{ByProductID: st.Discounts}, nil
	case st.DeliveryCharge != nil:
		return cart.SetDeliveryCharge{Amount: *st.DeliveryCharge}, nil
	default:
		return nil, fmt.Errorf("step encodes no action")
	}
}
