package harness

import (
	"fmt"
	"math"

	"github.com/roach88/cartwheel/internal/cart"
)

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall scenario success.
	Pass bool `json:"pass"`

	// Final is the cart state after the last step.
	Final cart.State `json:"final"`

	// Errors contains invariant violations and failed expectations.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// addError records a failure and marks the result as failed.
func (r *Result) addError(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
	r.Pass = false
}

// Run executes a scenario from the empty cart, checking the cart invariants
// after every step and the expectation (if any) at the end.
func Run(scenario *Scenario) (*Result, error) {
	result := &Result{Pass: true}
	state := cart.Empty()

	for i, step := range scenario.Steps {
		action, err := step.action()
		if err != nil {
			return nil, fmt.Errorf("scenario %s: step %d: %w", scenario.Name, i, err)
		}

		state = cart.Apply(state, action)

		for _, violation := range checkInvariants(state) {
			result.addError("step %d (%s): %s", i, action.Kind(), violation)
		}
	}

	result.Final = state

	if scenario.Expect != nil {
		checkExpectation(result, scenario.Expect, state)
	}

	return result, nil
}

// checkInvariants verifies the cart invariants that must hold after every
// transition: variant-key uniqueness, positive quantities, discount bounds,
// non-negative delivery charge, and the derived-total formula.
func checkInvariants(state cart.State) []string {
	var violations []string

	seen := make(map[string]bool, len(state.Items))
	for _, li := range state.Items {
		key := li.VariantKey()
		if seen[key] {
			violations = append(violations, fmt.Sprintf("duplicate variant key %q", key))
		}
		seen[key] = true

		if li.Quantity < 1 {
			violations = append(violations, fmt.Sprintf("item %q has quantity %d", key, li.Quantity))
		}
		if li.DiscountPercent < 0 || li.DiscountPercent > 100 {
			violations = append(violations, fmt.Sprintf("item %q has discount %g", key, li.DiscountPercent))
		}
	}

	if state.DeliveryCharge < 0 {
		violations = append(violations, fmt.Sprintf("negative delivery charge %g", state.DeliveryCharge))
	}

	if want := cart.ComputeTotal(state.Items); !closeEnough(state.Total, want) {
		violations = append(violations, fmt.Sprintf("total %g drifted from derived %g", state.Total, want))
	}

	return violations
}

// checkExpectation validates the final state against the expectation.
func checkExpectation(result *Result, expect *Expectation, state cart.State) {
	if expect.Items != nil && len(state.Items) != *expect.Items {
		result.addError("expected %d items, got %d", *expect.Items, len(state.Items))
	}
	if expect.Units != nil && state.ItemCount() != *expect.Units {
		result.addError("expected %d units, got %d", *expect.Units, state.ItemCount())
	}
	if expect.Total != nil && !closeEnough(state.Total, *expect.Total) {
		result.addError("expected total %g, got %g", *expect.Total, state.Total)
	}
	if expect.DeliveryCharge != nil && !closeEnough(state.DeliveryCharge, *expect.DeliveryCharge) {
		result.addError("expected delivery charge %g, got %g", *expect.DeliveryCharge, state.DeliveryCharge)
	}
}

// closeEnough compares currency floats with a tolerance well below a cent.
func closeEnough(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}
