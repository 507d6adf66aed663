// Package coupon evaluates pluggable coupon rules against the cart.
//
// The original storefront toggled free delivery on a hardcoded string
// comparison. Here a coupon is a rule: a code, a guard expression evaluated
// with expr-lang against the cart, and the delivery charge it grants. Rules
// are data — they load from configuration, so promotions change without a
// rebuild. Exact stacking semantics were left open upstream; the decision
// here is one active coupon at a time, re-apply replaces.
package coupon

import (
	"errors"
	"fmt"

	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"

	"github.com/roach88/cartwheel/internal/cart"
)

// ErrNoSuchCoupon is returned when a code matches no rule or its guard
// expression rejects the current cart.
var ErrNoSuchCoupon = errors.New("coupon: no matching rule")

// Rule is one coupon: the code the user types, an optional expr guard, and
// the delivery charge granted when the guard passes.
//
// The guard evaluates against {code, subtotal, itemCount, deliveryCharge}.
// An empty guard always passes.
type Rule struct {
	Code           string  `yaml:"code" json:"code"`
	When           string  `yaml:"when,omitempty" json:"when,omitempty"`
	DeliveryCharge float64 `yaml:"deliveryCharge" json:"deliveryCharge"`
}

// Book holds compiled coupon rules, matched by code in declaration order.
type Book struct {
	rules    []Rule
	programs map[string]*exprvm.Program // keyed by code; nil entry = no guard
}

// NewBook compiles the given rules. Guard expressions must evaluate to bool.
func NewBook(rules ...Rule) (*Book, error) {
	b := &Book{
		rules:    make([]Rule, len(rules)),
		programs: make(map[string]*exprvm.Program, len(rules)),
	}
	copy(b.rules, rules)

	for _, r := range b.rules {
		if r.When == "" {
			b.programs[r.Code] = nil
			continue
		}
		program, err := exprlang.Compile(r.When,
			exprlang.Env(map[string]any{}),
			exprlang.AllowUndefinedVariables(),
			exprlang.AsBool(),
		)
		if err != nil {
			return nil, fmt.Errorf("coupon %s: compile %q: %w", r.Code, r.When, err)
		}
		b.programs[r.Code] = program
	}

	return b, nil
}

// DefaultBook returns the built-in rules: FREESHIPPING grants free delivery
// on any non-empty cart.
func DefaultBook() *Book {
	b, err := NewBook(Rule{
		Code:           "FREESHIPPING",
		When:           "itemCount > 0",
		DeliveryCharge: 0,
	})
	if err != nil {
		// Built-in rules are constants; a compile failure is a bug.
		panic(fmt.Sprintf("coupon: default book: %v", err))
	}
	return b
}

// Rules returns the book's rules in declaration order.
func (b *Book) Rules() []Rule {
	out := make([]Rule, len(b.rules))
	copy(out, b.rules)
	return out
}

// Evaluate matches a code against the book for the given cart state.
// Returns the granting rule, or ErrNoSuchCoupon when the code is unknown or
// its guard rejects the cart. Guard evaluation errors are reported as-is.
func (b *Book) Evaluate(code string, state cart.State) (Rule, error) {
	for _, r := range b.rules {
		if r.Code != code {
			continue
		}

		program := b.programs[r.Code]
		if program == nil {
			return r, nil
		}

		env := map[string]any{
			"code":           code,
			"subtotal":       state.Total,
			"itemCount":      state.ItemCount(),
			"deliveryCharge": state.DeliveryCharge,
		}
		result, err := exprlang.Run(program, env)
		if err != nil {
			return Rule{}, fmt.Errorf("coupon %s: evaluate: %w", r.Code, err)
		}
		if ok, _ := result.(bool); ok {
			return r, nil
		}
		return Rule{}, ErrNoSuchCoupon
	}
	return Rule{}, ErrNoSuchCoupon
}
