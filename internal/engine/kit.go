package engine

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ApplyKitRules validates every gift line in the cart against the relevant
// kit rules and returns the adjusted cart: gift lines without a declared kit
// get their KitOptionID auto-resolved to the first kit (in rule order) with
// available credit. Rules must arrive in a stable order — the repository
// returns them sorted by creation — so the tie-break is deterministic.
//
// Credit model: every line of a trigger product contributes
// quantity × max_selections to its kit's balance, and every gift line
// consumes its quantity. A gift of a trigger product accrues and consumes
// like any other pair, so self-referencing kits net out. A cart is valid
// only when every kit balance lands within Epsilon of zero.
func ApplyKitRules(lines []Line, rules []KitRule) ([]Line, error) {
	adjusted := make([]Line, len(lines))
	copy(adjusted, lines)

	if len(rules) == 0 {
		for _, l := range lines {
			if l.PriceType == PriceKitItem {
				return nil, fmt.Errorf("product %s is marked as a kit gift but activates no kit", l.ProductID)
			}
		}
		return adjusted, nil
	}

	credits := make(map[uuid.UUID]decimal.Decimal, len(rules))
	for _, l := range lines {
		for _, r := range rules {
			if r.Triggers[l.ProductID] {
				credits[r.ID] = credits[r.ID].Add(l.Quantity.Mul(decimal.NewFromInt(r.MaxSelections)))
			}
		}
	}

	// Index for parent-line attribution: a gift whose parent is in the cart
	// can only bind to a kit that parent actually triggers.
	byID := make(map[string]Line)
	for _, l := range lines {
		if l.ID != "" {
			byID[l.ID] = l
		}
	}
	ruleByID := make(map[uuid.UUID]*KitRule, len(rules))
	for i := range rules {
		ruleByID[rules[i].ID] = &rules[i]
	}

	for i := range adjusted {
		l := &adjusted[i]
		if l.PriceType != PriceKitItem {
			continue
		}

		if l.KitOptionID != nil {
			r, ok := ruleByID[*l.KitOptionID]
			if !ok || !r.Items[l.ProductID] {
				return nil, fmt.Errorf("product %s does not officially belong to kit %s", l.ProductID, *l.KitOptionID)
			}
			if err := consumeCredit(credits, r, *l); err != nil {
				return nil, err
			}
			continue
		}

		resolved := false
		for idx := range rules {
			r := &rules[idx]
			if !r.Items[l.ProductID] {
				continue
			}
			if l.ParentID != "" {
				if parent, ok := byID[l.ParentID]; ok && !r.Triggers[parent.ProductID] {
					continue
				}
			}
			if credits[r.ID].GreaterThanOrEqual(l.Quantity.Sub(Epsilon)) {
				credits[r.ID] = credits[r.ID].Sub(l.Quantity)
				kitID := r.ID
				l.KitOptionID = &kitID
				resolved = true
				break
			}
		}
		if !resolved {
			return nil, fmt.Errorf("insufficient kit credits for gift product %s (qty %s)", l.ProductID, l.Quantity)
		}
	}

	// Completeness: leftover credit means the customer is owed gift
	// selections that are not in the cart.
	for _, r := range rules {
		if rem := credits[r.ID]; rem.GreaterThan(Epsilon) {
			return nil, fmt.Errorf("kit %q is incomplete: missing %s gift selections", r.Name, rem)
		}
	}

	return adjusted, nil
}

func consumeCredit(credits map[uuid.UUID]decimal.Decimal, r *KitRule, l Line) error {
	if credits[r.ID].LessThan(l.Quantity.Sub(Epsilon)) {
		return fmt.Errorf("insufficient kit credits for gift product %s (qty %s)", l.ProductID, l.Quantity)
	}
	credits[r.ID] = credits[r.ID].Sub(l.Quantity)
	return nil
}

// CheckKitBalance verifies that trigger credit equals gift consumption
// (within Epsilon) over the given quantities. The returns engine calls this
// with post-return availability, so a second partial return against an
// already-partially-returned kit is evaluated against what actually remains.
func CheckKitBalance(rule KitRule, lines []Line) error {
	credit := decimal.Zero
	consumed := decimal.Zero
	for _, l := range lines {
		if rule.Triggers[l.ProductID] {
			credit = credit.Add(l.Quantity.Mul(decimal.NewFromInt(rule.MaxSelections)))
		}
		// A gift of a trigger product counts on both sides, mirroring the
		// commit-time credit model.
		if l.PriceType == PriceKitItem && rule.Items[l.ProductID] {
			consumed = consumed.Add(l.Quantity)
		}
	}
	if credit.Sub(consumed).Abs().GreaterThan(Epsilon) {
		return fmt.Errorf("unbalanced kit return for %q: triggers license %s gift units, %s requested to remain", rule.Name, credit, consumed)
	}
	return nil
}
