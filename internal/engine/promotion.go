package engine

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PromotionDef is a hydrated combo definition: the exact product/quantity
// composition one instance requires, plus the price of one instance.
type PromotionDef struct {
	ID         uuid.UUID
	Name       string
	ComboPrice decimal.Decimal
	Required   map[uuid.UUID]decimal.Decimal
}

// ValidatedPromotion records how many complete combo instances the cart
// contains for one promotion, for later price allocation.
type ValidatedPromotion struct {
	ID            uuid.UUID
	Name          string
	ComboPrice    decimal.Decimal
	InstanceCount int64
}

// GroupTotal is combo_price × instance_count — the final price of the whole
// promotion group. No further discount applies to promotion lines.
func (v ValidatedPromotion) GroupTotal() decimal.Decimal {
	return v.ComboPrice.Mul(decimal.NewFromInt(v.InstanceCount))
}

// ValidatePromotion checks that the cart lines tagged with this promotion
// form complete, proportionally-scaled instances of the combo. Partial
// substitution is not allowed: the provided product set must match the
// required set exactly, and every quantity must be the same integral
// multiple of its requirement (within Epsilon).
func ValidatePromotion(def PromotionDef, lines []Line) (ValidatedPromotion, error) {
	provided := make(map[uuid.UUID]decimal.Decimal)
	for _, l := range lines {
		if l.PromotionID != nil && *l.PromotionID == def.ID {
			provided[l.ProductID] = provided[l.ProductID].Add(l.Quantity)
		}
	}

	if len(provided) != len(def.Required) {
		return ValidatedPromotion{}, fmt.Errorf("promotion %q requires exactly %d distinct products, cart has %d", def.Name, len(def.Required), len(provided))
	}
	for pid := range provided {
		if _, ok := def.Required[pid]; !ok {
			return ValidatedPromotion{}, fmt.Errorf("promotion %q does not include product %s", def.Name, pid)
		}
	}

	pivot := pivotProduct(def.Required)
	multiplier := provided[pivot].Div(def.Required[pivot])
	rounded := multiplier.Round(0)
	if rounded.LessThan(decimal.NewFromInt(1)) || multiplier.Sub(rounded).Abs().GreaterThan(Epsilon) {
		return ValidatedPromotion{}, fmt.Errorf("promotion %q: quantities must be exact multiples of the combo", def.Name)
	}

	for pid, req := range def.Required {
		expected := req.Mul(rounded)
		if provided[pid].Sub(expected).Abs().GreaterThan(Epsilon) {
			return ValidatedPromotion{}, fmt.Errorf("promotion %q: product %s needs quantity %s, cart has %s", def.Name, pid, expected, provided[pid])
		}
	}

	return ValidatedPromotion{
		ID:            def.ID,
		Name:          def.Name,
		ComboPrice:    def.ComboPrice,
		InstanceCount: rounded.IntPart(),
	}, nil
}

// AllocateComboPrice distributes total across a promotion group in
// proportion to each line's retail value. Every amount is rounded to cents
// and the last line absorbs the rounding remainder, so the allocations
// always sum to exactly total. A group with zero retail value (all free
// products) splits the total evenly.
func AllocateComboPrice(total decimal.Decimal, retailValues []decimal.Decimal) []decimal.Decimal {
	n := len(retailValues)
	if n == 0 {
		return nil
	}

	sum := decimal.Zero
	for _, v := range retailValues {
		sum = sum.Add(v)
	}

	out := make([]decimal.Decimal, n)
	allocated := decimal.Zero
	for i := 0; i < n-1; i++ {
		var share decimal.Decimal
		if sum.IsZero() {
			share = total.Div(decimal.NewFromInt(int64(n))).Round(2)
		} else {
			share = total.Mul(retailValues[i]).Div(sum).Round(2)
		}
		out[i] = share
		allocated = allocated.Add(share)
	}
	out[n-1] = total.Sub(allocated)
	return out
}

// CheckPromotionReturnRatio verifies a promotion's member products are being
// returned in the same proportion: for each product, cumulative returned
// quantity over original quantity must equal the pivot's ratio within
// Epsilon. The pivot is the lowest product id, same as validation.
func CheckPromotionReturnRatio(name string, original, returned map[uuid.UUID]decimal.Decimal) error {
	if len(original) == 0 {
		return nil
	}
	pivot := pivotProduct(original)
	want := returned[pivot].Div(original[pivot])
	for pid, orig := range original {
		if orig.IsZero() {
			continue
		}
		got := returned[pid].Div(orig)
		if got.Sub(want).Abs().GreaterThan(Epsilon) {
			return fmt.Errorf("unbalanced promotion return for %q: all combo products must be returned in the same proportion", name)
		}
	}
	return nil
}

// pivotProduct picks the lowest product id — any required product works as
// the multiplier pivot since every quantity is re-verified afterwards, but a
// fixed choice keeps error messages stable across runs.
func pivotProduct(m map[uuid.UUID]decimal.Decimal) uuid.UUID {
	ids := make([]uuid.UUID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids[0]
}
