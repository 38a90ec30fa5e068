package engine

import "github.com/shopspring/decimal"

// PricedLine is the fully resolved pricing of one cart line: product
// snapshot, unit price, and the gross/discount/net split that gets written
// into the sale item row.
type PricedLine struct {
	Line        Line
	ProductName string
	ProductCode string
	UnitPrice   decimal.Decimal
	Gross       decimal.Decimal
	Discount    decimal.Decimal
	Net         decimal.Decimal
}

// Totals is the sale-header aggregation. Subtotal and Discount cover the
// non-promotion lines; Total is net across every line, promotion groups
// included at their allocated combo price.
type Totals struct {
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
}

// PriceLine splits one non-promotion line into gross, discount, and net
// under the sale's global discount percentage.
func PriceLine(unitPrice, quantity, discountPct decimal.Decimal) (gross, discount, net decimal.Decimal) {
	gross = unitPrice.Mul(quantity)
	discount = gross.Mul(discountPct).Div(decimal.NewFromInt(100))
	net = gross.Sub(discount)
	return gross, discount, net
}

// PricePromoLine prices one member of a validated promotion group: the
// allocated amount is both gross and net — the combo price is already final,
// so the global discount does not apply.
func PricePromoLine(allocated, quantity decimal.Decimal) (unitPrice, gross, net decimal.Decimal) {
	unitPrice = allocated.Div(quantity).Round(4)
	return unitPrice, allocated, allocated
}

// CalculateTotals folds priced lines into the sale-header figures. Pure —
// running it twice over the same lines yields identical totals.
func CalculateTotals(priced []PricedLine) Totals {
	var t Totals
	for _, p := range priced {
		if p.Line.PriceType != PricePromo {
			t.Subtotal = t.Subtotal.Add(p.Gross)
			t.Discount = t.Discount.Add(p.Discount)
		}
		t.Total = t.Total.Add(p.Net)
	}
	return t
}
