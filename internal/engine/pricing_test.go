package engine

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestPriceLine(t *testing.T) {
	gross, discount, net := PriceLine(decimal.NewFromInt(100), qty(3), decimal.NewFromInt(10))
	assert.Equal(t, "300", gross.String())
	assert.Equal(t, "30", discount.String())
	assert.Equal(t, "270", net.String())

	// Zero discount leaves gross untouched.
	gross, discount, net = PriceLine(decimal.NewFromFloat(2.5), qty(0.5), decimal.Zero)
	assert.Equal(t, "1.25", gross.String())
	assert.True(t, discount.IsZero())
	assert.Equal(t, "1.25", net.String())
}

func TestPricePromoLine(t *testing.T) {
	unitPrice, gross, net := PricePromoLine(decimal.NewFromInt(100), qty(3))
	assert.Equal(t, "33.3333", unitPrice.String())
	// The allocated amount stays exact regardless of unit-price rounding.
	assert.Equal(t, "100", gross.String())
	assert.Equal(t, "100", net.String())
}

func TestCalculateTotals_PromoLinesExcludedFromSubtotal(t *testing.T) {
	priced := []PricedLine{
		{
			Line:     Line{PriceType: PriceRetail},
			Gross:    decimal.NewFromInt(200),
			Discount: decimal.NewFromInt(20),
			Net:      decimal.NewFromInt(180),
		},
		{
			Line:  Line{PriceType: PricePromo},
			Gross: decimal.NewFromInt(50),
			Net:   decimal.NewFromInt(50),
		},
	}

	totals := CalculateTotals(priced)
	assert.Equal(t, "200", totals.Subtotal.String())
	assert.Equal(t, "20", totals.Discount.String())
	assert.Equal(t, "230", totals.Total.String())
}

func TestCalculateTotals_Idempotent(t *testing.T) {
	priced := []PricedLine{
		{Line: Line{PriceType: PriceRetail}, Gross: decimal.NewFromFloat(99.99), Discount: decimal.NewFromFloat(9.99), Net: decimal.NewFromInt(90)},
		{Line: Line{PriceType: PriceKitItem}, Gross: decimal.Zero, Net: decimal.Zero},
	}

	first := CalculateTotals(priced)
	second := CalculateTotals(priced)
	assert.True(t, first.Subtotal.Equal(second.Subtotal))
	assert.True(t, first.Discount.Equal(second.Discount))
	assert.True(t, first.Total.Equal(second.Total))
}
