// Package engine holds the pure validation and pricing core of the POS:
// kit adjudication, promotion combo validation, price allocation, totals,
// and folio sequencing. Nothing in here touches the database — repositories
// hydrate the rule structures and services feed them through.
package engine

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Price types a cart line can carry.
const (
	PriceRetail    = "retail"
	PriceWholesale = "wholesale"
	PriceKitItem   = "kit_item"
	PricePromo     = "promo"
)

// Epsilon is the tolerance for kit-credit and promotion-multiplier checks.
// Payment sufficiency uses the coarser PaymentEpsilon (cents).
var (
	Epsilon        = decimal.NewFromFloat(0.001)
	PaymentEpsilon = decimal.NewFromFloat(0.01)
)

// Line is the engine's view of one cart line (or one availability row when
// the returns engine re-validates a kit). IDs are client-assigned strings so
// nested gift attribution can reference lines that have no DB identity yet.
type Line struct {
	ID          string
	ParentID    string
	ProductID   uuid.UUID
	Quantity    decimal.Decimal
	PriceType   string
	PromotionID *uuid.UUID
	KitOptionID *uuid.UUID
}

// KitRule is a hydrated kit definition. Triggers unlock the kit; Items are
// the products eligible as gifts. One trigger unit licenses MaxSelections
// gift units.
type KitRule struct {
	ID            uuid.UUID
	Name          string
	MaxSelections int64
	Triggers      map[uuid.UUID]bool
	Items         map[uuid.UUID]bool
}
