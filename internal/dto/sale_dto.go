package dto

import "github.com/shopspring/decimal"

// ─── Filter / List ──────────────────────────────────────────────────────────

// SaleFilter is bound from query string of GET /v1/sales.
type SaleFilter struct {
	Date   string `form:"date"`                 // YYYY-MM-DD; empty = today
	Status string `form:"status,default=all"`   // completed | partial_return | fully_returned | cancelled | all
	Folio  string `form:"folio"`                // exact match
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// SaleListItem is returned inside SaleListResponse for GET /v1/sales.
type SaleListItem struct {
	ID            string          `json:"id"`
	Folio         string          `json:"folio"`
	Total         decimal.Decimal `json:"total"`
	PaymentMethod string          `json:"payment_method"`
	Status        string          `json:"status"`
	CustomerID    *string         `json:"customer_id,omitempty"`
	CreatedAt     string          `json:"created_at"`
}

type SaleListResponse struct {
	Data  []SaleListItem `json:"data"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

// SaleLineRequest is one cart line. ID and ParentLineID are client-side
// correlation handles, only meaningful within the request: a gift line
// points at the trigger line that justifies it via ParentLineID.
type SaleLineRequest struct {
	ID           string          `json:"id"             validate:"required"`
	ParentLineID *string         `json:"parent_line_id" validate:"omitempty"`
	ProductID    string          `json:"product_id"     validate:"required,uuid"`
	Quantity     decimal.Decimal `json:"quantity"       validate:"required,gt=0"`
	PriceType    string          `json:"price_type"     validate:"required,oneof=retail wholesale kit_item promo"`
	PromotionID  *string         `json:"promotion_id"   validate:"omitempty,uuid"`
	KitOptionID  *string         `json:"kit_option_id"  validate:"omitempty,uuid"`
}

type CommitSaleRequest struct {
	ShiftID            string            `json:"shift_id"            validate:"required,uuid"`
	Items              []SaleLineRequest `json:"items"               validate:"required,min=1,dive"`
	DiscountPercentage decimal.Decimal   `json:"discount_percentage" validate:"min=0,max=100"`
	PaymentMethod      string            `json:"payment_method"      validate:"required,oneof=cash card_transfer credit mixed"`
	CashAmount         decimal.Decimal   `json:"cash_amount"         validate:"min=0"`
	CardAmount         decimal.Decimal   `json:"card_amount"         validate:"min=0"`
	CustomerID         *string           `json:"customer_id"         validate:"omitempty,uuid"`
	// VoucherCode applies store credit as payment; the redeemed amount
	// counts toward covering the total alongside cash and card.
	VoucherCode *string `json:"voucher_code" validate:"omitempty,min=3"`
	Notes       *string `json:"notes"`
	ShouldPrint bool    `json:"should_print"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type SaleItemResponse struct {
	ID             string          `json:"id"`
	ProductID      string          `json:"product_id"`
	ProductName    string          `json:"product_name"`
	ProductCode    string          `json:"product_code"`
	Quantity       decimal.Decimal `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	PriceType      string          `json:"price_type"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	Subtotal       decimal.Decimal `json:"subtotal"`
}

type CommitSaleResponse struct {
	SaleID string          `json:"sale_id"`
	Folio  string          `json:"folio"`
	Total  decimal.Decimal `json:"total"`
	Change decimal.Decimal `json:"change"`
}

type SaleResponse struct {
	ID                 string             `json:"id"`
	Folio              string             `json:"folio"`
	Subtotal           decimal.Decimal    `json:"subtotal"`
	DiscountPercentage decimal.Decimal    `json:"discount_percentage"`
	DiscountAmount     decimal.Decimal    `json:"discount_amount"`
	Total              decimal.Decimal    `json:"total"`
	PaymentMethod      string             `json:"payment_method"`
	CashAmount         decimal.Decimal    `json:"cash_amount"`
	CardAmount         decimal.Decimal    `json:"card_amount"`
	Status             string             `json:"status"`
	CustomerID         *string            `json:"customer_id,omitempty"`
	Items              []SaleItemResponse `json:"items"`
	CreatedAt          string             `json:"created_at"`
}
