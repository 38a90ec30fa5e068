package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type ReturnLineRequest struct {
	SaleItemID string          `json:"sale_item_id" validate:"required,uuid"`
	Quantity   decimal.Decimal `json:"quantity"     validate:"required,gt=0"`
}

type ProcessReturnRequest struct {
	SaleID string              `json:"sale_id" validate:"required,uuid"`
	Reason string              `json:"reason"  validate:"required,min=3"`
	Notes  *string             `json:"notes"`
	Lines  []ReturnLineRequest `json:"lines"   validate:"required,min=1,dive"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ReturnResponse struct {
	ReturnID    string          `json:"return_id"`
	Folio       int             `json:"folio"`
	Total       decimal.Decimal `json:"total"`
	VoucherCode string          `json:"voucher_code"`
	SaleStatus  string          `json:"sale_status"`
}

type ReturnListItem struct {
	ID        string          `json:"id"`
	Folio     int             `json:"folio"`
	Total     decimal.Decimal `json:"total"`
	Reason    string          `json:"reason"`
	Notes     *string         `json:"notes,omitempty"`
	CreatedAt string          `json:"created_at"`
}

// SaleItemWithReturns decorates one sale item with how much of it has
// already been returned and how much is still returnable.
type SaleItemWithReturns struct {
	SaleItemResponse
	ReturnedQuantity  decimal.Decimal `json:"returned_quantity"`
	AvailableQuantity decimal.Decimal `json:"available_quantity"`
}

// SaleWithReturnInfo is the read model for GET /v1/sales/:id/returns: the
// sale header, its items with per-item returned totals, and the returns
// recorded against it.
type SaleWithReturnInfo struct {
	Sale    SaleResponse          `json:"sale"`
	Items   []SaleItemWithReturns `json:"items"`
	Returns []ReturnListItem      `json:"returns"`
	Voucher *VoucherResponse      `json:"voucher,omitempty"`
}

type VoucherResponse struct {
	Code           string          `json:"code"`
	InitialBalance decimal.Decimal `json:"initial_balance"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
	IsActive       bool            `json:"is_active"`
}
