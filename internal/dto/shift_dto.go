package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type OpenShiftRequest struct {
	InitialCash decimal.Decimal `json:"initial_cash" validate:"min=0"`
}

type CloseShiftRequest struct {
	FinalCash         decimal.Decimal `json:"final_cash"          validate:"min=0"`
	CardTerminalTotal decimal.Decimal `json:"card_terminal_total" validate:"min=0"`
	Notes             *string         `json:"notes"`
}

// DebtPaymentRequest pays down a customer's credit balance during the open
// shift. Cash and card portions can be combined; their sum is the payment.
type DebtPaymentRequest struct {
	CustomerID string          `json:"customer_id" validate:"required,uuid"`
	CashAmount decimal.Decimal `json:"cash_amount" validate:"min=0"`
	CardAmount decimal.Decimal `json:"card_amount" validate:"min=0"`
}

type CashMovementRequest struct {
	Type        string          `json:"type"        validate:"required,oneof=IN OUT"`
	Amount      decimal.Decimal `json:"amount"      validate:"required,gt=0"`
	Description string          `json:"description" validate:"required,min=3"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

// ShiftTotals is the closing arithmetic for one shift. CashSales is derived
// by subtraction so that mixed payments land in the right buckets.
type ShiftTotals struct {
	SalesCount      int64           `json:"sales_count"`
	TotalSales      decimal.Decimal `json:"total_sales"`
	CashSales       decimal.Decimal `json:"cash_sales"`
	CardSales       decimal.Decimal `json:"card_sales"`
	CreditSales     decimal.Decimal `json:"credit_sales"`
	VoucherSales    decimal.Decimal `json:"voucher_sales"`
	DebtCashPaid    decimal.Decimal `json:"debt_cash_paid"`
	DebtCardPaid    decimal.Decimal `json:"debt_card_paid"`
	ManualIn        decimal.Decimal `json:"manual_in"`
	ManualOut       decimal.Decimal `json:"manual_out"`
	TheoreticalCash decimal.Decimal `json:"theoretical_cash"`
}

type ShiftResponse struct {
	ID                string           `json:"id"`
	Code              string           `json:"code"`
	Status            string           `json:"status"`
	InitialCash       decimal.Decimal  `json:"initial_cash"`
	FinalCash         *decimal.Decimal `json:"final_cash,omitempty"`
	ExpectedCash      *decimal.Decimal `json:"expected_cash,omitempty"`
	CashDifference    *decimal.Decimal `json:"cash_difference,omitempty"`
	CardTerminalTotal *decimal.Decimal `json:"card_terminal_total,omitempty"`
	CardExpectedTotal *decimal.Decimal `json:"card_expected_total,omitempty"`
	CardDifference    *decimal.Decimal `json:"card_difference,omitempty"`
	CashWithdrawal    *decimal.Decimal `json:"cash_withdrawal,omitempty"`
	UserID            string           `json:"user_id"`
	OpenedAt          string           `json:"opened_at"`
	ClosedAt          *string          `json:"closed_at,omitempty"`
	Totals            *ShiftTotals     `json:"totals,omitempty"`
}

type DebtPaymentResponse struct {
	ID         string          `json:"id"`
	CustomerID string          `json:"customer_id"`
	Amount     decimal.Decimal `json:"amount"`
	CashAmount decimal.Decimal `json:"cash_amount"`
	CardAmount decimal.Decimal `json:"card_amount"`
	NewBalance decimal.Decimal `json:"new_balance"`
	CreatedAt  string          `json:"created_at"`
}

type CashMovementResponse struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	CreatedAt   string          `json:"created_at"`
}
