package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Sale lifecycle statuses. "completed" is the only status Commit writes;
// the returns engine moves a sale forward and never backward:
//
//	completed → partial_return → fully_returned
//	completed → fully_returned
//	completed → cancelled   (same-session cancellation inside the time window)
const (
	SaleCompleted     = "completed"
	SalePartialReturn = "partial_return"
	SaleFullyReturned = "fully_returned"
	SaleCancelled     = "cancelled"
)

// Payment methods accepted by the commit transaction.
const (
	PaymentCash   = "cash"
	PaymentCard   = "card_transfer"
	PaymentCredit = "credit"
	PaymentMixed  = "mixed"
)

// Sale is the durable sale header. Created once by the commit transaction;
// only its status and updated_at ever change afterwards (returns engine).
// Never deleted.
type Sale struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Folio              string          `gorm:"type:varchar(20);uniqueIndex;not null"`
	Subtotal           decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	DiscountPercentage decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	DiscountAmount     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Total              decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PaymentMethod      string          `gorm:"type:varchar(20);not null"`
	CashAmount         decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	CardAmount         decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0;column:card_transfer_amount"`
	CustomerID         *uuid.UUID      `gorm:"type:uuid;index"`
	UserID             uuid.UUID       `gorm:"type:uuid;not null"`
	ShiftID            uuid.UUID       `gorm:"type:uuid;index;not null;column:cash_register_shift_id"`
	Status             string          `gorm:"type:varchar(20);not null;default:'completed'"`
	Notes              *string
	CreatedAt          time.Time
	UpdatedAt          time.Time

	Items []SaleItem `gorm:"foreignKey:SaleID"`
}

// SaleItem snapshots product name/code so the ticket survives catalog edits.
// Immutable after creation — returns reference it, they never mutate it.
type SaleItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SaleID    uuid.UUID `gorm:"type:uuid;index;not null"`
	ProductID uuid.UUID `gorm:"type:uuid;index;not null"`
	// Snapshot fields — intentionally decoupled from the live Product row
	ProductName    string          `gorm:"not null"`
	ProductCode    string          `gorm:"not null"`
	Quantity       decimal.Decimal `gorm:"type:decimal(12,3);not null"`
	UnitPrice      decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	PriceType      string          `gorm:"type:varchar(20);not null"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	// Subtotal is the net line total (gross − line discount, or the promo allocation)
	Subtotal         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	KitOptionID      *uuid.UUID      `gorm:"type:uuid;index"`
	PromotionID      *uuid.UUID      `gorm:"type:uuid;index"`
	ParentSaleItemID *uuid.UUID      `gorm:"type:uuid"`
	CreatedAt        time.Time
}
