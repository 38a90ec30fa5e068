package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReasonCancellation is the only return reason with special semantics: it is
// time-boxed (one hour from the sale) and, when it empties the sale, moves the
// status to cancelled instead of fully_returned.
const ReasonCancellation = "cancellation"

// Return is one reconciliation event against a sale. A sale accumulates any
// number of returns over its lifetime; each one got validated against the
// quantities still available at that moment.
type Return struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Folio     int             `gorm:"not null;index"`
	SaleID    uuid.UUID       `gorm:"type:uuid;index;not null"`
	Total     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Reason    string          `gorm:"type:varchar(40);not null"`
	Notes     *string
	UserID    uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt time.Time `gorm:"column:return_date"`

	Items []ReturnItem `gorm:"foreignKey:ReturnID"`
}

// ReturnItem references the originating SaleItem by id (lookup only — the
// sale item is never mutated). Quantity can never exceed what the sale item
// still has un-returned.
type ReturnItem struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ReturnID   uuid.UUID       `gorm:"type:uuid;index;not null"`
	SaleItemID uuid.UUID       `gorm:"type:uuid;index;not null"`
	ProductID  uuid.UUID       `gorm:"type:uuid;not null"`
	Quantity   decimal.Decimal `gorm:"type:decimal(12,3);not null"`
	// UnitPrice is the net unit price (sale item net total / original quantity),
	// so any original line discount carries into the refund.
	UnitPrice decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Subtotal  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt time.Time
}

// StoreVoucher is the store-credit balance issued in lieu of a cash refund.
// At most one active voucher per sale; repeated partial returns of the same
// sale accumulate into the same voucher.
type StoreVoucher struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Code   string    `gorm:"type:varchar(30);uniqueIndex;not null"`
	SaleID uuid.UUID `gorm:"type:uuid;index;not null"`
	// InitialBalance is cumulative: it grows with every accepted return so the
	// voucher's history stays auditable even after partial redemptions.
	InitialBalance decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CurrentBalance decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	IsActive       bool            `gorm:"not null;default:true"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (StoreVoucher) TableName() string { return "store_vouchers" }

// SaleVoucherRedemption records store credit applied as payment on a sale.
// Shift totals subtract these amounts from the cash bucket.
type SaleVoucherRedemption struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SaleID    uuid.UUID       `gorm:"type:uuid;index;not null"`
	VoucherID uuid.UUID       `gorm:"type:uuid;index;not null"`
	Amount    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt time.Time
}

func (SaleVoucherRedemption) TableName() string { return "sale_vouchers" }
