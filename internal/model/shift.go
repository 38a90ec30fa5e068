package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	ShiftOpen   = "open"
	ShiftClosed = "closed"
)

// Shift is a cash register session. Sales and cash movements always hang
// off the open shift.
type Shift struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Code          string          `gorm:"type:varchar(40);uniqueIndex;not null"`
	InitialCash   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	OpeningUserID uuid.UUID       `gorm:"type:uuid;not null"`
	Status        string          `gorm:"type:varchar(20);not null;default:'open'"`
	OpenedAt      time.Time
	// Closing fields — populated by Close inside one transaction
	ClosedAt          *time.Time
	ClosingUserID     *uuid.UUID       `gorm:"type:uuid"`
	FinalCash         *decimal.Decimal `gorm:"type:decimal(12,2)"`
	ExpectedCash      *decimal.Decimal `gorm:"type:decimal(12,2)"`
	CashDifference    *decimal.Decimal `gorm:"type:decimal(12,2)"`
	CardTerminalTotal *decimal.Decimal `gorm:"type:decimal(12,2)"`
	CardExpectedTotal *decimal.Decimal `gorm:"type:decimal(12,2)"`
	CardDifference    *decimal.Decimal `gorm:"type:decimal(12,2)"`
	CashWithdrawal    *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Notes             *string
}

func (Shift) TableName() string { return "cash_register_shifts" }

// CashMovement is an immutable drawer ledger entry. Type: "IN" | "OUT".
// Movements are never modified or deleted.
type CashMovement struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ShiftID     uuid.UUID       `gorm:"type:uuid;index;not null;column:cash_register_shift_id"`
	Type        string          `gorm:"type:varchar(10);not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Description string          `gorm:"not null"`
	UserID      uuid.UUID       `gorm:"type:uuid;not null"`
	CreatedAt   time.Time
}
