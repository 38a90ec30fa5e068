package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Customer carries the running credit account used by credit sales.
// CurrentBalance grows on each credit sale and shrinks via debt payments.
type Customer struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name           string    `gorm:"not null"`
	Phone          *string
	CurrentBalance decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	CreditLimit    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	IsActive       bool            `gorm:"not null;default:true"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// DebtPayment records a customer paying down credit balance during a shift.
// Folded into shift totals (cash in drawer, card expected).
type DebtPayment struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CustomerID uuid.UUID       `gorm:"type:uuid;index;not null"`
	ShiftID    uuid.UUID       `gorm:"type:uuid;index;not null;column:cash_register_shift_id"`
	Amount     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CashAmount decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	CardAmount decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	CreatedAt  time.Time
}
