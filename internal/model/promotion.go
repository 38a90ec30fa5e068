package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Promotion is a fixed-combo offer: the full set of PromotionCombo rows must
// be present in exact (integral) multiples for the combo price to apply.
// Valid only while active and inside the start/end date window.
type Promotion struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name        string    `gorm:"not null"`
	Description *string
	Type        string          `gorm:"type:varchar(20);not null;default:'combo'"`
	ComboPrice  decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	StartDate   time.Time       `gorm:"not null"`
	EndDate     time.Time       `gorm:"not null"`
	IsActive    bool            `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   gorm.DeletedAt `gorm:"index"`

	Combos []PromotionCombo `gorm:"foreignKey:PromotionID"`
}

// PromotionCombo is one required (product, quantity) pair of the combo.
type PromotionCombo struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PromotionID uuid.UUID       `gorm:"type:uuid;index;not null"`
	ProductID   uuid.UUID       `gorm:"type:uuid;index;not null"`
	Quantity    decimal.Decimal `gorm:"type:decimal(12,3);not null"`
}
