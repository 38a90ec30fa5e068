package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is the catalog entry referenced by cart lines. Prices are read at
// commit time and snapshotted into SaleItem so historical tickets stay stable
// when the catalog changes.
type Product struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Code           string    `gorm:"uniqueIndex;not null"`
	Name           string    `gorm:"index;not null"`
	Description    *string
	RetailPrice    decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	WholesalePrice decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	IsActive       bool            `gorm:"not null;default:true"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// StoreInventory is the per-store stock row. Quantity is decimal because the
// engine allows fractional quantities (bulk goods sold by weight).
//
// A missing row means stock was never initialized for that product — the sale
// commit treats that as an integrity error, not as zero stock.
type StoreInventory struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_inventory_product_store"`
	StoreID   string          `gorm:"type:varchar(60);not null;uniqueIndex:idx_inventory_product_store"`
	Stock     decimal.Decimal `gorm:"type:decimal(12,3);not null;default:0"`
	UpdatedAt time.Time
}

func (StoreInventory) TableName() string { return "store_inventory" }
