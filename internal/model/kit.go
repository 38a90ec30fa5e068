package model

import (
	"time"

	"github.com/google/uuid"
)

// KitOption is a kit definition header: buying MaxSelections-worth of trigger
// products licenses that many gift units from the kit's item pool.
type KitOption struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name          string    `gorm:"not null"`
	MaxSelections int64     `gorm:"not null;default:1"`
	IsActive      bool      `gorm:"not null;default:true"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (KitOption) TableName() string { return "product_kit_options" }

// KitTrigger links a kit to a product whose purchase unlocks it.
type KitTrigger struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	KitOptionID uuid.UUID `gorm:"type:uuid;index;not null"`
	ProductID   uuid.UUID `gorm:"type:uuid;index;not null;column:main_product_id"`
}

func (KitTrigger) TableName() string { return "product_kit_main" }

// KitItem links a kit to a product eligible as a gift selection.
type KitItem struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	KitOptionID uuid.UUID `gorm:"type:uuid;index;not null"`
	ProductID   uuid.UUID `gorm:"type:uuid;index;not null;column:included_product_id"`
}

func (KitItem) TableName() string { return "product_kit_items" }
