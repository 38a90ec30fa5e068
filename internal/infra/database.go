package infra

import (
	"fmt"

	"retailpos/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx and runs
// AutoMigrate to create or update all tables.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, fmt.Errorf("AutoMigrate: %w", err)
	}
	return db, nil
}

// RunMigrations applies the schema. Also used by the integration test
// harness against a throwaway database.
func RunMigrations(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Product{},
		&model.StoreInventory{},
		&model.Customer{},
		&model.DebtPayment{},
		&model.KitOption{},
		&model.KitTrigger{},
		&model.KitItem{},
		&model.Promotion{},
		&model.PromotionCombo{},
		&model.Shift{},
		&model.CashMovement{},
		&model.Sale{},
		&model.SaleItem{},
		&model.Return{},
		&model.ReturnItem{},
		&model.StoreVoucher{},
		&model.SaleVoucherRedemption{},
	)
}
