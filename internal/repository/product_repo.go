package repository

import (
	"context"
	"errors"
	"fmt"

	"retailpos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ErrInventoryRowMissing signals that a product has no store_inventory row
// for the store. Commit treats this as an integrity error rather than as
// zero stock, so the caller can name the offending product.
var ErrInventoryRowMissing = errors.New("inventory row missing")

// ProductRepository defines the data access contract for the catalog and
// per-store stock. Services depend on this interface, not on the concrete
// GORM implementation, enabling clean unit testing via stubs.
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error)
	FindByCode(ctx context.Context, code string) (*model.Product, error)

	// AdjustStockTx applies delta (negative on sale, positive on return) to
	// the store_inventory row inside the caller's transaction. A product
	// without an inventory row yields ErrInventoryRowMissing.
	AdjustStockTx(tx *gorm.DB, productID uuid.UUID, storeID string, delta decimal.Decimal) error

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type productRepo struct{ db *gorm.DB }

func NewProductRepository(db *gorm.DB) ProductRepository { return &productRepo{db: db} }

func (r *productRepo) DB() *gorm.DB { return r.db }

func (r *productRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).First(&p, id).Error
	return &p, err
}

func (r *productRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error
	return products, err
}

func (r *productRepo) FindByCode(ctx context.Context, code string) (*model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).Where("code = ? AND is_active = true", code).First(&p).Error
	return &p, err
}

func (r *productRepo) AdjustStockTx(tx *gorm.DB, productID uuid.UUID, storeID string, delta decimal.Decimal) error {
	res := tx.Model(&model.StoreInventory{}).
		Where("product_id = ? AND store_id = ?", productID, storeID).
		Update("stock", gorm.Expr("stock + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: product %s in store %s", ErrInventoryRowMissing, productID, storeID)
	}
	return nil
}
