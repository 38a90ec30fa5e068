package repository

import (
	"context"

	"retailpos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ReturnRepository interface {
	CreateTx(tx *gorm.DB, ret *model.Return) error
	ListBySale(ctx context.Context, saleID uuid.UUID) ([]model.Return, error)

	// LastFolioTx reads the highest return folio issued, locking so two
	// concurrent returns cannot collide. Zero when no return exists yet.
	LastFolioTx(tx *gorm.DB) (int, error)

	// ReturnedQuantities sums, per sale item, the quantity already returned
	// across every prior return of the sale. Items never returned are absent
	// from the map.
	ReturnedQuantities(ctx context.Context, saleID uuid.UUID) (map[uuid.UUID]decimal.Decimal, error)
}

type returnRepo struct{ db *gorm.DB }

func NewReturnRepository(db *gorm.DB) ReturnRepository { return &returnRepo{db: db} }

func (r *returnRepo) CreateTx(tx *gorm.DB, ret *model.Return) error {
	return tx.Create(ret).Error
}

func (r *returnRepo) ListBySale(ctx context.Context, saleID uuid.UUID) ([]model.Return, error) {
	var returns []model.Return
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("sale_id = ?", saleID).
		Order("return_date ASC").
		Find(&returns).Error
	return returns, err
}

func (r *returnRepo) LastFolioTx(tx *gorm.DB) (int, error) {
	var folio int
	err := tx.Raw("SELECT COALESCE(MAX(folio), 0) FROM returns").Scan(&folio).Error
	return folio, err
}

func (r *returnRepo) ReturnedQuantities(ctx context.Context, saleID uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	type row struct {
		SaleItemID uuid.UUID
		Total      decimal.Decimal
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Table("return_items").
		Select("return_items.sale_item_id AS sale_item_id, SUM(return_items.quantity) AS total").
		Joins("JOIN returns ON returns.id = return_items.return_id").
		Where("returns.sale_id = ?", saleID).
		Group("return_items.sale_item_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]decimal.Decimal, len(rows))
	for _, rw := range rows {
		out[rw.SaleItemID] = rw.Total
	}
	return out, nil
}
