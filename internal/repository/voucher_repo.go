package repository

import (
	"context"
	"errors"

	"retailpos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VoucherRepository interface {
	// FindActiveBySale returns (nil, nil) when the sale has no active
	// voucher yet; the returns engine then creates one.
	FindActiveBySale(ctx context.Context, saleID uuid.UUID) (*model.StoreVoucher, error)
	SaveTx(tx *gorm.DB, v *model.StoreVoucher) error
	FindByCode(ctx context.Context, code string) (*model.StoreVoucher, error)

	// CreateRedemptionTx records store credit applied as payment on a sale.
	CreateRedemptionTx(tx *gorm.DB, red *model.SaleVoucherRedemption) error
}

type voucherRepo struct{ db *gorm.DB }

func NewVoucherRepository(db *gorm.DB) VoucherRepository { return &voucherRepo{db: db} }

func (r *voucherRepo) FindActiveBySale(ctx context.Context, saleID uuid.UUID) (*model.StoreVoucher, error) {
	var v model.StoreVoucher
	err := r.db.WithContext(ctx).
		Where("sale_id = ? AND is_active = true", saleID).
		First(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *voucherRepo) SaveTx(tx *gorm.DB, v *model.StoreVoucher) error {
	return tx.Save(v).Error
}

func (r *voucherRepo) FindByCode(ctx context.Context, code string) (*model.StoreVoucher, error) {
	var v model.StoreVoucher
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&v).Error
	return &v, err
}

func (r *voucherRepo) CreateRedemptionTx(tx *gorm.DB, red *model.SaleVoucherRedemption) error {
	return tx.Create(red).Error
}
