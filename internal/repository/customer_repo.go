package repository

import (
	"context"

	"retailpos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CustomerRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Customer, error)

	// AdjustBalanceTx moves current_balance by delta (positive on credit
	// sale, negative on debt payment or credit-sale return) inside the
	// caller's transaction.
	AdjustBalanceTx(tx *gorm.DB, id uuid.UUID, delta decimal.Decimal) error

	CreateDebtPaymentTx(tx *gorm.DB, p *model.DebtPayment) error
}

type customerRepo struct{ db *gorm.DB }

func NewCustomerRepository(db *gorm.DB) CustomerRepository { return &customerRepo{db: db} }

func (r *customerRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	var c model.Customer
	err := r.db.WithContext(ctx).First(&c, id).Error
	return &c, err
}

func (r *customerRepo) AdjustBalanceTx(tx *gorm.DB, id uuid.UUID, delta decimal.Decimal) error {
	return tx.Model(&model.Customer{}).Where("id = ?", id).
		Update("current_balance", gorm.Expr("current_balance + ?", delta)).Error
}

func (r *customerRepo) CreateDebtPaymentTx(tx *gorm.DB, p *model.DebtPayment) error {
	return tx.Create(p).Error
}
