package repository

import (
	"context"
	"errors"
	"time"

	"retailpos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ShiftTotalsRow is the raw aggregation behind shift closing: every figure
// is computed in SQL over the shift's transactional rows, then the derived
// cash fields are filled in by the service.
type ShiftTotalsRow struct {
	MovementsIn  decimal.Decimal
	MovementsOut decimal.Decimal
	SalesCount   int64
	TotalSales   decimal.Decimal
	CardSales    decimal.Decimal
	CreditSales  decimal.Decimal
	VoucherSales decimal.Decimal
	DebtTotal    decimal.Decimal
	DebtCash     decimal.Decimal
	DebtCard     decimal.Decimal
}

type ShiftRepository interface {
	Create(ctx context.Context, s *model.Shift) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Shift, error)
	// FindOpen returns (nil, nil) when no shift is open.
	FindOpen(ctx context.Context) (*model.Shift, error)
	// CountOpenedOn counts shifts whose code was issued for the given local
	// day, used to derive the next day-scoped sequence number.
	CountOpenedOn(ctx context.Context, day time.Time) (int64, error)
	UpdateTx(tx *gorm.DB, s *model.Shift) error

	CreateMovement(ctx context.Context, m *model.CashMovement) error
	ListMovements(ctx context.Context, shiftID uuid.UUID) ([]model.CashMovement, error)

	// Totals runs the read-side aggregation for one shift. Sales figures
	// cover completed sales only, except credit which also counts sales a
	// later return may have moved along their lifecycle.
	Totals(ctx context.Context, shiftID uuid.UUID) (*ShiftTotalsRow, error)

	DB() *gorm.DB
}

type shiftRepo struct{ db *gorm.DB }

func NewShiftRepository(db *gorm.DB) ShiftRepository { return &shiftRepo{db: db} }

func (r *shiftRepo) DB() *gorm.DB { return r.db }

func (r *shiftRepo) Create(ctx context.Context, s *model.Shift) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *shiftRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Shift, error) {
	var s model.Shift
	err := r.db.WithContext(ctx).First(&s, id).Error
	return &s, err
}

func (r *shiftRepo) FindOpen(ctx context.Context) (*model.Shift, error) {
	var s model.Shift
	err := r.db.WithContext(ctx).Where("status = 'open'").First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *shiftRepo) CountOpenedOn(ctx context.Context, day time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Shift{}).
		Where("DATE(opened_at) = ?", day.Format("2006-01-02")).
		Count(&n).Error
	return n, err
}

func (r *shiftRepo) UpdateTx(tx *gorm.DB, s *model.Shift) error {
	return tx.Save(s).Error
}

func (r *shiftRepo) CreateMovement(ctx context.Context, m *model.CashMovement) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *shiftRepo) ListMovements(ctx context.Context, shiftID uuid.UUID) ([]model.CashMovement, error) {
	var movements []model.CashMovement
	err := r.db.WithContext(ctx).
		Where("cash_register_shift_id = ?", shiftID).
		Order("created_at ASC").
		Find(&movements).Error
	return movements, err
}

func (r *shiftRepo) Totals(ctx context.Context, shiftID uuid.UUID) (*ShiftTotalsRow, error) {
	db := r.db.WithContext(ctx)
	var t ShiftTotalsRow

	err := db.Raw(`SELECT
			COALESCE(SUM(CASE WHEN type = 'IN' THEN amount ELSE 0 END), 0)  AS movements_in,
			COALESCE(SUM(CASE WHEN type = 'OUT' THEN amount ELSE 0 END), 0) AS movements_out
		FROM cash_movements WHERE cash_register_shift_id = ?`, shiftID).
		Scan(&t).Error
	if err != nil {
		return nil, err
	}

	err = db.Raw(`SELECT
			COUNT(*)                                 AS sales_count,
			COALESCE(SUM(total), 0)                  AS total_sales,
			COALESCE(SUM(card_transfer_amount), 0)   AS card_sales
		FROM sales WHERE cash_register_shift_id = ? AND status = 'completed'`, shiftID).
		Scan(&t).Error
	if err != nil {
		return nil, err
	}

	err = db.Raw(`SELECT COALESCE(SUM(total), 0) AS credit_sales
		FROM sales WHERE cash_register_shift_id = ? AND payment_method = 'credit'`, shiftID).
		Scan(&t).Error
	if err != nil {
		return nil, err
	}

	err = db.Raw(`SELECT COALESCE(SUM(sv.amount), 0) AS voucher_sales
		FROM sale_vouchers sv
		JOIN sales s ON s.id = sv.sale_id
		WHERE s.cash_register_shift_id = ? AND s.status = 'completed'`, shiftID).
		Scan(&t).Error
	if err != nil {
		return nil, err
	}

	err = db.Raw(`SELECT
			COALESCE(SUM(amount), 0)      AS debt_total,
			COALESCE(SUM(cash_amount), 0) AS debt_cash,
			COALESCE(SUM(card_amount), 0) AS debt_card
		FROM debt_payments WHERE cash_register_shift_id = ?`, shiftID).
		Scan(&t).Error
	if err != nil {
		return nil, err
	}

	return &t, nil
}
