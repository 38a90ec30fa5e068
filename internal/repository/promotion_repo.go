package repository

import (
	"context"
	"time"

	"retailpos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PromotionRepository interface {
	// ActiveCombo loads the promotion with its combo rows, but only when it
	// is active and `at` falls inside its date window. An expired or
	// disabled promotion surfaces as gorm.ErrRecordNotFound.
	ActiveCombo(ctx context.Context, id uuid.UUID, at time.Time) (*model.Promotion, error)

	// FindByID loads the promotion regardless of window or active flag —
	// returns reference promotions that may have expired since the sale.
	FindByID(ctx context.Context, id uuid.UUID) (*model.Promotion, error)
}

type promotionRepo struct{ db *gorm.DB }

func NewPromotionRepository(db *gorm.DB) PromotionRepository { return &promotionRepo{db: db} }

func (r *promotionRepo) ActiveCombo(ctx context.Context, id uuid.UUID, at time.Time) (*model.Promotion, error) {
	var p model.Promotion
	err := r.db.WithContext(ctx).
		Preload("Combos").
		Where("id = ? AND is_active = true AND start_date <= ? AND end_date >= ?", id, at, at).
		First(&p).Error
	return &p, err
}

func (r *promotionRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Promotion, error) {
	var p model.Promotion
	err := r.db.WithContext(ctx).Preload("Combos").First(&p, id).Error
	return &p, err
}
