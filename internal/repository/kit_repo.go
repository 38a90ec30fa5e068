package repository

import (
	"context"

	"retailpos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// KitRuleData is one fully hydrated kit rule: the header plus its trigger
// and item pools. The service maps it into the validation engine's shape.
type KitRuleData struct {
	Option   model.KitOption
	Triggers []model.KitTrigger
	Items    []model.KitItem
}

type KitRepository interface {
	// RelevantRules loads every active kit triggered by one of the cart's
	// products or explicitly declared by a gift line, hydrated in three
	// IN-list queries. Rules come back ordered by (created_at, id) so rule
	// resolution is deterministic.
	RelevantRules(ctx context.Context, productIDs, declaredIDs []uuid.UUID) ([]KitRuleData, error)

	// RulesByID loads kits by id regardless of the active flag. The returns
	// path uses it so deactivating a kit after a sale does not loosen the
	// balance check on that sale's returns.
	RulesByID(ctx context.Context, ids []uuid.UUID) ([]KitRuleData, error)
}

type kitRepo struct{ db *gorm.DB }

func NewKitRepository(db *gorm.DB) KitRepository { return &kitRepo{db: db} }

func (r *kitRepo) RelevantRules(ctx context.Context, productIDs, declaredIDs []uuid.UUID) ([]KitRuleData, error) {
	db := r.db.WithContext(ctx)

	var options []model.KitOption
	q := db.Model(&model.KitOption{}).Where("is_active = true")
	switch {
	case len(productIDs) > 0 && len(declaredIDs) > 0:
		q = q.Where("id IN (?) OR id IN ?",
			db.Model(&model.KitTrigger{}).Select("kit_option_id").Where("main_product_id IN ?", productIDs),
			declaredIDs)
	case len(productIDs) > 0:
		q = q.Where("id IN (?)",
			db.Model(&model.KitTrigger{}).Select("kit_option_id").Where("main_product_id IN ?", productIDs))
	case len(declaredIDs) > 0:
		q = q.Where("id IN ?", declaredIDs)
	default:
		return nil, nil
	}
	if err := q.Order("created_at ASC, id ASC").Find(&options).Error; err != nil {
		return nil, err
	}
	return r.hydrate(db, options)
}

func (r *kitRepo) RulesByID(ctx context.Context, ids []uuid.UUID) ([]KitRuleData, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	db := r.db.WithContext(ctx)

	var options []model.KitOption
	if err := db.Where("id IN ?", ids).Order("created_at ASC, id ASC").Find(&options).Error; err != nil {
		return nil, err
	}
	return r.hydrate(db, options)
}

// hydrate attaches trigger and item pools to each option header.
func (r *kitRepo) hydrate(db *gorm.DB, options []model.KitOption) ([]KitRuleData, error) {
	if len(options) == 0 {
		return nil, nil
	}

	optionIDs := make([]uuid.UUID, len(options))
	for i, o := range options {
		optionIDs[i] = o.ID
	}

	var triggers []model.KitTrigger
	if err := db.Where("kit_option_id IN ?", optionIDs).Find(&triggers).Error; err != nil {
		return nil, err
	}
	var items []model.KitItem
	if err := db.Where("kit_option_id IN ?", optionIDs).Find(&items).Error; err != nil {
		return nil, err
	}

	byOption := make(map[uuid.UUID]*KitRuleData, len(options))
	out := make([]KitRuleData, len(options))
	for i, o := range options {
		out[i] = KitRuleData{Option: o}
		byOption[o.ID] = &out[i]
	}
	for _, t := range triggers {
		if d, ok := byOption[t.KitOptionID]; ok {
			d.Triggers = append(d.Triggers, t)
		}
	}
	for _, it := range items {
		if d, ok := byOption[it.KitOptionID]; ok {
			d.Items = append(d.Items, it)
		}
	}
	return out, nil
}
