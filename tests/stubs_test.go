package tests

import (
	"context"
	"errors"
	"fmt"
	"time"

	"retailpos/internal/dto"
	"retailpos/internal/model"
	"retailpos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── Stubs ─────────────────────────────────────────────────────────────────────

// stubProductRepo is an in-memory ProductRepository. Stock is tracked per
// product (single store), and a product seeded without an inventory row
// reproduces the missing-row failure mode of the real repository.
type stubProductRepo struct {
	products map[uuid.UUID]*model.Product
	stock    map[uuid.UUID]decimal.Decimal
	hasRow   map[uuid.UUID]bool
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{
		products: make(map[uuid.UUID]*model.Product),
		stock:    make(map[uuid.UUID]decimal.Decimal),
		hasRow:   make(map[uuid.UUID]bool),
	}
}

func (r *stubProductRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (r *stubProductRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]model.Product, error) {
	out := make([]model.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *stubProductRepo) FindByCode(_ context.Context, code string) (*model.Product, error) {
	for _, p := range r.products {
		if p.Code == code {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubProductRepo) AdjustStockTx(_ *gorm.DB, productID uuid.UUID, storeID string, delta decimal.Decimal) error {
	if !r.hasRow[productID] {
		return fmt.Errorf("%w: product %s in store %s", repository.ErrInventoryRowMissing, productID, storeID)
	}
	r.stock[productID] = r.stock[productID].Add(delta)
	return nil
}

func (r *stubProductRepo) DB() *gorm.DB { return nil }

var _ repository.ProductRepository = (*stubProductRepo)(nil)

// seedProduct registers an active product with an inventory row.
func seedProduct(r *stubProductRepo, name, code string, retail float64, stock float64) *model.Product {
	p := &model.Product{
		ID:             uuid.New(),
		Code:           code,
		Name:           name,
		RetailPrice:    decimal.NewFromFloat(retail),
		WholesalePrice: decimal.NewFromFloat(retail * 0.8),
		IsActive:       true,
	}
	r.products[p.ID] = p
	r.stock[p.ID] = decimal.NewFromFloat(stock)
	r.hasRow[p.ID] = true
	return p
}

// stubCustomerRepo keeps customer balances in memory.
type stubCustomerRepo struct {
	customers map[uuid.UUID]*model.Customer
	payments  []model.DebtPayment
}

func newStubCustomerRepo() *stubCustomerRepo {
	return &stubCustomerRepo{customers: make(map[uuid.UUID]*model.Customer)}
}

func (r *stubCustomerRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Customer, error) {
	c, ok := r.customers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (r *stubCustomerRepo) AdjustBalanceTx(_ *gorm.DB, id uuid.UUID, delta decimal.Decimal) error {
	c, ok := r.customers[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	c.CurrentBalance = c.CurrentBalance.Add(delta)
	return nil
}

func (r *stubCustomerRepo) CreateDebtPaymentTx(_ *gorm.DB, p *model.DebtPayment) error {
	r.payments = append(r.payments, *p)
	return nil
}

var _ repository.CustomerRepository = (*stubCustomerRepo)(nil)

// stubSaleRepo stores sales and issues folios in insertion order.
type stubSaleRepo struct {
	sales     map[uuid.UUID]*model.Sale
	lastFolio string
}

func newStubSaleRepo() *stubSaleRepo {
	return &stubSaleRepo{sales: make(map[uuid.UUID]*model.Sale)}
}

func (r *stubSaleRepo) CreateTx(_ *gorm.DB, s *model.Sale) error {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}
	r.sales[s.ID] = s
	r.lastFolio = s.Folio
	return nil
}

func (r *stubSaleRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Sale, error) {
	s, ok := r.sales[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

func (r *stubSaleRepo) UpdateStatusTx(_ *gorm.DB, id uuid.UUID, status string) error {
	s, ok := r.sales[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	s.Status = status
	return nil
}

func (r *stubSaleRepo) List(_ context.Context, filter dto.SaleFilter) ([]model.Sale, int64, error) {
	out := make([]model.Sale, 0, len(r.sales))
	for _, s := range r.sales {
		if filter.Status != "" && filter.Status != "all" && s.Status != filter.Status {
			continue
		}
		out = append(out, *s)
	}
	return out, int64(len(out)), nil
}

func (r *stubSaleRepo) LastFolioTx(_ *gorm.DB) (string, error) { return r.lastFolio, nil }

func (r *stubSaleRepo) DB() *gorm.DB { return nil }

var _ repository.SaleRepository = (*stubSaleRepo)(nil)

// stubReturnRepo accumulates returns and derives ReturnedQuantities from them.
type stubReturnRepo struct {
	returns []model.Return
}

func (r *stubReturnRepo) CreateTx(_ *gorm.DB, ret *model.Return) error {
	if ret.CreatedAt.IsZero() {
		ret.CreatedAt = time.Now()
	}
	r.returns = append(r.returns, *ret)
	return nil
}

func (r *stubReturnRepo) ListBySale(_ context.Context, saleID uuid.UUID) ([]model.Return, error) {
	out := make([]model.Return, 0)
	for _, ret := range r.returns {
		if ret.SaleID == saleID {
			out = append(out, ret)
		}
	}
	return out, nil
}

func (r *stubReturnRepo) LastFolioTx(_ *gorm.DB) (int, error) {
	max := 0
	for _, ret := range r.returns {
		if ret.Folio > max {
			max = ret.Folio
		}
	}
	return max, nil
}

func (r *stubReturnRepo) ReturnedQuantities(_ context.Context, saleID uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	out := make(map[uuid.UUID]decimal.Decimal)
	for _, ret := range r.returns {
		if ret.SaleID != saleID {
			continue
		}
		for _, item := range ret.Items {
			out[item.SaleItemID] = out[item.SaleItemID].Add(item.Quantity)
		}
	}
	return out, nil
}

var _ repository.ReturnRepository = (*stubReturnRepo)(nil)

// stubVoucherRepo indexes vouchers by id and records redemptions.
type stubVoucherRepo struct {
	vouchers    map[uuid.UUID]*model.StoreVoucher
	redemptions []model.SaleVoucherRedemption
}

func newStubVoucherRepo() *stubVoucherRepo {
	return &stubVoucherRepo{vouchers: make(map[uuid.UUID]*model.StoreVoucher)}
}

func (r *stubVoucherRepo) FindActiveBySale(_ context.Context, saleID uuid.UUID) (*model.StoreVoucher, error) {
	for _, v := range r.vouchers {
		if v.SaleID == saleID && v.IsActive {
			return v, nil
		}
	}
	return nil, nil
}

func (r *stubVoucherRepo) SaveTx(_ *gorm.DB, v *model.StoreVoucher) error {
	r.vouchers[v.ID] = v
	return nil
}

func (r *stubVoucherRepo) FindByCode(_ context.Context, code string) (*model.StoreVoucher, error) {
	for _, v := range r.vouchers {
		if v.Code == code {
			return v, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubVoucherRepo) CreateRedemptionTx(_ *gorm.DB, red *model.SaleVoucherRedemption) error {
	r.redemptions = append(r.redemptions, *red)
	return nil
}

var _ repository.VoucherRepository = (*stubVoucherRepo)(nil)

// stubKitRepo serves seeded rules, filtered the way the SQL does: by trigger
// product or by declared kit id.
type stubKitRepo struct {
	rules []repository.KitRuleData
}

func (r *stubKitRepo) RelevantRules(_ context.Context, productIDs, declaredIDs []uuid.UUID) ([]repository.KitRuleData, error) {
	if len(productIDs) == 0 && len(declaredIDs) == 0 {
		return nil, nil
	}
	inCart := make(map[uuid.UUID]bool, len(productIDs))
	for _, id := range productIDs {
		inCart[id] = true
	}
	declared := make(map[uuid.UUID]bool, len(declaredIDs))
	for _, id := range declaredIDs {
		declared[id] = true
	}

	out := make([]repository.KitRuleData, 0, len(r.rules))
	for _, rule := range r.rules {
		if !rule.Option.IsActive {
			continue
		}
		match := declared[rule.Option.ID]
		for _, t := range rule.Triggers {
			if inCart[t.ProductID] {
				match = true
			}
		}
		if match {
			out = append(out, rule)
		}
	}
	return out, nil
}

func (r *stubKitRepo) RulesByID(_ context.Context, ids []uuid.UUID) ([]repository.KitRuleData, error) {
	wanted := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	out := make([]repository.KitRuleData, 0, len(ids))
	for _, rule := range r.rules {
		if wanted[rule.Option.ID] {
			out = append(out, rule)
		}
	}
	return out, nil
}

var _ repository.KitRepository = (*stubKitRepo)(nil)

// seedKit registers an active kit: buying any trigger grants maxSelections
// picks from the item pool.
func seedKit(r *stubKitRepo, name string, maxSelections int64, triggers, items []uuid.UUID) uuid.UUID {
	opt := model.KitOption{ID: uuid.New(), Name: name, MaxSelections: maxSelections, IsActive: true}
	data := repository.KitRuleData{Option: opt}
	for _, pid := range triggers {
		data.Triggers = append(data.Triggers, model.KitTrigger{ID: uuid.New(), KitOptionID: opt.ID, ProductID: pid})
	}
	for _, pid := range items {
		data.Items = append(data.Items, model.KitItem{ID: uuid.New(), KitOptionID: opt.ID, ProductID: pid})
	}
	r.rules = append(r.rules, data)
	return opt.ID
}

// stubPromotionRepo checks the active flag and date window like the real one.
type stubPromotionRepo struct {
	promos map[uuid.UUID]*model.Promotion
}

func newStubPromotionRepo() *stubPromotionRepo {
	return &stubPromotionRepo{promos: make(map[uuid.UUID]*model.Promotion)}
}

func (r *stubPromotionRepo) ActiveCombo(_ context.Context, id uuid.UUID, at time.Time) (*model.Promotion, error) {
	p, ok := r.promos[id]
	if !ok || !p.IsActive || at.Before(p.StartDate) || at.After(p.EndDate) {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (r *stubPromotionRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Promotion, error) {
	p, ok := r.promos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

var _ repository.PromotionRepository = (*stubPromotionRepo)(nil)

// seedPromotion registers an active combo valid for ±24h around now.
func seedPromotion(r *stubPromotionRepo, name string, comboPrice float64, required map[uuid.UUID]decimal.Decimal) uuid.UUID {
	p := &model.Promotion{
		ID:         uuid.New(),
		Name:       name,
		Type:       "combo",
		ComboPrice: decimal.NewFromFloat(comboPrice),
		StartDate:  time.Now().Add(-24 * time.Hour),
		EndDate:    time.Now().Add(24 * time.Hour),
		IsActive:   true,
	}
	for pid, qty := range required {
		p.Combos = append(p.Combos, model.PromotionCombo{ID: uuid.New(), PromotionID: p.ID, ProductID: pid, Quantity: qty})
	}
	r.promos[p.ID] = p
	return p.ID
}

// stubShiftRepo keeps shifts and movements in memory; the totals row is
// seeded directly by tests that exercise the closing math.
type stubShiftRepo struct {
	shifts    map[uuid.UUID]*model.Shift
	movements []model.CashMovement
	totals    *repository.ShiftTotalsRow
}

func newStubShiftRepo() *stubShiftRepo {
	return &stubShiftRepo{shifts: make(map[uuid.UUID]*model.Shift)}
}

func (r *stubShiftRepo) Create(_ context.Context, s *model.Shift) error {
	r.shifts[s.ID] = s
	return nil
}

func (r *stubShiftRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Shift, error) {
	s, ok := r.shifts[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return s, nil
}

func (r *stubShiftRepo) FindOpen(_ context.Context) (*model.Shift, error) {
	for _, s := range r.shifts {
		if s.Status == model.ShiftOpen {
			return s, nil
		}
	}
	return nil, nil
}

func (r *stubShiftRepo) CountOpenedOn(_ context.Context, day time.Time) (int64, error) {
	var n int64
	for _, s := range r.shifts {
		if s.OpenedAt.Format("2006-01-02") == day.Format("2006-01-02") {
			n++
		}
	}
	return n, nil
}

func (r *stubShiftRepo) UpdateTx(_ *gorm.DB, s *model.Shift) error {
	r.shifts[s.ID] = s
	return nil
}

func (r *stubShiftRepo) CreateMovement(_ context.Context, m *model.CashMovement) error {
	r.movements = append(r.movements, *m)
	return nil
}

func (r *stubShiftRepo) ListMovements(_ context.Context, shiftID uuid.UUID) ([]model.CashMovement, error) {
	out := make([]model.CashMovement, 0)
	for _, m := range r.movements {
		if m.ShiftID == shiftID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *stubShiftRepo) Totals(_ context.Context, _ uuid.UUID) (*repository.ShiftTotalsRow, error) {
	if r.totals != nil {
		return r.totals, nil
	}
	return &repository.ShiftTotalsRow{}, nil
}

func (r *stubShiftRepo) DB() *gorm.DB { return nil }

var _ repository.ShiftRepository = (*stubShiftRepo)(nil)
