package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"retailpos/internal/dto"
	"retailpos/internal/engine"
	"retailpos/internal/model"
	"retailpos/internal/repository"
	"retailpos/internal/worker"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type SaleService interface {
	CommitSale(ctx context.Context, userID uuid.UUID, req dto.CommitSaleRequest) (*dto.CommitSaleResponse, error)
	GetSale(ctx context.Context, id uuid.UUID) (*dto.SaleResponse, error)
	ListSales(ctx context.Context, filter dto.SaleFilter) (*dto.SaleListResponse, error)
}

type saleService struct {
	saleRepo     repository.SaleRepository
	productRepo  repository.ProductRepository
	customerRepo repository.CustomerRepository
	kitRepo      repository.KitRepository
	promoRepo    repository.PromotionRepository
	voucherRepo  repository.VoucherRepository
	shiftRepo    repository.ShiftRepository
	dispatcher   *worker.Dispatcher
	storeID      string
}

func NewSaleService(
	saleRepo repository.SaleRepository,
	productRepo repository.ProductRepository,
	customerRepo repository.CustomerRepository,
	kitRepo repository.KitRepository,
	promoRepo repository.PromotionRepository,
	voucherRepo repository.VoucherRepository,
	shiftRepo repository.ShiftRepository,
	dispatcher *worker.Dispatcher,
	storeID string,
) SaleService {
	return &saleService{
		saleRepo:     saleRepo,
		productRepo:  productRepo,
		customerRepo: customerRepo,
		kitRepo:      kitRepo,
		promoRepo:    promoRepo,
		voucherRepo:  voucherRepo,
		shiftRepo:    shiftRepo,
		dispatcher:   dispatcher,
		storeID:      storeID,
	}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// ── CommitSale ────────────────────────────────────────────────────────────────
// One atomic unit:
//   1. Validate the shift is open and the cart is non-empty
//   2. Resolve products, run kit and promotion validation, price every line
//   3. Check payment sufficiency / customer credit limit
//   4. BEGIN TX: next folio, create sale+items, decrement stock, move balances
//   5. COMMIT
//   6. (async) dispatch receipt printing if requested

func (s *saleService) CommitSale(ctx context.Context, userID uuid.UUID, req dto.CommitSaleRequest) (*dto.CommitSaleResponse, error) {
	if len(req.Items) == 0 {
		return nil, errors.New("cannot commit an empty cart")
	}

	shiftID, err := uuid.Parse(req.ShiftID)
	if err != nil {
		return nil, fmt.Errorf("invalid shift_id: %w", err)
	}
	shift, err := s.shiftRepo.FindByID(ctx, shiftID)
	if err != nil || shift.Status != model.ShiftOpen {
		return nil, errors.New("no open shift: sales require an open cash register shift")
	}

	// 1. Parse cart lines into the engine's shape
	lines := make([]engine.Line, 0, len(req.Items))
	byLineID := make(map[string]bool, len(req.Items))
	for _, item := range req.Items {
		pid, err := uuid.Parse(item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("invalid product_id %q: %w", item.ProductID, err)
		}
		if byLineID[item.ID] {
			return nil, fmt.Errorf("duplicate cart line id %q", item.ID)
		}
		l := engine.Line{
			ID:        item.ID,
			ProductID: pid,
			Quantity:  item.Quantity,
			PriceType: item.PriceType,
		}
		if item.ParentLineID != nil {
			l.ParentID = *item.ParentLineID
		}
		if item.PromotionID != nil {
			promoID, err := uuid.Parse(*item.PromotionID)
			if err != nil {
				return nil, fmt.Errorf("invalid promotion_id: %w", err)
			}
			l.PromotionID = &promoID
		}
		if item.KitOptionID != nil {
			kitID, err := uuid.Parse(*item.KitOptionID)
			if err != nil {
				return nil, fmt.Errorf("invalid kit_option_id: %w", err)
			}
			l.KitOptionID = &kitID
		}
		byLineID[item.ID] = true
		lines = append(lines, l)
	}
	for _, l := range lines {
		if l.ParentID != "" && !byLineID[l.ParentID] {
			return nil, fmt.Errorf("parent line %q not found in cart", l.ParentID)
		}
	}

	// 2. Resolve products (pre-flight, outside TX)
	products, err := s.resolveProducts(ctx, lines)
	if err != nil {
		return nil, err
	}

	// 3. Kit validation — gift lines may gain a resolved kit_option_id
	adjusted, err := s.validateKits(ctx, lines)
	if err != nil {
		return nil, err
	}

	// 4. Promotion validation + pricing
	priced, err := s.priceLines(ctx, adjusted, products, req.DiscountPercentage)
	if err != nil {
		return nil, err
	}
	totals := engine.CalculateTotals(priced)

	// 5. Customer credit / payment sufficiency
	var customerID *uuid.UUID
	if req.CustomerID != nil {
		cid, err := uuid.Parse(*req.CustomerID)
		if err != nil {
			return nil, fmt.Errorf("invalid customer_id: %w", err)
		}
		customerID = &cid
	}
	if req.PaymentMethod == model.PaymentCredit {
		if customerID == nil {
			return nil, errors.New("credit sales require a customer")
		}
		customer, err := s.customerRepo.FindByID(ctx, *customerID)
		if err != nil {
			return nil, errors.New("customer not found")
		}
		if customer.CurrentBalance.Add(totals.Total).GreaterThan(customer.CreditLimit) {
			available := customer.CreditLimit.Sub(customer.CurrentBalance)
			return nil, fmt.Errorf("credit limit exceeded: available %s, required %s",
				available.StringFixed(2), totals.Total.StringFixed(2))
		}
	}

	var voucher *model.StoreVoucher
	voucherAmount := decimal.Zero
	if req.VoucherCode != nil && *req.VoucherCode != "" {
		voucher, err = s.voucherRepo.FindByCode(ctx, *req.VoucherCode)
		if err != nil || !voucher.IsActive {
			return nil, errors.New("voucher not found or inactive")
		}
		voucherAmount = decimal.Min(voucher.CurrentBalance, totals.Total)
	}

	change := decimal.Zero
	if req.PaymentMethod != model.PaymentCredit {
		paid := req.CashAmount.Add(req.CardAmount).Add(voucherAmount)
		if paid.Add(engine.PaymentEpsilon).LessThan(totals.Total) {
			return nil, fmt.Errorf("insufficient payment: calculated %s, paid %s",
				totals.Total.StringFixed(2), paid.StringFixed(2))
		}
		if diff := paid.Sub(totals.Total); diff.IsPositive() {
			change = diff
		}
	}

	// 6. ACID transaction
	var sale model.Sale
	txErr := runTx(ctx, s.saleRepo.DB(), func(tx *gorm.DB) error {
		lastFolio, err := s.saleRepo.LastFolioTx(tx)
		if err != nil {
			return err
		}

		sale = model.Sale{
			ID:                 uuid.New(),
			Folio:              engine.NextFolio(lastFolio),
			Subtotal:           totals.Subtotal,
			DiscountPercentage: req.DiscountPercentage,
			DiscountAmount:     totals.Discount,
			Total:              totals.Total,
			PaymentMethod:      req.PaymentMethod,
			CashAmount:         req.CashAmount,
			CardAmount:         req.CardAmount,
			CustomerID:         customerID,
			UserID:             userID,
			ShiftID:            shiftID,
			Status:             model.SaleCompleted,
			Notes:              req.Notes,
		}

		// Item ids are assigned up front so gift lines can reference their
		// parent item in the same insert.
		itemIDByLine := make(map[string]uuid.UUID, len(priced))
		for _, p := range priced {
			itemIDByLine[p.Line.ID] = uuid.New()
		}
		for _, p := range priced {
			item := model.SaleItem{
				ID:             itemIDByLine[p.Line.ID],
				SaleID:         sale.ID,
				ProductID:      p.Line.ProductID,
				ProductName:    p.ProductName,
				ProductCode:    p.ProductCode,
				Quantity:       p.Line.Quantity,
				UnitPrice:      p.UnitPrice,
				PriceType:      p.Line.PriceType,
				DiscountAmount: p.Discount,
				Subtotal:       p.Net,
				KitOptionID:    p.Line.KitOptionID,
				PromotionID:    p.Line.PromotionID,
			}
			if p.Line.ParentID != "" {
				if parentID, ok := itemIDByLine[p.Line.ParentID]; ok {
					item.ParentSaleItemID = &parentID
				}
			}
			sale.Items = append(sale.Items, item)
		}

		if err := s.saleRepo.CreateTx(tx, &sale); err != nil {
			return err
		}

		// Decrement stock — a missing inventory row aborts the whole sale
		for _, p := range priced {
			if err := s.productRepo.AdjustStockTx(tx, p.Line.ProductID, s.storeID, p.Line.Quantity.Neg()); err != nil {
				return fmt.Errorf("stock adjustment for %s: %w", p.ProductName, err)
			}
		}

		if req.PaymentMethod == model.PaymentCredit {
			if err := s.customerRepo.AdjustBalanceTx(tx, *customerID, totals.Total); err != nil {
				return err
			}
		}

		if voucher != nil && voucherAmount.IsPositive() {
			voucher.CurrentBalance = voucher.CurrentBalance.Sub(voucherAmount)
			if !voucher.CurrentBalance.IsPositive() {
				voucher.IsActive = false
			}
			if err := s.voucherRepo.SaveTx(tx, voucher); err != nil {
				return err
			}
			red := model.SaleVoucherRedemption{
				ID:        uuid.New(),
				SaleID:    sale.ID,
				VoucherID: voucher.ID,
				Amount:    voucherAmount,
			}
			if err := s.voucherRepo.CreateRedemptionTx(tx, &red); err != nil {
				return err
			}
		}

		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	// 7. Receipt printing — best-effort, never observable as a commit failure
	if req.ShouldPrint && s.dispatcher != nil {
		_ = s.dispatcher.EnqueuePrintReceipt(ctx, worker.PrintReceiptPayload{
			SaleID: sale.ID.String(),
			Folio:  sale.Folio,
		})
	}

	return &dto.CommitSaleResponse{
		SaleID: sale.ID.String(),
		Folio:  sale.Folio,
		Total:  sale.Total,
		Change: change,
	}, nil
}

// resolveProducts loads and indexes every product referenced by the cart,
// rejecting unknown or inactive ones.
func (s *saleService) resolveProducts(ctx context.Context, lines []engine.Line) (map[uuid.UUID]*model.Product, error) {
	seen := make(map[uuid.UUID]bool, len(lines))
	ids := make([]uuid.UUID, 0, len(lines))
	for _, l := range lines {
		if !seen[l.ProductID] {
			seen[l.ProductID] = true
			ids = append(ids, l.ProductID)
		}
	}
	products, err := s.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*model.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}
	for _, id := range ids {
		p, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("product %s not found", id)
		}
		if !p.IsActive {
			return nil, fmt.Errorf("product %s is inactive and cannot be sold", p.Name)
		}
	}
	return byID, nil
}

// validateKits loads the relevant kit rules and runs gift adjudication.
func (s *saleService) validateKits(ctx context.Context, lines []engine.Line) ([]engine.Line, error) {
	productIDs := make([]uuid.UUID, 0, len(lines))
	var declared []uuid.UUID
	for _, l := range lines {
		productIDs = append(productIDs, l.ProductID)
		if l.KitOptionID != nil {
			declared = append(declared, *l.KitOptionID)
		}
	}
	data, err := s.kitRepo.RelevantRules(ctx, productIDs, declared)
	if err != nil {
		return nil, err
	}
	rules := make([]engine.KitRule, len(data))
	for i, d := range data {
		rules[i] = kitRuleFromData(d)
	}
	return engine.ApplyKitRules(lines, rules)
}

func kitRuleFromData(d repository.KitRuleData) engine.KitRule {
	r := engine.KitRule{
		ID:            d.Option.ID,
		Name:          d.Option.Name,
		MaxSelections: d.Option.MaxSelections,
		Triggers:      make(map[uuid.UUID]bool, len(d.Triggers)),
		Items:         make(map[uuid.UUID]bool, len(d.Items)),
	}
	for _, t := range d.Triggers {
		r.Triggers[t.ProductID] = true
	}
	for _, it := range d.Items {
		r.Items[it.ProductID] = true
	}
	return r
}

// priceLines validates each promotion group and prices every line.
// Non-promotion lines get the catalog price for their price type under the
// global discount; kit gifts are free; promotion lines split the combo price
// in proportion to retail value.
func (s *saleService) priceLines(ctx context.Context, lines []engine.Line, products map[uuid.UUID]*model.Product, discountPct decimal.Decimal) ([]engine.PricedLine, error) {
	priced := make([]engine.PricedLine, len(lines))
	promoGroups := make(map[uuid.UUID][]int)

	for i, l := range lines {
		p := products[l.ProductID]
		priced[i] = engine.PricedLine{Line: l, ProductName: p.Name, ProductCode: p.Code}

		switch l.PriceType {
		case engine.PricePromo:
			if l.PromotionID == nil {
				return nil, fmt.Errorf("line %q is promo-priced but carries no promotion", l.ID)
			}
			promoGroups[*l.PromotionID] = append(promoGroups[*l.PromotionID], i)
		case engine.PriceKitItem:
			// Gift lines are free; validation already justified them.
			priced[i].UnitPrice = decimal.Zero
			priced[i].Gross = decimal.Zero
			priced[i].Discount = decimal.Zero
			priced[i].Net = decimal.Zero
		case engine.PriceWholesale:
			gross, disc, net := engine.PriceLine(p.WholesalePrice, l.Quantity, discountPct)
			priced[i].UnitPrice = p.WholesalePrice
			priced[i].Gross, priced[i].Discount, priced[i].Net = gross, disc, net
		default:
			gross, disc, net := engine.PriceLine(p.RetailPrice, l.Quantity, discountPct)
			priced[i].UnitPrice = p.RetailPrice
			priced[i].Gross, priced[i].Discount, priced[i].Net = gross, disc, net
		}
	}

	now := time.Now()
	for promoID, idxs := range promoGroups {
		promo, err := s.promoRepo.ActiveCombo(ctx, promoID, now)
		if err != nil {
			return nil, fmt.Errorf("promotion %s is not active or not found", promoID)
		}
		def := engine.PromotionDef{
			ID:         promo.ID,
			Name:       promo.Name,
			ComboPrice: promo.ComboPrice,
			Required:   make(map[uuid.UUID]decimal.Decimal, len(promo.Combos)),
		}
		for _, c := range promo.Combos {
			def.Required[c.ProductID] = c.Quantity
		}

		validated, err := engine.ValidatePromotion(def, lines)
		if err != nil {
			return nil, err
		}

		retailValues := make([]decimal.Decimal, len(idxs))
		for j, i := range idxs {
			retailValues[j] = products[lines[i].ProductID].RetailPrice.Mul(lines[i].Quantity)
		}
		allocated := engine.AllocateComboPrice(validated.GroupTotal(), retailValues)
		for j, i := range idxs {
			unitPrice, gross, net := engine.PricePromoLine(allocated[j], lines[i].Quantity)
			priced[i].UnitPrice = unitPrice
			priced[i].Gross = gross
			priced[i].Discount = decimal.Zero
			priced[i].Net = net
		}
	}

	return priced, nil
}

// ── Reads ─────────────────────────────────────────────────────────────────────

func (s *saleService) GetSale(ctx context.Context, id uuid.UUID) (*dto.SaleResponse, error) {
	sale, err := s.saleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("sale not found")
	}
	return saleToResponse(sale), nil
}

func (s *saleService) ListSales(ctx context.Context, filter dto.SaleFilter) (*dto.SaleListResponse, error) {
	sales, total, err := s.saleRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.SaleListItem, len(sales))
	for i, sale := range sales {
		items[i] = dto.SaleListItem{
			ID:            sale.ID.String(),
			Folio:         sale.Folio,
			Total:         sale.Total,
			PaymentMethod: sale.PaymentMethod,
			Status:        sale.Status,
			CreatedAt:     sale.CreatedAt.Format(time.RFC3339),
		}
		if sale.CustomerID != nil {
			cid := sale.CustomerID.String()
			items[i].CustomerID = &cid
		}
	}
	return &dto.SaleListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func saleToResponse(sale *model.Sale) *dto.SaleResponse {
	resp := &dto.SaleResponse{
		ID:                 sale.ID.String(),
		Folio:              sale.Folio,
		Subtotal:           sale.Subtotal,
		DiscountPercentage: sale.DiscountPercentage,
		DiscountAmount:     sale.DiscountAmount,
		Total:              sale.Total,
		PaymentMethod:      sale.PaymentMethod,
		CashAmount:         sale.CashAmount,
		CardAmount:         sale.CardAmount,
		Status:             sale.Status,
		CreatedAt:          sale.CreatedAt.Format(time.RFC3339),
	}
	if sale.CustomerID != nil {
		cid := sale.CustomerID.String()
		resp.CustomerID = &cid
	}
	for _, item := range sale.Items {
		resp.Items = append(resp.Items, saleItemToResponse(item))
	}
	return resp
}

func saleItemToResponse(item model.SaleItem) dto.SaleItemResponse {
	return dto.SaleItemResponse{
		ID:             item.ID.String(),
		ProductID:      item.ProductID.String(),
		ProductName:    item.ProductName,
		ProductCode:    item.ProductCode,
		Quantity:       item.Quantity,
		UnitPrice:      item.UnitPrice,
		PriceType:      item.PriceType,
		DiscountAmount: item.DiscountAmount,
		Subtotal:       item.Subtotal,
	}
}
