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

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ReturnService interface {
	ProcessReturn(ctx context.Context, userID uuid.UUID, req dto.ProcessReturnRequest) (*dto.ReturnResponse, error)
	GetSaleWithReturnInfo(ctx context.Context, saleID uuid.UUID) (*dto.SaleWithReturnInfo, error)
}

type returnService struct {
	saleRepo    repository.SaleRepository
	returnRepo  repository.ReturnRepository
	voucherRepo repository.VoucherRepository
	productRepo repository.ProductRepository
	kitRepo     repository.KitRepository
	promoRepo   repository.PromotionRepository
	storeID     string

	// cancellationWindow bounds same-session cancellations: past it, a sale
	// can still be returned but no longer cancelled.
	cancellationWindow time.Duration
}

func NewReturnService(
	saleRepo repository.SaleRepository,
	returnRepo repository.ReturnRepository,
	voucherRepo repository.VoucherRepository,
	productRepo repository.ProductRepository,
	kitRepo repository.KitRepository,
	promoRepo repository.PromotionRepository,
	storeID string,
	cancellationWindow time.Duration,
) ReturnService {
	return &returnService{
		saleRepo:           saleRepo,
		returnRepo:         returnRepo,
		voucherRepo:        voucherRepo,
		productRepo:        productRepo,
		kitRepo:            kitRepo,
		promoRepo:          promoRepo,
		storeID:            storeID,
		cancellationWindow: cancellationWindow,
	}
}

// acceptedLine is one validated return line, priced at the sale item's net
// unit price so original line discounts carry into the refund.
type acceptedLine struct {
	item      *model.SaleItem
	quantity  decimal.Decimal
	unitPrice decimal.Decimal
	subtotal  decimal.Decimal
}

// ── ProcessReturn ─────────────────────────────────────────────────────────────
// One atomic unit:
//   1. Validate the sale exists and, for cancellations, the time window
//   2. Bound every requested quantity by what the item still has available
//   3. Re-check kit and promotion proportionality over availability
//   4. BEGIN TX: next return folio, create return+items, upsert voucher,
//      restore stock, recompute sale status
//   5. COMMIT

func (s *returnService) ProcessReturn(ctx context.Context, userID uuid.UUID, req dto.ProcessReturnRequest) (*dto.ReturnResponse, error) {
	saleID, err := uuid.Parse(req.SaleID)
	if err != nil {
		return nil, fmt.Errorf("invalid sale_id: %w", err)
	}
	sale, err := s.saleRepo.FindByID(ctx, saleID)
	if err != nil {
		return nil, errors.New("sale not found")
	}
	if sale.Status == model.SaleCancelled {
		return nil, errors.New("sale is cancelled and cannot be returned")
	}
	if req.Reason == model.ReasonCancellation && time.Since(sale.CreatedAt) > s.cancellationWindow {
		return nil, fmt.Errorf("cancellation window expired: sale is %s old, limit is %s",
			time.Since(sale.CreatedAt).Round(time.Minute), s.cancellationWindow)
	}

	itemsByID := make(map[uuid.UUID]*model.SaleItem, len(sale.Items))
	for i := range sale.Items {
		itemsByID[sale.Items[i].ID] = &sale.Items[i]
	}

	alreadyReturned, err := s.returnRepo.ReturnedQuantities(ctx, saleID)
	if err != nil {
		return nil, err
	}

	// 1. Bound check per line
	accepted := make([]acceptedLine, 0, len(req.Lines))
	requested := make(map[uuid.UUID]decimal.Decimal, len(req.Lines))
	for _, line := range req.Lines {
		itemID, err := uuid.Parse(line.SaleItemID)
		if err != nil {
			return nil, fmt.Errorf("invalid sale_item_id: %w", err)
		}
		item, ok := itemsByID[itemID]
		if !ok {
			return nil, fmt.Errorf("sale item %s does not belong to this sale", itemID)
		}
		prior := alreadyReturned[itemID].Add(requested[itemID])
		if prior.Add(line.Quantity).GreaterThan(item.Quantity.Add(engine.Epsilon)) {
			available := item.Quantity.Sub(prior)
			return nil, fmt.Errorf("excess return for %s: available %s, requested %s",
				item.ProductName, available.String(), line.Quantity.String())
		}
		unitPrice := decimal.Zero
		if item.Quantity.IsPositive() {
			unitPrice = item.Subtotal.Div(item.Quantity)
		}
		accepted = append(accepted, acceptedLine{
			item:      item,
			quantity:  line.Quantity,
			unitPrice: unitPrice,
			subtotal:  unitPrice.Mul(line.Quantity).Round(2),
		})
		requested[itemID] = requested[itemID].Add(line.Quantity)
	}

	// 2. Kit and promotion proportionality over what would remain
	if err := s.checkKitProportionality(ctx, sale, alreadyReturned, requested); err != nil {
		return nil, err
	}
	if err := s.checkPromotionProportionality(ctx, sale, alreadyReturned, requested); err != nil {
		return nil, err
	}

	returnTotal := decimal.Zero
	for _, a := range accepted {
		returnTotal = returnTotal.Add(a.subtotal)
	}
	if !returnTotal.IsPositive() {
		return nil, errors.New("return total must be greater than zero")
	}

	voucher, err := s.voucherRepo.FindActiveBySale(ctx, saleID)
	if err != nil {
		return nil, err
	}

	newStatus := s.recomputeStatus(sale, alreadyReturned, requested, req.Reason)

	// 3. ACID transaction
	var ret model.Return
	txErr := runTx(ctx, s.saleRepo.DB(), func(tx *gorm.DB) error {
		lastFolio, err := s.returnRepo.LastFolioTx(tx)
		if err != nil {
			return err
		}

		ret = model.Return{
			ID:     uuid.New(),
			Folio:  lastFolio + 1,
			SaleID: saleID,
			Total:  returnTotal,
			Reason: req.Reason,
			Notes:  req.Notes,
			UserID: userID,
		}
		for _, a := range accepted {
			ret.Items = append(ret.Items, model.ReturnItem{
				ID:         uuid.New(),
				ReturnID:   ret.ID,
				SaleItemID: a.item.ID,
				ProductID:  a.item.ProductID,
				Quantity:   a.quantity,
				UnitPrice:  a.unitPrice.Round(2),
				Subtotal:   a.subtotal,
			})
		}
		if err := s.returnRepo.CreateTx(tx, &ret); err != nil {
			return err
		}

		if voucher == nil {
			voucher = &model.StoreVoucher{
				ID:             uuid.New(),
				Code:           "V-" + sale.Folio,
				SaleID:         saleID,
				InitialBalance: returnTotal,
				CurrentBalance: returnTotal,
				IsActive:       true,
			}
		} else {
			voucher.InitialBalance = voucher.InitialBalance.Add(returnTotal)
			voucher.CurrentBalance = voucher.CurrentBalance.Add(returnTotal)
		}
		if err := s.voucherRepo.SaveTx(tx, voucher); err != nil {
			return err
		}

		// Stock moves back for every returned quantity, priced or not —
		// stock correctness is independent of pricing.
		for _, a := range accepted {
			if err := s.productRepo.AdjustStockTx(tx, a.item.ProductID, s.storeID, a.quantity); err != nil {
				return fmt.Errorf("stock restoration for %s: %w", a.item.ProductName, err)
			}
		}

		if newStatus != sale.Status {
			if err := s.saleRepo.UpdateStatusTx(tx, saleID, newStatus); err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	return &dto.ReturnResponse{
		ReturnID:    ret.ID.String(),
		Folio:       ret.Folio,
		Total:       returnTotal,
		VoucherCode: voucher.Code,
		SaleStatus:  newStatus,
	}, nil
}

// checkKitProportionality re-runs the credit-vs-consumption balance for each
// kit touched by the request, over availability (original − already returned
// − requested now), so repeated partial returns stay coherent. Rules are
// loaded by id without the catalog's active filter: the sale was priced
// against them, so its returns are too.
func (s *returnService) checkKitProportionality(ctx context.Context, sale *model.Sale, alreadyReturned, requested map[uuid.UUID]decimal.Decimal) error {
	kitIDs := make([]uuid.UUID, 0)
	seen := make(map[uuid.UUID]bool)
	for _, item := range sale.Items {
		if item.KitOptionID != nil && !seen[*item.KitOptionID] {
			seen[*item.KitOptionID] = true
			kitIDs = append(kitIDs, *item.KitOptionID)
		}
	}
	if len(kitIDs) == 0 {
		return nil
	}

	// A kit is touched when the request carries one of its gift lines, or
	// any line of a product in its trigger set — only a gift line records
	// the KitOptionID, so trigger items are matched by product.
	requestedKits := make(map[uuid.UUID]bool)
	requestedProducts := make(map[uuid.UUID]bool)
	for itemID := range requested {
		for i := range sale.Items {
			item := &sale.Items[i]
			if item.ID != itemID {
				continue
			}
			requestedProducts[item.ProductID] = true
			if item.KitOptionID != nil {
				requestedKits[*item.KitOptionID] = true
			}
		}
	}

	data, err := s.kitRepo.RulesByID(ctx, kitIDs)
	if err != nil {
		return err
	}
	for _, d := range data {
		rule := kitRuleFromData(d)
		touched := requestedKits[rule.ID]
		for pid := range requestedProducts {
			if touched {
				break
			}
			touched = rule.Triggers[pid]
		}
		if !touched {
			continue
		}
		avail := availabilityLines(sale, alreadyReturned, requested)
		if err := engine.CheckKitBalance(rule, avail); err != nil {
			return err
		}
	}
	return nil
}

// availabilityLines projects the sale's items into engine lines whose
// quantities are what would remain after this return is applied.
func availabilityLines(sale *model.Sale, alreadyReturned, requested map[uuid.UUID]decimal.Decimal) []engine.Line {
	lines := make([]engine.Line, 0, len(sale.Items))
	for _, item := range sale.Items {
		remaining := item.Quantity.Sub(alreadyReturned[item.ID]).Sub(requested[item.ID])
		if remaining.IsNegative() {
			remaining = decimal.Zero
		}
		lines = append(lines, engine.Line{
			ID:          item.ID.String(),
			ProductID:   item.ProductID,
			Quantity:    remaining,
			PriceType:   item.PriceType,
			PromotionID: item.PromotionID,
			KitOptionID: item.KitOptionID,
		})
	}
	return lines
}

// checkPromotionProportionality requires every member product of a touched
// promotion to be returned in the same cumulative ratio.
func (s *returnService) checkPromotionProportionality(ctx context.Context, sale *model.Sale, alreadyReturned, requested map[uuid.UUID]decimal.Decimal) error {
	touched := make(map[uuid.UUID]bool)
	for itemID := range requested {
		for _, item := range sale.Items {
			if item.ID == itemID && item.PromotionID != nil {
				touched[*item.PromotionID] = true
			}
		}
	}

	for promoID := range touched {
		original := make(map[uuid.UUID]decimal.Decimal)
		returned := make(map[uuid.UUID]decimal.Decimal)
		for _, item := range sale.Items {
			if item.PromotionID == nil || *item.PromotionID != promoID {
				continue
			}
			original[item.ProductID] = original[item.ProductID].Add(item.Quantity)
			cum := alreadyReturned[item.ID].Add(requested[item.ID])
			returned[item.ProductID] = returned[item.ProductID].Add(cum)
		}

		name := promoID.String()
		if promo, err := s.promoRepo.FindByID(ctx, promoID); err == nil {
			name = promo.Name
		}
		if err := engine.CheckPromotionReturnRatio(name, original, returned); err != nil {
			return err
		}
	}
	return nil
}

// recomputeStatus compares cumulative original vs cumulative returned over
// every sale item. Status only moves forward.
func (s *returnService) recomputeStatus(sale *model.Sale, alreadyReturned, requested map[uuid.UUID]decimal.Decimal, reason string) string {
	allReturned := true
	anyReturned := false
	for _, item := range sale.Items {
		cum := alreadyReturned[item.ID].Add(requested[item.ID])
		if cum.IsPositive() {
			anyReturned = true
		}
		if item.Quantity.Sub(cum).GreaterThan(engine.Epsilon) {
			allReturned = false
		}
	}
	switch {
	case allReturned:
		if reason == model.ReasonCancellation {
			return model.SaleCancelled
		}
		return model.SaleFullyReturned
	case anyReturned:
		return model.SalePartialReturn
	default:
		return sale.Status
	}
}

// ── Read model ────────────────────────────────────────────────────────────────

func (s *returnService) GetSaleWithReturnInfo(ctx context.Context, saleID uuid.UUID) (*dto.SaleWithReturnInfo, error) {
	sale, err := s.saleRepo.FindByID(ctx, saleID)
	if err != nil {
		return nil, errors.New("sale not found")
	}
	returned, err := s.returnRepo.ReturnedQuantities(ctx, saleID)
	if err != nil {
		return nil, err
	}
	returns, err := s.returnRepo.ListBySale(ctx, saleID)
	if err != nil {
		return nil, err
	}
	voucher, err := s.voucherRepo.FindActiveBySale(ctx, saleID)
	if err != nil {
		return nil, err
	}

	info := &dto.SaleWithReturnInfo{Sale: *saleToResponse(sale)}
	for _, item := range sale.Items {
		r := returned[item.ID]
		info.Items = append(info.Items, dto.SaleItemWithReturns{
			SaleItemResponse:  saleItemToResponse(item),
			ReturnedQuantity:  r,
			AvailableQuantity: item.Quantity.Sub(r),
		})
	}
	for _, ret := range returns {
		info.Returns = append(info.Returns, dto.ReturnListItem{
			ID:        ret.ID.String(),
			Folio:     ret.Folio,
			Total:     ret.Total,
			Reason:    ret.Reason,
			Notes:     ret.Notes,
			CreatedAt: ret.CreatedAt.Format(time.RFC3339),
		})
	}
	if voucher != nil {
		info.Voucher = &dto.VoucherResponse{
			Code:           voucher.Code,
			InitialBalance: voucher.InitialBalance,
			CurrentBalance: voucher.CurrentBalance,
			IsActive:       voucher.IsActive,
		}
	}
	return info, nil
}
