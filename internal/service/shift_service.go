package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"retailpos/internal/dto"
	"retailpos/internal/model"
	"retailpos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ShiftService interface {
	Open(ctx context.Context, userID uuid.UUID, req dto.OpenShiftRequest) (*dto.ShiftResponse, error)
	Close(ctx context.Context, userID uuid.UUID, shiftID uuid.UUID, req dto.CloseShiftRequest) (*dto.ShiftResponse, error)
	Active(ctx context.Context) (*dto.ShiftResponse, error)
	RegisterMovement(ctx context.Context, userID uuid.UUID, shiftID uuid.UUID, req dto.CashMovementRequest) (*dto.CashMovementResponse, error)
	RegisterDebtPayment(ctx context.Context, req dto.DebtPaymentRequest) (*dto.DebtPaymentResponse, error)
	Totals(ctx context.Context, shiftID uuid.UUID) (*dto.ShiftTotals, error)
}

type shiftService struct {
	repo         repository.ShiftRepository
	customerRepo repository.CustomerRepository
	storeID      string
	maxCashLimit decimal.Decimal
}

func NewShiftService(repo repository.ShiftRepository, customerRepo repository.CustomerRepository, storeID string, maxCashLimit decimal.Decimal) ShiftService {
	return &shiftService{repo: repo, customerRepo: customerRepo, storeID: storeID, maxCashLimit: maxCashLimit}
}

func (s *shiftService) Open(ctx context.Context, userID uuid.UUID, req dto.OpenShiftRequest) (*dto.ShiftResponse, error) {
	if req.InitialCash.IsNegative() {
		return nil, errors.New("initial cash cannot be negative")
	}
	if s.maxCashLimit.IsPositive() && req.InitialCash.GreaterThan(s.maxCashLimit) {
		return nil, fmt.Errorf("initial cash is too high (max: %s)", s.maxCashLimit.StringFixed(2))
	}

	open, err := s.repo.FindOpen(ctx)
	if err != nil {
		return nil, err
	}
	if open != nil {
		return nil, errors.New("a shift is already open")
	}

	now := time.Now()
	seq, err := s.repo.CountOpenedOn(ctx, now)
	if err != nil {
		return nil, err
	}
	shift := model.Shift{
		ID:            uuid.New(),
		Code:          fmt.Sprintf("%s-%s-%03d", s.storeID, now.Format("2006-01-02"), seq+1),
		InitialCash:   req.InitialCash,
		OpeningUserID: userID,
		Status:        model.ShiftOpen,
		OpenedAt:      now,
	}
	if err := s.repo.Create(ctx, &shift); err != nil {
		return nil, err
	}
	return shiftToResponse(&shift, nil), nil
}

func (s *shiftService) Close(ctx context.Context, userID uuid.UUID, shiftID uuid.UUID, req dto.CloseShiftRequest) (*dto.ShiftResponse, error) {
	shift, err := s.repo.FindByID(ctx, shiftID)
	if err != nil {
		return nil, errors.New("shift not found")
	}
	if shift.Status != model.ShiftOpen {
		return nil, errors.New("shift is already closed")
	}

	var totals *dto.ShiftTotals
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		// Totals are recomputed inside the transaction so a sale landing
		// mid-close cannot skew the differences.
		totals, err = s.Totals(ctx, shiftID)
		if err != nil {
			return err
		}

		now := time.Now()
		expectedCash := totals.TheoreticalCash
		cashDifference := req.FinalCash.Sub(expectedCash)
		cardExpected := totals.CardSales.Add(totals.DebtCardPaid)
		cardDifference := req.CardTerminalTotal.Sub(cardExpected)
		cashWithdrawal := totals.CashSales.Add(totals.DebtCashPaid)

		shift.Status = model.ShiftClosed
		shift.ClosedAt = &now
		shift.ClosingUserID = &userID
		shift.FinalCash = &req.FinalCash
		shift.ExpectedCash = &expectedCash
		shift.CashDifference = &cashDifference
		shift.CardTerminalTotal = &req.CardTerminalTotal
		shift.CardExpectedTotal = &cardExpected
		shift.CardDifference = &cardDifference
		shift.CashWithdrawal = &cashWithdrawal
		if req.Notes != nil {
			trimmed := strings.TrimSpace(*req.Notes)
			if trimmed != "" {
				shift.Notes = &trimmed
			}
		}
		return s.repo.UpdateTx(tx, shift)
	})
	if txErr != nil {
		return nil, txErr
	}
	return shiftToResponse(shift, totals), nil
}

func (s *shiftService) Active(ctx context.Context) (*dto.ShiftResponse, error) {
	shift, err := s.repo.FindOpen(ctx)
	if err != nil {
		return nil, err
	}
	if shift == nil {
		return nil, errors.New("no open shift")
	}
	return shiftToResponse(shift, nil), nil
}

func (s *shiftService) RegisterMovement(ctx context.Context, userID uuid.UUID, shiftID uuid.UUID, req dto.CashMovementRequest) (*dto.CashMovementResponse, error) {
	shift, err := s.repo.FindByID(ctx, shiftID)
	if err != nil {
		return nil, errors.New("shift not found")
	}
	if shift.Status != model.ShiftOpen {
		return nil, errors.New("cash movements require an open shift")
	}

	m := model.CashMovement{
		ID:          uuid.New(),
		ShiftID:     shiftID,
		Type:        req.Type,
		Amount:      req.Amount,
		Description: req.Description,
		UserID:      userID,
		CreatedAt:   time.Now(),
	}
	if err := s.repo.CreateMovement(ctx, &m); err != nil {
		return nil, err
	}
	return &dto.CashMovementResponse{
		ID:          m.ID.String(),
		Type:        m.Type,
		Amount:      m.Amount,
		Description: m.Description,
		CreatedAt:   m.CreatedAt.Format(time.RFC3339),
	}, nil
}

// RegisterDebtPayment settles part of a customer's credit balance against
// the open shift. The cash portion lands in the drawer and the card portion
// in the terminal expectation, both via the shift totals aggregation.
func (s *shiftService) RegisterDebtPayment(ctx context.Context, req dto.DebtPaymentRequest) (*dto.DebtPaymentResponse, error) {
	shift, err := s.repo.FindOpen(ctx)
	if err != nil {
		return nil, err
	}
	if shift == nil {
		return nil, errors.New("debt payments require an open shift")
	}

	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("invalid customer_id: %w", err)
	}
	customer, err := s.customerRepo.FindByID(ctx, customerID)
	if err != nil {
		return nil, errors.New("customer not found")
	}

	amount := req.CashAmount.Add(req.CardAmount)
	if !amount.IsPositive() {
		return nil, errors.New("payment amount must be greater than zero")
	}
	if amount.GreaterThan(customer.CurrentBalance) {
		return nil, fmt.Errorf("payment exceeds customer debt: owed %s, received %s",
			customer.CurrentBalance.StringFixed(2), amount.StringFixed(2))
	}

	payment := model.DebtPayment{
		ID:         uuid.New(),
		CustomerID: customerID,
		ShiftID:    shift.ID,
		Amount:     amount,
		CashAmount: req.CashAmount,
		CardAmount: req.CardAmount,
		CreatedAt:  time.Now(),
	}
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.customerRepo.CreateDebtPaymentTx(tx, &payment); err != nil {
			return err
		}
		return s.customerRepo.AdjustBalanceTx(tx, customerID, amount.Neg())
	})
	if txErr != nil {
		return nil, txErr
	}

	return &dto.DebtPaymentResponse{
		ID:         payment.ID.String(),
		CustomerID: customerID.String(),
		Amount:     amount,
		CashAmount: req.CashAmount,
		CardAmount: req.CardAmount,
		NewBalance: customer.CurrentBalance.Sub(amount),
		CreatedAt:  payment.CreatedAt.Format(time.RFC3339),
	}, nil
}

// Totals derives the shift's closing figures. Cash sales are what remains
// of completed-sale revenue after card, credit, and voucher settlements.
func (s *shiftService) Totals(ctx context.Context, shiftID uuid.UUID) (*dto.ShiftTotals, error) {
	shift, err := s.repo.FindByID(ctx, shiftID)
	if err != nil {
		return nil, errors.New("shift not found")
	}
	row, err := s.repo.Totals(ctx, shiftID)
	if err != nil {
		return nil, err
	}

	cashSales := row.TotalSales.Sub(row.CardSales).Sub(row.CreditSales).Sub(row.VoucherSales)
	theoretical := shift.InitialCash.
		Add(cashSales).
		Add(row.DebtCash).
		Add(row.MovementsIn).
		Sub(row.MovementsOut)

	return &dto.ShiftTotals{
		SalesCount:      row.SalesCount,
		TotalSales:      row.TotalSales,
		CashSales:       cashSales,
		CardSales:       row.CardSales,
		CreditSales:     row.CreditSales,
		VoucherSales:    row.VoucherSales,
		DebtCashPaid:    row.DebtCash,
		DebtCardPaid:    row.DebtCard,
		ManualIn:        row.MovementsIn,
		ManualOut:       row.MovementsOut,
		TheoreticalCash: theoretical,
	}, nil
}

func shiftToResponse(shift *model.Shift, totals *dto.ShiftTotals) *dto.ShiftResponse {
	resp := &dto.ShiftResponse{
		ID:                shift.ID.String(),
		Code:              shift.Code,
		Status:            shift.Status,
		InitialCash:       shift.InitialCash,
		FinalCash:         shift.FinalCash,
		ExpectedCash:      shift.ExpectedCash,
		CashDifference:    shift.CashDifference,
		CardTerminalTotal: shift.CardTerminalTotal,
		CardExpectedTotal: shift.CardExpectedTotal,
		CardDifference:    shift.CardDifference,
		CashWithdrawal:    shift.CashWithdrawal,
		UserID:            shift.OpeningUserID.String(),
		OpenedAt:          shift.OpenedAt.Format(time.RFC3339),
		Totals:            totals,
	}
	if shift.ClosedAt != nil {
		closed := shift.ClosedAt.Format(time.RFC3339)
		resp.ClosedAt = &closed
	}
	return resp
}
