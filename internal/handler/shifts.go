package handler

import (
	"net/http"

	"retailpos/internal/apierror"
	"retailpos/internal/dto"
	"retailpos/internal/middleware"
	"retailpos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ShiftsHandler struct{ svc service.ShiftService }

func NewShiftsHandler(svc service.ShiftService) *ShiftsHandler { return &ShiftsHandler{svc: svc} }

// OpenShift godoc
// @Summary      Open a cash register shift
// @Tags         shifts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.OpenShiftRequest true "Opening float"
// @Success      201  {object} dto.ShiftResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/shifts [post]
func (h *ShiftsHandler) OpenShift(c *gin.Context) {
	var req dto.OpenShiftRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	userID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.Open(c.Request.Context(), userID, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// CloseShift godoc
// @Summary      Close a shift
// @Description  Recomputes totals inside the closing transaction and records cash/card differences and the withdrawal amount.
// @Tags         shifts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string               true "Shift UUID"
// @Param        body body dto.CloseShiftRequest true "Declared cash and card terminal totals"
// @Success      200  {object} dto.ShiftResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/shifts/{id}/close [post]
func (h *ShiftsHandler) CloseShift(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	var req dto.CloseShiftRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	userID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.Close(c.Request.Context(), userID, id, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ActiveShift godoc
// @Summary      Get the open shift
// @Tags         shifts
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.ShiftResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/shifts/active [get]
func (h *ShiftsHandler) ActiveShift(c *gin.Context) {
	resp, err := h.svc.Active(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RegisterMovement godoc
// @Summary      Register a manual cash movement
// @Tags         shifts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                 true "Shift UUID"
// @Param        body body dto.CashMovementRequest true "IN/OUT movement"
// @Success      201  {object} dto.CashMovementResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/shifts/{id}/movements [post]
func (h *ShiftsHandler) RegisterMovement(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	var req dto.CashMovementRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	userID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.RegisterMovement(c.Request.Context(), userID, id, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// RegisterDebtPayment godoc
// @Summary      Register a customer debt payment
// @Description  Pays down a customer's credit balance during the open shift; cash and card portions feed the shift totals.
// @Tags         shifts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.DebtPaymentRequest true "Customer and payment split"
// @Success      201  {object} dto.DebtPaymentResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/shifts/debt-payments [post]
func (h *ShiftsHandler) RegisterDebtPayment(c *gin.Context) {
	var req dto.DebtPaymentRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RegisterDebtPayment(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ShiftTotals godoc
// @Summary      Shift totals
// @Description  Read-side aggregation: sales by settlement method, debt payments, manual movements and theoretical cash.
// @Tags         shifts
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Shift UUID"
// @Success      200 {object} dto.ShiftTotals
// @Failure      404 {object} apierror.APIError
// @Router       /v1/shifts/{id}/totals [get]
func (h *ShiftsHandler) ShiftTotals(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	resp, err := h.svc.Totals(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}
