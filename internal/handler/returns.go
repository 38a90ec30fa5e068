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

type ReturnsHandler struct{ svc service.ReturnService }

func NewReturnsHandler(svc service.ReturnService) *ReturnsHandler {
	return &ReturnsHandler{svc: svc}
}

// ProcessReturn godoc
// @Summary      Process a return
// @Description  Validates a partial or full return against remaining quantities and kit/promotion proportionality, then restores stock, upserts the store voucher and recomputes the sale status atomically.
// @Tags         returns
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.ProcessReturnRequest true "Sale, reason and lines to return"
// @Success      201  {object} dto.ReturnResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/returns [post]
func (h *ReturnsHandler) ProcessReturn(c *gin.Context) {
	var req dto.ProcessReturnRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	userID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.ProcessReturn(c.Request.Context(), userID, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// GetSaleReturns godoc
// @Summary      Sale with return info
// @Description  Read model for the returns screen: sale header, per-item sold/returned/available quantities, past returns and the active voucher.
// @Tags         returns
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Sale UUID"
// @Success      200 {object} dto.SaleWithReturnInfo
// @Failure      404 {object} apierror.APIError
// @Router       /v1/sales/{id}/returns [get]
func (h *ReturnsHandler) GetSaleReturns(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	resp, err := h.svc.GetSaleWithReturnInfo(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}
