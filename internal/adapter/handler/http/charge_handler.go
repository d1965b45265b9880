package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/ledgerline/payment-orchestrator/internal/usecase"
)

type ChargeHandler struct {
	usecase *usecase.PaymentUsecase
	logger  *zap.Logger
}

func NewChargeHandler(uc *usecase.PaymentUsecase, logger *zap.Logger) *ChargeHandler {
	return &ChargeHandler{
		usecase: uc,
		logger:  logger,
	}
}

func (h *ChargeHandler) RefundCharge(c echo.Context) error {
	charge, err := h.usecase.RefundCharge(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, charge)
}
