package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	apperr "github.com/ledgerline/payment-orchestrator/internal/domain/errors"
	"github.com/ledgerline/payment-orchestrator/internal/usecase"
)

type PaymentHandler struct {
	usecase *usecase.PaymentUsecase
	logger  *zap.Logger
}

func NewPaymentHandler(uc *usecase.PaymentUsecase, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		usecase: uc,
		logger:  logger,
	}
}

func (h *PaymentHandler) GetPayment(c echo.Context) error {
	payment, err := h.usecase.GetPayment(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, payment)
}

type updatePaymentRequest struct {
	OrderID  string      `json:"order_id" validate:"required"`
	Amount   json.Number `json:"amount" validate:"required"`
	Currency string      `json:"currency"`
	Status   string      `json:"status"`
}

func (h *PaymentHandler) UpdatePayment(c echo.Context) error {
	var req updatePaymentRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, apperr.InvalidInput("malformed request body"))
	}
	if err := c.Validate(&req); err != nil {
		return writeError(c, apperr.InvalidInput("order_id and amount are required"))
	}

	amount, err := decimal.NewFromString(req.Amount.String())
	if err != nil {
		return writeError(c, apperr.InvalidInput("amount is not a valid number"))
	}

	payment, err := h.usecase.UpdatePayment(c.Request().Context(), c.Param("id"), usecase.UpdatePaymentInput{
		OrderID:  req.OrderID,
		Amount:   amount,
		Currency: req.Currency,
		Status:   req.Status,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, payment)
}

func (h *PaymentHandler) ListPayments(c echo.Context) error {
	limit, err := queryInt(c, "limit", 50)
	if err != nil {
		return writeError(c, apperr.InvalidInput("invalid limit parameter"))
	}
	offset, err := queryInt(c, "offset", 0)
	if err != nil {
		return writeError(c, apperr.InvalidInput("invalid offset parameter"))
	}

	payments, err := h.usecase.ListPayments(c.Request().Context(), limit, offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, payments)
}

func (h *PaymentHandler) RefundPayment(c echo.Context) error {
	payment, err := h.usecase.RefundPayment(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, payment)
}

func queryInt(c echo.Context, name string, fallback int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}
