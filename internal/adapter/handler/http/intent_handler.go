package http

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	apperr "github.com/ledgerline/payment-orchestrator/internal/domain/errors"
	"github.com/ledgerline/payment-orchestrator/internal/usecase"
)

const idempotencyKeyHeader = "Idempotency-Key"

type IntentHandler struct {
	usecase *usecase.PaymentUsecase
	logger  *zap.Logger
}

func NewIntentHandler(uc *usecase.PaymentUsecase, logger *zap.Logger) *IntentHandler {
	return &IntentHandler{
		usecase: uc,
		logger:  logger,
	}
}

type createIntentRequest struct {
	OrderID  string      `json:"order_id" validate:"required"`
	Amount   json.Number `json:"amount" validate:"required"`
	Currency string      `json:"currency"`
}

func (h *IntentHandler) CreateIntent(c echo.Context) error {
	var req createIntentRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, apperr.InvalidInput("malformed request body"))
	}

	amount, err := decimal.NewFromString(req.Amount.String())
	if err != nil {
		return writeError(c, apperr.InvalidInput("amount is not a valid number"))
	}

	intent, err := h.usecase.CreateIntent(c.Request().Context(), usecase.CreateIntentInput{
		OrderID:  req.OrderID,
		Amount:   amount,
		Currency: req.Currency,
	}, c.Request().Header.Get(idempotencyKeyHeader))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, intent)
}

func (h *IntentHandler) ConfirmIntent(c echo.Context) error {
	intent, err := h.usecase.ConfirmIntent(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, intent)
}

func (h *IntentHandler) CaptureIntent(c echo.Context) error {
	charge, err := h.usecase.CaptureIntent(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, charge)
}
